package api

// User is the account payload returned by the backend's user endpoint.
type User struct {
	ID        int64  `json:"id"`
	Username  string `json:"username"`
	Email     string `json:"email"`
	CreatedAt string `json:"created_at"`
}

type userResponse struct {
	Success bool   `json:"success"`
	User    User   `json:"user"`
	Error   string `json:"error,omitempty"`
}
