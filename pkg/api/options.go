package api

import "net/http"

// RequestOption decorates a single outgoing request.
type RequestOption func(*http.Request)

// WithHeader sets a header on the request.
func WithHeader(key, value string) RequestOption {
	return func(req *http.Request) {
		if value != "" {
			req.Header.Set(key, value)
		}
	}
}

// WithCookies forwards the cookies of an incoming request, which lets a
// server-side gate check the browser's session against the backend.
func WithCookies(cookies []*http.Cookie) RequestOption {
	return func(req *http.Request) {
		for _, cookie := range cookies {
			req.AddCookie(cookie)
		}
	}
}
