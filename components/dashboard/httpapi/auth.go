package httpapi

import (
	"context"
	"net/http"
	"strconv"

	dashboard "github.com/nexusboard/nexusboard/components/dashboard"
	"github.com/nexusboard/nexusboard/pkg/api"
)

// Authenticator checks the caller against the backend session endpoint.
// *api.Client satisfies it.
type Authenticator interface {
	CheckAuth(ctx context.Context, opts ...api.RequestOption) (api.User, bool)
	Logout(ctx context.Context, opts ...api.RequestOption)
	LoginPath() string
}

type viewerKey struct{}

// WithViewer stores the authenticated viewer on ctx.
func WithViewer(ctx context.Context, viewer dashboard.ViewerContext) context.Context {
	return context.WithValue(ctx, viewerKey{}, viewer)
}

// ViewerFrom returns the viewer stored by RequireAuth, if any.
func ViewerFrom(ctx context.Context) (dashboard.ViewerContext, bool) {
	viewer, ok := ctx.Value(viewerKey{}).(dashboard.ViewerContext)
	return viewer, ok
}

// ViewerFromUser maps a backend user onto the dashboard viewer.
func ViewerFromUser(user api.User) dashboard.ViewerContext {
	return dashboard.ViewerContext{
		UserID:   strconv.FormatInt(user.ID, 10),
		Username: user.Username,
		Email:    user.Email,
	}
}

// RequireAuth forwards the request cookies to the backend user endpoint and
// redirects to the login path when the check fails. A nil auth lets every
// request through.
func RequireAuth(auth Authenticator, next http.Handler) http.Handler {
	if auth == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, ok := auth.CheckAuth(r.Context(), api.WithCookies(r.Cookies()))
		if !ok {
			http.Redirect(w, r, auth.LoginPath(), http.StatusFound)
			return
		}
		next.ServeHTTP(w, r.WithContext(WithViewer(r.Context(), ViewerFromUser(user))))
	})
}

// Logout invalidates the backend session with the caller's cookies and
// answers with a redirect to the login path.
func Logout(auth Authenticator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := api.WithNavigator(r.Context(), api.RedirectWriter(w, r))
		auth.Logout(ctx, api.WithCookies(r.Cookies()))
	}
}
