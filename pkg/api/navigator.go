package api

import (
	"context"
	"net/http"
	"sync"
)

// Navigator sends the client to another view. Browser code assigned
// window.location; servers write a redirect response instead.
type Navigator interface {
	Redirect(ctx context.Context, path string)
}

// NavigatorFunc adapts a function into a Navigator.
type NavigatorFunc func(ctx context.Context, path string)

// Redirect calls f.
func (f NavigatorFunc) Redirect(ctx context.Context, path string) {
	f(ctx, path)
}

type navigatorKey struct{}

// WithNavigator attaches a per-request Navigator to ctx. Client redirects
// made with ctx use it instead of the configured one, which lets a server
// answer the current request with a redirect.
func WithNavigator(ctx context.Context, nav Navigator) context.Context {
	return context.WithValue(ctx, navigatorKey{}, nav)
}

// RedirectWriter returns a Navigator that answers r with a 302.
func RedirectWriter(w http.ResponseWriter, r *http.Request) Navigator {
	return NavigatorFunc(func(_ context.Context, path string) {
		http.Redirect(w, r, path, http.StatusFound)
	})
}

type noopNavigator struct{}

func (noopNavigator) Redirect(context.Context, string) {}

// RecordingNavigator remembers every redirect it receives.
type RecordingNavigator struct {
	mu    sync.Mutex
	paths []string
}

// Redirect records path.
func (n *RecordingNavigator) Redirect(_ context.Context, path string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.paths = append(n.paths, path)
}

// Redirects returns the recorded paths in order.
func (n *RecordingNavigator) Redirects() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]string(nil), n.paths...)
}

// Last returns the most recent redirect, if any.
func (n *RecordingNavigator) Last() (string, bool) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if len(n.paths) == 0 {
		return "", false
	}
	return n.paths[len(n.paths)-1], true
}
