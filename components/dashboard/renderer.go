package dashboard

import "io"

// Renderer describes the template renderer contract needed by the controller.
// Implementations write to out[0] when given and return the rendered markup.
type Renderer interface {
	Render(name string, data any, out ...io.Writer) (string, error)
}

// RendererFunc adapts a function into a Renderer.
type RendererFunc func(name string, data any, out ...io.Writer) (string, error)

// Render calls f.
func (f RendererFunc) Render(name string, data any, out ...io.Writer) (string, error) {
	return f(name, data, out...)
}
