package dashboard

import (
	"fmt"
	"time"
)

// ToastKind selects the toast color.
type ToastKind string

const (
	ToastSuccess ToastKind = "success"
	ToastError   ToastKind = "error"
	ToastInfo    ToastKind = "info"
	ToastWarning ToastKind = "warning"
)

const (
	// ToastVisible is how long a toast stays fully visible.
	ToastVisible = 3 * time.Second
	// ToastFadeOut is the fade transition before removal.
	ToastFadeOut = 300 * time.Millisecond
)

var toastColors = map[ToastKind]string{
	ToastSuccess: "#059669",
	ToastError:   "#dc2626",
	ToastInfo:    "#4F46E5",
	ToastWarning: "#f59e0b",
}

// ToastPhase is the lifecycle stage of a toast.
type ToastPhase string

const (
	ToastEntering ToastPhase = "entering"
	ToastShown    ToastPhase = "visible"
	ToastFading   ToastPhase = "fading"
	ToastRemoved  ToastPhase = "removed"
)

// Toast is a transient banner. Each toast is independent of the others.
type Toast struct {
	Message string    `json:"message"`
	Kind    ToastKind `json:"kind"`
	Color   string    `json:"color"`
}

// NewToast builds a toast; unknown kinds fall back to info.
func NewToast(message string, kind ToastKind) Toast {
	color, ok := toastColors[kind]
	if !ok {
		kind = ToastInfo
		color = toastColors[ToastInfo]
	}
	return Toast{Message: message, Kind: kind, Color: color}
}

// Style returns the inline CSS of the toast element.
func (t Toast) Style() string {
	return fmt.Sprintf("position: fixed; bottom: 24px; left: 50%%; transform: translateX(-50%%); "+
		"padding: 12px 24px; border-radius: 12px; font-size: 0.85rem; font-weight: 500; "+
		"color: white; z-index: 10000; opacity: 0; transition: opacity 0.3s; "+
		"font-family: 'Inter', sans-serif; background: %s;", t.Color)
}

// PhaseAt reports the toast phase elapsed after it was shown.
func (t Toast) PhaseAt(elapsed time.Duration) ToastPhase {
	switch {
	case elapsed <= 0:
		return ToastEntering
	case elapsed < ToastVisible:
		return ToastShown
	case elapsed < ToastVisible+ToastFadeOut:
		return ToastFading
	default:
		return ToastRemoved
	}
}

// ToastView is the template and JSON form of a toast.
type ToastView struct {
	Message string    `json:"message"`
	Kind    ToastKind `json:"kind"`
	Style   string    `json:"style"`
	// Durations in milliseconds for the page script.
	VisibleMS int64 `json:"visible_ms"`
	FadeMS    int64 `json:"fade_ms"`
}

// View renders the toast.
func (t Toast) View() ToastView {
	return ToastView{
		Message:   t.Message,
		Kind:      t.Kind,
		Style:     t.Style(),
		VisibleMS: ToastVisible.Milliseconds(),
		FadeMS:    ToastFadeOut.Milliseconds(),
	}
}
