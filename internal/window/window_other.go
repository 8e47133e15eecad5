//go:build !darwin && !linux && !windows

package window

// New has no backend on this platform.
func New(title string, width, height int) (Window, error) {
	return nil, ErrUnsupported
}
