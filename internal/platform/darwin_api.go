//go:build darwin

package platform

// DarwinResolver returns the webview surface handle of an NSWindow
type DarwinResolver struct{}

// NewDarwinResolver creates a new macOS resolver instance
func NewDarwinResolver() *DarwinResolver {
	return &DarwinResolver{}
}

// NewHandleResolver creates a HandleResolver for macOS
func NewHandleResolver() HandleResolver {
	return NewDarwinResolver()
}

// ResolveHandle implements HandleResolver
func (d *DarwinResolver) ResolveHandle(w Window) (NativeHandle, error) {
	return resolveSurface(w)
}
