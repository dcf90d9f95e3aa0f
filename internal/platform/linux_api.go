//go:build linux

package platform

// LinuxResolver returns the webview surface handle. The GTK window pointer
// is not exposed to Go code.
type LinuxResolver struct{}

// NewLinuxResolver creates a new Linux resolver instance
func NewLinuxResolver() *LinuxResolver {
	return &LinuxResolver{}
}

// NewHandleResolver creates a HandleResolver for Linux
func NewHandleResolver() HandleResolver {
	return NewLinuxResolver()
}

// ResolveHandle implements HandleResolver
func (l *LinuxResolver) ResolveHandle(w Window) (NativeHandle, error) {
	return resolveSurface(w)
}
