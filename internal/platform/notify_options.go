// Package platform sends desktop notifications through the host's
// notification service.
package platform

// DefaultAppName identifies the sender when Options.AppName is empty.
const DefaultAppName = "glowplan"

// Options configures how a notification is displayed on the host platform.
type Options struct {
	// AppName overrides DefaultAppName.
	AppName string
	// IconPath, when non-empty, points to an image file shown with the
	// notification where the platform supports it.
	IconPath string
	// Urgent marks failures that should stay on screen.
	Urgent bool
}

func (o Options) appName() string {
	if o.AppName != "" {
		return o.AppName
	}
	return DefaultAppName
}
