// Package notify tells the user about saves, exports and clipboard copies
// through desktop notifications.
package notify

import (
	"fmt"
	"image"
	"image/png"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/example/glowplan/internal/platform"
)

// Event identifies a notification trigger.
type Event string

const (
	// EventSave fires when a project is written to its store.
	EventSave Event = "save"
	// EventSaveFailed fires when an autosave or explicit save fails.
	EventSaveFailed Event = "save_failed"
	// EventExport fires when a design is rendered to an image file.
	EventExport Event = "export"
	// EventCopy fires when a rendered design is copied to the clipboard.
	EventCopy Event = "copy"
)

// Events lists every event in a stable order.
func Events() []Event {
	return []Event{EventSave, EventSaveFailed, EventExport, EventCopy}
}

// EventPreference describes formatting for a notification event.
type EventPreference struct {
	Template string
}

// Preferences describes notification behaviour loaded from configuration.
type Preferences struct {
	Title  string
	Events map[Event]EventPreference
}

// DefaultPreferences returns the default notification settings.
func DefaultPreferences() Preferences {
	return Preferences{
		Title: "glowplan",
		Events: map[Event]EventPreference{
			EventSave:       {Template: "Saved project %s"},
			EventSaveFailed: {Template: "Could not save %s"},
			EventExport:     {Template: "Exported %s"},
			EventCopy:       {Template: "Copied %s to clipboard"},
		},
	}
}

// LoadPreferences reads overrides from GLOWPLAN_NOTIFY_* environment
// variables.
func LoadPreferences() Preferences {
	prefs := DefaultPreferences()
	if v := strings.TrimSpace(os.Getenv("GLOWPLAN_NOTIFY_TITLE")); v != "" {
		prefs.Title = v
	}
	for _, ev := range Events() {
		key := "GLOWPLAN_NOTIFY_" + strings.ToUpper(string(ev)) + "_TEXT"
		if v := strings.TrimSpace(os.Getenv(key)); v != "" {
			prefs.Events[ev] = EventPreference{Template: v}
		}
	}
	return prefs
}

// Sender delivers a rendered notification. platform.Notify is the default.
type Sender func(title, body string, opts platform.Options) error

// Notifier sends OS-level notifications based on the configured preferences.
// Every event starts disabled.
type Notifier struct {
	prefs   Preferences
	enabled map[Event]bool
	send    Sender
}

// New creates a new Notifier using the provided preferences.
func New(prefs Preferences) *Notifier {
	cloned := Preferences{Title: prefs.Title, Events: make(map[Event]EventPreference, len(prefs.Events))}
	for k, v := range prefs.Events {
		cloned.Events[k] = v
	}
	return &Notifier{prefs: cloned, enabled: make(map[Event]bool), send: platform.Notify}
}

// SetSender replaces the delivery function.
func (n *Notifier) SetSender(s Sender) {
	if n != nil && s != nil {
		n.send = s
	}
}

// Enable toggles the notifier for the provided event.
func (n *Notifier) Enable(event Event, enabled bool) {
	if n == nil {
		return
	}
	n.enabled[event] = enabled
}

// EnableAll turns every event on or off.
func (n *Notifier) EnableAll(enabled bool) {
	for _, ev := range Events() {
		n.Enable(ev, enabled)
	}
}

// Saved reports a project save.
func (n *Notifier) Saved(projectID string) {
	n.dispatch(EventSave, projectID, platform.Options{})
}

// SaveFailed reports a failed save.
func (n *Notifier) SaveFailed(projectID string, err error) {
	detail := projectID
	if err != nil {
		detail = fmt.Sprintf("%s: %v", projectID, err)
	}
	n.dispatch(EventSaveFailed, detail, platform.Options{Urgent: true})
}

// Exported reports an image written to path. The file doubles as the icon.
func (n *Notifier) Exported(path string) {
	if !n.enabledFor(EventExport) {
		return
	}
	detail := strings.TrimSpace(path)
	opts := platform.Options{}
	if abs, err := filepath.Abs(path); err == nil {
		detail = abs
		if _, statErr := os.Stat(abs); statErr == nil {
			opts.IconPath = abs
		}
	}
	n.dispatch(EventExport, detail, opts)
}

// Copied reports a clipboard copy with an optional image preview.
func (n *Notifier) Copied(detail string, img image.Image) {
	if !n.enabledFor(EventCopy) {
		return
	}
	if strings.TrimSpace(detail) == "" {
		detail = "design"
	}
	opts := platform.Options{}
	if img != nil {
		if path, cleanup, err := createPreview(img); err != nil {
			log.Printf("notification preview: %v", err)
		} else {
			defer cleanup()
			opts.IconPath = path
		}
	}
	n.dispatch(EventCopy, detail, opts)
}

func (n *Notifier) enabledFor(event Event) bool {
	return n != nil && n.enabled[event]
}

func (n *Notifier) dispatch(event Event, detail string, opts platform.Options) {
	if !n.enabledFor(event) {
		return
	}
	template := strings.TrimSpace(n.prefs.Events[event].Template)
	if template == "" {
		return
	}
	body := strings.TrimSpace(fmt.Sprintf(template, strings.TrimSpace(detail)))
	if body == "" {
		return
	}
	if err := n.send(n.prefs.Title, body, opts); err != nil {
		log.Printf("notification %s: %v", event, err)
	}
}

func createPreview(img image.Image) (string, func(), error) {
	f, err := os.CreateTemp("", "glowplan-preview-*.png")
	if err != nil {
		return "", nil, err
	}
	path := f.Name()
	if err := png.Encode(f, img); err != nil {
		_ = f.Close()
		_ = os.Remove(path)
		return "", nil, err
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(path)
		return "", nil, err
	}
	cleanup := func() {
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			log.Printf("remove preview: %v", err)
		}
	}
	return path, cleanup, nil
}
