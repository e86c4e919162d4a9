package notify

import (
	"errors"
	"image"
	"os"
	"strings"
	"testing"

	"github.com/example/glowplan/internal/platform"
)

type sent struct {
	title, body string
	opts        platform.Options
	iconExisted bool
}

func recorder(out *[]sent) Sender {
	return func(title, body string, opts platform.Options) error {
		s := sent{title: title, body: body, opts: opts}
		if opts.IconPath != "" {
			_, err := os.Stat(opts.IconPath)
			s.iconExisted = err == nil
		}
		*out = append(*out, s)
		return nil
	}
}

func TestDisabledByDefault(t *testing.T) {
	var got []sent
	n := New(DefaultPreferences())
	n.SetSender(recorder(&got))
	n.Saved("porch")
	n.Copied("", nil)
	if len(got) != 0 {
		t.Fatalf("sent %d notifications while disabled", len(got))
	}
}

func TestSavedAndFailed(t *testing.T) {
	var got []sent
	n := New(DefaultPreferences())
	n.SetSender(recorder(&got))
	n.EnableAll(true)

	n.Saved("porch")
	n.SaveFailed("porch", errors.New("disk full"))
	if len(got) != 2 {
		t.Fatalf("sent %d notifications, want 2", len(got))
	}
	if got[0].body != "Saved project porch" || got[0].title != "glowplan" {
		t.Errorf("save = %+v", got[0])
	}
	if !strings.Contains(got[1].body, "disk full") || !got[1].opts.Urgent {
		t.Errorf("failure = %+v", got[1])
	}
}

func TestCopiedPreviewIsRemoved(t *testing.T) {
	var got []sent
	n := New(DefaultPreferences())
	n.SetSender(recorder(&got))
	n.Enable(EventCopy, true)

	n.Copied("", image.NewRGBA(image.Rect(0, 0, 4, 4)))
	if len(got) != 1 {
		t.Fatalf("sent %d notifications, want 1", len(got))
	}
	if got[0].body != "Copied design to clipboard" {
		t.Errorf("body = %q", got[0].body)
	}
	if !got[0].iconExisted {
		t.Error("preview icon missing while sending")
	}
	if _, err := os.Stat(got[0].opts.IconPath); !os.IsNotExist(err) {
		t.Errorf("preview left behind: %v", err)
	}
}

func TestLoadPreferencesFromEnv(t *testing.T) {
	t.Setenv("GLOWPLAN_NOTIFY_TITLE", "Lights")
	t.Setenv("GLOWPLAN_NOTIFY_EXPORT_TEXT", "Wrote %s")
	prefs := LoadPreferences()
	if prefs.Title != "Lights" {
		t.Errorf("Title = %q", prefs.Title)
	}
	if prefs.Events[EventExport].Template != "Wrote %s" {
		t.Errorf("export template = %q", prefs.Events[EventExport].Template)
	}
	if prefs.Events[EventSave].Template != DefaultPreferences().Events[EventSave].Template {
		t.Error("save template changed")
	}
}
