//go:build linux || freebsd || openbsd || netbsd || dragonfly

package clipboard

import (
	"errors"
	"image"
	"sync"
	"testing"
)

func resetInit() {
	initOnce = sync.Once{}
	initErr = nil
}

func TestWriteWithoutDisplay(t *testing.T) {
	t.Setenv("DISPLAY", "")
	t.Setenv("WAYLAND_DISPLAY", "")
	resetInit()
	t.Cleanup(resetInit)

	if err := WriteText("12.5 ft"); !errors.Is(err, errNoDisplay) {
		t.Fatalf("WriteText = %v, want errNoDisplay", err)
	}
	if err := WriteImage(image.NewRGBA(image.Rect(0, 0, 2, 2))); !errors.Is(err, errNoDisplay) {
		t.Fatalf("WriteImage = %v, want errNoDisplay", err)
	}
	if _, err := ReadImage(); !errors.Is(err, errNoDisplay) {
		t.Fatalf("ReadImage = %v, want errNoDisplay", err)
	}
}

func TestFormatString(t *testing.T) {
	if formatImage.String() != "image" || formatText.String() != "text" {
		t.Errorf("format names = %s, %s", formatImage, formatText)
	}
}
