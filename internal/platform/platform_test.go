package platform

import "testing"

func TestAppNameDefault(t *testing.T) {
	if got := (Options{}).appName(); got != DefaultAppName {
		t.Errorf("appName() = %q, want %q", got, DefaultAppName)
	}
	if got := (Options{AppName: "porch"}).appName(); got != "porch" {
		t.Errorf("appName() = %q, want porch", got)
	}
}
