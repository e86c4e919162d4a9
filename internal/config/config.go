package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/example/glowplan/internal/calibrate"
	"github.com/example/glowplan/internal/catalog"
	"github.com/example/glowplan/internal/gesture"
	"github.com/example/glowplan/internal/scene"
	"github.com/example/glowplan/internal/undo"
)

// Canvas holds gesture and hit-testing settings.
type Canvas struct {
	TapThreshold float64
	TapTimeoutMS int
	// StringThreshold is the light string hit distance; 0 derives it from
	// the light size.
	StringThreshold    float64
	DecorMinRadius     float64
	DecorMaxRadius     float64
	DecorDefaultRadius float64
}

// Scale holds the calibration fallbacks and clamps.
type Scale struct {
	FallbackSpacing   float64
	MinSpacing        float64
	BaseLightDiameter float64
	MinLightScale     float64
	MaxLightScale     float64
}

// Undo holds history settings.
type Undo struct {
	Limit int
}

// Autosave holds the save debounce.
type Autosave struct {
	DelayMS int
}

// Notify holds notification settings.
type Notify struct {
	Save       bool
	Export     bool
	Copy       bool
	SaveFailed bool
}

// Config holds the application configuration.
type Config struct {
	ProjectDir string
	// Store selects the project store: "file" or "sqlite".
	Store   string
	DBPath  string
	Catalog string
	Locale  string

	Canvas   Canvas
	Scale    Scale
	Undo     Undo
	Autosave Autosave
	Notify   Notify

	// Assets are user-defined catalog entries from [asset.<id>] sections.
	Assets map[string]catalog.Asset
}

// New creates a new Config with defaults.
func New() *Config {
	limits := calibrate.DefaultLimits()
	bounds := scene.DefaultDecorBounds()
	drawer := gesture.DefaultDrawerOptions()
	return &Config{
		ProjectDir: "~/.local/share/glowplan/projects",
		Store:      "file",
		DBPath:     "~/.local/share/glowplan/projects.db",
		Catalog:    catalog.DefaultName,
		Locale:     "en",
		Canvas: Canvas{
			TapThreshold:       drawer.TapThreshold,
			TapTimeoutMS:       int(drawer.TapTimeout / time.Millisecond),
			DecorMinRadius:     bounds.Min,
			DecorMaxRadius:     bounds.Max,
			DecorDefaultRadius: 40,
		},
		Scale: Scale{
			FallbackSpacing:   limits.FallbackSpacing,
			MinSpacing:        limits.MinSpacing,
			BaseLightDiameter: limits.BaseLightDiameter,
			MinLightScale:     limits.MinLightScale,
			MaxLightScale:     limits.MaxLightScale,
		},
		Undo:     Undo{Limit: undo.DefaultLimit},
		Autosave: Autosave{DelayMS: 1500},
		Notify: Notify{
			Save:       false,
			Export:     true,
			Copy:       true,
			SaveFailed: true,
		},
		Assets: make(map[string]catalog.Asset),
	}
}

// Limits returns the calibration limits.
func (c *Config) Limits() calibrate.Limits {
	return calibrate.Limits{
		FallbackSpacing:   c.Scale.FallbackSpacing,
		MinSpacing:        c.Scale.MinSpacing,
		BaseLightDiameter: c.Scale.BaseLightDiameter,
		MinLightScale:     c.Scale.MinLightScale,
		MaxLightScale:     c.Scale.MaxLightScale,
	}
}

// DecorBounds returns the decor radius limits.
func (c *Config) DecorBounds() scene.DecorBounds {
	return scene.DecorBounds{Min: c.Canvas.DecorMinRadius, Max: c.Canvas.DecorMaxRadius}
}

// DrawerOptions returns the tap classification thresholds.
func (c *Config) DrawerOptions() gesture.DrawerOptions {
	opts := gesture.DefaultDrawerOptions()
	opts.TapThreshold = c.Canvas.TapThreshold
	opts.TapTimeout = time.Duration(c.Canvas.TapTimeoutMS) * time.Millisecond
	return opts
}

// AutosaveDelay returns the autosave debounce.
func (c *Config) AutosaveDelay() time.Duration {
	return time.Duration(c.Autosave.DelayMS) * time.Millisecond
}

// AssetSet returns the user-defined assets as a catalog.
func (c *Config) AssetSet() *catalog.Set {
	ids := make([]string, 0, len(c.Assets))
	for id := range c.Assets {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	set := catalog.NewSet()
	for _, id := range ids {
		set.Put(c.Assets[id])
	}
	return set
}

// ExpandPath replaces a leading ~ with the user's home directory.
func ExpandPath(p string) string {
	if p == "~" || strings.HasPrefix(p, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, strings.TrimPrefix(p, "~"))
		}
	}
	return p
}

// String implements fmt.Stringer and returns the configuration in RC format.
func (c *Config) String() string {
	var sb strings.Builder

	// Root section
	fmt.Fprintf(&sb, "project_dir = %s\n", c.ProjectDir)
	fmt.Fprintf(&sb, "store = %s\n", c.Store)
	fmt.Fprintf(&sb, "db_path = %s\n", c.DBPath)
	fmt.Fprintf(&sb, "catalog = %s\n", c.Catalog)
	fmt.Fprintf(&sb, "locale = %s\n", c.Locale)
	sb.WriteString("\n")

	sb.WriteString("[canvas]\n")
	fmt.Fprintf(&sb, "tap_threshold = %s\n", ff(c.Canvas.TapThreshold))
	fmt.Fprintf(&sb, "tap_timeout_ms = %d\n", c.Canvas.TapTimeoutMS)
	fmt.Fprintf(&sb, "string_threshold = %s\n", ff(c.Canvas.StringThreshold))
	fmt.Fprintf(&sb, "decor_min_radius = %s\n", ff(c.Canvas.DecorMinRadius))
	fmt.Fprintf(&sb, "decor_max_radius = %s\n", ff(c.Canvas.DecorMaxRadius))
	fmt.Fprintf(&sb, "decor_default_radius = %s\n", ff(c.Canvas.DecorDefaultRadius))
	sb.WriteString("\n")

	sb.WriteString("[scale]\n")
	fmt.Fprintf(&sb, "fallback_spacing = %s\n", ff(c.Scale.FallbackSpacing))
	fmt.Fprintf(&sb, "min_spacing = %s\n", ff(c.Scale.MinSpacing))
	fmt.Fprintf(&sb, "base_light_diameter = %s\n", ff(c.Scale.BaseLightDiameter))
	fmt.Fprintf(&sb, "min_light_scale = %s\n", ff(c.Scale.MinLightScale))
	fmt.Fprintf(&sb, "max_light_scale = %s\n", ff(c.Scale.MaxLightScale))
	sb.WriteString("\n")

	sb.WriteString("[undo]\n")
	fmt.Fprintf(&sb, "limit = %d\n", c.Undo.Limit)
	sb.WriteString("\n")

	sb.WriteString("[autosave]\n")
	fmt.Fprintf(&sb, "delay_ms = %d\n", c.Autosave.DelayMS)
	sb.WriteString("\n")

	sb.WriteString("[notify]\n")
	fmt.Fprintf(&sb, "save = %v\n", c.Notify.Save)
	fmt.Fprintf(&sb, "export = %v\n", c.Notify.Export)
	fmt.Fprintf(&sb, "copy = %v\n", c.Notify.Copy)
	fmt.Fprintf(&sb, "save_failed = %v\n", c.Notify.SaveFailed)

	// Sort keys for deterministic output
	for _, a := range c.AssetSet().Assets() {
		sb.WriteString("\n")
		sb.WriteString(catalog.Format(a))
	}

	return sb.String()
}

func ff(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
