package config

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/example/glowplan/internal/catalog"
)

// Parse reads configuration from an io.Reader.
func Parse(r io.Reader) (*Config, error) {
	cfg := New()
	scanner := bufio.NewScanner(r)

	// Context for parsing
	var currentSection string
	var currentAsset *catalog.Asset

	flushAsset := func() {
		if currentAsset != nil {
			cfg.Assets[currentAsset.ID] = *currentAsset
			currentAsset = nil
		}
	}

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") || strings.HasPrefix(line, "//") {
			continue
		}

		// Handle Sections
		if strings.HasPrefix(line, "[") && strings.HasSuffix(line, "]") {
			flushAsset()
			currentSection = strings.TrimSuffix(strings.TrimPrefix(line, "["), "]")
			if id, ok := strings.CutPrefix(currentSection, catalog.SectionPrefix); ok && id != "" {
				// Start with defaults so missing keys are fine
				a := catalog.Default(id)
				currentAsset = &a
			}
			continue
		}

		key, value, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}
		key = strings.ToLower(strings.TrimSpace(key))
		value = strings.TrimSpace(value)
		// Drop trailing comments
		if i := strings.Index(value, " #"); i >= 0 {
			value = strings.TrimSpace(value[:i])
		}
		// Remove quotes if present
		if len(value) >= 2 && strings.HasPrefix(value, "\"") && strings.HasSuffix(value, "\"") {
			value = value[1 : len(value)-1]
		}

		var err error
		switch {
		case currentAsset != nil:
			err = catalog.SetField(currentAsset, key, value)
		case currentSection == "":
			err = setRootField(cfg, key, value)
		case currentSection == "canvas":
			err = setCanvasField(&cfg.Canvas, key, value)
		case currentSection == "scale":
			err = setScaleField(&cfg.Scale, key, value)
		case currentSection == "undo":
			if key == "limit" {
				err = setInt(&cfg.Undo.Limit, key, value)
			}
		case currentSection == "autosave":
			if key == "delay_ms" {
				err = setInt(&cfg.Autosave.DelayMS, key, value)
			}
		case currentSection == "notify":
			err = setNotifyField(&cfg.Notify, key, value)
		}
		if err != nil {
			if currentSection == "" {
				return nil, fmt.Errorf("error in root section: %w", err)
			}
			return nil, fmt.Errorf("error in section [%s]: %w", currentSection, err)
		}
	}
	flushAsset()

	return cfg, scanner.Err()
}

func setRootField(cfg *Config, key, value string) error {
	switch key {
	case "project_dir":
		cfg.ProjectDir = value
	case "store":
		switch value {
		case "file", "sqlite":
			cfg.Store = value
		default:
			return fmt.Errorf("unknown store %q", value)
		}
	case "db_path":
		cfg.DBPath = value
	case "catalog":
		cfg.Catalog = value
	case "locale":
		cfg.Locale = value
	}
	return nil
}

func setCanvasField(c *Canvas, key, value string) error {
	switch key {
	case "tap_threshold":
		return setFloat(&c.TapThreshold, key, value)
	case "tap_timeout_ms":
		return setInt(&c.TapTimeoutMS, key, value)
	case "string_threshold":
		return setFloat(&c.StringThreshold, key, value)
	case "decor_min_radius":
		return setFloat(&c.DecorMinRadius, key, value)
	case "decor_max_radius":
		return setFloat(&c.DecorMaxRadius, key, value)
	case "decor_default_radius":
		return setFloat(&c.DecorDefaultRadius, key, value)
	}
	return nil
}

func setScaleField(s *Scale, key, value string) error {
	switch key {
	case "fallback_spacing":
		return setFloat(&s.FallbackSpacing, key, value)
	case "min_spacing":
		return setFloat(&s.MinSpacing, key, value)
	case "base_light_diameter":
		return setFloat(&s.BaseLightDiameter, key, value)
	case "min_light_scale":
		return setFloat(&s.MinLightScale, key, value)
	case "max_light_scale":
		return setFloat(&s.MaxLightScale, key, value)
	}
	return nil
}

func setNotifyField(n *Notify, key, value string) error {
	b, err := strconv.ParseBool(value)
	if err != nil {
		return fmt.Errorf("invalid boolean for key %s: %w", key, err)
	}
	switch key {
	case "save":
		n.Save = b
	case "export":
		n.Export = b
	case "copy":
		n.Copy = b
	case "save_failed":
		n.SaveFailed = b
	}
	return nil
}

func setFloat(dst *float64, key, value string) error {
	v, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return fmt.Errorf("invalid number for key %s: %w", key, err)
	}
	if v < 0 {
		return fmt.Errorf("key %s must not be negative", key)
	}
	*dst = v
	return nil
}

func setInt(dst *int, key, value string) error {
	v, err := strconv.Atoi(value)
	if err != nil {
		return fmt.Errorf("invalid integer for key %s: %w", key, err)
	}
	if v < 0 {
		return fmt.Errorf("key %s must not be negative", key)
	}
	*dst = v
	return nil
}
