package catalog

import (
	"bufio"
	"fmt"
	"image/color"
	"io"
	"strconv"
	"strings"

	"golang.org/x/image/colornames"
)

// SectionPrefix starts every asset section name, as in [asset.c9-warm].
const SectionPrefix = "asset."

// Parse reads asset definitions in RC format. Keys outside an asset section
// are ignored.
func Parse(r io.Reader) (*Set, error) {
	set := NewSet()
	scanner := bufio.NewScanner(r)

	var current *Asset
	flush := func() {
		if current != nil {
			set.Put(*current)
		}
	}
	line := 0
	for scanner.Scan() {
		line++
		text := strings.TrimSpace(scanner.Text())
		if text == "" || strings.HasPrefix(text, "#") || strings.HasPrefix(text, "//") {
			continue
		}
		if strings.HasPrefix(text, "[") && strings.HasSuffix(text, "]") {
			flush()
			current = nil
			section := strings.TrimSuffix(strings.TrimPrefix(text, "["), "]")
			if id, ok := strings.CutPrefix(section, SectionPrefix); ok && id != "" {
				a := Default(id)
				current = &a
			}
			continue
		}
		key, value, ok := strings.Cut(text, "=")
		if !ok || current == nil {
			continue
		}
		if err := SetField(current, strings.TrimSpace(key), unquote(strings.TrimSpace(value))); err != nil {
			return nil, fmt.Errorf("line %d: [%s%s]: %w", line, SectionPrefix, current.ID, err)
		}
	}
	flush()
	return set, scanner.Err()
}

func unquote(v string) string {
	if len(v) >= 2 && strings.HasPrefix(v, "\"") && strings.HasSuffix(v, "\"") {
		return v[1 : len(v)-1]
	}
	return v
}

// SetField assigns one RC key of an asset definition. Unknown keys are
// ignored.
func SetField(a *Asset, key, value string) error {
	switch strings.ToLower(key) {
	case "name":
		a.Name = value
	case "category":
		c := Category(strings.ToLower(value))
		if !c.Valid() {
			return fmt.Errorf("unknown category %q", value)
		}
		a.Category = c
	case "spacing_inches":
		return setPositive(&a.SpacingInches, key, value)
	case "spacing_pixels":
		return setPositive(&a.SpacingPixels, key, value)
	case "diameter_inches":
		return setPositive(&a.DiameterInches, key, value)
	case "base_size":
		return setPositive(&a.BaseSize, key, value)
	case "color":
		c, err := ParseColor(value)
		if err != nil {
			return fmt.Errorf("invalid color for key %s: %w", key, err)
		}
		a.Color = c
	case "calibrated":
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("invalid boolean for key %s: %w", key, err)
		}
		a.Calibrated = b
	}
	return nil
}

func setPositive(dst *float64, key, value string) error {
	v, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return fmt.Errorf("invalid number for key %s: %w", key, err)
	}
	if v <= 0 {
		return fmt.Errorf("key %s must be positive", key)
	}
	*dst = v
	return nil
}

// ParseColor accepts #RRGGBB, #RRGGBBAA or an SVG color name such as
// "gold".
func ParseColor(s string) (color.RGBA, error) {
	if !strings.HasPrefix(s, "#") {
		if c, ok := colornames.Map[strings.ToLower(s)]; ok {
			return c, nil
		}
		return color.RGBA{}, fmt.Errorf("unknown color name %q", s)
	}
	hex := strings.TrimPrefix(s, "#")
	switch len(hex) {
	case 6:
		val, err := strconv.ParseUint(hex, 16, 32)
		if err != nil {
			return color.RGBA{}, err
		}
		return color.RGBA{
			R: uint8(val >> 16),
			G: uint8((val >> 8) & 0xFF),
			B: uint8(val & 0xFF),
			A: 255,
		}, nil
	case 8:
		val, err := strconv.ParseUint(hex, 16, 32)
		if err != nil {
			return color.RGBA{}, err
		}
		return color.RGBA{
			R: uint8(val >> 24),
			G: uint8((val >> 16) & 0xFF),
			B: uint8((val >> 8) & 0xFF),
			A: uint8(val & 0xFF),
		}, nil
	}
	return color.RGBA{}, fmt.Errorf("invalid hex length")
}

// FormatColor renders c as #RRGGBB, or #RRGGBBAA when it is translucent.
func FormatColor(c color.RGBA) string {
	if c.A == 255 {
		return fmt.Sprintf("#%02X%02X%02X", c.R, c.G, c.B)
	}
	return fmt.Sprintf("#%02X%02X%02X%02X", c.R, c.G, c.B, c.A)
}

// Format renders a as an RC section that Parse reads back.
func Format(a Asset) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "[%s%s]\n", SectionPrefix, a.ID)
	fmt.Fprintf(&sb, "name = %s\n", a.Name)
	fmt.Fprintf(&sb, "category = %s\n", a.Category)
	fmt.Fprintf(&sb, "spacing_inches = %s\n", formatFloat(a.SpacingInches))
	fmt.Fprintf(&sb, "spacing_pixels = %s\n", formatFloat(a.SpacingPixels))
	fmt.Fprintf(&sb, "diameter_inches = %s\n", formatFloat(a.DiameterInches))
	fmt.Fprintf(&sb, "base_size = %s\n", formatFloat(a.BaseSize))
	fmt.Fprintf(&sb, "color = %s\n", FormatColor(a.Color))
	fmt.Fprintf(&sb, "calibrated = %v\n", a.Calibrated)
	return sb.String()
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
