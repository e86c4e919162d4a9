package catalog

import (
	"image/color"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestParse(t *testing.T) {
	input := `
# comment
ignored = 1

[asset.c9]
name = "C9 Warm"
category = string
spacing_inches = 12
diameter_inches = 1.25
color = #FFD68C

[asset.custom]
category = decor
spacing_pixels = 20
color = gold
calibrated = false

[other]
name = skipped
`
	set, err := Parse(strings.NewReader(input))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	c9, ok := set.AssetByID("c9")
	if !ok {
		t.Fatal("c9 missing")
	}
	if c9.Name != "C9 Warm" || c9.Category != CategoryString || c9.DiameterInches != 1.25 {
		t.Errorf("c9 = %+v", c9)
	}
	if c9.Color != (color.RGBA{0xFF, 0xD6, 0x8C, 0xFF}) {
		t.Errorf("c9 color = %v", c9.Color)
	}
	if !c9.Calibrated || c9.BaseSize != 8 {
		t.Errorf("defaults not applied: %+v", c9)
	}
	custom, _ := set.AssetByID("custom")
	if custom.Calibrated || custom.SpacingPixels != 20 || custom.Category != CategoryDecor {
		t.Errorf("custom = %+v", custom)
	}
	if custom.Color != (color.RGBA{255, 215, 0, 255}) {
		t.Errorf("gold = %v", custom.Color)
	}
	if len(set.Assets()) != 2 {
		t.Errorf("got %d assets, want 2", len(set.Assets()))
	}
	if _, ok := set.AssetByID("missing"); ok {
		t.Error("missing asset should not be found")
	}
}

func TestParseErrors(t *testing.T) {
	tests := []string{
		"[asset.a]\ncategory = garland\n",
		"[asset.a]\nspacing_inches = -1\n",
		"[asset.a]\ncolor = #12\n",
		"[asset.a]\ncolor = notacolor\n",
		"[asset.a]\ncalibrated = maybe\n",
	}
	for _, in := range tests {
		if _, err := Parse(strings.NewReader(in)); err == nil {
			t.Errorf("Parse(%q) should fail", in)
		}
	}
}

func TestFormatRoundTrip(t *testing.T) {
	a := Asset{
		ID: "x", Name: "X Lights", Category: CategorySingular,
		SpacingInches: 9, SpacingPixels: 30, DiameterInches: 2.5, BaseSize: 12,
		Color: color.RGBA{1, 2, 3, 128}, Calibrated: true,
	}
	set, err := Parse(strings.NewReader(Format(a)))
	if err != nil {
		t.Fatal(err)
	}
	got, ok := set.AssetByID("x")
	if !ok || got != a {
		t.Errorf("round trip = %+v, want %+v", got, a)
	}
}

func TestEmbeddedCatalog(t *testing.T) {
	set := Embedded()
	for _, c := range []Category{CategoryString, CategorySingular, CategoryDecor} {
		if _, ok := set.First(c); !ok {
			t.Errorf("no %s asset in the embedded catalog", c)
		}
	}
	a, ok := set.AssetByID("icicle-style")
	if !ok || a.Calibrated {
		t.Errorf("icicle-style = %+v, %v", a, ok)
	}
}

func TestLoaderLookupOrder(t *testing.T) {
	dir := t.TempDir()
	l := &Loader{ConfigDir: dir}
	content := "[asset.mine]\nname = Mine\n"
	if err := os.WriteFile(filepath.Join(dir, "mine.rc"), []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	set, err := l.Load("mine")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if _, ok := set.AssetByID("mine"); !ok {
		t.Error("asset from config dir missing")
	}

	if err := os.WriteFile(filepath.Join(dir, "extra-more.rc"), []byte("[asset.more]\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	full, err := l.LoadWithExtras("")
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := full.AssetByID("more"); !ok {
		t.Error("extra catalog not merged")
	}
	if _, ok := full.AssetByID("c9-warm"); !ok {
		t.Error("default catalog not loaded")
	}

	if _, err := l.Load("nope"); err == nil {
		t.Error("expected error for unknown catalog")
	}
}

func TestByCategorySorted(t *testing.T) {
	set := NewSet(
		Asset{ID: "b", Name: "Beta", Category: CategoryDecor},
		Asset{ID: "a", Name: "Alpha", Category: CategoryDecor},
		Asset{ID: "s", Name: "S", Category: CategoryString},
	)
	got := set.ByCategory(CategoryDecor)
	if len(got) != 2 || got[0].ID != "a" {
		t.Errorf("ByCategory = %+v", got)
	}
}
