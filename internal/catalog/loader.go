package catalog

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/example/glowplan/assets"
)

// DefaultName is the embedded catalog used when none is configured.
const DefaultName = "default"

// Loader finds catalogs on disk or in the binary.
type Loader struct {
	ConfigDir string
	SystemDir string
}

// NewLoader creates a Loader with the standard search paths.
func NewLoader() *Loader {
	home, _ := os.UserHomeDir()
	return &Loader{
		ConfigDir: filepath.Join(home, ".config", "glowplan", "catalogs"),
		SystemDir: "/usr/share/glowplan/catalogs",
	}
}

// Load returns the catalog called name. The lookup order is: an existing
// file path, the embedded catalogs, ConfigDir, then SystemDir. An empty name
// loads the default catalog.
func (l *Loader) Load(name string) (*Set, error) {
	if name == "" {
		name = DefaultName
	}

	if _, err := os.Stat(name); err == nil {
		return parseFile(name)
	}

	filename := name
	if !strings.HasSuffix(filename, ".rc") {
		filename += ".rc"
	}

	if data, err := assets.Catalog(filename); err == nil {
		return Parse(bytes.NewReader(data))
	}

	for _, dir := range []string{l.ConfigDir, l.SystemDir} {
		if dir == "" {
			continue
		}
		p := filepath.Join(dir, filename)
		if _, err := os.Stat(p); err == nil {
			return parseFile(p)
		}
	}

	return nil, fmt.Errorf("catalog %q not found", name)
}

// LoadWithExtras loads name and then merges every *.rc file in ConfigDir
// whose base name starts with "extra-".
func (l *Loader) LoadWithExtras(name string) (*Set, error) {
	set, err := l.Load(name)
	if err != nil {
		return nil, err
	}
	if l.ConfigDir == "" {
		return set, nil
	}
	matches, _ := filepath.Glob(filepath.Join(l.ConfigDir, "extra-*.rc"))
	for _, m := range matches {
		extra, err := parseFile(m)
		if err != nil {
			return nil, err
		}
		set.Merge(extra)
	}
	return set, nil
}

func parseFile(p string) (*Set, error) {
	f, err := os.Open(p)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	set, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", p, err)
	}
	return set, nil
}

// Embedded returns the default embedded catalog. It panics if the binary was
// built with a malformed catalog.
func Embedded() *Set {
	set, err := (&Loader{}).Load(DefaultName)
	if err != nil {
		panic(fmt.Sprintf("embedded catalog: %v", err))
	}
	return set
}
