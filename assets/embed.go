package assets

import (
	"embed"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"
	"sync"
)

// Embedded asset catalogs for glowplan.
//
//go:embed catalog/*.rc
var embeddedCatalogs embed.FS

var (
	loadCatalogsOnce sync.Once
	loadCatalogsErr  error

	catalogData = map[string][]byte{}
)

func loadCatalogs() {
	entries, err := fs.ReadDir(embeddedCatalogs, "catalog")
	if err != nil {
		loadCatalogsErr = err
		return
	}
	for _, entry := range entries {
		name := entry.Name()
		if !strings.HasSuffix(name, ".rc") {
			continue
		}
		data, err := embeddedCatalogs.ReadFile(path.Join("catalog", name))
		if err != nil {
			loadCatalogsErr = err
			return
		}
		catalogData[strings.TrimSuffix(name, ".rc")] = data
	}
}

func ensureCatalogs() error {
	loadCatalogsOnce.Do(loadCatalogs)
	return loadCatalogsErr
}

// Catalog returns a copy of the embedded catalog file called name, without
// its .rc extension.
func Catalog(name string) ([]byte, error) {
	if err := ensureCatalogs(); err != nil {
		return nil, err
	}
	data, ok := catalogData[strings.TrimSuffix(name, ".rc")]
	if !ok {
		return nil, fmt.Errorf("catalog %q not embedded", name)
	}
	out := make([]byte, len(data))
	copy(out, data)
	return out, nil
}

// CatalogNames lists the embedded catalogs.
func CatalogNames() []string {
	if err := ensureCatalogs(); err != nil {
		return nil
	}
	names := make([]string, 0, len(catalogData))
	for name := range catalogData {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
