// Package catalogue loads the shared, process-wide, read-only indices
// (component G): tank and map catalogues from JSON files, and the
// polygon/circle body catalogues used to build physics colliders.
package catalogue

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/tankwars/server/internal/model"
)

// LoadTanks scans dir for *.json files, each describing one
// model.TankCatalogueEntry, and returns them ordered by catalogue id.
func LoadTanks(dir string) ([]model.TankCatalogueEntry, error) {
	paths, err := filepath.Glob(filepath.Join(dir, "*.json"))
	if err != nil {
		return nil, fmt.Errorf("globbing tank catalogue %s: %w", dir, err)
	}

	entries := make([]model.TankCatalogueEntry, 0, len(paths))
	for _, p := range paths {
		data, err := os.ReadFile(p)
		if err != nil {
			return nil, fmt.Errorf("reading tank file %s: %w", p, err)
		}
		var entry model.TankCatalogueEntry
		if err := json.Unmarshal(data, &entry); err != nil {
			return nil, fmt.Errorf("parsing tank file %s: %w", p, err)
		}
		entries = append(entries, entry)
	}

	sort.Slice(entries, func(i, j int) bool { return entries[i].ID < entries[j].ID })
	return entries, nil
}

// FindTank returns the catalogue entry with the given id.
func FindTank(catalogue []model.TankCatalogueEntry, id int32) (model.TankCatalogueEntry, bool) {
	for _, e := range catalogue {
		if e.ID == id {
			return e, true
		}
	}
	return model.TankCatalogueEntry{}, false
}
