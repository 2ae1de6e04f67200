package catalogue

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/tankwars/server/internal/model"
)

// LoadMaps scans dir for *.json files, each describing one model.Map.
func LoadMaps(dir string) ([]model.Map, error) {
	paths, err := filepath.Glob(filepath.Join(dir, "*.json"))
	if err != nil {
		return nil, fmt.Errorf("globbing map catalogue %s: %w", dir, err)
	}

	maps := make([]model.Map, 0, len(paths))
	for _, p := range paths {
		data, err := os.ReadFile(p)
		if err != nil {
			return nil, fmt.Errorf("reading map file %s: %w", p, err)
		}
		var m model.Map
		if err := json.Unmarshal(data, &m); err != nil {
			return nil, fmt.Errorf("parsing map file %s: %w", p, err)
		}
		maps = append(maps, m)
	}
	return maps, nil
}
