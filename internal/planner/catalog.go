package planner

import (
	_ "embed"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed catalog.yaml
var catalogYAML []byte

// Catalog is the static sector configuration the planner works from.
type Catalog struct {
	DefaultSector  string        `yaml:"default_sector"`
	FallbackSector string        `yaml:"fallback_sector"`
	Plan           PlanTemplate  `yaml:"plan"`
	Sectors        []SectorEntry `yaml:"sectors"`
}

type PlanTemplate struct {
	Subquestions   []string `yaml:"subquestions"`
	Sources        []string `yaml:"sources"`
	Depth          string   `yaml:"depth"`
	ExpectedOutput string   `yaml:"expected_output"`
}

type SectorEntry struct {
	Name     string   `yaml:"name"`
	Keywords []string `yaml:"keywords"`
	Tickers  []string `yaml:"tickers"`
}

// ParseCatalog decodes and validates a catalog document.
func ParseCatalog(b []byte) (Catalog, error) {
	var c Catalog
	if err := yaml.Unmarshal(b, &c); err != nil {
		return Catalog{}, fmt.Errorf("decode catalog: %w", err)
	}
	if err := c.Validate(); err != nil {
		return Catalog{}, err
	}
	return c, nil
}

func (c Catalog) Validate() error {
	if len(c.Sectors) == 0 {
		return fmt.Errorf("catalog: at least one sector required")
	}
	seen := make(map[string]struct{}, len(c.Sectors))
	for i, s := range c.Sectors {
		name := strings.TrimSpace(s.Name)
		if name == "" {
			return fmt.Errorf("catalog: sectors[%d].name required", i)
		}
		if name != strings.ToUpper(name) {
			return fmt.Errorf("catalog: sector %q must be upper case", name)
		}
		if _, dup := seen[name]; dup {
			return fmt.Errorf("catalog: duplicate sector %q", name)
		}
		seen[name] = struct{}{}
		if len(s.Tickers) == 0 {
			return fmt.Errorf("catalog: sector %q has no tickers", name)
		}
	}
	if _, ok := seen[c.DefaultSector]; !ok {
		return fmt.Errorf("catalog: default_sector %q not in sectors", c.DefaultSector)
	}
	if _, ok := seen[c.FallbackSector]; !ok {
		return fmt.Errorf("catalog: fallback_sector %q not in sectors", c.FallbackSector)
	}
	return nil
}

func (c Catalog) sector(name string) (SectorEntry, bool) {
	for _, s := range c.Sectors {
		if s.Name == name {
			return s, true
		}
	}
	return SectorEntry{}, false
}
