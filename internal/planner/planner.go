package planner

import (
	"strings"

	"github.com/mohammad-safakhou/deepresearch/models"
)

const autoSector = "auto"

type Planner struct {
	catalog Catalog
}

// New loads the embedded sector catalog.
func New() (*Planner, error) {
	c, err := ParseCatalog(catalogYAML)
	if err != nil {
		return nil, err
	}
	return &Planner{catalog: c}, nil
}

func NewWithCatalog(c Catalog) (*Planner, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &Planner{catalog: c}, nil
}

// Classify picks the sectors for a query. An explicit sector other than
// "auto" wins; otherwise every catalog sector with a keyword contained in the
// lower-cased query matches, in catalog order.
func (p *Planner) Classify(query, sector string) []string {
	sector = strings.TrimSpace(sector)
	if sector != "" && !strings.EqualFold(sector, autoSector) {
		return []string{strings.ToUpper(sector)}
	}
	q := strings.ToLower(query)
	var out []string
	for _, s := range p.catalog.Sectors {
		for _, kw := range s.Keywords {
			if kw != "" && strings.Contains(q, strings.ToLower(kw)) {
				out = append(out, s.Name)
				break
			}
		}
	}
	if len(out) == 0 {
		return []string{p.catalog.DefaultSector}
	}
	return out
}

// MakePlan builds the canned plan for query. PlanID is left for the store to assign.
func (p *Planner) MakePlan(query, sector string) models.Plan {
	t := p.catalog.Plan
	return models.Plan{
		Sectors:        p.Classify(query, sector),
		Subquestions:   append([]string(nil), t.Subquestions...),
		Sources:        append([]string(nil), t.Sources...),
		Depth:          t.Depth,
		ExpectedOutput: t.ExpectedOutput,
	}
}

// Tickers returns the tickers of the first catalog sector present in
// sectors, or the fallback sector's tickers when none is.
func (p *Planner) Tickers(sectors []string) []string {
	for _, s := range p.catalog.Sectors {
		for _, want := range sectors {
			if s.Name == want {
				return append([]string(nil), s.Tickers...)
			}
		}
	}
	fb, _ := p.catalog.sector(p.catalog.FallbackSector)
	return append([]string(nil), fb.Tickers...)
}
