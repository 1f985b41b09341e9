package catalog

import (
	_ "embed"
	"fmt"
	"sort"
	"strings"

	"github.com/samber/lo"
	"gopkg.in/yaml.v3"
)

//go:embed standards.yaml
var defaultCatalog []byte

// ComplianceStandard is one entry of the static standards catalog.
type ComplianceStandard struct {
	ID          string `yaml:"id" json:"id"`
	Name        string `yaml:"name" json:"name"`
	Description string `yaml:"description" json:"description"`
	Icon        string `yaml:"icon" json:"icon"`
	Color       string `yaml:"color" json:"color"`
}

// PriorityLevel describes how a gap priority is labelled and ranked.
// Lower rank sorts first.
type PriorityLevel struct {
	Key   string `yaml:"key" json:"key"`
	Label string `yaml:"label" json:"label"`
	Color string `yaml:"color" json:"color"`
	Rank  int    `yaml:"rank" json:"rank"`
}

// Catalog is the read-only table of standards and priority levels.
// It is built once by Load and shared by the services that need it.
type Catalog struct {
	standards  []ComplianceStandard
	byID       map[string]ComplianceStandard
	priorities []PriorityLevel
	byPriority map[string]PriorityLevel
}

type catalogFile struct {
	Standards  []ComplianceStandard `yaml:"standards"`
	Priorities []PriorityLevel      `yaml:"priorities"`
}

// Load parses the embedded catalog.
func Load() (*Catalog, error) {
	return Parse(defaultCatalog)
}

// Parse builds a Catalog from YAML bytes.
func Parse(data []byte) (*Catalog, error) {
	var f catalogFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse catalog: %w", err)
	}
	if len(f.Standards) == 0 {
		return nil, fmt.Errorf("catalog has no standards")
	}
	if len(f.Priorities) == 0 {
		return nil, fmt.Errorf("catalog has no priority levels")
	}

	c := &Catalog{
		byID:       make(map[string]ComplianceStandard, len(f.Standards)),
		byPriority: make(map[string]PriorityLevel, len(f.Priorities)),
	}
	for _, s := range f.Standards {
		id := strings.ToLower(strings.TrimSpace(s.ID))
		if id == "" {
			return nil, fmt.Errorf("catalog standard %q has no id", s.Name)
		}
		if _, dup := c.byID[id]; dup {
			return nil, fmt.Errorf("duplicate standard id %q", id)
		}
		s.ID = id
		c.byID[id] = s
		c.standards = append(c.standards, s)
	}
	for _, p := range f.Priorities {
		if _, dup := c.byPriority[p.Key]; dup {
			return nil, fmt.Errorf("duplicate priority key %q", p.Key)
		}
		c.byPriority[p.Key] = p
		c.priorities = append(c.priorities, p)
	}
	sort.SliceStable(c.priorities, func(i, j int) bool { return c.priorities[i].Rank < c.priorities[j].Rank })
	return c, nil
}

// Standards returns a copy of every catalog standard in file order.
func (c *Catalog) Standards() []ComplianceStandard {
	out := make([]ComplianceStandard, len(c.standards))
	copy(out, c.standards)
	return out
}

// Standard looks up a standard by id (case-insensitive).
func (c *Catalog) Standard(id string) (ComplianceStandard, bool) {
	s, ok := c.byID[strings.ToLower(strings.TrimSpace(id))]
	return s, ok
}

// ValidateIDs reports the first unknown id, if any.
func (c *Catalog) ValidateIDs(ids []string) error {
	unknown := lo.Filter(ids, func(id string, _ int) bool {
		_, ok := c.Standard(id)
		return !ok
	})
	if len(unknown) > 0 {
		return fmt.Errorf("unknown compliance standard(s): %s", strings.Join(unknown, ", "))
	}
	return nil
}

// Names maps ids to display names, keeping unknown ids as given.
func (c *Catalog) Names(ids []string) []string {
	return lo.Map(ids, func(id string, _ int) string {
		if s, ok := c.Standard(id); ok {
			return s.Name
		}
		return id
	})
}

// Priorities returns the priority levels ordered by rank.
func (c *Catalog) Priorities() []PriorityLevel {
	out := make([]PriorityLevel, len(c.priorities))
	copy(out, c.priorities)
	return out
}

// Priority looks up a priority level by key.
func (c *Catalog) Priority(key string) (PriorityLevel, bool) {
	p, ok := c.byPriority[key]
	return p, ok
}

// PriorityRank returns the sort rank of a priority; unknown keys sort last.
func (c *Catalog) PriorityRank(key string) int {
	if p, ok := c.byPriority[key]; ok {
		return p.Rank
	}
	return len(c.priorities)
}
