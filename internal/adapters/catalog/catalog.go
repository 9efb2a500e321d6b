package catalog

import (
	"delivery-delay-service/internal/domain"
	_ "embed"
	"errors"
	"fmt"
	"os"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed default_catalog.yaml
var defaultCatalog []byte

type actionSet struct {
	Actions []actionEntry `yaml:"actions"`
}

type actionEntry struct {
	ID                 string  `yaml:"id"`
	Title              string  `yaml:"title"`
	Template           string  `yaml:"template"`
	ReductionPct       float64 `yaml:"reduction_pct"`
	ImplementationCost float64 `yaml:"implementation_cost"`
	When               struct {
		All []domain.Condition `yaml:"all"`
	} `yaml:"when"`
	Adjust []domain.Adjustment `yaml:"adjust"`
}

// Default returns the embedded catalogue.
func Default() ([]domain.CorrectiveAction, error) {
	actions, err := Parse(defaultCatalog)
	if err != nil {
		return nil, fmt.Errorf("default catalog: %w", err)
	}
	return actions, nil
}

// Load reads a catalogue file, or the embedded default when path is empty.
func Load(path string) ([]domain.CorrectiveAction, error) {
	if strings.TrimSpace(path) == "" {
		return Default()
	}
	payload, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog %q: %w", path, err)
	}
	actions, err := Parse(payload)
	if err != nil {
		return nil, fmt.Errorf("catalog %q: %w", path, err)
	}
	return actions, nil
}

var (
	conditionOps  = map[string]bool{"gte": true, "lte": true, "gt": true, "lt": true, "eq": true, "ne": true}
	adjustOps     = map[string]bool{"mul": true, "set": true, "add": true}
	adjustTargets = map[string]bool{
		"distance_km":            true,
		"weather_severity":       true,
		"priority_level":         true,
		"historical_reliability": true,
	}
)

// Parse decodes and validates a YAML catalogue. At least one action must
// have no conditions so every recommendation is non-empty.
func Parse(payload []byte) ([]domain.CorrectiveAction, error) {
	var set actionSet
	if err := yaml.Unmarshal(payload, &set); err != nil {
		return nil, fmt.Errorf("parse catalog: %w", err)
	}
	if len(set.Actions) == 0 {
		return nil, errors.New("parse catalog: no actions")
	}

	seen := make(map[string]struct{}, len(set.Actions))
	unconditional := false
	out := make([]domain.CorrectiveAction, 0, len(set.Actions))
	for i, e := range set.Actions {
		id := strings.TrimSpace(e.ID)
		if id == "" {
			return nil, fmt.Errorf("parse catalog: action #%d has no id", i+1)
		}
		if _, dup := seen[id]; dup {
			return nil, fmt.Errorf("parse catalog: duplicate action id %q", id)
		}
		seen[id] = struct{}{}

		if e.ReductionPct < 0 || e.ReductionPct > 1 {
			return nil, fmt.Errorf("parse catalog: %s: reduction_pct %v outside [0,1]", id, e.ReductionPct)
		}
		if e.ImplementationCost < 0 {
			return nil, fmt.Errorf("parse catalog: %s: negative implementation_cost", id)
		}
		for _, c := range e.When.All {
			if !slices.Contains(domain.ContextFields, c.Field) {
				return nil, fmt.Errorf("parse catalog: %s: unknown condition field %q", id, c.Field)
			}
			if !conditionOps[strings.ToLower(c.Op)] {
				return nil, fmt.Errorf("parse catalog: %s: unknown condition op %q", id, c.Op)
			}
		}
		for _, a := range e.Adjust {
			if !adjustOps[a.Op] {
				return nil, fmt.Errorf("parse catalog: %s: unknown adjust op %q", id, a.Op)
			}
			if !adjustTargets[a.Feature] {
				return nil, fmt.Errorf("parse catalog: %s: unknown adjust feature %q", id, a.Feature)
			}
		}
		if len(e.When.All) == 0 {
			unconditional = true
		}

		title := e.Title
		if title == "" {
			title = id
		}
		out = append(out, domain.CorrectiveAction{
			ID:                 id,
			Title:              title,
			Template:           strings.TrimSpace(e.Template),
			ReductionPct:       e.ReductionPct,
			ImplementationCost: e.ImplementationCost,
			When:               e.When.All,
			Adjust:             e.Adjust,
		})
	}
	if !unconditional {
		return nil, errors.New("parse catalog: at least one action must apply unconditionally")
	}
	return out, nil
}
