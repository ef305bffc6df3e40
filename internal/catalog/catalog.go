// Package catalog holds the immutable registry of metric definitions.
// The registry is loaded once at process start and read concurrently by
// unlimited requests; nothing mutates it at run time.
package catalog

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"

	"github.com/sells-group/locality-lens/internal/model"
)

// Kind is the computation rule a metric uses.
type Kind string

const (
	KindCount     Kind = "count"
	KindDistance  Kind = "distance"
	KindArea      Kind = "area"
	KindDensity   Kind = "density"
	KindComposite Kind = "composite"
)

// Definition describes one metric: what it measures, which canonical POI
// categories feed it, and how it is computed.
type Definition struct {
	ID          string
	Name        string
	Description string
	Category    string
	Kind        Kind
	Unit        string

	// RadiusKM is the metric's own search radius. For distance metrics it is
	// the maximum search bound beyond which the value is null.
	RadiusKM float64

	Keywords    []string
	RelevantFor []string
	Priority    string

	// SourceCategories are the canonical POI categories the metric draws
	// from. Empty means "all records including unclassified" (total-density
	// metrics) or "not POI-backed" (road metrics, pure composites).
	SourceCategories []model.Category

	// Dependencies names metrics that must be computed first. Only composite
	// metrics declare dependencies; a cycle is a catalog configuration error.
	Dependencies []string
}

// Catalog is the read-only metric registry.
type Catalog struct {
	defs  map[string]Definition
	order []string // topological order over dependencies, deterministic
}

// Load builds the registry from the built-in definitions, verifying
// referential integrity and dependency acyclicity.
func Load() (*Catalog, error) {
	return build(builtinDefinitions())
}

// LoadWithOverrides applies a YAML override file on top of the built-in
// definitions. Only radius and priority may be overridden.
func LoadWithOverrides(path string) (*Catalog, error) {
	defs := builtinDefinitions()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "catalog: read overrides %s", path)
	}

	var overrides map[string]struct {
		RadiusKM *float64 `yaml:"radius_km"`
		Priority *string  `yaml:"priority"`
	}
	if err := yaml.Unmarshal(data, &overrides); err != nil {
		return nil, eris.Wrap(err, "catalog: parse overrides")
	}

	for i := range defs {
		o, ok := overrides[defs[i].ID]
		if !ok {
			continue
		}
		if o.RadiusKM != nil {
			if *o.RadiusKM <= 0 {
				return nil, eris.Errorf("catalog: override for %s: radius must be positive", defs[i].ID)
			}
			defs[i].RadiusKM = *o.RadiusKM
		}
		if o.Priority != nil {
			defs[i].Priority = *o.Priority
		}
	}

	return build(defs)
}

func build(defs []Definition) (*Catalog, error) {
	c := &Catalog{defs: make(map[string]Definition, len(defs))}
	for _, d := range defs {
		if _, dup := c.defs[d.ID]; dup {
			return nil, eris.Errorf("catalog: duplicate metric id %s", d.ID)
		}
		c.defs[d.ID] = d
	}

	for _, d := range defs {
		for _, dep := range d.Dependencies {
			if _, ok := c.defs[dep]; !ok {
				return nil, eris.Errorf("catalog: %s depends on unknown metric %s", d.ID, dep)
			}
		}
	}

	for profile, ids := range profileDefaults {
		for _, id := range ids {
			if _, ok := c.defs[id]; !ok {
				return nil, eris.Errorf("catalog: profile %q default references unknown metric %s", profile, id)
			}
		}
	}

	order, err := topoSort(defs)
	if err != nil {
		return nil, err
	}
	c.order = order
	return c, nil
}

// topoSort returns all metric ids in a deterministic dependency-respecting
// order (Kahn's algorithm with lexicographic tie-breaking).
func topoSort(defs []Definition) ([]string, error) {
	indegree := make(map[string]int, len(defs))
	dependents := make(map[string][]string, len(defs))
	for _, d := range defs {
		indegree[d.ID] = len(d.Dependencies)
		for _, dep := range d.Dependencies {
			dependents[dep] = append(dependents[dep], d.ID)
		}
	}

	var ready []string
	for id, n := range indegree {
		if n == 0 {
			ready = append(ready, id)
		}
	}
	sort.Strings(ready)

	order := make([]string, 0, len(defs))
	for len(ready) > 0 {
		id := ready[0]
		ready = ready[1:]
		order = append(order, id)

		next := dependents[id]
		sort.Strings(next)
		for _, dep := range next {
			indegree[dep]--
			if indegree[dep] == 0 {
				ready = append(ready, dep)
			}
		}
		sort.Strings(ready)
	}

	if len(order) != len(defs) {
		var cyclic []string
		for id, n := range indegree {
			if n > 0 {
				cyclic = append(cyclic, id)
			}
		}
		sort.Strings(cyclic)
		return nil, eris.Errorf("catalog: dependency cycle involving %s", strings.Join(cyclic, ", "))
	}
	return order, nil
}

// Get returns the definition for id.
func (c *Catalog) Get(id string) (Definition, bool) {
	d, ok := c.defs[id]
	return d, ok
}

// All returns every metric id in dependency order.
func (c *Catalog) All() []string {
	out := make([]string, len(c.order))
	copy(out, c.order)
	return out
}

// Len returns the number of registered metrics.
func (c *Catalog) Len() int { return len(c.defs) }

// ByCategory returns ids of metrics in the given display category, sorted.
func (c *Catalog) ByCategory(category string) []string {
	var out []string
	for id, d := range c.defs {
		if d.Category == category {
			out = append(out, id)
		}
	}
	sort.Strings(out)
	return out
}

// Validate splits ids into known and unknown sets, preserving order and
// dropping duplicates.
func (c *Catalog) Validate(ids []string) (known, unknown []string) {
	seen := make(map[string]bool, len(ids))
	for _, id := range ids {
		if seen[id] {
			continue
		}
		seen[id] = true
		if _, ok := c.defs[id]; ok {
			known = append(known, id)
		} else {
			unknown = append(unknown, id)
		}
	}
	return known, unknown
}

// WithDependencies expands ids with every transitive dependency and returns
// the expanded set in dependency-respecting order.
func (c *Catalog) WithDependencies(ids []string) []string {
	need := make(map[string]bool, len(ids))
	var visit func(id string)
	visit = func(id string) {
		if need[id] {
			return
		}
		d, ok := c.defs[id]
		if !ok {
			return
		}
		need[id] = true
		for _, dep := range d.Dependencies {
			visit(dep)
		}
	}
	for _, id := range ids {
		visit(id)
	}

	out := make([]string, 0, len(need))
	for _, id := range c.order {
		if need[id] {
			out = append(out, id)
		}
	}
	return out
}

// DefaultsForProfile returns the ranked default metric ids for a profile.
// Matching is forgiving: exact name, substring either way, then keyword
// buckets, then the Custom fallback.
func (c *Catalog) DefaultsForProfile(profile string) []string {
	p := strings.TrimSpace(profile)
	if ids, ok := profileDefaults[p]; ok {
		return append([]string(nil), ids...)
	}

	lower := strings.ToLower(p)
	for name, ids := range profileDefaults {
		nl := strings.ToLower(name)
		if lower != "" && (strings.Contains(nl, lower) || strings.Contains(lower, nl)) {
			return append([]string(nil), ids...)
		}
	}

	switch {
	case strings.Contains(lower, "bachelor"), strings.Contains(lower, "young"):
		return append([]string(nil), profileDefaults[ProfileBachelor]...)
	case strings.Contains(lower, "family"), strings.Contains(lower, "kids"):
		return append([]string(nil), profileDefaults[ProfileFamily]...)
	case strings.Contains(lower, "student"):
		return append([]string(nil), profileDefaults[ProfileStudent]...)
	case strings.Contains(lower, "senior"):
		return append([]string(nil), profileDefaults[ProfileSenior]...)
	case strings.Contains(lower, "work"), strings.Contains(lower, "professional"):
		return append([]string(nil), profileDefaults[ProfileWorking]...)
	}
	return append([]string(nil), profileDefaults[ProfileCustom]...)
}

// Profiles returns the known profile names, sorted.
func (c *Catalog) Profiles() []string {
	out := make([]string, 0, len(profileDefaults))
	for name := range profileDefaults {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// PromptCatalog formats the registry for the intent-selector prompt:
// one "id: Name - Description" line per metric, minimal on purpose so the
// model cannot latch onto implementation details.
func (c *Catalog) PromptCatalog() string {
	var b strings.Builder
	for _, id := range c.order {
		d := c.defs[id]
		fmt.Fprintf(&b, "%s: %s - %s\n", d.ID, d.Name, d.Description)
	}
	return strings.TrimRight(b.String(), "\n")
}

// RadiiByCategory returns, for the given metric ids (dependencies included),
// the maximum radius in meters needed per canonical POI category. Metrics
// with no source categories contribute their radius to every category the
// selection already touches via the total-density scan, represented by the
// model.CategoryUnclassified key.
func (c *Catalog) RadiiByCategory(ids []string) map[model.Category]float64 {
	out := make(map[model.Category]float64)
	for _, id := range c.WithDependencies(ids) {
		d, ok := c.defs[id]
		if !ok {
			continue
		}
		meters := d.RadiusKM * 1000
		if len(d.SourceCategories) == 0 {
			if d.Kind == KindDensity || d.Kind == KindComposite {
				if meters > out[model.CategoryUnclassified] {
					out[model.CategoryUnclassified] = meters
				}
			}
			continue
		}
		for _, cat := range d.SourceCategories {
			if meters > out[cat] {
				out[cat] = meters
			}
		}
	}
	return out
}
