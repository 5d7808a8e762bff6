package billing

import (
	_ "embed"
	"fmt"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/sakif/prompt2json/internal/model"
)

//go:embed plans.yaml
var defaultPlans []byte

// Catalog is the ordered list of pricing tiers.
type Catalog struct {
	Plans []model.Plan `yaml:"plans" json:"plans"`
}

// LoadCatalog reads the catalog from path, or the embedded default when
// path is empty.
func LoadCatalog(path string) (*Catalog, error) {
	data := defaultPlans
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("billing: reading plans file: %w", err)
		}
		data = b
	}
	return ParseCatalog(data)
}

// ParseCatalog decodes and validates a YAML catalog.
func ParseCatalog(data []byte) (*Catalog, error) {
	var c Catalog
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("billing: parsing plans: %w", err)
	}

	seen := make(map[string]bool, len(c.Plans))
	for _, p := range c.Plans {
		if strings.TrimSpace(p.ID) == "" {
			return nil, fmt.Errorf("billing: plan %q has no id", p.Name)
		}
		if seen[p.ID] {
			return nil, fmt.Errorf("billing: duplicate plan id %q", p.ID)
		}
		seen[p.ID] = true

		for cycle := range p.PriceRefs {
			if !cycle.Valid() {
				return nil, fmt.Errorf("billing: plan %q has unknown billing cycle %q", p.ID, cycle)
			}
		}
	}

	return &c, nil
}

// Plan returns the plan with id.
func (c *Catalog) Plan(id string) (model.Plan, bool) {
	for _, p := range c.Plans {
		if p.ID == id {
			return p, true
		}
	}
	return model.Plan{}, false
}

// PriceRefIssue describes a plan whose billing cycles share one price
// reference, so choosing annual still charges the monthly price.
type PriceRefIssue struct {
	PlanID   string
	PriceRef string
	Cycles   []model.BillingCycle
}

func (i PriceRefIssue) String() string {
	cycles := make([]string, len(i.Cycles))
	for n, c := range i.Cycles {
		cycles[n] = string(c)
	}
	return fmt.Sprintf("plan %s uses price %s for cycles %s", i.PlanID, i.PriceRef, strings.Join(cycles, ", "))
}

// DuplicatePriceRefs reports shared price references. It does not change
// the catalog: the reference that is actually charged is a billing
// decision, not something to guess here.
func (c *Catalog) DuplicatePriceRefs() []PriceRefIssue {
	var issues []PriceRefIssue
	for _, p := range c.Plans {
		byRef := make(map[string][]model.BillingCycle)
		for cycle, ref := range p.PriceRefs {
			byRef[ref] = append(byRef[ref], cycle)
		}

		refs := make([]string, 0, len(byRef))
		for ref := range byRef {
			refs = append(refs, ref)
		}
		sort.Strings(refs)

		for _, ref := range refs {
			cycles := byRef[ref]
			if len(cycles) < 2 {
				continue
			}
			sort.Slice(cycles, func(i, j int) bool { return cycles[i] < cycles[j] })
			issues = append(issues, PriceRefIssue{PlanID: p.ID, PriceRef: ref, Cycles: cycles})
		}
	}
	return issues
}
