package model

// BillingCycle selects how often a subscription is charged.
type BillingCycle string

const (
	BillingMonthly BillingCycle = "monthly"
	BillingAnnual  BillingCycle = "annual"
)

// Valid reports whether c is a known cycle. The empty cycle is accepted by
// callers that treat it as "not specified".
func (c BillingCycle) Valid() bool {
	return c == BillingMonthly || c == BillingAnnual
}

// Plan is a presentational pricing tier. Prices are in whole US dollars;
// a nil MonthlyPrice means "contact sales".
//
// PriceRefs maps a billing cycle to the payment provider's price reference.
// Plans without a paid checkout (free, enterprise) have no refs.
type Plan struct {
	ID             string                  `json:"id"             yaml:"id"`
	Name           string                  `json:"name"           yaml:"name"`
	Description    string                  `json:"description"    yaml:"description"`
	MonthlyPrice   *int                    `json:"monthly_price"  yaml:"monthly_price"`
	AnnualDiscount int                     `json:"annual_discount_percent" yaml:"annual_discount_percent"`
	Features       []string                `json:"features"       yaml:"features"`
	Popular        bool                    `json:"popular"        yaml:"popular"`
	PriceRefs      map[BillingCycle]string `json:"price_refs,omitempty" yaml:"price_refs"`
}

// AnnualMonthlyPrice is the per-month price shown for annual billing.
// The discount is display-only: checkout charges whatever the price
// reference says.
func (p Plan) AnnualMonthlyPrice() *int {
	if p.MonthlyPrice == nil {
		return nil
	}
	v := *p.MonthlyPrice * (100 - p.AnnualDiscount) / 100
	return &v
}
