package models

// DraftPickValuation is derived on demand from a pick and the current year.
type DraftPickValuation struct {
	Round                 int     `json:"round"`
	Year                  int     `json:"year"`
	YearsInFuture         int     `json:"years_in_future"`
	NominalValue          float64 `json:"nominal_value"`
	DiscountRate          float64 `json:"discount_rate"`
	DiscountedValue       float64 `json:"discounted_value"`
	EquivalentCurrentPick int     `json:"equivalent_current_pick"` // a current-year round
}
