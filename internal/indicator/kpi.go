// File: internal/indicator/kpi.go
package indicator

// KPI binds a dashboard card to its indicator and aggregation.
type KPI struct {
	Key       string `json:"key"`
	Label     string `json:"label"`
	Indicator string `json:"indicator"`
	Fn        Fn     `json:"fn"`
	Unit      string `json:"unit"`
}

// KPIs is the card catalog in display order.
var KPIs = []KPI{
	{Key: "total_catch", Label: "Total catch", Indicator: "total_catch_tonnes", Fn: Sum, Unit: "t"},
	{Key: "aquaculture", Label: "Aquaculture production", Indicator: "aquaculture_production_tonnes", Fn: Sum, Unit: "t"},
	{Key: "fishers", Label: "Fishers employed", Indicator: "fishers_employed", Fn: Sum, Unit: "people"},
	{Key: "artisanal_vessels", Label: "Artisanal vessels", Indicator: "artisanal_vessels", Fn: Sum, Unit: "vessels"},
	{Key: "fisher_income", Label: "Average fisher income", Indicator: "avg_fisher_income_usd", Fn: Average, Unit: "USD"},
	{Key: "exports", Label: "Fish exports", Indicator: "fish_exports_usd_m", Fn: Sum, Unit: "USD m"},
	{Key: "licensing", Label: "Vessel licensing enforced", Indicator: "vessel_licensing_enforced", Fn: PercentTrue, Unit: "%"},
	{Key: "management_plan", Label: "Management plan adopted", Indicator: "management_plan_adopted", Fn: PercentTrue, Unit: "%"},
}

// KPIValue is one computed card.
type KPIValue struct {
	KPI
	Value   float64 `json:"value"`
	Display string  `json:"display"`
}

// ComputeKPIs evaluates the catalog over the rows of year.
func ComputeKPIs(records []Record, year int) []KPIValue {
	out := make([]KPIValue, 0, len(KPIs))
	for _, k := range KPIs {
		v := Aggregate(records, year, k.Indicator, k.Fn)
		display := formatFloat(v)
		if k.Fn == PercentTrue {
			display = FormatPercent(v)
		}
		out = append(out, KPIValue{KPI: k, Value: v, Display: display})
	}
	return out
}
