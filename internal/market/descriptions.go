package market

// Sectors lists the sector categories every panel groups by, in display order.
func Sectors() []string {
	return []string{"tech", "healthcare", "energy", "finance", "consumer", "industrial"}
}

// SectorTickers maps each sector to representative symbols. Used by the
// synthetic generator so sector/ticker pairs stay consistent across panels.
var SectorTickers = map[string][]string{
	"tech":       {"AAPL", "MSFT", "GOOGL", "META", "NVDA"},
	"healthcare": {"JNJ", "PFE", "UNH", "ABBV", "MRK"},
	"energy":     {"XOM", "CVX", "COP", "SLB", "EOG"},
	"finance":    {"JPM", "BAC", "GS", "MS", "WFC"},
	"consumer":   {"AMZN", "WMT", "PG", "KO", "PEP"},
	"industrial": {"GE", "BA", "CAT", "HON", "MMM"},
}

// SectorDescriptions returns the tooltip text served by the sectors endpoint.
func SectorDescriptions() map[string]string {
	return map[string]string{
		"tech":       "Technology sector including software, hardware, and semiconductor companies",
		"healthcare": "Healthcare sector including pharmaceuticals, biotech, and medical devices",
		"energy":     "Energy sector including oil & gas, renewable energy, and utilities",
		"finance":    "Financial sector including banks, insurance, and investment firms",
		"consumer":   "Consumer sector including retail, food & beverage, and personal goods",
		"industrial": "Industrial sector including manufacturing, aerospace, and defense",
	}
}

// GreekDescriptions returns the tooltip text served by the greek-flow
// descriptions endpoint, keyed by metric name.
func GreekDescriptions() map[string]string {
	return map[string]string{
		"dir_delta_flow":     "Measures the net directional exposure from options trading. Positive values indicate bullish sentiment (calls bought/puts sold), negative values indicate bearish sentiment.",
		"dir_vega_flow":      "Measures the net volatility exposure. Positive values indicate expectations of increased volatility, negative values suggest decreased volatility.",
		"otm_dir_delta_flow": "Similar to dir_delta_flow but only considers out-of-the-money options, which can indicate more speculative trading.",
		"otm_dir_vega_flow":  "Volatility exposure from out-of-the-money options only, often used to gauge speculative volatility trading.",
	}
}

// InsiderRoles lists the insider titles the insider-trading panel filters on.
func InsiderRoles() []string {
	return []string{"CEO", "CFO", "CTO", "Director", "VP"}
}

// CongressMembers lists the placeholder reporter names used by the synthetic
// generator.
func CongressMembers() []string {
	return []string{"John Smith", "Jane Doe", "Robert Johnson", "Mary Williams"}
}
