package market

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"time"
)

// OptionType is the side of an options record.
type OptionType string

const (
	OptionCall OptionType = "call"
	OptionPut  OptionType = "put"
	// OptionAll is only valid in filters, never on records.
	OptionAll OptionType = "all"
)

// Granularity selects the time resolution of a series.
type Granularity string

const (
	GranularityMinute Granularity = "minute"
	GranularityDaily  Granularity = "daily"
)

// DateLayout is the wire format for calendar dates.
const DateLayout = "2006-01-02"

// Dollars is a dollar amount that unmarshals from either a JSON number or a
// quoted numeric string. The upstream API returns premium fields as strings.
type Dollars float64

func (d *Dollars) UnmarshalJSON(b []byte) error {
	b = bytes.Trim(b, `"`)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		*d = 0
		return nil
	}
	v, err := strconv.ParseFloat(string(b), 64)
	if err != nil {
		return fmt.Errorf("parsing dollar amount %q: %w", b, err)
	}
	*d = Dollars(v)
	return nil
}

// PremiumFlow is a single options premium observation, minute- or
// daily-resolution depending on how it was produced.
type PremiumFlow struct {
	Sector        string     `json:"sector"`
	OptionType    OptionType `json:"option_type"`
	Premium       float64    `json:"premium"`
	Volume        int64      `json:"volume"`
	Date          string     `json:"date"`
	Timestamp     time.Time  `json:"timestamp"`
	AvgStrike     float64    `json:"avg_strike"`
	AvgExpiryDays int        `json:"avg_expiry_days"`
}

// TidePoint is one interval of the market-wide net premium tide.
type TidePoint struct {
	Date           string    `json:"date"`
	NetCallPremium Dollars   `json:"net_call_premium"`
	NetPutPremium  Dollars   `json:"net_put_premium"`
	NetVolume      int64     `json:"net_volume"`
	Timestamp      time.Time `json:"timestamp"`
}

// CongressTrade is a disclosed trade by a member of Congress. Amount is the
// midpoint of the disclosed range.
type CongressTrade struct {
	Ticker         string  `json:"ticker"`
	Member         string  `json:"congress_member"`
	TradeType      string  `json:"trade_type"`
	Amount         float64 `json:"amount"`
	TradeDate      string  `json:"trade_date"`
	DisclosureDate string  `json:"disclosure_date"`
}

// GreekFlow is a per-ticker, per-date snapshot of directional greek flows.
type GreekFlow struct {
	Ticker          string  `json:"ticker"`
	Date            string  `json:"date"`
	DirDeltaFlow    Dollars `json:"dir_delta_flow"`
	DirVegaFlow     Dollars `json:"dir_vega_flow"`
	OTMDirDeltaFlow Dollars `json:"otm_dir_delta_flow"`
	OTMDirVegaFlow  Dollars `json:"otm_dir_vega_flow"`
	Volume          int64   `json:"volume"`
}

// EarningsEvent is one reported earnings result.
type EarningsEvent struct {
	Ticker           string  `json:"ticker"`
	Sector           string  `json:"sector"`
	EarningsSurprise float64 `json:"earnings_surprise"`
	PriceMovement    float64 `json:"price_movement"`
	ReportDate       string  `json:"report_date"`
	MarketCap        int64   `json:"market_cap"`
}

// InsiderTrade is a single insider transaction.
type InsiderTrade struct {
	Sector    string  `json:"sector"`
	Ticker    string  `json:"ticker"`
	Role      string  `json:"insider_role"`
	TradeType string  `json:"trade_type"`
	Amount    float64 `json:"amount"`
	TradeDate string  `json:"trade_date"`
}

// marshal check: Dollars must round-trip as a bare number on output.
var _ json.Marshaler = Dollars(0)

// MarshalJSON emits Dollars as a plain JSON number.
func (d Dollars) MarshalJSON() ([]byte, error) {
	return []byte(strconv.FormatFloat(float64(d), 'f', -1, 64)), nil
}
