// Package filter validates and normalizes raw query parameters into an
// immutable Spec before any data is fetched or aggregated.
package filter

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/zomlab/whaleboard/internal/market"
)

// DefaultLookbackDays is the trailing window applied when no date range is
// given. The dashboards render 30 days of history by default.
const DefaultLookbackDays = 30

// InvalidFilterError reports a malformed or inconsistent query parameter.
// It is the only error surfaced to callers as a client error.
type InvalidFilterError struct {
	Field  string
	Reason string
}

func (e *InvalidFilterError) Error() string {
	return fmt.Sprintf("invalid filter %q: %s", e.Field, e.Reason)
}

func invalid(field, format string, args ...any) error {
	return &InvalidFilterError{Field: field, Reason: fmt.Sprintf(format, args...)}
}

// Spec holds normalized request filters. Constructed once per request by
// Parse and never mutated afterwards.
type Spec struct {
	Ticker       string
	Member       string
	Sector       string
	Role         string
	TradeType    string
	SurpriseType string

	OptionType  market.OptionType
	Granularity market.Granularity

	StartDate time.Time
	EndDate   time.Time

	// Interval5m widens minute data to 5-minute buckets. Forced to false
	// for daily granularity regardless of what was requested.
	Interval5m bool
}

// Intraday reports whether the spec asks for minute-resolution data.
func (s Spec) Intraday() bool {
	return s.Granularity == market.GranularityMinute
}

// InRange reports whether a YYYY-MM-DD date string falls inside the spec's
// date window. Unparseable dates are excluded.
func (s Spec) InRange(date string) bool {
	d, err := time.Parse(market.DateLayout, date)
	if err != nil {
		return false
	}
	return !d.Before(s.StartDate) && !d.After(s.EndDate)
}

// Parse validates raw URL query parameters and produces a Spec. now anchors
// the default trailing window so callers control determinism.
func Parse(values url.Values, now time.Time) (Spec, error) {
	spec := Spec{
		Ticker:    strings.ToUpper(strings.TrimSpace(values.Get("ticker"))),
		Member:    strings.TrimSpace(values.Get("congress_member")),
		Role:      strings.TrimSpace(values.Get("insider_role")),
		TradeType: strings.ToLower(strings.TrimSpace(values.Get("trade_type"))),
	}

	if values.Has("ticker") && spec.Ticker == "" {
		return Spec{}, invalid("ticker", "must be a non-empty symbol")
	}

	sector := strings.ToLower(strings.TrimSpace(values.Get("sector")))
	if sector != "" && !isKnownSector(sector) {
		return Spec{}, invalid("sector", "unknown sector %q (valid: %s)", sector, strings.Join(market.Sectors(), ", "))
	}
	spec.Sector = sector

	switch spec.TradeType {
	case "", "buy", "sell":
	default:
		return Spec{}, invalid("trade_type", "must be one of buy, sell")
	}

	surprise := strings.ToLower(strings.TrimSpace(values.Get("surprise_type")))
	switch surprise {
	case "", "positive", "negative":
		spec.SurpriseType = surprise
	default:
		return Spec{}, invalid("surprise_type", "must be one of positive, negative")
	}

	optionType, err := parseOptionType(values.Get("option_type"))
	if err != nil {
		return Spec{}, err
	}
	spec.OptionType = optionType

	granularity, err := parseGranularity(values)
	if err != nil {
		return Spec{}, err
	}
	spec.Granularity = granularity

	spec.Interval5m = values.Get("interval_5m") == "true"
	if spec.Granularity == market.GranularityDaily {
		// Mirrors the UI disabling the 5m toggle for daily views. Enforced
		// here so the data layer never sees an inconsistent combination.
		spec.Interval5m = false
	}

	start, end, err := parseDateRange(values, now)
	if err != nil {
		return Spec{}, err
	}
	spec.StartDate, spec.EndDate = start, end

	return spec, nil
}

func parseOptionType(raw string) (market.OptionType, error) {
	switch market.OptionType(strings.ToLower(strings.TrimSpace(raw))) {
	case "", market.OptionAll:
		return market.OptionAll, nil
	case market.OptionCall:
		return market.OptionCall, nil
	case market.OptionPut:
		return market.OptionPut, nil
	default:
		return "", invalid("option_type", "must be one of call, put, all")
	}
}

func parseGranularity(values url.Values) (market.Granularity, error) {
	raw := strings.ToLower(strings.TrimSpace(values.Get("granularity")))

	// is_intraday is the older spelling some panels send.
	if raw == "" && values.Get("is_intraday") == "true" {
		return market.GranularityMinute, nil
	}

	switch market.Granularity(raw) {
	case "":
		return market.GranularityDaily, nil
	case market.GranularityMinute:
		return market.GranularityMinute, nil
	case market.GranularityDaily:
		return market.GranularityDaily, nil
	default:
		return "", invalid("granularity", "must be one of minute, daily")
	}
}

func parseDateRange(values url.Values, now time.Time) (time.Time, time.Time, error) {
	parse := func(field string) (time.Time, bool, error) {
		raw := strings.TrimSpace(values.Get(field))
		if raw == "" {
			return time.Time{}, false, nil
		}
		d, err := time.Parse(market.DateLayout, raw)
		if err != nil {
			return time.Time{}, false, invalid(field, "must be formatted YYYY-MM-DD")
		}
		return d, true, nil
	}

	start, hasStart, err := parse("start_date")
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	end, hasEnd, err := parse("end_date")
	if err != nil {
		return time.Time{}, time.Time{}, err
	}

	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	switch {
	case !hasStart && !hasEnd:
		end = today
		start = today.AddDate(0, 0, -DefaultLookbackDays)
	case hasStart && !hasEnd:
		end = today
	case !hasStart && hasEnd:
		start = end.AddDate(0, 0, -DefaultLookbackDays)
	}

	if start.After(end) {
		return time.Time{}, time.Time{}, invalid("start_date", "must not be after end_date")
	}
	return start, end, nil
}

func isKnownSector(sector string) bool {
	for _, s := range market.Sectors() {
		if s == sector {
			return true
		}
	}
	return false
}
