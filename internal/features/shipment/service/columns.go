package service

import "strconv"

// Column names appended to every output row, in contract order. Downstream
// consumers key on column order once established, so these lists are
// append-only.
var (
	StatusColumns = []string{"code", "derivedCode", "statusByLocale", "description"}

	IndicatorColumns = []string{"IsPreTransit", "IsDelivered", "HasException", "IsRTS", "IsStalled"}

	AuxColumns = []string{"CalculatedReasons", "LatestEventTimestampUtc", "DaysSinceLatestEvent"}
)

// StatusColumn is the collapsed classification column name.
const StatusColumn = "CalculatedStatus"

// OutputColumns returns the full appended-column order: normalized status
// fields, indicators, calculated status, then the auxiliary columns.
func OutputColumns() []string {
	out := make([]string, 0, len(StatusColumns)+len(IndicatorColumns)+1+len(AuxColumns))
	out = append(out, StatusColumns...)
	out = append(out, IndicatorColumns...)
	out = append(out, StatusColumn)
	out = append(out, AuxColumns...)
	return out
}

// ColumnValues renders an enrichment as the contract columns. An unknown day
// count renders as "" rather than a number.
func (en Enrichment) ColumnValues() map[string]string {
	days := ""
	if en.Metrics.DaysSinceLatestEvent >= 0 {
		days = strconv.Itoa(en.Metrics.DaysSinceLatestEvent)
	}

	return map[string]string{
		"code":           en.Record.Code,
		"derivedCode":    en.Record.DerivedCode,
		"statusByLocale": en.Record.StatusByLocale,
		"description":    en.Record.Description,

		"IsPreTransit": strconv.Itoa(en.Indicators.IsPreTransit),
		"IsDelivered":  strconv.Itoa(en.Indicators.IsDelivered),
		"HasException": strconv.Itoa(en.Indicators.HasException),
		"IsRTS":        strconv.Itoa(en.Indicators.IsRTS),
		"IsStalled":    strconv.Itoa(en.Indicators.IsStalled),

		StatusColumn: en.Classification.CalculatedStatus,

		"CalculatedReasons":       en.Classification.CalculatedReasons,
		"LatestEventTimestampUtc": en.Metrics.LatestEventTimestampUtc,
		"DaysSinceLatestEvent":    days,
	}
}
