package rules

import (
	"testing"

	"shipment-status/internal/features/shipment/domain"

	"github.com/stretchr/testify/assert"
)

func known(days int) domain.StatusMetrics {
	return domain.StatusMetrics{DaysSinceLatestEvent: days}
}

func unknownDays() domain.StatusMetrics {
	return domain.StatusMetrics{DaysSinceLatestEvent: domain.DaysUnknown}
}

// TestEvaluate_PreTransit verifies both the code path and the text path.
func TestEvaluate_PreTransit(t *testing.T) {
	rs := domain.DefaultRuleSet()

	byCode := Evaluate(domain.NormalizedStatus{Code: "OC"}, unknownDays(), rs)
	assert.Equal(t, 1, byCode.IsPreTransit)

	byDerived := Evaluate(domain.NormalizedStatus{DerivedCode: "LP"}, unknownDays(), rs)
	assert.Equal(t, 1, byDerived.IsPreTransit)

	byText := Evaluate(domain.NormalizedStatus{StatusByLocale: "Label Created"}, unknownDays(), rs)
	assert.Equal(t, 1, byText.IsPreTransit)

	neither := Evaluate(domain.NormalizedStatus{Code: "IT", StatusByLocale: "In transit"}, unknownDays(), rs)
	assert.Equal(t, 0, neither.IsPreTransit)
}

// TestEvaluate_Delivered verifies code and text detection, case-insensitive.
func TestEvaluate_Delivered(t *testing.T) {
	rs := domain.DefaultRuleSet()

	byCode := Evaluate(domain.NormalizedStatus{Code: "dl"}, unknownDays(), rs)
	assert.Equal(t, 1, byCode.IsDelivered)

	byDesc := Evaluate(domain.NormalizedStatus{Description: "Package DELIVERED to recipient"}, unknownDays(), rs)
	assert.Equal(t, 1, byDesc.IsDelivered)
}

// TestEvaluate_Exception verifies the exception code set and substring hints.
func TestEvaluate_Exception(t *testing.T) {
	rs := domain.DefaultRuleSet()

	for _, code := range []string{"DE", "SE"} {
		ind := Evaluate(domain.NormalizedStatus{Code: code}, unknownDays(), rs)
		assert.Equal(t, 1, ind.HasException, "code %s", code)
	}

	byText := Evaluate(domain.NormalizedStatus{StatusByLocale: "Delivery exception"}, unknownDays(), rs)
	assert.Equal(t, 1, byText.HasException)

	substring := Evaluate(domain.NormalizedStatus{Description: "Shipment exception: weather delay"}, unknownDays(), rs)
	assert.Equal(t, 1, substring.HasException)
}

// TestEvaluate_RTS verifies return-to-shipper detection.
func TestEvaluate_RTS(t *testing.T) {
	rs := domain.DefaultRuleSet()

	for _, code := range []string{"RS", "RT"} {
		ind := Evaluate(domain.NormalizedStatus{Code: code}, unknownDays(), rs)
		assert.Equal(t, 1, ind.IsRTS, "code %s", code)
	}

	for _, text := range []string{
		"Returning to shipper",
		"Package returned to sender",
		"Return to shipper requested",
	} {
		ind := Evaluate(domain.NormalizedStatus{StatusByLocale: text}, unknownDays(), rs)
		assert.Equal(t, 1, ind.IsRTS, "text %q", text)
	}
}

// TestEvaluate_Stalled covers the threshold, the terminal suppression, and
// the unknown-age rule.
func TestEvaluate_Stalled(t *testing.T) {
	rs := domain.DefaultRuleSet()

	cases := []struct {
		name string
		rec  domain.NormalizedStatus
		m    domain.StatusMetrics
		want int
	}{
		{"at threshold", domain.NormalizedStatus{}, known(4), 1},
		{"above threshold", domain.NormalizedStatus{}, known(10), 1},
		{"below threshold", domain.NormalizedStatus{}, known(3), 0},
		{"unknown age is not stale", domain.NormalizedStatus{}, unknownDays(), 0},
		{"delivered suppresses", domain.NormalizedStatus{Code: "DL"}, known(10), 0},
		{"rts suppresses", domain.NormalizedStatus{Code: "RS"}, known(10), 0},
		{"exception does not suppress", domain.NormalizedStatus{Code: "DE"}, known(10), 1},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			ind := Evaluate(tc.rec, tc.m, rs)
			assert.Equal(t, tc.want, ind.IsStalled)
		})
	}
}

// TestEvaluate_StalledThresholdConfigurable verifies the threshold knob.
func TestEvaluate_StalledThresholdConfigurable(t *testing.T) {
	rs := domain.DefaultRuleSet()
	rs.StalledThresholdDays = 7

	assert.Equal(t, 0, Evaluate(domain.NormalizedStatus{}, known(6), rs).IsStalled)
	assert.Equal(t, 1, Evaluate(domain.NormalizedStatus{}, known(7), rs).IsStalled)
}

// TestEvaluate_Independence verifies multiple indicators can be active at
// once; only stalled consults the others.
func TestEvaluate_Independence(t *testing.T) {
	rs := domain.DefaultRuleSet()

	rec := domain.NormalizedStatus{
		Code:           "DL",
		StatusByLocale: "Delivered",
		Description:    "Delivery exception resolved, returned to sender",
	}

	ind := Evaluate(rec, known(10), rs)

	assert.Equal(t, 1, ind.IsDelivered)
	assert.Equal(t, 1, ind.HasException)
	assert.Equal(t, 1, ind.IsRTS)
	assert.Equal(t, 0, ind.IsStalled)
}

// TestEvaluate_EmptyRecord verifies a defaulted record sets nothing.
func TestEvaluate_EmptyRecord(t *testing.T) {
	ind := Evaluate(domain.NormalizedStatus{}, unknownDays(), domain.DefaultRuleSet())
	assert.Equal(t, domain.IndicatorSet{}, ind)
}

// TestEvaluate_CustomCodeSets verifies the code sets are configuration, not
// hardcoded.
func TestEvaluate_CustomCodeSets(t *testing.T) {
	rs := domain.DefaultRuleSet()
	rs.DeliveredCodes = []string{"ZZ"}

	assert.Equal(t, 0, Evaluate(domain.NormalizedStatus{Code: "DL"}, unknownDays(), rs).IsDelivered)
	assert.Equal(t, 1, Evaluate(domain.NormalizedStatus{Code: "ZZ"}, unknownDays(), rs).IsDelivered)
}
