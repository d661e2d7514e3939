package universe

import (
	"time"

	"bond_radar/pkg/models"
)

// =============================================================================
// DERIVED FIELDS - all pure functions of the record and the supplied now
// =============================================================================

const (
	BucketUnknown = "Unknown"

	CouponLow    = "low"
	CouponMedium = "medium"
	CouponHigh   = "high"

	PriceDeepDiscount = "deep-discount"
	PriceDiscount     = "discount"
	PricePar          = "par"
	PricePremium      = "premium"

	// DefaultCurrency is assumed when neither the document nor the
	// identifier prefix pins one down.
	DefaultCurrency = "USD"
)

// Completeness weights. Mandatory fields are identifier, coupon and maturity;
// optional fields are price, yield and the first two ratings.
const (
	mandatoryWeight = 0.7
	optionalWeight  = 0.3
)

// maturityBuckets maps an upper bound in years to a label, scanned in order.
var maturityBuckets = []struct {
	upper float64 // exclusive
	label string
}{
	{1, "<1 year"},
	{2, "1-2 years"},
	{3, "2-3 years"},
	{4, "3-4 years"},
	{5, "4-5 years"},
	{6, "5-6 years"},
	{7, "6-7 years"},
	{8, "7-8 years"},
	{10, "8-10 years"},
}

const bucketLongest = "10+ years"

// currencyByPrefix resolves the ISIN country prefix to a trading currency.
// XS (international clearing) is deliberately absent: those fall through to
// the default.
var currencyByPrefix = map[string]string{
	"US": "USD", "CA": "CAD", "GB": "GBP", "CH": "CHF", "JP": "JPY",
	"AU": "AUD", "NZ": "NZD", "SE": "SEK", "NO": "NOK", "DK": "DKK",
	"SG": "SGD", "HK": "HKD", "CN": "CNY", "KR": "KRW", "IN": "INR",
	"BR": "BRL", "MX": "MXN",
	"DE": "EUR", "FR": "EUR", "IT": "EUR", "ES": "EUR", "NL": "EUR",
	"BE": "EUR", "AT": "EUR", "PT": "EUR", "IE": "EUR", "FI": "EUR",
	"LU": "EUR",
}

const hoursPerYear = 24 * 365.25

// Enrich fills every derived field of one record in place. It never touches
// the parsed fields themselves, with one exception: an empty currency is
// resolved from the identifier prefix.
func Enrich(rec *models.InstrumentRecord, now time.Time) {
	if rec.Maturity != nil {
		years := rec.Maturity.Sub(now).Hours() / hoursPerYear
		rec.YearsToMaturity = &years
		rec.MaturityBucket = bucketFor(years)
	} else {
		rec.YearsToMaturity = nil
		rec.MaturityBucket = BucketUnknown
	}

	rec.CouponCategory = couponCategory(rec.Coupon)
	rec.PriceCategory = priceCategory(rec.Price)

	if rec.Currency == "" {
		rec.Currency = currencyForISIN(rec.ISIN)
	}

	rec.Confidence = completeness(rec)
}

func bucketFor(years float64) string {
	for _, b := range maturityBuckets {
		if years < b.upper {
			return b.label
		}
	}
	return bucketLongest
}

func couponCategory(coupon *float64) string {
	switch {
	case coupon == nil:
		return ""
	case *coupon < 2:
		return CouponLow
	case *coupon <= 4:
		return CouponMedium
	}
	return CouponHigh
}

func priceCategory(price *float64) string {
	switch {
	case price == nil:
		return ""
	case *price < 95:
		return PriceDeepDiscount
	case *price < 100:
		return PriceDiscount
	case *price == 100:
		return PricePar
	}
	return PricePremium
}

func currencyForISIN(isin string) string {
	if len(isin) >= 2 {
		if ccy, ok := currencyByPrefix[isin[:2]]; ok {
			return ccy
		}
	}
	return DefaultCurrency
}

// completeness scores how much of the record is filled: 0.7 weight spread
// over the three mandatory fields, 0.3 over the four optional ones.
func completeness(rec *models.InstrumentRecord) float64 {
	mandatory := 0
	if rec.ISIN != "" {
		mandatory++
	}
	if rec.Coupon != nil {
		mandatory++
	}
	if rec.Maturity != nil {
		mandatory++
	}

	optional := 0
	if rec.Price != nil {
		optional++
	}
	if rec.Yield != nil {
		optional++
	}
	if rec.Rating1 != "" {
		optional++
	}
	if rec.Rating2 != "" {
		optional++
	}

	return mandatoryWeight*float64(mandatory)/3 + optionalWeight*float64(optional)/4
}
