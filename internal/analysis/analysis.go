// Package analysis derives metrics from grid snapshots. It does no I/O.
package analysis

import (
	"math"
	"math/big"
	"slices"

	"github.com/rsham004/nz-electricity-chatbot/internal/entities"
	"github.com/shopspring/decimal"
)

// RenewablePercentage returns the renewable share of generation, rounded to one decimal.
// The divisor is the sum of all fuel type values, not the reported total.
func RenewablePercentage(s entities.GenerationSnapshot) float64 {
	var renewable, total float64
	for _, fuel := range orderedKeys(s.ByType, entities.FuelTypes) {
		mw := s.ByType[fuel]
		total += mw
		if fuel.IsRenewable() {
			renewable += mw
		}
	}
	if total == 0 {
		return 0.0
	}
	return Round1(renewable / total * 100)
}

// Breakdown computes each fuel type's share of the reported total.
// All percentages are 0 when the total is 0.
func Breakdown(s entities.GenerationSnapshot) entities.FuelBreakdown {
	out := entities.FuelBreakdown{
		Timestamp: s.Timestamp,
		TotalMW:   s.TotalMW,
		Breakdown: make(map[entities.FuelType]entities.FuelShare, len(s.ByType)),
	}
	for fuel, mw := range s.ByType {
		share := entities.FuelShare{MW: mw}
		if s.TotalMW > 0 {
			share.Percentage = Round1(mw / s.TotalMW * 100)
		}
		out.Breakdown[fuel] = share
	}
	return out
}

// AveragePrice returns the mean regional price. ok is false when there are no prices.
func AveragePrice(p entities.PriceSnapshot) (avg float64, ok bool) {
	if len(p.Prices) == 0 {
		return 0, false
	}
	var sum float64
	for _, region := range orderedKeys(p.Prices, entities.Regions) {
		sum += p.Prices[region]
	}
	return sum / float64(len(p.Prices)), true
}

// Round1 rounds to one decimal place. Ties are decided on the exact binary value
// of v and go to the even digit, so 0.25 becomes 0.2.
func Round1(v float64) float64 {
	return exact(v).RoundBank(1).InexactFloat64()
}

// FormatMoney renders v with two decimals, rounding like Round1
func FormatMoney(v float64) string {
	return exact(v).StringFixedBank(2)
}

// exact returns the decimal holding every digit of the binary value of v
func exact(v float64) decimal.Decimal {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return decimal.Zero
	}
	// 1074 fractional digits cover the smallest subnormal
	return decimal.RequireFromString(new(big.Float).SetFloat64(v).Text('f', 1074))
}

// orderedKeys lists the keys of m in the given order, followed by any others sorted.
// Float sums then come out the same on every run.
func orderedKeys[K ~string](m map[K]float64, order []K) []K {
	keys := make([]K, 0, len(m))
	known := make(map[K]bool, len(order))
	for _, k := range order {
		known[k] = true
		if _, ok := m[k]; ok {
			keys = append(keys, k)
		}
	}
	var extra []K
	for k := range m {
		if !known[k] {
			extra = append(extra, k)
		}
	}
	slices.Sort(extra)
	return append(keys, extra...)
}
