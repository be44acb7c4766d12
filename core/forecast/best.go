package forecast

import "github.com/shopspring/decimal"

// BestPrice returns the minimum available price for a day. A day with no
// available tier prices has no best price.
func BestPrice(day DayPrice) (decimal.Decimal, bool) {
	var best decimal.Decimal
	found := false
	for _, sp := range day.Tiers() {
		if !sp.Available() {
			continue
		}
		if !found || sp.Price.LessThan(best) {
			best = *sp.Price
			found = true
		}
	}
	return best, found
}

// BestTier returns the tier achieving the day's best price. Ties are not
// specially broken: the first tier in iteration order that equals the
// minimum wins.
func BestTier(day DayPrice) (TierID, bool) {
	best, ok := BestPrice(day)
	if !ok {
		return "", false
	}
	for _, sp := range day.Tiers() {
		if sp.Available() && sp.Price.Equal(best) {
			return sp.TierID(), true
		}
	}
	return "", false
}

// IsBest reports whether the given tier's price equals the day's best
// price. An unavailable tier is never best.
func IsBest(day DayPrice, id TierID) bool {
	sp, ok := day.Tier(id)
	if !ok || !sp.Available() {
		return false
	}
	best, ok := BestPrice(day)
	if !ok {
		return false
	}
	return sp.Price.Equal(best)
}
