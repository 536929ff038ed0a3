package merge

import (
	"sort"

	"github.com/tarifaninja/faresearch/internal/models"
)

type offerKey struct {
	airline  string
	departAt int64
}

// Offers price-sorts the combined provider output and drops duplicates sharing
// (airline, departure instant). The sort is stable, so equal-priced offers keep
// their relative order and the first occurrence of a duplicate pair wins.
func Offers(offers []models.Offer) []models.Offer {
	sorted := append([]models.Offer(nil), offers...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Price < sorted[j].Price
	})

	seen := make(map[offerKey]struct{}, len(sorted))
	out := make([]models.Offer, 0, len(sorted))
	for _, o := range sorted {
		key := offerKey{airline: o.Airline, departAt: o.DepartAt.UnixNano()}
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, o)
	}
	return out
}
