package providers

import (
	"context"
	"math"
	"sort"

	"github.com/tarifaninja/faresearch/internal/models"
)

type Provider interface {
	Name() string
	Search(ctx context.Context, q models.Query) ([]models.Offer, error)
}

type ProviderError struct {
	Provider string
	Err      error
}

func (e *ProviderError) Error() string {
	return e.Provider + ": " + e.Err.Error()
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}

func NewProviderError(provider string, err error) *ProviderError {
	return &ProviderError{
		Provider: provider,
		Err:      err,
	}
}

// Baggage allowance is derived from the requested cabin, not from provider
// responses; all adapters share this table.
var cabinBags = map[string]string{
	models.CabinEconomy:  "1x 10kg",
	models.CabinPremium:  "1x 10kg + 1x 23kg",
	models.CabinBusiness: "2x 32kg",
}

func bagsForCabin(cabin string) string {
	if bags, ok := cabinBags[cabin]; ok {
		return bags
	}
	return cabinBags[models.CabinEconomy]
}

// Every adapter sorts its own offers by ascending price before returning; the
// merge step re-sorts the combined set regardless.
func sortByPrice(offers []models.Offer) {
	sort.SliceStable(offers, func(i, j int) bool {
		return offers[i].Price < offers[j].Price
	})
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
