package providers

import (
	"context"
	"math"
	"math/rand"
	"time"

	"github.com/tarifaninja/faresearch/internal/models"
)

var simulatedAirlines = []string{"LATAM", "SKY", "JetSMART", "GOL", "Azul"}

var simulatedBasePrice = map[string]int{
	models.CabinEconomy:  1100,
	models.CabinPremium:  1700,
	models.CabinBusiness: 3200,
}

// Simulated generates plausible offers when no real provider produced any. It
// is the guaranteed non-empty path: it never returns an error.
type Simulated struct {
	defaultCurrency string
}

func NewSimulated(defaultCurrency string) *Simulated {
	return &Simulated{defaultCurrency: defaultCurrency}
}

func (s *Simulated) Name() string {
	return "Simulado"
}

func (s *Simulated) Search(ctx context.Context, q models.Query) ([]models.Offer, error) {
	base, ok := simulatedBasePrice[q.Cabin]
	if !ok {
		base = simulatedBasePrice[models.CabinEconomy]
	}

	midnight, err := time.ParseInLocation("2006-01-02", q.DepartDate, time.UTC)
	if err != nil {
		midnight = time.Now().UTC().Truncate(24 * time.Hour)
	}

	offers := make([]models.Offer, 0, 10)
	for i := 0; i < 10; i++ {
		airline := simulatedAirlines[rand.Intn(len(simulatedAirlines))]
		stops := simulatedStops()
		duration := 200 + rand.Intn(341) + stops*(45+rand.Intn(76))

		// Departures fall in a 05:00-23:00 window on the requested day.
		departMin := 5*60 + rand.Intn(18*60+1)
		depart := midnight.Add(time.Duration(departMin) * time.Minute)
		arrive := depart.Add(time.Duration(duration) * time.Minute)

		skew := 20
		switch airline {
		case "LATAM":
			skew = 80
		case "SKY", "JetSMART":
			skew = -60
		}

		price := base + rand.Intn(301) - 120 + stops*(rand.Intn(131)-40) + skew
		if price < 350 {
			price = 350
		}
		scaled := float64(price) * math.Pow(float64(q.Pax), 0.97)
		rounded := math.Round(scaled/5) * 5

		offers = append(offers, models.Offer{
			Provider:        s.Name(),
			Airline:         airline,
			From:            q.Origin,
			To:              q.Destination,
			DepartAt:        depart,
			ArriveAt:        arrive,
			DurationMinutes: duration,
			Stops:           stops,
			Cabin:           q.Cabin,
			Price:           rounded,
			Currency:        s.defaultCurrency,
			Bags:            bagsForCabin(q.Cabin),
			BuyURL:          "https://google.com/search?q=passagens",
		})
	}

	sortByPrice(offers)
	return offers, nil
}

// 0 stops 65%, 1 stop 25%, 2 stops 10%.
func simulatedStops() int {
	r := rand.Float64()
	switch {
	case r < 0.65:
		return 0
	case r < 0.90:
		return 1
	default:
		return 2
	}
}
