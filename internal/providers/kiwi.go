package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/tarifaninja/faresearch/internal/models"
)

var kiwiCabinCode = map[string]string{
	models.CabinEconomy:  "M",
	models.CabinPremium:  "W",
	models.CabinBusiness: "C",
}

// Kiwi queries the Tequila search API. No credential handshake; a static API
// key travels in the apikey header.
type Kiwi struct {
	baseURL         string
	apiKey          string
	defaultCurrency string
	client          *http.Client
}

func NewKiwi(baseURL, apiKey, defaultCurrency string) *Kiwi {
	return &Kiwi{
		baseURL:         strings.TrimRight(baseURL, "/"),
		apiKey:          apiKey,
		defaultCurrency: defaultCurrency,
		client:          &http.Client{Timeout: 30 * time.Second},
	}
}

func (k *Kiwi) Name() string {
	return "Kiwi"
}

type kiwiRoute struct {
	FlyFrom  string `json:"flyFrom"`
	FlyTo    string `json:"flyTo"`
	Airline  string `json:"airline"`
	DTimeUTC int64  `json:"dTimeUTC"`
	ATimeUTC int64  `json:"aTimeUTC"`
}

type kiwiItinerary struct {
	Price    float64  `json:"price"`
	Airlines []string `json:"airlines"`
	Duration struct {
		Total int `json:"total"`
	} `json:"duration"`
	Route    []kiwiRoute `json:"route"`
	DeepLink string      `json:"deep_link"`
}

func (k *Kiwi) Search(ctx context.Context, q models.Query) ([]models.Offer, error) {
	params := url.Values{}
	params.Set("fly_from", q.Origin)
	params.Set("fly_to", q.Destination)
	params.Set("date_from", kiwiDate(q.DepartDate))
	params.Set("date_to", kiwiDate(q.DepartDate))
	params.Set("adults", strconv.Itoa(q.Pax))
	params.Set("curr", k.defaultCurrency)
	params.Set("selected_cabins", kiwiCabin(q.Cabin))
	params.Set("limit", "30")
	params.Set("sort", "price")
	if q.ReturnDate != "" {
		params.Set("return_from", kiwiDate(q.ReturnDate))
		params.Set("return_to", kiwiDate(q.ReturnDate))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		k.baseURL+"/v2/search?"+params.Encode(), nil)
	if err != nil {
		return nil, NewProviderError(k.Name(), err)
	}
	req.Header.Set("apikey", k.apiKey)

	resp, err := k.client.Do(req)
	if err != nil {
		return nil, NewProviderError(k.Name(), err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return nil, NewProviderError(k.Name(), fmt.Errorf("search: %s", resp.Status))
	}

	var payload struct {
		Data []kiwiItinerary `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, NewProviderError(k.Name(), err)
	}

	offers := make([]models.Offer, 0, len(payload.Data))
	for _, item := range payload.Data {
		if len(item.Route) == 0 {
			continue
		}
		first := item.Route[0]
		last := item.Route[len(item.Route)-1]

		from := first.FlyFrom
		if from == "" {
			from = q.Origin
		}
		to := last.FlyTo
		if to == "" {
			to = q.Destination
		}

		carrier := first.Airline
		if carrier == "" && len(item.Airlines) > 0 {
			carrier = item.Airlines[0]
		}
		if carrier == "" {
			carrier = "UNK"
		}

		stops := len(item.Route) - 1
		if stops < 0 {
			stops = 0
		}

		offers = append(offers, models.Offer{
			Provider:        k.Name(),
			Airline:         carrier,
			From:            from,
			To:              to,
			DepartAt:        time.Unix(first.DTimeUTC, 0).UTC(),
			ArriveAt:        time.Unix(last.ATimeUTC, 0).UTC(),
			DurationMinutes: item.Duration.Total / 60,
			Stops:           stops,
			Cabin:           q.Cabin,
			Price:           round2(item.Price),
			Currency:        k.defaultCurrency,
			Bags:            bagsForCabin(q.Cabin),
			BuyURL:          item.DeepLink,
		})
	}

	sortByPrice(offers)
	return offers, nil
}

func kiwiCabin(cabin string) string {
	if code, ok := kiwiCabinCode[cabin]; ok {
		return code
	}
	return kiwiCabinCode[models.CabinEconomy]
}

// kiwiDate converts YYYY-MM-DD to the DD/MM/YYYY form Tequila expects.
func kiwiDate(d string) string {
	parts := strings.SplitN(d, "-", 3)
	if len(parts) != 3 {
		return d
	}
	return parts[2] + "/" + parts[1] + "/" + parts[0]
}
