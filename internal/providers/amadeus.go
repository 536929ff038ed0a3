package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/tarifaninja/faresearch/internal/models"
)

// Refresh the cached bearer token this long before it actually expires.
const amadeusTokenSkew = 30 * time.Second

var amadeusTravelClass = map[string]string{
	models.CabinEconomy:  "ECONOMY",
	models.CabinPremium:  "PREMIUM_ECONOMY",
	models.CabinBusiness: "BUSINESS",
}

// Amadeus queries the Amadeus self-service flight-offers API using the OAuth2
// client-credentials flow. The token is cached per adapter instance; concurrent
// refreshes overwrite each other, which is harmless since any fresh token works.
type Amadeus struct {
	baseURL         string
	clientID        string
	clientSecret    string
	defaultCurrency string
	client          *http.Client

	mu        sync.Mutex
	tok       string
	tokExpiry time.Time
}

func NewAmadeus(baseURL, clientID, clientSecret, defaultCurrency string) *Amadeus {
	return &Amadeus{
		baseURL:         strings.TrimRight(baseURL, "/"),
		clientID:        clientID,
		clientSecret:    clientSecret,
		defaultCurrency: defaultCurrency,
		client:          &http.Client{Timeout: 30 * time.Second},
	}
}

func (a *Amadeus) Name() string {
	return "Amadeus"
}

func (a *Amadeus) token(ctx context.Context) (string, error) {
	a.mu.Lock()
	if a.tok != "" && time.Now().Before(a.tokExpiry.Add(-amadeusTokenSkew)) {
		tok := a.tok
		a.mu.Unlock()
		return tok, nil
	}
	a.mu.Unlock()

	form := url.Values{}
	form.Set("grant_type", "client_credentials")
	form.Set("client_id", a.clientID)
	form.Set("client_secret", a.clientSecret)

	tctx, cancel := context.WithTimeout(ctx, 20*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(tctx, http.MethodPost,
		a.baseURL+"/v1/security/oauth2/token", strings.NewReader(form.Encode()))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := a.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return "", fmt.Errorf("token request: %s", resp.Status)
	}

	var tr struct {
		AccessToken string `json:"access_token"`
		ExpiresIn   int    `json:"expires_in"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&tr); err != nil {
		return "", err
	}
	if tr.ExpiresIn == 0 {
		tr.ExpiresIn = 1799
	}

	a.mu.Lock()
	a.tok = tr.AccessToken
	a.tokExpiry = time.Now().Add(time.Duration(tr.ExpiresIn) * time.Second)
	a.mu.Unlock()

	return tr.AccessToken, nil
}

type amadeusSegment struct {
	Departure struct {
		IATACode string `json:"iataCode"`
		At       string `json:"at"`
	} `json:"departure"`
	Arrival struct {
		IATACode string `json:"iataCode"`
		At       string `json:"at"`
	} `json:"arrival"`
	CarrierCode string `json:"carrierCode"`
}

type amadeusOffer struct {
	Price struct {
		Total    string `json:"total"`
		Currency string `json:"currency"`
	} `json:"price"`
	ValidatingAirlineCodes []string `json:"validatingAirlineCodes"`
	Itineraries            []struct {
		Duration string           `json:"duration"`
		Segments []amadeusSegment `json:"segments"`
	} `json:"itineraries"`
}

func (a *Amadeus) Search(ctx context.Context, q models.Query) ([]models.Offer, error) {
	tok, err := a.token(ctx)
	if err != nil {
		return nil, NewProviderError(a.Name(), err)
	}

	params := url.Values{}
	params.Set("originLocationCode", q.Origin)
	params.Set("destinationLocationCode", q.Destination)
	params.Set("departureDate", q.DepartDate)
	params.Set("adults", strconv.Itoa(q.Pax))
	params.Set("nonStop", "false")
	params.Set("currencyCode", a.defaultCurrency)
	params.Set("max", "20")
	params.Set("travelClass", amadeusClass(q.Cabin))
	if q.ReturnDate != "" {
		params.Set("returnDate", q.ReturnDate)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		a.baseURL+"/v2/shopping/flight-offers?"+params.Encode(), nil)
	if err != nil {
		return nil, NewProviderError(a.Name(), err)
	}
	req.Header.Set("Authorization", "Bearer "+tok)

	resp, err := a.client.Do(req)
	if err != nil {
		return nil, NewProviderError(a.Name(), err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return nil, NewProviderError(a.Name(), fmt.Errorf("search: %s", resp.Status))
	}

	var payload struct {
		Data []amadeusOffer `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, NewProviderError(a.Name(), err)
	}

	offers := make([]models.Offer, 0, len(payload.Data))
	for _, d := range payload.Data {
		// Only the first itinerary leg is priced out; offers without
		// segments are dropped, not an error.
		if len(d.Itineraries) == 0 || len(d.Itineraries[0].Segments) == 0 {
			continue
		}
		itin := d.Itineraries[0]
		first := itin.Segments[0]
		last := itin.Segments[len(itin.Segments)-1]

		depart, err := parseAmadeusTime(first.Departure.At)
		if err != nil {
			continue
		}
		arrive, err := parseAmadeusTime(last.Arrival.At)
		if err != nil {
			continue
		}

		carrier := first.CarrierCode
		if carrier == "" {
			carrier = strings.Join(d.ValidatingAirlineCodes, ",")
		}

		stops := len(itin.Segments) - 1
		if stops < 0 {
			stops = 0
		}

		price, _ := strconv.ParseFloat(d.Price.Total, 64)
		currency := d.Price.Currency
		if currency == "" {
			currency = a.defaultCurrency
		}

		offers = append(offers, models.Offer{
			Provider:        a.Name(),
			Airline:         carrier,
			From:            first.Departure.IATACode,
			To:              last.Arrival.IATACode,
			DepartAt:        depart,
			ArriveAt:        arrive,
			DurationMinutes: parseISODurationMinutes(itin.Duration),
			Stops:           stops,
			Cabin:           q.Cabin,
			Price:           round2(price),
			Currency:        currency,
			Bags:            bagsForCabin(q.Cabin),
		})
	}

	sortByPrice(offers)
	return offers, nil
}

func amadeusClass(cabin string) string {
	if tc, ok := amadeusTravelClass[cabin]; ok {
		return tc
	}
	return amadeusTravelClass[models.CabinEconomy]
}

// parseISODurationMinutes handles the PT#H#M shapes Amadeus emits, e.g. PT2H15M
// or PT150M. Anything unparsable counts as zero minutes.
func parseISODurationMinutes(s string) int {
	s = strings.TrimPrefix(s, "PT")
	total := 0
	var num strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			num.WriteRune(r)
			continue
		}
		v, _ := strconv.Atoi(num.String())
		num.Reset()
		switch r {
		case 'H':
			total += v * 60
		case 'M':
			total += v
		}
	}
	return total
}

// Amadeus timestamps are zone-less local strings like 2025-03-10T08:45:00.
func parseAmadeusTime(s string) (time.Time, error) {
	if t, err := time.ParseInLocation("2006-01-02T15:04:05", s, time.Local); err == nil {
		return t, nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	return time.Time{}, fmt.Errorf("unsupported time format: %q", s)
}
