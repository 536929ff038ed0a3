package providers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/tarifaninja/faresearch/internal/models"
)

func TestParseISODurationMinutes(t *testing.T) {
	cases := []struct {
		in   string
		want int
	}{
		{"PT2H15M", 135},
		{"PT0H0M", 0},
		{"PT150M", 150},
		{"PT3H", 180},
		{"PT", 0},
		{"", 0},
		{"garbage", 0},
	}

	for _, tc := range cases {
		if got := parseISODurationMinutes(tc.in); got != tc.want {
			t.Fatalf("parseISODurationMinutes(%q) = %d, want %d", tc.in, got, tc.want)
		}
	}
}

const amadeusSearchFixture = `{
  "data": [
    {
      "price": {"total": "1450.30", "currency": "BRL"},
      "validatingAirlineCodes": ["LA"],
      "itineraries": [
        {
          "duration": "PT4H30M",
          "segments": [
            {
              "departure": {"iataCode": "GRU", "at": "2025-03-10T08:45:00"},
              "arrival": {"iataCode": "LIM", "at": "2025-03-10T11:00:00"},
              "carrierCode": "LA"
            },
            {
              "departure": {"iataCode": "LIM", "at": "2025-03-10T12:00:00"},
              "arrival": {"iataCode": "SCL", "at": "2025-03-10T13:15:00"},
              "carrierCode": "LA"
            }
          ]
        }
      ]
    },
    {
      "price": {"total": "980.00"},
      "validatingAirlineCodes": ["JJ"],
      "itineraries": [
        {
          "duration": "PT2H15M",
          "segments": [
            {
              "departure": {"iataCode": "GRU", "at": "2025-03-10T10:00:00"},
              "arrival": {"iataCode": "SCL", "at": "2025-03-10T12:15:00"},
              "carrierCode": ""
            }
          ]
        }
      ]
    },
    {
      "price": {"total": "500.00", "currency": "BRL"},
      "validatingAirlineCodes": ["G3"],
      "itineraries": [{"duration": "PT1H", "segments": []}]
    }
  ]
}`

func newAmadeusTestServer(t *testing.T, tokenCalls *int32, searchStatus int, searchBody string) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/v1/security/oauth2/token", func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(tokenCalls, 1)
		require.Equal(t, http.MethodPost, r.Method)
		require.NoError(t, r.ParseForm())
		require.Equal(t, "client_credentials", r.PostForm.Get("grant_type"))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"access_token":"tok-123","expires_in":1799}`))
	})
	mux.HandleFunc("/v2/shopping/flight-offers", func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "Bearer tok-123", r.Header.Get("Authorization"))
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(searchStatus)
		w.Write([]byte(searchBody))
	})
	return httptest.NewServer(mux)
}

func TestAmadeus_Search(t *testing.T) {
	var tokenCalls int32
	srv := newAmadeusTestServer(t, &tokenCalls, http.StatusOK, amadeusSearchFixture)
	defer srv.Close()

	a := NewAmadeus(srv.URL, "id", "secret", "BRL")
	q := models.Query{
		Origin:      "GRU",
		Destination: "SCL",
		DepartDate:  "2025-03-10",
		Pax:         1,
		Cabin:       models.CabinEconomy,
	}

	offers, err := a.Search(context.Background(), q)
	require.NoError(t, err)

	// The empty-segment itinerary is skipped, not an error.
	require.Len(t, offers, 2)

	// Sorted ascending by price.
	require.Equal(t, 980.0, offers[0].Price)
	require.Equal(t, 1450.3, offers[1].Price)

	// Missing carrierCode falls back to the validating airline list.
	require.Equal(t, "JJ", offers[0].Airline)
	require.Equal(t, "LA", offers[1].Airline)

	// Missing price currency falls back to the default.
	require.Equal(t, "BRL", offers[0].Currency)

	// Two segments, one stop; depart from first segment, arrive from last.
	two := offers[1]
	require.Equal(t, 1, two.Stops)
	require.Equal(t, "GRU", two.From)
	require.Equal(t, "SCL", two.To)
	require.Equal(t, time.Date(2025, 3, 10, 8, 45, 0, 0, time.Local), two.DepartAt)
	require.Equal(t, time.Date(2025, 3, 10, 13, 15, 0, 0, time.Local), two.ArriveAt)
	require.Equal(t, 270, two.DurationMinutes)

	require.Equal(t, 0, offers[0].Stops)
	require.Equal(t, models.CabinEconomy, offers[0].Cabin)
	require.Equal(t, "1x 10kg", offers[0].Bags)
	require.Equal(t, "Amadeus", offers[0].Provider)
}

func TestAmadeus_TokenCachedAcrossSearches(t *testing.T) {
	var tokenCalls int32
	srv := newAmadeusTestServer(t, &tokenCalls, http.StatusOK, amadeusSearchFixture)
	defer srv.Close()

	a := NewAmadeus(srv.URL, "id", "secret", "BRL")
	q := models.Query{Origin: "GRU", Destination: "SCL", DepartDate: "2025-03-10", Pax: 1, Cabin: models.CabinEconomy}

	_, err := a.Search(context.Background(), q)
	require.NoError(t, err)
	_, err = a.Search(context.Background(), q)
	require.NoError(t, err)

	require.Equal(t, int32(1), atomic.LoadInt32(&tokenCalls))
}

func TestAmadeus_TokenRefreshedNearExpiry(t *testing.T) {
	var tokenCalls int32
	mux := http.NewServeMux()
	mux.HandleFunc("/v1/security/oauth2/token", func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&tokenCalls, 1)
		// Expires inside the 30s refresh skew, so every call refreshes.
		w.Write([]byte(`{"access_token":"tok-123","expires_in":10}`))
	})
	mux.HandleFunc("/v2/shopping/flight-offers", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"data":[]}`))
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	a := NewAmadeus(srv.URL, "id", "secret", "BRL")
	q := models.Query{Origin: "GRU", Destination: "SCL", DepartDate: "2025-03-10", Pax: 1, Cabin: models.CabinEconomy}

	_, err := a.Search(context.Background(), q)
	require.NoError(t, err)
	_, err = a.Search(context.Background(), q)
	require.NoError(t, err)

	require.Equal(t, int32(2), atomic.LoadInt32(&tokenCalls))
}

func TestAmadeus_SearchFailurePropagates(t *testing.T) {
	var tokenCalls int32
	srv := newAmadeusTestServer(t, &tokenCalls, http.StatusBadGateway, `{"errors":[]}`)
	defer srv.Close()

	a := NewAmadeus(srv.URL, "id", "secret", "BRL")
	q := models.Query{Origin: "GRU", Destination: "SCL", DepartDate: "2025-03-10", Pax: 1, Cabin: models.CabinEconomy}

	_, err := a.Search(context.Background(), q)
	require.Error(t, err)

	var perr *ProviderError
	require.ErrorAs(t, err, &perr)
	require.Equal(t, "Amadeus", perr.Provider)
}

func TestAmadeus_TokenFailurePropagates(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/v1/security/oauth2/token", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusUnauthorized)
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	a := NewAmadeus(srv.URL, "bad", "creds", "BRL")
	q := models.Query{Origin: "GRU", Destination: "SCL", DepartDate: "2025-03-10", Pax: 1, Cabin: models.CabinEconomy}

	_, err := a.Search(context.Background(), q)
	require.Error(t, err)
}

func TestAmadeus_MalformedPayloadIsError(t *testing.T) {
	var tokenCalls int32
	srv := newAmadeusTestServer(t, &tokenCalls, http.StatusOK, `{"data": [`)
	defer srv.Close()

	a := NewAmadeus(srv.URL, "id", "secret", "BRL")
	q := models.Query{Origin: "GRU", Destination: "SCL", DepartDate: "2025-03-10", Pax: 1, Cabin: models.CabinEconomy}

	_, err := a.Search(context.Background(), q)
	require.Error(t, err)
}
