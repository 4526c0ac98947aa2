package scanner

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"flightcal/internal/model"
)

const twoAirlinesBody = `{
  "data": {
    "itineraries": {
      "topFlights": [
        {
          "price": 100,
          "flights": [
            {
              "airline": "Transavia France",
              "flight_number": "TO 4710",
              "departure_airport": {"airport_code": "ORY", "time": "2026-03-15 09:30"},
              "arrival_airport": {"airport_code": "DJE", "time": "2026-03-15 12:05"}
            }
          ]
        }
      ],
      "otherFlights": [
        {
          "price": {"raw": 120},
          "flights": [
            {
              "airline": "Tunisair",
              "flight_number": "TU 721",
              "departure_airport": {"airport_code": "ORY", "time": "2026-03-15 14:10"},
              "arrival_airport": {"airport_code": "DJE", "time": "2026-03-15 16:45"}
            }
          ]
        }
      ]
    }
  }
}`

func newTestClient(t *testing.T, handler http.HandlerFunc, policy SelectionPolicy) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client := NewClient("test-host", "/api/v1/searchFlights", 5*time.Second, policy)
	client.SetBaseURL(server.URL)
	return client
}

func baseRequest() model.ScanRequest {
	return model.ScanRequest{
		Date:        "2026-03-15",
		Origin:      "PAR",
		Destination: "DJE",
		Direction:   model.DirectionOutbound,
		Credential:  "test-key",
	}
}

func TestScanSendsExpectedRequest(t *testing.T) {
	var gotQuery map[string]string
	var gotKey, gotHost string

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotQuery = map[string]string{}
		for k := range r.URL.Query() {
			gotQuery[k] = r.URL.Query().Get(k)
		}
		gotKey = r.Header.Get("x-rapidapi-key")
		gotHost = r.Header.Get("x-rapidapi-host")
		w.Write([]byte(twoAirlinesBody))
	}, PolicyCheckedBag)

	_, err := client.Scan(context.Background(), baseRequest())
	require.NoError(t, err)

	assert.Equal(t, "test-key", gotKey)
	assert.Equal(t, "test-host", gotHost)
	assert.Equal(t, "PAR", gotQuery["departure_id"])
	assert.Equal(t, "DJE", gotQuery["arrival_id"])
	assert.Equal(t, "2026-03-15", gotQuery["outbound_date"])
	assert.Equal(t, "EUR", gotQuery["currency"])
	assert.Equal(t, "ECONOMY", gotQuery["travel_class"])
	assert.Equal(t, "1", gotQuery["adults"])
	assert.Equal(t, "cheap", gotQuery["search_type"])
	assert.Equal(t, "fr", gotQuery["language_code"])
	assert.Equal(t, "FR", gotQuery["country_code"])
	_, hasReturn := gotQuery["return_date"]
	assert.False(t, hasReturn, "one-way scan must not send return_date")
}

func TestScanCheckedBagPolicyPrefersCheaperTotal(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(twoAirlinesBody))
	}, PolicyCheckedBag)

	sf, err := client.Scan(context.Background(), baseRequest())
	require.NoError(t, err)

	// Tunisair: 120+36=156 beats Transavia: 100+105=205.
	assert.Equal(t, "Tunisair", sf.Airline)
	assert.Equal(t, 120, sf.BasePrice)
	assert.Equal(t, 156, sf.CheckedPrice)
	assert.Equal(t, "TU 721", sf.FlightNumber)
	assert.Equal(t, "14:10", sf.DepartTime)
	assert.Equal(t, "16:45", sf.ArriveTime)
	assert.Equal(t, "ORY", sf.DepartureCode)
	assert.Equal(t, "DJE", sf.ArrivalCode)
}

func TestScanBasePolicyPrefersRawFare(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(twoAirlinesBody))
	}, PolicyBase)

	sf, err := client.Scan(context.Background(), baseRequest())
	require.NoError(t, err)
	assert.Equal(t, "Transavia France", sf.Airline)
	assert.Equal(t, 100, sf.BasePrice)
}

func TestScanRoundTripSendsReturnDateAndExtractsReturnLeg(t *testing.T) {
	var gotReturn string
	body := `{
  "data": {
    "itineraries": {
      "topFlights": [
        {
          "price": 210,
          "flights": [
            {
              "airline": "Nouvelair",
              "flight_number": "BJ 501",
              "departure_airport": {"airport_code": "ORY", "time": "2026-07-10 08:00"},
              "arrival_airport": {"airport_code": "DJE", "time": "2026-07-10 10:35"}
            },
            {
              "airline": "Nouvelair",
              "flight_number": "BJ 502",
              "departure_airport": {"airport_code": "DJE", "time": "2026-07-24 11:30"},
              "arrival_airport": {"airport_code": "ORY", "time": "2026-07-24 14:05"}
            }
          ]
        }
      ]
    }
  }
}`
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotReturn = r.URL.Query().Get("return_date")
		w.Write([]byte(body))
	}, PolicyCheckedBag)

	req := baseRequest()
	req.Date = "2026-07-10"
	req.ReturnDate = "2026-07-24"

	sf, err := client.Scan(context.Background(), req)
	require.NoError(t, err)

	assert.Equal(t, "2026-07-24", gotReturn)
	assert.True(t, sf.RoundTrip)
	assert.Contains(t, sf.ReturnInfo, "2026-07-24")
	assert.Contains(t, sf.ReturnInfo, "11:30")
	assert.Contains(t, sf.ReturnInfo, "14:05")
	// The outbound leg still comes from the first segment.
	assert.Equal(t, "BJ 501", sf.FlightNumber)
}

func TestScanNoItineraries(t *testing.T) {
	bodies := []string{
		`{"data": {"itineraries": {"topFlights": [], "otherFlights": []}}}`,
		`{"data": {"itineraries": {"topFlights": null, "otherFlights": null}}}`,
		`{"data": {"itineraries": {}}}`,
		`{"data": {}}`,
		`{}`,
	}

	for _, body := range bodies {
		b := body
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(b))
		}, PolicyCheckedBag)

		_, err := client.Scan(context.Background(), baseRequest())
		assert.ErrorIs(t, err, ErrNoFlights, "body: %s", b)
	}
}

func TestScanRateLimited(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}, PolicyCheckedBag)

	_, err := client.Scan(context.Background(), baseRequest())
	assert.ErrorIs(t, err, ErrQuotaExhausted)
}

func TestScanServerError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}, PolicyCheckedBag)

	_, err := client.Scan(context.Background(), baseRequest())
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrQuotaExhausted)
	assert.NotErrorIs(t, err, ErrNoFlights)
}

func TestScanMissingTimeDefaultsToMidnight(t *testing.T) {
	body := `{
  "data": {
    "itineraries": {
      "topFlights": [
        {
          "price": 90,
          "flights": [
            {
              "airline": "Tunisair",
              "flight_number": "TU 721",
              "departure_airport": {"airport_code": "ORY"},
              "arrival_airport": {"airport_code": "DJE"}
            }
          ]
        }
      ]
    }
  }
}`
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(body))
	}, PolicyCheckedBag)

	sf, err := client.Scan(context.Background(), baseRequest())
	require.NoError(t, err)
	assert.Equal(t, "00:00", sf.DepartTime)
	assert.Equal(t, "00:00", sf.ArriveTime)
}

func TestSelectBestIsStableAndIdempotent(t *testing.T) {
	client := NewClient("h", "/p", time.Second, PolicyCheckedBag)

	seg := func(airline string) []model.Segment {
		return []model.Segment{{
			Airline:          airline,
			FlightNumber:     "XX 1",
			DepartureAirport: model.AirportStop{AirportCode: "ORY", Time: "2026-03-15 09:00"},
			ArrivalAirport:   model.AirportStop{AirportCode: "DJE", Time: "2026-03-15 11:30"},
		}}
	}

	// Two candidates with identical checked-bag totals: Tunisair 120+36
	// vs Nouvelair 116+40. The first encountered must win, repeatably.
	itins := []model.Itinerary{
		{Price: 120, Flights: seg("Tunisair")},
		{Price: 116, Flights: seg("Nouvelair")},
	}

	first, ok := client.selectBest(itins)
	require.True(t, ok)
	second, ok := client.selectBest(itins)
	require.True(t, ok)

	assert.Equal(t, "Tunisair", first.Airline)
	assert.Equal(t, first, second)
}

func TestSelectBestSkipsSegmentlessItineraries(t *testing.T) {
	client := NewClient("h", "/p", time.Second, PolicyBase)

	itins := []model.Itinerary{
		{Price: 10, Flights: nil},
	}
	_, ok := client.selectBest(itins)
	assert.False(t, ok)
}
