package scanner

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	appLog "flightcal/internal/log"
	"flightcal/internal/model"
	"flightcal/internal/pricing"
)

var (
	// ErrNoFlights means the API answered but had no itinerary for the date.
	ErrNoFlights = errors.New("no flights found")

	// ErrQuotaExhausted means the API rate-limited the credential (HTTP 429).
	// The caller should stop scanning with that credential for the rest of
	// the run.
	ErrQuotaExhausted = errors.New("api quota exhausted")
)

// SelectionPolicy decides which cost a candidate is ranked by.
type SelectionPolicy string

const (
	// PolicyBase ranks by the raw fare as returned by the API.
	PolicyBase SelectionPolicy = "base"
	// PolicyCheckedBag ranks by fare plus the estimated checked-bag
	// surcharge, i.e. what the trip actually costs with luggage.
	PolicyCheckedBag SelectionPolicy = "checked_bag"
)

// Valid reports whether p is a known policy.
func (p SelectionPolicy) Valid() bool {
	return p == PolicyBase || p == PolicyCheckedBag
}

// cost returns the ranking value for a candidate under this policy.
func (p SelectionPolicy) cost(c model.PricedCandidate) int {
	if p == PolicyBase {
		return c.BasePrice
	}
	return c.CheckedPrice
}

// Client queries the flight-search API. One Scan call covers one
// (date, route) pair; the client itself neither sleeps nor retries —
// pacing between scans belongs to the caller.
type Client struct {
	httpClient *http.Client
	baseURL    string
	host       string
	policy     SelectionPolicy
}

// NewClient creates a search client. host is the API host (also sent as
// the credential host header), path the search endpoint path.
func NewClient(host, path string, timeout time.Duration, policy SelectionPolicy) *Client {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	if !policy.Valid() {
		policy = PolicyCheckedBag
	}
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    "https://" + host + path,
		host:       host,
		policy:     policy,
	}
}

// SetBaseURL overrides the request URL. Used by tests to point the client
// at a local server.
func (c *Client) SetBaseURL(u string) { c.baseURL = u }

// searchResponse mirrors the relevant part of the API response. Either
// flight list may be absent or null; both decode to nil slices.
type searchResponse struct {
	Data struct {
		Itineraries struct {
			TopFlights   []model.Itinerary `json:"topFlights"`
			OtherFlights []model.Itinerary `json:"otherFlights"`
		} `json:"itineraries"`
	} `json:"data"`
}

// Scan issues one search request and returns the best itinerary for the
// date under the client's selection policy. It returns ErrNoFlights when
// the date has no candidates and ErrQuotaExhausted on HTTP 429.
func (c *Client) Scan(ctx context.Context, req model.ScanRequest) (*model.SelectedFlight, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL, nil)
	if err != nil {
		return nil, err
	}

	q := url.Values{}
	q.Set("departure_id", req.Origin)
	q.Set("arrival_id", req.Destination)
	q.Set("outbound_date", req.Date)
	q.Set("currency", "EUR")
	q.Set("travel_class", "ECONOMY")
	q.Set("adults", "1")
	q.Set("search_type", "cheap")
	q.Set("language_code", "fr")
	q.Set("country_code", "FR")
	if req.RoundTrip() {
		q.Set("return_date", req.ReturnDate)
	}
	httpReq.URL.RawQuery = q.Encode()

	httpReq.Header.Set("x-rapidapi-key", req.Credential)
	httpReq.Header.Set("x-rapidapi-host", c.host)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusOK:
		// fall through to decoding
	case resp.StatusCode == http.StatusTooManyRequests:
		return nil, ErrQuotaExhausted
	default:
		return nil, fmt.Errorf("search API error: %s", resp.Status)
	}

	var sr searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&sr); err != nil {
		return nil, err
	}

	itins := append(sr.Data.Itineraries.TopFlights, sr.Data.Itineraries.OtherFlights...)
	if len(itins) == 0 {
		return nil, ErrNoFlights
	}

	best, ok := c.selectBest(itins)
	if !ok {
		return nil, ErrNoFlights
	}

	return buildSelected(req, best), nil
}

// selectBest prices every itinerary and picks the minimum under the
// client's policy. The minimum is stable: ties keep the first-encountered
// candidate, so selection is deterministic for a given response.
func (c *Client) selectBest(itins []model.Itinerary) (model.PricedCandidate, bool) {
	var best model.PricedCandidate
	found := false

	for _, it := range itins {
		if len(it.Flights) == 0 {
			continue
		}
		cand := price(it)
		if !found || c.policy.cost(cand) < c.policy.cost(best) {
			best = cand
			found = true
		}
	}
	return best, found
}

// price normalizes one itinerary into a PricedCandidate using the
// first-segment airline for the baggage heuristic.
func price(it model.Itinerary) model.PricedCandidate {
	airline := it.Flights[0].Airline
	base := it.Price.Int()
	quote := pricing.Normalize(airline, base)
	return model.PricedCandidate{
		Itinerary:    it,
		Airline:      airline,
		BasePrice:    base,
		CabinPrice:   quote.CabinPrice,
		CheckedPrice: quote.CheckedPrice,
		Note:         quote.Note,
	}
}

func buildSelected(req model.ScanRequest, cand model.PricedCandidate) *model.SelectedFlight {
	seg := cand.Itinerary.Flights[0]

	sf := &model.SelectedFlight{
		Date:          req.Date,
		Direction:     req.Direction,
		BasePrice:     cand.BasePrice,
		CabinPrice:    cand.CabinPrice,
		CheckedPrice:  cand.CheckedPrice,
		PriceNote:     cand.Note,
		Airline:       cand.Airline,
		FlightNumber:  seg.FlightNumber,
		DepartureCode: seg.DepartureAirport.AirportCode,
		ArrivalCode:   seg.ArrivalAirport.AirportCode,
		DepartTime:    timeOfDay(seg.DepartureAirport.Time),
		ArriveTime:    timeOfDay(seg.ArrivalAirport.Time),
		RoundTrip:     req.RoundTrip(),
	}
	if sf.DepartureCode == "" {
		sf.DepartureCode = req.Origin
	}
	if sf.ArrivalCode == "" {
		sf.ArrivalCode = req.Destination
	}

	// For a round trip the API appends the return segments after the
	// outbound ones; the last segment carries the return leg.
	if req.RoundTrip() && len(cand.Itinerary.Flights) > 1 {
		ret := cand.Itinerary.Flights[len(cand.Itinerary.Flights)-1]
		retDate := dateOf(ret.DepartureAirport.Time)
		sf.ReturnInfo = fmt.Sprintf("🔙 RETOUR (%s) : %s -> %s",
			retDate, timeOfDay(ret.DepartureAirport.Time), timeOfDay(ret.ArrivalAirport.Time))
	}

	appLog.Debug("flight selected",
		"date", req.Date,
		"direction", string(req.Direction),
		"airline", sf.Airline,
		"base_price", sf.BasePrice,
		"checked_price", sf.CheckedPrice,
	)

	return sf
}

// timeOfDay keeps the HH:MM part of a "YYYY-MM-DD HH:MM" timestamp.
func timeOfDay(ts string) string {
	if _, after, ok := strings.Cut(ts, " "); ok && after != "" {
		return after
	}
	return "00:00"
}

// dateOf keeps the date part of a "YYYY-MM-DD HH:MM" timestamp.
func dateOf(ts string) string {
	before, _, _ := strings.Cut(ts, " ")
	return before
}
