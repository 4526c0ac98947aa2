package model

import (
	"encoding/json"
	"time"
)

// Direction tags a scan with the leg it covers. The two values partition
// credentials and select which civil timezone applies to each end of a
// flight event.
type Direction string

const (
	DirectionOutbound Direction = "aller"
	DirectionReturn   Direction = "retour"
)

// ScanRequest describes one search call: a single (date, route) pair for
// one direction, issued with one credential. Immutable once constructed.
type ScanRequest struct {
	Date        string // ISO date "2006-01-02"
	Origin      string // airport or metro code, e.g. "PAR"
	Destination string // e.g. "DJE"
	Direction   Direction
	Credential  string

	// ReturnDate, when non-empty, turns the search into a round trip.
	ReturnDate string
}

// RoundTrip reports whether the request asks for a return fare.
func (r ScanRequest) RoundTrip() bool { return r.ReturnDate != "" }

// DefaultPrice is what price extraction yields whenever the API hands back
// a shape we cannot read. It is deliberately high so unreadable fares lose
// every comparison instead of winning it.
const DefaultPrice = 9999

// FlexPrice tolerates the two price encodings the search API is known to
// emit: a bare number, or an object carrying a numeric "raw" subfield.
// Any other shape decodes to DefaultPrice rather than failing the whole
// itinerary.
type FlexPrice int

func (p *FlexPrice) UnmarshalJSON(data []byte) error {
	var num float64
	if err := json.Unmarshal(data, &num); err == nil {
		*p = FlexPrice(int(num))
		return nil
	}

	var obj struct {
		Raw *float64 `json:"raw"`
	}
	if err := json.Unmarshal(data, &obj); err == nil && obj.Raw != nil {
		*p = FlexPrice(int(*obj.Raw))
		return nil
	}

	*p = DefaultPrice
	return nil
}

// Int returns the price as a plain int, substituting DefaultPrice for the
// zero value left by an absent field.
func (p FlexPrice) Int() int {
	if p == 0 {
		return DefaultPrice
	}
	return int(p)
}

// AirportStop is one end of a flight segment as the API reports it.
// Time is a local timestamp in "YYYY-MM-DD HH:MM" form.
type AirportStop struct {
	AirportCode string `json:"airport_code"`
	Time        string `json:"time"`
}

// Segment is one flight leg within an itinerary.
type Segment struct {
	Airline          string      `json:"airline"`
	FlightNumber     string      `json:"flight_number"`
	DepartureAirport AirportStop `json:"departure_airport"`
	ArrivalAirport   AirportStop `json:"arrival_airport"`
}

// Itinerary is one candidate option returned by the search API.
type Itinerary struct {
	Price   FlexPrice `json:"price"`
	Flights []Segment `json:"flights"`
}

// PricedCandidate pairs an itinerary with its normalized baggage pricing.
type PricedCandidate struct {
	Itinerary    Itinerary
	Airline      string
	BasePrice    int
	CabinPrice   int // base fare + cabin-bag surcharge
	CheckedPrice int // base fare + checked-bag surcharge
	Note         string
}

// SelectedFlight is the winning candidate for one scan, flattened to what
// the calendar assembler needs.
type SelectedFlight struct {
	Date      string
	Direction Direction

	BasePrice    int
	CabinPrice   int
	CheckedPrice int
	PriceNote    string

	Airline       string
	FlightNumber  string
	DepartureCode string
	ArrivalCode   string
	DepartTime    string // "HH:MM", local to the departure airport
	ArriveTime    string // "HH:MM", local to the arrival airport

	RoundTrip  bool
	ReturnInfo string // preformatted return-leg line, empty for one-way
}

// FeedEvent is the normalized form of one VEVENT from an external
// calendar feed (religious holidays, school vacations).
type FeedEvent struct {
	Summary string
	Start   time.Time
	End     time.Time
	AllDay  bool
}

// VacationPeriod is one school-vacation span derived from a zone feed.
type VacationPeriod struct {
	Start time.Time
	End   time.Time
}
