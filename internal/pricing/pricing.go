package pricing

import "strings"

// Quote is the normalized baggage pricing for one fare: the fare with a
// cabin bag included, the fare with a checked bag included, and a note
// documenting the allowance assumptions behind the numbers.
type Quote struct {
	CabinPrice   int
	CheckedPrice int
	Note         string
}

// rule is one row of the surcharge table. Surcharges are totals added to
// the base fare, estimated from each airline's published baggage fees on
// the Paris–Djerba routes; they are heuristics, not API data.
type rule struct {
	match   string
	cabin   int
	checked int
	note    string
}

// rules is evaluated in order; the first matching row wins. The default
// row must stay last.
var rules = []rule{
	{
		match:   "TRANSAVIA",
		cabin:   48,
		checked: 105,
		note:    "Transavia : tarif de base sans bagage. +48€ bagage cabine, +105€ avec bagage soute 20kg.",
	},
	{
		match:   "NOUVELAIR",
		cabin:   0,
		checked: 40,
		note:    "Nouvelair : bagage cabine inclus. +40€ bagage soute 23kg.",
	},
	{
		match:   "TUNISAIR",
		cabin:   0,
		checked: 36,
		note:    "Tunisair : bagage cabine inclus. +36€ bagage soute 23kg.",
	},
}

const defaultNote = "Compagnie non référencée : bagage cabine supposé inclus. +50€ estimés pour le bagage soute."

// Normalize maps an airline name and a base fare to its baggage-inclusive
// pricing. Matching is a case-insensitive substring test so that names
// like "Transavia France" still hit the Transavia row.
func Normalize(airline string, base int) Quote {
	upper := strings.ToUpper(airline)
	for _, r := range rules {
		if strings.Contains(upper, r.match) {
			return Quote{
				CabinPrice:   base + r.cabin,
				CheckedPrice: base + r.checked,
				Note:         r.note,
			}
		}
	}
	return Quote{
		CabinPrice:   base,
		CheckedPrice: base + 50,
		Note:         defaultNote,
	}
}
