package pricing

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeKnownAirlines(t *testing.T) {
	tests := []struct {
		name        string
		airline     string
		base        int
		wantCabin   int
		wantChecked int
	}{
		{"transavia", "Transavia", 100, 148, 205},
		{"transavia france", "Transavia France", 100, 148, 205},
		{"nouvelair", "Nouvelair", 100, 100, 140},
		{"tunisair", "Tunisair", 100, 100, 136},
		{"tunisair express", "TUNISAIR EXPRESS", 80, 80, 116},
		{"lowercase match", "transavia", 50, 98, 155},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := Normalize(tt.airline, tt.base)
			assert.Equal(t, tt.wantCabin, q.CabinPrice)
			assert.Equal(t, tt.wantChecked, q.CheckedPrice)
			assert.NotEmpty(t, q.Note)
		})
	}
}

func TestNormalizeUnknownAirlineUsesDefault(t *testing.T) {
	q := Normalize("Air France", 200)
	assert.Equal(t, 200, q.CabinPrice)
	assert.Equal(t, 250, q.CheckedPrice)
	assert.Equal(t, defaultNote, q.Note)
}

func TestNormalizeEmptyAirline(t *testing.T) {
	q := Normalize("", 120)
	assert.Equal(t, 120, q.CabinPrice)
	assert.Equal(t, 170, q.CheckedPrice)
}
