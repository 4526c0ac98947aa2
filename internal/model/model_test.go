package model

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFlexPriceDecoding(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want int
	}{
		{"integer", `129`, 129},
		{"float truncates", `129.9`, 129},
		{"raw object", `{"raw": 87}`, 87},
		{"raw float", `{"raw": 87.5}`, 87},
		{"string falls back", `"129"`, DefaultPrice},
		{"object without raw", `{"amount": 10}`, DefaultPrice},
		{"raw non-numeric", `{"raw": "cheap"}`, DefaultPrice},
		{"null", `null`, DefaultPrice},
		{"array", `[1,2]`, DefaultPrice},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var p FlexPrice
			err := json.Unmarshal([]byte(tt.in), &p)
			require.NoError(t, err, "FlexPrice must never fail to decode")
			assert.Equal(t, tt.want, p.Int())
		})
	}
}

func TestFlexPriceAbsentField(t *testing.T) {
	var it Itinerary
	require.NoError(t, json.Unmarshal([]byte(`{"flights": []}`), &it))
	assert.Equal(t, DefaultPrice, it.Price.Int())
}

func TestScanRequestRoundTrip(t *testing.T) {
	req := ScanRequest{Date: "2026-07-10"}
	assert.False(t, req.RoundTrip())

	req.ReturnDate = "2026-07-24"
	assert.True(t, req.RoundTrip())
}
