package main

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDeriveOutputPath(t *testing.T) {
	date := time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name    string
		library string
		dataset string
		want    string
	}{
		{
			name:    "plain names",
			library: "DAD",
			dataset: "simple",
			want:    "DAD__simple__2025-01-15.csv",
		},
		{
			name:    "spaces and colons sanitized",
			library: "DAD",
			dataset: "a. DADyyyy: Discharge Abstract Database -DAD",
			want:    "DAD__a.-DADyyyy--Discharge-Abstract-Database--DAD__2025-01-15.csv",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, deriveOutputPath(tt.library, tt.dataset, date))
		})
	}
}

func TestParseDate(t *testing.T) {
	got, err := parseDate("2025-01-15")
	require.NoError(t, err)
	assert.Equal(t, 2025, got.Year())
	assert.Equal(t, time.January, got.Month())
	assert.Equal(t, 15, got.Day())

	_, err = parseDate("15/01/2025")
	assert.Error(t, err)

	_, err = parseDate("not-a-date")
	assert.Error(t, err)

	now, err := parseDate("")
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now(), now, time.Minute)
}
