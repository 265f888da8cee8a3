package model

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDate(t *testing.T) {
	tests := []struct {
		input   string
		want    string
		wantErr bool
	}{
		{input: "2024-03-05", want: "2024-03-05"},
		{input: " 2024-03-05 ", want: "2024-03-05"},
		{input: "2024-03-05T23:30:00+05:30", want: "2024-03-05"},
		{input: "2024-02-29", want: "2024-02-29"},
		{input: "2023-02-29", wantErr: true},
		{input: "05/03/2024", wantErr: true},
		{input: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseDate(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got.String())
			assert.Equal(t, time.UTC, got.Location())
		})
	}
}

func TestDateOf_KeepsCalendarDay(t *testing.T) {
	ist := time.FixedZone("IST", 5*3600+1800)
	d := DateOf(time.Date(2024, time.March, 5, 1, 0, 0, 0, ist))
	assert.Equal(t, "2024-03-05", d.String())
}

func TestDate_Comparisons(t *testing.T) {
	a := MustParseDate("2024-03-05")
	b := a.AddDays(1)

	assert.True(t, a.Before(b))
	assert.True(t, b.After(a))
	assert.True(t, a.Equal(b.AddDays(-1)))
	assert.Equal(t, "2024-03-01", MustParseDate("2024-02-29").AddDays(1).String())
}

func TestDate_JSON(t *testing.T) {
	type wrapper struct {
		Date Date `json:"date"`
	}

	raw, err := json.Marshal(wrapper{Date: NewDate(2024, time.March, 5)})
	require.NoError(t, err)
	assert.JSONEq(t, `{"date":"2024-03-05"}`, string(raw))

	var w wrapper
	require.NoError(t, json.Unmarshal([]byte(`{"date":""}`), &w))
	assert.True(t, w.Date.IsZero())
	assert.Empty(t, w.Date.String())

	assert.Error(t, json.Unmarshal([]byte(`{"date":20240305}`), &w))
	assert.Error(t, json.Unmarshal([]byte(`{"date":"March 5"}`), &w))
}
