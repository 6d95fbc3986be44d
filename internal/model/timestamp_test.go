package model

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTimestampUnmarshalLayouts(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want time.Time
	}{
		{"rfc3339", `"2024-01-15T10:30:00Z"`, time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC)},
		{"local datetime", `"2024-01-15T10:30:00"`, time.Date(2024, 1, 15, 10, 30, 0, 0, time.Local)},
		{"fractional", `"2024-01-15T10:30:00.123456"`, time.Date(2024, 1, 15, 10, 30, 0, 123456000, time.Local)},
		{"date only", `"2024-01-15"`, time.Date(2024, 1, 15, 0, 0, 0, 0, time.Local)},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var ts Timestamp
			require.NoError(t, json.Unmarshal([]byte(tc.in), &ts))
			assert.True(t, tc.want.Equal(ts.Time), "got %v want %v", ts.Time, tc.want)
		})
	}
}

func TestTimestampEmptyValues(t *testing.T) {
	var payload struct {
		Due  *Timestamp `json:"due"`
		Seen *Timestamp `json:"seen"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"due": null, "seen": ""}`), &payload))

	assert.Nil(t, payload.Due)
	assert.False(t, payload.Due.Valid())
	require.NotNil(t, payload.Seen)
	assert.False(t, payload.Seen.Valid())
}

func TestTimestampRejectsGarbage(t *testing.T) {
	var ts Timestamp
	assert.Error(t, json.Unmarshal([]byte(`"next tuesday"`), &ts))
}

func TestTimestampMarshalZoneless(t *testing.T) {
	ts := Timestamp{Time: time.Date(2024, 3, 1, 23, 59, 59, 0, time.Local)}
	data, err := json.Marshal(ts)
	require.NoError(t, err)
	assert.Equal(t, `"2024-03-01T23:59:59"`, string(data))

	data, err = json.Marshal(Timestamp{})
	require.NoError(t, err)
	assert.Equal(t, "null", string(data))
}
