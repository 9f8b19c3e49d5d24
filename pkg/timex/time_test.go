package timex

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJSONRoundTrip(t *testing.T) {
	src := Time(time.Date(2026, 3, 14, 9, 30, 0, 0, time.Local))

	data, err := json.Marshal(src)
	require.NoError(t, err)
	assert.Equal(t, `"2026-03-14 09:30:00"`, string(data))

	var dst Time
	require.NoError(t, json.Unmarshal(data, &dst))
	assert.True(t, src.Time().Equal(dst.Time()))
}

func TestMarshalZero(t *testing.T) {
	data, err := json.Marshal(Time{})
	require.NoError(t, err)
	assert.Equal(t, `""`, string(data))
}

func TestScan(t *testing.T) {
	var tt Time
	now := time.Now()
	require.NoError(t, tt.Scan(now))
	assert.Equal(t, now.Unix(), tt.Unix())

	require.NoError(t, tt.Scan("2026-01-02 03:04:05"))
	assert.Equal(t, "2026-01-02 03:04:05", tt.String())

	require.NoError(t, tt.Scan(nil))
	assert.True(t, tt.IsZero())
}
