package timex

import (
	"testing"
	"time"

	"github.com/alephcore/engine/erralph"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNowMillisIsCurrent(t *testing.T) {
	before := time.Now().UnixMilli()
	got := NowMillis()
	after := time.Now().UnixMilli()
	assert.GreaterOrEqual(t, got, before)
	assert.LessOrEqual(t, got, after)
}

func TestToStringRoundTrip(t *testing.T) {
	millis := int64(1_700_000_000_000)
	s := ToString(millis)
	back, err := ParseToMillis(s)
	require.NoError(t, err)
	assert.Equal(t, millis, back)
}

func TestParseToMillisInvalid(t *testing.T) {
	_, err := ParseToMillis("not-a-date")
	require.Error(t, err)
	assert.ErrorIs(t, err, erralph.ErrInvalidDate)
}
