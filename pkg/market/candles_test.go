package market

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"finanalyst-api/pkg/market/indicators"
)

func TestDecodeCandles(t *testing.T) {
	raw := []byte(`[
		{"open_time": 2000, "open": 1, "high": 2, "low": 0.5, "close": 1.5, "volume": 10, "close_time": 2999},
		{"open_time": 1000, "open": 1, "high": 2, "low": 0.5, "close": 0, "volume": 10, "close_time": 1999}
	]`)
	candles, err := DecodeCandles(raw)
	require.NoError(t, err)
	require.Len(t, candles, 2)
	assert.Equal(t, 1.5, candles[0].Close)
	assert.Equal(t, 0.0, candles[1].Close)

	SortCandles(candles)
	assert.Equal(t, int64(1000), candles[0].OpenTime)
	assert.Equal(t, indicators.Series{0, 1.5}, Closes(candles))
}

func TestDecodeCandlesMissingClose(t *testing.T) {
	_, err := DecodeCandles([]byte(`[{"open_time": 1, "open": 1}]`))
	require.Error(t, err)
	assert.ErrorIs(t, err, indicators.ErrMissingField)
}

func TestDecodeCandlesNotArray(t *testing.T) {
	_, err := DecodeCandles([]byte(`{"candles": []}`))
	require.Error(t, err)
	assert.NotErrorIs(t, err, indicators.ErrMissingField)
}

func TestCandleOpenAt(t *testing.T) {
	c := Candle{OpenTime: 1700000000000}
	assert.Equal(t, int64(1700000000), c.OpenAt().Unix())
}
