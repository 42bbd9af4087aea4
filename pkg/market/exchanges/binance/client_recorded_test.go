package binance

import (
	"context"
	"net/http"
	"os"
	"path/filepath"
	"testing"

	"github.com/dnaeon/go-vcr/recorder"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Replays a recorded klines call. Skips unless the cassette exists or
// RECORD_CASSETTES=1 is set.
func TestClient_GetKlines_Recorded(t *testing.T) {
	cassette := filepath.Join("testdata", "cassettes", "binance_klines")
	if _, err := os.Stat(cassette + ".yaml"); os.IsNotExist(err) {
		if os.Getenv("RECORD_CASSETTES") != "1" {
			t.Skipf("cassette missing; set RECORD_CASSETTES=1 to record: %s.yaml", cassette)
		}
		require.NoError(t, os.MkdirAll(filepath.Dir(cassette), 0o755))
	}

	r, err := recorder.New(cassette)
	require.NoError(t, err)
	defer func() { _ = r.Stop() }()

	client := NewClient(WithHTTPClient(&http.Client{Transport: r}))
	candles, err := client.GetKlines(context.Background(), "BTCUSDT", "1h", 60)
	require.NoError(t, err)
	require.NotEmpty(t, candles)
	for i := 1; i < len(candles); i++ {
		assert.Less(t, candles[i-1].OpenTime, candles[i].OpenTime)
	}
	assert.Greater(t, candles[len(candles)-1].Close, 0.0)
}
