package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/awserr"
	"github.com/aws/aws-sdk-go/aws/request"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3iface"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"finanalyst-api/pkg/market/indicators"
)

type fakeS3 struct {
	s3iface.S3API

	mu      sync.Mutex
	objects map[string][]byte
	types   map[string]string
}

func newFakeS3() *fakeS3 {
	return &fakeS3{objects: map[string][]byte{}, types: map[string]string{}}
}

func (f *fakeS3) GetObjectWithContext(_ aws.Context, in *s3.GetObjectInput, _ ...request.Option) (*s3.GetObjectOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	body, ok := f.objects[aws.StringValue(in.Bucket)+"/"+aws.StringValue(in.Key)]
	if !ok {
		return nil, awserr.New(s3.ErrCodeNoSuchKey, "missing", nil)
	}
	return &s3.GetObjectOutput{Body: io.NopCloser(bytes.NewReader(body))}, nil
}

func (f *fakeS3) PutObjectWithContext(_ aws.Context, in *s3.PutObjectInput, _ ...request.Option) (*s3.PutObjectOutput, error) {
	body, err := io.ReadAll(in.Body)
	if err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	k := aws.StringValue(in.Bucket) + "/" + aws.StringValue(in.Key)
	f.objects[k] = body
	f.types[k] = aws.StringValue(in.ContentType)
	return &s3.PutObjectOutput{}, nil
}

func TestS3StoreRoundTrip(t *testing.T) {
	fake := newFakeS3()
	store := NewS3StoreWithClient(fake)
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, "bucket", "a/b.json", []byte(`[1]`), ContentTypeJSON))
	assert.Equal(t, ContentTypeJSON, fake.types["bucket/a/b.json"])

	body, err := store.Get(ctx, "bucket", "a/b.json")
	require.NoError(t, err)
	assert.Equal(t, `[1]`, string(body))

	_, err = store.Get(ctx, "bucket", "missing.json")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestLocalStore(t *testing.T) {
	store, err := NewLocalStore(t.TempDir())
	require.NoError(t, err)
	ctx := context.Background()

	require.NoError(t, PutJSON(ctx, store, "bkt", "x/y.json", map[string]int{"a": 1}))
	body, err := store.Get(ctx, "bkt", "x/y.json")
	require.NoError(t, err)
	assert.JSONEq(t, `{"a":1}`, string(body))

	_, err = store.Get(ctx, "bkt", "nope.json")
	assert.ErrorIs(t, err, ErrNotFound)

	err = store.Put(ctx, "bkt", "../escape.json", []byte("{}"), ContentTypeJSON)
	require.Error(t, err)
}

func TestKeys(t *testing.T) {
	at := time.Date(2024, 3, 5, 7, 8, 9, 0, time.UTC)

	assert.Equal(t, "raw/binance/BTCUSDT/2024-03-05/BTCUSDT_binance_20240305T070809Z.json",
		RawCandlesKey("binance", "BTCUSDT", at))
	assert.Equal(t, "data_fetcher_results/BTCUSDT/2024-03-05/BTCUSDT_1h_20240305T070809Z_data_fetcher.json",
		FetchResultKey("BTCUSDT", "1h", at))
	assert.Equal(t, "indicators/BTCUSDT/2024-03-05/BTCUSDT_binance_20240301T000000Z_indicators.json",
		IndicatorsKey("BTCUSDT", "raw/binance/BTCUSDT/2024-03-01/BTCUSDT_binance_20240301T000000Z.json", at))
	assert.Equal(t, "Predictions/BTCUSDT/2024-03-05/BTCUSDT_binance_20240305T070809Z_prediction.json",
		PredictionKey("BTCUSDT", at))

	local := time.Date(2024, 3, 5, 23, 30, 0, 0, time.FixedZone("X", -2*3600))
	assert.Contains(t, PredictionKey("ETHUSDT", local), "/2024-03-06/")
}

func candleJSON(n int) string {
	var buf bytes.Buffer
	buf.WriteString("[")
	for i := 0; i < n; i++ {
		if i > 0 {
			buf.WriteString(",")
		}
		fmt.Fprintf(&buf, `{"open_time":%d,"close":%d}`, i, 100+i)
	}
	buf.WriteString("]")
	return buf.String()
}

func TestLoadCandlesLayouts(t *testing.T) {
	store := NewS3StoreWithClient(newFakeS3())
	ctx := context.Background()
	require.NoError(t, store.Put(ctx, "data", "raw.json", []byte(candleJSON(3)), ContentTypeJSON))
	require.NoError(t, store.Put(ctx, "other", "raw.json", []byte(candleJSON(4)), ContentTypeJSON))
	require.NoError(t, store.Put(ctx, "data", "inline.json", []byte(`{"candles":`+candleJSON(2)+`}`), ContentTypeJSON))
	require.NoError(t, store.Put(ctx, "data", "pointer.json", []byte(`{"s3_bucket":"other","s3_key":"raw.json"}`), ContentTypeJSON))
	require.NoError(t, store.Put(ctx, "data", "pointer-same.json", []byte(`{"s3_key":"raw.json"}`), ContentTypeJSON))
	require.NoError(t, store.Put(ctx, "data", "double.json", []byte(`{"s3_key":"pointer.json"}`), ContentTypeJSON))

	cases := map[string]int{
		"raw.json":          3,
		"inline.json":       2,
		"pointer.json":      4,
		"pointer-same.json": 3,
	}
	for key, want := range cases {
		candles, err := LoadCandles(ctx, store, "data", key)
		require.NoError(t, err, key)
		assert.Len(t, candles, want, key)
	}

	_, err := LoadCandles(ctx, store, "data", "double.json")
	assert.ErrorIs(t, err, ErrUnsupportedLayout)
}

func TestLoadCandlesRejects(t *testing.T) {
	store := NewS3StoreWithClient(newFakeS3())
	ctx := context.Background()
	require.NoError(t, store.Put(ctx, "data", "empty.json", []byte(`[]`), ContentTypeJSON))
	require.NoError(t, store.Put(ctx, "data", "scalar.json", []byte(`42`), ContentTypeJSON))
	require.NoError(t, store.Put(ctx, "data", "odd.json", []byte(`{"foo":1}`), ContentTypeJSON))
	require.NoError(t, store.Put(ctx, "data", "noclose.json", []byte(`[{"open_time":1,"open":2}]`), ContentTypeJSON))

	_, err := LoadCandles(ctx, store, "data", "empty.json")
	assert.ErrorIs(t, err, ErrEmptyCandles)
	_, err = LoadCandles(ctx, store, "data", "scalar.json")
	assert.ErrorIs(t, err, ErrUnsupportedLayout)
	_, err = LoadCandles(ctx, store, "data", "odd.json")
	assert.ErrorIs(t, err, ErrUnsupportedLayout)
	_, err = LoadCandles(ctx, store, "data", "noclose.json")
	assert.ErrorIs(t, err, indicators.ErrMissingField)
	_, err = LoadCandles(ctx, store, "data", "absent.json")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestConfigIndicatorBucket(t *testing.T) {
	c := Config{DataBucket: "in"}
	assert.Equal(t, "in", c.IndicatorBucket())
	c.OutputBucket = "out"
	assert.Equal(t, "out", c.IndicatorBucket())

	_, err := New(Config{Driver: "ftp"})
	require.Error(t, err)
}

func TestConfigWithDefaults(t *testing.T) {
	c := Config{Driver: DriverLocal, DataBucket: "mine"}.WithDefaults()
	assert.Equal(t, DriverLocal, c.Driver)
	assert.Equal(t, "mine", c.DataBucket)
	assert.Equal(t, "finanalyst-analysis", c.PredictionsBucket)
	assert.Equal(t, "./data", c.LocalPath)
	assert.Equal(t, "us-east-1", c.Region)
}
