package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
)

// ContentTypeJSON is used for every object this service writes.
const ContentTypeJSON = "application/json"

// Drivers.
const (
	DriverS3    = "s3"
	DriverLocal = "local"
)

// ErrNotFound is returned when an object does not exist.
var ErrNotFound = errors.New("storage: object not found")

// Store reads and writes whole objects addressed by bucket and key.
type Store interface {
	Get(ctx context.Context, bucket, key string) ([]byte, error)
	Put(ctx context.Context, bucket, key string, body []byte, contentType string) error
}

// Config selects and configures the object store backend.
type Config struct {
	Driver    string `json:",default=s3,options=s3|local"`
	Region    string `json:",default=us-east-1"`
	Endpoint  string `json:",optional"`
	PathStyle bool   `json:",optional"`
	AccessKey string `json:",optional"`
	SecretKey string `json:",optional"`
	LocalPath string `json:",default=./data"`

	DataBucket        string `json:",default=finanalyst-storage,env=DATA_BUCKET"`
	OutputBucket      string `json:",optional,env=OUTPUT_BUCKET"`
	PredictionsBucket string `json:",default=finanalyst-analysis,env=PREDICTIONS_BUCKET"`
}

// DefaultConfig mirrors the go-zero defaults.
func DefaultConfig() Config {
	return Config{
		Driver:            DriverS3,
		Region:            "us-east-1",
		LocalPath:         "./data",
		DataBucket:        "finanalyst-storage",
		PredictionsBucket: "finanalyst-analysis",
	}
}

// WithDefaults fills empty fields from DefaultConfig.
func (c Config) WithDefaults() Config {
	def := DefaultConfig()
	if c.Driver == "" {
		c.Driver = def.Driver
	}
	if c.Region == "" {
		c.Region = def.Region
	}
	if c.LocalPath == "" {
		c.LocalPath = def.LocalPath
	}
	if c.DataBucket == "" {
		c.DataBucket = def.DataBucket
	}
	if c.PredictionsBucket == "" {
		c.PredictionsBucket = def.PredictionsBucket
	}
	return c
}

// IndicatorBucket is where indicator files go; it falls back to the data bucket.
func (c Config) IndicatorBucket() string {
	if c.OutputBucket != "" {
		return c.OutputBucket
	}
	return c.DataBucket
}

// New builds the configured Store.
func New(c Config) (Store, error) {
	switch c.Driver {
	case "", DriverS3:
		return NewS3Store(c)
	case DriverLocal:
		return NewLocalStore(c.LocalPath)
	default:
		return nil, fmt.Errorf("storage: unsupported driver %q", c.Driver)
	}
}

// PutJSON encodes v and stores it under bucket/key.
func PutJSON(ctx context.Context, store Store, bucket, key string, v any) error {
	body, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("storage: encode %s: %w", key, err)
	}
	return store.Put(ctx, bucket, key, body, ContentTypeJSON)
}

// PutIndentedJSON is PutJSON with two-space indentation.
func PutIndentedJSON(ctx context.Context, store Store, bucket, key string, v any) error {
	body, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("storage: encode %s: %w", key, err)
	}
	return store.Put(ctx, bucket, key, body, ContentTypeJSON)
}
