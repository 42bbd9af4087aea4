package journal

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
)

// RunRecord captures one scheduled fetch and analysis run for audit.
type RunRecord struct {
	RunID      string         `json:"run_id"`
	Sequence   int            `json:"sequence"`
	StartedAt  time.Time      `json:"started_at"`
	FinishedAt time.Time      `json:"finished_at"`
	Interval   string         `json:"interval"`
	Symbols    []SymbolResult `json:"symbols"`
	Success    bool           `json:"success"`
	Extra      map[string]any `json:"extra,omitempty"`
}

// SymbolResult is the outcome of one symbol in a run.
type SymbolResult struct {
	Symbol        string  `json:"symbol"`
	Candles       int     `json:"candles"`
	RawKey        string  `json:"raw_key,omitempty"`
	IndicatorKey  string  `json:"indicator_key,omitempty"`
	RSI           float64 `json:"rsi,omitempty"`
	RSISignal     string  `json:"rsi_signal,omitempty"`
	SMASignal     string  `json:"sma_signal,omitempty"`
	EMASignal     string  `json:"ema_signal,omitempty"`
	ErrorMessage  string  `json:"error_message,omitempty"`
	ElapsedMillis int64   `json:"elapsed_ms"`
}

// Failed reports whether any symbol in the run errored.
func (r *RunRecord) Failed() bool {
	for _, s := range r.Symbols {
		if s.ErrorMessage != "" {
			return true
		}
	}
	return false
}

// Writer persists run records to a directory as JSON files.
type Writer struct {
	dir   string
	mu    sync.Mutex
	seq   int
	nowFn func() time.Time
}

// NewWriter constructs a journal writer.
func NewWriter(dir string) *Writer {
	if dir == "" {
		dir = "journal"
	}
	_ = os.MkdirAll(dir, 0o755)
	return &Writer{dir: dir, nowFn: time.Now}
}

// Dir is the directory records are written to.
func (w *Writer) Dir() string {
	return w.dir
}

// WriteRun writes rec to a timestamped JSON file and returns its path. A
// missing run ID or start time is filled in.
func (w *Writer) WriteRun(rec *RunRecord) (string, error) {
	if rec == nil {
		return "", fmt.Errorf("journal: nil record")
	}
	w.mu.Lock()
	defer w.mu.Unlock()

	if rec.RunID == "" {
		rec.RunID = uuid.NewString()
	}
	if rec.StartedAt.IsZero() {
		rec.StartedAt = w.nowFn()
	}
	w.seq++
	rec.Sequence = w.seq
	short := rec.RunID
	if len(short) > 8 {
		short = short[:8]
	}
	name := fmt.Sprintf("run_%s_%05d_%s.json", rec.StartedAt.UTC().Format("20060102_150405"), w.seq, short)
	path := filepath.Join(w.dir, name)
	data, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return "", err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", err
	}
	return path, nil
}
