package handler

import (
	"fmt"
	"io"
	"net/http"

	"github.com/zeromicro/go-zero/rest/httpx"

	"finanalyst-api/pkg/agent"
)

// maxEventBytes caps tool request bodies.
const maxEventBytes = 1 << 20

func decodeEvent(r *http.Request) (*agent.Event, error) {
	raw, err := io.ReadAll(io.LimitReader(r.Body, maxEventBytes))
	if err != nil {
		return nil, fmt.Errorf("read request body: %w", err)
	}
	if len(raw) == 0 {
		raw = []byte("{}")
	}
	return agent.Decode(raw)
}

// writeEnvelope sends the reply envelope with its wrapped status as the
// HTTP status.
func writeEnvelope(r *http.Request, w http.ResponseWriter, resp agent.Response) {
	httpx.WriteJsonCtx(r.Context(), w, resp.StatusCode(), resp)
}
