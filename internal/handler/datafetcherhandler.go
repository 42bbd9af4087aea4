// Code scaffolded by goctl. Safe to edit.
// goctl 1.9.2

package handler

import (
	"net/http"

	"finanalyst-api/internal/logic"
	"finanalyst-api/internal/svc"

	"github.com/zeromicro/go-zero/rest/httpx"
)

func DataFetcherHandler(svcCtx *svc.ServiceContext) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ev, err := decodeEvent(r)
		if err != nil {
			httpx.ErrorCtx(r.Context(), w, err)
			return
		}

		l := logic.NewDataFetcherLogic(r.Context(), svcCtx)
		writeEnvelope(r, w, l.DataFetcher(ev))
	}
}
