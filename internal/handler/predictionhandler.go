// Code scaffolded by goctl. Safe to edit.
// goctl 1.9.2

package handler

import (
	"net/http"

	"finanalyst-api/internal/logic"
	"finanalyst-api/internal/svc"
	"finanalyst-api/pkg/agent"

	"github.com/zeromicro/go-zero/rest/httpx"
)

func PredictionHandler(svcCtx *svc.ServiceContext) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ev, err := decodeEvent(r)
		if err != nil {
			httpx.ErrorCtx(r.Context(), w, err)
			return
		}
		if !agent.IsAgentEvent(ev) {
			httpx.OkJsonCtx(r.Context(), w, logic.InfoMessage{Message: logic.NonAgentMessage})
			return
		}

		l := logic.NewPredictionLogic(r.Context(), svcCtx)
		writeEnvelope(r, w, l.Prediction(ev))
	}
}
