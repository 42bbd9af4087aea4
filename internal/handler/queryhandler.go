package handler

import (
	"errors"
	"net/http"

	"finanalyst-api/internal/logic"
	"finanalyst-api/internal/svc"
	"finanalyst-api/internal/types"
	"finanalyst-api/pkg/agent"

	"github.com/zeromicro/go-zero/rest/httpx"
)

func IndicatorsHandler(svcCtx *svc.ServiceContext) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req types.IndicatorsRequest
		if err := httpx.Parse(r, &req); err != nil {
			httpx.ErrorCtx(r.Context(), w, err)
			return
		}

		l := logic.NewQueryLogic(r.Context(), svcCtx)
		resp, err := l.Indicators(&req)
		if err != nil {
			writeQueryError(r, w, err)
			return
		}
		httpx.OkJsonCtx(r.Context(), w, resp)
	}
}

func LatestPredictionHandler(svcCtx *svc.ServiceContext) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req types.PredictionRequest
		if err := httpx.Parse(r, &req); err != nil {
			httpx.ErrorCtx(r.Context(), w, err)
			return
		}

		l := logic.NewQueryLogic(r.Context(), svcCtx)
		resp, err := l.Prediction(&req)
		if err != nil {
			writeQueryError(r, w, err)
			return
		}
		httpx.OkJsonCtx(r.Context(), w, resp)
	}
}

func HealthHandler(svcCtx *svc.ServiceContext) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		httpx.OkJsonCtx(r.Context(), w, types.HealthResponse{
			Status:   "ok",
			Env:      svcCtx.Config.Env,
			Provider: svcCtx.DefaultMarketName,
			Model:    svcCtx.Forecaster != nil,
		})
	}
}

func writeQueryError(r *http.Request, w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	if errors.Is(err, logic.ErrNotCached) {
		status = http.StatusNotFound
	}
	httpx.WriteJsonCtx(r.Context(), w, status, agent.ErrorBody{Error: err.Error()})
}
