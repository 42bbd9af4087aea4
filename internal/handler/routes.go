// Code scaffolded by goctl. Safe to edit.
// goctl 1.9.2

package handler

import (
	"net/http"

	"finanalyst-api/internal/svc"

	"github.com/zeromicro/go-zero/rest"
)

func RegisterHandlers(server *rest.Server, serverCtx *svc.ServiceContext) {
	server.AddRoutes(
		[]rest.Route{
			{
				Method:  http.MethodPost,
				Path:    "/data_fetcher",
				Handler: DataFetcherHandler(serverCtx),
			},
			{
				Method:  http.MethodPost,
				Path:    "/technical_analysis",
				Handler: TechnicalAnalysisHandler(serverCtx),
			},
			{
				Method:  http.MethodPost,
				Path:    "/prediction",
				Handler: PredictionHandler(serverCtx),
			},
		},
	)

	server.AddRoutes(
		[]rest.Route{
			{
				Method:  http.MethodGet,
				Path:    "/indicators/:symbol",
				Handler: IndicatorsHandler(serverCtx),
			},
			{
				Method:  http.MethodGet,
				Path:    "/predictions/:symbol",
				Handler: LatestPredictionHandler(serverCtx),
			},
			{
				Method:  http.MethodGet,
				Path:    "/healthz",
				Handler: HealthHandler(serverCtx),
			},
		},
		rest.WithPrefix("/api"),
	)
}
