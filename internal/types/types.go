// Code scaffolded by goctl. Safe to edit.
// goctl 1.9.2

package types

type IndicatorsRequest struct {
	Symbol   string `path:"symbol"`
	Interval string `form:"interval,optional"`
}

type PredictionRequest struct {
	Symbol string `path:"symbol"`
}

type HealthResponse struct {
	Status   string `json:"status"`
	Env      string `json:"env"`
	Provider string `json:"provider"`
	Model    bool   `json:"model_configured"`
}
