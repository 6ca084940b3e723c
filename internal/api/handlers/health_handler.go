package handlers

import "net/http"

type HealthHandler struct {
	env       string
	hasAPIKey bool
}

func NewHealthHandler(env string, hasAPIKey bool) *HealthHandler {
	return &HealthHandler{env: env, hasAPIKey: hasAPIKey}
}

type healthResponse struct {
	Status    string `json:"status"`
	Env       string `json:"env"`
	HasAPIKey bool   `json:"hasApiKey"`
}

func (h *HealthHandler) Health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, healthResponse{Status: "ok", Env: h.env, HasAPIKey: h.hasAPIKey})
}
