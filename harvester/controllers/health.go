package controllers

import (
	"encoding/json"
	"net/http"
)

type HealthController struct {
	archive bool
	mirror  bool
}

func NewHealthController(archive, mirror bool) *HealthController {
	return &HealthController{archive: archive, mirror: mirror}
}

func (h *HealthController) HealthCheck(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]any{
		"status":  "ok",
		"archive": h.archive,
		"mirror":  h.mirror,
	})
}
