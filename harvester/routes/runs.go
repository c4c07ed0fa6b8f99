package routes

import (
	"errors"
	"net/http"
	"strconv"

	"harvester/harvester/config"
	"harvester/harvester/controllers"
	"harvester/harvester/middlewares"
	"harvester/harvester/utils/logging"

	"github.com/coder/websocket"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// RunRoutes registers the pipeline run endpoints
func RunRoutes(ctrl *controllers.RunsController, cfg config.Config) chi.Router {
	r := chi.NewRouter()

	r.Group(func(gr chi.Router) {
		gr.Use(middlewares.AuthMiddleware(cfg))

		// POST /runs : run the pipeline now and return its summary
		gr.Post("/", handleJSON(func(r *http.Request) (any, int, error) {
			summary, err := ctrl.Trigger(r.Context())
			if errors.Is(err, controllers.ErrRunInProgress) {
				return nil, http.StatusConflict, err
			}
			if err != nil {
				return nil, http.StatusInternalServerError, err
			}
			return summary, http.StatusOK, nil
		}))

		// GET /runs?limit=n : archived runs, newest first
		gr.Get("/", handleJSON(func(r *http.Request) (any, int, error) {
			limit := 20
			if s := r.URL.Query().Get("limit"); s != "" {
				n, err := strconv.Atoi(s)
				if err != nil || n <= 0 {
					return nil, http.StatusBadRequest, errors.New("limit must be a positive integer")
				}
				limit = n
			}
			runs, err := ctrl.List(r.Context(), limit)
			if errors.Is(err, controllers.ErrArchiveDisabled) {
				return nil, http.StatusServiceUnavailable, err
			}
			if err != nil {
				return nil, http.StatusInternalServerError, err
			}
			return runs, http.StatusOK, nil
		}))

		// GET /runs/ws : run the pipeline and stream its progress
		gr.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
			conn, err := websocket.Accept(w, r, nil)
			if err != nil {
				logging.ErrorLogger.Error("websocket accept error", zap.Error(err))
				return
			}
			ctrl.Stream(r.Context(), conn)
		})

		// GET /runs/{run_id} : one archived run with its records
		gr.Get("/{run_id}", handleJSON(func(r *http.Request) (any, int, error) {
			id, err := uuid.Parse(chi.URLParam(r, "run_id"))
			if err != nil {
				return nil, http.StatusBadRequest, err
			}
			run, err := ctrl.Get(r.Context(), id)
			if errors.Is(err, controllers.ErrArchiveDisabled) {
				return nil, http.StatusServiceUnavailable, err
			}
			if err != nil {
				return nil, http.StatusInternalServerError, err
			}
			if run == nil {
				return nil, http.StatusNotFound, errors.New("run not found")
			}
			return run, http.StatusOK, nil
		}))
	})

	return r
}
