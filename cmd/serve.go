package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/adbuddy-ai/backend/internal/model"
	"github.com/adbuddy-ai/backend/internal/store"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API server",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		env, err := initPipeline(ctx)
		if err != nil {
			return err
		}
		defer env.Close()

		port := servePort
		if port == 0 {
			port = cfg.Server.Port
		}

		srv := &http.Server{
			Addr:    fmt.Sprintf(":%d", port),
			Handler: newRouter(env),
		}

		// Graceful shutdown
		go func() {
			<-ctx.Done()
			zap.L().Info("shutting down server")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			_ = srv.Shutdown(shutdownCtx)
		}()

		zap.L().Info("starting server", zap.Int("port", port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return eris.Wrap(err, "server listen")
		}

		return nil
	},
}

func newRouter(env *pipelineEnv) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: cfg.Server.AllowedOrigins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
	}))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/api", func(r chi.Router) {
		r.Post("/competitors", handleCreateCompetitorRun(env))
		r.Get("/competitors/{id}", handleGetCompetitorRun(env))
		r.Post("/campaigns", handleCreateCampaignRun(env))
		r.Get("/campaigns/{id}", handleGetCampaignRun(env))
	})

	return r
}

type companyRequest struct {
	Name       string                    `json:"name"`
	Details    string                    `json:"details"`
	Transcript []model.TranscriptMessage `json:"transcript,omitempty"`
}

func handleCreateCompetitorRun(env *pipelineEnv) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req companyRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			respondError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		if req.Name == "" {
			respondError(w, http.StatusBadRequest, "name is required")
			return
		}

		company := model.Company{Name: req.Name, Details: req.Details}
		run := &model.CompetitorRun{Company: company, Status: model.RunStatusQueued}
		if err := env.Store.CreateCompetitorRun(r.Context(), run); err != nil {
			zap.L().Error("create competitor run", zap.Error(err))
			respondError(w, http.StatusInternalServerError, "could not create run")
			return
		}

		// The goroutine owns the run record from here on; the response is
		// built from values captured before it starts.
		id, status := run.ID, string(run.Status)

		// Discovery runs asynchronously; poll GET /api/competitors/{id}.
		go func() {
			ctx := context.Background()
			run.Status = model.RunStatusProcessing
			persistCompetitorRun(ctx, env.Store, run)

			competitors, err := env.Pipeline.FindCompetitors(ctx, company)
			if err != nil {
				zap.L().Error("competitor run failed",
					zap.String("run_id", run.ID),
					zap.Error(err),
				)
				run.Status = model.RunStatusError
				run.ErrorMessage = err.Error()
				persistCompetitorRun(ctx, env.Store, run)
				return
			}

			run.Status = model.RunStatusProcessed
			run.Competitors = competitors
			persistCompetitorRun(ctx, env.Store, run)
		}()

		respondJSON(w, http.StatusAccepted, map[string]string{
			"id":     id,
			"status": status,
		})
	}
}

func handleGetCompetitorRun(env *pipelineEnv) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		run, err := env.Store.GetCompetitorRun(r.Context(), chi.URLParam(r, "id"))
		if eris.Is(err, store.ErrNotFound) {
			respondError(w, http.StatusNotFound, "run not found")
			return
		}
		if err != nil {
			zap.L().Error("get competitor run", zap.Error(err))
			respondError(w, http.StatusInternalServerError, "could not load run")
			return
		}
		respondJSON(w, http.StatusOK, run)
	}
}

func handleCreateCampaignRun(env *pipelineEnv) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req companyRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			respondError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		if req.Name == "" {
			respondError(w, http.StatusBadRequest, "name is required")
			return
		}

		company := model.Company{Name: req.Name, Details: req.Details}
		transcript := model.Transcript(req.Transcript)
		run := &model.CampaignRun{
			Company:    company,
			Status:     model.RunStatusQueued,
			Transcript: transcript,
		}
		if err := env.Store.CreateCampaignRun(r.Context(), run); err != nil {
			zap.L().Error("create campaign run", zap.Error(err))
			respondError(w, http.StatusInternalServerError, "could not create run")
			return
		}

		// The goroutine owns the run record from here on; the response is
		// built from values captured before it starts.
		id, status := run.ID, string(run.Status)

		// Generation runs asynchronously; poll GET /api/campaigns/{id}.
		go func() {
			ctx := context.Background()
			run.Status = model.RunStatusProcessing
			persistCampaignRun(ctx, env.Store, run)

			result, err := env.Pipeline.GenerateCampaign(ctx, company, transcript)
			if err != nil {
				zap.L().Error("campaign run failed",
					zap.String("run_id", run.ID),
					zap.Error(err),
				)
				run.Status = model.RunStatusError
				run.ErrorMessage = err.Error()
				persistCampaignRun(ctx, env.Store, run)
				return
			}

			run.Status = model.RunStatusProcessed
			run.Title = result.Title
			run.Plan = result.Plan
			persistCampaignRun(ctx, env.Store, run)
		}()

		respondJSON(w, http.StatusAccepted, map[string]string{
			"id":     id,
			"status": status,
		})
	}
}

func handleGetCampaignRun(env *pipelineEnv) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		run, err := env.Store.GetCampaignRun(r.Context(), chi.URLParam(r, "id"))
		if eris.Is(err, store.ErrNotFound) {
			respondError(w, http.StatusNotFound, "run not found")
			return
		}
		if err != nil {
			zap.L().Error("get campaign run", zap.Error(err))
			respondError(w, http.StatusInternalServerError, "could not load run")
			return
		}
		respondJSON(w, http.StatusOK, run)
	}
}

// persistCompetitorRun writes a status transition. A failed write would
// otherwise strand the run at its previous status with no trace.
func persistCompetitorRun(ctx context.Context, st store.Store, run *model.CompetitorRun) {
	if err := st.UpdateCompetitorRun(ctx, run); err != nil {
		zap.L().Error("persist competitor run",
			zap.String("run_id", run.ID),
			zap.String("status", string(run.Status)),
			zap.Error(err),
		)
	}
}

func persistCampaignRun(ctx context.Context, st store.Store, run *model.CampaignRun) {
	if err := st.UpdateCampaignRun(ctx, run); err != nil {
		zap.L().Error("persist campaign run",
			zap.String("run_id", run.ID),
			zap.String("status", string(run.Status)),
			zap.Error(err),
		)
	}
}

func respondJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func respondError(w http.ResponseWriter, code int, msg string) {
	respondJSON(w, code, map[string]string{"error": msg})
}
