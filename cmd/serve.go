package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/solarsense-cli/internal/advice"
	"github.com/sells-group/solarsense-cli/internal/config"
	"github.com/sells-group/solarsense-cli/internal/lead"
	"github.com/sells-group/solarsense-cli/internal/model"
	"github.com/sells-group/solarsense-cli/internal/plan"
	"github.com/sells-group/solarsense-cli/internal/report"
	"github.com/sells-group/solarsense-cli/internal/store"
)

var (
	servePort    int
	serveOffline bool
)

// maxBodyBytes caps JSON request bodies.
const maxBodyBytes = 1 << 20

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		env, err := initEnv(ctx, config.ModeServe, serveOffline)
		if err != nil {
			return err
		}
		defer env.Close()

		catalog, err := advice.LoadCatalog()
		if err != nil {
			return err
		}

		port := servePort
		if port == 0 {
			port = cfg.Server.Port
		}

		srv := &http.Server{
			Addr:              fmt.Sprintf(":%d", port),
			Handler:           newRouter(env, catalog, cfg.Server.AllowedOrigins),
			ReadHeaderTimeout: 10 * time.Second,
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

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "server port (default from config)")
	serveCmd.Flags().BoolVar(&serveOffline, "offline", false, "skip the advice service and use the fallback list")
	rootCmd.AddCommand(serveCmd)
}

// newRouter builds the HTTP API over env.
func newRouter(env *appEnv, catalog *advice.Catalog, allowedOrigins []string) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(requestLogger)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: allowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))

	h := &apiHandler{env: env, catalog: catalog, plans: plan.NewService(env.Store, catalog)}

	r.Get("/health", h.health)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/v1", func(r chi.Router) {
		r.Post("/audits", h.createAudit)
		r.Get("/audits/{id}", h.getAudit)
		r.Post("/audits/{id}/report", h.generateAudit)

		r.Post("/solar/assessments", h.createAssessment)
		r.Get("/solar/assessments/{id}", h.getAssessment)
		r.Get("/solar/assessments/{id}/pdf", h.getAssessmentPDF)

		r.Post("/leads", h.createLead)
		r.Post("/leads/{id}/site-visits", h.createSiteVisit)
		r.Get("/leads/{id}/report", h.getLeadReport)

		r.Get("/actions", h.listActions)

		r.Get("/users/{id}/plan", h.listPlan)
		r.Post("/users/{id}/plan", h.addToPlan)
		r.Delete("/users/{id}/plan/{code}", h.removeFromPlan)
	})

	return r
}

func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		zap.L().Debug("http request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.Duration("duration", time.Since(start)),
			zap.String("request_id", middleware.GetReqID(r.Context())),
		)
	})
}

type apiHandler struct {
	env     *appEnv
	catalog *advice.Catalog
	plans   *plan.Service
}

func (h *apiHandler) health(w http.ResponseWriter, r *http.Request) {
	status := http.StatusOK
	body := map[string]string{
		"status":         "ok",
		"advice_circuit": h.env.Ranker.CircuitState().String(),
	}
	if err := h.env.Store.Ping(r.Context()); err != nil {
		status = http.StatusServiceUnavailable
		body["status"] = "degraded"
		body["store"] = err.Error()
	}
	writeJSONResponse(w, status, body)
}

func (h *apiHandler) createAudit(w http.ResponseWriter, r *http.Request) {
	var p model.AuditProfile
	if !decodeBody(w, r, &p) {
		return
	}
	rep, err := h.env.Audits.Submit(r.Context(), p)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSONResponse(w, http.StatusCreated, rep)
}

// getAudit only reads. An audit stored without a report is 404 here until
// generateAudit runs.
func (h *apiHandler) getAudit(w http.ResponseWriter, r *http.Request) {
	rep, err := h.env.Store.GetAuditReport(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSONResponse(w, http.StatusOK, rep)
}

// generateAudit builds and stores the report of a stored audit. A report
// that already exists is returned as is.
func (h *apiHandler) generateAudit(w http.ResponseWriter, r *http.Request) {
	rep, err := h.env.Audits.Generate(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSONResponse(w, http.StatusOK, rep)
}

func (h *apiHandler) createAssessment(w http.ResponseWriter, r *http.Request) {
	var p model.AuditProfile
	if !decodeBody(w, r, &p) {
		return
	}
	a, err := h.env.Solar.Assess(r.Context(), p)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSONResponse(w, http.StatusCreated, a)
}

func (h *apiHandler) getAssessment(w http.ResponseWriter, r *http.Request) {
	a, err := h.env.Store.GetSolarAssessment(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSONResponse(w, http.StatusOK, a)
}

func (h *apiHandler) getAssessmentPDF(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	a, err := h.env.Store.GetSolarAssessment(r.Context(), id)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	data, err := report.RenderSolarPDF(*a)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="solar-%s.pdf"`, id))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

func (h *apiHandler) createLead(w http.ResponseWriter, r *http.Request) {
	var in model.Lead
	if !decodeBody(w, r, &in) {
		return
	}
	if err := lead.Validate(in); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	l, err := createLead(r.Context(), h.env, in)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSONResponse(w, http.StatusCreated, l)
}

func (h *apiHandler) createSiteVisit(w http.ResponseWriter, r *http.Request) {
	var c model.SiteVisitChecklist
	if !decodeBody(w, r, &c) {
		return
	}
	rep, err := h.env.Field.RecordVisit(r.Context(), chi.URLParam(r, "id"), c)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSONResponse(w, http.StatusCreated, rep)
}

func (h *apiHandler) getLeadReport(w http.ResponseWriter, r *http.Request) {
	rep, err := h.env.Field.Latest(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSONResponse(w, http.StatusOK, rep)
}

func (h *apiHandler) listActions(w http.ResponseWriter, r *http.Request) {
	writeJSONResponse(w, http.StatusOK, map[string]any{
		"actions": h.catalog.Search(r.URL.Query().Get("q")),
	})
}

func (h *apiHandler) listPlan(w http.ResponseWriter, r *http.Request) {
	items, err := h.plans.List(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writePlanError(w, err)
		return
	}
	writeJSONResponse(w, http.StatusOK, map[string]any{"items": items})
}

func (h *apiHandler) addToPlan(w http.ResponseWriter, r *http.Request) {
	var in struct {
		ActionCode string `json:"action_code"`
	}
	if !decodeBody(w, r, &in) {
		return
	}
	item, err := h.plans.Add(r.Context(), chi.URLParam(r, "id"), in.ActionCode)
	if err != nil {
		writePlanError(w, err)
		return
	}
	writeJSONResponse(w, http.StatusCreated, item)
}

func (h *apiHandler) removeFromPlan(w http.ResponseWriter, r *http.Request) {
	if err := h.plans.Remove(r.Context(), chi.URLParam(r, "id"), chi.URLParam(r, "code")); err != nil {
		writePlanError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// --- helpers ---

func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, "request body too large")
			return false
		}
		writeError(w, http.StatusBadRequest, "invalid request body")
		return false
	}
	return true
}

func writePlanError(w http.ResponseWriter, err error) {
	if plan.IsInvalid(err) {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeStoreError(w, err)
}

func writeStoreError(w http.ResponseWriter, err error) {
	if store.IsNotFound(err) {
		writeError(w, http.StatusNotFound, "not found")
		return
	}
	zap.L().Error("http handler failed", zap.Error(err))
	writeError(w, http.StatusInternalServerError, "internal error")
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSONResponse(w, status, map[string]string{"error": msg})
}

func writeJSONResponse(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
