package httpapi

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gomarkdown/markdown"

	"datacheck/domain/audit"
	"datacheck/domain/core"
	"datacheck/internal/integrity"
	"datacheck/internal/logging"
	"datacheck/ports"
)

// App serves the audit API
type App struct {
	router  *chi.Mux
	config  Config
	checker *integrity.Checker
	source  ports.TableSourcePort
	runs    ports.RunRepositoryPort
	logger  *logging.Logger
}

// Config holds API application settings
type Config struct {
	Port       string
	Thresholds integrity.Thresholds
	Parallel   bool
}

// NewApp creates the audit API application. Audit lines are emitted through
// the logger. A nil runs repository disables persistence: POST /audits still
// works, the history endpoints answer 503.
func NewApp(config Config, source ports.TableSourcePort, runs ports.RunRepositoryPort, logger *logging.Logger) *App {
	app := &App{
		router:  chi.NewRouter(),
		config:  config,
		checker: integrity.New(config.Thresholds, logging.NewSinkAdapter(logger)),
		source:  source,
		runs:    runs,
		logger:  logger,
	}

	app.setupMiddleware()
	app.setupRoutes()

	return app
}

// setupMiddleware configures HTTP middleware
func (a *App) setupMiddleware() {
	a.router.Use(middleware.Logger)
	a.router.Use(middleware.Recoverer)
	a.router.Use(middleware.Compress(5))
}

// setupRoutes configures the application routes
func (a *App) setupRoutes() {
	a.router.Get("/healthz", a.handleHealth)

	a.router.Post("/audits", a.handleRunAudit)
	a.router.Get("/audits", a.handleListRuns)
	a.router.Get("/audits/{id}", a.handleGetRun)
	a.router.Get("/audits/{id}/report", a.handleRunReport)
}

// Router exposes the configured handler, mainly for tests and embedding
func (a *App) Router() http.Handler {
	return a.router
}

// Start runs the HTTP server
func (a *App) Start() error {
	addr := ":" + a.config.Port
	a.logger.Info("audit API listening on %s", addr)
	return http.ListenAndServe(addr, a.router)
}

func (a *App) handleHealth(w http.ResponseWriter, r *http.Request) {
	a.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Uploads above this size are rejected before any parsing happens
const maxUploadBytes = 512 << 20

// handleRunAudit accepts a dataset upload as the multipart field "dataset",
// audits it and answers with the full report. The report is returned even
// when the run aborted; FailedWith tells the two apart. An optional form
// field "parallel" overrides the configured runner.
func (a *App) handleRunAudit(w http.ResponseWriter, r *http.Request) {
	file, header, err := r.FormFile("dataset")
	if err != nil {
		a.writeError(w, http.StatusBadRequest, "dataset file is required")
		return
	}
	defer file.Close()

	if header.Size > maxUploadBytes {
		a.writeError(w, http.StatusBadRequest,
			fmt.Sprintf("file size %d exceeds the %d byte limit", header.Size, maxUploadBytes))
		return
	}

	filename := filepath.Base(header.Filename)
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".csv", ".xlsx":
	default:
		a.writeError(w, http.StatusBadRequest, "only .csv and .xlsx files are accepted")
		return
	}

	// Spool the upload under its original name so the dataset keeps it
	dir, err := os.MkdirTemp("", "datacheck-upload-")
	if err != nil {
		a.logger.Error("failed to create upload directory: %v", err)
		a.writeError(w, http.StatusInternalServerError, "failed to store upload")
		return
	}
	defer os.RemoveAll(dir)

	path := filepath.Join(dir, filename)
	dst, err := os.Create(path)
	if err == nil {
		_, err = io.Copy(dst, file)
		if closeErr := dst.Close(); err == nil {
			err = closeErr
		}
	}
	if err != nil {
		a.logger.Error("failed to store upload: %v", err)
		a.writeError(w, http.StatusInternalServerError, "failed to store upload")
		return
	}

	table, err := a.source.Load(r.Context(), path)
	if err != nil {
		a.logger.Warn("audit request rejected: %v", err)
		a.writeError(w, http.StatusBadRequest, "cannot load dataset: "+err.Error())
		return
	}

	parallel := a.config.Parallel
	if raw := r.FormValue("parallel"); raw != "" {
		v, parseErr := strconv.ParseBool(raw)
		if parseErr != nil {
			a.writeError(w, http.StatusBadRequest, "parallel must be a boolean")
			return
		}
		parallel = v
	}

	var report *audit.Report
	if parallel {
		report, err = a.checker.RunConcurrent(r.Context(), table)
	} else {
		report, err = a.checker.Run(r.Context(), table)
	}
	if err != nil {
		a.logger.Warn("audit of %s aborted: %v", table.Name(), err)
	}

	if a.runs != nil {
		if saveErr := a.runs.Save(r.Context(), report); saveErr != nil {
			a.logger.Error("failed to save audit run: %v", saveErr)
			a.writeError(w, http.StatusInternalServerError, "failed to save audit run")
			return
		}
	}

	a.writeJSON(w, http.StatusOK, map[string]interface{}{
		"report": report,
		"clean":  report.Clean(),
	})
}

// handleListRuns returns recent runs, newest first, findings omitted
func (a *App) handleListRuns(w http.ResponseWriter, r *http.Request) {
	if a.runs == nil {
		a.writeError(w, http.StatusServiceUnavailable, "run storage is not configured")
		return
	}

	limit := 20
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		if v, err := strconv.Atoi(limitStr); err == nil && v >= 1 && v <= 200 {
			limit = v
		}
	}
	offset := 0
	if offsetStr := r.URL.Query().Get("offset"); offsetStr != "" {
		if v, err := strconv.Atoi(offsetStr); err == nil && v >= 0 {
			offset = v
		}
	}

	runs, err := a.runs.List(r.Context(), limit, offset)
	if err != nil {
		a.logger.Error("failed to list audit runs: %v", err)
		a.writeError(w, http.StatusInternalServerError, "failed to list audit runs")
		return
	}

	a.writeJSON(w, http.StatusOK, map[string]interface{}{
		"runs":  runs,
		"count": len(runs),
	})
}

// handleGetRun returns one stored run with its findings
func (a *App) handleGetRun(w http.ResponseWriter, r *http.Request) {
	report, ok := a.fetchRun(w, r)
	if !ok {
		return
	}
	a.writeJSON(w, http.StatusOK, report)
}

// handleRunReport renders one stored run as an HTML report
func (a *App) handleRunReport(w http.ResponseWriter, r *http.Request) {
	report, ok := a.fetchRun(w, r)
	if !ok {
		return
	}

	page := markdown.ToHTML([]byte(report.Markdown()), nil, nil)
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(page); err != nil {
		a.logger.Error("failed to write report page: %v", err)
	}
}

// fetchRun resolves the {id} path parameter against the repository. It writes
// the error response itself and reports success through the bool.
func (a *App) fetchRun(w http.ResponseWriter, r *http.Request) (*audit.Report, bool) {
	if a.runs == nil {
		a.writeError(w, http.StatusServiceUnavailable, "run storage is not configured")
		return nil, false
	}

	id, err := core.ParseRunID(chi.URLParam(r, "id"))
	if err != nil {
		a.writeError(w, http.StatusBadRequest, "invalid run id")
		return nil, false
	}

	report, err := a.runs.GetByID(r.Context(), id)
	if err != nil {
		if core.IsNotFoundError(err) {
			a.writeError(w, http.StatusNotFound, "audit run not found")
			return nil, false
		}
		a.logger.Error("failed to get audit run %s: %v", id, err)
		a.writeError(w, http.StatusInternalServerError, "failed to get audit run")
		return nil, false
	}
	return report, true
}

func (a *App) writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		a.logger.Error("failed to encode response: %v", err)
	}
}

func (a *App) writeError(w http.ResponseWriter, status int, message string) {
	a.writeJSON(w, status, map[string]string{"error": message})
}
