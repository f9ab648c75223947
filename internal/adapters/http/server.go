package httpadapter

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/oapi-codegen/runtime"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"riskscan/internal/domain"
	"riskscan/internal/ports"
	"riskscan/internal/services/tally"
)

const (
	defaultHistoryLimit = 5
	maxHistoryLimit     = 100
	maxBodyBytes        = 1 << 20
)

// Error messages shared with the backend client.
const (
	MsgSubmitFailed = "urlscan submit failed"
	MsgResultFailed = "urlscan result failed"
	MsgTimeout      = "urlscan timeout"
	MsgCheckFailed  = "error running checks"
)

type Server struct {
	scanner  ports.Scanner
	checker  ports.Checker
	history  ports.HistoryRepository
	profiles ports.Profiles
	tally    *tally.Tally
}

// New wires the handlers. A nil scanner makes /urlscan and /check answer 500.
func New(scanner ports.Scanner, checker ports.Checker, history ports.HistoryRepository, profiles ports.Profiles, t *tally.Tally) *Server {
	return &Server{scanner: scanner, checker: checker, history: history, profiles: profiles, tally: t}
}

// Routes returns the chi router for the API.
func (s *Server) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:     []string{"*"},
		AllowedMethods:     []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders:     []string{"Content-Type"},
		OptionsPassthrough: true,
	}))
	r.Use(noContentOptions)

	r.Get("/", s.getRoot)
	r.Get("/healthz", s.getHealthz)
	r.Post("/urlscan", s.postURLScan)
	r.Post("/check", s.postCheck)
	r.Post("/save-scan", s.postSaveScan)
	r.Get("/scans", s.getScans)
	r.Get("/profiles/{domain}", s.getProfile)
	r.Get("/counts", s.getCounts)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusNotFound, "Route not found", "")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusNotFound, "Route not found", "")
	})
	return r
}

func (s *Server) getRoot(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"message": "Backend is running"})
}

func (s *Server) getHealthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type urlRequest struct {
	URL string `json:"url"`
}

func (s *Server) postURLScan(w http.ResponseWriter, r *http.Request) {
	var req urlRequest
	if !decode(w, r, &req) {
		return
	}
	if req.URL == "" {
		writeError(w, http.StatusBadRequest, "url is required", "")
		return
	}
	if s.scanner == nil {
		writeError(w, http.StatusInternalServerError, "URLSCAN_API_KEY missing", "")
		return
	}
	out, err := s.scanner.Scan(r.Context(), req.URL)
	if err != nil {
		status, msg, details := scanErrorResponse(err)
		writeError(w, status, msg, details)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

// scanErrorResponse maps scan failures onto the status codes the frontend expects.
func scanErrorResponse(err error) (int, string, string) {
	var se *domain.SubmitError
	var pe *domain.PollError
	switch {
	case errors.As(err, &se):
		return http.StatusBadGateway, MsgSubmitFailed, detailsOf(se.Body, se.Err)
	case errors.As(err, &pe):
		return http.StatusBadGateway, MsgResultFailed, detailsOf(pe.Body, pe.Err)
	case errors.Is(err, domain.ErrPollTimeout):
		return http.StatusGatewayTimeout, MsgTimeout, ""
	}
	return http.StatusInternalServerError, MsgCheckFailed, ""
}

func detailsOf(body string, err error) string {
	if body == "" && err != nil {
		return err.Error()
	}
	return body
}

func (s *Server) postCheck(w http.ResponseWriter, r *http.Request) {
	var req urlRequest
	if !decode(w, r, &req) {
		return
	}
	u, err := domain.NormalizeURL(req.URL)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid URL.", "")
		return
	}
	if s.checker == nil {
		writeError(w, http.StatusInternalServerError, "URLSCAN_API_KEY missing", "")
		return
	}
	report, err := s.checker.Check(r.Context(), u)
	if err != nil {
		writeError(w, http.StatusBadGateway, MsgCheckFailed, "")
		return
	}
	writeJSON(w, http.StatusOK, report)
}

type saveRequest struct {
	URL    string `json:"url"`
	Result string `json:"result"`
}

func (s *Server) postSaveScan(w http.ResponseWriter, r *http.Request) {
	var req saveRequest
	if !decode(w, r, &req) {
		return
	}
	if req.URL == "" || req.Result == "" {
		writeError(w, http.StatusBadRequest, "url and result are required", "")
		return
	}
	rec := domain.ScanRecord{URL: req.URL, Result: req.Result}
	if host, err := domain.Hostname(req.URL); err == nil {
		rec.Domain = domain.Registrable(host)
	}
	saved, err := s.history.Save(r.Context(), rec)
	if err != nil {
		slog.Error("save scan failed", "url", req.URL, "err", err)
		writeError(w, http.StatusInternalServerError, err.Error(), "")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "data": saved})
}

func (s *Server) getScans(w http.ResponseWriter, r *http.Request) {
	var param *int
	if err := runtime.BindQueryParameter("form", true, false, "limit", r.URL.Query(), &param); err != nil {
		writeError(w, http.StatusBadRequest, "limit must be an integer", "")
		return
	}
	limit := defaultHistoryLimit
	if param != nil {
		limit = *param
	}
	if limit < 1 || limit > maxHistoryLimit {
		writeError(w, http.StatusBadRequest, "limit must be between 1 and 100", "")
		return
	}
	recs, err := s.history.Recent(r.Context(), limit)
	if err != nil {
		slog.Error("read scans failed", "err", err)
		writeJSON(w, http.StatusInternalServerError, map[string]any{"success": false, "error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "data": recs})
}

func (s *Server) getProfile(w http.ResponseWriter, r *http.Request) {
	prof, err := s.profiles.GetLatest(r.Context(), chi.URLParam(r, "domain"))
	if errors.Is(err, domain.ErrNotFound) {
		writeError(w, http.StatusNotFound, "no scans for domain", "")
		return
	}
	if err != nil {
		slog.Error("profile lookup failed", "err", err)
		writeError(w, http.StatusInternalServerError, err.Error(), "")
		return
	}
	writeJSON(w, http.StatusOK, prof)
}

func (s *Server) getCounts(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.tally.Snapshot())
}

func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON body", "")
		return false
	}
	return true
}

type errorBody struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

func writeError(w http.ResponseWriter, status int, msg, details string) {
	writeJSON(w, status, errorBody{Error: msg, Details: details})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Warn("write response failed", "err", err)
	}
}

// noContentOptions answers every OPTIONS request once CORS headers are set.
func noContentOptions(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		slog.Info("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"duration", time.Since(start),
			"request_id", middleware.GetReqID(r.Context()),
		)
	})
}
