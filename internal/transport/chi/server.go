// Package chi serves the search API over HTTP.
package chi

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"go.uber.org/zap"

	"github.com/kailas-cloud/usersearch/internal/domain"
	"github.com/kailas-cloud/usersearch/internal/domain/search/request"
	domusage "github.com/kailas-cloud/usersearch/internal/domain/usage"
	logpkg "github.com/kailas-cloud/usersearch/internal/logger"
	healthuc "github.com/kailas-cloud/usersearch/internal/usecase/health"
)

// maxChatBody caps the POST /ai/test body.
const maxChatBody = 64 << 10

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error, msg string) bool

// Server holds the HTTP handlers.
type Server struct {
	search        Searcher
	chat          Chatter
	cache         CacheAdmin
	usage         UsageReporter
	health        HealthChecker
	logger        *zap.Logger
	errorHandlers []errorHandler
}

// NewServer creates an HTTP API server. chat and cache can be nil; their
// endpoints then answer 503.
func NewServer(
	search Searcher,
	chat Chatter,
	cache CacheAdmin,
	usage UsageReporter,
	health HealthChecker,
	logger *zap.Logger,
) *Server {
	s := &Server{
		search: search,
		chat:   chat,
		cache:  cache,
		usage:  usage,
		health: health,
		logger: logger,
	}
	s.errorHandlers = []errorHandler{
		sentinelHandler(domain.ErrInvalidRequest, http.StatusBadRequest, CodeValidationFailed),
		sentinelHandler(domain.ErrBudgetExceeded, http.StatusServiceUnavailable, CodeModelUnavailable),
		sentinelHandler(domain.ErrModelUnavailable, http.StatusServiceUnavailable, CodeModelUnavailable),
		sentinelHandler(domain.ErrModelResponseInvalid, http.StatusBadGateway, CodeModelUnavailable),
	}
	return s
}

// Search handles GET /ai/search.
func (s *Server) Search(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	skip, err := intParam(q.Get("skip"), 0)
	if err != nil {
		writeError(w, http.StatusBadRequest, CodeBadRequest, "skip must be an integer")
		return
	}
	limit, err := intParam(q.Get("limit"), request.DefaultLimit)
	if err != nil {
		writeError(w, http.StatusBadRequest, CodeBadRequest, "limit must be an integer")
		return
	}
	if limit == 0 {
		// 0 would otherwise mean "default" to request.New
		writeError(w, http.StatusBadRequest, CodeValidationFailed,
			fmt.Sprintf("limit must be between 1 and %d", request.MaxLimit))
		return
	}
	rank, err := boolParam(q.Get("enable_ranking"))
	if err != nil {
		writeError(w, http.StatusBadRequest, CodeBadRequest, "enable_ranking must be a boolean")
		return
	}

	req, err := request.New(q.Get("query"), skip, limit, rank)
	if err != nil {
		writeError(w, http.StatusBadRequest, CodeValidationFailed, err.Error())
		return
	}

	ctx, usage := domain.NewContextWithUsage(r.Context())
	res, err := s.search.Search(ctx, req)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	setModelHeaders(w, usage)
	writeJSON(w, http.StatusOK, searchToResponse(req.Query(), req.Skip(), req.Limit(), res))
}

// Chat handles POST /ai/test. The prompt comes from the JSON body or the
// "prompt" query parameter.
func (s *Server) Chat(w http.ResponseWriter, r *http.Request) {
	if s.chat == nil {
		writeError(w, http.StatusServiceUnavailable, CodeNotConfigured, "language model is not configured")
		return
	}

	prompt := r.URL.Query().Get("prompt")
	if r.ContentLength != 0 {
		var body ChatRequest
		if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxChatBody)).Decode(&body); err != nil {
			writeError(w, http.StatusBadRequest, CodeBadRequest, "Invalid request body: "+err.Error())
			return
		}
		if body.Prompt != "" {
			prompt = body.Prompt
		}
	}
	if prompt == "" {
		writeError(w, http.StatusBadRequest, CodeValidationFailed, "prompt is required")
		return
	}

	ctx, usage := domain.NewContextWithUsage(r.Context())
	out, err := s.chat.Chat(ctx, prompt)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	setModelHeaders(w, usage)
	writeJSON(w, http.StatusOK, ChatResponse{Input: prompt, Output: out, Status: "success"})
}

// CacheStats handles GET /ai/cache/stats.
func (s *Server) CacheStats(w http.ResponseWriter, r *http.Request) {
	if s.cache == nil {
		writeError(w, http.StatusServiceUnavailable, CodeNotConfigured, "query cache is not configured")
		return
	}

	st := s.cache.Stats(r.Context())
	memEntries, pending := st.MemoryEntries, st.PendingWrites
	resp := CacheStatsResponse{
		Memory: CacheTierStats{Enabled: true, Available: true, Entries: &memEntries},
		Redis:  CacheTierStats{Enabled: st.SharedEnabled, Available: st.SharedReachable},
		File:   CacheTierStats{Enabled: st.FileEnabled, Available: st.FilePresent, PendingWrites: &pending},
	}
	if st.SharedReachable {
		n := st.SharedEntries
		resp.Redis.Entries = &n
	}
	writeJSON(w, http.StatusOK, resp)
}

// ClearCache handles DELETE /ai/cache.
func (s *Server) ClearCache(w http.ResponseWriter, r *http.Request) {
	if s.cache == nil {
		writeError(w, http.StatusServiceUnavailable, CodeNotConfigured, "query cache is not configured")
		return
	}

	cleared, err := s.cache.Clear(r.Context())
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, CacheClearResponse{
		Status:        "cleared",
		RedisCleared:  cleared.Shared,
		MemoryCleared: cleared.Memory,
	})
}

// Usage handles GET /ai/usage.
func (s *Server) Usage(w http.ResponseWriter, r *http.Request) {
	period, err := domusage.ParsePeriod(r.URL.Query().Get("period"))
	if err != nil {
		writeError(w, http.StatusBadRequest, CodeValidationFailed, err.Error())
		return
	}

	report := s.usage.GetReport(r.Context(), period)
	resp := UsageResponse{
		Period:        string(report.Period()),
		Provider:      report.Provider(),
		PeriodStartAt: report.PeriodStart(),
		PeriodEndAt:   report.PeriodEnd(),
		Tokens:        report.TokensUsed(),
		Budget: Budget{
			IsExhausted: report.Exhausted(),
			ResetsAt:    report.PeriodEnd(),
		},
	}
	if !report.Unlimited() {
		limit, remaining := report.TokensLimit(), report.TokensRemaining()
		resp.Budget.TokensLimit = &limit
		resp.Budget.TokensRemaining = &remaining
	}
	writeJSON(w, http.StatusOK, resp)
}

// Health handles GET /health.
func (s *Server) Health(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	checks := make(map[string]string, len(report.Checks))
	for k, v := range report.Checks {
		checks[k] = string(v)
	}

	httpStatus := http.StatusOK
	if report.Status != healthuc.Healthy {
		httpStatus = http.StatusServiceUnavailable
	}
	writeJSON(w, httpStatus, HealthResponse{Status: string(report.Status), Checks: checks})
}

func setModelHeaders(w http.ResponseWriter, usage *domain.ModelUsage) {
	if usage != nil && usage.Calls > 0 {
		w.Header().Set("X-Model-Tokens", strconv.Itoa(usage.TotalTokens))
		w.Header().Set("X-Model-Calls", strconv.Itoa(usage.Calls))
	}
}

func intParam(s string, def int) (int, error) {
	if s == "" {
		return def, nil
	}
	return strconv.Atoi(s) //nolint:wrapcheck // caller writes its own message
}

func boolParam(s string) (bool, error) {
	if s == "" {
		return false, nil
	}
	return strconv.ParseBool(s) //nolint:wrapcheck // caller writes its own message
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, ErrorResponse{Code: code, Message: message})
}

// safeDomainMessage returns a sentinel error message for the client without exposing internals.
func safeDomainMessage(err error) string {
	sentinels := []error{
		domain.ErrInvalidRequest,
		domain.ErrBudgetExceeded,
		domain.ErrModelUnavailable,
		domain.ErrModelResponseInvalid,
	}
	for _, s := range sentinels {
		if errors.Is(err, s) {
			return s.Error()
		}
	}
	return "internal error"
}

// sentinelHandler returns an errorHandler that matches a single sentinel error.
func sentinelHandler(sentinel error, status int, code string) errorHandler {
	return func(w http.ResponseWriter, err error, msg string) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		writeError(w, status, code, msg)
		return true
	}
}

func (s *Server) handleDomainError(w http.ResponseWriter, r *http.Request, err error) {
	log := logpkg.FromContext(r.Context(), s.logger)
	log.Warn("domain error", zap.Error(err))
	msg := safeDomainMessage(err)
	for _, h := range s.errorHandlers {
		if h(w, err, msg) {
			return
		}
	}
	log.Error("internal error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, CodeInternalError, "internal error")
}
