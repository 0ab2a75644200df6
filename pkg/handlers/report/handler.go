package report

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/de-tools/patch-atlas/pkg/adapters"
	"github.com/de-tools/patch-atlas/pkg/models/domain"
	reportsvc "github.com/de-tools/patch-atlas/pkg/services/report"
	"github.com/de-tools/patch-atlas/pkg/store/sqlite/history"
	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
)

// Extractor is the slice of the report service the handler consumes.
type Extractor interface {
	ExtractServer(ctx context.Context, server string, kbNumber int, opts reportsvc.Options) (*domain.ServerReport, error)
}

type Handler struct {
	extractor Extractor
	runs      history.Store
}

func NewHandler(extractor Extractor, runs history.Store) *Handler {
	return &Handler{
		extractor: extractor,
		runs:      runs,
	}
}

func (h *Handler) GetReport(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := zerolog.Ctx(ctx)

	server := chi.URLParam(r, "server")
	kbNumber, err := strconv.Atoi(chi.URLParam(r, "kb"))
	if err != nil {
		http.Error(w, "kb must be an integer", http.StatusBadRequest)
		return
	}

	opts := reportsvc.Options{
		Architecture: r.URL.Query().Get("architecture"),
	}

	rep, err := h.extractor.ExtractServer(ctx, server, kbNumber, opts)
	if err != nil {
		logger.Error().Str("server", server).Err(err).Msg("report extraction failed")
		http.Error(w, "failed to extract report: "+err.Error(), http.StatusBadGateway)
		return
	}

	writeJSON(w, logger, adapters.MapDomainReportToAPI(rep))
}

func (h *Handler) ListHistory(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := zerolog.Ctx(ctx)

	if h.runs == nil {
		http.Error(w, "run history is not configured", http.StatusNotFound)
		return
	}

	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		limit, _ = strconv.Atoi(v)
	}

	records, err := h.runs.List(ctx, limit)
	if err != nil {
		logger.Error().Err(err).Msg("listing run history failed")
		http.Error(w, "failed to list run history", http.StatusInternalServerError)
		return
	}

	out := make([]any, 0, len(records))
	for _, rec := range records {
		out = append(out, adapters.MapStoreRunToAPI(rec))
	}
	writeJSON(w, logger, out)
}

func writeJSON(w http.ResponseWriter, logger *zerolog.Logger, payload any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		logger.Error().Err(err).Msg("failed to encode response")
	}
}
