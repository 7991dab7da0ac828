package handlers

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/ticketdrift/backend/internal/anomaly"
	"github.com/ticketdrift/backend/internal/db"
	"github.com/ticketdrift/backend/internal/models"
	"github.com/ticketdrift/backend/internal/service"
)

const defaultSource = "default"

type Handler struct {
	Store     *db.Store
	Analysis  *service.AnalysisService
	Ingest    *service.IngestService
	Validator *validator.Validate
	Logger    zerolog.Logger
	AdminKey  string
	Defaults  anomaly.Options
}

type ImportSummary struct {
	Tickets service.IngestSummary `json:"tickets"`
	Errors  []string              `json:"errors"`
}

func (h *Handler) Healthz(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
	defer cancel()
	if err := h.Store.Ping(ctx); err != nil {
		writeError(c, http.StatusServiceUnavailable, "DB_UNAVAILABLE", "Database unavailable", err.Error())
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// @Summary Import tickets CSV
// @Description Upload a ticket CSV; messages are embedded and the batch replaces the stored ticket set
// @Tags import
// @Accept multipart/form-data
// @Produce json
// @Param tickets formData file true "tickets.csv"
// @Success 200 {object} ImportSummary
// @Failure 400 {object} map[string]any
// @Router /api/import [post]
func (h *Handler) Import(c *gin.Context) {
	ticketsFile, err := c.FormFile("tickets")
	if err != nil {
		writeError(c, http.StatusBadRequest, "INVALID_REQUEST", "tickets file required", nil)
		return
	}
	if !validateExt(ticketsFile.Filename) {
		writeError(c, http.StatusBadRequest, "INVALID_REQUEST", "file must be .csv", nil)
		return
	}

	source := strings.TrimSpace(c.DefaultQuery("source", defaultSource))
	tickets, errs := parseTicketsCSV(ticketsFile, source)
	if len(errs) > 0 {
		writeError(c, http.StatusBadRequest, "CSV_PARSE_ERROR", "CSV validation errors", errs)
		return
	}
	if len(tickets) == 0 {
		writeError(c, http.StatusBadRequest, "INVALID_REQUEST", "no tickets in file", nil)
		return
	}

	summary := ImportSummary{Errors: []string{}}
	summary.Tickets, err = h.Ingest.Ingest(c.Request.Context(), tickets)
	if err != nil {
		h.Logger.Error().Err(err).Msg("ingest failed")
		writeError(c, http.StatusInternalServerError, "INGEST_ERROR", "Failed to ingest tickets", err.Error())
		return
	}

	h.Analysis.InvalidateSource(source)
	c.JSON(http.StatusOK, summary)
}

// @Summary Window statistics
// @Description Drift statistics for every time window of the source
// @Tags anomaly
// @Produce json
// @Param source query string false "Data source"
// @Success 200 {object} map[string]any
// @Router /api/anomaly/stats [get]
func (h *Handler) AnomalyStats(c *gin.Context) {
	source := strings.TrimSpace(c.DefaultQuery("source", defaultSource))

	result, err := h.Analysis.Analyze(c.Request.Context(), source, h.Defaults, true)
	if err != nil {
		h.Logger.Error().Err(err).Msg("anomaly stats failed")
		writeError(c, http.StatusInternalServerError, "ANALYSIS_ERROR", "Failed to compute anomaly stats", err.Error())
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"windows": result.Stats,
		"summary": service.Summarize(result),
	})
}

// @Summary Detect anomaly events
// @Description Anomalous windows at or above the requested severity
// @Tags anomaly
// @Produce json
// @Param source query string false "Data source"
// @Param min_severity query string false "info|warning|critical" default(info)
// @Success 200 {object} map[string]any
// @Router /api/anomaly/detect [get]
func (h *Handler) AnomalyDetect(c *gin.Context) {
	source := strings.TrimSpace(c.DefaultQuery("source", defaultSource))
	minSeverity := strings.ToLower(strings.TrimSpace(c.DefaultQuery("min_severity", models.SeverityInfo)))
	switch minSeverity {
	case models.SeverityInfo, models.SeverityWarning, models.SeverityCritical:
	default:
		writeError(c, http.StatusBadRequest, "VALIDATION_ERROR", "min_severity must be info, warning or critical", nil)
		return
	}

	result, err := h.Analysis.Analyze(c.Request.Context(), source, h.Defaults, true)
	if err != nil {
		h.Logger.Error().Err(err).Msg("anomaly detect failed")
		writeError(c, http.StatusInternalServerError, "ANALYSIS_ERROR", "Failed to detect anomalies", err.Error())
		return
	}

	events := service.FilterEvents(result.Events, minSeverity)
	severityDist := map[string]int{}
	for _, e := range events {
		severityDist[e.Severity]++
	}

	c.JSON(http.StatusOK, gin.H{
		"events":                events,
		"total_windows":         len(result.Stats),
		"anomalous_windows":     len(events),
		"severity_distribution": severityDist,
	})
}

type AnalyzeRequest struct {
	Source             string `json:"source"`
	WindowHours        int    `json:"window_hours" validate:"omitempty,min=1,max=720"`
	MinBaselineWindows int    `json:"min_baseline_windows" validate:"omitempty,min=1"`
	Strategy           string `json:"strategy" validate:"omitempty,oneof=expanding fixed"`
}

// @Summary Run a fresh analysis
// @Description Re-runs the engine with optional overrides, bypassing the result cache
// @Tags anomaly
// @Accept json
// @Produce json
// @Param request body AnalyzeRequest true "overrides"
// @Success 200 {object} map[string]any
// @Failure 400 {object} map[string]any
// @Router /api/anomaly/analyze [post]
func (h *Handler) AnomalyAnalyze(c *gin.Context) {
	var req AnalyzeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "INVALID_REQUEST", "Invalid payload", err.Error())
		return
	}
	if err := h.Validator.Struct(req); err != nil {
		writeError(c, http.StatusBadRequest, "VALIDATION_ERROR", "Validation failed", err.Error())
		return
	}

	source := strings.TrimSpace(req.Source)
	if source == "" {
		source = defaultSource
	}
	opts := h.Defaults
	if req.WindowHours > 0 {
		opts.WindowSize = time.Duration(req.WindowHours) * time.Hour
	}
	if req.MinBaselineWindows > 0 {
		opts.MinBaselineWindows = req.MinBaselineWindows
	}
	if req.Strategy != "" {
		opts.Strategy = anomaly.Strategy(req.Strategy)
	}

	result, err := h.Analysis.Analyze(c.Request.Context(), source, opts, false)
	if err != nil {
		h.Logger.Error().Err(err).Msg("anomaly analyze failed")
		writeError(c, http.StatusInternalServerError, "ANALYSIS_ERROR", "Failed to analyze", err.Error())
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"windows": result.Stats,
		"events":  result.Events,
		"summary": service.Summarize(result),
	})
}

func (h *Handler) TicketsList(c *gin.Context) {
	category := strings.TrimSpace(c.Query("category"))
	source := strings.TrimSpace(c.Query("source"))
	q := c.Query("q")
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	items, err := h.Store.ListTickets(c.Request.Context(), category, source, q, limit, offset)
	if err != nil {
		writeError(c, http.StatusInternalServerError, "DB_ERROR", "Failed to list tickets", err.Error())
		return
	}
	// embeddings are analysis-internal; keep listing payloads small
	for i := range items {
		items[i].Embedding = nil
	}
	c.JSON(http.StatusOK, gin.H{"items": items, "limit": limit, "offset": offset})
}

func writeError(c *gin.Context, status int, code string, message string, details any) {
	c.JSON(status, gin.H{
		"error": gin.H{
			"code":    code,
			"message": message,
			"details": details,
		},
	})
}

func parseTicketsCSV(file *multipart.FileHeader, source string) ([]models.Ticket, []string) {
	f, err := file.Open()
	if err != nil {
		return nil, []string{err.Error()}
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.TrimLeadingSpace = true
	headers, err := reader.Read()
	if err != nil {
		return nil, []string{"failed to read header"}
	}
	index := headerIndex(headers)
	var errors []string
	var out []models.Ticket

	line := 1
	for {
		rec, err := reader.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			errors = append(errors, err.Error())
			continue
		}

		id := getFieldAny(rec, index, "id", "ticket_id", "ticket id", "ticketid")
		createdAtStr := getFieldAny(rec, index, "created_at", "created", "date", "timestamp")
		category := getFieldAny(rec, index, "category")
		subcategory := getFieldAny(rec, index, "subcategory", "sub_category")
		priority := getFieldAny(rec, index, "priority")
		message := getFieldAny(rec, index, "message", "description", "short_description", "text")

		createdAt, err := parseTimestamp(createdAtStr)
		if err != nil {
			errors = append(errors, fmt.Sprintf("line %d: invalid timestamp %q", line, createdAtStr))
			continue
		}
		if id == "" {
			id = fmt.Sprintf("TICK-%04d", len(out)+1)
		}

		out = append(out, models.Ticket{
			ID:          id,
			CreatedAt:   createdAt,
			Category:    category,
			Subcategory: subcategory,
			Priority:    priority,
			Message:     message,
			Source:      source,
		})
	}
	return out, errors
}

func parseTimestamp(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	for _, layout := range []string{time.RFC3339, "2006-01-02 15:04:05", "2006-01-02"} {
		if t, err := time.Parse(layout, value); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unparseable timestamp %q", value)
}

func headerIndex(headers []string) map[string]int {
	idx := map[string]int{}
	for i, h := range headers {
		idx[normalizeHeader(h)] = i
	}
	return idx
}

func getField(rec []string, idx map[string]int, name string) string {
	pos, ok := idx[name]
	if !ok || pos >= len(rec) {
		return ""
	}
	return strings.TrimSpace(rec[pos])
}

func getFieldAny(rec []string, idx map[string]int, names ...string) string {
	for _, name := range names {
		if v := getField(rec, idx, normalizeHeader(name)); v != "" {
			return v
		}
	}
	return ""
}

func normalizeHeader(h string) string {
	h = strings.ReplaceAll(h, "\ufeff", "")
	return strings.ToLower(strings.TrimSpace(h))
}

func validateExt(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	return ext == ".csv"
}
