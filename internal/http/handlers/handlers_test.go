package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/ticketdrift/backend/internal/anomaly"
	"github.com/ticketdrift/backend/internal/cache"
	"github.com/ticketdrift/backend/internal/models"
	"github.com/ticketdrift/backend/internal/service"
)

type stubSource struct {
	tickets []models.Ticket
}

func (s *stubSource) ListTicketsForAnalysis(ctx context.Context, source string) ([]models.Ticket, error) {
	return s.tickets, nil
}

func anomalousTickets() []models.Ticket {
	base := time.Date(2024, 12, 1, 0, 0, 0, 0, time.UTC)
	var out []models.Ticket
	for d := 0; d < 5; d++ {
		for i := 0; i < 10; i++ {
			out = append(out, models.Ticket{
				ID:        "t",
				CreatedAt: base.AddDate(0, 0, d).Add(time.Duration(i) * time.Minute),
				Category:  "Outlook",
				Embedding: []float64{1, 0, 0},
			})
		}
	}
	for i := 0; i < 50; i++ {
		out = append(out, models.Ticket{
			ID:        "t",
			CreatedAt: base.AddDate(0, 0, 5).Add(time.Duration(i) * time.Minute),
			Category:  "VPN",
			Embedding: []float64{0, 1, 0},
		})
	}
	return out
}

func testHandler(tickets []models.Ticket) *Handler {
	analysis := &service.AnalysisService{
		Source: &stubSource{tickets: tickets},
		Cache:  cache.New(time.Minute),
		Logger: zerolog.Nop(),
	}
	return &Handler{
		Analysis:  analysis,
		Validator: validator.New(),
		Logger:    zerolog.Nop(),
		Defaults:  anomaly.DefaultOptions(),
	}
}

func TestAnomalyStatsEndpoint(t *testing.T) {
	gin.SetMode(gin.TestMode)
	h := testHandler(anomalousTickets())

	r := gin.New()
	r.GET("/api/anomaly/stats", h.AnomalyStats)

	req, _ := http.NewRequest(http.MethodGet, "/api/anomaly/stats", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var body struct {
		Windows []models.WindowStats `json:"windows"`
		Summary service.Summary      `json:"summary"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid response: %v", err)
	}
	if body.Summary.TotalWindows != 6 {
		t.Fatalf("expected 6 windows, got %d", body.Summary.TotalWindows)
	}
	if body.Summary.AnomalousWindows != 1 {
		t.Fatalf("expected 1 anomalous window, got %d", body.Summary.AnomalousWindows)
	}
}

func TestAnomalyDetectEndpoint(t *testing.T) {
	gin.SetMode(gin.TestMode)
	h := testHandler(anomalousTickets())

	r := gin.New()
	r.GET("/api/anomaly/detect", h.AnomalyDetect)

	req, _ := http.NewRequest(http.MethodGet, "/api/anomaly/detect?min_severity=warning", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var body struct {
		Events []models.AnomalyEvent `json:"events"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid response: %v", err)
	}
	if len(body.Events) != 1 {
		t.Fatalf("expected one event at warning or above, got %d", len(body.Events))
	}
	if len(body.Events[0].Reasons) < 2 {
		t.Fatalf("expected at least 2 reasons, got %v", body.Events[0].Reasons)
	}
}

func TestAnomalyDetectRejectsBadSeverity(t *testing.T) {
	gin.SetMode(gin.TestMode)
	h := testHandler(nil)

	r := gin.New()
	r.GET("/api/anomaly/detect", h.AnomalyDetect)

	req, _ := http.NewRequest(http.MethodGet, "/api/anomaly/detect?min_severity=panic", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
}

func TestAnomalyAnalyzeValidation(t *testing.T) {
	gin.SetMode(gin.TestMode)
	h := testHandler(nil)

	r := gin.New()
	r.POST("/api/anomaly/analyze", h.AnomalyAnalyze)

	payload := []byte(`{"window_hours": -5}`)
	req, _ := http.NewRequest(http.MethodPost, "/api/anomaly/analyze", bytes.NewBuffer(payload))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for invalid window_hours, got %d", w.Code)
	}
}

func TestAnomalyAnalyzeOverrides(t *testing.T) {
	gin.SetMode(gin.TestMode)
	h := testHandler(anomalousTickets())

	r := gin.New()
	r.POST("/api/anomaly/analyze", h.AnomalyAnalyze)

	payload := []byte(`{"window_hours": 24, "min_baseline_windows": 5, "strategy": "fixed"}`)
	req, _ := http.NewRequest(http.MethodPost, "/api/anomaly/analyze", bytes.NewBuffer(payload))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
}

func TestParseTicketsCSV(t *testing.T) {
	content := "ticket_id,created_at,category,priority,message\n" +
		"t1,2024-12-01T10:00:00Z,Outlook,High,cannot open mailbox\n" +
		"t2,2024-12-01 11:30:00,,,\n"
	fh := makeMultipartFile(t, "tickets", "tickets.csv", content)

	tickets, errs := parseTicketsCSV(fh, "itsm")
	if len(errs) > 0 {
		t.Fatalf("expected no errors, got %v", errs)
	}
	if len(tickets) != 2 {
		t.Fatalf("expected 2 tickets, got %d", len(tickets))
	}
	if tickets[0].Category != "Outlook" || tickets[0].Priority != "High" {
		t.Fatalf("unexpected ticket: %+v", tickets[0])
	}
	if tickets[1].Category != "" {
		t.Fatalf("expected empty category to stay empty")
	}
	if tickets[0].Source != "itsm" {
		t.Fatalf("expected source itsm, got %s", tickets[0].Source)
	}
}

func TestParseTicketsCSVBadTimestamp(t *testing.T) {
	content := "id,created_at,message\nt1,not-a-date,hello\n"
	fh := makeMultipartFile(t, "tickets", "tickets.csv", content)

	_, errs := parseTicketsCSV(fh, "itsm")
	if len(errs) != 1 {
		t.Fatalf("expected one error, got %v", errs)
	}
}

func makeMultipartFile(t *testing.T, fieldName, filename, content string) *multipart.FileHeader {
	t.Helper()
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, err := writer.CreateFormFile(fieldName, filename)
	if err != nil {
		t.Fatalf("create form file: %v", err)
	}
	if _, err := part.Write([]byte(content)); err != nil {
		t.Fatalf("write content: %v", err)
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("close writer: %v", err)
	}

	reader := multipart.NewReader(&buf, writer.Boundary())
	form, err := reader.ReadForm(int64(buf.Len()))
	if err != nil {
		t.Fatalf("read form: %v", err)
	}
	files := form.File[fieldName]
	if len(files) == 0 {
		t.Fatalf("no file headers found")
	}
	return files[0]
}
