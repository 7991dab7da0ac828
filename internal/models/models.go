package models

import "time"

// Severity levels assigned to a time window, ordered from least to most severe.
const (
	SeverityNormal   = "normal"
	SeverityInfo     = "info"
	SeverityWarning  = "warning"
	SeverityCritical = "critical"
)

// SeverityRank maps a severity label to its ordering; unknown labels rank lowest.
func SeverityRank(severity string) int {
	switch severity {
	case SeverityInfo:
		return 1
	case SeverityWarning:
		return 2
	case SeverityCritical:
		return 3
	default:
		return 0
	}
}

// Ticket is a single support ticket as consumed by the anomaly engine.
// Category, Subcategory and Priority are optional (empty = absent).
// Embedding is an optional fixed-length vector produced by the embedding
// service; nil means the ticket has no embedding.
type Ticket struct {
	ID          string    `json:"id"`
	CreatedAt   time.Time `json:"created_at"`
	Category    string    `json:"category,omitempty"`
	Subcategory string    `json:"subcategory,omitempty"`
	Priority    string    `json:"priority,omitempty"`
	Message     string    `json:"message,omitempty"`
	Source      string    `json:"source,omitempty"`
	Embedding   []float64 `json:"embedding,omitempty"`
}

// WindowStats holds the drift statistics computed for one time window.
// The three drift scores are nullable: nil means the signal could not be
// computed (insufficient baseline, no categories, no embeddings).
type WindowStats struct {
	WindowStart        time.Time `json:"window_start"`
	WindowEnd          time.Time `json:"window_end"`
	TotalTickets       int       `json:"total_tickets"`
	VolumeZ            *float64  `json:"volume_zscore"`
	CategoryDivergence *float64  `json:"category_divergence"`
	SemanticDrift      *float64  `json:"semantic_drift"`
	CombinedScore      float64   `json:"combined_score"`
	Severity           string    `json:"severity"`
	Reasons            []string  `json:"reasons"`
}

// AnomalyEvent is emitted for every window whose severity is not "normal".
type AnomalyEvent struct {
	WindowStart time.Time `json:"window_start"`
	WindowEnd   time.Time `json:"window_end"`
	Severity    string    `json:"severity"`
	Score       float64   `json:"score"`
	Reasons     []string  `json:"reasons"`
}
