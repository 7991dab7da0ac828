package anomaly

import (
	"fmt"

	"github.com/ticketdrift/backend/internal/models"
)

// SeverityThresholds map the combined score to a severity label.
type SeverityThresholds struct {
	Info     float64 `json:"info"`
	Warning  float64 `json:"warning"`
	Critical float64 `json:"critical"`
}

// DefaultSeverityThresholds returns the default severity cutoffs.
func DefaultSeverityThresholds() SeverityThresholds {
	return SeverityThresholds{Info: 0.3, Warning: 0.6, Critical: 0.8}
}

// ReasonThresholds are the independent per-signal cutoffs used to emit
// human-readable reasons. They are looser than the severity thresholds and
// deliberately decoupled from them: a window can be labeled anomalous with
// no reasons, or carry reasons while staying normal.
type ReasonThresholds struct {
	VolumeZ            float64 `json:"volume_z"`
	CategoryDivergence float64 `json:"category_divergence"`
	SemanticDrift      float64 `json:"semantic_drift"`
}

// DefaultReasonThresholds returns the default reporting cutoffs.
func DefaultReasonThresholds() ReasonThresholds {
	return ReasonThresholds{VolumeZ: 1.5, CategoryDivergence: 0.3, SemanticDrift: 0.15}
}

// ClassifySeverity labels a combined score using fixed thresholds.
func ClassifySeverity(combinedScore float64, t SeverityThresholds) string {
	switch {
	case combinedScore >= t.Critical:
		return models.SeverityCritical
	case combinedScore >= t.Warning:
		return models.SeverityWarning
	case combinedScore >= t.Info:
		return models.SeverityInfo
	default:
		return models.SeverityNormal
	}
}

// GenerateReasons inspects the raw per-signal values against the reporting
// thresholds and emits zero or more explanatory strings.
func GenerateReasons(volumeZ, categoryDivergence, semanticDrift *float64, t ReasonThresholds) []string {
	var reasons []string

	if volumeZ != nil {
		z := *volumeZ
		abs := z
		if abs < 0 {
			abs = -abs
		}
		if abs > t.VolumeZ {
			direction := "spike"
			if z < 0 {
				direction = "drop"
			}
			reasons = append(reasons, fmt.Sprintf("Volume %s detected (z = %.2f)", direction, z))
		}
	}

	if categoryDivergence != nil && *categoryDivergence > t.CategoryDivergence {
		reasons = append(reasons, fmt.Sprintf("Category distribution shifted (divergence = %.3f)", *categoryDivergence))
	}

	if semanticDrift != nil && *semanticDrift > t.SemanticDrift {
		reasons = append(reasons, fmt.Sprintf("Semantic drift detected (distance = %.3f)", *semanticDrift))
	}

	return reasons
}
