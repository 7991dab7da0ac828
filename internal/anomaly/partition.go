package anomaly

import (
	"fmt"
	"sort"
	"time"

	"github.com/ticketdrift/backend/internal/models"
)

// Window is a half-open time interval [Start, End) holding the tickets that
// fall inside it. Windows form an ordered, contiguous sequence: each window's
// End equals the next window's Start.
type Window struct {
	Start   time.Time
	End     time.Time
	Tickets []models.Ticket
}

// BuildTimeWindows partitions tickets into contiguous fixed-duration windows.
// The first window is anchored at the start of day (UTC of the earliest
// timestamp's location) of the earliest ticket. Empty windows are retained so
// baseline volume statistics include true zero-count periods. maxWindows
// bounds the number of windows produced; exceeding it returns ErrTooManyWindows.
func BuildTimeWindows(tickets []models.Ticket, windowSize time.Duration, maxWindows int) ([]Window, error) {
	if windowSize <= 0 {
		return nil, ErrInvalidWindowSize
	}
	if len(tickets) == 0 {
		return nil, nil
	}

	sorted := make([]models.Ticket, len(tickets))
	copy(sorted, tickets)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].CreatedAt.Before(sorted[j].CreatedAt)
	})

	minTime := sorted[0].CreatedAt
	maxTime := sorted[len(sorted)-1].CreatedAt

	if maxWindows > 0 {
		span := startOfDay(minTime)
		estimated := maxTime.Sub(span)/windowSize + 1
		if int64(estimated) > int64(maxWindows) {
			return nil, fmt.Errorf("%w: span %s with window %s needs more than %d windows",
				ErrTooManyWindows, maxTime.Sub(span), windowSize, maxWindows)
		}
	}

	var windows []Window
	cursor := 0
	for start := startOfDay(minTime); !start.After(maxTime); {
		end := start.Add(windowSize)
		w := Window{Start: start, End: end}
		for cursor < len(sorted) && sorted[cursor].CreatedAt.Before(end) {
			w.Tickets = append(w.Tickets, sorted[cursor])
			cursor++
		}
		windows = append(windows, w)
		start = end
	}
	return windows, nil
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
