package service

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/ticketdrift/backend/internal/embed"
	"github.com/ticketdrift/backend/internal/models"
)

// TicketStore persists imported tickets. *db.Store satisfies it.
type TicketStore interface {
	TruncateTickets(ctx context.Context) error
	InsertTickets(ctx context.Context, tickets []models.Ticket) (int64, error)
}

// IngestService embeds ticket messages through the external embedding
// collaborator and loads the batch into storage. Tickets without a message
// are stored with a nil embedding; the engine treats those as missing-signal.
type IngestService struct {
	Store    TicketStore
	Embedder embed.Embedder
	Logger   zerolog.Logger
}

type IngestSummary struct {
	Parsed   int `json:"parsed"`
	Embedded int `json:"embedded"`
	Inserted int `json:"inserted"`
}

// Ingest replaces the stored ticket set with the given batch.
func (s *IngestService) Ingest(ctx context.Context, tickets []models.Ticket) (IngestSummary, error) {
	summary := IngestSummary{Parsed: len(tickets)}

	var texts []string
	var indexes []int
	for i, t := range tickets {
		if t.Embedding == nil && t.Message != "" {
			texts = append(texts, t.Message)
			indexes = append(indexes, i)
		}
	}

	if len(texts) > 0 {
		vectors, err := s.Embedder.Embed(ctx, texts)
		if err != nil {
			return summary, err
		}
		for j, idx := range indexes {
			tickets[idx].Embedding = vectors[j]
		}
		summary.Embedded = len(vectors)
	}

	if err := s.Store.TruncateTickets(ctx); err != nil {
		return summary, err
	}
	inserted, err := s.Store.InsertTickets(ctx, tickets)
	if err != nil {
		return summary, err
	}
	summary.Inserted = int(inserted)

	s.Logger.Info().
		Int("parsed", summary.Parsed).
		Int("embedded", summary.Embedded).
		Int("inserted", summary.Inserted).
		Msg("tickets ingested")
	return summary, nil
}
