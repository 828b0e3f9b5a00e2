// Package syncer implements the offline batch job that populates the
// vector index: every content row is flattened to text, embedded, and
// upserted as a point whose payload carries the "_text" field the chat
// retrieval path reads back.
package syncer

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/zohaibasghar/portfolio-server/internal/domain/content"
	"github.com/zohaibasghar/portfolio-server/internal/infra/embedding"
	"github.com/zohaibasghar/portfolio-server/internal/infra/qdrant"
	"github.com/zohaibasghar/portfolio-server/pkg/uuid"
)

// embedPause spaces out embedding calls; the Mistral free tier throttles
// bursts well below the documented per-minute limit.
const embedPause = 200 * time.Millisecond

// Embedder converts text into a vector. Satisfied by *embedding.Client.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// VectorWriter is the index side of the job. Satisfied by *qdrant.Client.
type VectorWriter interface {
	EnsureCollection(ctx context.Context, dimension int) error
	UpsertPoints(ctx context.Context, points []qdrant.Point) error
}

// ContentSource yields the rows to index. Satisfied by *content.Store.
type ContentSource interface {
	Rows(ctx context.Context, table string) ([]map[string]any, error)
}

// Report summarizes one sync run.
type Report struct {
	Tables       int
	Points       int
	FailedTables []string
}

// Service runs the sync pipeline.
type Service struct {
	source   ContentSource
	embedder Embedder
	vectors  VectorWriter
	pause    time.Duration
}

// NewService creates a Service over the given collaborators.
func NewService(source ContentSource, embedder Embedder, vectors VectorWriter) *Service {
	return &Service{
		source:   source,
		embedder: embedder,
		vectors:  vectors,
		pause:    embedPause,
	}
}

// Sync indexes every content table. A failing table is logged and skipped
// so one bad table cannot abort the whole run; a missing collection or a
// dimension mismatch is fatal because nothing useful can be written.
func (s *Service) Sync(ctx context.Context) (*Report, error) {
	if err := s.vectors.EnsureCollection(ctx, embedding.Dimension); err != nil {
		return nil, fmt.Errorf("syncer: ensure collection: %w", err)
	}

	report := &Report{}
	for _, table := range content.Tables {
		n, err := s.syncTable(ctx, table)
		if err != nil {
			log.Printf("syncer: table %s failed, skipping: %v", table, err)
			report.FailedTables = append(report.FailedTables, table)
			continue
		}
		report.Tables++
		report.Points += n
	}
	return report, nil
}

// syncTable embeds and upserts all rows of one table as a single batch.
func (s *Service) syncTable(ctx context.Context, table string) (int, error) {
	rows, err := s.source.Rows(ctx, table)
	if err != nil {
		return 0, err
	}

	points := make([]qdrant.Point, 0, len(rows))
	for _, row := range rows {
		text := content.RowText(table, row)
		vector, err := s.embedder.Embed(ctx, text)
		if err != nil {
			return 0, fmt.Errorf("embed row of %s: %w", table, err)
		}

		points = append(points, qdrant.Point{
			ID:     pointID(table, row, text),
			Vector: vector,
			Payload: map[string]any{
				"_text": text,
				"table": table,
			},
		})

		select {
		case <-ctx.Done():
			return 0, ctx.Err()
		case <-time.After(s.pause):
		}
	}

	if err := s.vectors.UpsertPoints(ctx, points); err != nil {
		return 0, err
	}
	return len(points), nil
}

// pointID derives a stable point identifier from table and row id, so
// re-syncing overwrites instead of duplicating. Rows without a natural id
// fall back to their content hash.
func pointID(table string, row map[string]any, text string) string {
	if id, ok := row["id"]; ok && id != nil {
		return uuid.FromName(fmt.Sprintf("%s:%v", table, id)).String()
	}
	return uuid.FromName(table + ":" + text).String()
}
