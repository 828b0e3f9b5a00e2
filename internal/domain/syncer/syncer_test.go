package syncer

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/zohaibasghar/portfolio-server/internal/domain/content"
	"github.com/zohaibasghar/portfolio-server/internal/infra/embedding"
	"github.com/zohaibasghar/portfolio-server/internal/infra/qdrant"
)

// === Stubs ===

type stubSource struct {
	rows map[string][]map[string]any
	errs map[string]error
}

func (s *stubSource) Rows(_ context.Context, table string) ([]map[string]any, error) {
	if err := s.errs[table]; err != nil {
		return nil, err
	}
	return s.rows[table], nil
}

type stubEmbedder struct {
	calls int
	err   error
}

func (s *stubEmbedder) Embed(_ context.Context, _ string) ([]float32, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return []float32{0.1, 0.2}, nil
}

type recordingWriter struct {
	ensureDim int
	ensureErr error
	batches   [][]qdrant.Point
}

func (w *recordingWriter) EnsureCollection(_ context.Context, dimension int) error {
	w.ensureDim = dimension
	return w.ensureErr
}

func (w *recordingWriter) UpsertPoints(_ context.Context, points []qdrant.Point) error {
	w.batches = append(w.batches, points)
	return nil
}

func newTestService(source ContentSource, embedder Embedder, vectors VectorWriter) *Service {
	svc := NewService(source, embedder, vectors)
	svc.pause = time.Millisecond
	return svc
}

// === Tests ===

func TestSync_IndexesAllTables(t *testing.T) {
	t.Parallel()

	source := &stubSource{rows: map[string][]map[string]any{
		"skills": {
			{"id": int64(1), "name": "React", "category": "frontend"},
			{"id": int64(2), "name": "Node.js", "category": "backend"},
		},
		"projects": {
			{"id": int64(1), "title": "Portfolio"},
		},
	}}
	writer := &recordingWriter{}
	svc := newTestService(source, &stubEmbedder{}, writer)

	report, err := svc.Sync(context.Background())
	if err != nil {
		t.Fatalf("Sync failed: %v", err)
	}

	if writer.ensureDim != embedding.Dimension {
		t.Errorf("expected collection dimension %d, got %d", embedding.Dimension, writer.ensureDim)
	}
	if report.Tables != len(content.Tables) {
		t.Errorf("expected %d tables synced, got %d", len(content.Tables), report.Tables)
	}
	if report.Points != 3 {
		t.Errorf("expected 3 points, got %d", report.Points)
	}
	if len(report.FailedTables) != 0 {
		t.Errorf("expected no failed tables, got %v", report.FailedTables)
	}
}

func TestSync_PointCarriesTextPayload(t *testing.T) {
	t.Parallel()

	row := map[string]any{"id": int64(1), "name": "React", "category": "frontend"}
	source := &stubSource{rows: map[string][]map[string]any{"skills": {row}}}
	writer := &recordingWriter{}
	svc := newTestService(source, &stubEmbedder{}, writer)

	if _, err := svc.Sync(context.Background()); err != nil {
		t.Fatalf("Sync failed: %v", err)
	}

	var point qdrant.Point
	found := false
	for _, batch := range writer.batches {
		for _, p := range batch {
			point = p
			found = true
		}
	}
	if !found {
		t.Fatal("expected at least one upserted point")
	}
	if point.Payload["_text"] != content.RowText("skills", row) {
		t.Errorf("unexpected _text payload: %v", point.Payload["_text"])
	}
	if point.Payload["table"] != "skills" {
		t.Errorf("expected table payload 'skills', got %v", point.Payload["table"])
	}
	if len(point.Vector) != 2 {
		t.Errorf("expected stub vector in point, got %v", point.Vector)
	}
}

func TestSync_StablePointIDs(t *testing.T) {
	t.Parallel()

	row := map[string]any{"id": int64(7), "name": "React"}
	source := &stubSource{rows: map[string][]map[string]any{"skills": {row}}}

	ids := make([]string, 0, 2)
	for i := 0; i < 2; i++ {
		writer := &recordingWriter{}
		svc := newTestService(source, &stubEmbedder{}, writer)
		if _, err := svc.Sync(context.Background()); err != nil {
			t.Fatalf("Sync failed: %v", err)
		}
		for _, batch := range writer.batches {
			for _, p := range batch {
				ids = append(ids, p.ID)
			}
		}
	}

	if len(ids) != 2 {
		t.Fatalf("expected 2 point ids across runs, got %d", len(ids))
	}
	if ids[0] != ids[1] {
		t.Errorf("re-sync must reuse the same point id: %s vs %s", ids[0], ids[1])
	}
}

func TestSync_FailingTableIsSkipped(t *testing.T) {
	t.Parallel()

	source := &stubSource{
		rows: map[string][]map[string]any{
			"projects": {{"id": int64(1), "title": "Portfolio"}},
		},
		errs: map[string]error{"skills": errors.New("disk error")},
	}
	writer := &recordingWriter{}
	svc := newTestService(source, &stubEmbedder{}, writer)

	report, err := svc.Sync(context.Background())
	if err != nil {
		t.Fatalf("Sync must not abort on one bad table: %v", err)
	}
	if len(report.FailedTables) != 1 || report.FailedTables[0] != "skills" {
		t.Errorf("expected skills in failed tables, got %v", report.FailedTables)
	}
	if report.Points != 1 {
		t.Errorf("expected the healthy table indexed, got %d points", report.Points)
	}
}

func TestSync_EmbedFailureFailsTable(t *testing.T) {
	t.Parallel()

	source := &stubSource{rows: map[string][]map[string]any{
		"skills": {{"id": int64(1), "name": "React"}},
	}}
	writer := &recordingWriter{}
	svc := newTestService(source, &stubEmbedder{err: errors.New("quota exhausted")}, writer)

	report, err := svc.Sync(context.Background())
	if err != nil {
		t.Fatalf("Sync failed: %v", err)
	}
	if len(report.FailedTables) != 1 || report.FailedTables[0] != "skills" {
		t.Errorf("expected skills to fail on embedding, got %v", report.FailedTables)
	}
	for _, batch := range writer.batches {
		if len(batch) != 0 {
			t.Errorf("no points should be written when embedding fails, got %d", len(batch))
		}
	}
}

func TestSync_EnsureCollectionFailureIsFatal(t *testing.T) {
	t.Parallel()

	writer := &recordingWriter{ensureErr: errors.New("qdrant down")}
	svc := newTestService(&stubSource{}, &stubEmbedder{}, writer)

	if _, err := svc.Sync(context.Background()); err == nil {
		t.Error("expected fatal error when the collection cannot be ensured")
	}
}

func TestSync_ContextCancellation(t *testing.T) {
	t.Parallel()

	source := &stubSource{rows: map[string][]map[string]any{
		"personal_data": {{"id": int64(1), "key": "name", "value": "Zohaib"}},
	}}
	svc := newTestService(source, &stubEmbedder{}, &recordingWriter{})
	svc.pause = time.Minute

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	report, err := svc.Sync(ctx)
	if err != nil {
		t.Fatalf("Sync failed: %v", err)
	}
	// Every table with rows fails with the context error and is skipped.
	if len(report.FailedTables) == 0 {
		t.Error("expected cancelled tables to be reported as failed")
	}
}
