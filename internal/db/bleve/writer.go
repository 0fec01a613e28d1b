package bleve

import (
	"context"
	"fmt"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/index/scorch/mergeplan"

	"github.com/kailas-cloud/ftsi/internal/db"
	"github.com/kailas-cloud/ftsi/internal/domain/document"
)

// scanPageSize bounds each page when collecting document IDs for deletion.
const scanPageSize = 1000

// forceMerger is implemented by the scorch index.
type forceMerger interface {
	ForceMerge(ctx context.Context, mo *mergeplan.MergePlanOptions) error
}

// writer stages adds and deletes in one bleve batch, applied atomically on Commit.
type writer struct {
	cat    *catalog
	batch  *bleve.Batch
	staged map[string]struct{} // committed IDs already staged for deletion
	closed bool
}

var _ db.Writer = (*writer)(nil)

func (w *writer) Add(doc *document.Document) error {
	if w.closed {
		return db.ErrWriterClosed
	}
	if err := w.batch.Index(doc.ID(), toBleveDocument(doc)); err != nil {
		return &db.Error{Op: db.OpBatch, Err: fmt.Errorf("index %s: %w", doc.ID(), err)}
	}
	return nil
}

func (w *writer) Delete(ctx context.Context, q db.Query) (int, error) {
	if w.closed {
		return 0, db.ErrWriterClosed
	}
	bq, err := buildQuery(q)
	if err != nil {
		return 0, err
	}

	removed := 0
	for from := 0; ; from += scanPageSize {
		req := bleve.NewSearchRequestOptions(bq, scanPageSize, from, false)
		req.SortBy([]string{"_id"})
		res, err := w.cat.index.SearchInContext(ctx, req)
		if err != nil {
			return 0, &db.Error{Op: db.OpSearch, Err: err}
		}
		for _, hit := range res.Hits {
			if _, ok := w.staged[hit.ID]; ok {
				continue
			}
			w.staged[hit.ID] = struct{}{}
			w.batch.Delete(hit.ID)
			removed++
		}
		if len(res.Hits) < scanPageSize {
			break
		}
	}
	return removed, nil
}

func (w *writer) DeleteAll(ctx context.Context) (int, error) {
	return w.Delete(ctx, db.MatchAllQuery{})
}

func (w *writer) Commit(ctx context.Context) error {
	if w.closed {
		return db.ErrWriterClosed
	}
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("commit %s: %w", w.cat.name, err)
	}
	if w.batch.Size() == 0 {
		return nil
	}
	if err := w.cat.index.Batch(w.batch); err != nil {
		return &db.Error{Op: db.OpBatch, Err: err}
	}
	w.batch.Reset()
	clear(w.staged)
	return nil
}

// ForceMergeDeletes runs one merge pass with the default tiered plan, which
// favours segments carrying deletes. Only tiers over their segment budget are
// rewritten, never the whole catalog. Deleted documents are already excluded
// from counts and hits, so the pass only reclaims space. Indexes without
// segment merging apply deletes immediately and need nothing.
func (w *writer) ForceMergeDeletes(ctx context.Context) error {
	if w.closed {
		return db.ErrWriterClosed
	}
	adv, err := w.cat.index.Advanced()
	if err != nil {
		return &db.Error{Op: db.OpForceMerge, Err: err}
	}
	fm, ok := adv.(forceMerger)
	if !ok {
		return nil
	}
	opts := mergeplan.DefaultMergePlanOptions
	if err := fm.ForceMerge(ctx, &opts); err != nil {
		return &db.Error{Op: db.OpForceMerge, Err: err}
	}
	return nil
}

// Close discards uncommitted changes and releases the writer. Safe to call twice.
func (w *writer) Close() error {
	if w.closed {
		return nil
	}
	w.closed = true
	w.batch.Reset()
	<-w.cat.writer
	w.cat.inflight.Done()
	return nil
}
