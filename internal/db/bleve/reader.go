package bleve

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/search"
	"github.com/blevesearch/bleve/v2/search/highlight/format/html"
	fragsimple "github.com/blevesearch/bleve/v2/search/highlight/fragmenter/simple"
	hlsimple "github.com/blevesearch/bleve/v2/search/highlight/highlighter/simple"

	"github.com/kailas-cloud/ftsi/internal/db"
)

type reader struct {
	cat    *catalog
	closed bool
}

var _ db.Reader = (*reader)(nil)

// Stats reports live documents. Deletes are applied at commit, so nothing stays pending.
func (r *reader) Stats(_ context.Context) (db.Stats, error) {
	if r.closed {
		return db.Stats{}, db.ErrClosed
	}
	n, err := r.cat.index.DocCount()
	if err != nil {
		return db.Stats{}, &db.Error{Op: db.OpCount, Err: err}
	}
	return db.Stats{Live: int(n), Deleted: 0, MaxSlot: int(n)}, nil
}

func (r *reader) Search(ctx context.Context, sr *db.SearchRequest) (*db.SearchResult, error) {
	if r.closed {
		return nil, db.ErrClosed
	}
	q, err := buildQuery(sr.Query)
	if err != nil {
		return nil, err
	}

	req := bleve.NewSearchRequestOptions(q, sr.Size, sr.From, false)
	req.Fields = []string{"*"}
	if len(sr.Sort) > 0 {
		req.SortBy(sr.Sort)
	}
	hl := sr.Highlight
	if hl != nil {
		req.IncludeLocations = true
	}

	res, err := r.cat.index.SearchInContext(ctx, req)
	if err != nil {
		return nil, &db.Error{Op: db.OpSearch, Err: err}
	}

	out := &db.SearchResult{
		Total:   int(res.Total),
		Entries: make([]db.SearchEntry, 0, len(res.Hits)),
	}
	var highlighter *hlsimple.Highlighter
	if hl != nil {
		highlighter = hlsimple.NewHighlighter(
			fragsimple.NewFragmenter(hl.FragmentSize),
			html.NewFragmentFormatter(hl.PreTag, hl.PostTag),
			hlsimple.DefaultSeparator,
		)
	}

	for _, hit := range res.Hits {
		entry := toEntry(hit)
		if highlighter != nil {
			frags, err := r.fragments(highlighter, hit, hl.Fields)
			if err != nil {
				return nil, err
			}
			entry.Fragments = frags
		}
		out.Entries = append(out.Entries, entry)
	}
	return out, nil
}

// fragments returns the best fragment of every requested field the query
// matched in. The stored document is loaded at most once per hit.
func (r *reader) fragments(
	h *hlsimple.Highlighter, hit *search.DocumentMatch, fields []string,
) (map[string]string, error) {
	var matched []string
	for _, f := range fields {
		if len(hit.Locations[f]) > 0 {
			matched = append(matched, f)
		}
	}
	if len(matched) == 0 {
		return nil, nil
	}

	doc, err := r.cat.index.Document(hit.ID)
	if err != nil {
		return nil, &db.Error{Op: db.OpDocument, Err: fmt.Errorf("%s: %w", hit.ID, err)}
	}
	if doc == nil {
		return nil, nil
	}

	frags := make(map[string]string, len(matched))
	for _, f := range matched {
		if best := h.BestFragmentsInField(hit, doc, f, 1); len(best) > 0 && best[0] != "" {
			frags[f] = best[0]
		}
	}
	return frags, nil
}

// toEntry maps stored bleve fields back to entity field names.
// Numeric fields come back from their raw companions; other reserved fields are dropped.
func toEntry(hit *search.DocumentMatch) db.SearchEntry {
	entry := db.SearchEntry{
		ID:     hit.ID,
		Score:  hit.Score,
		Fields: make(map[string]string, len(hit.Fields)),
	}
	for k, v := range hit.Fields {
		switch {
		case k == db.EntityField:
			entry.Entity = stringify(v)
		case strings.HasPrefix(k, db.RawPrefix):
			entry.Fields[strings.TrimPrefix(k, db.RawPrefix)] = stringify(v)
		case strings.HasPrefix(k, "_"):
			// reserved
		default:
			entry.Fields[k] = stringify(v)
		}
	}
	return entry
}

func stringify(v any) string {
	switch s := v.(type) {
	case string:
		return s
	case float64:
		return strconv.FormatFloat(s, 'g', -1, 64)
	case []any:
		if len(s) > 0 {
			return stringify(s[0])
		}
		return ""
	default:
		return fmt.Sprint(v)
	}
}

func (r *reader) Close() error {
	if r.closed {
		return nil
	}
	r.closed = true
	r.cat.inflight.Done()
	return nil
}
