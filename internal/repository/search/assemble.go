package search

import (
	"fmt"

	"github.com/kailas-cloud/ftsi/internal/db"
	domdoc "github.com/kailas-cloud/ftsi/internal/domain/document"
	"github.com/kailas-cloud/ftsi/internal/domain/entity"
)

// assemble rebuilds the records of a page of hits, substituting highlighted
// fragments for stored values where the engine produced one.
// A record that cannot be rebuilt fails the whole page.
func assemble(e entity.Entity, entries []db.SearchEntry) ([]domdoc.Values, error) {
	out := make([]domdoc.Values, 0, len(entries))
	for _, entry := range entries {
		stored := entry.Fields
		if len(entry.Fragments) > 0 {
			stored = make(map[string]string, len(entry.Fields))
			for k, v := range entry.Fields {
				stored[k] = v
			}
			for k, frag := range entry.Fragments {
				if frag != "" {
					stored[k] = frag
				}
			}
		}
		v, err := domdoc.FromStored(e, stored)
		if err != nil {
			return nil, fmt.Errorf("rebuild %s: %w", entry.ID, err)
		}
		out = append(out, v)
	}
	return out, nil
}
