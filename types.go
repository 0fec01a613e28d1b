package ftsi

import domcat "github.com/kailas-cloud/ftsi/internal/domain/catalog"

// Page is one page of typed search results.
type Page[R any] struct {
	Page     int
	PageSize int
	HasMore  bool
	Total    int
	Content  []R
}

// Status holds the document counts of one catalog at the moment it was read.
// Num counts live documents, NumDeleted tombstones not yet merged away,
// and Total every document currently held by the engine.
type Status struct {
	Catalog    string
	Num        int
	NumDeleted int
	Total      int
}

func statusFromDomain(st domcat.Status) Status {
	return Status{
		Catalog:    st.Catalog(),
		Num:        st.Num(),
		NumDeleted: st.NumDeleted(),
		Total:      st.Total(),
	}
}
