// Package catalog holds read models describing index catalogs.
package catalog

// Status is a point-in-time snapshot of catalog document counts.
type Status struct {
	catalog    string
	num        int
	numDeleted int
	total      int
}

// NewStatus creates a Status. total is the number of document slots, live plus deleted.
func NewStatus(catalog string, num, numDeleted, total int) Status {
	return Status{catalog: catalog, num: num, numDeleted: numDeleted, total: total}
}

// Catalog returns the catalog name.
func (s Status) Catalog() string { return s.catalog }

// Num returns the number of live documents.
func (s Status) Num() int { return s.num }

// NumDeleted returns the number of deleted documents not yet merged away.
func (s Status) NumDeleted() int { return s.numDeleted }

// Total returns the number of document slots.
func (s Status) Total() int { return s.total }
