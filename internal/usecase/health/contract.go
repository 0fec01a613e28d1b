package health

import "context"

// StoragePinger reports whether catalog storage is open.
type StoragePinger interface {
	Ping(ctx context.Context) error
}

// CatalogLister lists the catalogs present in storage.
type CatalogLister interface {
	Names(ctx context.Context) ([]string, error)
}
