package health

import "context"

// Status is the overall health verdict.
type Status string

const (
	Healthy   Status = "ok"
	Degraded  Status = "degraded"
	Unhealthy Status = "error"
)

// CheckResult is the outcome of one check.
type CheckResult string

const (
	CheckOK    CheckResult = "ok"
	CheckError CheckResult = "error"
)

const (
	checkStorage  = "storage"
	checkCatalogs = "catalogs"
)

// Report is the result of Check. Catalogs is only meaningful when the
// catalogs check passed.
type Report struct {
	Status   Status
	Checks   map[string]CheckResult
	Catalogs int
}

// Serving reports whether requests can still be answered.
func (r Report) Serving() bool { return r.Status != Unhealthy }

// Service checks catalog storage.
type Service struct {
	storage  StoragePinger
	catalogs CatalogLister
}

// New creates a Service. catalogs may be nil to skip the listing check.
func New(storage StoragePinger, catalogs CatalogLister) *Service {
	return &Service{storage: storage, catalogs: catalogs}
}

// Check pings storage first. When storage is down nothing else is checked and
// the report is Unhealthy; a failed catalog listing only degrades it.
func (s *Service) Check(ctx context.Context) Report {
	r := Report{Status: Healthy, Checks: map[string]CheckResult{}}

	if err := s.storage.Ping(ctx); err != nil {
		r.Status = Unhealthy
		r.Checks[checkStorage] = CheckError
		return r
	}
	r.Checks[checkStorage] = CheckOK

	if s.catalogs == nil {
		return r
	}
	names, err := s.catalogs.Names(ctx)
	if err != nil {
		r.Status = Degraded
		r.Checks[checkCatalogs] = CheckError
		return r
	}
	r.Checks[checkCatalogs] = CheckOK
	r.Catalogs = len(names)
	return r
}
