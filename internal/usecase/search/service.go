package search

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/ftsi/internal/domain"
	"github.com/kailas-cloud/ftsi/internal/domain/search/filter"
	"github.com/kailas-cloud/ftsi/internal/domain/search/highlight"
	"github.com/kailas-cloud/ftsi/internal/domain/search/mode"
	"github.com/kailas-cloud/ftsi/internal/domain/search/request"
	"github.com/kailas-cloud/ftsi/internal/domain/search/result"
	"github.com/kailas-cloud/ftsi/internal/usecase/observe"
)

// Option configures a Service.
type Option func(*Service)

// WithHighlight enables fragment highlighting of text fields.
func WithHighlight(cfg highlight.Config) Option {
	return func(s *Service) { s.highlight = cfg }
}

// WithMaxPageSize caps the page size of every request. Zero means no cap.
func WithMaxPageSize(n int) Option {
	return func(s *Service) { s.maxPageSize = n }
}

// Service runs paginated term and keywords searches.
type Service struct {
	repo        Repository
	schemas     Schemas
	highlight   highlight.Config
	maxPageSize int
}

// New creates a search service.
func New(repo Repository, schemas Schemas, opts ...Option) *Service {
	s := &Service{repo: repo, schemas: schemas}
	for _, o := range opts {
		o(s)
	}
	return s
}

// SearchTerm returns the records whose field holds exactly value.
func (s *Service) SearchTerm(
	ctx context.Context, entityName, fieldName, value string, page, pageSize int,
) (res result.Page, err error) {
	start := time.Now()
	defer func() { s.observe(ctx, mode.Term.Operation(), entityName, start, res, err) }()

	req, err := request.NewTerm(fieldName, value, page, s.capPageSize(pageSize))
	if err != nil {
		return result.Page{}, domain.NewParseError(value, err)
	}
	return s.run(ctx, entityName, &req)
}

// SearchKeywords returns records matching free-text keywords in any searchable
// field and, when given, equal to every condition value.
func (s *Service) SearchKeywords(
	ctx context.Context, entityName, keywords string, conditions map[string]string,
	page, pageSize int, sort ...string,
) (res result.Page, err error) {
	start := time.Now()
	defer func() { s.observe(ctx, mode.Keywords.Operation(), entityName, start, res, err) }()

	conds, err := filter.FromMap(conditions)
	if err != nil {
		return result.Page{}, domain.NewParseError(keywords, err)
	}
	req, err := request.NewKeywords(keywords, conds, page, s.capPageSize(pageSize), sort...)
	if err != nil {
		return result.Page{}, domain.NewParseError(keywords, err)
	}
	return s.run(ctx, entityName, &req)
}

func (s *Service) run(ctx context.Context, entityName string, req *request.Request) (result.Page, error) {
	e, err := s.schemas.Describe(entityName)
	if err != nil {
		return result.Page{}, err
	}
	page, err := s.repo.Search(ctx, e, req, s.highlight)
	if err != nil {
		return result.Page{}, fmt.Errorf("search: %w", err)
	}
	return page, nil
}

func (s *Service) capPageSize(n int) int {
	if s.maxPageSize > 0 && n > s.maxPageSize {
		return s.maxPageSize
	}
	return n
}

func (s *Service) observe(ctx context.Context, op, entityName string, start time.Time, res result.Page, err error) {
	observe.Operation(ctx, op, entityName, start, err,
		zap.Int("total", res.Total()),
		zap.Int("page", res.Page()),
	)
}
