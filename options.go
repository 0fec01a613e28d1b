package ftsi

import (
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/kailas-cloud/ftsi/internal/domain/search/highlight"
)

// Option configures the Client.
type Option interface {
	apply(*clientConfig)
}

type optionFunc func(*clientConfig)

func (f optionFunc) apply(c *clientConfig) { f(c) }

type clientConfig struct {
	path        string
	highlight   highlight.Config
	maxPageSize int
	analyzer    string

	logger     *zap.Logger
	metricsReg prometheus.Registerer
}

// WithStorage keeps catalogs on disk under root, one directory per catalog.
// An empty root is the same as InMemory.
func WithStorage(root string) Option {
	return optionFunc(func(c *clientConfig) {
		c.path = root
	})
}

// InMemory keeps catalogs in memory only. This is the default.
func InMemory() Option {
	return optionFunc(func(c *clientConfig) {
		c.path = ""
	})
}

// WithHighlight wraps query matches in text fields of search results with
// preTag and postTag. fragmentSize bounds the returned fragment; zero uses 100.
func WithHighlight(preTag, postTag string, fragmentSize int) Option {
	return optionFunc(func(c *clientConfig) {
		c.highlight = highlight.Config{PreTag: preTag, PostTag: postTag, FragmentSize: fragmentSize}
	})
}

// WithMaxPageSize caps the page size of every search. Zero means no cap.
func WithMaxPageSize(n int) Option {
	return optionFunc(func(c *clientConfig) {
		c.maxPageSize = n
	})
}

// WithAnalyzer selects the analyzer of text fields in catalogs the client
// creates: a language analyzer such as "en", "de" or "cjk", or "standard",
// "simple" or "web". Existing catalogs keep the analyzer they were created
// with; registering against one built with another fails with ErrConflict.
// Empty means "standard".
func WithAnalyzer(name string) Option {
	return optionFunc(func(c *clientConfig) {
		c.analyzer = name
	})
}

// WithLogger logs every SDK call: failures at warn, successes at debug.
// The logger also reaches the services underneath. Nil keeps the client silent.
func WithLogger(l *zap.Logger) Option {
	return optionFunc(func(c *clientConfig) {
		c.logger = l
	})
}

// WithPrometheus exports ftsi_sdk_* call counters, latencies and record
// counts on reg. Clients sharing a registry share the collectors.
func WithPrometheus(reg prometheus.Registerer) Option {
	return optionFunc(func(c *clientConfig) {
		c.metricsReg = reg
	})
}
