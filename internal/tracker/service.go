// Package tracker implements activity ingestion, page listing, statistics
// and project management on top of a storage.Store.
package tracker

import (
	"math"
	"time"

	"github.com/runnerr0/dwell/internal/logger"
	"github.com/runnerr0/dwell/internal/storage"
)

// Paging limits for listings.
const (
	DefaultPageLimit = 20
	MaxPageLimit     = 100

	// MaxPage keeps (page-1)*limit inside int32 for the OFFSET clause.
	MaxPage = math.MaxInt32 / MaxPageLimit

	DefaultRecentLimit = 20
	TopDomainsLimit    = 10
	TopPagesLimit      = 10
	HeatmapTopURLs     = 5
)

// Uncategorized labels activity without a live project.
const (
	UncategorizedName  = "Uncategorized"
	UncategorizedColor = "#6b7280"
)

// SourceDefaults fills source fields a client left unset.
type SourceDefaults struct {
	Type       string
	DeviceName *string
	ClientID   *string
}

// DefaultSourceDefaults marks events without a source as coming from the
// browser extension.
func DefaultSourceDefaults() SourceDefaults {
	return SourceDefaults{Type: "extension"}
}

// Service holds the store, logger and clock shared by every operation.
type Service struct {
	store       storage.Store
	log         logger.Logger
	now         func() time.Time
	sources     SourceDefaults
	recentLimit int
}

// Option configures a Service.
type Option func(*Service)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithSourceDefaults overrides DefaultSourceDefaults.
func WithSourceDefaults(d SourceDefaults) Option {
	return func(s *Service) { s.sources = d }
}

// WithRecentLimit sets how many recent logs Stats includes.
func WithRecentLimit(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.recentLimit = clamp(n, 1, MaxPageLimit)
		}
	}
}

// NewService creates a Service. A nil logger is replaced by a no-op logger.
func NewService(store storage.Store, log logger.Logger, opts ...Option) *Service {
	if log == nil {
		log = logger.NewNop()
	}
	s := &Service{
		store:       store,
		log:         log,
		now:         time.Now,
		sources:     DefaultSourceDefaults(),
		recentLimit: DefaultRecentLimit,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Now returns the service clock in UTC.
func (s *Service) Now() time.Time {
	return s.now().UTC()
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func stringValue(p *string, fallback string) string {
	if p == nil {
		return fallback
	}
	return *p
}
