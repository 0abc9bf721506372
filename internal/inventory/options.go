package inventory

import (
	"time"

	"github.com/google/uuid"

	"franchise-inventory/internal/common/logger"
	"franchise-inventory/internal/events"
)

const (
	defaultTopStockLimit           = 3
	defaultSeparatedCandidateLimit = 10
	defaultBranchFanout            = 8
)

type Option func(*Service)

// WithEmbeddedLimit sets the embedded list size at which new products go to
// the separated store. Negative values are ignored.
func WithEmbeddedLimit(limit int) Option {
	return func(s *Service) {
		if limit >= 0 {
			s.embeddedLimit = limit
		}
	}
}

// WithTopStockLimit sets the default N of TopStockProductsGlobal.
func WithTopStockLimit(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.topStockLimit = n
		}
	}
}

// WithSeparatedCandidateLimit bounds how many separated records are pulled
// from the store per global top-stock query.
func WithSeparatedCandidateLimit(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.candidateLimit = n
		}
	}
}

// WithBranchFanout bounds concurrent per-branch lookups.
func WithBranchFanout(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.fanout = n
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

func WithIDGenerator(newID func() string) Option {
	return func(s *Service) {
		if newID != nil {
			s.newID = newID
		}
	}
}

func WithLogger(log logger.Logger) Option {
	return func(s *Service) {
		if log != nil {
			s.logger = log
		}
	}
}

func WithPublisher(p events.Publisher) Option {
	return func(s *Service) {
		if p != nil {
			s.publisher = p
		}
	}
}

func defaultOptions(s *Service) {
	s.embeddedLimit = DefaultEmbeddedProductLimit
	s.topStockLimit = defaultTopStockLimit
	s.candidateLimit = defaultSeparatedCandidateLimit
	s.fanout = defaultBranchFanout
	s.now = func() time.Time { return time.Now().UTC() }
	s.newID = uuid.NewString
	s.logger = logger.NewNoOpLogger()
	s.publisher = events.NoopPublisher{}
}
