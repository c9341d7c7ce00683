package apod

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/i474232898/apod-api/internal/metrics"
)

// Service resolves dates and date ranges to records, using the store as a
// cache in front of the upstream API and persisting every record it fetches.
type Service struct {
	store    Store
	upstream Upstream
	log      *zap.SugaredLogger
	now      func() time.Time

	// Bounds a shared upstream fetch, which outlives any single caller.
	fetchTimeout time.Duration

	// Collapses concurrent misses for the same date into one upstream call.
	inflight singleflight.Group
}

// Option customizes a Service.
type Option func(*Service)

// WithLogger sets the logger; the default discards everything.
func WithLogger(l *zap.SugaredLogger) Option {
	return func(s *Service) {
		if l != nil {
			s.log = l
		}
	}
}

// WithClock overrides the source of "today".
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// NewService creates a new Service.
func NewService(store Store, upstream Upstream, opts ...Option) *Service {
	s := &Service{
		store:    store,
		upstream: upstream,
		log:      zap.NewNop().Sugar(),
		now:      time.Now,

		fetchTimeout: time.Minute,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Today returns midnight UTC of the current day according to the service clock.
func (s *Service) Today() time.Time {
	return Today(s.now())
}

// GetForDate returns the record for date, fetching and persisting it on a
// cache miss. A zero date means today in UTC. On upstream failure nothing is
// persisted and the error still matches ErrUpstream.
func (s *Service) GetForDate(ctx context.Context, date time.Time) (Record, error) {
	if date.IsZero() {
		date = s.Today()
	}
	key := FormatDate(date)

	rec, err := s.store.FindByDate(ctx, key)
	if err == nil {
		metrics.CacheLookups.WithLabelValues("hit").Inc()
		s.log.Debugw("apod cache hit", "date", key)
		return rec, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return Record{}, fmt.Errorf("lookup %s: %w", key, err)
	}

	metrics.CacheLookups.WithLabelValues("miss").Inc()
	s.log.Debugw("apod cache miss", "date", key)
	return s.fetchAndStore(ctx, date)
}

// GetForRange returns one record per calendar day in [start, end], newest
// first. Days missing from the store are fetched sequentially in ascending
// order; the first upstream failure aborts the call and days already
// persisted stay persisted.
func (s *Service) GetForRange(ctx context.Context, start, end time.Time) ([]Record, error) {
	start, end = truncateDay(start), truncateDay(end)
	if start.After(end) {
		return nil, fmt.Errorf("%w: %s > %s", ErrInvalidRange, FormatDate(start), FormatDate(end))
	}

	from, to := FormatDate(start), FormatDate(end)
	total := DayCount(start, end)

	stored, err := s.store.FindRange(ctx, from, to)
	if err != nil {
		return nil, fmt.Errorf("lookup range %s..%s: %w", from, to, err)
	}
	if len(stored) >= total {
		metrics.CacheLookups.WithLabelValues("hit").Add(float64(total))
		s.log.Debugw("apod range fully cached", "start", from, "end", to, "days", total)
		SortByDateDesc(stored)
		return stored, nil
	}

	s.log.Infow("apod range partially cached",
		"start", from,
		"end", to,
		"days", total,
		"cached", len(stored),
	)

	// The range query only tells us how many days are cached, not which,
	// so each day is probed individually.
	out := make([]Record, 0, total)
	for _, day := range DaysInRange(start, end) {
		key := FormatDate(day)

		rec, err := s.store.FindByDate(ctx, key)
		if err == nil {
			metrics.CacheLookups.WithLabelValues("hit").Inc()
			out = append(out, rec)
			continue
		}
		if !errors.Is(err, ErrNotFound) {
			return nil, fmt.Errorf("lookup %s: %w", key, err)
		}

		metrics.CacheLookups.WithLabelValues("miss").Inc()
		rec, err = s.fetchAndStore(ctx, day)
		if err != nil {
			return nil, fmt.Errorf("range %s..%s: %w", from, to, err)
		}
		out = append(out, rec)
	}

	SortByDateDesc(out)
	return out, nil
}

// Refresh warms the store with today's record.
func (s *Service) Refresh(ctx context.Context) error {
	rec, err := s.GetForDate(ctx, time.Time{})
	if err != nil {
		return err
	}
	s.log.Infow("apod refreshed", "date", rec.Date, "title", rec.Title)
	return nil
}

// fetchAndStore fetches and persists one day. Concurrent callers for the
// same date share one fetch; a caller whose ctx ends stops waiting without
// cancelling the fetch for the others.
func (s *Service) fetchAndStore(ctx context.Context, date time.Time) (Record, error) {
	key := FormatDate(date)

	ch := s.inflight.DoChan(key, func() (interface{}, error) {
		fctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.fetchTimeout)
		defer cancel()

		fetched, err := s.upstream.Fetch(fctx, date)
		if err != nil {
			metrics.UpstreamFetches.WithLabelValues("error").Inc()
			return Record{}, fmt.Errorf("fetch %s: %w", key, err)
		}

		rec := Normalize(fetched, date)
		if rec.Date != key {
			metrics.UpstreamFetches.WithLabelValues("error").Inc()
			return Record{}, fmt.Errorf("%w: requested %s, upstream answered for %s", ErrUpstream, key, rec.Date)
		}
		metrics.UpstreamFetches.WithLabelValues("ok").Inc()

		stored, err := s.store.Insert(fctx, rec)
		if errors.Is(err, ErrDuplicate) {
			// Another writer got there first; the stored record wins.
			s.log.Infow("apod record already stored", "date", key)
			existing, ferr := s.store.FindByDate(fctx, key)
			if ferr != nil {
				return Record{}, fmt.Errorf("reload %s: %w", key, ferr)
			}
			return existing, nil
		}
		if err != nil {
			return Record{}, fmt.Errorf("persist %s: %w", key, err)
		}

		metrics.RecordsStored.Inc()
		s.log.Infow("apod record stored", "date", stored.Date, "title", stored.Title)
		return stored, nil
	})

	select {
	case <-ctx.Done():
		return Record{}, fmt.Errorf("fetch %s: %w", key, ctx.Err())
	case res := <-ch:
		if res.Err != nil {
			return Record{}, res.Err
		}
		if res.Shared {
			s.log.Debugw("apod fetch shared with concurrent request", "date", key)
		}
		return res.Val.(Record), nil
	}
}
