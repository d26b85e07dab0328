// Package syncer keeps the local vehicle activity snapshot in step with the
// upstream service.
package syncer

import (
	"context"
	"errors"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"hotel-console-backend/config"
	"hotel-console-backend/internal/logger"
	"hotel-console-backend/internal/metrics"
	"hotel-console-backend/internal/model"
	"hotel-console-backend/internal/store"
)

// Triggers recorded in metrics and logs.
const (
	TriggerTimer     = "timer"
	TriggerManual    = "manual"
	TriggerMutation  = "mutation"
	TriggerStartup   = "startup"
	TriggerFirstRead = "first_read"
)

// refreshTimeout bounds one upstream fetch and store write.
const refreshTimeout = 2 * time.Minute

// ErrNoToken is returned when a refresh has neither a caller nor a service token.
var ErrNoToken = errors.New("syncer: no upstream token for refresh")

// Fetcher reads the full vehicle activity history.
type Fetcher interface {
	History(ctx context.Context, token string) ([]model.VehicleActivity, error)
}

// Notifier receives vehicles that left since the previous refresh.
type Notifier interface {
	Dispatch(ctx context.Context, ev model.ExitEvent) bool
}

// Result describes one completed refresh.
type Result struct {
	Records  int       `json:"records"`
	Exits    int       `json:"exits"`
	SyncedAt time.Time `json:"syncedAt"`
}

// Status is the last known refresh outcome.
type Status struct {
	LastSync  time.Time `json:"lastSync"`
	LastError string    `json:"lastError,omitempty"`
	Records   int       `json:"records"`
}

// Service orchestrates snapshot refreshes.
type Service struct {
	cfg          config.SyncConfig
	serviceToken string
	fetcher      Fetcher
	store        store.Store
	notifier     Notifier

	group singleflight.Group
	now   func() time.Time

	mu          sync.RWMutex
	status      Status
	invalidated []func()
	exits       []model.ExitEvent

	// requested counts refresh calls; completed is the highest request
	// covered by a finished fetch.
	requested   uint64
	completed   uint64
	nextToken   string
	nextTrigger string
}

// NewService creates a syncer. notifier may be nil when push is disabled.
func NewService(cfg config.SyncConfig, serviceToken string, fetcher Fetcher, st store.Store, notifier Notifier) *Service {
	return &Service{
		cfg:          cfg,
		serviceToken: serviceToken,
		fetcher:      fetcher,
		store:        st,
		notifier:     notifier,
		now:          time.Now,
	}
}

// OnInvalidate registers fn to run after every refresh that completed.
func (s *Service) OnInvalidate(fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.invalidated = append(s.invalidated, fn)
}

// Status returns the last refresh outcome.
func (s *Service) Status() Status {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.status
}

// Synced reports whether at least one refresh has completed.
func (s *Service) Synced() bool {
	return !s.Status().LastSync.IsZero()
}

// Run refreshes on the configured interval until ctx is cancelled.
func (s *Service) Run(ctx context.Context) {
	log := logger.Get(ctx)
	if !s.cfg.Enabled {
		log.Info("Background sync is disabled. Snapshot refreshes on demand only.")
		return
	}
	log.Infof("Starting sync service, interval %s", s.cfg.Interval)

	s.refreshLogged(ctx, TriggerStartup)

	timer := time.NewTimer(s.cfg.Interval)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Info("Sync service shutting down.")
			return
		case <-timer.C:
			s.refreshLogged(ctx, TriggerTimer)
			timer.Reset(s.cfg.Interval)
		}
	}
}

func (s *Service) refreshLogged(ctx context.Context, trigger string) {
	if _, err := s.Refresh(ctx, "", trigger); err != nil {
		logger.Get(ctx).Errorf("Sync cycle (%s) failed: %v", trigger, err)
	}
}

// Refresh replaces the snapshot with the upstream history. token is the
// caller's upstream token; empty means the configured service token.
//
// A call that arrives while a fetch is running waits for it and then for one
// more fetch, shared by every caller that arrived in the meantime, so the
// result always reflects upstream state from after the call. The fetch runs
// detached from ctx; cancelling ctx only stops the wait.
func (s *Service) Refresh(ctx context.Context, token, trigger string) (Result, error) {
	if token == "" {
		token = s.serviceToken
	}
	if token == "" {
		return Result{}, ErrNoToken
	}

	s.mu.Lock()
	s.requested++
	want := s.requested
	s.nextToken, s.nextTrigger = token, trigger
	s.mu.Unlock()

	detached := context.WithoutCancel(ctx)
	for {
		ch := s.group.DoChan("refresh", func() (any, error) {
			return s.drain(detached)
		})

		var res singleflight.Result
		select {
		case res = <-ch:
		case <-ctx.Done():
			return Result{}, ctx.Err()
		}
		if res.Shared {
			logger.Get(ctx).Debugf("Refresh (%s) joined an in-flight refresh", trigger)
		}

		s.mu.Lock()
		covered := s.completed >= want
		s.mu.Unlock()
		if !covered {
			// Joined a flight that finished before it saw this request.
			continue
		}

		s.dispatchExits(ctx)
		if res.Err != nil {
			return Result{}, res.Err
		}
		return res.Val.(Result), nil
	}
}

// drain fetches until every request registered so far is covered by a fetch
// that started after it.
func (s *Service) drain(ctx context.Context) (Result, error) {
	var (
		res Result
		err error
	)
	for {
		s.mu.Lock()
		if s.completed >= s.requested {
			s.mu.Unlock()
			return res, err
		}
		target := s.requested
		token, trigger := s.nextToken, s.nextTrigger
		s.mu.Unlock()

		fctx, cancel := context.WithTimeout(ctx, refreshTimeout)
		res, err = s.refreshOnce(fctx, token, trigger)
		cancel()

		s.mu.Lock()
		s.completed = target
		s.mu.Unlock()
	}
}

func (s *Service) refreshOnce(ctx context.Context, token, trigger string) (Result, error) {
	log := logger.Get(ctx)
	log.Debugf("Executing sync cycle (%s)...", trigger)
	now := s.now().UTC()

	records, err := s.fetcher.History(ctx, token)
	// A failed fetch with nothing retrieved must not clear the snapshot.
	if err != nil && len(records) == 0 {
		metrics.SyncCycles.WithLabelValues(trigger, "fetch_error").Inc()
		s.recordError(err)
		return Result{}, err
	}

	exits, err := s.store.ReplaceActivities(ctx, now, records)
	if err != nil {
		metrics.SyncCycles.WithLabelValues(trigger, "store_error").Inc()
		s.recordError(err)
		return Result{}, err
	}

	metrics.SyncCycles.WithLabelValues(trigger, "ok").Inc()
	metrics.SnapshotRecords.Set(float64(len(records)))

	s.mu.Lock()
	s.status = Status{LastSync: now, Records: len(records)}
	if s.notifier != nil {
		s.exits = append(s.exits, exits...)
	}
	listeners := append([]func(){}, s.invalidated...)
	s.mu.Unlock()

	for _, fn := range listeners {
		fn()
	}

	log.Infof("Sync cycle (%s) finished: %d records, %d exits", trigger, len(records), len(exits))
	return Result{Records: len(records), Exits: len(exits), SyncedAt: now}, nil
}

// dispatchExits hands queued exits to the notifier. Whichever caller gets
// here first sends them.
func (s *Service) dispatchExits(ctx context.Context) {
	s.mu.Lock()
	exits := s.exits
	s.exits = nil
	s.mu.Unlock()

	if len(exits) == 0 {
		return
	}
	logger.Get(ctx).Infof("Dispatching notifications for %d exits", len(exits))
	for _, ev := range exits {
		s.notifier.Dispatch(ctx, ev)
	}
}

func (s *Service) recordError(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.status.LastError = err.Error()
}
