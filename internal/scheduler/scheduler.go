package scheduler

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/homehub-dev/homehub/internal/config"
	"github.com/homehub-dev/homehub/internal/models"
)

type HubStore interface {
	MarkStaleHubsOffline(ctx context.Context, cutoff time.Time) ([]models.Hub, error)
}

type HubPublisher interface {
	PublishHub(hub models.Hub)
}

type OfflineNotifier interface {
	NotifyOffline(ctx context.Context, hub models.Hub) error
}

// Scheduler periodically marks hubs that missed their heartbeat as offline
// and announces each transition.
type Scheduler struct {
	store     HubStore
	publisher HubPublisher
	notifier  OfflineNotifier
	interval  time.Duration
	timeout   time.Duration
	now       func() time.Time
	logger    *slog.Logger

	mu      sync.Mutex
	ctx     context.Context
	cancel  context.CancelFunc
	done    chan struct{}
	running bool
}

// NewScheduler initializes a new Scheduler instance. notifier may be nil.
func NewScheduler(store HubStore, publisher HubPublisher, notifier OfflineNotifier, cfg config.PresenceConfig, logger *slog.Logger) *Scheduler {
	return &Scheduler{
		store:     store,
		publisher: publisher,
		notifier:  notifier,
		interval:  cfg.Interval,
		timeout:   cfg.HeartbeatTimeout,
		now:       time.Now,
		logger:    logger,
	}
}

// Start begins sweeping every interval. It does nothing when the interval is
// zero or the scheduler is already running.
func (s *Scheduler) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running || s.interval <= 0 {
		return
	}

	s.ctx, s.cancel = context.WithCancel(context.Background())
	s.done = make(chan struct{})
	s.running = true

	go s.run(s.ctx, s.done)

	s.logger.Info("presence sweeper started",
		slog.Duration("interval", s.interval),
		slog.Duration("heartbeat_timeout", s.timeout),
	)
}

// Stop cancels the sweep loop and waits for it to exit.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}

	s.cancel()
	done := s.done
	s.running = false
	s.mu.Unlock()

	<-done
	s.logger.Info("presence sweeper stopped")
}

func (s *Scheduler) run(ctx context.Context, done chan struct{}) {
	defer close(done)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := s.Sweep(ctx); err != nil {
				s.logger.Error("presence sweep failed", slog.Any("error", err))
			}
		}
	}
}

// Sweep runs one pass and returns the hubs it turned offline.
func (s *Scheduler) Sweep(ctx context.Context) ([]models.Hub, error) {
	cutoff := s.now().Add(-s.timeout)

	stale, err := s.store.MarkStaleHubsOffline(ctx, cutoff)
	if err != nil {
		return nil, err
	}

	for _, hub := range stale {
		s.logger.Info("hub went offline",
			slog.String("hub_id", hub.ID),
			slog.String("user_id", hub.UserID),
			slog.Time("last_heartbeat", hub.LastHeartbeat),
		)

		s.publisher.PublishHub(hub)

		if s.notifier != nil {
			if err := s.notifier.NotifyOffline(ctx, hub); err != nil {
				s.logger.Warn("offline notification failed",
					slog.String("hub_id", hub.ID),
					slog.Any("error", err),
				)
			}
		}
	}

	return stale, nil
}
