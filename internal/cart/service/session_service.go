package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/ridloal/stationery-storefront/internal/cart/domain"
	"github.com/ridloal/stationery-storefront/internal/cart/repository"
	"github.com/ridloal/stationery-storefront/internal/cart/store"
	"github.com/ridloal/stationery-storefront/internal/platform/logger"
	"github.com/ridloal/stationery-storefront/internal/platform/metrics"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

var ErrSessionNotFound = errors.New("cart session not found")

const saveTimeout = 3 * time.Second

type SessionService interface {
	NewSession(ctx context.Context) (string, *store.Store, error)
	// Cart returns the live store for sessionID, restoring it from the
	// snapshot repository or creating it empty when it is not in memory.
	Cart(ctx context.Context, sessionID string) (*store.Store, error)
	SweepIdle(ctx context.Context) int
	ActiveSessions() int
	StartSweeper(spec string) error
	StopSweeper()
}

type session struct {
	cart        *store.Store
	unsubscribe func()
	lastSeen    atomic.Int64
}

func (s *session) touch(now time.Time) {
	s.lastSeen.Store(now.UnixNano())
}

type sessionServiceImpl struct {
	repo        repository.SnapshotRepository
	policy      domain.StockPolicy
	idleTimeout time.Duration
	metrics     *metrics.Metrics
	now         func() time.Time

	mu       sync.RWMutex
	sessions map[string]*session

	scheduler *cron.Cron
}

func NewSessionService(repo repository.SnapshotRepository, policy domain.StockPolicy, idleTimeout time.Duration, m *metrics.Metrics) SessionService {
	if m == nil {
		m = metrics.Nop()
	}
	return &sessionServiceImpl{
		repo:        repo,
		policy:      policy,
		idleTimeout: idleTimeout,
		metrics:     m,
		now:         time.Now,
		sessions:    make(map[string]*session),
	}
}

func (s *sessionServiceImpl) NewSession(ctx context.Context) (string, *store.Store, error) {
	if err := ctx.Err(); err != nil {
		return "", nil, err
	}
	id := uuid.NewString()
	sess := s.register(id, nil)
	logger.Debug("Cart session created", zap.String("session_id", id))
	return id, sess.cart, nil
}

func (s *sessionServiceImpl) Cart(ctx context.Context, sessionID string) (*store.Store, error) {
	if sessionID == "" {
		return nil, ErrSessionNotFound
	}

	// touching under the read lock keeps SweepIdle from evicting a session
	// that has just been handed out
	s.mu.RLock()
	sess, ok := s.sessions[sessionID]
	if ok {
		sess.touch(s.now())
	}
	s.mu.RUnlock()
	if ok {
		return sess.cart, nil
	}

	snap, err := s.repo.Load(ctx, sessionID)
	switch {
	case err == nil:
		logger.Debug("Cart session restored", zap.String("session_id", sessionID), zap.Uint64("version", snap.Version))
		return s.register(sessionID, &snap).cart, nil
	case errors.Is(err, repository.ErrSnapshotNotFound):
		return s.register(sessionID, nil).cart, nil
	case ctx.Err() != nil:
		return nil, ctx.Err()
	default:
		// an unreadable snapshot starts the session over
		logger.Error("Cart: failed to restore snapshot, starting empty", err, zap.String("session_id", sessionID))
		return s.register(sessionID, nil).cart, nil
	}
}

// register installs a session unless another request got there first.
func (s *sessionServiceImpl) register(sessionID string, snap *domain.Snapshot) *session {
	s.mu.Lock()
	defer s.mu.Unlock()

	if existing, ok := s.sessions[sessionID]; ok {
		existing.touch(s.now())
		return existing
	}

	cart := store.New(s.policy)
	if snap != nil {
		cart.Restore(*snap)
	}
	sess := &session{cart: cart}
	sess.touch(s.now())
	sess.unsubscribe = cart.Subscribe(func(snap domain.Snapshot) {
		sess.touch(s.now())
		s.persist(sessionID, snap)
	})
	s.sessions[sessionID] = sess
	s.metrics.CartSessions.Set(float64(len(s.sessions)))
	return sess
}

func (s *sessionServiceImpl) persist(sessionID string, snap domain.Snapshot) {
	ctx, cancel := context.WithTimeout(context.Background(), saveTimeout)
	defer cancel()
	if err := s.repo.Save(ctx, sessionID, snap); err != nil {
		logger.Error("Cart: failed to persist snapshot", err,
			zap.String("session_id", sessionID),
			zap.Uint64("version", snap.Version))
	}
}

// SweepIdle evicts sessions idle longer than the idle timeout from memory.
// Their snapshots stay in the repository.
func (s *sessionServiceImpl) SweepIdle(ctx context.Context) int {
	if s.idleTimeout <= 0 {
		return 0
	}
	cutoff := s.now().Add(-s.idleTimeout).UnixNano()

	s.mu.Lock()
	var evicted []*session
	for id, sess := range s.sessions {
		if ctx.Err() != nil {
			break
		}
		if sess.lastSeen.Load() < cutoff {
			evicted = append(evicted, sess)
			delete(s.sessions, id)
		}
	}
	s.metrics.CartSessions.Set(float64(len(s.sessions)))
	remaining := len(s.sessions)
	s.mu.Unlock()

	for _, sess := range evicted {
		sess.unsubscribe()
	}
	if len(evicted) > 0 {
		logger.Info("Swept idle cart sessions", zap.Int("evicted", len(evicted)), zap.Int("remaining", remaining))
	}
	return len(evicted)
}

func (s *sessionServiceImpl) ActiveSessions() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

// StartSweeper runs SweepIdle on a cron schedule with a seconds field.
func (s *sessionServiceImpl) StartSweeper(spec string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.scheduler != nil {
		return nil
	}

	c := cron.New(cron.WithSeconds())
	if _, err := c.AddFunc(spec, func() {
		s.SweepIdle(context.Background())
	}); err != nil {
		return fmt.Errorf("invalid sweep schedule %q: %w", spec, err)
	}
	c.Start()
	s.scheduler = c
	logger.Info("Cart session sweeper started",
		zap.String("spec", spec),
		zap.Duration("idle_timeout", s.idleTimeout))
	return nil
}

func (s *sessionServiceImpl) StopSweeper() {
	s.mu.Lock()
	c := s.scheduler
	s.scheduler = nil
	s.mu.Unlock()
	if c != nil {
		<-c.Stop().Done()
	}
}
