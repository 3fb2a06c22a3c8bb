package sharelink

import (
	"context"
	"time"

	"github.com/sharespace-media/backend/internal/logger"
	"github.com/sharespace-media/backend/internal/metrics"
	"go.uber.org/zap"
)

// Sweeper periodically purges unconsumed tokens that outlived the TTL
type Sweeper struct {
	service  *Service
	interval time.Duration
	ctx      context.Context
	cancel   context.CancelFunc
}

// NewSweeper creates a sweeper for a share link service
func NewSweeper(service *Service, interval time.Duration) *Sweeper {
	ctx, cancel := context.WithCancel(context.Background())
	return &Sweeper{
		service:  service,
		interval: interval,
		ctx:      ctx,
		cancel:   cancel,
	}
}

// Start begins the periodic sweep
func (s *Sweeper) Start() {
	if s.service.TTL() <= 0 {
		logger.Log.Info("Share link sweeper disabled (no TTL configured)")
		return
	}
	logger.Log.Info("Starting share link sweeper",
		zap.Duration("interval", s.interval),
		zap.Duration("ttl", s.service.TTL()),
	)
	go s.run()
}

// Stop stops the sweeper
func (s *Sweeper) Stop() {
	s.cancel()
}

func (s *Sweeper) run() {
	s.sweep()

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.sweep()
		case <-s.ctx.Done():
			return
		}
	}
}

func (s *Sweeper) sweep() {
	n, err := s.service.Sweep(s.ctx)
	if err != nil {
		logger.ErrorWithFields("Share link sweep failed", err)
		return
	}
	if n > 0 {
		metrics.Get().ShareLinksSwept.Add(float64(n))
		logger.Log.Info("Swept expired share links", zap.Int("removed", n))
	}
}
