package jobs

import (
	"context"
	"time"

	"github.com/labstack/gommon/log"
)

const connectionSweepPeriod = 5 * time.Minute

type ConnectionCloser interface {
	CloseExpired(ctx context.Context) (int, error)
}

type ConnectionCleaner struct {
	closer ConnectionCloser
	period time.Duration
}

func NewConnectionCleaner(closer ConnectionCloser) *ConnectionCleaner {
	return &ConnectionCleaner{closer: closer, period: connectionSweepPeriod}
}

func (c *ConnectionCleaner) Start(ctx context.Context) {
	ticker := time.NewTicker(c.period)
	defer ticker.Stop()

	log.Info("Connection cleaner started")

	for {
		select {
		case <-ctx.Done():
			log.Info("Stopping connection cleaner...")
			return
		case <-ticker.C:
			c.cleanup(ctx)
		}
	}
}

func (c *ConnectionCleaner) cleanup(ctx context.Context) {
	closed, err := c.closer.CloseExpired(ctx)
	if err != nil {
		log.Errorf("Cleaner: failed to close expired connections: %v", err)
		return
	}

	if closed > 0 {
		log.Infof("Cleaner: terminated %d expired connections", closed)
	}
}
