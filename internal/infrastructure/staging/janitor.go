package staging

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

const (
	defaultSweepInterval = 10 * time.Minute
	defaultStaleAfter    = time.Hour
)

// Janitor periodically removes staged files abandoned by crashed requests.
type Janitor struct {
	area       *Area
	interval   time.Duration
	staleAfter time.Duration
	log        zerolog.Logger
	done       chan struct{}
	wg         sync.WaitGroup
	startOnce  sync.Once
	stopOnce   sync.Once
}

// NewJanitor creates a janitor that sweeps every 10 minutes for files older than an hour.
func NewJanitor(area *Area, log zerolog.Logger) *Janitor {
	return &Janitor{
		area:       area,
		interval:   defaultSweepInterval,
		staleAfter: defaultStaleAfter,
		log:        log.With().Str("component", "staging-janitor").Logger(),
		done:       make(chan struct{}),
	}
}

// Start sweeps once immediately and then on every tick.
// Safe to call multiple times - only the first call starts the loop.
func (j *Janitor) Start(ctx context.Context) {
	j.startOnce.Do(func() {
		j.sweep()
		j.wg.Add(1)
		go j.run(ctx)
	})
}

// Stop waits for the loop to exit. Safe to call multiple times.
func (j *Janitor) Stop() {
	j.stopOnce.Do(func() {
		close(j.done)
		j.wg.Wait()
	})
}

func (j *Janitor) run(ctx context.Context) {
	defer j.wg.Done()

	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-j.done:
			return
		case <-ticker.C:
			j.sweep()
		}
	}
}

func (j *Janitor) sweep() {
	if _, err := j.area.Sweep(j.staleAfter); err != nil {
		j.log.Warn().Err(err).Msg("staging sweep failed")
	}
}
