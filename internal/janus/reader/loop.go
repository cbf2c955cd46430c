package reader

import (
	"context"
	"errors"
	"log"
	"time"

	"golang.org/x/time/rate"
)

// ListenerConfig tunes the polling loop.
type ListenerConfig struct {
	// PollInterval is the delay between read attempts. Defaults to
	// 500ms.
	PollInterval time.Duration

	// ReadTimeout bounds a single Source read. Defaults to 1s.
	ReadTimeout time.Duration

	// Debounce is the minimum spacing between accepted taps, so a card
	// held against the reader registers once, not once per poll.
	// Defaults to 2s.
	Debounce time.Duration
}

// Listener polls a Source and invokes a callback per accepted tap. A
// tap callback that fails internally must not kill the loop: the
// Listener only stops on context cancellation, and it finishes any
// in-flight tap before Run returns.
type Listener struct {
	source  Source
	onTap   TapFunc
	logger  *log.Logger
	limiter *rate.Limiter

	pollInterval time.Duration
	readTimeout  time.Duration
	lastUID      string
	lastTapAt    time.Time
	debounce     time.Duration
}

func NewListener(source Source, onTap TapFunc, cfg ListenerConfig, logger *log.Logger) *Listener {
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = 500 * time.Millisecond
	}
	if cfg.ReadTimeout <= 0 {
		cfg.ReadTimeout = time.Second
	}
	if cfg.Debounce <= 0 {
		cfg.Debounce = 2 * time.Second
	}
	return &Listener{
		source:       source,
		onTap:        onTap,
		logger:       logger,
		limiter:      rate.NewLimiter(rate.Every(cfg.Debounce), 1),
		pollInterval: cfg.PollInterval,
		readTimeout:  cfg.ReadTimeout,
		debounce:     cfg.Debounce,
	}
}

// Run polls until ctx is cancelled. It never returns a tap's error;
// read failures are logged and polling continues.
func (l *Listener) Run(ctx context.Context) {
	l.logger.Printf("reader listening (poll=%s debounce=%s)", l.pollInterval, l.debounce)

	ticker := time.NewTicker(l.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			l.logger.Printf("reader stopped")
			return
		case <-ticker.C:
			l.poll(ctx)
		}
	}
}

func (l *Listener) poll(ctx context.Context) {
	readCtx, cancel := context.WithTimeout(ctx, l.readTimeout)
	uid, err := l.source.ReadUID(readCtx)
	cancel()

	switch {
	case err == nil:
	case errors.Is(err, ErrNoCard):
		l.lastUID = ""
		return
	case errors.Is(err, context.Canceled):
		return
	default:
		l.logger.Printf("reader error: %v", err)
		return
	}

	// Same card still on the reader inside the debounce window: one
	// physical presentation, one tap.
	now := time.Now()
	if uid == l.lastUID && now.Sub(l.lastTapAt) < l.debounce {
		return
	}
	if !l.limiter.Allow() {
		return
	}

	l.lastUID = uid
	l.lastTapAt = now
	l.onTap(ctx, uid)
}
