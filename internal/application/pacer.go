package application

import (
	"context"
	"time"

	"golang.org/x/time/rate"
)

// pacer keeps a quiet gap of at least delay between the end of one
// network check and the start of the next, however long the check took.
type pacer struct {
	delay   time.Duration
	limiter *rate.Limiter
}

func newPacer(delay time.Duration) *pacer {
	return &pacer{delay: delay}
}

// Wait blocks until delay has elapsed since the last Done. The first
// call never blocks.
func (p *pacer) Wait(ctx context.Context) error {
	if p.limiter == nil {
		return nil
	}
	return p.limiter.Wait(ctx)
}

// Done marks the end of a check. The limiter is rebuilt with its single
// token spent now, so the next token is only available delay from now.
func (p *pacer) Done() {
	if p.delay <= 0 {
		return
	}
	p.limiter = rate.NewLimiter(rate.Every(p.delay), 1)
	p.limiter.AllowN(time.Now(), 1)
}
