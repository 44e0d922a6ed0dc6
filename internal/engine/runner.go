package engine

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// Runner advances a Game on a wall-clock interval.
type Runner struct {
	Game     *Game
	Interval time.Duration // base time per turn

	// OnTurn runs after every turn, outside the game lock.
	OnTurn func(r *TurnReport)

	mu    sync.Mutex
	speed float64 // 1.0 = one turn per Interval, 0 = paused
}

// NewRunner creates a runner at normal speed.
func NewRunner(g *Game, interval time.Duration) *Runner {
	return &Runner{
		Game:     g,
		Interval: interval,
		speed:    1.0,
	}
}

// SetSpeed changes the multiplier. Zero or less pauses the runner.
func (r *Runner) SetSpeed(speed float64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.speed = speed
}

// Speed returns the current multiplier.
func (r *Runner) Speed() float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.speed
}

// Run advances turns until ctx is done or limit turns have run (limit <= 0 means
// no limit). It returns the number of turns advanced.
func (r *Runner) Run(ctx context.Context, limit int) int {
	slog.Info("turn runner started", "turn", r.Game.Turn(), "interval", r.Interval, "speed", r.Speed())
	n := 0
	for limit <= 0 || n < limit {
		speed := r.Speed()
		if speed <= 0 {
			// Paused; check again shortly.
			if !sleep(ctx, 100*time.Millisecond) {
				break
			}
			continue
		}

		start := time.Now()
		report := r.Game.AdvanceTurn()
		n++
		if r.OnTurn != nil {
			r.OnTurn(report)
		}

		// Sleep for the remainder of the interval, adjusted for speed.
		target := time.Duration(float64(r.Interval) / speed)
		if elapsed := time.Since(start); elapsed < target {
			if !sleep(ctx, target-elapsed) {
				break
			}
		} else if ctx.Err() != nil {
			break
		}
	}
	slog.Info("turn runner stopped", "turn", r.Game.Turn(), "advanced", n)
	return n
}

func sleep(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
