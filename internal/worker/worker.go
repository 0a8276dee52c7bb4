package worker

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// TaskFunc is one unit of periodic background work.
type TaskFunc func(ctx context.Context) error

type task struct {
	name     string
	interval time.Duration
	fn       TaskFunc
}

// Runner executes registered tasks on their own intervals, each in its own
// goroutine. Failures are logged and the task keeps its schedule.
type Runner struct {
	mu      sync.Mutex
	tasks   []task
	logger  *slog.Logger
	ctx     context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	started bool
}

func NewRunner(logger *slog.Logger) *Runner {
	ctx, cancel := context.WithCancel(context.Background())
	return &Runner{
		logger: logger,
		ctx:    ctx,
		cancel: cancel,
	}
}

// Register adds a task. Must be called before Start.
func (r *Runner) Register(name string, interval time.Duration, fn TaskFunc) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.tasks = append(r.tasks, task{name: name, interval: interval, fn: fn})
}

func (r *Runner) Start() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.started {
		return
	}
	r.started = true

	for _, tk := range r.tasks {
		r.wg.Add(1)
		go r.loop(tk)
	}
	r.logger.Info("background runner started", "tasks", len(r.tasks))
}

func (r *Runner) Stop() {
	r.cancel()
	r.wg.Wait()
	r.logger.Info("background runner stopped")
}

func (r *Runner) loop(tk task) {
	defer r.wg.Done()

	ticker := time.NewTicker(tk.interval)
	defer ticker.Stop()

	for {
		select {
		case <-r.ctx.Done():
			return
		case <-ticker.C:
			r.run(tk)
		}
	}
}

func (r *Runner) run(tk task) {
	ctx, cancel := context.WithTimeout(r.ctx, 30*time.Second)
	defer cancel()

	start := time.Now()
	if err := tk.fn(ctx); err != nil {
		r.logger.Error("background task failed", "task", tk.name, "error", err)
		return
	}
	r.logger.Debug("background task done", "task", tk.name, "duration", time.Since(start))
}
