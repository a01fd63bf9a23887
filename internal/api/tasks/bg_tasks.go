package tasks

import (
	"context"
	"log/slog"
	"sync"
)

type Task = func()

// BackgroudTasks is a fixed-size worker pool fed through a buffered queue.
// Tasks run outside the request that enqueued them, e.g. activation mails.
type BackgroudTasks struct {
	log        *slog.Logger
	tasks      chan Task
	maxWorkers int
	wg         *sync.WaitGroup
	closeOnce  sync.Once
}

func New(log *slog.Logger, maxWorkers int, maxTasksQueueSize int) *BackgroudTasks {
	if maxWorkers < 1 {
		maxWorkers = 1
	}
	return &BackgroudTasks{
		log:        log,
		maxWorkers: maxWorkers,
		wg:         &sync.WaitGroup{},
		tasks:      make(chan Task, maxTasksQueueSize),
	}
}

func (t *BackgroudTasks) Run() {
	t.wg.Add(t.maxWorkers)
	for i := 0; i < t.maxWorkers; i++ {
		go func(worker int) {
			defer t.wg.Done()
			log := t.log.With("worker", worker)
			for task := range t.tasks {
				t.exec(log, task)
			}
		}(i)
	}
}

// exec runs a single task so that a panic only loses that task, not the worker.
func (t *BackgroudTasks) exec(log *slog.Logger, task Task) {
	defer func() {
		if err := recover(); err != nil {
			log.Error("panic in background task", "err", err)
		}
	}()
	task()
	log.Debug("task done")
}

func (t *BackgroudTasks) Add(task Task) {
	t.tasks <- task
}

// Shutdown stops accepting tasks and waits for queued ones to drain.
func (t *BackgroudTasks) Shutdown(ctx context.Context) error {
	const op = "tasks.BackgroudTasks.Shutdown"
	log := t.log.With("op", op)
	log.Info("shutting down background tasks")
	t.closeOnce.Do(func() { close(t.tasks) })
	shutdownCh := make(chan struct{})
	go func() {
		t.wg.Wait()
		close(shutdownCh)
	}()
	select {
	case <-ctx.Done():
		log.Warn("graceful shutdown timed out.. forcing exit", "timeout", ctx.Err())
		return ctx.Err()
	case <-shutdownCh:
		log.Info("Background tasks succesfully stopped")
		return nil
	}
}

func (t *BackgroudTasks) IsEmpty() bool {
	return len(t.tasks) == 0
}
