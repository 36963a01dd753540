package alena

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/zzzzlzzzz/alena/driver"
	"github.com/zzzzlzzzz/alena/jobs"
	"github.com/zzzzlzzzz/alena/queue"
	"github.com/zzzzlzzzz/alena/stat"
)

// Worker executes queued tasks one at a time.
type Worker struct {
	store driver.StoreDriver
	queue *queue.Queue
	jobs  jobs.Registry
	stats *stat.Stats
	log   *zap.Logger
}

func NewWorker(id int, store driver.StoreDriver, q *queue.Queue, registry jobs.Registry,
	stats *stat.Stats, log *zap.Logger) *Worker {
	w := new(Worker)
	w.store = store
	w.queue = q
	w.jobs = registry
	w.stats = stats
	w.log = log.With(zap.String("component", "worker"), zap.Int("worker", id))
	return w
}

// Run processes tasks until ctx is done or the queue is closed.
func (w *Worker) Run(ctx context.Context) error {
	for {
		id, err := w.queue.Pop(ctx)
		if err != nil {
			if errors.Is(err, queue.ErrClosed) || ctx.Err() != nil {
				return nil
			}
			return err
		}
		w.process(id)
	}
}

func (w *Worker) process(id uint32) {
	log := w.log.With(zap.Uint32("task_id", id))
	task, ok, err := w.store.Get(id)
	if err != nil {
		log.Error("get task", zap.Error(err))
		return
	}
	if !ok {
		log.Error("queued task is missing")
		return
	}

	log.Info("WORKER/PROCESS", zap.Stringer("type", task.Type))
	if err = w.store.SetInProgress(id); err != nil {
		log.Error("set in progress", zap.Error(err))
		return
	}
	counter := w.stats.Get(task.Type.String())
	counter.Started()

	fn, err := w.jobs.Resolve(task.Type)
	if err != nil {
		log.Error("resolve job", zap.Error(err))
		return
	}
	output, ok := w.run(log, fn, task.Input)
	if !ok {
		return
	}

	if err = w.store.SetCompleted(id, output); err != nil {
		log.Error("set completed", zap.Error(err))
		return
	}
	counter.Finished()
	log.Info("WORKER/COMPLETED")
}

// run reports false when fn panics. The task then stays in progress.
func (w *Worker) run(log *zap.Logger, fn jobs.Func, input string) (output string, ok bool) {
	defer func() {
		if x := recover(); x != nil {
			log.Error("job panic", zap.Any("panic", x))
			ok = false
		}
	}()
	output = fn(input)
	ok = true
	return
}
