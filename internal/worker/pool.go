package worker

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"fake-webhook-api/internal/dispatch"
	"fake-webhook-api/internal/metrics"
	"fake-webhook-api/internal/models"
	"fake-webhook-api/internal/payload"
)

// Dispatcher sends one synthesized payload to its callback URL.
type Dispatcher interface {
	Deliver(ctx context.Context, req dispatch.Request) dispatch.Result
}

// Pool runs deferred deliveries. Schedule arms a one-shot timer per job;
// when it fires the job goes onto the queue and one of the workers
// synthesizes the payload and dispatches it.
type Pool struct {
	jobs       chan models.Job
	quit       chan struct{}
	stopOnce   sync.Once
	wg         sync.WaitGroup
	logger     *slog.Logger
	dispatcher Dispatcher
	metrics    metrics.Sink
	now        func() time.Time
}

// NewPool creates a new worker pool.
func NewPool(maxQueueSize int, logger *slog.Logger, dispatcher Dispatcher, sink metrics.Sink) *Pool {
	return &Pool{
		jobs:       make(chan models.Job, maxQueueSize),
		quit:       make(chan struct{}),
		logger:     logger,
		dispatcher: dispatcher,
		metrics:    sink,
		now:        time.Now,
	}
}

// Start launches the worker goroutines.
func (p *Pool) Start(numWorkers int) {
	for i := 1; i <= numWorkers; i++ {
		p.wg.Add(1)
		go p.worker(i)
	}
}

// Stop lets running deliveries finish and waits for the workers to exit.
// Queued jobs and timers that have not fired yet are abandoned.
func (p *Pool) Stop() {
	p.stopOnce.Do(func() {
		p.logger.Info("Stopping worker pool... pending deliveries will be abandoned.")
		close(p.quit)
		p.wg.Wait()

		for {
			select {
			case job := <-p.jobs:
				p.abandon(job)
			default:
				p.logger.Info("All workers have stopped.")
				return
			}
		}
	})
}

// Schedule arranges for job to be delivered once, no earlier than delay from
// now. It returns immediately and the job cannot be cancelled.
func (p *Pool) Schedule(job models.Job, delay time.Duration) {
	p.metrics.DeliveryScheduled()
	time.AfterFunc(delay, func() { p.enqueue(job) })
}

func (p *Pool) enqueue(job models.Job) {
	select {
	case <-p.quit:
		p.abandon(job)
		return
	default:
	}

	select {
	case p.jobs <- job:
	case <-p.quit:
		p.abandon(job)
	}
}

func (p *Pool) abandon(job models.Job) {
	p.logger.Warn("Delivery abandoned during shutdown", "delivery_id", job.ID, "event_type", job.Request.Type)
	p.metrics.DeliveryAbandoned()
}

// worker is the background goroutine that processes due jobs.
func (p *Pool) worker(id int) {
	defer p.wg.Done()
	p.logger.Debug("Worker started", "worker_id", id)

	for {
		select {
		case <-p.quit:
			return
		case job := <-p.jobs:
			p.process(id, job)
		}
	}
}

func (p *Pool) process(workerID int, job models.Job) {
	now := p.now()
	logger := p.logger.With(
		"worker_id", workerID,
		"delivery_id", job.ID,
		"event_type", job.Request.Type,
		"callback_url", job.Request.CallbackURL,
	)

	body, err := payload.Synthesize(job.Request.Type, job.ID, job.Request, now)
	if err != nil {
		logger.Error("Failed to synthesize payload, delivery dropped", "error", err)
		p.metrics.DeliveryCompleted(string(job.Request.Type), metrics.StatusClassOtherError, 0)
		return
	}

	res := p.dispatcher.Deliver(context.Background(), dispatch.Request{
		URL:     job.Request.CallbackURL,
		APIKey:  job.Request.APIKey,
		ID:      job.ID,
		Payload: body,
	})

	statusClass := metrics.ClassifyStatus(res.StatusCode, res.Err)
	p.metrics.DeliveryCompleted(string(job.Request.Type), statusClass, res.Duration)

	if res.OK() {
		logger.Info("Webhook sent",
			"status", res.StatusCode,
			"duration", res.Duration,
			"lateness", now.Sub(job.FireAt),
		)
		return
	}
	logger.Error("Webhook delivery failed",
		"status", res.StatusCode,
		"status_class", statusClass,
		"duration", res.Duration,
		"error", res.Err,
	)
}
