package webhook

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
)

// Config holds delivery queue tuning
type Config struct {
	// MaxRetries bounds redelivery attempts after the first failure
	MaxRetries int
	// RequestTimeout bounds one delivery attempt
	RequestTimeout time.Duration
	// InterJobDelay is the pause between any two jobs, bounding throughput
	InterJobDelay time.Duration
	// BackoffBase scales the exponential backoff: a job that failed n
	// times waits 2^n * BackoffBase before its next attempt
	BackoffBase time.Duration
}

// DefaultConfig returns the delivery queue defaults
func DefaultConfig() Config {
	return Config{
		MaxRetries:     3,
		RequestTimeout: 10 * time.Second,
		InterJobDelay:  100 * time.Millisecond,
		BackoffBase:    time.Second,
	}
}

// Job is one pending webhook delivery. Jobs live only in memory: a
// process restart loses whatever is queued (documented gap; there is
// no dead-letter persistence either).
type Job struct {
	URL       string
	Event     string
	Payload   map[string]any
	Secret    string
	Retries   int
	NotBefore time.Time // Earliest time the next attempt may run
}

// envelope is the JSON body POSTed to subscribers
type envelope struct {
	Event     string         `json:"event"`
	Timestamp string         `json:"timestamp"`
	Data      map[string]any `json:"data"`
}

// DeliveryQueue is a FIFO, at-least-once webhook delivery queue with a
// single consumer goroutine. Ordering between jobs is preserved except
// that a job waiting out its backoff yields to due jobs behind it, so
// one failing endpoint never starves the rest of the queue.
type DeliveryQueue struct {
	cfg    Config
	client *http.Client
	logger *zap.Logger

	mu   sync.Mutex
	jobs []*Job
	wake chan struct{}

	running atomic.Bool
	done    chan struct{}
	cancel  context.CancelFunc

	delivered atomic.Int64
	failed    atomic.Int64
	dropped   atomic.Int64
}

// NewDeliveryQueue creates a stopped delivery queue
func NewDeliveryQueue(cfg Config, logger *zap.Logger) *DeliveryQueue {
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = DefaultConfig().MaxRetries
	}
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = DefaultConfig().RequestTimeout
	}
	if cfg.InterJobDelay <= 0 {
		cfg.InterJobDelay = DefaultConfig().InterJobDelay
	}
	if cfg.BackoffBase <= 0 {
		cfg.BackoffBase = DefaultConfig().BackoffBase
	}
	return &DeliveryQueue{
		cfg:    cfg,
		client: &http.Client{Timeout: cfg.RequestTimeout},
		logger: logger,
		jobs:   make([]*Job, 0),
		wake:   make(chan struct{}, 1),
	}
}

// Start launches the consumer goroutine. At most one consumer runs per
// queue instance; calling Start on a running queue is a no-op.
func (q *DeliveryQueue) Start(ctx context.Context) {
	if !q.running.CompareAndSwap(false, true) {
		return
	}
	ctx, q.cancel = context.WithCancel(ctx)
	q.done = make(chan struct{})
	go q.consume(ctx)
	q.logger.Info("webhook delivery queue started")
}

// Stop cancels the consumer and waits for the in-flight attempt, if
// any, to finish. Queued jobs are discarded.
func (q *DeliveryQueue) Stop() {
	if !q.running.CompareAndSwap(true, false) {
		return
	}
	q.cancel()
	<-q.done
	q.logger.Info("webhook delivery queue stopped",
		zap.Int64("delivered", q.delivered.Load()),
		zap.Int64("dropped", q.dropped.Load()),
	)
}

// Enqueue appends a delivery job at the queue tail. Safe for concurrent
// use from request-handling goroutines.
func (q *DeliveryQueue) Enqueue(url, event string, payload map[string]any, secret string) {
	q.push(&Job{
		URL:     url,
		Event:   event,
		Payload: payload,
		Secret:  secret,
	})
}

// Len returns the number of queued jobs
func (q *DeliveryQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.jobs)
}

// Delivered returns the number of successful deliveries
func (q *DeliveryQueue) Delivered() int64 { return q.delivered.Load() }

// Failed returns the number of failed delivery attempts
func (q *DeliveryQueue) Failed() int64 { return q.failed.Load() }

// Dropped returns the number of jobs dropped after exhausting retries
func (q *DeliveryQueue) Dropped() int64 { return q.dropped.Load() }

func (q *DeliveryQueue) push(job *Job) {
	q.mu.Lock()
	q.jobs = append(q.jobs, job)
	q.mu.Unlock()

	select {
	case q.wake <- struct{}{}:
	default:
	}
}

// next pops the first due job, preserving FIFO order among due jobs.
// When every queued job is still waiting out its backoff it returns the
// earliest wake-up time instead.
func (q *DeliveryQueue) next(now time.Time) (*Job, time.Time, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.jobs) == 0 {
		return nil, time.Time{}, false
	}

	var earliest time.Time
	for i, job := range q.jobs {
		if !job.NotBefore.After(now) {
			q.jobs = append(q.jobs[:i], q.jobs[i+1:]...)
			return job, time.Time{}, true
		}
		if earliest.IsZero() || job.NotBefore.Before(earliest) {
			earliest = job.NotBefore
		}
	}
	return nil, earliest, false
}

// consume is the single consumer loop
func (q *DeliveryQueue) consume(ctx context.Context) {
	defer close(q.done)

	for {
		job, wakeAt, ok := q.next(time.Now())
		if !ok {
			// Idle, or every job is backing off: wait for new work, the
			// earliest backoff expiry, or shutdown.
			var timer *time.Timer
			var expiry <-chan time.Time
			if !wakeAt.IsZero() {
				timer = time.NewTimer(time.Until(wakeAt))
				expiry = timer.C
			}
			select {
			case <-ctx.Done():
				if timer != nil {
					timer.Stop()
				}
				return
			case <-q.wake:
			case <-expiry:
			}
			if timer != nil {
				timer.Stop()
			}
			continue
		}

		q.attempt(ctx, job)

		// Bound throughput between any two jobs.
		select {
		case <-ctx.Done():
			return
		case <-time.After(q.cfg.InterJobDelay):
		}
	}
}

// attempt delivers one job and handles the retry bookkeeping
func (q *DeliveryQueue) attempt(ctx context.Context, job *Job) {
	err := q.deliver(ctx, job)
	if err == nil {
		q.delivered.Add(1)
		q.logger.Debug("webhook delivered",
			zap.String("event", job.Event),
			zap.String("url", job.URL),
			zap.Int("attempt", job.Retries+1),
		)
		return
	}

	q.failed.Add(1)
	if job.Retries >= q.cfg.MaxRetries {
		q.dropped.Add(1)
		q.logger.Error("webhook dropped after exhausting retries",
			zap.String("event", job.Event),
			zap.String("url", job.URL),
			zap.Int("attempts", job.Retries+1),
			zap.Error(err),
		)
		return
	}

	job.Retries++
	backoff := q.cfg.BackoffBase * time.Duration(1<<job.Retries)
	job.NotBefore = time.Now().Add(backoff)
	q.push(job)
	q.logger.Warn("webhook delivery failed, retrying",
		zap.String("event", job.Event),
		zap.String("url", job.URL),
		zap.Int("retries", job.Retries),
		zap.Duration("backoff", backoff),
		zap.Error(err),
	)
}

// deliver performs one HTTP POST attempt
func (q *DeliveryQueue) deliver(ctx context.Context, job *Job) error {
	body, err := json.Marshal(envelope{
		Event:     job.Event,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Data:      job.Payload,
	})
	if err != nil {
		return fmt.Errorf("encoding webhook body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, job.URL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("building webhook request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Webhook-Event", job.Event)
	if job.Secret != "" {
		req.Header.Set("X-Webhook-Signature", Sign(body, job.Secret))
	}

	resp, err := q.client.Do(req)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("endpoint returned status %d", resp.StatusCode)
	}
	return nil
}

// Sign computes the hex-encoded HMAC-SHA256 signature of the request
// body, the way subscribers are documented to verify it
func Sign(body []byte, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}
