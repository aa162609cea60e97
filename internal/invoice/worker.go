package invoice

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log"
	"sync"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/sevasetu/foundation-backend/config"
	"github.com/sevasetu/foundation-backend/internal/queue"
)

// Worker consumes invoice jobs from Kafka with a small fixed-size pool. The
// consumer group gives at-least-once delivery; every message is committed
// only once its job has succeeded or failed permanently. Transient failures
// are retried in place with capped backoff: committing a later message on
// the same partition would advance the group past a skipped offset, so a
// retryable job must finish before its partition moves on. A shutdown mid-
// retry leaves the offset uncommitted and the job is re-delivered on the
// next start; the idempotency check makes re-runs safe.
type Worker struct {
	reader     *kafka.Reader
	svc        Service
	workers    int
	jobTimeout time.Duration
	retryBase  time.Duration
	retryCap   time.Duration
	wg         sync.WaitGroup
}

func NewWorker(cfg *config.Config, svc Service) *Worker {
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:  cfg.KafkaBrokers,
		GroupID:  cfg.KafkaConsumerGroup,
		Topic:    cfg.KafkaInvoiceTopic,
		MinBytes: 1,
		MaxBytes: 10e6,
	})

	return &Worker{
		reader:     reader,
		svc:        svc,
		workers:    cfg.InvoiceWorkers,
		jobTimeout: time.Duration(cfg.JobTimeoutSeconds) * time.Second,
		retryBase:  time.Second,
		retryCap:   time.Minute,
	}
}

// Start launches the worker pool. It returns immediately; call Stop to
// drain.
func (w *Worker) Start(ctx context.Context) {
	log.Printf("🚀 Invoice worker pool starting (%d workers, topic=%s)", w.workers, w.reader.Config().Topic)

	for i := 0; i < w.workers; i++ {
		w.wg.Add(1)
		go func(id int) {
			defer w.wg.Done()
			w.run(ctx, id)
		}(i + 1)
	}
}

func (w *Worker) run(ctx context.Context, id int) {
	for {
		msg, err := w.reader.FetchMessage(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, io.EOF) {
				return
			}
			log.Printf("⚠️ Worker %d fetch error: %v", id, err)
			select {
			case <-ctx.Done():
				return
			case <-time.After(w.retryBase):
			}
			continue
		}

		w.handle(ctx, id, msg)
	}
}

func (w *Worker) handle(ctx context.Context, id int, msg kafka.Message) {
	var job queue.InvoiceJob
	if err := json.Unmarshal(msg.Value, &job); err != nil {
		// A payload that cannot be decoded will never succeed; drop it.
		log.Printf("❌ Worker %d dropping malformed job payload: %v", id, err)
		w.commit(ctx, msg)
		return
	}

	err := w.process(ctx, id, job)
	if err != nil && ctx.Err() != nil {
		// Shutting down mid-job: leave the offset uncommitted so the group
		// re-delivers it on the next start.
		return
	}
	if err != nil {
		log.Printf("❌ Worker %d permanent failure for donation %d: %v", id, job.DonationID, err)
	}
	w.commit(ctx, msg)
}

// process runs one job, retrying transient failures in place with capped
// backoff until it succeeds, fails permanently or the worker shuts down.
func (w *Worker) process(ctx context.Context, id int, job queue.InvoiceJob) error {
	backoff := w.retryBase
	for {
		jobCtx, cancel := context.WithTimeout(ctx, w.jobTimeout)
		err := w.svc.ProcessPaymentJob(jobCtx, job)
		cancel()

		switch {
		case err == nil:
			return nil
		case IsPermanent(err):
			return err
		}

		log.Printf("⚠️ Worker %d transient failure for donation %d, retrying in %v: %v", id, job.DonationID, backoff, err)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(backoff):
		}
		if backoff < w.retryCap {
			backoff *= 2
			if backoff > w.retryCap {
				backoff = w.retryCap
			}
		}
	}
}

func (w *Worker) commit(ctx context.Context, msg kafka.Message) {
	if err := w.reader.CommitMessages(ctx, msg); err != nil {
		log.Printf("⚠️ Offset commit failed: %v", err)
	}
}

// Stop closes the reader and waits for in-flight jobs to finish.
func (w *Worker) Stop() {
	if err := w.reader.Close(); err != nil {
		log.Printf("⚠️ Kafka reader close failed: %v", err)
	}
	w.wg.Wait()
	log.Println("✅ Invoice worker pool stopped")
}
