package worker

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/ereignis/ereignis-api/internal/mail"
)

const sendTimeout = 15 * time.Second

// MailWorker drains a bounded queue of outbound mail on a fixed number of goroutines.
// Enqueue never blocks; a full queue drops the message.
type MailWorker struct {
	mailer  mail.Mailer
	logger  *zap.Logger
	queue   chan mail.Message
	workers int
	wg      sync.WaitGroup

	mu      sync.RWMutex
	stopped bool
}

// NewMailWorker builds a worker. Non-positive sizes fall back to defaults.
func NewMailWorker(mailer mail.Mailer, logger *zap.Logger, workers, queueSize int) *MailWorker {
	if workers <= 0 {
		workers = 2
	}
	if queueSize <= 0 {
		queueSize = 100
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &MailWorker{
		mailer:  mailer,
		logger:  logger,
		queue:   make(chan mail.Message, queueSize),
		workers: workers,
	}
}

// Start launches the consumers. They exit when ctx is done or Stop is called.
func (w *MailWorker) Start(ctx context.Context) {
	for i := 0; i < w.workers; i++ {
		w.wg.Add(1)
		go w.run(ctx)
	}
}

// Enqueue schedules msg for delivery and reports whether it was accepted.
// Messages offered after Stop are dropped.
func (w *MailWorker) Enqueue(msg mail.Message) bool {
	w.mu.RLock()
	defer w.mu.RUnlock()
	if w.stopped {
		w.logger.Warn("mail worker stopped, dropping message", zap.String("to", msg.To), zap.String("subject", msg.Subject))
		return false
	}
	select {
	case w.queue <- msg:
		return true
	default:
		w.logger.Warn("mail queue full, dropping message", zap.String("to", msg.To), zap.String("subject", msg.Subject))
		return false
	}
}

// Stop closes the queue and waits for in-flight deliveries.
func (w *MailWorker) Stop() {
	w.mu.Lock()
	if !w.stopped {
		w.stopped = true
		close(w.queue)
	}
	w.mu.Unlock()
	w.wg.Wait()
}

func (w *MailWorker) run(ctx context.Context) {
	defer w.wg.Done()
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-w.queue:
			if !ok {
				return
			}
			w.deliver(ctx, msg)
		}
	}
}

func (w *MailWorker) deliver(ctx context.Context, msg mail.Message) {
	sendCtx, cancel := context.WithTimeout(ctx, sendTimeout)
	defer cancel()
	if err := w.mailer.Send(sendCtx, msg); err != nil {
		w.logger.Error("mail delivery failed", zap.String("to", msg.To), zap.Error(err))
		return
	}
	w.logger.Debug("mail delivered", zap.String("to", msg.To), zap.String("subject", msg.Subject))
}
