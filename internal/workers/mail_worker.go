package workers

import (
	"context"
	"time"

	"dentwork_backend/internal/email"
	"dentwork_backend/internal/logger"
)

// MailJob - задание на отправку письма сброса пароля
type MailJob struct {
	To       string
	ResetURL string
}

// MailWorker - фоновая очередь отправки писем.
// Отправка отделена от цикла запрос-ответ: HTTP-ответ не ждет SMTP
// и не падает из-за него. Неудачные попытки ретраятся с backoff,
// окончательный провал логируется.
type MailWorker struct {
	provider   email.Provider
	jobs       chan MailJob
	maxRetries int
	baseDelay  time.Duration

	// закрывается при выходе из цикла воркера
	stopped chan struct{}
}

func NewMailWorker(provider email.Provider, queueSize int) *MailWorker {
	if queueSize <= 0 {
		queueSize = 64
	}
	return &MailWorker{
		provider:   provider,
		jobs:       make(chan MailJob, queueSize),
		maxRetries: 3,
		baseDelay:  2 * time.Second,
	}
}

// Start запускает воркер. Останавливается по отмене ctx.
func (w *MailWorker) Start(ctx context.Context) {
	w.stopped = make(chan struct{})
	go w.run(ctx)
}

// Stopped закрывается после остановки воркера
func (w *MailWorker) Stopped() <-chan struct{} {
	return w.stopped
}

// Enqueue ставит письмо в очередь без блокировки.
// Возвращает false, если очередь переполнена - вызывающий логирует и
// НЕ проваливает запрос (контракт: ответ успешен, как только токен сохранен).
func (w *MailWorker) Enqueue(job MailJob) bool {
	select {
	case w.jobs <- job:
		return true
	default:
		return false
	}
}

func (w *MailWorker) run(ctx context.Context) {
	defer close(w.stopped)
	for {
		select {
		case <-ctx.Done():
			logger.Info("mail worker stopped")
			return
		case job := <-w.jobs:
			w.deliver(ctx, job)
		}
	}
}

// deliver отправляет письмо с ретраями и экспоненциальным backoff
func (w *MailWorker) deliver(ctx context.Context, job MailJob) {
	delay := w.baseDelay

	for attempt := 1; attempt <= w.maxRetries; attempt++ {
		err := w.provider.SendPasswordReset(job.To, job.ResetURL)
		if err == nil {
			logger.WorkerLog("mail_worker", "password_reset_sent", nil)
			return
		}

		logger.Warn("mail delivery attempt failed",
			"worker", "mail_worker",
			"attempt", attempt,
			"error", err.Error(),
		)

		if attempt == w.maxRetries {
			logger.WorkerLog("mail_worker", "password_reset_send", err)
			return
		}

		select {
		case <-ctx.Done():
			return
		case <-time.After(delay):
			delay *= 2
		}
	}
}
