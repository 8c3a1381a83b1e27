package mail

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
)

// DispatcherConfig tunes the send queue
type DispatcherConfig struct {
	QueueSize    int
	MaxRetries   int
	RetryBackoff time.Duration
	SendTimeout  time.Duration
}

// DefaultDispatcherConfig returns the production defaults
func DefaultDispatcherConfig() DispatcherConfig {
	return DispatcherConfig{
		QueueSize:    256,
		MaxRetries:   3,
		RetryBackoff: 2 * time.Second,
		SendTimeout:  10 * time.Second,
	}
}

// Dispatcher queues messages and sends them from a single worker.
// Enqueue never blocks: when the queue is full the message is dropped.
type Dispatcher struct {
	sender Sender
	cfg    DispatcherConfig
	logger *zap.Logger

	queue chan Message
	stop  chan struct{}
	done  chan struct{}

	mu      sync.RWMutex
	started bool
	closed  bool
}

// NewDispatcher creates a dispatcher; call Start to begin sending
func NewDispatcher(sender Sender, cfg DispatcherConfig, logger *zap.Logger) *Dispatcher {
	def := DefaultDispatcherConfig()
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = def.QueueSize
	}
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = def.MaxRetries
	}
	if cfg.RetryBackoff < 0 {
		cfg.RetryBackoff = 0
	}
	if cfg.SendTimeout <= 0 {
		cfg.SendTimeout = def.SendTimeout
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Dispatcher{
		sender: sender,
		cfg:    cfg,
		logger: logger.With(zap.String("component", "mail"), zap.String("provider", sender.Name())),
		queue:  make(chan Message, cfg.QueueSize),
		stop:   make(chan struct{}),
		done:   make(chan struct{}),
	}
}

// Start launches the worker
func (d *Dispatcher) Start() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.started || d.closed {
		return
	}
	d.started = true
	go d.run()
}

// Enqueue schedules a message. It reports false when the message was
// invalid, the dispatcher is closed, or the queue is full.
func (d *Dispatcher) Enqueue(msg Message) bool {
	if err := msg.Validate(); err != nil {
		d.logger.Warn("dropping invalid email", zap.Error(err))
		return false
	}

	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.closed {
		return false
	}
	select {
	case d.queue <- msg:
		return true
	default:
		d.logger.Warn("email queue full, dropping message",
			zap.String("to", msg.To),
			zap.String("subject", msg.Subject),
		)
		return false
	}
}

// Pending returns the number of queued messages
func (d *Dispatcher) Pending() int {
	return len(d.queue)
}

// Stop closes the queue and waits for queued messages to drain or ctx to
// expire, whichever comes first.
func (d *Dispatcher) Stop(ctx context.Context) error {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return nil
	}
	d.closed = true
	started := d.started
	close(d.queue)
	d.mu.Unlock()

	if !started {
		return nil
	}
	select {
	case <-d.done:
		return nil
	case <-ctx.Done():
		close(d.stop)
		<-d.done
		return fmt.Errorf("mail dispatcher stop: %w", ctx.Err())
	}
}

func (d *Dispatcher) run() {
	defer close(d.done)
	dropped := 0
	for msg := range d.queue {
		select {
		case <-d.stop:
			dropped++
			continue
		default:
		}
		d.deliver(msg)
	}
	if dropped > 0 {
		d.logger.Warn("emails dropped on shutdown", zap.Int("count", dropped))
	}
}

func (d *Dispatcher) deliver(msg Message) {
	var err error
	for attempt := 1; attempt <= d.cfg.MaxRetries; attempt++ {
		ctx, cancel := context.WithTimeout(context.Background(), d.cfg.SendTimeout)
		err = d.sender.Send(ctx, msg)
		cancel()
		if err == nil {
			d.logger.Debug("email sent", zap.String("to", msg.To), zap.Int("attempt", attempt))
			return
		}
		if attempt == d.cfg.MaxRetries {
			break
		}

		d.logger.Warn("email send failed, retrying",
			zap.String("to", msg.To),
			zap.Int("attempt", attempt),
			zap.Error(err),
		)
		select {
		case <-time.After(d.cfg.RetryBackoff * time.Duration(attempt)):
		case <-d.stop:
			d.logger.Error("email abandoned on shutdown", zap.String("to", msg.To), zap.Error(err))
			return
		}
	}
	d.logger.Error("email send failed",
		zap.String("to", msg.To),
		zap.String("subject", msg.Subject),
		zap.Int("attempts", d.cfg.MaxRetries),
		zap.Error(err),
	)
}
