package events

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"connect4/internal/config"

	"github.com/rs/zerolog/log"
	"github.com/segmentio/kafka-go"
)

const defaultWriteTimeout = 5 * time.Second

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

type publishJob struct {
	Key     string
	Event   string
	Value   []byte
	Attempt int
}

// KafkaPublisher queues events and writes them to a Kafka topic from a small worker pool.
type KafkaPublisher struct {
	cfg          config.EventsConfig
	writer       messageWriter
	writeTimeout time.Duration

	dispatchCh chan publishJob
	retryQ     *retryQueue
	done       chan struct{}
	wg         sync.WaitGroup

	mu      sync.Mutex
	started bool
	closed  bool
	now     func() time.Time
}

func NewKafkaPublisher(cfg config.EventsConfig) *KafkaPublisher {
	w := &kafka.Writer{
		Addr:         kafka.TCP(cfg.KafkaBrokers...),
		Topic:        cfg.KafkaTopic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireOne,
		BatchTimeout: 10 * time.Millisecond,
		Transport:    &kafka.Transport{ClientID: cfg.KafkaClientID},
	}
	return newKafkaPublisher(cfg, w)
}

func newKafkaPublisher(cfg config.EventsConfig, w messageWriter) *KafkaPublisher {
	if cfg.Buffer <= 0 {
		cfg.Buffer = 1024
	}
	if cfg.Workers <= 0 {
		cfg.Workers = 2
	}
	if cfg.RetryBase <= 0 {
		cfg.RetryBase = 200 * time.Millisecond
	}
	if cfg.RetryMax < 0 {
		cfg.RetryMax = 0
	}
	p := &KafkaPublisher{
		cfg:          cfg,
		writer:       w,
		writeTimeout: defaultWriteTimeout,
		dispatchCh:   make(chan publishJob, cfg.Buffer),
		done:         make(chan struct{}),
		now:          time.Now,
	}
	p.retryQ = newRetryQueue(p.dispatchCh, p.done)
	return p
}

func (p *KafkaPublisher) Start(ctx context.Context) {
	p.mu.Lock()
	if p.started || p.closed {
		p.mu.Unlock()
		return
	}
	p.started = true
	p.mu.Unlock()

	for i := 0; i < p.cfg.Workers; i++ {
		p.wg.Add(1)
		go func() {
			defer p.wg.Done()
			p.worker(ctx)
		}()
	}
	log.Info().
		Strs("brokers", p.cfg.KafkaBrokers).
		Str("topic", p.cfg.KafkaTopic).
		Int("workers", p.cfg.Workers).
		Msg("event publisher started")
}

// Publish encodes the event and queues it without blocking.
func (p *KafkaPublisher) Publish(_ context.Context, event, sessionID string, data any) error {
	env, err := newEnvelope(event, sessionID, data, p.now())
	if err != nil {
		return err
	}
	value, err := json.Marshal(env)
	if err != nil {
		return err
	}

	p.mu.Lock()
	closed := p.closed
	p.mu.Unlock()
	if closed {
		return ErrClosed
	}

	select {
	case p.dispatchCh <- publishJob{Key: sessionID, Event: event, Value: value}:
		metricEventsQueuedTotal.Add(1)
		metricEventsQueueLen.Set(int64(len(p.dispatchCh)))
		return nil
	default:
		metricEventsDroppedTotal.Add(1)
		return ErrQueueFull
	}
}

// Close stops the workers after they flush what is already queued, then closes the writer.
func (p *KafkaPublisher) Close() error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil
	}
	p.closed = true
	p.mu.Unlock()

	close(p.done)
	p.wg.Wait()
	return p.writer.Close()
}

func (p *KafkaPublisher) worker(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-p.done:
			p.drain(ctx)
			return
		case job := <-p.dispatchCh:
			metricEventsQueueLen.Set(int64(len(p.dispatchCh)))
			p.processJob(ctx, job)
		}
	}
}

func (p *KafkaPublisher) drain(ctx context.Context) {
	for {
		select {
		case job := <-p.dispatchCh:
			p.write(ctx, job)
		default:
			return
		}
	}
}

func (p *KafkaPublisher) processJob(ctx context.Context, job publishJob) {
	if err := p.write(ctx, job); err != nil {
		p.retryOrDrop(job, err)
	}
}

func (p *KafkaPublisher) write(ctx context.Context, job publishJob) error {
	wctx, cancel := context.WithTimeout(ctx, p.writeTimeout)
	defer cancel()
	err := p.writer.WriteMessages(wctx, kafka.Message{
		Key:   []byte(job.Key),
		Value: job.Value,
		Headers: []kafka.Header{
			{Key: "event", Value: []byte(job.Event)},
		},
	})
	if err != nil {
		metricEventsFailedTotal.Add(1)
		return err
	}
	metricEventsPublishedTotal.Add(1)
	return nil
}

func (p *KafkaPublisher) retryOrDrop(job publishJob, err error) {
	if job.Attempt >= p.cfg.RetryMax {
		metricEventsRetryDroppedTotal.Add(1)
		log.Warn().Err(err).
			Str("event", job.Event).
			Str("session_id", job.Key).
			Int("attempts", job.Attempt+1).
			Msg("event dropped")
		return
	}
	job.Attempt++
	metricEventsRetryTotal.Add(1)
	delay := p.cfg.RetryBase * time.Duration(1<<(job.Attempt-1))
	p.retryQ.Enqueue(job, delay)
}

// New returns a Kafka publisher when brokers are configured and Nop otherwise.
func New(ctx context.Context, cfg config.EventsConfig) Publisher {
	if !cfg.Enabled() {
		log.Info().Msg("no kafka brokers configured, events disabled")
		return Nop{}
	}
	p := NewKafkaPublisher(cfg)
	p.Start(ctx)
	return p
}
