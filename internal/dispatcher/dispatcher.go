// Package dispatcher consumes the notification queue and routes each
// message to the event processor entry point matching its "evento"
// discriminator.
package dispatcher

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"

	"github.com/MedSync-Fiap/notificacao-api/internal/config"
	"github.com/MedSync-Fiap/notificacao-api/internal/consumer"
	"github.com/MedSync-Fiap/notificacao-api/internal/models"
	"github.com/MedSync-Fiap/notificacao-api/internal/rabbitmq"
)

// EventProcessor is the set of pipeline entry points the dispatcher
// routes into.
type EventProcessor interface {
	ProcessConsultaCriada(ctx context.Context, evento models.ConsultaEvent)
	ProcessConsultaEditada(ctx context.Context, evento models.ConsultaEditadaEvent)
	ProcessConsultaCancelada(ctx context.Context, evento models.ConsultaEvent)
	ProcessLembrete(ctx context.Context, evento models.ConsultaEvent)
}

// Dispatcher consumes the notification queue and dispatches decoded
// events into the processor.
type Dispatcher struct {
	cfg         *config.ConsumerConfig
	conn        *rabbitmq.Connection
	processor   EventProcessor
	logger      *zap.Logger
	ctx         context.Context
	cancel      context.CancelFunc
	consumerTag string
	started     bool
}

func NewDispatcher(cfg *config.ConsumerConfig, conn *rabbitmq.Connection, processor EventProcessor, logger *zap.Logger) *Dispatcher {
	ctx, cancel := context.WithCancel(context.Background())
	return &Dispatcher{
		cfg:         cfg,
		conn:        conn,
		processor:   processor,
		logger:      logger,
		ctx:         ctx,
		cancel:      cancel,
		consumerTag: fmt.Sprintf("notificacao-dispatcher-%d", time.Now().Unix()),
	}
}

// Start sets QoS and begins consuming. Assumes the queue already exists.
func (d *Dispatcher) Start() error {
	if d.cfg.QueueNotificacoes == "" {
		return fmt.Errorf("notification queue is required")
	}

	if err := d.startConsuming(); err != nil {
		return err
	}

	d.started = true
	d.logger.Info("Dispatcher started and consuming messages",
		zap.String("queue", d.cfg.QueueNotificacoes),
		zap.String("consumer_tag", d.consumerTag),
	)
	return nil
}

func (d *Dispatcher) startConsuming() error {
	if err := d.conn.SetQoS(d.cfg.PrefetchCount); err != nil {
		return fmt.Errorf("failed to set QoS: %w", err)
	}

	messages, err := d.conn.ConsumeMessages(d.cfg.QueueNotificacoes, d.consumerTag)
	if err != nil {
		return fmt.Errorf("failed to start consuming from queue %s: %w", d.cfg.QueueNotificacoes, err)
	}

	go d.processMessages(messages)

	return nil
}

// Stop gracefully stops the dispatcher.
func (d *Dispatcher) Stop() error {
	d.logger.Info("Stopping dispatcher",
		zap.String("consumer_tag", d.consumerTag),
	)
	d.cancel()

	ch := d.conn.GetChannel()
	if ch != nil {
		if err := ch.Cancel(d.consumerTag, false); err != nil {
			d.logger.Error("Failed to cancel consumer",
				zap.String("consumer_tag", d.consumerTag),
				zap.Error(err),
			)
		}
	}

	d.logger.Info("Dispatcher stopped")
	return nil
}

// processMessages drains the delivery channel, restarting the consumer
// when the channel closes after a reconnect.
func (d *Dispatcher) processMessages(messages <-chan amqp.Delivery) {
	for {
		select {
		case <-d.ctx.Done():
			d.logger.Info("Dispatcher context cancelled, stopping message processing")
			return
		case msg, ok := <-messages:
			if !ok {
				d.logger.Warn("Message channel closed, attempting to restart consumer...",
					zap.String("queue", d.cfg.QueueNotificacoes),
				)
				for d.started {
					select {
					case <-d.ctx.Done():
						return
					default:
					}

					time.Sleep(2 * time.Second)

					if !d.conn.IsHealthy() {
						continue
					}

					if err := d.startConsuming(); err != nil {
						d.logger.Error("Failed to restart consuming after channel close, will retry",
							zap.String("queue", d.cfg.QueueNotificacoes),
							zap.Error(err),
						)
						time.Sleep(5 * time.Second)
						continue
					}

					d.logger.Info("Successfully restarted consumer after channel close",
						zap.String("queue", d.cfg.QueueNotificacoes),
					)
					return
				}
				return
			}
			consumer.ProcessMessage(d.logger, d.cfg.QueueNotificacoes, msg, d)
		}
	}
}

// HandleEvent implements consumer.EventHandler. A malformed body or
// missing discriminator returns an error, which NACKs the message into
// the broker's dead-letter policy; an unrecognized event kind is logged
// and dropped.
func (d *Dispatcher) HandleEvent(body []byte) error {
	var envelope struct {
		Evento string `json:"evento"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		return fmt.Errorf("failed to parse notification message: %w", err)
	}
	if envelope.Evento == "" {
		return fmt.Errorf("notification message has no \"evento\" discriminator")
	}

	eventType, err := models.ParseEventType(envelope.Evento)
	if err != nil {
		d.logger.Warn("Unrecognized notification event type, dropping message",
			zap.String("evento", envelope.Evento),
		)
		return nil
	}

	switch eventType {
	case models.EventConsultaCriada:
		var evento models.ConsultaEvent
		if err := json.Unmarshal(body, &evento); err != nil {
			return fmt.Errorf("failed to parse consulta criada event: %w", err)
		}
		d.processor.ProcessConsultaCriada(d.ctx, evento)

	case models.EventConsultaEditada:
		var evento models.ConsultaEditadaEvent
		if err := json.Unmarshal(body, &evento); err != nil {
			return fmt.Errorf("failed to parse consulta editada event: %w", err)
		}
		d.processor.ProcessConsultaEditada(d.ctx, evento)

	case models.EventConsultaCancelada:
		var evento models.ConsultaEvent
		if err := json.Unmarshal(body, &evento); err != nil {
			return fmt.Errorf("failed to parse consulta cancelada event: %w", err)
		}
		d.processor.ProcessConsultaCancelada(d.ctx, evento)

	case models.EventLembreteConsulta:
		var evento models.ConsultaEvent
		if err := json.Unmarshal(body, &evento); err != nil {
			return fmt.Errorf("failed to parse lembrete event: %w", err)
		}
		d.processor.ProcessLembrete(d.ctx, evento)
	}

	return nil
}
