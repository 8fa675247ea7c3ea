// Package processor orchestrates the notification pipeline for one
// inbound consultation event: directory enrichment, template rendering,
// outbound republish and fire-and-forget email delivery.
package processor

import (
	"context"
	"encoding/json"
	"time"

	"go.uber.org/zap"

	"github.com/MedSync-Fiap/notificacao-api/internal/config"
	"github.com/MedSync-Fiap/notificacao-api/internal/directory"
	"github.com/MedSync-Fiap/notificacao-api/internal/models"
	"github.com/MedSync-Fiap/notificacao-api/internal/template"
)

const timestampLayout = "2006-01-02T15:04:05"

// Publisher publishes a message body to an exchange at a routing key.
// *rabbitmq.Connection satisfies it.
type Publisher interface {
	PublishMessage(exchange, routingKey string, body []byte) error
}

// DirectoryClient resolves person records for enrichment.
type DirectoryClient interface {
	FindPerson(ctx context.Context, id string) (*directory.Person, bool)
}

// Deliverer schedules an email delivery without blocking the caller.
type Deliverer interface {
	Dispatch(to, subject, body, eventLabel, consultaID string)
}

// Processor runs the notification pipeline. Every Process* operation is
// a failure boundary: errors at any step are logged with the
// consultation id and swallowed, so the inbound consumer always acks.
type Processor struct {
	outbound  config.OutboundConfig
	clinica   config.ClinicaConfig
	publisher Publisher
	directory DirectoryClient
	deliverer Deliverer
	logger    *zap.Logger
}

func New(
	outbound config.OutboundConfig,
	clinica config.ClinicaConfig,
	publisher Publisher,
	directoryClient DirectoryClient,
	deliverer Deliverer,
	logger *zap.Logger,
) *Processor {
	return &Processor{
		outbound:  outbound,
		clinica:   clinica,
		publisher: publisher,
		directory: directoryClient,
		deliverer: deliverer,
		logger:    logger,
	}
}

// ProcessConsultaCriada handles a consultation-created event.
func (p *Processor) ProcessConsultaCriada(ctx context.Context, evento models.ConsultaEvent) {
	p.process(ctx, models.KindConsultaCriada, evento.PacienteID, evento.MedicoID, dataFromConsultaEvent(evento))
}

// ProcessConsultaCancelada handles a consultation-cancelled event.
func (p *Processor) ProcessConsultaCancelada(ctx context.Context, evento models.ConsultaEvent) {
	p.process(ctx, models.KindConsultaCancelada, evento.PacienteID, evento.MedicoID, dataFromConsultaEvent(evento))
}

// ProcessLembrete handles an appointment-reminder event.
func (p *Processor) ProcessLembrete(ctx context.Context, evento models.ConsultaEvent) {
	p.process(ctx, models.KindLembrete, evento.PacienteID, evento.MedicoID, dataFromConsultaEvent(evento))
}

// ProcessConsultaEditada handles a consultation-edited event.
func (p *Processor) ProcessConsultaEditada(ctx context.Context, evento models.ConsultaEditadaEvent) {
	data := models.NotificationData{
		ConsultaID:          evento.ConsultaID,
		PacienteNome:        evento.PacienteNome,
		PacienteEmail:       evento.PacienteEmail,
		PacienteTelefone:    evento.PacienteTelefone,
		MedicoNome:          evento.MedicoNome,
		MedicoEmail:         evento.MedicoEmail,
		MedicoTelefone:      evento.MedicoTelefone,
		MedicoEspecialidade: evento.MedicoEspecialidade,
		DataHora:            evento.NovaDataHora,
		Status:              evento.Status,
		Observacoes:         evento.Observacoes,
		Alteracoes:          evento.Alteracoes,
	}
	p.process(ctx, models.KindConsultaEditada, evento.PacienteID, evento.MedicoID, data)
}

func dataFromConsultaEvent(evento models.ConsultaEvent) models.NotificationData {
	return models.NotificationData{
		ConsultaID:          evento.ConsultaID,
		PacienteNome:        evento.PacienteNome,
		MedicoNome:          evento.MedicoNome,
		MedicoEspecialidade: evento.MedicoEspecialidade,
		DataHora:            evento.DataHora,
		Status:              evento.Status,
		Observacoes:         evento.Observacoes,
	}
}

// process runs enrichment, rendering, outbound publish and email
// dispatch. Publish happens before the delivery goroutine is scheduled;
// a publish failure skips the email step.
func (p *Processor) process(ctx context.Context, kind models.NotificationKind, pacienteID, medicoID string, data models.NotificationData) {
	p.logger.Info("Processing notification",
		zap.String("tipo", string(kind)),
		zap.String("consulta_id", data.ConsultaID),
	)

	p.enrich(ctx, pacienteID, medicoID, &data)

	rendered := template.Render(kind, data)

	notificacao := models.OutboundNotification{
		ConsultaID:      data.ConsultaID,
		PacienteNome:    data.PacienteNome,
		MedicoNome:      data.MedicoNome,
		DataHora:        data.DataHora,
		TipoNotificacao: rendered.Kind,
		Titulo:          rendered.Titulo,
		Mensagem:        rendered.Mensagem,
		Timestamp:       time.Now().Format(timestampLayout),
	}

	body, err := json.Marshal(notificacao)
	if err != nil {
		p.logger.Error("Failed to marshal outbound notification",
			zap.String("consulta_id", data.ConsultaID),
			zap.Error(err),
		)
		return
	}

	routingKey := p.outbound.RoutingKeyPrefix + data.ConsultaID
	if err := p.publisher.PublishMessage(p.outbound.ExchangeConsultas, routingKey, body); err != nil {
		p.logger.Error("Failed to publish outbound notification",
			zap.String("consulta_id", data.ConsultaID),
			zap.String("routing_key", routingKey),
			zap.Error(err),
		)
		// Email is only attempted when the republish succeeded.
		return
	}

	p.deliverer.Dispatch(data.PacienteEmail, rendered.Titulo, rendered.Mensagem, string(kind), data.ConsultaID)

	p.logger.Info("Notification processed",
		zap.String("tipo", string(kind)),
		zap.String("consulta_id", data.ConsultaID),
		zap.String("routing_key", routingKey),
	)
}

// enrich fills missing display fields from the cadastro service. Failed
// or skipped lookups degrade to placeholder names and empty contact
// fields; enrichment always terminates with a usable payload.
func (p *Processor) enrich(ctx context.Context, pacienteID, medicoID string, data *models.NotificationData) {
	if needsLookup(data.PacienteNome, data.PacienteEmail) && pacienteID != "" {
		if person, ok := p.directory.FindPerson(ctx, pacienteID); ok {
			if data.PacienteNome == "" {
				data.PacienteNome = person.Nome
			}
			if data.PacienteEmail == "" {
				data.PacienteEmail = person.Email
			}
			if data.PacienteTelefone == "" {
				data.PacienteTelefone = person.PrimaryPhone()
			}
		}
	}

	if needsLookup(data.MedicoNome, data.MedicoEmail) && medicoID != "" {
		if person, ok := p.directory.FindPerson(ctx, medicoID); ok {
			if data.MedicoNome == "" {
				data.MedicoNome = person.Nome
			}
			if data.MedicoEmail == "" {
				data.MedicoEmail = person.Email
			}
			if data.MedicoTelefone == "" {
				data.MedicoTelefone = person.PrimaryPhone()
			}
		}
	}

	if data.PacienteNome == "" {
		data.PacienteNome = models.PlaceholderPaciente
	}
	if data.MedicoNome == "" {
		data.MedicoNome = models.PlaceholderMedico
	}

	data.ClinicaNome = p.clinica.Nome
	data.ClinicaEndereco = p.clinica.Endereco
	data.ClinicaTelefone = p.clinica.Telefone
}

func needsLookup(nome, email string) bool {
	return nome == "" || email == ""
}
