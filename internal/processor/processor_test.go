package processor

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/MedSync-Fiap/notificacao-api/internal/config"
	"github.com/MedSync-Fiap/notificacao-api/internal/directory"
	"github.com/MedSync-Fiap/notificacao-api/internal/models"
)

type publishedMessage struct {
	Exchange   string
	RoutingKey string
	Body       []byte
}

type fakePublisher struct {
	published []publishedMessage
	err       error
}

func (f *fakePublisher) PublishMessage(exchange, routingKey string, body []byte) error {
	if f.err != nil {
		return f.err
	}
	f.published = append(f.published, publishedMessage{exchange, routingKey, body})
	return nil
}

type fakeDirectory struct {
	people  map[string]*directory.Person
	lookups []string
}

func (f *fakeDirectory) FindPerson(_ context.Context, id string) (*directory.Person, bool) {
	f.lookups = append(f.lookups, id)
	person, ok := f.people[id]
	return person, ok
}

type dispatchedEmail struct {
	To         string
	Subject    string
	Body       string
	EventLabel string
	ConsultaID string
}

type fakeDeliverer struct {
	dispatched []dispatchedEmail
}

func (f *fakeDeliverer) Dispatch(to, subject, body, eventLabel, consultaID string) {
	f.dispatched = append(f.dispatched, dispatchedEmail{to, subject, body, eventLabel, consultaID})
}

func newTestProcessor(publisher *fakePublisher, dir *fakeDirectory, deliverer *fakeDeliverer) *Processor {
	return New(
		config.OutboundConfig{
			ExchangeConsultas: "consultas.exchange",
			RoutingKeyPrefix:  "notificacao.cliente.",
		},
		config.ClinicaConfig{Nome: "MedSync"},
		publisher,
		dir,
		deliverer,
		zap.NewNop(),
	)
}

func TestProcessConsultaCriadaEndToEnd(t *testing.T) {
	publisher := &fakePublisher{}
	dir := &fakeDirectory{}
	deliverer := &fakeDeliverer{}
	p := newTestProcessor(publisher, dir, deliverer)

	p.ProcessConsultaCriada(context.Background(), models.ConsultaEvent{
		Evento:       string(models.EventConsultaCriada),
		ConsultaID:   "c1",
		PacienteNome: "Ana",
		MedicoNome:   "Dr. Bruno",
		DataHora:     "2025-10-01T09:00:00",
	})

	require.Len(t, publisher.published, 1)
	msg := publisher.published[0]
	assert.Equal(t, "consultas.exchange", msg.Exchange)
	assert.Equal(t, "notificacao.cliente.c1", msg.RoutingKey)

	var notificacao models.OutboundNotification
	require.NoError(t, json.Unmarshal(msg.Body, &notificacao))
	assert.Equal(t, "c1", notificacao.ConsultaID)
	assert.Equal(t, models.KindConsultaCriada, notificacao.TipoNotificacao)
	assert.Contains(t, notificacao.Titulo, "Agendada")
	assert.Contains(t, notificacao.Mensagem, "Ana")
	assert.Contains(t, notificacao.Mensagem, "Dr. Bruno")
	assert.Contains(t, notificacao.Mensagem, "01/10/2025")
	assert.Contains(t, notificacao.Mensagem, "09:00")
	assert.NotEmpty(t, notificacao.Timestamp)

	require.Len(t, deliverer.dispatched, 1)
	assert.Equal(t, "c1", deliverer.dispatched[0].ConsultaID)
	assert.Equal(t, notificacao.Titulo, deliverer.dispatched[0].Subject)
}

func TestEnrichmentDegradesToPlaceholders(t *testing.T) {
	publisher := &fakePublisher{}
	dir := &fakeDirectory{} // every lookup is absent
	deliverer := &fakeDeliverer{}
	p := newTestProcessor(publisher, dir, deliverer)

	p.ProcessConsultaCriada(context.Background(), models.ConsultaEvent{
		Evento:     string(models.EventConsultaCriada),
		ConsultaID: "c2",
		PacienteID: "p-404",
		MedicoID:   "m-404",
		DataHora:   "2025-10-01T09:00:00",
	})

	assert.ElementsMatch(t, []string{"p-404", "m-404"}, dir.lookups)

	require.Len(t, publisher.published, 1)
	var notificacao models.OutboundNotification
	require.NoError(t, json.Unmarshal(publisher.published[0].Body, &notificacao))
	assert.Equal(t, models.PlaceholderPaciente, notificacao.PacienteNome)
	assert.Equal(t, models.PlaceholderMedico, notificacao.MedicoNome)

	// The email step still runs; with no resolved contact it dispatches
	// an empty recipient, which the delivery engine treats as a no-op.
	require.Len(t, deliverer.dispatched, 1)
	assert.Empty(t, deliverer.dispatched[0].To)
}

func TestEnrichmentResolvesContactsFromDirectory(t *testing.T) {
	publisher := &fakePublisher{}
	dir := &fakeDirectory{people: map[string]*directory.Person{
		"p-1": {
			ID:    "p-1",
			Nome:  "Ana Souza",
			Email: "ana@example.com",
			Telefones: []directory.Telefone{
				{Numero: "(11) 99999-0001", Tipo: "celular"},
				{Numero: "(11) 3000-0001", Tipo: "fixo"},
			},
		},
		"m-1": {ID: "m-1", Nome: "Dr. Bruno Lima", Email: "bruno@medsync.com"},
	}}
	deliverer := &fakeDeliverer{}
	p := newTestProcessor(publisher, dir, deliverer)

	p.ProcessConsultaCriada(context.Background(), models.ConsultaEvent{
		Evento:     string(models.EventConsultaCriada),
		ConsultaID: "c3",
		PacienteID: "p-1",
		MedicoID:   "m-1",
		DataHora:   "2025-10-01T09:00:00",
	})

	require.Len(t, publisher.published, 1)
	var notificacao models.OutboundNotification
	require.NoError(t, json.Unmarshal(publisher.published[0].Body, &notificacao))
	assert.Equal(t, "Ana Souza", notificacao.PacienteNome)
	assert.Equal(t, "Dr. Bruno Lima", notificacao.MedicoNome)

	require.Len(t, deliverer.dispatched, 1)
	assert.Equal(t, "ana@example.com", deliverer.dispatched[0].To)
}

func TestEnrichmentSkipsLookupWhenEventCarriesContacts(t *testing.T) {
	publisher := &fakePublisher{}
	dir := &fakeDirectory{}
	deliverer := &fakeDeliverer{}
	p := newTestProcessor(publisher, dir, deliverer)

	p.ProcessConsultaEditada(context.Background(), models.ConsultaEditadaEvent{
		Evento:        string(models.EventConsultaEditada),
		ConsultaID:    "c4",
		PacienteID:    "p-1",
		MedicoID:      "m-1",
		PacienteNome:  "Ana",
		PacienteEmail: "ana@example.com",
		MedicoNome:    "Dr. Bruno",
		MedicoEmail:   "bruno@medsync.com",
		NovaDataHora:  "2025-10-02T10:00:00",
	})

	assert.Empty(t, dir.lookups, "pre-enriched events must not hit the cadastro service")
	require.Len(t, deliverer.dispatched, 1)
	assert.Equal(t, "ana@example.com", deliverer.dispatched[0].To)
}

func TestPublishFailureSkipsEmail(t *testing.T) {
	publisher := &fakePublisher{err: errors.New("channel closed")}
	dir := &fakeDirectory{}
	deliverer := &fakeDeliverer{}
	p := newTestProcessor(publisher, dir, deliverer)

	// Must not panic: the processor is a failure boundary.
	p.ProcessConsultaCriada(context.Background(), models.ConsultaEvent{
		Evento:       string(models.EventConsultaCriada),
		ConsultaID:   "c5",
		PacienteNome: "Ana",
		MedicoNome:   "Dr. Bruno",
		DataHora:     "2025-10-01T09:00:00",
	})

	assert.Empty(t, deliverer.dispatched, "email must only be attempted after a successful publish")
}

func TestProcessConsultaEditadaSelectiveDiff(t *testing.T) {
	publisher := &fakePublisher{}
	dir := &fakeDirectory{}
	deliverer := &fakeDeliverer{}
	p := newTestProcessor(publisher, dir, deliverer)

	p.ProcessConsultaEditada(context.Background(), models.ConsultaEditadaEvent{
		Evento:       string(models.EventConsultaEditada),
		ConsultaID:   "c6",
		PacienteNome: "Ana",
		MedicoNome:   "Dr. Bruno",
		NovaDataHora: "2025-10-02T10:00:00",
		Alteracoes:   map[string]any{"status": "CONFIRMADA"},
	})

	require.Len(t, publisher.published, 1)
	var notificacao models.OutboundNotification
	require.NoError(t, json.Unmarshal(publisher.published[0].Body, &notificacao))
	assert.Equal(t, models.KindConsultaEditada, notificacao.TipoNotificacao)
	assert.Contains(t, notificacao.Mensagem, "Confirmada")
	assert.NotContains(t, notificacao.Mensagem, "Nova Data")
}

func TestProcessConsultaCanceladaAndLembrete(t *testing.T) {
	publisher := &fakePublisher{}
	dir := &fakeDirectory{}
	deliverer := &fakeDeliverer{}
	p := newTestProcessor(publisher, dir, deliverer)

	event := models.ConsultaEvent{
		ConsultaID:   "c7",
		PacienteNome: "Ana",
		MedicoNome:   "Dr. Bruno",
		DataHora:     "2025-10-01T09:00:00",
	}

	p.ProcessConsultaCancelada(context.Background(), event)
	p.ProcessLembrete(context.Background(), event)

	require.Len(t, publisher.published, 2)

	var cancelada, lembrete models.OutboundNotification
	require.NoError(t, json.Unmarshal(publisher.published[0].Body, &cancelada))
	require.NoError(t, json.Unmarshal(publisher.published[1].Body, &lembrete))
	assert.Equal(t, models.KindConsultaCancelada, cancelada.TipoNotificacao)
	assert.Equal(t, models.KindLembrete, lembrete.TipoNotificacao)
}
