package models

import (
	"fmt"
	"strings"
)

// EventType is the value of the "evento" discriminator field carried by
// every message on the notification queue.
type EventType string

const (
	EventConsultaCriada    EventType = "consulta_criada_notificacao"
	EventConsultaEditada   EventType = "consulta_editada_notificacao"
	EventConsultaCancelada EventType = "consulta_cancelada_notificacao"
	EventLembreteConsulta  EventType = "lembrete_consulta_notificacao"
)

// ParseEventType parses a discriminator string into an EventType.
// Returns an error if the event type is unknown.
func ParseEventType(name string) (EventType, error) {
	name = strings.ToLower(strings.TrimSpace(name))

	validTypes := []EventType{
		EventConsultaCriada,
		EventConsultaEditada,
		EventConsultaCancelada,
		EventLembreteConsulta,
	}

	for _, eventType := range validTypes {
		if string(eventType) == name {
			return eventType, nil
		}
	}

	return "", fmt.Errorf("unknown notification event type: %s", name)
}

// ConsultaEvent is the wire shape shared by created, cancelled and
// reminder events. The scheduling service may send either resolved
// display names or bare identifiers; missing display data is filled in
// from the cadastro service during enrichment.
type ConsultaEvent struct {
	Evento              string `json:"evento"`
	ConsultaID          string `json:"consulta_id"`
	PacienteID          string `json:"paciente_id,omitempty"`
	MedicoID            string `json:"medico_id,omitempty"`
	PacienteNome        string `json:"paciente_nome,omitempty"`
	MedicoNome          string `json:"medico_nome,omitempty"`
	MedicoEspecialidade string `json:"medico_especialidade,omitempty"`
	DataHora            string `json:"data_hora"`
	Status              string `json:"status,omitempty"`
	Observacoes         string `json:"observacoes,omitempty"`
	Timestamp           string `json:"timestamp,omitempty"`
}

// ConsultaEditadaEvent is the wire shape for edit events. Alteracoes maps
// changed field names to their new values; when present, only those
// fields are rendered in the notification body.
type ConsultaEditadaEvent struct {
	Evento              string         `json:"evento"`
	ConsultaID          string         `json:"consulta_id"`
	PacienteID          string         `json:"paciente_id,omitempty"`
	MedicoID            string         `json:"medico_id,omitempty"`
	PacienteNome        string         `json:"paciente_nome,omitempty"`
	PacienteEmail       string         `json:"paciente_email,omitempty"`
	PacienteTelefone    string         `json:"paciente_telefone,omitempty"`
	MedicoNome          string         `json:"medico_nome,omitempty"`
	MedicoEmail         string         `json:"medico_email,omitempty"`
	MedicoTelefone      string         `json:"medico_telefone,omitempty"`
	MedicoEspecialidade string         `json:"medico_especialidade,omitempty"`
	NovaDataHora        string         `json:"nova_data_hora"`
	Observacoes         string         `json:"observacoes,omitempty"`
	Status              string         `json:"status,omitempty"`
	Alteracoes          map[string]any `json:"alteracoes,omitempty"`
	EditadoPorID        string         `json:"editado_por_id,omitempty"`
	Timestamp           string         `json:"timestamp,omitempty"`
}
