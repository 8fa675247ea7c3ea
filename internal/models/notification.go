package models

// NotificationKind labels the rendered notification variant carried on
// the outbound message and in the email subject line.
type NotificationKind string

const (
	KindConsultaCriada    NotificationKind = "CONSULTA_CRIADA"
	KindConsultaEditada   NotificationKind = "CONSULTA_EDITADA"
	KindConsultaCancelada NotificationKind = "CONSULTA_CANCELADA"
	KindLembrete          NotificationKind = "LEMBRETE"
	KindGenerica          NotificationKind = "GENERICA"
)

// Placeholder display values used when directory enrichment cannot
// resolve a person.
const (
	PlaceholderPaciente = "Paciente"
	PlaceholderMedico   = "Médico"
)

// NotificationData is the enriched, fully-resolved payload handed to the
// template engine. It is built fresh per inbound message and never
// shared across messages.
type NotificationData struct {
	ConsultaID string

	PacienteNome     string
	PacienteEmail    string
	PacienteTelefone string

	MedicoNome          string
	MedicoEmail         string
	MedicoTelefone      string
	MedicoEspecialidade string

	// DataHora is the scheduled date-time in ISO-8601 local form,
	// e.g. "2025-09-28T14:30:00".
	DataHora    string
	Status      string
	Observacoes string

	// Alteracoes is only set for edit events. Keys name the changed
	// fields (dataHora, observacoes, status, especialidadeId).
	Alteracoes map[string]any

	ClinicaNome     string
	ClinicaEndereco string
	ClinicaTelefone string
}

// RenderedNotification is the template engine output: immutable,
// derived solely from NotificationData.
type RenderedNotification struct {
	Titulo   string
	Mensagem string
	Kind     NotificationKind
}

// OutboundNotification is the message republished to the consultas
// exchange at routing key "notificacao.cliente.<consultaId>".
type OutboundNotification struct {
	ConsultaID      string           `json:"consulta_id"`
	PacienteNome    string           `json:"paciente_nome"`
	MedicoNome      string           `json:"medico_nome"`
	DataHora        string           `json:"data_hora"`
	TipoNotificacao NotificationKind `json:"tipo_notificacao"`
	Titulo          string           `json:"titulo"`
	Mensagem        string           `json:"mensagem"`
	Timestamp       string           `json:"timestamp"`
}
