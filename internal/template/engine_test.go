package template

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MedSync-Fiap/notificacao-api/internal/models"
)

func baseData() models.NotificationData {
	return models.NotificationData{
		ConsultaID:          "c1",
		PacienteNome:        "Ana",
		MedicoNome:          "Dr. Bruno",
		MedicoEspecialidade: "Cardiologia",
		DataHora:            "2025-10-01T09:00:00",
		ClinicaNome:         "MedSync",
	}
}

func TestRenderConsultaCriada(t *testing.T) {
	rendered := Render(models.KindConsultaCriada, baseData())

	assert.Contains(t, rendered.Titulo, "Agendada")
	assert.Equal(t, models.KindConsultaCriada, rendered.Kind)
	assert.Contains(t, rendered.Mensagem, "Ana")
	assert.Contains(t, rendered.Mensagem, "Dr. Bruno")
	assert.Contains(t, rendered.Mensagem, "01/10/2025")
	assert.Contains(t, rendered.Mensagem, "09:00")
	assert.Contains(t, rendered.Mensagem, "Cardiologia")
	assert.NotContains(t, rendered.Mensagem, "Observações")
}

func TestRenderConsultaCriadaWithObservacoes(t *testing.T) {
	data := baseData()
	data.Observacoes = "Trazer exames anteriores"

	rendered := Render(models.KindConsultaCriada, data)

	assert.Contains(t, rendered.Mensagem, "Observações: Trazer exames anteriores")
}

func TestRenderIsDeterministic(t *testing.T) {
	data := baseData()
	data.Observacoes = "Jejum de 8 horas"
	data.Alteracoes = map[string]any{"status": "CONFIRMADA"}

	for _, kind := range []models.NotificationKind{
		models.KindConsultaCriada,
		models.KindConsultaEditada,
		models.KindConsultaCancelada,
		models.KindLembrete,
		models.KindGenerica,
	} {
		first := Render(kind, data)
		second := Render(kind, data)
		require.Equal(t, first, second, "rendering %s twice should be byte-identical", kind)
	}
}

func TestRenderConsultaEditadaSelectiveDiff(t *testing.T) {
	data := baseData()
	data.Alteracoes = map[string]any{"status": "CONFIRMADA"}

	rendered := Render(models.KindConsultaEditada, data)

	assert.Contains(t, rendered.Titulo, "Atualizada")
	assert.Contains(t, rendered.Mensagem, "Confirmada")
	// Only the changed fields are enumerated: the scheduled date-time
	// differs from nothing the recipient was told about.
	assert.NotContains(t, rendered.Mensagem, "Nova Data")
	assert.NotContains(t, rendered.Mensagem, "01/10/2025")
}

func TestRenderConsultaEditadaDataHoraChange(t *testing.T) {
	data := baseData()
	data.Alteracoes = map[string]any{"dataHora": "2025-10-01T09:00:00"}

	rendered := Render(models.KindConsultaEditada, data)

	assert.Contains(t, rendered.Mensagem, "Nova Data: 01/10/2025")
	assert.Contains(t, rendered.Mensagem, "Novo Horário: 09:00")
}

func TestRenderConsultaEditadaObservacoesRemoved(t *testing.T) {
	data := baseData()
	data.Observacoes = ""
	data.Alteracoes = map[string]any{"observacoes": ""}

	rendered := Render(models.KindConsultaEditada, data)

	assert.Contains(t, rendered.Mensagem, "Observações: Removidas")
}

func TestRenderConsultaEditadaFullSnapshotFallback(t *testing.T) {
	data := baseData()
	data.Observacoes = "Retorno pós-operatório"
	data.Alteracoes = nil

	rendered := Render(models.KindConsultaEditada, data)

	assert.Contains(t, rendered.Mensagem, "Data: 01/10/2025")
	assert.Contains(t, rendered.Mensagem, "Horário: 09:00")
	assert.Contains(t, rendered.Mensagem, "Observações: Retorno pós-operatório")
}

func TestRenderConsultaCancelada(t *testing.T) {
	rendered := Render(models.KindConsultaCancelada, baseData())

	assert.Contains(t, rendered.Titulo, "Cancelada")
	assert.Equal(t, models.KindConsultaCancelada, rendered.Kind)
	assert.Contains(t, rendered.Mensagem, "cancelada")
	assert.Contains(t, rendered.Mensagem, "reagendar")
}

func TestRenderLembrete(t *testing.T) {
	rendered := Render(models.KindLembrete, baseData())

	assert.Contains(t, rendered.Titulo, "Lembrete")
	assert.Equal(t, models.KindLembrete, rendered.Kind)
	assert.Contains(t, rendered.Mensagem, "lembrete")
	assert.Contains(t, rendered.Mensagem, "01/10/2025")
}

func TestRenderUnknownKindFallsBackToGenerica(t *testing.T) {
	rendered := Render(models.NotificationKind("ALGO_NOVO"), baseData())

	assert.Equal(t, models.KindGenerica, rendered.Kind)
	assert.Contains(t, rendered.Mensagem, "Ana")
}

func TestFormatStatus(t *testing.T) {
	tests := []struct {
		status string
		want   string
	}{
		{"AGENDADA", "🟢 Agendada"},
		{"agendada", "🟢 Agendada"},
		{"CONFIRMADA", "✅ Confirmada"},
		{"CANCELADA", "❌ Cancelada"},
		{"REALIZADA", "✅ Realizada"},
		{"INATIVA", "⏸️ Inativa"},
		{"EM_ESPERA", "📋 EM_ESPERA"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, FormatStatus(tt.status))
	}
}

func TestFormatDataHoraMalformedInput(t *testing.T) {
	date, hour := formatDataHora("amanhã de manhã")

	assert.Equal(t, "amanhã de manhã", date)
	assert.Empty(t, hour)
}

func TestRenderIncludesClinicaFields(t *testing.T) {
	data := baseData()
	data.ClinicaEndereco = "Av. Paulista, 1000"
	data.ClinicaTelefone = "(11) 3000-0000"

	rendered := Render(models.KindConsultaCriada, data)

	assert.Contains(t, rendered.Mensagem, "Clínica: MedSync")
	assert.Contains(t, rendered.Mensagem, "Endereço: Av. Paulista, 1000")
	assert.Contains(t, rendered.Mensagem, "Telefone: (11) 3000-0000")
	assert.Contains(t, rendered.Mensagem, "Equipe MedSync")
}
