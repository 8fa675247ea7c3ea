// Package template renders notification titles and bodies from enriched
// consultation data. Rendering is a pure function: identical input
// always produces byte-identical output, with no clock or I/O access.
package template

import (
	"fmt"
	"strings"
	"time"

	"github.com/MedSync-Fiap/notificacao-api/internal/models"
)

const (
	dateLayout = "02/01/2006"
	timeLayout = "15:04"
	isoLayout  = "2006-01-02T15:04:05"
)

// Render produces the notification title, body and kind label for the
// given notification kind and enriched payload.
func Render(kind models.NotificationKind, data models.NotificationData) models.RenderedNotification {
	switch kind {
	case models.KindConsultaCriada:
		return renderConsultaCriada(data)
	case models.KindConsultaEditada:
		return renderConsultaEditada(data)
	case models.KindConsultaCancelada:
		return renderConsultaCancelada(data)
	case models.KindLembrete:
		return renderLembrete(data)
	default:
		return renderGenerica(data)
	}
}

func renderConsultaCriada(data models.NotificationData) models.RenderedNotification {
	date, hour := formatDataHora(data.DataHora)

	var b strings.Builder
	fmt.Fprintf(&b, "Olá, %s!\n\n", data.PacienteNome)
	b.WriteString("Sua consulta foi agendada com sucesso:\n\n")
	fmt.Fprintf(&b, "📅 Data: %s\n", date)
	fmt.Fprintf(&b, "⏰ Horário: %s\n", hour)
	fmt.Fprintf(&b, "👨‍⚕️ Médico: %s\n", data.MedicoNome)
	fmt.Fprintf(&b, "🏥 Especialidade: %s\n", especialidadeOuPadrao(data.MedicoEspecialidade))
	b.WriteString(clinicaBlock(data))
	b.WriteString(observacoesLine(data.Observacoes))
	b.WriteString("\n⚠️ Importante:\n")
	b.WriteString("• Chegue com 15 minutos de antecedência\n")
	b.WriteString("• Traga um documento com foto\n")
	b.WriteString("• Em caso de desistência, cancele com pelo menos 24h de antecedência\n\n")
	b.WriteString("Em caso de dúvidas, entre em contato conosco.\n\n")
	b.WriteString(assinatura(data.ClinicaNome))

	return models.RenderedNotification{
		Titulo:   "✅ Consulta Agendada com Sucesso",
		Mensagem: b.String(),
		Kind:     models.KindConsultaCriada,
	}
}

// renderConsultaEditada enumerates only the fields named in Alteracoes.
// Without an Alteracoes map it falls back to rendering the full new
// snapshot.
func renderConsultaEditada(data models.NotificationData) models.RenderedNotification {
	var campos strings.Builder

	if len(data.Alteracoes) > 0 {
		campos.WriteString("Os seguintes dados foram alterados:\n\n")

		if _, ok := data.Alteracoes["dataHora"]; ok {
			date, hour := formatDataHora(data.DataHora)
			fmt.Fprintf(&campos, "📅 Nova Data: %s\n", date)
			fmt.Fprintf(&campos, "⏰ Novo Horário: %s\n", hour)
		}

		if _, ok := data.Alteracoes["observacoes"]; ok {
			obs := strings.TrimSpace(data.Observacoes)
			if obs == "" {
				obs = "Removidas"
			}
			fmt.Fprintf(&campos, "📝 Observações: %s\n", obs)
		}

		if novoStatus, ok := data.Alteracoes["status"]; ok {
			fmt.Fprintf(&campos, "📊 Status: %s\n", FormatStatus(fmt.Sprintf("%v", novoStatus)))
		}

		if _, ok := data.Alteracoes["especialidadeId"]; ok {
			fmt.Fprintf(&campos, "🏥 Especialidade: %s\n", especialidadeOuPadrao(data.MedicoEspecialidade))
		}
	} else {
		if strings.TrimSpace(data.DataHora) != "" {
			date, hour := formatDataHora(data.DataHora)
			fmt.Fprintf(&campos, "📅 Data: %s\n", date)
			fmt.Fprintf(&campos, "⏰ Horário: %s\n", hour)
		}
		if strings.TrimSpace(data.Observacoes) != "" {
			fmt.Fprintf(&campos, "📝 Observações: %s\n", data.Observacoes)
		}
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Olá, %s!\n\n", data.PacienteNome)
	b.WriteString("Sua consulta foi atualizada:\n\n")
	b.WriteString(campos.String())
	fmt.Fprintf(&b, "👨‍⚕️ Médico: %s\n", data.MedicoNome)
	b.WriteString("\n⚠️ Importante:\n")
	b.WriteString("• Verifique os novos dados da consulta\n")
	b.WriteString("• Chegue com 15 minutos de antecedência\n")
	b.WriteString("• Em caso de dúvidas, entre em contato conosco\n\n")
	b.WriteString(assinatura(data.ClinicaNome))

	return models.RenderedNotification{
		Titulo:   "🔄 Consulta Atualizada",
		Mensagem: b.String(),
		Kind:     models.KindConsultaEditada,
	}
}

func renderConsultaCancelada(data models.NotificationData) models.RenderedNotification {
	date, hour := formatDataHora(data.DataHora)

	var b strings.Builder
	fmt.Fprintf(&b, "Olá, %s!\n\n", data.PacienteNome)
	b.WriteString("Sua consulta foi cancelada:\n\n")
	fmt.Fprintf(&b, "📅 Data: %s\n", date)
	fmt.Fprintf(&b, "⏰ Horário: %s\n", hour)
	fmt.Fprintf(&b, "👨‍⚕️ Médico: %s\n", data.MedicoNome)
	b.WriteString(observacoesLine(data.Observacoes))
	b.WriteString("\nPara reagendar, entre em contato conosco ou acesse o portal de agendamento.\n\n")
	b.WriteString(assinatura(data.ClinicaNome))

	return models.RenderedNotification{
		Titulo:   "❌ Consulta Cancelada",
		Mensagem: b.String(),
		Kind:     models.KindConsultaCancelada,
	}
}

func renderLembrete(data models.NotificationData) models.RenderedNotification {
	date, hour := formatDataHora(data.DataHora)

	var b strings.Builder
	fmt.Fprintf(&b, "Olá, %s!\n\n", data.PacienteNome)
	b.WriteString("Este é um lembrete da sua consulta:\n\n")
	fmt.Fprintf(&b, "📅 Data: %s\n", date)
	fmt.Fprintf(&b, "⏰ Horário: %s\n", hour)
	fmt.Fprintf(&b, "👨‍⚕️ Médico: %s\n", data.MedicoNome)
	fmt.Fprintf(&b, "🏥 Especialidade: %s\n", especialidadeOuPadrao(data.MedicoEspecialidade))
	b.WriteString(clinicaBlock(data))
	b.WriteString(observacoesLine(data.Observacoes))
	b.WriteString("\n⚠️ Importante:\n")
	b.WriteString("• Chegue com 15 minutos de antecedência\n")
	b.WriteString("• Traga um documento com foto\n\n")
	b.WriteString(assinatura(data.ClinicaNome))

	return models.RenderedNotification{
		Titulo:   "🔔 Lembrete de Consulta",
		Mensagem: b.String(),
		Kind:     models.KindLembrete,
	}
}

func renderGenerica(data models.NotificationData) models.RenderedNotification {
	date, hour := formatDataHora(data.DataHora)

	var b strings.Builder
	fmt.Fprintf(&b, "Olá, %s!\n\n", data.PacienteNome)
	b.WriteString("Há uma atualização sobre a sua consulta:\n\n")
	fmt.Fprintf(&b, "📅 Data: %s\n", date)
	fmt.Fprintf(&b, "⏰ Horário: %s\n", hour)
	fmt.Fprintf(&b, "👨‍⚕️ Médico: %s\n", data.MedicoNome)
	if strings.TrimSpace(data.Status) != "" {
		fmt.Fprintf(&b, "📊 Status: %s\n", FormatStatus(data.Status))
	}
	b.WriteString(observacoesLine(data.Observacoes))
	b.WriteString("\nEm caso de dúvidas, entre em contato conosco.\n\n")
	b.WriteString(assinatura(data.ClinicaNome))

	return models.RenderedNotification{
		Titulo:   "📋 Notificação de Consulta",
		Mensagem: b.String(),
		Kind:     models.KindGenerica,
	}
}

// FormatStatus maps a consultation status to its display label.
// Unrecognized statuses render as a generic label plus the raw value.
func FormatStatus(status string) string {
	switch strings.ToUpper(strings.TrimSpace(status)) {
	case "AGENDADA":
		return "🟢 Agendada"
	case "CONFIRMADA":
		return "✅ Confirmada"
	case "CANCELADA":
		return "❌ Cancelada"
	case "REALIZADA":
		return "✅ Realizada"
	case "INATIVA":
		return "⏸️ Inativa"
	default:
		return "📋 " + status
	}
}

// formatDataHora splits an ISO-8601 local timestamp into display date
// (dd/MM/yyyy) and time (HH:mm). An unparseable value is passed through
// as the date so malformed input still renders deterministically.
func formatDataHora(iso string) (string, string) {
	t, err := time.Parse(isoLayout, iso)
	if err != nil {
		return iso, ""
	}
	return t.Format(dateLayout), t.Format(timeLayout)
}

func especialidadeOuPadrao(especialidade string) string {
	if strings.TrimSpace(especialidade) == "" {
		return "Não informada"
	}
	return especialidade
}

func observacoesLine(observacoes string) string {
	if strings.TrimSpace(observacoes) == "" {
		return ""
	}
	return "📝 Observações: " + observacoes + "\n"
}

func clinicaBlock(data models.NotificationData) string {
	var b strings.Builder
	if strings.TrimSpace(data.ClinicaNome) != "" {
		fmt.Fprintf(&b, "🏥 Clínica: %s\n", data.ClinicaNome)
	}
	if strings.TrimSpace(data.ClinicaEndereco) != "" {
		fmt.Fprintf(&b, "📍 Endereço: %s\n", data.ClinicaEndereco)
	}
	if strings.TrimSpace(data.ClinicaTelefone) != "" {
		fmt.Fprintf(&b, "📞 Telefone: %s\n", data.ClinicaTelefone)
	}
	return b.String()
}

func assinatura(clinicaNome string) string {
	if strings.TrimSpace(clinicaNome) == "" {
		clinicaNome = "MedSync"
	}
	return fmt.Sprintf("Atenciosamente,\nEquipe %s\n", clinicaNome)
}
