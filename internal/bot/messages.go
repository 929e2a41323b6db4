package bot

import (
	"fmt"
	"strings"
	"time"

	"github.com/censo/censobot/internal/domain/patient"
	"github.com/censo/censobot/internal/domain/search"
)

// Fixed Portuguese reply templates. The bot speaks the language of its
// command surface; there is no localization layer.
const (
	msgHelp = "Comandos disponíveis:\n" +
		"/buscar [reg:<registro>] [leito:<leito>] [enf:<enfermaria>] <nome do paciente>\n" +
		"Responda com o número do resultado para ver os dados do paciente."

	msgNoResults = "Nenhum paciente encontrado. Refine a busca e tente novamente."

	msgNoPending = "Não há busca pendente. Use /buscar para iniciar uma nova busca."

	msgSearchDenied = "Você não tem permissão para buscar pacientes."

	msgDetailDenied = "Acesso negado: você não tem mais permissão para ver os dados deste paciente."

	msgUnavailable = "Sistema temporariamente indisponível. Tente novamente em alguns minutos."

	msgRedirect = "Este canal não está habilitado para consultas. " +
		"Procure o suporte para vincular sua conta e receber uma sala de atendimento."
)

func msgInvalidSelection(max int) string {
	return fmt.Sprintf("Seleção inválida. Responda com um número entre 1 e %d.", max)
}

// renderResults numbers the permitted candidates for the user to pick from.
func renderResults(candidates []search.Candidate) string {
	var b strings.Builder
	b.WriteString("Pacientes encontrados:\n")
	for _, c := range candidates {
		a := c.Admission
		fmt.Fprintf(&b, "%d. %s — %s, leito %s (reg. %s)\n",
			c.DisplayRank, a.PatientName, a.WardAbbrev, a.Bed, a.RecordNumber)
	}
	b.WriteString("Responda com o número para ver os dados do paciente.")
	return b.String()
}

// renderDetail is the demographic card shown after a valid selection.
func renderDetail(a patient.Admission, now time.Time) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Paciente: %s\n", a.PatientName)
	fmt.Fprintf(&b, "Registro: %s\n", a.RecordNumber)
	if age := a.Age(now); age >= 0 {
		fmt.Fprintf(&b, "Idade: %d anos\n", age)
	}
	if a.MotherName != nil && *a.MotherName != "" {
		fmt.Fprintf(&b, "Mãe: %s\n", *a.MotherName)
	}
	fmt.Fprintf(&b, "Enfermaria: %s (%s)\n", a.Ward, a.WardAbbrev)
	fmt.Fprintf(&b, "Leito: %s\n", a.Bed)
	fmt.Fprintf(&b, "Internação: %s", a.AdmittedAt.Format("02/01/2006"))
	if a.Diagnosis != nil && *a.Diagnosis != "" {
		fmt.Fprintf(&b, "\nHipótese diagnóstica: %s", *a.Diagnosis)
	}
	return b.String()
}
