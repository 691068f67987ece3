package activity

import (
	"reflect"
	"testing"

	"github.com/LuisEduardoPedra/painelAtividades/internal/domain"
)

func TestTechnicianDisplayName(t *testing.T) {
	casos := map[string]string{
		"João da Silva Santos": "João Santos",
		"Maria":                "Maria",
		"  Pedro   Alves  ":    "Pedro Alves",
		"":                     NaoInformado,
		"   ":                  NaoInformado,
	}
	for entrada, want := range casos {
		if got := TechnicianDisplayName(entrada); got != want {
			t.Errorf("TechnicianDisplayName(%q) = %q, esperado %q", entrada, got, want)
		}
	}
}

func TestCalculateTechnicianProductivity(t *testing.T) {
	records := []domain.Record{
		{"Recurso": "João Silva", "Cód de Baixa 1": "410"},
		{"Recurso": "João Pedro Silva", "Cód de Baixa 1": "205"},
		{"Recurso": "Maria Souza", "Cód de Baixa 1": "500"},
		{"Recurso": "Carlos Lima", "Cód de Baixa 1": ""},
		{"Recurso": "", "Cód de Baixa 1": "410"},
	}

	got := CalculateTechnicianProductivity(records)
	want := []domain.TechnicianProductivity{
		{Name: "Maria Souza", Count: 1, ProductiveCount: 1, Productivity: 100},
		{Name: "João Silva", Count: 2, ProductiveCount: 1, Productivity: 50},
		{Name: "Carlos Lima", Count: 1, ProductiveCount: 0, Productivity: 0},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("esperado %+v, obtido %+v", want, got)
	}
}

func TestPercentSemDivisaoPorZero(t *testing.T) {
	if got := Percent(0, 0); got != 0 {
		t.Errorf("Percent(0, 0) = %v, esperado 0", got)
	}
	if got := Percent(1, 4); got != 25 {
		t.Errorf("Percent(1, 4) = %v, esperado 25", got)
	}
}

func TestTopBottom(t *testing.T) {
	var ranked []domain.TechnicianProductivity
	for _, n := range []string{"A", "B", "C", "D", "E", "F", "G"} {
		ranked = append(ranked, domain.TechnicianProductivity{Name: n})
	}
	top, bottom := TopBottom(ranked, 5)

	var topNames, bottomNames []string
	for _, r := range top {
		topNames = append(topNames, r.Name)
	}
	for _, r := range bottom {
		bottomNames = append(bottomNames, r.Name)
	}
	if !reflect.DeepEqual(topNames, []string{"A", "B", "C", "D", "E"}) {
		t.Errorf("top inesperado: %v", topNames)
	}
	if !reflect.DeepEqual(bottomNames, []string{"G", "F", "E", "D", "C"}) {
		t.Errorf("bottom inesperado: %v", bottomNames)
	}
}

func TestNeighborhoodCountsAlias(t *testing.T) {
	records := []domain.Record{
		{"Bairro": "NV PARNAMIRIM"},
		{"Bairro": "Nova Parnamirim"},
		{"bairro": "nova  parnamirim"},
		{"Bairro": "Lagoa Nova"},
		{"Bairro": ""},
		{"Recurso": "sem bairro"},
	}
	got := NeighborhoodCounts(records, 0)
	want := []domain.NamedCount{
		{Name: "NOVA PARNAMIRIM", Count: 3},
		{Name: "LAGOA NOVA", Count: 1},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("esperado %+v, obtido %+v", want, got)
	}
}

func TestTimeSlotCounts(t *testing.T) {
	records := []domain.Record{
		{"Intervalo de Tempo": "08/01/2025 14:20 - 08/01/2025 15:10"},
		{"Intervalo de Tempo": "08/01/2025 08:00 - 08/01/2025 09:00"},
		{"Intervalo de Tempo": "08/01/2025 08:30 - 08/01/2025 09:30"},
		{"Intervalo de Tempo": "08/01/2025 07:30 - 08/01/2025 07:50"},
		{"Recurso": "sem intervalo"},
	}
	got := TimeSlotCounts(records)
	want := []domain.NamedCount{
		{Name: "08:00 - 10:00", Count: 2},
		{Name: "14:00 - 16:00", Count: 1},
		{Name: NaoInformado, Count: 2},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("esperado %+v, obtido %+v", want, got)
	}
}

func TestDispositionCodeCounts(t *testing.T) {
	records := []domain.Record{
		{"Cód de Baixa 1": "410"},
		{"Cód de Baixa 1": "205"},
		{"Cód de Baixa 1": "410"},
		{"Cód de Baixa 1": ""},
	}
	got := DispositionCodeCounts(records, 0)
	want := []domain.NamedCount{
		{Name: "410", Count: 2},
		{Name: "205", Count: 1},
		{Name: NaoInformado, Count: 1},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("esperado %+v, obtido %+v", want, got)
	}
}

func TestTypeDistributionIgnorados(t *testing.T) {
	records := []domain.Record{
		{"Tipo de Atividade": "Instalação", "Cód de Baixa 1": "410"},
		{"Tipo de Atividade": "Instalação", "Cód de Baixa 1": "205"},
		{"Tipo de Atividade": "Reparo", "Cód de Baixa 1": "410"},
		{"Tipo de Atividade": "Intervalo almoço"},
		{"Tipo de Atividade": "NA BASE"},
		{"Tipo de Atividade": "Refeição"},
		{"Cód de Baixa 1": "410"},
	}

	dist := TypeDistribution(records)
	want := []domain.TypeCount{
		{Type: "Instalação", Total: 2, Productive: 1, Productivity: 50},
		{Type: "Reparo", Total: 1, Productive: 1, Productivity: 100},
	}
	if !reflect.DeepEqual(dist, want) {
		t.Fatalf("esperado %+v, obtido %+v", want, dist)
	}

	overall := OverallProductivity(dist)
	if overall.Total != 3 || overall.Productive != 2 {
		t.Errorf("total geral inesperado: %+v", overall)
	}

	// a lista de resumo não aplica os ignorados
	if counts := CalculateActivityCounts(records); counts[NaoInformado].Total != 1 || counts["NA BASE"].Total != 1 {
		t.Errorf("contagem por tipo não deveria ignorar nada: %+v", counts)
	}
}

func TestAvgTimeByType(t *testing.T) {
	records := []domain.Record{
		{"Tipo de Atividade": "Reparo", "Duração": "01:00"},
		{"Tipo de Atividade": "Instalação", "Duração": "00:40"},
		{"Tipo de Atividade": "Reparo", "Duração": "02:00"},
	}
	got := AvgTimeByType(records, 0)
	want := []domain.TypeDuration{
		{Type: "Reparo", AvgTime: "01:30"},
		{Type: "Instalação", AvgTime: "00:40"},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("esperado %+v, obtido %+v", want, got)
	}
}

func TestCalculateKPIs(t *testing.T) {
	records := []domain.Record{
		{"Recurso": "Ana", "Tipo de Atividade": "Reparo", "Cód de Baixa 1": "410", "Duração": "01:00"},
		{"Recurso": "Ana", "Tipo de Atividade": "Reparo", "Cód de Baixa 1": "205", "Duração": ""},
		{"Recurso": "Bia", "Tipo de Atividade": "Reparo", "Cód de Baixa 1": "", "Duração": "00:30"},
		{"Recurso": "Caio", "Tipo de Atividade": "Reuniao", "Cód de Baixa 1": "410", "Duração": "05:00"},
	}

	k := CalculateKPIs(records)
	want := domain.KPIs{
		Total:             3,
		Productive:        1,
		Unproductive:      1,
		Technicians:       2,
		AvgDuration:       "00:45",
		TotalMinutes:      90,
		ItemsWithDuration: 2,
	}
	if k != want {
		t.Errorf("esperado %+v, obtido %+v", want, k)
	}

	vazio := CalculateKPIs(nil)
	if vazio.AvgDuration != "00:00" || vazio.Total != 0 {
		t.Errorf("KPIs vazios inesperados: %+v", vazio)
	}
}
