package postgres

import (
	"strings"
	"testing"

	"github.com/LuisEduardoPedra/painelAtividades/internal/domain"
)

func TestToAtividade(t *testing.T) {
	rec := domain.Record{
		"Número da WO":          "WO-1",
		"Contrato":              "C9",
		"Recurso":               "Ana Maria Souza",
		"Tipo de Atividade":     "INSTALACAO",
		"Cód de Baixa 1":        "410 - Concluído",
		"Intervalo de Tempo":    "08/01/2025 07:30 - 08/01/2025 08:30",
		"Duração":               "1899-12-30T01:30:00.000Z",
		"Latitude":              "-5,81",
		"Longitude":             "",
		"cidade":                "Natal",
		"Bairro":                "Tirol",
		"Tempo de Deslocamento": "15",
	}
	a := ToAtividade(rec)

	if a.NumeroOS != "WO-1" || a.Contrato != "C9" || a.Cidade != "Natal" {
		t.Errorf("Campos de texto inesperados: %+v", a)
	}
	if a.DataAtividade != "2025-01-08" {
		t.Errorf("Data deveria vir do intervalo, obteve %q", a.DataAtividade)
	}
	if a.DuracaoMinutos == nil || *a.DuracaoMinutos != 90 {
		t.Errorf("Duração esperada 90, obteve %v", a.DuracaoMinutos)
	}
	if a.TempoDeDeslocamento == nil || *a.TempoDeDeslocamento != 15 {
		t.Errorf("Deslocamento esperado 15, obteve %v", a.TempoDeDeslocamento)
	}
	if a.Latitude == nil || *a.Latitude != -5.81 {
		t.Errorf("Latitude esperada -5.81, obteve %v", a.Latitude)
	}
	if a.Longitude != nil {
		t.Errorf("Longitude vazia deveria ser nula, obteve %v", *a.Longitude)
	}
}

func TestToRecordIdaEVolta(t *testing.T) {
	dur, lat := 45, -5.5
	rec := ToRecord(domain.Atividade{
		NumeroOS:       "WO-2",
		Recurso:        "Bruno",
		DataAtividade:  "2025-02-01",
		CodBaixa1:      "205",
		DuracaoMinutos: &dur,
		Latitude:       &lat,
	})

	if rec["Duração"] != "45" || rec["Latitude"] != "-5.5" || rec["Longitude"] != "" {
		t.Errorf("Conversão inesperada: %v", rec)
	}
	a := ToAtividade(rec)
	if a.NumeroOS != "WO-2" || a.DataAtividade != "2025-02-01" || *a.DuracaoMinutos != 45 {
		t.Errorf("Ida e volta alterou os dados: %+v", a)
	}
}

func TestUpsertQuery(t *testing.T) {
	query, args := upsertQuery([]domain.Atividade{{NumeroOS: "1"}, {NumeroOS: "2"}})

	if len(args) != 2*len(columns) {
		t.Fatalf("Esperava %d argumentos, obteve %d", 2*len(columns), len(args))
	}
	if !strings.Contains(query, "($15,$16,") || !strings.Contains(query, "$28)") {
		t.Errorf("Placeholders inesperados: %s", query)
	}
	if !strings.Contains(query, "ON CONFLICT (numero_os) DO UPDATE SET contrato = EXCLUDED.contrato") {
		t.Errorf("Cláusula de conflito ausente: %s", query)
	}
	if strings.Contains(query, "numero_os = EXCLUDED") {
		t.Error("A chave não deveria ser atualizada")
	}
	if args[1] != nil {
		t.Errorf("Contrato vazio deveria ser NULL, obteve %v", args[1])
	}
}

func TestDedupeByOS(t *testing.T) {
	batch := []domain.Atividade{
		{NumeroOS: "1", Recurso: "antigo"},
		{NumeroOS: ""},
		{NumeroOS: "1", Recurso: "novo"},
		{NumeroOS: ""},
	}
	out := dedupeByOS(batch)
	if len(out) != 3 {
		t.Fatalf("Esperava 3 linhas, obteve %d", len(out))
	}
	for _, a := range out {
		if a.NumeroOS == "1" && a.Recurso != "novo" {
			t.Error("Deveria manter a última ocorrência da WO")
		}
	}
}
