package activity

import (
	"testing"

	"github.com/LuisEduardoPedra/painelAtividades/internal/domain"
)

func TestKeyActivitySummary(t *testing.T) {
	records := []domain.Record{
		{"Tipo de Atividade": "MUDANCA DE PACOTE", "Cód de Baixa 1": "410"},
		{"Tipo de Atividade": "Mudança de pacote - fibra", "Cód de Baixa 1": "205"},
		{"Tipo de Atividade": "INST GPON - INST CABO", "Cód de Baixa 1": "410"},
		{"Tipo de Atividade": "Reparo", "Cód de Baixa 1": "410"},
		{"Tipo de Atividade": "Reparo", "Cód de Baixa 1": "450"},
		{"Tipo de Atividade": "Visita", "Cód de Baixa 1": "205"},
	}

	cards := KeyActivitySummary(records)
	if len(cards) != 3 {
		t.Fatalf("esperado 3 cartões, obtido %d", len(cards))
	}

	mudanca := cards[0]
	if mudanca.Contains != (domain.ActivityCount{Total: 2, Productive: 1}) || mudanca.Exact != (domain.ActivityCount{Total: 1, Productive: 1}) {
		t.Errorf("mudança de pacote inesperada: %+v", mudanca)
	}
	if mudanca.Productivity != 50 || mudanca.Substituted {
		t.Errorf("mudança de pacote inesperada: %+v", mudanca)
	}

	inst := cards[1]
	if !inst.Substituted || inst.Name != "Reparo" || inst.Slot != "INSTALACAO" || inst.Contains.Total != 2 {
		t.Errorf("cartão vazio deveria ser substituído por Reparo: %+v", inst)
	}

	gpon := cards[2]
	if gpon.Substituted || gpon.Contains.Total != 1 || gpon.Productivity != 100 {
		t.Errorf("gpon inesperado: %+v", gpon)
	}
}

func TestKeyActivitySummarySemDados(t *testing.T) {
	for _, c := range KeyActivitySummary(nil) {
		if c.Substituted || c.Contains.Total != 0 || c.Name != c.Slot {
			t.Errorf("cartão inesperado sem dados: %+v", c)
		}
	}
}
