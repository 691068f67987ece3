package activity

import (
	"testing"

	"github.com/LuisEduardoPedra/painelAtividades/internal/domain"
)

func TestClassifyPorCodigo(t *testing.T) {
	casos := []struct {
		codigo string
		want   domain.Status
	}{
		{"410 - Concluído", domain.StatusProdutiva},
		{"409", domain.StatusProdutiva},
		{"408", domain.StatusImprodutiva},
		{"205", domain.StatusImprodutiva},
		{"0", domain.StatusImprodutiva},
		{"", domain.StatusPendente},
		{"Sem código", domain.StatusPendente},
		{"99999999999999999999999", domain.StatusProdutiva},
	}

	for _, c := range casos {
		t.Run(c.codigo, func(t *testing.T) {
			rec := domain.Record{"Cód de Baixa 1": c.codigo}
			if got := Classify(rec); got != c.want {
				t.Errorf("Classify(%q) = %s, esperado %s", c.codigo, got, c.want)
			}
		})
	}
}

func TestClassifyColunaComAcentoCorrompido(t *testing.T) {
	for _, chave := range []string{"CÃ³d de Baixa 1", "Cod de Baixa 1", "C?d de Baixa 1", "Código de Baixa 1"} {
		rec := domain.Record{chave: "410"}
		if got := Classify(rec); got != domain.StatusProdutiva {
			t.Errorf("coluna %q: esperado Produtiva, obtido %s", chave, got)
		}
	}
}

func TestClassifyStatusGravado(t *testing.T) {
	t.Run("sem código vale o status gravado", func(t *testing.T) {
		rec := domain.Record{"Cód de Baixa 1": "", "Status da Atividade": "Improdutiva"}
		if got := Classify(rec); got != domain.StatusImprodutiva {
			t.Errorf("esperado Improdutiva, obtido %s", got)
		}
	})

	t.Run("código numérico ignora o status gravado", func(t *testing.T) {
		rec := domain.Record{"Cód de Baixa 1": "410", "Status da Atividade": "Improdutiva"}
		if got := Classify(rec); got != domain.StatusProdutiva {
			t.Errorf("esperado Produtiva, obtido %s", got)
		}
	})

	t.Run("status gravado desconhecido vira Pendente", func(t *testing.T) {
		rec := domain.Record{"Status da Atividade": "Cancelada"}
		if got := Classify(rec); got != domain.StatusPendente {
			t.Errorf("esperado Pendente, obtido %s", got)
		}
	})
}

func TestClassifyDraft(t *testing.T) {
	rec := domain.Record{"Cód de Baixa 1": "205"}

	casos := []struct {
		nome  string
		draft *domain.Draft
		want  domain.Status
	}{
		{"sem rascunho", nil, domain.StatusImprodutiva},
		{"código do rascunho decide", &domain.Draft{Code: "410", Status: domain.StatusImprodutiva}, domain.StatusProdutiva},
		{"status manual sem código numérico", &domain.Draft{Code: "REAGENDADO", Status: domain.StatusImprodutiva}, domain.StatusImprodutiva},
		{"rascunho vazio", &domain.Draft{}, domain.StatusPendente},
	}

	for _, c := range casos {
		t.Run(c.nome, func(t *testing.T) {
			if got := ClassifyDraft(rec, c.draft); got != c.want {
				t.Errorf("esperado %s, obtido %s", c.want, got)
			}
		})
	}
}

func TestStatusEditable(t *testing.T) {
	if StatusEditable("410") {
		t.Error("código numérico não deveria permitir status manual")
	}
	if !StatusEditable("") || !StatusEditable("REAGENDADO") {
		t.Error("código sem prefixo numérico deveria permitir status manual")
	}
}
