package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/LuisEduardoPedra/painelAtividades/internal/core/activity"
	"github.com/xuri/excelize/v2"
)

const planilha = "Recurso;Intervalo de Tempo;Tipo de Atividade;Cód de Baixa 1;Duração\n" +
	"Ana Maria Souza;08/01/2025 08:10 - 08/01/2025 09:00;INSTALACAO;410;01:00\n" +
	"Bruno Lima;09/01/2025 13:00 - 09/01/2025 14:00;REPARO;205;00:30\n"

func writeInput(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "atividades.csv")
	if err := os.WriteFile(path, []byte(planilha), 0o644); err != nil {
		t.Fatalf("Erro ao gravar entrada: %v", err)
	}
	return path
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	out, _, err := runSplit(t, args...)
	return out, err
}

func runSplit(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	cmd := NewRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), errOut.String(), err
}

func TestAnalisar(t *testing.T) {
	input := writeInput(t)

	out, err := run(t, "analisar", input, "--produtividade", "unproductive")
	if err != nil {
		t.Fatalf("Erro inesperado: %v", err)
	}
	var p activity.Painel
	if err := json.Unmarshal([]byte(out), &p); err != nil {
		t.Fatalf("Saída não é JSON: %v\n%s", err, out)
	}
	if p.TotalRecords != 2 || p.FilteredCount != 1 || p.KPIs.Unproductive != 1 {
		t.Errorf("Painel inesperado: total=%d filtrado=%d kpis=%+v", p.TotalRecords, p.FilteredCount, p.KPIs)
	}

	if _, err := run(t, "analisar", input, "--produtividade", "talvez"); err == nil {
		t.Error("Esperava erro com produtividade inválida")
	}
	if _, err := run(t, "analisar"); err == nil {
		t.Error("Esperava erro sem arquivo")
	}
}

func TestExportar(t *testing.T) {
	input := writeInput(t)

	t.Run("csv", func(t *testing.T) {
		saida := filepath.Join(t.TempDir(), "saida.csv")
		out, err := run(t, "exportar", input, "--tecnico", "Ana Maria Souza", "--saida", saida)
		if err != nil {
			t.Fatalf("Erro inesperado: %v", err)
		}
		if !strings.Contains(out, "1 registros exportados") {
			t.Errorf("Mensagem inesperada: %s", out)
		}
		data, err := os.ReadFile(saida)
		if err != nil {
			t.Fatalf("Saída não gravada: %v", err)
		}
		if !strings.Contains(string(data), "Ana Maria Souza") || strings.Contains(string(data), "Bruno") {
			t.Errorf("Conteúdo inesperado: %s", data)
		}
	})

	t.Run("xlsx", func(t *testing.T) {
		saida := filepath.Join(t.TempDir(), "saida.xlsx")
		if _, err := run(t, "exportar", input, "--formato", "xlsx", "-o", saida); err != nil {
			t.Fatalf("Erro inesperado: %v", err)
		}
		f, err := excelize.OpenFile(saida)
		if err != nil {
			t.Fatalf("XLSX inválido: %v", err)
		}
		defer f.Close()
		rows, err := f.GetRows("Atividades")
		if err != nil || len(rows) != 3 {
			t.Errorf("Esperava cabeçalho e 2 linhas, obteve %d (%v)", len(rows), err)
		}
	})

	t.Run("sem dados não deixa arquivo", func(t *testing.T) {
		saida := filepath.Join(t.TempDir(), "vazio.csv")
		if _, err := run(t, "exportar", input, "--tecnico", "Ninguém", "-o", saida); err == nil {
			t.Fatal("Esperava erro sem registros")
		}
		if _, err := os.Stat(saida); !os.IsNotExist(err) {
			t.Error("Arquivo vazio deveria ser removido")
		}
	})
}

func TestAnalisarArquivoRuimNaoInterrompe(t *testing.T) {
	input := writeInput(t)
	dir := t.TempDir()
	ruim := filepath.Join(dir, "notas.pdf")
	if err := os.WriteFile(ruim, []byte("x"), 0o644); err != nil {
		t.Fatalf("Erro ao gravar entrada: %v", err)
	}
	ausente := filepath.Join(dir, "nao-existe.csv")

	out, avisos, err := runSplit(t, "analisar", input, ruim, ausente)
	if err != nil {
		t.Fatalf("Arquivos ruins não deveriam interromper a análise: %v", err)
	}
	var p activity.Painel
	if err := json.Unmarshal([]byte(out), &p); err != nil {
		t.Fatalf("Saída não é JSON: %v\n%s", err, out)
	}
	if p.TotalRecords != 2 {
		t.Errorf("Esperava 2 registros do arquivo válido, obteve %d", p.TotalRecords)
	}
	if !strings.Contains(avisos, "notas.pdf") || !strings.Contains(avisos, "nao-existe.csv") {
		t.Errorf("Avisos deveriam citar os arquivos rejeitados: %s", avisos)
	}

	if _, _, err := runSplit(t, "analisar", ruim, ausente); err == nil {
		t.Error("Esperava erro quando nenhum arquivo é válido")
	}
}
