package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/LuisEduardoPedra/painelAtividades/internal/core/ingest"
	"github.com/LuisEduardoPedra/painelAtividades/internal/domain"
	"github.com/spf13/cobra"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

// NewRootCmd monta o comando "painel" com seus subcomandos.
func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "painel",
		Short: "Análise de atividades de técnicos de campo",
		Long: `painel processa planilhas de atividades (CSV, XLSX ou XLS) sem precisar
do servidor: calcula o painel completo ou reexporta os registros filtrados.`,
		SilenceUsage: true,
	}
	root.AddCommand(newAnalisarCmd())
	root.AddCommand(newExportarCmd())
	return root
}

func Execute() {
	zap.ReplaceGlobals(zap.NewNop())
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// filterFlags são os filtros comuns a todos os subcomandos.
type filterFlags struct {
	technicians   []string
	activityTypes []string
	cities        []string
	productivity  string
	search        string
	start         string
	end           string
}

func (f *filterFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringSliceVar(&f.technicians, "tecnico", nil, "Filtra por técnico (pode repetir)")
	cmd.Flags().StringSliceVar(&f.activityTypes, "tipo", nil, "Filtra por tipo de atividade (pode repetir)")
	cmd.Flags().StringSliceVar(&f.cities, "cidade", nil, "Filtra por cidade (pode repetir)")
	cmd.Flags().StringVar(&f.productivity, "produtividade", "all", "all, productive ou unproductive")
	cmd.Flags().StringVar(&f.search, "busca", "", "Texto livre procurado em qualquer coluna")
	cmd.Flags().StringVar(&f.start, "inicio", "", "Data inicial (YYYY-MM-DD)")
	cmd.Flags().StringVar(&f.end, "fim", "", "Data final (YYYY-MM-DD)")
}

func (f *filterFlags) state() (domain.FilterState, error) {
	p := domain.Produtividade(f.productivity)
	switch p {
	case domain.ProdutividadeTodas, domain.ProdutividadeProdutivas, domain.ProdutividadeImprodutivas:
	default:
		return domain.FilterState{}, fmt.Errorf("produtividade inválida: %s", f.productivity)
	}
	return domain.FilterState{
		Technicians:   f.technicians,
		ActivityTypes: f.activityTypes,
		Cities:        f.cities,
		Productivity:  p,
		SearchText:    f.search,
		StartDate:     f.start,
		EndDate:       f.end,
	}, nil
}

// loadFiles lê e processa os arquivos como o upload do servidor faz: os
// arquivos rejeitados são avisados em warn e só há erro quando nenhum
// registro foi carregado.
func loadFiles(ctx context.Context, paths []string, warn io.Writer) (domain.Dataset, error) {
	var errs error
	files := make([]ingest.File, 0, len(paths))
	for _, p := range paths {
		data, err := os.ReadFile(p)
		if err != nil {
			errs = multierr.Append(errs, fmt.Errorf("erro ao ler '%s': %w", p, err))
			continue
		}
		files = append(files, ingest.File{Name: filepath.Base(p), Data: data})
	}

	var ds domain.Dataset
	if len(files) > 0 {
		result, err := ingest.NewService(ingest.Config{}).ParseFiles(ctx, files, nil)
		if result == nil {
			return domain.Dataset{}, multierr.Append(errs, err)
		}
		errs = multierr.Append(errs, err)
		ds = result.Dataset
	}

	if len(ds.Records) == 0 {
		return domain.Dataset{}, multierr.Append(fmt.Errorf("%w: nenhum dado válido encontrado nos arquivos", ingest.ErrSemDados), errs)
	}
	for _, err := range multierr.Errors(errs) {
		fmt.Fprintf(warn, "aviso: %v\n", err)
	}
	return ds, nil
}
