package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/LuisEduardoPedra/painelAtividades/internal/core/activity"
	"github.com/LuisEduardoPedra/painelAtividades/internal/core/export"
	"github.com/spf13/cobra"
)

func newAnalisarCmd() *cobra.Command {
	var (
		filters      filterFlags
		selectedType string
	)
	cmd := &cobra.Command{
		Use:   "analisar <arquivo>...",
		Short: "Imprime o painel em JSON",
		Long: `Processa as planilhas e imprime o painel completo (KPIs, rankings,
distribuições e atividades chave) em JSON.

Exemplos:
  painel analisar atividades.xlsx
  painel analisar jan.csv fev.csv --tecnico "Ana Souza" --inicio 2025-01-01`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := filters.state()
			if err != nil {
				return err
			}
			ds, err := loadFiles(cmd.Context(), args, cmd.ErrOrStderr())
			if err != nil {
				return err
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(activity.BuildPainel(ds.Records, f, selectedType))
		},
	}
	filters.register(cmd)
	cmd.Flags().StringVar(&selectedType, "tipo-selecionado", "", "Tipo usado na produtividade por técnico")
	return cmd
}

func newExportarCmd() *cobra.Command {
	var (
		filters filterFlags
		formato string
		saida   string
	)
	cmd := &cobra.Command{
		Use:   "exportar <arquivo>...",
		Short: "Exporta os registros filtrados em CSV ou XLSX",
		Long: `Processa as planilhas, aplica os filtros e grava o resultado.

Exemplos:
  painel exportar atividades.csv --formato xlsx
  painel exportar atividades.csv --produtividade unproductive --saida improdutivas.csv`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := filters.state()
			if err != nil {
				return err
			}
			format, err := export.ParseFormat(formato)
			if err != nil {
				return err
			}
			ds, err := loadFiles(cmd.Context(), args, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			ds.Records = activity.ApplyFilters(ds.Records, f)

			if saida == "" {
				saida = format.FileName()
			}
			out, err := os.Create(saida)
			if err != nil {
				return fmt.Errorf("erro ao criar '%s': %w", saida, err)
			}
			if err := export.NewService().Export(out, format, ds); err != nil {
				out.Close()
				os.Remove(saida)
				return err
			}
			if err := out.Close(); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%d registros exportados para %s\n", len(ds.Records), saida)
			return nil
		},
	}
	filters.register(cmd)
	cmd.Flags().StringVar(&formato, "formato", "csv", "csv ou xlsx")
	cmd.Flags().StringVarP(&saida, "saida", "o", "", "Arquivo de saída (padrão atividades_filtradas.<formato>)")
	return cmd
}
