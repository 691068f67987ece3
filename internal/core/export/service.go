package export

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/LuisEduardoPedra/painelAtividades/internal/domain"
	"github.com/xuri/excelize/v2"
)

// Format é o formato de saída da exportação.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
)

// SheetName é o nome da aba da planilha exportada.
const SheetName = "Atividades"

var (
	ErrSemDados        = errors.New("nenhum dado para exportar")
	ErrFormatoInvalido = errors.New("formato de exportação inválido")
)

// ParseFormat aceita "csv" e "xlsx" (também "excel"), sem diferenciar caixa.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "csv":
		return FormatCSV, nil
	case "xlsx", "excel":
		return FormatXLSX, nil
	}
	return "", fmt.Errorf("%w: %s", ErrFormatoInvalido, s)
}

// ContentType devolve o MIME do formato.
func (f Format) ContentType() string {
	if f == FormatXLSX {
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	}
	return "text/csv; charset=utf-8"
}

// FileName é o nome sugerido para download.
func (f Format) FileName() string {
	return "atividades_filtradas." + string(f)
}

// Service define a interface do serviço de exportação.
type Service interface {
	Export(w io.Writer, format Format, ds domain.Dataset) error
}

type service struct{}

// NewService cria uma nova instância do serviço de exportação.
func NewService() Service {
	return &service{}
}

func (svc *service) Export(w io.Writer, format Format, ds domain.Dataset) error {
	if len(ds.Records) == 0 {
		return ErrSemDados
	}
	switch format {
	case FormatCSV:
		return svc.writeCSV(w, ds)
	case FormatXLSX:
		return svc.writeXLSX(w, ds)
	}
	return fmt.Errorf("%w: %s", ErrFormatoInvalido, format)
}

// writeCSV grava UTF-8 com BOM (para o Excel reconhecer a acentuação),
// separado por vírgula.
func (svc *service) writeCSV(w io.Writer, ds domain.Dataset) error {
	if _, err := w.Write([]byte{0xEF, 0xBB, 0xBF}); err != nil {
		return fmt.Errorf("erro ao gravar BOM: %w", err)
	}

	cols := ds.Columns()
	writer := csv.NewWriter(w)
	if err := writer.Write(cols); err != nil {
		return fmt.Errorf("erro ao gravar cabeçalho: %w", err)
	}
	for _, rec := range ds.Records {
		row := make([]string, len(cols))
		for i, c := range cols {
			row[i] = rec[c]
		}
		if err := writer.Write(row); err != nil {
			return fmt.Errorf("erro ao gravar linha: %w", err)
		}
	}
	writer.Flush()
	return writer.Error()
}

func (svc *service) writeXLSX(w io.Writer, ds domain.Dataset) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), SheetName); err != nil {
		return fmt.Errorf("erro ao nomear aba: %w", err)
	}

	cols := ds.Columns()
	head := make([]any, len(cols))
	for i, c := range cols {
		head[i] = c
	}
	if err := f.SetSheetRow(SheetName, "A1", &head); err != nil {
		return fmt.Errorf("erro ao gravar cabeçalho: %w", err)
	}

	for i, rec := range ds.Records {
		row := make([]any, len(cols))
		for j, c := range cols {
			row[j] = rec[c]
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(SheetName, cell, &row); err != nil {
			return fmt.Errorf("erro ao gravar linha %d: %w", i+2, err)
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("erro ao gravar planilha: %w", err)
	}
	return nil
}
