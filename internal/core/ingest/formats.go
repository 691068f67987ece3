package ingest

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/shakinm/xlsReader/xls"
	"github.com/xuri/excelize/v2"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// readTable lê a primeira planilha (ou o CSV inteiro) como linhas de texto.
func readTable(filename string, data []byte) ([][]string, error) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".csv", ".txt":
		return readCSV(data)
	case ".xlsx", ".xlsm":
		return readXLSX(data)
	case ".xls":
		return readXLS(data)
	}
	return nil, fmt.Errorf("%w: %s", ErrFormatoNaoSuportado, filepath.Ext(filename))
}

// readCSV aceita UTF-8 (com ou sem BOM) e cai para Windows-1252 quando o
// conteúdo não é UTF-8 válido. O separador é ',' ou ';', o que aparecer
// mais na primeira linha.
func readCSV(data []byte) ([][]string, error) {
	data = bytes.TrimPrefix(data, utf8BOM)

	var src io.Reader = bytes.NewReader(data)
	if !utf8.Valid(data) {
		src = transform.NewReader(bytes.NewReader(data), charmap.Windows1252.NewDecoder())
	}

	reader := csv.NewReader(src)
	reader.Comma = detectDelimiter(data)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("erro ao ler CSV: %w", err)
	}
	return rows, nil
}

func detectDelimiter(data []byte) rune {
	firstLine := data
	if i := bytes.IndexByte(data, '\n'); i >= 0 {
		firstLine = data[:i]
	}
	if bytes.Count(firstLine, []byte{';'}) > bytes.Count(firstLine, []byte{','}) {
		return ';'
	}
	return ','
}

func readXLSX(data []byte) ([][]string, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("erro ao abrir planilha: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, ErrSemDados
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("erro ao ler a aba '%s': %w", sheets[0], err)
	}
	return rows, nil
}

// readXLS lê o formato binário antigo. Muitos sistemas exportam XLSX com
// extensão .xls, então a falha cai para o leitor de XLSX.
func readXLS(data []byte) ([][]string, error) {
	workbook, err := xls.OpenReader(bytes.NewReader(data))
	if err != nil {
		if rows, errX := readXLSX(data); errX == nil {
			return rows, nil
		}
		return nil, fmt.Errorf("erro ao abrir planilha XLS: %w", err)
	}

	sheets := workbook.GetSheets()
	if len(sheets) == 0 {
		return nil, ErrSemDados
	}

	var rows [][]string
	for _, row := range sheets[0].GetRows() {
		var cols []string
		for _, cell := range row.GetCols() {
			cols = append(cols, cell.GetString())
		}
		rows = append(rows, cols)
	}
	return rows, nil
}
