package ingest

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/LuisEduardoPedra/painelAtividades/internal/domain"
	"github.com/google/uuid"
	"github.com/schollz/closestmatch"
	"go.uber.org/multierr"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

var (
	// ErrColunasAusentes é o erro base de MissingColumnsError.
	ErrColunasAusentes = errors.New("colunas obrigatórias ausentes")
	// ErrSemDados indica arquivo sem cabeçalho, sem linhas ou só com linhas vazias.
	ErrSemDados = errors.New("nenhum dado válido encontrado no arquivo")
	// ErrFormatoNaoSuportado indica extensão que não é CSV, XLSX ou XLS.
	ErrFormatoNaoSuportado = errors.New("formato de arquivo não suportado")
)

// ColunasObrigatorias são comparadas sem diferenciar maiúsculas.
var ColunasObrigatorias = []string{
	"Recurso",
	"Intervalo de Tempo",
	"Tipo de Atividade",
	"Cód de Baixa 1",
	"Duração",
}

// ColunaDuplicadaConhecida vem repetida nas exportações do sistema de
// campo; a segunda ocorrência é a que vale.
const ColunaDuplicadaConhecida = "Duração"

// Faixa de progresso reservada para a conversão das linhas.
const (
	progressoInicio = 22
	progressoFim    = 95
)

// MissingColumnsError lista as colunas obrigatórias ausentes e, quando
// existe, o cabeçalho mais parecido encontrado no arquivo.
type MissingColumnsError struct {
	File        string
	Missing     []string
	Suggestions map[string]string
}

func (e *MissingColumnsError) Error() string {
	var parts []string
	for _, m := range e.Missing {
		if s, ok := e.Suggestions[m]; ok {
			parts = append(parts, fmt.Sprintf("%s (encontrado: '%s'?)", m, s))
			continue
		}
		parts = append(parts, m)
	}
	return fmt.Sprintf("colunas ausentes: %s", strings.Join(parts, ", "))
}

func (e *MissingColumnsError) Unwrap() error {
	return ErrColunasAusentes
}

// ProgressFunc recebe o percentual (0-100) de processamento de um arquivo.
// Com mais de um worker, é chamada de goroutines diferentes.
type ProgressFunc func(file string, pct int)

// File é um arquivo enviado para ingestão.
type File struct {
	Name string
	Data []byte
}

// FileResult é o resultado de um arquivo dentro de um lote.
type FileResult struct {
	Name    string `json:"name"`
	Records int    `json:"records"`
	Error   string `json:"error,omitempty"`
}

// Result é o resultado de um lote: os registros de todos os arquivos que
// passaram, concatenados na ordem de envio.
type Result struct {
	BatchID string         `json:"batchId"`
	Dataset domain.Dataset `json:"-"`
	Files   []FileResult   `json:"files"`
}

// Config controla o processamento.
type Config struct {
	Workers   int
	ChunkSize int
}

// Service define a interface do serviço de ingestão de planilhas.
type Service interface {
	ParseFile(ctx context.Context, name string, r io.Reader, progress ProgressFunc) (domain.Dataset, error)
	ParseFiles(ctx context.Context, files []File, progress ProgressFunc) (*Result, error)
}

type service struct {
	workers   int
	chunkSize int
}

// NewService cria uma nova instância do serviço de ingestão.
func NewService(cfg Config) Service {
	if cfg.Workers < 1 {
		cfg.Workers = 2
	}
	if cfg.ChunkSize < 1 {
		cfg.ChunkSize = 400
	}
	return &service{workers: cfg.Workers, chunkSize: cfg.ChunkSize}
}

func (svc *service) ParseFile(ctx context.Context, name string, r io.Reader, progress ProgressFunc) (domain.Dataset, error) {
	report := func(pct int) {
		if progress != nil {
			progress(name, pct)
		}
	}

	report(5)
	data, err := io.ReadAll(r)
	if err != nil {
		return domain.Dataset{}, fmt.Errorf("erro ao ler arquivo '%s': %w", name, err)
	}
	report(12)

	rows, err := readTable(name, data)
	if err != nil {
		return domain.Dataset{}, err
	}
	report(18)

	if len(rows) < 2 {
		return domain.Dataset{}, fmt.Errorf("%w: o arquivo deve conter pelo menos uma linha de cabeçalho e uma linha de dados", ErrSemDados)
	}

	headers := make([]string, len(rows[0]))
	for i, h := range rows[0] {
		headers[i] = strings.TrimSpace(h)
	}
	if err := validateHeaders(name, headers); err != nil {
		return domain.Dataset{}, err
	}
	cols := buildColumns(headers)
	report(progressoInicio)

	dataRows := rows[1:]
	total := len(dataRows)
	records := make([]domain.Record, 0, total)
	for i := 0; i < total; i += svc.chunkSize {
		// cancelamento só é observado entre blocos
		if err := ctx.Err(); err != nil {
			return domain.Dataset{}, fmt.Errorf("processamento de '%s' cancelado: %w", name, err)
		}

		end := i + svc.chunkSize
		if end > total {
			end = total
		}
		for _, row := range dataRows[i:end] {
			if rec, ok := toRecord(cols, row); ok {
				records = append(records, rec)
			}
		}

		report(progressoInicio + (end*(progressoFim-progressoInicio))/total)
	}

	if len(records) == 0 {
		return domain.Dataset{}, ErrSemDados
	}

	out := make([]string, 0, len(cols))
	for _, c := range cols {
		if !c.skip {
			out = append(out, c.name)
		}
	}
	report(100)
	return domain.Dataset{Headers: out, Records: records}, nil
}

func (svc *service) ParseFiles(ctx context.Context, files []File, progress ProgressFunc) (*Result, error) {
	if len(files) == 0 {
		return nil, fmt.Errorf("%w: nenhum arquivo enviado", ErrSemDados)
	}

	datasets := make([]domain.Dataset, len(files))
	errs := make([]error, len(files))

	var g errgroup.Group
	g.SetLimit(svc.workers)
	for i, f := range files {
		i, f := i, f
		g.Go(func() error {
			ds, err := svc.ParseFile(ctx, f.Name, bytes.NewReader(f.Data), progress)
			if err != nil {
				errs[i] = fmt.Errorf("%s: %w", f.Name, err)
				return nil
			}
			datasets[i] = ds
			return nil
		})
	}
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	result := &Result{BatchID: uuid.NewString()}
	var combined error
	var merged []domain.Dataset
	for i, f := range files {
		fr := FileResult{Name: f.Name, Records: len(datasets[i].Records)}
		if errs[i] != nil {
			fr.Error = errs[i].Error()
			combined = multierr.Append(combined, errs[i])
			zap.L().Warn("arquivo rejeitado", zap.String("batch", result.BatchID), zap.String("arquivo", f.Name), zap.Error(errs[i]))
		} else {
			merged = append(merged, datasets[i])
			zap.L().Info("arquivo processado", zap.String("batch", result.BatchID), zap.String("arquivo", f.Name), zap.Int("registros", fr.Records))
		}
		result.Files = append(result.Files, fr)
	}
	result.Dataset = Merge(merged...)

	return result, combined
}

// Merge concatena conjuntos, unindo os cabeçalhos na ordem em que aparecem.
func Merge(sets ...domain.Dataset) domain.Dataset {
	var out domain.Dataset
	seen := make(map[string]bool)
	for _, ds := range sets {
		for _, h := range ds.Headers {
			if !seen[h] {
				seen[h] = true
				out.Headers = append(out.Headers, h)
			}
		}
		out.Records = append(out.Records, ds.Records...)
	}
	return out
}

// validateHeaders só sugere cabeçalhos que não atendem outra coluna
// obrigatória.
func validateHeaders(file string, headers []string) error {
	required := make(map[string]bool, len(ColunasObrigatorias))
	for _, col := range ColunasObrigatorias {
		required[strings.ToLower(col)] = true
	}

	present := make(map[string]bool, len(headers))
	var candidates []string
	for _, h := range headers {
		if h == "" {
			continue
		}
		key := strings.ToLower(h)
		present[key] = true
		if !required[key] {
			candidates = append(candidates, h)
		}
	}

	var missing []string
	for _, col := range ColunasObrigatorias {
		if !present[strings.ToLower(col)] {
			missing = append(missing, col)
		}
	}
	if len(missing) == 0 {
		return nil
	}

	err := &MissingColumnsError{File: file, Missing: missing, Suggestions: map[string]string{}}
	if len(candidates) > 0 {
		cm := closestmatch.New(candidates, []int{2, 3})
		for _, m := range missing {
			if s := cm.Closest(m); s != "" {
				err.Suggestions[m] = s
			}
		}
	}
	return err
}

type column struct {
	name  string
	index int
	skip  bool
}

// buildColumns resolve cabeçalhos repetidos. Para a coluna duplicada
// conhecida só a última ocorrência é lida; nas demais a primeira mantém o
// nome e as seguintes recebem " (2)", " (3)"...
func buildColumns(headers []string) []column {
	lastKnown := -1
	for i, h := range headers {
		if strings.EqualFold(h, ColunaDuplicadaConhecida) {
			lastKnown = i
		}
	}

	used := make(map[string]int)
	cols := make([]column, 0, len(headers))
	for i, h := range headers {
		c := column{name: h, index: i}
		switch {
		case h == "":
			c.skip = true
		case strings.EqualFold(h, ColunaDuplicadaConhecida) && i != lastKnown:
			c.skip = true
		default:
			used[h]++
			if n := used[h]; n > 1 {
				c.name = fmt.Sprintf("%s (%d)", h, n)
			}
		}
		cols = append(cols, c)
	}
	return cols
}

// toRecord monta o registro; linhas sem nenhum valor são descartadas.
func toRecord(cols []column, row []string) (domain.Record, bool) {
	rec := make(domain.Record, len(cols))
	hasValue := false
	for _, c := range cols {
		if c.skip {
			continue
		}
		v := ""
		if c.index < len(row) {
			v = row[c.index]
		}
		if strings.TrimSpace(v) != "" {
			hasValue = true
		}
		rec[c.name] = v
	}
	return rec, hasValue
}
