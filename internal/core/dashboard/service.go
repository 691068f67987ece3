package dashboard

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/LuisEduardoPedra/painelAtividades/internal/core/activity"
	"github.com/LuisEduardoPedra/painelAtividades/internal/core/export"
	"github.com/LuisEduardoPedra/painelAtividades/internal/core/geo"
	"github.com/LuisEduardoPedra/painelAtividades/internal/core/ingest"
	"github.com/LuisEduardoPedra/painelAtividades/internal/domain"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

var (
	ErrRegistroNaoEncontrado = errors.New("registro não encontrado")
	ErrChaveInvalida         = errors.New("chave do registro vazia")
	ErrSemOrigem             = errors.New("nenhuma origem remota configurada")
)

// Source é a origem remota do conjunto de trabalho.
type Source interface {
	Name() string
	Fetch(ctx context.Context) ([]domain.Record, error)
}

// Syncer é a parte do syncer.Syncer usada pelo painel.
type Syncer interface {
	BeginLoad()
	EndLoad(loaded []domain.Record)
	Force(records []domain.Record)
}

// Query são os parâmetros de uma consulta ao painel.
type Query struct {
	Filters      domain.FilterState
	SelectedType string
}

// Service define a interface do conjunto de trabalho do painel.
type Service interface {
	Upload(ctx context.Context, files []ingest.File, progress ingest.ProgressFunc) (*ingest.Result, error)
	Refresh(ctx context.Context) (int, error)
	Painel(q Query) activity.Painel
	Table(user string, f domain.FilterState, order activity.SortOrder, page int) activity.TablePage
	Map(ctx context.Context, f domain.FilterState) []domain.MapPoint
	Export(w io.Writer, format export.Format, f domain.FilterState) error
	Edit(key domain.CompositeKey, draft domain.Draft) (int, error)
	Clear()
	Snapshot() domain.Dataset
}

type service struct {
	ingest ingest.Service
	export export.Service
	geo    geo.Service
	sync   Syncer
	source Source

	mu      sync.RWMutex
	dataset domain.Dataset

	tablesMu sync.Mutex
	tables   map[string]*activity.TableState
}

// NewService cria o painel. source pode ser nil (sem atualização remota).
func NewService(in ingest.Service, ex export.Service, g geo.Service, s Syncer, source Source) Service {
	return &service{
		ingest: in,
		export: ex,
		geo:    g,
		sync:   s,
		source: source,
		tables: make(map[string]*activity.TableState),
	}
}

func (s *service) records() []domain.Record {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.dataset.Records
}

func (s *service) replace(ds domain.Dataset) {
	s.mu.Lock()
	s.dataset = ds
	s.mu.Unlock()
}

// Upload processa os arquivos e substitui o conjunto de trabalho pelos
// registros dos arquivos válidos. Arquivos rejeitados aparecem no
// resultado; só há erro quando nenhum registro foi carregado.
func (s *service) Upload(ctx context.Context, files []ingest.File, progress ingest.ProgressFunc) (*ingest.Result, error) {
	result, err := s.ingest.ParseFiles(ctx, files, progress)
	if result == nil {
		return nil, err
	}
	if len(result.Dataset.Records) == 0 {
		return result, multierr.Append(fmt.Errorf("%w: nenhum dado válido encontrado nos arquivos", ingest.ErrSemDados), err)
	}

	s.replace(result.Dataset)
	zap.L().Info("conjunto de trabalho substituído",
		zap.String("batch", result.BatchID),
		zap.Int("registros", len(result.Dataset.Records)),
	)
	s.sync.Force(result.Dataset.Records)
	return result, nil
}

// Refresh recarrega o conjunto de trabalho da origem remota. Em caso de
// falha o conjunto atual é mantido.
func (s *service) Refresh(ctx context.Context) (int, error) {
	if s.source == nil {
		return 0, ErrSemOrigem
	}

	s.sync.BeginLoad()
	records, err := s.source.Fetch(ctx)
	if err != nil {
		s.sync.EndLoad(nil)
		return 0, fmt.Errorf("erro ao buscar dados de '%s': %w", s.source.Name(), err)
	}

	ds := domain.Dataset{Records: records}
	ds.Headers = ds.Columns()
	s.replace(ds)
	s.sync.EndLoad(records)
	return len(records), nil
}

func (s *service) Painel(q Query) activity.Painel {
	return activity.BuildPainel(s.records(), q.Filters, q.SelectedType)
}

// Table devolve a página da tabela para o usuário. Cada usuário tem sua
// própria página atual, que volta para 1 quando filtros ou ordem mudam.
func (s *service) Table(user string, f domain.FilterState, order activity.SortOrder, page int) activity.TablePage {
	filtered := activity.ApplyFilters(s.records(), f)

	s.tablesMu.Lock()
	state, ok := s.tables[user]
	if !ok {
		state = &activity.TableState{}
		s.tables[user] = state
	}
	current := state.Update(f.Signature(), order, page)
	s.tablesMu.Unlock()

	return activity.BuildTablePage(filtered, order, current)
}

func (s *service) Map(ctx context.Context, f domain.FilterState) []domain.MapPoint {
	return s.geo.Points(ctx, activity.ApplyFilters(s.records(), f))
}

// Export grava os registros filtrados, com as colunas do arquivo de origem.
func (s *service) Export(w io.Writer, format export.Format, f domain.FilterState) error {
	s.mu.RLock()
	ds := s.dataset
	s.mu.RUnlock()

	ds.Records = activity.ApplyFilters(ds.Records, f)
	return s.export.Export(w, format, ds)
}

// Edit troca o código de baixa (e o status, quando o código não decide) de
// todos os registros com a chave informada e reenvia o conjunto.
func (s *service) Edit(key domain.CompositeKey, draft domain.Draft) (int, error) {
	if key == (domain.CompositeKey{}) {
		return 0, ErrChaveInvalida
	}

	s.mu.Lock()
	records := make([]domain.Record, len(s.dataset.Records))
	copy(records, s.dataset.Records)
	updated := 0
	for i, rec := range records {
		if activity.KeyOf(rec) != key {
			continue
		}
		edited := rec.Clone()
		edited[activity.FieldCode.Name] = draft.Code
		edited[activity.FieldStatus.Name] = string(activity.ClassifyDraft(rec, &draft))
		records[i] = edited
		updated++
	}
	if updated > 0 {
		s.dataset.Records = records
		s.dataset.Headers = withHeaders(s.dataset.Headers, activity.FieldCode.Name, activity.FieldStatus.Name)
	}
	s.mu.Unlock()

	if updated == 0 {
		return 0, ErrRegistroNaoEncontrado
	}
	zap.L().Info("registros editados", zap.Int("registros", updated), zap.String("codigo", draft.Code))
	s.sync.Force(records)
	return updated, nil
}

func withHeaders(headers []string, names ...string) []string {
	out := headers
	for _, n := range names {
		found := false
		for _, h := range out {
			if h == n {
				found = true
				break
			}
		}
		if !found {
			out = append(append([]string(nil), out...), n)
		}
	}
	return out
}

// Clear esvazia o conjunto de trabalho e o estado das tabelas.
func (s *service) Clear() {
	s.replace(domain.Dataset{})
	s.tablesMu.Lock()
	s.tables = make(map[string]*activity.TableState)
	s.tablesMu.Unlock()
}

func (s *service) Snapshot() domain.Dataset {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.dataset
}
