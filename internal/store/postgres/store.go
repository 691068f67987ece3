// Package postgres persiste as atividades numa tabela relacional (pgx).
package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/LuisEduardoPedra/painelAtividades/internal/domain"
	_ "github.com/jackc/pgx/v5/stdlib"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

const (
	// PageSize é o tamanho de cada página na leitura completa.
	PageSize = 1000
	// UpsertBatchSize é o tamanho de cada lote de gravação.
	UpsertBatchSize = 100
)

const schemaSQL = `
CREATE TABLE IF NOT EXISTS atividades (
	id                    BIGSERIAL PRIMARY KEY,
	numero_os             TEXT UNIQUE,
	contrato              TEXT,
	data_atividade        DATE,
	recurso               TEXT,
	status_atividade      TEXT,
	tipo_atividade        TEXT,
	cod_baixa_1           TEXT,
	intervalo_tempo       TEXT,
	duracao_minutos       INTEGER,
	latitude              DOUBLE PRECISION,
	longitude             DOUBLE PRECISION,
	cidade                TEXT,
	bairro                TEXT,
	tempo_de_deslocamento INTEGER,
	created_at            TIMESTAMPTZ NOT NULL DEFAULT now()
)`

var columns = []string{
	"numero_os", "contrato", "data_atividade", "recurso", "status_atividade",
	"tipo_atividade", "cod_baixa_1", "intervalo_tempo", "duracao_minutos",
	"latitude", "longitude", "cidade", "bairro", "tempo_de_deslocamento",
}

// Store implementa a leitura (dashboard.Source) e o envio (syncer.Pusher).
type Store struct {
	db *sql.DB
}

// Open conecta, testa a conexão e garante a tabela.
func Open(ctx context.Context, url string) (*Store, error) {
	db, err := sql.Open("pgx", url)
	if err != nil {
		return nil, err
	}

	pingCtx, cancel := context.WithTimeout(ctx, 12*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, fmt.Errorf("erro ao conectar no banco: %w", err)
	}

	s := &Store{db: db}
	if err := s.EnsureSchema(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) Name() string {
	return "banco"
}

func (s *Store) EnsureSchema(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, schemaSQL); err != nil {
		return fmt.Errorf("erro ao criar tabela atividades: %w", err)
	}
	if _, err := s.db.ExecContext(ctx, `CREATE INDEX IF NOT EXISTS atividades_data_idx ON atividades (data_atividade DESC)`); err != nil {
		return fmt.Errorf("erro ao criar índice: %w", err)
	}
	return nil
}

// Fetch lê todas as atividades em páginas de PageSize, da mais recente para
// a mais antiga.
func (s *Store) Fetch(ctx context.Context) ([]domain.Record, error) {
	query := fmt.Sprintf(`SELECT id, %s FROM atividades
		ORDER BY data_atividade DESC NULLS LAST, id
		LIMIT $1 OFFSET $2`, strings.Join(columns, ", "))

	var records []domain.Record
	for page := 0; ; page++ {
		rows, err := s.db.QueryContext(ctx, query, PageSize, page*PageSize)
		if err != nil {
			return nil, fmt.Errorf("erro ao buscar atividades (página %d): %w", page+1, err)
		}
		n, err := scanPage(rows, &records)
		if err != nil {
			return nil, fmt.Errorf("erro ao ler atividades (página %d): %w", page+1, err)
		}
		if n < PageSize {
			break
		}
	}

	zap.L().Info("atividades carregadas do banco", zap.Int("linhas", len(records)))
	if records == nil {
		records = []domain.Record{}
	}
	return records, nil
}

func scanPage(rows *sql.Rows, out *[]domain.Record) (int, error) {
	defer rows.Close()
	n := 0
	for rows.Next() {
		var (
			a                                         domain.Atividade
			numeroOS, contrato, recurso, status, tipo sql.NullString
			codBaixa, intervalo, cidade, bairro       sql.NullString
			data                                      sql.NullTime
			duracao, deslocamento                     sql.NullInt64
			lat, lon                                  sql.NullFloat64
		)
		if err := rows.Scan(&a.ID, &numeroOS, &contrato, &data, &recurso, &status,
			&tipo, &codBaixa, &intervalo, &duracao, &lat, &lon, &cidade, &bairro, &deslocamento); err != nil {
			return n, err
		}
		a.NumeroOS = numeroOS.String
		a.Contrato = contrato.String
		a.Recurso = recurso.String
		a.StatusAtividade = status.String
		a.TipoAtividade = tipo.String
		a.CodBaixa1 = codBaixa.String
		a.IntervaloTempo = intervalo.String
		a.Cidade = cidade.String
		a.Bairro = bairro.String
		if data.Valid {
			a.DataAtividade = data.Time.Format("2006-01-02")
		}
		a.DuracaoMinutos = nullInt(duracao)
		a.TempoDeDeslocamento = nullInt(deslocamento)
		a.Latitude = nullFloat(lat)
		a.Longitude = nullFloat(lon)

		*out = append(*out, ToRecord(a))
		n++
	}
	return n, rows.Err()
}

// Push grava os registros em lotes de UpsertBatchSize, atualizando pelo
// número da WO. Um lote com falha é registrado e os demais seguem.
func (s *Store) Push(ctx context.Context, records []domain.Record) error {
	var errs error
	total := (len(records) + UpsertBatchSize - 1) / UpsertBatchSize
	for i := 0; i < len(records); i += UpsertBatchSize {
		end := i + UpsertBatchSize
		if end > len(records) {
			end = len(records)
		}
		lote := i/UpsertBatchSize + 1

		batch := make([]domain.Atividade, 0, end-i)
		for _, rec := range records[i:end] {
			batch = append(batch, ToAtividade(rec))
		}
		if err := s.upsert(ctx, dedupeByOS(batch)); err != nil {
			zap.L().Warn("erro no lote", zap.Int("lote", lote), zap.Int("total", total), zap.Error(err))
			if ctx.Err() != nil {
				return multierr.Append(errs, ctx.Err())
			}
			errs = multierr.Append(errs, fmt.Errorf("lote %d/%d: %w", lote, total, err))
			continue
		}
		zap.L().Debug("lote gravado", zap.Int("lote", lote), zap.Int("total", total))
	}
	return errs
}

func (s *Store) upsert(ctx context.Context, batch []domain.Atividade) (err error) {
	if len(batch) == 0 {
		return nil
	}
	query, args := upsertQuery(batch)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if _, err = tx.ExecContext(ctx, query, args...); err != nil {
		return err
	}
	return tx.Commit()
}

// upsertQuery monta um INSERT com várias linhas e ON CONFLICT (numero_os).
func upsertQuery(batch []domain.Atividade) (string, []any) {
	var b strings.Builder
	fmt.Fprintf(&b, "INSERT INTO atividades (%s) VALUES ", strings.Join(columns, ", "))

	args := make([]any, 0, len(batch)*len(columns))
	for i, a := range batch {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString("(")
		for j := range columns {
			if j > 0 {
				b.WriteString(",")
			}
			fmt.Fprintf(&b, "$%d", i*len(columns)+j+1)
		}
		b.WriteString(")")
		args = append(args,
			nullString(a.NumeroOS), nullString(a.Contrato), nullString(a.DataAtividade),
			nullString(a.Recurso), nullString(a.StatusAtividade), nullString(a.TipoAtividade),
			nullString(a.CodBaixa1), nullString(a.IntervaloTempo), a.DuracaoMinutos,
			a.Latitude, a.Longitude, nullString(a.Cidade), nullString(a.Bairro),
			a.TempoDeDeslocamento,
		)
	}

	sets := make([]string, 0, len(columns)-1)
	for _, c := range columns[1:] {
		sets = append(sets, fmt.Sprintf("%s = EXCLUDED.%s", c, c))
	}
	fmt.Fprintf(&b, " ON CONFLICT (numero_os) DO UPDATE SET %s", strings.Join(sets, ", "))
	return b.String(), args
}

// dedupeByOS mantém a última ocorrência de cada número de WO no lote, pois o
// mesmo INSERT não pode atualizar uma linha duas vezes. Linhas sem número
// nunca conflitam e passam todas.
func dedupeByOS(batch []domain.Atividade) []domain.Atividade {
	last := make(map[string]int, len(batch))
	for i, a := range batch {
		if a.NumeroOS != "" {
			last[a.NumeroOS] = i
		}
	}
	out := batch[:0:0]
	for i, a := range batch {
		if a.NumeroOS == "" || last[a.NumeroOS] == i {
			out = append(out, a)
		}
	}
	return out
}

func nullString(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func nullInt(v sql.NullInt64) *int {
	if !v.Valid {
		return nil
	}
	i := int(v.Int64)
	return &i
}

func nullFloat(v sql.NullFloat64) *float64 {
	if !v.Valid {
		return nil
	}
	return &v.Float64
}
