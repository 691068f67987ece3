package sheets

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/LuisEduardoPedra/painelAtividades/internal/domain"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

const (
	// BatchSize é o tamanho de cada lote enviado ao web app.
	BatchSize    = 200
	fetchTimeout = 15 * time.Second
)

var ErrRespostaInvalida = errors.New("resposta inválida da planilha")

// Client fala com o web app da planilha: GET devolve
// {"status":"ok","data":[...]}, POST recebe {"rows":[...],"tipo":"..."} e
// responde "OK".
type Client struct {
	url  string
	tipo string
	http *http.Client
}

// NewClient cria o cliente. httpClient nil usa http.DefaultClient.
func NewClient(url, tipo string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{url: url, tipo: tipo, http: httpClient}
}

func (c *Client) Name() string {
	return "planilha"
}

type fetchResponse struct {
	Status string           `json:"status"`
	Data   []map[string]any `json:"data"`
}

// Fetch busca todas as linhas. Resposta sem status "ok" ou sem linhas
// devolve conjunto vazio.
func (c *Client) Fetch(ctx context.Context) ([]domain.Record, error) {
	ctx, cancel := context.WithTimeout(ctx, fetchTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	res, err := c.http.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, fmt.Errorf("tempo limite excedido ao conectar com a planilha: %w", err)
		}
		return nil, fmt.Errorf("erro ao buscar dados da planilha: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: HTTP %d", ErrRespostaInvalida, res.StatusCode)
	}

	dec := json.NewDecoder(res.Body)
	dec.UseNumber()
	var body fetchResponse
	if err := dec.Decode(&body); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRespostaInvalida, err)
	}
	if body.Status != "ok" || len(body.Data) == 0 {
		zap.L().Info("nenhum dado encontrado na planilha")
		return []domain.Record{}, nil
	}

	records := make([]domain.Record, 0, len(body.Data))
	for _, row := range body.Data {
		rec := make(domain.Record, len(row))
		for k, v := range row {
			rec[k] = stringify(v)
		}
		records = append(records, rec)
	}
	zap.L().Info("dados recebidos da planilha", zap.Int("linhas", len(records)))
	return records, nil
}

func stringify(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case json.Number:
		return x.String()
	case bool:
		if x {
			return "true"
		}
		return "false"
	}
	return fmt.Sprint(v)
}

type pushPayload struct {
	Rows []domain.Record `json:"rows"`
	Tipo string          `json:"tipo"`
}

// Push envia os registros em lotes de BatchSize. Um lote recusado não
// interrompe os demais; as falhas são devolvidas juntas.
func (c *Client) Push(ctx context.Context, records []domain.Record) error {
	var errs error
	total := (len(records) + BatchSize - 1) / BatchSize
	for i := 0; i < len(records); i += BatchSize {
		end := i + BatchSize
		if end > len(records) {
			end = len(records)
		}
		lote := i/BatchSize + 1
		if err := c.pushBatch(ctx, records[i:end]); err != nil {
			if ctx.Err() != nil {
				return multierr.Append(errs, ctx.Err())
			}
			errs = multierr.Append(errs, fmt.Errorf("lote %d/%d: %w", lote, total, err))
			continue
		}
		zap.L().Debug("lote enviado", zap.Int("lote", lote), zap.Int("total", total))
	}
	return errs
}

func (c *Client) pushBatch(ctx context.Context, rows []domain.Record) error {
	payload, err := json.Marshal(pushPayload{Rows: rows, Tipo: c.tipo})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	// text/plain evita o preflight CORS do Apps Script
	req.Header.Set("Content-Type", "text/plain;charset=utf-8")

	res, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer res.Body.Close()

	body, err := io.ReadAll(res.Body)
	if err != nil {
		return err
	}
	if text := strings.TrimSpace(string(body)); !strings.EqualFold(text, "OK") {
		return fmt.Errorf("%w: %q", ErrRespostaInvalida, text)
	}
	return nil
}
