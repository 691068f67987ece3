package geo

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/LuisEduardoPedra/painelAtividades/internal/core/activity"
	"github.com/LuisEduardoPedra/painelAtividades/internal/domain"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// ContextosPadrao são tentados, em ordem, depois da cidade do registro.
var ContextosPadrao = []string{
	"Natal, RN, Brasil",
	"Parnamirim, RN, Brasil",
	"Fortaleza, CE, Brasil",
	"Mossoró, RN, Brasil",
}

// Coords é um par latitude/longitude. No cache, Missing marca uma consulta
// que não encontrou nada; CachedAt é quando a entrada foi gravada.
type Coords struct {
	Lat      float64   `json:"lat" firestore:"lat"`
	Lon      float64   `json:"lon" firestore:"lon"`
	Missing  bool      `json:"-" firestore:"missing"`
	CachedAt time.Time `json:"-" firestore:"updatedAt"`
}

// NegativeTTL é por quanto tempo uma consulta sem resultado não é repetida.
const NegativeTTL = 7 * 24 * time.Hour

// DefaultMaxLookups limita as consultas ao geocodificador por chamada de
// Points. Os bairros que ficam de fora aparecem nas chamadas seguintes, à
// medida que o cache é preenchido.
const DefaultMaxLookups = 10

// Cache guarda resultados de geocodificação por chave.
type Cache interface {
	Get(ctx context.Context, key string) (Coords, bool, error)
	Set(ctx context.Context, key string, c Coords) error
}

// Geocoder resolve uma consulta livre ("Bairro, Cidade") em coordenadas.
type Geocoder interface {
	Lookup(ctx context.Context, query string) (Coords, bool, error)
}

// CacheKey é "<bairro> | <contexto>" em minúsculas.
func CacheKey(bairro, contexto string) string {
	return strings.ToLower(bairro + " | " + contexto)
}

// Service define a interface do serviço de mapa.
type Service interface {
	Geocode(ctx context.Context, bairro, cidade string) (Coords, bool)
	Points(ctx context.Context, records []domain.Record) []domain.MapPoint
}

type service struct {
	cache      Cache
	geocoder   Geocoder
	contexts   []string
	maxLookups int
	now        func() time.Time
}

// NewService cria o serviço. contexts vazio usa ContextosPadrao e
// maxLookups <= 0 usa DefaultMaxLookups.
func NewService(cache Cache, geocoder Geocoder, contexts []string, maxLookups int) Service {
	if len(contexts) == 0 {
		contexts = ContextosPadrao
	}
	if maxLookups <= 0 {
		maxLookups = DefaultMaxLookups
	}
	return &service{cache: cache, geocoder: geocoder, contexts: contexts, maxLookups: maxLookups, now: time.Now}
}

// Geocode tenta a cidade do registro e depois cada contexto configurado,
// consultando o cache antes do geocodificador. Falhas são registradas e o
// próximo contexto é tentado.
func (s *service) Geocode(ctx context.Context, bairro, cidade string) (Coords, bool) {
	return s.resolve(ctx, bairro, cidade, nil)
}

// resolve é o Geocode com um orçamento opcional de consultas ao
// geocodificador. Com o orçamento esgotado, só o cache é lido.
func (s *service) resolve(ctx context.Context, bairro, cidade string, budget *int) (Coords, bool) {
	contexts := s.contexts
	if cidade != "" {
		contexts = append([]string{cidade}, contexts...)
	}

	for _, contexto := range contexts {
		if ctx.Err() != nil {
			return Coords{}, false
		}
		key := CacheKey(bairro, contexto)
		if c, ok, err := s.cache.Get(ctx, key); err != nil {
			zap.L().Warn("falha ao ler cache de geocodificação", zap.String("chave", key), zap.Error(err))
		} else if ok {
			if !c.Missing {
				return c, true
			}
			if s.now().Sub(c.CachedAt) < NegativeTTL {
				continue
			}
		}

		if budget != nil {
			if *budget <= 0 {
				continue
			}
			*budget--
		}
		c, ok, err := s.geocoder.Lookup(ctx, bairro+", "+contexto)
		if err != nil {
			zap.L().Warn("falha na geocodificação", zap.String("consulta", bairro+", "+contexto), zap.Error(err))
			continue
		}
		if !ok {
			s.store(ctx, key, Coords{Missing: true})
			continue
		}
		s.store(ctx, key, c)
		return c, true
	}
	return Coords{}, false
}

func (s *service) store(ctx context.Context, key string, c Coords) {
	c.CachedAt = s.now()
	if err := s.cache.Set(ctx, key, c); err != nil {
		zap.L().Warn("falha ao gravar cache de geocodificação", zap.String("chave", key), zap.Error(err))
	}
}

// Points agrupa por bairro e resolve as coordenadas de cada grupo. Grupos
// sem coordenadas ficam fora do mapa. No máximo maxLookups consultas ao
// geocodificador são feitas por chamada.
func (s *service) Points(ctx context.Context, records []domain.Record) []domain.MapPoint {
	groups := activity.GroupNeighborhoods(records)
	points := make([]domain.MapPoint, 0, len(groups))
	budget := s.maxLookups
	for _, g := range groups {
		if g.HasCoords {
			points = append(points, g.Point(g.Lat, g.Lon))
			continue
		}
		if c, ok := s.resolve(ctx, g.Name, g.City, &budget); ok {
			points = append(points, g.Point(c.Lat, c.Lon))
		}
	}
	if budget <= 0 {
		zap.L().Info("limite de geocodificações por requisição atingido", zap.Int("limite", s.maxLookups))
	}
	return points
}

// MemoryCache é um Cache em memória.
type MemoryCache struct {
	mu    sync.RWMutex
	items map[string]Coords
}

func NewMemoryCache() *MemoryCache {
	return &MemoryCache{items: make(map[string]Coords)}
}

func (m *MemoryCache) Get(_ context.Context, key string) (Coords, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	c, ok := m.items[key]
	return c, ok, nil
}

func (m *MemoryCache) Set(_ context.Context, key string, c Coords) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items[key] = c
	return nil
}

// Nominatim consulta o serviço de busca do OpenStreetMap, no máximo uma
// requisição por segundo.
type Nominatim struct {
	baseURL   string
	userAgent string
	http      *http.Client
	limiter   *rate.Limiter
}

const DefaultNominatimURL = "https://nominatim.openstreetmap.org"

// NewNominatim cria o cliente. baseURL vazio usa o servidor público.
func NewNominatim(baseURL string, httpClient *http.Client, limiter *rate.Limiter) *Nominatim {
	if baseURL == "" {
		baseURL = DefaultNominatimURL
	}
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	if limiter == nil {
		limiter = rate.NewLimiter(rate.Limit(1), 1)
	}
	return &Nominatim{
		baseURL:   strings.TrimRight(baseURL, "/"),
		userAgent: "painelAtividades/1.0",
		http:      httpClient,
		limiter:   limiter,
	}
}

func (n *Nominatim) Lookup(ctx context.Context, query string) (Coords, bool, error) {
	if err := n.limiter.Wait(ctx); err != nil {
		return Coords{}, false, err
	}

	q := url.Values{}
	q.Set("format", "json")
	q.Set("limit", "1")
	q.Set("accept-language", "pt-BR")
	q.Set("q", query)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, n.baseURL+"/search?"+q.Encode(), nil)
	if err != nil {
		return Coords{}, false, err
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", n.userAgent)

	res, err := n.http.Do(req)
	if err != nil {
		return Coords{}, false, err
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		return Coords{}, false, fmt.Errorf("nominatim respondeu HTTP %d", res.StatusCode)
	}

	var results []struct {
		Lat string `json:"lat"`
		Lon string `json:"lon"`
	}
	if err := json.NewDecoder(res.Body).Decode(&results); err != nil {
		return Coords{}, false, fmt.Errorf("resposta inválida do nominatim: %w", err)
	}
	if len(results) == 0 {
		return Coords{}, false, nil
	}

	lat, err := strconv.ParseFloat(results[0].Lat, 64)
	if err != nil {
		return Coords{}, false, fmt.Errorf("latitude inválida: %w", err)
	}
	lon, err := strconv.ParseFloat(results[0].Lon, 64)
	if err != nil {
		return Coords{}, false, fmt.Errorf("longitude inválida: %w", err)
	}
	return Coords{Lat: lat, Lon: lon}, true, nil
}
