package geo

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/LuisEduardoPedra/painelAtividades/internal/domain"
	"golang.org/x/time/rate"
)

type fakeGeocoder struct {
	results map[string]Coords
	fail    map[string]bool
	queries []string
}

func (f *fakeGeocoder) Lookup(_ context.Context, query string) (Coords, bool, error) {
	f.queries = append(f.queries, query)
	if f.fail[query] {
		return Coords{}, false, errors.New("falha de rede")
	}
	c, ok := f.results[query]
	return c, ok, nil
}

func TestCacheKey(t *testing.T) {
	if got := CacheKey("LAGOA NOVA", "Natal, RN, Brasil"); got != "lagoa nova | natal, rn, brasil" {
		t.Errorf("Chave inesperada: %s", got)
	}
}

func TestGeocodeOrdemDosContextos(t *testing.T) {
	g := &fakeGeocoder{
		results: map[string]Coords{"CENTRO, Parnamirim, RN, Brasil": {Lat: -5.9, Lon: -35.2}},
		fail:    map[string]bool{"CENTRO, Macaíba": true},
	}
	cache := NewMemoryCache()
	svc := NewService(cache, g, nil, 0)

	c, ok := svc.Geocode(context.Background(), "CENTRO", "Macaíba")
	if !ok || c.Lat != -5.9 {
		t.Fatalf("Esperava coordenadas de Parnamirim, obteve %+v (%v)", c, ok)
	}
	want := []string{"CENTRO, Macaíba", "CENTRO, Natal, RN, Brasil", "CENTRO, Parnamirim, RN, Brasil"}
	if fmt.Sprint(g.queries) != fmt.Sprint(want) {
		t.Errorf("Consultas inesperadas: %v", g.queries)
	}

	if _, ok, _ := cache.Get(context.Background(), CacheKey("CENTRO", "Parnamirim, RN, Brasil")); !ok {
		t.Error("Resultado deveria ir para o cache")
	}

	// a segunda chamada para no cache, sem consultar o geocodificador
	g.queries = nil
	g.fail = nil
	if _, ok := svc.Geocode(context.Background(), "CENTRO", ""); !ok {
		t.Error("Esperava acerto no cache")
	}
	if len(g.queries) != 0 {
		t.Errorf("Natal sem resultado e Parnamirim já estão no cache: %v", g.queries)
	}
}

func TestGeocodeCacheNegativo(t *testing.T) {
	g := &fakeGeocoder{fail: map[string]bool{"CENTRO, Natal": true}}
	cache := NewMemoryCache()
	svc := NewService(cache, g, []string{"Natal"}, 0).(*service)
	agora := time.Date(2025, 1, 8, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return agora }

	if _, ok := svc.Geocode(context.Background(), "NENHUM", "Natal"); ok {
		t.Fatal("Não esperava coordenadas")
	}
	if len(g.queries) != 1 {
		t.Fatalf("Esperava uma consulta, obteve %v", g.queries)
	}
	c, ok, _ := cache.Get(context.Background(), CacheKey("NENHUM", "Natal"))
	if !ok || !c.Missing {
		t.Fatalf("Consulta sem resultado deveria ser gravada como ausente: %+v (%v)", c, ok)
	}

	svc.Geocode(context.Background(), "NENHUM", "Natal")
	if len(g.queries) != 1 {
		t.Errorf("Entrada negativa deveria evitar nova consulta: %v", g.queries)
	}

	// falhas de rede não são gravadas
	svc.Geocode(context.Background(), "CENTRO", "Natal")
	if _, ok, _ := cache.Get(context.Background(), CacheKey("CENTRO", "Natal")); ok {
		t.Error("Falha de rede não deveria ir para o cache")
	}

	agora = agora.Add(NegativeTTL + time.Hour)
	g.queries = nil
	svc.Geocode(context.Background(), "NENHUM", "Natal")
	if len(g.queries) != 1 {
		t.Errorf("Entrada negativa vencida deveria ser consultada de novo: %v", g.queries)
	}
}

func TestPointsLimiteDeConsultas(t *testing.T) {
	g := &fakeGeocoder{results: map[string]Coords{}}
	records := make([]domain.Record, 0, 5)
	for i := 0; i < 5; i++ {
		bairro := fmt.Sprintf("BAIRRO %d", i)
		g.results[bairro+", Natal"] = Coords{Lat: float64(i), Lon: 1}
		records = append(records, domain.Record{"Bairro": bairro})
	}
	svc := NewService(NewMemoryCache(), g, []string{"Natal"}, 2)

	if points := svc.Points(context.Background(), records); len(points) != 2 {
		t.Errorf("Esperava 2 pontos na primeira chamada, obteve %d", len(points))
	}
	if len(g.queries) != 2 {
		t.Errorf("Esperava 2 consultas, obteve %v", g.queries)
	}

	svc.Points(context.Background(), records)
	if points := svc.Points(context.Background(), records); len(points) != 5 {
		t.Errorf("Chamadas seguintes deveriam completar o mapa, obteve %d pontos", len(points))
	}
	if len(g.queries) != 5 {
		t.Errorf("Cada bairro deveria ser consultado uma vez, obteve %v", g.queries)
	}
}

func TestPoints(t *testing.T) {
	g := &fakeGeocoder{results: map[string]Coords{"ALECRIM, Natal, RN, Brasil": {Lat: 1, Lon: 2}}}
	svc := NewService(NewMemoryCache(), g, []string{"Natal, RN, Brasil"}, 0)

	records := []domain.Record{
		{"Bairro": "Lagoa Nova", "Latitude": "-5.8", "Longitude": "-35.2"},
		{"Bairro": "Alecrim"},
		{"Bairro": "Alecrim"},
		{"Bairro": "Desconhecido"},
	}
	points := svc.Points(context.Background(), records)
	if len(points) != 2 {
		t.Fatalf("Esperava 2 pontos, obteve %+v", points)
	}
	if points[0].Name != "LAGOA NOVA" || points[0].Lat != -5.8 {
		t.Errorf("Ponto com coordenadas do registro inesperado: %+v", points[0])
	}
	if points[1].Name != "ALECRIM" || points[1].Count != 2 || points[1].Lon != 2 {
		t.Errorf("Ponto geocodificado inesperado: %+v", points[1])
	}
	for _, q := range g.queries {
		if q == "LAGOA NOVA, Natal, RN, Brasil" {
			t.Error("Bairro com coordenadas não deveria ser geocodificado")
		}
	}
}

func TestNominatim(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/search" || r.URL.Query().Get("format") != "json" {
			t.Errorf("Requisição inesperada: %s", r.URL.String())
		}
		if r.Header.Get("User-Agent") == "" {
			t.Error("User-Agent obrigatório")
		}
		if r.URL.Query().Get("q") == "Nada, Natal" {
			fmt.Fprint(w, `[]`)
			return
		}
		fmt.Fprint(w, `[{"lat":"-5.79","lon":"-35.21"}]`)
	}))
	defer srv.Close()

	n := NewNominatim(srv.URL, srv.Client(), rate.NewLimiter(rate.Inf, 1))

	c, ok, err := n.Lookup(context.Background(), "Tirol, Natal")
	if err != nil || !ok || c.Lat != -5.79 || c.Lon != -35.21 {
		t.Errorf("Resultado inesperado: %+v %v %v", c, ok, err)
	}
	if _, ok, err := n.Lookup(context.Background(), "Nada, Natal"); ok || err != nil {
		t.Errorf("Sem resultado deveria devolver ok=false sem erro: %v %v", ok, err)
	}
}
