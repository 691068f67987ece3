package sheets

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/LuisEduardoPedra/painelAtividades/internal/domain"
)

func TestFetch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			t.Errorf("Método inesperado: %s", r.Method)
		}
		fmt.Fprint(w, `{"status":"ok","data":[{"Recurso":"Ana","Cód de Baixa 1":410,"Latitude":-5.81,"Bairro":null}]}`)
	}))
	defer srv.Close()

	recs, err := NewClient(srv.URL, "Atividades", srv.Client()).Fetch(context.Background())
	if err != nil {
		t.Fatalf("Erro inesperado: %v", err)
	}
	if len(recs) != 1 {
		t.Fatalf("Esperava 1 registro, obteve %d", len(recs))
	}
	r := recs[0]
	if r["Cód de Baixa 1"] != "410" || r["Latitude"] != "-5.81" || r["Bairro"] != "" {
		t.Errorf("Conversão inesperada: %v", r)
	}
}

func TestFetchSemDados(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"status":"erro"}`)
	}))
	defer srv.Close()

	recs, err := NewClient(srv.URL, "Atividades", nil).Fetch(context.Background())
	if err != nil || len(recs) != 0 {
		t.Errorf("Esperava conjunto vazio sem erro, obteve %d (%v)", len(recs), err)
	}
}

func TestFetchHTTPErro(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL, "Atividades", nil).Fetch(context.Background())
	if !errors.Is(err, ErrRespostaInvalida) {
		t.Errorf("Esperava ErrRespostaInvalida, obteve %v", err)
	}
}

func TestPushEmLotes(t *testing.T) {
	var mu sync.Mutex
	var tamanhos []int
	chamada := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if ct := r.Header.Get("Content-Type"); ct != "text/plain;charset=utf-8" {
			t.Errorf("Content-Type inesperado: %s", ct)
		}
		body, _ := io.ReadAll(r.Body)
		var p pushPayload
		if err := json.Unmarshal(body, &p); err != nil {
			t.Errorf("Payload inválido: %v", err)
		}
		if p.Tipo != "Atividades" {
			t.Errorf("Tipo inesperado: %s", p.Tipo)
		}

		mu.Lock()
		defer mu.Unlock()
		chamada++
		tamanhos = append(tamanhos, len(p.Rows))
		if chamada == 2 {
			fmt.Fprint(w, "ERRO")
			return
		}
		fmt.Fprint(w, " ok\n")
	}))
	defer srv.Close()

	recs := make([]domain.Record, 450)
	for i := range recs {
		recs[i] = domain.Record{"Recurso": fmt.Sprintf("T%d", i)}
	}

	err := NewClient(srv.URL, "Atividades", nil).Push(context.Background(), recs)
	if err == nil || !strings.Contains(err.Error(), "lote 2/3") {
		t.Errorf("Esperava falha só no lote 2, obteve %v", err)
	}
	if fmt.Sprint(tamanhos) != "[200 200 50]" {
		t.Errorf("Lotes inesperados: %v", tamanhos)
	}
}
