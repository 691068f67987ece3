package config

import (
	"fmt"
	"testing"
	"time"
)

func TestLoad(t *testing.T) {
	t.Run("valores padrão", func(t *testing.T) {
		t.Setenv("PAINEL_JWT_SECRET", "segredo")

		cfg, err := Load()
		if err != nil {
			t.Fatalf("Erro inesperado: %v", err)
		}
		if cfg.Port != "8080" || cfg.LogLevel != "info" {
			t.Errorf("Padrões inesperados: %+v", cfg)
		}
		if cfg.Sync.ReadyDelay != 2*time.Second || cfg.Sync.UploadDelay != 2500*time.Millisecond {
			t.Errorf("Atrasos inesperados: %+v", cfg.Sync)
		}
		if cfg.Ingest.Workers != 2 || cfg.Ingest.ChunkSize != 400 {
			t.Errorf("Ingestão inesperada: %+v", cfg.Ingest)
		}
		if cfg.Sheets.Tipo != "Atividades" || cfg.Database.URL != "" {
			t.Errorf("Destinos inesperados: %+v %+v", cfg.Sheets, cfg.Database)
		}
	})

	t.Run("sem segredo", func(t *testing.T) {
		t.Setenv("PAINEL_JWT_SECRET", "")
		t.Setenv("JWT_SECRET", "")
		if _, err := Load(); err == nil {
			t.Error("Esperava erro sem JWT_SECRET")
		}
	})

	t.Run("nomes sem prefixo e contextos", func(t *testing.T) {
		t.Setenv("JWT_SECRET", "segredo")
		t.Setenv("PORT", "9090")
		t.Setenv("PAINEL_GEO_CONTEXTS", "Natal, RN, Brasil; Macaíba, RN, Brasil;")

		cfg, err := Load()
		if err != nil {
			t.Fatalf("Erro inesperado: %v", err)
		}
		if cfg.Port != "9090" {
			t.Errorf("PORT deveria ser lido sem prefixo, obteve %s", cfg.Port)
		}
		if fmt.Sprint(cfg.Geo.Contexts) != "[Natal, RN, Brasil Macaíba, RN, Brasil]" {
			t.Errorf("Contextos inesperados: %q", cfg.Geo.Contexts)
		}
	})

	t.Run("workers inválido", func(t *testing.T) {
		t.Setenv("PAINEL_JWT_SECRET", "segredo")
		t.Setenv("PAINEL_INGEST_WORKERS", "0")
		if _, err := Load(); err == nil {
			t.Error("Esperava erro com zero workers")
		}
	})
}
