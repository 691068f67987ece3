package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Prefix das variáveis de ambiente (PAINEL_SYNC_READY_DELAY, ...). PORT e
// JWT_SECRET também são lidos sem o prefixo.
const Prefix = "PAINEL"

type Config struct {
	Port      string `envconfig:"PORT" default:"8080"`
	LogLevel  string `split_words:"true" default:"info"`
	JWTSecret string `envconfig:"JWT_SECRET"`

	Firestore Firestore `envconfig:"FIRESTORE"`
	Database  Database  `envconfig:"DATABASE"`
	Sheets    Sheets    `envconfig:"SHEETS"`
	Sync      Sync      `envconfig:"SYNC"`
	Geo       Geo       `envconfig:"GEO"`
	Ingest    Ingest    `envconfig:"INGEST"`
}

type Firestore struct {
	Project  string `default:"painel-atividades"`
	Database string `default:"painel-atividades-db"`
}

// Database sem URL desliga o banco relacional.
type Database struct {
	URL string
}

// Sheets sem URL desliga o espelho na planilha.
type Sheets struct {
	URL  string
	Tipo string `default:"Atividades"`
}

type Sync struct {
	ReadyDelay  time.Duration `split_words:"true" default:"2s"`
	UploadDelay time.Duration `split_words:"true" default:"2500ms"`
	Timeout     time.Duration `default:"2m"`
}

type Geo struct {
	BaseURL    string `split_words:"true"`
	Contexts   Contexts
	MaxLookups int `split_words:"true" default:"10"`
}

type Ingest struct {
	Workers   int   `default:"2"`
	ChunkSize int   `split_words:"true" default:"400"`
	MaxUpload int64 `split_words:"true" default:"52428800"`
}

// Contexts é uma lista separada por ";", já que cada contexto tem vírgulas
// ("Natal, RN, Brasil").
type Contexts []string

func (c *Contexts) Decode(value string) error {
	var out []string
	for _, part := range strings.Split(value, ";") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	*c = out
	return nil
}

// Load lê a configuração do ambiente.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(Prefix, &cfg); err != nil {
		return nil, fmt.Errorf("erro ao carregar configuração: %w", err)
	}
	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET não definido")
	}
	if cfg.Ingest.Workers < 1 {
		return nil, fmt.Errorf("INGEST_WORKERS deve ser maior que zero: %d", cfg.Ingest.Workers)
	}
	if cfg.Ingest.ChunkSize < 1 {
		return nil, fmt.Errorf("INGEST_CHUNK_SIZE deve ser maior que zero: %d", cfg.Ingest.ChunkSize)
	}
	return &cfg, nil
}
