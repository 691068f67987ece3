package syncer

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/LuisEduardoPedra/painelAtividades/internal/domain"
	"github.com/cespare/xxhash/v2"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

// Outcome descreve o que uma tentativa de sincronização fez.
type Outcome string

const (
	Enviado    Outcome = "enviado"
	Vazio      Outcome = "vazio"
	NaoPronto  Outcome = "nao_pronto"
	Duplicado  Outcome = "duplicado"
	SemDestino Outcome = "sem_destino"
)

// Pusher é um destino remoto dos registros (banco relacional, planilha).
type Pusher interface {
	Name() string
	Push(ctx context.Context, records []domain.Record) error
}

// Config controla as janelas de tempo da sincronização.
type Config struct {
	// ReadyDelay é a espera após um carregamento remoto antes de liberar envios.
	ReadyDelay time.Duration
	// UploadDelay é o adiamento de um envio forçado pedido antes da liberação.
	UploadDelay time.Duration
	// Timeout limita cada envio em segundo plano.
	Timeout time.Duration
}

// Syncer protege os envios: nada sai durante a janela de carregamento e
// um conjunto idêntico ao último enviado (ou carregado) é ignorado.
type Syncer struct {
	cfg     Config
	pushers []Pusher
	now     func() time.Time

	mu       sync.Mutex
	loading  bool
	readyAt  time.Time
	lastHash uint64
	hasHash  bool

	wg sync.WaitGroup
}

// New cria o Syncer. Sem pushers, toda tentativa termina em SemDestino.
func New(cfg Config, pushers ...Pusher) *Syncer {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 2 * time.Minute
	}
	return &Syncer{cfg: cfg, pushers: pushers, now: time.Now}
}

// Hash é o xxhash do JSON dos registros.
func Hash(records []domain.Record) (uint64, error) {
	raw, err := json.Marshal(records)
	if err != nil {
		return 0, fmt.Errorf("erro ao serializar registros: %w", err)
	}
	return xxhash.Sum64(raw), nil
}

// BeginLoad bloqueia envios enquanto um carregamento remoto acontece.
func (s *Syncer) BeginLoad() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.loading = true
}

// EndLoad registra o conjunto carregado como já sincronizado e libera os
// envios depois de ReadyDelay.
func (s *Syncer) EndLoad(loaded []domain.Record) {
	h, err := Hash(loaded)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.loading = false
	s.readyAt = s.now().Add(s.cfg.ReadyDelay)
	if err == nil && len(loaded) > 0 {
		s.lastHash, s.hasHash = h, true
	}
}

// Ready indica se envios estão liberados.
func (s *Syncer) Ready() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.readyLocked()
}

func (s *Syncer) readyLocked() bool {
	return !s.loading && !s.now().Before(s.readyAt)
}

// Sync envia os registros para todos os destinos, respeitando as guardas.
// Falhas de destinos diferentes são combinadas; o hash só é gravado quando
// todos os destinos aceitaram.
func (s *Syncer) Sync(ctx context.Context, records []domain.Record) (Outcome, error) {
	if len(records) == 0 {
		return Vazio, nil
	}
	if len(s.pushers) == 0 {
		return SemDestino, nil
	}

	h, err := Hash(records)
	if err != nil {
		return "", err
	}

	s.mu.Lock()
	if !s.readyLocked() {
		s.mu.Unlock()
		zap.L().Info("sincronização bloqueada: carregamento inicial em andamento")
		return NaoPronto, nil
	}
	if s.hasHash && s.lastHash == h {
		s.mu.Unlock()
		zap.L().Debug("dados idênticos aos já sincronizados, envio ignorado")
		return Duplicado, nil
	}
	s.mu.Unlock()

	var errs error
	for _, p := range s.pushers {
		if err := p.Push(ctx, records); err != nil {
			errs = multierr.Append(errs, fmt.Errorf("%s: %w", p.Name(), err))
			continue
		}
		zap.L().Info("registros sincronizados", zap.String("destino", p.Name()), zap.Int("registros", len(records)))
	}
	if errs != nil {
		return "", errs
	}

	s.mu.Lock()
	s.lastHash, s.hasHash = h, true
	s.mu.Unlock()
	return Enviado, nil
}

// Force descarta o hash e envia em segundo plano. Se os envios ainda não
// estão liberados, o envio é adiado por UploadDelay.
func (s *Syncer) Force(records []domain.Record) {
	if len(records) == 0 {
		return
	}
	snapshot := append([]domain.Record(nil), records...)

	s.mu.Lock()
	ready := s.readyLocked()
	s.mu.Unlock()

	s.wg.Add(1)
	run := func() {
		defer s.wg.Done()
		s.mu.Lock()
		s.hasHash = false
		s.mu.Unlock()

		ctx, cancel := context.WithTimeout(context.Background(), s.cfg.Timeout)
		defer cancel()
		outcome, err := s.Sync(ctx, snapshot)
		if err != nil {
			zap.L().Error("falha na sincronização", zap.Error(err))
			return
		}
		zap.L().Info("sincronização concluída", zap.String("resultado", string(outcome)))
	}

	if ready {
		go run()
		return
	}
	zap.L().Info("upload durante carregamento, sincronização adiada", zap.Duration("atraso", s.cfg.UploadDelay))
	time.AfterFunc(s.cfg.UploadDelay, run)
}

// Wait aguarda os envios em segundo plano.
func (s *Syncer) Wait() {
	s.wg.Wait()
}
