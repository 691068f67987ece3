// cmd/web/main.go
package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/LuisEduardoPedra/painelAtividades/internal/api"
	"github.com/LuisEduardoPedra/painelAtividades/internal/api/handlers"
	"github.com/LuisEduardoPedra/painelAtividades/internal/api/responses"
	"github.com/LuisEduardoPedra/painelAtividades/internal/config"
	"github.com/LuisEduardoPedra/painelAtividades/internal/core/auth"
	"github.com/LuisEduardoPedra/painelAtividades/internal/core/dashboard"
	"github.com/LuisEduardoPedra/painelAtividades/internal/core/export"
	"github.com/LuisEduardoPedra/painelAtividades/internal/core/geo"
	"github.com/LuisEduardoPedra/painelAtividades/internal/core/ingest"
	"github.com/LuisEduardoPedra/painelAtividades/internal/core/syncer"
	"github.com/LuisEduardoPedra/painelAtividades/internal/sheets"
	fsstore "github.com/LuisEduardoPedra/painelAtividades/internal/store/firestore"
	"github.com/LuisEduardoPedra/painelAtividades/internal/store/postgres"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}
	if err := responses.InitLogger(cfg.LogLevel); err != nil {
		log.Fatal(err)
	}
	defer zap.L().Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	firestoreClient, err := fsstore.NewClient(ctx, cfg.Firestore.Project, cfg.Firestore.Database)
	if err != nil {
		zap.L().Fatal("falha ao conectar no Firestore", zap.Error(err))
	}
	defer firestoreClient.Close()
	zap.L().Info("conectado ao Firestore", zap.String("banco", cfg.Firestore.Database))

	// Destinos da sincronização. O primeiro configurado também é a origem
	// do refresh.
	var pushers []syncer.Pusher
	var source dashboard.Source
	if cfg.Database.URL != "" {
		store, err := postgres.Open(ctx, cfg.Database.URL)
		if err != nil {
			zap.L().Fatal("falha ao abrir banco relacional", zap.Error(err))
		}
		defer store.Close()
		pushers = append(pushers, store)
		source = store
	}
	if cfg.Sheets.URL != "" {
		client := sheets.NewClient(cfg.Sheets.URL, cfg.Sheets.Tipo, &http.Client{Timeout: time.Minute})
		pushers = append(pushers, client)
		if source == nil {
			source = client
		}
	}
	if len(pushers) == 0 {
		zap.L().Warn("nenhum destino remoto configurado, os dados ficam só em memória")
	}

	sync := syncer.New(syncer.Config{
		ReadyDelay:  cfg.Sync.ReadyDelay,
		UploadDelay: cfg.Sync.UploadDelay,
		Timeout:     cfg.Sync.Timeout,
	}, pushers...)

	geoService := geo.NewService(
		fsstore.NewGeoCache(firestoreClient),
		geo.NewNominatim(cfg.Geo.BaseURL, &http.Client{Timeout: 10 * time.Second}, nil),
		cfg.Geo.Contexts,
		cfg.Geo.MaxLookups,
	)
	dashboardService := dashboard.NewService(
		ingest.NewService(ingest.Config{Workers: cfg.Ingest.Workers, ChunkSize: cfg.Ingest.ChunkSize}),
		export.NewService(),
		geoService,
		sync,
		source,
	)
	authService := auth.NewService(fsstore.NewUsers(firestoreClient), []byte(cfg.JWTSecret))

	if source != nil {
		go func() {
			if _, err := dashboardService.Refresh(ctx); err != nil {
				zap.L().Error("falha no carregamento inicial", zap.Error(err))
			}
		}()
	}

	gin.SetMode(gin.ReleaseMode)
	router := api.NewRouter([]byte(cfg.JWTSecret),
		handlers.NewAuthHandler(authService),
		handlers.NewActivityHandler(dashboardService, cfg.Ingest.MaxUpload),
	)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		zap.L().Info("servidor iniciado", zap.String("porta", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zap.L().Fatal("falha ao iniciar o servidor", zap.Error(err))
		}
	}()

	<-ctx.Done()
	zap.L().Info("encerrando servidor")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		zap.L().Error("erro ao encerrar servidor", zap.Error(err))
	}
	sync.Wait()
}
