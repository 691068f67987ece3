package responses

import (
	"fmt"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// InitLogger configura o logger global do zap no formato JSON de produção.
func InitLogger(level string) error {
	var lvl zapcore.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		return fmt.Errorf("nível de log inválido '%s': %w", level, err)
	}

	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(lvl)
	cfg.EncoderConfig.TimeKey = "timestamp"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	logger, err := cfg.Build()
	if err != nil {
		return fmt.Errorf("erro ao criar logger: %w", err)
	}
	zap.ReplaceGlobals(logger)
	return nil
}

// ErrorBody é o corpo de toda resposta de erro da API.
type ErrorBody struct {
	Error   string   `json:"error"`
	Details []string `json:"details,omitempty"`
}

// Error aborta a requisição com o status e a mensagem informados. Erros 5xx
// também vão para o log.
func Error(c *gin.Context, status int, message string, details ...string) {
	if status >= 500 {
		zap.L().Error(message,
			zap.Int("status", status),
			zap.String("path", c.Request.URL.Path),
			zap.Strings("details", details),
		)
	}
	c.AbortWithStatusJSON(status, ErrorBody{Error: message, Details: details})
}
