package api

import (
	"net/http"

	"github.com/LuisEduardoPedra/painelAtividades/internal/api/handlers"
	"github.com/LuisEduardoPedra/painelAtividades/internal/api/middleware"
	"github.com/gin-gonic/gin"
)

// NewRouter monta as rotas públicas e as protegidas por JWT. As rotas que
// alteram as atividades exigem ainda a permissão de edição.
func NewRouter(jwtSecret []byte, authHandler *handlers.AuthHandler, activityHandler *handlers.ActivityHandler) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), middleware.RequestID(), middleware.Logger(), middleware.CORS())

	apiV1 := router.Group("/api/v1")
	{
		apiV1.POST("/login", authHandler.Login)
		protected := apiV1.Group("/")
		protected.Use(middleware.AuthMiddleware(jwtSecret))
		{
			editor := protected.Group("/atividades", middleware.PermissionMiddleware(middleware.PermissaoEditar))
			editor.POST("/upload", activityHandler.HandleUpload)
			editor.POST("/refresh", activityHandler.HandleRefresh)
			editor.PUT("", activityHandler.HandleEdit)
			editor.DELETE("", activityHandler.HandleClear)
			protected.GET("/painel", activityHandler.HandlePainel)
			protected.GET("/tabela", activityHandler.HandleTabela)
			protected.GET("/mapa", activityHandler.HandleMapa)
			protected.GET("/export", activityHandler.HandleExport)
		}
	}
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "UP"})
	})

	return router
}
