// internal/api/handlers/activity_handler.go
package handlers

import (
	"bytes"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/LuisEduardoPedra/painelAtividades/internal/api/middleware"
	"github.com/LuisEduardoPedra/painelAtividades/internal/api/responses"
	"github.com/LuisEduardoPedra/painelAtividades/internal/core/activity"
	"github.com/LuisEduardoPedra/painelAtividades/internal/core/dashboard"
	"github.com/LuisEduardoPedra/painelAtividades/internal/core/export"
	"github.com/LuisEduardoPedra/painelAtividades/internal/core/ingest"
	"github.com/LuisEduardoPedra/painelAtividades/internal/domain"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// ActivityHandler expõe o painel de atividades.
type ActivityHandler struct {
	service   dashboard.Service
	maxUpload int64
}

func NewActivityHandler(service dashboard.Service, maxUpload int64) *ActivityHandler {
	return &ActivityHandler{service: service, maxUpload: maxUpload}
}

// filtersFromQuery lê os filtros da query string. Listas podem repetir o
// parâmetro (?tecnico=A&tecnico=B).
func filtersFromQuery(c *gin.Context) domain.FilterState {
	return domain.FilterState{
		Technicians:   c.QueryArray("tecnico"),
		ActivityTypes: c.QueryArray("tipo"),
		Cities:        c.QueryArray("cidade"),
		Productivity:  domain.Produtividade(c.DefaultQuery("produtividade", string(domain.ProdutividadeTodas))),
		SearchText:    c.Query("q"),
		StartDate:     c.Query("inicio"),
		EndDate:       c.Query("fim"),
	}
}

// HandleUpload recebe os arquivos do campo "files" e substitui o conjunto
// de trabalho.
func (h *ActivityHandler) HandleUpload(c *gin.Context) {
	if h.maxUpload > 0 {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxUpload)
	}
	form, err := c.MultipartForm()
	if err != nil {
		responses.Error(c, http.StatusBadRequest, "Formulário inválido ou arquivo grande demais")
		return
	}
	headers := form.File["files"]
	if len(headers) == 0 {
		responses.Error(c, http.StatusBadRequest, "Nenhum arquivo foi enviado")
		return
	}

	files := make([]ingest.File, 0, len(headers))
	for _, header := range headers {
		f, err := header.Open()
		if err != nil {
			responses.Error(c, http.StatusInternalServerError, "Não foi possível abrir o arquivo", header.Filename)
			return
		}
		data, err := io.ReadAll(f)
		f.Close()
		if err != nil {
			responses.Error(c, http.StatusInternalServerError, "Não foi possível ler o arquivo", header.Filename)
			return
		}
		files = append(files, ingest.File{Name: header.Filename, Data: data})
	}

	progress := func(file string, pct int) {
		zap.L().Debug("progresso da ingestão", zap.String("arquivo", file), zap.Int("pct", pct))
	}
	result, err := h.service.Upload(c.Request.Context(), files, progress)
	if err != nil {
		var details []string
		if result != nil {
			for _, f := range result.Files {
				if f.Error != "" {
					details = append(details, f.Error)
				}
			}
		}
		if len(details) == 0 {
			details = []string{err.Error()}
		}
		responses.Error(c, http.StatusUnprocessableEntity, "Nenhum dado válido encontrado nos arquivos", details...)
		return
	}

	c.JSON(http.StatusOK, result)
}

func (h *ActivityHandler) HandleRefresh(c *gin.Context) {
	n, err := h.service.Refresh(c.Request.Context())
	if errors.Is(err, dashboard.ErrSemOrigem) {
		responses.Error(c, http.StatusNotImplemented, err.Error())
		return
	}
	if err != nil {
		responses.Error(c, http.StatusBadGateway, "Erro ao buscar dados", err.Error())
		return
	}
	c.JSON(http.StatusOK, gin.H{"registros": n})
}

func (h *ActivityHandler) HandlePainel(c *gin.Context) {
	c.JSON(http.StatusOK, h.service.Painel(dashboard.Query{
		Filters:      filtersFromQuery(c),
		SelectedType: c.Query("tipoSelecionado"),
	}))
}

func (h *ActivityHandler) HandleTabela(c *gin.Context) {
	page, _ := strconv.Atoi(c.Query("pagina"))
	order := activity.ParseSortOrder(c.Query("ordem"))
	c.JSON(http.StatusOK, h.service.Table(middleware.Username(c), filtersFromQuery(c), order, page))
}

func (h *ActivityHandler) HandleMapa(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"pontos": h.service.Map(c.Request.Context(), filtersFromQuery(c))})
}

func (h *ActivityHandler) HandleExport(c *gin.Context) {
	format, err := export.ParseFormat(c.Query("formato"))
	if err != nil {
		responses.Error(c, http.StatusBadRequest, err.Error())
		return
	}

	var buf bytes.Buffer
	err = h.service.Export(&buf, format, filtersFromQuery(c))
	if errors.Is(err, export.ErrSemDados) {
		responses.Error(c, http.StatusNotFound, err.Error())
		return
	}
	if err != nil {
		responses.Error(c, http.StatusInternalServerError, "Erro ao exportar", err.Error())
		return
	}

	c.Header("Content-Disposition", "attachment; filename="+format.FileName())
	c.Data(http.StatusOK, format.ContentType(), buf.Bytes())
}

type editRequest struct {
	Key    domain.CompositeKey `json:"chave"`
	Code   string              `json:"cod_baixa"`
	Status domain.Status       `json:"status"`
}

func (h *ActivityHandler) HandleEdit(c *gin.Context) {
	var req editRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		responses.Error(c, http.StatusBadRequest, "Corpo da requisição inválido", err.Error())
		return
	}
	if req.Status != "" {
		s, ok := domain.ParseStatus(string(req.Status))
		if !ok {
			responses.Error(c, http.StatusBadRequest, "Status inválido", string(req.Status))
			return
		}
		req.Status = s
	}

	n, err := h.service.Edit(req.Key, domain.Draft{Code: req.Code, Status: req.Status})
	switch {
	case errors.Is(err, dashboard.ErrChaveInvalida):
		responses.Error(c, http.StatusBadRequest, err.Error())
		return
	case errors.Is(err, dashboard.ErrRegistroNaoEncontrado):
		responses.Error(c, http.StatusNotFound, err.Error())
		return
	case err != nil:
		responses.Error(c, http.StatusInternalServerError, err.Error())
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"atualizados":    n,
		"status":         activity.ClassifyDraft(nil, &domain.Draft{Code: req.Code, Status: req.Status}),
		"statusEditavel": activity.StatusEditable(req.Code),
	})
}

func (h *ActivityHandler) HandleClear(c *gin.Context) {
	h.service.Clear()
	c.Status(http.StatusNoContent)
}
