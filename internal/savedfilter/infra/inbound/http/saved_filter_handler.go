package http

import (
	"errors"
	"net/http"
	"net/url"
	"strings"

	"github.com/gin-gonic/gin"

	lf "github.com/davicafu/medialist/internal/listfilter/domain"
	"github.com/davicafu/medialist/internal/savedfilter/application"
	sfDomain "github.com/davicafu/medialist/internal/savedfilter/domain"
	sceneApp "github.com/davicafu/medialist/internal/scene/application"
	sceneDomain "github.com/davicafu/medialist/internal/scene/domain"
	"github.com/davicafu/medialist/pkg/utils"
)

// SavedFilterHandler encapsula los endpoints HTTP de los filtros guardados.
type SavedFilterHandler struct {
	service *application.SavedFilterService
	scenes  *sceneApp.SceneService
	codec   *lf.Codec
}

func NewSavedFilterHandler(service *application.SavedFilterService, scenes *sceneApp.SceneService, codec *lf.Codec) *SavedFilterHandler {
	return &SavedFilterHandler{service: service, scenes: scenes, codec: codec}
}

// SaveFilterRequest acepta los parámetros como query string o ya separados.
type SaveFilterRequest struct {
	Mode   string              `json:"mode" binding:"required"`
	Name   string              `json:"name" binding:"required"`
	Query  string              `json:"query"`
	Params map[string][]string `json:"params"`
}

// SaveFilter endpoint POST /saved-filters
func (h *SavedFilterHandler) SaveFilter(c *gin.Context) {
	var req SaveFilterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.SendBadRequest(c, err.Error())
		return
	}

	mode, err := sfDomain.ParseFilterMode(req.Mode)
	if err != nil {
		utils.SendBadRequest(c, err.Error())
		return
	}

	params := url.Values(req.Params)
	if params == nil {
		params, err = url.ParseQuery(strings.TrimPrefix(req.Query, "?"))
		if err != nil {
			utils.SendBadRequest(c, "invalid query: "+err.Error())
			return
		}
	}

	model := h.codec.New(params, mode.DefaultSort(), nil)
	saved, err := h.service.Save(c.Request.Context(), mode, req.Name, model)
	if err != nil {
		h.sendError(c, err)
		return
	}

	utils.SendSuccess(c, http.StatusCreated, saved)
}

// ListFilters endpoint GET /saved-filters?mode=SCENES
func (h *SavedFilterHandler) ListFilters(c *gin.Context) {
	mode, err := sfDomain.ParseFilterMode(c.Query("mode"))
	if err != nil {
		utils.SendBadRequest(c, err.Error())
		return
	}

	filters, err := h.service.List(c.Request.Context(), mode)
	if err != nil {
		h.sendError(c, err)
		return
	}
	utils.SendSuccess(c, http.StatusOK, filters)
}

// GetFilter endpoint GET /saved-filters/:id
func (h *SavedFilterHandler) GetFilter(c *gin.Context) {
	filter, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.sendError(c, err)
		return
	}
	utils.SendSuccess(c, http.StatusOK, filter)
}

// FindScenes endpoint GET /saved-filters/:id/scenes ejecuta un filtro de escenas.
func (h *SavedFilterHandler) FindScenes(c *gin.Context) {
	model, filter, err := h.service.Load(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.sendError(c, err)
		return
	}
	if filter.Mode != sfDomain.ModeScenes {
		utils.SendBadRequest(c, "saved filter mode is "+string(filter.Mode)+", not SCENES")
		return
	}

	result, err := h.scenes.FindScenes(c.Request.Context(), model)
	if err != nil {
		if errors.Is(err, sceneDomain.ErrInvalidSort) {
			utils.SendBadRequest(c, err.Error())
			return
		}
		utils.SendInternalServerError(c, err.Error())
		return
	}
	utils.SendSuccess(c, http.StatusOK, result)
}

// DeleteFilter endpoint DELETE /saved-filters/:id
func (h *SavedFilterHandler) DeleteFilter(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), c.Param("id")); err != nil {
		h.sendError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *SavedFilterHandler) sendError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, sfDomain.ErrSavedFilterNotFound):
		utils.SendNotFound(c, "saved filter not found")
	case errors.Is(err, sfDomain.ErrInvalidSavedFilter):
		utils.SendBadRequest(c, err.Error())
	case errors.Is(err, sfDomain.ErrSavedFilterAlreadyExists):
		utils.SendConflict(c, err.Error())
	default:
		utils.SendInternalServerError(c, err.Error())
	}
}
