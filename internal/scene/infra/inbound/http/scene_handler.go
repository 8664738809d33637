package http

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	lf "github.com/davicafu/medialist/internal/listfilter/domain"
	"github.com/davicafu/medialist/internal/scene/application"
	sceneDomain "github.com/davicafu/medialist/internal/scene/domain"
	"github.com/davicafu/medialist/pkg/utils"
)

// SceneHandler encapsula los endpoints HTTP relacionados con Scene.
type SceneHandler struct {
	service *application.SceneService
	codec   *lf.Codec
}

// NewSceneHandler crea un nuevo SceneHandler.
func NewSceneHandler(service *application.SceneService, codec *lf.Codec) *SceneHandler {
	return &SceneHandler{service: service, codec: codec}
}

// FilterPreview es la traducción de una URL de lista, sin consultar nada.
type FilterPreview struct {
	FindFilter  lf.FindFilter       `json:"find_filter"`
	SceneFilter lf.AttributeFilter  `json:"scene_filter"`
	Query       string              `json:"query"`
	QueryParams map[string][]string `json:"query_params"`
}

func (h *SceneHandler) modelFromRequest(c *gin.Context) *lf.ListFilterModel {
	return h.codec.New(c.Request.URL.Query(), sceneDomain.DefaultSceneSort, nil)
}

// FindScenes endpoint GET /scenes?<parámetros de lista>
func (h *SceneHandler) FindScenes(c *gin.Context) {
	result, err := h.service.FindScenes(c.Request.Context(), h.modelFromRequest(c))
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

// PreviewFilter endpoint GET /scenes/filter?<parámetros de lista>
func (h *SceneHandler) PreviewFilter(c *gin.Context) {
	model := h.modelFromRequest(c)

	utils.SendSuccess(c, http.StatusOK, FilterPreview{
		FindFilter:  model.ToFindFilter(),
		SceneFilter: model.ToAttributeFilter(),
		Query:       model.ToQueryString(),
		QueryParams: model.ToQueryParameters(),
	})
}

// CreateScene endpoint POST /scenes
func (h *SceneHandler) CreateScene(c *gin.Context) {
	var req application.CreateSceneInput
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.SendBadRequest(c, err.Error())
		return
	}

	scene, err := h.service.CreateScene(c.Request.Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, sceneDomain.ErrInvalidScene):
			utils.SendBadRequest(c, err.Error())
		case errors.Is(err, sceneDomain.ErrSceneAlreadyExists):
			utils.SendConflict(c, err.Error())
		default:
			utils.SendInternalServerError(c, err.Error())
		}
		return
	}

	utils.SendSuccess(c, http.StatusCreated, scene)
}

// GetScene endpoint GET /scenes/:id
func (h *SceneHandler) GetScene(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.SendBadRequest(c, "invalid scene id")
		return
	}

	scene, err := h.service.GetScene(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, sceneDomain.ErrSceneNotFound) {
			utils.SendNotFound(c, "scene not found")
			return
		}
		utils.SendInternalServerError(c, err.Error())
		return
	}

	utils.SendSuccess(c, http.StatusOK, scene)
}

// TopCriteria endpoint GET /scenes/analytics/top-criteria?hours=24&limit=10
func (h *SceneHandler) TopCriteria(c *gin.Context) {
	hours, err := strconv.Atoi(c.DefaultQuery("hours", "24"))
	if err != nil || hours <= 0 {
		utils.SendBadRequest(c, "invalid hours")
		return
	}
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "10"))
	if err != nil || limit <= 0 {
		utils.SendBadRequest(c, "invalid limit")
		return
	}

	top, err := h.service.TopCriteria(c.Request.Context(), time.Duration(hours)*time.Hour, limit)
	if err != nil {
		if errors.Is(err, application.ErrAnalyticsDisabled) {
			utils.SendServiceUnavailable(c, err.Error())
			return
		}
		utils.SendInternalServerError(c, err.Error())
		return
	}

	utils.SendSuccess(c, http.StatusOK, top)
}
