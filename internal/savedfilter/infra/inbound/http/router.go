package http

import "github.com/gin-gonic/gin"

// RegisterSavedFilterRoutes registra las rutas HTTP de los filtros guardados.
func RegisterSavedFilterRoutes(r *gin.Engine, handler *SavedFilterHandler) {
	filters := r.Group("/saved-filters")
	{
		filters.POST("", handler.SaveFilter)           // Guardar (o sobrescribir por nombre)
		filters.GET("", handler.ListFilters)           // Listar por modo
		filters.GET("/:id", handler.GetFilter)         // Obtener por ID
		filters.GET("/:id/scenes", handler.FindScenes) // Ejecutar un filtro de escenas
		filters.DELETE("/:id", handler.DeleteFilter)   // Borrar
	}
}
