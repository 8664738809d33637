package http

import "github.com/gin-gonic/gin"

// RegisterSceneRoutes registra las rutas HTTP para el dominio de escenas.
func RegisterSceneRoutes(r *gin.Engine, handler *SceneHandler) {
	scenes := r.Group("/scenes")
	{
		scenes.GET("", handler.FindScenes)                         // Lista filtrada
		scenes.POST("", handler.CreateScene)                       // Crear una escena
		scenes.GET("/filter", handler.PreviewFilter)               // Traducción de la URL
		scenes.GET("/analytics/top-criteria", handler.TopCriteria) // Criterios más usados
		scenes.GET("/:id", handler.GetScene)                       // Obtener una escena por su ID
	}
}
