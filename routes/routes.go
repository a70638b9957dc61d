package routes

import (
	"net/http"

	"medivoice/handlers"

	"github.com/gin-gonic/gin"
)

// RegisterVoiceRoutes registers the conversational intake endpoints.
func RegisterVoiceRoutes(r *gin.Engine, vh *handlers.VoiceHandler) {
	api := r.Group("/api/voice")
	{
		api.POST("/process", vh.ProcessTurnHandler)
	}
}

// RegisterHealthRoute registers a health-check endpoint.
func RegisterHealthRoute(r *gin.Engine) {
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "message": "Hi, I'm MediVoice"})
	})
}
