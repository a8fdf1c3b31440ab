package routes

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Avinkovic23/local-llm-project/internal/config"
	"github.com/Avinkovic23/local-llm-project/middleware"
	"github.com/Avinkovic23/local-llm-project/models"
	"github.com/Avinkovic23/local-llm-project/services"
	"github.com/Avinkovic23/local-llm-project/utils"
)

func SetupAskRoutes(router *gin.Engine, cfg *config.Config, pipeline *services.Pipeline, authMiddleware *middleware.AuthMiddleware) {
	// Query-time auth is a deployment switch: one variant requires a
	// valid token, the other answers anonymous questions.
	askAuth := authMiddleware.OptionalAuth()
	if cfg.AskAuthRequired {
		askAuth = authMiddleware.RequireAuth()
	}

	router.POST("/ask", askAuth, func(c *gin.Context) {
		var req models.QuestionRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			utils.RespondWithError(c, http.StatusBadRequest, "invalid_input", "Invalid request data", gin.H{"error": err.Error()})
			return
		}

		answer, err := pipeline.Answer(c.Request.Context(), req.Question)
		if err != nil {
			if errors.Is(err, services.ErrNoIndex) {
				utils.RespondWithError(c, http.StatusBadRequest, "no_index_available", services.NoIndexMessage, nil)
				return
			}
			utils.RespondWithError(c, http.StatusInternalServerError, "generation_failed", "Failed to generate a response", gin.H{"error": err.Error()})
			return
		}

		c.JSON(http.StatusOK, models.AnswerResponse{Response: answer})
	})
}
