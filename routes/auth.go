package routes

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Avinkovic23/local-llm-project/internal/config"
	"github.com/Avinkovic23/local-llm-project/internal/database"
	"github.com/Avinkovic23/local-llm-project/models"
	"github.com/Avinkovic23/local-llm-project/utils"
)

func SetupAuthRoutes(router *gin.Engine, cfg *config.Config, users *database.UserStore) {
	// Login endpoint
	router.POST("/login", func(c *gin.Context) {
		var req models.LoginRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			utils.RespondWithError(c, http.StatusBadRequest, "invalid_input", "Invalid request data", gin.H{"error": err.Error()})
			return
		}

		// Unknown user and wrong password get the same response.
		user, err := users.GetUserByUsername(c.Request.Context(), req.Username)
		if err != nil {
			utils.RespondWithError(c, http.StatusUnauthorized, "invalid_credentials", "Invalid credentials.", nil)
			return
		}

		if !utils.CheckPassword(req.Password, user.PasswordHash) {
			utils.RespondWithError(c, http.StatusUnauthorized, "invalid_credentials", "Invalid credentials.", nil)
			return
		}

		expiresIn := time.Duration(cfg.TokenExpiration) * time.Minute
		token, err := utils.GenerateJWT(user.Username, user.Role, cfg.JWTSecret, expiresIn)
		if err != nil {
			utils.RespondWithInternalError(c, "Failed to generate token", nil)
			return
		}

		c.JSON(http.StatusOK, models.LoginResponse{
			AccessToken: token,
			TokenType:   "bearer",
		})
	})
}
