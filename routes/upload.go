package routes

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Avinkovic23/local-llm-project/internal/config"
	"github.com/Avinkovic23/local-llm-project/middleware"
	"github.com/Avinkovic23/local-llm-project/models"
	"github.com/Avinkovic23/local-llm-project/services"
	"github.com/Avinkovic23/local-llm-project/utils"
)

func SetupUploadRoutes(router *gin.Engine, cfg *config.Config, pipeline *services.Pipeline, authMiddleware *middleware.AuthMiddleware, roleMiddleware *middleware.RoleMiddleware) {
	router.POST("/upload-pdf",
		authMiddleware.RequireAuth(),
		roleMiddleware.AdminGuard(),
		func(c *gin.Context) {
			fileHeader, err := c.FormFile("file")
			if err != nil {
				utils.RespondWithError(c, http.StatusBadRequest, "invalid_input", "Missing file upload", gin.H{"error": err.Error()})
				return
			}

			if fileHeader.Size > cfg.MaxFileSize {
				utils.RespondWithError(c, http.StatusBadRequest, "file_too_large",
					fmt.Sprintf("File exceeds the %d byte limit", cfg.MaxFileSize), nil)
				return
			}

			file, err := fileHeader.Open()
			if err != nil {
				utils.RespondWithInternalError(c, "Failed to read uploaded file", nil)
				return
			}
			defer file.Close()

			contentType := fileHeader.Header.Get("Content-Type")
			err = pipeline.Ingest(c.Request.Context(), fileHeader.Filename, contentType, file)
			if err != nil {
				switch {
				case errors.Is(err, services.ErrUnsupportedMedia):
					utils.RespondWithError(c, http.StatusBadRequest, "unsupported_media_type", "Only PDF files are allowed.", nil)
				case errors.Is(err, services.ErrIndexBuild):
					utils.RespondWithError(c, http.StatusInternalServerError, "index_build_failed",
						"Failed to rebuild the index; previous documents remain searchable", gin.H{"error": err.Error()})
				default:
					utils.RespondWithInternalError(c, "Failed to store the uploaded file", gin.H{"error": err.Error()})
				}
				return
			}

			c.JSON(http.StatusOK, models.UploadResponse{
				Message: fmt.Sprintf("'%s' uploaded successfully.", fileHeader.Filename),
			})
		})
}
