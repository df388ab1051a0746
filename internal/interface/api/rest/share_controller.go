package rest

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"file-share-api/internal/application/ports"
	"file-share-api/internal/interface/api/rest/dto/file"
	"file-share-api/internal/interface/api/rest/validator"
)

// ShareController serves the public, unauthenticated share endpoints.
type ShareController struct {
	fileShareService ports.FileShareService
	logger           *zap.Logger
}

func NewShareController(
	r *gin.Engine,
	fileShareService ports.FileShareService,
	logger *zap.Logger,
) *ShareController {
	sc := &ShareController{
		fileShareService: fileShareService,
		logger:           logger,
	}

	r.GET(RouteShare, sc.ResolveShareHandler)
	r.GET(RouteShareDownload, sc.DownloadShareHandler)

	return sc
}

func (sc *ShareController) ResolveShareHandler(c *gin.Context) {
	token := c.Param("share_token")
	if !validator.IsShareToken(token) {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		return
	}

	view, err := sc.fileShareService.ResolveShare(c.Request.Context(), token)
	if err != nil {
		writeError(c, sc.logger, "ResolveShare()", err)
		return
	}

	c.JSON(http.StatusOK, file.ToResponseShare(*view, ShareDownloadPath(token)))
}

// DownloadShareHandler returns a short-lived URL for the bytes. With
// ?redirect=true the client is sent straight to it.
func (sc *ShareController) DownloadShareHandler(c *gin.Context) {
	token := c.Param("share_token")
	if !validator.IsShareToken(token) {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		return
	}

	dl, err := sc.fileShareService.DownloadShare(c.Request.Context(), token)
	if err != nil {
		writeError(c, sc.logger, "DownloadShare()", err)
		return
	}

	c.Header("Cache-Control", "no-store")
	if c.Query("redirect") == "true" {
		c.Redirect(http.StatusFound, dl.URL)
		return
	}

	c.JSON(http.StatusOK, file.ToResponseDownload(*dl))
}
