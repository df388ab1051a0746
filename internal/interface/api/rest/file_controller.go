package rest

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"file-share-api/internal/application/ports"
	"file-share-api/internal/interface/api/rest/dto/file"
	"file-share-api/internal/interface/api/rest/middleware"
	"file-share-api/internal/interface/api/rest/validator"
)

// room for the multipart envelope around the file part
const multipartOverhead = int64(1 << 20)

type FileController struct {
	fileShareService ports.FileShareService
	logger           *zap.Logger
	shareURL         func(token string) string
	maxUploadBytes   int64
}

func NewFileController(
	r *gin.Engine,
	fileShareService ports.FileShareService,
	logger *zap.Logger,
	verifier ports.IdentityVerifier,
	shareURL func(token string) string,
	maxUploadBytes int64,
) *FileController {
	fc := &FileController{
		fileShareService: fileShareService,
		logger:           logger,
		shareURL:         shareURL,
		maxUploadBytes:   maxUploadBytes,
	}

	auth := middleware.AuthMiddleware(verifier, logger)
	r.POST(RouteFiles, auth, fc.UploadFileHandler)
	r.GET(RouteFiles, auth, fc.ListFilesHandler)
	r.GET(RouteFile, auth, fc.GetFileHandler)
	r.DELETE(RouteFile, auth, fc.DeleteFileHandler)

	return fc
}

func (fc *FileController) UploadFileHandler(c *gin.Context) {
	if fc.maxUploadBytes > 0 {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, fc.maxUploadBytes+multipartOverhead)
	}

	fh, err := c.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "file too large"})
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": "file is required"})
		return
	}
	if fc.maxUploadBytes > 0 && fh.Size > fc.maxUploadBytes {
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "file too large"})
		return
	}
	if err = validator.ValidateFileName(fh.Filename); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	content, err := fh.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "cannot read file"})
		return
	}
	defer content.Close()

	f, err := fc.fileShareService.Upload(c.Request.Context(), ports.UploadInput{
		OwnerID:   middleware.UserID(c),
		Name:      fh.Filename,
		MimeType:  validator.NormalizeMimeType(fh.Header.Get("Content-Type")),
		SizeBytes: fh.Size,
		Content:   content,
	})
	if err != nil {
		writeError(c, fc.logger, "Upload()", err)
		return
	}

	c.JSON(http.StatusCreated, file.ToResponseFile(*f, fc.shareURL))
}

func (fc *FileController) ListFilesHandler(c *gin.Context) {
	fls, err := fc.fileShareService.ListFiles(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		writeError(c, fc.logger, "ListFiles()", err)
		return
	}

	c.JSON(http.StatusOK, file.ResponseData{
		Data: file.ToResponseFiles(fls, fc.shareURL),
	})
}

func (fc *FileController) GetFileHandler(c *gin.Context) {
	ok, id := validator.IsUUID(c.Param("file_id"))
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file_id must be a valid UUID"})
		return
	}

	f, err := fc.fileShareService.GetFile(c.Request.Context(), middleware.UserID(c), id)
	if err != nil {
		writeError(c, fc.logger, "GetFile()", err)
		return
	}

	c.JSON(http.StatusOK, file.ToResponseFile(*f, fc.shareURL))
}

func (fc *FileController) DeleteFileHandler(c *gin.Context) {
	ok, id := validator.IsUUID(c.Param("file_id"))
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file_id must be a valid UUID"})
		return
	}

	if err := fc.fileShareService.DeleteFile(c.Request.Context(), middleware.UserID(c), id); err != nil {
		writeError(c, fc.logger, "DeleteFile()", err)
		return
	}

	c.Status(http.StatusNoContent)
}
