package rest

import (
	"bytes"
	"context"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	jwtv5 "github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"

	"file-share-api/internal/application/ports"
	domain "file-share-api/internal/domain/file"
)

const testSecret = "test-secret"

type FakeFileShareService struct {
	UploadFunc        func(ctx context.Context, in ports.UploadInput) (*domain.File, error)
	ListFilesFunc     func(ctx context.Context, ownerID string) (domain.Files, error)
	GetFileFunc       func(ctx context.Context, callerID string, id domain.ID) (*domain.File, error)
	DeleteFileFunc    func(ctx context.Context, callerID string, id domain.ID) error
	ResolveShareFunc  func(ctx context.Context, token string) (*ports.ShareView, error)
	DownloadShareFunc func(ctx context.Context, token string) (*ports.Download, error)
}

func (f *FakeFileShareService) Upload(ctx context.Context, in ports.UploadInput) (*domain.File, error) {
	if f.UploadFunc == nil {
		return nil, errors.New("not used")
	}
	return f.UploadFunc(ctx, in)
}
func (f *FakeFileShareService) ListFiles(ctx context.Context, ownerID string) (domain.Files, error) {
	if f.ListFilesFunc == nil {
		return nil, errors.New("not used")
	}
	return f.ListFilesFunc(ctx, ownerID)
}
func (f *FakeFileShareService) GetFile(ctx context.Context, callerID string, id domain.ID) (*domain.File, error) {
	if f.GetFileFunc == nil {
		return nil, errors.New("not used")
	}
	return f.GetFileFunc(ctx, callerID, id)
}
func (f *FakeFileShareService) DeleteFile(ctx context.Context, callerID string, id domain.ID) error {
	if f.DeleteFileFunc == nil {
		return errors.New("not used")
	}
	return f.DeleteFileFunc(ctx, callerID, id)
}
func (f *FakeFileShareService) ResolveShare(ctx context.Context, token string) (*ports.ShareView, error) {
	if f.ResolveShareFunc == nil {
		return nil, errors.New("not used")
	}
	return f.ResolveShareFunc(ctx, token)
}
func (f *FakeFileShareService) DownloadShare(ctx context.Context, token string) (*ports.Download, error) {
	if f.DownloadShareFunc == nil {
		return nil, errors.New("not used")
	}
	return f.DownloadShareFunc(ctx, token)
}

func SignJWT(secret, userID string, exp time.Duration) (string, error) {
	claims := jwtv5.RegisteredClaims{
		Subject:   userID,
		ExpiresAt: jwtv5.NewNumericDate(time.Now().Add(exp)),
	}
	token := jwtv5.NewWithClaims(jwtv5.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

func withAuth(t *testing.T, secret, userID string) map[string]string {
	t.Helper()
	tok, err := SignJWT(secret, userID, time.Hour)
	require.NoError(t, err)
	return map[string]string{"Authorization": "Bearer " + tok}
}

func doReq(t *testing.T, r *gin.Engine, method, path string, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()

	req, err := http.NewRequest(method, path, nil)
	require.NoError(t, err)
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)
	return rr
}

func doMultipartReq(t *testing.T, r *gin.Engine, path, fileField, fileName string, fileContent []byte, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()

	var b bytes.Buffer
	w := multipart.NewWriter(&b)

	if fileField != "" && fileContent != nil {
		fw, err := w.CreateFormFile(fileField, fileName)
		require.NoError(t, err)
		_, err = io.Copy(fw, bytes.NewReader(fileContent))
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())

	req, err := http.NewRequest(http.MethodPost, path, &b)
	require.NoError(t, err)
	req.Header.Set("Content-Type", w.FormDataContentType())
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)
	return rr
}
