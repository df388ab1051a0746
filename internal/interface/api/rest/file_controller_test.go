package rest

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"file-share-api/internal/application/ports"
	domain "file-share-api/internal/domain/file"
	jwtSvc "file-share-api/internal/infrastructure/jwt"
	dto "file-share-api/internal/interface/api/rest/dto/file"
)

func setupFileRouter(t *testing.T, fs ports.FileShareService, maxUpload int64) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	r := gin.New()
	NewFileController(
		r,
		fs,
		zap.NewNop(),
		jwtSvc.New(testSecret),
		func(token string) string { return "https://share.test/view/" + token },
		maxUpload,
	)

	return r
}

func sampleFile(owner string) *domain.File {
	return &domain.File{
		ID:          uuid.New(),
		OwnerID:     owner,
		Name:        "doc.pdf",
		MimeType:    "application/pdf",
		SizeBytes:   7,
		StoragePath: owner + "/1-doc.pdf",
		ShareToken:  "AbCdEf_-12",
		CreatedAt:   time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC),
	}
}

func TestFileController_UploadFileHandler(t *testing.T) {
	tests := []struct {
		name       string
		headers    map[string]string
		fileField  string
		fileBytes  []byte
		maxUpload  int64
		mockFS     func(t *testing.T) ports.FileShareService
		wantStatus int
		wantErr    string
	}{
		{
			name:       "401 missing Authorization",
			fileField:  "file",
			fileBytes:  []byte("%PDF..."),
			mockFS:     func(t *testing.T) ports.FileShareService { return &FakeFileShareService{} },
			wantStatus: http.StatusUnauthorized,
			wantErr:    "missing Authorization header",
		},
		{
			name:       "401 invalid format",
			headers:    map[string]string{"Authorization": "Token abc"},
			fileField:  "file",
			fileBytes:  []byte("%PDF..."),
			mockFS:     func(t *testing.T) ports.FileShareService { return &FakeFileShareService{} },
			wantStatus: http.StatusUnauthorized,
			wantErr:    "invalid token format",
		},
		{
			name:       "401 bad signature",
			headers:    withAuth(t, "other-secret", "owner-a"),
			fileField:  "file",
			fileBytes:  []byte("%PDF..."),
			mockFS:     func(t *testing.T) ports.FileShareService { return &FakeFileShareService{} },
			wantStatus: http.StatusUnauthorized,
			wantErr:    "invalid token",
		},
		{
			name:       "400 file is required",
			headers:    withAuth(t, testSecret, "owner-a"),
			mockFS:     func(t *testing.T) ports.FileShareService { return &FakeFileShareService{} },
			wantStatus: http.StatusBadRequest,
			wantErr:    "file is required",
		},
		{
			name:       "413 too large",
			headers:    withAuth(t, testSecret, "owner-a"),
			fileField:  "file",
			fileBytes:  make([]byte, 64),
			maxUpload:  16,
			mockFS:     func(t *testing.T) ports.FileShareService { return &FakeFileShareService{} },
			wantStatus: http.StatusRequestEntityTooLarge,
			wantErr:    "file too large",
		},
		{
			name:      "502 storage failure",
			headers:   withAuth(t, testSecret, "owner-a"),
			fileField: "file",
			fileBytes: []byte("%PDF..."),
			mockFS: func(t *testing.T) ports.FileShareService {
				return &FakeFileShareService{
					UploadFunc: func(ctx context.Context, in ports.UploadInput) (*domain.File, error) {
						return nil, fmt.Errorf("store object: %w", domain.ErrStorage)
					},
				}
			},
			wantStatus: http.StatusBadGateway,
			wantErr:    "storage unavailable",
		},
		{
			name:      "503 token exhausted",
			headers:   withAuth(t, testSecret, "owner-a"),
			fileField: "file",
			fileBytes: []byte("%PDF..."),
			mockFS: func(t *testing.T) ports.FileShareService {
				return &FakeFileShareService{
					UploadFunc: func(ctx context.Context, in ports.UploadInput) (*domain.File, error) {
						return nil, domain.ErrShareTokenExhausted
					},
				}
			},
			wantStatus: http.StatusServiceUnavailable,
			wantErr:    "could not allocate share token, retry",
		},
		{
			name:      "500 registry failure",
			headers:   withAuth(t, testSecret, "owner-a"),
			fileField: "file",
			fileBytes: []byte("%PDF..."),
			mockFS: func(t *testing.T) ports.FileShareService {
				return &FakeFileShareService{
					UploadFunc: func(ctx context.Context, in ports.UploadInput) (*domain.File, error) {
						return nil, errors.New("db error")
					},
				}
			},
			wantStatus: http.StatusInternalServerError,
			wantErr:    "internal error",
		},
		{
			name:      "201 success",
			headers:   withAuth(t, testSecret, "owner-a"),
			fileField: "file",
			fileBytes: []byte("%PDF..."),
			mockFS: func(t *testing.T) ports.FileShareService {
				return &FakeFileShareService{
					UploadFunc: func(ctx context.Context, in ports.UploadInput) (*domain.File, error) {
						assert.Equal(t, "owner-a", in.OwnerID)
						assert.Equal(t, "doc.pdf", in.Name)
						assert.Equal(t, int64(7), in.SizeBytes)
						assert.Equal(t, "application/octet-stream", in.MimeType)
						b, err := io.ReadAll(in.Content)
						require.NoError(t, err)
						assert.Equal(t, "%PDF...", string(b))
						return sampleFile(in.OwnerID), nil
					},
				}
			},
			wantStatus: http.StatusCreated,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			limit := tt.maxUpload
			if limit == 0 {
				limit = 1 << 20
			}
			r := setupFileRouter(t, tt.mockFS(t), limit)
			rr := doMultipartReq(t, r, RouteFiles, tt.fileField, "doc.pdf", tt.fileBytes, tt.headers)
			require.Equal(t, tt.wantStatus, rr.Code, rr.Body.String())

			if tt.wantErr != "" {
				var resp map[string]any
				_ = json.Unmarshal(rr.Body.Bytes(), &resp)
				assert.Equal(t, tt.wantErr, resp["error"])
				return
			}

			var got dto.File
			require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &got))
			assert.Equal(t, "AbCdEf_-12", got.ShareToken)
			assert.Equal(t, "https://share.test/view/AbCdEf_-12", got.ShareURL)
		})
	}
}

func TestFileController_ListFilesHandler(t *testing.T) {
	fs := &FakeFileShareService{
		ListFilesFunc: func(ctx context.Context, ownerID string) (domain.Files, error) {
			return domain.Files{sampleFile(ownerID), sampleFile(ownerID)}, nil
		},
	}
	r := setupFileRouter(t, fs, 1<<20)

	rr := doReq(t, r, http.MethodGet, RouteFiles, withAuth(t, testSecret, "owner-a"))
	require.Equal(t, http.StatusOK, rr.Code)

	var resp dto.ResponseData
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	require.Len(t, resp.Data, 2)
	assert.Equal(t, "doc.pdf", resp.Data[0].Name)

	rr = doReq(t, r, http.MethodGet, RouteFiles, nil)
	require.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestFileController_GetFileHandler(t *testing.T) {
	owned := sampleFile("owner-a")
	fs := &FakeFileShareService{
		GetFileFunc: func(ctx context.Context, callerID string, id domain.ID) (*domain.File, error) {
			switch {
			case id != owned.ID:
				return nil, domain.ErrNotFound
			case callerID != owned.OwnerID:
				return nil, domain.ErrUnauthorized
			}
			return owned, nil
		},
	}
	r := setupFileRouter(t, fs, 1<<20)

	tests := []struct {
		name       string
		path       string
		caller     string
		wantStatus int
	}{
		{"200 owner", RouteFiles + "/" + owned.ID.String(), "owner-a", http.StatusOK},
		{"403 other caller", RouteFiles + "/" + owned.ID.String(), "owner-b", http.StatusForbidden},
		{"404 unknown", RouteFiles + "/" + uuid.NewString(), "owner-a", http.StatusNotFound},
		{"400 bad id", RouteFiles + "/not-a-uuid", "owner-a", http.StatusBadRequest},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			rr := doReq(t, r, http.MethodGet, tt.path, withAuth(t, testSecret, tt.caller))
			require.Equal(t, tt.wantStatus, rr.Code)
		})
	}
}

func TestFileController_DeleteFileHandler(t *testing.T) {
	id := uuid.New()

	tests := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{"204 deleted", nil, http.StatusNoContent},
		{"403 not owner", fmt.Errorf("delete file: %w", domain.ErrUnauthorized), http.StatusForbidden},
		{"404 missing", domain.ErrNotFound, http.StatusNotFound},
		{"502 object store down", fmt.Errorf("delete object: %w", domain.ErrStorage), http.StatusBadGateway},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			var gotCaller string
			fs := &FakeFileShareService{
				DeleteFileFunc: func(ctx context.Context, callerID string, fid domain.ID) error {
					gotCaller = callerID
					assert.Equal(t, id, fid)
					return tt.err
				},
			}
			r := setupFileRouter(t, fs, 1<<20)

			rr := doReq(t, r, http.MethodDelete, RouteFiles+"/"+id.String(), withAuth(t, testSecret, "owner-a"))
			require.Equal(t, tt.wantStatus, rr.Code)
			assert.Equal(t, "owner-a", gotCaller)
		})
	}
}
