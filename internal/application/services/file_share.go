package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"file-share-api/internal/application/ports"
	"file-share-api/internal/domain/access"
	domain "file-share-api/internal/domain/file"
)

const (
	defaultSignedURLTTL  = 60 * time.Second
	defaultTokenAttempts = 5
)

type Options struct {
	SignedURLTTL  time.Duration
	TokenAttempts int
	Now           func() time.Time
}

type FileShareService struct {
	files      domain.Repository
	store      ports.ObjectStore
	tokens     ports.TokenGenerator
	owners     ports.OwnerDirectory
	accountant ports.DownloadRecorder
	events     ports.EventPublisher
	logger     *zap.Logger
	mCounter   *prometheus.CounterVec

	signedURLTTL  time.Duration
	tokenAttempts int
	now           func() time.Time
	stamps        *stampSource
}

func NewFileShareService(
	files domain.Repository,
	store ports.ObjectStore,
	tokens ports.TokenGenerator,
	owners ports.OwnerDirectory,
	accountant ports.DownloadRecorder,
	events ports.EventPublisher,
	logger *zap.Logger,
	mCounter *prometheus.CounterVec,
	opts Options,
) ports.FileShareService {
	if opts.SignedURLTTL <= 0 {
		opts.SignedURLTTL = defaultSignedURLTTL
	}
	if opts.TokenAttempts <= 0 {
		opts.TokenAttempts = defaultTokenAttempts
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	return &FileShareService{
		files:         files,
		store:         store,
		tokens:        tokens,
		owners:        owners,
		accountant:    accountant,
		events:        events,
		logger:        logger,
		mCounter:      mCounter,
		signedURLTTL:  opts.SignedURLTTL,
		tokenAttempts: opts.TokenAttempts,
		now:           opts.Now,
		stamps:        newStampSource(opts.Now),
	}
}

// Upload stores the bytes first and then registers the record. If the record
// cannot be persisted the object is removed again.
func (fs *FileShareService) Upload(ctx context.Context, in ports.UploadInput) (*domain.File, error) {
	if err := validateUpload(&in); err != nil {
		return nil, err
	}

	storagePath := buildStoragePath(in.OwnerID, fs.stamps.Next(), in.Name)

	tx, err := beginObjectTx(ctx, fs.store, fs.logger, storagePath, in.Content, in.SizeBytes, ports.PutOptions{
		ContentType: in.MimeType,
		// the path carries a timestamp, so a clash means a retry of the same upload
		Overwrite: true,
	})
	if err != nil {
		return nil, fmt.Errorf("store object %s: %w", storagePath, err)
	}
	tx.onFailure = func() { fs.inc("upload_compensation_failed_total") }
	defer tx.rollback(ctx)

	out, err := fs.register(ctx, &domain.File{
		ID:          uuid.New(),
		OwnerID:     in.OwnerID,
		Name:        in.Name,
		MimeType:    in.MimeType,
		SizeBytes:   in.SizeBytes,
		StoragePath: storagePath,
		CreatedAt:   fs.now().UTC(),
	})
	if err != nil {
		return nil, err
	}
	tx.commit()

	fs.publish(domain.ActionUploaded, out)
	fs.inc("file_uploaded_total")
	fs.logger.Info("file uploaded",
		zap.Stringer("file_id", out.ID),
		zap.String("owner_id", out.OwnerID),
		zap.Int64("size_bytes", out.SizeBytes),
	)

	return out, nil
}

// register mints share tokens until the registry accepts one.
func (fs *FileShareService) register(ctx context.Context, f *domain.File) (*domain.File, error) {
	for attempt := 1; attempt <= fs.tokenAttempts; attempt++ {
		token, err := fs.tokens.Mint()
		if err != nil {
			return nil, fmt.Errorf("mint share token: %w", err)
		}
		f.ShareToken = token

		out, err := fs.files.CreateFile(ctx, f)
		if err == nil {
			return out, nil
		}
		if !errors.Is(err, domain.ErrDuplicateToken) {
			return nil, fmt.Errorf("create file record: %w", err)
		}

		fs.logger.Warn("share token collision, re-minting",
			zap.Int("attempt", attempt),
			zap.Stringer("file_id", f.ID),
		)
	}

	return nil, fmt.Errorf("%w after %d attempts", domain.ErrShareTokenExhausted, fs.tokenAttempts)
}

func (fs *FileShareService) ListFiles(ctx context.Context, ownerID string) (domain.Files, error) {
	if ownerID == "" {
		return nil, domain.ErrUnauthorized
	}

	fls, err := fs.files.FetchOwnerFiles(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	owned := make(domain.Files, 0, len(fls))
	for _, f := range fls {
		if !access.CanListOwned(ownerID, f) {
			fs.logger.Error("registry returned a file of another owner",
				zap.String("owner_id", ownerID),
				zap.Stringer("file_id", f.ID),
			)
			fs.inc("list_foreign_row_total")
			continue
		}
		owned = append(owned, f)
	}

	return owned, nil
}

// GetFile is an owner-only lookup by id. An id alone grants nothing; public
// access goes through the share token.
func (fs *FileShareService) GetFile(ctx context.Context, callerID string, id domain.ID) (*domain.File, error) {
	f, err := fs.files.FetchByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !access.CanListOwned(callerID, f) {
		return nil, fmt.Errorf("get file %s: %w", id, domain.ErrUnauthorized)
	}

	return f, nil
}

// DeleteFile removes the object before the record. A failed object delete
// leaves the record in place so the owner can retry.
func (fs *FileShareService) DeleteFile(ctx context.Context, callerID string, id domain.ID) error {
	f, err := fs.files.FetchByID(ctx, id)
	if err != nil {
		return err
	}
	if !access.CanMutate(callerID, f) {
		return fmt.Errorf("delete file %s: %w", id, domain.ErrUnauthorized)
	}

	if err = fs.store.Delete(ctx, f.StoragePath); err != nil {
		if !errors.Is(err, domain.ErrNotFound) {
			return fmt.Errorf("delete object %s: %w", f.StoragePath, err)
		}
		// a previous attempt got this far; finish the job
		fs.logger.Warn("object already gone, removing record",
			zap.Stringer("file_id", f.ID),
			zap.String("storage_path", f.StoragePath),
		)
	}

	if err = fs.files.DeleteFile(ctx, f.ID, f.OwnerID); err != nil {
		fs.logger.Error("object removed but record delete failed",
			zap.Stringer("file_id", f.ID),
			zap.Error(err),
		)
		return fmt.Errorf("delete file record %s: %w", f.ID, err)
	}

	fs.publish(domain.ActionDeleted, f)
	fs.inc("file_deleted_total")

	return nil
}

func (fs *FileShareService) ResolveShare(ctx context.Context, token string) (*ports.ShareView, error) {
	f, err := fs.lookupShare(ctx, token)
	if err != nil {
		return nil, err
	}

	view := &ports.ShareView{
		Name:          f.Name,
		MimeType:      f.MimeType,
		SizeBytes:     f.SizeBytes,
		CreatedAt:     f.CreatedAt,
		DownloadCount: f.DownloadCount,
	}
	if fs.owners != nil {
		view.OwnerDisplayName = fs.owners.DisplayName(ctx, f.OwnerID)
	}

	fs.inc("share_resolved_total")

	return view, nil
}

// DownloadShare mints a short-lived URL and only then hands the download to
// the accountant. The URL is returned without waiting for the increment.
func (fs *FileShareService) DownloadShare(ctx context.Context, token string) (*ports.Download, error) {
	f, err := fs.lookupShare(ctx, token)
	if err != nil {
		return nil, err
	}

	signed, err := fs.store.SignedURL(ctx, f.StoragePath, fs.signedURLTTL)
	if err != nil {
		return nil, fmt.Errorf("sign url for %s: %w", f.ID, err)
	}

	if fs.accountant != nil {
		fs.accountant.Record(ctx, f.ID)
	}
	fs.publish(domain.ActionDownloaded, f)
	fs.inc("share_downloaded_total")

	return &ports.Download{
		URL:       signed,
		Name:      f.Name,
		ExpiresIn: fs.signedURLTTL,
	}, nil
}

func (fs *FileShareService) lookupShare(ctx context.Context, token string) (*domain.File, error) {
	if strings.TrimSpace(token) == "" {
		return nil, domain.ErrNotFound
	}

	f, err := fs.files.FetchByShareToken(ctx, token)
	if err != nil {
		return nil, err
	}
	if !access.CanReadPublic(f) {
		return nil, domain.ErrNotFound
	}

	return f, nil
}

func (fs *FileShareService) publish(action string, f *domain.File) {
	if fs.events != nil {
		fs.events.Publish(domain.NewEvent(action, f))
	}
}

func (fs *FileShareService) inc(label string) {
	if fs.mCounter != nil {
		fs.mCounter.WithLabelValues(label).Inc()
	}
}

// validateUpload keeps the name as given; blank-only names are rejected.
func validateUpload(in *ports.UploadInput) error {
	var missing []string
	if in.OwnerID == "" {
		missing = append(missing, "owner")
	}
	if strings.TrimSpace(in.Name) == "" {
		missing = append(missing, "name")
	}
	if in.Content == nil {
		missing = append(missing, "content")
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: missing %s", domain.ErrValidation, strings.Join(missing, ", "))
	}
	if in.SizeBytes < 0 {
		return fmt.Errorf("%w: negative size", domain.ErrValidation)
	}
	if strings.TrimSpace(in.MimeType) == "" {
		in.MimeType = domain.DefaultMimeType
	}

	return nil
}
