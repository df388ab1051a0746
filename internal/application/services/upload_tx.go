package services

import (
	"context"
	"io"

	"go.uber.org/zap"

	"file-share-api/internal/application/ports"
)

// objectTx brackets an object write with its metadata insert. Until commit is
// called, rollback deletes the written object so a failed upload does not
// leave unreferenced bytes behind.
type objectTx struct {
	store     ports.ObjectStore
	logger    *zap.Logger
	path      string
	committed bool
	onFailure func()
}

func beginObjectTx(
	ctx context.Context,
	store ports.ObjectStore,
	logger *zap.Logger,
	path string,
	content io.Reader,
	size int64,
	opts ports.PutOptions,
) (*objectTx, error) {
	if err := store.Put(ctx, path, content, size, opts); err != nil {
		return nil, err
	}

	return &objectTx{store: store, logger: logger, path: path}, nil
}

func (tx *objectTx) commit() { tx.committed = true }

func (tx *objectTx) rollback(ctx context.Context) {
	if tx.committed {
		return
	}

	// cleanup must outlive a cancelled request
	if err := tx.store.Delete(context.WithoutCancel(ctx), tx.path); err != nil {
		tx.logger.Error("upload cleanup failed, object left unreferenced",
			zap.String("storage_path", tx.path),
			zap.Error(err),
		)
		if tx.onFailure != nil {
			tx.onFailure()
		}
		return
	}

	tx.logger.Info("upload rolled back", zap.String("storage_path", tx.path))
}
