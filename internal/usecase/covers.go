package usecase

import (
	"context"

	"go.uber.org/zap"

	"github.com/wekeepgrowing/board-server/internal/domain/repository"
	apperrors "github.com/wekeepgrowing/board-server/pkg/errors"
)

// coverStore keeps cover images of one kind (board or card) in a folder of
// the file storage.
type coverStore struct {
	storage repository.FileStorage
	folder  string
	logger  *zap.Logger
}

// upload stores file and returns its filename, or "" when file is nil.
func (c coverStore) upload(ctx context.Context, file *repository.Upload) (string, error) {
	if file == nil {
		return "", nil
	}
	name, err := c.storage.Upload(ctx, file, c.folder)
	if err != nil {
		return "", apperrors.Wrap(err, "failed to upload cover")
	}
	return name, nil
}

// discard deletes the named objects. Failures are logged and swallowed so the
// caller's original outcome is the one reported.
func (c coverStore) discard(ctx context.Context, names ...string) {
	for _, name := range names {
		if name == "" {
			continue
		}
		if err := c.storage.Delete(ctx, name, c.folder); err != nil {
			c.logger.Warn("Failed to delete cover object",
				zap.String("folder", c.folder),
				zap.String("filename", name),
				zap.Error(err))
		}
	}
}

func (c coverStore) url(ctx context.Context, name *string) string {
	if name == nil || *name == "" {
		return ""
	}
	return c.storage.URL(ctx, *name, c.folder)
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
