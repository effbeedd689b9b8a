package contract

import (
	"context"

	"simple-notes-be/internal/entity"
	"simple-notes-be/internal/repository/specification"
)

type ImageRepository interface {
	Create(ctx context.Context, image *entity.Image) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Image, error)
	Delete(ctx context.Context, specs ...specification.Specification) (int64, error)
	DeleteAll(ctx context.Context) error
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)
	// TotalSize sums the stored blob lengths in bytes.
	TotalSize(ctx context.Context) (int64, error)
}
