package storage

import (
	"context"
	"io"

	"github.com/google/uuid"
)

// Uploader — граница с хранилищем файлов. Ядру чата важен только
// публичный URL; провайдер (диск, облако) скрыт за интерфейсом.
type Uploader interface {
	Upload(ctx context.Context, r io.Reader, fileName string, userID uuid.UUID) (string, error)
}
