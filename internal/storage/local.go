package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/google/uuid"
)

// LocalUploader пишет вложения на диск под каталогом пользователя
// и отдает URL относительно baseURL
type LocalUploader struct {
	dir     string
	baseURL string
}

func NewLocalUploader(dir, baseURL string) (*LocalUploader, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &LocalUploader{dir: dir, baseURL: baseURL}, nil
}

func (u *LocalUploader) Upload(ctx context.Context, r io.Reader, fileName string, userID uuid.UUID) (string, error) {
	userDir := filepath.Join(u.dir, userID.String())
	if err := os.MkdirAll(userDir, 0o755); err != nil {
		return "", err
	}

	// Префикс-UUID исключает коллизии одинаковых имен файлов
	stored := fmt.Sprintf("%s_%s", uuid.New().String(), filepath.Base(fileName))
	path := filepath.Join(userDir, stored)

	f, err := os.Create(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	if _, err := io.Copy(f, r); err != nil {
		os.Remove(path)
		return "", err
	}

	return fmt.Sprintf("%s/%s/%s", u.baseURL, userID.String(), stored), nil
}
