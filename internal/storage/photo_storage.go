// Package storage файловое хранилище фотографий происшествий.
package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// PhotoStorage отвечает за файловое хранилище изображений.
type PhotoStorage struct {
	rootPath       string
	maxUploadBytes int64
}

// NewPhotoStorage создаёт файловое хранилище.
func NewPhotoStorage(rootPath string, maxUploadMB int64) (*PhotoStorage, error) {
	if err := os.MkdirAll(rootPath, 0o755); err != nil {
		return nil, fmt.Errorf("storage: не удалось создать каталог %s: %w", rootPath, err)
	}

	return &PhotoStorage{
		rootPath:       rootPath,
		maxUploadBytes: maxUploadMB * 1024 * 1024,
	}, nil
}

// Root возвращает корневой каталог хранилища.
func (s *PhotoStorage) Root() string {
	return s.rootPath
}

// MaxUploadBytes лимит размера одного файла.
func (s *PhotoStorage) MaxUploadBytes() int64 {
	return s.maxUploadBytes
}

// Save сохраняет файл в подкаталог dir и возвращает относительный путь
// с прямыми слешами (он же часть публичного URL).
func (s *PhotoStorage) Save(ctx context.Context, dir, originalName string, r io.Reader) (string, int64, error) {
	if err := ctx.Err(); err != nil {
		return "", 0, err
	}

	dir = sanitizeFilename(dir)
	fileName := uuid.NewString() + strings.ToLower(filepath.Ext(sanitizeFilename(originalName)))

	targetDir := filepath.Join(s.rootPath, dir)
	if err := os.MkdirAll(targetDir, 0o755); err != nil {
		return "", 0, fmt.Errorf("storage: не удалось создать каталог: %w", err)
	}

	targetPath := filepath.Join(targetDir, fileName)
	tempPath := targetPath + ".tmp"

	f, err := os.Create(tempPath)
	if err != nil {
		return "", 0, fmt.Errorf("storage: не удалось создать файл: %w", err)
	}
	defer f.Close()

	limitedReader := io.LimitedReader{R: r, N: s.maxUploadBytes + 1}
	written, err := io.Copy(f, &limitedReader)
	if err != nil {
		_ = os.Remove(tempPath)
		return "", 0, fmt.Errorf("storage: ошибка записи файла: %w", err)
	}

	if written > s.maxUploadBytes {
		_ = os.Remove(tempPath)
		return "", 0, ErrTooLarge
	}

	if err := f.Close(); err != nil {
		return "", 0, fmt.Errorf("storage: ошибка закрытия файла: %w", err)
	}

	if err := os.Rename(tempPath, targetPath); err != nil {
		return "", 0, fmt.Errorf("storage: не удалось переименовать файл: %w", err)
	}

	return path.Join(dir, fileName), written, nil
}

// Delete удаляет файл из хранилища.
func (s *PhotoStorage) Delete(ctx context.Context, relativePath string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if relativePath == "" || strings.Contains(relativePath, "..") {
		return nil
	}

	target := filepath.Join(s.rootPath, filepath.FromSlash(relativePath))
	if err := os.Remove(target); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("storage: не удалось удалить файл: %w", err)
	}
	return nil
}

// sanitizeFilename удаляет потенциально опасные символы.
func sanitizeFilename(name string) string {
	name = filepath.Base(name)
	name = strings.ReplaceAll(name, "..", "")
	name = strings.ReplaceAll(name, "/", "_")
	name = strings.ReplaceAll(name, "\\", "_")
	if name == "" || name == "." {
		name = "photo"
	}
	return name
}
