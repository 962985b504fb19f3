// Package media реализует файловое хранилище загружаемых файлов на локальном диске.
//
// Содержимое сохраняется в корневом каталоге под уникальным именем
// <uuid><расширение>; переименование по имени владельца выполняется отдельным
// шагом после сохранения записи в базе. Ссылки для скачивания строятся
// относительно публичного URL-префикса.
package media

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// AllowedExtensions — допустимые расширения загружаемых файлов.
var AllowedExtensions = map[string]struct{}{
	".pdf":  {},
	".avi":  {},
	".flv":  {},
	".wmv":  {},
	".mov":  {},
	".mp4":  {},
	".wma":  {},
	".flac": {},
	".aac":  {},
	".mp3":  {},
}

// IsAllowedExtension сообщает, допустимо ли расширение имени файла.
// Сравнение регистронезависимое.
func IsAllowedExtension(filename string) bool {
	ext := strings.ToLower(filepath.Ext(filename))
	_, ok := AllowedExtensions[ext]
	return ok
}

// Store сохраняет и выдаёт файлы в каталоге root, строя ссылки от urlPrefix.
type Store struct {
	root      string
	urlPrefix string
}

// New создаёт хранилище, при необходимости создавая корневой каталог.
func New(root, urlPrefix string) (*Store, error) {
	const op = "media.New"
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &Store{root: root, urlPrefix: strings.TrimSuffix(urlPrefix, "/")}, nil
}

// Root возвращает корневой каталог хранилища.
func (s *Store) Root() string { return s.root }

// Save записывает содержимое под уникальным именем, сохраняя расширение
// исходного файла. Возвращает имя сохранённого файла относительно корня.
func (s *Store) Save(src io.Reader, originalName string) (string, error) {
	const op = "media.Save"
	ext := strings.ToLower(filepath.Ext(originalName))
	name := uuid.NewString() + ext

	dst, err := os.Create(filepath.Join(s.root, name))
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	if _, err := io.Copy(dst, src); err != nil {
		_ = dst.Close()
		return "", fmt.Errorf("%s: %w", op, err)
	}
	if err := dst.Close(); err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return name, nil
}

// Rename переименовывает сохранённый файл в <newName><прежнее расширение>
// и возвращает новое имя относительно корня.
func (s *Store) Rename(path, newName string) (string, error) {
	const op = "media.Rename"
	ext := filepath.Ext(path)
	renamed := newName + ext
	if renamed == path {
		return path, nil
	}
	if err := os.Rename(filepath.Join(s.root, path), filepath.Join(s.root, renamed)); err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return renamed, nil
}

// Remove удаляет сохранённый файл.
func (s *Store) Remove(path string) error {
	const op = "media.Remove"
	if err := os.Remove(filepath.Join(s.root, path)); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// URL возвращает путь для скачивания файла относительно urlPrefix.
func (s *Store) URL(path string) string {
	return s.urlPrefix + "/" + path
}
