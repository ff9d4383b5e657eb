package httpapi

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/sneddy/dsmlkz-platform/pkg/authsync"
)

// TokenStore — персистентное хранилище сессии между запусками клиента.
//
// Контракт:
//   - Load возвращает (nil, nil), если сохранённой сессии нет;
//   - Save перезаписывает сессию целиком;
//   - Clear удаляет сохранённую сессию.
type TokenStore interface {
	Load() (*authsync.Session, error)
	Save(sess *authsync.Session) error
	Clear() error
}

// FileTokenStore хранит сессию одним JSON-файлом с правами 0600.
type FileTokenStore struct {
	path string
}

var _ TokenStore = (*FileTokenStore)(nil)

// NewFileTokenStore создаёт хранилище по указанному пути
// (родительский каталог создаётся при необходимости).
func NewFileTokenStore(path string) *FileTokenStore {
	_ = os.MkdirAll(filepath.Dir(path), 0o700)
	return &FileTokenStore{path: path}
}

func (s *FileTokenStore) Load() (*authsync.Session, error) {
	raw, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}

		return nil, err
	}

	var sess authsync.Session
	if err := json.Unmarshal(raw, &sess); err != nil {
		// Битый файл — считаем, что сессии нет.
		return nil, nil
	}

	return &sess, nil
}

func (s *FileTokenStore) Save(sess *authsync.Session) error {
	raw, err := json.Marshal(sess)
	if err != nil {
		return err
	}

	return os.WriteFile(s.path, raw, 0o600)
}

func (s *FileTokenStore) Clear() error {
	err := os.Remove(s.path)
	if os.IsNotExist(err) {
		return nil
	}

	return err
}
