package authsync

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
)

// SnapshotCache — локальное хранилище снапшотов анкеты по id пользователя.
//
// Контракт:
//   - Read никогда не возвращает ошибку — любые проблемы носителя
//     трактуются как отсутствие снапшота;
//   - Write/Clear — best-effort побочные эффекты;
//   - Wipe удаляет все снапшоты (полная зачистка при выходе).
type SnapshotCache interface {
	Read(userID string) (*Profile, bool)
	Write(userID string, profile *Profile)
	Clear(userID string)
	Wipe()
}

// FileCache — реализация SnapshotCache поверх каталога с JSON-файлами:
// один файл на пользователя. Подходит для desktop/CLI-клиентов.
type FileCache struct {
	dir string
}

var _ SnapshotCache = (*FileCache)(nil)

// NewFileCache создаёт кэш в каталоге dir (создаётся при необходимости).
func NewFileCache(dir string) *FileCache {
	_ = os.MkdirAll(dir, 0o700)
	return &FileCache{dir: dir}
}

// Read возвращает снапшот анкеты или (nil, false), если его нет
// либо файл не читается/не парсится.
func (c *FileCache) Read(userID string) (*Profile, bool) {
	if userID == "" {
		return nil, false
	}

	raw, err := os.ReadFile(c.path(userID))
	if err != nil {
		return nil, false
	}

	var p Profile
	if err := json.Unmarshal(raw, &p); err != nil {
		return nil, false
	}

	return &p, true
}

// Write сохраняет снапшот; ошибки записи игнорируются.
func (c *FileCache) Write(userID string, profile *Profile) {
	if userID == "" || profile == nil {
		return
	}

	raw, err := json.Marshal(profile)
	if err != nil {
		return
	}

	_ = os.WriteFile(c.path(userID), raw, 0o600)
}

// Clear удаляет снапшот пользователя.
func (c *FileCache) Clear(userID string) {
	if userID == "" {
		return
	}

	_ = os.Remove(c.path(userID))
}

// Wipe удаляет все снапшоты кэша.
func (c *FileCache) Wipe() {
	entries, err := os.ReadDir(c.dir)
	if err != nil {
		return
	}

	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), cacheExt) {
			_ = os.Remove(filepath.Join(c.dir, e.Name()))
		}
	}
}

const cacheExt = ".profile.json"

func (c *FileCache) path(userID string) string {
	// id приходит из auth-слоя (UUID), но на всякий случай вырезаем
	// разделители путей.
	safe := strings.Map(func(r rune) rune {
		if r == '/' || r == '\\' || r == ':' {
			return '_'
		}
		return r
	}, userID)

	return filepath.Join(c.dir, safe+cacheExt)
}

// noopCache — пустая реализация для клиентов без локального хранилища.
type noopCache struct{}

var _ SnapshotCache = noopCache{}

func (noopCache) Read(string) (*Profile, bool) { return nil, false }
func (noopCache) Write(string, *Profile)       {}
func (noopCache) Clear(string)                 {}
func (noopCache) Wipe()                        {}
