// Package client содержит консольного клиента сервиса: состояние сессии
// за key-value хранилищем и тонкую обёртку над HTTP API.
package client

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sync"
)

// Store описывает key-value хранилище состояния клиента.
type Store interface {
	Get(key string) ([]byte, bool, error)
	Set(key string, value []byte) error
	Delete(key string) error
}

// MemoryStore хранит состояние в памяти процесса.
type MemoryStore struct {
	mu   sync.RWMutex
	data map[string][]byte
}

// NewMemoryStore создает пустое хранилище в памяти.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{data: make(map[string][]byte)}
}

// Get возвращает значение по ключу; false, если ключа нет.
func (s *MemoryStore) Get(key string) ([]byte, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	val, ok := s.data[key]
	if !ok {
		return nil, false, nil
	}
	cp := make([]byte, len(val))
	copy(cp, val)
	return cp, true, nil
}

// Set сохраняет значение по ключу.
func (s *MemoryStore) Set(key string, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := make([]byte, len(value))
	copy(cp, value)
	s.data[key] = cp
	return nil
}

// Delete удаляет ключ.
func (s *MemoryStore) Delete(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, key)
	return nil
}

// FileStore хранит состояние в JSON-файле, переживая перезапуск клиента.
type FileStore struct {
	mu   sync.Mutex
	path string
}

// NewFileStore создает хранилище поверх файла по указанному пути.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

func (s *FileStore) load() (map[string]json.RawMessage, error) {
	raw, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return make(map[string]json.RawMessage), nil
	}
	if err != nil {
		return nil, err
	}
	data := make(map[string]json.RawMessage)
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil, fmt.Errorf("corrupted state file %s: %w", s.path, err)
	}
	return data, nil
}

func (s *FileStore) flush(data map[string]json.RawMessage) error {
	raw, err := json.Marshal(data)
	if err != nil {
		return err
	}
	return os.WriteFile(s.path, raw, 0o600)
}

// Get возвращает значение по ключу; false, если ключа нет.
func (s *FileStore) Get(key string) ([]byte, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	data, err := s.load()
	if err != nil {
		return nil, false, err
	}
	val, ok := data[key]
	if !ok {
		return nil, false, nil
	}
	return val, true, nil
}

// Set сохраняет значение по ключу.
func (s *FileStore) Set(key string, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	data, err := s.load()
	if err != nil {
		return err
	}
	data[key] = value
	return s.flush(data)
}

// Delete удаляет ключ.
func (s *FileStore) Delete(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	data, err := s.load()
	if err != nil {
		return err
	}
	delete(data, key)
	return s.flush(data)
}
