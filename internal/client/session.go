package client

import (
	"encoding/json"
	"fmt"
)

// sessionKey ключ состояния сессии в Store.
const sessionKey = "session"

// Session состояние авторизованного клиента: токен и последние известные
// данные пользователя.
type Session struct {
	Token   string `json:"token"`
	User    User   `json:"user"`
	Credits int    `json:"credits"`
}

// User данные пользователя в составе сессии.
type User struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// Keeper читает и сохраняет сессию через Store.
type Keeper struct {
	store Store
}

// NewKeeper создает новый экземпляр Keeper.
func NewKeeper(store Store) *Keeper {
	return &Keeper{store: store}
}

// Load возвращает сохранённую сессию; false, если клиент не авторизован.
func (k *Keeper) Load() (*Session, bool, error) {
	const op = "client.Load"
	raw, ok, err := k.store.Get(sessionKey)
	if err != nil {
		return nil, false, fmt.Errorf("%s: %w", op, err)
	}
	if !ok {
		return nil, false, nil
	}
	var session Session
	if err := json.Unmarshal(raw, &session); err != nil {
		return nil, false, fmt.Errorf("%s: %w", op, err)
	}
	return &session, true, nil
}

// Save сохраняет сессию.
func (k *Keeper) Save(session *Session) error {
	const op = "client.Save"
	raw, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if err := k.store.Set(sessionKey, raw); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// Clear удаляет сессию, клиент становится неавторизованным.
func (k *Keeper) Clear() error {
	return k.store.Delete(sessionKey)
}
