// Package jwt реализует выпуск и проверку JWT токенов сессии.
//
// Токен подписывается секретным ключом сервера (HS256), в subject хранится
// идентификатор пользователя, срок жизни задаётся при создании Maker.
package jwt

import (
	"errors"
	"time"
)

// ErrInvalidToken возвращается, если токен имеет неверную подпись,
// повреждён или истёк.
var ErrInvalidToken = errors.New("invalid token")

// ErrMissingSubject возвращается, если в валидном токене нет идентификатора пользователя.
var ErrMissingSubject = errors.New("token has no subject")

// Maker описывает интерфейс для выпуска и проверки токенов сессии.
type Maker interface {
	// GenerateToken выпускает токен для пользователя с указанным UID.
	GenerateToken(userUID string) (string, error)
	// ParseToken проверяет токен и возвращает UID пользователя.
	ParseToken(tokenStr string) (string, error)
}

// MakerImpl реализует интерфейс Maker с использованием секретного ключа
// и времени жизни токена (TTL).
type MakerImpl struct {
	secretKey string        // Секретный ключ для подписи токенов.
	tokenTTL  time.Duration // Время жизни токена.
}

// NewJWTMaker создаёт новый экземпляр MakerImpl на основе секретного ключа и TTL.
func NewJWTMaker(secretKey string, ttl time.Duration) *MakerImpl {
	return &MakerImpl{
		secretKey: secretKey,
		tokenTTL:  ttl,
	}
}
