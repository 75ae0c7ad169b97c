// Package generation содержит логику генерации изображений с учётом кредитов:
// проверка баланса, вызов внешнего API и списание ровно одного кредита
// за успешную генерацию.
package generation

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/magabrotheeeer/imagegen-service/internal/cache"
	"github.com/magabrotheeeer/imagegen-service/internal/lib/sl"
	"github.com/magabrotheeeer/imagegen-service/internal/models"
)

// ErrInsufficientCredit возвращается, когда у пользователя нет кредитов.
var ErrInsufficientCredit = errors.New("insufficient credit balance")

// creditsCacheTTL время жизни кэша баланса кредитов.
const creditsCacheTTL = time.Minute

// UserRepository описывает контракт хранилища для операций с кредитами.
type UserRepository interface {
	GetUser(ctx context.Context, userUID string) (*models.User, error)
	DebitCredits(ctx context.Context, userUID string, amount int) (int, bool, error)
}

// ImageProvider описывает клиент внешнего API генерации изображений.
type ImageProvider interface {
	Generate(ctx context.Context, prompt string) ([]byte, error)
}

// CreditCache описывает кэш балансов кредитов.
type CreditCache interface {
	Get(key string, result any) (bool, error)
	Set(key string, value any, expiration time.Duration) error
	Invalidate(key string) error
}

// CreditsInfo баланс кредитов и имя пользователя, кэшируемые вместе.
type CreditsInfo struct {
	Name    string `json:"name"`
	Credits int    `json:"credits"`
}

// Result результат успешной генерации: изображение в виде data URL
// и баланс после списания.
type Result struct {
	ImageDataURL  string
	CreditBalance int
}

// Service реализует генерацию изображений с учётом кредитов.
type Service struct {
	repo     UserRepository
	provider ImageProvider
	cache    CreditCache
	log      *slog.Logger
}

// New создает новый экземпляр Service.
func New(repo UserRepository, provider ImageProvider, creditCache CreditCache, log *slog.Logger) *Service {
	return &Service{
		repo:     repo,
		provider: provider,
		cache:    creditCache,
		log:      log,
	}
}

// Credits возвращает баланс кредитов и имя пользователя, используя кэш.
func (s *Service) Credits(ctx context.Context, userUID string) (*CreditsInfo, error) {
	const op = "generation.Credits"

	var info CreditsInfo
	found, err := s.cache.Get(cache.CreditsKey(userUID), &info)
	if err != nil {
		s.log.Warn("credits cache read failed", sl.Err(err))
	}
	if found {
		return &info, nil
	}

	user, err := s.repo.GetUser(ctx, userUID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	info = CreditsInfo{Name: user.Name, Credits: user.CreditBalance}
	if err := s.cache.Set(cache.CreditsKey(userUID), info, creditsCacheTTL); err != nil {
		s.log.Warn("credits cache write failed", sl.Err(err))
	}
	return &info, nil
}

// Generate генерирует изображение по текстовому описанию.
//
// Кредит списывается строго после успешного ответа внешнего API:
// при ошибке генерации баланс не меняется. При нулевом балансе внешний
// API не вызывается, возвращается ErrInsufficientCredit с текущим балансом.
func (s *Service) Generate(ctx context.Context, userUID, prompt string) (*Result, error) {
	const op = "generation.Generate"

	user, err := s.repo.GetUser(ctx, userUID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if user.CreditBalance <= 0 {
		return &Result{CreditBalance: user.CreditBalance}, ErrInsufficientCredit
	}

	raw, err := s.provider.Generate(ctx, prompt)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	newBalance, applied, err := s.repo.DebitCredits(ctx, userUID, 1)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if !applied {
		// Баланс исчерпан конкурентным запросом между проверкой и списанием.
		return &Result{CreditBalance: newBalance}, ErrInsufficientCredit
	}

	if err := s.cache.Invalidate(cache.CreditsKey(userUID)); err != nil {
		s.log.Warn("credits cache invalidation failed", sl.Err(err))
	}

	return &Result{
		ImageDataURL:  "data:image/png;base64," + base64.StdEncoding.EncodeToString(raw),
		CreditBalance: newBalance,
	}, nil
}
