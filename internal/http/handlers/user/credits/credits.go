// Package credits реализует HTTP-обработчик запроса баланса кредитов
// текущего пользователя.
package credits

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/imagegen-service/internal/http/middlewarectx"
	"github.com/magabrotheeeer/imagegen-service/internal/http/response"
	"github.com/magabrotheeeer/imagegen-service/internal/lib/sl"
	"github.com/magabrotheeeer/imagegen-service/internal/services/generation"
	"github.com/magabrotheeeer/imagegen-service/internal/storage"
)

// Response — ответ с балансом кредитов и именем пользователя.
type Response struct {
	response.Response
	Credits int  `json:"credits"`
	User    User `json:"user"`
}

// User — публичные данные пользователя в ответе.
type User struct {
	Name string `json:"name"`
}

// Service описывает интерфейс получения баланса кредитов.
type Service interface {
	Credits(ctx context.Context, userUID string) (*generation.CreditsInfo, error)
}

// Handler обрабатывает HTTP-запросы баланса кредитов.
type Handler struct {
	log     *slog.Logger
	service Service
}

// New создает новый экземпляр Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Баланс кредитов
// @Description Возвращает текущий баланс кредитов и имя пользователя.
// @Tags User
// @Produce  json
// @Security BearerAuth
// @Success 200 {object} Response "Баланс кредитов"
// @Failure 401 {object} response.Response "Пользователь не авторизован"
// @Failure 404 {object} response.Response "Пользователь не найден"
// @Failure 500 {object} response.Response "Внутренняя ошибка сервера"
// @Router /api/user/credits [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.user.credits"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	userUID, ok := r.Context().Value(middlewarectx.UserUID).(string)
	if !ok || userUID == "" {
		log.Error("missing user uid in context")
		render.Status(r, http.StatusUnauthorized)
		render.JSON(w, r, response.Error("user is not authorized"))
		return
	}

	info, err := h.service.Credits(r.Context(), userUID)
	if err != nil {
		if errors.Is(err, storage.ErrUserNotFound) {
			log.Error("user not found", slog.String("user_uid", userUID))
			render.Status(r, http.StatusNotFound)
			render.JSON(w, r, response.Error("user not found"))
			return
		}
		log.Error("failed to get credits", sl.Err(err))
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, response.Error("failed to get credits"))
		return
	}

	render.JSON(w, r, Response{
		Response: response.OK(),
		Credits:  info.Credits,
		User:     User{Name: info.Name},
	})
}
