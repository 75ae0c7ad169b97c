// Package generate реализует HTTP-обработчик генерации изображения
// по текстовому описанию. Списывает один кредит за успешную генерацию.
package generate

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/imagegen-service/internal/http/middlewarectx"
	"github.com/magabrotheeeer/imagegen-service/internal/http/response"
	"github.com/magabrotheeeer/imagegen-service/internal/lib/sl"
	"github.com/magabrotheeeer/imagegen-service/internal/services/generation"
)

// Request — входные данные для генерации изображения.
type Request struct {
	Prompt string `json:"prompt" validate:"required"`
}

// Response — результат генерации: изображение и остаток кредитов.
// При нехватке кредитов success=false, resultImage отсутствует,
// creditBalance содержит текущий баланс.
type Response struct {
	response.Response
	ResultImage   string `json:"resultImage,omitempty"`
	CreditBalance int    `json:"creditBalance"`
}

// Service описывает интерфейс бизнес-логики генерации изображений.
type Service interface {
	Generate(ctx context.Context, userUID, prompt string) (*generation.Result, error)
}

// Handler обрабатывает HTTP-запросы генерации изображений.
type Handler struct {
	log      *slog.Logger
	service  Service
	validate *validator.Validate
}

// New создает новый экземпляр Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:      log,
		service:  service,
		validate: validator.New(),
	}
}

// ServeHTTP godoc
// @Summary Генерация изображения
// @Description Генерирует изображение по текстовому описанию и списывает один кредит.
// @Tags Image
// @Accept  json
// @Produce  json
// @Security BearerAuth
// @Param request body Request true "Текстовое описание изображения"
// @Success 200 {object} Response "Изображение сгенерировано либо не хватает кредитов"
// @Failure 400 {object} response.Response "Некорректный JSON или ошибка валидации"
// @Failure 401 {object} response.Response "Пользователь не авторизован"
// @Failure 500 {object} response.Response "Внутренняя ошибка сервера"
// @Router /api/image/generate-image [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.image.generate"

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

	var req Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Error("failed to decode request body", sl.Err(err))
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid request body"))
		return
	}

	if err := h.validate.Struct(req); err != nil {
		log.Error("validation failed", sl.Err(err))
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, response.ValidationError(err.(validator.ValidationErrors)))
		return
	}

	result, err := h.service.Generate(r.Context(), userUID, req.Prompt)
	if err != nil {
		if errors.Is(err, generation.ErrInsufficientCredit) {
			log.Info("insufficient credit balance", slog.String("user_uid", userUID))
			render.JSON(w, r, Response{
				Response:      response.Error("no credit balance"),
				CreditBalance: result.CreditBalance,
			})
			return
		}
		log.Error("generation failed", sl.Err(err))
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, response.Error("failed to generate image"))
		return
	}

	log.Info("image generated", slog.String("user_uid", userUID), slog.Int("credit_balance", result.CreditBalance))
	render.JSON(w, r, Response{
		Response:      response.OK(),
		ResultImage:   result.ImageDataURL,
		CreditBalance: result.CreditBalance,
	})
}
