// Package paymentverify реализует HTTP-обработчик подтверждения оплаты:
// сверку заказа с платёжным шлюзом и зачисление кредитов на счёт пользователя.
package paymentverify

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/imagegen-service/internal/http/response"
	"github.com/magabrotheeeer/imagegen-service/internal/lib/sl"
	"github.com/magabrotheeeer/imagegen-service/internal/models"
	"github.com/magabrotheeeer/imagegen-service/internal/services/payment"
)

// Request — входные данные для подтверждения оплаты.
type Request struct {
	OrderID string `json:"razorpay_order_id" validate:"required"`
}

// Response — ответ с количеством зачисленных кредитов.
type Response struct {
	response.Response
	Credits int `json:"credits"`
}

// Service описывает интерфейс бизнес-логики подтверждения оплаты.
type Service interface {
	VerifyOrder(ctx context.Context, orderID string) (*models.Settlement, error)
}

// Handler обрабатывает HTTP-запросы подтверждения оплаты.
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
// @Summary Подтверждение оплаты
// @Description Сверяет заказ с платёжным шлюзом и зачисляет кредиты. Повторное
// подтверждение того же заказа кредиты не зачисляет.
// @Tags Payment
// @Accept  json
// @Produce  json
// @Security BearerAuth
// @Param request body Request true "Идентификатор заказа платёжного шлюза"
// @Success 200 {object} response.Response "Кредиты зачислены либо оплата уже проведена"
// @Failure 400 {object} response.Response "Некорректный JSON или неизвестный заказ"
// @Failure 401 {object} response.Response "Пользователь не авторизован"
// @Failure 500 {object} response.Response "Внутренняя ошибка сервера"
// @Router /api/user/verify [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.payment.verify"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

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

	settlement, err := h.service.VerifyOrder(r.Context(), req.OrderID)
	if err != nil {
		switch {
		case errors.Is(err, payment.ErrAlreadyProcessed):
			log.Info("payment already completed", slog.String("order_id", req.OrderID))
			render.JSON(w, r, response.Error("payment already completed"))
		case errors.Is(err, payment.ErrOrderNotFound), errors.Is(err, payment.ErrTransactionNotFound):
			log.Error("order not found", slog.String("order_id", req.OrderID))
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, response.Error("order not found"))
		default:
			log.Error("failed to verify order", sl.Err(err))
			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, response.Error("failed to verify order"))
		}
		return
	}

	log.Info("credits added",
		slog.String("order_id", req.OrderID),
		slog.String("user_uid", settlement.UserUID),
		slog.Int("credits", settlement.Credits))
	render.JSON(w, r, Response{
		Response: response.Response{Success: true, Message: "credits added to the account"},
		Credits:  settlement.Credits,
	})
}
