// Package paymentcreate реализует HTTP-обработчик покупки кредитов:
// создание транзакции и заказа в платёжном шлюзе по выбранному тарифу.
package paymentcreate

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
	"github.com/magabrotheeeer/imagegen-service/internal/paymentprovider"
	"github.com/magabrotheeeer/imagegen-service/internal/services/payment"
)

// Request — входные данные для покупки кредитов.
type Request struct {
	PlanID string `json:"planId" validate:"required"`
}

// Response — ответ с созданным заказом платёжного шлюза.
type Response struct {
	response.Response
	Order *paymentprovider.Order `json:"order"`
}

// Service описывает интерфейс бизнес-логики создания платежа.
type Service interface {
	CreateOrder(ctx context.Context, userUID, planID string) (*paymentprovider.Order, error)
}

// Handler обрабатывает HTTP-запросы создания платежа.
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
// @Summary Покупка кредитов
// @Description Создает заказ в платёжном шлюзе по выбранному тарифу.
// @Tags Payment
// @Accept  json
// @Produce  json
// @Security BearerAuth
// @Param request body Request true "Идентификатор тарифа"
// @Success 200 {object} Response "Заказ создан"
// @Failure 400 {object} response.Response "Некорректный JSON или неизвестный тариф"
// @Failure 401 {object} response.Response "Пользователь не авторизован"
// @Failure 500 {object} response.Response "Внутренняя ошибка сервера"
// @Router /api/user/pay [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.payment.create"

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

	order, err := h.service.CreateOrder(r.Context(), userUID, req.PlanID)
	if err != nil {
		if errors.Is(err, payment.ErrInvalidPlan) {
			log.Error("plan not found", slog.String("plan_id", req.PlanID))
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, response.Error("plan not found"))
			return
		}
		log.Error("failed to create order", sl.Err(err))
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, response.Error("failed to create order"))
		return
	}

	log.Info("payment order created", slog.String("user_uid", userUID), slog.String("order_id", order.ID))
	render.JSON(w, r, Response{
		Response: response.OK(),
		Order:    order,
	})
}
