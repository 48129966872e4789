package subscribe

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/playbuni/backend/internal/service/subscription"
	"github.com/playbuni/backend/pkg/utils"
)

// Handler exposes magazine subscription capture.
type Handler struct {
	service *subscription.Service
	logger  *zap.Logger
}

func New(service *subscription.Service, logger *zap.Logger) *Handler {
	return &Handler{service: service, logger: logger.Named("subscribehandler")}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/subscribe", h.handleSubscribe)
}

type subscribeRequest struct {
	Email string `json:"email"`
	Name  string `json:"name"`
	Type  string `json:"type"`
}

func (h *Handler) handleSubscribe(w http.ResponseWriter, r *http.Request) {
	var payload subscribeRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if !h.service.Available() {
		utils.RespondError(w, http.StatusServiceUnavailable, "subscriptions are not available right now")
		return
	}

	subscriptionID, err := h.service.Subscribe(r.Context(), payload.Email, payload.Name, payload.Type)
	if errors.Is(err, subscription.ErrEmailRequired) {
		utils.RespondError(w, http.StatusBadRequest, "email is required")
		return
	}
	if err != nil {
		h.logger.Error("subscription failed", zap.Error(err))
		utils.RespondError(w, http.StatusInternalServerError, "failed to record subscription")
		return
	}

	utils.RespondJSON(w, http.StatusCreated, map[string]string{"subscriptionId": subscriptionID})
}
