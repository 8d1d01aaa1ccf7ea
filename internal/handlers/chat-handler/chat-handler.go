package chat_handler

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/ToyoKou0322/my-sns-app/internal/dtos/chat_dto"
	app_error "github.com/ToyoKou0322/my-sns-app/internal/errors"
	"github.com/ToyoKou0322/my-sns-app/internal/handlers"
	"github.com/ToyoKou0322/my-sns-app/internal/middleware"
	"github.com/ToyoKou0322/my-sns-app/internal/utils"
	chat_service "github.com/ToyoKou0322/my-sns-app/internal/use-case/chat-case"
	"github.com/ToyoKou0322/my-sns-app/state"
)

type ChatHandler struct {
	State    *state.AppState
	Validate *validator.Validate
	Service  chat_service.ChatServiceContract
}

func NewChatHandler(state *state.AppState) *ChatHandler {
	validate := validator.New()
	_ = validate.RegisterValidation("objectid", chat_dto.ObjectIDValidator)
	return &ChatHandler{
		State:    state,
		Validate: validate,
		Service:  chat_service.NewChatService(state),
	}
}

func (h *ChatHandler) ListMessages(w http.ResponseWriter, r *http.Request) *app_error.AppError {
	claims, cErr := callerClaims(r)
	if cErr != nil {
		return cErr
	}

	roomID := chi.URLParam(r, "roomId")
	if roomID == "" {
		return app_error.NewAppError(http.StatusBadRequest, "room id is required", "roomId")
	}

	resp, err := h.Service.ListMessages(r.Context(), roomID, claims.Sub)
	if err != nil {
		return err
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(handlers.CreateResponse("messages listed", *resp, requestID(r)))

	return nil
}

func (h *ChatHandler) PostMessage(w http.ResponseWriter, r *http.Request) *app_error.AppError {
	claims, cErr := callerClaims(r)
	if cErr != nil {
		return cErr
	}

	roomID := chi.URLParam(r, "roomId")
	if roomID == "" {
		return app_error.NewAppError(http.StatusBadRequest, "room id is required", "roomId")
	}

	var req chat_dto.PostMessageRequest
	defer r.Body.Close()

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return app_error.NewAppError(http.StatusBadRequest, "Invalid JSON", "body")
	}

	if err := h.Validate.Struct(req); err != nil {
		return app_error.NewAppError(http.StatusBadRequest, fmt.Sprintf("Invalid fields: %v", err), "validation")
	}

	resp, err := h.Service.PostMessage(r.Context(), req, roomID, claims.Sub)
	if err != nil {
		return err
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(handlers.CreateResponse("message posted", *resp, requestID(r)))

	return nil
}

func (h *ChatHandler) DeleteMessage(w http.ResponseWriter, r *http.Request) *app_error.AppError {
	claims, cErr := callerClaims(r)
	if cErr != nil {
		return cErr
	}

	roomID := chi.URLParam(r, "roomId")
	messageID := chi.URLParam(r, "messageId")
	if roomID == "" || messageID == "" {
		return app_error.NewAppError(http.StatusBadRequest, "room id and message id are required", "path")
	}

	if err := h.Service.DeleteMessage(r.Context(), roomID, messageID, claims.Sub); err != nil {
		return err
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(handlers.CreateResponse("message deleted", struct{}{}, requestID(r)))

	return nil
}

func (h *ChatHandler) ToggleLike(w http.ResponseWriter, r *http.Request) *app_error.AppError {
	claims, cErr := callerClaims(r)
	if cErr != nil {
		return cErr
	}

	messageID := chi.URLParam(r, "messageId")
	if messageID == "" {
		return app_error.NewAppError(http.StatusBadRequest, "message id is required", "messageId")
	}

	resp, err := h.Service.ToggleLike(r.Context(), messageID, claims.Sub)
	if err != nil {
		return err
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(handlers.CreateResponse("like toggled", *resp, requestID(r)))

	return nil
}

func callerClaims(r *http.Request) (*utils.Claims, *app_error.AppError) {
	claims, ok := r.Context().Value(middleware.UserClaimsKey).(*utils.Claims)
	if !ok || claims == nil {
		return nil, app_error.NewAppError(http.StatusUnauthorized, "Missing credentials", "auth")
	}
	return claims, nil
}

func requestID(r *http.Request) string {
	reqID, ok := r.Context().Value(middleware.RequestIdKey).(string)
	if !ok {
		return "unknown"
	}
	return reqID
}
