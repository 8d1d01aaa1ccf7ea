package room_handler

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/ToyoKou0322/my-sns-app/internal/dtos/room_dto"
	app_error "github.com/ToyoKou0322/my-sns-app/internal/errors"
	"github.com/ToyoKou0322/my-sns-app/internal/handlers"
	"github.com/ToyoKou0322/my-sns-app/internal/middleware"
	"github.com/ToyoKou0322/my-sns-app/internal/utils"
	room_service "github.com/ToyoKou0322/my-sns-app/internal/use-case/room-case"
	"github.com/ToyoKou0322/my-sns-app/state"
)

type RoomHandler struct {
	State    *state.AppState
	Validate *validator.Validate
	Service  room_service.RoomServiceContract
}

func NewRoomHandler(state *state.AppState) *RoomHandler {
	return &RoomHandler{
		State:    state,
		Validate: validator.New(),
		Service:  room_service.NewRoomService(state),
	}
}

// ListRooms returns the directory split into tabs; ?search= filters by title.
func (h *RoomHandler) ListRooms(w http.ResponseWriter, r *http.Request) *app_error.AppError {
	claims, cErr := callerClaims(r)
	if cErr != nil {
		return cErr
	}

	fp, fpErr := fingerprint(r)
	if fpErr != nil {
		return fpErr
	}

	search := r.URL.Query().Get("search")

	resp, err := h.Service.ListRooms(r.Context(), claims.Sub, fp, search)
	if err != nil {
		return err
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(handlers.CreateResponse("rooms listed", *resp, requestID(r)))

	return nil
}

func (h *RoomHandler) CreateRoom(w http.ResponseWriter, r *http.Request) *app_error.AppError {
	claims, cErr := callerClaims(r)
	if cErr != nil {
		return cErr
	}

	var req room_dto.CreateRoomRequest
	defer r.Body.Close()

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return app_error.NewAppError(http.StatusBadRequest, "Invalid JSON", "body")
	}

	if err := h.Validate.Struct(req); err != nil {
		return app_error.NewAppError(http.StatusBadRequest, fmt.Sprintf("Invalid fields: %v", err), "validation")
	}

	resp, err := h.Service.CreateRoom(r.Context(), req, claims.Sub)
	if err != nil {
		return err
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(handlers.CreateResponse("room created", *resp, requestID(r)))

	return nil
}

func (h *RoomHandler) DeleteRoom(w http.ResponseWriter, r *http.Request) *app_error.AppError {
	claims, cErr := callerClaims(r)
	if cErr != nil {
		return cErr
	}

	roomID := chi.URLParam(r, "roomId")
	if roomID == "" {
		return app_error.NewAppError(http.StatusBadRequest, "room id is required", "roomId")
	}

	if err := h.Service.DeleteRoom(r.Context(), roomID, claims.Sub); err != nil {
		return err
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(handlers.CreateResponse("room deleted", struct{}{}, requestID(r)))

	return nil
}

func (h *RoomHandler) ToggleBookmark(w http.ResponseWriter, r *http.Request) *app_error.AppError {
	claims, cErr := callerClaims(r)
	if cErr != nil {
		return cErr
	}

	roomID := chi.URLParam(r, "roomId")
	if roomID == "" {
		return app_error.NewAppError(http.StatusBadRequest, "room id is required", "roomId")
	}

	resp, err := h.Service.ToggleBookmark(r.Context(), roomID, claims.Sub)
	if err != nil {
		return err
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(handlers.CreateResponse("bookmark toggled", *resp, requestID(r)))

	return nil
}

func (h *RoomHandler) OpenDM(w http.ResponseWriter, r *http.Request) *app_error.AppError {
	claims, cErr := callerClaims(r)
	if cErr != nil {
		return cErr
	}

	peerUID := chi.URLParam(r, "peerId")
	if peerUID == "" {
		return app_error.NewAppError(http.StatusBadRequest, "peer id is required", "peerId")
	}

	resp, err := h.Service.OpenDM(r.Context(), claims.Sub, peerUID)
	if err != nil {
		return err
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(handlers.CreateResponse("dm room ready", *resp, requestID(r)))

	return nil
}

func (h *RoomHandler) MarkRead(w http.ResponseWriter, r *http.Request) *app_error.AppError {
	fp, fpErr := fingerprint(r)
	if fpErr != nil {
		return fpErr
	}

	roomID := chi.URLParam(r, "roomId")
	if roomID == "" {
		return app_error.NewAppError(http.StatusBadRequest, "room id is required", "roomId")
	}

	resp, err := h.Service.MarkRead(r.Context(), roomID, fp)
	if err != nil {
		return err
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(handlers.CreateResponse("room marked read", *resp, requestID(r)))

	return nil
}

func callerClaims(r *http.Request) (*utils.Claims, *app_error.AppError) {
	claims, ok := r.Context().Value(middleware.UserClaimsKey).(*utils.Claims)
	if !ok || claims == nil {
		return nil, app_error.NewAppError(http.StatusUnauthorized, "Missing credentials", "auth")
	}
	return claims, nil
}

func fingerprint(r *http.Request) (string, *app_error.AppError) {
	fp, ok := r.Context().Value(middleware.FingerprintKey).(string)
	if !ok || fp == "" {
		return "", app_error.NewAppError(http.StatusBadRequest, "Missing device fingerprint", "fingerprint")
	}
	return fp, nil
}

func requestID(r *http.Request) string {
	reqID, ok := r.Context().Value(middleware.RequestIdKey).(string)
	if !ok {
		return "unknown"
	}
	return reqID
}
