package user_handler

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/ToyoKou0322/my-sns-app/internal/dtos/user_dto"
	app_error "github.com/ToyoKou0322/my-sns-app/internal/errors"
	"github.com/ToyoKou0322/my-sns-app/internal/handlers"
	"github.com/ToyoKou0322/my-sns-app/internal/middleware"
	"github.com/ToyoKou0322/my-sns-app/internal/utils"
	user_service "github.com/ToyoKou0322/my-sns-app/internal/use-case/user-case"
	"github.com/ToyoKou0322/my-sns-app/state"
)

type UserHandler struct {
	State    *state.AppState
	Validate *validator.Validate
	Service  user_service.UserServiceContract
}

func NewUserHandler(state *state.AppState) *UserHandler {
	return &UserHandler{
		State:    state,
		Validate: validator.New(),
		Service:  user_service.NewUserService(state),
	}
}

func (h *UserHandler) CreateUser(w http.ResponseWriter, r *http.Request) *app_error.AppError {
	var req user_dto.CreateUserRequest
	defer r.Body.Close()

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return app_error.NewAppError(http.StatusBadRequest, "Invalid JSON", "body")
	}

	if err := h.Validate.Struct(req); err != nil {
		return app_error.NewAppError(http.StatusBadRequest, fmt.Sprintf("Invalid fields: %v", err), "validation")
	}

	resp, err := h.Service.Register(r.Context(), req)
	if err != nil {
		return err
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(handlers.CreateResponse("user registered successfully", *resp, requestID(r)))

	return nil
}

func (h *UserHandler) LoginUser(w http.ResponseWriter, r *http.Request) *app_error.AppError {
	var req user_dto.LoginRequest
	defer r.Body.Close()

	fp, fpErr := fingerprint(r)
	if fpErr != nil {
		return fpErr
	}

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return app_error.NewAppError(http.StatusBadRequest, "Invalid JSON", "body")
	}

	if err := h.Validate.Struct(req); err != nil {
		return app_error.NewAppError(http.StatusBadRequest, fmt.Sprintf("Invalid fields: %v", err), "validation")
	}

	resp, refresh, err := h.Service.Login(r.Context(), req, fp)
	if err != nil {
		return err
	}

	setRefreshCookie(w, refresh)

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(handlers.CreateResponse("login successful", *resp, requestID(r)))

	return nil
}

func (h *UserHandler) RefreshToken(w http.ResponseWriter, r *http.Request) *app_error.AppError {
	fp, fpErr := fingerprint(r)
	if fpErr != nil {
		return fpErr
	}

	cookie, cErr := r.Cookie("refresh_token")
	if cErr != nil || cookie.Value == "" {
		return app_error.NewAppError(http.StatusUnauthorized, "Refresh token missing", "refresh-token")
	}

	resp, refresh, err := h.Service.Refresh(r.Context(), cookie.Value, fp)
	if err != nil {
		return err
	}

	setRefreshCookie(w, refresh)

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(handlers.CreateResponse("token refreshed", *resp, requestID(r)))

	return nil
}

func (h *UserHandler) LogoutUser(w http.ResponseWriter, r *http.Request) *app_error.AppError {
	claims, cErr := callerClaims(r)
	if cErr != nil {
		return cErr
	}

	fp, fpErr := fingerprint(r)
	if fpErr != nil {
		return fpErr
	}

	if err := h.Service.Logout(r.Context(), claims.Sub, fp); err != nil {
		return err
	}

	// expire the refresh cookie as well
	http.SetCookie(w, &http.Cookie{
		Name:     "refresh_token",
		Value:    "",
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteStrictMode,
		Path:     "/",
		Expires:  time.Unix(0, 0),
	})

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(handlers.CreateResponse("logged out", struct{}{}, requestID(r)))

	return nil
}

func (h *UserHandler) GetMe(w http.ResponseWriter, r *http.Request) *app_error.AppError {
	claims, cErr := callerClaims(r)
	if cErr != nil {
		return cErr
	}

	identity, err := h.Service.ResolveIdentity(r.Context(), claims.Sub)
	if err != nil {
		return err
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(handlers.CreateResponse("identity resolved", *identity, requestID(r)))

	return nil
}

func (h *UserHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) *app_error.AppError {
	claims, cErr := callerClaims(r)
	if cErr != nil {
		return cErr
	}

	var req user_dto.UpdateProfileRequest
	defer r.Body.Close()

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return app_error.NewAppError(http.StatusBadRequest, "Invalid JSON", "body")
	}

	if err := h.Validate.Struct(req); err != nil {
		return app_error.NewAppError(http.StatusBadRequest, fmt.Sprintf("Invalid fields: %v", err), "validation")
	}

	identity, err := h.Service.UpdateProfile(r.Context(), req, claims.Sub)
	if err != nil {
		return err
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(handlers.CreateResponse("profile updated", *identity, requestID(r)))

	return nil
}

func setRefreshCookie(w http.ResponseWriter, refresh string) {
	http.SetCookie(w, &http.Cookie{
		Name:     "refresh_token",
		Value:    refresh,
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteStrictMode,
		Path:     "/",
		Expires:  time.Now().Add(7 * 24 * time.Hour),
	})
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
