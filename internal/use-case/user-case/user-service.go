package user_service

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/ToyoKou0322/my-sns-app/internal/dtos/user_dto"
	"github.com/ToyoKou0322/my-sns-app/internal/entity"
	app_error "github.com/ToyoKou0322/my-sns-app/internal/errors"
	profile_repo "github.com/ToyoKou0322/my-sns-app/internal/repo/profile"
	user_repo "github.com/ToyoKou0322/my-sns-app/internal/repo/user"
	"github.com/ToyoKou0322/my-sns-app/internal/utils"
	"github.com/ToyoKou0322/my-sns-app/internal/utils/types"
	"github.com/ToyoKou0322/my-sns-app/state"
)

const refreshSessionTTL = 7 * 24 * time.Hour

type UserService struct {
	AppState    *state.AppState
	UserRepo    user_repo.UserRepoContract
	ProfileRepo profile_repo.ProfileRepoContract
}

func NewUserService(appState *state.AppState) UserServiceContract {
	return &UserService{
		AppState:    appState,
		UserRepo:    user_repo.NewUserRepo(appState),
		ProfileRepo: profile_repo.NewProfileRepo(appState),
	}
}

func (u *UserService) Register(ctx context.Context, req user_dto.CreateUserRequest) (*user_dto.UserResponse, *app_error.AppError) {
	// count user, is the user already registered or not
	filter := &entity.UserFilter{
		Email:    &req.Email,
		Username: &req.Username,
	}
	count, err := u.UserRepo.CountUser(ctx, *filter)
	if err != nil {
		return nil, err
	}

	if count > 0 {
		return nil, app_error.NewAppError(http.StatusConflict, "username or email already registered", "credential-registered")
	}

	hashed, hashErr := utils.GenerateHash(req.Password)
	if hashErr != nil {
		return nil, app_error.NewAppError(http.StatusInternalServerError, hashErr.Error(), "password")
	}

	user := &entity.User{
		ID:           uuid.New().String(),
		Username:     req.Username,
		Email:        req.Email,
		PasswordHash: hashed,
		IsActive:     true,
		CreatedAt:    time.Now(),
		UpdatedAt:    time.Now(),
	}

	err = u.UserRepo.SaveUser(ctx, *user)
	if err != nil {
		return nil, err
	}

	return &user_dto.UserResponse{
		ID:        user.ID,
		Email:     user.Email,
		Username:  user.Username,
		CreatedAt: user.CreatedAt,
	}, nil
}

func (u *UserService) Login(ctx context.Context, req user_dto.LoginRequest, fingerprint string) (*user_dto.LoginResponse, string, *app_error.AppError) {
	user, err := u.UserRepo.FindUserByCredential(ctx, req.Username)
	if err != nil {
		if err.Code == http.StatusNotFound {
			// do not leak which part of the credential failed
			return nil, "", app_error.NewAppError(http.StatusUnauthorized, "invalid username or password", "credential")
		}
		return nil, "", err
	}

	ok, verifyErr := utils.VerifyHash(user.PasswordHash, req.Password)
	if verifyErr != nil {
		return nil, "", app_error.NewAppError(http.StatusInternalServerError, verifyErr.Error(), "password")
	}
	if !ok {
		return nil, "", app_error.NewAppError(http.StatusUnauthorized, "invalid username or password", "credential")
	}

	if !user.IsActive {
		return nil, "", app_error.NewAppError(http.StatusForbidden, "account is deactivated", "account-inactive")
	}

	access, refresh, jti, signErr := utils.IssueNewTokens(user.ID, user.Username, u.AppState.JwtSecret.Private)
	if signErr != nil {
		return nil, "", app_error.NewAppError(http.StatusInternalServerError, signErr.Error(), "sign-token")
	}

	now := time.Now()
	session := &types.RefreshSession{
		UserId:      user.ID,
		JTI:         jti,
		Fingerprint: fingerprint,
		IssueAt:     now.Unix(),
		ExpireAt:    now.Add(refreshSessionTTL).Unix(),
		Status:      "active",
	}

	sessionKey := fmt.Sprintf("session:%s:%s", user.ID, fingerprint)
	if cacheErr := utils.SetCacheData(ctx, u.AppState.Redis, sessionKey, session, refreshSessionTTL); cacheErr != nil {
		return nil, "", app_error.NewAppError(http.StatusInternalServerError, "failed to persist session", "redis-session")
	}

	identity, err := u.ResolveIdentity(ctx, user.ID)
	if err != nil {
		return nil, "", err
	}

	return &user_dto.LoginResponse{
		AccessToken: access,
		Identity:    *identity,
	}, refresh, nil
}

func (u *UserService) Refresh(ctx context.Context, refreshToken, fingerprint string) (*user_dto.LoginResponse, string, *app_error.AppError) {
	claims, parseErr := utils.ParseAndVerifySign(refreshToken, u.AppState.JwtSecret.Public)
	if parseErr != nil {
		return nil, "", app_error.NewAppError(http.StatusUnauthorized, "invalid refresh token", "refresh-token")
	}
	if claims.Jti == nil {
		return nil, "", app_error.NewAppError(http.StatusUnauthorized, "not a refresh token", "refresh-token")
	}

	sessionKey := fmt.Sprintf("session:%s:%s", claims.Sub, fingerprint)
	session, err := utils.GetCacheData[types.RefreshSession](ctx, u.AppState.Redis, sessionKey)
	if err != nil {
		return nil, "", err
	}
	if session == nil || session.Status != "active" || session.JTI != *claims.Jti {
		return nil, "", app_error.NewAppError(http.StatusUnauthorized, "session revoked or superseded", "session")
	}
	if session.ExpireAt < time.Now().Unix() {
		return nil, "", app_error.NewAppError(http.StatusUnauthorized, "session expired", "session")
	}

	access, refresh, jti, signErr := utils.IssueNewTokens(claims.Sub, claims.Username, u.AppState.JwtSecret.Private)
	if signErr != nil {
		return nil, "", app_error.NewAppError(http.StatusInternalServerError, signErr.Error(), "sign-token")
	}

	// rotate: the old refresh token dies with the old jti
	now := time.Now()
	session.JTI = jti
	session.IssueAt = now.Unix()
	session.ExpireAt = now.Add(refreshSessionTTL).Unix()
	if cacheErr := utils.SetCacheData(ctx, u.AppState.Redis, sessionKey, session, refreshSessionTTL); cacheErr != nil {
		return nil, "", app_error.NewAppError(http.StatusInternalServerError, "failed to rotate session", "redis-session")
	}

	identity, err := u.ResolveIdentity(ctx, claims.Sub)
	if err != nil {
		return nil, "", err
	}

	return &user_dto.LoginResponse{
		AccessToken: access,
		Identity:    *identity,
	}, refresh, nil
}

func (u *UserService) Logout(ctx context.Context, userId, fingerprint string) *app_error.AppError {
	sessionKey := fmt.Sprintf("session:%s:%s", userId, fingerprint)
	if err := utils.DeleteCacheData(ctx, u.AppState.Redis, sessionKey); err != nil {
		return app_error.NewAppError(http.StatusInternalServerError, "failed to drop session", "redis-session")
	}
	return nil
}

func (u *UserService) UpdateProfile(ctx context.Context, req user_dto.UpdateProfileRequest, userId string) (*entity.Identity, *app_error.AppError) {
	if req.DisplayName == nil && req.PhotoURL == nil {
		return nil, app_error.NewAppError(http.StatusBadRequest, "nothing to update", "profile")
	}

	if err := u.ProfileRepo.UpsertProfile(ctx, userId, req.DisplayName, req.PhotoURL); err != nil {
		return nil, err
	}

	return u.ResolveIdentity(ctx, userId)
}

// ResolveIdentity merges the identity record with the profile override: the
// override wins field-by-field where it is non-empty.
func (u *UserService) ResolveIdentity(ctx context.Context, userId string) (*entity.Identity, *app_error.AppError) {
	user, err := u.UserRepo.FindUserByID(ctx, userId)
	if err != nil {
		return nil, err
	}

	identity := &entity.Identity{
		UID:         user.ID,
		DisplayName: user.Username,
		PhotoURL:    user.PhotoURL,
		Email:       user.Email,
	}

	profile, err := u.ProfileRepo.FindProfile(ctx, userId)
	if err != nil {
		return nil, err
	}
	if profile != nil {
		if profile.DisplayName != "" {
			identity.DisplayName = profile.DisplayName
		}
		if profile.PhotoURL != "" {
			identity.PhotoURL = profile.PhotoURL
		}
	}

	return identity, nil
}
