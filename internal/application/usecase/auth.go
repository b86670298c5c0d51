package usecase

import (
	"context"
	"errors"
	"log"

	"github.com/google/uuid"

	"github.com/waste3d/learnhub-api/internal/application/authstate"
	"github.com/waste3d/learnhub-api/internal/domain"
	"github.com/waste3d/learnhub-api/internal/infrastructure/cache"
	"github.com/waste3d/learnhub-api/internal/infrastructure/repository"
	"github.com/waste3d/learnhub-api/internal/infrastructure/security"
)

var ErrInvalidCredentials = errors.New("invalid credentials")

type AuthUseCase struct {
	userRepo     *repository.UserRepository
	profileRepo  *repository.ProfileRepository
	tokenCache   *cache.TokenCache
	hasher       *security.PasswordHasher
	tokenManager *security.TokenManager
	events       *authstate.Broker
}

func NewAuthUseCase(
	ur *repository.UserRepository,
	pr *repository.ProfileRepository,
	tc *cache.TokenCache,
	h *security.PasswordHasher,
	tm *security.TokenManager,
	events *authstate.Broker,
) *AuthUseCase {
	return &AuthUseCase{
		userRepo:     ur,
		profileRepo:  pr,
		tokenCache:   tc,
		hasher:       h,
		tokenManager: tm,
		events:       events,
	}
}

func (uc *AuthUseCase) Register(ctx context.Context, username, email, password string) (string, error) {
	hash, err := uc.hasher.Hash(password)
	if err != nil {
		return "", err
	}

	user := &domain.User{
		ID:       uuid.New(),
		Username: username,
		Email:    email,
		Password: hash,
		Role:     domain.RoleStudent,
	}

	if err := uc.userRepo.Create(ctx, user); err != nil {
		return "", err
	}

	profile := &domain.Profile{
		ID:       user.ID,
		Email:    email,
		Username: username,
		Role:     user.Role,
	}
	if err := uc.profileRepo.Create(ctx, profile); err != nil {
		// Юзер уже создан. В идеале — откатывать, пока просто логируем.
		log.Printf("auth: failed to create profile for %s: %v", user.ID, err)
	}

	return user.ID.String(), nil
}

func (uc *AuthUseCase) Login(ctx context.Context, email, password string) (string, string, error) {
	user, err := uc.userRepo.GetByEmail(ctx, email)
	if err != nil {
		return "", "", ErrInvalidCredentials
	}
	if err := uc.hasher.Compare(user.Password, password); err != nil {
		return "", "", ErrInvalidCredentials
	}

	access, refresh, err := uc.generateAndSaveTokens(ctx, user.ID.String(), user.Role)
	if err != nil {
		return "", "", err
	}

	uc.publish(authstate.SignedIn, user.ID, access)
	return access, refresh, nil
}

func (uc *AuthUseCase) Refresh(ctx context.Context, oldRefreshToken string) (string, string, error) {
	userID, err := uc.tokenManager.ValidateRefreshToken(oldRefreshToken)
	if err != nil {
		return "", "", err
	}

	cachedID, err := uc.tokenCache.CheckRefresh(ctx, oldRefreshToken)
	if err != nil || cachedID != userID {
		return "", "", errors.New("token revoked")
	}
	// Ротация: старый токен одноразовый
	_ = uc.tokenCache.DeleteRefresh(ctx, oldRefreshToken)

	uid, err := uuid.Parse(userID)
	if err != nil {
		return "", "", errors.New("invalid token")
	}
	user, err := uc.userRepo.GetByID(ctx, uid)
	if err != nil {
		return "", "", err
	}

	access, refresh, err := uc.generateAndSaveTokens(ctx, userID, user.Role)
	if err != nil {
		return "", "", err
	}

	uc.publish(authstate.TokenRefreshed, uid, access)
	return access, refresh, nil
}

func (uc *AuthUseCase) Logout(ctx context.Context, refreshToken string) error {
	userIDStr, validateErr := uc.tokenManager.ValidateRefreshToken(refreshToken)

	// Токен из Redis удаляем в любом случае
	if err := uc.tokenCache.DeleteRefresh(ctx, refreshToken); err != nil {
		return err
	}

	if validateErr == nil {
		if uid, err := uuid.Parse(userIDStr); err == nil {
			uc.publish(authstate.SignedOut, uid, "")
		}
	}
	return nil
}

func (uc *AuthUseCase) ValidateAccess(token string) (string, string, error) {
	return uc.tokenManager.ValidateAccessToken(token)
}

func (uc *AuthUseCase) generateAndSaveTokens(ctx context.Context, userID, role string) (string, string, error) {
	access, refresh, err := uc.tokenManager.Generate(userID, role)
	if err != nil {
		return "", "", err
	}

	if err := uc.tokenCache.SaveRefresh(ctx, userID, refresh); err != nil {
		return "", "", err
	}
	return access, refresh, nil
}

func (uc *AuthUseCase) publish(t authstate.EventType, userID uuid.UUID, accessToken string) {
	if uc.events == nil {
		return
	}
	uc.events.Publish(authstate.Event{
		Type:        t,
		UserID:      userID,
		AccessToken: accessToken,
	})
}
