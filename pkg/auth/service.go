// Package auth implements the user-facing authentication flows on top
// of the user store: registration, login, token verify/refresh and
// account lifecycle. Outcomes are returned as AuthResponse values with
// localized messages; raw errors never cross the HTTP boundary.
package auth

import (
	"context"
	"errors"
	"strconv"

	"golang.org/x/crypto/bcrypt"

	"synapse/pkg/logger"
	"synapse/pkg/models"
	"synapse/pkg/userstore"
	"synapse/pkg/validation"
)

// User-facing messages. Validation messages come from pkg/validation;
// these cover the service-level outcomes.
const (
	msgRegistered      = "注册成功"
	msgLoggedIn        = "登录成功"
	msgRefreshed       = "令牌刷新成功"
	msgVerified        = "令牌验证成功"
	msgBadCredentials  = "邮箱或密码错误"
	msgEmailTaken      = "该邮箱已被注册"
	msgUsernameTaken   = "该用户名已被使用"
	msgInternal        = "服务器内部错误"
	msgUserMissing     = "用户不存在"
	msgNoRefreshToken  = "未提供刷新令牌"
	msgBadRefreshToken = "无效的刷新令牌"
	msgNoAccessToken   = "未提供认证令牌"
	msgBadAccessToken  = "无效的认证令牌"
	msgBadUserID       = "无效的用户ID格式"
	msgWrongPassword   = "当前密码错误"
	msgDeleted         = "用户删除成功"
	msgHardDeleted     = "用户永久删除成功"
	msgRestored        = "用户恢复成功"
	msgDeleteFailed    = "用户删除失败"
	msgRestoreFailed   = "用户恢复失败"
	msgPasswordUpdated = "密码更新成功"
	msgProfileUpdated  = "资料更新成功"
	msgUpdateFailed    = "资料更新失败"
)

const bcryptCost = 10

// Service wires validation, hashing, token issuance and the user store.
type Service struct {
	users  *userstore.Store
	tokens *TokenManager
}

// NewService builds the auth service.
func NewService(users *userstore.Store, tokens *TokenManager) *Service {
	return &Service{users: users, tokens: tokens}
}

// Tokens exposes the token manager for middleware and the session
// refresher.
func (s *Service) Tokens() *TokenManager { return s.tokens }

func apiUser(u *userstore.User) *models.User {
	return &models.User{
		ID:        strconv.FormatInt(u.ID, 10),
		Email:     u.Email,
		Username:  u.Username,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}

func fail(msg string) models.AuthResponse {
	return models.AuthResponse{Success: false, Message: msg}
}

func (s *Service) issue(u *models.User, msg string) models.AuthResponse {
	access, err := s.tokens.GenerateAccessToken(u)
	if err != nil {
		logger.Error("access_token_sign_failed", "user", u.ID, "error", err)
		return fail(msgInternal)
	}
	refresh, err := s.tokens.GenerateRefreshToken(u.ID)
	if err != nil {
		logger.Error("refresh_token_sign_failed", "user", u.ID, "error", err)
		return fail(msgInternal)
	}
	return models.AuthResponse{
		Success:      true,
		User:         u,
		AccessToken:  access,
		RefreshToken: refresh,
		Message:      msg,
	}
}

// Register validates input, rejects duplicate email/username and
// creates the account with a bcrypt-hashed password.
func (s *Service) Register(ctx context.Context, req models.RegisterRequest) models.AuthResponse {
	if v := validation.Registration(req.Email, req.Username, req.Password); !v.Valid() {
		return fail(v.Message())
	}

	if taken, err := s.users.EmailExists(ctx, req.Email); err != nil {
		logger.Error("email_exists_check_failed", "error", err)
		return fail(msgInternal)
	} else if taken {
		return fail(msgEmailTaken)
	}
	if taken, err := s.users.UsernameExists(ctx, req.Username); err != nil {
		logger.Error("username_exists_check_failed", "error", err)
		return fail(msgInternal)
	} else if taken {
		return fail(msgUsernameTaken)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcryptCost)
	if err != nil {
		logger.Error("password_hash_failed", "error", err)
		return fail(msgInternal)
	}
	u, err := s.users.Create(ctx, req.Email, req.Username, string(hash))
	if err != nil {
		logger.Error("user_create_failed", "error", err)
		return fail(msgInternal)
	}
	logger.Info("user_registered", "id", u.ID, "username", u.Username)
	return s.issue(apiUser(u), msgRegistered)
}

// Login checks credentials. Unknown email and wrong password return the
// same generic message so callers cannot distinguish the two.
func (s *Service) Login(ctx context.Context, req models.LoginRequest) models.AuthResponse {
	if v := validation.Login(req.Email, req.Password); !v.Valid() {
		return fail(v.Message())
	}
	u, err := s.users.FindByEmail(ctx, req.Email)
	if errors.Is(err, userstore.ErrNotFound) {
		return fail(msgBadCredentials)
	}
	if err != nil {
		logger.Error("login_lookup_failed", "error", err)
		return fail(msgInternal)
	}
	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(req.Password)) != nil {
		return fail(msgBadCredentials)
	}
	logger.Info("user_logged_in", "id", u.ID)
	return s.issue(apiUser(u), msgLoggedIn)
}

// Verify validates an access token and loads the user behind it.
func (s *Service) Verify(ctx context.Context, accessToken string) models.AuthResponse {
	if accessToken == "" {
		return fail(msgNoAccessToken)
	}
	claims, err := s.tokens.VerifyAccessToken(accessToken)
	if err != nil {
		return fail(msgBadAccessToken)
	}
	u, err := s.lookup(ctx, claims.UserID)
	if err != nil {
		return fail(msgUserMissing)
	}
	return models.AuthResponse{Success: true, User: apiUser(u), Message: msgVerified}
}

// Refresh validates a refresh token and issues a fresh token pair.
func (s *Service) Refresh(ctx context.Context, refreshToken string) models.AuthResponse {
	if refreshToken == "" {
		return fail(msgNoRefreshToken)
	}
	claims, err := s.tokens.VerifyRefreshToken(refreshToken)
	if err != nil {
		return fail(msgBadRefreshToken)
	}
	u, err := s.lookup(ctx, claims.UserID)
	if err != nil {
		return fail(msgUserMissing)
	}
	return s.issue(apiUser(u), msgRefreshed)
}

func (s *Service) lookup(ctx context.Context, userID string) (*userstore.User, error) {
	id, err := strconv.ParseInt(userID, 10, 64)
	if err != nil {
		return nil, userstore.ErrNotFound
	}
	return s.users.FindByID(ctx, id)
}

// UpdatePassword verifies the current password before storing the new
// hash.
func (s *Service) UpdatePassword(ctx context.Context, userID, currentPassword, newPassword string) models.AuthResponse {
	if v := validation.Password(newPassword); !v.Valid() {
		return fail(v.Message())
	}
	id, err := strconv.ParseInt(userID, 10, 64)
	if err != nil {
		return fail(msgBadUserID)
	}
	u, err := s.users.FindByID(ctx, id)
	if err != nil {
		return fail(msgUserMissing)
	}
	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(currentPassword)) != nil {
		return fail(msgWrongPassword)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcryptCost)
	if err != nil {
		return fail(msgInternal)
	}
	if err := s.users.UpdatePassword(ctx, id, string(hash)); err != nil {
		logger.Error("password_update_failed", "id", id, "error", err)
		return fail(msgInternal)
	}
	return models.AuthResponse{Success: true, Message: msgPasswordUpdated}
}

// UpdateProfile changes email and/or username after conflict checks.
func (s *Service) UpdateProfile(ctx context.Context, userID, email, username string) models.AuthResponse {
	id, err := strconv.ParseInt(userID, 10, 64)
	if err != nil {
		return fail(msgBadUserID)
	}
	if email != "" {
		if v := validation.Email(email); !v.Valid() {
			return fail(v.Message())
		}
		if taken, err := s.users.EmailExists(ctx, email); err != nil {
			return fail(msgInternal)
		} else if taken {
			return fail("该邮箱已被使用")
		}
	}
	if username != "" {
		if v := validation.Username(username); !v.Valid() {
			return fail(v.Message())
		}
		if taken, err := s.users.UsernameExists(ctx, username); err != nil {
			return fail(msgInternal)
		} else if taken {
			return fail(msgUsernameTaken)
		}
	}
	u, err := s.users.UpdateProfile(ctx, id, email, username)
	if err != nil {
		logger.Error("profile_update_failed", "id", id, "error", err)
		return fail(msgUpdateFailed)
	}
	return models.AuthResponse{Success: true, User: apiUser(u), Message: msgProfileUpdated}
}

// Delete soft-deletes by default; permanent removes the row.
func (s *Service) Delete(ctx context.Context, userID string, permanent bool) models.AuthResponse {
	id, err := strconv.ParseInt(userID, 10, 64)
	if err != nil {
		return fail(msgBadUserID)
	}
	if permanent {
		err = s.users.HardDelete(ctx, id)
	} else {
		err = s.users.SoftDelete(ctx, id)
	}
	if errors.Is(err, userstore.ErrNotFound) {
		return fail(msgUserMissing)
	}
	if err != nil {
		logger.Error("user_delete_failed", "id", id, "permanent", permanent, "error", err)
		return fail(msgDeleteFailed)
	}
	if permanent {
		return models.AuthResponse{Success: true, Message: msgHardDeleted}
	}
	return models.AuthResponse{Success: true, Message: msgDeleted}
}

// Restore clears a soft deletion.
func (s *Service) Restore(ctx context.Context, userID string) models.AuthResponse {
	id, err := strconv.ParseInt(userID, 10, 64)
	if err != nil {
		return fail(msgBadUserID)
	}
	err = s.users.Restore(ctx, id)
	if errors.Is(err, userstore.ErrNotFound) {
		return fail(msgUserMissing)
	}
	if err != nil {
		logger.Error("user_restore_failed", "id", id, "error", err)
		return fail(msgRestoreFailed)
	}
	return models.AuthResponse{Success: true, Message: msgRestored}
}

// Stats proxies the administrative user counters.
func (s *Service) Stats(ctx context.Context) (userstore.Stats, error) {
	return s.users.GetStats(ctx)
}
