package handler

import (
	"errors"
	"net/http"

	auth "storefront/internal/usecase/auth_usecase"

	"github.com/labstack/echo/v4"
)

// 会員登録・ログイン・ログアウト・プロフィール
type AuthHandler struct {
	register *auth.RegisterUserUsecase
	login    *auth.LoginUsecase
	session  *auth.SessionUsecase
}

func NewAuthHandler(register *auth.RegisterUserUsecase, login *auth.LoginUsecase, session *auth.SessionUsecase) *AuthHandler {
	return &AuthHandler{register: register, login: login, session: session}
}

type RegisterRequest struct {
	Email    string `json:"email" validate:"required,email,max=255"`
	Name     string `json:"name" validate:"required,max=255"`
	Password string `json:"password" validate:"required,min=8,max=72"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type UpdateProfileRequest struct {
	Name  string `json:"name" validate:"required,max=255"`
	Phone string `json:"phone" validate:"max=30"`
}

// public は認証なし、authed は AuthJWT の後ろ
func (h *AuthHandler) RegisterRoutes(public, authed *echo.Group) {
	public.POST("/auth/register", h.Register)
	public.POST("/auth/login", h.Login)

	authed.POST("/auth/logout", h.Logout)
	authed.GET("/auth/me", h.Me)
	authed.PUT("/auth/me", h.UpdateMe)
}

func (h *AuthHandler) Register(c echo.Context) error {
	var req RegisterRequest
	if err := bindAndValidate(c, &req); err != nil {
		return writeError(c, err)
	}

	out, err := h.register.Execute(c.Request().Context(), auth.RegisterUserInput{
		Email:    req.Email,
		Name:     req.Name,
		Password: req.Password,
	})
	if err != nil {
		return writeAuthError(c, err)
	}
	return c.JSON(http.StatusCreated, map[string]interface{}{"user": out.User})
}

func (h *AuthHandler) Login(c echo.Context) error {
	var req LoginRequest
	if err := bindAndValidate(c, &req); err != nil {
		return writeError(c, err)
	}

	out, err := h.login.Execute(c.Request().Context(), auth.LoginInput{
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		return writeAuthError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *AuthHandler) Logout(c echo.Context) error {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		return unauthorized(c)
	}
	if err := h.session.Logout(c.Request().Context(), userID); err != nil {
		return writeAuthError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]bool{"ok": true})
}

func (h *AuthHandler) Me(c echo.Context) error {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		return unauthorized(c)
	}
	user, err := h.session.Profile(c.Request().Context(), userID)
	if err != nil {
		return writeAuthError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"user": user})
}

func (h *AuthHandler) UpdateMe(c echo.Context) error {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		return unauthorized(c)
	}
	var req UpdateProfileRequest
	if err := bindAndValidate(c, &req); err != nil {
		return writeError(c, err)
	}
	user, err := h.session.UpdateProfile(c.Request().Context(), userID, auth.UpdateProfileInput{
		Name:  req.Name,
		Phone: req.Phone,
	})
	if err != nil {
		return writeAuthError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"user": user})
}

// auth のセンチネルエラーを変換。それ以外は共通の writeError
func writeAuthError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, auth.ErrInvalidEmailFormat):
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error(), Code: CodeValidation, Field: "email"})
	case errors.Is(err, auth.ErrNameRequired):
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error(), Code: CodeValidation, Field: "name"})
	case errors.Is(err, auth.ErrPasswordTooShort), errors.Is(err, auth.ErrWeakPassword):
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error(), Code: CodeValidation, Field: "password"})
	case errors.Is(err, auth.ErrEmailAlreadyExists):
		return c.JSON(http.StatusConflict, ErrorResponse{Error: err.Error(), Code: CodeConflict})
	case errors.Is(err, auth.ErrInvalidCredentials):
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: err.Error(), Code: CodeUnauthorized})
	case errors.Is(err, auth.ErrUserInactive):
		return c.JSON(http.StatusForbidden, ErrorResponse{Error: err.Error(), Code: CodeForbidden})
	case errors.Is(err, auth.ErrUserNotFound):
		return c.JSON(http.StatusNotFound, ErrorResponse{Error: err.Error(), Code: CodeNotFound})
	}
	return writeError(c, err)
}
