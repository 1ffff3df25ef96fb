package api

import (
	"github.com/labstack/echo/v4"

	"github.com/libreriarexy/libreriarexy/internal/service"
)

type UserHandler struct {
	users *service.UserService
}

func NewUserHandler(users *service.UserService) *UserHandler {
	return &UserHandler{users: users}
}

// Register creates a pending account --> POST /register
func (h *UserHandler) Register(c echo.Context) error {
	var in service.RegisterInput
	if err := c.Bind(&in); err != nil {
		return c.JSON(400, map[string]string{"error": "invalid request payload"})
	}
	user, err := h.users.Register(c.Request().Context(), in)
	if err != nil {
		return errorJSON(c, err)
	}
	return c.JSON(201, user)
}

// Login issues a token --> POST /login
func (h *UserHandler) Login(c echo.Context) error {
	var in struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.Bind(&in); err != nil {
		return c.JSON(400, map[string]string{"error": "invalid request payload"})
	}
	token, err := h.users.Login(c.Request().Context(), in.Email, in.Password)
	if err != nil {
		return errorJSON(c, err)
	}
	return c.JSON(200, map[string]string{"token": token})
}

// Profile returns the logged-in user --> GET /profile
func (h *UserHandler) Profile(c echo.Context) error {
	cl := claims(c)
	if cl == nil {
		return c.JSON(401, map[string]string{"error": "unauthorized"})
	}
	user, err := h.users.GetByEmail(c.Request().Context(), cl.Email)
	if err != nil {
		return errorJSON(c, err)
	}
	return c.JSON(200, user)
}

// UpdateProfile replaces the mutable profile fields --> PUT /profile
func (h *UserHandler) UpdateProfile(c echo.Context) error {
	cl := claims(c)
	if cl == nil {
		return c.JSON(401, map[string]string{"error": "unauthorized"})
	}
	var in service.UpdateProfileInput
	if err := c.Bind(&in); err != nil {
		return c.JSON(400, map[string]string{"error": "invalid request payload"})
	}
	if err := h.users.UpdateProfile(c.Request().Context(), cl.UserID, in); err != nil {
		return errorJSON(c, err)
	}
	return c.JSON(200, map[string]string{"message": "profile updated"})
}
