package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/hotel-reservation/internal/model"
	"github.com/iliyamo/hotel-reservation/internal/store"
	"github.com/iliyamo/hotel-reservation/internal/utils"
)

// AuthHandler issues the access tokens the reservation flow later
// resolves identities from.  Accounts live in the active backend like
// every other collection, so signup keeps working after a downgrade to
// the fallback store.
type AuthHandler struct {
	Store        store.Backend
	JWTSecret    string
	AccessTTLMin int
	BcryptCost   int
}

// NewAuthHandler constructs an AuthHandler.
func NewAuthHandler(s store.Backend, secret string, ttlMin, bcryptCost int) *AuthHandler {
	if s == nil {
		panic("nil backend passed to NewAuthHandler")
	}
	return &AuthHandler{Store: s, JWTSecret: secret, AccessTTLMin: ttlMin, BcryptCost: bcryptCost}
}

type signupRequest struct {
	Email     string `json:"email"`
	Password  string `json:"password"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Role      string `json:"role"`
}

// Signup handles POST /auth/signup.  The role defaults to cliente;
// only the two self-service roles can be requested.
func (h *AuthHandler) Signup(c echo.Context) error {
	var body signupRequest
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	body.Email = strings.TrimSpace(body.Email)
	if body.Email == "" || body.Password == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "email and password are required"})
	}
	role := body.Role
	if role == "" {
		role = model.RoleClient
	}
	if role != model.RoleClient && role != model.RoleEmployee {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid role"})
	}
	hash, err := utils.HashPassword(body.Password, h.BcryptCost)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal server error"})
	}
	user := &model.User{
		Email:        body.Email,
		PasswordHash: hash,
		FirstName:    body.FirstName,
		LastName:     body.LastName,
		Role:         role,
	}
	if err := h.Store.CreateUser(c.Request().Context(), user); err != nil {
		return writeStoreError(c, err)
	}
	return c.JSON(http.StatusCreated, echo.Map{
		"message": "User created successfully",
		"user":    user,
	})
}

type signinRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Signin handles POST /auth/signin.  A wrong email and a wrong
// password produce the same response so the endpoint does not leak
// which accounts exist.
func (h *AuthHandler) Signin(c echo.Context) error {
	var body signinRequest
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	user, err := h.Store.UserByEmail(c.Request().Context(), body.Email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid credentials"})
		}
		return writeStoreError(c, err)
	}
	if !utils.VerifyPassword(user.PasswordHash, body.Password) {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid credentials"})
	}
	token, err := utils.NewAccessToken(h.JWTSecret, user.ID, user.Email, user.Role, h.AccessTTLMin)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal server error"})
	}
	return c.JSON(http.StatusOK, echo.Map{
		"message":      "Login successful",
		"access_token": token.Token,
		"expires_at":   token.Exp,
		"user":         user,
	})
}
