package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"project-manager/webapp/internal/api"
)

// AuthAPI is the slice of the remote client the auth pages need.
type AuthAPI interface {
	Login(ctx context.Context, email, password string) error
	Register(ctx context.Context, name, email, password string) error
}

type AuthHandler struct {
	api    AuthAPI
	logger *slog.Logger
}

func NewAuthHandler(a AuthAPI, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{api: a, logger: logger}
}

func (h *AuthHandler) LoginPage(c *gin.Context) {
	c.HTML(http.StatusOK, "login.tmpl", gin.H{"Active": "login"})
}

// Login forwards the credentials upstream. Success lands on the home page;
// any failure re-renders the form with a generic banner.
func (h *AuthHandler) Login(c *gin.Context) {
	email := strings.TrimSpace(c.PostForm("email"))
	password := c.PostForm("password")

	if err := h.api.Login(c.Request.Context(), email, password); err != nil {
		h.logger.Info("login rejected", "email", email, "error", err)
		c.HTML(authStatus(err), "login.tmpl", gin.H{
			"Active": "login",
			"Alert":  "Invalid credentials",
			"Email":  email,
		})
		return
	}
	c.Redirect(http.StatusSeeOther, "/")
}

func (h *AuthHandler) RegisterPage(c *gin.Context) {
	c.HTML(http.StatusOK, "register.tmpl", gin.H{"Active": "register"})
}

// Register creates the account upstream and sends the new user to the
// login page on success.
func (h *AuthHandler) Register(c *gin.Context) {
	name := strings.TrimSpace(c.PostForm("name"))
	email := strings.TrimSpace(c.PostForm("email"))
	password := c.PostForm("password")

	if err := h.api.Register(c.Request.Context(), name, email, password); err != nil {
		h.logger.Info("registration rejected", "email", email, "error", err)
		c.HTML(authStatus(err), "register.tmpl", gin.H{
			"Active": "register",
			"Alert":  "Registration failed",
			"Name":   name,
			"Email":  email,
		})
		return
	}
	c.Redirect(http.StatusSeeOther, "/login")
}

// authStatus maps an upstream rejection to the page's response code,
// keeping credential errors distinct from transport failures.
func authStatus(err error) int {
	var se *api.StatusError
	if errors.As(err, &se) && se.Code < 500 {
		return http.StatusUnauthorized
	}
	return http.StatusBadGateway
}
