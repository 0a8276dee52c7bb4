package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"project-manager/webapp/internal/middleware"

	"github.com/gin-gonic/gin"
)

func TestSession_MintsCookieOnFirstContact(t *testing.T) {
	gin.SetMode(gin.TestMode)

	var seen string
	router := gin.New()
	router.Use(middleware.Session())
	router.GET("/", func(c *gin.Context) {
		seen = middleware.SessionID(c)
		c.Status(http.StatusOK)
	})

	req, _ := http.NewRequest("GET", "/", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if seen == "" {
		t.Fatal("expected a session ID to be set on the context")
	}

	var cookie *http.Cookie
	for _, ck := range w.Result().Cookies() {
		if ck.Name == "sid" {
			cookie = ck
		}
	}
	if cookie == nil {
		t.Fatal("expected a sid cookie on the response")
	}
	if cookie.Value != seen {
		t.Errorf("cookie value %q does not match context session ID %q", cookie.Value, seen)
	}
	if !cookie.HttpOnly {
		t.Error("expected the sid cookie to be HttpOnly")
	}
}

func TestSession_ReusesExistingCookie(t *testing.T) {
	gin.SetMode(gin.TestMode)

	var seen string
	router := gin.New()
	router.Use(middleware.Session())
	router.GET("/", func(c *gin.Context) {
		seen = middleware.SessionID(c)
		c.Status(http.StatusOK)
	})

	req, _ := http.NewRequest("GET", "/", nil)
	req.AddCookie(&http.Cookie{Name: "sid", Value: "existing-session"})
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if seen != "existing-session" {
		t.Errorf("Expected session ID %q, got %q", "existing-session", seen)
	}
	for _, ck := range w.Result().Cookies() {
		if ck.Name == "sid" {
			t.Error("expected no new sid cookie when one was presented")
		}
	}
}
