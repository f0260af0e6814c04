// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package handlers_test

import (
	"net/http"
	"strings"
	"testing"
	"time"

	"codeberg.org/oliverandrich/account-service/internal/handlers"
	"codeberg.org/oliverandrich/account-service/internal/repository"
	"codeberg.org/oliverandrich/account-service/internal/services/account"
	"codeberg.org/oliverandrich/account-service/internal/testutil"
	"codeberg.org/oliverandrich/account-service/internal/token"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testBaseURL     = "http://localhost:5000"
	testFrontendURL = "https://app.example.com"
)

func newTestAuthHandlers(t *testing.T) (*handlers.AuthHandlers, *repository.Repository, *testutil.FakeNotifier) {
	t.Helper()
	_, repo := testutil.NewTestDB(t)
	codec := token.NewCodec([]byte("test-secret"), time.Hour)
	notifier := &testutil.FakeNotifier{}
	svc := account.NewService(repo, codec, notifier, testBaseURL)
	h := handlers.NewAuth(svc, testFrontendURL)
	return h, repo, notifier
}

func TestRegister(t *testing.T) {
	h, _, notifier := newTestAuthHandlers(t)
	e := echo.New()

	body := strings.NewReader(`{"firstName":"Jane","lastName":"Doe","email":"jane@example.com","password":"pw1"}`)
	c, rec := testutil.NewEchoContext(e, http.MethodPost, "/register", body)

	err := h.Register(c)

	require.NoError(t, err)
	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Contains(t, rec.Body.String(), "check your email")
	assert.Len(t, notifier.Sent, 1)

	// Neither the hash nor the raw token leaks into the response.
	assert.NotContains(t, rec.Body.String(), "password")
	assert.NotContains(t, rec.Body.String(), notifier.Sent[0].Link)
}

func TestRegister_DuplicateEmail(t *testing.T) {
	h, _, _ := newTestAuthHandlers(t)
	e := echo.New()

	body := strings.NewReader(`{"firstName":"Jane","lastName":"Doe","email":"jane@example.com","password":"pw1"}`)
	c, rec := testutil.NewEchoContext(e, http.MethodPost, "/register", body)
	require.NoError(t, h.Register(c))
	require.Equal(t, http.StatusCreated, rec.Code)

	body = strings.NewReader(`{"firstName":"John","lastName":"Smith","email":"jane@example.com","password":"pw2"}`)
	c, rec = testutil.NewEchoContext(e, http.MethodPost, "/register", body)

	err := h.Register(c)

	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "already registered")
}

func TestRegister_NotifierFailure(t *testing.T) {
	h, _, notifier := newTestAuthHandlers(t)
	e := echo.New()

	notifier.Err = assert.AnError

	body := strings.NewReader(`{"firstName":"Jane","lastName":"Doe","email":"jane@example.com","password":"pw1"}`)
	c, rec := testutil.NewEchoContext(e, http.MethodPost, "/register", body)

	err := h.Register(c)

	require.NoError(t, err)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), "Error registering user")
}

func TestLogin_UserNotFound(t *testing.T) {
	h, _, _ := newTestAuthHandlers(t)
	e := echo.New()

	body := strings.NewReader(`{"email":"nobody@example.com","password":"pw1"}`)
	c, rec := testutil.NewEchoContext(e, http.MethodPost, "/login", body)

	err := h.Login(c)

	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "User not found")
}

func TestActivate_InvalidToken(t *testing.T) {
	h, _, _ := newTestAuthHandlers(t)
	e := echo.New()

	c, rec := testutil.NewEchoContext(e, http.MethodGet, "/activate/garbage", nil)
	c.SetParamNames("token")
	c.SetParamValues("garbage")

	err := h.Activate(c)

	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "Invalid activation token.")
}

// TestAccountLifecycle walks the full flow: register, blocked login,
// activate via the emailed link, successful login, wrong password.
func TestAccountLifecycle(t *testing.T) {
	h, _, notifier := newTestAuthHandlers(t)
	e := echo.New()

	// register -> 201
	body := strings.NewReader(`{"firstName":"A","lastName":"B","email":"a@x.com","password":"pw1"}`)
	c, rec := testutil.NewEchoContext(e, http.MethodPost, "/register", body)
	require.NoError(t, h.Register(c))
	require.Equal(t, http.StatusCreated, rec.Code)

	// login before activation -> 403
	body = strings.NewReader(`{"email":"a@x.com","password":"pw1"}`)
	c, rec = testutil.NewEchoContext(e, http.MethodPost, "/login", body)
	require.NoError(t, h.Login(c))
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Contains(t, rec.Body.String(), "not activated")

	// activate with the emailed token -> redirect with email pre-filled
	require.Len(t, notifier.Sent, 1)
	tok := strings.TrimPrefix(notifier.Sent[0].Link, testBaseURL+"/activate/")

	c, rec = testutil.NewEchoContext(e, http.MethodGet, "/activate/"+tok, nil)
	c.SetParamNames("token")
	c.SetParamValues(tok)
	require.NoError(t, h.Activate(c))
	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, testFrontendURL+"/login?email=a%40x.com", rec.Header().Get(echo.HeaderLocation))

	// activating again with the same still-valid token is a no-op success
	c, rec = testutil.NewEchoContext(e, http.MethodGet, "/activate/"+tok, nil)
	c.SetParamNames("token")
	c.SetParamValues(tok)
	require.NoError(t, h.Activate(c))
	assert.Equal(t, http.StatusFound, rec.Code)

	// login after activation -> 200
	body = strings.NewReader(`{"email":"a@x.com","password":"pw1"}`)
	c, rec = testutil.NewEchoContext(e, http.MethodPost, "/login", body)
	require.NoError(t, h.Login(c))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Login successful")

	// wrong password -> 400
	body = strings.NewReader(`{"email":"a@x.com","password":"wrong"}`)
	c, rec = testutil.NewEchoContext(e, http.MethodPost, "/login", body)
	require.NoError(t, h.Login(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "Invalid password")
}

func TestHealth(t *testing.T) {
	_, repo := testutil.NewTestDB(t)
	h := handlers.New(repo)
	e := echo.New()

	c, rec := testutil.NewEchoContext(e, http.MethodGet, "/health", nil)

	err := h.Health(c)

	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "ok")
}
