// file: handler/auth_handler_test.go

package handler_test

import (
	"encoding/json"
	"fmt"
	"go-todo-api/handler"
	"go-todo-api/model"
	"go-todo-api/router"
	"go-todo-api/service"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type authResponseBody struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
	User         struct {
		ID    int    `json:"id"`
		Name  string `json:"name"`
		Email string `json:"email"`
	} `json:"user"`
}

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()
	userRepo := newFakeUserRepo()
	tokenRepo := newFakeTokenRepo()
	todoRepo := newFakeTodoRepo()

	authService := service.NewAuthServiceWithOptions(userRepo, tokenRepo, "handler-test-secret", time.Minute, time.Hour)
	todoService := service.NewTodoService(todoRepo, nil)

	return router.NewRouter(
		handler.NewAuthHandler(authService),
		handler.NewTodoHandler(todoService),
		handler.AuthMiddleware(authService),
	)
}

func doJSON(t *testing.T, r http.Handler, method, path, body, token string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)
	return rr
}

func TestAuthEndpoints(t *testing.T) {
	r := newTestRouter(t)

	// Register
	rr := doJSON(t, r, "POST", "/api/auth/register", `{"name":"A","email":"a@x.com","password":"secret1"}`, "")
	assert.Equal(t, http.StatusCreated, rr.Code)

	var registered authResponseBody
	assert.NoError(t, json.Unmarshal(rr.Body.Bytes(), &registered))
	assert.NotEmpty(t, registered.AccessToken)
	assert.NotEmpty(t, registered.RefreshToken)
	assert.Equal(t, "A", registered.User.Name)
	assert.Equal(t, "a@x.com", registered.User.Email)
	assert.NotContains(t, rr.Body.String(), "password", "no password material may leave the server")

	t.Run("duplicate registration", func(t *testing.T) {
		rr := doJSON(t, r, "POST", "/api/auth/register", `{"name":"B","email":"a@x.com","password":"secret2"}`, "")
		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})

	t.Run("invalid registration payload", func(t *testing.T) {
		rr := doJSON(t, r, "POST", "/api/auth/register", `{"name":"","email":"not-an-email","password":"x"}`, "")
		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})

	t.Run("login with wrong password", func(t *testing.T) {
		rr := doJSON(t, r, "POST", "/api/auth/login", `{"email":"a@x.com","password":"wrong"}`, "")
		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})

	t.Run("login opens a second session", func(t *testing.T) {
		rr := doJSON(t, r, "POST", "/api/auth/login", `{"email":"a@x.com","password":"secret1"}`, "")
		assert.Equal(t, http.StatusOK, rr.Code)

		var loggedIn authResponseBody
		assert.NoError(t, json.Unmarshal(rr.Body.Bytes(), &loggedIn))
		assert.Equal(t, registered.User.ID, loggedIn.User.ID)
		assert.NotEqual(t, registered.RefreshToken, loggedIn.RefreshToken)

		// The registration session's refresh token must still work.
		rr = doJSON(t, r, "POST", "/api/auth/refresh", fmt.Sprintf(`{"refreshToken":%q}`, registered.RefreshToken), "")
		assert.Equal(t, http.StatusOK, rr.Code)
	})
}

func TestRefreshEndpoint(t *testing.T) {
	r := newTestRouter(t)

	rr := doJSON(t, r, "POST", "/api/auth/register", `{"name":"A","email":"a@x.com","password":"secret1"}`, "")
	assert.Equal(t, http.StatusCreated, rr.Code)
	var registered authResponseBody
	assert.NoError(t, json.Unmarshal(rr.Body.Bytes(), &registered))

	t.Run("missing token", func(t *testing.T) {
		rr := doJSON(t, r, "POST", "/api/auth/refresh", `{}`, "")
		assert.Equal(t, http.StatusUnauthorized, rr.Code)
	})

	t.Run("garbage token", func(t *testing.T) {
		rr := doJSON(t, r, "POST", "/api/auth/refresh", `{"refreshToken":"garbage"}`, "")
		assert.Equal(t, http.StatusUnauthorized, rr.Code)
	})

	t.Run("rotation is single use", func(t *testing.T) {
		body := fmt.Sprintf(`{"refreshToken":%q}`, registered.RefreshToken)

		rr := doJSON(t, r, "POST", "/api/auth/refresh", body, "")
		assert.Equal(t, http.StatusOK, rr.Code)

		var pair service.TokenPair
		assert.NoError(t, json.Unmarshal(rr.Body.Bytes(), &pair))
		assert.NotEmpty(t, pair.AccessToken)
		assert.NotEqual(t, registered.RefreshToken, pair.RefreshToken)

		// Replaying the consumed token must fail.
		rr = doJSON(t, r, "POST", "/api/auth/refresh", body, "")
		assert.Equal(t, http.StatusUnauthorized, rr.Code)

		// The replacement works.
		rr = doJSON(t, r, "POST", "/api/auth/refresh", fmt.Sprintf(`{"refreshToken":%q}`, pair.RefreshToken), "")
		assert.Equal(t, http.StatusOK, rr.Code)
	})
}

func TestLogoutEndpoint(t *testing.T) {
	r := newTestRouter(t)

	rr := doJSON(t, r, "POST", "/api/auth/register", `{"name":"A","email":"a@x.com","password":"secret1"}`, "")
	assert.Equal(t, http.StatusCreated, rr.Code)
	var registered authResponseBody
	assert.NoError(t, json.Unmarshal(rr.Body.Bytes(), &registered))

	t.Run("garbage token still succeeds", func(t *testing.T) {
		rr := doJSON(t, r, "POST", "/api/auth/logout", `{"refreshToken":"garbage"}`, "")
		assert.Equal(t, http.StatusOK, rr.Code)
		assert.JSONEq(t, `{"message":"Logged out"}`, rr.Body.String())
	})

	t.Run("revokes the session and is idempotent", func(t *testing.T) {
		body := fmt.Sprintf(`{"refreshToken":%q}`, registered.RefreshToken)

		rr := doJSON(t, r, "POST", "/api/auth/logout", body, "")
		assert.Equal(t, http.StatusOK, rr.Code)

		// Logged-out token can no longer be refreshed.
		rr = doJSON(t, r, "POST", "/api/auth/refresh", body, "")
		assert.Equal(t, http.StatusUnauthorized, rr.Code)

		// A second logout with the same token reports the same success.
		rr = doJSON(t, r, "POST", "/api/auth/logout", body, "")
		assert.Equal(t, http.StatusOK, rr.Code)
		assert.JSONEq(t, `{"message":"Logged out"}`, rr.Body.String())
	})
}

func TestTodoEndpoints(t *testing.T) {
	r := newTestRouter(t)

	rr := doJSON(t, r, "POST", "/api/auth/register", `{"name":"A","email":"a@x.com","password":"secret1"}`, "")
	assert.Equal(t, http.StatusCreated, rr.Code)
	var registered authResponseBody
	assert.NoError(t, json.Unmarshal(rr.Body.Bytes(), &registered))
	token := registered.AccessToken

	t.Run("todo routes are guarded", func(t *testing.T) {
		rr := doJSON(t, r, "GET", "/api/todos", "", "")
		assert.Equal(t, http.StatusUnauthorized, rr.Code)

		rr = doJSON(t, r, "POST", "/api/todos", `{"title":"x"}`, "")
		assert.Equal(t, http.StatusUnauthorized, rr.Code)
	})

	var created model.Todo
	t.Run("create", func(t *testing.T) {
		rr := doJSON(t, r, "POST", "/api/todos", `{"title":"buy milk","tags":"home, errand","priority":2}`, token)
		assert.Equal(t, http.StatusCreated, rr.Code)
		assert.NoError(t, json.Unmarshal(rr.Body.Bytes(), &created))
		assert.Equal(t, "buy milk", created.Title)
		assert.Equal(t, model.StatusTodo, created.Status)
		assert.Equal(t, []string{"home", "errand"}, created.Tags, "comma-separated tags are normalized")
	})

	t.Run("list", func(t *testing.T) {
		rr := doJSON(t, r, "GET", "/api/todos?status=todo", "", token)
		assert.Equal(t, http.StatusOK, rr.Code)

		var page model.TodoPage
		assert.NoError(t, json.Unmarshal(rr.Body.Bytes(), &page))
		assert.Equal(t, 1, page.Total)
		assert.Len(t, page.Items, 1)
	})

	t.Run("get and update", func(t *testing.T) {
		rr := doJSON(t, r, "GET", fmt.Sprintf("/api/todos/%d", created.ID), "", token)
		assert.Equal(t, http.StatusOK, rr.Code)

		rr = doJSON(t, r, "PATCH", fmt.Sprintf("/api/todos/%d", created.ID), `{"status":"done"}`, token)
		assert.Equal(t, http.StatusOK, rr.Code)

		var updated model.Todo
		assert.NoError(t, json.Unmarshal(rr.Body.Bytes(), &updated))
		assert.Equal(t, model.StatusDone, updated.Status)
		assert.Equal(t, "buy milk", updated.Title)
	})

	t.Run("delete", func(t *testing.T) {
		rr := doJSON(t, r, "DELETE", fmt.Sprintf("/api/todos/%d", created.ID), "", token)
		assert.Equal(t, http.StatusOK, rr.Code)

		rr = doJSON(t, r, "DELETE", fmt.Sprintf("/api/todos/%d", created.ID), "", token)
		assert.Equal(t, http.StatusNotFound, rr.Code)
	})

	t.Run("unknown id", func(t *testing.T) {
		rr := doJSON(t, r, "GET", "/api/todos/9999", "", token)
		assert.Equal(t, http.StatusNotFound, rr.Code)
	})
}
