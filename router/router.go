package router

import (
	"go-todo-api/handler"
	"net/http"

	httpSwagger "github.com/swaggo/http-swagger/v2"
)

func NewRouter(authHandler *handler.AuthHandler, todoHandler *handler.TodoHandler, authMiddleware func(http.Handler) http.Handler) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", handler.HealthCheck)
	mux.Handle("GET /swagger/", httpSwagger.WrapHandler)

	if authHandler != nil {
		mux.Handle("POST /api/auth/register", handler.ErrorHandlingMiddleware(authHandler.Register))
		mux.Handle("POST /api/auth/login", handler.ErrorHandlingMiddleware(authHandler.Login))
		mux.Handle("POST /api/auth/refresh", handler.ErrorHandlingMiddleware(authHandler.Refresh))
		mux.Handle("POST /api/auth/logout", handler.ErrorHandlingMiddleware(authHandler.Logout))
	}

	// Every todo route sits behind the guard; the task store itself performs
	// no authentication of its own.
	if todoHandler != nil && authMiddleware != nil {
		mux.Handle("POST /api/todos", authMiddleware(handler.ErrorHandlingMiddleware(todoHandler.CreateTodo)))
		mux.Handle("GET /api/todos", authMiddleware(handler.ErrorHandlingMiddleware(todoHandler.ListTodos)))
		mux.Handle("GET /api/todos/{id}", authMiddleware(handler.ErrorHandlingMiddleware(todoHandler.GetTodo)))
		mux.Handle("PATCH /api/todos/{id}", authMiddleware(handler.ErrorHandlingMiddleware(todoHandler.UpdateTodo)))
		mux.Handle("DELETE /api/todos/{id}", authMiddleware(handler.ErrorHandlingMiddleware(todoHandler.DeleteTodo)))
	}

	return mux
}
