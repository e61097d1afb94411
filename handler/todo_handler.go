package handler

import (
	"encoding/json"
	"go-todo-api/common"
	"go-todo-api/logger"
	"go-todo-api/model"
	"go-todo-api/service"
	"net/http"
	"strconv"

	"github.com/sirupsen/logrus"
)

type TodoHandler struct {
	service *service.TodoService
}

func NewTodoHandler(service *service.TodoService) *TodoHandler {
	return &TodoHandler{service: service}
}

// CreateTodo godoc
// @Summary      Create a todo
// @Tags         todos
// @Accept       json
// @Produce      json
// @Param        request body model.CreateTodoRequest true "Todo payload"
// @Success      201 {object} model.Todo
// @Failure      400 {object} common.AppError
// @Failure      401 {object} common.AppError
// @Security     BearerAuth
// @Router       /api/todos [post]
func (h *TodoHandler) CreateTodo(w http.ResponseWriter, r *http.Request) *common.AppError {
	var req model.CreateTodoRequest
	if !common.ValidateAndDecode(w, r, &req) {
		return nil
	}

	userID, ok := r.Context().Value(UserIDKey).(int)
	if !ok {
		return common.NewAppError(http.StatusUnauthorized, "Invalid user ID in token", nil)
	}

	log := logger.Log.WithFields(logrus.Fields{
		"user_id": userID,
		"title":   req.Title,
	})
	log.Info("Create todo request received")

	todo, err := h.service.CreateTodo(userID, req)
	if err != nil {
		return common.NewAppError(http.StatusInternalServerError, "Could not create todo", err)
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(todo)

	return nil
}

// ListTodos godoc
// @Summary      List todos
// @Description  Lists the user's todos with filtering, search, sorting and pagination
// @Tags         todos
// @Produce      json
// @Param        page query int false "Page number"
// @Param        limit query int false "Page size (max 100)"
// @Param        status query string false "Filter by status"
// @Param        priority query int false "Filter by priority"
// @Param        search query string false "Search in title and description"
// @Param        sortBy query string false "createdAt | dueDate | priority"
// @Param        sortDir query string false "asc | desc"
// @Success      200 {object} model.TodoPage
// @Failure      401 {object} common.AppError
// @Security     BearerAuth
// @Router       /api/todos [get]
func (h *TodoHandler) ListTodos(w http.ResponseWriter, r *http.Request) *common.AppError {
	userID, ok := r.Context().Value(UserIDKey).(int)
	if !ok {
		return common.NewAppError(http.StatusUnauthorized, "Invalid user ID in token", nil)
	}

	q := parseListQuery(r)

	logger.Log.WithField("user_id", userID).Info("List todos request received")

	page, err := h.service.ListTodos(userID, q)
	if err != nil {
		return common.NewAppError(http.StatusInternalServerError, "Could not retrieve todos", err)
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(page)

	return nil
}

// GetTodo godoc
// @Summary      Get a todo by ID
// @Tags         todos
// @Produce      json
// @Param        id path int true "Todo ID"
// @Success      200 {object} model.Todo
// @Failure      401 {object} common.AppError
// @Failure      404 {object} common.AppError
// @Security     BearerAuth
// @Router       /api/todos/{id} [get]
func (h *TodoHandler) GetTodo(w http.ResponseWriter, r *http.Request) *common.AppError {
	userID, ok := r.Context().Value(UserIDKey).(int)
	if !ok {
		return common.NewAppError(http.StatusUnauthorized, "Invalid user ID in token", nil)
	}

	id, err := strconv.Atoi(r.PathValue("id"))
	if err != nil {
		return common.NewAppError(http.StatusNotFound, "Not found", nil)
	}

	todo, err := h.service.GetTodo(userID, id)
	if err != nil {
		if err == service.ErrTodoNotFound {
			return common.NewAppError(http.StatusNotFound, "Not found", nil)
		}
		return common.NewAppError(http.StatusInternalServerError, "Could not retrieve todo", err)
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(todo)

	return nil
}

// UpdateTodo godoc
// @Summary      Update a todo
// @Description  Applies a partial update; omitted fields are left unchanged
// @Tags         todos
// @Accept       json
// @Produce      json
// @Param        id path int true "Todo ID"
// @Param        request body model.UpdateTodoRequest true "Fields to update"
// @Success      200 {object} model.Todo
// @Failure      400 {object} common.AppError
// @Failure      401 {object} common.AppError
// @Failure      404 {object} common.AppError
// @Security     BearerAuth
// @Router       /api/todos/{id} [patch]
func (h *TodoHandler) UpdateTodo(w http.ResponseWriter, r *http.Request) *common.AppError {
	var req model.UpdateTodoRequest
	if !common.ValidateAndDecode(w, r, &req) {
		return nil
	}

	userID, ok := r.Context().Value(UserIDKey).(int)
	if !ok {
		return common.NewAppError(http.StatusUnauthorized, "Invalid user ID in token", nil)
	}

	id, err := strconv.Atoi(r.PathValue("id"))
	if err != nil {
		return common.NewAppError(http.StatusNotFound, "Not found", nil)
	}

	todo, err := h.service.UpdateTodo(userID, id, req)
	if err != nil {
		if err == service.ErrTodoNotFound {
			return common.NewAppError(http.StatusNotFound, "Not found", nil)
		}
		return common.NewAppError(http.StatusInternalServerError, "Could not update todo", err)
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(todo)

	return nil
}

// DeleteTodo godoc
// @Summary      Delete a todo
// @Tags         todos
// @Produce      json
// @Param        id path int true "Todo ID"
// @Success      200 {object} map[string]string
// @Failure      401 {object} common.AppError
// @Failure      404 {object} common.AppError
// @Security     BearerAuth
// @Router       /api/todos/{id} [delete]
func (h *TodoHandler) DeleteTodo(w http.ResponseWriter, r *http.Request) *common.AppError {
	userID, ok := r.Context().Value(UserIDKey).(int)
	if !ok {
		return common.NewAppError(http.StatusUnauthorized, "Invalid user ID in token", nil)
	}

	id, err := strconv.Atoi(r.PathValue("id"))
	if err != nil {
		return common.NewAppError(http.StatusNotFound, "Not found", nil)
	}

	if err := h.service.DeleteTodo(userID, id); err != nil {
		if err == service.ErrTodoNotFound {
			return common.NewAppError(http.StatusNotFound, "Not found", nil)
		}
		return common.NewAppError(http.StatusInternalServerError, "Could not delete todo", err)
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]string{"message": "Deleted"})

	return nil
}

func parseListQuery(r *http.Request) model.ListTodosQuery {
	values := r.URL.Query()

	page, _ := strconv.Atoi(values.Get("page"))
	limit, _ := strconv.Atoi(values.Get("limit"))
	priority, _ := strconv.Atoi(values.Get("priority"))

	return model.ListTodosQuery{
		Page:     page,
		Limit:    limit,
		Status:   model.TodoStatus(values.Get("status")),
		Priority: priority,
		Search:   values.Get("search"),
		SortBy:   values.Get("sortBy"),
		SortDir:  values.Get("sortDir"),
	}
}
