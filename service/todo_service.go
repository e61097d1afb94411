package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"go-todo-api/model"
	"go-todo-api/repository"
	"time"
)

var ErrTodoNotFound = errors.New("todo not found")

const (
	defaultPage     = 1
	defaultLimit    = 10
	maxLimit        = 100
	listCacheExpiry = 10 * time.Minute
)

// TodoService handles todo business logic with a cache-aside strategy on the
// default listing.
type TodoService struct {
	repo  repository.ITodoRepository
	cache ICacheClient
}

// NewTodoService creates a new TodoService. cache may be nil, in which case
// caching is skipped entirely.
func NewTodoService(repo repository.ITodoRepository, cache ICacheClient) *TodoService {
	return &TodoService{
		repo:  repo,
		cache: cache,
	}
}

// CreateTodo creates a new todo, applying the domain defaults, and
// invalidates the user's listing cache.
func (s *TodoService) CreateTodo(userID int, req model.CreateTodoRequest) (*model.Todo, error) {
	status := req.Status
	if status == "" {
		status = model.StatusTodo
	}
	priority := req.Priority
	if priority == 0 {
		priority = 3
	}
	tags := []string(req.Tags)
	if tags == nil {
		tags = []string{}
	}

	todo := &model.Todo{
		UserID:      userID,
		Title:       req.Title,
		Description: req.Description,
		Status:      status,
		Priority:    priority,
		Tags:        tags,
		DueDate:     req.DueDate,
	}

	if err := s.repo.CreateTodo(todo); err != nil {
		return nil, err
	}

	s.invalidateListCache(userID)
	return todo, nil
}

// GetTodo retrieves one todo owned by the user.
func (s *TodoService) GetTodo(userID, id int) (*model.Todo, error) {
	todo, err := s.repo.GetTodoByID(userID, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrTodoNotFound
		}
		return nil, err
	}
	return todo, nil
}

// ListTodos returns one page of the user's todos. The unfiltered first page
// is served cache-aside; filtered or deeper pages always hit the database.
func (s *TodoService) ListTodos(userID int, q model.ListTodosQuery) (*model.TodoPage, error) {
	if q.Page < defaultPage {
		q.Page = defaultPage
	}
	if q.Limit < 1 {
		q.Limit = defaultLimit
	}
	if q.Limit > maxLimit {
		q.Limit = maxLimit
	}

	cacheable := s.cache != nil && s.isDefaultQuery(q)
	cacheKey := fmt.Sprintf("todos:%d", userID)
	ctx := context.Background()

	if cacheable {
		if cached, err := s.cache.Get(ctx, cacheKey).Result(); err == nil {
			var page model.TodoPage
			if err := json.Unmarshal([]byte(cached), &page); err == nil {
				return &page, nil
			}
		}
	}

	todos, total, err := s.repo.ListTodos(userID, q)
	if err != nil {
		return nil, err
	}
	if todos == nil {
		todos = []*model.Todo{}
	}

	pages := (total + q.Limit - 1) / q.Limit
	page := &model.TodoPage{
		Items: todos,
		Total: total,
		Page:  q.Page,
		Pages: pages,
	}

	if cacheable {
		if data, err := json.Marshal(page); err == nil {
			s.cache.Set(ctx, cacheKey, data, listCacheExpiry)
		}
	}

	return page, nil
}

// UpdateTodo applies a partial update to a todo owned by the user and
// invalidates the listing cache.
func (s *TodoService) UpdateTodo(userID, id int, req model.UpdateTodoRequest) (*model.Todo, error) {
	todo, err := s.repo.GetTodoByID(userID, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrTodoNotFound
		}
		return nil, err
	}

	if req.Title != nil {
		todo.Title = *req.Title
	}
	if req.Description != nil {
		todo.Description = *req.Description
	}
	if req.Status != nil {
		todo.Status = *req.Status
	}
	if req.Priority != nil {
		todo.Priority = *req.Priority
	}
	if req.Tags != nil {
		todo.Tags = []string(*req.Tags)
	}
	if req.DueDate != nil {
		todo.DueDate = req.DueDate
	}

	if err := s.repo.UpdateTodo(todo); err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrTodoNotFound
		}
		return nil, err
	}

	s.invalidateListCache(userID)
	return todo, nil
}

// DeleteTodo removes a todo owned by the user and invalidates the listing cache.
func (s *TodoService) DeleteTodo(userID, id int) error {
	deleted, err := s.repo.DeleteTodo(userID, id)
	if err != nil {
		return err
	}
	if !deleted {
		return ErrTodoNotFound
	}

	s.invalidateListCache(userID)
	return nil
}

func (s *TodoService) isDefaultQuery(q model.ListTodosQuery) bool {
	return q.Page == defaultPage && q.Limit == defaultLimit &&
		q.Status == "" && q.Priority == 0 && q.Search == "" &&
		(q.SortBy == "" || q.SortBy == "createdAt") && (q.SortDir == "" || q.SortDir == "desc")
}

func (s *TodoService) invalidateListCache(userID int) {
	if s.cache == nil {
		return
	}
	s.cache.Del(context.Background(), fmt.Sprintf("todos:%d", userID))
}
