// file: model/request.go

package model

import (
	"encoding/json"
	"strings"
	"time"
)

// RegisterRequest defines the payload for creating a new user.
// It includes validation tags to ensure data integrity at the entry point.
type RegisterRequest struct {
	Name     string `json:"name" validate:"required,min=1,max=100"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
}

// LoginRequest defines the payload for user authentication.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// RefreshRequest carries the refresh token being exchanged.
type RefreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

// LogoutRequest carries the refresh token being revoked.
type LogoutRequest struct {
	RefreshToken string `json:"refreshToken"`
}

// TagList accepts either a JSON array of strings or a single comma-separated
// string ("home, urgent") and normalizes both to a trimmed list.
type TagList []string

func (t *TagList) UnmarshalJSON(data []byte) error {
	var list []string
	if err := json.Unmarshal(data, &list); err == nil {
		*t = list
		return nil
	}

	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	if s == "" {
		*t = TagList{}
		return nil
	}
	parts := strings.Split(s, ",")
	tags := make([]string, 0, len(parts))
	for _, p := range parts {
		tags = append(tags, strings.TrimSpace(p))
	}
	*t = tags
	return nil
}

// CreateTodoRequest defines the payload for creating a todo item.
type CreateTodoRequest struct {
	Title       string     `json:"title" validate:"required,min=1,max=255"`
	Description string     `json:"description"`
	Status      TodoStatus `json:"status" validate:"omitempty,oneof=todo in_progress done"`
	Priority    int        `json:"priority" validate:"omitempty,min=1,max=5"`
	Tags        TagList    `json:"tags"`
	DueDate     *time.Time `json:"dueDate"`
}

// UpdateTodoRequest is a partial update; nil fields are left untouched.
type UpdateTodoRequest struct {
	Title       *string     `json:"title" validate:"omitempty,min=1,max=255"`
	Description *string     `json:"description"`
	Status      *TodoStatus `json:"status" validate:"omitempty,oneof=todo in_progress done"`
	Priority    *int        `json:"priority" validate:"omitempty,min=1,max=5"`
	Tags        *TagList    `json:"tags"`
	DueDate     *time.Time  `json:"dueDate"`
}

// ListTodosQuery collects the parsed listing query parameters.
type ListTodosQuery struct {
	Page     int
	Limit    int
	Status   TodoStatus
	Priority int
	Search   string
	SortBy   string
	SortDir  string
}
