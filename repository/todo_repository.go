package repository

import (
	"database/sql"
	"fmt"
	"go-todo-api/logger"
	"go-todo-api/model"
	"strings"

	"github.com/lib/pq"
	"github.com/sirupsen/logrus"
)

// ITodoRepository defines the contract for todo database operations.
type ITodoRepository interface {
	CreateTodo(todo *model.Todo) error
	GetTodoByID(userID, id int) (*model.Todo, error)
	ListTodos(userID int, q model.ListTodosQuery) ([]*model.Todo, int, error)
	UpdateTodo(todo *model.Todo) error
	DeleteTodo(userID, id int) (bool, error)
}

type TodoRepository struct {
	DB *sql.DB
}

func NewTodoRepository(db *sql.DB) *TodoRepository {
	return &TodoRepository{DB: db}
}

// CreateTodo adds a new todo item to the database.
func (r *TodoRepository) CreateTodo(todo *model.Todo) error {
	log := logger.Log.WithFields(logrus.Fields{
		"user_id": todo.UserID,
		"title":   todo.Title,
	})
	log.Info("Executing query to create a new todo")

	query := `INSERT INTO todos (user_id, title, description, status, priority, tags, due_date)
		VALUES ($1, $2, $3, $4, $5, $6, $7) RETURNING id, created_at, updated_at`
	err := r.DB.QueryRow(query, todo.UserID, todo.Title, todo.Description, todo.Status,
		todo.Priority, pq.Array(todo.Tags), todo.DueDate).Scan(&todo.ID, &todo.CreatedAt, &todo.UpdatedAt)
	if err != nil {
		log.WithError(err).Error("Failed to execute create todo query")
		return err
	}
	return nil
}

// GetTodoByID retrieves a single todo owned by the given user.
func (r *TodoRepository) GetTodoByID(userID, id int) (*model.Todo, error) {
	log := logger.Log.WithFields(logrus.Fields{
		"user_id": userID,
		"todo_id": id,
	})
	log.Info("Executing query to get todo by ID")

	todo := &model.Todo{}
	query := `SELECT id, user_id, title, description, status, priority, tags, due_date, created_at, updated_at
		FROM todos WHERE id = $1 AND user_id = $2`
	err := r.DB.QueryRow(query, id, userID).Scan(&todo.ID, &todo.UserID, &todo.Title, &todo.Description,
		&todo.Status, &todo.Priority, pq.Array(&todo.Tags), &todo.DueDate, &todo.CreatedAt, &todo.UpdatedAt)
	if err != nil {
		if err != sql.ErrNoRows {
			log.WithError(err).Error("Failed to execute get todo by ID query")
		}
		return nil, err // Return sql.ErrNoRows if not found
	}
	return todo, nil
}

// sortColumns maps the exposed sort keys onto real columns. Anything outside
// this whitelist falls back to created_at.
var sortColumns = map[string]string{
	"createdAt": "created_at",
	"dueDate":   "due_date",
	"priority":  "priority",
}

// ListTodos returns one page of the user's todos plus the total count for the
// same filter set.
func (r *TodoRepository) ListTodos(userID int, q model.ListTodosQuery) ([]*model.Todo, int, error) {
	log := logger.Log.WithField("user_id", userID)
	log.Info("Executing query to list todos")

	where := []string{"user_id = $1"}
	args := []interface{}{userID}

	if q.Status != "" {
		args = append(args, q.Status)
		where = append(where, fmt.Sprintf("status = $%d", len(args)))
	}
	if q.Priority != 0 {
		args = append(args, q.Priority)
		where = append(where, fmt.Sprintf("priority = $%d", len(args)))
	}
	if q.Search != "" {
		args = append(args, "%"+q.Search+"%")
		where = append(where, fmt.Sprintf("(title ILIKE $%d OR description ILIKE $%d)", len(args), len(args)))
	}
	whereClause := strings.Join(where, " AND ")

	var total int
	countQuery := `SELECT COUNT(*) FROM todos WHERE ` + whereClause
	if err := r.DB.QueryRow(countQuery, args...).Scan(&total); err != nil {
		log.WithError(err).Error("Failed to execute count todos query")
		return nil, 0, err
	}

	column, ok := sortColumns[q.SortBy]
	if !ok {
		column = "created_at"
	}
	direction := "DESC"
	if q.SortDir == "asc" {
		direction = "ASC"
	}

	args = append(args, q.Limit, (q.Page-1)*q.Limit)
	query := fmt.Sprintf(`SELECT id, user_id, title, description, status, priority, tags, due_date, created_at, updated_at
		FROM todos WHERE %s ORDER BY %s %s LIMIT $%d OFFSET $%d`,
		whereClause, column, direction, len(args)-1, len(args))

	rows, err := r.DB.Query(query, args...)
	if err != nil {
		log.WithError(err).Error("Failed to execute list todos query")
		return nil, 0, err
	}
	defer rows.Close()

	var todos []*model.Todo
	for rows.Next() {
		var t model.Todo
		if err := rows.Scan(&t.ID, &t.UserID, &t.Title, &t.Description, &t.Status, &t.Priority,
			pq.Array(&t.Tags), &t.DueDate, &t.CreatedAt, &t.UpdatedAt); err != nil {
			log.WithError(err).Error("Failed to scan todo row")
			return nil, 0, err
		}
		todos = append(todos, &t)
	}
	return todos, total, nil
}

// UpdateTodo rewrites the mutable columns of an existing todo.
func (r *TodoRepository) UpdateTodo(todo *model.Todo) error {
	log := logger.Log.WithFields(logrus.Fields{
		"user_id": todo.UserID,
		"todo_id": todo.ID,
	})
	log.Info("Executing query to update todo")

	query := `UPDATE todos SET title = $1, description = $2, status = $3, priority = $4, tags = $5, due_date = $6, updated_at = now()
		WHERE id = $7 AND user_id = $8 RETURNING updated_at`
	err := r.DB.QueryRow(query, todo.Title, todo.Description, todo.Status, todo.Priority,
		pq.Array(todo.Tags), todo.DueDate, todo.ID, todo.UserID).Scan(&todo.UpdatedAt)
	if err != nil {
		if err != sql.ErrNoRows {
			log.WithError(err).Error("Failed to execute update todo query")
		}
		return err
	}
	return nil
}

// DeleteTodo removes a todo owned by the given user. The bool reports whether
// a row was actually deleted.
func (r *TodoRepository) DeleteTodo(userID, id int) (bool, error) {
	log := logger.Log.WithFields(logrus.Fields{
		"user_id": userID,
		"todo_id": id,
	})
	log.Info("Executing query to delete todo")

	res, err := r.DB.Exec(`DELETE FROM todos WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		log.WithError(err).Error("Failed to execute delete todo query")
		return false, err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}
