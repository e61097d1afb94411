// handler/main_test.go
package handler_test

import (
	"database/sql"
	"go-todo-api/logger"
	"go-todo-api/model"
	"os"
	"sync"
	"testing"
)

func TestMain(m *testing.M) {
	logger.Init()
	os.Exit(m.Run())
}

// fakeUserRepo is an in-memory IUserRepository.
type fakeUserRepo struct {
	mu     sync.Mutex
	nextID int
	users  map[int]*model.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{nextID: 1, users: make(map[int]*model.User)}
}

func (f *fakeUserRepo) CreateUser(user *model.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	user.ID = f.nextID
	f.nextID++
	copied := *user
	f.users[user.ID] = &copied
	return nil
}

func (f *fakeUserRepo) GetUserByEmail(email string) (*model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.Email == email {
			copied := *u
			return &copied, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (f *fakeUserRepo) GetUserByID(id int) (*model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if u, ok := f.users[id]; ok {
		copied := *u
		return &copied, nil
	}
	return nil, sql.ErrNoRows
}

// fakeTokenRepo is an in-memory ITokenRepository with the same atomic
// remove+add rotation semantics the SQL implementation provides.
type fakeTokenRepo struct {
	mu     sync.Mutex
	tokens map[string]int // token -> user id
}

func newFakeTokenRepo() *fakeTokenRepo {
	return &fakeTokenRepo{tokens: make(map[string]int)}
}

func (f *fakeTokenRepo) Create(token *model.RefreshToken) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.tokens[token.Token] = token.UserID
	return nil
}

func (f *fakeTokenRepo) Rotate(userID int, oldToken, newToken string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if owner, ok := f.tokens[oldToken]; !ok || owner != userID {
		return false, nil
	}
	delete(f.tokens, oldToken)
	f.tokens[newToken] = userID
	return true, nil
}

func (f *fakeTokenRepo) Delete(userID int, token string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if owner, ok := f.tokens[token]; ok && owner == userID {
		delete(f.tokens, token)
	}
	return nil
}

// fakeTodoRepo is an in-memory ITodoRepository.
type fakeTodoRepo struct {
	mu     sync.Mutex
	nextID int
	todos  map[int]*model.Todo
}

func newFakeTodoRepo() *fakeTodoRepo {
	return &fakeTodoRepo{nextID: 1, todos: make(map[int]*model.Todo)}
}

func (f *fakeTodoRepo) CreateTodo(todo *model.Todo) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	todo.ID = f.nextID
	f.nextID++
	copied := *todo
	f.todos[todo.ID] = &copied
	return nil
}

func (f *fakeTodoRepo) GetTodoByID(userID, id int) (*model.Todo, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if todo, ok := f.todos[id]; ok && todo.UserID == userID {
		copied := *todo
		return &copied, nil
	}
	return nil, sql.ErrNoRows
}

func (f *fakeTodoRepo) ListTodos(userID int, q model.ListTodosQuery) ([]*model.Todo, int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var todos []*model.Todo
	for _, todo := range f.todos {
		if todo.UserID != userID {
			continue
		}
		if q.Status != "" && todo.Status != q.Status {
			continue
		}
		copied := *todo
		todos = append(todos, &copied)
	}
	return todos, len(todos), nil
}

func (f *fakeTodoRepo) UpdateTodo(todo *model.Todo) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if existing, ok := f.todos[todo.ID]; !ok || existing.UserID != todo.UserID {
		return sql.ErrNoRows
	}
	copied := *todo
	f.todos[todo.ID] = &copied
	return nil
}

func (f *fakeTodoRepo) DeleteTodo(userID, id int) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if todo, ok := f.todos[id]; ok && todo.UserID == userID {
		delete(f.todos, id)
		return true, nil
	}
	return false, nil
}
