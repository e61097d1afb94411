// cmd/main.go
package main

import (
	"go-todo-api/app"
	_ "go-todo-api/docs"
)

// @title           Go-Todo API
// @version         1.0
// @description     Task-tracking API with JWT access/refresh session management.

// @contact.name   API Support
// @contact.email  support@example.com

// @license.name   MIT
// @license.url    https://opensource.org/licenses/MIT

// @host      localhost:4000
// @BasePath  /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	app.Run()
}
