// file: repository/token_repository.go

package repository

import (
	"database/sql"
	"go-todo-api/logger"
	"go-todo-api/model"
)

// ITokenRepository defines the contract for refresh-token database operations.
type ITokenRepository interface {
	Create(token *model.RefreshToken) error
	Rotate(userID int, oldToken, newToken string) (bool, error)
	Delete(userID int, token string) error
}

// TokenRepository implements ITokenRepository.
type TokenRepository struct {
	DB *sql.DB
}

// NewTokenRepository creates a new TokenRepository.
func NewTokenRepository(db *sql.DB) *TokenRepository {
	return &TokenRepository{DB: db}
}

// Create appends a refresh token to the user's active set.
func (r *TokenRepository) Create(token *model.RefreshToken) error {
	log := logger.Log.WithField("user_id", token.UserID)
	log.Info("Executing query to create a new refresh token")

	query := `INSERT INTO refresh_tokens (user_id, token) VALUES ($1, $2) RETURNING id, created_at`
	err := r.DB.QueryRow(query, token.UserID, token.Token).Scan(&token.ID, &token.CreatedAt)
	if err != nil {
		log.WithError(err).Error("Failed to execute create refresh token query")
		return err
	}
	return nil
}

// Rotate removes oldToken from the user's set and inserts newToken in a single
// transaction. The conditional delete is what makes rotation strictly
// single-use: when two rotations race on the same token, the second delete
// affects zero rows and the whole rotation is reported as not applied.
func (r *TokenRepository) Rotate(userID int, oldToken, newToken string) (bool, error) {
	log := logger.Log.WithField("user_id", userID)
	log.Info("Executing rotation transaction for refresh token")

	tx, err := r.DB.Begin()
	if err != nil {
		log.WithError(err).Error("Failed to begin rotation transaction")
		return false, err
	}
	defer tx.Rollback()

	res, err := tx.Exec(`DELETE FROM refresh_tokens WHERE user_id = $1 AND token = $2`, userID, oldToken)
	if err != nil {
		log.WithError(err).Error("Failed to execute conditional delete of old refresh token")
		return false, err
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	if affected == 0 {
		// Token was already rotated out or revoked.
		return false, nil
	}

	if _, err := tx.Exec(`INSERT INTO refresh_tokens (user_id, token) VALUES ($1, $2)`, userID, newToken); err != nil {
		log.WithError(err).Error("Failed to insert replacement refresh token")
		return false, err
	}

	if err := tx.Commit(); err != nil {
		log.WithError(err).Error("Failed to commit rotation transaction")
		return false, err
	}
	return true, nil
}

// Delete removes one exact token string from the user's set. Used by logout;
// deleting a token that is not present is not an error.
func (r *TokenRepository) Delete(userID int, token string) error {
	log := logger.Log.WithField("user_id", userID)
	log.Info("Executing query to delete refresh token")

	query := `DELETE FROM refresh_tokens WHERE user_id = $1 AND token = $2`
	_, err := r.DB.Exec(query, userID, token)
	if err != nil {
		log.WithError(err).Error("Failed to execute delete refresh token query")
		return err
	}
	return nil
}
