package service

import (
	"crypto/rand"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"go-todo-api/config"
	"go-todo-api/logger"
	"go-todo-api/model"
	"go-todo-api/repository"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrDuplicateEmail     = errors.New("email already used")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrMissingToken       = errors.New("no refresh token provided")
	ErrInvalidToken       = errors.New("invalid token")
	ErrTokenExpired       = errors.New("token expired")
	ErrUserNotFound       = errors.New("user not found")
	ErrTokenNotRecognized = errors.New("refresh token not recognized")
)

// TokenPair is one session handed to a client: a short-lived access token and
// its longer-lived refresh token.
type TokenPair struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

// AuthResponse is returned by Register and Login.
type AuthResponse struct {
	AccessToken  string           `json:"accessToken"`
	RefreshToken string           `json:"refreshToken"`
	User         model.PublicUser `json:"user"`
}

// AuthService owns the identity and session lifecycle: password hashing,
// token issuance and verification, and refresh-token rotation.
type AuthService struct {
	userRepo   repository.IUserRepository
	tokenRepo  repository.ITokenRepository
	secretKey  []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
}

// NewAuthService creates an AuthService using the loaded AppConfig for the
// signing secret and token lifetimes.
func NewAuthService(userRepo repository.IUserRepository, tokenRepo repository.ITokenRepository) *AuthService {
	cfg := config.AppConfig.JWT
	return NewAuthServiceWithOptions(userRepo, tokenRepo, cfg.SecretKey, cfg.AccessTokenTTL, cfg.RefreshTokenTTL)
}

// NewAuthServiceWithOptions creates an AuthService with explicit parameters.
func NewAuthServiceWithOptions(userRepo repository.IUserRepository, tokenRepo repository.ITokenRepository,
	secretKey string, accessTTL, refreshTTL time.Duration) *AuthService {
	return &AuthService{
		userRepo:   userRepo,
		tokenRepo:  tokenRepo,
		secretKey:  []byte(secretKey),
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
	}
}

func (s *AuthService) HashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		logger.Log.WithError(err).Error("Failed to hash password")
		return "", err
	}
	return string(bytes), nil
}

// CheckPasswordHash reports whether password matches hash. Malformed hashes
// simply fail the check.
func (s *AuthService) CheckPasswordHash(password, hash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	return err == nil
}

func (s *AuthService) SignAccessToken(userID int) (string, error) {
	return s.signToken(userID, model.TokenKindAccess, s.accessTTL)
}

func (s *AuthService) SignRefreshToken(userID int) (string, error) {
	return s.signToken(userID, model.TokenKindRefresh, s.refreshTTL)
}

func (s *AuthService) signToken(userID int, kind model.TokenKind, ttl time.Duration) (string, error) {
	// A random jti makes every minted token unique even within the same
	// second; rotation relies on token strings never colliding.
	jti := make([]byte, 16)
	if _, err := rand.Read(jti); err != nil {
		return "", fmt.Errorf("failed to generate token id: %w", err)
	}

	now := time.Now()
	claims := &model.AppClaims{
		UserID: userID,
		Kind:   kind,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        hex.EncodeToString(jti),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(s.secretKey)
	if err != nil {
		logger.Log.WithError(err).WithField("user_id", userID).Error("Failed to sign JWT")
		return "", fmt.Errorf("failed to sign token string: %w", err)
	}
	return tokenString, nil
}

// VerifyToken checks signature and expiry and that the token is of the
// expected kind. It never consults storage; refresh-token set membership is
// checked only by Refresh.
func (s *AuthService) VerifyToken(tokenString string, kind model.TokenKind) (*model.AppClaims, error) {
	claims := &model.AppClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.secretKey, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, ErrInvalidToken
	}
	if !token.Valid || claims.Kind != kind {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// DecodeUnverified extracts claims without checking the signature. It exists
// only so logout can recover the subject from whatever the client presents;
// it must never feed an authorization decision.
func (s *AuthService) DecodeUnverified(tokenString string) (*model.AppClaims, error) {
	claims := &model.AppClaims{}
	parser := jwt.NewParser()
	if _, _, err := parser.ParseUnverified(tokenString, claims); err != nil {
		return nil, err
	}
	return claims, nil
}

// Register creates a new user and opens their first session.
func (s *AuthService) Register(req model.RegisterRequest) (*AuthResponse, error) {
	if _, err := s.userRepo.GetUserByEmail(req.Email); err == nil {
		return nil, ErrDuplicateEmail
	} else if err != sql.ErrNoRows {
		return nil, err
	}

	hash, err := s.HashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	user := &model.User{
		Name:         req.Name,
		Email:        req.Email,
		PasswordHash: hash,
	}
	if err := s.userRepo.CreateUser(user); err != nil {
		return nil, err
	}

	logger.Log.WithField("user_id", user.ID).Info("User registered")
	return s.openSession(user)
}

// Login verifies credentials and opens a new session. Unknown email and wrong
// password yield the identical error so callers cannot enumerate users.
func (s *AuthService) Login(req model.LoginRequest) (*AuthResponse, error) {
	user, err := s.userRepo.GetUserByEmail(req.Email)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if !s.CheckPasswordHash(req.Password, user.PasswordHash) {
		return nil, ErrInvalidCredentials
	}

	logger.Log.WithField("user_id", user.ID).Info("User logged in")
	return s.openSession(user)
}

// openSession mints an access+refresh pair and persists the refresh token
// alongside the user's existing ones, so sessions on other devices survive.
func (s *AuthService) openSession(user *model.User) (*AuthResponse, error) {
	accessToken, err := s.SignAccessToken(user.ID)
	if err != nil {
		return nil, err
	}
	refreshToken, err := s.SignRefreshToken(user.ID)
	if err != nil {
		return nil, err
	}

	if err := s.tokenRepo.Create(&model.RefreshToken{UserID: user.ID, Token: refreshToken}); err != nil {
		return nil, err
	}

	return &AuthResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		User:         user.Public(),
	}, nil
}

// Refresh exchanges a refresh token for a new access+refresh pair. The
// presented token is removed and the replacement added in one atomic step, so
// a refresh token is usable exactly once.
func (s *AuthService) Refresh(refreshToken string) (*TokenPair, error) {
	if refreshToken == "" {
		return nil, ErrMissingToken
	}

	claims, err := s.VerifyToken(refreshToken, model.TokenKindRefresh)
	if err != nil {
		return nil, ErrInvalidToken
	}

	user, err := s.userRepo.GetUserByID(claims.UserID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	newAccessToken, err := s.SignAccessToken(user.ID)
	if err != nil {
		return nil, err
	}
	newRefreshToken, err := s.SignRefreshToken(user.ID)
	if err != nil {
		return nil, err
	}

	rotated, err := s.tokenRepo.Rotate(user.ID, refreshToken, newRefreshToken)
	if err != nil {
		return nil, err
	}
	if !rotated {
		// Signature was fine but the token is no longer in the user's set:
		// already rotated out, or revoked by logout.
		return nil, ErrTokenNotRecognized
	}

	logger.Log.WithField("user_id", user.ID).Info("Refresh token rotated")
	return &TokenPair{AccessToken: newAccessToken, RefreshToken: newRefreshToken}, nil
}

// Authenticate resolves an access token to its user. It is the read-only
// path behind the request guard: signature and expiry checks plus one user
// lookup, no writes. The returned user has the password hash stripped.
func (s *AuthService) Authenticate(accessToken string) (*model.User, error) {
	claims, err := s.VerifyToken(accessToken, model.TokenKindAccess)
	if err != nil {
		return nil, err
	}

	user, err := s.userRepo.GetUserByID(claims.UserID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	user.PasswordHash = ""
	return user, nil
}

// Logout revokes a refresh token. It is deliberately unfailable: a garbage
// token, an unknown subject, or a storage error all degrade to success, so
// logout cannot be used to probe token validity.
func (s *AuthService) Logout(refreshToken string) {
	if refreshToken == "" {
		return
	}

	claims, err := s.DecodeUnverified(refreshToken)
	if err != nil || claims.UserID == 0 {
		return
	}

	user, err := s.userRepo.GetUserByID(claims.UserID)
	if err != nil {
		return
	}

	if err := s.tokenRepo.Delete(user.ID, refreshToken); err != nil {
		logger.Log.WithError(err).WithField("user_id", user.ID).Warn("Failed to delete refresh token during logout")
	}
}
