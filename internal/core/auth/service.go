// internal/core/auth/service.go
package auth

import (
	"context"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrCredenciaisInvalidas = errors.New("usuário ou senha inválidos")
	ErrUsuarioNaoEncontrado = errors.New("usuário não encontrado")
	ErrConsulta             = errors.New("erro ao consultar o banco de dados")
	ErrToken                = errors.New("erro ao gerar token de acesso")
)

// TokenTTL é a validade do token emitido no login.
const TokenTTL = 24 * time.Hour

type Service interface {
	Login(ctx context.Context, username, password string) (string, error)
}

// UserStore busca usuários pelo nome de login.
type UserStore interface {
	FindByUsername(ctx context.Context, username string) (*User, error)
}

type service struct {
	users     UserStore
	jwtSecret []byte
	now       func() time.Time
}

func NewService(users UserStore, jwtSecret []byte) Service {
	return &service{users: users, jwtSecret: jwtSecret, now: time.Now}
}

// User representa a estrutura de um usuário no Firestore.
type User struct {
	Username     string   `firestore:"username"`
	PasswordHash string   `firestore:"passwordHash"`
	Roles        []string `firestore:"roles"` // Array de permissões
}

func (s *service) Login(ctx context.Context, username, password string) (string, error) {
	// 1. Encontrar o usuário.
	user, err := s.users.FindByUsername(ctx, username)
	if errors.Is(err, ErrUsuarioNaoEncontrado) {
		return "", ErrCredenciaisInvalidas
	}
	if err != nil {
		zap.L().Error("erro ao buscar usuário", zap.String("username", username), zap.Error(err))
		return "", ErrConsulta
	}

	// 2. Comparar a senha fornecida com o hash armazenado.
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return "", ErrCredenciaisInvalidas
	}

	// 3. Gerar o Token JWT com as permissões (roles).
	claims := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"username": user.Username,
		"roles":    user.Roles,
		"exp":      s.now().Add(TokenTTL).Unix(),
	})

	tokenString, err := claims.SignedString(s.jwtSecret)
	if err != nil {
		return "", ErrToken
	}

	return tokenString, nil
}
