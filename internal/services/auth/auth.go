// Package services содержит логику бизнес-уровня для регистрации и
// аутентификации владельцев автомобилей.
package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/magabrotheeeer/parking-manager/internal/lib/jwt"
	"github.com/magabrotheeeer/parking-manager/internal/lib/password"
	"github.com/magabrotheeeer/parking-manager/internal/models"
	"github.com/magabrotheeeer/parking-manager/internal/storage/repository"
)

// Ошибки аутентификации.
var (
	// ErrInvalidCredentials — пользователь не найден или пароль не совпал.
	// Наружу эти случаи не различаются.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrUserBlocked — аккаунт заблокирован администратором.
	ErrUserBlocked = errors.New("user is blocked")
	// ErrEmailTaken — email уже зарегистрирован.
	ErrEmailTaken = errors.New("email already registered")
)

// UserRepository описывает контракт для работы с пользователями в базе данных.
type UserRepository interface {
	// RegisterUser сохраняет нового пользователя и возвращает его uid.
	RegisterUser(ctx context.Context, user models.User) (string, error)

	// GetUserByEmail возвращает пользователя по email или ошибку, если не найден.
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
}

// RegisterInput — данные нового пользователя. Password приходит в открытом
// виде и хешируется до первой записи в хранилище.
type RegisterInput struct {
	Name                      string
	Firstname                 *string
	Email                     string
	Password                  string
	Plate                     string
	Telephone                 int64
	RequiresAccessibleParking bool
}

// AuthService отвечает за регистрацию, авторизацию и валидацию JWT.
type AuthService struct {
	users    UserRepository
	jwtMaker jwt.Maker
}

// NewAuthService создает новый экземпляр AuthService.
func NewAuthService(users UserRepository, jwtMaker jwt.Maker) *AuthService {
	return &AuthService{
		users:    users,
		jwtMaker: jwtMaker,
	}
}

// Register создает нового пользователя с хэшированием пароля и дефолтной
// ролью "user". Возвращает uid созданной записи.
func (s *AuthService) Register(ctx context.Context, input RegisterInput) (string, error) {
	hashed, err := password.GetHash(input.Password)
	if err != nil {
		return "", err
	}
	user := models.User{
		Name:                      input.Name,
		Firstname:                 input.Firstname,
		Email:                     input.Email,
		PasswordHash:              hashed,
		Role:                      models.RoleUser,
		Plate:                     input.Plate,
		Telephone:                 input.Telephone,
		RequiresAccessibleParking: input.RequiresAccessibleParking,
	}
	uid, err := s.users.RegisterUser(ctx, user)
	if errors.Is(err, repository.ErrEmailTaken) {
		return "", ErrEmailTaken
	}
	if err != nil {
		return "", err
	}
	return uid, nil
}

// Login проверяет пароль пользователя и генерирует JWT. Заблокированные
// пользователи не допускаются.
func (s *AuthService) Login(ctx context.Context, email, rawPassword string) (token, role string, err error) {
	user, err := s.users.GetUserByEmail(ctx, email)
	if errors.Is(err, repository.ErrUserNotFound) {
		return "", "", ErrInvalidCredentials
	}
	if err != nil {
		return "", "", err
	}
	if err := password.CompareHash(user.PasswordHash, rawPassword); err != nil {
		return "", "", ErrInvalidCredentials
	}
	if user.IsBlocked() {
		return "", "", ErrUserBlocked
	}
	token, err = s.jwtMaker.GenerateToken(user.Email, user.Role, user.UID)
	if err != nil {
		return "", "", err
	}
	return token, user.Role, nil
}

// ValidateToken проверяет JWT и возвращает данные пользователя из claims.
func (s *AuthService) ValidateToken(_ context.Context, token string) (*models.User, error) {
	const op = "auth.ValidateToken"
	claims, err := s.jwtMaker.ParseToken(token)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	user := &models.User{
		Email: claims.Email,
		Role:  claims.Role,
		UID:   claims.UserUID,
	}
	return user, nil
}
