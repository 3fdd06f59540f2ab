package repository

import (
	"errors"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
)

// Сентинельные ошибки хранилища. Сервисный слой переводит их в доменную
// таксономию (NotFound, DuplicateKey и т.д.), не разбирая ошибки драйвера.
var (
	// ErrUserNotFound — пользователь не найден ни по одному из критериев запроса.
	ErrUserNotFound = errors.New("user not found")
	// ErrEmailTaken — нарушена уникальность email при регистрации.
	ErrEmailTaken = errors.New("email already registered")
	// ErrSubscriptionNotFound — тарифный план с таким id отсутствует.
	ErrSubscriptionNotFound = errors.New("subscription not found")
	// ErrVersionConflict — версионная проверка при обновлении не прошла,
	// запись была изменена конкурентным запросом.
	ErrVersionConflict = errors.New("version conflict")
)

// isUniqueViolation распознает нарушение unique-констрейнта PostgreSQL.
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation
}
