package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/magabrotheeeer/parking-manager/internal/models"
)

const userColumns = `uid, name, firstname, email, password_hash, role, blocked,
			      profile_image_name, plate, telephone, parking_id, type_subscription,
			      subscription_end_date, arrival_time, exit_time,
			      requires_accessible_parking, version, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (*models.User, error) {
	u := &models.User{}
	var firstname, profileImageName sql.NullString
	var typeSubscription sql.NullInt64
	var subscriptionEndDate, arrivalTime, exitTime sql.NullTime

	if err := row.Scan(&u.UID, &u.Name, &firstname, &u.Email, &u.PasswordHash,
		&u.Role, &u.Blocked, &profileImageName, &u.Plate, &u.Telephone,
		&u.ParkingID, &typeSubscription, &subscriptionEndDate, &arrivalTime,
		&exitTime, &u.RequiresAccessibleParking, &u.Version,
		&u.CreatedAt, &u.UpdatedAt); err != nil {
		return nil, err
	}

	if firstname.Valid {
		u.Firstname = &firstname.String
	}
	if profileImageName.Valid {
		u.ProfileImageName = &profileImageName.String
	}
	if typeSubscription.Valid {
		v := int(typeSubscription.Int64)
		u.TypeSubscription = &v
	}
	if subscriptionEndDate.Valid {
		u.SubscriptionEndDate = &subscriptionEndDate.Time
	}
	if arrivalTime.Valid {
		u.ArrivalTime = &arrivalTime.Time
	}
	if exitTime.Valid {
		u.ExitTime = &exitTime.Time
	}
	return u, nil
}

// RegisterUser сохраняет нового пользователя в базу данных и возвращает его uid.
// При нарушении уникальности email возвращает ErrEmailTaken.
func (s *Storage) RegisterUser(ctx context.Context, user models.User) (string, error) {
	const op = "storage.RegisterUser"
	select {
	case <-ctx.Done():
		return "", fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	var newUID string
	query := `INSERT INTO users (name, firstname, email, password_hash, role, plate,
			      telephone, requires_accessible_parking)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
			  RETURNING uid;`
	if err := s.DB.QueryRowContext(ctx, query,
		user.Name, user.Firstname, user.Email, user.PasswordHash, user.Role,
		user.Plate, user.Telephone, user.RequiresAccessibleParking).Scan(&newUID); err != nil {
		if isUniqueViolation(err) {
			return "", fmt.Errorf("%s: %w", op, ErrEmailTaken)
		}
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return newUID, nil
}

// GetUserByEmail возвращает пользователя по email.
func (s *Storage) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	const op = "storage.GetUserByEmail"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT ` + userColumns + `
			  FROM users
			  WHERE email = $1`
	u, err := scanUser(s.DB.QueryRowContext(ctx, query, email))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, ErrUserNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return u, nil
}

// GetUser возвращает пользователя по его uid.
func (s *Storage) GetUser(ctx context.Context, uid string) (*models.User, error) {
	const op = "storage.GetUser"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT ` + userColumns + `
			  FROM users
			  WHERE uid = $1`
	u, err := scanUser(s.DB.QueryRowContext(ctx, query, uid))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, ErrUserNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return u, nil
}

// FindUserByPlate ищет пользователя, чей сохранённый номер совпадает без учёта
// регистра с одной из двух форм: канонической или с префиксом "1-". Обе формы
// передаются уже в верхнем регистре. При нескольких совпадениях победитель
// детерминирован: последний зарегистрированный, uid как финальный критерий.
func (s *Storage) FindUserByPlate(ctx context.Context, plain, prefixed string) (*models.User, error) {
	const op = "storage.FindUserByPlate"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT ` + userColumns + `
			  FROM users
			  WHERE UPPER(plate) = $1 OR UPPER(plate) = $2
			  ORDER BY created_at DESC, uid
			  LIMIT 1`
	u, err := scanUser(s.DB.QueryRowContext(ctx, query, plain, prefixed))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, ErrUserNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return u, nil
}

// UpdateParkingState записывает парковочное состояние пользователя с проверкой
// версии. Если версия не совпала (запись изменена конкурентно), возвращает
// ErrVersionConflict, и вызывающий перечитывает запись.
func (s *Storage) UpdateParkingState(ctx context.Context, uid string, version int,
	parkingID string, arrivalTime, exitTime *time.Time) error {
	const op = "storage.UpdateParkingState"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE users
			  SET parking_id = $1, arrival_time = $2, exit_time = $3,
			      version = version + 1, updated_at = NOW()
			  WHERE uid = $4 AND version = $5`
	result, err := s.DB.ExecContext(ctx, query, parkingID, arrivalTime, exitTime, uid, version)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("%s: %w", op, ErrVersionConflict)
	}
	return nil
}

// UpdateProfile обновляет профиль пользователя, включая хэш пароля.
// Хэширование — ответственность сервисного слоя, сюда plaintext не попадает.
func (s *Storage) UpdateProfile(ctx context.Context, user models.User) error {
	const op = "storage.UpdateProfile"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE users
			  SET name = $1, firstname = $2, telephone = $3, plate = $4,
			      profile_image_name = $5, password_hash = $6,
			      requires_accessible_parking = $7, updated_at = NOW()
			  WHERE uid = $8`
	result, err := s.DB.ExecContext(ctx, query, user.Name, user.Firstname,
		user.Telephone, user.Plate, user.ProfileImageName, user.PasswordHash,
		user.RequiresAccessibleParking, user.UID)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("%s: %w", op, ErrUserNotFound)
	}
	return nil
}

// SetBlocked выставляет признак блокировки пользователя.
func (s *Storage) SetBlocked(ctx context.Context, uid string, blocked bool) error {
	const op = "storage.SetBlocked"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE users
			  SET blocked = $1, updated_at = NOW()
			  WHERE uid = $2`
	result, err := s.DB.ExecContext(ctx, query, blocked, uid)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("%s: %w", op, ErrUserNotFound)
	}
	return nil
}

// ListUsers возвращает список пользователей с пагинацией.
func (s *Storage) ListUsers(ctx context.Context, limit, offset int) ([]*models.User, error) {
	const op = "storage.ListUsers"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT ` + userColumns + `
			  FROM users
			  ORDER BY created_at
			  LIMIT $1 OFFSET $2`
	rows, err := s.DB.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var result []*models.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, u)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// AssignSubscription привязывает пользователя к тарифному плану и выставляет
// дату окончания подписки.
func (s *Storage) AssignSubscription(ctx context.Context, uid string, planID int, endDate time.Time) error {
	const op = "storage.AssignSubscription"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE users
			  SET type_subscription = $1, subscription_end_date = $2, updated_at = NOW()
			  WHERE uid = $3`
	result, err := s.DB.ExecContext(ctx, query, planID, endDate, uid)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("%s: %w", op, ErrUserNotFound)
	}
	return nil
}

// FindSubscriptionsExpiringTomorrow находит пользователей, подписка которых
// заканчивается завтра, вместе с названием их тарифного плана.
func (s *Storage) FindSubscriptionsExpiringTomorrow(ctx context.Context) ([]*models.ExpiryInfo, error) {
	const op = "storage.FindSubscriptionsExpiringTomorrow"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT
			      u.email,
			      u.name,
			      COALESCE(s.name, ''),
			      u.subscription_end_date
			  FROM users u
			  LEFT JOIN subscriptions s ON u.type_subscription = s.id
			  WHERE u.subscription_end_date::DATE = CURRENT_DATE + INTERVAL '1 day';`
	rows, err := s.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var result []*models.ExpiryInfo
	for rows.Next() {
		var info models.ExpiryInfo
		if err = rows.Scan(&info.Email, &info.Name, &info.PlanName, &info.EndDate); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, &info)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}
