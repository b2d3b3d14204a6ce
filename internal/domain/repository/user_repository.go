package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"ems_backend/internal/common"
	"ems_backend/internal/domain/model"

	"github.com/jackc/pgx/v5/pgconn"
)

type UserRepository interface {
	Create(ctx context.Context, user *model.User) error
	FindByEmail(ctx context.Context, email string) (*model.User, error)
	FindByID(ctx context.Context, id string) (*model.User, error)
	// FindStationAdmin returns the admin account for a station code, or
	// common.ErrNotFound when the station has none.
	FindStationAdmin(ctx context.Context, stationCode string) (*model.User, error)
	ListByStatus(ctx context.Context, status model.Status) ([]*model.User, error)
	// UpdateStatus sets the status and returns the updated record, or
	// common.ErrNotFound if no row matched. It is a single-row atomic
	// update; re-asserting a terminal status is allowed.
	UpdateStatus(ctx context.Context, id string, status model.Status) (*model.User, error)
}

type pgUserRepository struct {
	db *sql.DB
}

func NewPgUserRepository(db *sql.DB) UserRepository {
	return &pgUserRepository{db: db}
}

const userColumns = `id, name, email, hashed_password, role, police_station, station_code, status, created_at, updated_at`

func (r *pgUserRepository) Create(ctx context.Context, user *model.User) error {
	query := `INSERT INTO users (id, name, email, hashed_password, role, police_station, station_code, status)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	_, err := r.db.ExecContext(ctx, query,
		user.ID, user.Name, user.Email, user.HashedPassword,
		user.Role, user.PoliceStation, user.StationCode, user.Status)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" { // Unique constraint violation
			// users_station_admin_idx is the partial index that closes the
			// concurrent duplicate-admin race; users_email_key covers email.
			if pgErr.ConstraintName == "users_station_admin_idx" {
				return common.ErrAdminExists
			}
			return fmt.Errorf("user with given email already exists: %w", common.ErrValidation)
		}
		return fmt.Errorf("pgUserRepository.Create: %w", err)
	}
	return nil
}

func (r *pgUserRepository) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1`
	return r.scanOne(r.db.QueryRowContext(ctx, query, email), "FindByEmail")
}

func (r *pgUserRepository) FindByID(ctx context.Context, id string) (*model.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	return r.scanOne(r.db.QueryRowContext(ctx, query, id), "FindByID")
}

func (r *pgUserRepository) FindStationAdmin(ctx context.Context, stationCode string) (*model.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE station_code = $1 AND role = $2`
	return r.scanOne(r.db.QueryRowContext(ctx, query, stationCode, model.RoleAdmin), "FindStationAdmin")
}

func (r *pgUserRepository) ListByStatus(ctx context.Context, status model.Status) ([]*model.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE status = $1`
	rows, err := r.db.QueryContext(ctx, query, status)
	if err != nil {
		return nil, fmt.Errorf("pgUserRepository.ListByStatus: %w", err)
	}
	defer rows.Close()

	users := []*model.User{}
	for rows.Next() {
		user := &model.User{}
		if err := scanUser(rows, user); err != nil {
			return nil, fmt.Errorf("pgUserRepository.ListByStatus: %w", err)
		}
		users = append(users, user)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("pgUserRepository.ListByStatus: %w", err)
	}
	return users, nil
}

func (r *pgUserRepository) UpdateStatus(ctx context.Context, id string, status model.Status) (*model.User, error) {
	query := `UPDATE users SET status = $2, updated_at = now() WHERE id = $1
	          RETURNING ` + userColumns
	return r.scanOne(r.db.QueryRowContext(ctx, query, id, status), "UpdateStatus")
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanUser(row rowScanner, user *model.User) error {
	return row.Scan(
		&user.ID, &user.Name, &user.Email, &user.HashedPassword,
		&user.Role, &user.PoliceStation, &user.StationCode, &user.Status,
		&user.CreatedAt, &user.UpdatedAt,
	)
}

func (r *pgUserRepository) scanOne(row *sql.Row, op string) (*model.User, error) {
	user := &model.User{}
	if err := scanUser(row, user); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("pgUserRepository.%s: %w", op, err)
	}
	return user, nil
}
