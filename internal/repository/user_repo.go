package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/agassama1998/materialmanagementapp/internal/domain"

	"github.com/sirupsen/logrus"
)

type postgresUserRepository struct {
	db  *sql.DB
	log *logrus.Logger
}

func NewPostgresUserRepository(db *sql.DB, logger *logrus.Logger) domain.UserRepository {
	return &postgresUserRepository{
		db:  db,
		log: logger,
	}
}

func (r *postgresUserRepository) CreateUser(ctx context.Context, user *domain.User) (*domain.User, error) {
	query := `
        INSERT INTO users (email, password_hash, role)
        VALUES ($1, $2, $3)
        RETURNING id, created_at`

	r.log.Debugf("Repository: Attempting to create user with email: %s", user.Email)

	err := r.db.QueryRowContext(ctx, query, user.Email, user.PasswordHash, string(user.Role)).Scan(
		&user.ID,
		&user.CreatedAt,
	)
	if err != nil {
		if pqErrorCode(err) == uniqueViolation {
			r.log.Warnf("Repository: Attempted to create user with duplicate email: %s", user.Email)
			return nil, fmt.Errorf("user with email '%s': %w", user.Email, domain.ErrDuplicateEmail)
		}
		r.log.Errorf("Repository: Failed to create user '%s': %v", user.Email, err)
		return nil, fmt.Errorf("could not create user: %w", err)
	}

	r.log.Infof("Repository: User created successfully with ID: %d, Email: %s", user.ID, user.Email)
	return user, nil
}

func (r *postgresUserRepository) GetUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	query := `
        SELECT id, email, password_hash, role, created_at
        FROM users
        WHERE email = $1`
	user, err := r.scanUser(r.db.QueryRowContext(ctx, query, email))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			r.log.Warnf("Repository: User with email %s not found", email)
			return nil, fmt.Errorf("user with email %s: %w", email, domain.ErrNotFound)
		}
		r.log.Errorf("Repository: Failed to get user by email %s: %v", email, err)
		return nil, fmt.Errorf("could not get user by email: %w", err)
	}
	return user, nil
}

func (r *postgresUserRepository) GetUserByID(ctx context.Context, id int64) (*domain.User, error) {
	query := `
        SELECT id, email, password_hash, role, created_at
        FROM users
        WHERE id = $1`
	user, err := r.scanUser(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			r.log.Warnf("Repository: User with ID %d not found", id)
			return nil, fmt.Errorf("user with id %d: %w", id, domain.ErrNotFound)
		}
		r.log.Errorf("Repository: Failed to get user by ID %d: %v", id, err)
		return nil, fmt.Errorf("could not get user by id: %w", err)
	}
	return user, nil
}

func (r *postgresUserRepository) scanUser(row rowScanner) (*domain.User, error) {
	user := &domain.User{}
	var role string
	if err := row.Scan(&user.ID, &user.Email, &user.PasswordHash, &role, &user.CreatedAt); err != nil {
		return nil, err
	}
	user.Role = domain.Role(role)
	return user, nil
}

type postgresRoleRepository struct {
	db  *sql.DB
	log *logrus.Logger
}

func NewPostgresRoleRepository(db *sql.DB, logger *logrus.Logger) domain.RoleRepository {
	return &postgresRoleRepository{
		db:  db,
		log: logger,
	}
}

func (r *postgresRoleRepository) EnsureRole(ctx context.Context, role domain.Role) error {
	result, err := r.db.ExecContext(ctx, `INSERT INTO roles (name) VALUES ($1) ON CONFLICT (name) DO NOTHING`, string(role))
	if err != nil {
		r.log.Errorf("Repository: Failed to ensure role %s: %v", role, err)
		return fmt.Errorf("could not ensure role %s: %w", role, err)
	}
	if n, _ := result.RowsAffected(); n > 0 {
		r.log.Infof("Repository: Role %s created", role)
	}
	return nil
}

func (r *postgresRoleRepository) ListRoles(ctx context.Context) ([]domain.Role, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT name FROM roles ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("could not list roles: %w", err)
	}
	defer rows.Close()

	var roles []domain.Role
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("error scanning role: %w", err)
		}
		roles = append(roles, domain.Role(name))
	}
	return roles, rows.Err()
}
