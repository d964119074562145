package core

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/crypto/bcrypt"
)

// UserDirectory manages back-office logins and role permissions. Passwords
// are stored bcrypt-hashed and never leave the service.
type UserDirectory interface {
	Create(ctx context.Context, u User, password, retypePassword string) (int, error)
	Update(ctx context.Context, id int, u User) error
	Delete(ctx context.Context, id int) error
	Get(ctx context.Context, id int) (*User, error)
	List(ctx context.Context) ([]User, error)
	Authenticate(ctx context.Context, userName, password string) (*User, error)
	SaveRolePermissions(ctx context.Context, userType string, permissions map[string]MenuPermission) error
	ListUserTypes(ctx context.Context) ([]UserType, error)
	GetPermissions(ctx context.Context, userTypeID int) (map[string]MenuPermission, error)
}

type UserService struct {
	db *pgxpool.Pool
}

func NewUserService(db *pgxpool.Pool) *UserService {
	return &UserService{db: db}
}

func (s *UserService) Create(ctx context.Context, u User, password, retypePassword string) (int, error) {
	if u.UserName == "" || password == "" {
		return 0, Invalid("user_name and password are required")
	}
	if password != retypePassword {
		return 0, Invalid("passwords do not match")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return 0, fmt.Errorf("hash password: %w", err)
	}

	var id int
	err = s.db.QueryRow(ctx, `
		INSERT INTO users (user_name, email, phone_number, role, password_hash)
		VALUES ($1,$2,$3,$4,$5)
		RETURNING id`,
		u.UserName, u.Email, u.PhoneNumber, u.Role, string(hash)).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("insert user: %w", err)
	}
	return id, nil
}

// Update rewrites the profile fields. Password changes go through Create's
// hashing path, not here.
func (s *UserService) Update(ctx context.Context, id int, u User) error {
	tag, err := s.db.Exec(ctx, `
		UPDATE users SET user_name = $1, email = $2, phone_number = $3, role = $4
		WHERE id = $5`,
		u.UserName, u.Email, u.PhoneNumber, u.Role, id)
	if err != nil {
		return fmt.Errorf("update user %d: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return NotFound("user", id)
	}
	return nil
}

func (s *UserService) Delete(ctx context.Context, id int) error {
	tag, err := s.db.Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete user %d: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return NotFound("user", id)
	}
	return nil
}

const userColumns = `id, user_name, email, phone_number, role, password_hash, created_at`

func scanUser(row pgx.Row) (*User, error) {
	var u User
	err := row.Scan(&u.ID, &u.UserName, &u.Email, &u.PhoneNumber, &u.Role,
		&u.PasswordHash, &u.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (s *UserService) Get(ctx context.Context, id int) (*User, error) {
	u, err := scanUser(s.db.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, NotFound("user", id)
	}
	if err != nil {
		return nil, fmt.Errorf("load user %d: %w", id, err)
	}
	return u, nil
}

func (s *UserService) List(ctx context.Context) ([]User, error) {
	rows, err := s.db.Query(ctx, `SELECT `+userColumns+` FROM users ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	var users []User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, *u)
	}
	return users, rows.Err()
}

// Authenticate checks the password against the stored hash. A missing user
// and a wrong password return the same error.
func (s *UserService) Authenticate(ctx context.Context, userName, password string) (*User, error) {
	u, err := scanUser(s.db.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE user_name = $1`, userName))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, Invalid("invalid credentials")
	}
	if err != nil {
		return nil, fmt.Errorf("load user %s: %w", userName, err)
	}
	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) != nil {
		return nil, Invalid("invalid credentials")
	}
	return u, nil
}

// SaveRolePermissions ensures the user type exists and upserts the grant row
// of every submitted menu, all in one transaction.
func (s *UserService) SaveRolePermissions(ctx context.Context, userType string, permissions map[string]MenuPermission) error {
	if userType == "" || len(permissions) == 0 {
		return Invalid("user_type and permissions are required")
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin role permissions save: %w", err)
	}
	defer tx.Rollback(ctx)

	var userTypeID int
	err = tx.QueryRow(ctx, `
		INSERT INTO usertype (user_type) VALUES ($1)
		ON CONFLICT (user_type) DO UPDATE SET user_type = EXCLUDED.user_type
		RETURNING id`, userType).Scan(&userTypeID)
	if err != nil {
		return fmt.Errorf("ensure user type %s: %w", userType, err)
	}

	for menuName, p := range permissions {
		_, err := tx.Exec(ctx, `
			INSERT INTO userrolepermissions (user_type_id, user_type, menu_name,
				can_add, can_modify, can_delete, can_view, can_print)
			VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
			ON CONFLICT (user_type_id, menu_name) DO UPDATE SET
				can_add = EXCLUDED.can_add, can_modify = EXCLUDED.can_modify,
				can_delete = EXCLUDED.can_delete, can_view = EXCLUDED.can_view,
				can_print = EXCLUDED.can_print`,
			userTypeID, userType, menuName,
			p.Add, p.Modify, p.Delete, p.View, p.Print)
		if err != nil {
			return fmt.Errorf("upsert permissions for menu %s: %w", menuName, err)
		}
	}

	return tx.Commit(ctx)
}

func (s *UserService) ListUserTypes(ctx context.Context) ([]UserType, error) {
	rows, err := s.db.Query(ctx, `SELECT id, user_type FROM usertype ORDER BY user_type`)
	if err != nil {
		return nil, fmt.Errorf("list user types: %w", err)
	}
	defer rows.Close()

	var types []UserType
	for rows.Next() {
		var ut UserType
		if err := rows.Scan(&ut.ID, &ut.UserType); err != nil {
			return nil, err
		}
		types = append(types, ut)
	}
	return types, rows.Err()
}

// GetPermissions returns the grants of a user type keyed by menu name.
func (s *UserService) GetPermissions(ctx context.Context, userTypeID int) (map[string]MenuPermission, error) {
	rows, err := s.db.Query(ctx, `
		SELECT menu_name, can_add, can_modify, can_delete, can_view, can_print
		FROM userrolepermissions WHERE user_type_id = $1`, userTypeID)
	if err != nil {
		return nil, fmt.Errorf("load permissions for user type %d: %w", userTypeID, err)
	}
	defer rows.Close()

	permissions := make(map[string]MenuPermission)
	for rows.Next() {
		var menuName string
		var p MenuPermission
		if err := rows.Scan(&menuName, &p.Add, &p.Modify, &p.Delete, &p.View, &p.Print); err != nil {
			return nil, err
		}
		permissions[menuName] = p
	}
	return permissions, rows.Err()
}
