package sqlxrepos

import (
	"context"
	"database/sql"

	sq "github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"

	"github.com/tkalearning/lms/core/user"
	"github.com/tkalearning/lms/storage/database"
)

var userColumns = []string{"id", "username", "email", "password_hash", "is_admin", "created_at"}

type userRepository struct {
	repository
}

var _ user.Repository = (*userRepository)(nil) // interface compliance check

func NewUserRepository(db *sqlx.DB) *userRepository {
	return &userRepository{repository: newRepository(db)}
}

// trapNoRowsErr maps "no rows" err to user.ErrNotFound
func (repo userRepository) trapNoRowsErr(err error, msg string) error {
	if err == sql.ErrNoRows {
		return user.ErrNotFound
	}
	return wrapErr(err, msg)
}

func (repo userRepository) CheckUsernameUniqueness(ctx context.Context, username, email string, excludedIDs ...int) error {
	match := sq.Or{sq.Eq{"username": username}}
	if email != "" {
		match = append(match, sq.Eq{"email": email})
	}
	where := sq.And{match}
	if len(excludedIDs) > 0 {
		where = append(where, sq.NotEq{"id": excludedIDs})
	}

	query, args, err := repo.sb.Select("username").From("users").Where(where).Limit(1).ToSql()
	if err != nil {
		return wrapErr(err, "building query")
	}

	var found string
	if err = repo.db.GetContext(ctx, &found, query, args...); err != nil {
		if err == sql.ErrNoRows {
			return nil
		}
		return wrapErr(err, "checking user uniqueness")
	}
	if found == username {
		return user.ErrUsernameExists
	}
	return user.ErrEmailExists
}

func (repo userRepository) CreateUser(ctx context.Context, usr user.User) (user.User, error) {
	query, args, err := repo.sb.Insert("users").
		Columns("username", "email", "password_hash", "is_admin", "created_at").
		Values(usr.Username, usr.Email, usr.PasswordHash, usr.IsAdmin, usr.CreatedAt.UTC()).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		return user.User{}, wrapErr(err, "building query")
	}

	if err = repo.db.QueryRowxContext(ctx, query, args...).Scan(&usr.ID); err != nil {
		if database.IsUniqueViolationOf(err, "users", "email") {
			return user.User{}, user.ErrEmailExists
		}
		if database.IsUniqueViolation(err) {
			return user.User{}, user.ErrUsernameExists
		}
		return user.User{}, wrapErr(err, "inserting user")
	}
	return usr, nil
}

func (repo userRepository) getUser(ctx context.Context, where interface{}) (user.User, error) {
	query, args, err := repo.sb.Select(userColumns...).From("users").Where(where).Limit(1).ToSql()
	if err != nil {
		return user.User{}, wrapErr(err, "building query")
	}

	var usr user.User
	if err = repo.db.GetContext(ctx, &usr, query, args...); err != nil {
		return user.User{}, repo.trapNoRowsErr(err, "selecting user")
	}
	return usr, nil
}

func (repo userRepository) GetUserByID(ctx context.Context, id int) (user.User, error) {
	return repo.getUser(ctx, sq.Eq{"id": id})
}

func (repo userRepository) GetUserByUsername(ctx context.Context, username string) (user.User, error) {
	return repo.getUser(ctx, sq.Eq{"username": username})
}

func (repo userRepository) GetUserByUsernameOrEmail(ctx context.Context, username string) (user.User, error) {
	return repo.getUser(ctx, sq.Or{sq.Eq{"username": username}, sq.Eq{"email": username}})
}

func (repo userRepository) UpdateUser(ctx context.Context, usr user.User) (user.User, error) {
	query, args, err := repo.sb.Update("users").
		Set("email", usr.Email).
		Set("password_hash", usr.PasswordHash).
		Set("is_admin", usr.IsAdmin).
		Where(sq.Eq{"id": usr.ID}).
		ToSql()
	if err != nil {
		return user.User{}, wrapErr(err, "building query")
	}

	res, err := repo.db.ExecContext(ctx, query, args...)
	if err != nil {
		if database.IsUniqueViolation(err) {
			return user.User{}, user.ErrEmailExists
		}
		return user.User{}, wrapErr(err, "updating user")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return user.User{}, user.ErrNotFound
	}
	return repo.GetUserByID(ctx, usr.ID)
}
