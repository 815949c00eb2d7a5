package auth

import (
	"context"
	"time"

	sq "github.com/Masterminds/squirrel"

	"github.com/andiamooltre/oltreweb/internal/database"
)

type authRepository struct {
	db database.Database
}

func NewRepository(db database.Database) Repository {
	return &authRepository{db: db}
}

func (r authRepository) GetAdminByEmail(ctx context.Context, email string) (Admin, error) {
	row, errRow := r.db.QueryBuilder(ctx, r.db.
		Builder().
		Select("admin_id", "email", "password_hash", "created_on", "last_login_on").
		From("admin").
		Where(sq.Eq{"email": email}))
	if errRow != nil {
		return Admin{}, database.DBErr(errRow)
	}

	defer row.Close()

	if !row.Next() {
		return Admin{}, database.ErrNoResult
	}

	var admin Admin
	if errScan := row.Scan(&admin.AdminID, &admin.Email, &admin.PasswordHash,
		&admin.CreatedOn, &admin.LastLoginOn); errScan != nil {
		return Admin{}, database.DBErr(errScan)
	}

	return admin, nil
}

func (r authRepository) SaveAdmin(ctx context.Context, admin *Admin) error {
	if admin.AdminID > 0 {
		return database.DBErr(r.db.ExecUpdateBuilder(ctx, r.db.
			Builder().
			Update("admin").
			Set("email", admin.Email).
			Set("password_hash", admin.PasswordHash).
			Where(sq.Eq{"admin_id": admin.AdminID})))
	}

	return database.DBErr(r.db.ExecInsertBuilderWithReturnValue(ctx, r.db.
		Builder().
		Insert("admin").
		Columns("email", "password_hash", "created_on").
		Values(admin.Email, admin.PasswordHash, admin.CreatedOn).
		Suffix("RETURNING admin_id"), &admin.AdminID))
}

func (r authRepository) TouchLastLogin(ctx context.Context, adminID int) error {
	return database.DBErr(r.db.ExecUpdateBuilder(ctx, r.db.
		Builder().
		Update("admin").
		Set("last_login_on", time.Now()).
		Where(sq.Eq{"admin_id": adminID})))
}
