package member

import (
	"context"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/gofrs/uuid/v5"

	"github.com/andiamooltre/oltreweb/internal/database"
)

type memberRepository struct {
	db database.Database
}

func NewRepository(db database.Database) Repository {
	return &memberRepository{db: db}
}

func (r memberRepository) List(ctx context.Context) ([]Member, error) {
	rows, errQuery := r.db.QueryBuilder(ctx, r.db.
		Builder().
		Select("member_id", "name", "role", "description", "email", "phone",
			"instagram", "facebook", "image_url", "is_president", "created_on", "updated_on").
		From("member").
		OrderBy("created_on DESC"))
	if errQuery != nil {
		return nil, database.DBErr(errQuery)
	}

	defer rows.Close()

	//goland:noinspection GoPreferNilSlice
	members := []Member{}

	for rows.Next() {
		var entry Member
		if errScan := rows.Scan(&entry.MemberID, &entry.Name, &entry.Role, &entry.Description,
			&entry.Email, &entry.Phone, &entry.Instagram, &entry.Facebook, &entry.ImageURL,
			&entry.IsPresident, &entry.CreatedOn, &entry.UpdatedOn); errScan != nil {
			return nil, database.DBErr(errScan)
		}

		members = append(members, entry)
	}

	return members, nil
}

func (r memberRepository) GetByID(ctx context.Context, memberID uuid.UUID, entry *Member) error {
	query, args, errQueryArgs := r.db.
		Builder().
		Select("member_id", "name", "role", "description", "email", "phone",
			"instagram", "facebook", "image_url", "is_president", "created_on", "updated_on").
		From("member").
		Where(sq.Eq{"member_id": memberID}).
		ToSql()
	if errQueryArgs != nil {
		return database.DBErr(errQueryArgs)
	}

	if errQuery := r.db.QueryRow(ctx, query, args...).Scan(&entry.MemberID, &entry.Name,
		&entry.Role, &entry.Description, &entry.Email, &entry.Phone, &entry.Instagram,
		&entry.Facebook, &entry.ImageURL, &entry.IsPresident, &entry.CreatedOn,
		&entry.UpdatedOn); errQuery != nil {
		return database.DBErr(errQuery)
	}

	return nil
}

func (r memberRepository) Save(ctx context.Context, entry *Member) error {
	if !entry.MemberID.IsNil() {
		return r.update(ctx, entry)
	}

	return r.insert(ctx, entry)
}

func (r memberRepository) insert(ctx context.Context, entry *Member) error {
	entry.CreatedOn = time.Now()
	entry.UpdatedOn = entry.CreatedOn

	return database.DBErr(r.db.ExecInsertBuilderWithReturnValue(ctx, r.db.
		Builder().
		Insert("member").
		Columns("name", "role", "description", "email", "phone", "instagram",
			"facebook", "image_url", "is_president", "created_on", "updated_on").
		Values(entry.Name, entry.Role, entry.Description, entry.Email, entry.Phone,
			entry.Instagram, entry.Facebook, entry.ImageURL, entry.IsPresident,
			entry.CreatedOn, entry.UpdatedOn).
		Suffix("RETURNING member_id"), &entry.MemberID))
}

func (r memberRepository) update(ctx context.Context, entry *Member) error {
	entry.UpdatedOn = time.Now()

	return database.DBErr(r.db.ExecUpdateBuilder(ctx, r.db.
		Builder().
		Update("member").
		Set("name", entry.Name).
		Set("role", entry.Role).
		Set("description", entry.Description).
		Set("email", entry.Email).
		Set("phone", entry.Phone).
		Set("instagram", entry.Instagram).
		Set("facebook", entry.Facebook).
		Set("image_url", entry.ImageURL).
		Set("is_president", entry.IsPresident).
		Set("updated_on", entry.UpdatedOn).
		Where(sq.Eq{"member_id": entry.MemberID})))
}

func (r memberRepository) Delete(ctx context.Context, memberID uuid.UUID) error {
	return database.DBErr(r.db.ExecDeleteBuilder(ctx, r.db.
		Builder().
		Delete("member").
		Where(sq.Eq{"member_id": memberID})))
}
