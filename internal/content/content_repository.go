package content

import (
	"context"
	"time"

	sq "github.com/Masterminds/squirrel"

	"github.com/andiamooltre/oltreweb/internal/database"
)

type contentRepository struct {
	db database.Database
}

func NewRepository(db database.Database) Repository {
	return &contentRepository{db: db}
}

func (r contentRepository) Get(ctx context.Context, key string, section *Section) error {
	query, args, errQueryArgs := r.db.
		Builder().
		Select("section_key", "content", "updated_on").
		From("site_content").
		Where(sq.Eq{"section_key": key}).
		ToSql()
	if errQueryArgs != nil {
		return database.DBErr(errQueryArgs)
	}

	return database.DBErr(r.db.QueryRow(ctx, query, args...).
		Scan(&section.Key, &section.Content, &section.UpdatedOn))
}

func (r contentRepository) List(ctx context.Context) ([]Section, error) {
	rows, errQuery := r.db.QueryBuilder(ctx, r.db.
		Builder().
		Select("section_key", "content", "updated_on").
		From("site_content").
		OrderBy("section_key"))
	if errQuery != nil {
		return nil, database.DBErr(errQuery)
	}

	defer rows.Close()

	//goland:noinspection GoPreferNilSlice
	sections := []Section{}

	for rows.Next() {
		var section Section
		if errScan := rows.Scan(&section.Key, &section.Content, &section.UpdatedOn); errScan != nil {
			return nil, database.DBErr(errScan)
		}

		sections = append(sections, section)
	}

	return sections, nil
}

func (r contentRepository) Save(ctx context.Context, section *Section) error {
	section.UpdatedOn = time.Now()

	const query = `
		INSERT INTO site_content (section_key, content, updated_on)
		VALUES ($1, $2, $3)
		ON CONFLICT (section_key)
		DO UPDATE SET content = $2, updated_on = $3`

	return database.DBErr(r.db.Exec(ctx, query, section.Key, section.Content, section.UpdatedOn))
}
