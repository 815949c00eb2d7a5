package contact

import (
	"context"
	"errors"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/gofrs/uuid/v5"

	"github.com/andiamooltre/oltreweb/internal/database"
)

type contactRepository struct {
	db database.Database
}

func NewRepository(db database.Database) Repository {
	return &contactRepository{db: db}
}

func (r contactRepository) GetInfo(ctx context.Context, info *Info) error {
	query, args, errQueryArgs := r.db.
		Builder().
		Select("phone", "email", "instagram", "facebook", "updated_on").
		From("contact_info").
		Where(sq.Eq{"contact_info_id": 1}).
		ToSql()
	if errQueryArgs != nil {
		return database.DBErr(errQueryArgs)
	}

	errQuery := r.db.QueryRow(ctx, query, args...).
		Scan(&info.Phone, &info.Email, &info.Instagram, &info.Facebook, &info.UpdatedOn)
	if errQuery != nil {
		wrapped := database.DBErr(errQuery)
		if errors.Is(wrapped, database.ErrNoResult) {
			// The card starts empty until an admin fills it in.
			return nil
		}

		return wrapped
	}

	return nil
}

func (r contactRepository) SaveInfo(ctx context.Context, info *Info) error {
	info.UpdatedOn = time.Now()

	const query = `
		INSERT INTO contact_info (contact_info_id, phone, email, instagram, facebook, updated_on)
		VALUES (1, $1, $2, $3, $4, $5)
		ON CONFLICT (contact_info_id)
		DO UPDATE SET phone = $1, email = $2, instagram = $3, facebook = $4, updated_on = $5`

	return database.DBErr(r.db.Exec(ctx, query,
		info.Phone, info.Email, info.Instagram, info.Facebook, info.UpdatedOn))
}

func (r contactRepository) InsertReport(ctx context.Context, report *Report) error {
	report.CreatedOn = time.Now()

	if report.Images == nil {
		report.Images = []Image{}
	}

	return database.DBErr(r.db.ExecInsertBuilderWithReturnValue(ctx, r.db.
		Builder().
		Insert("contact_report").
		Columns("name", "surname", "email", "phone", "description", "images", "is_read", "created_on").
		Values(report.Name, report.Surname, report.Email, report.Phone,
			report.Description, report.Images, report.IsRead, report.CreatedOn).
		Suffix("RETURNING report_id"), &report.ReportID))
}

func (r contactRepository) ListReports(ctx context.Context) ([]Report, error) {
	rows, errQuery := r.db.QueryBuilder(ctx, r.db.
		Builder().
		Select("report_id", "name", "surname", "email", "phone", "description",
			"images", "is_read", "created_on").
		From("contact_report").
		OrderBy("created_on DESC"))
	if errQuery != nil {
		return nil, database.DBErr(errQuery)
	}

	defer rows.Close()

	//goland:noinspection GoPreferNilSlice
	reports := []Report{}

	for rows.Next() {
		var report Report
		if errScan := rows.Scan(&report.ReportID, &report.Name, &report.Surname,
			&report.Email, &report.Phone, &report.Description, &report.Images,
			&report.IsRead, &report.CreatedOn); errScan != nil {
			return nil, database.DBErr(errScan)
		}

		reports = append(reports, report)
	}

	return reports, nil
}

func (r contactRepository) SetReportRead(ctx context.Context, reportID uuid.UUID, isRead bool) error {
	return database.DBErr(r.db.ExecUpdateBuilder(ctx, r.db.
		Builder().
		Update("contact_report").
		Set("is_read", isRead).
		Where(sq.Eq{"report_id": reportID})))
}

func (r contactRepository) DeleteReport(ctx context.Context, reportID uuid.UUID) error {
	return database.DBErr(r.db.ExecDeleteBuilder(ctx, r.db.
		Builder().
		Delete("contact_report").
		Where(sq.Eq{"report_id": reportID})))
}
