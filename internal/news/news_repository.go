package news

import (
	"context"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/gofrs/uuid/v5"

	"github.com/andiamooltre/oltreweb/internal/database"
)

type newsRepository struct {
	db database.Database
}

func NewRepository(db database.Database) Repository {
	return &newsRepository{db: db}
}

func (r newsRepository) List(ctx context.Context) ([]Article, error) {
	rows, errQuery := r.db.QueryBuilder(ctx, r.db.
		Builder().
		Select("news_id", "title", "subtitle", "body_md", "date_day", "date_month",
			"date_year", "video_id", "images", "attachments", "created_on", "updated_on").
		From("news").
		OrderBy("created_on DESC"))
	if errQuery != nil {
		return nil, database.DBErr(errQuery)
	}

	defer rows.Close()

	//goland:noinspection GoPreferNilSlice
	articles := []Article{}

	for rows.Next() {
		var article Article
		if errScan := rows.Scan(&article.NewsID, &article.Title, &article.Subtitle,
			&article.BodyMD, &article.Date.Day, &article.Date.Month, &article.Date.Year,
			&article.VideoID, &article.Images, &article.Attachments,
			&article.CreatedOn, &article.UpdatedOn); errScan != nil {
			return nil, database.DBErr(errScan)
		}

		articles = append(articles, article)
	}

	return articles, nil
}

func (r newsRepository) GetByID(ctx context.Context, newsID uuid.UUID, article *Article) error {
	query, args, errQueryArgs := r.db.
		Builder().
		Select("news_id", "title", "subtitle", "body_md", "date_day", "date_month",
			"date_year", "video_id", "images", "attachments", "created_on", "updated_on").
		From("news").
		Where(sq.Eq{"news_id": newsID}).
		ToSql()
	if errQueryArgs != nil {
		return database.DBErr(errQueryArgs)
	}

	if errQuery := r.db.QueryRow(ctx, query, args...).Scan(&article.NewsID, &article.Title,
		&article.Subtitle, &article.BodyMD, &article.Date.Day, &article.Date.Month,
		&article.Date.Year, &article.VideoID, &article.Images, &article.Attachments,
		&article.CreatedOn, &article.UpdatedOn); errQuery != nil {
		return database.DBErr(errQuery)
	}

	return nil
}

func (r newsRepository) Save(ctx context.Context, article *Article) error {
	if article.Images == nil {
		article.Images = []Image{}
	}

	if article.Attachments == nil {
		article.Attachments = []Attachment{}
	}

	if !article.NewsID.IsNil() {
		return r.update(ctx, article)
	}

	return r.insert(ctx, article)
}

func (r newsRepository) insert(ctx context.Context, article *Article) error {
	article.CreatedOn = time.Now()
	article.UpdatedOn = article.CreatedOn

	return database.DBErr(r.db.ExecInsertBuilderWithReturnValue(ctx, r.db.
		Builder().
		Insert("news").
		Columns("title", "subtitle", "body_md", "date_day", "date_month", "date_year",
			"video_id", "images", "attachments", "created_on", "updated_on").
		Values(article.Title, article.Subtitle, article.BodyMD, article.Date.Day,
			article.Date.Month, article.Date.Year, article.VideoID, article.Images,
			article.Attachments, article.CreatedOn, article.UpdatedOn).
		Suffix("RETURNING news_id"), &article.NewsID))
}

func (r newsRepository) update(ctx context.Context, article *Article) error {
	article.UpdatedOn = time.Now()

	return database.DBErr(r.db.ExecUpdateBuilder(ctx, r.db.
		Builder().
		Update("news").
		Set("title", article.Title).
		Set("subtitle", article.Subtitle).
		Set("body_md", article.BodyMD).
		Set("date_day", article.Date.Day).
		Set("date_month", article.Date.Month).
		Set("date_year", article.Date.Year).
		Set("video_id", article.VideoID).
		Set("images", article.Images).
		Set("attachments", article.Attachments).
		Set("updated_on", article.UpdatedOn).
		Where(sq.Eq{"news_id": article.NewsID})))
}

func (r newsRepository) Delete(ctx context.Context, newsID uuid.UUID) error {
	return database.DBErr(r.db.ExecDeleteBuilder(ctx, r.db.
		Builder().
		Delete("news").
		Where(sq.Eq{"news_id": newsID})))
}
