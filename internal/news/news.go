// Package news manages the published article feed.
package news

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/gofrs/uuid/v5"
	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"
	"github.com/microcosm-cc/bluemonday"

	"github.com/andiamooltre/oltreweb/internal/carousel"
	"github.com/andiamooltre/oltreweb/pkg/broadcaster"
)

var ErrTitleRequired = errors.New("article title is required")

const TopicChanged = "news"

type Image struct {
	Src string `json:"src"`
	Alt string `json:"alt"`
}

type Attachment struct {
	Name string `json:"name"`
	URL  string `json:"url"`
}

type Article struct {
	NewsID      uuid.UUID    `json:"news_id"`
	Title       string       `json:"title"`
	Subtitle    string       `json:"subtitle"`
	BodyMD      string       `json:"body_md"`
	Date        DateParts    `json:"date"`
	VideoID     string       `json:"video_id"`
	Images      []Image      `json:"images"`
	Attachments []Attachment `json:"attachments"`
	CreatedOn   time.Time    `json:"created_on,omitzero"`
	UpdatedOn   time.Time    `json:"updated_on,omitzero"`
}

type Repository interface {
	List(ctx context.Context) ([]Article, error)
	GetByID(ctx context.Context, newsID uuid.UUID, article *Article) error
	Save(ctx context.Context, article *Article) error
	Delete(ctx context.Context, newsID uuid.UUID) error
}

// renderPolicy keeps rendered article bodies to safe markup. Package global because
// bluemonday policies are immutable once built and safe for concurrent use.
var renderPolicy = bluemonday.UGCPolicy() //nolint:gochecknoglobals

// RenderBody converts the stored markdown body into sanitized HTML.
func RenderBody(bodyMD string) string {
	if bodyMD == "" {
		return ""
	}

	mdParser := parser.NewWithExtensions(parser.CommonExtensions | parser.AutoHeadingIDs)
	renderer := html.NewRenderer(html.RendererOptions{Flags: html.CommonFlags | html.HrefTargetBlank})

	return renderPolicy.Sanitize(string(markdown.ToHTML([]byte(bodyMD), mdParser, renderer)))
}

// DisplayHints tell the frontend how to present an article gallery.
type DisplayHints struct {
	Mode       carousel.DisplayMode `json:"mode"`
	IntervalMS int                  `json:"interval_ms"`
}

// HintsFor selects the gallery presentation for a viewport and gallery size.
func HintsFor(narrow bool, imageCount int, intervalMS int) DisplayHints {
	return DisplayHints{
		Mode:       carousel.ModeFor(narrow, imageCount),
		IntervalMS: intervalMS,
	}
}

type News struct {
	repository  Repository
	placeholder string
	changes     *broadcaster.Broadcaster[string]
}

func NewNews(repository Repository, placeholderImage string, changes *broadcaster.Broadcaster[string]) News {
	return News{repository: repository, placeholder: placeholderImage, changes: changes}
}

func (u News) changed() {
	if u.changes != nil {
		u.changes.Emit(TopicChanged)
	}
}

// List returns the feed newest first.
func (u News) List(ctx context.Context) ([]Article, error) {
	return u.repository.List(ctx)
}

func (u News) GetByID(ctx context.Context, newsID uuid.UUID, article *Article) error {
	return u.repository.GetByID(ctx, newsID, article)
}

// Placeholder returns the fallback image shown for articles with no gallery and no
// video.
func (u News) Placeholder() string {
	return u.placeholder
}

// Save persists an article. The video field accepts either a pasted URL or an already
// extracted id, both normalize to the bare id.
func (u News) Save(ctx context.Context, article *Article) error {
	if article.Title == "" {
		return ErrTitleRequired
	}

	article.VideoID = ExtractVideoID(article.VideoID)

	if article.Date.IsZero() {
		article.Date = DatePartsFromTime(time.Now())
	}

	if errSave := u.repository.Save(ctx, article); errSave != nil {
		return errSave
	}

	u.changed()

	return nil
}

func (u News) Delete(ctx context.Context, newsID uuid.UUID) error {
	if err := u.repository.Delete(ctx, newsID); err != nil {
		return err
	}

	slog.Info("Deleted article", slog.String("news_id", newsID.String()))

	u.changed()

	return nil
}

// AddAttachment appends a stored file to an article's download list.
func (u News) AddAttachment(ctx context.Context, newsID uuid.UUID, attachment Attachment) (Article, error) {
	var article Article
	if errGet := u.repository.GetByID(ctx, newsID, &article); errGet != nil {
		return Article{}, errGet
	}

	article.Attachments = append(article.Attachments, attachment)

	if errSave := u.Save(ctx, &article); errSave != nil {
		return Article{}, errSave
	}

	return article, nil
}

var ErrAttachmentIndex = errors.New("attachment index out of range")

func (u News) RemoveAttachment(ctx context.Context, newsID uuid.UUID, index int) (Article, error) {
	var article Article
	if errGet := u.repository.GetByID(ctx, newsID, &article); errGet != nil {
		return Article{}, errGet
	}

	if index < 0 || index >= len(article.Attachments) {
		return Article{}, ErrAttachmentIndex
	}

	article.Attachments = append(article.Attachments[:index], article.Attachments[index+1:]...)

	if errSave := u.Save(ctx, &article); errSave != nil {
		return Article{}, errSave
	}

	return article, nil
}
