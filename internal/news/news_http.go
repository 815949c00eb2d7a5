package news

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gofrs/uuid/v5"

	"github.com/andiamooltre/oltreweb/internal/asset"
	"github.com/andiamooltre/oltreweb/internal/database"
	"github.com/andiamooltre/oltreweb/internal/editor"
	"github.com/andiamooltre/oltreweb/internal/httphelper"
	"github.com/andiamooltre/oltreweb/pkg/log"
)

type newsHandler struct {
	news       News
	assets     asset.Assets
	intervalMS int
	sessions   *editor.SessionHandler[Article]
}

func NewNewsHandler(engine *gin.Engine, news News, assets asset.Assets, auth httphelper.Authenticator,
	intervalMS int,
) {
	handler := newsHandler{news: news, assets: assets, intervalMS: intervalMS}

	handler.sessions = editor.NewSessionHandler(editor.NewManager[Article](), assets, 0,
		func(ctx context.Context, entity Article, media []editor.MediaItem) error {
			entity.Images = make([]Image, 0, len(media))
			for _, item := range media {
				entity.Images = append(entity.Images, Image{Src: item.Src, Alt: item.Alt})
			}

			return news.Save(ctx, &entity)
		})

	engine.GET("/api/news", handler.onList())
	engine.GET("/api/news/:news_id", handler.onGet())

	adminGrp := engine.Group("/")
	{
		admin := adminGrp.Use(auth.Middleware())
		admin.DELETE("/api/news/:news_id", handler.onDelete())
		admin.POST("/api/news/:news_id/attachment", handler.onAddAttachment())
		admin.DELETE("/api/news/:news_id/attachment/:index", handler.onRemoveAttachment())
		admin.POST("/api/news_sessions", handler.onBeginSession())
		admin.PUT("/api/news_sessions/:session_id", handler.onUpdateFields())
		handler.sessions.Register(admin, "/api/news_sessions")
	}
}

type articleView struct {
	Article
	BodyHTML string       `json:"body_html"`
	EmbedURL string       `json:"embed_url"`
	Display  DisplayHints `json:"display"`
}

type articleQuery struct {
	// Viewport is "narrow" for phone widths, anything else renders wide.
	Viewport string `schema:"viewport"`
}

func (q articleQuery) narrow() bool {
	return q.Viewport == "narrow"
}

// renderArticle builds the public view: sanitized body HTML, the video embed URL, the
// gallery display hint and the placeholder image when the article has no media at all.
func (h newsHandler) renderArticle(article Article, narrow bool) articleView {
	if len(article.Images) == 0 && article.VideoID == "" {
		article.Images = []Image{{Src: h.news.Placeholder(), Alt: article.Title}}
	}

	return articleView{
		Article:  article,
		BodyHTML: RenderBody(article.BodyMD),
		EmbedURL: EmbedURL(article.VideoID),
		Display:  HintsFor(narrow, len(article.Images), h.intervalMS),
	}
}

func (h newsHandler) onList() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		var query articleQuery
		if !httphelper.BindQuery(ctx, &query) {
			return
		}

		articles, errArticles := h.news.List(ctx)
		if errArticles != nil {
			httphelper.SetError(ctx, httphelper.NewAPIError(http.StatusInternalServerError, errArticles))
			slog.Error("Failed to list articles", log.ErrAttr(errArticles))

			return
		}

		views := make([]articleView, 0, len(articles))
		for _, article := range articles {
			views = append(views, h.renderArticle(article, query.narrow()))
		}

		ctx.JSON(http.StatusOK, views)
	}
}

func (h newsHandler) onGet() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		newsID, found := httphelper.GetUUIDParam(ctx, "news_id")
		if !found {
			return
		}

		var query articleQuery
		if !httphelper.BindQuery(ctx, &query) {
			return
		}

		var article Article
		if errGet := h.news.GetByID(ctx, newsID, &article); errGet != nil {
			if errors.Is(errGet, database.ErrNoResult) {
				httphelper.SetError(ctx, httphelper.NewAPIError(http.StatusNotFound, httphelper.ErrNotFound))

				return
			}

			httphelper.SetError(ctx, httphelper.NewAPIError(http.StatusInternalServerError, errGet))

			return
		}

		ctx.JSON(http.StatusOK, h.renderArticle(article, query.narrow()))
	}
}

type beginSessionRequest struct {
	NewsID uuid.UUID `json:"news_id"`
}

func (h newsHandler) onBeginSession() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		req, ok := httphelper.BindJSON[beginSessionRequest](ctx)
		if !ok {
			return
		}

		var (
			article Article
			media   []editor.MediaItem
		)

		if !req.NewsID.IsNil() {
			if errGet := h.news.GetByID(ctx, req.NewsID, &article); errGet != nil {
				if errors.Is(errGet, database.ErrNoResult) {
					httphelper.SetError(ctx, httphelper.NewAPIError(http.StatusNotFound, httphelper.ErrNotFound))

					return
				}

				httphelper.SetError(ctx, httphelper.NewAPIError(http.StatusInternalServerError, errGet))

				return
			}

			for _, image := range article.Images {
				media = append(media, editor.MediaItem{Src: image.Src, Alt: image.Alt})
			}
		}

		session := h.sessions.Manager().Begin(article, media)

		ctx.JSON(http.StatusCreated, editor.View(session))
	}
}

type articleUpdateRequest struct {
	Title    string    `json:"title"`
	Subtitle string    `json:"subtitle"`
	BodyMD   string    `json:"body_md"`
	Date     DateParts `json:"date"`
	// Video accepts a pasted YouTube URL or a bare video id.
	Video string `json:"video"`
}

func (h newsHandler) onUpdateFields() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		session, valid := h.sessions.Session(ctx)
		if !valid {
			return
		}

		req, ok := httphelper.BindJSON[articleUpdateRequest](ctx)
		if !ok {
			return
		}

		errUpdate := session.Update(func(working *Article) {
			working.Title = req.Title
			working.Subtitle = req.Subtitle
			working.BodyMD = req.BodyMD
			working.Date = req.Date
			working.VideoID = ExtractVideoID(req.Video)
		})
		if errUpdate != nil {
			httphelper.SetError(ctx, httphelper.NewAPIError(http.StatusConflict, errUpdate))

			return
		}

		ctx.JSON(http.StatusOK, editor.View(session))
	}
}

func (h newsHandler) onDelete() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		newsID, found := httphelper.GetUUIDParam(ctx, "news_id")
		if !found {
			return
		}

		if !httphelper.ConfirmedDelete(ctx) {
			return
		}

		if errDelete := h.news.Delete(ctx, newsID); errDelete != nil {
			if errors.Is(errDelete, database.ErrNoResult) {
				httphelper.SetError(ctx, httphelper.NewAPIError(http.StatusNotFound, httphelper.ErrNotFound))

				return
			}

			httphelper.SetError(ctx, httphelper.NewAPIError(http.StatusInternalServerError, errDelete))

			return
		}

		ctx.JSON(http.StatusOK, gin.H{})
	}
}

func (h newsHandler) onAddAttachment() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		newsID, found := httphelper.GetUUIDParam(ctx, "news_id")
		if !found {
			return
		}

		var upload asset.UserUploadedFile
		if errBind := ctx.Bind(&upload); errBind != nil {
			httphelper.SetError(ctx, httphelper.NewAPIError(http.StatusBadRequest, httphelper.ErrBadRequest))

			return
		}

		if upload.Name == "" {
			upload.Name = upload.File.Filename
		}

		handle, errOpen := upload.File.Open()
		if errOpen != nil {
			httphelper.SetError(ctx, httphelper.NewAPIError(http.StatusBadRequest,
				errors.Join(errOpen, httphelper.ErrBadRequest)))

			return
		}

		defer log.Closer(handle)

		saved, errSave := h.assets.Create(ctx, upload.Name, handle)
		if errSave != nil {
			httphelper.SetError(ctx, httphelper.NewAPIError(http.StatusInternalServerError, errSave))
			slog.Error("Failed to store attachment", log.ErrAttr(errSave))

			return
		}

		article, errAttach := h.news.AddAttachment(ctx, newsID,
			Attachment{Name: saved.Name, URL: h.assets.URL(saved)})
		if errAttach != nil {
			if errors.Is(errAttach, database.ErrNoResult) {
				httphelper.SetError(ctx, httphelper.NewAPIError(http.StatusNotFound, httphelper.ErrNotFound))

				return
			}

			httphelper.SetError(ctx, httphelper.NewAPIError(http.StatusInternalServerError, errAttach))

			return
		}

		ctx.JSON(http.StatusCreated, h.renderArticle(article, false))
	}
}

func (h newsHandler) onRemoveAttachment() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		newsID, found := httphelper.GetUUIDParam(ctx, "news_id")
		if !found {
			return
		}

		index, okIndex := httphelper.GetIntParam(ctx, "index")
		if !okIndex {
			return
		}

		article, errRemove := h.news.RemoveAttachment(ctx, newsID, index)
		if errRemove != nil {
			switch {
			case errors.Is(errRemove, database.ErrNoResult):
				httphelper.SetError(ctx, httphelper.NewAPIError(http.StatusNotFound, httphelper.ErrNotFound))
			case errors.Is(errRemove, ErrAttachmentIndex):
				httphelper.SetError(ctx, httphelper.NewAPIError(http.StatusBadRequest, errRemove))
			default:
				httphelper.SetError(ctx, httphelper.NewAPIError(http.StatusInternalServerError, errRemove))
			}

			return
		}

		ctx.JSON(http.StatusOK, h.renderArticle(article, false))
	}
}
