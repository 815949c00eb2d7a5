package content

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/andiamooltre/oltreweb/internal/httphelper"
	"github.com/andiamooltre/oltreweb/pkg/log"
)

type contentHandler struct {
	contents Contents
}

func NewContentHandler(engine *gin.Engine, contents Contents, auth httphelper.Authenticator) {
	handler := contentHandler{contents: contents}

	engine.GET("/api/content/:section_key", handler.onGet())

	adminGrp := engine.Group("/")
	{
		admin := adminGrp.Use(auth.Middleware())
		admin.GET("/api/content", handler.onList())
		admin.PUT("/api/content/:section_key", handler.onSave())
	}
}

type sectionView struct {
	Key       string `json:"key"`
	Content   string `json:"content"`
	Sanitized string `json:"sanitized"`
}

func (h contentHandler) onGet() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		key := ctx.Param("section_key")

		section, errGet := h.contents.Get(ctx, key)
		if errGet != nil {
			httphelper.SetError(ctx, httphelper.NewAPIError(http.StatusInternalServerError, errGet))
			slog.Error("Failed to load section", slog.String("key", key), log.ErrAttr(errGet))

			return
		}

		ctx.JSON(http.StatusOK, sectionView{
			Key:       section.Key,
			Content:   section.Content,
			Sanitized: section.Sanitized(),
		})
	}
}

func (h contentHandler) onList() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		sections, errList := h.contents.List(ctx)
		if errList != nil {
			httphelper.SetError(ctx, httphelper.NewAPIError(http.StatusInternalServerError, errList))
			slog.Error("Failed to list sections", log.ErrAttr(errList))

			return
		}

		ctx.JSON(http.StatusOK, sections)
	}
}

type saveSectionRequest struct {
	Content string `json:"content"`
}

func (h contentHandler) onSave() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		key := ctx.Param("section_key")

		req, ok := httphelper.BindJSON[saveSectionRequest](ctx)
		if !ok {
			return
		}

		section := Section{Key: key, Content: req.Content}

		if errSave := h.contents.Save(ctx, &section); errSave != nil {
			httphelper.SetError(ctx, httphelper.NewAPIError(http.StatusInternalServerError, errSave))
			slog.Error("Failed to save section", slog.String("key", key), log.ErrAttr(errSave))

			return
		}

		ctx.JSON(http.StatusOK, section)
	}
}
