package asset

import (
	"errors"
	"log/slog"
	"mime/multipart"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/andiamooltre/oltreweb/internal/database"
	"github.com/andiamooltre/oltreweb/internal/httphelper"
	"github.com/andiamooltre/oltreweb/pkg/log"
)

type assetHandler struct {
	assets Assets
}

func NewAssetHandler(engine *gin.Engine, assets Assets, auth httphelper.Authenticator) {
	handler := assetHandler{assets: assets}

	engine.GET("/media/:asset_id/:name", handler.onGetByUUID())

	adminGrp := engine.Group("/")
	{
		admin := adminGrp.Use(auth.Middleware())
		admin.POST("/api/asset", handler.onUpload())
		admin.DELETE("/api/asset", handler.onDelete())
	}
}

type UserUploadedFile struct {
	File *multipart.FileHeader `form:"file" binding:"required"`
	Name string                `form:"name"`
}

type uploadResponse struct {
	Asset Asset  `json:"asset"`
	URL   string `json:"url"`
}

func (h assetHandler) onUpload() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		var upload UserUploadedFile
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
			slog.Error("Failed to save uploaded asset", log.ErrAttr(errSave))

			return
		}

		ctx.JSON(http.StatusCreated, uploadResponse{Asset: saved, URL: h.assets.URL(saved)})
	}
}

type deleteAssetQuery struct {
	// URL is the delivery URL of the asset to remove.
	URL string `schema:"url"`
}

func (h assetHandler) onDelete() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		var query deleteAssetQuery
		if !httphelper.BindQuery(ctx, &query) {
			return
		}

		size, errDelete := h.assets.DeleteByURL(ctx, query.URL)
		if errDelete != nil {
			switch {
			case errors.Is(errDelete, database.ErrNoResult):
				httphelper.SetError(ctx, httphelper.NewAPIError(http.StatusNotFound, httphelper.ErrNotFound))
			case errors.Is(errDelete, ErrPublicIDParse),
				errors.Is(errDelete, ErrPublicIDShape),
				errors.Is(errDelete, ErrUUIDInvalid):
				httphelper.SetError(ctx, httphelper.NewAPIError(http.StatusBadRequest, errDelete))
			default:
				httphelper.SetError(ctx, httphelper.NewAPIError(http.StatusInternalServerError, errDelete))
				slog.Error("Failed to delete asset", log.ErrAttr(errDelete))
			}

			return
		}

		ctx.JSON(http.StatusOK, gin.H{"size": size})
	}
}

func (h assetHandler) onGetByUUID() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		assetID, found := httphelper.GetUUIDParam(ctx, "asset_id")
		if !found {
			return
		}

		served, reader, errGet := h.assets.Get(ctx, assetID)
		if errGet != nil {
			if errors.Is(errGet, database.ErrNoResult) {
				httphelper.SetError(ctx, httphelper.NewAPIError(http.StatusNotFound, httphelper.ErrNotFound))

				return
			}

			httphelper.SetError(ctx, httphelper.NewAPIError(http.StatusInternalServerError, errGet))
			slog.Error("Failed to open asset", log.ErrAttr(errGet))

			return
		}

		defer log.Closer(reader)

		ctx.DataFromReader(http.StatusOK, served.Size, served.MimeType, reader, nil)
	}
}
