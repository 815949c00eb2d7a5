package contact

import (
	"errors"
	"log/slog"
	"mime/multipart"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/andiamooltre/oltreweb/internal/asset"
	"github.com/andiamooltre/oltreweb/internal/httphelper"
	"github.com/andiamooltre/oltreweb/pkg/log"
)

type contactHandler struct {
	contacts Contacts
}

func NewContactHandler(engine *gin.Engine, contacts Contacts, auth httphelper.Authenticator) {
	handler := contactHandler{contacts: contacts}

	engine.GET("/api/contact", handler.onGetInfo())
	engine.POST("/api/contact/report", handler.onSubmit())

	adminGrp := engine.Group("/")
	{
		admin := adminGrp.Use(auth.Middleware())
		admin.PUT("/api/contact", handler.onSaveInfo())
		admin.GET("/api/contact/reports", handler.onListReports())
		admin.POST("/api/contact/reports/:report_id/read", handler.onSetRead())
		admin.DELETE("/api/contact/reports/:report_id", handler.onDeleteReport())
	}
}

func (h contactHandler) onGetInfo() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		info, errInfo := h.contacts.Info(ctx)
		if errInfo != nil {
			httphelper.SetError(ctx, httphelper.NewAPIError(http.StatusInternalServerError, errInfo))
			slog.Error("Failed to load contact info", log.ErrAttr(errInfo))

			return
		}

		ctx.JSON(http.StatusOK, info)
	}
}

type submitForm struct {
	Name        string                  `form:"name"`
	Surname     string                  `form:"surname"`
	Email       string                  `form:"email"`
	Phone       string                  `form:"phone"`
	Description string                  `form:"description"`
	Images      []*multipart.FileHeader `form:"images"`
}

type elevationResponse struct {
	Token    string `json:"token"`
	Redirect string `json:"redirect"`
}

// adminRedirect is where the frontend sends a freshly elevated admin.
const adminRedirect = "/admin"

func (h contactHandler) onSubmit() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		var form submitForm
		if errBind := ctx.Bind(&form); errBind != nil {
			httphelper.SetError(ctx, httphelper.NewAPIError(http.StatusBadRequest, httphelper.ErrBadRequest))

			return
		}

		submission := Submission{
			Name:        form.Name,
			Surname:     form.Surname,
			Email:       form.Email,
			Phone:       form.Phone,
			Description: form.Description,
		}

		if h.contacts.IsElevation(submission) {
			token, errToken := h.contacts.Elevate(ctx, submission)
			if errToken != nil {
				httphelper.SetError(ctx, httphelper.NewAPIError(http.StatusUnauthorized,
					httphelper.ErrPermissionDenied))

				return
			}

			ctx.JSON(http.StatusOK, elevationResponse{Token: token, Redirect: adminRedirect})

			return
		}

		for _, header := range form.Images {
			handle, errOpen := header.Open()
			if errOpen != nil {
				httphelper.SetError(ctx, httphelper.NewAPIError(http.StatusBadRequest,
					errors.Join(errOpen, httphelper.ErrBadRequest)))

				return
			}

			defer log.Closer(handle)

			submission.Images = append(submission.Images, asset.Upload{
				Name:    header.Filename,
				Content: handle,
			})
		}

		receipt, errSubmit := h.contacts.Submit(ctx, submission)
		if errSubmit != nil {
			switch {
			case errors.Is(errSubmit, ErrDescriptionRequired),
				errors.Is(errSubmit, ErrTooManyImages),
				errors.Is(errSubmit, asset.ErrAssetTooLarge):
				httphelper.SetError(ctx, httphelper.NewAPIError(http.StatusBadRequest, errSubmit))
			default:
				httphelper.SetError(ctx, httphelper.NewAPIError(http.StatusInternalServerError, errSubmit))
				slog.Error("Failed to store contact report", log.ErrAttr(errSubmit))
			}

			return
		}

		ctx.JSON(http.StatusCreated, receipt)
	}
}

type infoUpdateRequest struct {
	Phone     string `json:"phone"`
	Email     string `json:"email"`
	Instagram string `json:"instagram"`
	Facebook  string `json:"facebook"`
}

func (h contactHandler) onSaveInfo() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		req, ok := httphelper.BindJSON[infoUpdateRequest](ctx)
		if !ok {
			return
		}

		info := Info{
			Phone:     req.Phone,
			Email:     req.Email,
			Instagram: req.Instagram,
			Facebook:  req.Facebook,
		}

		if errSave := h.contacts.SaveInfo(ctx, &info); errSave != nil {
			httphelper.SetError(ctx, httphelper.NewAPIError(http.StatusInternalServerError, errSave))
			slog.Error("Failed to save contact info", log.ErrAttr(errSave))

			return
		}

		ctx.JSON(http.StatusOK, info)
	}
}

func (h contactHandler) onListReports() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		reports, errReports := h.contacts.Reports(ctx)
		if errReports != nil {
			httphelper.SetError(ctx, httphelper.NewAPIError(http.StatusInternalServerError, errReports))
			slog.Error("Failed to list contact reports", log.ErrAttr(errReports))

			return
		}

		ctx.JSON(http.StatusOK, reports)
	}
}

type setReadRequest struct {
	IsRead bool `json:"is_read"`
}

func (h contactHandler) onSetRead() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		reportID, found := httphelper.GetUUIDParam(ctx, "report_id")
		if !found {
			return
		}

		req, ok := httphelper.BindJSON[setReadRequest](ctx)
		if !ok {
			return
		}

		if errSet := h.contacts.SetReportRead(ctx, reportID, req.IsRead); errSet != nil {
			httphelper.SetError(ctx, httphelper.NewAPIError(http.StatusInternalServerError, errSet))

			return
		}

		ctx.JSON(http.StatusOK, gin.H{})
	}
}

func (h contactHandler) onDeleteReport() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		reportID, found := httphelper.GetUUIDParam(ctx, "report_id")
		if !found {
			return
		}

		if errDelete := h.contacts.DeleteReport(ctx, reportID); errDelete != nil {
			httphelper.SetError(ctx, httphelper.NewAPIError(http.StatusInternalServerError, errDelete))

			return
		}

		ctx.JSON(http.StatusOK, gin.H{})
	}
}
