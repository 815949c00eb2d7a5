package editor

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gofrs/uuid/v5"

	"github.com/andiamooltre/oltreweb/internal/asset"
	"github.com/andiamooltre/oltreweb/internal/httphelper"
	"github.com/andiamooltre/oltreweb/pkg/log"
)

// SessionHandler exposes the shared session routes: media staging, drag reorder, save
// and cancel. Feature handlers register it under their own base path and add their
// typed field update route next to it.
type SessionHandler[T any] struct {
	manager  *Manager[T]
	assets   asset.Assets
	persist  func(ctx context.Context, entity T, media []MediaItem) error
	maxMedia int
}

func NewSessionHandler[T any](manager *Manager[T], assets asset.Assets,
	maxMedia int, persist func(ctx context.Context, entity T, media []MediaItem) error,
) *SessionHandler[T] {
	return &SessionHandler[T]{manager: manager, assets: assets, persist: persist, maxMedia: maxMedia}
}

// Register attaches the session routes below base, which must contain a :session_id
// param segment, eg. /api/member/edit.
func (h *SessionHandler[T]) Register(admin gin.IRoutes, base string) {
	admin.GET(base+"/:session_id", h.onGetSession())
	admin.POST(base+"/:session_id/media", h.onAddMedia())
	admin.DELETE(base+"/:session_id/media/:index", h.onRemoveMedia())
	admin.POST(base+"/:session_id/drag", h.onBeginDrag())
	admin.POST(base+"/:session_id/drop", h.onDrop())
	admin.POST(base+"/:session_id/save", h.onSave())
	admin.DELETE(base+"/:session_id", h.onCancel())
}

// Session resolves the :session_id param into a live session, writing the error
// response itself when it cannot.
func (h *SessionHandler[T]) Session(ctx *gin.Context) (*Session[T], bool) {
	sessionID, found := httphelper.GetUUIDParam(ctx, "session_id")
	if !found {
		return nil, false
	}

	session, errSession := h.manager.Get(sessionID)
	if errSession != nil {
		httphelper.SetError(ctx, httphelper.NewAPIError(http.StatusNotFound, ErrSessionNotFound))

		return nil, false
	}

	return session, true
}

func (h *SessionHandler[T]) Manager() *Manager[T] {
	return h.manager
}

type MediaView struct {
	Src     string `json:"src"`
	Alt     string `json:"alt"`
	Pending bool   `json:"pending"`
}

type SessionView[T any] struct {
	SessionID uuid.UUID   `json:"session_id"`
	State     State       `json:"state"`
	Working   T           `json:"working"`
	Media     []MediaView `json:"media"`
}

// View renders a session into its JSON shape.
func View[T any](session *Session[T]) SessionView[T] {
	media := session.Media()
	views := make([]MediaView, 0, len(media))

	for _, item := range media {
		views = append(views, MediaView{Src: item.Src, Alt: item.Alt, Pending: item.IsPending()})
	}

	return SessionView[T]{
		SessionID: session.ID(),
		State:     session.State(),
		Working:   session.Working(),
		Media:     views,
	}
}

func (h *SessionHandler[T]) onGetSession() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		session, valid := h.Session(ctx)
		if !valid {
			return
		}

		ctx.JSON(http.StatusOK, View(session))
	}
}

type stagedUpload struct {
	File *multipart.FileHeader `form:"file" binding:"required"`
	Alt  string                `form:"alt"`
}

func (h *SessionHandler[T]) onAddMedia() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		session, valid := h.Session(ctx)
		if !valid {
			return
		}

		var upload stagedUpload
		if errBind := ctx.Bind(&upload); errBind != nil {
			httphelper.SetError(ctx, httphelper.NewAPIError(http.StatusBadRequest, httphelper.ErrBadRequest))

			return
		}

		handle, errOpen := upload.File.Open()
		if errOpen != nil {
			httphelper.SetError(ctx, httphelper.NewAPIError(http.StatusBadRequest,
				errors.Join(errOpen, httphelper.ErrBadRequest)))

			return
		}

		defer log.Closer(handle)

		content, errRead := io.ReadAll(handle)
		if errRead != nil {
			httphelper.SetError(ctx, httphelper.NewAPIError(http.StatusInternalServerError, errRead))

			return
		}

		item := MediaItem{
			Alt:     upload.Alt,
			Pending: &Pending{Name: upload.File.Filename, Data: content},
		}

		if errAdd := session.AddMedia(item, h.maxMedia); errAdd != nil {
			httphelper.SetError(ctx, sessionError(errAdd))

			return
		}

		ctx.JSON(http.StatusCreated, View(session))
	}
}

func (h *SessionHandler[T]) onRemoveMedia() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		session, valid := h.Session(ctx)
		if !valid {
			return
		}

		index, found := httphelper.GetIntParam(ctx, "index")
		if !found {
			return
		}

		if errRemove := session.RemoveMedia(index); errRemove != nil {
			httphelper.SetError(ctx, sessionError(errRemove))

			return
		}

		ctx.JSON(http.StatusOK, View(session))
	}
}

type dragRequest struct {
	Index int `json:"index"`
}

func (h *SessionHandler[T]) onBeginDrag() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		session, valid := h.Session(ctx)
		if !valid {
			return
		}

		req, ok := httphelper.BindJSON[dragRequest](ctx)
		if !ok {
			return
		}

		if errDrag := session.BeginDrag(req.Index); errDrag != nil {
			httphelper.SetError(ctx, sessionError(errDrag))

			return
		}

		ctx.JSON(http.StatusOK, gin.H{})
	}
}

func (h *SessionHandler[T]) onDrop() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		session, valid := h.Session(ctx)
		if !valid {
			return
		}

		req, ok := httphelper.BindJSON[dragRequest](ctx)
		if !ok {
			return
		}

		if errDrop := session.Drop(req.Index); errDrop != nil {
			httphelper.SetError(ctx, sessionError(errDrop))

			return
		}

		ctx.JSON(http.StatusOK, View(session))
	}
}

func (h *SessionHandler[T]) onSave() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		session, valid := h.Session(ctx)
		if !valid {
			return
		}

		if errSave := session.Save(ctx, h.assets, h.persist); errSave != nil {
			httphelper.SetError(ctx, sessionError(errSave))
			slog.Error("Edit session save failed",
				slog.String("session_id", session.ID().String()), log.ErrAttr(errSave))

			return
		}

		h.manager.End(session.ID())

		ctx.JSON(http.StatusOK, gin.H{})
	}
}

func (h *SessionHandler[T]) onCancel() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		session, valid := h.Session(ctx)
		if !valid {
			return
		}

		if session.State() == StateSaving {
			httphelper.SetError(ctx, httphelper.NewAPIError(http.StatusConflict, ErrSaveInFlight))

			return
		}

		h.manager.End(session.ID())

		ctx.JSON(http.StatusOK, gin.H{})
	}
}

func sessionError(err error) httphelper.APIError {
	switch {
	case errors.Is(err, ErrSessionNotFound):
		return httphelper.NewAPIError(http.StatusNotFound, err)
	case errors.Is(err, ErrSaveInFlight), errors.Is(err, ErrNotEditing):
		return httphelper.NewAPIError(http.StatusConflict, err)
	case errors.Is(err, ErrMediaIndex), errors.Is(err, ErrMediaLimit), errors.Is(err, ErrNoDragSource):
		return httphelper.NewAPIError(http.StatusBadRequest, err)
	default:
		return httphelper.NewAPIError(http.StatusInternalServerError, err)
	}
}
