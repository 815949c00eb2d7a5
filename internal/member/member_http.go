package member

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

type memberHandler struct {
	members  Members
	sessions *editor.SessionHandler[Member]
}

func NewMemberHandler(engine *gin.Engine, members Members, assets asset.Assets, auth httphelper.Authenticator) {
	handler := memberHandler{members: members}

	handler.sessions = editor.NewSessionHandler(editor.NewManager[Member](), assets, 1,
		func(ctx context.Context, entity Member, media []editor.MediaItem) error {
			entity.ImageURL = ""
			if len(media) > 0 {
				entity.ImageURL = media[0].Src
			}

			return members.Save(ctx, &entity)
		})

	engine.GET("/api/members", handler.onList())

	adminGrp := engine.Group("/")
	{
		admin := adminGrp.Use(auth.Middleware())
		admin.DELETE("/api/members/:member_id", handler.onDelete())
		admin.POST("/api/member_sessions", handler.onBeginSession())
		admin.PUT("/api/member_sessions/:session_id", handler.onUpdateFields())
		handler.sessions.Register(admin, "/api/member_sessions")
	}
}

func (h memberHandler) onList() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		members, errMembers := h.members.List(ctx)
		if errMembers != nil {
			httphelper.SetError(ctx, httphelper.NewAPIError(http.StatusInternalServerError, errMembers))
			slog.Error("Failed to list members", log.ErrAttr(errMembers))

			return
		}

		ctx.JSON(http.StatusOK, members)
	}
}

type beginSessionRequest struct {
	// MemberID selects the member to edit. Empty begins a session over a new blank
	// member instead.
	MemberID uuid.UUID `json:"member_id"`
}

func (h memberHandler) onBeginSession() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		req, ok := httphelper.BindJSON[beginSessionRequest](ctx)
		if !ok {
			return
		}

		var (
			entry Member
			media []editor.MediaItem
		)

		if !req.MemberID.IsNil() {
			if errGet := h.members.GetByID(ctx, req.MemberID, &entry); errGet != nil {
				if errors.Is(errGet, database.ErrNoResult) {
					httphelper.SetError(ctx, httphelper.NewAPIError(http.StatusNotFound, httphelper.ErrNotFound))

					return
				}

				httphelper.SetError(ctx, httphelper.NewAPIError(http.StatusInternalServerError, errGet))

				return
			}

			if entry.ImageURL != "" {
				media = append(media, editor.MediaItem{Src: entry.ImageURL, Alt: entry.Name})
			}
		}

		session := h.sessions.Manager().Begin(entry, media)

		ctx.JSON(http.StatusCreated, editor.View(session))
	}
}

type memberUpdateRequest struct {
	Name        string `json:"name"`
	Role        string `json:"role"`
	Description string `json:"description"`
	Email       string `json:"email"`
	Phone       string `json:"phone"`
	Instagram   string `json:"instagram"`
	Facebook    string `json:"facebook"`
	IsPresident bool   `json:"is_president"`
}

func (h memberHandler) onUpdateFields() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		session, valid := h.sessions.Session(ctx)
		if !valid {
			return
		}

		req, ok := httphelper.BindJSON[memberUpdateRequest](ctx)
		if !ok {
			return
		}

		errUpdate := session.Update(func(working *Member) {
			working.Name = req.Name
			working.Role = req.Role
			working.Description = req.Description
			working.Email = req.Email
			working.Phone = req.Phone
			working.Instagram = req.Instagram
			working.Facebook = req.Facebook
			working.IsPresident = req.IsPresident
		})
		if errUpdate != nil {
			httphelper.SetError(ctx, httphelper.NewAPIError(http.StatusConflict, errUpdate))

			return
		}

		ctx.JSON(http.StatusOK, editor.View(session))
	}
}

func (h memberHandler) onDelete() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		memberID, found := httphelper.GetUUIDParam(ctx, "member_id")
		if !found {
			return
		}

		if !httphelper.ConfirmedDelete(ctx) {
			return
		}

		if errDelete := h.members.Delete(ctx, memberID); errDelete != nil {
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
