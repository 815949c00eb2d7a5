package auth

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/andiamooltre/oltreweb/internal/httphelper"
)

type authHandler struct {
	auth *Auth
}

func NewAuthHandler(engine *gin.Engine, auth *Auth) {
	handler := authHandler{auth: auth}

	engine.POST("/api/auth/sign_in", handler.onSignIn())

	adminGrp := engine.Group("/")
	{
		admin := adminGrp.Use(auth.Middleware())
		admin.POST("/api/auth/sign_out", handler.onSignOut())
		admin.GET("/api/auth/current", handler.onCurrent())
	}
}

type signInRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type signInResponse struct {
	Token string `json:"token"`
}

func (h authHandler) onSignIn() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		req, valid := httphelper.BindJSON[signInRequest](ctx)
		if !valid {
			return
		}

		token, errToken := h.auth.SignIn(ctx, req.Email, req.Password)
		if errToken != nil {
			httphelper.SetError(ctx, httphelper.NewAPIError(http.StatusUnauthorized, ErrInvalidCredentials))

			return
		}

		ctx.JSON(http.StatusOK, signInResponse{Token: token})
	}
}

func (h authHandler) onSignOut() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		email, _ := CurrentAdmin(ctx)
		h.auth.SignOut(ctx, email)

		ctx.JSON(http.StatusOK, gin.H{})
	}
}

func (h authHandler) onCurrent() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		email, _ := CurrentAdmin(ctx)

		ctx.JSON(http.StatusOK, gin.H{"email": email, "admin": true})
	}
}
