package appstate

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type appStateHandler struct {
	state *AppState
}

// NewAppStateHandler exposes the one shot bootstrap payload for the public page.
func NewAppStateHandler(engine *gin.Engine, state *AppState) {
	handler := appStateHandler{state: state}

	engine.GET("/api/site", handler.onSite())
}

func (h appStateHandler) onSite() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		ctx.JSON(http.StatusOK, h.state.Current())
	}
}
