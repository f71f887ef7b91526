package sync

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/planner-api/planner/pkg/apperr"
	"github.com/planner-api/planner/pkg/auth"
)

// Router is the interface for a router.
type Router interface {
	GET(relativePath string, handlers ...gin.HandlerFunc) gin.IRoutes
	POST(relativePath string, handlers ...gin.HandlerFunc) gin.IRoutes
	Use(middleware ...gin.HandlerFunc) gin.IRoutes
	Group(relativePath string, handlers ...gin.HandlerFunc) *gin.RouterGroup
}

// Service is the calendar account linking the HTTP transport exposes.
type Service interface {
	LoginCalendar(ctx context.Context, username string, payload LoginPayload) error
	LogoutCalendar(ctx context.Context, username string) error
}

// HTTPOptions contains all the options needed for the HTTP handler.
type HTTPOptions struct {

	// The service we provides the HTTP transport for.
	Service Service

	// The router instance to configure the HTTP routes.
	Router Router

	Logger *zap.Logger
}

// NewHTTPHandler creates a new HTTP handler.
func NewHTTPHandler(opts HTTPOptions) {
	r := opts.Router
	h := &httpHandler{opts}
	r.POST("/events/sync", auth.RequirePlan(auth.PlanPremium), h.loginHandler)
	r.GET("/events/logout", h.logoutHandler)
}

type httpHandler struct {
	HTTPOptions
}

func (h *httpHandler) loginHandler(c *gin.Context) {
	var payload LoginPayload
	if err := json.NewDecoder(c.Request.Body).Decode(&payload); err != nil && !errors.Is(err, io.EOF) {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"message": "Invalid JSON body"})
		return
	}

	if err := h.Service.LoginCalendar(c, auth.Username(c), payload); err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Logged in Google Calendar"})
}

func (h *httpHandler) logoutHandler(c *gin.Context) {
	if err := h.Service.LogoutCalendar(c, auth.Username(c)); err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Logged out of Google Calendar"})
}

func (h *httpHandler) fail(c *gin.Context, err error) {
	status := apperr.Status(err)
	if status >= http.StatusInternalServerError {
		h.Logger.Error("Calendar request failed", zap.String("username", auth.Username(c)), zap.Error(err))
	}
	c.AbortWithStatusJSON(status, gin.H{"message": apperr.Message(err)})
}
