package events

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
	store "github.com/planner-api/planner/repos/events"
)

// Router is the interface for a router.
type Router interface {
	GET(relativePath string, handlers ...gin.HandlerFunc) gin.IRoutes
	POST(relativePath string, handlers ...gin.HandlerFunc) gin.IRoutes
	PUT(relativePath string, handlers ...gin.HandlerFunc) gin.IRoutes
	DELETE(relativePath string, handlers ...gin.HandlerFunc) gin.IRoutes
	Use(middleware ...gin.HandlerFunc) gin.IRoutes
	Group(relativePath string, handlers ...gin.HandlerFunc) *gin.RouterGroup
}

// Service is the interface for the events service.
type Service interface {
	CreateEvent(ctx context.Context, username string, payload Payload) (*store.Event, error)
	ListEvents(ctx context.Context, username string) (*EventList, error)
	UpdateEvent(ctx context.Context, username string, payload Payload) (*store.Event, error)
	DeleteEvent(ctx context.Context, username, id string) error
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
	r.POST("/events", h.createHandler)
	r.GET("/events", h.listHandler)
	r.PUT("/events", h.updateHandler)
	r.DELETE("/events/:id", h.deleteHandler)
}

type httpHandler struct {
	HTTPOptions
}

func (h *httpHandler) createHandler(c *gin.Context) {
	payload, ok := h.payload(c)
	if !ok {
		return
	}

	event, err := h.Service.CreateEvent(c, auth.Username(c), payload)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, event)
}

func (h *httpHandler) listHandler(c *gin.Context) {
	list, err := h.Service.ListEvents(c, auth.Username(c))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

func (h *httpHandler) updateHandler(c *gin.Context) {
	payload, ok := h.payload(c)
	if !ok {
		return
	}

	event, err := h.Service.UpdateEvent(c, auth.Username(c), payload)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, event)
}

func (h *httpHandler) deleteHandler(c *gin.Context) {
	if err := h.Service.DeleteEvent(c, auth.Username(c), c.Param("id")); err != nil {
		h.fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// payload decodes the request body keeping numbers as json.Number. An empty
// body is an empty payload so validation can name the missing field.
func (h *httpHandler) payload(c *gin.Context) (Payload, bool) {
	payload := Payload{}
	dec := json.NewDecoder(c.Request.Body)
	dec.UseNumber()
	if err := dec.Decode(&payload); err != nil && !errors.Is(err, io.EOF) {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"message": "Invalid JSON body"})
		return nil, false
	}
	return payload, true
}

func (h *httpHandler) fail(c *gin.Context, err error) {
	status := apperr.Status(err)
	if status >= http.StatusInternalServerError {
		h.Logger.Error("Events request failed", zap.String("username", auth.Username(c)), zap.Error(err))
	}
	c.AbortWithStatusJSON(status, gin.H{"message": apperr.Message(err)})
}
