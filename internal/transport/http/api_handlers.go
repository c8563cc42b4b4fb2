package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/vovakirdan/palchat-server/internal/core"
	"github.com/vovakirdan/palchat-server/internal/store"
)

// APIHandlers serves server-wide inspection endpoints.
type APIHandlers struct {
	model *core.Model
	audit store.AuditStore
	log   *zerolog.Logger
}

// NewAPIHandlers creates a new API handlers instance. audit may be nil.
func NewAPIHandlers(model *core.Model, audit store.AuditStore, logger *zerolog.Logger) *APIHandlers {
	return &APIHandlers{
		model: model,
		audit: audit,
		log:   logger,
	}
}

// ErrorResponse represents an error response body.
type ErrorResponse struct {
	Error string `json:"error"`
}

// UsersResponse lists registered nicknames ordered by connection.
type UsersResponse struct {
	Users []string `json:"users"`
}

// StatsResponse reports model counters.
type StatsResponse struct {
	Clients  int `json:"clients"`
	Channels int `json:"channels"`
}

// AuditQuery holds the query parameters of /api/audit.
type AuditQuery struct {
	Limit   int    `form:"limit" binding:"omitempty,min=1,max=1000"`
	Channel string `form:"channel"`
	Actor   string `form:"actor"`
}

// AuditEntryResponse is one journal row in API responses.
type AuditEntryResponse struct {
	ID         string `json:"id"`
	ConnKey    string `json:"conn_key"`
	Event      string `json:"event"`
	Command    string `json:"command,omitempty"`
	Actor      string `json:"actor"`
	Channel    string `json:"channel,omitempty"`
	Target     string `json:"target,omitempty"`
	Code       string `json:"code,omitempty"`
	Recipients int    `json:"recipients"`
	CreatedAt  string `json:"created_at"`
}

// ListUsers returns every registered nickname.
// GET /api/users
func (h *APIHandlers) ListUsers(c *gin.Context) {
	c.JSON(http.StatusOK, UsersResponse{Users: h.model.RegisteredUsers()})
}

// Stats returns client and channel counts.
// GET /api/stats
func (h *APIHandlers) Stats(c *gin.Context) {
	stats := h.model.Stats()
	c.JSON(http.StatusOK, StatsResponse{Clients: stats.Clients, Channels: stats.Channels})
}

// ListAudit returns recent journal entries in chronological order.
// GET /api/audit?limit=N&channel=NAME&actor=NICK
func (h *APIHandlers) ListAudit(c *gin.Context) {
	if h.audit == nil {
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "audit journal is disabled"})
		return
	}

	var q AuditQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		h.log.Debug().Err(err).Msg("invalid audit query")
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid query parameters"})
		return
	}

	entries, err := h.audit.ListEntries(c.Request.Context(), store.AuditFilter{
		Channel: q.Channel,
		Actor:   q.Actor,
		Limit:   q.Limit,
	})
	if err != nil {
		h.log.Error().Err(err).Msg("failed to list audit entries")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
		return
	}

	resp := make([]AuditEntryResponse, 0, len(entries))
	for _, e := range entries {
		resp = append(resp, AuditEntryResponse{
			ID:         e.ID,
			ConnKey:    e.ConnKey,
			Event:      e.Event,
			Command:    e.Command,
			Actor:      e.Actor,
			Channel:    e.Channel,
			Target:     e.Target,
			Code:       e.Code,
			Recipients: e.Recipients,
			CreatedAt:  e.CreatedAt.UTC().Format(time.RFC3339Nano),
		})
	}
	c.JSON(http.StatusOK, resp)
}
