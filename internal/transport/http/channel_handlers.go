package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/vovakirdan/palchat-server/internal/core"
)

// ChannelHandlers provides read-only channel endpoints.
type ChannelHandlers struct {
	model *core.Model
	log   *zerolog.Logger
}

// NewChannelHandlers creates a new channel handlers instance.
func NewChannelHandlers(model *core.Model, logger *zerolog.Logger) *ChannelHandlers {
	return &ChannelHandlers{
		model: model,
		log:   logger,
	}
}

// ChannelResponse represents a channel in list responses.
type ChannelResponse struct {
	ID      int64  `json:"id"`
	Name    string `json:"name"`
	Owner   string `json:"owner"`
	Private bool   `json:"private"`
	Members int    `json:"members"`
}

// ChannelDetailResponse represents a single channel with its member list.
type ChannelDetailResponse struct {
	ID      int64    `json:"id"`
	Name    string   `json:"name"`
	Owner   string   `json:"owner"`
	Private bool     `json:"private"`
	Members []string `json:"members"`
}

// ListChannels returns all channels ordered by creation.
// GET /api/channels
func (h *ChannelHandlers) ListChannels(c *gin.Context) {
	channels := h.model.ListChannels()
	resp := make([]ChannelResponse, 0, len(channels))
	for _, ch := range channels {
		resp = append(resp, ChannelResponse{
			ID:      ch.ID,
			Name:    ch.Name,
			Owner:   ch.Owner,
			Private: ch.Private,
			Members: len(ch.Members),
		})
	}
	c.JSON(http.StatusOK, resp)
}

// GetChannel returns one channel by name.
// GET /api/channels/:name
func (h *ChannelHandlers) GetChannel(c *gin.Context) {
	name := c.Param("name")
	info, ok := h.model.ChannelInfo(name)
	if !ok {
		h.log.Debug().Str("channel", name).Msg("channel not found")
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "channel not found"})
		return
	}
	c.JSON(http.StatusOK, ChannelDetailResponse{
		ID:      info.ID,
		Name:    info.Name,
		Owner:   info.Owner,
		Private: info.Private,
		Members: info.Members,
	})
}
