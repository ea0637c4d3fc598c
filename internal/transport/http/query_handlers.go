package http

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/vovakirdan/chanserv/internal/core"
	"github.com/vovakirdan/chanserv/internal/store"
)

const (
	defaultAuditLimit = 50
	maxAuditLimit     = 1000
)

// QueryHandlers serves read-only views of the live chat state.
type QueryHandlers struct {
	proc  *core.Processor
	audit store.AuditStore
	log   *zerolog.Logger
}

// NewQueryHandlers creates a new query handlers instance.
func NewQueryHandlers(proc *core.Processor, audit store.AuditStore, logger *zerolog.Logger) *QueryHandlers {
	return &QueryHandlers{
		proc:  proc,
		audit: audit,
		log:   logger,
	}
}

// ErrorResponse represents an error response body.
type ErrorResponse struct {
	Error string `json:"error"`
}

// UsersResponse lists connected nicknames.
type UsersResponse struct {
	Users []string `json:"users"`
}

// ChannelResponse represents a channel in API responses.
type ChannelResponse struct {
	Name       string   `json:"name"`
	Owner      string   `json:"owner"`
	InviteOnly bool     `json:"invite_only"`
	Members    []string `json:"members"`
}

// AuditEntryResponse represents one audit trail row.
type AuditEntryResponse struct {
	ID         int64  `json:"id"`
	Command    string `json:"command"`
	Actor      string `json:"actor"`
	Channel    string `json:"channel,omitempty"`
	Target     string `json:"target,omitempty"`
	Outcome    string `json:"outcome"`
	Recipients int    `json:"recipients"`
	CreatedAt  string `json:"created_at"`
}

// ListUsers returns every connected nickname.
// GET /api/users
func (h *QueryHandlers) ListUsers(c *gin.Context) {
	c.JSON(http.StatusOK, UsersResponse{Users: h.proc.Nicknames()})
}

// ListChannels returns every channel with its owner and members.
// GET /api/channels
func (h *QueryHandlers) ListChannels(c *gin.Context) {
	channels := h.proc.Channels()
	resp := make([]ChannelResponse, 0, len(channels))
	for _, info := range channels {
		resp = append(resp, channelResponse(info))
	}
	c.JSON(http.StatusOK, resp)
}

// GetChannel returns one channel.
// GET /api/channels/:name
func (h *QueryHandlers) GetChannel(c *gin.Context) {
	info, ok := h.proc.Channel(c.Param("name"))
	if !ok {
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "channel not found"})
		return
	}
	c.JSON(http.StatusOK, channelResponse(info))
}

// ListAudit returns the most recent audit entries, newest first.
// GET /api/audit?limit=N
func (h *QueryHandlers) ListAudit(c *gin.Context) {
	limit := defaultAuditLimit
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: "limit must be a positive integer"})
			return
		}
		limit = min(n, maxAuditLimit)
	}

	entries, err := h.audit.ListEntries(c.Request.Context(), limit)
	if err != nil {
		h.log.Error().Err(err).Msg("failed to list audit entries")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "failed to list audit entries"})
		return
	}

	resp := make([]AuditEntryResponse, 0, len(entries))
	for _, e := range entries {
		resp = append(resp, AuditEntryResponse{
			ID:         e.ID,
			Command:    e.Command,
			Actor:      e.Actor,
			Channel:    e.Channel,
			Target:     e.Target,
			Outcome:    e.Outcome,
			Recipients: e.Recipients,
			CreatedAt:  e.CreatedAt.Format(time.RFC3339),
		})
	}
	c.JSON(http.StatusOK, resp)
}

func channelResponse(info core.ChannelInfo) ChannelResponse {
	return ChannelResponse{
		Name:       info.Name,
		Owner:      info.Owner,
		InviteOnly: info.Private,
		Members:    info.Members,
	}
}
