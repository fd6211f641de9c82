package relayhandler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"rtcrelaygo/internal/chat"
	"rtcrelaygo/internal/chat/chatstore"
	"rtcrelaygo/internal/signaling"
)

type Handler struct {
	rooms *signaling.Registry
	chats *chat.Registry
	store *chatstore.Store
}

func New(rooms *signaling.Registry, chats *chat.Registry, store *chatstore.Store) *Handler {
	return &Handler{rooms: rooms, chats: chats, store: store}
}

func (h *Handler) Register(r gin.IRoutes) {
	r.GET("/healthz", h.health)
	r.GET("/rooms", h.listRooms)
	r.GET("/chat/stats", h.chatStats)
	r.GET("/messages", h.listMessages)
}

// @Summary		Liveness probe
// @Tags			Ops
// @Success		200	{object}	HealthResponse
// @Router			/healthz [get]
func (h *Handler) health(c *gin.Context) {
	c.JSON(http.StatusOK, HealthResponse{Status: "ok"})
}

// @Summary		List signaling rooms
// @Description	Returns every live room with its slot occupancy.
// @Tags			Ops
// @Success		200	{array}	signaling.RoomInfo
// @Router			/rooms [get]
func (h *Handler) listRooms(c *gin.Context) {
	c.JSON(http.StatusOK, h.rooms.Rooms())
}

// @Summary		Chat routing table sizes
// @Tags			Ops
// @Success		200	{object}	chat.Stats
// @Router			/chat/stats [get]
func (h *Handler) chatStats(c *gin.Context) {
	c.JSON(http.StatusOK, h.chats.Stats())
}

// @Summary		Recent chat history
// @Description	Returns the newest persisted chat messages, newest first.
// @Tags			Chat
// @Param			limit	query		int	false	"Max results (0-500)"	minimum(0)	maximum(500)	default(50)
// @Success		200		{array}		chat.Message
// @Failure		400		{object}	ErrorResponse
// @Failure		500		{object}	ErrorResponse
// @Router			/messages [get]
func (h *Handler) listMessages(c *gin.Context) {
	var q ListMessagesQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}
	out, err := h.store.Recent(c.Request.Context(), q.Limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: err.Error()})
		return
	}
	c.JSON(http.StatusOK, out)
}
