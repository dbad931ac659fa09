package controllers

import (
	"net/http"

	"github.com/seowliyuan/nutriadmin/middlewares"
	"github.com/seowliyuan/nutriadmin/services"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

type ActivityController struct {
	Logger *services.ActivityLogger
	Hub    *services.FeedHub
}

func NewActivityController(logger *services.ActivityLogger, hub *services.FeedHub) *ActivityController {
	return &ActivityController{Logger: logger, Hub: hub}
}

// GET /admin/activities?page=&perPage=&category=
//
// Always 200; a missing activity table reports source "none" with an empty
// list rather than failing.
func (h *ActivityController) List(c *gin.Context) {
	out := h.Logger.List(c.Request.Context(),
		intQuery(c, "page", 1), intQuery(c, "perPage", 20),
		c.Query("category"))
	c.JSON(http.StatusOK, gin.H{
		"success":    true,
		"activities": out.Entries,
		"source":     out.Source,
		"pagination": out.Pagination,
		"message":    out.Message,
	})
}

type CreateActivityInput struct {
	Type        string         `json:"type" binding:"required"`
	Description string         `json:"description"`
	Details     map[string]any `json:"details"`
}

// Create lets the frontend record actions that happen outside this API, such
// as navigation events. Recording is best-effort.
func (h *ActivityController) Create(c *gin.Context) {
	var input CreateActivityInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing activity type"})
		return
	}

	adminID, adminName := middlewares.AdminIdentity(c)
	recorded := h.Logger.Log(c.Request.Context(), input.Type, input.Description,
		adminID, adminName, input.Details)
	c.JSON(http.StatusOK, gin.H{"success": true, "recorded": recorded})
}

var feedUpgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// The admin auth middleware already gated this request; the browser's
	// same-origin policy does not apply to websockets, so rely on the cookie
	// check instead.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Feed upgrades to a websocket and streams activity events as they land.
func (h *ActivityController) Feed(c *gin.Context) {
	conn, err := feedUpgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		return
	}
	client := &services.FeedClient{Conn: conn}
	h.Hub.Register(client)

	// Drain reads until the peer goes away; the hub writes independently.
	go func() {
		defer h.Hub.Unregister(client)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
}
