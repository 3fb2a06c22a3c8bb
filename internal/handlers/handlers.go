package handlers

import (
	"github.com/sharespace-media/backend/internal/auth"
	"github.com/sharespace-media/backend/internal/sharelink"
	"github.com/sharespace-media/backend/internal/storage"
	"github.com/sharespace-media/backend/internal/websocket"
)

// Handlers contains all HTTP handlers for the API
type Handlers struct {
	auth          *auth.Service
	blobs         storage.BlobStore
	links         *sharelink.Service
	wsHandler     *websocket.Handler
	maxUploadSize int64
}

// NewHandlers creates a new handlers instance
func NewHandlers(authService *auth.Service, blobs storage.BlobStore, links *sharelink.Service, maxUploadSize int64) *Handlers {
	return &Handlers{
		auth:          authService,
		blobs:         blobs,
		links:         links,
		maxUploadSize: maxUploadSize,
	}
}

// SetWebSocketHandler sets the WebSocket handler for real-time chat delivery
func (h *Handlers) SetWebSocketHandler(ws *websocket.Handler) {
	h.wsHandler = ws
}
