package http

import (
	"context"
	"errors"
	"net/http"

	"github.com/dkeye/mediabot/internal/app/media"
	"github.com/dkeye/mediabot/internal/domain"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

// MediaController is the part of the media handler exposed over HTTP.
type MediaController interface {
	Subscribe(mediaType domain.MediaType, sourceID uint32, res domain.Resolution, socketID uint32) error
	Unsubscribe(mediaType domain.MediaType, socketID uint32) error
	Flush(ctx context.Context) (media.FlushResult, error)
	Status() media.Status
}

type SubscribeRequest struct {
	MediaType  string `json:"media_type" binding:"required"`
	SourceID   uint32 `json:"source_id"`
	Resolution string `json:"resolution"`
	SocketID   uint32 `json:"socket_id"`
}

type UnsubscribeRequest struct {
	MediaType string `json:"media_type" binding:"required"`
	SocketID  uint32 `json:"socket_id"`
}

type StatusResponse struct {
	media.Status
	OutstandingBuffers int64 `json:"outstanding_buffers"`
}

type ControlHandlers struct {
	Media MediaController
	// Outstanding reports unreleased platform buffers. Optional.
	Outstanding func() int64
}

func (h *ControlHandlers) Subscribe(c *gin.Context) {
	var req SubscribeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing or invalid body"})
		return
	}
	mt, err := domain.ParseMediaType(req.MediaType)
	if err != nil {
		abortWithError(c, err)
		return
	}
	res := domain.ResolutionHD
	if req.Resolution != "" {
		if res, err = domain.ParseResolution(req.Resolution); err != nil {
			abortWithError(c, err)
			return
		}
	}
	if err := h.Media.Subscribe(mt, req.SourceID, res, req.SocketID); err != nil {
		abortWithError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *ControlHandlers) Unsubscribe(c *gin.Context) {
	var req UnsubscribeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing or invalid body"})
		return
	}
	mt, err := domain.ParseMediaType(req.MediaType)
	if err != nil {
		abortWithError(c, err)
		return
	}
	if err := h.Media.Unsubscribe(mt, req.SocketID); err != nil {
		abortWithError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *ControlHandlers) Flush(c *gin.Context) {
	res, err := h.Media.Flush(c.Request.Context())
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *ControlHandlers) Status(c *gin.Context) {
	resp := StatusResponse{Status: h.Media.Status()}
	if h.Outstanding != nil {
		resp.OutstandingBuffers = h.Outstanding()
	}
	c.JSON(http.StatusOK, resp)
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrInvalidMediaType),
		errors.Is(err, domain.ErrInvalidResolution),
		errors.Is(err, domain.ErrSocketNotFound):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrDisposed):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func abortWithError(c *gin.Context, err error) {
	code := statusFor(err)
	if code >= http.StatusInternalServerError {
		log.Error().Err(err).Str("module", "transport.http").Str("path", c.FullPath()).Msg("request failed")
	}
	c.AbortWithStatusJSON(code, gin.H{"error": err.Error()})
}
