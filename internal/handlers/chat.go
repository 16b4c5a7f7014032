package handlers

import (
	"context"
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/SamayGala/StockGPT/internal/models"
	"github.com/SamayGala/StockGPT/internal/stream"
)

// Chat handles POST /api/chat: the assistant's reply is streamed back as
// framed events over a single long-lived response body. The request is
// self-contained; no conversation state survives the call.
func (h *Handler) Chat(c *gin.Context) {
	if h.Assistant == nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"detail": "OpenAI API key not configured. Please set OPENAI_API_KEY in your .env file",
		})
		return
	}

	var req models.ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	w := stream.NewWriter(c.Writer)
	ctx := c.Request.Context()

	err := h.Assistant.StreamReply(ctx, req, func(chunk string) error {
		return w.Chunk(chunk)
	})

	switch {
	case err == nil:
		if werr := w.Done(); werr != nil {
			log.Printf("chat: done event write failed: %v", werr)
		}
	case errors.Is(err, context.Canceled):
		// Client went away; the closed transport is the cancellation
		// signal, nothing more to send.
	default:
		log.Printf("chat: streaming error: %v", err)
		if werr := w.Error(err.Error()); werr != nil {
			log.Printf("chat: error event write failed: %v", werr)
		}
	}
}
