package handlers

import (
	"bytes"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	portssvc "github.com/velmora/wallet_ledger_app/internal/core/ports/services"
	"github.com/velmora/wallet_ledger_app/internal/dto"
	"github.com/velmora/wallet_ledger_app/internal/middleware"
	"github.com/velmora/wallet_ledger_app/internal/platform/config"
	"github.com/velmora/wallet_ledger_app/internal/platform/ws"
)

// uploadHandler handles the direct upload path and the chunked websocket path.
type uploadHandler struct {
	uploadService portssvc.UploadSvc
	registry      *ws.Registry
	memoryLimit   int64
	diskLimit     int64
}

func newUploadHandler(us portssvc.UploadSvc, registry *ws.Registry, cfg *config.Config) *uploadHandler {
	return &uploadHandler{
		uploadService: us,
		registry:      registry,
		memoryLimit:   cfg.UploadMemoryThreshold,
		diskLimit:     cfg.UploadDiskThreshold,
	}
}

// registerUploadRoutes registers routes related to file uploads.
func registerUploadRoutes(rg *gin.RouterGroup, uploadService portssvc.UploadSvc, registry *ws.Registry, cfg *config.Config) {
	h := newUploadHandler(uploadService, registry, cfg)

	uploads := rg.Group("/uploads")
	{
		uploads.POST("", h.uploadDirect)
		uploads.GET("/ws", h.uploadSocket)
	}
}

// uploadDirect godoc
// @Summary Upload a file directly
// @Description Stores a file in one request. Small files are held in memory, mid-size files
// @Description spool through a temp file, and files above the disk threshold are rejected
// @Description with an instruction to use the chunked websocket channel.
// @Tags uploads
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "File to upload"
// @Success 201 {object} dto.UploadResponse
// @Failure 400 {object} map[string]string "Missing or unreadable file"
// @Failure 413 {object} map[string]string "File exceeds the direct upload limit"
// @Security BearerAuth
// @Router /uploads [post]
func (h *uploadHandler) uploadDirect(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing file: " + err.Error()})
		return
	}

	if fileHeader.Size > h.diskLimit {
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{
			"error": fmt.Sprintf("file exceeds the %d byte direct upload limit, use the chunked upload at /api/v1/uploads/ws", h.diskLimit),
		})
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		logger.Error("Failed to open uploaded file", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to read uploaded file"})
		return
	}
	defer file.Close()

	// Below the memory threshold the whole file is read up front. Larger
	// files stay on the multipart temp file and stream from there.
	var reader io.Reader = file
	if fileHeader.Size <= h.memoryLimit {
		buf := &bytes.Buffer{}
		if _, err := io.Copy(buf, file); err != nil {
			logger.Error("Failed to buffer uploaded file", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to read uploaded file"})
			return
		}
		reader = buf
	}

	resp, err := h.uploadService.UploadDirect(c.Request.Context(), userID, fileHeader.Filename, fileHeader.Size, reader)
	if err != nil {
		respondError(c, err, "Failed to store uploaded file")
		return
	}

	logger.Info("File uploaded", slog.String("key", resp.Key), slog.Int64("size", resp.Size))
	c.JSON(http.StatusCreated, resp)
}

// uploadSocket godoc
// @Summary Chunked upload channel
// @Description Upgrades to a websocket that drives a chunked upload session. The client sends
// @Description upload-start, a stream of upload-chunk events with base64 zlib payloads, and
// @Description upload-complete; the server acks each chunk with an upload-progress event.
// @Tags uploads
// @Success 101 "Switching Protocols"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Security BearerAuth
// @Router /uploads/ws [get]
func (h *uploadHandler) uploadSocket(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	conn, err := h.registry.Upgrade(c.Writer, c.Request, userID)
	if err != nil {
		logger.Warn("Websocket upgrade failed", slog.String("error", err.Error()))
		return
	}
	defer h.registry.Remove(conn)

	ctx := c.Request.Context()
	currentSessionID := ""

	for {
		var envelope dto.UploadEnvelope
		if err := conn.ReadJSON(&envelope); err != nil {
			// Disconnect mid-upload discards the session. A retried upload
			// opens a fresh session.
			if currentSessionID != "" {
				if cancelErr := h.uploadService.CancelSession(ctx, currentSessionID); cancelErr != nil {
					logger.Warn("Failed to cancel session on disconnect", slog.String("error", cancelErr.Error()))
				}
			}
			return
		}

		switch envelope.Event {
		case dto.EventUploadStart:
			session, err := h.uploadService.StartSession(ctx, userID, envelope.FileName, envelope.FileSize, envelope.TotalChunks, envelope.DeclaredHash)
			if err != nil {
				h.sendError(conn, envelope.SessionID, err)
				continue
			}
			currentSessionID = session.SessionID
			_ = conn.WriteJSON(dto.UploadEnvelope{
				Event:       dto.EventUploadStart,
				SessionID:   session.SessionID,
				FileName:    session.FileName,
				FileSize:    session.DeclaredSize,
				TotalChunks: session.TotalChunks,
			})

		case dto.EventUploadChunk:
			session, err := h.uploadService.ReceiveChunk(ctx, envelope.SessionID, envelope.ChunkIndex, envelope.Data)
			if err != nil {
				h.sendError(conn, envelope.SessionID, err)
				continue
			}
			_ = conn.WriteJSON(dto.UploadProgressPayload{
				Event:         dto.EventUploadProgress,
				SessionID:     session.SessionID,
				ChunkIndex:    envelope.ChunkIndex,
				ReceivedCount: session.ReceivedChunks,
				TotalChunks:   session.TotalChunks,
				Percent:       progressPercent(session.BytesReceived, session.DeclaredSize),
			})

		case dto.EventUploadComplete:
			result, err := h.uploadService.CompleteSession(ctx, envelope.SessionID)
			if err != nil {
				h.sendError(conn, envelope.SessionID, err)
				continue
			}
			if envelope.SessionID == currentSessionID {
				currentSessionID = ""
			}
			_ = conn.WriteJSON(dto.UploadCompletePayload{
				Event:        dto.EventUploadComplete,
				SessionID:    envelope.SessionID,
				Key:          result.Key,
				URL:          result.URL,
				Hash:         result.Hash,
				DeclaredHash: result.DeclaredHash,
				HashMatches:  result.HashMatches,
			})

		case dto.EventCancelUpload:
			if err := h.uploadService.CancelSession(ctx, envelope.SessionID); err != nil {
				h.sendError(conn, envelope.SessionID, err)
				continue
			}
			if envelope.SessionID == currentSessionID {
				currentSessionID = ""
			}
			_ = conn.WriteJSON(dto.UploadEnvelope{
				Event:     dto.EventCancelUpload,
				SessionID: envelope.SessionID,
				Message:   "session cancelled",
			})

		default:
			h.sendError(conn, envelope.SessionID, fmt.Errorf("unknown event %q", envelope.Event))
		}
	}
}

// progressPercent reports upload progress as bytes received against the
// declared file size. Chunk sizes are not uniform, so a chunk count would
// misstate progress.
func progressPercent(bytesReceived, declaredSize int64) float64 {
	if declaredSize <= 0 {
		return 0
	}
	return float64(bytesReceived) / float64(declaredSize) * 100
}

func (h *uploadHandler) sendError(conn *ws.Connection, sessionID string, err error) {
	_ = conn.WriteJSON(dto.UploadEnvelope{
		Event:     dto.EventUploadError,
		SessionID: sessionID,
		Message:   err.Error(),
	})
}
