package services

import (
	"context"
	"io"

	"github.com/velmora/wallet_ledger_app/internal/core/domain"
	"github.com/velmora/wallet_ledger_app/internal/dto"
)

// UploadSvc defines both upload paths: the direct path for small files and the
// chunked session path driven by the websocket handler.
type UploadSvc interface {
	// UploadDirect stores a small file in one call and returns its key, URL and hash.
	UploadDirect(ctx context.Context, userID string, fileName string, size int64, r io.Reader) (*dto.UploadResponse, error)

	// StartSession opens a chunked upload session for a large file.
	StartSession(ctx context.Context, userID string, fileName string, fileSize int64, totalChunks int, declaredHash string) (*domain.UploadSession, error)

	// ReceiveChunk decodes and stores one chunk, returning the session progress.
	// Receiving the same index twice overwrites the earlier copy.
	ReceiveChunk(ctx context.Context, sessionID string, chunkIndex int, data string) (*domain.UploadSession, error)

	// CompleteSession verifies every chunk arrived, assembles the file, checks the
	// declared hash and stores the result. A hash mismatch is reported in the
	// result, not treated as a failure.
	CompleteSession(ctx context.Context, sessionID string) (*domain.UploadResult, error)

	// CancelSession discards a session and its received chunks.
	CancelSession(ctx context.Context, sessionID string) error
}
