package services

import (
	"bytes"
	"compress/zlib"
	"context"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/velmora/wallet_ledger_app/internal/apperrors"
	"github.com/velmora/wallet_ledger_app/internal/core/domain"
	"github.com/velmora/wallet_ledger_app/internal/core/ports/providers"
	portssvc "github.com/velmora/wallet_ledger_app/internal/core/ports/services"
	"github.com/velmora/wallet_ledger_app/internal/dto"
	"github.com/velmora/wallet_ledger_app/internal/middleware"
	"github.com/velmora/wallet_ledger_app/internal/platform/metrics"
)

const maxChunksPerSession = 65536

// uploadSession is the in-memory state of one chunked upload. Chunks land in
// sessionDir as {index}.chunk files; received tracks the byte count of each
// distinct index. Sessions do not survive a process restart or a disconnect.
type uploadSession struct {
	mu       sync.Mutex
	domain   domain.UploadSession
	dir      string
	received map[int]int64
}

// UploadService implements both upload paths: the direct one-call path for
// small files and the chunked websocket-driven session path. Chunk
// decompression and hashing run on a bounded worker pool.
type UploadService struct {
	blobStore providers.BlobStore
	uploadDir string
	workers   chan struct{}
	metrics   *metrics.Metrics

	mu       sync.Mutex
	sessions map[string]*uploadSession
}

// NewUploadService creates a new UploadService. workers bounds the number of
// chunks decompressed and hashed concurrently.
func NewUploadService(blobStore providers.BlobStore, uploadDir string, workers int, m *metrics.Metrics) *UploadService {
	if workers <= 0 {
		workers = 4
	}
	return &UploadService{
		blobStore: blobStore,
		uploadDir: uploadDir,
		workers:   make(chan struct{}, workers),
		metrics:   m,
		sessions:  make(map[string]*uploadSession),
	}
}

// Ensure UploadService implements portssvc.UploadSvc
var _ portssvc.UploadSvc = (*UploadService)(nil)

func safeFileName(name string) string {
	name = filepath.Base(name)
	if name == "." || name == "/" || name == "" {
		return "upload.bin"
	}
	return strings.ReplaceAll(name, string(os.PathSeparator), "_")
}

// UploadDirect stores a small file in one call, hashing it on the way in.
func (s *UploadService) UploadDirect(ctx context.Context, userID string, fileName string, size int64, r io.Reader) (*dto.UploadResponse, error) {
	hasher := sha256.New()
	key := fmt.Sprintf("uploads/%s/%s", uuid.NewString(), safeFileName(fileName))

	url, err := s.blobStore.Put(ctx, key, io.TeeReader(r, hasher), "application/octet-stream")
	if err != nil {
		return nil, fmt.Errorf("%w: blob store put failed: %v", apperrors.ErrInternal, err)
	}

	return &dto.UploadResponse{
		Key:  key,
		URL:  url,
		Hash: hex.EncodeToString(hasher.Sum(nil)),
		Size: size,
	}, nil
}

// StartSession opens a chunked upload session for a large file.
func (s *UploadService) StartSession(ctx context.Context, userID string, fileName string, fileSize int64, totalChunks int, declaredHash string) (*domain.UploadSession, error) {
	if fileSize <= 0 {
		return nil, fmt.Errorf("%w: file size must be positive", apperrors.ErrValidation)
	}
	if totalChunks <= 0 || totalChunks > maxChunksPerSession {
		return nil, fmt.Errorf("%w: total chunks must be in 1..%d", apperrors.ErrValidation, maxChunksPerSession)
	}

	sessionID := uuid.NewString()
	dir := filepath.Join(s.uploadDir, sessionID)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("%w: failed to create session dir: %v", apperrors.ErrInternal, err)
	}

	sess := &uploadSession{
		domain: domain.UploadSession{
			SessionID:    sessionID,
			UserID:       userID,
			FileName:     safeFileName(fileName),
			DeclaredSize: fileSize,
			TotalChunks:  totalChunks,
			DeclaredHash: strings.ToLower(declaredHash),
			Status:       domain.UploadStarted,
			StartedAt:    time.Now(),
		},
		dir:      dir,
		received: make(map[int]int64),
	}

	s.mu.Lock()
	s.sessions[sessionID] = sess
	s.mu.Unlock()
	s.metrics.UploadSessionOpened()

	middleware.GetLoggerFromCtx(ctx).Info("Upload session started",
		slog.String("session_id", sessionID),
		slog.String("file", sess.domain.FileName),
		slog.Int64("size", fileSize),
		slog.Int("chunks", totalChunks),
	)

	snapshot := sess.domain
	return &snapshot, nil
}

func (s *UploadService) session(sessionID string) (*uploadSession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[sessionID]
	if !ok {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("upload session %s not found", sessionID))
	}
	return sess, nil
}

// decodeChunk turns the wire payload (base64 of zlib-compressed bytes) back
// into raw chunk bytes. It runs on the bounded worker pool.
func (s *UploadService) decodeChunk(data string) ([]byte, error) {
	s.workers <- struct{}{}
	defer func() { <-s.workers }()

	compressed, err := base64.StdEncoding.DecodeString(data)
	if err != nil {
		return nil, fmt.Errorf("%w: chunk is not valid base64", apperrors.ErrValidation)
	}
	zr, err := zlib.NewReader(bytes.NewReader(compressed))
	if err != nil {
		return nil, fmt.Errorf("%w: chunk is not valid zlib data", apperrors.ErrValidation)
	}
	defer zr.Close()

	raw, err := io.ReadAll(zr)
	if err != nil {
		return nil, fmt.Errorf("%w: chunk decompression failed", apperrors.ErrValidation)
	}
	return raw, nil
}

// ReceiveChunk decodes and stores one chunk, returning the session progress.
// Receiving the same index twice overwrites the earlier copy.
func (s *UploadService) ReceiveChunk(ctx context.Context, sessionID string, chunkIndex int, data string) (*domain.UploadSession, error) {
	sess, err := s.session(sessionID)
	if err != nil {
		return nil, err
	}
	if chunkIndex < 0 || chunkIndex >= sess.domain.TotalChunks {
		return nil, fmt.Errorf("%w: chunk index %d out of range 0..%d", apperrors.ErrValidation, chunkIndex, sess.domain.TotalChunks-1)
	}

	raw, err := s.decodeChunk(data)
	if err != nil {
		return nil, err
	}

	chunkPath := filepath.Join(sess.dir, fmt.Sprintf("%d.chunk", chunkIndex))
	if err := os.WriteFile(chunkPath, raw, 0o640); err != nil {
		return nil, fmt.Errorf("%w: failed to store chunk: %v", apperrors.ErrInternal, err)
	}
	s.metrics.UploadChunk(len(raw))

	sess.mu.Lock()
	if prev, ok := sess.received[chunkIndex]; ok {
		sess.domain.BytesReceived -= prev
	} else {
		sess.domain.ReceivedChunks++
	}
	sess.received[chunkIndex] = int64(len(raw))
	sess.domain.BytesReceived += int64(len(raw))
	snapshot := sess.domain
	sess.mu.Unlock()

	return &snapshot, nil
}

// CompleteSession verifies every chunk arrived, assembles the file in index
// order, hashes it and stores the result. A declared-hash mismatch is
// reported in the result rather than failing the upload.
func (s *UploadService) CompleteSession(ctx context.Context, sessionID string) (*domain.UploadResult, error) {
	sess, err := s.session(sessionID)
	if err != nil {
		return nil, err
	}

	sess.mu.Lock()
	var missing []int
	for i := 0; i < sess.domain.TotalChunks; i++ {
		if _, ok := sess.received[i]; !ok {
			missing = append(missing, i)
		}
	}
	sess.mu.Unlock()

	if len(missing) > 0 {
		sort.Ints(missing)
		return nil, fmt.Errorf("%w: missing chunks %v", apperrors.ErrValidation, missing)
	}

	assembled := filepath.Join(sess.dir, "assembled")
	out, err := os.Create(assembled)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create assembly file: %v", apperrors.ErrInternal, err)
	}

	hasher := sha256.New()
	w := io.MultiWriter(out, hasher)
	var size int64
	for i := 0; i < sess.domain.TotalChunks; i++ {
		chunk, err := os.Open(filepath.Join(sess.dir, fmt.Sprintf("%d.chunk", i)))
		if err != nil {
			out.Close()
			return nil, fmt.Errorf("%w: chunk %d vanished before assembly: %v", apperrors.ErrInternal, i, err)
		}
		n, err := io.Copy(w, chunk)
		chunk.Close()
		if err != nil {
			out.Close()
			return nil, fmt.Errorf("%w: failed to assemble chunk %d: %v", apperrors.ErrInternal, i, err)
		}
		size += n
	}
	if err := out.Close(); err != nil {
		return nil, fmt.Errorf("%w: failed to finalize assembly: %v", apperrors.ErrInternal, err)
	}

	in, err := os.Open(assembled)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to reopen assembled file: %v", apperrors.ErrInternal, err)
	}
	key := fmt.Sprintf("uploads/%s/%s", sessionID, sess.domain.FileName)
	url, err := s.blobStore.Put(ctx, key, in, "application/octet-stream")
	in.Close()
	if err != nil {
		return nil, fmt.Errorf("%w: blob store put failed: %v", apperrors.ErrInternal, err)
	}

	hash := hex.EncodeToString(hasher.Sum(nil))
	matches := sess.domain.DeclaredHash == "" || sess.domain.DeclaredHash == hash
	if !matches {
		middleware.GetLoggerFromCtx(ctx).Warn("Upload hash mismatch",
			slog.String("session_id", sessionID),
			slog.String("declared", sess.domain.DeclaredHash),
			slog.String("actual", hash),
		)
	}

	s.removeSession(sessionID, domain.UploadCompleted)

	return &domain.UploadResult{
		Key:          key,
		URL:          url,
		Size:         size,
		Hash:         hash,
		HashMatches:  matches,
		DeclaredHash: sess.domain.DeclaredHash,
	}, nil
}

// CancelSession discards a session and its received chunks.
func (s *UploadService) CancelSession(ctx context.Context, sessionID string) error {
	if _, err := s.session(sessionID); err != nil {
		return err
	}
	s.removeSession(sessionID, domain.UploadCancelled)
	return nil
}

func (s *UploadService) removeSession(sessionID string, status domain.UploadStatus) {
	s.mu.Lock()
	sess, ok := s.sessions[sessionID]
	if ok {
		delete(s.sessions, sessionID)
	}
	s.mu.Unlock()
	if !ok {
		return
	}

	sess.mu.Lock()
	sess.domain.Status = status
	sess.mu.Unlock()

	_ = os.RemoveAll(sess.dir)
	s.metrics.UploadSessionClosed()
}
