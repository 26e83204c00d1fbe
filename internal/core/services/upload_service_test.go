package services_test

import (
	"bytes"
	"compress/zlib"
	"context"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"io"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/velmora/wallet_ledger_app/internal/apperrors"
	"github.com/velmora/wallet_ledger_app/internal/core/services"
)

// memoryBlobStore is an in-memory BlobStore capturing what was stored.
type memoryBlobStore struct {
	mu      sync.Mutex
	objects map[string][]byte
}

func newMemoryBlobStore() *memoryBlobStore {
	return &memoryBlobStore{objects: make(map[string][]byte)}
}

func (s *memoryBlobStore) Put(ctx context.Context, key string, r io.Reader, contentType string) (string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	s.mu.Lock()
	s.objects[key] = data
	s.mu.Unlock()
	return "memory://" + key, nil
}

func (s *memoryBlobStore) GetStream(ctx context.Context, key string) (io.ReadCloser, error) {
	s.mu.Lock()
	data, ok := s.objects[key]
	s.mu.Unlock()
	if !ok {
		return nil, os.ErrNotExist
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

func (s *memoryBlobStore) Delete(ctx context.Context, key string) error {
	s.mu.Lock()
	delete(s.objects, key)
	s.mu.Unlock()
	return nil
}

// encodeChunk compresses and base64-encodes raw bytes the way clients
// send them over the websocket.
func encodeChunk(raw []byte) string {
	var buf bytes.Buffer
	zw := zlib.NewWriter(&buf)
	_, _ = zw.Write(raw)
	_ = zw.Close()
	return base64.StdEncoding.EncodeToString(buf.Bytes())
}

func sha256Hex(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// --- Test Suite Setup ---

type UploadServiceTestSuite struct {
	suite.Suite
	blobStore *memoryBlobStore
	uploadDir string
	service   *services.UploadService

	userID string
}

func (suite *UploadServiceTestSuite) SetupTest() {
	suite.blobStore = newMemoryBlobStore()
	suite.uploadDir = suite.T().TempDir()
	suite.service = services.NewUploadService(suite.blobStore, suite.uploadDir, 2, nil)
	suite.userID = "user-1"
}

// --- Test Cases ---

func (suite *UploadServiceTestSuite) TestUploadDirect_StoresAndHashes() {
	ctx := context.Background()
	content := []byte("direct upload body")

	resp, err := suite.service.UploadDirect(ctx, suite.userID, "report.pdf", int64(len(content)), bytes.NewReader(content))

	suite.Require().NoError(err)
	suite.Equal(sha256Hex(content), resp.Hash)
	suite.Equal("memory://"+resp.Key, resp.URL)
	suite.Equal(content, suite.blobStore.objects[resp.Key])
}

func (suite *UploadServiceTestSuite) TestUploadDirect_SanitizesFileName() {
	ctx := context.Background()

	resp, err := suite.service.UploadDirect(ctx, suite.userID, "../../etc/passwd", 6, bytes.NewReader([]byte("secret")))

	suite.Require().NoError(err)
	suite.NotContains(resp.Key, "..")
	suite.Contains(resp.Key, "passwd")
}

func (suite *UploadServiceTestSuite) TestChunkedUpload_HappyPath() {
	ctx := context.Background()
	chunks := [][]byte{[]byte("first chunk "), []byte("second chunk "), []byte("third chunk")}
	var whole []byte
	for _, c := range chunks {
		whole = append(whole, c...)
	}

	sess, err := suite.service.StartSession(ctx, suite.userID, "big.bin", int64(len(whole)), len(chunks), sha256Hex(whole))
	suite.Require().NoError(err)

	for i, c := range chunks {
		progress, err := suite.service.ReceiveChunk(ctx, sess.SessionID, i, encodeChunk(c))
		suite.Require().NoError(err)
		suite.Equal(i+1, progress.ReceivedChunks)
	}

	result, err := suite.service.CompleteSession(ctx, sess.SessionID)
	suite.Require().NoError(err)
	suite.Equal(int64(len(whole)), result.Size)
	suite.Equal(sha256Hex(whole), result.Hash)
	suite.True(result.HashMatches)
	suite.Equal(whole, suite.blobStore.objects[result.Key])

	// The session directory is cleaned up after completion.
	_, statErr := os.Stat(filepath.Join(suite.uploadDir, sess.SessionID))
	suite.True(os.IsNotExist(statErr))
}

func (suite *UploadServiceTestSuite) TestCompleteSession_MissingChunks() {
	ctx := context.Background()
	sess, err := suite.service.StartSession(ctx, suite.userID, "big.bin", 30, 3, "")
	suite.Require().NoError(err)

	_, err = suite.service.ReceiveChunk(ctx, sess.SessionID, 1, encodeChunk([]byte("only the middle")))
	suite.Require().NoError(err)

	_, err = suite.service.CompleteSession(ctx, sess.SessionID)

	suite.Require().ErrorIs(err, apperrors.ErrValidation)
	suite.Contains(err.Error(), "[0 2]")

	// An incomplete session stays open so the client can resend.
	_, err = suite.service.ReceiveChunk(ctx, sess.SessionID, 0, encodeChunk([]byte("late")))
	suite.NoError(err)
}

func (suite *UploadServiceTestSuite) TestCompleteSession_HashMismatchReportedNotFailed() {
	ctx := context.Background()
	content := []byte("actual content")
	sess, err := suite.service.StartSession(ctx, suite.userID, "big.bin", int64(len(content)), 1, sha256Hex([]byte("declared something else")))
	suite.Require().NoError(err)

	_, err = suite.service.ReceiveChunk(ctx, sess.SessionID, 0, encodeChunk(content))
	suite.Require().NoError(err)

	result, err := suite.service.CompleteSession(ctx, sess.SessionID)

	suite.Require().NoError(err)
	suite.False(result.HashMatches)
	suite.Equal(sha256Hex(content), result.Hash)
	suite.NotEmpty(suite.blobStore.objects[result.Key])
}

func (suite *UploadServiceTestSuite) TestReceiveChunk_OverwriteSameIndex() {
	ctx := context.Background()
	sess, err := suite.service.StartSession(ctx, suite.userID, "big.bin", 10, 1, "")
	suite.Require().NoError(err)

	_, err = suite.service.ReceiveChunk(ctx, sess.SessionID, 0, encodeChunk([]byte("first try with more bytes")))
	suite.Require().NoError(err)
	progress, err := suite.service.ReceiveChunk(ctx, sess.SessionID, 0, encodeChunk([]byte("second")))
	suite.Require().NoError(err)

	suite.Equal(1, progress.ReceivedChunks)
	suite.Equal(int64(len("second")), progress.BytesReceived)

	result, err := suite.service.CompleteSession(ctx, sess.SessionID)
	suite.Require().NoError(err)
	suite.Equal([]byte("second"), suite.blobStore.objects[result.Key])
}

func (suite *UploadServiceTestSuite) TestReceiveChunk_RejectsBadPayloads() {
	ctx := context.Background()
	sess, err := suite.service.StartSession(ctx, suite.userID, "big.bin", 10, 2, "")
	suite.Require().NoError(err)

	_, err = suite.service.ReceiveChunk(ctx, sess.SessionID, 5, encodeChunk([]byte("x")))
	suite.ErrorIs(err, apperrors.ErrValidation)

	_, err = suite.service.ReceiveChunk(ctx, sess.SessionID, 0, "not base64 at all!!!")
	suite.ErrorIs(err, apperrors.ErrValidation)

	_, err = suite.service.ReceiveChunk(ctx, sess.SessionID, 0, base64.StdEncoding.EncodeToString([]byte("not zlib")))
	suite.ErrorIs(err, apperrors.ErrValidation)
}

func (suite *UploadServiceTestSuite) TestStartSession_Validation() {
	ctx := context.Background()

	_, err := suite.service.StartSession(ctx, suite.userID, "big.bin", 0, 1, "")
	suite.ErrorIs(err, apperrors.ErrValidation)

	_, err = suite.service.StartSession(ctx, suite.userID, "big.bin", 10, 0, "")
	suite.ErrorIs(err, apperrors.ErrValidation)
}

func (suite *UploadServiceTestSuite) TestCancelSession_RemovesChunks() {
	ctx := context.Background()
	sess, err := suite.service.StartSession(ctx, suite.userID, "big.bin", 10, 2, "")
	suite.Require().NoError(err)
	_, err = suite.service.ReceiveChunk(ctx, sess.SessionID, 0, encodeChunk([]byte("chunk")))
	suite.Require().NoError(err)

	err = suite.service.CancelSession(ctx, sess.SessionID)
	suite.Require().NoError(err)

	_, statErr := os.Stat(filepath.Join(suite.uploadDir, sess.SessionID))
	suite.True(os.IsNotExist(statErr))

	_, err = suite.service.ReceiveChunk(ctx, sess.SessionID, 1, encodeChunk([]byte("late")))
	suite.ErrorIs(err, apperrors.ErrNotFound)
}

func TestUploadServiceTestSuite(t *testing.T) {
	suite.Run(t, new(UploadServiceTestSuite))
}
