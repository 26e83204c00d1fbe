package domain

import "time"

// UploadStatus is the state of a chunked upload session.
type UploadStatus string

const (
	UploadStarted   UploadStatus = "STARTED"
	UploadCompleted UploadStatus = "COMPLETED"
	UploadCancelled UploadStatus = "CANCELLED"
)

// UploadSession tracks one chunked upload. Chunks are written to
// {sessionDir}/{index}.chunk as they arrive; finalization verifies every
// declared index is present before any concatenation begins. A session does
// not survive a disconnect: a retried upload opens a fresh session.
type UploadSession struct {
	SessionID      string       `json:"sessionID"` // UUID
	UserID         string       `json:"userID"`
	FileName       string       `json:"fileName"`
	ContentType    string       `json:"contentType"`
	DeclaredSize   int64        `json:"declaredSize"` // Total bytes the client will send
	TotalChunks    int          `json:"totalChunks"`
	DeclaredHash   string       `json:"declaredHash"` // Hex SHA-256 declared by the client
	Status         UploadStatus `json:"status"`
	ReceivedChunks int          `json:"receivedChunks"` // Distinct chunk indices received
	BytesReceived  int64        `json:"bytesReceived"`
	StartedAt      time.Time    `json:"startedAt"`
}

// UploadResult is returned on successful finalization.
type UploadResult struct {
	Key          string `json:"key"` // Blob store key
	URL          string `json:"url"`
	Size         int64  `json:"size"`
	Hash         string `json:"hash"` // Hex SHA-256 of the final file
	HashMatches  bool   `json:"hashMatches"`
	DeclaredHash string `json:"declaredHash"`
}
