package dto

// Websocket upload events. Every frame is a JSON envelope with an "event"
// discriminator; the remaining fields depend on the event.

const (
	EventUploadStart    = "upload-start"
	EventUploadChunk    = "upload-chunk"
	EventUploadProgress = "upload-progress"
	EventUploadComplete = "upload-complete"
	EventUploadError    = "upload-error"
	EventCancelUpload   = "cancel-upload"
)

// UploadEnvelope is the wire frame exchanged over the upload websocket.
// Fields not relevant to the carried event are left at their zero values.
type UploadEnvelope struct {
	Event        string `json:"event"`
	SessionID    string `json:"sessionID,omitempty"`
	FileName     string `json:"fileName,omitempty"`
	FileSize     int64  `json:"fileSize,omitempty"`
	TotalChunks  int    `json:"totalChunks,omitempty"`
	ChunkIndex   int    `json:"chunkIndex,omitempty"`
	Data         string `json:"data,omitempty"` // base64 of zlib-compressed chunk bytes
	DeclaredHash string `json:"declaredHash,omitempty"`
	Message      string `json:"message,omitempty"`
}

// UploadProgressPayload acknowledges a received chunk.
type UploadProgressPayload struct {
	Event         string  `json:"event"`
	SessionID     string  `json:"sessionID"`
	ChunkIndex    int     `json:"chunkIndex"`
	ReceivedCount int     `json:"receivedCount"`
	TotalChunks   int     `json:"totalChunks"`
	Percent       float64 `json:"percent"`
}

// UploadCompletePayload reports the outcome of an assembled upload.
type UploadCompletePayload struct {
	Event        string `json:"event"`
	SessionID    string `json:"sessionID"`
	Key          string `json:"key"`
	URL          string `json:"url"`
	Hash         string `json:"hash"`
	DeclaredHash string `json:"declaredHash,omitempty"`
	HashMatches  bool   `json:"hashMatches"`
}

// UploadResponse is returned by the direct (non-chunked) upload endpoint.
type UploadResponse struct {
	Key  string `json:"key"`
	URL  string `json:"url"`
	Hash string `json:"hash"`
	Size int64  `json:"size"`
}
