package logger

// Standard field keys for structured logging.
// Use these keys consistently across all log statements so relay activity can
// be filtered and aggregated per session, folder, and destination chat.
const (
	// Session & client identification
	KeySession  = "session"   // Gateway session identifier
	KeyClientIP = "client_ip" // FTP client address
	KeyUsername = "username"  // Authenticated FTP username

	// Virtual filesystem
	KeyPath     = "path"     // Normalized absolute path
	KeyFolder   = "folder"   // Top-level routing folder
	KeyFilename = "filename" // Uploaded file name (basename)
	KeySize     = "size"     // Buffer size in bytes

	// Delivery
	KeyChatID   = "chat_id"   // Destination chat identifier
	KeyTopicID  = "topic_id"  // Destination topic (sub-channel) identifier
	KeyMIME     = "mime"      // Detected MIME type
	KeyCategory = "category"  // Classified content category
	KeyKind     = "send_kind" // Outbound message kind: photo, document, video
	KeyDuration = "duration"  // Operation duration

	// Generic
	KeyError = "error" // Error value
)
