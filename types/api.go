package types

// AudioMetadata holds the tag hints read from an audio file
type AudioMetadata struct {
	Title  string `json:"title,omitempty"`
	Artist string `json:"artist,omitempty"`
	Album  string `json:"album,omitempty"`
	Format string `json:"format,omitempty"` // "mp3", "flac", etc.
}

// Severity represents the level of a user-facing notification
type Severity string

const (
	SeverityInfo        Severity = "info"
	SeveritySuccess     Severity = "success"
	SeverityDestructive Severity = "destructive"
)

// Notification is a single user-facing message about a scan or batch outcome
type Notification struct {
	Severity    Severity `json:"severity"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
}
