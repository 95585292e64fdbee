package types

import "time"

// Level is the severity of a user notification.
type Level string

const (
	LevelInfo    Level = "info"
	LevelWarning Level = "warning"
	LevelError   Level = "error"
)

// Notification is a user-facing message produced by a controller.
type Notification struct {
	Level     Level     `json:"level"`
	Operation string    `json:"operation"`
	FileName  string    `json:"file_name,omitempty"`
	Message   string    `json:"message"`
	Time      time.Time `json:"time"`
}
