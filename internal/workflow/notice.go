package workflow

import "fmt"

// NoticeLevel distinguishes informational notices from repair warnings.
type NoticeLevel string

const (
	NoticeInfo    NoticeLevel = "info"
	NoticeWarning NoticeLevel = "warning"
)

// Notice is a non-fatal message surfaced to the user by a stage operation:
// fallback-synthesis notes, enum repairs, empty-selection conditions. Notices
// are never errors.
type Notice struct {
	Level   NoticeLevel `json:"level"`
	Message string      `json:"message"`
}

// Infof builds an informational notice.
func Infof(format string, args ...any) Notice {
	return Notice{Level: NoticeInfo, Message: fmt.Sprintf(format, args...)}
}

// Warnf builds a warning notice.
func Warnf(format string, args ...any) Notice {
	return Notice{Level: NoticeWarning, Message: fmt.Sprintf(format, args...)}
}
