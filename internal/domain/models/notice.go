package models

// NoticeLevel tells the presentation layer how prominently to show a notice.
type NoticeLevel string

const (
	NoticeError   NoticeLevel = "error"
	NoticeWarning NoticeLevel = "warning"
	NoticeInfo    NoticeLevel = "info"
)

// Notice is the single active message tied to the most recent operation.
type Notice struct {
	Level     NoticeLevel
	Operation string
	Message   string
	Report    *ErrorReport
}
