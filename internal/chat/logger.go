package chat

import "log"

// Logger provides structured logging scoped to one chat.
type Logger struct {
	chatID int64
}

// NewLogger creates a logger for a chat.
func NewLogger(chatID int64) *Logger {
	return &Logger{chatID: chatID}
}

// LogError logs an error with context.
func (l *Logger) LogError(operation string, err error) {
	log.Printf("[error] chat_id=%d operation=%s error=%v", l.chatID, operation, err)
}

// LogInfo logs an info message with context.
func (l *Logger) LogInfo(operation string, message string) {
	log.Printf("[info] chat_id=%d operation=%s message=%s", l.chatID, operation, message)
}

// LogInfof logs a formatted info message with context.
func (l *Logger) LogInfof(operation string, format string, args ...interface{}) {
	log.Printf("[info] chat_id=%d operation=%s "+format, append([]interface{}{l.chatID, operation}, args...)...)
}

// LogWarnf logs a formatted warning with context.
func (l *Logger) LogWarnf(operation string, format string, args ...interface{}) {
	log.Printf("[warn] chat_id=%d operation=%s "+format, append([]interface{}{l.chatID, operation}, args...)...)
}
