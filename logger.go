package tree_sitter

import (
	"log/slog"

	sitter "github.com/tree-sitter/go-tree-sitter"
)

const attrLogType = "log_type"

// Receives the engine's log callback; implemented by [SitterEngine].
type engineLogSink interface {
	SetLogger(logger sitter.Logger)
}

// Forward engine parse and lex messages to logger at debug level.
func engineLogger(logger *slog.Logger) sitter.Logger {
	return func(logType sitter.LogType, message string) {
		kind := "parse"
		if logType == sitter.LogTypeLex {
			kind = "lex"
		}
		logger.Debug(message, slog.String(attrLogType, kind))
	}
}
