package util

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// NewLogger level 解析失敗時用 info, pretty 用於本機開發
func NewLogger(level string, pretty bool) *zerolog.Logger {
	return NewLoggerWithWriter(os.Stdout, level, pretty)
}

// NewTeeLogger stdout 依 pretty 格式輸出, sink 永遠收到 JSON
func NewTeeLogger(level string, pretty bool, sink io.Writer) *zerolog.Logger {
	var out io.Writer = os.Stdout
	if pretty {
		out = consoleWriter(out)
	}
	return newLogger(zerolog.MultiLevelWriter(out, sink), level)
}

func NewLoggerWithWriter(w io.Writer, level string, pretty bool) *zerolog.Logger {
	if pretty {
		w = consoleWriter(w)
	}
	return newLogger(w, level)
}

func consoleWriter(w io.Writer) io.Writer {
	return zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339}
}

func newLogger(w io.Writer, level string) *zerolog.Logger {
	logger := zerolog.New(w).
		Level(ParseLevel(level)).
		With().
		Timestamp().
		Str("service", "laptop_store").
		Logger()
	return &logger
}

func ParseLevel(level string) zerolog.Level {
	lv, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(level)))
	if err != nil || lv == zerolog.NoLevel {
		return zerolog.InfoLevel
	}
	return lv
}

// ApplyGlobalLevel 調整全域 level, 設定檔熱更新時使用
// logger 本身的 level 需設為 trace 才能往下調
func ApplyGlobalLevel(level string) zerolog.Level {
	lv := ParseLevel(level)
	zerolog.SetGlobalLevel(lv)
	return lv
}
