package logging

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sealtun/infrastructure/settings"
	"strings"

	"github.com/astaxie/beego/logs"
)

const (
	defaultMaxDays  = 7
	defaultMaxSize  = 10 * 1024 * 1024
	defaultMaxLines = 100 * 1024
)

type fileConfig struct {
	Filename string `json:"filename"`
	Level    int    `json:"level"`
	MaxLines int    `json:"maxlines"`
	MaxSize  int    `json:"maxsize"`
	Daily    bool   `json:"daily"`
	MaxDays  int    `json:"maxdays"`
	Perm     string `json:"perm"`
}

// BeegoLogger writes to a daily-rotated file.
type BeegoLogger struct {
	logger *logs.BeeLogger
}

func NewBeegoLogger(conf settings.Logging) (*BeegoLogger, error) {
	if conf.File == "" {
		return nil, fmt.Errorf("log file is not configured")
	}
	if err := os.MkdirAll(filepath.Dir(conf.File), 0o755); err != nil {
		return nil, fmt.Errorf("create log directory: %w", err)
	}

	level := parseLevel(conf.Level)
	maxDays := conf.MaxDays
	if maxDays <= 0 {
		maxDays = defaultMaxDays
	}
	value, err := json.Marshal(fileConfig{
		Filename: conf.File,
		Level:    level,
		MaxLines: defaultMaxLines,
		MaxSize:  defaultMaxSize,
		Daily:    true,
		MaxDays:  maxDays,
		Perm:     "0600",
	})
	if err != nil {
		return nil, err
	}

	bl := logs.NewLogger()
	if err := bl.SetLogger(logs.AdapterFile, string(value)); err != nil {
		return nil, fmt.Errorf("open log file %s: %w", conf.File, err)
	}
	bl.SetLevel(level)
	bl.EnableFuncCallDepth(true)
	bl.SetLogFuncCallDepth(3)
	return &BeegoLogger{logger: bl}, nil
}

// Printf records are written whatever the configured level; the level only
// filters beego's leveled output.
func (b *BeegoLogger) Printf(format string, v ...any) {
	_, _ = b.logger.Write([]byte(fmt.Sprintf(format, v...)))
}

// Close flushes pending records and releases the file.
func (b *BeegoLogger) Close() {
	b.logger.Flush()
	b.logger.Close()
}

func parseLevel(level string) int {
	switch strings.ToLower(level) {
	case "debug":
		return logs.LevelDebug
	case "warn", "warning":
		return logs.LevelWarning
	case "error":
		return logs.LevelError
	default:
		return logs.LevelInformational
	}
}
