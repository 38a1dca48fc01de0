package initializer

import (
	"io"
	"log/slog"
	"os"

	"github.com/amirasaad/finanze/pkg/config"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
)

var (
	infoColor  = lipgloss.AdaptiveColor{Light: "#04B575", Dark: "#04B575"}
	warnColor  = lipgloss.AdaptiveColor{Light: "#EE6FF8", Dark: "#EE6FF8"}
	errorColor = lipgloss.AdaptiveColor{Light: "#FF6B6B", Dark: "#FF6B6B"}
	debugColor = lipgloss.AdaptiveColor{Light: "#7E57C2", Dark: "#7E57C2"}
	idColor    = lipgloss.AdaptiveColor{Light: "#1E88E5", Dark: "#64B5F6"}
	moneyColor = lipgloss.AdaptiveColor{Light: "#F9A825", Dark: "#FFD54F"}
)

var levelBadges = map[log.Level]struct {
	badge string
	color lipgloss.AdaptiveColor
}{
	log.DebugLevel: {"🐛", debugColor},
	log.InfoLevel:  {"ℹ️", infoColor},
	log.WarnLevel:  {"⚠️", warnColor},
	log.ErrorLevel: {"❌", errorColor},
}

// keyColors highlights the attributes services log most: owners and
// resource ids, amounts, and errors.
var keyColors = map[string]lipgloss.AdaptiveColor{
	"error":         errorColor,
	"userID":        idColor,
	"accountID":     idColor,
	"portfolioID":   idColor,
	"transactionID": idColor,
	"tradeID":       idColor,
	"swapPairID":    idColor,
	"amount":        moneyColor,
	"eurValue":      moneyColor,
	"balance":       moneyColor,
	"prefix":        debugColor,
	"caller":        debugColor,
	"time":          debugColor,
}

func logStyles() *log.Styles {
	styles := log.DefaultStyles()
	for level, b := range levelBadges {
		styles.Levels[level] = lipgloss.NewStyle().
			SetString(b.badge).
			Bold(true).
			Padding(0, 1).
			Foreground(b.color)
	}
	for key, color := range keyColors {
		styles.Keys[key] = lipgloss.NewStyle().Foreground(color)
		styles.Values[key] = lipgloss.NewStyle().Bold(true)
	}
	return styles
}

// SetupLogger builds the process logger on charmbracelet/log, writing to
// stdout, and installs it as the slog default.
func SetupLogger(cfg *config.Log) *slog.Logger {
	return newLogger(os.Stdout, cfg)
}

func newLogger(w io.Writer, cfg *config.Log) *slog.Logger {
	if cfg == nil {
		cfg = &config.Log{Format: "text", TimeFormat: "2006-01-02 15:04:05"}
	}
	var formatter log.Formatter
	switch cfg.Format {
	case "json":
		formatter = log.JSONFormatter
	case "logfmt":
		formatter = log.LogfmtFormatter
	default:
		formatter = log.TextFormatter
	}

	logger := log.NewWithOptions(w, log.Options{
		ReportCaller:    true,
		ReportTimestamp: true,
		TimeFormat:      cfg.TimeFormat,
		Level:           log.Level(cfg.Level),
		Prefix:          cfg.Prefix,
		Formatter:       formatter,
	})
	logger.SetStyles(logStyles())

	slogger := slog.New(logger)
	slog.SetDefault(slogger)
	return slogger
}
