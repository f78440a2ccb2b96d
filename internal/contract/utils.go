package contract

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/autoops/kpiscope/schema"

	"github.com/fatih/color"
)

// Color variables for console output.
var (
	HighColor     = color.New(color.FgRed, color.Bold)    // urgent, act now
	MediumColor   = color.New(color.FgYellow)             // standard caution
	LowColor      = color.New(color.FgCyan)               // informational
	UpwardColor   = color.New(color.FgGreen)              // positive movement
	DownwardColor = color.New(color.FgRed)                // negative movement
	FlatColor     = color.New(color.FgWhite, color.Faint) // no meaningful movement
)

// GetPriorityLabel returns a colored priority label for console output.
func GetPriorityLabel(p schema.Priority, useColors bool) string {
	text := string(p)
	if !useColors {
		return text
	}
	switch p {
	case schema.HighPriority:
		return HighColor.Sprint(text)
	case schema.MediumPriority:
		return MediumColor.Sprint(text)
	default:
		return LowColor.Sprint(text)
	}
}

// GetDirectionLabel returns a colored trend direction label for console output.
func GetDirectionLabel(d schema.TrendDirection, useColors bool) string {
	text := string(d)
	if !useColors {
		return text
	}
	switch d {
	case schema.UpwardTrend:
		return UpwardColor.Sprint(text)
	case schema.DownwardTrend:
		return DownwardColor.Sprint(text)
	default:
		return FlatColor.Sprint(text)
	}
}

// SelectOutputFile returns the appropriate file handle for output based on
// the provided file path. An empty path means stdout.
func SelectOutputFile(filePath string) (*os.File, error) {
	if filePath == "" {
		return os.Stdout, nil
	}
	return os.Create(filePath)
}

// LogFatal logs an error and exits the program.
func LogFatal(msg string, err error) {
	_, _ = fmt.Fprintf(os.Stderr, "Fatal %s: %v\n", msg, err)
	os.Exit(1)
}

// LogWarn logs a warning message to stderr.
func LogWarn(msg string, err error) {
	_, _ = fmt.Fprintf(os.Stderr, "Warn %s: %v\n", msg, err)
}

// GetMemoryFilePath returns the default path to the JSON memory file.
func GetMemoryFilePath() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ".kpiscope_memory.json"
	}
	return filepath.Join(homeDir, ".kpiscope_memory.json")
}

// GetArchiveDBFilePath returns the default path to the SQLite archive file.
func GetArchiveDBFilePath() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ".kpiscope_archive.db"
	}
	return filepath.Join(homeDir, ".kpiscope_archive.db")
}
