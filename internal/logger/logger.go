package logger

import (
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"reflect"
	"runtime"
	"strings"
	"sync"
)

// ********************************************************
// ********* LOGGING **************************************
// ********************************************************

var (
	mu           sync.Mutex
	showDateTime bool
	useColour    = true
	defaultLog   *Logger
	logFile      *os.File
)

type LogLevel int

const (
	colorReset   = "\033[0m"
	colorRed     = "\033[31m"
	colorGreen   = "\033[32m"
	colorYellow  = "\033[33m"
	colorBlue    = "\033[34m"
	colorMagenta = "\033[35m"
	colorCyan    = "\033[36m"
	colorOrange  = "\033[38;5;208m"
)

const (
	DEBUG LogLevel = iota
	INFO
	INFORM
	HIGHLIGHT
	WARN
	ERROR
	FATAL
)

// DefaultLogFile is where the MCP server logs, stdout being reserved for the protocol
const DefaultLogFile = "/tmp/goalclock.log"

type Logger struct {
	infoLogger  *log.Logger
	errorLogger *log.Logger
	level       LogLevel
}

func init() {
	defaultLog = NewLogger(INFO)
	showDateTime = false
}

func flags() int {
	if showDateTime {
		return log.Ldate | log.Ltime
	}
	return 0
}

func SetShowDateTime(value bool) {
	mu.Lock()
	defer mu.Unlock()
	showDateTime = value
	defaultLog.infoLogger.SetFlags(flags())
	defaultLog.errorLogger.SetFlags(flags())
}

// SetColour turns the ANSI colour codes on or off, files are easier to read without them
func SetColour(value bool) {
	mu.Lock()
	defer mu.Unlock()
	useColour = value
}

// SetLevel sets the minimum level that is written
func SetLevel(level LogLevel) {
	mu.Lock()
	defer mu.Unlock()
	defaultLog.level = level
}

// GetLevel returns the current minimum level
func GetLevel() LogLevel {
	mu.Lock()
	defer mu.Unlock()
	return defaultLog.level
}

// ParseLevel converts a name such as "debug" or "WARN" into a LogLevel
func ParseLevel(name string) (LogLevel, error) {
	switch strings.ToUpper(strings.TrimSpace(name)) {
	case "DEBUG":
		return DEBUG, nil
	case "INFO", "":
		return INFO, nil
	case "INFORM":
		return INFORM, nil
	case "HIGHLIGHT":
		return HIGHLIGHT, nil
	case "WARN", "WARNING":
		return WARN, nil
	case "ERROR":
		return ERROR, nil
	case "FATAL":
		return FATAL, nil
	}
	return INFO, fmt.Errorf("unknown log level: %s", name)
}

// SetOutput sends every level to w
func SetOutput(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	closeLogFile()
	defaultLog.infoLogger = log.New(w, "", flags())
	defaultLog.errorLogger = log.New(w, "", flags())
}

// SetLogOutput sets the output destination for logs
// 'c' for console, 'f' for file, 'b' for both
// An empty path means DefaultLogFile
func SetLogOutput(outputType rune, path string) error {
	mu.Lock()
	defer mu.Unlock()
	closeLogFile()

	if path == "" {
		path = DefaultLogFile
	}

	var infoWriter, errorWriter io.Writer
	switch outputType {
	case 'c':
		infoWriter = os.Stdout
		errorWriter = os.Stderr
	case 'f', 'b':
		f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			return fmt.Errorf("failed to open log file %s: %w", path, err)
		}
		logFile = f
		if outputType == 'f' {
			infoWriter = f
			errorWriter = f
		} else {
			infoWriter = io.MultiWriter(os.Stdout, f)
			errorWriter = io.MultiWriter(os.Stderr, f)
		}
	default:
		return fmt.Errorf("invalid log output type: %c", outputType)
	}

	defaultLog.infoLogger = log.New(infoWriter, "", flags())
	defaultLog.errorLogger = log.New(errorWriter, "", flags())
	return nil
}

// Close releases the log file, if any
func Close() {
	mu.Lock()
	defer mu.Unlock()
	closeLogFile()
}

func closeLogFile() {
	if logFile != nil {
		logFile.Close()
		logFile = nil
	}
}

func NewLogger(level LogLevel) *Logger {
	return &Logger{
		infoLogger:  log.New(os.Stdout, "", flags()),
		errorLogger: log.New(os.Stderr, "", flags()),
		level:       level,
	}
}

func (l *Logger) log(level LogLevel, format string, v ...any) {
	mu.Lock()
	defer mu.Unlock()

	if level < l.level {
		return
	}

	_, file, line, ok := runtime.Caller(2)
	if !ok {
		file = "unknown"
		line = 0
	}
	file = filepath.Base(file)

	msg := format
	var jsonObjects []string
	if len(v) > 0 {
		var processed []string
		processed, jsonObjects = processArgs(v...)
		if len(processed) > 0 {
			msg = fmt.Sprintf("%s %s", format, strings.Join(processed, " "))
		}
	}

	colorCode, reset := level.colour(), colorReset
	if !useColour {
		colorCode, reset = "", ""
	}

	out := l.infoLogger
	if level >= ERROR {
		out = l.errorLogger
	}
	out.Printf("[%s] %s:%d: %s%s%s", level, file, line, colorCode, msg, reset)
	// objects go on their own lines
	for _, obj := range jsonObjects {
		out.Printf("[%s] %s:%d: %s%s%s", level, file, line, colorCode, obj, reset)
	}
}

func (l LogLevel) colour() string {
	switch l {
	case DEBUG:
		return colorBlue
	case INFO:
		return colorGreen
	case INFORM:
		return colorMagenta
	case HIGHLIGHT:
		return colorCyan
	case WARN:
		return colorYellow
	case ERROR:
		return colorOrange
	case FATAL:
		return colorRed
	default:
		return colorReset
	}
}

func (l LogLevel) String() string {
	switch l {
	case DEBUG:
		return "DEBUG"
	case INFO:
		return "INFO"
	case INFORM:
		return "INFORM"
	case HIGHLIGHT:
		return "HIGHLIGHT"
	case WARN:
		return "WARN"
	case ERROR:
		return "ERROR"
	case FATAL:
		return "FATAL"
	default:
		return "UNKNOWN"
	}
}

// processArgs processes arguments, converting non-primitives to JSON
// Returns a slice of string representations for primitive types and a slice of JSON strings for complex types
func processArgs(args ...any) ([]string, []string) {
	var primitives []string
	var jsonObjects []string

	for _, arg := range args {
		if isPrimitive(arg) {
			primitives = append(primitives, formatPrimitive(arg))
			continue
		}
		jsonBytes, err := json.MarshalIndent(arg, "", "  ")
		if err != nil {
			primitives = append(primitives, fmt.Sprintf("%v", arg))
			continue
		}
		primitives = append(primitives, fmt.Sprintf("[Object of type %s]", reflect.TypeOf(arg)))
		jsonObjects = append(jsonObjects, string(jsonBytes))
	}
	return primitives, jsonObjects
}

// floats are logged with 4 decimals, probabilities and rates need more than 2
func formatPrimitive(arg any) string {
	switch v := arg.(type) {
	case float32:
		return fmt.Sprintf("%.4f", v)
	case float64:
		return fmt.Sprintf("%.4f", v)
	case string:
		return v
	case error:
		return v.Error()
	case nil:
		return "nil"
	default:
		return fmt.Sprintf("%v", v)
	}
}

// isPrimitive checks if a value is a primitive type
func isPrimitive(v any) bool {
	if v == nil {
		return true
	}

	switch v.(type) {
	case string, bool, int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64, float32, float64, error:
		return true
	default:
		return false
	}
}

// Convenience methods using the default logger
func Debug(format string, v ...any) {
	defaultLog.log(DEBUG, format, v...)
}

func Info(format string, v ...any) {
	defaultLog.log(INFO, format, v...)
}

func Inform(format string, v ...any) {
	defaultLog.log(INFORM, format, v...)
}

func Highlight(format string, v ...any) {
	defaultLog.log(HIGHLIGHT, format, v...)
}

func Warn(format string, v ...any) {
	defaultLog.log(WARN, format, v...)
}

func Error(format string, v ...any) {
	defaultLog.log(ERROR, format, v...)
}

func Fatal(format string, v ...any) {
	defaultLog.log(FATAL, format, v...)
	os.Exit(1)
}
