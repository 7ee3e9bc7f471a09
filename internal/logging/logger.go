package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	charm "github.com/charmbracelet/log"
)

// LogLevel определяет уровни логирования
type LogLevel int

const (
	TRACE LogLevel = iota
	DEBUG
	INFO
	WARN
	ERROR
)

// String возвращает строковое представление уровня логирования
func (l LogLevel) String() string {
	switch l {
	case TRACE:
		return "TRACE"
	case DEBUG:
		return "DEBUG"
	case INFO:
		return "INFO"
	case WARN:
		return "WARN"
	case ERROR:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// ParseLevel разбирает уровень из строки конфигурации или переменной окружения
func ParseLevel(s string) (LogLevel, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "TRACE":
		return TRACE, nil
	case "DEBUG":
		return DEBUG, nil
	case "", "INFO":
		return INFO, nil
	case "WARN", "WARNING":
		return WARN, nil
	case "ERROR":
		return ERROR, nil
	default:
		return INFO, fmt.Errorf("неизвестный уровень логирования %q", s)
	}
}

// charmLevel переводит уровень в уровень консольного бэкенда
func (l LogLevel) charmLevel() charm.Level {
	switch l {
	case TRACE, DEBUG:
		return charm.DebugLevel
	case WARN:
		return charm.WarnLevel
	case ERROR:
		return charm.ErrorLevel
	default:
		return charm.InfoLevel
	}
}

// TimeFormat — формат метки времени в файле лога
const TimeFormat = "2006-01-02 15:04:05.000"

// Options описывает параметры логгера
type Options struct {
	Component    string    // Имя компонента (префикс в консоли)
	Dir          string    // Директория файла лога; пусто — без файла
	File         string    // Имя файла лога
	ConsoleLevel LogLevel  // Минимальный уровень для консоли
	FileLevel    LogLevel  // Минимальный уровень для файла
	Console      io.Writer // Куда писать консольный вывод; nil — stderr
}

// Logger пишет в консоль через charmbracelet/log и в файл только дозаписью,
// по одной строке "[время] [уровень] сообщение" на запись
type Logger struct {
	component       string
	consoleLogger   *charm.Logger
	file            *os.File
	fileMu          sync.Mutex
	path            string
	minConsoleLevel LogLevel
	minFileLevel    LogLevel
}

// New создаёт логгер по параметрам
func New(opts Options) (*Logger, error) {
	console := opts.Console
	if console == nil {
		console = os.Stderr
	}

	consoleLogger := charm.NewWithOptions(console, charm.Options{
		ReportTimestamp: true,
		TimeFormat:      time.Kitchen,
		Prefix:          opts.Component,
	})
	consoleLogger.SetLevel(opts.ConsoleLevel.charmLevel())

	logger := &Logger{
		component:       opts.Component,
		consoleLogger:   consoleLogger,
		minConsoleLevel: opts.ConsoleLevel,
		minFileLevel:    opts.FileLevel,
	}

	if opts.Dir == "" || opts.File == "" {
		return logger, nil
	}

	if err := os.MkdirAll(opts.Dir, 0755); err != nil {
		return nil, fmt.Errorf("ошибка создания директории логов %s: %w", opts.Dir, err)
	}

	path := filepath.Join(opts.Dir, opts.File)
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, fmt.Errorf("ошибка открытия файла логов %s: %w", path, err)
	}

	logger.file = file
	logger.path = path
	return logger, nil
}

// NewLogger создаёт логгер компонента с файлом <component>.log в директории логов менеджера
func NewLogger(component string) (*Logger, error) {
	dir := GetLoggerManager().Dir()
	return New(Options{
		Component:    component,
		Dir:          dir,
		File:         component + ".log",
		ConsoleLevel: INFO,
		FileLevel:    DEBUG,
	})
}

// Path возвращает путь к файлу лога (пусто, если файла нет)
func (l *Logger) Path() string {
	return l.path
}

// Close закрывает файл лога
func (l *Logger) Close() error {
	l.fileMu.Lock()
	defer l.fileMu.Unlock()

	if l.file == nil {
		return nil
	}
	err := l.file.Close()
	l.file = nil
	return err
}

// log записывает сообщение в консоль и в файл по порогам уровней
func (l *Logger) log(level LogLevel, format string, args ...interface{}) {
	message := fmt.Sprintf(format, args...)

	l.fileMu.Lock()
	defer l.fileMu.Unlock()

	if level >= l.minConsoleLevel {
		switch level {
		case TRACE, DEBUG:
			l.consoleLogger.Debug(message)
		case INFO:
			l.consoleLogger.Info(message)
		case WARN:
			l.consoleLogger.Warn(message)
		default:
			l.consoleLogger.Error(message)
		}
	}

	if level < l.minFileLevel || l.file == nil {
		return
	}
	line := fmt.Sprintf("[%s] [%s] %s\n", time.Now().Format(TimeFormat), level, message)
	// Ошибка записи в лог не должна ронять игру
	_, _ = l.file.WriteString(line)
}

// Trace логирует сообщение уровня TRACE
func (l *Logger) Trace(format string, args ...interface{}) { l.log(TRACE, format, args...) }

// Debug логирует сообщение уровня DEBUG
func (l *Logger) Debug(format string, args ...interface{}) { l.log(DEBUG, format, args...) }

// Info логирует сообщение уровня INFO
func (l *Logger) Info(format string, args ...interface{}) { l.log(INFO, format, args...) }

// Warn логирует сообщение уровня WARN
func (l *Logger) Warn(format string, args ...interface{}) { l.log(WARN, format, args...) }

// Error логирует сообщение уровня ERROR
func (l *Logger) Error(format string, args ...interface{}) { l.log(ERROR, format, args...) }

var (
	defaultMu     sync.RWMutex
	defaultLogger = mustConsoleLogger()
)

func mustConsoleLogger() *Logger {
	logger, _ := New(Options{Component: "sandbox", ConsoleLevel: INFO, FileLevel: ERROR})
	return logger
}

// InitDefaultLogger заменяет глобальный логгер. Переменная LOG_LEVEL
// переопределяет консольный уровень.
func InitDefaultLogger(opts Options) error {
	if env := os.Getenv("LOG_LEVEL"); env != "" {
		level, err := ParseLevel(env)
		if err != nil {
			return err
		}
		opts.ConsoleLevel = level
	}

	logger, err := New(opts)
	if err != nil {
		return err
	}

	defaultMu.Lock()
	previous := defaultLogger
	defaultLogger = logger
	defaultMu.Unlock()

	if previous != nil {
		_ = previous.Close()
	}
	return nil
}

// CloseDefaultLogger закрывает файл глобального логгера
func CloseDefaultLogger() error {
	return Default().Close()
}

// Default возвращает глобальный логгер
func Default() *Logger {
	defaultMu.RLock()
	defer defaultMu.RUnlock()
	return defaultLogger
}

// Trace логирует сообщение уровня TRACE в глобальный логгер
func Trace(format string, args ...interface{}) { Default().log(TRACE, format, args...) }

// Debug логирует сообщение уровня DEBUG в глобальный логгер
func Debug(format string, args ...interface{}) { Default().log(DEBUG, format, args...) }

// Info логирует сообщение уровня INFO в глобальный логгер
func Info(format string, args ...interface{}) { Default().log(INFO, format, args...) }

// Warn логирует сообщение уровня WARN в глобальный логгер
func Warn(format string, args ...interface{}) { Default().log(WARN, format, args...) }

// Error логирует сообщение уровня ERROR в глобальный логгер
func Error(format string, args ...interface{}) { Default().log(ERROR, format, args...) }
