package log

import (
	"bytes"
	"fmt"
	"io"
	"log"
	"math"
	"os"
	"time"
)

// Logger is the subset of log.Logger that packages depend on.
type Logger interface {
	Println(v ...interface{})
	Printf(format string, v ...interface{})
}

type Level string

const (
	LDebug    = Level("debug")
	LProgress = Level("progress")
	LStep     = Level("step")
	LInfo     = Level("info")
	LWarn     = Level("warn")
	LError    = Level("error")
	LFatal    = Level("fatal")
)

var DefaultLogger *log.Logger
var defaultFilter *levelFilter

func init() {
	defaultFilter = &levelFilter{
		start:    time.Now(),
		writer:   os.Stderr,
		levels:   []Level{LDebug, LProgress, LStep, LInfo, LWarn, LError, LFatal},
		minLevel: LProgress,
	}
	defaultFilter.rebuild()
	DefaultLogger = log.New(defaultFilter, "", 0)
}

// levelFilter drops lines below minLevel. The level is taken from
// a leading [level] tag in each line.
type levelFilter struct {
	start    time.Time
	writer   io.Writer
	levels   []Level
	minLevel Level
	dropped  map[Level]struct{}
}

func (f *levelFilter) rebuild() {
	dropped := make(map[Level]struct{})
	for _, level := range f.levels {
		if level == f.minLevel {
			break
		}
		dropped[level] = struct{}{}
	}
	f.dropped = dropped
}

func (f *levelFilter) Write(p []byte) (int, error) {
	level := LInfo
	if len(p) > 0 && p[0] == '[' {
		if y := bytes.IndexByte(p, ']'); y > 0 {
			level = Level(p[1:y])
		}
	}
	if _, drop := f.dropped[level]; drop {
		return 0, nil
	}

	// the log package guarantees single lines
	b := bytes.Buffer{}
	now := time.Now()
	d := now.Sub(f.start)
	fmt.Fprintf(&b, "[%s] %d:%02d:%02d ",
		now.Format(time.RFC3339),
		int(d.Hours()),
		int(math.Mod(d.Minutes(), 60)),
		int(math.Mod(d.Seconds(), 60)),
	)
	b.Write(p)
	return f.writer.Write(b.Bytes())
}

// SetMinLevel discards all messages below lvl.
func SetMinLevel(lvl Level) {
	defaultFilter.minLevel = lvl
	defaultFilter.rebuild()
}

// SetQuiet reduces output to warnings and errors.
func SetQuiet(quiet bool) {
	if quiet {
		SetMinLevel(LWarn)
	} else {
		SetMinLevel(LProgress)
	}
}

func Println(v ...interface{}) {
	DefaultLogger.Println(v...)
}

func Printf(format string, v ...interface{}) {
	DefaultLogger.Printf(format, v...)
}

func Warn(v ...interface{}) {
	DefaultLogger.Println(append([]interface{}{"[warn]"}, v...)...)
}

func Warnf(format string, v ...interface{}) {
	DefaultLogger.Printf("[warn] "+format, v...)
}

func Error(v ...interface{}) {
	DefaultLogger.Println(append([]interface{}{"[error]"}, v...)...)
}

func Errorf(format string, v ...interface{}) {
	DefaultLogger.Printf("[error] "+format, v...)
}

func Fatal(v ...interface{}) {
	DefaultLogger.Fatal(append([]interface{}{"[fatal]"}, v...)...)
}

func Fatalf(format string, v ...interface{}) {
	DefaultLogger.Fatalf("[fatal] "+format, v...)
}

// Step logs the start of a named step and returns a func that logs
// its completion with the elapsed time.
//
//	defer log.Step("Importing points")()
func Step(name string) func() {
	start := time.Now()
	Println("[step] Starting:", name)
	return func() {
		Printf("[step] Finished: %s in %s", name, time.Since(start))
	}
}
