package logger

import (
	"fmt"
	"sort"
	"strings"

	"github.com/fatih/color"
	"go.uber.org/zap/buffer"
	"go.uber.org/zap/zapcore"
)

var _bufferPool = buffer.NewPool()

// contextKeys are rendered as a compact prefix, in this order, instead of as
// trailing key=value pairs.
var contextKeys = []struct {
	key   string
	short string
}{
	{"run_id", "R"},
	{"step", "S"},
	{"action", "A"},
	{"component", "C"},
}

var levelColors = map[string]*color.Color{
	"DEBUG":   color.New(color.FgMagenta),
	"SUCCESS": color.New(color.FgGreen),
	"WARN":    color.New(color.FgYellow),
	"ERROR":   color.New(color.FgRed),
	"FAIL":    color.New(color.FgRed, color.Bold),
	"FATAL":   color.New(color.FgRed, color.Bold),
	"PANIC":   color.New(color.FgCyan),
}

// consoleEncoder renders "<time> [R:..][S:..] [LEVEL] message k=v". Fields
// added through With are collected in the embedded map encoder.
type consoleEncoder struct {
	*zapcore.MapObjectEncoder
	opts Options
}

// NewConsoleEncoder creates the console encoder. Colors are applied only when
// opts.ColorConsole is set and the terminal supports them.
func NewConsoleEncoder(opts Options) zapcore.Encoder {
	return &consoleEncoder{
		MapObjectEncoder: zapcore.NewMapObjectEncoder(),
		opts:             opts,
	}
}

func (enc *consoleEncoder) Clone() zapcore.Encoder {
	clone := zapcore.NewMapObjectEncoder()
	for k, v := range enc.Fields {
		clone.Fields[k] = v
	}
	return &consoleEncoder{MapObjectEncoder: clone, opts: enc.opts}
}

func (enc *consoleEncoder) EncodeEntry(ent zapcore.Entry, fields []zapcore.Field) (*buffer.Buffer, error) {
	all := zapcore.NewMapObjectEncoder()
	for k, v := range enc.Fields {
		all.Fields[k] = v
	}
	for _, f := range fields {
		f.AddTo(all)
	}

	label := strings.ToUpper(ent.Level.String())
	if custom, ok := all.Fields[customLevelKey].(string); ok && custom != "" {
		label = custom
	}
	delete(all.Fields, customLevelKey)

	line := _bufferPool.Get()
	line.AppendString(ent.Time.Format(enc.opts.TimestampFormat))
	line.AppendString(" ")

	var prefix strings.Builder
	for _, ck := range contextKeys {
		v, ok := all.Fields[ck.key]
		if !ok {
			continue
		}
		delete(all.Fields, ck.key)
		s := fmt.Sprint(v)
		if ck.key == "run_id" && len(s) > 8 {
			s = s[:8]
		}
		fmt.Fprintf(&prefix, "[%s:%s]", ck.short, s)
	}
	if prefix.Len() > 0 {
		line.AppendString(prefix.String())
		line.AppendString(" ")
	}

	line.AppendString(enc.levelString(label))
	line.AppendString(" ")

	if ent.Caller.Defined && enc.opts.ConsoleLevel == DebugLevel {
		line.AppendString(ent.Caller.TrimmedPath())
		line.AppendString(": ")
	}
	line.AppendString(ent.Message)

	keys := make([]string, 0, len(all.Fields))
	for k := range all.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		line.AppendString(" ")
		line.AppendString(k)
		line.AppendString("=")
		appendValue(line, all.Fields[k])
	}

	line.AppendString("\n")
	return line, nil
}

func (enc *consoleEncoder) levelString(label string) string {
	text := "[" + label + "]"
	if !enc.opts.ColorConsole {
		return text
	}
	if c, ok := levelColors[label]; ok {
		return c.Sprint(text)
	}
	return text
}

func appendValue(line *buffer.Buffer, v interface{}) {
	switch val := v.(type) {
	case string:
		if val == "" || strings.ContainsAny(val, " \t\n\"=") {
			fmt.Fprintf(line, "%q", val)
		} else {
			line.AppendString(val)
		}
	case bool:
		line.AppendBool(val)
	case int64:
		line.AppendInt(val)
	case float64:
		line.AppendFloat(val, 64)
	default:
		fmt.Fprintf(line, "%v", val)
	}
}
