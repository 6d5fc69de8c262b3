package handlebars

import (
	"io"
	"strconv"
	"strings"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/aescanero/dago-hbs-renderer/internal/value"
)

// DefaultMaxDepth bounds nested block, partial and helper re-entry
const DefaultMaxDepth = 256

// HelperFunc is a helper implementation.
//
// args holds the positional arguments. The returned value is formatted into
// the output: safe strings unescaped, undefined not at all. Block helpers
// usually write through the callback and return undefined.
type HelperFunc func(args []value.Value, cb *Callback) (value.Value, error)

// LoggerFunc receives the output of the log helper
type LoggerFunc func(level value.Value, args []value.Value)

// RenderOptions controls a single render call
type RenderOptions struct {
	// NoHTMLEscape disables escaping of {{expr}} output
	NoHTMLEscape bool
	// Strict fails the render with ErrNotDefined when an expression or a
	// block name resolves to neither a helper nor a defined value. Helper
	// arguments are never strict.
	Strict bool
	// ExplicitPartialContext renders partials without a context argument
	// against an empty object instead of the caller's context
	ExplicitPartialContext bool
	// Data is the initial data frame, visible as @name
	Data *value.Object
	// Partials are visible to this render only and shadow registered partials
	Partials map[string]string
}

// Engine owns the helpers, partials and logger used to render templates
type Engine struct {
	mu       sync.RWMutex
	helpers  map[string]HelperFunc
	partials map[string]string
	logFn    LoggerFunc
	logger   *zap.Logger
	maxDepth int
}

// Option configures an Engine
type Option func(*Engine)

// WithLogger sets the logger used by the default log helper sink
func WithLogger(logger *zap.Logger) Option {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithMaxDepth sets the recursion limit
func WithMaxDepth(depth int) Option {
	return func(e *Engine) {
		if depth > 0 {
			e.maxDepth = depth
		}
	}
}

// New creates an engine with the built-in helpers registered
func New(opts ...Option) *Engine {
	e := &Engine{
		helpers:  make(map[string]HelperFunc),
		partials: make(map[string]string),
		logger:   zap.NewNop(),
		maxDepth: DefaultMaxDepth,
	}
	for _, opt := range opts {
		opt(e)
	}
	e.logFn = e.defaultLog
	registerBuiltins(e)
	return e
}

// RegisterHelper adds or replaces a helper
func (e *Engine) RegisterHelper(name string, fn HelperFunc) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.helpers[name] = fn
}

// UnregisterHelper removes a helper. helperMissing and blockHelperMissing
// revert to their defaults instead.
func (e *Engine) UnregisterHelper(name string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	delete(e.helpers, name)

	// Re-register mandatory helpers
	switch name {
	case "helperMissing":
		e.helpers[name] = helperMissing
	case "blockHelperMissing":
		e.helpers[name] = blockHelperMissing
	}
}

// Helper returns a registered helper
func (e *Engine) Helper(name string) (HelperFunc, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	fn, ok := e.helpers[name]
	return fn, ok
}

// RegisterPartial adds or replaces a partial
func (e *Engine) RegisterPartial(name, text string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.partials[name] = text
}

// UnregisterPartial removes a partial
func (e *Engine) UnregisterPartial(name string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	delete(e.partials, name)
}

// Partial returns the text of a registered partial
func (e *Engine) Partial(name string) (string, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	text, ok := e.partials[name]
	return text, ok
}

// PartialCount returns the number of registered partials
func (e *Engine) PartialCount() int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return len(e.partials)
}

// RegisterLogger replaces the sink of the log helper. A nil fn restores the default.
func (e *Engine) RegisterLogger(fn LoggerFunc) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if fn == nil {
		fn = e.defaultLog
	}
	e.logFn = fn
}

// Render renders text against ctx
func (e *Engine) Render(text string, ctx value.Value, opt RenderOptions) (string, error) {
	var sb strings.Builder
	if err := e.RenderTo(&sb, text, ctx, opt); err != nil {
		return "", err
	}
	return sb.String(), nil
}

// RenderTo renders text against ctx into w
func (e *Engine) RenderTo(w io.Writer, text string, ctx value.Value, opt RenderOptions) error {
	s := e.newState(ctx, opt)

	data := value.NewFrame(opt.Data)
	if !data.Exists("root") {
		data.Set("root", ctx)
	}

	out := newSink(w)
	if err := s.render(out, text, scope{ctx: ctx, data: data}); err != nil {
		return err
	}
	return out.err
}

// newState snapshots the registry so helpers may register during a render
func (e *Engine) newState(ctx value.Value, opt RenderOptions) *renderState {
	e.mu.RLock()
	defer e.mu.RUnlock()

	s := &renderState{
		helpers:  make(map[string]HelperFunc, len(e.helpers)),
		partials: make(map[string]string, len(e.partials)),
		inline:   make(map[string]string, len(opt.Partials)),
		logFn:    e.logFn,
		opt:      opt,
		root:     ctx,
		maxDepth: e.maxDepth,
	}
	for name, fn := range e.helpers {
		s.helpers[name] = fn
	}
	for name, text := range e.partials {
		s.partials[name] = text
	}
	for name, text := range opt.Partials {
		s.inline[name] = text
	}
	return s
}

var logLevels = []string{"debug", "info", "warn", "error"}

// parseLogLevel maps a log helper level to its index in logLevels
func parseLogLevel(level value.Value) (int, bool) {
	if level.IsInt() {
		return int(level.Int()), true
	}
	if !level.IsString() {
		return 0, false
	}
	name := strings.ToLower(level.Str())
	for i, l := range logLevels {
		if l == name {
			return i, true
		}
	}
	if i, err := strconv.Atoi(name); err == nil {
		return i, true
	}
	return 0, false
}

func (e *Engine) defaultLog(level value.Value, args []value.Value) {
	idx, ok := parseLogLevel(level)
	if !ok || idx < 0 || idx >= len(logLevels) {
		return
	}
	lvl := []zapcore.Level{zapcore.DebugLevel, zapcore.InfoLevel, zapcore.WarnLevel, zapcore.ErrorLevel}[idx]

	parts := make([]string, 0, len(args))
	for _, a := range args {
		parts = append(parts, a.String())
	}
	if ce := e.logger.Check(lvl, strings.Join(parts, " ")); ce != nil {
		ce.Write(zap.String("source", "template"))
	}
}
