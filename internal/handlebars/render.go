package handlebars

import (
	"io"
	"strings"

	"github.com/aescanero/dago-hbs-renderer/internal/value"
)

const partialBlockName = "@partial-block"

// renderState is the per-call state of one top-level render
type renderState struct {
	helpers  map[string]HelperFunc
	partials map[string]string
	logFn    LoggerFunc
	opt      RenderOptions
	root     value.Value

	// inline holds the partials declared by decorators during this call
	inline map[string]string

	// partialBlocks stacks the bodies of enclosing partial blocks.
	// blockLevel entries are visible as @partial-block.
	partialBlocks []string
	blockLevel    int

	depth    int
	maxDepth int
}

// scope is the lookup environment of a template section
type scope struct {
	ctx         value.Value
	data        *value.Object
	blockValues *value.Object
}

// render interprets text, writing the result into w
func (s *renderState) render(w *sink, text string, sc scope) error {
	s.depth++
	defer func() { s.depth-- }()
	if s.depth > s.maxDepth {
		return &RenderError{Err: ErrMaxDepth}
	}

	for text != "" {
		span, ok := findTag(text)
		if !ok {
			w.WriteString(text)
			break
		}
		t := parseTag(text[span.start:span.end])

		before := text[:span.litEnd]
		if t.trimLeft {
			before = strings.TrimRight(before, whitespace)
		}
		w.WriteString(before)
		text = text[span.end:]

		if t.escaped {
			w.WriteString(t.text[1:])
			continue
		}

		var err error
		if text, err = s.renderTag(w, t, text, sc); err != nil {
			return err
		}
		if w.err != nil {
			return w.err
		}
	}
	return nil
}

// renderTag dispatches one tag and returns the text left to render
func (s *renderState) renderTag(w *sink, t tag, rest string, sc scope) (string, error) {
	switch t.kind {
	case kindBlockOpen:
		return s.renderBlock(w, t, t.helper, rest, sc, false)
	case kindInverse:
		if t.sub == subCaret && t.helper != "" {
			return s.renderBlock(w, t, t.helper, rest, sc, false)
		}
		// A stray else outside any block
		return trimAfter(t, rest), nil
	case kindPartial:
		return s.renderPartial(w, t, rest, sc)
	case kindDecorator:
		return s.renderDecorator(w, t, rest, sc)
	case kindBlockClose:
		w.WriteString(diagUnmatchedClose(t.text))
		return trimAfter(t, rest), nil
	case kindComment:
		return trimAfter(t, rest), nil
	default:
		err := s.renderExpression(w, t, sc)
		return trimAfter(t, rest), err
	}
}

func trimAfter(t tag, rest string) string {
	if t.trimRight {
		return strings.TrimLeft(rest, whitespace)
	}
	return rest
}

// writeResult formats a helper result
func writeResult(w *sink, v value.Value, noEscape bool) {
	if v.IsUndefined() {
		return
	}
	formatValue(w, v, noEscape)
}

func (s *renderState) renderExpression(w *sink, t tag, sc scope) error {
	if t.helper == "" {
		return nil
	}
	noEscape := t.unescaped || s.opt.NoHTMLEscape

	// Registered helper
	if fn, ok := s.helpers[t.helper]; ok {
		return s.callHelper(w, fn, t.helper, t, sc, noEscape)
	}

	// Context value, called when it is a function
	expr := t.helper
	if isLiteralString(expr) {
		expr = unescapeString(expr)
	}
	v, found, err := s.eval(sc, expr, false)
	if err != nil {
		return wrapRenderError(err, "", t)
	}
	if found {
		if v.IsFunction() {
			args, _, err := s.setupArgs(sc, t.args)
			if err != nil {
				return wrapRenderError(err, expr, t)
			}
			if v, err = v.Call(args...); err != nil {
				return wrapRenderError(err, expr, t)
			}
		}
		writeResult(w, v, noEscape)
		return nil
	}
	if s.opt.Strict {
		return wrapRenderError(notDefined(expr), "", t)
	}

	return s.callHelper(w, s.helpers["helperMissing"], expr, t, sc, noEscape)
}

func (s *renderState) callHelper(w *sink, fn HelperFunc, name string, t tag, sc scope, noEscape bool) error {
	args, cb, err := s.setupArgs(sc, t.args)
	if err != nil {
		return wrapRenderError(err, name, t)
	}
	cb.Name = name
	cb.out = w
	res, err := fn(args, cb)
	if err != nil {
		return wrapRenderError(err, name, t)
	}
	writeResult(w, res, noEscape)
	return nil
}

// renderBlock renders a block whose body starts at rest. chained marks the
// {{else helper}} continuation of an enclosing block named name.
func (s *renderState) renderBlock(w *sink, t tag, name, rest string, sc scope, chained bool) (string, error) {
	m, diag := matchBlock(name, t, rest, chained)
	if diag != "" {
		w.WriteString(diag)
		return m.rest, nil
	}

	noArgs := t.args == ""
	fn, found := s.helpers[t.helper]
	if !found && !noArgs {
		v, ok, err := s.eval(sc, t.helper, false)
		if err != nil {
			return "", wrapRenderError(err, t.helper, t)
		}
		if ok && v.IsFunction() {
			fn, found = functionHelper(v), true
		}
	}

	argsText := t.args
	emulate := !found && noArgs
	if s.opt.Strict && !found && !t.raw {
		defined := false
		if emulate {
			_, defined, _ = s.eval(sc, t.helper, false)
		}
		if !defined {
			return "", wrapRenderError(notDefined(t.helper), "", t)
		}
	}
	switch {
	case t.raw && !found:
		// A raw block without a helper keeps its body verbatim
		w.WriteString(m.fn)
		return m.rest, nil
	case emulate:
		fn = s.helpers["blockHelperMissing"]
		argsText = t.helper
	case !found:
		fn = s.helpers["helperMissing"]
	}

	args, cb, err := s.setupArgs(sc, argsText)
	if err != nil {
		return "", wrapRenderError(err, t.helper, t)
	}
	cb.Name = t.helper
	cb.BlockParams = t.blockParams
	cb.out = w
	cb.block = true

	if t.raw {
		body := m.fn
		cb.fn = func(w *sink, _ value.Value, _ BlockOptions) error {
			w.WriteString(body)
			return nil
		}
	} else {
		cb.fn = s.section(m.fn, t.blockParams, sc)
		cb.inverse = s.inverseSection(m, name, t.blockParams, sc)
	}

	// {{^x}}...{{/x}} runs the helper with its sections exchanged
	if t.kind == kindInverse && !chained {
		cb.swap()
	}

	if emulate && len(args) > 0 && args[0].IsFunction() {
		if args[0], err = args[0].Call(sc.ctx); err != nil {
			return "", wrapRenderError(err, t.helper, t)
		}
	}

	res, err := fn(args, cb)
	if err != nil {
		return "", wrapRenderError(err, t.helper, t)
	}
	// Block helper results are never escaped
	writeResult(w, res, true)
	return m.rest, nil
}

// section returns the renderer of a block body
func (s *renderState) section(body string, names []string, sc scope) bodyFunc {
	return func(w *sink, ctx value.Value, opt BlockOptions) error {
		return s.render(w, body, s.childScope(sc, ctx, opt, names))
	}
}

// inverseSection returns the renderer of the else part of a block, which
// is either plain text or a chained {{else helper}} block
func (s *renderState) inverseSection(m blockMatch, name string, names []string, sc scope) bodyFunc {
	if !m.hasInverse {
		return func(*sink, value.Value, BlockOptions) error { return nil }
	}
	body, inv := m.inverse, m.inverseTag
	return func(w *sink, ctx value.Value, opt BlockOptions) error {
		child := s.childScope(sc, ctx, opt, names)
		if inv.helper == "" {
			return s.render(w, body, child)
		}
		s.depth++
		defer func() { s.depth-- }()
		if s.depth > s.maxDepth {
			return &RenderError{Err: ErrMaxDepth}
		}
		_, err := s.renderBlock(w, inv, name, body, child, true)
		return err
	}
}

// childScope builds the scope a helper requested for a section
func (s *renderState) childScope(sc scope, ctx value.Value, opt BlockOptions, names []string) scope {
	child := scope{ctx: ctx, data: sc.data, blockValues: sc.blockValues}
	if opt.Data != nil {
		child.data = opt.Data
	}
	if len(names) > 0 && len(opt.BlockParams) > 0 {
		bv := value.NewFrame(sc.blockValues)
		for i, n := range names {
			if i < len(opt.BlockParams) {
				bv.Set(n, opt.BlockParams[i])
			}
		}
		child.blockValues = bv
	}
	return child
}

// functionHelper adapts a function value found in the context
func functionHelper(fn value.Value) HelperFunc {
	return func(args []value.Value, cb *Callback) (value.Value, error) {
		return fn.Call(args...)
	}
}

// partialName resolves the name a partial tag refers to
func (s *renderState) partialName(t tag, sc scope) (string, error) {
	name := t.helper
	switch {
	case strings.HasPrefix(name, "("):
		v, _, err := s.eval(sc, name, true)
		if err != nil {
			return "", err
		}
		if v.IsString() {
			return v.Str(), nil
		}
		return name, nil
	case len(name) >= 2 && name[0] == '[' && name[len(name)-1] == ']':
		return name[1 : len(name)-1], nil
	case isLiteralString(name):
		return unescapeString(name), nil
	}
	return name, nil
}

// lookupPartial finds partial text, decorators first
func (s *renderState) lookupPartial(name string) (string, bool) {
	if name == partialBlockName && s.blockLevel > 0 {
		return s.partialBlocks[s.blockLevel-1], true
	}
	if text, ok := s.inline[name]; ok {
		return text, true
	}
	text, ok := s.partials[name]
	return text, ok
}

func (s *renderState) renderPartial(w *sink, t tag, rest string, sc scope) (string, error) {
	name, err := s.partialName(t, sc)
	if err != nil {
		return "", wrapRenderError(err, "", t)
	}

	isBlock := t.sub == subBlock
	var fallback string
	if isBlock {
		m, diag := matchBlock(t.helper, t, rest, false)
		if diag != "" {
			w.WriteString(diag)
			return m.rest, nil
		}
		fallback, rest = m.fn, m.rest
	} else {
		rest = trimAfter(t, rest)
	}

	content, found := s.lookupPartial(name)
	if !found {
		if !isBlock {
			w.WriteString(diagUndefinedPartial(t.text))
			return rest, nil
		}
		content = fallback
	}

	if isBlock {
		// Inline partials declared in the block body become visible to the partial
		if err := s.render(newSink(io.Discard), fallback, sc); err != nil {
			return "", err
		}
		saved, level := s.partialBlocks, s.blockLevel
		s.partialBlocks = append(s.partialBlocks[:level:level], fallback)
		s.blockLevel++
		defer func() { s.partialBlocks, s.blockLevel = saved, level }()
	}

	child, err := s.partialScope(t, sc)
	if err != nil {
		return "", wrapRenderError(err, "", t)
	}

	// The body of a partial block sees the partial block enclosing its caller
	if name == partialBlockName && s.blockLevel > 0 {
		saved, level := s.partialBlocks, s.blockLevel
		s.blockLevel--
		defer func() { s.partialBlocks, s.blockLevel = saved, level }()
	}

	if err := s.render(w, content, child); err != nil {
		return "", err
	}
	return rest, nil
}

// partialScope builds the context of a partial from its arguments
func (s *renderState) partialScope(t tag, sc scope) (scope, error) {
	child := scope{ctx: sc.ctx, data: sc.data}
	if s.opt.ExplicitPartialContext {
		child.ctx = value.ObjectOf(value.NewObject())
	}
	replaced := false
	var hash *value.Object

	for _, expr := range splitExprs(t.args) {
		key, val, isHash := splitKeyValue(expr)
		if !isHash {
			if replaced {
				return scope{}, invalidArguments("partial %q accepts one context argument", t.helper)
			}
			v, found, err := s.eval(sc, expr, true)
			if err != nil {
				return scope{}, err
			}
			if found {
				child.ctx = v
			}
			data := value.NewFrame(sc.data)
			data.Set("contextPath", value.String(appendContextPath(sc.data.Find("contextPath"), expr)))
			child.data = data
			replaced = true
			continue
		}

		v, _, err := s.eval(sc, val, true)
		if err != nil {
			return scope{}, err
		}
		if hash == nil {
			hash = value.NewObject()
		}
		hash.Set(key, v)
	}

	if hash != nil {
		overlay := value.NewFrame(child.ctx.Object())
		hash.Range(func(k string, v value.Value) bool {
			overlay.Set(k, v)
			return true
		})
		child.ctx = value.ObjectOf(overlay)
	}
	return child, nil
}

func (s *renderState) renderDecorator(w *sink, t tag, rest string, sc scope) (string, error) {
	var body string
	if t.sub == subBlock {
		m, diag := matchBlock(t.helper, t, rest, false)
		if diag != "" {
			w.WriteString(diag)
			return m.rest, nil
		}
		body, rest = m.fn, m.rest
	} else {
		rest = trimAfter(t, rest)
	}

	if t.helper != "inline" {
		w.WriteString(diagUndefinedDecorator(t.helper, t.text))
		return rest, nil
	}

	expr, _, _ := nextExpr(t.args)
	v, _, err := s.eval(sc, expr, true)
	if err != nil {
		return "", wrapRenderError(err, t.helper, t)
	}
	if !v.IsString() {
		w.WriteString(diagInvalidDecorator(t.args, t.text))
		return rest, nil
	}
	s.inline[v.Str()] = strings.TrimRight(body, whitespace)
	return rest, nil
}
