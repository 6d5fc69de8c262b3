package handlebars

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aescanero/dago-hbs-renderer/internal/value"
)

func renderString(t *testing.T, e *Engine, tmpl, ctx string) string {
	t.Helper()
	out, err := e.Render(tmpl, mustJSON(t, ctx), RenderOptions{})
	require.NoError(t, err)
	return out
}

func Test_Render(t *testing.T) {
	tests := []struct {
		name     string
		template string
		context  string
		expected string
	}{
		// Expressions
		{name: "plain text", template: "Hello, world", context: `{}`, expected: "Hello, world"},
		{name: "escaped expression", template: "{{x}}", context: `{"x": "<b>"}`, expected: "&lt;b&gt;"},
		{name: "triple braces", template: "{{{x}}}", context: `{"x": "<b>"}`, expected: "<b>"},
		{name: "ampersand", template: "{{&x}}", context: `{"x": "<b>"}`, expected: "<b>"},
		{name: "nested path", template: "{{a.b.c}}", context: `{"a": {"b": {"c": "deep"}}}`, expected: "deep"},
		{name: "array index", template: "{{items.1}}", context: `{"items": ["a", "b"]}`, expected: "b"},
		{name: "missing value", template: "[{{nope}}]", context: `{}`, expected: "[]"},
		{name: "null value", template: "[{{n}}]", context: `{"n": null}`, expected: "[]"},
		{name: "numbers", template: "{{i}} {{f}} {{z}}", context: `{"i": 42, "f": 1.5, "z": 0}`, expected: "42 1.5 0"},
		{name: "booleans", template: "{{t}} {{f}}", context: `{"t": true, "f": false}`, expected: "true false"},
		{name: "arrays join with commas", template: "{{items}}", context: `{"items": [1, 2, 3]}`, expected: "1,2,3"},
		{name: "objects", template: "{{o}}", context: `{"o": {"a": 1}}`, expected: "[object Object]"},
		{name: "quoted key lookup", template: `{{"foo bar"}}`, context: `{"foo bar": "spaced"}`, expected: "spaced"},
		{name: "bracket segment", template: "{{[foo bar]}}", context: `{"foo bar": "spaced"}`, expected: "spaced"},
		{name: "escaped tag", template: `\{{x}}`, context: `{"x": 1}`, expected: "{{x}}"},
		{name: "doubly escaped tag", template: `\\{{x}}`, context: `{"x": 1}`, expected: `\1`},
		{name: "comments", template: "a{{! c }}b{{!-- {{x}} --}}c", context: `{}`, expected: "abc"},
		{name: "unbalanced braces", template: "a {{x", context: `{"x": 1}`, expected: "a {{x"},

		// Whitespace control
		{name: "tilde on both sides", template: "a {{~b~}} c", context: `{"b": 1}`, expected: "a1c"},
		{name: "tilde around a body", template: "{{#if a~}} x {{~/if}}", context: `{"a": true}`, expected: "x"},
		{name: "tilde on a comment", template: "a  {{~! c ~}}  b", context: `{}`, expected: "ab"},

		// Sections
		{name: "truthy section", template: "{{#x}}yes{{/x}}", context: `{"x": true}`, expected: "yes"},
		{name: "falsy section", template: "{{#x}}yes{{else}}no{{/x}}", context: `{"x": false}`, expected: "no"},
		{name: "nested same-name sections", template: "{{#x}}{{#x}}A{{/x}}{{/x}}", context: `{"x": {"x": "ignored"}}`, expected: "A"},
		{name: "section over array", template: "{{#items}}<{{.}}>{{/items}}", context: `{"items": [1, 2]}`, expected: "<1><2>"},
		{name: "section over object", template: "{{#o}}{{a}}{{/o}}", context: `{"o": {"a": "in"}}`, expected: "in"},
		{name: "inverted empty array", template: "{{^items}}none{{/items}}", context: `{"items": []}`, expected: "none"},
		{name: "inverted filled array", template: "{{^items}}none{{/items}}", context: `{"items": [1]}`, expected: ""},
		{name: "inverted missing key", template: "{{^missing}}none{{/missing}}", context: `{}`, expected: "none"},

		// Built-in helpers
		{name: "if true", template: "{{#if a}}A{{else}}B{{/if}}", context: `{"a": 1}`, expected: "A"},
		{name: "if empty array", template: "{{#if a}}A{{else}}B{{/if}}", context: `{"a": []}`, expected: "B"},
		{name: "if zero", template: "{{#if n}}Z{{/if}}", context: `{"n": 0}`, expected: ""},
		{name: "if includeZero", template: "{{#if n includeZero=true}}Z{{/if}}", context: `{"n": 0}`, expected: "Z"},
		{name: "else if first", template: "{{#if a}}A{{else if b}}B{{else}}C{{/if}}", context: `{"a": true}`, expected: "A"},
		{name: "else if second", template: "{{#if a}}A{{else if b}}B{{else}}C{{/if}}", context: `{"b": true}`, expected: "B"},
		{name: "else if last", template: "{{#if a}}A{{else if b}}B{{else}}C{{/if}}", context: `{}`, expected: "C"},
		{name: "else unless", template: "{{#if a}}A{{else unless b}}U{{/if}}", context: `{}`, expected: "U"},
		{name: "unless", template: "{{#unless a}}N{{else}}Y{{/unless}}", context: `{"a": false}`, expected: "N"},
		{name: "with", template: "{{#with p}}{{first}} {{last}}{{/with}}", context: `{"p": {"first": "Ada", "last": "L"}}`, expected: "Ada L"},
		{name: "with missing", template: "{{#with missing}}A{{else}}B{{/with}}", context: `{}`, expected: "B"},
		{name: "with block param", template: "{{#with p as |person|}}{{person.first}}{{/with}}", context: `{"p": {"first": "Ada"}}`, expected: "Ada"},
		{name: "each array", template: "{{#each items}}{{@index}}={{this}};{{/each}}", context: `{"items": ["a", "b"]}`, expected: "0=a;1=b;"},
		{
			name:     "each object",
			template: "{{#each o}}{{@key}}={{this}}{{#if @first}}F{{/if}}{{#if @last}}L{{/if}};{{/each}}",
			context:  `{"o": {"b": 1, "a": 2}}`,
			expected: "b=1F;a=2L;",
		},
		{name: "each empty", template: "{{#each items}}x{{else}}empty{{/each}}", context: `{"items": []}`, expected: "empty"},
		{name: "each block params", template: "{{#each items as |item i|}}{{i}}:{{item.n}} {{/each}}", context: `{"items": [{"n": "a"}, {"n": "b"}]}`, expected: "0:a 1:b "},
		{name: "each parent", template: "{{#each items}}{{@index}}{{../title}}{{/each}}", context: `{"title": "T", "items": ["a", "b"]}`, expected: "0T1T"},
		{name: "parent from with", template: "{{#with a}}{{../root}}{{/with}}", context: `{"a": {}, "root": "R"}`, expected: "R"},
		{name: "root data", template: "{{#each items}}{{@root.title}}{{/each}}", context: `{"title": "T", "items": [1]}`, expected: "T"},
		{name: "lookup index", template: "{{lookup items 1}}", context: `{"items": ["a", "b"]}`, expected: "b"},
		{name: "lookup by variable", template: "{{#each keys}}{{lookup ../o this}}{{/each}}", context: `{"keys": ["x", "y"], "o": {"x": 1, "y": 2}}`, expected: "12"},
		{name: "lookup falsy object", template: "[{{lookup missing 1}}]", context: `{}`, expected: "[]"},

		// Raw blocks
		{name: "raw block", template: "{{{{raw}}}}{{x}}{{{{/raw}}}}", context: `{"x": 1}`, expected: "{{x}}"},
		{name: "raw block keeps newlines", template: "{{{{raw}}}}\n x\n{{{{/raw}}}}", context: `{}`, expected: "\n x\n"},

		// Standalone lines
		{name: "standalone block lines", template: "{{#each items}}\n  <li>{{.}}</li>\n{{/each}}\n", context: `{"items": [1, 2]}`, expected: "  <li>1</li>\n  <li>2</li>\n\n"},

		// Inline diagnostics
		{name: "mismatched close", template: "{{#x}}a{{/y}}b", context: `{}`, expected: `[mismatched closing tag: "{{/y}}" for block name "x"]b`},
		{name: "missing close", template: "{{#x}}a", context: `{}`, expected: `[missing closing tag for block "x"]`},
		{name: "unmatched close", template: "a{{/x}}b", context: `{}`, expected: `a[unmatched closing tag "{{/x}}"]b`},
		{name: "stray else", template: "a{{else}}b", context: `{}`, expected: "ab"},
		{name: "undefined partial", template: "{{> nope}}!", context: `{}`, expected: `[undefined partial in "{{> nope}}"]!`},
		{name: "undefined decorator", template: "{{*foo}}", context: `{}`, expected: `[undefined decorator "foo" in "{{*foo}}"]`},
		{name: "undefined block decorator", template: "{{#*foo}}body{{/foo}}after", context: `{}`, expected: `[undefined decorator "foo" in "{{#*foo}}"]after`},
		{name: "invalid decorator", template: "{{#*inline foo}}x{{/inline}}", context: `{}`, expected: `[invalid decorator expression "foo" in "{{#*inline foo}}"]`},

		// Inline partials
		{name: "inline partial", template: `{{#*inline "row"}}<{{.}}>{{/inline}}{{#each items}}{{> row}}{{/each}}`, context: `{"items": [1, 2]}`, expected: "<1><2>"},
		{name: "dynamic partial name", template: `{{#*inline "p"}}P{{/inline}}{{> (lookup . "which")}}`, context: `{"which": "p"}`, expected: "P"},
		{name: "partial block fallback", template: "{{#> missing}}FB {{name}}{{/missing}}", context: `{"name": "n"}`, expected: "FB n"},
	}

	e := New()
	for _, tt := range tests {
		t.Run("should render "+tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, renderString(t, e, tt.template, tt.context))
		})
	}
}

func Test_Render_partials(t *testing.T) {
	e := New()
	e.RegisterPartial("p", "{{a}}-{{b}}")
	e.RegisterPartial("layout", "<main>{{> @partial-block}}</main>")
	e.RegisterPartial("sibling", "[{{> @partial-block}}]")
	e.RegisterPartial("card", `{{#> layout}}{{title}}{{/layout}}`)

	t.Run("should render a partial in the current context", func(t *testing.T) {
		assert.Equal(t, "1-2", renderString(t, e, "{{> p}}", `{"a": 1, "b": 2}`))
	})

	t.Run("should overlay hash arguments on the context", func(t *testing.T) {
		assert.Equal(t, "1-2", renderString(t, e, "{{> p a=1}}", `{"b": 2}`))
	})

	t.Run("should replace the context with a positional argument", func(t *testing.T) {
		assert.Equal(t, "x-y", renderString(t, e, "{{> p obj}}", `{"obj": {"a": "x", "b": "y"}, "a": "no"}`))
	})

	t.Run("should accept quoted and bracketed names", func(t *testing.T) {
		assert.Equal(t, "1-2", renderString(t, e, `{{> "p"}}`, `{"a": 1, "b": 2}`))
		assert.Equal(t, "1-2", renderString(t, e, `{{> [p]}}`, `{"a": 1, "b": 2}`))
	})

	t.Run("should pass the block body as the partial block", func(t *testing.T) {
		assert.Equal(t, "<main>Hi Bob</main>", renderString(t, e, "{{#> layout}}Hi {{name}}{{/layout}}", `{"name": "Bob"}`))
	})

	t.Run("should nest partial blocks", func(t *testing.T) {
		assert.Equal(t, "<main>T</main>", renderString(t, e, "{{> card}}", `{"title": "T"}`))
	})

	t.Run("should not leak the partial block into a sibling partial", func(t *testing.T) {
		out := renderString(t, e, "{{#> missing}}FB{{/missing}}{{> sibling}}", `{}`)
		assert.Equal(t, `FB[[undefined partial in "{{> @partial-block}}"]]`, out)
	})

	t.Run("should expose inline partials of the block body to the partial", func(t *testing.T) {
		e.RegisterPartial("frame", "<{{> slot}}>")
		out := renderString(t, e, `{{#> frame}}{{#*inline "slot"}}S{{/inline}}{{/frame}}`, `{}`)
		assert.Equal(t, "<S>", out)
	})

	t.Run("should let render partials shadow registered ones", func(t *testing.T) {
		out, err := e.Render("{{> p}}", mustJSON(t, `{}`), RenderOptions{Partials: map[string]string{"p": "local"}})
		require.NoError(t, err)
		assert.Equal(t, "local", out)
	})

	t.Run("should reject two context arguments", func(t *testing.T) {
		_, err := e.Render("{{> p a b}}", mustJSON(t, `{}`), RenderOptions{})
		assert.ErrorIs(t, err, ErrInvalidArguments)
	})
}

func Test_Render_helpers(t *testing.T) {
	e := New()
	e.RegisterHelper("add", func(args []value.Value, cb *Callback) (value.Value, error) {
		var sum int64
		for _, a := range args {
			sum += a.Int()
		}
		return value.Int(sum), nil
	})
	e.RegisterHelper("bold", func(args []value.Value, cb *Callback) (value.Value, error) {
		body, err := cb.Fn(value.Undefined())
		if err != nil {
			return value.Undefined(), err
		}
		return value.Safe("<b>" + body + "</b>"), nil
	})
	e.RegisterHelper("raw", func(args []value.Value, cb *Callback) (value.Value, error) {
		body, err := cb.Fn(value.Undefined())
		return value.String(body), err
	})
	e.RegisterHelper("fail", func(args []value.Value, cb *Callback) (value.Value, error) {
		return value.Undefined(), errors.New("boom")
	})
	e.RegisterHelper("ids", func(args []value.Value, cb *Callback) (value.Value, error) {
		return value.String(strings.Join(cb.IDs, ",")), nil
	})
	e.RegisterHelper("hash", func(args []value.Value, cb *Callback) (value.Value, error) {
		return value.String(strings.Join(cb.Hash.Keys(), ",")), nil
	})

	t.Run("should call helpers with sub-expressions", func(t *testing.T) {
		assert.Equal(t, "6", renderString(t, e, "{{add 1 (add 2 3)}}", `{}`))
		assert.Equal(t, "5", renderString(t, e, "{{add n 2}}", `{"n": 3}`))
	})

	t.Run("should not escape block helper output", func(t *testing.T) {
		assert.Equal(t, "<b>x &amp; y</b>", renderString(t, e, "{{#bold}}x {{amp}} y{{/bold}}", `{"amp": "&"}`))
	})

	t.Run("should escape plain string results", func(t *testing.T) {
		e.RegisterHelper("tag", func(args []value.Value, cb *Callback) (value.Value, error) {
			return value.String("<i>"), nil
		})
		assert.Equal(t, "&lt;i&gt;", renderString(t, e, "{{tag}}", `{}`))
		assert.Equal(t, "<i>", renderString(t, e, "{{{tag}}}", `{}`))
	})

	t.Run("should give raw block helpers the literal body", func(t *testing.T) {
		assert.Equal(t, "{{x}}", renderString(t, e, "{{{{raw}}}}{{x}}{{{{/raw}}}}", `{"x": 1}`))
	})

	t.Run("should report argument ids", func(t *testing.T) {
		assert.Equal(t, "a.b,,c", renderString(t, e, `{{ids a.b "lit" ./c}}`, `{}`))
	})

	t.Run("should keep hash keys in order", func(t *testing.T) {
		assert.Equal(t, "z,a", renderString(t, e, "{{hash z=1 a=2}}", `{}`))
	})

	t.Run("should wrap helper errors", func(t *testing.T) {
		_, err := e.Render("x{{fail}}", value.Undefined(), RenderOptions{})
		require.Error(t, err)
		var re *RenderError
		require.ErrorAs(t, err, &re)
		assert.Equal(t, "fail", re.Helper)
		assert.Equal(t, "{{fail}}", re.Tag)
		assert.EqualError(t, err, `helper "fail" in {{fail}}: boom`)
	})

	t.Run("should fail on a missing helper with arguments", func(t *testing.T) {
		_, err := e.Render("{{nope 1}}", value.Undefined(), RenderOptions{})
		assert.ErrorIs(t, err, ErrMissingHelper)

		_, err = e.Render("{{#nope 1}}x{{/nope}}", value.Undefined(), RenderOptions{})
		assert.ErrorIs(t, err, ErrMissingHelper)
	})

	t.Run("should ignore a missing helper with only hash arguments", func(t *testing.T) {
		assert.Equal(t, "", renderString(t, e, "{{nope a=1}}", `{}`))
	})

	t.Run("should fail on wrong built-in arguments", func(t *testing.T) {
		for _, tmpl := range []string{"{{#if}}x{{/if}}", "{{#if a b}}x{{/if}}", "{{#with}}x{{/with}}", "{{#each}}x{{/each}}", "{{lookup a}}"} {
			_, err := e.Render(tmpl, mustJSON(t, `{}`), RenderOptions{})
			assert.ErrorIs(t, err, ErrInvalidArguments, tmpl)
		}
	})

	t.Run("should call function values from the context", func(t *testing.T) {
		ctx := value.NewObject()
		ctx.Set("greet", value.Func(func(args []value.Value) (value.Value, error) {
			return value.String("hi " + args[0].String()), nil
		}))
		ctx.Set("flag", value.Func(func(args []value.Value) (value.Value, error) {
			return value.Bool(true), nil
		}))

		out, err := e.Render(`{{greet "bob"}} {{#if flag}}on{{/if}}`, value.ObjectOf(ctx), RenderOptions{})
		require.NoError(t, err)
		assert.Equal(t, "hi bob on", out)
	})

	t.Run("should honor NoHTMLEscape", func(t *testing.T) {
		out, err := e.Render("{{x}}", mustJSON(t, `{"x": "<b>"}`), RenderOptions{NoHTMLEscape: true})
		require.NoError(t, err)
		assert.Equal(t, "<b>", out)
	})

	t.Run("should expose render data", func(t *testing.T) {
		data := value.NewObject()
		data.Set("user", value.String("ann"))
		out, err := e.Render("{{@user}} {{#each items}}{{@../user}}{{/each}}", mustJSON(t, `{"items": [1]}`), RenderOptions{Data: data})
		require.NoError(t, err)
		assert.Equal(t, "ann ann", out)
	})
}

func Test_Render_limits(t *testing.T) {
	t.Run("should stop unbounded partial recursion", func(t *testing.T) {
		e := New(WithMaxDepth(10))
		e.RegisterPartial("self", "x{{> self}}")

		_, err := e.Render("{{> self}}", value.Undefined(), RenderOptions{})
		assert.ErrorIs(t, err, ErrMaxDepth)
	})

	t.Run("should allow recursion that terminates", func(t *testing.T) {
		e := New()
		e.RegisterPartial("tree", "{{name}}{{#each children}}({{> tree}}){{/each}}")

		out := renderString(t, e, "{{> tree}}", `{"name": "a", "children": [{"name": "b", "children": [{"name": "c"}]}, {"name": "d"}]}`)
		assert.Equal(t, "a(b(c))(d)", out)
	})
}

func Test_Render_strict(t *testing.T) {
	e := New()
	e.RegisterPartial("p", "{{a}}-{{b}}")
	ctx := `{"name": "ann", "a": {"x": 1}, "flag": false}`
	strict := RenderOptions{Strict: true}

	failing := []struct {
		name     string
		template string
		missing  string
	}{
		{name: "undefined expression", template: "{{missing}}", missing: "missing"},
		{name: "undefined path segment", template: "{{a.y}}", missing: "a.y"},
		{name: "undefined helper with arguments", template: "{{nope 1}}", missing: "nope"},
		{name: "undefined block", template: "{{#missing}}x{{/missing}}", missing: "missing"},
		{name: "undefined block helper", template: "{{#nope 1}}x{{/nope}}", missing: "nope"},
	}
	for _, tt := range failing {
		t.Run("should reject "+tt.name, func(t *testing.T) {
			_, err := e.Render(tt.template, mustJSON(t, ctx), strict)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrNotDefined)
			assert.Contains(t, err.Error(), `"`+tt.missing+`" not defined`)

			var re *RenderError
			require.ErrorAs(t, err, &re)
			assert.Equal(t, tt.template[:strings.Index(tt.template, "}}")+2], re.Tag)
		})
	}

	passing := []struct {
		name     string
		template string
		expected string
	}{
		{name: "defined values", template: "{{name}} {{a.x}}", expected: "ann 1"},
		{name: "falsy section", template: "[{{#flag}}x{{/flag}}]", expected: "[]"},
		{name: "missing helper arguments", template: "{{#if missing}}y{{else}}n{{/if}}", expected: "n"},
		{name: "data references", template: "{{#each a}}{{@key}}{{/each}}", expected: "x"},
	}
	for _, tt := range passing {
		t.Run("should render "+tt.name, func(t *testing.T) {
			out, err := e.Render(tt.template, mustJSON(t, ctx), strict)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, out)
		})
	}

	t.Run("should ignore missing values when not strict", func(t *testing.T) {
		assert.Equal(t, "[]", renderString(t, e, "[{{missing}}{{a.y}}]", ctx))
	})
}

func Test_Render_explicitPartialContext(t *testing.T) {
	e := New()
	e.RegisterPartial("p", "{{a}}-{{b}}")
	ctx := `{"a": 1, "b": 2}`
	explicit := RenderOptions{ExplicitPartialContext: true}

	tests := []struct {
		name     string
		template string
		expected string
	}{
		{name: "an empty context without arguments", template: "{{> p}}", expected: "-"},
		{name: "only the hash arguments", template: "{{> p b=3}}", expected: "-3"},
		{name: "an explicit context argument", template: "{{> p .}}", expected: "1-2"},
	}
	for _, tt := range tests {
		t.Run("should give partials "+tt.name, func(t *testing.T) {
			out, err := e.Render(tt.template, mustJSON(t, ctx), explicit)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, out)
		})
	}

	t.Run("should inherit the context by default", func(t *testing.T) {
		assert.Equal(t, "1-2", renderString(t, e, "{{> p}}", ctx))
	})
}

func Test_Render_blockParamPrecedence(t *testing.T) {
	e := New()

	t.Run("should prefer the context over a block parameter", func(t *testing.T) {
		out := renderString(t, e, "{{#each items as |x|}}{{x}}{{/each}}", `{"items": [{"x": "ctx"}]}`)
		assert.Equal(t, "ctx", out)
	})

	t.Run("should prefer a helper over a block parameter", func(t *testing.T) {
		e.RegisterHelper("shout", func([]value.Value, *Callback) (value.Value, error) {
			return value.String("helper"), nil
		})
		out := renderString(t, e, "{{#each items as |shout|}}[{{shout}}]{{/each}}", `{"items": ["bp"]}`)
		assert.Equal(t, "[helper]", out)
	})

	t.Run("should fall back to a block parameter", func(t *testing.T) {
		out := renderString(t, e, "{{#each items as |it|}}[{{it}}]{{/each}}", `{"items": ["bp"]}`)
		assert.Equal(t, "[bp]", out)
	})
}
