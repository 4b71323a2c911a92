// Copyright © 2018 The ELPS authors

package diagnostic

import (
	"bytes"
	"strings"
	"testing"

	"github.com/iBelieve/rasp/parser/token"
)

// testRenderer returns a Renderer with colors disabled and a fake source reader.
func testRenderer(sources map[string]string) *Renderer {
	return &Renderer{
		Color: ColorNever,
		SourceReader: func(name string) ([]byte, error) {
			s, ok := sources[name]
			if !ok {
				return nil, &fakeErr{name}
			}
			return []byte(s), nil
		},
	}
}

type fakeErr struct{ name string }

func (e *fakeErr) Error() string { return "not found: " + e.name }

func TestRenderError(t *testing.T) {
	r := testRenderer(map[string]string{
		"test.lisp": "(set false 42)",
	})

	d := Diagnostic{
		Severity: SeverityError,
		Message:  "cannot bind reserved symbol: false",
		Spans: []Span{
			{File: "test.lisp", Line: 1, Col: 6, EndCol: 10, Label: "reserved literal"},
		},
	}

	var buf bytes.Buffer
	if err := r.Render(&buf, d); err != nil {
		t.Fatal(err)
	}

	got := buf.String()

	// Verify key structural elements
	assertContains(t, got, "error: cannot bind reserved symbol: false")
	assertContains(t, got, "--> test.lisp:1:6")
	assertContains(t, got, "(set false 42)")
	assertContains(t, got, "^^^^^")
	assertContains(t, got, "reserved literal")
}

func TestRenderWarning(t *testing.T) {
	r := testRenderer(map[string]string{
		"test.lisp": "(set x 1)\n(set x 2)",
	})

	d := Diagnostic{
		Severity: SeverityWarning,
		Message:  "x is bound twice",
		Spans: []Span{
			{File: "test.lisp", Line: 2, Col: 1, EndCol: 9},
		},
	}

	var buf bytes.Buffer
	if err := r.Render(&buf, d); err != nil {
		t.Fatal(err)
	}

	got := buf.String()
	assertContains(t, got, "warning: x is bound twice")
	assertContains(t, got, "--> test.lisp:2:1")
	assertContains(t, got, "(set x 2)")
}

func TestRenderNoSource(t *testing.T) {
	r := testRenderer(nil)

	d := Diagnostic{
		Severity: SeverityError,
		Message:  "some error",
		Spans: []Span{
			{File: "<stdin>", Line: 5, Col: 3},
		},
	}

	var buf bytes.Buffer
	if err := r.Render(&buf, d); err != nil {
		t.Fatal(err)
	}

	got := buf.String()
	assertContains(t, got, "error: some error")
	assertContains(t, got, "--> <stdin>:5:3")
	// Should have a gutter but no source line
	assertContains(t, got, "|")
	assertNotContains(t, got, "^")
}

func TestRenderNotes(t *testing.T) {
	r := testRenderer(map[string]string{
		"test.lisp": "(my-fn 1 2)",
	})

	d := Diagnostic{
		Severity:  SeverityError,
		Condition: "unbound-symbol",
		Message:   "unbound symbol: my-fn",
		Spans: []Span{
			{File: "test.lisp", Line: 1, Col: 2, EndCol: 6},
		},
		Trace: []Frame{
			{Name: "my-fn", Source: &token.Location{File: "test.lisp", Line: 1, Col: 1}},
			{Name: "main", Source: &token.Location{File: "main.lisp", Pos: 40, Line: 10, Col: 5}},
			{Name: "println", Source: &token.Location{File: "<native code>", Pos: -1}},
		},
		Notes: []string{"try: rasp doc my-fn"},
	}

	var buf bytes.Buffer
	if err := r.Render(&buf, d); err != nil {
		t.Fatal(err)
	}

	got := buf.String()
	assertContains(t, got, "error: unbound-symbol: unbound symbol: my-fn")
	assertContains(t, got, "   = note: in my-fn at test.lisp:1:1\n")
	assertContains(t, got, "   = note: called from main at main.lisp:10:5\n")
	assertContains(t, got, "   = note: called from println at unknown\n")
	// trace notes precede free form notes
	if strings.Index(got, "println") > strings.Index(got, "try:") {
		t.Errorf("trace rendered after notes:\n%s", got)
	}
}

func TestRenderAutoDetectEndCol(t *testing.T) {
	r := testRenderer(map[string]string{
		"test.lisp": "(defun true () 42)",
	})

	d := Diagnostic{
		Severity: SeverityError,
		Message:  "cannot bind reserved symbol: true",
		Spans: []Span{
			{File: "test.lisp", Line: 1, Col: 8}, // EndCol=0 → auto-detect
		},
	}

	var buf bytes.Buffer
	if err := r.Render(&buf, d); err != nil {
		t.Fatal(err)
	}

	got := buf.String()
	// "true" starts at col 8 and is 4 chars → should produce "^^^^"
	assertContains(t, got, "^^^^")
}

func TestRenderMultipleDiagnostics(t *testing.T) {
	r := testRenderer(map[string]string{
		"test.lisp": "(set x 1)\n(set x 2)\n(if true)",
	})

	diags := []Diagnostic{
		{
			Severity: SeverityWarning,
			Message:  "x is bound twice",
			Spans:    []Span{{File: "test.lisp", Line: 2, Col: 1, EndCol: 9}},
		},
		{
			Severity: SeverityWarning,
			Message:  "if requires a condition and a then form",
			Spans:    []Span{{File: "test.lisp", Line: 3, Col: 1, EndCol: 9}},
		},
	}

	var buf bytes.Buffer
	if err := r.RenderAll(&buf, diags); err != nil {
		t.Fatal(err)
	}

	got := buf.String()
	// Should have both diagnostics separated by blank line
	parts := strings.Split(got, "\n\n")
	if len(parts) < 2 {
		t.Errorf("expected diagnostics separated by blank line, got:\n%s", got)
	}
	assertContains(t, got, "x is bound twice")
	assertContains(t, got, "if requires a condition and a then form")
}

func TestRenderNoSpans(t *testing.T) {
	r := testRenderer(nil)

	d := Diagnostic{
		Severity:  SeverityError,
		Condition: "io-error",
		Message:   "open main.lisp: no such file or directory",
	}

	var buf bytes.Buffer
	if err := r.Render(&buf, d); err != nil {
		t.Fatal(err)
	}

	got := buf.String()
	if got != "error: io-error: open main.lisp: no such file or directory\n" {
		t.Errorf("unexpected output:\n%s", got)
	}
	// Should be just the header, no arrows or source
	assertNotContains(t, got, "-->")
}

func TestRenderFormExtent(t *testing.T) {
	tests := []struct {
		line string
		col  int
		want string
	}{
		{"(defun true () 42)", 8, "^^^^"},
		{"(f (g 1) \"a)\" 2) x", 1, strings.Repeat("^", 16)},
		{`(print "a\"b" 1)`, 8, "^^^^^^"},
		{"(x |a b| y)", 4, "^^^^^"},
		{"(car 3", 1, "^^^^^^"},
		{"'sym", 1, "^"},
		{`a\ b c`, 1, "^^^^"},
	}
	for _, test := range tests {
		r := testRenderer(map[string]string{"t.lisp": test.line})
		var buf bytes.Buffer
		err := r.Render(&buf, Diagnostic{Spans: []Span{{File: "t.lisp", Line: 1, Col: test.col}}})
		if err != nil {
			t.Fatal(err)
		}
		lines := strings.Split(buf.String(), "\n")
		underline := strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(lines[4]), "|"))
		if underline != test.want {
			t.Errorf("%q at %d: underline %q, want %q", test.line, test.col, underline, test.want)
		}
	}
}

func TestRenderGutterWidth(t *testing.T) {
	src := strings.Repeat("x\n", 11) + "(bad)"
	r := testRenderer(map[string]string{"t.lisp": src})
	d := Diagnostic{
		Severity: SeverityError,
		Message:  "bad",
		Spans: []Span{
			{File: "t.lisp", Line: 2, Col: 1},
			{File: "t.lisp", Line: 12, Col: 1},
		},
		Trace: []Frame{{Name: "bad", Source: &token.Location{File: "t.lisp", Line: 12, Col: 1}}},
	}
	var buf bytes.Buffer
	if err := r.Render(&buf, d); err != nil {
		t.Fatal(err)
	}
	got := buf.String()
	assertContains(t, got, "   --> t.lisp:2:1\n")
	assertContains(t, got, "  2 |  x\n")
	assertContains(t, got, " 12 |  (bad)\n")
	assertContains(t, got, "    |  ^^^^^\n")
	assertContains(t, got, "    = note: in bad at t.lisp:12:1\n")
}

func TestRenderAllReadsSourceOnce(t *testing.T) {
	reads := 0
	r := &Renderer{
		Color: ColorNever,
		SourceReader: func(string) ([]byte, error) {
			reads++
			return []byte("(a)\n(b)"), nil
		},
	}
	diags := []Diagnostic{
		{Message: "a", Spans: []Span{{File: "t.lisp", Line: 1, Col: 1}}},
		{Message: "b", Spans: []Span{{File: "t.lisp", Line: 2, Col: 1}}},
	}
	var buf bytes.Buffer
	if err := r.RenderAll(&buf, diags); err != nil {
		t.Fatal(err)
	}
	if reads != 1 {
		t.Errorf("source read %d times", reads)
	}
	assertContains(t, buf.String(), " 2 |  (b)")
}

func TestRenderConditionColor(t *testing.T) {
	r := &Renderer{Color: ColorAlways}
	var buf bytes.Buffer
	d := Diagnostic{Severity: SeverityError, Condition: "type-error", Message: "boom"}
	if err := r.Render(&buf, d); err != nil {
		t.Fatal(err)
	}
	assertContains(t, buf.String(), ansiPalette.red+"type-error"+ansiPalette.reset+": ")
}

func TestParseColorMode(t *testing.T) {
	tests := map[string]ColorMode{
		"":       ColorAuto,
		"auto":   ColorAuto,
		"always": ColorAlways,
		"never":  ColorNever,
	}
	for s, want := range tests {
		got, err := ParseColorMode(s)
		if err != nil {
			t.Errorf("ParseColorMode(%q): %v", s, err)
		}
		if got != want {
			t.Errorf("ParseColorMode(%q) = %v, want %v", s, got, want)
		}
	}
	if _, err := ParseColorMode("sometimes"); err == nil {
		t.Errorf("expected an error for an invalid color mode")
	}
}

func TestChoosePaletteNoColor(t *testing.T) {
	t.Setenv("NO_COLOR", "1")
	if p := choosePalette(ColorAuto, nil); p != noPalette {
		t.Errorf("expected no colors when NO_COLOR is set")
	}
	if p := choosePalette(ColorAlways, nil); p != ansiPalette {
		t.Errorf("expected colors when forced")
	}
}

func assertContains(t *testing.T, got, want string) {
	t.Helper()
	if !strings.Contains(got, want) {
		t.Errorf("output does not contain %q:\n%s", want, got)
	}
}

func assertNotContains(t *testing.T, got, unwanted string) {
	t.Helper()
	if strings.Contains(got, unwanted) {
		t.Errorf("output unexpectedly contains %q:\n%s", unwanted, got)
	}
}
