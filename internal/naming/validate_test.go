package naming

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/backmassage/axon/internal/pattern"
)

const datedNotes = "{date:date}-{slug:slug}.{ext:literal-enum(md,txt)}"

func compile(t *testing.T, source string, opts pattern.Options) *pattern.Pattern {
	t.Helper()
	p, err := pattern.Compile(source, opts)
	require.NoError(t, err)
	return p
}

type wantViolation struct {
	kind   ViolationKind
	field  string
	text   string
	offset int
}

func violations(r Result) []wantViolation {
	out := []wantViolation{}
	for _, v := range r.Violations {
		out = append(out, wantViolation{v.Kind, v.Field, v.Text, v.Offset})
	}
	return out
}

func TestValidate_Conforming(t *testing.T) {
	p := compile(t, datedNotes, pattern.Options{})
	r := Validate(p, "/notes/2024-03-01-my-notes.md")

	assert.True(t, r.Matched)
	assert.Empty(t, r.Violations)
	assert.Equal(t, "/notes/2024-03-01-my-notes.md", r.Path)
	assert.Equal(t, "2024-03-01-my-notes.md", r.Name)
	assert.Equal(t, pattern.DateValue{Time: time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)}, r.Fields["date"])
	assert.Equal(t, pattern.SlugValue("my-notes"), r.Fields["slug"])
	assert.Equal(t, pattern.EnumValue("md"), r.Fields["ext"])

	c, ok := r.Capture("slug")
	require.True(t, ok)
	assert.Equal(t, Capture{Name: "slug", Raw: "my-notes", Offset: 11, Valid: true}, c)
}

func TestValidate_Violations(t *testing.T) {
	tests := []struct {
		name    string
		pattern string
		input   string
		want    []wantViolation
	}{
		{
			name:    "invalid values and extension case",
			pattern: datedNotes,
			input:   "2024-3-1-My Notes.MD",
			want: []wantViolation{
				{InvalidFieldValue, "date", "2024-3-1", 0},
				{InvalidFieldValue, "slug", "My Notes", 9},
				{CaseMismatch, "ext", "MD", 18},
			},
		},
		{
			name:    "uppercase slug",
			pattern: "{slug:slug}.md",
			input:   "Draft-A.md",
			want:    []wantViolation{{CaseMismatch, "slug", "Draft-A", 0}},
		},
		{
			name:    "date out of position",
			pattern: "{date:date}-{slug:slug}.md",
			input:   "my-notes-2024-03-01.md",
			want:    []wantViolation{{OrderingViolation, "date", "2024-03-01", 9}},
		},
		{
			name:    "date missing",
			pattern: "{date:date}-{slug:slug}.md",
			input:   "my-notes.md",
			want:    []wantViolation{{MissingField, "date", "", 0}},
		},
		{
			name:    "wrong declared extension",
			pattern: "{date:date}-{slug:slug}.md",
			input:   "2024-03-01-notes.txt",
			want:    []wantViolation{{WrongExtension, "", ".txt", 16}},
		},
		{
			name:    "wrong enum extension",
			pattern: datedNotes,
			input:   "2024-03-01-notes.doc",
			want:    []wantViolation{{WrongExtension, "ext", "doc", 17}},
		},
		{
			name:    "extra dotted segment",
			pattern: "{date:date}-{slug:slug}.md",
			input:   "2024-03-01-notes.draft.md",
			want:    []wantViolation{{UnexpectedSegment, "", ".draft", 16}},
		},
		{
			name:    "substituted separator",
			pattern: "{date:date}-{slug:slug}.md",
			input:   "2024-03-01_notes.md",
			want:    []wantViolation{{UnexpectedSegment, "", "_", 10}},
		},
		{
			name:    "literal case",
			pattern: "{repo}.feat.{feature}.md",
			input:   "axon.FEAT.matcher.md",
			want:    []wantViolation{{CaseMismatch, "", "FEAT", 5}},
		},
		{
			name:    "nothing aligns",
			pattern: "v{n:integer}.md",
			input:   "readme",
			want:    []wantViolation{{UnexpectedSegment, "", "readme", 0}},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := Validate(compile(t, tt.pattern, pattern.Options{}), tt.input)
			assert.False(t, r.Matched)
			assert.Equal(t, tt.want, violations(r))
		})
	}
}

func TestValidate_OrderingKeepsValue(t *testing.T) {
	p := compile(t, "{date:date}-{slug:slug}.md", pattern.Options{})
	r := Validate(p, "my-notes-2024-03-01.md")
	require.Contains(t, r.Fields, "date")
	assert.Equal(t, "2024-03-01", r.Fields["date"].String())
	assert.Equal(t, pattern.SlugValue("my-notes"), r.Fields["slug"])
}

func TestValidate_OptionalCapture(t *testing.T) {
	p := compile(t, "{date:date}-{slug:slug}-{tags:tag-list(work,home)?}.md", pattern.Options{})
	tests := []struct {
		input string
		slug  string
		tags  pattern.Value
	}{
		{"2024-03-01-plan.md", "plan", nil},
		{"2024-03-01-plan-work+home.md", "plan", pattern.TagsValue{"work", "home"}},
		{"2024-03-01-plan-notes.md", "plan-notes", nil},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			r := Validate(p, tt.input)
			require.True(t, r.Matched, "violations: %v", r.Violations)
			assert.Equal(t, pattern.SlugValue(tt.slug), r.Fields["slug"])
			assert.Equal(t, tt.tags, r.Fields["tags"])
		})
	}
}

func TestValidate_PrefersCaptureOverExtraText(t *testing.T) {
	p := compile(t, "{slug}-{n:integer?}.md", pattern.Options{})
	tests := []struct {
		input string
		want  []wantViolation
	}{
		{"x--y-007.md", []wantViolation{{InvalidFieldValue, "slug", "x--y-007", 0}}},
		{"my notes 2024-03-01.md", []wantViolation{{InvalidFieldValue, "slug", "my notes 2024-03-01", 0}}},
		{"axon.FEAT.x.y.md", []wantViolation{{UnexpectedSegment, "", ".FEAT.x.y", 4}}},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.want, violations(Validate(p, tt.input)))
		})
	}
}

func TestValidate_CaseInsensitive(t *testing.T) {
	p := compile(t, "{slug:slug}.md", pattern.Options{CaseInsensitive: true})
	r := Validate(p, "Draft-A.MD")
	assert.True(t, r.Matched, "violations: %v", r.Violations)
	assert.Equal(t, pattern.SlugValue("draft-a"), r.Fields["slug"])
}

func TestValidate_DottedConvention(t *testing.T) {
	p := compile(t, "{repo}.feat.{feature}.{type}.{variant}.v{version:integer}.md", pattern.Options{})
	r := Validate(p, "axon.feat.pattern-compiler.spec.draft.v12.md")
	require.True(t, r.Matched, "violations: %v", r.Violations)
	assert.Equal(t, pattern.SlugValue("pattern-compiler"), r.Fields["feature"])
	assert.Equal(t, pattern.IntValue(12), r.Fields["version"])

	r = Validate(p, "axon.feat.pattern-compiler.spec.draft.v012.md")
	assert.Equal(t, []wantViolation{{InvalidFieldValue, "version", "012", 39}}, violations(r))
}

func TestValidate_RoundTrip(t *testing.T) {
	p := compile(t, "{date:date}-{slug:slug}-{n:integer(3)}.{ext:literal-enum(md,txt)}", pattern.Options{})
	for _, name := range []string{"2024-03-01-a-007.md", "1999-12-31-year-end-100.txt"} {
		r := Validate(p, name)
		require.True(t, r.Matched, "%s: %v", name, r.Violations)
		got, err := p.Render(r.Fields)
		require.NoError(t, err)
		assert.Equal(t, name, got)
	}
}

func TestValidateAll_PreservesOrder(t *testing.T) {
	p := compile(t, datedNotes, pattern.Options{})
	var paths []string
	for i := 1; i <= 40; i++ {
		if i%3 == 0 {
			paths = append(paths, fmt.Sprintf("Bad Name %d.md", i))
			continue
		}
		paths = append(paths, fmt.Sprintf("2024-01-%02d-note.md", (i%28)+1))
	}
	results := ValidateAll(p, paths)
	require.Len(t, results, len(paths))
	for i, r := range results {
		assert.Equal(t, paths[i], r.Path)
		assert.Equal(t, i%3 != 0, r.Matched, r.Path)
	}
}

func TestValidateAllContext_Cancelled(t *testing.T) {
	p := compile(t, datedNotes, pattern.Options{})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := ValidateAllContext(ctx, p, []string{"a.md", "b.md"})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestExemptions(t *testing.T) {
	ex := DefaultExemptions().With("templates", "_template*.md")
	tests := []struct {
		name   string
		reason string
		ok     bool
	}{
		{"README.md", "documentation", true},
		{".DS_Store", "system", true},
		{"_template-daily.md", "templates", true},
		{"2024-03-01-notes.md", "", false},
	}
	for _, tt := range tests {
		reason, ok := ex.Reason(tt.name)
		assert.Equal(t, tt.ok, ok, tt.name)
		assert.Equal(t, tt.reason, reason, tt.name)
	}
	_, ok := DefaultExemptions().Reason("_template-daily.md")
	assert.False(t, ok, "With must not modify the receiver")
}

func TestViolationKind_Text(t *testing.T) {
	for kind := range kindNames {
		b, err := kind.MarshalText()
		require.NoError(t, err)
		var back ViolationKind
		require.NoError(t, back.UnmarshalText(b))
		assert.Equal(t, kind, back)
	}
}
