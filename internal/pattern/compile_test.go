package pattern

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompile_Errors(t *testing.T) {
	tests := []struct {
		name   string
		source string
		opts   Options
		want   error
	}{
		{"empty", "", Options{}, ErrEmptyPattern},
		{"blank", "   ", Options{}, ErrEmptyPattern},
		{"unknown type", "{x:color}.md", Options{}, ErrUnknownFieldType},
		{"duplicate name", "{a:slug}-{a:slug}.md", Options{}, ErrDuplicateFieldName},
		{"two free-text", "{a:free-text}-{b:free-text}.md", Options{}, ErrAmbiguousGreedySequence},
		{"adjacent slugs", "{a}{b}.md", Options{}, ErrAmbiguousGreedySequence},
		{"slugs split by dash", "{a:slug}-{b:slug}.md", Options{}, ErrAmbiguousGreedySequence},
		{"free-text then slug", "{t:free-text}{s:slug}.md", Options{}, ErrAmbiguousGreedySequence},
		{"slug then free-text", "{s:slug}{t:free-text}.md", Options{}, ErrAmbiguousGreedySequence},
		{"free-text absorbs dot", "{t:free-text}.{s:slug}.md", Options{}, ErrAmbiguousGreedySequence},
		{"optional between slugs", "{a:slug}-{n:integer?}-{b:slug}.md", Options{}, ErrAmbiguousGreedySequence},
		{"unterminated", "{date:date-{slug}.md", Options{}, ErrUnterminatedCapture},
		{"no closing brace", "notes-{slug", Options{}, ErrUnterminatedCapture},
		{"stray close", "notes}.md", Options{}, ErrUnbalancedBrace},
		{"empty capture", "{}.md", Options{}, ErrInvalidFieldName},
		{"bad name", "{9lives}.md", Options{}, ErrInvalidFieldName},
		{"enum without values", "{kind:literal-enum}.md", Options{}, ErrMissingValueSet},
		{"tags without vocabulary", "{tags:tag-list}.md", Options{}, ErrMissingValueSet},
		{"bad integer width", "v{n:integer(x)}.md", Options{}, ErrInvalidFieldArgs},
		{"slug with args", "{s:slug(3)}.md", Options{}, ErrInvalidFieldArgs},
		{"bad date layout", "{d:date(Jan 2)}.md", Options{}, ErrInvalidFieldArgs},
		{"unclosed args", "{k:literal-enum(a,b}.md", Options{}, ErrInvalidFieldArgs},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Compile(tt.source, tt.opts)
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.want)
			var ce *CompileError
			assert.True(t, errors.As(err, &ce), "error %T is not *CompileError", err)
		})
	}
}

func TestCompile_Segments(t *testing.T) {
	p, err := Compile("{date:date}-{slug:slug}.md", Options{})
	require.NoError(t, err)

	kinds := []SegmentKind{}
	for _, s := range p.Segments() {
		kinds = append(kinds, s.Kind)
	}
	assert.Equal(t, []SegmentKind{SegCapture, SegSeparator, SegCapture, SegExtension}, kinds)
	assert.Equal(t, "md", p.Extension())
	assert.Equal(t, ".md", p.Segment(3).Text)

	f, ok := p.Field("slug")
	require.True(t, ok)
	assert.Equal(t, TypeSlug, f.Type)
	name, ok := p.SuffixField()
	require.True(t, ok)
	assert.Equal(t, "slug", name)
}

func TestCompile_DottedLiterals(t *testing.T) {
	p, err := Compile("{repo}.feat.{feature}.v{version:integer}.md", Options{})
	require.NoError(t, err)
	var texts []string
	for _, s := range p.Segments() {
		if s.Kind != SegCapture {
			texts = append(texts, s.Kind.String()+":"+s.Text)
		}
	}
	assert.Equal(t, []string{
		"separator:.", "literal:feat", "separator:.", "separator:.", "literal:v", "extension:.md",
	}, texts)
}

func TestCompile_EnumExtension(t *testing.T) {
	p, err := Compile("{date:date}-{slug:slug}.{ext:literal-enum(md,txt)}", Options{})
	require.NoError(t, err)
	f, ok := p.Field("ext")
	require.True(t, ok)
	assert.True(t, f.Extension)
	assert.Equal(t, []string{"md", "txt"}, f.Values)
	assert.Equal(t, "md", p.Extension())
}

func TestCompile_DefaultExtension(t *testing.T) {
	p, err := Compile("{slug}", Options{DefaultExtension: "md"})
	require.NoError(t, err)
	assert.Equal(t, "md", p.Extension())

	p, err = Compile("{slug}.txt", Options{DefaultExtension: "md"})
	require.NoError(t, err)
	assert.Equal(t, "txt", p.Extension())
}

func TestCompile_OptionValueSets(t *testing.T) {
	p, err := Compile("{kind:literal-enum}-{tags:tag-list?}.md", Options{
		Enums: map[string][]string{"kind": {"meeting", "memo"}},
		Tags:  []string{"work", "home"},
	})
	require.NoError(t, err)
	kind, _ := p.Field("kind")
	assert.Equal(t, []string{"meeting", "memo"}, kind.Values)
	tags, _ := p.Field("tags")
	assert.True(t, tags.Optional)

	segs := p.Segments()
	assert.Equal(t, segs[1].Group, segs[2].Group, "optional capture shares its separator's group")
	assert.NotZero(t, segs[2].Group)
}

func TestCompile_DateLayoutArgument(t *testing.T) {
	p, err := Compile("{d:date(2006.01.02)}-{s}.md", Options{})
	require.NoError(t, err)
	f, _ := p.Field("d")
	assert.Equal(t, "2006.01.02", f.Layout)

	p, err = Compile("{d:date}.md", Options{DateFormat: "20060102"})
	require.NoError(t, err)
	f, _ = p.Field("d")
	v, err := f.Parse("20240301")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), v.(DateValue).Time)
}

func TestCache(t *testing.T) {
	c := NewCache()
	a, err := c.Compile("{slug}.md", Options{})
	require.NoError(t, err)
	b, err := c.Compile("{slug}.md", Options{})
	require.NoError(t, err)
	assert.Same(t, a, b)

	d, err := c.Compile("{slug}.md", Options{CaseInsensitive: true})
	require.NoError(t, err)
	assert.NotSame(t, a, d)

	_, err = c.Compile("{", Options{})
	assert.Error(t, err)
	assert.Equal(t, 2, c.Len())
}

func TestCompile_OpenCapturesSeparated(t *testing.T) {
	for _, source := range []string{
		"{repo}.feat.{feature}.{type}.{variant}.v{version:integer}.md",
		"{slug}-{n:integer?}.md",
		"{a:slug}-{n:integer}-{b:slug}.md",
		"{date:date}-{slug}.md",
		"{a:slug}.{b:slug}.md",
	} {
		t.Run(source, func(t *testing.T) {
			_, err := Compile(source, Options{})
			assert.NoError(t, err)
		})
	}
}
