package planner

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/backmassage/axon/internal/naming"
	"github.com/backmassage/axon/internal/pattern"
)

func migrate(t *testing.T, from, to *pattern.Pattern, policy Policy, names ...string) (*Plan, error) {
	t.Helper()
	return Migrate(from, to, naming.ValidateAll(from, names), policy)
}

func TestMigrate_Cases(t *testing.T) {
	tests := []struct {
		name     string
		from, to string
		files    []string
		want     map[string]string
		skipped  map[string]string // path → reason fragment
	}{
		{
			name:  "fields are reordered",
			from:  "{date:date}-{slug}.md",
			to:    "{slug}-{date:date}.md",
			files: []string{"2024-03-01-notes.md", "2024-03-02-more-notes.md"},
			want: map[string]string{
				"2024-03-01-notes.md":      "notes-2024-03-01.md",
				"2024-03-02-more-notes.md": "more-notes-2024-03-02.md",
			},
		},
		{
			name:    "non-matching files stay",
			from:    "{date:date}-{slug}.md",
			to:      "{slug}-{date:date}.md",
			files:   []string{"2024-03-01-notes.md", "README-ish.md"},
			want:    map[string]string{"2024-03-01-notes.md": "notes-2024-03-01.md"},
			skipped: map[string]string{"README-ish.md": "does not match {date:date}-{slug}.md"},
		},
		{
			name:  "values are converted to the target type",
			from:  "{a}.{n:slug}.md",
			to:    "{n:integer}-{a}.md",
			files: []string{"x.3.md"},
			want:  map[string]string{"x.3.md": "3-x.md"},
		},
		{
			name:    "value the target type cannot hold",
			from:    "{when:slug}.md",
			to:      "{when:date}.md",
			files:   []string{"someday.md"},
			want:    map[string]string{},
			skipped: map[string]string{"someday.md": "cannot be repaired"},
		},
		{
			name:  "same pattern renames nothing",
			from:  "{date:date}-{slug}.md",
			to:    "{date:date}-{slug}.md",
			files: []string{"2024-03-01-notes.md"},
			want:  map[string]string{},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			plan, err := migrate(t, compile(t, tt.from), compile(t, tt.to), Policy{}, tt.files...)
			require.NoError(t, err)
			assert.Equal(t, tt.want, renames(plan))
			require.Len(t, plan.Skipped, len(tt.skipped))
			for _, s := range plan.Skipped {
				assert.Contains(t, s.Reason, tt.skipped[s.Path], s.Path)
			}
		})
	}
}

func TestMigrate_FieldMismatch(t *testing.T) {
	_, err := migrate(t, compile(t, "{a}-{b:integer}.md"), compile(t, "{a}.{c:integer}.md"), Policy{}, "x-1.md")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrFieldMismatch))

	var mismatch *FieldMismatchError
	require.True(t, errors.As(err, &mismatch))
	assert.Equal(t, []string{"b"}, mismatch.OnlyInSource)
	assert.Equal(t, []string{"c"}, mismatch.OnlyInTarget)
	assert.Contains(t, err.Error(), "{b}")
	assert.Contains(t, err.Error(), "{c}")
}

func TestCheckFields_TypesMayDiffer(t *testing.T) {
	assert.NoError(t, CheckFields(compile(t, "{a}.{n:integer}.md"), compile(t, "{n:slug}.{a}.md")))
}

func TestMigrate_TargetTaken(t *testing.T) {
	from, to := compile(t, "{date:date}-{slug}.md"), compile(t, "{slug}-{date:date}.md")
	policy := Policy{Existing: []string{"notes-2024-03-01.md"}}

	_, err := migrate(t, from, to, policy, "2024-03-01-notes.md")
	assert.True(t, errors.Is(err, ErrConflictUnresolved))

	policy.OnConflict = SkipConflicting
	plan, err := migrate(t, from, to, policy, "2024-03-01-notes.md")
	require.NoError(t, err)
	assert.True(t, plan.Empty())
	require.Len(t, plan.Skipped, 1)
	assert.Contains(t, plan.Skipped[0].Reason, "already exists")
}
