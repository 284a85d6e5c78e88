package pattern

import (
	"strconv"
	"strings"
	"time"
)

// Value is a typed field value extracted from a filename. The set of
// implementations is closed: DateValue, SlugValue, TagsValue, EnumValue,
// IntValue and TextValue.
type Value interface {
	Type() FieldType
	String() string
	sealed()
}

// DateValue is a calendar date. Only the year, month and day are meaningful.
type DateValue struct{ Time time.Time }

func (DateValue) Type() FieldType  { return TypeDate }
func (v DateValue) String() string { return v.Time.Format(time.DateOnly) }
func (DateValue) sealed()          {}

// SlugValue is a lowercase hyphenated word sequence.
type SlugValue string

func (SlugValue) Type() FieldType  { return TypeSlug }
func (v SlugValue) String() string { return string(v) }
func (SlugValue) sealed()          {}

// TagsValue is an ordered, duplicate-free list of known tags.
type TagsValue []string

func (TagsValue) Type() FieldType  { return TypeTagList }
func (v TagsValue) String() string { return strings.Join(v, tagJoiner) }
func (TagsValue) sealed()          {}

// EnumValue is one of a field's declared literal values, in declared form.
type EnumValue string

func (EnumValue) Type() FieldType  { return TypeEnum }
func (v EnumValue) String() string { return string(v) }
func (EnumValue) sealed()          {}

// IntValue is a non-negative integer.
type IntValue int

func (IntValue) Type() FieldType  { return TypeInteger }
func (v IntValue) String() string { return strconv.Itoa(int(v)) }
func (IntValue) sealed()          {}

// TextValue is unconstrained text without path separators.
type TextValue string

func (TextValue) Type() FieldType  { return TypeFreeText }
func (v TextValue) String() string { return string(v) }
func (TextValue) sealed()          {}

// Equal reports whether two values carry the same type and content.
func Equal(a, b Value) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	if a.Type() != b.Type() {
		return false
	}
	if da, ok := a.(DateValue); ok {
		db := b.(DateValue)
		return da.Time.Equal(db.Time)
	}
	return a.String() == b.String()
}
