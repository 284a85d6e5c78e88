package pattern

import (
	"fmt"
	"strings"
)

// FieldType identifies the value class a capture accepts.
type FieldType int

const (
	TypeDate FieldType = iota + 1
	TypeSlug
	TypeTagList
	TypeEnum
	TypeInteger
	TypeFreeText
)

var typeNames = map[FieldType]string{
	TypeDate:     "date",
	TypeSlug:     "slug",
	TypeTagList:  "tag-list",
	TypeEnum:     "literal-enum",
	TypeInteger:  "integer",
	TypeFreeText: "free-text",
}

// String returns the name used for the type in pattern source.
func (t FieldType) String() string {
	if s, ok := typeNames[t]; ok {
		return s
	}
	return fmt.Sprintf("FieldType(%d)", int(t))
}

// ParseFieldType resolves a type name as written in pattern source.
// "enum" is accepted as shorthand for literal-enum and "text" for free-text.
func ParseFieldType(name string) (FieldType, bool) {
	switch strings.ToLower(name) {
	case "date":
		return TypeDate, true
	case "slug":
		return TypeSlug, true
	case "tag-list", "tags":
		return TypeTagList, true
	case "literal-enum", "enum":
		return TypeEnum, true
	case "integer", "int":
		return TypeInteger, true
	case "free-text", "text":
		return TypeFreeText, true
	}
	return 0, false
}

// Unbounded reports whether a capture of this type may absorb separator
// characters. Only free-text may; slugs stop at '.' and the rest are
// limited to their own character class.
func (t FieldType) Unbounded() bool { return t == TypeFreeText }

// Open reports whether a capture of this type has no fixed shape: any
// run of its character class is a candidate span. Two open captures that
// meet with nothing between them but absorbable text cannot be told apart.
func (t FieldType) Open() bool { return t == TypeSlug || t == TypeFreeText }

// Absorbs reports whether a capture of this type can span c.
func (t FieldType) Absorbs(c byte) bool {
	switch t {
	case TypeSlug:
		return c != '.' && c != '/' && c != '\\'
	case TypeFreeText:
		return c != '/' && c != '\\'
	}
	return false
}

// Issue classifies why a raw capture failed its type check.
type Issue int

const (
	IssueNone Issue = iota
	IssueInvalid
	IssueCase
	IssueExtension
)

const tagJoiner = "+"

func isDigit(c byte) bool { return c >= '0' && c <= '9' }
func isLower(c byte) bool { return c >= 'a' && c <= 'z' }
func isUpper(c byte) bool { return c >= 'A' && c <= 'Z' }
func isAlnum(c byte) bool { return isDigit(c) || isLower(c) || isUpper(c) }

// IsSeparator reports whether c is a separator character in pattern source.
func IsSeparator(c byte) bool { return c == '-' || c == '_' || c == '.' }

// isWordChar is the class matched by the lenient fallback span of bounded
// fields: anything that is not a separator, a dot, a space or a path
// delimiter.
func isWordChar(c byte) bool {
	return !IsSeparator(c) && c != ' ' && c != '/' && c != '\\'
}
