package pattern

import (
	"strings"
)

type tokenKind int

const (
	tokText tokenKind = iota
	tokCapture
)

type token struct {
	kind     tokenKind
	off      int
	text     string
	name     string
	typ      string
	args     []string
	optional bool
}

func lex(src string) ([]token, error) {
	var toks []token
	var buf strings.Builder
	bufOff := 0
	flush := func() {
		if buf.Len() > 0 {
			toks = append(toks, token{kind: tokText, off: bufOff, text: buf.String()})
			buf.Reset()
		}
	}
	for i := 0; i < len(src); {
		switch src[i] {
		case '{':
			end := -1
			for j := i + 1; j < len(src); j++ {
				if src[j] == '{' {
					return nil, compileErr(ErrUnterminatedCapture, src, i, "'{' opened again at offset %d", j)
				}
				if src[j] == '}' {
					end = j
					break
				}
			}
			if end < 0 {
				return nil, compileErr(ErrUnterminatedCapture, src, i, "no closing '}'")
			}
			flush()
			tok, err := lexCapture(src, i, src[i+1:end])
			if err != nil {
				return nil, err
			}
			toks = append(toks, tok)
			i = end + 1
			bufOff = i
		case '}':
			return nil, compileErr(ErrUnbalancedBrace, src, i, "'}' without matching '{'")
		default:
			if buf.Len() == 0 {
				bufOff = i
			}
			buf.WriteByte(src[i])
			i++
		}
	}
	flush()
	return toks, nil
}

func lexCapture(src string, off int, body string) (token, error) {
	tok := token{kind: tokCapture, off: off, typ: TypeSlug.String()}
	body = strings.TrimSpace(body)
	if strings.HasSuffix(body, "?") {
		tok.optional = true
		body = strings.TrimSpace(strings.TrimSuffix(body, "?"))
	}
	name, typ, hasType := strings.Cut(body, ":")
	tok.name = strings.TrimSpace(name)
	if !validName(tok.name) {
		if tok.name == "" {
			return tok, compileErr(ErrInvalidFieldName, src, off, "empty capture name")
		}
		return tok, compileErr(ErrInvalidFieldName, src, off, "%q", tok.name)
	}
	if !hasType {
		return tok, nil
	}
	typ = strings.TrimSpace(typ)
	if open := strings.IndexByte(typ, '('); open >= 0 {
		if !strings.HasSuffix(typ, ")") {
			return tok, compileErr(ErrInvalidFieldArgs, src, off, "unclosed argument list in %q", typ)
		}
		for _, a := range strings.Split(typ[open+1:len(typ)-1], ",") {
			if a = strings.TrimSpace(a); a != "" {
				tok.args = append(tok.args, a)
			}
		}
		typ = strings.TrimSpace(typ[:open])
	}
	if typ != "" {
		tok.typ = typ
	}
	return tok, nil
}

func validName(name string) bool {
	if name == "" {
		return false
	}
	for i := 0; i < len(name); i++ {
		c := name[i]
		if c == '_' || isLower(c) || isUpper(c) || (i > 0 && isDigit(c)) {
			continue
		}
		return false
	}
	return true
}
