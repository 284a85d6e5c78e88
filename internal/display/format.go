package display

import "fmt"

// Plural returns "1 file" or "3 files".
func Plural(n int, word string) string {
	if n == 1 {
		return fmt.Sprintf("%d %s", n, word)
	}
	return fmt.Sprintf("%d %ss", n, word)
}

// Caret returns a line that points at byte offset off of a name printed
// after indent spaces.
func Caret(indent, off, width int) string {
	if width < 1 {
		width = 1
	}
	b := make([]byte, 0, indent+off+width)
	for i := 0; i < indent+off; i++ {
		b = append(b, ' ')
	}
	for i := 0; i < width; i++ {
		b = append(b, '^')
	}
	return string(b)
}
