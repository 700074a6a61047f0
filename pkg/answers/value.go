package answers

import "strconv"

type valueKind uint8

const (
	kindUnselected valueKind = iota
	kindText
	kindNumber
)

// Value is one answer: free text, an integer, or the "no selection" sentinel.
// The zero Value is the sentinel.
type Value struct {
	kind   valueKind
	text   string
	number int
}

// Text wraps a string answer. An empty string is a valid, selected answer.
func Text(s string) Value {
	return Value{kind: kindText, text: s}
}

// Number wraps an integer answer.
func Number(n int) Value {
	return Value{kind: kindNumber, number: n}
}

// NoSelection is the sentinel for an untouched choice control.
func NoSelection() Value {
	return Value{}
}

// Selected reports whether the value is anything but the sentinel.
func (v Value) Selected() bool {
	return v.kind != kindUnselected
}

// Empty reports whether the value carries no user content. Numbers are never
// empty.
func (v Value) Empty() bool {
	switch v.kind {
	case kindText:
		return v.text == ""
	case kindNumber:
		return false
	default:
		return true
	}
}

// IsNumber reports whether the value holds an integer.
func (v Value) IsNumber() bool {
	return v.kind == kindNumber
}

// Int returns the integer payload.
func (v Value) Int() (int, bool) {
	return v.number, v.kind == kindNumber
}

// String stringifies the value for persistence; the sentinel becomes "".
func (v Value) String() string {
	switch v.kind {
	case kindText:
		return v.text
	case kindNumber:
		return strconv.Itoa(v.number)
	default:
		return ""
	}
}
