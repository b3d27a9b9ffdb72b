package model

import "fmt"

// Color identifies an object ball.
type Color string

const (
	Red    Color = "red"
	Yellow Color = "yellow"
	Green  Color = "green"
	Brown  Color = "brown"
	Blue   Color = "blue"
	Pink   Color = "pink"
	Black  Color = "black"
)

// DefaultReds is the number of reds racked for a standard frame.
const DefaultReds = 15

// DefaultBestOf is the match length used when none is given.
const DefaultBestOf = 5

// MaxReds bounds the configurable red count.
const MaxReds = 15

var ballValues = map[Color]int{
	Red:    1,
	Yellow: 2,
	Green:  3,
	Brown:  4,
	Blue:   5,
	Pink:   6,
	Black:  7,
}

// AllColors lists every ball color in ascending value order.
var AllColors = []Color{Red, Yellow, Green, Brown, Blue, Pink, Black}

// ClearanceOrder returns the six non-red colors in ascending value order.
// A fresh slice is returned on every call so callers may mutate it.
func ClearanceOrder() []Color {
	return []Color{Yellow, Green, Brown, Blue, Pink, Black}
}

// Value returns the fixed point value of the ball, or 0 for an unknown color.
func (c Color) Value() int {
	return ballValues[c]
}

// Valid reports whether c is one of the seven ball colors.
func (c Color) Valid() bool {
	_, ok := ballValues[c]
	return ok
}

// IsRed reports whether c is the red ball.
func (c Color) IsRed() bool {
	return c == Red
}

// ParseColor converts user input to a Color.
func ParseColor(s string) (Color, error) {
	c := Color(s)
	if !c.Valid() {
		return "", fmt.Errorf("unknown ball color %q", s)
	}
	return c, nil
}
