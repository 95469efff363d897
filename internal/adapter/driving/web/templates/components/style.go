package components

import (
	"fmt"

	"github.com/a-h/templ"
)

// CSRFFieldName is the form field CSRFField writes the token into.
const CSRFFieldName = "csrf_token"

// Offset places an absolutely positioned element at a pixel offset.
func Offset(left, top int) templ.SafeCSS {
	return templ.SafeCSS(fmt.Sprintf("left:%dpx;top:%dpx", left, top))
}

// Size fixes the pixel dimensions of an element.
func Size(width, height int) templ.SafeCSS {
	return templ.SafeCSS(fmt.Sprintf("width:%dpx;height:%dpx", width, height))
}
