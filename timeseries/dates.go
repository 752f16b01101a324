package timeseries

import (
	"fmt"
	"strings"
	"time"
)

// strftime directives understood by Layout, mapped to Go reference layout
// elements. Numeric fields use the unpadded forms so that both "1" and "01"
// parse, like strptime.
var strftimeDirectives = map[byte]string{
	'Y': "2006",
	'y': "06",
	'm': "1",
	'd': "2",
	'b': "Jan",
	'B': "January",
	'H': "15",
	'M': "4",
	'S': "5",
	'%': "%",
}

// Layout converts a date format into a Go time layout.
//
// Formats containing '%' are read as strftime patterns ("%Y-%m-%d");
// anything else is taken to already be a Go layout. An empty format yields
// DateLayout.
func Layout(format string) (string, error) {
	if format == "" {
		return DateLayout, nil
	}
	if !strings.Contains(format, "%") {
		return format, nil
	}

	var b strings.Builder
	for i := 0; i < len(format); i++ {
		c := format[i]
		if c != '%' {
			b.WriteByte(c)
			continue
		}
		if i+1 >= len(format) {
			return "", fmt.Errorf("date format %q: trailing %%", format)
		}
		i++
		elem, ok := strftimeDirectives[format[i]]
		if !ok {
			return "", fmt.Errorf("date format %q: unsupported directive %%%c", format, format[i])
		}
		b.WriteString(elem)
	}
	return b.String(), nil
}

// CanonicalDate parses value with layout and renders it as DateLayout.
func CanonicalDate(value, layout string) (string, error) {
	t, err := time.Parse(layout, value)
	if err != nil {
		return "", err
	}
	return t.Format(DateLayout), nil
}
