package shell

import (
	"strings"
	"time"
)

type dateHandler struct{}

func (dateHandler) Execute(args string, _ *Context) string {
	args = strings.TrimSpace(args)
	utc := false
	iso := false
	rfc3339 := false
	var customFormat string

	for _, tok := range strings.Fields(args) {
		switch {
		case tok == "-u" || tok == "--utc":
			utc = true
		case tok == "-I" || strings.HasPrefix(tok, "--iso-8601"):
			iso = true
		case strings.HasPrefix(tok, "--rfc-3339"):
			rfc3339 = true
		case strings.HasPrefix(tok, "+"):
			customFormat = tok[1:]
		}
	}

	now := time.Now()
	if utc {
		now = now.UTC()
	}

	switch {
	case customFormat != "":
		return strftime(now, customFormat) + "\r\n"
	case iso:
		return now.Format("2006-01-02") + "\r\n"
	case rfc3339:
		return now.Format("2006-01-02 15:04:05-07:00") + "\r\n"
	case utc:
		return now.Format("Mon Jan _2 15:04:05") + " UTC " + now.Format("2006") + "\r\n"
	default:
		return now.Format("Mon Jan _2 15:04:05 MST 2006") + "\r\n"
	}
}

// strftime translates the handful of strftime directives the honeypot's
// date command accepts into Go's reference-time layout, applied piecewise
// since Go has no native strftime.
func strftime(t time.Time, format string) string {
	var out strings.Builder
	runes := []rune(format)
	for i := 0; i < len(runes); i++ {
		if runes[i] != '%' || i+1 >= len(runes) {
			out.WriteRune(runes[i])
			continue
		}
		i++
		switch runes[i] {
		case 'a':
			out.WriteString(t.Format("Mon"))
		case 'A':
			out.WriteString(t.Format("Monday"))
		case 'b':
			out.WriteString(t.Format("Jan"))
		case 'B':
			out.WriteString(t.Format("January"))
		case 'c':
			out.WriteString(t.Format("Mon Jan _2 15:04:05 2006"))
		case 'd':
			out.WriteString(t.Format("02"))
		case 'D':
			out.WriteString(t.Format("01/02/06"))
		case 'e':
			out.WriteString(t.Format("_2"))
		case 'H':
			out.WriteString(t.Format("15"))
		case 'I':
			out.WriteString(t.Format("03"))
		case 'm':
			out.WriteString(t.Format("01"))
		case 'M':
			out.WriteString(t.Format("04"))
		case 'S':
			out.WriteString(t.Format("05"))
		case 'T':
			out.WriteString(t.Format("15:04:05"))
		case 'y':
			out.WriteString(t.Format("06"))
		case 'Y':
			out.WriteString(t.Format("2006"))
		case 'z':
			out.WriteString(t.Format("-0700"))
		case 'Z':
			out.WriteString(t.Format("MST"))
		case '%':
			out.WriteByte('%')
		default:
			out.WriteByte('%')
			out.WriteRune(runes[i])
		}
	}
	return out.String()
}
