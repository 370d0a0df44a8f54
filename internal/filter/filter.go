// Package filter implements the named text-transform pipeline applied to
// extracted field values (regex capture, replace, date parsing, size
// parsing, case mapping, and the small numeric helpers).
package filter

import (
	"fmt"
	"html"
	"net/url"
	"regexp"
	"strconv"
	"strings"
)

// Filter is one pipeline stage: a name plus template-rendered arguments.
type Filter struct {
	Name string
	Args []string
}

// Apply runs the full pipeline left to right, feeding each filter's output
// into the next. Unknown filter names pass the value through unchanged.
func Apply(value string, filters []Filter) string {
	for _, f := range filters {
		value = apply1(value, f)
	}
	return value
}

func apply1(value string, f Filter) string {
	switch strings.ToLower(f.Name) {
	case "querystring":
		return querystring(value, arg(f, 0))
	case "regexp":
		return regexpFilter(value, arg(f, 0))
	case "re_replace":
		return reReplace(value, arg(f, 0), arg(f, 1))
	case "replace":
		return strings.ReplaceAll(value, arg(f, 0), arg(f, 1))
	case "split":
		return split(value, arg(f, 0), arg(f, 1))
	case "trim":
		return strings.TrimSpace(value)
	case "prepend":
		return arg(f, 0) + value
	case "append":
		return value + arg(f, 0)
	case "substring":
		return substring(value, arg(f, 0), arg(f, 1))
	case "urldecode":
		decoded, err := url.QueryUnescape(value)
		if err != nil {
			return value
		}
		return decoded
	case "urlencode":
		return url.QueryEscape(value)
	case "htmldecode":
		return html.UnescapeString(value)
	case "striptags":
		return stripTags(value)
	case "tolower", "lowercase":
		return strings.ToLower(value)
	case "toupper", "uppercase":
		return strings.ToUpper(value)
	case "dateparse":
		return dateparse(value, arg(f, 0))
	case "timeago":
		return timeago(value)
	case "fuzzytime":
		return fuzzytime(value)
	case "validfilename":
		return validFilename(value)
	case "num_add", "add":
		return numOp(value, arg(f, 0), func(a, b float64) float64 { return a + b })
	case "num_sub", "sub":
		return numOp(value, arg(f, 0), func(a, b float64) float64 { return a - b })
	case "num_mul", "mul":
		return numOp(value, arg(f, 0), func(a, b float64) float64 { return a * b })
	case "num_div":
		return numOp(value, arg(f, 0), func(a, b float64) float64 {
			if b == 0 {
				return a
			}
			return a / b
		})
	case "div":
		return numOp(value, arg(f, 0), func(a, b float64) float64 {
			if b == 0 {
				return a
			}
			return a / b
		})
	default:
		return value
	}
}

func arg(f Filter, i int) string {
	if i < len(f.Args) {
		return f.Args[i]
	}
	return ""
}

func querystring(value, key string) string {
	if u, err := url.Parse(value); err == nil {
		if v := u.Query().Get(key); v != "" {
			return v
		}
	}
	re, err := compileRegex(fmt.Sprintf(`(?:^|[?&])%s=([^&]+)`, regexp.QuoteMeta(key)))
	if err != nil {
		return ""
	}
	m := re.FindStringSubmatch(value)
	if len(m) < 2 {
		return ""
	}
	return m[1]
}

func regexpFilter(value, pattern string) string {
	re, err := compileRegex(pattern)
	if err != nil {
		return ""
	}
	m := re.FindStringSubmatch(value)
	if m == nil {
		return ""
	}
	if len(m) > 1 {
		return m[1]
	}
	return m[0]
}

func reReplace(value, pattern, replacement string) string {
	re, err := compileRegex(pattern)
	if err != nil {
		return value
	}
	return re.ReplaceAllString(value, replacement)
}

func split(value, sep, nStr string) string {
	parts := strings.Split(value, sep)
	n := 0
	if nStr != "" {
		if parsed, err := strconv.Atoi(nStr); err == nil {
			n = parsed
		}
	}
	if n < 0 || n >= len(parts) {
		return ""
	}
	return parts[n]
}

func substring(value, startStr, lenStr string) string {
	b := []byte(value)
	start, err := strconv.Atoi(startStr)
	if err != nil || start < 0 || start >= len(b) {
		return ""
	}
	if lenStr == "" {
		return string(b[start:])
	}
	length, err := strconv.Atoi(lenStr)
	if err != nil {
		return string(b[start:])
	}
	end := start + length
	if end > len(b) {
		end = len(b)
	}
	return string(b[start:end])
}

var tagRe = regexp.MustCompile(`<[^>]*>`)

func stripTags(value string) string {
	return tagRe.ReplaceAllString(value, "")
}

var invalidFilenameRe = regexp.MustCompile(`[<>:"/\\|?*]`)

func validFilename(value string) string {
	return invalidFilenameRe.ReplaceAllString(value, "_")
}

func numOp(value, operandStr string, op func(a, b float64) float64) string {
	a, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
	if err != nil {
		return value
	}
	b, err := strconv.ParseFloat(strings.TrimSpace(operandStr), 64)
	if err != nil {
		return value
	}
	result := op(a, b)
	if result == float64(int64(result)) {
		return strconv.FormatInt(int64(result), 10)
	}
	return strconv.FormatFloat(result, 'f', -1, 64)
}
