package template

import (
	"fmt"
	"strconv"
	"strings"
)

// resolvePath resolves a dotted path expression ("a.Query.Today.Year",
// ".Keywords", ".Result.foo") against the context. Unknown paths resolve
// to empty string per the "no exceptions propagate" contract.
func resolvePath(ctx *Context, path string) any {
	path = strings.TrimPrefix(path, ".")
	if path == "" {
		return ""
	}
	if path == "True" {
		return true
	}
	if path == "False" {
		return false
	}
	parts := strings.Split(path, ".")

	switch parts[0] {
	case "Query":
		return resolveQuery(ctx, parts[1:])
	case "Config":
		return lookupMap(ctx.Config, parts[1:])
	case "Result":
		return lookupMap(ctx.Result, parts[1:])
	default:
		// Top-level aliases (.Keywords, .Categories, ...) mirror Query.*.
		return resolveQuery(ctx, parts)
	}
}

func resolveQuery(ctx *Context, parts []string) any {
	if len(parts) == 0 {
		return ""
	}
	switch parts[0] {
	case "Today":
		return lookupMap(ctx.today(), parts[1:])
	case "Yesterday":
		return lookupMap(ctx.yesterday(), parts[1:])
	case "Tomorrow":
		return lookupMap(ctx.tomorrow(), parts[1:])
	default:
		return lookupMap(ctx.Query, parts)
	}
}

func lookupMap(m map[string]any, parts []string) any {
	if len(parts) == 0 {
		return ""
	}
	v, ok := m[parts[0]]
	if !ok {
		return ""
	}
	if len(parts) == 1 {
		return v
	}
	if sub, ok := v.(map[string]any); ok {
		return lookupMap(sub, parts[1:])
	}
	return ""
}

// Stringify renders any value the way it would appear substituted into a
// rendered string.
func Stringify(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case bool:
		if t {
			return "true"
		}
		return "false"
	case int:
		return strconv.Itoa(t)
	case int64:
		return strconv.FormatInt(t, 10)
	case float64:
		if t == float64(int64(t)) {
			return strconv.FormatInt(int64(t), 10)
		}
		return strconv.FormatFloat(t, 'f', -1, 64)
	case []string:
		return strings.Join(t, ",")
	default:
		return fmt.Sprintf("%v", t)
	}
}

// Truthy implements the spec's truthiness rule: not empty string, not the
// literal "false", not "0".
func Truthy(v any) bool {
	if b, ok := v.(bool); ok {
		return b
	}
	s := Stringify(v)
	return s != "" && s != "false" && s != "0"
}

func asFloat(v any) (float64, bool) {
	switch t := v.(type) {
	case int:
		return float64(t), true
	case int64:
		return float64(t), true
	case float64:
		return t, true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
		if err != nil {
			return 0, false
		}
		return f, true
	default:
		return 0, false
	}
}

// EvalValue evaluates an expression to a value: a path expression, a
// quoted/numeric literal, or a function call (eq/ne/gt/lt/ge/le/and/or/join).
func EvalValue(ctx *Context, expr string) any {
	expr = strings.TrimSpace(stripParens(expr))
	if expr == "" {
		return ""
	}
	if s, ok := unquote(expr); ok {
		return s
	}
	if f, err := strconv.ParseFloat(expr, 64); err == nil {
		return f
	}
	if strings.HasPrefix(expr, ".") {
		return resolvePath(ctx, expr)
	}

	tokens := tokenize(expr)
	if len(tokens) == 0 {
		return ""
	}
	switch tokens[0] {
	case "eq", "ne", "gt", "lt", "ge", "le":
		if len(tokens) < 3 {
			return false
		}
		return compare(tokens[0], EvalValue(ctx, tokens[1]), EvalValue(ctx, tokens[2]))
	case "and":
		for _, t := range tokens[1:] {
			if !Truthy(EvalValue(ctx, t)) {
				return false
			}
		}
		return true
	case "or":
		for _, t := range tokens[1:] {
			v := EvalValue(ctx, t)
			if Truthy(v) {
				return v
			}
		}
		return false
	case "join":
		if len(tokens) < 3 {
			return ""
		}
		list := EvalValue(ctx, tokens[1])
		sep, _ := unquote(tokens[2])
		return joinValue(list, sep)
	default:
		// Bare token that isn't a path/literal/function: treat literally.
		return expr
	}
}

func joinValue(v any, sep string) string {
	switch t := v.(type) {
	case []string:
		return strings.Join(t, sep)
	case []int:
		parts := make([]string, len(t))
		for i, n := range t {
			parts[i] = strconv.Itoa(n)
		}
		return strings.Join(parts, sep)
	case []any:
		parts := make([]string, len(t))
		for i, e := range t {
			parts[i] = Stringify(e)
		}
		return strings.Join(parts, sep)
	default:
		return Stringify(v)
	}
}

func compare(op string, a, b any) bool {
	af, aok := asFloat(a)
	bf, bok := asFloat(b)
	if aok && bok {
		switch op {
		case "eq":
			return af == bf
		case "ne":
			return af != bf
		case "gt":
			return af > bf
		case "lt":
			return af < bf
		case "ge":
			return af >= bf
		case "le":
			return af <= bf
		}
	}
	as, bs := Stringify(a), Stringify(b)
	switch op {
	case "eq":
		return as == bs
	case "ne":
		return as != bs
	case "gt":
		return as > bs
	case "lt":
		return as < bs
	case "ge":
		return as >= bs
	case "le":
		return as <= bs
	}
	return false
}

// EvalBool evaluates an expression used as an `if` condition.
func EvalBool(ctx *Context, expr string) bool {
	return Truthy(EvalValue(ctx, expr))
}
