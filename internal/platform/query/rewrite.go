package query

import (
	"bytes"
	"strings"

	"github.com/valyala/fastjson"
)

// blockArgument is the time-travel argument the geo node schema does not expose.
const blockArgument = "block"

var (
	parserPool fastjson.ParserPool
	arenaPool  fastjson.ArenaPool
)

// RewriteRequest replaces the "query" field of the raw GraphQL JSON request
// with its rewritten form. All other fields are passed through unchanged.
// A request without a string "query" field is returned as is.
func RewriteRequest(raw []byte) ([]byte, error) {

	p := parserPool.Get()
	defer parserPool.Put(p)

	v, err := p.ParseBytes(raw)
	if err != nil {
		return nil, err
	}

	q := v.Get("query")
	if q == nil || q.Type() != fastjson.TypeString {
		return raw, nil
	}

	original := string(q.GetStringBytes())
	cleaned := Rewrite(original)
	if cleaned == original {
		return raw, nil
	}

	a := arenaPool.Get()
	defer arenaPool.Put(a)

	v.Set("query", a.NewString(cleaned))

	return v.MarshalTo(nil), nil
}

// Rewrite strips the block arguments from the GraphQL query text and cleans
// up the argument lists left behind. The result is a fixed point: rewriting
// it again returns the same string.
func Rewrite(q string) string {
	for {
		next := transform(q, matchBlockArgument)
		next = transform(next, matchLeadingComma)
		next = transform(next, matchEmptyArguments)
		if next == q {
			return next
		}
		q = next
	}
}

// matcher tries to consume src starting at i. On success it returns the
// updated output and the position to continue from.
type matcher func(dst []byte, src string, i int) ([]byte, int, bool)

// transform walks the query text and applies the matcher everywhere outside
// of string literals and comments.
func transform(src string, match matcher) string {
	dst := make([]byte, 0, len(src))

	for i := 0; i < len(src); {
		switch src[i] {
		case '"':
			end := skipString(src, i)
			dst = append(dst, src[i:end]...)
			i = end
			continue
		case '#':
			end := skipComment(src, i)
			dst = append(dst, src[i:end]...)
			i = end
			continue
		}

		if out, next, ok := match(dst, src, i); ok {
			dst, i = out, next
			continue
		}

		dst = append(dst, src[i])
		i++
	}

	return string(dst)
}

// matchBlockArgument removes `block: null` and `block: {...}` together with
// the comma that separates it from the neighbouring argument.
func matchBlockArgument(dst []byte, src string, i int) ([]byte, int, bool) {
	if !strings.HasPrefix(src[i:], blockArgument) {
		return dst, i, false
	}
	if i > 0 && (isNameChar(src[i-1]) || src[i-1] == '$') {
		return dst, i, false
	}

	j := i + len(blockArgument)
	if j < len(src) && isNameChar(src[j]) {
		return dst, i, false
	}

	j = skipSpace(src, j)
	if j >= len(src) || src[j] != ':' {
		return dst, i, false
	}

	end, ok := valueEnd(src, skipSpace(src, j+1))
	if !ok {
		return dst, i, false
	}

	// the argument is followed by a comma: drop the comma and the spaces after it
	if k := skipSpace(src, end); k < len(src) && src[k] == ',' {
		return dst, skipSpace(src, k+1), true
	}

	return trimSeparator(dst), end, true
}

// matchLeadingComma collapses `(, ` into `(`.
func matchLeadingComma(dst []byte, src string, i int) ([]byte, int, bool) {
	if src[i] != '(' {
		return dst, i, false
	}

	j := skipSpace(src, i+1)
	if j >= len(src) || src[j] != ',' {
		return dst, i, false
	}

	return append(dst, '('), skipSpace(src, j+1), true
}

// matchEmptyArguments drops argument lists without arguments, comments
// left inside them included.
func matchEmptyArguments(dst []byte, src string, i int) ([]byte, int, bool) {
	if src[i] != '(' {
		return dst, i, false
	}

	j := skipIgnored(src, i+1)
	if j >= len(src) || src[j] != ')' {
		return dst, i, false
	}

	return dst, j + 1, true
}

// valueEnd returns the position right after a `null` literal or a balanced
// object literal starting at i.
func valueEnd(src string, i int) (int, bool) {
	if i >= len(src) {
		return 0, false
	}

	if strings.HasPrefix(src[i:], "null") {
		end := i + len("null")
		if end < len(src) && isNameChar(src[end]) {
			return 0, false
		}
		return end, true
	}

	if src[i] != '{' {
		return 0, false
	}

	depth := 0
	for k := i; k < len(src); {
		switch src[k] {
		case '"':
			k = skipString(src, k)
			continue
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return k + 1, true
			}
		}
		k++
	}

	return 0, false
}

// trimSeparator removes the whitespace and the comma that precede a removed
// argument. A trailing comment on the last line must keep its line break.
func trimSeparator(dst []byte) []byte {
	trimmed := bytes.TrimRight(dst, " \t\r\n")
	if n := len(trimmed); n > 0 && trimmed[n-1] == ',' {
		trimmed = bytes.TrimRight(trimmed[:n-1], " \t\r\n")
	}

	lastLine := trimmed[bytes.LastIndexByte(trimmed, '\n')+1:]
	if hasComment(string(lastLine)) {
		return dst
	}

	return trimmed
}

// hasComment reports whether the line ends with a comment. A '#' inside a
// string literal does not start one.
func hasComment(line string) bool {
	for i := 0; i < len(line); {
		switch line[i] {
		case '"':
			i = skipString(line, i)
			continue
		case '#':
			return true
		}
		i++
	}
	return false
}

func skipString(src string, i int) int {
	if strings.HasPrefix(src[i:], `"""`) {
		for j := i + 3; j < len(src); j++ {
			if src[j] == '\\' && strings.HasPrefix(src[j+1:], `"""`) {
				j += 3
				continue
			}
			if strings.HasPrefix(src[j:], `"""`) {
				return j + 3
			}
		}
		return len(src)
	}

	for j := i + 1; j < len(src); j++ {
		switch src[j] {
		case '\\':
			j++
		case '"':
			return j + 1
		case '\n':
			return j
		}
	}

	return len(src)
}

func skipComment(src string, i int) int {
	if end := strings.IndexByte(src[i:], '\n'); end >= 0 {
		return i + end
	}
	return len(src)
}

func skipSpace(src string, i int) int {
	for i < len(src) {
		switch src[i] {
		case ' ', '\t', '\r', '\n':
			i++
		default:
			return i
		}
	}
	return i
}

// skipIgnored skips whitespace and comments.
func skipIgnored(src string, i int) int {
	for {
		i = skipSpace(src, i)
		if i >= len(src) || src[i] != '#' {
			return i
		}
		i = skipComment(src, i)
	}
}

func isNameChar(c byte) bool {
	return c == '_' || c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c >= '0' && c <= '9'
}
