package geonode

import (
	"bytes"
	"unicode/utf8"

	"github.com/valyala/fasthttp"
)

const AttestableHeader = "graph-attestable"

// IsAttestable reports whether the response may be attested. Only an explicit
// "false" in the graph-attestable header opts out.
func IsAttestable(h *fasthttp.ResponseHeader) bool {
	value := h.Peek(AttestableHeader)
	if value == nil || !utf8.Valid(value) {
		return true
	}

	return !bytes.Equal(bytes.TrimSpace(value), []byte("false"))
}
