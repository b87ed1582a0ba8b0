package geonode

import (
	"encoding/json"

	"github.com/pkg/errors"
	"github.com/valyala/fastjson"
)

// Response is the answer of the geo node to a data query.
type Response struct {
	body       string
	attestable bool
}

func NewResponse(body string, attestable bool) *Response {
	return &Response{body: body, attestable: attestable}
}

func (r *Response) Body() string { return r.body }

func (r *Response) Attestable() bool { return r.attestable }

// Finalize renders the response envelope sent back to the client. An empty
// attestation is rendered as null.
func (r *Response) Finalize(attestation json.RawMessage) ([]byte, error) {
	a := arenaPool.Get()
	defer func() {
		a.Reset()
		arenaPool.Put(a)
	}()

	envelope := a.NewObject()
	envelope.Set("graphQLResponse", a.NewString(r.body))

	if len(attestation) == 0 {
		envelope.Set("attestation", a.NewNull())
		return envelope.MarshalTo(nil), nil
	}

	p := parserPool.Get()
	defer parserPool.Put(p)

	att, err := p.ParseBytes(attestation)
	if err != nil {
		return nil, errors.Wrap(err, "invalid attestation")
	}
	envelope.Set("attestation", att)

	return envelope.MarshalTo(nil), nil
}

// Attester signs attestable request/response pairs.
type Attester interface {
	Attest(request []byte, response *Response) (json.RawMessage, error)
}

// NoAttester never produces an attestation.
type NoAttester struct{}

func (NoAttester) Attest([]byte, *Response) (json.RawMessage, error) {
	return nil, nil
}

type StatusKind int

const (
	StatusData StatusKind = iota
	StatusErrors
)

func (k StatusKind) String() string {
	switch k {
	case StatusData:
		return "data"
	case StatusErrors:
		return "errors"
	}
	return "unknown"
}

// StatusResult is the post-processed answer to a status query. Payload holds
// the JSON body returned to the client.
type StatusResult struct {
	Kind    StatusKind
	Payload []byte
}

var _ Attester = NoAttester{}

var (
	parserPool fastjson.ParserPool
	arenaPool  fastjson.ArenaPool
)
