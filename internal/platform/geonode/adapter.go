package geonode

import (
	"bytes"
	"net/url"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/savsgio/gotils/strconv"
	"github.com/valyala/fasthttp"
	"github.com/valyala/fastjson"
	"github.com/wundergraph/graphql-go-tools/pkg/graphql"

	"github.com/graphops/geo-service/internal/platform/deployment"
	"github.com/graphops/geo-service/internal/platform/proxy"
	"github.com/graphops/geo-service/internal/platform/query"
)

const (
	versionQuery    = "{ version { version } }"
	versionResponse = `{"data":{},"errors":null}`

	graphqlPath = "/graphql"
)

var errEmptyStatus = errors.New("response has neither data nor errors")

type Options struct {
	QueryPool  proxy.Pool
	StatusPool proxy.Pool

	QueryBaseURL string
	StatusURL    string
	Timeout      time.Duration

	// SubgraphSentinel is the subgraph id reported by the geo node, it is
	// replaced by SubgraphID in status answers.
	SubgraphSentinel string
	SubgraphID       string

	Fields query.Whitelist
	Logger zerolog.Logger
}

// Adapter forwards data and status queries to the geo node.
type Adapter struct {
	options Options
}

func New(options Options) *Adapter {
	if options.Fields == nil {
		options.Fields = query.StatusFields
	}
	return &Adapter{options: options}
}

func (a *Adapter) queryURL(id deployment.ID) (string, error) {
	raw := strings.TrimRight(a.options.QueryBaseURL, "/") + graphqlPath

	u, err := url.ParseRequestURI(raw)
	if err != nil {
		return "", &InvalidDeploymentError{Deployment: id.String(), Err: err}
	}
	if u.Host == "" {
		return "", &InvalidDeploymentError{Deployment: id.String(), Err: errors.Errorf("missing host in %q", raw)}
	}

	return u.String(), nil
}

// ProcessRequest rewrites a data query, forwards it to the geo node and
// returns the original request together with the geo node answer.
func (a *Adapter) ProcessRequest(id deployment.ID, raw []byte) ([]byte, *Response, error) {

	uri, err := a.queryURL(id)
	if err != nil {
		return nil, nil, err
	}

	rewritten, err := query.RewriteRequest(raw)
	if err != nil {
		return nil, nil, &query.InvalidQueryError{Err: err}
	}

	a.options.Logger.Info().
		Str("deployment", id.String()).
		Str("deployment_hex", id.Hex()).
		Str("url", uri).
		Str("request", strconv.B2S(rewritten)).
		Msg("Forwarding query to the geo node")

	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseResponse(resp)

	if err := proxy.Forward(a.options.QueryPool, uri, rewritten, a.options.Timeout, resp); err != nil {
		return nil, nil, &ForwardingError{Err: err}
	}

	return raw, NewResponse(string(resp.Body()), IsAttestable(&resp.Header)), nil
}

// Status validates a status query and forwards it verbatim to the status
// endpoint of the geo node.
func (a *Adapter) Status(raw []byte) (*StatusResult, error) {

	var req graphql.Request
	if err := graphql.UnmarshalRequest(bytes.NewReader(raw), &req); err != nil {
		return nil, &query.InvalidQueryError{Err: err}
	}

	if strings.TrimSpace(req.Query) == versionQuery {
		return &StatusResult{Kind: StatusData, Payload: []byte(versionResponse)}, nil
	}

	if err := query.ValidateRootFields(req.Query, a.options.Fields); err != nil {
		return nil, err
	}

	a.options.Logger.Info().
		Str("query", req.Query).
		Msg("Forwarding status query")

	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseResponse(resp)

	if err := proxy.Forward(a.options.StatusPool, a.options.StatusURL, raw, a.options.Timeout, resp); err != nil {
		return nil, &ForwardingError{Err: err}
	}

	result, err := a.statusResult(resp.Body())
	if err != nil {
		return nil, err
	}

	a.options.Logger.Info().
		Stringer("kind", result.Kind).
		Str("response", strconv.B2S(result.Payload)).
		Msg("Status query answered")

	return result, nil
}

func (a *Adapter) statusResult(body []byte) (*StatusResult, error) {

	p := parserPool.Get()
	defer parserPool.Put(p)

	v, err := p.ParseBytes(body)
	if err != nil {
		return nil, &StatusQueryError{Err: err}
	}

	ar := arenaPool.Get()
	defer func() {
		ar.Reset()
		arenaPool.Put(ar)
	}()

	if errs := v.Get("errors"); errs != nil && errs.Type() == fastjson.TypeArray && len(errs.GetArray()) > 0 {
		out := ar.NewObject()
		out.Set("errors", errs)
		return &StatusResult{Kind: StatusErrors, Payload: out.MarshalTo(nil)}, nil
	}

	data := v.Get("data")
	if data == nil || data.Type() == fastjson.TypeNull {
		return nil, &StatusQueryError{Err: errEmptyStatus}
	}

	ReplaceSubgraphID(data, ar, a.options.SubgraphSentinel, a.options.SubgraphID)

	out := ar.NewObject()
	out.Set("data", data)
	out.Set("errors", ar.NewNull())

	return &StatusResult{Kind: StatusData, Payload: out.MarshalTo(nil)}, nil
}
