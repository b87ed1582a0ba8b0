package proxy

import (
	"time"

	"github.com/valyala/fasthttp"
)

const contentTypeJSON = "application/json"

// Forward posts the JSON body to the backend URI with a client taken from the
// pool. The backend answer is written to resp. The request is not retried.
func Forward(pool Pool, uri string, body []byte, timeout time.Duration, resp *fasthttp.Response) error {

	client, ip, err := pool.Get()
	if err != nil {
		return err
	}
	defer pool.Put(ip, client)

	req := fasthttp.AcquireRequest()
	defer fasthttp.ReleaseRequest(req)

	req.SetRequestURI(uri)
	req.Header.SetMethod(fasthttp.MethodPost)
	req.Header.SetContentType(contentTypeJSON)
	req.SetBody(body)

	return client.DoTimeout(req, resp, timeout)
}
