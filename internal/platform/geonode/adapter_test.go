package geonode

import (
	"errors"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"github.com/valyala/fasthttp"

	"github.com/graphops/geo-service/internal/platform/deployment"
	"github.com/graphops/geo-service/internal/platform/proxy"
	"github.com/graphops/geo-service/internal/platform/query"
)

const (
	testDeployment = "QmVfNm8Jok8fFtspmFYYGTo5Sp7BvP3nYr6UHvDrLe6ewp"
	testQueryBase  = "http://geo-node:8000/"
	testStatusURL  = "http://geo-node:8030/graphql"
	testTimeout    = 5 * time.Second
	resolvedIP     = "127.0.0.1"
)

type adapterMocks struct {
	queryPool  *proxy.MockPool
	statusPool *proxy.MockPool
	client     *proxy.MockHTTPClient
}

func newTestAdapter(t *testing.T) (*Adapter, *adapterMocks) {
	mockCtrl := gomock.NewController(t)
	t.Cleanup(mockCtrl.Finish)

	mocks := &adapterMocks{
		queryPool:  proxy.NewMockPool(mockCtrl),
		statusPool: proxy.NewMockPool(mockCtrl),
		client:     proxy.NewMockHTTPClient(mockCtrl),
	}

	adapter := New(Options{
		QueryPool:        mocks.queryPool,
		StatusPool:       mocks.statusPool,
		QueryBaseURL:     testQueryBase,
		StatusURL:        testStatusURL,
		Timeout:          testTimeout,
		SubgraphSentinel: "geo",
		SubgraphID:       testDeployment,
		Logger:           zerolog.Nop(),
	})

	return adapter, mocks
}

func testID(t *testing.T) deployment.ID {
	id, err := deployment.Parse(testDeployment)
	require.NoError(t, err)
	return id
}

func TestProcessRequest(t *testing.T) {

	adapter, mocks := newTestAdapter(t)

	raw := []byte(`{"query":"{ foo(block: {hash: \"0xabc\"}, first: 2) { id } }"}`)
	backendBody := `{"data":{"foo":[{"id":"1"}]}}`

	mocks.queryPool.EXPECT().Get().Return(mocks.client, resolvedIP, nil).Times(1)
	mocks.client.EXPECT().DoTimeout(gomock.Any(), gomock.Any(), testTimeout).
		DoAndReturn(func(req *fasthttp.Request, resp *fasthttp.Response, _ time.Duration) error {
			require.Equal(t, "http://geo-node:8000/graphql", req.URI().String())
			require.JSONEq(t, `{"query":"{ foo(first: 2) { id } }"}`, string(req.Body()))

			resp.Header.Set(AttestableHeader, "false")
			resp.SetBodyString(backendBody)
			return nil
		}).Times(1)
	mocks.queryPool.EXPECT().Put(resolvedIP, mocks.client).Return(nil).Times(1)

	request, resp, err := adapter.ProcessRequest(testID(t), raw)
	require.NoError(t, err)

	require.Equal(t, raw, request)
	require.Equal(t, backendBody, resp.Body())
	require.False(t, resp.Attestable())
}

func TestProcessRequestAttestable(t *testing.T) {

	adapter, mocks := newTestAdapter(t)

	mocks.queryPool.EXPECT().Get().Return(mocks.client, resolvedIP, nil).Times(1)
	mocks.client.EXPECT().DoTimeout(gomock.Any(), gomock.Any(), testTimeout).
		DoAndReturn(func(_ *fasthttp.Request, resp *fasthttp.Response, _ time.Duration) error {
			resp.SetBodyString(`{"data":{}}`)
			return nil
		}).Times(1)
	mocks.queryPool.EXPECT().Put(resolvedIP, mocks.client).Return(nil).Times(1)

	_, resp, err := adapter.ProcessRequest(testID(t), []byte(`{"query":"{ foo { id } }"}`))
	require.NoError(t, err)
	require.True(t, resp.Attestable())
}

func TestProcessRequestErrors(t *testing.T) {

	t.Run("invalid_json", func(t *testing.T) {
		adapter, _ := newTestAdapter(t)

		_, _, err := adapter.ProcessRequest(testID(t), []byte(`{"query":`))

		var invalid *query.InvalidQueryError
		require.True(t, errors.As(err, &invalid))
	})

	t.Run("invalid_base_url", func(t *testing.T) {
		adapter, _ := newTestAdapter(t)
		adapter.options.QueryBaseURL = "geo-node"

		_, _, err := adapter.ProcessRequest(testID(t), []byte(`{"query":"{ foo }"}`))

		var invalid *InvalidDeploymentError
		require.True(t, errors.As(err, &invalid))
		require.Equal(t, testDeployment, invalid.Deployment)
	})

	t.Run("forwarding", func(t *testing.T) {
		adapter, mocks := newTestAdapter(t)

		mocks.queryPool.EXPECT().Get().Return(mocks.client, resolvedIP, nil).Times(1)
		mocks.client.EXPECT().DoTimeout(gomock.Any(), gomock.Any(), testTimeout).Return(fasthttp.ErrTimeout).Times(1)
		mocks.queryPool.EXPECT().Put(resolvedIP, mocks.client).Return(nil).Times(1)

		_, _, err := adapter.ProcessRequest(testID(t), []byte(`{"query":"{ foo }"}`))

		var forwarding *ForwardingError
		require.True(t, errors.As(err, &forwarding))
		require.ErrorIs(t, err, fasthttp.ErrTimeout)
	})
}

func TestStatusVersion(t *testing.T) {

	// no backend call is expected
	adapter, _ := newTestAdapter(t)

	result, err := adapter.Status([]byte(`{"query":"{ version { version } }"}`))
	require.NoError(t, err)
	require.Equal(t, StatusData, result.Kind)
	require.JSONEq(t, `{"data":{},"errors":null}`, string(result.Payload))
}

func TestStatusData(t *testing.T) {

	adapter, mocks := newTestAdapter(t)

	raw := []byte(`{"query":"{ indexingStatuses { subgraph synced } }","variables":null}`)

	mocks.statusPool.EXPECT().Get().Return(mocks.client, resolvedIP, nil).Times(1)
	mocks.client.EXPECT().DoTimeout(gomock.Any(), gomock.Any(), testTimeout).
		DoAndReturn(func(req *fasthttp.Request, resp *fasthttp.Response, _ time.Duration) error {
			require.Equal(t, testStatusURL, req.URI().String())
			require.Equal(t, raw, req.Body())

			resp.SetBodyString(`{"data":{"indexingStatuses":[{"subgraph":"geo","synced":true}]}}`)
			return nil
		}).Times(1)
	mocks.statusPool.EXPECT().Put(resolvedIP, mocks.client).Return(nil).Times(1)

	result, err := adapter.Status(raw)
	require.NoError(t, err)
	require.Equal(t, StatusData, result.Kind)
	require.JSONEq(t, `{"data":{"indexingStatuses":[{"subgraph":"`+testDeployment+`","synced":true}]},"errors":null}`, string(result.Payload))
}

func TestStatusBackendErrors(t *testing.T) {

	adapter, mocks := newTestAdapter(t)

	mocks.statusPool.EXPECT().Get().Return(mocks.client, resolvedIP, nil).Times(1)
	mocks.client.EXPECT().DoTimeout(gomock.Any(), gomock.Any(), testTimeout).
		DoAndReturn(func(_ *fasthttp.Request, resp *fasthttp.Response, _ time.Duration) error {
			resp.SetBodyString(`{"errors":[{"message":"subgraph geo not found"}]}`)
			return nil
		}).Times(1)
	mocks.statusPool.EXPECT().Put(resolvedIP, mocks.client).Return(nil).Times(1)

	result, err := adapter.Status([]byte(`{"query":"{ chains { network } }"}`))
	require.NoError(t, err)
	require.Equal(t, StatusErrors, result.Kind)
	require.JSONEq(t, `{"errors":[{"message":"subgraph geo not found"}]}`, string(result.Payload))
}

func TestStatusErrors(t *testing.T) {

	t.Run("unsupported_fields", func(t *testing.T) {
		adapter, _ := newTestAdapter(t)

		_, err := adapter.Status([]byte(`{"query":"{ indexingStatuses { subgraph } secrets }"}`))

		var unsupported *query.UnsupportedFieldsError
		require.True(t, errors.As(err, &unsupported))
		require.Equal(t, []string{"secrets"}, unsupported.Fields)
	})

	t.Run("invalid_request", func(t *testing.T) {
		adapter, _ := newTestAdapter(t)

		_, err := adapter.Status([]byte(`not json`))

		var invalid *query.InvalidQueryError
		require.True(t, errors.As(err, &invalid))
	})

	t.Run("empty_answer", func(t *testing.T) {
		adapter, mocks := newTestAdapter(t)

		mocks.statusPool.EXPECT().Get().Return(mocks.client, resolvedIP, nil).Times(1)
		mocks.client.EXPECT().DoTimeout(gomock.Any(), gomock.Any(), testTimeout).
			DoAndReturn(func(_ *fasthttp.Request, resp *fasthttp.Response, _ time.Duration) error {
				resp.SetBodyString(`{"data":null,"errors":[]}`)
				return nil
			}).Times(1)
		mocks.statusPool.EXPECT().Put(resolvedIP, mocks.client).Return(nil).Times(1)

		_, err := adapter.Status([]byte(`{"query":"{ chains { network } }"}`))

		var statusErr *StatusQueryError
		require.True(t, errors.As(err, &statusErr))
	})

	t.Run("forwarding", func(t *testing.T) {
		adapter, mocks := newTestAdapter(t)

		mocks.statusPool.EXPECT().Get().Return(nil, "", errors.New("no hosts")).Times(1)

		_, err := adapter.Status([]byte(`{"query":"{ chains { network } }"}`))

		var forwarding *ForwardingError
		require.True(t, errors.As(err, &forwarding))
	})
}
