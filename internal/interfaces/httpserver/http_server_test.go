package httpserver_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shopvoice/function-gateway/internal/config"
	"github.com/shopvoice/function-gateway/internal/domain/catalog"
	"github.com/shopvoice/function-gateway/internal/domain/dispatch"
	"github.com/shopvoice/function-gateway/internal/domain/function"
	"github.com/shopvoice/function-gateway/internal/domain/session"
	"github.com/shopvoice/function-gateway/internal/domain/tenant"
	bindingrepo "github.com/shopvoice/function-gateway/internal/infrastructure/repository/binding"
	sessionrepo "github.com/shopvoice/function-gateway/internal/infrastructure/repository/session"
	"github.com/shopvoice/function-gateway/internal/interfaces/httpserver"
	"github.com/shopvoice/function-gateway/internal/interfaces/httpserver/handlers"
)

func init() {
	gin.SetMode(gin.TestMode)
}

const (
	functionKey = "fn-secret"
	adminKey    = "admin-secret"
)

const twoProducts = `{"shop":{"currencyCode":"USD"},"products":{"edges":[
  {"node":{"title":"Mug","handle":"mug","variants":{"edges":[{"node":{"title":"Default","price":"12.00","availableForSale":true}}]}}},
  {"node":{"title":"Tee","handle":"tee","variants":{"edges":[{"node":{"title":"M","price":"20","availableForSale":false}}]}}}
]}}`

type countingResolver struct {
	inner *tenant.Resolver
	calls atomic.Int32
}

func (r *countingResolver) ResolveByAssistant(ctx context.Context, assistantID string) (tenant.Credential, error) {
	r.calls.Add(1)
	return r.inner.ResolveByAssistant(ctx, assistantID)
}

type stubQuerier struct {
	calls  atomic.Int32
	tokens []string
	err    error
}

func (q *stubQuerier) Query(ctx context.Context, tenantDomain, accessToken, query string, variables map[string]any) (json.RawMessage, error) {
	q.calls.Add(1)
	q.tokens = append(q.tokens, accessToken)
	if q.err != nil {
		return nil, q.err
	}
	return json.RawMessage(twoProducts), nil
}

type fixture struct {
	handler  http.Handler
	resolver *countingResolver
	querier  *stubQuerier
	tenants  *tenant.Resolver
	sessions session.Store
}

func newFixture(t *testing.T, adminAPIKey string, ready httpserver.ReadinessCheck) *fixture {
	t.Helper()
	cfg := &config.Config{
		ServiceName:     "function-gateway",
		Environment:     "test",
		FunctionAPIKey:  functionKey,
		AdminAPIKey:     adminAPIKey,
		RequestTimeout:  2 * time.Second,
		MaxBodyBytes:    4096,
		ShutdownTimeout: time.Second,
	}

	f := &fixture{querier: &stubQuerier{}}
	f.sessions = session.NewService(sessionrepo.NewInMemoryRepository(), zerolog.Nop())
	f.tenants = tenant.NewResolver(bindingrepo.NewInMemoryRepository(), f.sessions, zerolog.Nop())
	f.resolver = &countingResolver{inner: f.tenants}

	registry := function.NewRegistry()
	require.NoError(t, catalog.New(f.querier, catalog.Options{}).Register(registry))
	executor := function.NewExecutor(registry, zerolog.Nop())
	dispatcher := dispatch.NewService(f.resolver, executor, zerolog.Nop())

	provider := handlers.NewProvider(dispatcher, registry, f.tenants, f.sessions, zerolog.Nop())
	f.handler = httpserver.New(cfg, zerolog.Nop(), provider, nil, ready).Handler()
	return f
}

func (f *fixture) provision(t *testing.T, assistantID, domain, token string) {
	t.Helper()
	_, err := f.tenants.Bind(context.Background(), assistantID, domain)
	require.NoError(t, err)
	if token != "" {
		require.NoError(t, f.sessions.Store(context.Background(), &session.Session{
			ID:           session.OfflineID(domain),
			TenantDomain: domain,
			AccessToken:  token,
		}))
	}
}

func (f *fixture) do(method, path, body string, header http.Header) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	for k, v := range header {
		req.Header[k] = v
	}
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	f.handler.ServeHTTP(w, req)
	return w
}

func withKey(key string) http.Header {
	return http.Header{"X-Api-Key": {key}}
}

const getTwoProducts = `{"assistant":{"id":"ast_1"},"message":{"type":"tool-calls","toolCalls":[{"id":"call_1","type":"function","function":{"name":"get_products","arguments":{"limit":2}}}]}}`

func TestFunctions_EndToEnd(t *testing.T) {
	f := newFixture(t, "", nil)
	f.provision(t, "ast_1", "shop-a.example", "tok_abc")

	w := f.do(http.MethodPost, "/functions", getTwoProducts, withKey(functionKey))

	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"results":[{"products":[
		{"title":"Mug","handle":"mug","price":"12.00","currency":"USD","available":true,
		 "variants":[{"title":"Default","price":"12.00","available":true}]},
		{"title":"Tee","handle":"tee","price":"20.00","currency":"USD","available":false,
		 "variants":[{"title":"M","price":"20.00","available":false}]}
	],"count":2}]}`, w.Body.String())
	assert.Equal(t, []string{"tok_abc"}, f.querier.tokens)
	assert.Empty(t, w.Header().Get("X-Unhandled-Tool-Calls"))
	assert.NotEmpty(t, w.Header().Get("X-Request-Id"))
}

func TestFunctions_RejectsBeforeAnyLookup(t *testing.T) {
	f := newFixture(t, "", nil)
	f.provision(t, "ast_1", "shop-a.example", "tok_abc")

	for name, header := range map[string]http.Header{
		"missing": {},
		"wrong":   withKey("nope"),
		"bearer":  {"Authorization": {"Bearer nope"}},
	} {
		t.Run(name, func(t *testing.T) {
			w := f.do(http.MethodPost, "/functions", getTwoProducts, header)
			assert.Equal(t, http.StatusUnauthorized, w.Code)
			assert.JSONEq(t, `{"results":[{"error":"invalid or missing api key","code":"UNAUTHENTICATED"}]}`, w.Body.String())
		})
	}
	assert.Zero(t, f.resolver.calls.Load())
	assert.Zero(t, f.querier.calls.Load())
}

func TestFunctions_MissingSession(t *testing.T) {
	f := newFixture(t, "", nil)
	f.provision(t, "ast_1", "shop-a.example", "")

	w := f.do(http.MethodPost, "/functions", getTwoProducts, withKey(functionKey))

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.JSONEq(t, `{"results":[{"error":"store credentials are missing; reinstall the app","code":"MISSING_CREDENTIAL"}]}`, w.Body.String())
	assert.Zero(t, f.querier.calls.Load())
}

func TestFunctions_UnknownAssistant(t *testing.T) {
	f := newFixture(t, "", nil)

	w := f.do(http.MethodPost, "/functions", getTwoProducts, withKey(functionKey))

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), `"UNKNOWN_TENANT"`)
}

func TestFunctions_MalformedBody(t *testing.T) {
	f := newFixture(t, "", nil)

	w := f.do(http.MethodPost, "/functions", `{"message":`, withKey(functionKey))
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"results":[{"error":"malformed request body","code":"MALFORMED_REQUEST"}]}`, w.Body.String())

	w = f.do(http.MethodPost, "/functions", `{"message":{"type":"tool-calls"}}`, withKey(functionKey))
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "assistant id is required")
}

func TestFunctions_BodyTooLarge(t *testing.T) {
	f := newFixture(t, "", nil)
	body := `{"assistantId":"ast_1","pad":"` + strings.Repeat("x", 8192) + `"}`

	w := f.do(http.MethodPost, "/functions", body, withKey(functionKey))

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "request body is too large")
	assert.Zero(t, f.resolver.calls.Load())
}

func TestFunctions_LifecycleNotice(t *testing.T) {
	f := newFixture(t, "", nil)
	f.provision(t, "ast_1", "shop-a.example", "tok_abc")

	w := f.do(http.MethodPost, "/functions", `{"assistantId":"ast_1","message":{"type":"status-update","status":"ended"}}`, withKey(functionKey))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"received":true,"type":"status-update"}`, w.Body.String())
	assert.Zero(t, f.querier.calls.Load())
}

func TestFunctions_ValidationErrorIsOK(t *testing.T) {
	f := newFixture(t, "", nil)
	f.provision(t, "ast_1", "shop-a.example", "tok_abc")

	body := `{"assistantId":"ast_1","message":{"type":"function-call","functionCall":{"name":"search_products","parameters":{"query":"  "}}}}`
	w := f.do(http.MethodPost, "/functions", body, withKey(functionKey))

	assert.Equal(t, http.StatusOK, w.Code)
	var got struct {
		Results []map[string]any `json:"results"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	require.Len(t, got.Results, 1)
	assert.Equal(t, "VALIDATION_ERROR", got.Results[0]["code"])
	assert.NotEmpty(t, got.Results[0]["error"])
	assert.Zero(t, f.querier.calls.Load())
}

func TestFunctions_DownstreamFailure(t *testing.T) {
	f := newFixture(t, "", nil)
	f.provision(t, "ast_1", "shop-a.example", "tok_abcdefghijk")
	f.querier.err = errors.New("unexpected status 502")

	w := f.do(http.MethodPost, "/functions", getTwoProducts, withKey(functionKey))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), `"DOWNSTREAM_FAILURE"`)
	assert.NotContains(t, w.Body.String(), "tok_abcdefghijk")
}

func TestFunctions_BatchReportsUnhandledCalls(t *testing.T) {
	f := newFixture(t, "", nil)
	f.provision(t, "ast_1", "shop-a.example", "tok_abc")

	body := `{"assistantId":"ast_1","message":{"type":"tool-calls","toolCalls":[
		{"function":{"name":"get_products","arguments":{"limit":1}}},
		{"function":{"name":"search_products","arguments":{"query":"mug"}}},
		{"function":{"name":"get_products","arguments":{}}}]}}`
	w := f.do(http.MethodPost, "/functions", body, withKey(functionKey))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "2", w.Header().Get("X-Unhandled-Tool-Calls"))
	assert.EqualValues(t, 1, f.querier.calls.Load())
}

func TestFunctions_Descriptor(t *testing.T) {
	f := newFixture(t, "", nil)

	w := f.do(http.MethodGet, "/functions", "", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"endpoint":"/functions","status":"available","functions":["get_products","search_products"]}`, w.Body.String())
}

func TestFunctions_Schema(t *testing.T) {
	f := newFixture(t, "", nil)

	w := f.do(http.MethodGet, "/functions/schema", "", nil)

	require.Equal(t, http.StatusOK, w.Code)
	var got []struct {
		Name       string         `json:"name"`
		Parameters map[string]any `json:"parameters"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	require.Len(t, got, 2)
	assert.Equal(t, "search_products", got[1].Name)
	assert.Equal(t, []any{"query"}, got[1].Parameters["required"])
}

func TestCoreRoutes(t *testing.T) {
	f := newFixture(t, "", nil)

	assert.Equal(t, http.StatusOK, f.do(http.MethodGet, "/healthz", "", nil).Code)
	assert.Equal(t, http.StatusOK, f.do(http.MethodGet, "/readyz", "", nil).Code)

	w := f.do(http.MethodGet, "/metrics", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "function_gateway_http_requests_total")
}

func TestReadyz_ReportsStoreFailure(t *testing.T) {
	f := newFixture(t, "", func(ctx context.Context) error { return errors.New("dial tcp: refused") })

	w := f.do(http.MethodGet, "/readyz", "", nil)

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Contains(t, w.Body.String(), "unavailable")
}

func TestAdmin_DisabledWithoutGuard(t *testing.T) {
	f := newFixture(t, "", nil)

	w := f.do(http.MethodPut, "/v1/admin/sessions", `{}`, withKey(""))
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestAdmin_RequiresKey(t *testing.T) {
	f := newFixture(t, adminKey, nil)

	header := withKey(functionKey)
	header.Set("X-Request-Id", "req-1")
	w := f.do(http.MethodPut, "/v1/admin/assistants/ast_1", `{"tenant_domain":"shop-a.example"}`, header)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.JSONEq(t, `{"error":"unauthorized","code":"UNAUTHENTICATED","request_id":"req-1"}`, w.Body.String())
}

func TestAdmin_ProvisionDispatchUninstall(t *testing.T) {
	f := newFixture(t, adminKey, nil)
	admin := withKey(adminKey)

	w := f.do(http.MethodPut, "/v1/admin/assistants/ast_1", `{"tenant_domain":"https://Shop-A.example/"}`, admin)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Contains(t, w.Body.String(), `"tenant_domain":"shop-a.example"`)

	w = f.do(http.MethodPut, "/v1/admin/sessions", `{"tenant_domain":"shop-a.example","scope":"read_products","access_token":"shpat_0123456789"}`, admin)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var view handlers.SessionView
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &view))
	assert.Equal(t, "offline_shop-a.example", view.ID)
	assert.Equal(t, "shpa****6789", view.AccessToken)

	w = f.do(http.MethodPost, "/functions", getTwoProducts, withKey(functionKey))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []string{"shpat_0123456789"}, f.querier.tokens)

	w = f.do(http.MethodGet, "/v1/admin/tenants/shop-a.example/sessions", "", admin)
	require.Equal(t, http.StatusOK, w.Code)
	assert.NotContains(t, w.Body.String(), "shpat_0123456789")

	w = f.do(http.MethodDelete, "/v1/admin/tenants/shop-a.example", "", admin)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"tenant_domain":"shop-a.example","sessions_deleted":1,"bindings_deleted":1}`, w.Body.String())

	w = f.do(http.MethodPost, "/functions", getTwoProducts, withKey(functionKey))
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), `"UNKNOWN_TENANT"`)
}

func TestAdmin_BadRequests(t *testing.T) {
	f := newFixture(t, adminKey, nil)
	admin := withKey(adminKey)

	w := f.do(http.MethodPut, "/v1/admin/assistants/ast_1", `{}`, admin)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = f.do(http.MethodPut, "/v1/admin/sessions", `{"tenant_domain":"shop-a.example","is_online":true,"user_id":"7","access_token":"tok"}`, admin)
	assert.Equal(t, http.StatusBadRequest, w.Code, "online sessions need an expiry")
}

func TestAdmin_DeleteSessionAndUnbind(t *testing.T) {
	f := newFixture(t, adminKey, nil)
	admin := withKey(adminKey)
	f.provision(t, "ast_1", "shop-a.example", "tok_abc")

	assert.Equal(t, http.StatusNoContent, f.do(http.MethodDelete, "/v1/admin/sessions/offline_shop-a.example", "", admin).Code)
	w := f.do(http.MethodPost, "/functions", getTwoProducts, withKey(functionKey))
	assert.Contains(t, w.Body.String(), `"MISSING_CREDENTIAL"`)

	assert.Equal(t, http.StatusNoContent, f.do(http.MethodDelete, "/v1/admin/assistants/ast_1", "", admin).Code)
	w = f.do(http.MethodPost, "/functions", getTwoProducts, withKey(functionKey))
	assert.Contains(t, w.Body.String(), `"UNKNOWN_TENANT"`)
}
