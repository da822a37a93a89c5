package prisma

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recorded struct {
	method string
	path   string
	query  string
	auth   string
	accept string
	body   map[string]interface{}
}

func newAPI(t *testing.T, handler func(w http.ResponseWriter, r *http.Request)) (*httptest.Server, *[]recorded) {
	t.Helper()
	var calls []recorded
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec := recorded{
			method: r.Method,
			path:   r.URL.Path,
			query:  r.URL.RawQuery,
			auth:   r.Header.Get(authHeader),
			accept: r.Header.Get("Accept"),
		}
		if data, _ := io.ReadAll(r.Body); len(data) > 0 {
			_ = json.Unmarshal(data, &rec.body)
		}
		calls = append(calls, rec)
		handler(w, r)
	}))
	t.Cleanup(srv.Close)
	return srv, &calls
}

func newTestClient(t *testing.T, url string) *Client {
	t.Helper()
	c, err := NewClient(Config{URL: url + "/", AccessKey: "key", SecretKey: "secret", ConnectTimeout: time.Second, ReadTimeout: 2 * time.Second})
	require.NoError(t, err)
	return c
}

func TestCollectFlow(t *testing.T) {
	srv, calls := newAPI(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/login":
			w.Write([]byte(`{"token":"tok-123"}`))
		case "/policy":
			w.Write([]byte(`[{"policyId":"P1"}]`))
		case "/alert":
			w.Write([]byte(`[{"status":"open"}]`))
		default:
			http.NotFound(w, r)
		}
	})
	c := newTestClient(t, srv.URL)
	ctx := context.Background()

	token, err := c.Login(ctx)
	require.NoError(t, err)
	assert.Equal(t, "tok-123", token)

	policies, err := c.FetchPolicies(ctx)
	require.NoError(t, err)
	assert.Equal(t, `[{"policyId":"P1"}]`, string(policies))

	alerts, err := c.FetchAlerts(ctx, AlertQuery{CloudAccountID: "1234", TimeRange: TimeRange{Amount: 2, Unit: "week"}})
	require.NoError(t, err)
	assert.Equal(t, `[{"status":"open"}]`, string(alerts))

	require.Len(t, *calls, 3)
	login, policy, alert := (*calls)[0], (*calls)[1], (*calls)[2]

	assert.Equal(t, http.MethodPost, login.method)
	assert.Equal(t, "key", login.body["username"])
	assert.Equal(t, "secret", login.body["password"])
	assert.Empty(t, login.auth)
	assert.Equal(t, "application/json; charset=UTF-8", login.accept)

	assert.Equal(t, http.MethodGet, policy.method)
	assert.Equal(t, "policy.enabled=true", policy.query)
	assert.Equal(t, "tok-123", policy.auth)

	assert.Equal(t, http.MethodPost, alert.method)
	assert.Equal(t, "tok-123", alert.auth)
	timeRange := alert.body["timeRange"].(map[string]interface{})
	assert.Equal(t, "relative", timeRange["type"])
	value := timeRange["value"].(map[string]interface{})
	assert.Equal(t, "week", value["unit"])
	assert.Equal(t, float64(2), value["amount"])
	filters := alert.body["filters"].([]interface{})
	require.Len(t, filters, 1)
	assert.Equal(t, map[string]interface{}{"name": "cloud.accountId", "operator": "=", "value": "1234"}, filters[0])
}

func TestFetchAlertsWithoutAccountFilter(t *testing.T) {
	srv, calls := newAPI(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[]`))
	})
	c := newTestClient(t, srv.URL)

	_, err := c.FetchAlerts(context.Background(), AlertQuery{TimeRange: DefaultTimeRange})
	require.NoError(t, err)
	_, hasFilters := (*calls)[0].body["filters"]
	assert.False(t, hasFilters)
}

func TestLoginWithoutTokenIsAuthenticationError(t *testing.T) {
	srv, _ := newAPI(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"message":"invalid credentials"}`))
	})
	c := newTestClient(t, srv.URL)

	_, err := c.Login(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrAuthentication))
}

func TestLoginUnauthorizedIsAuthenticationError(t *testing.T) {
	srv, _ := newAPI(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	})
	c := newTestClient(t, srv.URL)

	_, err := c.Login(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrAuthentication))
}

func TestNonSuccessStatusIsTransportError(t *testing.T) {
	srv, _ := newAPI(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})
	c := newTestClient(t, srv.URL)

	_, err := c.FetchPolicies(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrTransport))

	var statusErr *StatusError
	require.True(t, errors.As(err, &statusErr))
	assert.Equal(t, http.StatusInternalServerError, statusErr.Code)
}

func TestUnreachableServerIsTransportError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	c := newTestClient(t, url)
	_, err := c.Login(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrTransport))
}

func TestNewClientRequiresURLAndKeys(t *testing.T) {
	_, err := NewClient(Config{AccessKey: "a", SecretKey: "b"})
	assert.Error(t, err)
	_, err = NewClient(Config{URL: "https://api.example.test", AccessKey: "a"})
	assert.Error(t, err)
}

func TestTimeRange(t *testing.T) {
	assert.NoError(t, DefaultTimeRange.Validate())
	assert.Equal(t, "Time Range - Past 1 Month", DefaultTimeRange.Label())
	assert.Equal(t, "Time Range - Past 3 Year", TimeRange{Amount: 3, Unit: "year"}.Label())

	assert.Error(t, TimeRange{Amount: 4, Unit: "day"}.Validate())
	assert.Error(t, TimeRange{Amount: 0, Unit: "day"}.Validate())
	assert.Error(t, TimeRange{Amount: 1, Unit: "hour"}.Validate())
}
