package catlink

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openpetcare/catbridge/config"
)

type memStore struct {
	recs map[string]*AuthRecord
}

func newMemStore() *memStore {
	return &memStore{recs: map[string]*AuthRecord{}}
}

func (m *memStore) Load(uid string) (*AuthRecord, error) {
	return m.recs[uid], nil
}

func (m *memStore) Save(uid string, rec *AuthRecord) error {
	m.recs[uid] = rec
	return nil
}

func testAccount(base string) config.AccountConfig {
	return config.AccountConfig{
		Phone:    "13800000000",
		PhoneIAC: "86",
		Password: "s3cret",
		APIBase:  base,
		Language: "en_GB",
	}
}

func writeJSON(w http.ResponseWriter, body string) {
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write([]byte(body))
}

func TestLoginSetsToken(t *testing.T) {
	var gotPassword, gotMobile string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.True(t, strings.HasSuffix(r.URL.Path, APILoginPassword))
		require.Equal(t, http.MethodPost, r.Method)
		require.NoError(t, r.ParseForm())
		gotMobile = r.PostFormValue("mobile")
		gotPassword = r.PostFormValue("password")
		assert.NotEmpty(t, r.PostFormValue("sign"))
		assert.NotEmpty(t, r.PostFormValue("noncestr"))
		writeJSON(w, `{"returnCode":0,"data":{"token":"tok-1"}}`)
	}))
	defer ts.Close()

	sess := NewSession(testAccount(ts.URL), newMemStore())
	require.NoError(t, sess.Login(context.Background()))

	assert.Equal(t, "tok-1", sess.Token())
	assert.Equal(t, "13800000000", gotMobile)
	// Short passwords go out obfuscated, never verbatim.
	assert.NotEqual(t, "s3cret", gotPassword)
	assert.Greater(t, len(gotPassword), 50)
}

func TestLoginLongPasswordVerbatim(t *testing.T) {
	var gotPassword string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		gotPassword = r.PostFormValue("password")
		writeJSON(w, `{"returnCode":0,"data":{"token":"tok-1"}}`)
	}))
	defer ts.Close()

	cfg := testAccount(ts.URL)
	cfg.Password = "averylongpassword"
	sess := NewSession(cfg, newMemStore())
	require.NoError(t, sess.Login(context.Background()))

	assert.Equal(t, "averylongpassword", gotPassword)
}

func TestLoginFailure(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, `{"returnCode":1001,"msg":"wrong password"}`)
	}))
	defer ts.Close()

	sess := NewSession(testAccount(ts.URL), newMemStore())
	err := sess.Login(context.Background())

	assert.ErrorIs(t, err, ErrLoginFailed)
	assert.Empty(t, sess.Token())
}

func TestCheckAuthSaveKeepsUpdateAt(t *testing.T) {
	store := newMemStore()
	sess := NewSession(testAccount(""), store)
	sess.setToken("tok-1")

	first, err := sess.CheckAuth(context.Background(), true)
	require.NoError(t, err)
	require.NotZero(t, first.UpdateAt)

	// Same token persisted again keeps the original timestamp.
	second, err := sess.CheckAuth(context.Background(), true)
	require.NoError(t, err)
	assert.Equal(t, first.UpdateAt, second.UpdateAt)

	// A changed token bumps it.
	store.recs[sess.UID()].UpdateAt = 12345
	sess.setToken("tok-2")
	third, err := sess.CheckAuth(context.Background(), true)
	require.NoError(t, err)
	assert.Equal(t, "tok-2", third.Token)
	assert.NotEqual(t, int64(12345), third.UpdateAt)
}

func TestCheckAuthRestore(t *testing.T) {
	store := newMemStore()
	store.recs["86-13800000000"] = &AuthRecord{
		Phone: "13800000000", Token: "stored-tok", UpdateAt: 1,
	}
	sess := NewSession(testAccount(""), store)

	rec, err := sess.CheckAuth(context.Background(), false)
	require.NoError(t, err)
	assert.Equal(t, "stored-tok", rec.Token)
	assert.Equal(t, "stored-tok", sess.Token())
}

func TestTokenRequestRetriesOnceOnIllegalToken(t *testing.T) {
	var loginCalls, listCalls int
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case strings.HasSuffix(r.URL.Path, APILoginPassword):
			loginCalls++
			writeJSON(w, `{"returnCode":0,"data":{"token":"fresh-tok"}}`)
		case strings.HasSuffix(r.URL.Path, APIDeviceList):
			listCalls++
			if listCalls == 1 {
				writeJSON(w, `{"returnCode":1002,"msg":"illegal token"}`)
				return
			}
			assert.Equal(t, "fresh-tok", r.Header.Get("token"))
			writeJSON(w, `{"returnCode":0,"data":{"devices":[{"id":"d1","mac":"AA"}]}}`)
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
		}
	}))
	defer ts.Close()

	store := newMemStore()
	store.recs["86-13800000000"] = &AuthRecord{Token: "stale-tok"}
	sess := NewSession(testAccount(ts.URL), store)
	_, err := sess.CheckAuth(context.Background(), false)
	require.NoError(t, err)

	devices := sess.DeviceList(context.Background())

	require.Len(t, devices, 1)
	assert.Equal(t, "d1", devices[0]["id"])
	assert.Equal(t, 1, loginCalls)
	assert.Equal(t, 2, listCalls)
}

func TestRequestPostGetUsesQuery(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		q := r.URL.Query()
		assert.Equal(t, "42", q.Get("deviceId"))
		assert.NotEmpty(t, q.Get("sign"))
		writeJSON(w, `{"returnCode":0,"data":{}}`)
	}))
	defer ts.Close()

	sess := NewSession(testAccount(ts.URL), newMemStore())
	rsp := sess.Request(context.Background(), "token/device/info", map[string]string{"deviceId": "42"}, MethodPostGet)
	assert.Equal(t, 0, rsp.ReturnCode())
}

func TestRequestTransportFailure(t *testing.T) {
	sess := NewSession(testAccount("http://127.0.0.1:1"), newMemStore())
	rsp := sess.Request(context.Background(), "token/device/info", nil, MethodGet)
	assert.NotNil(t, rsp)
	assert.Empty(t, rsp)
}

func TestRequestDoesNotMutateParams(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, `{"returnCode":0}`)
	}))
	defer ts.Close()

	sess := NewSession(testAccount(ts.URL), newMemStore())
	params := map[string]string{"deviceId": "42"}
	sess.Request(context.Background(), "token/device/info", params, MethodGet)

	assert.Equal(t, map[string]string{"deviceId": "42"}, params)
}

func TestCatSummaryParams(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasSuffix(r.URL.Path, APICatSummary) {
			q := r.URL.Query()
			assert.Equal(t, "p1", q.Get("petId"))
			assert.Equal(t, "1", q.Get("sport"))
			assert.Len(t, q.Get("date"), 8)
			assert.Equal(t, "Asia/Shanghai", q.Get("timezoneId"))
		}
		writeJSON(w, `{"returnCode":0,"data":{}}`)
	}))
	defer ts.Close()

	cfg := testAccount(ts.URL)
	cfg.TimezoneID = "Asia/Shanghai"
	sess := NewSession(cfg, newMemStore())
	sess.setToken("tok")
	rsp := sess.CatSummary(context.Background(), "p1")
	assert.Equal(t, 0, rsp.ReturnCode())
}

func TestServerURL(t *testing.T) {
	tests := []struct {
		name    string
		apiBase string
		region  string
		want    string
	}{
		{"explicit base wins", "https://example.com/api/", "china", "https://example.com/api/"},
		{"known region", "", "china", APIServers["china"]},
		{"unknown region falls back", "", "mars", APIServers["global"]},
		{"empty region falls back", "", "", APIServers["global"]},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ServerURL(tt.apiBase, tt.region))
		})
	}
}
