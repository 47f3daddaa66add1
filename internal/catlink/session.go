package catlink

import (
	"context"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/guonaihong/gout"
	"github.com/pkg/errors"
	"github.com/spf13/cast"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/openpetcare/catbridge/config"
)

const requestTimeout = 60 * time.Second

// ErrLoginFailed reports a login response that carried no token.
var ErrLoginFailed = errors.New("login failed: no token in response")

// AuthRecord is the persisted per-account session state.
type AuthRecord struct {
	Phone    string `json:"phone"`
	Token    string `json:"token"`
	UpdateAt int64  `json:"update_at"`
}

// TokenStore persists one AuthRecord per account uid.
type TokenStore interface {
	Load(uid string) (*AuthRecord, error)
	Save(uid string, rec *AuthRecord) error
}

// Session owns one account's credentials, token and signed-request
// pipeline against the vendor cloud.
type Session struct {
	cfg   config.AccountConfig
	base  string
	store TokenStore

	mu    sync.RWMutex
	token string

	loginGroup singleflight.Group
}

func NewSession(cfg config.AccountConfig, store TokenStore) *Session {
	return &Session{
		cfg:   cfg,
		base:  ServerURL(cfg.APIBase, cfg.Region),
		store: store,
	}
}

func (s *Session) UID() string { return s.cfg.UID() }

func (s *Session) Config() config.AccountConfig { return s.cfg }

func (s *Session) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

func (s *Session) setToken(token string) {
	s.mu.Lock()
	s.token = token
	s.mu.Unlock()
}

func (s *Session) apiURL(api string) string {
	return strings.TrimRight(s.base, "/") + "/" + strings.TrimLeft(api, "/")
}

// Request issues one signed call. A fresh millisecond nonce and, when
// held, the session token are injected before signing. Transport and
// decode failures degrade to an empty Response, never an error.
func (s *Session) Request(ctx context.Context, api string, params map[string]string, method string) Response {
	pms := gout.H{}
	for k, v := range params {
		pms[k] = v
	}
	pms["noncestr"] = strconv.FormatInt(time.Now().UnixMilli(), 10)
	token := s.Token()
	if token != "" {
		pms["token"] = token
	}
	pms["sign"] = signH(pms)

	headers := gout.H{
		"language":   s.cfg.Language,
		"User-Agent": UserAgent,
	}
	if token != "" {
		headers["token"] = token
	}

	url := s.apiURL(api)
	var body []byte
	var err error
	switch strings.ToUpper(method) {
	case MethodPost:
		err = gout.POST(url).WithContext(ctx).SetTimeout(requestTimeout).
			SetHeader(headers).SetWWWForm(pms).BindBody(&body).Do()
	case MethodPostGet:
		err = gout.POST(url).WithContext(ctx).SetTimeout(requestTimeout).
			SetHeader(headers).SetQuery(pms).BindBody(&body).Do()
	default:
		err = gout.GET(url).WithContext(ctx).SetTimeout(requestTimeout).
			SetHeader(headers).SetQuery(pms).BindBody(&body).Do()
	}
	if err != nil {
		zap.S().Warnf("request %s failed: %s", api, err.Error())
		return Response{}
	}
	return decodeResponse(body)
}

func signH(pms gout.H) string {
	flat := make(map[string]string, len(pms))
	for k, v := range pms {
		flat[k] = cast.ToString(v)
	}
	return ParamsSign(flat)
}

// Login authenticates the account. Concurrent callers share a single
// in-flight login.
func (s *Session) Login(ctx context.Context) error {
	_, err, _ := s.loginGroup.Do("login", func() (interface{}, error) {
		return nil, s.doLogin(ctx)
	})
	return err
}

func (s *Session) doLogin(ctx context.Context) error {
	pwd := s.cfg.Password
	// Vendor-encrypted passwords are always longer than 16 chars, so
	// short strings are treated as plaintext needing encryption. A
	// 17+ char plaintext password slips through unencrypted; kept
	// bug-compatible with the mobile app behavior.
	if len(pwd) <= 16 {
		enc, err := EncryptPassword(pwd)
		if err != nil {
			return err
		}
		pwd = enc
	}
	params := map[string]string{
		"platform":          Platform,
		"internationalCode": s.cfg.PhoneIAC,
		"mobile":            s.cfg.Phone,
		"password":          pwd,
	}
	s.setToken("")
	rsp := s.Request(ctx, APILoginPassword, params, MethodPost)
	token := cast.ToString(rsp.Data()["token"])
	if token == "" {
		zap.S().Warnf("login %s failed: %s", s.UID(), rsp.ErrorText())
		return ErrLoginFailed
	}
	s.setToken(token)
	if _, err := s.CheckAuth(ctx, true); err != nil {
		zap.S().Warnf("persist auth for %s failed: %s", s.UID(), err.Error())
	}
	return nil
}

// CheckAuth persists the current token (save=true) or restores a
// previously persisted session (save=false). UpdateAt is bumped only
// when the token value actually changed.
func (s *Session) CheckAuth(ctx context.Context, save bool) (*AuthRecord, error) {
	old, err := s.store.Load(s.UID())
	if err != nil {
		return nil, errors.Wrap(err, "load auth record")
	}
	if save {
		rec := &AuthRecord{
			Phone: s.cfg.Phone,
			Token: s.Token(),
		}
		if old != nil && old.Token == rec.Token {
			rec.UpdateAt = old.UpdateAt
		} else {
			rec.UpdateAt = time.Now().Unix()
		}
		if err := s.store.Save(s.UID(), rec); err != nil {
			return nil, errors.Wrap(err, "save auth record")
		}
		return rec, nil
	}
	if old != nil && old.Token != "" {
		s.setToken(old.Token)
		return old, nil
	}
	return old, s.Login(ctx)
}

// TokenRequest issues a signed call after making sure a token is held,
// retrying exactly once through relogin when the vendor reports the
// token illegal.
func (s *Session) TokenRequest(ctx context.Context, api string, params map[string]string, method string) Response {
	if s.Token() == "" {
		if err := s.Login(ctx); err != nil {
			return Response{}
		}
	}
	rsp := s.Request(ctx, api, params, method)
	if rsp.ReturnCode() == ReturnCodeIllegalToken {
		if err := s.Login(ctx); err != nil {
			return rsp
		}
		rsp = s.Request(ctx, api, params, method)
	}
	return rsp
}

// DeviceList fetches the account's appliance summaries. A missing list
// degrades to empty, logged.
func (s *Session) DeviceList(ctx context.Context) []map[string]interface{} {
	rsp := s.TokenRequest(ctx, APIDeviceList, map[string]string{"type": "NONE"}, MethodGet)
	devices := rsp.DataList("devices")
	if len(devices) == 0 {
		zap.S().Warnf("got no devices for %s: %s", s.UID(), rsp.ErrorText())
	}
	return devices
}

// CatList fetches the account's pet profiles.
func (s *Session) CatList(ctx context.Context) []map[string]interface{} {
	pms := map[string]string{}
	if s.cfg.TimezoneID != "" {
		pms["timezoneId"] = s.cfg.TimezoneID
	}
	rsp := s.TokenRequest(ctx, APICatList, pms, MethodGet)
	cats := rsp.DataList("cats")
	if cats == nil {
		zap.S().Infof("got no cats for %s: %s", s.UID(), rsp.ErrorText())
	}
	return cats
}

// CatSummary fetches one pet's daily activity summary for today.
func (s *Session) CatSummary(ctx context.Context, petID string) Response {
	pms := map[string]string{
		"petId": petID,
		"date":  time.Now().Format("20060102"),
		"sport": "1",
	}
	if s.cfg.TimezoneID != "" {
		pms["timezoneId"] = s.cfg.TimezoneID
	}
	return s.TokenRequest(ctx, APICatSummary, pms, MethodGet)
}
