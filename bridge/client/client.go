// Package client implements the Synology DSM web API client used by the
// bridge: cookie-based session handling, the generic request/response codec
// and typed snapshot fetchers for the subsystems the bridge observes.
package client

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strconv"
	"time"

	"github.com/go-viper/mapstructure/v2"
	"github.com/hashicorp/go-retryablehttp"
	"golang.org/x/net/publicsuffix"
	"golang.org/x/sync/singleflight"

	"github.com/synology-community/dsm-mqtt-bridge/bridge/client/api"
	"github.com/synology-community/dsm-mqtt-bridge/bridge/client/api/backup"
	"github.com/synology-community/dsm-mqtt-bridge/bridge/client/api/core"
	"github.com/synology-community/dsm-mqtt-bridge/bridge/client/api/dsm"
	"github.com/synology-community/dsm-mqtt-bridge/bridge/client/api/externalusb"
	"github.com/synology-community/dsm-mqtt-bridge/bridge/client/api/storage"
)

const (
	defaultSessionName = "dsm_mqtt_bridge"
	defaultTimeout     = 30 * time.Second
	defaultRetryLimit  = 3

	// DSM delivers the session token in the "id" cookie.
	sessionCookieName = "id"
)

// Options configures a Client.
type Options struct {
	Host                 string
	Port                 int
	Username             string
	Password             string
	UseHTTPS             bool
	SkipCertificateCheck bool
	SessionName          string
	RetryLimit           int
	Timeout              time.Duration
	SessionCacheMode     string // auto | keyring | file | memory | off
	SessionCachePath     string
	Logger               Logger
}

// Client talks to a single DSM instance. It is safe for concurrent use;
// concurrent logins are collapsed into one.
type Client struct {
	http   *retryablehttp.Client
	jar    http.CookieJar
	opts   Options
	logger Logger
	sf     singleflight.Group
}

// New initializes a Client from minimal input configuration.
func New(opts Options) (*Client, error) {
	if opts.Host == "" {
		return nil, fmt.Errorf("host is required")
	}
	if opts.SessionName == "" {
		opts.SessionName = defaultSessionName
	}
	if opts.Timeout == 0 {
		opts.Timeout = defaultTimeout
	}
	if opts.RetryLimit == 0 {
		opts.RetryLimit = defaultRetryLimit
	}
	logger := opts.Logger
	if logger == nil {
		logger = NopLogger
	}

	transport := &http.Transport{
		DialContext: (&net.Dialer{
			Timeout:   10 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		ForceAttemptHTTP2:     true,
		MaxIdleConns:          100,
		IdleConnTimeout:       60 * time.Second,
		TLSHandshakeTimeout:   10 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
		TLSClientConfig: &tls.Config{
			InsecureSkipVerify: opts.SkipCertificateCheck,
		},
	}

	// 'Cookie' is the only supported method for providing the 'sid' token
	jar, err := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
	if err != nil {
		return nil, err
	}

	rc := retryablehttp.NewClient()
	rc.RetryMax = opts.RetryLimit
	rc.Logger = retryablehttp.LeveledLogger(logger)
	rc.HTTPClient = &http.Client{
		Transport: transport,
		Jar:       jar,
		Timeout:   opts.Timeout,
	}

	return &Client{
		http:   rc,
		jar:    jar,
		opts:   opts,
		logger: logger,
	}, nil
}

// ConfigURL is the address of the DSM web UI, handed to the host platform so
// a device page can link back to the NAS.
func (c *Client) ConfigURL() string {
	u := c.baseURL()
	return u.String()
}

func (c *Client) baseURL() url.URL {
	scheme := "http"
	if c.opts.UseHTTPS {
		scheme = "https"
	}
	host := c.opts.Host
	if c.opts.Port != 0 {
		host = net.JoinHostPort(c.opts.Host, strconv.Itoa(c.opts.Port))
	}
	return url.URL{Scheme: scheme, Host: host}
}

// Do performs a request against the DSM API and decodes the response payload
// into response. Transport failures are returned as errors; API-level errors
// are attached to the response object.
func (c *Client) Do(ctx context.Context, r api.Request, response api.Response) error {
	u := c.baseURL()
	u.Path = "/webapi/entry.cgi"

	query, err := api.MarshalURL(r)
	if err != nil {
		return err
	}
	u.RawQuery = query.Encode()

	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return err
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer func() {
		_, _ = io.Copy(io.Discard, resp.Body)
		_ = resp.Body.Close()
	}()

	envelope := api.GenericResponse{}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return err
	}
	if envelope.Data != nil {
		if err := mapstructure.Decode(envelope.Data, response); err != nil {
			return err
		}
	}
	response.SetError(handleErrors(envelope, response))

	return nil
}

func handleErrors(envelope api.GenericResponse, describer api.ErrorDescriber) api.SynologyError {
	err := api.SynologyError{
		Code: envelope.Error.Code,
	}
	if envelope.Error.Code == 0 {
		return err
	}

	known := append(describer.ErrorSummaries(), api.GlobalErrors)
	err.Summary = api.DescribeError(err.Code, known...)
	for _, e := range envelope.Error.Errors {
		item := api.ErrorItem{
			Code:    e.Code,
			Summary: api.DescribeError(e.Code, known...),
		}
		if len(e.Details) > 0 {
			item.Details = make(api.ErrorFields)
			for k, v := range e.Details {
				item.Details[k] = v
			}
		}
		err.Errors = append(err.Errors, item)
	}

	return err
}

// sessionExpired reports whether a DSM error code means the session is gone
// and a re-login may help.
func sessionExpired(code int) bool {
	switch code {
	case 105, 106, 107, 119:
		return true
	}
	return false
}

// Login establishes a DSM session, reusing a cached one when it is still
// alive. Concurrent callers share a single login flow.
func (c *Client) Login(ctx context.Context) error {
	_, err, _ := c.sf.Do("login", func() (interface{}, error) {
		return nil, c.login(ctx)
	})
	return err
}

func (c *Client) login(ctx context.Context) error {
	ring, ringErr := openSessionRing(c.opts.SessionCacheMode, c.opts.SessionCachePath)
	key := cacheKey(c.opts.Host, c.opts.Username)

	if ringErr == nil {
		if rec, err := readSession(ring, key); err == nil && rec.SessionID != "" {
			c.setSessionCookie(rec.SessionID)
			if c.sessionAlive(ctx) {
				c.logger.Info("reused cached DSM session", "host", c.opts.Host)
				return nil
			}
			c.logger.Debug("cached DSM session expired", "host", c.opts.Host)
		}
	}

	req := api.NewLoginRequest(c.opts.Username, c.opts.Password, c.opts.SessionName)
	resp := api.LoginResponse{}
	if err := c.Do(ctx, req, &resp); err != nil {
		return fmt.Errorf("login request failed: %w", err)
	}
	if !resp.Success() {
		return fmt.Errorf("login rejected: %w", resp.GetError())
	}
	if resp.SessionID != "" {
		c.setSessionCookie(resp.SessionID)
	}

	if ringErr == nil {
		_ = writeSession(ring, key, sessionRecord{
			SessionID:   resp.SessionID,
			DeviceToken: resp.DeviceToken,
			IssuedAt:    time.Now(),
		})
	}
	c.logger.Info("logged in to DSM", "host", c.opts.Host, "session", c.opts.SessionName)
	return nil
}

// Logout terminates the DSM session.
func (c *Client) Logout(ctx context.Context) error {
	req := api.NewLogoutRequest(c.opts.SessionName)
	resp := api.LogoutResponse{}
	if err := c.Do(ctx, req, &resp); err != nil {
		return err
	}
	if !resp.Success() {
		return resp.GetError()
	}
	return nil
}

func (c *Client) setSessionCookie(sid string) {
	u := c.baseURL()
	c.jar.SetCookies(&u, []*http.Cookie{{Name: sessionCookieName, Value: sid}})
}

// sessionAlive probes the API catalogue to validate the current session.
func (c *Client) sessionAlive(ctx context.Context) bool {
	resp := api.InfoResponse{}
	if err := c.Do(ctx, api.NewInfoRequest(), &resp); err != nil {
		return false
	}
	return resp.Success()
}

// fetch runs the request, re-logging in once when the session expired.
func (c *Client) fetch(ctx context.Context, name string, req api.Request, resp api.Response) error {
	if err := c.Do(ctx, req, resp); err != nil {
		return fmt.Errorf("fetch %s: %w", name, err)
	}
	if resp.Success() {
		return nil
	}
	if !sessionExpired(resp.GetError().Code) {
		return fmt.Errorf("fetch %s: %w", name, resp.GetError())
	}
	c.logger.Debug("session expired, logging in again", "api", name)
	if err := c.Login(ctx); err != nil {
		return fmt.Errorf("fetch %s: %w", name, err)
	}
	if err := c.Do(ctx, req, resp); err != nil {
		return fmt.Errorf("fetch %s: %w", name, err)
	}
	if !resp.Success() {
		return fmt.Errorf("fetch %s: %w", name, resp.GetError())
	}
	return nil
}

// Information fetches the DSM identity snapshot.
func (c *Client) Information(ctx context.Context) (*dsm.Information, error) {
	resp := dsm.InformationResponse{}
	if err := c.fetch(ctx, dsm.InformationAPI, dsm.NewInformationRequest(), &resp); err != nil {
		return nil, err
	}
	return &resp.Information, nil
}

// Network fetches the DSM network snapshot.
func (c *Client) Network(ctx context.Context) (*dsm.Network, error) {
	resp := dsm.NetworkResponse{}
	if err := c.fetch(ctx, dsm.NetworkAPI, dsm.NewNetworkRequest(), &resp); err != nil {
		return nil, err
	}
	return &resp.Network, nil
}

// Storage fetches the storage snapshot (volumes and disks).
func (c *Client) Storage(ctx context.Context) (*storage.Storage, error) {
	resp := storage.LoadInfoResponse{}
	if err := c.fetch(ctx, storage.API, storage.NewLoadInfoRequest(), &resp); err != nil {
		return nil, err
	}
	return &resp.Storage, nil
}

// Utilization fetches the system load snapshot.
func (c *Client) Utilization(ctx context.Context) (*core.Utilization, error) {
	resp := core.UtilizationResponse{}
	if err := c.fetch(ctx, core.UtilizationAPI, core.NewUtilizationRequest(), &resp); err != nil {
		return nil, err
	}
	return &resp.Utilization, nil
}

// ExternalUSB fetches the external USB device snapshot.
func (c *Client) ExternalUSB(ctx context.Context) (*externalusb.ExternalUSB, error) {
	resp := externalusb.ListResponse{}
	if err := c.fetch(ctx, externalusb.API, externalusb.NewListRequest(), &resp); err != nil {
		return nil, err
	}
	return &resp.ExternalUSB, nil
}

// HyperBackup fetches the Hyper Backup task snapshot.
func (c *Client) HyperBackup(ctx context.Context) (*backup.HyperBackup, error) {
	resp := backup.ListResponse{}
	if err := c.fetch(ctx, backup.API, backup.NewListRequest(), &resp); err != nil {
		return nil, err
	}
	return &resp.HyperBackup, nil
}
