package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/sma-adp-counseling/internal/models"
	appErrors "github.com/noah-isme/sma-adp-counseling/pkg/errors"
)

// SessionProvider supplies the bearer credential and the caller identity.
// The two lookups fail independently.
type SessionProvider interface {
	Session(ctx context.Context) (*models.Session, error)
	CurrentUser(ctx context.Context) (*models.AuthUser, error)
}

// Observer receives one sample per Invoke call.
type Observer interface {
	ObserveGatewayCall(endpoint, outcome string, duration time.Duration)
}

// Options configures a Gateway.
type Options struct {
	BaseURL string
	// Timeout applies only when HTTPClient is nil. Zero means no client-side timeout.
	Timeout    time.Duration
	HTTPClient *http.Client
	Processor  *Processor
	Logger     *zap.Logger
	Observer   Observer
}

// Response is the decoded result of a successful call.
type Response struct {
	Endpoint string      `json:"endpoint"`
	Status   int         `json:"status"`
	Data     interface{} `json:"data"`
	// Raw holds the body text when a raw-text tolerant endpoint returned non-JSON.
	Raw string `json:"raw,omitempty"`
}

// endpointName bounds endpoint names to a single URL path segment.
var endpointName = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9_-]*$`)

// otherEndpoint labels samples for names outside the processor table.
const otherEndpoint = "other"

// Gateway is the single dispatch path to every named remote endpoint.
type Gateway struct {
	baseURL   string
	client    *http.Client
	sessions  SessionProvider
	processor *Processor
	logger    *zap.Logger
	observer  Observer
}

// New constructs a Gateway.
func New(sessions SessionProvider, opts Options) (*Gateway, error) {
	if sessions == nil {
		return nil, errors.New("session provider required")
	}
	baseURL := strings.TrimRight(strings.TrimSpace(opts.BaseURL), "/")
	if baseURL == "" {
		return nil, errors.New("baseURL required")
	}
	client := opts.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: opts.Timeout}
	}
	processor := opts.Processor
	if processor == nil {
		processor = NewProcessor()
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Gateway{
		baseURL:   baseURL,
		client:    client,
		sessions:  sessions,
		processor: processor,
		logger:    logger,
		observer:  opts.Observer,
	}, nil
}

// Invoke calls endpoint with payload. Every failure is returned as an *errors.Error
// tagged AUTHENTICATION_ERROR, VALIDATION_ERROR, NETWORK_ERROR or PARSE_ERROR.
// Calls are never retried.
func (g *Gateway) Invoke(ctx context.Context, endpoint string, payload Payload) (resp *Response, err error) {
	start := time.Now()
	defer func() {
		g.observe(endpoint, err, time.Since(start))
	}()

	endpoint = strings.Trim(strings.TrimSpace(endpoint), "/")
	if endpoint == "" {
		return nil, appErrors.MissingField("endpoint")
	}
	if !endpointName.MatchString(endpoint) {
		invalid := appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("invalid endpoint name %q", endpoint))
		invalid.Field = "endpoint"
		return nil, invalid
	}

	session, err := g.sessions.Session(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrAuthentication.Code, appErrors.ErrAuthentication.Status, "no active session")
	}
	if session == nil || session.AccessToken == "" {
		return nil, appErrors.Clone(appErrors.ErrAuthentication, "no active session")
	}

	user, err := g.sessions.CurrentUser(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrAuthentication.Code, appErrors.ErrAuthentication.Status, "authenticated user unavailable")
	}
	if user == nil || user.ID == "" {
		return nil, appErrors.Clone(appErrors.ErrAuthentication, "authenticated user unavailable")
	}

	translated := TranslateRole(payload, g.logger)
	final, err := g.processor.Process(endpoint, translated, *user, payload)
	if err != nil {
		return nil, err
	}

	body, err := json.Marshal(final)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "payload is not JSON encodable")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.baseURL+"/"+endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrNetwork.Code, appErrors.ErrNetwork.Status, "build request")
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+session.AccessToken)

	g.logger.Debug("gateway dispatch", zap.String("endpoint", endpoint), zap.String("user_id", user.ID))

	httpResp, err := g.client.Do(req)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrNetwork.Code, appErrors.ErrNetwork.Status, fmt.Sprintf("call %s", endpoint))
	}
	defer httpResp.Body.Close() //nolint:errcheck

	raw, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrNetwork.Code, appErrors.ErrNetwork.Status, fmt.Sprintf("read %s response", endpoint))
	}

	if httpResp.StatusCode < 200 || httpResp.StatusCode >= 300 {
		return nil, remoteError(httpResp.StatusCode, raw)
	}

	resp = &Response{Endpoint: endpoint, Status: httpResp.StatusCode}
	if len(bytes.TrimSpace(raw)) == 0 {
		return resp, nil
	}
	if err := json.Unmarshal(raw, &resp.Data); err != nil {
		if spec, ok := g.processor.Spec(Endpoint(endpoint)); ok && spec.RawTextTolerant {
			resp.Data = string(raw)
			resp.Raw = string(raw)
			return resp, nil
		}
		parseErr := appErrors.Wrap(err, appErrors.ErrParse.Code, appErrors.ErrParse.Status, fmt.Sprintf("%s returned a non-JSON body", endpoint))
		parseErr.UpstreamStatus = httpResp.StatusCode
		return nil, parseErr
	}
	return resp, nil
}

type remoteErrorBody struct {
	Message string      `json:"message"`
	Error   string      `json:"error"`
	Details interface{} `json:"details"`
}

// remoteError decodes {message, details} when possible and otherwise keeps the raw text.
func remoteError(status int, raw []byte) *appErrors.Error {
	e := appErrors.Clone(appErrors.ErrNetwork, "")
	e.UpstreamStatus = status

	var body remoteErrorBody
	if err := json.Unmarshal(raw, &body); err == nil && (body.Message != "" || body.Error != "") {
		e.Message = body.Message
		if e.Message == "" {
			e.Message = body.Error
		}
		e.Details = body.Details
		return e
	}

	text := strings.TrimSpace(string(raw))
	if text == "" {
		text = http.StatusText(status)
	}
	e.Message = text
	return e
}

func (g *Gateway) observe(endpoint string, err error, duration time.Duration) {
	outcome := "success"
	if err != nil {
		outcome = strings.ToLower(appErrors.FromError(err).Code)
		g.logger.Warn("gateway call failed", zap.String("endpoint", endpoint), zap.Error(err))
	}
	if g.observer != nil {
		g.observer.ObserveGatewayCall(g.metricLabel(endpoint), outcome, duration)
	}
}

// metricLabel keeps the endpoint label set bounded to the registered table.
func (g *Gateway) metricLabel(endpoint string) string {
	if _, ok := g.processor.Spec(Endpoint(endpoint)); ok {
		return endpoint
	}
	return otherEndpoint
}
