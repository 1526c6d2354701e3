// Package httpbridge implements bridge.Bridge over HTTP. Each invocation is a
// POST of the JSON argument mapping to <BaseURL>/invoke/<procedure>; a 200
// response body is the result.
package httpbridge

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/papercomputeco/chatbridge/pkg/bridge"
)

const requestIDHeader = "X-Request-Id"

// Interface compliance check.
var _ bridge.Bridge = (*Bridge)(nil)

// Bridge sends invocations to a host over HTTP.
type Bridge struct {
	config Config
	client *fasthttp.Client
	logger *zap.Logger
}

// New creates a new Bridge.
func New(config Config, logger *zap.Logger) (*Bridge, error) {
	u, err := url.Parse(config.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid base URL %q: %w", config.BaseURL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("invalid base URL %q: scheme must be http or https", config.BaseURL)
	}

	config.BaseURL = strings.TrimRight(config.BaseURL, "/")
	if config.Timeout <= 0 {
		config.Timeout = DefaultTimeout
	}

	return &Bridge{
		config: config,
		logger: logger,
		client: &fasthttp.Client{
			Name:                     config.UserAgent,
			NoDefaultUserAgentHeader: config.UserAgent == "",
		},
	}, nil
}

// Invoke posts args to the host and returns the response body.
func (b *Bridge) Invoke(ctx context.Context, procedure string, args any) (json.RawMessage, error) {
	body := []byte("{}")
	if args != nil {
		var err error
		body, err = json.Marshal(args)
		if err != nil {
			return nil, &bridge.Error{
				Procedure: procedure,
				Kind:      bridge.KindSerialization,
				Err:       fmt.Errorf("marshal arguments: %w", err),
			}
		}
	}

	req := fasthttp.AcquireRequest()
	defer fasthttp.ReleaseRequest(req)
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseResponse(resp)

	requestID := uuid.NewString()
	req.SetRequestURI(b.config.BaseURL + "/invoke/" + url.PathEscape(procedure))
	req.Header.SetMethod(fasthttp.MethodPost)
	req.Header.SetContentType("application/json")
	req.Header.Set(requestIDHeader, requestID)
	req.SetBodyRaw(body)

	b.logger.Debug("forwarding invocation to host",
		zap.String("procedure", procedure),
		zap.String("request_id", requestID),
		zap.Int("body_size", len(body)),
	)

	if err := b.client.DoDeadline(req, resp, b.deadline(ctx)); err != nil {
		return nil, &bridge.Error{
			Procedure: procedure,
			Kind:      bridge.KindTransport,
			Err:       fmt.Errorf("do request: %w", err),
		}
	}

	// The response body is recycled on release.
	data := append([]byte(nil), resp.Body()...)

	if status := resp.StatusCode(); status != fasthttp.StatusOK {
		return nil, &bridge.Error{
			Procedure: procedure,
			Kind:      bridge.KindBackend,
			Status:    status,
			Message:   errorMessage(data),
			Err:       fmt.Errorf("host returned %d", status),
		}
	}

	return json.RawMessage(data), nil
}

func (b *Bridge) deadline(ctx context.Context) time.Time {
	if d, ok := ctx.Deadline(); ok {
		return d
	}
	return time.Now().Add(b.config.Timeout)
}

// errorMessage extracts the host's reason from an error body.
func errorMessage(body []byte) string {
	var errResp bridge.ErrorResponse
	if err := json.Unmarshal(body, &errResp); err == nil && errResp.Error != "" {
		return errResp.Error
	}
	return strings.TrimSpace(string(body))
}

// IsTimeout reports whether err is a bridge failure caused by the call's deadline.
func IsTimeout(err error) bool {
	return errors.Is(err, fasthttp.ErrTimeout)
}
