package restmachinery

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"io"
	"io/ioutil"
	"net/http"
	"strings"
	"time"

	"github.com/golang/glog"
	"github.com/krancour/sweetshop/sdk/meta"
	"github.com/pkg/errors"
	uuid "github.com/satori/go.uuid"
	"github.com/xeipuuv/gojsonschema"
)

const (
	// DefaultContentType is sent with every request.
	DefaultContentType = "application/json"
	// RequestIDHeader carries a fresh identifier for every request.
	RequestIDHeader = "X-Request-ID"
)

// APIClientOptions encapsulates optional API client configuration.
type APIClientOptions struct {
	// AllowInsecureConnections indicates whether SSL errors should be ignored.
	AllowInsecureConnections bool
	// Timeout bounds each request. Zero means no timeout.
	Timeout time.Duration
}

// BaseClient provides "API machinery" used by all the specialized API
// clients. Its functions take care of attaching the current credential to
// outbound requests and of reacting to credential rejection in responses.
type BaseClient struct {
	APIAddress string
	Tokens     TokenSource
	Rejections *RejectionNotifier
	HTTPClient *http.Client
}

// NewBaseClient returns a BaseClient for the API at the given address. The
// address is fixed for the lifetime of the client.
func NewBaseClient(
	apiAddress string,
	tokens TokenSource,
	rejections *RejectionNotifier,
	opts *APIClientOptions,
) *BaseClient {
	if opts == nil {
		opts = &APIClientOptions{}
	}
	if rejections == nil {
		rejections = NewRejectionNotifier()
	}
	return &BaseClient{
		APIAddress: strings.TrimSuffix(apiAddress, "/"),
		Tokens:     tokens,
		Rejections: rejections,
		HTTPClient: &http.Client{
			Timeout: opts.Timeout,
			Transport: &http.Transport{
				TLSClientConfig: &tls.Config{
					InsecureSkipVerify: opts.AllowInsecureConnections, // nolint: gosec
				},
			},
		},
	}
}

// BearerTokenAuthHeaders returns the Authorization header for the given
// token.
func BearerTokenAuthHeaders(token string) map[string]string {
	return map[string]string{
		"Authorization": fmt.Sprintf("Bearer %s", token),
	}
}

// ExecuteRequest submits the request and, if RespObj is non-nil, unmarshals
// the response body into it.
func (b *BaseClient) ExecuteRequest(
	ctx context.Context,
	req OutboundRequest,
) error {
	resp, err := b.SubmitRequest(ctx, req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if req.RespObj == nil && req.RespSchemaLoader == nil {
		return nil
	}
	respBodyBytes, err := ioutil.ReadAll(resp.Body)
	if err != nil {
		return errors.Wrap(err, "error reading response body")
	}
	if req.RespSchemaLoader != nil {
		if err = validateResponseBody(req.RespSchemaLoader, respBodyBytes); err != nil {
			return err
		}
	}
	if req.RespObj != nil {
		if err := json.Unmarshal(respBodyBytes, req.RespObj); err != nil {
			return errors.Wrap(err, "error unmarshaling response body")
		}
	}
	return nil
}

// SubmitRequest submits the request and returns the raw response for a
// successful status. The caller must close the response body. Non-success
// statuses are translated into the typed errors of the meta package; a 401
// additionally tears down the rejected credential and notifies listeners
// before the error is returned.
func (b *BaseClient) SubmitRequest(
	ctx context.Context,
	req OutboundRequest,
) (*http.Response, error) {
	var reqBodyReader io.Reader
	if req.ReqBodyObj != nil {
		switch rb := req.ReqBodyObj.(type) {
		case []byte:
			reqBodyReader = bytes.NewBuffer(rb)
		default:
			reqBodyBytes, err := json.Marshal(req.ReqBodyObj)
			if err != nil {
				return nil, errors.Wrap(err, "error marshaling request body")
			}
			reqBodyReader = bytes.NewBuffer(reqBodyBytes)
		}
	}

	r, err := http.NewRequestWithContext(
		ctx,
		req.Method,
		b.url(req.Path),
		reqBodyReader,
	)
	if err != nil {
		return nil, errors.Wrapf(
			err,
			"error creating request %s %s",
			req.Method,
			req.Path,
		)
	}
	if len(req.QueryParams) > 0 {
		q := r.URL.Query()
		for k, v := range req.QueryParams {
			if v != "" {
				q.Set(k, v)
			}
		}
		r.URL.RawQuery = q.Encode()
	}

	requestID := uuid.NewV4().String()
	r.Header.Set("Content-Type", DefaultContentType)
	r.Header.Set("Accept", DefaultContentType)
	r.Header.Set(RequestIDHeader, requestID)
	sentToken := b.attachCredential(r, req.Headers)
	for k, v := range req.Headers {
		r.Header.Set(k, v)
	}

	resp, err := b.HTTPClient.Do(r)
	if err != nil {
		return nil, errors.Wrap(err, "error invoking API")
	}
	glog.V(2).Infof(
		"%s %s -> %d (request %s)",
		req.Method,
		req.Path,
		resp.StatusCode,
		requestID,
	)

	if isSuccess(req.SuccessCode, resp.StatusCode) {
		return resp, nil
	}

	defer resp.Body.Close()
	reason := readErrorReason(resp.Body)
	if resp.StatusCode == http.StatusUnauthorized {
		b.handleRejection(
			CredentialRejection{
				Token:     sentToken,
				Method:    req.Method,
				Path:      req.Path,
				RequestID: requestID,
				Reason:    reason,
			},
		)
		return nil, &meta.ErrAuthentication{Reason: reason}
	}
	return nil, errorForStatus(resp.StatusCode, reason)
}

// attachCredential reads the token source at call time and, if it holds a
// token, attaches it as a bearer credential. It returns the token sent. A
// request whose Headers already carry an Authorization header is left alone.
func (b *BaseClient) attachCredential(
	r *http.Request,
	headers map[string]string,
) string {
	if _, ok := headers["Authorization"]; ok || b.Tokens == nil {
		return ""
	}
	token, ok := b.Tokens.Read()
	if !ok {
		return ""
	}
	for k, v := range BearerTokenAuthHeaders(token) {
		r.Header.Set(k, v)
	}
	return token
}

func (b *BaseClient) handleRejection(rejection CredentialRejection) {
	if b.Tokens != nil && !b.Tokens.ClearIf(rejection.Token) {
		// A different credential was adopted after this request was sent. The
		// rejection is stale and must not tear down the newer session.
		glog.Infof(
			"ignoring credential rejection for %s %s (request %s); credential "+
				"was replaced after dispatch",
			rejection.Method,
			rejection.Path,
			rejection.RequestID,
		)
		return
	}
	glog.Infof(
		"credential rejected by %s %s (request %s)",
		rejection.Method,
		rejection.Path,
		rejection.RequestID,
	)
	if b.Rejections != nil {
		b.Rejections.Notify(rejection)
	}
}

func (b *BaseClient) url(path string) string {
	return fmt.Sprintf("%s/%s", b.APIAddress, strings.TrimPrefix(path, "/"))
}

func isSuccess(successCode int, statusCode int) bool {
	if successCode != 0 {
		return statusCode == successCode
	}
	return statusCode >= 200 && statusCode < 300
}

// readErrorReason extracts the server's explanation from an error response
// body of the form {"error": "..."} or {"message": "..."}. Bodies that are not
// JSON yield an empty reason rather than an error so that the status code
// alone still determines how the failure is handled.
func readErrorReason(body io.Reader) string {
	bodyBytes, err := ioutil.ReadAll(body)
	if err != nil || len(bodyBytes) == 0 {
		return ""
	}
	errBody := struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}{}
	if err := json.Unmarshal(bodyBytes, &errBody); err != nil {
		return ""
	}
	if errBody.Error != "" {
		return errBody.Error
	}
	return errBody.Message
}

// errorForStatus maps a non-success, non-401 status to a typed error.
func errorForStatus(statusCode int, reason string) error {
	switch statusCode {
	case http.StatusForbidden:
		return &meta.ErrAuthorization{Reason: reason}
	case http.StatusBadRequest, http.StatusUnprocessableEntity:
		return &meta.ErrBadRequest{Reason: reason}
	case http.StatusNotFound:
		return &meta.ErrNotFound{Reason: reason}
	case http.StatusConflict:
		return &meta.ErrConflict{Reason: reason}
	case http.StatusInternalServerError:
		return &meta.ErrInternalServer{Reason: reason}
	default:
		return &meta.ErrUnexpectedStatus{
			StatusCode: statusCode,
			Reason:     reason,
		}
	}
}

func validateResponseBody(
	schemaLoader gojsonschema.JSONLoader,
	bodyBytes []byte,
) error {
	result, err := gojsonschema.Validate(
		schemaLoader,
		gojsonschema.NewBytesLoader(bodyBytes),
	)
	if err != nil {
		return errors.Wrap(err, "error validating response body")
	}
	if !result.Valid() {
		verrStrs := make([]string, len(result.Errors()))
		for i, verr := range result.Errors() {
			verrStrs[i] = verr.String()
		}
		return errors.Errorf(
			"response body failed JSON validation: %s",
			strings.Join(verrStrs, "; "),
		)
	}
	return nil
}
