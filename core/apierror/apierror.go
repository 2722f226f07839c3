/*
Package apierror turns every kind of failed request into one human-readable message.

Callers never see nested transport errors. Whatever went wrong, a connection
failure, a timeout or a structured error body from the backend, the outcome is
an *Error whose Error() is a message ready for display, in the language of the
owner.

The message is found by an ordered chain of extractors. Each extractor looks at
one shape of input and returns a message or the empty string; the first
non-empty message wins. New response shapes are supported by adding an
extractor to a chain, see Chain.With.
*/
package apierror

import (
	"context"
	"errors"
	"strings"

	"github.com/goccy/go-json"
	"github.com/relabs-tech/aqaar/core/logger"
)

// Markers for transport failures without a response
var (
	// ErrNetwork marks a request which never reached the server
	ErrNetwork = errors.New("network error")
	// ErrTimeout marks a request which did not complete in time
	ErrTimeout = errors.New("timeout")
)

// Error codes for the transport markers
const (
	CodeNetwork = "NETWORK_ERROR"
	CodeTimeout = "ECONNABORTED"
)

// Error is the caller facing error of a failed request
type Error struct {
	Message string
	Status  int
	Code    string
	// ServerMessage is the message found in the response body, if any
	ServerMessage string
	cause         error
}

func (e *Error) Error() string {
	return e.Message
}

// Unwrap returns the underlying transport error, if any
func (e *Error) Unwrap() error {
	return e.cause
}

// Response is a non-successful HTTP response
type Response struct {
	Status int
	Body   []byte
}

// New creates an *Error for v in the requested language. v can be anything a request
// can fail with, see Extract.
func New(lang string, v interface{}) *Error {
	var apiErr *Error
	if err, ok := v.(error); ok && errors.As(err, &apiErr) {
		return apiErr
	}
	in := normalize(lang, v)
	e := &Error{
		Message:       Default.extract(in),
		Status:        in.status,
		ServerMessage: Body.first(in),
		cause:         in.err,
	}
	switch {
	case isTimeout(in.err):
		e.Code = CodeTimeout
	case isNetwork(in.err):
		e.Code = CodeNetwork
	default:
		if obj, ok := in.body.(map[string]interface{}); ok {
			e.Code, _ = obj["code"].(string)
		}
	}
	return e
}

// Extract returns the message for v in the requested language with the default chain.
// It never returns the empty string.
//
// v can be a string, an error, a *Response or Response, an HTTP status code as int,
// a decoded JSON object as map[string]interface{}, or nil.
func Extract(lang string, v interface{}) string {
	return Default.Extract(lang, v)
}

// ServerMessage returns the message the server reported for err, or the empty string
func ServerMessage(err error) string {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.ServerMessage
	}
	return ""
}

// Status returns the HTTP status of err, or 0 if err did not come with a response
func Status(err error) int {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.Status
	}
	return 0
}

// Log logs err with the label of the operation it originates from
func Log(ctx context.Context, err error, label string) {
	if err == nil {
		return
	}
	rlog := logger.FromContext(ctx).WithError(err)
	if label == "" {
		label = "API Error"
	}
	rlog.WithField("context", label).WithField("status", Status(err)).Warnln("request failed")
}

// input is the normalized form of whatever a request failed with
type input struct {
	lang   string
	value  interface{}
	status int
	body   interface{} // string, map[string]interface{}, []interface{} or nil
	err    error
}

func normalize(lang string, v interface{}) input {
	in := input{lang: lang, value: v}
	switch t := v.(type) {
	case *Response:
		if t != nil {
			in.status = t.Status
			in.body = decodeBody(t.Body)
		}
	case Response:
		in.status = t.Status
		in.body = decodeBody(t.Body)
	case int:
		in.status = t
	case map[string]interface{}:
		in.body = t
	case error:
		in.err = t
	}
	return in
}

func decodeBody(body []byte) interface{} {
	text := strings.TrimSpace(string(body))
	if text == "" {
		return nil
	}
	var decoded interface{}
	if err := json.Unmarshal(body, &decoded); err != nil {
		return text
	}
	switch d := decoded.(type) {
	case string, map[string]interface{}, []interface{}:
		return d
	case nil:
		return nil
	}
	return text
}
