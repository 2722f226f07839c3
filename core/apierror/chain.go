package apierror

import (
	"context"
	"errors"
	"net"
	"net/url"
	"os"
	"reflect"
	"sort"
	"strconv"
	"strings"
	"syscall"

	"github.com/relabs-tech/aqaar/core/i18n"
)

// Extractor returns a message for the input it understands, or the empty string
type Extractor func(in input) string

// Chain is an ordered list of extractors
type Chain []Extractor

// Default is the chain used by New and Extract. The order is the priority: structured
// fields of the response body first, then transport markers, then fallbacks.
var Default = Chain{
	fromString,
	fromAPIError,
	fromBodyString,
	fromBodyField("error"),
	fromBodyField("message"),
	fromBodyField("detail"),
	fromBodyErrors,
	fromBodyList,
	fromBodyStringValues,
	fromTimeout,
	fromNetwork,
	fromStatus,
	fromPlainError,
}

// Body is the part of the default chain which reads the response body. It yields the
// message the server reported, if any.
var Body = Chain{
	fromBodyString,
	fromBodyField("error"),
	fromBodyField("message"),
	fromBodyField("detail"),
	fromBodyErrors,
	fromBodyList,
	fromBodyStringValues,
}

// With returns a new chain with the extractor inserted before the fallbacks, i.e. before
// the status code based messages
func (c Chain) With(extractor Extractor) Chain {
	n := len(c)
	for i := range c {
		if isSameFunc(c[i], fromTimeout) {
			n = i
			break
		}
	}
	chain := make(Chain, 0, len(c)+1)
	chain = append(chain, c[:n]...)
	chain = append(chain, extractor)
	return append(chain, c[n:]...)
}

// Extract runs the chain for v. If no extractor yields a message, the generic message
// is returned.
func (c Chain) Extract(lang string, v interface{}) string {
	return c.extract(normalize(lang, v))
}

func (c Chain) extract(in input) string {
	if msg := c.first(in); msg != "" {
		return msg
	}
	return i18n.T(in.lang, "errors.generic")
}

// first returns the first non-empty message, or the empty string
func (c Chain) first(in input) (msg string) {
	defer func() {
		if r := recover(); r != nil {
			msg = ""
		}
	}()
	for _, extractor := range c {
		if msg := strings.TrimSpace(extractor(in)); msg != "" {
			return msg
		}
	}
	return ""
}

func isSameFunc(a, b Extractor) bool {
	return reflect.ValueOf(a).Pointer() == reflect.ValueOf(b).Pointer()
}

func fromString(in input) string {
	s, _ := in.value.(string)
	return s
}

func fromAPIError(in input) string {
	var apiErr *Error
	if in.err != nil && errors.As(in.err, &apiErr) {
		return apiErr.Message
	}
	return ""
}

func fromBodyString(in input) string {
	s, _ := in.body.(string)
	return s
}

func fromBodyField(field string) Extractor {
	return func(in input) string {
		obj, ok := in.body.(map[string]interface{})
		if !ok {
			return ""
		}
		s, _ := obj[field].(string)
		return s
	}
}

// fromBodyErrors joins validation errors of the form {"errors": [{"message": "..."}, "..."]}
func fromBodyErrors(in input) string {
	obj, ok := in.body.(map[string]interface{})
	if !ok {
		return ""
	}
	list, ok := obj["errors"].([]interface{})
	if !ok {
		return ""
	}
	return joinMessages(list)
}

// fromBodyList joins a body which is a list of errors, like the errors field
func fromBodyList(in input) string {
	list, _ := in.body.([]interface{})
	return joinMessages(list)
}

func joinMessages(list []interface{}) string {
	var messages []string
	for _, item := range list {
		switch e := item.(type) {
		case string:
			messages = append(messages, e)
		case map[string]interface{}:
			if m, ok := e["message"].(string); ok && m != "" {
				messages = append(messages, m)
			}
		}
	}
	return strings.Join(messages, ", ")
}

// fromBodyStringValues joins field specific errors of the form {"email": "...", "phone": "..."},
// ordered by field name
func fromBodyStringValues(in input) string {
	obj, ok := in.body.(map[string]interface{})
	if !ok {
		return ""
	}
	keys := make([]string, 0, len(obj))
	for k, v := range obj {
		if s, ok := v.(string); ok && s != "" {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	messages := make([]string, 0, len(keys))
	for _, k := range keys {
		messages = append(messages, obj[k].(string))
	}
	return strings.Join(messages, ", ")
}

func fromTimeout(in input) string {
	if isTimeout(in.err) {
		return i18n.T(in.lang, "errors.timeout")
	}
	return ""
}

func fromNetwork(in input) string {
	if isNetwork(in.err) {
		return i18n.T(in.lang, "errors.network")
	}
	return ""
}

func fromStatus(in input) string {
	switch in.status {
	case 0:
		return ""
	case 400, 401, 403, 404, 409, 422, 429, 500:
		return i18n.T(in.lang, "errors.status."+strconv.Itoa(in.status))
	case 502, 503, 504:
		return i18n.T(in.lang, "errors.status.5xx")
	}
	return i18n.T(in.lang, "errors.status.other", i18n.Data{"Status": in.status})
}

func fromPlainError(in input) string {
	if in.err == nil {
		return ""
	}
	return in.err.Error()
}

func isTimeout(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrTimeout) || errors.Is(err, context.DeadlineExceeded) || os.IsTimeout(err) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

func isNetwork(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrNetwork) || errors.Is(err, syscall.ECONNREFUSED) || errors.Is(err, syscall.ECONNRESET) {
		return true
	}
	var opErr *net.OpError
	var dnsErr *net.DNSError
	var urlErr *url.Error
	return errors.As(err, &opErr) || errors.As(err, &dnsErr) || errors.As(err, &urlErr)
}
