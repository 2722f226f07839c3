package apierror

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/url"
	"testing"

	"github.com/relabs-tech/aqaar/core/i18n"
	"github.com/stretchr/testify/assert"
)

func TestExtractPriority(t *testing.T) {
	cases := []struct {
		name string
		in   interface{}
		want string
	}{
		{"string", "plain message", "plain message"},
		{"text body", &Response{Status: 500, Body: []byte("upstream exploded")}, "upstream exploded"},
		{"json string body", Response{Status: 400, Body: []byte(`"quoted message"`)}, "quoted message"},
		{"error field", &Response{Status: 400, Body: []byte(`{"error":"from error","message":"from message"}`)}, "from error"},
		{"message field", &Response{Status: 400, Body: []byte(`{"message":"from message","detail":"from detail"}`)}, "from message"},
		{"detail field", &Response{Status: 400, Body: []byte(`{"detail":"from detail"}`)}, "from detail"},
		{"errors array", &Response{Status: 422, Body: []byte(`{"errors":[{"message":"email taken"},"phone missing",{"field":"x"}]}`)}, "email taken, phone missing"},
		{"list body", &Response{Status: 422, Body: []byte(`["national id taken",{"message":"iban invalid"},7]`)}, "national id taken, iban invalid"},
		{"list body without messages", &Response{Status: 404, Body: []byte(`[1,2]`)}, i18n.T(i18n.English, "errors.status.404")},
		{"object of strings", &Response{Status: 422, Body: []byte(`{"phone":"phone invalid","email":"email invalid","count":3}`)}, "email invalid, phone invalid"},
		{"decoded map", map[string]interface{}{"message": "from map"}, "from map"},
		{"network", fmt.Errorf("dial: %w", ErrNetwork), i18n.T(i18n.English, "errors.network")},
		{"timeout", fmt.Errorf("read: %w", ErrTimeout), i18n.T(i18n.English, "errors.timeout")},
		{"deadline", context.DeadlineExceeded, i18n.T(i18n.English, "errors.timeout")},
		{"url error", &url.Error{Op: "Get", URL: "http://x", Err: &net.OpError{Op: "dial", Err: errors.New("refused")}}, i18n.T(i18n.English, "errors.network")},
		{"status 404 no body", &Response{Status: 404}, i18n.T(i18n.English, "errors.status.404")},
		{"status 503", 503, i18n.T(i18n.English, "errors.status.5xx")},
		{"status 418", 418, "An unexpected error occurred (418). Please try again."},
		{"plain error", errors.New("something odd"), "something odd"},
		{"empty object", map[string]interface{}{}, i18n.T(i18n.English, "errors.generic")},
		{"nil", nil, i18n.T(i18n.English, "errors.generic")},
		{"empty string", "", i18n.T(i18n.English, "errors.generic")},
		{"nil response", (*Response)(nil), i18n.T(i18n.English, "errors.generic")},
		{"unknown type", struct{ X int }{1}, i18n.T(i18n.English, "errors.generic")},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			got := Extract(i18n.English, c.in)
			assert.Equal(t, c.want, got)
			assert.NotEmpty(t, Extract(i18n.Arabic, c.in))
		})
	}
}

func TestExtractDefaultsToArabic(t *testing.T) {
	assert.Equal(t, i18n.T(i18n.Arabic, "errors.status.401"), Extract("", 401))
}

func TestNew(t *testing.T) {
	e := New(i18n.English, &Response{Status: 409, Body: []byte(`{"message":"duplicate iban","code":"DUPLICATE"}`)})
	assert.Equal(t, "duplicate iban", e.Error())
	assert.Equal(t, 409, e.Status)
	assert.Equal(t, "DUPLICATE", e.Code)
	assert.Equal(t, "duplicate iban", ServerMessage(e))
	assert.Empty(t, ServerMessage(New(i18n.English, &Response{Status: 500})))

	e = New(i18n.English, fmt.Errorf("post: %w", ErrTimeout))
	assert.Equal(t, CodeTimeout, e.Code)
	assert.ErrorIs(t, e, ErrTimeout)

	e = New(i18n.English, ErrNetwork)
	assert.Equal(t, CodeNetwork, e.Code)

	// an *Error is passed through untouched
	wrapped := fmt.Errorf("toggle: %w", e)
	assert.Same(t, e, New(i18n.Arabic, wrapped))
	assert.Equal(t, 0, Status(wrapped))
	assert.Equal(t, 409, Status(New(i18n.English, 409)))
}

func TestChainWith(t *testing.T) {
	legacy := func(in input) string {
		if in.status == 499 {
			return "client closed request"
		}
		return ""
	}
	chain := Default.With(legacy)
	assert.Len(t, chain, len(Default)+1)
	assert.True(t, isSameFunc(chain[len(Default)-4], legacy), "inserted before the fallbacks")

	assert.Equal(t, "client closed request", chain.Extract(i18n.English, 499))
	assert.Equal(t, "An unexpected error occurred (499). Please try again.", Default.Extract(i18n.English, 499))
	assert.Equal(t, "from body", chain.Extract(i18n.English, &Response{Status: 499, Body: []byte(`{"message":"from body"}`)}))
}

func TestExtractRecoversFromPanickingExtractor(t *testing.T) {
	chain := Chain{func(in input) string { panic("boom") }}
	assert.Equal(t, i18n.T(i18n.English, "errors.generic"), chain.Extract(i18n.English, "x"))
}
