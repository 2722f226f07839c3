package logger

import (
	"context"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
)

func TestContextWithLogger(t *testing.T) {
	ctx, rlog := ContextWithLogger(context.Background())
	id := RequestIDFromContext(ctx)
	assert.NotEmpty(t, id)
	assert.Equal(t, id, rlog.Data[requestIDLoggerKey])

	// a second call must keep the existing request id
	ctx2, _ := ContextWithLogger(ctx)
	assert.Equal(t, id, RequestIDFromContext(ctx2))
}

func TestContextWithLabelAndIdentity(t *testing.T) {
	ctx, _ := ContextWithLoggerIdentity(context.Background(), "owner-1")
	ctx, rlog := ContextWithLabel(ctx, "admins.toggle")

	assert.Equal(t, "owner-1", IdentityFromContext(ctx))
	assert.Equal(t, "admins.toggle", rlog.Data[labelLoggerKey])
	assert.NotEmpty(t, RequestIDFromContext(ctx))
}

func TestFromContextWithoutLogger(t *testing.T) {
	assert.NotNil(t, FromContext(context.Background()))
	assert.Empty(t, RequestIDFromContext(context.Background()))
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, logrus.DebugLevel, ParseLevel("debug"))
	assert.Equal(t, logrus.InfoLevel, ParseLevel("nonsense"))
}
