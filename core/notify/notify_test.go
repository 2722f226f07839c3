package notify

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMultiAndRecorder(t *testing.T) {
	a, b := &Recorder{}, &Recorder{}
	n := Multi{a, nil, b, Log{}, Discard}

	n.Notify(context.Background(), Notice{Level: Success, Key: "k1", Message: "one"})
	n.Notify(context.Background(), Notice{Level: Error, Key: "k2", Message: "two"})

	assert.Equal(t, []string{"k1", "k2"}, a.Keys())
	assert.Len(t, b.Notices(), 2)

	last, ok := b.Last()
	assert.True(t, ok)
	assert.Equal(t, Error, last.Level)

	b.Reset()
	_, ok = b.Last()
	assert.False(t, ok)
}
