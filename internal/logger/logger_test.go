package logger

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestInitAndL(t *testing.T) {
	t.Run("Development", func(t *testing.T) {
		Init("development")
		assert.NotNil(t, L())
	})

	t.Run("Production", func(t *testing.T) {
		Init("production")
		assert.NotNil(t, L())
		Sync()
	})
}

func TestRequestIDContext(t *testing.T) {
	ctx := context.Background()

	t.Run("Empty context", func(t *testing.T) {
		assert.Equal(t, "", RequestIDFrom(ctx))
	})

	t.Run("With request id", func(t *testing.T) {
		ctx := WithRequestID(ctx, "req-123")
		assert.Equal(t, "req-123", RequestIDFrom(ctx))
	})
}

func TestFromCtx(t *testing.T) {
	Init("development")

	t.Run("Without request id returns global logger", func(t *testing.T) {
		assert.Equal(t, L(), FromCtx(context.Background()))
	})

	t.Run("With request id returns decorated logger", func(t *testing.T) {
		ctx := WithRequestID(context.Background(), "req-456")
		l := FromCtx(ctx)
		assert.NotNil(t, l)
		assert.NotEqual(t, L(), l)
	})
}
