package pool

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBufferPool_ReturnsEmptyBuffers(t *testing.T) {
	bp := NewBufferPool(64, 1024)

	buf := bp.Get()
	buf.WriteString("| **PL** (Polish) | +30.0% (0) |")
	bp.Put(buf)

	again := bp.Get()
	assert.Zero(t, again.Len())
	bp.Put(again)
}

func TestBufferPool_DropsOversizedBuffers(t *testing.T) {
	bp := NewBufferPool(16, 32)
	bp.Put(bytes.NewBuffer(make([]byte, 0, 4096)))

	got := bp.Get()
	assert.LessOrEqual(t, got.Cap(), 32, "oversized buffer must not be reused")
}

func TestBufferPool_HitRate(t *testing.T) {
	bp := NewBufferPool(16, 0)
	assert.Zero(t, bp.HitRate())

	bp.Put(bp.Get())
	bp.Get()
	assert.GreaterOrEqual(t, bp.HitRate(), 0.0)
	assert.LessOrEqual(t, bp.HitRate(), 0.5)

	bp.Put(nil)
}
