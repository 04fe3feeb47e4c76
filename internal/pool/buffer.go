package pool

import (
	"bytes"
	"sync"
	"sync/atomic"
)

// BufferPool bytes.Buffer 复用池
type BufferPool struct {
	pool        sync.Pool
	maxRetained int

	gets   atomic.Int64
	allocs atomic.Int64
}

// NewBufferPool 新建缓冲区预分配 initial 字节；容量超过 maxRetained 的缓冲区
// 在 Put 时丢弃，避免一次大报告长期占用内存。
func NewBufferPool(initial, maxRetained int) *BufferPool {
	bp := &BufferPool{maxRetained: maxRetained}
	bp.pool.New = func() any {
		bp.allocs.Add(1)
		return bytes.NewBuffer(make([]byte, 0, initial))
	}
	return bp
}

// Get 取出一个空缓冲区
func (bp *BufferPool) Get() *bytes.Buffer {
	bp.gets.Add(1)
	return bp.pool.Get().(*bytes.Buffer)
}

// Put 归还缓冲区
func (bp *BufferPool) Put(b *bytes.Buffer) {
	if b == nil || (bp.maxRetained > 0 && b.Cap() > bp.maxRetained) {
		return
	}
	b.Reset()
	bp.pool.Put(b)
}

// HitRate Get 中复用已有缓冲区的比例
func (bp *BufferPool) HitRate() float64 {
	gets := bp.gets.Load()
	if gets == 0 {
		return 0
	}
	return float64(gets-bp.allocs.Load()) / float64(gets)
}

// ByteBufferPool 报告渲染共享的缓冲区池
var ByteBufferPool = NewBufferPool(4<<10, 1<<20)
