package pool

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
)

// ErrPoolClosed 向已关闭的池提交任务
var ErrPoolClosed = errors.New("worker pool is closed")

// Task 池中执行的任务，ctx 为提交时传入的上下文
type Task func(ctx context.Context) error

// WorkerPoolConfig 池配置
type WorkerPoolConfig struct {
	// Workers 并发 worker 数，< 1 时按 1 处理
	Workers int
	// QueueSize 排队任务数，0 表示提交方与 worker 直接交接
	QueueSize int
	// StopOnError 首个任务失败后跳过剩余排队任务
	StopOnError bool
	// OnPanic 任务 panic 时回调（任务本身仍以错误结束）
	OnPanic func(recovered any)
}

// WorkerPoolStats 池统计
type WorkerPoolStats struct {
	Workers   int
	Submitted int64
	Completed int64
	Failed    int64
	Skipped   int64
}

type job struct {
	ctx context.Context
	run Task
}

// WorkerPool 固定数量 worker 的任务池
type WorkerPool struct {
	cfg   WorkerPoolConfig
	queue chan job

	workers   sync.WaitGroup
	inflight  sync.WaitGroup
	closeOnce sync.Once
	closed    atomic.Bool
	stopped   atomic.Bool

	errMu    sync.Mutex
	firstErr error

	submitted, completed, failed, skipped atomic.Int64
}

// NewWorkerPool 创建池并启动 worker
func NewWorkerPool(cfg WorkerPoolConfig) *WorkerPool {
	cfg.Workers = max(cfg.Workers, 1)
	cfg.QueueSize = max(cfg.QueueSize, 0)

	p := &WorkerPool{
		cfg:   cfg,
		queue: make(chan job, cfg.QueueSize),
	}
	p.workers.Add(cfg.Workers)
	for range cfg.Workers {
		go p.loop()
	}
	return p
}

// Submit 提交任务；队列满时阻塞，直到有空位或 ctx 结束
func (p *WorkerPool) Submit(ctx context.Context, task Task) error {
	if p.closed.Load() {
		return ErrPoolClosed
	}

	p.inflight.Add(1)
	select {
	case p.queue <- job{ctx: ctx, run: task}:
		p.submitted.Add(1)
		return nil
	case <-ctx.Done():
		p.inflight.Done()
		return ctx.Err()
	}
}

// Wait 等待所有已提交任务执行完或被跳过，返回第一个任务错误
func (p *WorkerPool) Wait() error {
	p.inflight.Wait()
	p.errMu.Lock()
	defer p.errMu.Unlock()
	return p.firstErr
}

// Stopped 是否因任务失败进入停止状态
func (p *WorkerPool) Stopped() bool {
	return p.stopped.Load()
}

// Close 停止接收任务，等待 worker 退出
func (p *WorkerPool) Close() {
	p.closeOnce.Do(func() {
		p.closed.Store(true)
		close(p.queue)
		p.workers.Wait()
	})
}

// Stats 返回当前统计
func (p *WorkerPool) Stats() WorkerPoolStats {
	return WorkerPoolStats{
		Workers:   p.cfg.Workers,
		Submitted: p.submitted.Load(),
		Completed: p.completed.Load(),
		Failed:    p.failed.Load(),
		Skipped:   p.skipped.Load(),
	}
}

func (p *WorkerPool) loop() {
	defer p.workers.Done()
	for j := range p.queue {
		p.handle(j)
	}
}

func (p *WorkerPool) handle(j job) {
	defer p.inflight.Done()

	if p.cfg.StopOnError && p.stopped.Load() {
		p.skipped.Add(1)
		return
	}

	if err := p.run(j); err != nil {
		p.failed.Add(1)
		p.errMu.Lock()
		if p.firstErr == nil {
			p.firstErr = err
		}
		p.errMu.Unlock()
		if p.cfg.StopOnError {
			p.stopped.Store(true)
		}
		return
	}
	p.completed.Add(1)
}

func (p *WorkerPool) run(j job) (err error) {
	defer func() {
		if r := recover(); r != nil {
			if p.cfg.OnPanic != nil {
				p.cfg.OnPanic(r)
			}
			err = fmt.Errorf("task panicked: %v", r)
		}
	}()
	return j.run(j.ctx)
}
