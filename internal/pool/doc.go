/*
Package pool 提供两类复用设施：

  - WorkerPool：有界 worker 池。采集阶段按句子提交任务，任一任务失败后
    跳过仍在队列中的任务，panic 转换为错误。
  - BufferPool：报告渲染使用的 bytes.Buffer 池，超过上限的大缓冲区不回收。
*/
package pool
