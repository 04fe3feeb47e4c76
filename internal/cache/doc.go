// 版权所有 2024 AgentFlow Authors. 版权所有。
// 此源代码的使用由 MIT 许可规范,该许可可以是
// 在LICENSE文件中找到。

/*
包 cache 提供基于 Redis 的缓存管理能力，用于跨运行复用分词结果。

# 概述

Manager 封装 go-redis 客户端，值以 JSON 存储，键统一加上配置的前缀。
Lookup 以布尔值报告命中，未命中不是错误；Store 的 ttl 为 0 时使用
配置的默认过期时间。进程内统计命中与未命中次数。

关闭后的所有操作返回 ErrClosed。
*/
package cache
