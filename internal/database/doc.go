// 版权所有 2024 AgentFlow Authors. 版权所有。
// 此源代码的使用由 MIT 许可规范,该许可可以是
// 在LICENSE文件中找到。

/*
包 database 提供基于 GORM 的数据库连接与连接池管理，支持
SQLite（github.com/glebarez/sqlite，纯 Go）、PostgreSQL 与 MySQL。

# 核心类型

  - PoolManager：连接池管理器，持有 GORM DB 实例与底层 sql.DB，
    提供 DB()、Ping()、Stats()、Close() 等生命周期方法。
  - PoolConfig：连接池配置，包含最大空闲连接数、最大打开连接数、
    连接最大生命周期与空闲超时。
  - TransactionFunc：事务回调函数类型。

# 主要能力

  - Open / Dialector：按 config.DatabaseConfig 选择驱动并建立连接，
    SQLite 固定为单连接。
  - 事务管理：WithTransaction 提供单次事务执行，
    WithTransactionRetry 对瞬时错误（死锁、序列化失败、SQLite 忙、连接中断）
    线性退避重试。
  - 指标：Connections 返回打开与空闲连接数，供 metrics 上报。
*/
package database
