// Package config 提供 tokenbench 的配置管理功能。
//
// 配置按 默认值 → YAML 文件 → 环境变量 的顺序合并，
// 并在进入实验前通过 Validate 一次性报告所有问题。
package config
