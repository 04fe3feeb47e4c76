// Package store 将实验运行结果持久化到关系数据库（GORM）。
//
// 表结构：runs（一次运行）与 measurements（每条测量一行）。
// 未计算的百分比保存为 NULL，读取时还原为 experiment.NotApplicable。
// Token 切分结果不入库。
package store
