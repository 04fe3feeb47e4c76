/*
Package tlsutil 提供语料抓取使用的加固 HTTP 客户端。

维基百科文章与翻译接口共享同一个 Transport：TLS 1.2+、仅 AEAD 密码套件、
遵循环境代理设置、按主机限制空闲连接。
*/
package tlsutil
