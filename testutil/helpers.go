// =============================================================================
// 🧪 测试辅助函数
// =============================================================================
// 上下文与临时文件辅助，供各包测试共用。
//
//	ctx := testutil.TestContext(t)
//	path := testutil.WriteTempFile(t, "corpus.json", body)
// =============================================================================
package testutil

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// DefaultTimeout 单个测试允许的最长运行时间
const DefaultTimeout = 30 * time.Second

// TestContext 返回在测试结束或 DefaultTimeout 后取消的上下文
func TestContext(t testing.TB) context.Context {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), DefaultTimeout)
	t.Cleanup(cancel)
	return ctx
}

// CancelledContext 已取消的上下文，用于验证提前退出路径
func CancelledContext() context.Context {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	return ctx
}

// WriteTempFile 把 content 写入 t.TempDir() 下的 name，返回完整路径。
// name 可以包含子目录。
func WriteTempFile(t testing.TB, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}
