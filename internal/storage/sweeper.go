package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// StagingPattern 是上传暂存文件的命名模式，供 os.CreateTemp 使用
const StagingPattern = "tradelog-upload-*"

const stagingPrefix = "tradelog-upload-"

// SweepStaging 删除 dir 下超过 maxAge 的暂存文件，返回删除数量。
// 正常请求会自行清理，这里只处理进程崩溃后遗留的文件。
func SweepStaging(dir string, maxAge time.Duration, now time.Time) (int, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, nil
		}
		return 0, fmt.Errorf("read staging dir: %w", err)
	}

	removed := 0
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasPrefix(entry.Name(), stagingPrefix) {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		if now.Sub(info.ModTime()) < maxAge {
			continue
		}
		if err := os.Remove(filepath.Join(dir, entry.Name())); err != nil && !os.IsNotExist(err) {
			return removed, fmt.Errorf("remove %s: %w", entry.Name(), err)
		}
		removed++
	}
	return removed, nil
}
