package cronrunner

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/tradelog/internal/storage"
)

// AddStagingSweep 定期清理上传暂存目录中的遗留文件
func (r *Runner) AddStagingSweep(spec, dir string, maxAge time.Duration) error {
	_, err := r.Add(spec, func(ctx context.Context) {
		if ctx.Err() != nil {
			return
		}
		removed, err := storage.SweepStaging(dir, maxAge, time.Now())
		if err != nil {
			r.logger.Warn("staging sweep failed", zap.String("dir", dir), zap.Error(err))
			return
		}
		if removed > 0 {
			r.logger.Info("staging sweep removed files", zap.String("dir", dir), zap.Int("removed", removed))
		}
	})
	return err
}
