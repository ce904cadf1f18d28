package storage

import (
	"context"
	"errors"
	"time"
)

// ErrHashMismatch 表示对象存储返回的 key/hash 与本地计算结果不一致
var ErrHashMismatch = errors.New("object store returned mismatched key or hash")

// PutResult 是对象存储确认写入后返回的信息
type PutResult struct {
	Key  string
	Hash string
}

// ObjectStore 抽象上传目标，便于在测试中替换七牛实现
type ObjectStore interface {
	Put(ctx context.Context, key, localPath string) (PutResult, error)
	PublicURL(key string) string
	PrivateURL(key string, expires time.Duration) string
}
