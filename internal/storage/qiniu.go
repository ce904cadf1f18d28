package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/qiniu/go-sdk/v7/auth"
	qs "github.com/qiniu/go-sdk/v7/storage"

	"github.com/tradelog/internal/config"
)

// QiniuStore 通过表单上传把文件写入七牛空间
type QiniuStore struct {
	cred         *auth.Credentials
	bucket       string
	domain       string
	tokenExpires time.Duration
	uploader     *qs.FormUploader
}

// NewQiniuStore 根据配置构造七牛存储，凭证缺失时返回错误
func NewQiniuStore(cfg config.QiniuConfig, tokenExpires time.Duration) (*QiniuStore, error) {
	if !cfg.Enabled() {
		return nil, errors.New("qiniu credentials, bucket and domain are required")
	}
	if tokenExpires <= 0 {
		tokenExpires = time.Hour
	}

	domain := strings.TrimRight(cfg.Domain, "/")
	if !strings.HasPrefix(domain, "http://") && !strings.HasPrefix(domain, "https://") {
		scheme := "http://"
		if cfg.UseHTTPS {
			scheme = "https://"
		}
		domain = scheme + domain
	}

	return &QiniuStore{
		cred:         auth.New(cfg.AccessKey, cfg.SecretKey),
		bucket:       cfg.Bucket,
		domain:       domain,
		tokenExpires: tokenExpires,
		uploader:     qs.NewFormUploader(&qs.Config{UseHTTPS: cfg.UseHTTPS}),
	}, nil
}

// Put 为指定 key 签发上传凭证并上传本地文件
func (s *QiniuStore) Put(ctx context.Context, key, localPath string) (PutResult, error) {
	policy := qs.PutPolicy{
		Scope:   s.bucket + ":" + key,
		Expires: uint64(s.tokenExpires / time.Second),
	}
	token := policy.UploadToken(s.cred)

	var ret qs.PutRet
	if err := s.uploader.PutFile(ctx, &ret, token, key, localPath, nil); err != nil {
		return PutResult{}, fmt.Errorf("qiniu put %s: %w", key, err)
	}
	return PutResult{Key: ret.Key, Hash: ret.Hash}, nil
}

func (s *QiniuStore) PublicURL(key string) string {
	return qs.MakePublicURL(s.domain, key)
}

// PrivateURL 生成带签名、在 expires 后失效的下载地址
func (s *QiniuStore) PrivateURL(key string, expires time.Duration) string {
	deadline := time.Now().Add(expires).Unix()
	return qs.MakePrivateURL(s.cred, s.domain, key, deadline)
}
