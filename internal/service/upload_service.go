package service

import (
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "golang.org/x/image/webp"

	"github.com/tradelog/internal/config"
	"github.com/tradelog/internal/storage"
)

var (
	ErrUploadDisabled = errors.New("object storage is not configured")
	ErrNotImage       = errors.New("only image files are allowed")
	ErrFileTooLarge   = errors.New("file exceeds upload size limit")
	ErrUploadFailed   = errors.New("upload failed")
)

const (
	DefaultPrivateURLExpiry = time.Hour
	MaxPrivateURLExpiry     = 7 * 24 * time.Hour
)

// UploadInput 描述一次上传；Key 为空时使用 {unix}_{文件名}
type UploadInput struct {
	Filename    string
	ContentType string
	Body        io.Reader
	Key         string
}

// UploadResult 上传成功后的访问地址；无法识别图片尺寸时宽高为 0
type UploadResult struct {
	URL    string
	Key    string
	Width  int
	Height int
}

// UploadService 将上传流暂存到本地，再转存至对象存储并校验 hash
type UploadService struct {
	store      storage.ObjectStore
	stagingDir string
	maxBytes   int64
	now        func() time.Time
}

// NewUploadService 构造上传服务，store 为 nil 时上传接口返回 ErrUploadDisabled
func NewUploadService(store storage.ObjectStore, cfg config.UploadConfig) *UploadService {
	dir := cfg.StagingDir
	if dir == "" {
		dir = os.TempDir()
	}
	return &UploadService{store: store, stagingDir: dir, maxBytes: cfg.MaxBytes, now: time.Now}
}

func (s *UploadService) Enabled() bool {
	return s != nil && s.store != nil
}

func (s *UploadService) Upload(ctx context.Context, input UploadInput) (*UploadResult, error) {
	if !s.Enabled() {
		return nil, ErrUploadDisabled
	}
	if !strings.HasPrefix(strings.ToLower(input.ContentType), "image/") {
		return nil, ErrNotImage
	}

	name := baseName(input.Filename)
	key := strings.TrimSpace(input.Key)
	if key == "" {
		key = fmt.Sprintf("%d_%s", s.now().Unix(), name)
	}

	if err := os.MkdirAll(s.stagingDir, 0o755); err != nil {
		return nil, fmt.Errorf("prepare staging dir: %w", err)
	}
	tmp, err := os.CreateTemp(s.stagingDir, storage.StagingPattern+filepath.Ext(name))
	if err != nil {
		return nil, fmt.Errorf("create staging file: %w", err)
	}
	path := tmp.Name()
	defer os.Remove(path)

	if err := s.stage(tmp, input.Body); err != nil {
		return nil, err
	}

	hash, err := storage.Etag(path)
	if err != nil {
		return nil, fmt.Errorf("hash staging file: %w", err)
	}

	ret, err := s.store.Put(ctx, key, path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUploadFailed, err)
	}
	if ret.Key != key || ret.Hash != hash {
		return nil, fmt.Errorf("%w: %w (key=%s hash=%s, expected key=%s hash=%s)",
			ErrUploadFailed, storage.ErrHashMismatch, ret.Key, ret.Hash, key, hash)
	}

	result := &UploadResult{URL: s.store.PublicURL(key), Key: key}
	result.Width, result.Height = imageSize(path)
	return result, nil
}

// PrivateURL 生成带签名的临时访问地址，expires 为 0 时默认一小时
func (s *UploadService) PrivateURL(key string, expires time.Duration) (string, error) {
	if !s.Enabled() {
		return "", ErrUploadDisabled
	}
	key = strings.TrimPrefix(strings.TrimSpace(key), "/")
	if key == "" {
		return "", invalid("key", "is required")
	}
	if expires == 0 {
		expires = DefaultPrivateURLExpiry
	}
	if expires < time.Second || expires > MaxPrivateURLExpiry {
		return "", invalid("expires", "must be between 1 second and 7 days")
	}
	return s.store.PrivateURL(key, expires), nil
}

func (s *UploadService) stage(tmp *os.File, body io.Reader) error {
	reader := body
	if s.maxBytes > 0 {
		reader = io.LimitReader(body, s.maxBytes+1)
	}
	n, err := io.Copy(tmp, reader)
	closeErr := tmp.Close()
	if err != nil {
		return fmt.Errorf("stage upload: %w", err)
	}
	if closeErr != nil {
		return fmt.Errorf("stage upload: %w", closeErr)
	}
	if s.maxBytes > 0 && n > s.maxBytes {
		return ErrFileTooLarge
	}
	return nil
}

func baseName(filename string) string {
	name := filepath.Base(strings.ReplaceAll(strings.TrimSpace(filename), "\\", "/"))
	if name == "." || name == "/" || name == "" {
		return "upload"
	}
	return name
}

func imageSize(path string) (int, int) {
	f, err := os.Open(path)
	if err != nil {
		return 0, 0
	}
	defer f.Close()

	cfg, _, err := image.DecodeConfig(f)
	if err != nil {
		return 0, 0
	}
	return cfg.Width, cfg.Height
}
