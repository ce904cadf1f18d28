package storage

import (
	"crypto/sha1"
	"encoding/base64"
	"fmt"
	"io"
	"os"
)

const etagBlockSize = 4 << 20

// Etag 计算七牛的文件 hash：按 4MB 分块做 SHA-1，
// 单块文件前缀 0x16，多块时对各块摘要拼接后再做一次 SHA-1 并加前缀 0x96。
func Etag(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	return EtagReader(f)
}

// EtagReader 与 Etag 相同，但直接读取 r
func EtagReader(r io.Reader) (string, error) {
	var digests [][]byte
	buf := make([]byte, etagBlockSize)
	for {
		n, err := io.ReadFull(r, buf)
		if n > 0 || len(digests) == 0 {
			sum := sha1.Sum(buf[:n])
			digests = append(digests, sum[:])
		}
		if err == io.EOF || err == io.ErrUnexpectedEOF {
			break
		}
		if err != nil {
			return "", fmt.Errorf("read block: %w", err)
		}
	}

	var out []byte
	if len(digests) == 1 {
		out = append([]byte{0x16}, digests[0]...)
	} else {
		h := sha1.New()
		for _, d := range digests {
			h.Write(d)
		}
		out = append([]byte{0x96}, h.Sum(nil)...)
	}
	return base64.URLEncoding.EncodeToString(out), nil
}
