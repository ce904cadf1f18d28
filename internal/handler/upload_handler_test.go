package handler

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/png"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/tradelog/internal/config"
	"github.com/tradelog/internal/service"
	"github.com/tradelog/internal/storage"
)

type memoryStore struct {
	keys []string
	fail error
}

func (m *memoryStore) Put(_ context.Context, key, localPath string) (storage.PutResult, error) {
	if m.fail != nil {
		return storage.PutResult{}, m.fail
	}
	m.keys = append(m.keys, key)
	hash, err := storage.Etag(localPath)
	if err != nil {
		return storage.PutResult{}, err
	}
	return storage.PutResult{Key: key, Hash: hash}, nil
}

func (m *memoryStore) PublicURL(key string) string {
	return "https://img.example.com/" + key
}

func (m *memoryStore) PrivateURL(key string, expires time.Duration) string {
	return fmt.Sprintf("https://img.example.com/%s?e=%d", key, int64(expires/time.Second))
}

func multipartUpload(t *testing.T, target, filename, contentType string, content []byte) *http.Request {
	t.Helper()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename="%s"`, filename))
	header.Set("Content-Type", contentType)
	part, err := mw.CreatePart(header)
	if err != nil {
		t.Fatalf("failed to create part: %v", err)
	}
	if _, err := part.Write(content); err != nil {
		t.Fatalf("failed to write part: %v", err)
	}
	if err := mw.Close(); err != nil {
		t.Fatalf("failed to close multipart writer: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, target, &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func serve(h gin.HandlerFunc, req *http.Request, params ...gin.Param) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = req
	c.Params = params
	h(c)
	return w
}

func samplePNG(t *testing.T) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 4, 3))); err != nil {
		t.Fatalf("failed to encode png: %v", err)
	}
	return buf.Bytes()
}

func TestUploadFile(t *testing.T) {
	store := &memoryStore{}
	api, _ := setupTestAPI(t, service.NewUploadService(store, config.UploadConfig{StagingDir: t.TempDir(), MaxBytes: 1 << 20}))

	w := serve(api.UploadFile, multipartUpload(t, "/upload/?custom_key=trades/k.png", "k.png", "image/png", samplePNG(t)))
	expectStatus(t, w, http.StatusOK)

	got := decodeBody[uploadResponse](t, w)
	if got.Key != "trades/k.png" || got.URL != "https://img.example.com/trades/k.png" {
		t.Fatalf("unexpected upload response %+v", got)
	}
	if got.Width != 4 || got.Height != 3 {
		t.Fatalf("expected 4x3 image, got %dx%d", got.Width, got.Height)
	}
	if len(store.keys) != 1 {
		t.Fatalf("expected one stored object, got %d", len(store.keys))
	}
}

func TestUploadFileRejections(t *testing.T) {
	store := &memoryStore{}
	api, _ := setupTestAPI(t, service.NewUploadService(store, config.UploadConfig{StagingDir: t.TempDir(), MaxBytes: 1 << 20}))

	w := serve(api.UploadFile, multipartUpload(t, "/upload/", "notes.txt", "text/plain", []byte("hello")))
	expectStatus(t, w, http.StatusBadRequest)

	store.fail = errors.New("connection reset")
	w = serve(api.UploadFile, multipartUpload(t, "/upload/", "k.png", "image/png", samplePNG(t)))
	expectStatus(t, w, http.StatusBadRequest)
	if got := decodeBody[errorResponse](t, w); !bytes.Contains([]byte(got.Error), []byte("connection reset")) {
		t.Fatalf("expected transport detail in error, got %q", got.Error)
	}

	req := httptest.NewRequest(http.MethodPost, "/upload/", nil)
	expectStatus(t, serve(api.UploadFile, req), http.StatusUnprocessableEntity)
}

func TestUploadDisabledWithoutStore(t *testing.T) {
	api, _ := setupTestAPI(t, nil)

	w := serve(api.UploadFile, multipartUpload(t, "/upload/", "k.png", "image/png", samplePNG(t)))
	expectStatus(t, w, http.StatusServiceUnavailable)

	w = call(t, api.GetPrivateURL, http.MethodGet, "/upload/private/k.png", nil, gin.Param{Key: "key", Value: "/k.png"})
	expectStatus(t, w, http.StatusServiceUnavailable)
}

func TestGetPrivateURL(t *testing.T) {
	api, _ := setupTestAPI(t, service.NewUploadService(&memoryStore{}, config.UploadConfig{StagingDir: t.TempDir()}))

	w := call(t, api.GetPrivateURL, http.MethodGet, "/upload/private/trades/k.png?expires=600", nil,
		gin.Param{Key: "key", Value: "/trades/k.png"})
	expectStatus(t, w, http.StatusOK)
	if got := decodeBody[privateURLResponse](t, w); got.URL != "https://img.example.com/trades/k.png?e=600" {
		t.Fatalf("unexpected private url %q", got.URL)
	}

	w = call(t, api.GetPrivateURL, http.MethodGet, "/upload/private/k.png?expires=0", nil, gin.Param{Key: "key", Value: "/k.png"})
	expectStatus(t, w, http.StatusUnprocessableEntity)
}
