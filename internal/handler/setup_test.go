package handler

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/tradelog/internal/config"
	"github.com/tradelog/internal/db"
	"github.com/tradelog/internal/service"
)

func setupTestAPI(t *testing.T, uploads *service.UploadService) (*API, *db.DB) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dsn := fmt.Sprintf("file:handler-%d?mode=memory&cache=shared&_foreign_keys=1", time.Now().UnixNano())
	gdb, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
		NowFunc:        func() time.Time { return time.Now().UTC() },
	})
	if err != nil {
		t.Fatalf("failed to open test db: %v", err)
	}
	handle, err := db.Wrap(gdb, config.DBConfig{})
	if err != nil {
		t.Fatalf("failed to wrap test db: %v", err)
	}
	if err := db.AutoMigrate(handle); err != nil {
		t.Fatalf("failed to migrate test db: %v", err)
	}
	t.Cleanup(func() { _ = db.Close(handle) })

	return NewAPI(handle, uploads, nil), handle
}

// call 以 CreateTestContext 直接调用处理函数
func call(t *testing.T, h gin.HandlerFunc, method, target string, payload any, params ...gin.Param) *httptest.ResponseRecorder {
	t.Helper()

	var body io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			t.Fatalf("failed to encode payload: %v", err)
		}
		body = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, target, body)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = req
	c.Params = params
	h(c)
	return w
}

func idParam(id string) gin.Param {
	return gin.Param{Key: "id", Value: id}
}

func decodeBody[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil {
		t.Fatalf("failed to decode response %q: %v", w.Body.String(), err)
	}
	return out
}

func expectStatus(t *testing.T, w *httptest.ResponseRecorder, want int) {
	t.Helper()
	if w.Code != want {
		t.Fatalf("expected status %d, got %d: %s", want, w.Code, w.Body.String())
	}
}

func createCategory(t *testing.T, api *API, name string) categoryResponse {
	t.Helper()
	w := call(t, api.CreateCategory, http.MethodPost, "/categories/", map[string]any{"name": name})
	expectStatus(t, w, http.StatusCreated)
	return decodeBody[categoryResponse](t, w)
}
