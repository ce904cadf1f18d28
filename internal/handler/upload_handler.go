package handler

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/tradelog/internal/service"
)

type uploadResponse struct {
	URL    string `json:"url"`
	Key    string `json:"key"`
	Width  int    `json:"width,omitempty"`
	Height int    `json:"height,omitempty"`
}

type privateURLQuery struct {
	Expires int64 `form:"expires,default=3600" binding:"min=1,max=604800"`
}

type privateURLResponse struct {
	URL string `json:"url"`
}

// UploadFile 上传图片到对象存储并返回访问地址
// @Summary Upload image
// @Tags upload
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "image file"
// @Param custom_key query string false "object key, defaults to {unix}_{filename}"
// @Success 200 {object} uploadResponse
// @Failure 400 {object} errorResponse
// @Failure 503 {object} errorResponse
// @Router /upload/ [post]
func (a *API) UploadFile(c *gin.Context) {
	if !a.uploads.Enabled() {
		a.fail(c, service.ErrUploadDisabled, "上传失败")
		return
	}

	file, err := c.FormFile("file")
	if err != nil {
		respondError(c, http.StatusUnprocessableEntity, "缺少上传文件")
		return
	}
	body, err := file.Open()
	if err != nil {
		a.fail(c, err, "读取上传文件失败")
		return
	}
	defer body.Close()

	key := strings.TrimSpace(c.Query("custom_key"))
	if key == "" {
		key = strings.TrimSpace(c.PostForm("key"))
	}

	result, err := a.uploads.Upload(c.Request.Context(), service.UploadInput{
		Filename:    file.Filename,
		ContentType: file.Header.Get("Content-Type"),
		Body:        body,
		Key:         key,
	})
	if err != nil {
		a.fail(c, err, "上传失败")
		return
	}

	c.JSON(http.StatusOK, uploadResponse{
		URL:    result.URL,
		Key:    result.Key,
		Width:  result.Width,
		Height: result.Height,
	})
}

// GetPrivateURL 为私有空间中的对象生成临时访问地址
// @Summary Signed private URL
// @Tags upload
// @Produce json
// @Param key path string true "object key"
// @Param expires query int false "lifetime in seconds" minimum(1) maximum(604800) default(3600)
// @Success 200 {object} privateURLResponse
// @Failure 503 {object} errorResponse
// @Router /upload/private/{key} [get]
func (a *API) GetPrivateURL(c *gin.Context) {
	var q privateURLQuery
	if !bindQuery(c, &q) {
		return
	}

	url, err := a.uploads.PrivateURL(c.Param("key"), time.Duration(q.Expires)*time.Second)
	if err != nil {
		a.fail(c, err, "生成访问地址失败")
		return
	}
	c.JSON(http.StatusOK, privateURLResponse{URL: url})
}
