package api

import (
	"io"
	"mime/multipart"
	"strconv"

	"github.com/gin-gonic/gin"
)

// idParam reads a positive numeric path parameter, answering 400 when it is malformed.
func idParam(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		badRequest(c, name+" must be a positive integer")
		return 0, false
	}
	return uint(id), true
}

func bindJSON(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		badRequest(c, "invalid JSON body: "+err.Error())
		return false
	}
	return true
}

// uploadedFile opens the "file" form field; the caller closes it.
func uploadedFile(c *gin.Context) (*multipart.FileHeader, io.ReadCloser, bool) {
	header, err := c.FormFile("file")
	if err != nil {
		badRequest(c, "file is required")
		return nil, nil, false
	}
	if header.Size > maxUploadSize {
		badRequest(c, "file is too large")
		return nil, nil, false
	}
	file, err := header.Open()
	if err != nil {
		badRequest(c, "file cannot be read")
		return nil, nil, false
	}
	return header, file, true
}
