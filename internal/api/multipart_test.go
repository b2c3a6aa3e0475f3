package api_test

import (
	"bytes"
	"mime/multipart"
	"testing"

	"github.com/stretchr/testify/require"
)

// multipartWriter writes a single "file" part and returns the request content type.
func multipartWriter(t *testing.T, body *bytes.Buffer, filename string, content []byte) string {
	t.Helper()
	writer := multipart.NewWriter(body)
	part, err := writer.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, writer.Close())
	return writer.FormDataContentType()
}
