package api

import (
	"bytes"
	"context"
	"fmt"
	"mime"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"path/filepath"
	"strings"
)

// UploadImage posts data as the multipart field "image" and returns the
// URL the server stored it under.
func (c *Client) UploadImage(ctx context.Context, filename string, data []byte) (string, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="image"; filename="%s"`, escapeQuotes(filepath.Base(filename))))
	h.Set("Content-Type", ImageContentType(filename, data))
	part, err := mw.CreatePart(h)
	if err != nil {
		return "", &Error{Op: OpUpload, Err: err}
	}
	if _, err := part.Write(data); err != nil {
		return "", &Error{Op: OpUpload, Err: err}
	}
	if err := mw.Close(); err != nil {
		return "", &Error{Op: OpUpload, Err: err}
	}

	var out struct {
		URL string `json:"url"`
	}
	if err := c.do(ctx, OpUpload, http.MethodPost, "/images/upload", &buf, mw.FormDataContentType(), c.schemas.upload, &out); err != nil {
		return "", err
	}
	return out.URL, nil
}

// ImageContentType guesses the MIME type from the extension, falling back
// to sniffing the bytes.
func ImageContentType(filename string, data []byte) string {
	if ct := mime.TypeByExtension(strings.ToLower(filepath.Ext(filename))); ct != "" {
		return ct
	}
	return http.DetectContentType(data)
}

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

func escapeQuotes(s string) string { return quoteEscaper.Replace(s) }
