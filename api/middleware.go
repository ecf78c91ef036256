package api

import (
	"compress/gzip"
	"io"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
)

// inflateBody transparently decodes request bodies sent with
// Content-Encoding: gzip. A body that is not valid gzip is answered with 400.
func inflateBody(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		req := c.Request()
		if !acceptsGzip(req.Header.Values(echo.HeaderContentEncoding)) {
			return next(c)
		}
		zr, err := gzip.NewReader(req.Body)
		if err != nil {
			_ = req.Body.Close()
			return c.JSON(http.StatusBadRequest, errorResponse{Error: msgInvalidBody})
		}
		req.Body = inflatedBody{zr: zr, raw: req.Body}
		req.ContentLength = -1
		req.Header.Del(echo.HeaderContentEncoding)
		req.Header.Del(echo.HeaderContentLength)
		return next(c)
	}
}

func acceptsGzip(values []string) bool {
	for _, v := range values {
		for _, enc := range strings.Split(v, ",") {
			if strings.EqualFold(strings.TrimSpace(enc), "gzip") {
				return true
			}
		}
	}
	return false
}

type inflatedBody struct {
	zr  *gzip.Reader
	raw io.ReadCloser
}

func (b inflatedBody) Read(p []byte) (int, error) { return b.zr.Read(p) }

func (b inflatedBody) Close() error {
	zerr := b.zr.Close()
	if err := b.raw.Close(); err != nil {
		return err
	}
	return zerr
}
