package api

import (
	"bytes"
	"compress/gzip"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
)

func gzipped(t *testing.T, s string) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := gzip.NewWriter(&buf)
	if _, err := zw.Write([]byte(s)); err != nil {
		t.Fatalf("gzip write: %v", err)
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("gzip close: %v", err)
	}
	return buf.Bytes()
}

func TestPostCategoryGzipBody(t *testing.T) {
	cats := &mockCategories{}
	e := newRouter(&stubAggregator{}, cats, nil, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/categories", bytes.NewReader(gzipped(t, `{"name":"Work"}`)))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	req.Header.Set(echo.HeaderContentEncoding, "gzip")
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected status 201 got %d: %s", rec.Code, rec.Body.String())
	}
	if len(cats.created) != 1 || cats.created[0] != "Work" {
		t.Fatalf("unexpected creates: %v", cats.created)
	}
}

func TestPostCategoryInvalidGzip(t *testing.T) {
	cats := &mockCategories{}
	e := newRouter(&stubAggregator{}, cats, nil, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/categories", strings.NewReader(`{"name":"Work"}`))
	req.Header.Set(echo.HeaderContentEncoding, "gzip")
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400 got %d", rec.Code)
	}
	if len(cats.created) != 0 {
		t.Fatalf("service must not be called")
	}
}

func TestAcceptsGzip(t *testing.T) {
	cases := map[string]struct {
		values []string
		want   bool
	}{
		"none":     {nil, false},
		"identity": {[]string{"identity"}, false},
		"gzip":     {[]string{"gzip"}, true},
		"list":     {[]string{"identity, GZIP"}, true},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			if got := acceptsGzip(tc.values); got != tc.want {
				t.Fatalf("acceptsGzip(%v) = %v, want %v", tc.values, got, tc.want)
			}
		})
	}
}
