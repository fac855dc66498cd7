package httpresp

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
)

func TestParsePage(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		query     string
		wantPage  int
		wantLimit int
	}{
		{"", 1, DefaultLimit},
		{"?page=3&limit=10", 3, 10},
		{"?page=-1&limit=0", 1, DefaultLimit},
		{"?page=abc&limit=500", 1, DefaultLimit},
	}

	for _, tt := range tests {
		c, _ := gin.CreateTestContext(httptest.NewRecorder())
		c.Request = httptest.NewRequest(http.MethodGet, "/"+tt.query, nil)

		p := ParsePage(c)
		if p.Page != tt.wantPage || p.Limit != tt.wantLimit {
			t.Fatalf("%q: got page=%d limit=%d, want %d/%d", tt.query, p.Page, p.Limit, tt.wantPage, tt.wantLimit)
		}
	}
}

func TestNewPagination(t *testing.T) {
	tests := []struct {
		total int64
		limit int
		want  int
	}{
		{0, 20, 0},
		{1, 20, 1},
		{20, 20, 1},
		{21, 20, 2},
	}
	for _, tt := range tests {
		got := NewPagination(PageParams{Page: 1, Limit: tt.limit}, tt.total)
		if got.Pages != tt.want {
			t.Fatalf("total=%d limit=%d: pages=%d, want %d", tt.total, tt.limit, got.Pages, tt.want)
		}
	}
}
