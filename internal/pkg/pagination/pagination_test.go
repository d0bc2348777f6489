package pagination

import (
	"net/http/httptest"
	"testing"
)

func TestFromRequest(t *testing.T) {
	tests := []struct {
		query      string
		page       int
		limit      int
		wantOffset int
	}{
		{"", 1, DefaultLimit, 0},
		{"?page=3&limit=10", 3, 10, 20},
		{"?page=0&limit=1000", 1, DefaultLimit, 0},
		{"?page=abc&limit=-5", 1, DefaultLimit, 0},
		{"?page=9223372036854775807&limit=20", MaxPage, 20, (MaxPage - 1) * 20},
	}

	for _, tt := range tests {
		p := FromRequest(httptest.NewRequest("GET", "/x"+tt.query, nil))
		if p.Page != tt.page || p.Limit != tt.limit || p.Offset() != tt.wantOffset {
			t.Fatalf("%q: got %+v offset=%d", tt.query, p, p.Offset())
		}
	}
}
