package pagination

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/labstack/echo/v4"
)

func contextFor(target string) echo.Context {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	return e.NewContext(req, httptest.NewRecorder())
}

func TestFromContext_Defaults(t *testing.T) {
	p := FromContext(contextFor("/"))

	if p.Limit != DefaultLimit {
		t.Errorf("expected default limit %d, got %d", DefaultLimit, p.Limit)
	}
	if p.Offset != 0 {
		t.Errorf("expected default offset 0, got %d", p.Offset)
	}
}

func TestFromContext_CustomValues(t *testing.T) {
	p := FromContext(contextFor("/?limit=50&offset=10"))

	if p.Limit != 50 {
		t.Errorf("expected limit 50, got %d", p.Limit)
	}
	if p.Offset != 10 {
		t.Errorf("expected offset 10, got %d", p.Offset)
	}
}

func TestFromContext_MaxLimit(t *testing.T) {
	p := FromContext(contextFor("/?limit=500"))
	if p.Limit != MaxLimit {
		t.Errorf("expected limit capped at %d, got %d", MaxLimit, p.Limit)
	}
}

func TestFromContext_InvalidValues(t *testing.T) {
	p := FromContext(contextFor("/?limit=abc&offset=-3"))
	if p.Limit != DefaultLimit {
		t.Errorf("expected default limit, got %d", p.Limit)
	}
	if p.Offset != 0 {
		t.Errorf("expected offset 0, got %d", p.Offset)
	}
}

func TestNewResponse_HasMore(t *testing.T) {
	r := NewResponse([]int{1, 2}, 5, 2, 0)
	if !r.HasMore {
		t.Error("expected has_more with 5 total and a page of 2")
	}
	r = NewResponse([]int{5}, 5, 2, 4)
	if r.HasMore {
		t.Error("expected no more results on the last page")
	}
}

func TestParams_Offsets(t *testing.T) {
	p := Params{Limit: 10, Offset: 5}
	if p.NextOffset() != 15 {
		t.Errorf("expected next offset 15, got %d", p.NextOffset())
	}
	if p.PreviousOffset() != 0 {
		t.Errorf("expected previous offset 0, got %d", p.PreviousOffset())
	}
}

func TestResponse_WithLinks(t *testing.T) {
	r := NewResponse(nil, 25, 10, 10).WithLinks("/api/v1/widgets", url.Values{"state": {"idle"}})
	if r.Next != "/api/v1/widgets?limit=10&offset=20&state=idle" {
		t.Errorf("unexpected next link %q", r.Next)
	}
	if r.Prev != "/api/v1/widgets?limit=10&offset=0&state=idle" {
		t.Errorf("unexpected prev link %q", r.Prev)
	}

	first := NewResponse(nil, 5, 10, 0).WithLinks("/api/v1/widgets", nil)
	if first.Next != "" || first.Prev != "" {
		t.Errorf("expected no links on a single page, got %q %q", first.Next, first.Prev)
	}
}

func TestFromContext_HugeOffset(t *testing.T) {
	p := FromContext(contextFor("/?limit=10&offset=9223372036854775807"))
	if p.Offset != MaxOffset {
		t.Errorf("expected offset clamped to %d, got %d", MaxOffset, p.Offset)
	}
	r := NewResponse(nil, 3, p.Limit, p.Offset).WithLinks("/api/v1/widgets", nil)
	if r.HasMore || r.Next != "" {
		t.Errorf("expected no further pages, got has_more=%v next=%q", r.HasMore, r.Next)
	}
}

func TestNewResponse_NoOverflow(t *testing.T) {
	const maxInt = int(^uint(0) >> 1)
	if r := NewResponse(nil, 3, 10, maxInt); r.HasMore {
		t.Error("expected no more results past the end")
	}
}
