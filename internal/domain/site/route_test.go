package site

import (
	"inkpress/internal/domain/content"
	"testing"
	"time"
)

func TestRoute_String(t *testing.T) {
	r := Route{Kind: RouteTag, Lang: "en", Key: "go", Page: 2, OutPath: "tags/go/page/2/index.html"}
	want := "tag lang=en key=go page=2 out=tags/go/page/2/index.html"
	if got := r.String(); got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
	if got := (Route{Kind: RouteIndex}).String(); got != "index" {
		t.Errorf("expected %q, got %q", "index", got)
	}
}

func TestPostPath(t *testing.T) {
	m := content.ArticleMeta{Slug: "hello", Date: time.Date(2024, 3, 7, 23, 0, 0, 0, time.UTC)}
	if got := PostPath(m); got != "/post/2024/03/07/hello/" {
		t.Errorf("expected %q, got %q", "/post/2024/03/07/hello/", got)
	}
}

func TestSegment(t *testing.T) {
	tests := map[string]string{
		"Dev Notes": "dev-notes",
		"go":        "go",
		"  ":        "untitled",
		"!!!":       "untitled",
	}
	for in, want := range tests {
		if got := Segment(in); got != want {
			t.Errorf("Segment(%q): expected %q, got %q", in, want, got)
		}
	}
}
