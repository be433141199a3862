package paging

import (
	"net/http/httptest"
	"testing"
)

func TestParseStart(t *testing.T) {
	tests := []struct {
		url  string
		want int
	}{
		{"/admin/users", 1},
		{"/admin/users?start=1", 1},
		{"/admin/users?start=26", 26},
		{"/admin/users?start=0", 1},
		{"/admin/users?start=-5", 1},
		{"/admin/users?start=abc", 1},
	}

	for _, tt := range tests {
		r := httptest.NewRequest("GET", tt.url, nil)
		if got := ParseStart(r); got != tt.want {
			t.Errorf("ParseStart(%q) = %d, want %d", tt.url, got, tt.want)
		}
	}
}

func TestWindow(t *testing.T) {
	skip, limit := Window(1)
	if skip != 0 || limit != PageSize+1 {
		t.Errorf("Window(1) = %d, %d", skip, limit)
	}
	skip, _ = Window(26)
	if skip != 25 {
		t.Errorf("Window(26) skip = %d, want 25", skip)
	}
}

func TestTrim_FirstPageFull(t *testing.T) {
	rows := make([]int, PageSize+1)
	p := Trim(&rows, 1)

	if len(rows) != PageSize {
		t.Errorf("len = %d, want %d", len(rows), PageSize)
	}
	if !p.HasNext || p.HasPrev {
		t.Errorf("p = %+v", p)
	}
	if p.Start != 1 || p.End != PageSize || p.NextStart != PageSize+1 {
		t.Errorf("p = %+v", p)
	}
}

func TestTrim_MiddlePage(t *testing.T) {
	rows := make([]int, PageSize+1)
	p := Trim(&rows, PageSize+1)

	if !p.HasNext || !p.HasPrev {
		t.Errorf("p = %+v", p)
	}
	if p.PrevStart != 1 || p.NextStart != 2*PageSize+1 {
		t.Errorf("p = %+v", p)
	}
}

func TestTrim_ShortLastPage(t *testing.T) {
	rows := make([]int, 5)
	p := Trim(&rows, 2*PageSize+1)

	if len(rows) != 5 {
		t.Errorf("len = %d, want 5", len(rows))
	}
	if p.HasNext || !p.HasPrev {
		t.Errorf("p = %+v", p)
	}
	if p.Start != 2*PageSize+1 || p.End != 2*PageSize+5 || p.PrevStart != PageSize+1 {
		t.Errorf("p = %+v", p)
	}
}

func TestTrim_Empty(t *testing.T) {
	var rows []int
	p := Trim(&rows, 1)

	if p.Start != 0 || p.End != 0 || p.HasPrev || p.HasNext {
		t.Errorf("p = %+v", p)
	}
}
