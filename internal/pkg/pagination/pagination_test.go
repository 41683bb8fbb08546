package pagination

import "testing"

func TestNewComputesOffset(t *testing.T) {
	tests := []struct {
		name       string
		page       int
		limit      int
		wantPage   int
		wantLimit  int
		wantOffset int
	}{
		{"first page", 1, 10, 1, 10, 0},
		{"second page", 2, 10, 2, 10, 10},
		{"fifth page limit 25", 5, 25, 5, 25, 100},
		{"zero page clamps to 1", 0, 10, 1, 10, 0},
		{"negative page clamps to 1", -3, 10, 1, 10, 0},
		{"zero limit uses default", 2, 0, 2, DefaultLimit, DefaultLimit},
		{"limit above max clamps", 1, 500, 1, MaxLimit, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := New(tt.page, tt.limit)
			if p.Page != tt.wantPage || p.Limit != tt.wantLimit || p.Offset != tt.wantOffset {
				t.Fatalf("New(%d, %d) = {Page:%d Limit:%d Offset:%d}, want {%d %d %d}",
					tt.page, tt.limit, p.Page, p.Limit, p.Offset, tt.wantPage, tt.wantLimit, tt.wantOffset)
			}
		})
	}
}

func TestRangeIsClosed(t *testing.T) {
	// Page 2 with limit 10 covers rows 10 through 19 inclusive
	p := New(2, 10)
	from, to := p.Range()
	if from != 10 || to != 19 {
		t.Fatalf("Range() = [%d, %d], want [10, 19]", from, to)
	}
}

func TestTotalPages(t *testing.T) {
	tests := []struct {
		total int64
		limit int
		want  int
	}{
		{25, 10, 3},
		{30, 10, 3},
		{31, 10, 4},
		{0, 10, 0},
		{1, 10, 1},
		{9, 3, 3},
		{10, 0, 0},
	}

	for _, tt := range tests {
		if got := TotalPages(tt.total, tt.limit); got != tt.want {
			t.Errorf("TotalPages(%d, %d) = %d, want %d", tt.total, tt.limit, got, tt.want)
		}
	}
}

func TestGoToPageOutOfRangeIsNoOp(t *testing.T) {
	tests := []struct {
		name       string
		current    int
		target     int
		totalPages int
		want       int
	}{
		{"in range forward", 1, 3, 3, 3},
		{"in range backward", 3, 1, 3, 1},
		{"past the end", 2, 4, 3, 2},
		{"below one", 2, 0, 3, 2},
		{"negative", 2, -1, 3, 2},
		{"no pages at all", 1, 1, 0, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := GoToPage(tt.current, tt.target, tt.totalPages); got != tt.want {
				t.Fatalf("GoToPage(%d, %d, %d) = %d, want %d",
					tt.current, tt.target, tt.totalPages, got, tt.want)
			}
		})
	}
}

func TestGetMeta(t *testing.T) {
	// 25 rows at 10 per page: page 2 has both neighbours
	meta := GetMeta(New(2, 10), 25)
	if meta.TotalPages != 3 {
		t.Fatalf("TotalPages = %d, want 3", meta.TotalPages)
	}
	if !meta.HasNext || !meta.HasPrev {
		t.Fatalf("HasNext=%v HasPrev=%v, want both true", meta.HasNext, meta.HasPrev)
	}

	last := GetMeta(New(3, 10), 25)
	if last.HasNext {
		t.Fatal("last page should not have next")
	}
}
