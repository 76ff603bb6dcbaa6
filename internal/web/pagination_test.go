package web

import (
	"slices"
	"testing"
)

func TestPaginate(t *testing.T) {
	items := make([]int, 20)
	for i := range items {
		items[i] = i + 1
	}

	tc := []struct {
		name       string
		items      []int
		page, size int
		want       []int
		totalPages int
		prev, next bool
	}{
		{name: "first page", items: items, page: 1, size: 9, want: []int{1, 2, 3, 4, 5, 6, 7, 8, 9}, totalPages: 3, next: true},
		{name: "last partial page", items: items, page: 3, size: 9, want: []int{19, 20}, totalPages: 3, prev: true},
		{name: "past the end", items: items, page: 4, size: 9, want: []int{}, totalPages: 3, prev: true},
		{name: "exact fit", items: items[:18], page: 2, size: 9, want: items[9:18], totalPages: 2, prev: true},
		{name: "empty input", items: nil, page: 1, size: 9, want: []int{}, totalPages: 0},
		{name: "page below one", items: items, page: 0, size: 9, want: items[:9], totalPages: 3, next: true},
		{name: "huge page number", items: items, page: 1<<60 + 1, size: 9, want: []int{}, totalPages: 3, prev: true},
		{name: "size below one", items: items[:3], page: 2, size: 0, want: []int{2}, totalPages: 3, prev: true, next: true},
	}

	for _, tt := range tc {
		t.Run(tt.name, func(t *testing.T) {
			p := Paginate(tt.items, tt.page, tt.size)
			if !slices.Equal(p.Items, tt.want) {
				t.Errorf("Items = %v, want %v", p.Items, tt.want)
			}
			if p.Items == nil {
				t.Error("Items should never be nil")
			}
			if p.TotalPages != tt.totalPages {
				t.Errorf("TotalPages = %d, want %d", p.TotalPages, tt.totalPages)
			}
			if p.HasPrev() != tt.prev || p.HasNext() != tt.next {
				t.Errorf("HasPrev/HasNext = %v/%v, want %v/%v", p.HasPrev(), p.HasNext(), tt.prev, tt.next)
			}
		})
	}
}

func TestMediaID(t *testing.T) {
	tc := []struct {
		url    string
		want   string
		wantOK bool
	}{
		{url: "https://www.youtube.com/watch?v=dQw4w9WgXcQ", want: "dQw4w9WgXcQ", wantOK: true},
		{url: "https://youtu.be/abcdefghijk", want: "abcdefghijk", wantOK: true},
		{url: "https://www.youtube.com/watch?feature=share&v=A_b-C_d-E_f", want: "A_b-C_d-E_f", wantOK: true},
		{url: "https://www.youtube.com/embed/0123456789a?start=3", want: "0123456789a", wantOK: true},
		{url: "https://youtu.be/short", wantOK: false},
		{url: "", wantOK: false},
		{url: "not a url", wantOK: false},
	}

	for _, tt := range tc {
		t.Run(tt.url, func(t *testing.T) {
			got, ok := MediaID(tt.url)
			if ok != tt.wantOK || got != tt.want {
				t.Errorf("MediaID(%q) = %q, %v, want %q, %v", tt.url, got, ok, tt.want, tt.wantOK)
			}
		})
	}

	if got := Thumbnail("abcdefghijk"); got != "https://img.youtube.com/vi/abcdefghijk/0.jpg" {
		t.Errorf("Thumbnail() = %q", got)
	}
}
