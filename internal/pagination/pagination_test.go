package pagination

import "testing"

func TestPageRequestDefaults(t *testing.T) {
	tests := []struct {
		name         string
		in           PageRequest
		wantPage     int
		wantPageSize int
		wantOffset   int
	}{
		{"zero values", PageRequest{}, 1, DefaultPageSize, 0},
		{"explicit", PageRequest{Page: 3, PageSize: 10}, 3, 10, 20},
		{"clamped", PageRequest{Page: 2, PageSize: 1000}, 2, MaxPageSize, MaxPageSize},
		{"negative", PageRequest{Page: -4, PageSize: -1}, 1, DefaultPageSize, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := tt.in
			req.Defaults()
			if req.Page != tt.wantPage || req.PageSize != tt.wantPageSize {
				t.Errorf("got page %d size %d, want %d / %d", req.Page, req.PageSize, tt.wantPage, tt.wantPageSize)
			}
			if got := req.Offset(); got != tt.wantOffset {
				t.Errorf("Offset() = %d, want %d", got, tt.wantOffset)
			}
		})
	}
}

func TestNewPageResponse(t *testing.T) {
	resp := NewPageResponse[int](nil, 1, 20, 41)
	if resp.TotalPages != 3 {
		t.Errorf("expected 3 pages, got %d", resp.TotalPages)
	}
	if resp.Data == nil {
		t.Error("expected empty slice instead of nil so it encodes as []")
	}

	resp = NewPageResponse([]int{1, 2}, 1, 0, 2)
	if resp.TotalPages != 0 {
		t.Errorf("expected 0 pages for zero page size, got %d", resp.TotalPages)
	}
}
