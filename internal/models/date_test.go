package models

import (
	"encoding/json"
	"testing"
	"time"
)

func TestDate_JSON(t *testing.T) {
	d := NewDate(2024, time.February, 29)

	b, err := json.Marshal(d)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(b) != `"2024-02-29"` {
		t.Errorf("expected \"2024-02-29\", got %s", b)
	}

	var back Date
	if err := json.Unmarshal(b, &back); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if back.String() != d.String() {
		t.Errorf("expected %s, got %s", d, back)
	}

	for _, bad := range []string{`"2024-13-01"`, `"01/02/2024"`, `20240101`} {
		if err := json.Unmarshal([]byte(bad), &back); err == nil {
			t.Errorf("expected error for %s", bad)
		}
	}
}

func TestDate_Scan(t *testing.T) {
	want := NewDate(2024, time.January, 31)
	cases := []struct {
		name string
		src  any
	}{
		{"time with clock", time.Date(2024, time.January, 31, 15, 4, 5, 0, time.UTC)},
		{"plain string", "2024-01-31"},
		{"timestamp string", "2024-01-31T00:00:00Z"},
		{"bytes", []byte("2024-01-31")},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var d Date
			if err := d.Scan(tc.src); err != nil {
				t.Fatalf("scan: %v", err)
			}
			if d.String() != want.String() {
				t.Errorf("expected %s, got %s", want, d)
			}
		})
	}

	var d Date
	if err := d.Scan(42); err == nil {
		t.Error("expected error scanning an int")
	}
}

func TestDate_Before(t *testing.T) {
	start := NewDate(2024, time.January, 1)
	end := NewDate(2024, time.January, 31)
	if !start.Before(end) || end.Before(start) || start.Before(start) {
		t.Error("unexpected ordering")
	}
}
