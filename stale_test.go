package emptyletters

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestParseCutoff(t *testing.T) {
	var tests = []struct {
		s    string
		want time.Time
		err  error
	}{
		{"", time.Time{}, nil},
		{"2018-04-01", time.Date(2018, 4, 1, 0, 0, 0, 0, time.Local), nil},
		{"2018-04-01 13:14", time.Date(2018, 4, 1, 0, 0, 0, 0, time.Local), nil},
		{"not a date", time.Time{}, ErrInvalidCutoff},
		{time.Now().AddDate(1, 0, 0).Format("2006-01-02"), time.Time{}, ErrInvalidCutoff},
	}
	for _, test := range tests {
		got, err := ParseCutoff(test.s)
		if err != test.err {
			t.Errorf("ParseCutoff(%q) got %v, want %v", test.s, err, test.err)
		}
		if !got.Equal(test.want) {
			t.Errorf("ParseCutoff(%q) got %v, want %v", test.s, got, test.want)
		}
	}
}

func TestIsStale(t *testing.T) {
	pth := filepath.Join(t.TempDir(), "1.xml")
	if err := os.WriteFile(pth, nil, 0644); err != nil {
		t.Fatal(err)
	}
	written := time.Date(2018, 4, 1, 12, 0, 0, 0, time.UTC)
	if err := os.Chtimes(pth, written, written); err != nil {
		t.Fatal(err)
	}
	fi, err := os.Stat(pth)
	if err != nil {
		t.Fatal(err)
	}
	var tests = []struct {
		cutoff time.Time
		stale  bool
	}{
		{time.Time{}, false},
		{written.Add(-time.Hour), false},
		{written.Add(time.Hour), true},
	}
	for _, test := range tests {
		if got := isStale(fi, test.cutoff); got != test.stale {
			t.Errorf("isStale(%v) got %v, want %v", test.cutoff, got, test.stale)
		}
	}
}
