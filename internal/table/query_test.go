package table

import "testing"

func TestParseSortField(t *testing.T) {
	for _, tc := range []struct {
		in      string
		want    SortField
		wantErr bool
	}{
		{"title", SortField{"title", Asc}, false},
		{"title:desc", SortField{"title", Desc}, false},
		{" composer:ASC ", SortField{"composer", Asc}, false},
		{"title:sideways", SortField{}, true},
		{":desc", SortField{}, true},
	} {
		t.Run(tc.in, func(t *testing.T) {
			got, err := ParseSortField(tc.in)
			if tc.wantErr {
				if err == nil {
					t.Errorf("expected error for %q", tc.in)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tc.want {
				t.Errorf("expected %v, got %v", tc.want, got)
			}
		})
	}
}

func TestWithSort(t *testing.T) {
	fields := withSort(nil, "title", Asc)
	fields = withSort(fields, "composer", Desc)
	fields = withSort(fields, "title", Desc)

	if len(fields) != 2 {
		t.Fatalf("expected 2 fields, got %v", fields)
	}
	if fields[0].Column != "composer" || fields[1] != (SortField{"title", Desc}) {
		t.Errorf("expected title moved to the end, got %v", fields)
	}
	if got := withoutSort(fields, "composer"); len(got) != 1 || got[0].Column != "title" {
		t.Errorf("expected composer removed, got %v", got)
	}
}

func TestQueryString(t *testing.T) {
	args := DefaultConfig().Args

	t.Run("Limit And Offset Only", func(t *testing.T) {
		got := queryString(args, Query{Limit: 25, Offset: 50}, false)
		if got != "limit=25&offset=50" {
			t.Errorf("unexpected query %q", got)
		}
	})

	t.Run("Custom Names", func(t *testing.T) {
		custom := Args{Limit: "per_page", Offset: "start", Search: "q", Sort: "order"}
		got := queryString(custom, Query{Limit: 5, Search: "a b", Sort: []SortField{{"title", Asc}}}, false)
		if got != "per_page=5&start=0&q=a+b&order=title%3Aasc" {
			t.Errorf("unexpected query %q", got)
		}
	})
}

func TestRequestURL(t *testing.T) {
	args := DefaultConfig().Args
	q := Query{Limit: 10}

	if got := requestURL("http://x/api", args, q, false); got != "http://x/api?limit=10&offset=0" {
		t.Errorf("unexpected url %q", got)
	}
	if got := requestURL("http://x/api?a=1", args, q, false); got != "http://x/api?a=1&limit=10&offset=0" {
		t.Errorf("unexpected url %q", got)
	}
}

func TestParseLeadingInt(t *testing.T) {
	for _, tc := range []struct {
		in   string
		want int
		ok   bool
	}{
		{"50", 50, true},
		{" 7 ", 7, true},
		{"12abc", 12, true},
		{"-3", -3, true},
		{"+8", 8, true},
		{"abc", 0, false},
		{"-", 0, false},
		{"", 0, false},
	} {
		got, ok := parseLeadingInt(tc.in)
		if got != tc.want || ok != tc.ok {
			t.Errorf("parseLeadingInt(%q) = %d, %v; want %d, %v", tc.in, got, ok, tc.want, tc.ok)
		}
	}
}
