package keywords

import (
	"reflect"
	"sort"
	"testing"
)

func sorted(words []string) []string {
	out := append([]string(nil), words...)
	sort.Strings(out)
	return out
}

func TestExtract(t *testing.T) {
	tests := []struct {
		name string
		path string
		want []string
	}{
		{
			name: "dated blog slug",
			path: "/blog/2024/my-great-post.html",
			want: []string{"great"},
		},
		{
			name: "product page",
			path: "/products/widget-pro-installation-guide",
			want: []string{"guide", "installation", "products", "pro", "widget"},
		},
		{
			name: "underscores and php extension",
			path: "contact_us_form.php",
			want: []string{"contact", "form"},
		},
		{
			name: "stop words and short tokens dropped",
			path: "/the/and/or/ab/xy",
			want: nil,
		},
		{
			name: "pure numbers dropped",
			path: "/orders/12345/item-99",
			want: []string{"item", "orders"},
		},
		{
			name: "year outside heuristic range kept as numeric and dropped anyway",
			path: "/archive/1999/retro-computing",
			want: []string{"archive", "computing", "retro"},
		},
		{
			name: "duplicates removed",
			path: "/pricing/pricing-table/pricing",
			want: []string{"pricing", "table"},
		},
		{
			name: "empty path",
			path: "",
			want: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Extract(tt.path)
			if !reflect.DeepEqual(sorted(got), sorted(tt.want)) {
				t.Errorf("Extract(%q) = %v, want %v", tt.path, got, tt.want)
			}
		})
	}
}

func TestExtractDeterministic(t *testing.T) {
	path := "/blog/2025/choosing-the-right-espresso-grinder.html"
	first := Extract(path)
	for i := 0; i < 50; i++ {
		if got := Extract(path); !reflect.DeepEqual(got, first) {
			t.Fatalf("run %d: Extract(%q) = %v, want %v", i, path, got, first)
		}
	}
}

func TestExtractExcludesYearStopWordsAndExtension(t *testing.T) {
	got := Extract("/blog/2024/my-great-post.html")
	for _, banned := range []string{"2024", "blog", "html", "post"} {
		for _, w := range got {
			if w == banned {
				t.Errorf("Extract included %q, want it excluded", banned)
			}
		}
	}
	found := false
	for _, w := range got {
		if w == "great" {
			found = true
		}
	}
	if !found {
		t.Errorf("Extract = %v, want it to include %q", got, "great")
	}
}

func TestIsStopWord(t *testing.T) {
	if !IsStopWord("blog") {
		t.Error(`IsStopWord("blog") = false, want true`)
	}
	if IsStopWord("espresso") {
		t.Error(`IsStopWord("espresso") = true, want false`)
	}
}
