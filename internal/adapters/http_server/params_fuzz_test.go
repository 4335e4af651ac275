package httpserver

import (
	"net/url"
	"testing"
)

func FuzzBuildListQuery(f *testing.F) {
	f.Add("min_rating=4&sort_by=rating")
	f.Add("start_date=2024-01-01&end_date=2023-01-01")
	f.Add("limit=-1&offset=abc&source=vrbo")
	f.Add("search=%00&sort_desc=1")
	f.Fuzz(func(t *testing.T, raw string) {
		v, err := url.ParseQuery(raw)
		if err != nil {
			t.Skip()
		}
		q, errs := buildListQuery(v)
		if errs != nil {
			for _, e := range errs {
				if e.Field == "" || e.Code == "" {
					t.Fatalf("incomplete field error %+v for %q", e, raw)
				}
			}
			return
		}
		if err := q.Filter.Validate(); err != nil {
			t.Fatalf("accepted query has an invalid filter: %v (%q)", err, raw)
		}
		if q.Page.Offset < 0 || q.Page.Limit < 0 || q.Page.Limit > 500 {
			t.Fatalf("page out of range: %+v (%q)", q.Page, raw)
		}
	})
}
