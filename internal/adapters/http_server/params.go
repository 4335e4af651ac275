package httpserver

import (
	"errors"
	"fmt"
	"net/url"
	"reflect"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"guest_reviews/internal/app"
	"guest_reviews/internal/domain"
)

var validate = newValidator()

// newValidator reports fields by their query or JSON name.
func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		for _, tag := range []string{"query", "json"} {
			name := strings.SplitN(f.Tag.Get(tag), ",", 2)[0]
			if name == "-" {
				return ""
			}
			if name != "" {
				return name
			}
		}
		return f.Name
	})
	return v
}

type fieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code"`
}

func toFieldErrors(err error) []fieldError {
	var ves validator.ValidationErrors
	if !errors.As(err, &ves) {
		return []fieldError{{Field: "", Message: err.Error(), Code: "invalid"}}
	}
	out := make([]fieldError, 0, len(ves))
	for _, fe := range ves {
		var msg string
		switch fe.Tag() {
		case "required":
			msg = "is required"
		case "oneof":
			msg = "must be one of: " + strings.ReplaceAll(fe.Param(), " ", ", ")
		case "gte", "min":
			msg = "must be at least " + fe.Param()
		case "lte":
			msg = "must be at most " + fe.Param()
		case "max":
			msg = "must be at most " + fe.Param() + " characters"
		default:
			msg = "is invalid"
		}
		out = append(out, fieldError{Field: fe.Field(), Message: msg, Code: fe.Tag()})
	}
	return out
}

// listParams is the typed form of the review list query string.
type listParams struct {
	PropertyID *string    `query:"property_id"`
	MinRating  *float64   `query:"min_rating" validate:"omitempty,gte=1,lte=5"`
	MaxRating  *float64   `query:"max_rating" validate:"omitempty,gte=1,lte=5"`
	Source     *string    `query:"source" validate:"omitempty,oneof=hostaway google airbnb booking manual unknown"`
	Status     *string    `query:"status" validate:"omitempty,oneof=pending approved rejected"`
	Search     *string    `query:"search"`
	StartDate  *time.Time `query:"start_date"`
	EndDate    *time.Time `query:"end_date"`
	SortBy     string     `query:"sort_by" validate:"omitempty,oneof=date rating property"`
	SortDesc   bool       `query:"sort_desc"`
	Offset     int        `query:"offset" validate:"gte=0"`
	Limit      int        `query:"limit" validate:"gte=0,lte=500"`
}

// buildListQuery parses and validates the list query string. All problems are
// reported together.
func buildListQuery(q url.Values) (app.ListQuery, []fieldError) {
	p := listParams{SortBy: string(app.SortByDate), SortDesc: true}
	var errs []fieldError
	bad := func(field, msg string) { errs = append(errs, fieldError{Field: field, Message: msg, Code: "invalid"}) }

	p.PropertyID = optString(q, "property_id")
	p.Search = optString(q, "search")
	if v := optString(q, "source"); v != nil {
		s := strings.ToLower(*v)
		p.Source = &s
	}
	if v := optString(q, "status"); v != nil {
		s := strings.ToLower(*v)
		p.Status = &s
	}
	for field, dst := range map[string]**float64{"min_rating": &p.MinRating, "max_rating": &p.MaxRating} {
		if v := optString(q, field); v != nil {
			f, err := strconv.ParseFloat(*v, 64)
			if err != nil {
				bad(field, "must be a number")
				continue
			}
			*dst = &f
		}
	}
	if v := optString(q, "start_date"); v != nil {
		if d, err := parseQueryDate(*v, false); err != nil {
			bad("start_date", "must be YYYY-MM-DD or RFC 3339")
		} else {
			p.StartDate = &d
		}
	}
	if v := optString(q, "end_date"); v != nil {
		if d, err := parseQueryDate(*v, true); err != nil {
			bad("end_date", "must be YYYY-MM-DD or RFC 3339")
		} else {
			p.EndDate = &d
		}
	}
	if v := optString(q, "sort_by"); v != nil {
		p.SortBy = strings.ToLower(*v)
	}
	if v := optString(q, "sort_desc"); v != nil {
		b, err := strconv.ParseBool(*v)
		if err != nil {
			bad("sort_desc", "must be true or false")
		}
		p.SortDesc = b
	}
	for field, dst := range map[string]*int{"offset": &p.Offset, "limit": &p.Limit} {
		if v := optString(q, field); v != nil {
			n, err := strconv.Atoi(*v)
			if err != nil {
				bad(field, "must be an integer")
				continue
			}
			*dst = n
		}
	}

	if err := validate.Struct(p); err != nil {
		errs = append(errs, toFieldErrors(err)...)
	}
	if len(errs) > 0 {
		sortFieldErrors(errs)
		return app.ListQuery{}, errs
	}

	sortField, err := app.ParseSortField(p.SortBy)
	if err != nil {
		return app.ListQuery{}, []fieldError{{Field: "sort_by", Message: err.Error(), Code: "oneof"}}
	}
	f := app.ReviewFilter{
		PropertyID: p.PropertyID,
		MinRating:  p.MinRating,
		MaxRating:  p.MaxRating,
		Search:     p.Search,
		StartDate:  p.StartDate,
		EndDate:    p.EndDate,
	}
	if p.Source != nil {
		s := domain.Source(*p.Source)
		f.Source = &s
	}
	if p.Status != nil {
		s := domain.Status(*p.Status)
		f.Status = &s
	}
	if err := f.Validate(); err != nil {
		field := "min_rating"
		if p.StartDate != nil && p.EndDate != nil && p.StartDate.After(*p.EndDate) {
			field = "start_date"
		}
		return app.ListQuery{}, []fieldError{{Field: field, Message: strings.TrimPrefix(err.Error(), domain.ErrValidation.Error()+": "), Code: "range"}}
	}

	return app.ListQuery{
		Filter: f,
		Sort:   sortField,
		Desc:   p.SortDesc,
		Page:   domain.PageQuery{Offset: p.Offset, Limit: p.Limit},
	}, nil
}

type hostawayParams struct {
	PropertyID *string `query:"property_id"`
	DaysBack   int     `query:"days_back" validate:"gte=1,lte=365"`
	Limit      int     `query:"limit" validate:"gte=1,lte=500"`
}

func buildHostawayQuery(q url.Values, now time.Time) (domain.ReviewsQuery, []fieldError) {
	p := hostawayParams{DaysBack: 30, Limit: 100, PropertyID: optString(q, "property_id")}
	var errs []fieldError
	for field, dst := range map[string]*int{"days_back": &p.DaysBack, "limit": &p.Limit} {
		if v := optString(q, field); v != nil {
			n, err := strconv.Atoi(*v)
			if err != nil {
				errs = append(errs, fieldError{Field: field, Message: "must be an integer", Code: "invalid"})
				continue
			}
			*dst = n
		}
	}
	if err := validate.Struct(p); err != nil {
		errs = append(errs, toFieldErrors(err)...)
	}
	if len(errs) > 0 {
		sortFieldErrors(errs)
		return domain.ReviewsQuery{}, errs
	}
	end := now.UTC()
	start := end.AddDate(0, 0, -p.DaysBack)
	return domain.ReviewsQuery{ListingID: p.PropertyID, StartDate: &start, EndDate: &end, Limit: p.Limit}, nil
}

func optString(q url.Values, key string) *string {
	v := strings.TrimSpace(q.Get(key))
	if v == "" {
		return nil
	}
	return &v
}

// parseQueryDate accepts RFC 3339 or a bare date. A bare end date covers the whole day.
func parseQueryDate(s string, endOfDay bool) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t.UTC(), nil
	}
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q", s)
	}
	if endOfDay {
		t = t.Add(24*time.Hour - time.Nanosecond)
	}
	return t, nil
}

// map iteration above is unordered; keep responses deterministic
func sortFieldErrors(errs []fieldError) {
	slices.SortStableFunc(errs, func(a, b fieldError) int { return strings.Compare(a.Field, b.Field) })
}
