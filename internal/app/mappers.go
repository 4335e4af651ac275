package app

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"guest_reviews/internal/domain"
)

/********** alias registries (one per upstream format) **********/

type aliasRegistry map[string][]string

var hostawayAliases = aliasRegistry{
	"id":            {"id", "reviewId", "review_id"},
	"property_id":   {"listingId", "listingMapId", "listing_id", "listing.id"},
	"property_name": {"listingName", "listing_name", "listing.name"},
	"guest":         {"guestName", "reviewerName", "guest.name"},
	"guest_first":   {"guestFirstName", "guest.firstName", "first_name"},
	"guest_last":    {"guestLastName", "guest.lastName", "last_name"},
	"rating":        {"rating", "overallRating", "rating.value"},
	"categories":    {"reviewCategory", "categories"},
	"comment":       {"review", "publicReview", "comment", "text"},
	"date":          {"createdAt", "submittedAt", "date", "departureDate"},
	"channel":       {"channelName", "channel", "source"},
}

var googleAliases = aliasRegistry{
	"id":            {"review_id", "id", "name"},
	"property_id":   {"place_id", "placeId"},
	"property_name": {"place_name", "placeName"},
	"guest":         {"author_name", "authorAttribution.displayName"},
	"rating":        {"rating"},
	"comment":       {"text", "text.text", "originalText.text"},
	"date":          {"time", "publishTime"},
	"channel":       {"source"},
}

const (
	defaultGuestName    = "Anonymous"
	defaultPropertyName = "Unknown Property"
)

// channelRules is matched in order; the first substring hit wins.
var channelRules = []domain.Source{
	domain.SourceAirbnb,
	domain.SourceBooking,
	domain.SourceGoogle,
	domain.SourceHostaway,
	domain.SourceManual,
}

var reviewNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("guest-reviews/review"))

/********** tiny helpers **********/

// lookupAny: safe nested lookup with dot paths on maps.
func lookupAny(m map[string]any, path string) any {
	cur := any(m)
	for _, part := range strings.Split(path, ".") {
		obj, ok := cur.(map[string]any)
		if !ok {
			return nil
		}
		v, ok := obj[part]
		if !ok {
			return nil
		}
		cur = v
	}
	return cur
}

// textOf renders strings and numbers as text; anything else is "".
func textOf(v any) string {
	switch t := v.(type) {
	case string:
		return strings.TrimSpace(t)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case json.Number:
		return t.String()
	case int:
		return strconv.Itoa(t)
	case int64:
		return strconv.FormatInt(t, 10)
	}
	return ""
}

// firstAlias returns the first non-nil value for a named alias set.
func firstAlias(m map[string]any, aliases aliasRegistry, key string) (any, bool) {
	for _, p := range aliases[key] {
		if v := lookupAny(m, p); v != nil {
			return v, true
		}
	}
	return nil, false
}

// firstTextAlias: first non-empty text for a named alias set.
func firstTextAlias(m map[string]any, aliases aliasRegistry, key string) string {
	for _, p := range aliases[key] {
		if s := textOf(lookupAny(m, p)); s != "" {
			return s
		}
	}
	return ""
}

func joinNonEmpty(parts ...string) string {
	var out []string
	for _, p := range parts {
		if t := strings.TrimSpace(p); t != "" {
			out = append(out, t)
		}
	}
	return strings.Join(out, " ")
}

// floatOf: number from float64/int/json.Number/string like "8,0".
func floatOf(v any) (float64, bool) {
	switch t := v.(type) {
	case float64:
		return t, true
	case int:
		return float64(t), true
	case int64:
		return float64(t), true
	case json.Number:
		f, err := t.Float64()
		return f, err == nil
	case string:
		s := strings.TrimSpace(strings.ReplaceAll(t, ",", "."))
		if s == "" {
			return 0, false
		}
		f, err := strconv.ParseFloat(s, 64)
		return f, err == nil
	}
	return 0, false
}

// getFloatFlexible: first parseable number over several paths.
func getFloatFlexible(m map[string]any, paths ...string) *float64 {
	for _, k := range paths {
		if f, ok := floatOf(lookupAny(m, k)); ok {
			return &f
		}
	}
	return nil
}

// categoryAverage averages [{category, rating}] sub-scores, skipping unrated entries.
func categoryAverage(m map[string]any, paths ...string) *float64 {
	for _, k := range paths {
		raw, ok := lookupAny(m, k).([]any)
		if !ok {
			continue
		}
		var sum float64
		var n int
		for _, it := range raw {
			obj, ok := it.(map[string]any)
			if !ok {
				continue
			}
			if f, ok := floatOf(obj["rating"]); ok && f > 0 {
				sum += f
				n++
			}
		}
		if n > 0 {
			avg := sum / float64(n)
			return &avg
		}
	}
	return nil
}

func roundOne(v float64) float64 {
	return math.Round(v*10) / 10
}

// scaleRating maps a positive upstream score onto [1, 5].
// Scores above 5 are read as a 10-point scale.
func scaleRating(v float64) float64 {
	if v > domain.MaxRating {
		v /= 2
	}
	v = math.Max(domain.MinRating, math.Min(domain.MaxRating, v))
	return roundOne(v)
}

var dateLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// parseDate accepts ISO-8601 (a trailing "Z" is read as +00:00), Hostaway's
// "YYYY-MM-DD hh:mm:ss", date-only strings and unix seconds.
func parseDate(v any) (time.Time, bool) {
	switch t := v.(type) {
	case string:
		s := strings.TrimSpace(t)
		if s == "" {
			return time.Time{}, false
		}
		if strings.HasSuffix(s, "Z") {
			s = strings.TrimSuffix(s, "Z") + "+00:00"
		}
		for _, layout := range dateLayouts {
			if d, err := time.Parse(layout, s); err == nil {
				return d.UTC(), true
			}
		}
	case float64, int, int64, json.Number:
		if f, ok := floatOf(t); ok && f > 0 {
			return time.Unix(int64(f), 0).UTC(), true
		}
	}
	return time.Time{}, false
}

// MapChannel resolves a free-text channel name to a Source: lower-case, keep only
// ASCII letters and digits, then test substrings in channelRules order.
func MapChannel(raw string) domain.Source {
	var b strings.Builder
	for _, r := range strings.ToLower(raw) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	key := b.String()
	for _, src := range channelRules {
		if strings.Contains(key, string(src)) {
			return src
		}
	}
	return domain.SourceUnknown
}

/********** normalizer **********/

// Normalizer maps one upstream raw review format onto domain.Review.
//
// Normalization never fails: malformed fields fall back to defaults. In particular a
// missing or unparsable date is replaced by the normalization time, which is lossy;
// callers that need the upstream date must keep the raw record.
type Normalizer struct {
	native  domain.Source
	aliases aliasRegistry
	now     func() time.Time
}

func NewHostawayNormalizer() *Normalizer {
	return &Normalizer{native: domain.SourceHostaway, aliases: hostawayAliases, now: time.Now}
}

func NewGoogleNormalizer() *Normalizer {
	return &Normalizer{native: domain.SourceGoogle, aliases: googleAliases, now: time.Now}
}

// WithClock returns a copy using now as the normalization time source.
func (n *Normalizer) WithClock(now func() time.Time) *Normalizer {
	cp := *n
	cp.now = now
	return &cp
}

func (n *Normalizer) Normalize(raw map[string]any) domain.Review {
	now := n.now().UTC()
	rv := domain.Review{
		PropertyID:   firstTextAlias(raw, n.aliases, "property_id"),
		PropertyName: firstTextAlias(raw, n.aliases, "property_name"),
		Comment:      firstTextAlias(raw, n.aliases, "comment"),
		Status:       domain.StatusPending,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if rv.PropertyName == "" {
		rv.PropertyName = defaultPropertyName
	}

	// Guest → prefer single field; fallback to first + last.
	rv.GuestName = firstTextAlias(raw, n.aliases, "guest")
	if rv.GuestName == "" {
		rv.GuestName = joinNonEmpty(
			firstTextAlias(raw, n.aliases, "guest_first"),
			firstTextAlias(raw, n.aliases, "guest_last"),
		)
	}
	if rv.GuestName == "" {
		rv.GuestName = defaultGuestName
	}

	// Rating → overall score, else mean of category scores.
	score := getFloatFlexible(raw, n.aliases["rating"]...)
	if score == nil || *score <= 0 {
		score = categoryAverage(raw, n.aliases["categories"]...)
	}
	if score != nil && *score > 0 && !math.IsInf(*score, 0) {
		rv.Rating = scaleRating(*score)
	} else {
		rv.Ratingless = true
	}

	rawDate, _ := firstAlias(raw, n.aliases, "date")
	if d, ok := parseDate(rawDate); ok {
		rv.Date = d
	} else {
		rv.Date = now
		log.Debug().Str("context", "normalize").Interface("date", rawDate).Msg("unparsable review date, using normalization time")
	}

	if ch, ok := firstAlias(raw, n.aliases, "channel"); ok {
		rv.Source = MapChannel(textOf(ch))
	} else {
		rv.Source = n.native
	}

	// ID → prefer upstream; else synthesize a stable one from the record content.
	rv.ID = firstTextAlias(raw, n.aliases, "id")
	if rv.ID == "" {
		sig := strings.Join([]string{
			rv.PropertyID,
			rv.GuestName,
			rv.Comment,
			textOf(rawDate),
			textOf(lookupAny(raw, n.aliases["rating"][0])),
		}, "|")
		rv.ID = uuid.NewSHA1(reviewNamespace, []byte(sig)).String()
	}
	return rv
}

// NormalizeBatch returns exactly one review per input, in input order. Repeated ids
// within the batch get a positional suffix so ids stay unique.
func (n *Normalizer) NormalizeBatch(raws []map[string]any) []domain.Review {
	out := make([]domain.Review, 0, len(raws))
	// seen counts emitted ids; suffixed ids are recorded too so a later
	// upstream "x-2" cannot collide with a generated one
	seen := make(map[string]int, len(raws))
	for _, r := range raws {
		rv := n.Normalize(r)
		if c := seen[rv.ID]; c > 0 {
			base := rv.ID
			for ; seen[rv.ID] > 0; c++ {
				rv.ID = fmt.Sprintf("%s-%d", base, c+1)
			}
			seen[base] = c
		}
		seen[rv.ID]++
		out = append(out, rv)
	}
	return out
}

// NormalizeBatchFor normalizes records that belong to a known property, filling
// property fields the upstream payload leaves out.
func (n *Normalizer) NormalizeBatchFor(propertyID, propertyName string, raws []map[string]any) []domain.Review {
	filled := make([]map[string]any, 0, len(raws))
	for _, r := range raws {
		cp := make(map[string]any, len(r)+2)
		for k, v := range r {
			cp[k] = v
		}
		if textOf(firstOrNil(cp, n.aliases, "property_id")) == "" {
			cp[n.aliases["property_id"][0]] = propertyID
		}
		if propertyName != "" && textOf(firstOrNil(cp, n.aliases, "property_name")) == "" {
			cp[n.aliases["property_name"][0]] = propertyName
		}
		filled = append(filled, cp)
	}
	return n.NormalizeBatch(filled)
}

func firstOrNil(m map[string]any, aliases aliasRegistry, key string) any {
	v, _ := firstAlias(m, aliases, key)
	return v
}

/********** listings **********/

var listingAliases = aliasRegistry{
	"id":      {"id", "listingId"},
	"name":    {"name", "externalListingName", "internalListingName"},
	"address": {"address", "street"},
	"city":    {"city"},
	"image":   {"thumbnailUrl", "image_url"},
}

// PropertyFromListing maps a raw Hostaway listing onto the property catalogue shape.
func PropertyFromListing(raw map[string]any) domain.Property {
	p := domain.Property{
		ID:       firstTextAlias(raw, listingAliases, "id"),
		Name:     firstTextAlias(raw, listingAliases, "name"),
		Address:  firstTextAlias(raw, listingAliases, "address"),
		City:     firstTextAlias(raw, listingAliases, "city"),
		ImageURL: firstTextAlias(raw, listingAliases, "image"),
	}
	if p.ImageURL == "" {
		if imgs, ok := raw["listingImages"].([]any); ok && len(imgs) > 0 {
			if first, ok := imgs[0].(map[string]any); ok {
				p.ImageURL = textOf(first["url"])
			}
		}
	}
	if p.Name == "" {
		p.Name = defaultPropertyName
	}
	return p
}
