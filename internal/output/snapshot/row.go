package snapshot

import (
	"bytes"
	"encoding/json"
	"math"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/araddon/dateparse"

	"github.com/lueurxax/aggro-radar/internal/core/domain"
)

const (
	dateLayout       = "2006-01-02"
	keywordSeparator = ", "
)

// Row is one published record. Field names are the keys the static page reads.
type Row struct {
	Rank       int    `json:"순위"`
	Title      string `json:"제목"`
	Score      Score  `json:"추천점수"`
	Keywords   string `json:"키워드"`
	Category   string `json:"카테고리"`
	Source     string `json:"출처"`
	VideoURL   string `json:"유튜브_URL"`
	NewsURL    string `json:"뉴스기사_URL"`
	UploadDate string `json:"업로드일"`
	News2URL   string `json:"뉴스기사2_URL"`
	News2Date  string `json:"뉴스기사2_날짜"`
	News3URL   string `json:"뉴스기사3_URL"`
	News3Date  string `json:"뉴스기사3_날짜"`
	Views      Views  `json:"조회수"`
}

// Score accepts numbers and numeric strings. Anything else reads as zero.
type Score float64

func (s *Score) UnmarshalJSON(data []byte) error {
	var n json.Number

	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var v any
	if err := dec.Decode(&v); err != nil {
		return err //nolint:wrapcheck
	}

	switch x := v.(type) {
	case json.Number:
		n = x
	case string:
		n = json.Number(strings.TrimSpace(x))
	default:
		*s = 0
		return nil
	}

	f, err := n.Float64()
	if err != nil || math.IsNaN(f) {
		*s = 0
		return nil
	}

	*s = Score(f)

	return nil
}

// Views is an optional view count, written as an empty string when unknown.
type Views struct {
	Value *int64
}

func (v Views) MarshalJSON() ([]byte, error) {
	if v.Value == nil {
		return []byte(`""`), nil
	}

	return []byte(strconv.FormatInt(*v.Value, 10)), nil
}

func (v *Views) UnmarshalJSON(data []byte) error {
	var s Score
	if err := s.UnmarshalJSON(data); err != nil {
		return err
	}

	raw := strings.Trim(strings.TrimSpace(string(data)), `"`)
	if raw == "" || raw == "null" {
		v.Value = nil
		return nil
	}

	if _, err := strconv.ParseFloat(raw, 64); err != nil {
		v.Value = nil
		return nil
	}

	n := int64(s)
	v.Value = &n

	return nil
}

// FromRecord converts a record to its published shape. Rank is left at zero.
func FromRecord(r domain.EnrichedRecord) Row {
	row := Row{
		Title:      r.Title,
		Score:      Score(r.Score),
		Keywords:   r.KeywordString(),
		Category:   r.Category,
		Source:     r.Source.Label(),
		UploadDate: NormalizeDate(r.UploadDate),
		News2URL:   r.SecondaryAt(0).URL,
		News2Date:  NormalizeDate(r.SecondaryAt(0).Date),
		News3URL:   r.SecondaryAt(1).URL,
		News3Date:  NormalizeDate(r.SecondaryAt(1).Date),
		Views:      Views{Value: r.Views},
	}

	if r.Source == domain.SourceVideo {
		row.VideoURL = r.URL
	} else {
		row.NewsURL = r.URL
	}

	return row
}

// Record converts a persisted row back to a record.
func (row Row) Record() domain.EnrichedRecord {
	src, ok := domain.ParseSource(row.Source)
	if !ok {
		src = domain.Source(row.Source)
	}

	url := row.NewsURL
	if url == "" {
		url = row.VideoURL
	}

	rec := domain.EnrichedRecord{ScoredRecord: domain.ScoredRecord{
		RawRecord: domain.RawRecord{
			Title:      row.Title,
			URL:        url,
			Source:     src,
			UploadDate: row.UploadDate,
			Views:      row.Views.Value,
			Category:   row.Category,
		},
		Score:    float64(row.Score),
		Keywords: splitKeywords(row.Keywords),
	}}

	for _, ref := range []domain.SecondaryRef{{URL: row.News2URL, Date: row.News2Date}, {URL: row.News3URL, Date: row.News3Date}} {
		if ref.URL != "" {
			rec.Secondary = append(rec.Secondary, ref)
		}
	}

	return rec
}

func splitKeywords(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}

	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))

	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}

	return out
}

// Rows sorts records by score, highest first and stable on ties, keeps at most
// limit of them (all when limit <= 0) and assigns 1-based ranks.
func Rows(records []domain.EnrichedRecord, limit int) []Row {
	sorted := append([]domain.EnrichedRecord(nil), records...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Score > sorted[j].Score
	})

	if limit > 0 && len(sorted) > limit {
		sorted = sorted[:limit]
	}

	rows := make([]Row, len(sorted))
	for i, r := range sorted {
		rows[i] = FromRecord(r)
		rows[i].Rank = i + 1
	}

	return rows
}

// NormalizeDate renders any recognizable date as YYYY-MM-DD and returns an
// empty string for values that cannot be parsed.
func NormalizeDate(value string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return ""
	}

	if _, err := time.Parse(dateLayout, value); err == nil {
		return value
	}

	t, err := dateparse.ParseAny(value)
	if err != nil {
		return ""
	}

	return t.Format(dateLayout)
}
