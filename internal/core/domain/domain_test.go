package domain

import (
	"errors"
	"testing"
)

func TestParseSource(t *testing.T) {
	tests := []struct {
		in     string
		want   Source
		wantOK bool
	}{
		{in: "youtube", want: SourceVideo, wantOK: true},
		{in: " 구글뉴스 ", want: SourceGoogleNews, wantOK: true},
		{in: "네이버뉴스", want: SourceNaver, wantOK: true},
		{in: "daum", wantOK: false},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := ParseSource(tt.in)
			if ok != tt.wantOK || got != tt.want {
				t.Errorf("ParseSource(%q) = %q, %v; want %q, %v", tt.in, got, ok, tt.want, tt.wantOK)
			}
		})
	}
}

func TestSourceLabelAndNews(t *testing.T) {
	if SourceVideo.IsNews() {
		t.Error("video records must not be news")
	}

	if !SourceNaver.IsNews() || !SourceGoogleNews.IsNews() {
		t.Error("naver and google records are news")
	}

	if got := Source("other").Label(); got != "other" {
		t.Errorf("unknown source label = %q", got)
	}
}

func TestDedupKey(t *testing.T) {
	if got := (RawRecord{Title: "제목", URL: " https://a "}).DedupKey(); got != "https://a" {
		t.Errorf("DedupKey with URL = %q", got)
	}

	if got := (RawRecord{Title: " 제목 "}).DedupKey(); got != "제목" {
		t.Errorf("DedupKey without URL = %q", got)
	}

	if got := (RawRecord{}).DedupKey(); got != "" {
		t.Errorf("DedupKey of empty record = %q", got)
	}
}

func TestSecondaryAt(t *testing.T) {
	rec := EnrichedRecord{Secondary: []SecondaryRef{{URL: "https://b"}}}

	if rec.SecondaryAt(0).URL != "https://b" {
		t.Error("expected first secondary")
	}

	if rec.SecondaryAt(1) != (SecondaryRef{}) || rec.SecondaryAt(-1) != (SecondaryRef{}) {
		t.Error("out of range index must return an empty reference")
	}
}

func TestKeywordStringAndStatus(t *testing.T) {
	s := ScoredRecord{Keywords: []string{"단독", "경악"}}
	if got := s.KeywordString(); got != "단독, 경악" {
		t.Errorf("KeywordString = %q", got)
	}

	if got := FailedStatus(errors.New("timeout")); got != "수집 불가: timeout" {
		t.Errorf("FailedStatus = %q", got)
	}

	if got := FailedStatus(nil); got != StatusFailedPrefix {
		t.Errorf("FailedStatus(nil) = %q", got)
	}
}
