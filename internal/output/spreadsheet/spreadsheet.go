// Package spreadsheet writes the ranked report workbook.
package spreadsheet

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/xuri/excelize/v2"

	"github.com/lueurxax/aggro-radar/internal/core/domain"
	"github.com/lueurxax/aggro-radar/internal/core/errors"
	"github.com/lueurxax/aggro-radar/internal/output/snapshot"
)

const (
	SheetName  = "어그로추천주제"
	DefaultTop = 30

	defaultSheet = "Sheet1"
	filePrefix   = "agro_report_"
	fileExt      = ".xlsx"
	dirPerm      = 0o755
	linkColor    = "0563C1"
	linkType     = "External"

	logKeyPath = "path"
	logKeyRows = "rows"
)

type column struct {
	header   string
	width    float64
	centered bool
	link     bool
	value    func(snapshot.Row) any
}

var columns = []column{
	{header: "순위", width: 8, centered: true, value: func(r snapshot.Row) any { return r.Rank }},
	{header: "제목", width: 50, value: func(r snapshot.Row) any { return r.Title }},
	{header: "추천점수", width: 12, centered: true, value: func(r snapshot.Row) any { return float64(r.Score) }},
	{header: "키워드", width: 14, centered: true, value: func(r snapshot.Row) any { return r.Keywords }},
	{header: "카테고리", width: 10, centered: true, value: func(r snapshot.Row) any { return r.Category }},
	{header: "출처", width: 14, centered: true, value: func(r snapshot.Row) any { return r.Source }},
	{header: "유튜브_URL", width: 50, link: true, value: func(r snapshot.Row) any { return r.VideoURL }},
	{header: "뉴스기사_URL", width: 50, link: true, value: func(r snapshot.Row) any { return r.NewsURL }},
	{header: "업로드일", width: 14, value: func(r snapshot.Row) any { return r.UploadDate }},
	{header: "뉴스기사2_URL", width: 50, link: true, value: func(r snapshot.Row) any { return r.News2URL }},
	{header: "뉴스기사2_날짜", width: 14, value: func(r snapshot.Row) any { return r.News2Date }},
	{header: "뉴스기사3_URL", width: 50, link: true, value: func(r snapshot.Row) any { return r.News3URL }},
	{header: "뉴스기사3_날짜", width: 14, value: func(r snapshot.Row) any { return r.News3Date }},
	{header: "조회수", width: 14, value: func(r snapshot.Row) any {
		if r.Views.Value == nil {
			return ""
		}

		return *r.Views.Value
	}},
}

// Exporter writes workbooks into a directory.
type Exporter struct {
	dir    string
	top    int
	now    func() time.Time
	logger *zerolog.Logger
}

// New returns an exporter writing into dir. A non-positive top keeps DefaultTop rows.
func New(dir string, top int, logger *zerolog.Logger) *Exporter {
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}

	if top <= 0 {
		top = DefaultTop
	}

	return &Exporter{dir: dir, top: top, now: time.Now, logger: logger}
}

// Export writes the highest scored records to a new workbook and returns its path.
func (e *Exporter) Export(records []domain.EnrichedRecord) (string, error) {
	if len(records) == 0 {
		return "", errors.ErrNoRecords
	}

	rows := snapshot.Rows(records, e.top)

	if err := os.MkdirAll(e.dir, dirPerm); err != nil {
		return "", fmt.Errorf("create report dir: %w", err)
	}

	path, err := NextPath(e.dir, e.now())
	if err != nil {
		return "", err
	}

	if err := Write(path, rows); err != nil {
		return "", err
	}

	e.logger.Info().Str(logKeyPath, path).Int(logKeyRows, len(rows)).Msg("report exported")

	return path, nil
}

// NextPath returns dir/agro_report_MMDD(n).xlsx for the first n not taken.
func NextPath(dir string, now time.Time) (string, error) {
	base := filePrefix + now.Format("0102")

	for n := 1; ; n++ {
		path := filepath.Join(dir, fmt.Sprintf("%s(%d)%s", base, n, fileExt))

		_, err := os.Stat(path)
		if os.IsNotExist(err) {
			return path, nil
		}

		if err != nil {
			return "", fmt.Errorf("stat %s: %w", path, err)
		}
	}
}

// Write saves rows as a workbook at path.
func Write(path string, rows []snapshot.Row) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(defaultSheet, SheetName); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}

	center, err := f.NewStyle(&excelize.Style{
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	if err != nil {
		return fmt.Errorf("create style: %w", err)
	}

	link, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Color: linkColor, Underline: "single"},
	})
	if err != nil {
		return fmt.Errorf("create style: %w", err)
	}

	for i, col := range columns {
		name, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			return fmt.Errorf("column name: %w", err)
		}

		if err := f.SetColWidth(SheetName, name, name, col.width); err != nil {
			return fmt.Errorf("set width %s: %w", col.header, err)
		}

		if err := writeCell(f, i+1, 1, col.header, center); err != nil {
			return err
		}

		for r, row := range rows {
			v := col.value(row)

			style := 0
			if col.centered {
				style = center
			}

			if err := writeCell(f, i+1, r+2, v, style); err != nil {
				return err
			}

			if col.link {
				if err := writeLink(f, i+1, r+2, v, link); err != nil {
					return err
				}
			}
		}
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("save workbook: %w", err)
	}

	return nil
}

func writeCell(f *excelize.File, col, row int, v any, style int) error {
	cell, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		return fmt.Errorf("cell name: %w", err)
	}

	if err := f.SetCellValue(SheetName, cell, v); err != nil {
		return fmt.Errorf("set %s: %w", cell, err)
	}

	if style == 0 {
		return nil
	}

	if err := f.SetCellStyle(SheetName, cell, cell, style); err != nil {
		return fmt.Errorf("style %s: %w", cell, err)
	}

	return nil
}

func writeLink(f *excelize.File, col, row int, v any, style int) error {
	url, _ := v.(string)

	url = strings.TrimSpace(url)
	if !strings.HasPrefix(url, "http") {
		return nil
	}

	cell, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		return fmt.Errorf("cell name: %w", err)
	}

	if err := f.SetCellHyperLink(SheetName, cell, url, linkType); err != nil {
		return fmt.Errorf("link %s: %w", cell, err)
	}

	if err := f.SetCellStyle(SheetName, cell, cell, style); err != nil {
		return fmt.Errorf("style %s: %w", cell, err)
	}

	return nil
}
