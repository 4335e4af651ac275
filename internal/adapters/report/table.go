// Package report renders review statistics as markdown tables for terminal output.
package report

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/mattn/go-runewidth"

	"guest_reviews/internal/domain"
)

var statsHeader = []string{"Property", "ID", "Reviews", "Avg", "5", "4", "3", "2", "1"}

// PropertyTable writes one row per property. Columns are padded by display width so
// names with wide characters stay aligned.
func PropertyTable(w io.Writer, stats []domain.PropertyStats) error {
	rows := make([][]string, 0, len(stats)+1)
	rows = append(rows, statsHeader)
	for _, ps := range stats {
		row := []string{
			ps.PropertyName,
			ps.PropertyID,
			strconv.Itoa(ps.TotalReviews),
			strconv.FormatFloat(ps.AverageRating, 'f', 1, 64),
		}
		for r := int(domain.MaxRating); r >= int(domain.MinRating); r-- {
			row = append(row, strconv.Itoa(ps.RatingDistribution[r]))
		}
		rows = append(rows, row)
	}
	for _, line := range render(rows) {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}

// SourceTable writes the per-source review counts.
func SourceTable(w io.Writer, counts []domain.SourceCount) error {
	rows := [][]string{{"Source", "Reviews"}}
	for _, c := range counts {
		rows = append(rows, []string{string(c.Source), strconv.Itoa(c.Count)})
	}
	for _, line := range render(rows) {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}

// render lays out rows[0] as the header followed by a dash separator.
func render(rows [][]string) []string {
	if len(rows) == 0 {
		return nil
	}
	escaped := make([][]string, len(rows))
	for i, row := range rows {
		escaped[i] = make([]string, len(row))
		for j, cell := range row {
			escaped[i][j] = strings.ReplaceAll(cell, "|", `\|`)
		}
	}
	rows = escaped

	widths := make([]int, len(rows[0]))
	for _, row := range rows {
		for i := 0; i < len(row) && i < len(widths); i++ {
			if cw := runewidth.StringWidth(row[i]); cw > widths[i] {
				widths[i] = cw
			}
		}
	}
	// minimum separator width
	for i := range widths {
		if widths[i] < 3 {
			widths[i] = 3
		}
	}

	line := func(cells []string, sep bool) string {
		var sb strings.Builder
		sb.WriteString("|")
		for j, width := range widths {
			sb.WriteString(" ")
			if sep {
				sb.WriteString(strings.Repeat("-", width))
			} else {
				content := ""
				if j < len(cells) {
					content = cells[j]
				}
				sb.WriteString(runewidth.FillRight(content, width))
			}
			sb.WriteString(" |")
		}
		return sb.String()
	}

	out := []string{line(rows[0], false), line(nil, true)}
	for _, row := range rows[1:] {
		out = append(out, line(row, false))
	}
	return out
}
