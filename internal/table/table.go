package table

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"ReviewPrep/internal/domain"
)

// Column is a canonical CSV column name.
type Column string

const (
	ColID           Column = "review_id"
	ColUserName     Column = "user_name"
	ColContent      Column = "content"
	ColContentClean Column = "content_clean"
	ColRating       Column = "rating"
	ColThumbsUp     Column = "thumbs_up"
	ColAppVersion   Column = "app_version"
	ColReviewDate   Column = "review_date"
	ColReplyContent Column = "reply_content"
	ColReplyDate    Column = "reply_date"
	ColSentiment    Column = "sentiment"
	ColWordCount    Column = "word_count"
	ColSynthetic    Column = "synthetic"
)

// AllColumns is the write order of a full review table.
var AllColumns = []Column{
	ColID, ColUserName, ColContent, ColContentClean, ColRating, ColThumbsUp,
	ColAppVersion, ColReviewDate, ColReplyContent, ColReplyDate,
	ColSentiment, ColWordCount, ColSynthetic,
}

// RawColumns is what the collector writes: passthrough metadata only.
var RawColumns = []Column{
	ColID, ColUserName, ColContent, ColRating, ColThumbsUp,
	ColAppVersion, ColReviewDate, ColReplyContent, ColReplyDate,
}

// TrainingColumns is the minimal handoff for the fine-tuning job.
var TrainingColumns = []Column{ColContent, ColContentClean, ColSentiment}

// ColumnSet resolves a named column set. An empty name yields def.
func ColumnSet(name string, def []Column) ([]Column, error) {
	switch name {
	case "":
		return def, nil
	case "all":
		return AllColumns, nil
	case "raw":
		return RawColumns, nil
	case "training":
		return TrainingColumns, nil
	}
	return nil, fmt.Errorf("unknown column set %q", name)
}

var aliases = map[string]Column{
	"reviewid":             ColID,
	"username":             ColUserName,
	"review":               ColContent,
	"text":                 ColContent,
	"score":                ColRating,
	"thumbsupcount":        ColThumbsUp,
	"reviewcreatedversion": ColAppVersion,
	"at":                   ColReviewDate,
	"replycontent":         ColReplyContent,
	"repliedat":            ColReplyDate,
	"sentiment_label":      ColSentiment,
	"label":                ColSentiment,
}

// MissingColumnError reports required columns absent from an input header.
type MissingColumnError struct {
	Path    string
	Missing []Column
}

func (e *MissingColumnError) Error() string {
	names := make([]string, len(e.Missing))
	for i, c := range e.Missing {
		names[i] = string(c)
	}
	return fmt.Sprintf("%s: missing required column(s): %s", e.Path, strings.Join(names, ", "))
}

// Table is a decoded review file together with the columns it carried.
type Table struct {
	Rows    []domain.Review
	Columns map[Column]bool
}

// Has reports whether the source header contained col.
func (t Table) Has(col Column) bool {
	return t.Columns[col]
}

// ReadFile loads a review table and fails fast when a required column is absent.
func ReadFile(path string, required ...Column) (Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return Table{}, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	tbl, err := Read(f, path, required...)
	if err != nil {
		return Table{}, err
	}
	return tbl, nil
}

// Read decodes a review table from r. name is used in error messages.
func Read(r io.Reader, name string, required ...Column) (Table, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return Table{}, fmt.Errorf("%s: empty file", name)
	}
	if err != nil {
		return Table{}, fmt.Errorf("%s: read header: %w", name, err)
	}

	index := resolveHeader(header)
	present := make(map[Column]bool, len(index))
	for col := range index {
		present[col] = true
	}

	var missing []Column
	for _, col := range required {
		if !present[col] {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return Table{}, &MissingColumnError{Path: name, Missing: missing}
	}

	var rows []domain.Review
	line := 1
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		line++
		if err != nil {
			return Table{}, fmt.Errorf("%s: line %d: %w", name, line, err)
		}

		review, err := decodeRow(record, index)
		if err != nil {
			return Table{}, fmt.Errorf("%s: line %d: %w", name, line, err)
		}
		rows = append(rows, review)
	}

	return Table{Rows: rows, Columns: present}, nil
}

// WriteFile writes rows with the given columns, creating parent directories.
func WriteFile(path string, rows []domain.Review, columns []Column) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create output dir: %w", err)
		}
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}

	if err := Write(f, rows, columns); err != nil {
		_ = f.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}

	if err := f.Close(); err != nil {
		return fmt.Errorf("close %s: %w", path, err)
	}
	return nil
}

// Write encodes rows as CSV with a header line.
func Write(w io.Writer, rows []domain.Review, columns []Column) error {
	if len(columns) == 0 {
		columns = AllColumns
	}

	writer := csv.NewWriter(w)
	header := make([]string, len(columns))
	for i, c := range columns {
		header[i] = string(c)
	}
	if err := writer.Write(header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	record := make([]string, len(columns))
	for _, row := range rows {
		for i, c := range columns {
			record[i] = encodeField(row, c)
		}
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("write row: %w", err)
		}
	}

	writer.Flush()
	return writer.Error()
}

func resolveHeader(header []string) map[Column]int {
	index := make(map[Column]int, len(header))
	for i, raw := range header {
		name := strings.TrimSpace(strings.TrimPrefix(raw, "\ufeff"))
		col, ok := canonical(name)
		if !ok {
			continue
		}
		if _, dup := index[col]; dup {
			continue
		}
		index[col] = i
	}
	return index
}

func canonical(name string) (Column, bool) {
	lower := strings.ToLower(name)
	for _, c := range AllColumns {
		if string(c) == lower {
			return c, true
		}
	}
	if c, ok := aliases[lower]; ok {
		return c, true
	}
	return "", false
}

func decodeRow(record []string, index map[Column]int) (domain.Review, error) {
	get := func(c Column) string {
		i, ok := index[c]
		if !ok || i >= len(record) {
			return ""
		}
		return record[i]
	}

	review := domain.Review{
		ID:           strings.TrimSpace(get(ColID)),
		UserName:     get(ColUserName),
		TextRaw:      get(ColContent),
		TextClean:    get(ColContentClean),
		AppVersion:   get(ColAppVersion),
		ReviewedAt:   get(ColReviewDate),
		ReplyContent: get(ColReplyContent),
		RepliedAt:    get(ColReplyDate),
		Label:        domain.Label(strings.TrimSpace(get(ColSentiment))),
	}

	if raw := strings.TrimSpace(get(ColRating)); raw != "" {
		rating, err := parseInt(raw)
		if err != nil {
			return domain.Review{}, fmt.Errorf("rating %q: %w", raw, err)
		}
		if rating < 1 || rating > 5 {
			return domain.Review{}, fmt.Errorf("%w: %d", domain.ErrRatingOutOfRange, rating)
		}
		review.Rating = rating
	}

	review.ThumbsUp = strings.TrimSpace(get(ColThumbsUp))
	if raw := strings.TrimSpace(get(ColWordCount)); raw != "" {
		if v, err := parseInt(raw); err == nil {
			review.WordCount = v
		}
	}
	if raw := strings.TrimSpace(get(ColSynthetic)); raw != "" {
		if v, err := strconv.ParseBool(raw); err == nil {
			review.Synthetic = v
		}
	}

	return review, nil
}

// parseInt accepts "4" as well as pandas-style "4.0".
func parseInt(raw string) (int, error) {
	if v, err := strconv.Atoi(raw); err == nil {
		return v, nil
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, err
	}
	if f != float64(int(f)) {
		return 0, fmt.Errorf("not an integer")
	}
	return int(f), nil
}

func encodeField(r domain.Review, c Column) string {
	switch c {
	case ColID:
		return r.ID
	case ColUserName:
		return r.UserName
	case ColContent:
		return r.TextRaw
	case ColContentClean:
		return r.TextClean
	case ColRating:
		if r.Rating == 0 {
			return ""
		}
		return strconv.Itoa(r.Rating)
	case ColThumbsUp:
		return r.ThumbsUp
	case ColAppVersion:
		return r.AppVersion
	case ColReviewDate:
		return r.ReviewedAt
	case ColReplyContent:
		return r.ReplyContent
	case ColReplyDate:
		return r.RepliedAt
	case ColSentiment:
		return string(r.Label)
	case ColWordCount:
		return strconv.Itoa(r.WordCount)
	case ColSynthetic:
		return strconv.FormatBool(r.Synthetic)
	default:
		return ""
	}
}

// ReadFiles merges several tables. Columns reports only the columns present in every file.
func ReadFiles(paths []string, required ...Column) (Table, error) {
	var merged Table
	for i, p := range paths {
		tbl, err := ReadFile(p, required...)
		if err != nil {
			return Table{}, err
		}
		merged.Rows = append(merged.Rows, tbl.Rows...)

		if i == 0 {
			merged.Columns = tbl.Columns
			continue
		}
		for col := range merged.Columns {
			if !tbl.Columns[col] {
				delete(merged.Columns, col)
			}
		}
	}
	return merged, nil
}
