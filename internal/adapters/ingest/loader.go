// Package ingest reads order lines from CSV and reports missing values.
package ingest

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strings"
	"time"

	"github.com/araddon/dateparse"
	"github.com/okian/salespulse/internal/domain/model"
	"github.com/okian/salespulse/pkg/metrics"
	"github.com/shopspring/decimal"
)

// Required column names.
const (
	ColOrderID   = "order_id"
	ColOrderDate = "order_date"
	ColProductID = "product_id"
	ColPrice     = "price"
	ColQuantity  = "quantity"
)

// RequiredColumns lists the columns every input must carry.
var RequiredColumns = []string{ColOrderID, ColOrderDate, ColProductID, ColPrice, ColQuantity}

const (
	defaultHeadRows = 5
	utf8BOM         = "\ufeff"
)

// Dataset is the loaded input plus what the validate step reports on.
type Dataset struct {
	Columns     []string          // header names, in file order
	Lines       []model.OrderLine // complete rows only
	Missing     map[string]int    // missing or unparseable cells per column
	Head        [][]string        // first raw records
	RowCount    int               // data rows read, complete or not
	DroppedRows int               // rows excluded under the drop policy
}

type loader struct {
	headRows int
	policy   string
	comma    rune
}

func newLoader(opts ...Option) *loader {
	l := &loader{
		headRows: defaultHeadRows,
		policy:   PolicyDrop,
		comma:    ',',
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Load opens path and reads it with Read. A missing file surfaces as an
// error wrapping fs.ErrNotExist.
func Load(ctx context.Context, path string, opts ...Option) (*Dataset, error) {
	f, err := os.Open(path) //nolint:gosec // path comes from operator configuration
	if err != nil {
		metrics.RecordErrorByComponent("ingest", "open")
		return nil, fmt.Errorf("open input: %w", err)
	}
	defer func() { _ = f.Close() }()

	return Read(ctx, f, opts...)
}

// Read parses CSV order lines from r.
func Read(ctx context.Context, r io.Reader, opts ...Option) (*Dataset, error) {
	start := time.Now()
	l := newLoader(opts...)

	ds, err := l.read(ctx, r)
	if err != nil {
		metrics.RecordErrorByComponent("ingest", errorKind(err))
		return nil, err
	}

	metrics.RecordRowsLoaded(ds.RowCount)
	metrics.RecordRowsDropped(ds.DroppedRows)
	for col, n := range ds.Missing {
		metrics.RecordMissingCells(col, n)
	}
	metrics.RecordLoadLatency(float64(time.Since(start).Microseconds()) / 1000)
	return ds, nil
}

func (l *loader) read(ctx context.Context, r io.Reader) (*Dataset, error) {
	cr := csv.NewReader(r)
	cr.Comma = l.comma
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, ErrEmptyInput
	}
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}

	columns := make([]string, len(header))
	index := make(map[string]int, len(header))
	for i, h := range header {
		if i == 0 {
			h = strings.TrimPrefix(h, utf8BOM)
		}
		name := uniqueName(strings.ToLower(strings.TrimSpace(h)), index)
		columns[i] = name
		index[name] = i
	}
	for _, col := range RequiredColumns {
		if _, ok := index[col]; !ok {
			return nil, fmt.Errorf("%w: %s", ErrMissingColumn, col)
		}
	}

	ds := &Dataset{
		Columns: columns,
		Lines:   make([]model.OrderLine, 0),
		Missing: make(map[string]int, len(columns)),
		Head:    make([][]string, 0, l.headRows),
	}
	for _, c := range columns {
		ds.Missing[c] = 0
	}

	for {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("read input: %w", err)
		}

		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read row: %w", err)
		}
		lineNo, _ := cr.FieldPos(0)
		ds.RowCount++

		if len(ds.Head) < l.headRows {
			ds.Head = append(ds.Head, rec)
		}

		cell := func(i int) string {
			if i < len(rec) {
				return strings.TrimSpace(rec[i])
			}
			return ""
		}

		// Every column counts blanks; required ones also count parse failures.
		for i, c := range columns {
			if _, required := requiredSet[c]; required {
				continue
			}
			if cell(i) == "" {
				ds.Missing[c]++
			}
		}

		line, bad := parseLine(func(col string) string { return cell(index[col]) })
		for _, col := range bad {
			ds.Missing[col]++
		}
		if len(bad) > 0 {
			if l.policy == PolicyFail {
				return nil, fmt.Errorf("%w: line %d: %s %q", ErrMalformedRow, lineNo, bad[0], cell(index[bad[0]]))
			}
			ds.DroppedRows++
			continue
		}
		ds.Lines = append(ds.Lines, line)
	}

	return ds, nil
}

// uniqueName suffixes a repeated header name with ".1", ".2", ... so every
// column keeps its own missing count. The first occurrence keeps the name.
func uniqueName(name string, seen map[string]int) string {
	if _, dup := seen[name]; !dup {
		return name
	}
	for n := 1; ; n++ {
		candidate := fmt.Sprintf("%s.%d", name, n)
		if _, dup := seen[candidate]; !dup {
			return candidate
		}
	}
}

var requiredSet = func() map[string]struct{} {
	m := make(map[string]struct{}, len(RequiredColumns))
	for _, c := range RequiredColumns {
		m[c] = struct{}{}
	}
	return m
}()

// parseLine converts the required cells. bad lists the columns that were
// empty or unparseable, in RequiredColumns order.
func parseLine(get func(col string) string) (model.OrderLine, []string) {
	var (
		line model.OrderLine
		bad  []string
	)

	line.OrderID = get(ColOrderID)
	if line.OrderID == "" {
		bad = append(bad, ColOrderID)
	}

	date, err := ParseDate(get(ColOrderDate))
	if err != nil {
		bad = append(bad, ColOrderDate)
	}
	line.OrderDate = date

	line.ProductID = get(ColProductID)
	if line.ProductID == "" {
		bad = append(bad, ColProductID)
	}

	price, err := decimal.NewFromString(get(ColPrice))
	if err != nil {
		bad = append(bad, ColPrice)
	}
	line.Price = price

	qty, err := parseQuantity(get(ColQuantity))
	if err != nil {
		bad = append(bad, ColQuantity)
	}
	line.Quantity = qty

	return line, bad
}

// ParseDate accepts ISO-8601 dates and timestamps, then falls back to the
// common layouts dateparse recognises. The time of day is discarded.
func ParseDate(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, errors.New("empty date")
	}
	for _, layout := range []string{time.DateOnly, time.RFC3339, time.DateTime} {
		if t, err := time.Parse(layout, s); err == nil {
			return model.Day(t), nil
		}
	}
	t, err := dateparse.ParseIn(s, time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse date %q: %w", s, err)
	}
	return model.Day(t), nil
}

// parseQuantity accepts integers, including integral decimals such as "2.0".
func parseQuantity(s string) (int64, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, err
	}
	if !d.IsInteger() {
		return 0, fmt.Errorf("quantity %q is not an integer", s)
	}
	if d.GreaterThan(maxQuantity) || d.LessThan(minQuantity) {
		return 0, fmt.Errorf("quantity %q is out of range", s)
	}
	return d.IntPart(), nil
}

var (
	maxQuantity = decimal.NewFromInt(math.MaxInt64)
	minQuantity = decimal.NewFromInt(math.MinInt64)
)

func errorKind(err error) string {
	switch {
	case errors.Is(err, ErrEmptyInput):
		return "empty_input"
	case errors.Is(err, ErrMissingColumn):
		return "missing_column"
	case errors.Is(err, ErrMalformedRow):
		return "malformed_row"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "cancelled"
	default:
		return "read"
	}
}
