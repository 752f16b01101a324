package timeseries

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	"go.uber.org/zap"
)

// Row is one record of a delimited source, keyed by header column name.
type Row map[string]string

// CSVOptions holds options for loading a series from delimited rows.
type CSVOptions struct {
	DateColumn  string // Column name for dates (default: "ds")
	ValueColumn string // Column name for values (default: "y")
	DateFormat  string // Go layout or strftime pattern (default: "2006-01-02")
	Label       string // Label of the resulting series
	Delimiter   rune   // Field delimiter (default: ',')
	Logger      *zap.Logger
}

// DefaultCSVOptions returns default options for CSV loading.
func DefaultCSVOptions() *CSVOptions {
	return &CSVOptions{
		DateColumn:  "ds",
		ValueColumn: "y",
		DateFormat:  DateLayout,
		Delimiter:   ',',
	}
}

// LoadStats reports how many source rows were kept and dropped.
type LoadStats struct {
	Rows    int
	Loaded  int
	Skipped int
}

// LoadCSV loads a series from a CSV file.
func LoadCSV(filename string, opts *CSVOptions) (*Series, LoadStats, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, LoadStats{}, fmt.Errorf("open %s: %w", filename, err)
	}
	defer file.Close()

	return LoadCSVFromReader(file, opts)
}

// LoadCSVFromReader loads a series from an io.Reader.
//
// Only I/O failures are errors. Rows with a malformed date or value, a
// missing column, or broken quoting are dropped and counted as skipped.
func LoadCSVFromReader(r io.Reader, opts *CSVOptions) (*Series, LoadStats, error) {
	if opts == nil {
		opts = DefaultCSVOptions()
	}

	rows, malformed, err := ReadRows(r, opts.Delimiter)
	if err != nil {
		return nil, LoadStats{}, err
	}

	series, stats := LoadRows(rows, opts)
	stats.Rows += malformed
	stats.Skipped += malformed
	return series, stats, nil
}

// ReadRows reads a header-first delimited source into rows.
//
// Short records simply lack the trailing columns and extra cells are ignored.
// Bare quotes are read literally. Records the csv reader still rejects are
// counted in malformed and skipped. An empty source yields no rows. A zero
// delimiter means ','.
func ReadRows(r io.Reader, delimiter rune) (rows []Row, malformed int, err error) {
	reader := csv.NewReader(r)
	if delimiter != 0 {
		reader.Comma = delimiter
	}
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	var header []string
	for header == nil {
		record, err := reader.Read()
		if err == io.EOF {
			return nil, malformed, nil
		}
		var perr *csv.ParseError
		if errors.As(err, &perr) {
			malformed++
			continue
		}
		if err != nil {
			return nil, malformed, err
		}
		header = make([]string, len(record))
		for i, h := range record {
			if i == 0 {
				h = strings.TrimPrefix(h, "\ufeff")
			}
			header[i] = strings.TrimSpace(h)
		}
	}

	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		var perr *csv.ParseError
		if errors.As(err, &perr) {
			malformed++
			continue
		}
		if err != nil {
			return nil, malformed, err
		}

		row := make(Row, len(header))
		for i, cell := range record {
			if i >= len(header) {
				break
			}
			row[header[i]] = cell
		}
		rows = append(rows, row)
	}

	return rows, malformed, nil
}

// LoadRows builds a series from rows, keeping source order.
// Rows that fail to parse are skipped.
func LoadRows(rows []Row, opts *CSVOptions) (*Series, LoadStats) {
	if opts == nil {
		opts = DefaultCSVOptions()
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	stats := LoadStats{Rows: len(rows)}

	layout, err := Layout(opts.DateFormat)
	if err != nil {
		logger.Warn("Unusable date format, every row will be skipped",
			zap.String("series", opts.Label),
			zap.Error(err))
		stats.Skipped = len(rows)
		return New(nil, nil, opts.Label), stats
	}

	dates := make([]string, 0, len(rows))
	values := make([]float64, 0, len(rows))
	missing := 0

	for i, row := range rows {
		date, value, err := parseRow(row, layout, opts)
		if err != nil {
			if errors.Is(err, errMissingColumn) {
				missing++
			}
			stats.Skipped++
			logger.Debug("Skipping row",
				zap.String("series", opts.Label),
				zap.Int("row", i+1),
				zap.Error(err))
			continue
		}
		dates = append(dates, date)
		values = append(values, value)
	}
	stats.Loaded = len(values)

	if missing > 0 && missing == len(rows) {
		logger.Warn("Column not found in any row",
			zap.String("series", opts.Label),
			zap.String("date_column", opts.DateColumn),
			zap.String("value_column", opts.ValueColumn))
	}

	return New(dates, values, opts.Label), stats
}

var errMissingColumn = errors.New("missing column")

// parseRow extracts the canonical date and value from a row.
func parseRow(row Row, layout string, opts *CSVOptions) (string, float64, error) {
	rawDate, ok := row[opts.DateColumn]
	if !ok {
		return "", 0, fmt.Errorf("%w %q", errMissingColumn, opts.DateColumn)
	}
	rawValue, ok := row[opts.ValueColumn]
	if !ok {
		return "", 0, fmt.Errorf("%w %q", errMissingColumn, opts.ValueColumn)
	}

	date, err := CanonicalDate(strings.TrimSpace(rawDate), layout)
	if err != nil {
		return "", 0, fmt.Errorf("date %q: %w", rawDate, err)
	}

	value, err := strconv.ParseFloat(strings.TrimSpace(rawValue), 64)
	if err != nil {
		return "", 0, fmt.Errorf("value %q: %w", rawValue, err)
	}
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return "", 0, fmt.Errorf("value %q: %w", rawValue, ErrNonFinite)
	}

	return date, value, nil
}

// WriteCSV writes a series as "ds,y" rows.
func WriteCSV(w io.Writer, series *Series) error {
	writer := csv.NewWriter(w)
	if err := writer.Write([]string{"ds", "y"}); err != nil {
		return err
	}
	for i := range series.values {
		record := []string{
			series.dates[i],
			strconv.FormatFloat(series.values[i], 'f', -1, 64),
		}
		if err := writer.Write(record); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

// SaveCSV saves a series to a CSV file.
func SaveCSV(series *Series, filename string) error {
	file, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer file.Close()

	buf := bufio.NewWriter(file)
	if err := WriteCSV(buf, series); err != nil {
		return err
	}
	if err := buf.Flush(); err != nil {
		return err
	}
	return file.Close()
}
