// Package report writes correlation results to delimited files and terminals.
package report

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"

	"github.com/sartorproj/gorates/stats"
)

// Header is the column layout of a correlation report.
var Header = []string{"label1", "label2", "correlation", "p"}

// Writer writes correlation results as CSV rows after a header row.
type Writer struct {
	csv           *csv.Writer
	headerWritten bool
}

// NewWriter returns a Writer that writes to w.
func NewWriter(w io.Writer) *Writer {
	return &Writer{csv: csv.NewWriter(w)}
}

// Write writes one result, emitting the header first if needed.
func (w *Writer) Write(result stats.CorrelationResult) error {
	if err := w.writeHeader(); err != nil {
		return err
	}
	return w.csv.Write([]string{
		result.LabelA,
		result.LabelB,
		formatFloat(result.Coefficient),
		formatFloat(result.PValue),
	})
}

// Flush writes buffered rows and reports any write error. A Writer that
// received no results still produces the header.
func (w *Writer) Flush() error {
	if err := w.writeHeader(); err != nil {
		return err
	}
	w.csv.Flush()
	return w.csv.Error()
}

func (w *Writer) writeHeader() error {
	if w.headerWritten {
		return nil
	}
	w.headerWritten = true
	return w.csv.Write(Header)
}

// WriteFile writes results to filename, replacing any existing file.
func WriteFile(filename string, results []stats.CorrelationResult) error {
	file, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer file.Close()

	buf := bufio.NewWriter(file)
	w := NewWriter(buf)
	for _, r := range results {
		if err := w.Write(r); err != nil {
			return fmt.Errorf("write %s: %w", filename, err)
		}
	}
	if err := w.Flush(); err != nil {
		return fmt.Errorf("write %s: %w", filename, err)
	}
	if err := buf.Flush(); err != nil {
		return fmt.Errorf("write %s: %w", filename, err)
	}
	return file.Close()
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

// Printer prints one human readable line per result.
// Results below Alpha are highlighted.
type Printer struct {
	out   io.Writer
	Alpha float64

	significant func(format string, a ...interface{}) string
	plain       func(format string, a ...interface{}) string
}

// NewPrinter returns a Printer writing to out. Significant results are
// colored only when out is a terminal and NO_COLOR is unset.
func NewPrinter(out io.Writer) *Printer {
	highlight := color.New(color.FgGreen, color.Bold)
	if isTerminal(out) && os.Getenv("NO_COLOR") == "" {
		highlight.EnableColor()
	} else {
		highlight.DisableColor()
	}
	return &Printer{
		out:         out,
		Alpha:       0.05,
		significant: highlight.SprintfFunc(),
		plain:       fmt.Sprintf,
	}
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// Print writes a line such as "S&P 500 and BTC to USD:  0.1145,  p = 0.7872".
func (p *Printer) Print(result stats.CorrelationResult) error {
	format := p.plain
	if result.Significant(p.Alpha) {
		format = p.significant
	}
	_, err := fmt.Fprintln(p.out, format("%s and %s:  %.4f,  p = %.4g",
		result.LabelA, result.LabelB, result.Coefficient, result.PValue))
	return err
}
