package timeseries

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func yahooOptions(t *testing.T) *CSVOptions {
	return &CSVOptions{
		DateColumn:  "Date",
		ValueColumn: "Adj Close",
		DateFormat:  "%Y-%m-%d",
		Label:       "S&P 500",
		Logger:      zaptest.NewLogger(t),
	}
}

func TestLoadCSVFromReader(t *testing.T) {
	csvData := `Date,Open,High,Low,Close,Adj Close,Volume
2017-12-19,1,1,1,1,1445.930054,10
2017-12-20,1,1,1,1,1485.550049,10
2017-12-24,1,1,1,1,1516.760010,10
2017-12-25,1,1,1,1,1507.770020,10
2017-12-26,1,1,1,1,1545.290039,10
2017-12-28,1,1,1,1,1554.449951,10
2017-12-29,1,1,1,1,1664.469971,10
2017-12-30,1,1,1,1,1697.500000,10
2018-01-01,1,1,1,1,1752.310059,10
2018-01-02,1,1,1,1,1819.290039,10
`

	series, stats, err := LoadCSVFromReader(strings.NewReader(csvData), yahooOptions(t))
	require.NoError(t, err)

	assert.Equal(t, basicDates, series.Dates())
	assert.InDeltaSlice(t, basicValues, series.Values(), epsilon)
	assert.Equal(t, "S&P 500", series.Label())
	assert.Equal(t, LoadStats{Rows: 10, Loaded: 10, Skipped: 0}, stats)
}

func TestLoadCSVSkipsMalformedRows(t *testing.T) {
	csvData := `Date,Adj Close
2020-01-01,100
2020-01-02,null
not-a-date,101
2020-01-04,
2020-01-05,NaN
2020-01-06,104
2020-01-07
2020-02-30,105
2020-01-08,106
`

	series, stats, err := LoadCSVFromReader(strings.NewReader(csvData), yahooOptions(t))
	require.NoError(t, err)

	assert.Equal(t, []string{"2020-01-01", "2020-01-06", "2020-01-08"}, series.Dates())
	assert.Equal(t, []float64{100, 104, 106}, series.Values())
	assert.Equal(t, 9, stats.Rows)
	assert.Equal(t, 3, stats.Loaded)
	assert.Equal(t, 6, stats.Skipped)
}

func TestLoadCSVSkipsBrokenQuoting(t *testing.T) {
	csvData := "Date,Adj Close\n" +
		"2020-01-01,100\n" +
		"2020-01-02,1\"01\n" +
		"2020-01-03,102\n"

	series, stats, err := LoadCSVFromReader(strings.NewReader(csvData), yahooOptions(t))
	require.NoError(t, err)

	assert.Equal(t, []string{"2020-01-01", "2020-01-03"}, series.Dates())
	assert.Equal(t, 1, stats.Skipped)
}

func TestLoadCSVKeepsBareQuoteInOtherColumn(t *testing.T) {
	csvData := "Date,Note,Adj Close\n" +
		"2020-01-01,ok,100\n" +
		"2020-01-02,5\" screen,101\n" +
		"2020-01-03,ok,102\n"

	series, stats, err := LoadCSVFromReader(strings.NewReader(csvData), yahooOptions(t))
	require.NoError(t, err)

	assert.Equal(t, []string{"2020-01-01", "2020-01-02", "2020-01-03"}, series.Dates())
	assert.Equal(t, []float64{100, 101, 102}, series.Values())
	assert.Equal(t, LoadStats{Rows: 3, Loaded: 3, Skipped: 0}, stats)
}

func TestLoadCSVMissingColumn(t *testing.T) {
	csvData := `DATE,DEXCAUS
2020-01-01,1.3
2020-01-02,1.31
`

	series, stats, err := LoadCSVFromReader(strings.NewReader(csvData), yahooOptions(t))
	require.NoError(t, err)

	assert.Equal(t, 0, series.Len())
	assert.Equal(t, 2, stats.Skipped)
}

func TestLoadCSVEmptySource(t *testing.T) {
	for _, data := range []string{"", "Date,Adj Close\n"} {
		series, stats, err := LoadCSVFromReader(strings.NewReader(data), yahooOptions(t))
		require.NoError(t, err)
		assert.Equal(t, 0, series.Len())
		assert.Equal(t, 0, stats.Rows)
	}
}

func TestLoadCSVDateFormats(t *testing.T) {
	tests := []struct {
		name   string
		format string
		data   string
		want   []string
	}{
		{
			"strftime ISO",
			"%Y-%m-%d",
			"d,v\n2020-01-01,1\n2020-1-2,2\n",
			[]string{"2020-01-01", "2020-01-02"},
		},
		{
			"strftime US",
			"%m/%d/%Y",
			"d,v\n12/31/2019,1\n01/02/2020,2\n",
			[]string{"2019-12-31", "2020-01-02"},
		},
		{
			"strftime month name",
			"%d-%b-%y",
			"d,v\n05-Mar-18,1\n",
			[]string{"2018-03-05"},
		},
		{
			"go layout",
			"02.01.2006",
			"d,v\n19.12.2017,1\n",
			[]string{"2017-12-19"},
		},
		{
			"default",
			"",
			"d,v\n2017-12-19,1\n",
			[]string{"2017-12-19"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := &CSVOptions{DateColumn: "d", ValueColumn: "v", DateFormat: tt.format}
			series, _, err := LoadCSVFromReader(strings.NewReader(tt.data), opts)
			require.NoError(t, err)
			assert.Equal(t, tt.want, series.Dates())
		})
	}
}

func TestLoadCSVPreservesSourceOrder(t *testing.T) {
	csvData := `ds,y
2020-01-03,3
2020-01-01,1
bad,0
2020-01-02,2
`

	series, _, err := LoadCSVFromReader(strings.NewReader(csvData), nil)
	require.NoError(t, err)

	assert.Equal(t, []string{"2020-01-03", "2020-01-01", "2020-01-02"}, series.Dates())
	assert.Equal(t, []float64{3, 1, 2}, series.Values())
}

func TestLoadCSVDelimiterAndHeaderCleanup(t *testing.T) {
	csvData := "\ufeffDate ; Adj Close\n2020-01-01; 7.5 \n"

	opts := yahooOptions(t)
	opts.Delimiter = ';'

	series, _, err := LoadCSVFromReader(strings.NewReader(csvData), opts)
	require.NoError(t, err)
	require.Equal(t, 1, series.Len())
	assert.Equal(t, Point{"2020-01-01", 7.5}, series.At(0))
}

func TestLoadCSVFileNotFound(t *testing.T) {
	_, _, err := LoadCSV(filepath.Join(t.TempDir(), "missing.csv"), nil)
	assert.Error(t, err)
}

func TestReadRowsShortAndLongRecords(t *testing.T) {
	rows, malformed, err := ReadRows(strings.NewReader("a,b,c\n1,2\n1,2,3,4\n"), 0)
	require.NoError(t, err)

	assert.Equal(t, 0, malformed)
	require.Len(t, rows, 2)
	assert.Equal(t, Row{"a": "1", "b": "2"}, rows[0])
	assert.Equal(t, Row{"a": "1", "b": "2", "c": "3"}, rows[1])
}

func TestLayout(t *testing.T) {
	tests := []struct {
		format  string
		want    string
		wantErr bool
	}{
		{"%Y-%m-%d", "2006-1-2", false},
		{"%d/%m/%y %H:%M:%S", "2/1/06 15:4:5", false},
		{"%B %d, %Y", "January 2, 2006", false},
		{"100%%", "100%", false},
		{"2006-01-02", "2006-01-02", false},
		{"", DateLayout, false},
		{"%Q", "", true},
		{"%Y-%", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.format, func(t *testing.T) {
			got, err := Layout(tt.format)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestUnusableDateFormatSkipsEverything(t *testing.T) {
	opts := &CSVOptions{DateColumn: "ds", ValueColumn: "y", DateFormat: "%Q"}
	series, stats := LoadRows([]Row{{"ds": "2020-01-01", "y": "1"}}, opts)

	assert.Equal(t, 0, series.Len())
	assert.Equal(t, 1, stats.Skipped)
}

func TestWriteCSVRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, basicSeries()))

	assert.True(t, strings.HasPrefix(buf.String(), "ds,y\n2017-12-19,1445.930054\n"))

	loaded, _, err := LoadCSVFromReader(&buf, nil)
	require.NoError(t, err)
	assert.Equal(t, basicDates, loaded.Dates())
	assert.Equal(t, basicValues, loaded.Values())
}

func TestSaveCSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "series.csv")
	require.NoError(t, SaveCSV(basicSeries(), path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, len(basicDates)+1, strings.Count(string(data), "\n"))

	opts := DefaultCSVOptions()
	opts.Label = "reloaded"
	loaded, stats, err := LoadCSV(path, opts)
	require.NoError(t, err)
	assert.Equal(t, len(basicDates), stats.Loaded)
	assert.Equal(t, "reloaded", loaded.Label())
}
