// Package timeseries provides time series data structures and utilities.
//
// A Series holds dated observations in source order together with a
// lookup-by-date index. Dates are canonical "2006-01-02" keys.
//
// # Creating a Series
//
// Create a series from parallel slices:
//
//	dates := []string{"2017-12-19", "2017-12-20", "2017-12-24"}
//	values := []float64{1445.93, 1485.55, 1516.76}
//	series := timeseries.New(dates, values, "S&P 500")
//
// Mismatched slices are truncated to the shorter one.
//
// # Loading from CSV
//
// Load a series from a header-first CSV file:
//
//	opts := &timeseries.CSVOptions{
//	    DateColumn:  "Date",
//	    ValueColumn: "Adj Close",
//	    DateFormat:  "%Y-%m-%d", // strftime pattern or Go layout
//	    Label:       "S&P 500",
//	}
//	series, stats, err := timeseries.LoadCSV("data/^GSPC.csv", opts)
//
// Rows with an unparsable date or value, or without the requested columns,
// are skipped and counted in stats.Skipped. Only I/O failures are errors.
//
// # Transformations
//
// Transforms never modify the receiver:
//
//	normalized, err := series.Normalize()  // largest magnitude becomes 1
//	rates, err := series.Derivative()      // change per day between neighbours
//
// # Writing
//
// Write a series back out as "ds,y" rows:
//
//	err := timeseries.WriteCSV(os.Stdout, series)
package timeseries
