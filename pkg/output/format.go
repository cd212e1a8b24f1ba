// Package output provides utilities for formatting and displaying
// pricing results.
package output

import (
	"fmt"
	"math"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/lowdisc/qmcpricer/internal/pricer"
)

// PrettyFormat outputs a human-readable rather than machine-readable table.
func PrettyFormat(results []pricer.Result) {
	p := message.NewPrinter(language.English)
	for _, result := range results {
		fmt.Printf("--- Results for scenario %s (%s) ---\n", result.Name, result.Method)
		_, _ = p.Printf("Price:       $%.4f\n", result.Estimate.Price)
		_, _ = p.Printf("Error bound: %.2e\n", result.Estimate.ErrBound)
		_, _ = p.Printf("Samples:     %d\n", result.Estimate.Samples)
		fmt.Printf("Elapsed:     %s\n", result.Estimate.Elapsed)
		fmt.Printf("Status:      %s\n", result.Estimate.Status)
		if !math.IsNaN(result.Reference) {
			_, _ = p.Printf("Reference:   $%.4f (closed form, diff %.2e)\n",
				result.Reference, math.Abs(result.Estimate.Price-result.Reference))
		}
		if len(results) > 1 {
			fmt.Printf("\n")
		}
	}
}

// CsvFormat outputs in comma-separated value format.
func CsvFormat(results []pricer.Result) {
	fmt.Printf("\"scenario\",\"method\",\"price\",\"errorBound\",\"samples\",\"elapsed\",\"status\",\"reference\"\n")
	for _, result := range results {
		reference := ""
		if !math.IsNaN(result.Reference) {
			reference = fmt.Sprintf("%.6f", result.Reference)
		}
		fmt.Printf("\"%s\",\"%s\",\"%.6f\",\"%.6e\",\"%d\",\"%s\",\"%s\",\"%s\"\n",
			result.Name, result.Method, result.Estimate.Price, result.Estimate.ErrBound,
			result.Estimate.Samples, result.Estimate.Elapsed, result.Estimate.Status, reference)
	}
}
