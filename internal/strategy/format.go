package strategy

import (
	"math"

	"github.com/dustin/go-humanize"
)

// NotAvailable is shown in place of a value the provider did not report.
const NotAvailable = "N/A"

func missing(v *float64) bool {
	return v == nil || math.IsNaN(*v) || math.IsInf(*v, 0)
}

// FormatNumber renders v with two decimals and thousands separators.
func FormatNumber(v *float64) string {
	if missing(v) {
		return NotAvailable
	}
	return humanize.FormatFloat("#,###.##", *v)
}

// FormatMoney renders v as a dollar amount.
func FormatMoney(v *float64) string {
	if missing(v) {
		return NotAvailable
	}
	if *v < 0 {
		return "-$" + humanize.FormatFloat("#,###.##", -*v)
	}
	return "$" + humanize.FormatFloat("#,###.##", *v)
}

// FormatBillions renders v in billions of dollars.
func FormatBillions(v *float64) string {
	if missing(v) {
		return NotAvailable
	}
	b := *v / 1e9
	return FormatMoney(&b) + "B"
}

// FormatMillions renders v in millions of dollars.
func FormatMillions(v *float64) string {
	if missing(v) {
		return NotAvailable
	}
	m := *v / 1e6
	return humanize.FormatFloat("#,###.##", m) + "M USD"
}

// FormatPercent renders a fraction such as 0.0123 as 1.23%.
func FormatPercent(v *float64) string {
	if missing(v) {
		return NotAvailable
	}
	return humanize.FormatFloat("#,###.##", *v*100) + "%"
}

// FormatRange renders "low - high".
func FormatRange(low, high *float64) string {
	if missing(low) || missing(high) {
		return NotAvailable
	}
	return FormatNumber(low) + " - " + FormatNumber(high)
}

// FormatFloat renders a possibly NaN indicator value.
func FormatFloat(v float64) string {
	return FormatNumber(&v)
}
