// Package currency converts between stored rupee amounts and the "lakhs"
// figures shown to people. One lakh is 100,000 rupees.
package currency

import (
	"math"
	"strconv"
)

// LakhsPerUnit is the number of rupees in one lakh.
const LakhsPerUnit = 100000

// LakhsToAmount converts a lakhs figure entered by a user into stored rupees.
func LakhsToAmount(lakhs float64) int64 {
	return int64(math.Round(lakhs * LakhsPerUnit))
}

// AmountToLakhs returns the amount in lakhs rounded to one decimal place.
func AmountToLakhs(amount int64) float64 {
	return math.Round(float64(amount)/LakhsPerUnit*10) / 10
}

// FormatLakhs renders an amount the way listings display it, e.g. "₹12.5L".
func FormatLakhs(amount int64) string {
	return "₹" + strconv.FormatFloat(AmountToLakhs(amount), 'f', 1, 64) + "L"
}

// RoundTo rounds v to the given number of decimal places.
func RoundTo(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}
