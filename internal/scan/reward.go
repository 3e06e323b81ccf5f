package scan

import (
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

// rewardPattern matches a currency-style amount preceded by a dollar sign,
// with optional thousands separators and up to two decimal places.
var rewardPattern = regexp.MustCompile(`\$\s*(\d+(?:,\d{3})*(?:\.\d{2})?)`)

// ExtractReward pulls the first dollar amount out of free text. Returns zero
// when no amount is present or the match does not parse.
func ExtractReward(text string) decimal.Decimal {
	m := rewardPattern.FindStringSubmatch(text)
	if m == nil {
		return decimal.Zero
	}
	amount, err := decimal.NewFromString(strings.ReplaceAll(m[1], ",", ""))
	if err != nil {
		return decimal.Zero
	}
	return amount
}
