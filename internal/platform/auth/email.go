package auth

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

// NormalizeEmail trims, applies NFKC and case-folds an address so that
// lookups do not depend on how the user typed it.
func NormalizeEmail(s string) string {
	// Caser は状態を持つので呼び出し毎に作る
	return cases.Fold().String(norm.NFKC.String(strings.TrimSpace(s)))
}
