package pdftext

import (
	"regexp"
	"strings"
)

var showTextPattern = regexp.MustCompile(`\(([^)]+)\)\s*Tj`)

// ScanShowText pulls the operands of literal `(...) Tj` operators straight out
// of the raw file. It ignores compression and font encodings, so it only
// works on simple uncompressed documents. No match yields "".
func ScanShowText(data []byte) string {
	matches := showTextPattern.FindAllSubmatch(data, -1)
	parts := make([]string, 0, len(matches))
	for _, m := range matches {
		parts = append(parts, string(m[1]))
	}
	return strings.TrimSpace(strings.Join(parts, " "))
}
