package workbook

import (
	"regexp"
	"strings"
)

var sheetUnsafeRe = regexp.MustCompile(`[\[\]\*\?/:\\]`)

// XMLSafe drops characters the xlsx XML vocabulary cannot carry. Share
// pages occasionally smuggle control characters through tool output.
func XMLSafe(s string) string {
	var sb strings.Builder
	sb.Grow(len(s))
	for _, r := range s {
		if xmlChar(r) {
			sb.WriteRune(r)
		}
	}
	return sb.String()
}

func xmlChar(r rune) bool {
	switch r {
	case 0x9, 0xA, 0xD:
		return true
	}
	return (r >= 0x20 && r <= 0xD7FF) ||
		(r >= 0xE000 && r <= 0xFFFD) ||
		(r >= 0x10000 && r <= 0x10FFFF)
}

// SafeSheetTitle clamps a name to Excel's sheet-title rules: no
// []*?/:\ characters, 31 characters max, never empty.
func SafeSheetTitle(raw string) string {
	cleaned := strings.TrimSpace(sheetUnsafeRe.ReplaceAllString(raw, "_"))
	if cleaned == "" {
		cleaned = "Sheet1"
	}
	runes := []rune(cleaned)
	if len(runes) > 31 {
		runes = runes[:31]
	}
	return string(runes)
}
