package common

import (
	"path/filepath"
	"regexp"
	"strings"
)

var (
	trailingDigits = regexp.MustCompile(`\d+$`)
	separatorRuns  = regexp.MustCompile(`[\s_]+`)
	dashRuns       = regexp.MustCompile(`-{2,}`)
)

// NormalizeGroupKey derives the group key tying all excerpts, jobs and
// fragments of one source document together. Upstream filenames carry page or
// part suffixes ("tata-motor12.txt", "VBL-2023_3"), so the key is the filename
// with extension and trailing digits stripped, separators normalized to "-",
// and case folded. The same source document must always collapse to the same
// key; every downstream join depends on it.
func NormalizeGroupKey(filename string) string {
	name := filepath.Base(filename)
	if ext := filepath.Ext(name); ext != "" {
		name = strings.TrimSuffix(name, ext)
	}

	name = trailingDigits.ReplaceAllString(name, "")
	name = separatorRuns.ReplaceAllString(name, "-")
	name = dashRuns.ReplaceAllString(name, "-")
	name = strings.Trim(name, "-")

	return strings.ToLower(name)
}
