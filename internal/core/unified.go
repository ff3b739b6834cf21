package core

import (
	"fmt"
	"strings"

	"github.com/sergi/go-diff/diffmatchpatch"
)

// UnifiedDiff returns a single-hunk unified diff turning vaultText into
// localText, with a/ and b/ headers naming the snapshot and the local file.
// Env renderings are small, so the hunk spans the whole file. Equal inputs
// produce "".
func UnifiedDiff(snapshot, envFile, vaultText, localText string) string {
	if vaultText == localText {
		return ""
	}

	dmp := diffmatchpatch.New()

	// Line-mode diff for readable hunks
	a, b, lineArray := dmp.DiffLinesToChars(vaultText, localText)
	diffs := dmp.DiffMain(a, b, false)
	diffs = dmp.DiffCharsToLines(diffs, lineArray)

	var body strings.Builder
	oldLines, newLines := 0, 0
	for _, d := range diffs {
		prefix := " "
		switch d.Type {
		case diffmatchpatch.DiffDelete:
			prefix = "-"
		case diffmatchpatch.DiffInsert:
			prefix = "+"
		}
		for _, line := range splitLines(d.Text) {
			body.WriteString(prefix)
			body.WriteString(line)
			body.WriteByte('\n')
			if d.Type != diffmatchpatch.DiffInsert {
				oldLines++
			}
			if d.Type != diffmatchpatch.DiffDelete {
				newLines++
			}
		}
	}

	var result strings.Builder
	fmt.Fprintf(&result, "--- a/%s\n", snapshot)
	fmt.Fprintf(&result, "+++ b/%s\n", envFile)
	fmt.Fprintf(&result, "@@ -%s +%s @@\n", hunkRange(oldLines), hunkRange(newLines))
	result.WriteString(body.String())
	return result.String()
}

func hunkRange(n int) string {
	if n == 0 {
		return "0,0"
	}
	return fmt.Sprintf("1,%d", n)
}

// splitLines splits text into lines without their terminators
func splitLines(text string) []string {
	if text == "" {
		return nil
	}
	return strings.Split(strings.TrimSuffix(text, "\n"), "\n")
}
