package output

import (
	"fmt"
	"io"
	"strings"
	"unicode/utf8"
)

const pairHeader = "Developer Pair"

// TableFormatter prints the plain aligned table:
//
//	Developer Pair                  | Count
//	--------------------------------------------
//	Alice & Bob                     |     5
type TableFormatter struct{}

func (f *TableFormatter) Format(report *Report, w io.Writer) error {
	if len(report.Pairs) == 0 {
		_, err := fmt.Fprintln(w, NoPairsMessage)
		return err
	}

	// Widths are in code points, as fmt pads.
	longest := utf8.RuneCountInString(pairHeader)
	for _, p := range report.Pairs {
		longest = max(longest, utf8.RuneCountInString(p.Pair.First), utf8.RuneCountInString(p.Pair.Second))
	}
	width := longest*2 + 3

	var b strings.Builder
	fmt.Fprintf(&b, "%-*s | %5s\n", width, pairHeader, "Count")
	b.WriteString(strings.Repeat("-", longest*2+14))
	b.WriteByte('\n')
	for _, p := range report.Pairs {
		fmt.Fprintf(&b, "%-*s | %5d\n", width, p.Pair.String(), p.Count)
	}

	_, err := io.WriteString(w, b.String())
	return err
}
