package output

import (
	"fmt"
	"io"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
)

// PrettyFormatter renders a boxed table with a rank column and a summary
// footer
type PrettyFormatter struct{}

func (f *PrettyFormatter) Format(report *Report, w io.Writer) error {
	if len(report.Pairs) == 0 {
		_, err := fmt.Fprintln(w, NoPairsMessage)
		return err
	}

	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleRounded)
	t.SetTitle(fmt.Sprintf("%s (%s mode, by %s)", report.Repository, report.Mode, report.Grouping))
	t.AppendHeader(table.Row{"#", "Developer", "Developer", "Shared"})

	for i, p := range report.Pairs {
		t.AppendRow(table.Row{i + 1, p.Pair.First, p.Pair.Second, p.Count})
	}

	t.AppendFooter(table.Row{"", "", "Commits", report.Commits})
	t.SetColumnConfigs([]table.ColumnConfig{
		{Number: 1, Align: text.AlignRight},
		{Number: 4, Align: text.AlignRight, AlignFooter: text.AlignRight},
	})

	t.Render()
	return nil
}
