package ui

import (
	"fmt"
	"io"

	"github.com/dustin/go-humanize"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/substantialcattle5/bulkmv/internal/rename"
)

// Preview renders the pending renames of a plan as a table. At most limit
// rows are shown; limit <= 0 shows all.
func Preview(w io.Writer, plan *rename.Plan, limit int) {
	tbl := table.NewWriter()
	tbl.SetOutputMirror(w)
	tbl.SetStyle(table.StyleLight)
	tbl.Style().Options.DrawBorder = false
	tbl.Style().Options.SeparateColumns = false
	tbl.Style().Format.Footer = text.FormatDefault
	tbl.AppendHeader(table.Row{"#", "Old", "", "New"})

	shown := 0
	for old, next := range plan.Changed() {
		if limit > 0 && shown == limit {
			break
		}
		shown++
		tbl.AppendRow(table.Row{shown, old, "→", next})
	}
	for _, d := range plan.Discarded {
		tbl.AppendRow(table.Row{"", d.Path, "✗", "(duplicate, removed)"})
	}

	footer := fmt.Sprintf("%s changes", humanize.Comma(int64(plan.Changes)))
	if shown < plan.Changes {
		footer += fmt.Sprintf(", %s not shown", humanize.Comma(int64(plan.Changes-shown)))
	}
	tbl.AppendFooter(table.Row{"", footer})
	tbl.Render()
}
