package console

import (
	"io"
	"vtts-analysis/internal/services"

	"github.com/olekukonko/tablewriter"
)

// RenderSummary prints the per-mode VTTS summary as an aligned table.
func RenderSummary(w io.Writer, sum services.Summary) {
	header, rows := services.SummaryTable(sum)

	table := tablewriter.NewWriter(w)
	table.SetHeader(header)
	table.SetAlignment(tablewriter.ALIGN_RIGHT)
	table.SetAutoFormatHeaders(false)
	table.AppendBulk(rows)
	table.Render()
}
