package main

import (
	"strconv"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/ubbasel/emptyletters"
)

func newTable(header table.Row) table.Writer {
	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)
	tw.AppendHeader(header)
	return tw
}

// renderSummary shows the counts of a run.
func renderSummary(r emptyletters.Report) string {
	tw := newTable(table.Row{"Numbers", "Cached", "Fetched", "Created", "Failed"})
	tw.AppendRow(table.Row{
		strconv.Itoa(len(r.Results)),
		strconv.Itoa(r.Hits),
		strconv.Itoa(r.Fetches),
		strconv.Itoa(r.Created),
		strconv.Itoa(r.Failed),
	})
	configs := make([]table.ColumnConfig, 5)
	for i := range configs {
		configs[i] = table.ColumnConfig{Number: i + 1, Align: text.AlignRight, AlignHeader: text.AlignLeft}
	}
	tw.SetColumnConfigs(configs)
	return tw.Render()
}

// renderFailures lists every failed number with the kind of failure.
func renderFailures(failures []emptyletters.Result) string {
	tw := newTable(table.Row{"Number", "Kind", "Error"})
	for _, res := range failures {
		tw.AppendRow(table.Row{res.Number, emptyletters.Kind(res.Err), res.Err.Error()})
	}
	return tw.Render()
}
