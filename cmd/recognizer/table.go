package main

import (
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"recognizer/internal/api"
	"recognizer/internal/queue"
)

type columnAlignment int

const (
	alignLeft columnAlignment = iota
	alignRight
)

func renderTable(headers []string, rows [][]string, aligns []columnAlignment) string {
	columns := len(headers)
	if columns == 0 {
		return ""
	}

	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)

	header := make(table.Row, columns)
	for i := 0; i < columns; i++ {
		header[i] = headers[i]
	}
	tw.AppendHeader(header)

	for _, row := range rows {
		r := make(table.Row, columns)
		for i := 0; i < columns; i++ {
			if i < len(row) {
				r[i] = row[i]
			} else {
				r[i] = ""
			}
		}
		tw.AppendRow(r)
	}

	columnConfigs := make([]table.ColumnConfig, 0, columns)
	for i := 0; i < columns; i++ {
		align := text.AlignLeft
		if i < len(aligns) && aligns[i] == alignRight {
			align = text.AlignRight
		}
		columnConfigs = append(columnConfigs, table.ColumnConfig{
			Number:      i + 1,
			Align:       align,
			AlignHeader: text.AlignLeft,
		})
	}
	tw.SetColumnConfigs(columnConfigs)

	return tw.Render() + "\n"
}

// renderRows draws the row table, newest first, coloring status cells when
// colorize is set.
func renderRows(rows []api.Row, colorize bool) string {
	data := make([][]string, 0, len(rows))
	for _, row := range rows {
		data = append(data, []string{
			formatID(row.ID),
			statusCell(row.Status, colorize),
			row.DisplayName,
			row.Message,
		})
	}
	return renderTable(
		[]string{"ID", "Status", "Title", "Message"},
		data,
		[]columnAlignment{alignRight, alignLeft, alignLeft, alignLeft},
	)
}

func statusCell(status string, colorize bool) string {
	if !colorize {
		return status
	}
	var colors text.Colors
	switch queue.Status(status) {
	case queue.StatusQueued:
		colors = text.Colors{text.FgBlue}
	case queue.StatusProcessing:
		colors = text.Colors{text.FgYellow}
	case queue.StatusFailed:
		colors = text.Colors{text.FgRed}
	case queue.StatusSucceeded:
		colors = text.Colors{text.FgGreen}
	default:
		return status
	}
	return colors.Sprint(status)
}
