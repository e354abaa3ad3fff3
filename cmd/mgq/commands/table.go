package commands

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"moderngov/lib/platforms/moderngov/xmltree"

	"github.com/jedib0t/go-pretty/v6/table"
)

func newTable() table.Writer {
	t := table.NewWriter()
	t.SetStyle(table.StyleRounded)
	t.SetOutputMirror(os.Stdout)
	return t
}

// renderRecord prints every leaf of a record as a row, nested keys are
// joined with "/" and list items are numbered.
func renderRecord(record xmltree.Node) {
	if record.Len() == 0 {
		fmt.Println("No result found")
		return
	}

	t := newTable()
	t.AppendHeader(table.Row{"Field", "Value"})
	var walk func(prefix string, node xmltree.Node)
	walk = func(prefix string, node xmltree.Node) {
		switch node.Kind() {
		case xmltree.Mapping:
			for _, entry := range node.Entries() {
				walk(joinPath(prefix, entry.Key), entry.Value)
			}
		case xmltree.Sequence:
			for i, item := range node.Items() {
				walk(joinPath(prefix, strconv.Itoa(i)), item)
			}
		default:
			t.AppendRow(table.Row{prefix, node.String()})
		}
	}
	walk("", record)
	t.Render()
}

func joinPath(prefix, key string) string {
	if prefix == "" {
		return key
	}
	return prefix + "/" + key
}

func renderList(header table.Row, records []xmltree.Node, fields ...string) {
	t := newTable()
	t.AppendHeader(header)
	for _, record := range records {
		row := make(table.Row, len(fields))
		for i, field := range fields {
			row[i] = strings.TrimSpace(record.Field(field))
		}
		t.AppendRow(row)
	}
	t.AppendFooter(table.Row{fmt.Sprintf("%d total", len(records))})
	t.Render()
}
