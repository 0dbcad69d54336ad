package csr

import (
	"fmt"
	"io"
	"strconv"

	"github.com/olekukonko/tablewriter"
)

// Dump writes a diagnostic rendering of all levels to w, one table row per
// node. label translates token ids for display; it may be nil.
//
// The output is meant for humans and is not a stable format.
func (l *Levels) Dump(w io.Writer, label func(int32) string) {
	if label == nil {
		label = func(id int32) string { return strconv.Itoa(int(id)) }
	}
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"depth", "index", "token", "id", "count", "children"})
	table.SetAutoWrapText(false)
	for d := 1; d <= l.Depth(); d++ {
		ids, counts := l.IDs[d-1], l.Counts[d-1]
		for i := range ids {
			children := "-"
			if d < len(l.Pointers) {
				low, high := l.Span(d, i)
				children = fmt.Sprintf("[%d,%d)", low, high)
			}
			table.Append([]string{
				strconv.Itoa(d),
				strconv.Itoa(i),
				label(ids[i]),
				strconv.Itoa(int(ids[i])),
				strconv.FormatUint(uint64(counts[i]), 10),
				children,
			})
		}
	}
	table.Render()
}

// String renders the raw arrays, level by level.
func (l *Levels) String() string {
	s := ""
	for d := 1; d <= l.Depth(); d++ {
		s += fmt.Sprintf("ID%d: %v\n", d, l.IDs[d-1])
		s += fmt.Sprintf("PT%d: %v\n", d-1, l.Pointers[d-1])
		s += fmt.Sprintf("CN%d: %v\n", d, l.Counts[d-1])
	}
	return s
}
