package main

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/olekukonko/tablewriter"

	"github.com/ekisa-team/shadowsmith/internal/nn"
)

func renderTable(w io.Writer, header []string, data [][]string) {
	table := tablewriter.NewWriter(w)
	table.SetHeader(header)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetHeaderLine(false)
	table.SetBorder(false)
	table.SetNoWhiteSpace(true)
	table.SetTablePadding("    ")
	table.AppendBulk(data)
	table.Render()
}

func renderParameters(w io.Writer, m nn.Module) {
	var data [][]string
	for _, p := range m.Parameters() {
		data = append(data, []string{p.Name, formatShape(p.Shape), strconv.Itoa(p.NumElements())})
	}
	renderTable(w, []string{"NAME", "SHAPE", "PARAMS"}, data)
	fmt.Fprintf(w, "\ntotal parameters: %d\n", nn.CountParameters(m))
}

func formatShape(shape []int) string {
	dims := make([]string, len(shape))
	for i, d := range shape {
		dims[i] = strconv.Itoa(d)
	}
	return "[" + strings.Join(dims, " ") + "]"
}
