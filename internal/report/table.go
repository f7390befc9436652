package report

import (
	"fmt"
	"io"
	"strconv"

	"github.com/olekukonko/tablewriter"
)

func newTable(w io.Writer, headers ...string) *tablewriter.Table {
	table := tablewriter.NewWriter(w)
	table.SetHeader(headers)

	table.SetAutoWrapText(false)
	table.SetAutoFormatHeaders(true)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetCenterSeparator("")
	table.SetColumnSeparator("")
	table.SetRowSeparator("")
	table.SetHeaderLine(false)
	table.SetBorder(false)
	table.SetTablePadding("  ")
	table.SetNoWhiteSpace(true)
	return table
}

func writeTables(w io.Writer, r *Report) error {
	fmt.Fprintf(w, "Path: %s  Unit: %d bytes  Items: %d  Duplicates: %d\n\n",
		r.Path, r.UnitSize, r.Items, r.Duplicates)

	summary := newTable(w, "Outcome", "Bytes", "MiB", "Pages")
	summary.Append([]string{"total", u64(r.Total.Bytes), u64(r.Total.MiB), u64(r.Total.Pages)})
	summary.Append([]string{"evicted", u64(r.Evicted.Bytes), u64(r.Evicted.MiB), u64(r.Evicted.Pages)})
	for _, ra := range r.Rejected {
		summary.Append([]string{string(ra.Reason), u64(ra.Bytes), u64(ra.MiB), u64(ra.Pages)})
	}
	summary.Render()

	if len(r.FolioRefcounts) > 0 {
		fmt.Fprintln(w)
		refs := newTable(w, "Folio Refcount", "Count")
		for _, b := range r.FolioRefcounts {
			refs.Append([]string{strconv.Itoa(b.Refcount), u64(b.Count)})
		}
		refs.Render()
	}

	if len(r.EBRefcounts) > 0 {
		fmt.Fprintln(w)
		refs := newTable(w, "EB Refcount", "Count")
		for _, b := range r.EBRefcounts {
			refs.Append([]string{strconv.Itoa(b.Refcount), u64(b.Count)})
		}
		refs.Render()
	}

	if len(r.FlagCounts) > 0 {
		fmt.Fprintln(w)
		flags := newTable(w, "Flag", "Count")
		for _, b := range r.FlagCounts {
			flags.Append([]string{b.Flags, u64(b.Count)})
		}
		flags.Render()
	}

	fmt.Fprintln(w)
	if r.Accounting != "ok" {
		_, err := fmt.Fprintf(w, "Mismatched amounts! %s\n", r.Accounting)
		return err
	}
	_, err := fmt.Fprintln(w, "Accounting: ok")
	return err
}
