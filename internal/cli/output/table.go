package output

import (
	"io"
	"strings"

	"github.com/olekukonko/tablewriter"
)

// TableRenderer is implemented by types that can render themselves as a
// table.
type TableRenderer interface {
	Headers() []string
	Rows() [][]string
}

// PrintTable writes data as a formatted table to w.
func PrintTable(w io.Writer, data TableRenderer) error {
	table := tablewriter.NewWriter(w)
	table.SetHeader(data.Headers())

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

	for _, row := range data.Rows() {
		table.Append(row)
	}

	table.Render()
	return nil
}

// TableData is an ad-hoc TableRenderer for commands with no dedicated type.
type TableData struct {
	headers []string
	rows    [][]string
}

func NewTableData(headers ...string) *TableData {
	return &TableData{headers: headers, rows: make([][]string, 0)}
}

func (t *TableData) AddRow(row ...string) { t.rows = append(t.rows, row) }
func (t *TableData) Headers() []string    { return t.headers }
func (t *TableData) Rows() [][]string     { return t.rows }

// SimpleTable prints a borderless key:value table, used for single-record
// views like INFO.
func SimpleTable(w io.Writer, pairs [][2]string) error {
	table := tablewriter.NewWriter(w)

	table.SetAutoWrapText(false)
	table.SetAutoFormatHeaders(false)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetCenterSeparator("")
	table.SetColumnSeparator(":")
	table.SetRowSeparator("")
	table.SetHeaderLine(false)
	table.SetBorder(false)
	table.SetTablePadding("  ")
	table.SetNoWhiteSpace(true)

	for _, pair := range pairs {
		table.Append([]string{pair[0], pair[1]})
	}

	table.Render()
	return nil
}

// FileListing renders VIEW's response payload as a table. Without
// "--long" the payload is bare file names, one per line; with it, each
// line is "name\towner\twords\tmodified_at" — see
// pkg/coordinator/handlers_catalog.go's renderListing for the format
// this must stay in sync with.
type FileListing struct {
	lines []string
	long  bool
}

// ParseFileListing splits a VIEW response payload into a FileListing.
func ParseFileListing(payload string, long bool) FileListing {
	payload = strings.TrimRight(payload, "\n")
	if payload == "" {
		return FileListing{long: long}
	}
	return FileListing{lines: strings.Split(payload, "\n"), long: long}
}

func (f FileListing) Headers() []string {
	if f.long {
		return []string{"Name", "Owner", "Words", "Modified At"}
	}
	return []string{"Name"}
}

func (f FileListing) Rows() [][]string {
	rows := make([][]string, 0, len(f.lines))
	for _, line := range f.lines {
		if !f.long {
			rows = append(rows, []string{line})
			continue
		}
		fields := strings.Split(line, "\t")
		for len(fields) < 4 {
			fields = append(fields, "")
		}
		rows = append(rows, fields[:4])
	}
	return rows
}

// AccessRequestListing renders VIEWREQUESTS' "file\trequester\tperm\trequested_at"
// lines, matching pkg/coordinator/handlers_access.go's handleViewRequests.
type AccessRequestListing struct {
	lines []string
}

func ParseAccessRequestListing(payload string) AccessRequestListing {
	payload = strings.TrimRight(payload, "\n")
	if payload == "" {
		return AccessRequestListing{}
	}
	return AccessRequestListing{lines: strings.Split(payload, "\n")}
}

func (a AccessRequestListing) Headers() []string {
	return []string{"File", "Requester", "Perm", "Requested At"}
}

func (a AccessRequestListing) Rows() [][]string {
	rows := make([][]string, 0, len(a.lines))
	for _, line := range a.lines {
		fields := strings.Split(line, "\t")
		for len(fields) < 4 {
			fields = append(fields, "")
		}
		rows = append(rows, fields[:4])
	}
	return rows
}

// CheckpointListing renders LISTCHECKPOINTS' "tag\tcreated_at" lines.
type CheckpointListing struct {
	lines []string
}

func ParseCheckpointListing(payload string) CheckpointListing {
	payload = strings.TrimRight(payload, "\n")
	if payload == "" {
		return CheckpointListing{}
	}
	return CheckpointListing{lines: strings.Split(payload, "\n")}
}

func (c CheckpointListing) Headers() []string { return []string{"Tag", "Created At"} }

func (c CheckpointListing) Rows() [][]string {
	rows := make([][]string, 0, len(c.lines))
	for _, line := range c.lines {
		fields := strings.Split(line, "\t")
		for len(fields) < 2 {
			fields = append(fields, "")
		}
		rows = append(rows, fields[:2])
	}
	return rows
}

// Counters renders a "words,chars,sentences" payload (WRITE/INFO
// responses) as a key:value table.
func Counters(w io.Writer, payload string) error {
	parts := strings.SplitN(payload, ",", 3)
	for len(parts) < 3 {
		parts = append(parts, "0")
	}
	return SimpleTable(w, [][2]string{
		{"Words", parts[0]},
		{"Chars", parts[1]},
		{"Sentences", parts[2]},
	})
}
