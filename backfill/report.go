package backfill

import (
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
)

// RenderSummary formats the run statistics and validation results as tables
// for the CLI.
func RenderSummary(stats *Stats, checks []ValidationCheck, apply bool) string {
	var b strings.Builder

	mode := "DRY RUN"
	if apply {
		mode = "APPLY"
	}

	tw := table.NewWriter()
	tw.SetTitle("Backfill Summary (" + mode + ")")
	tw.AppendHeader(table.Row{"Metric", "Count"})
	tw.AppendRows([]table.Row{
		{"Legacy rows", stats.LegacyRows},
		{"Unique addresses", stats.UniqueAddresses},
		{"Properties created", stats.PropertiesCreated},
		{"Distress events created", stats.DistressEventsCreated},
		{"Contacts created", stats.ContactsCreated},
		{"Property-contact links", stats.PropertyContactsCreated},
		{"Pipeline rows", stats.LeadPipelineCreated},
		{"Soft errors", len(stats.Errors)},
	})
	tw.SetStyle(table.StyleLight)
	b.WriteString(tw.Render())
	b.WriteString("\n")

	if len(checks) > 0 {
		vw := table.NewWriter()
		vw.SetTitle("Validation")
		vw.AppendHeader(table.Row{"Check", "Expected", "Actual", "Result"})
		for _, c := range checks {
			result := text.FgGreen.Sprint("PASS")
			if !c.Passed {
				result = text.FgRed.Sprint("FAIL")
			}
			vw.AppendRow(table.Row{c.Name, c.Expected, c.Actual, result})
		}
		vw.SetStyle(table.StyleLight)
		b.WriteString(vw.Render())
		b.WriteString("\n")
	}

	for _, e := range stats.Errors {
		b.WriteString("  error: " + e + "\n")
	}

	return b.String()
}
