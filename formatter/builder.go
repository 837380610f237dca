package formatter

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"text/template"

	"github.com/fatih/color"

	tt "github.com/gnolang/tdce/internal/types"
)

var (
	headerStyle  = color.New(color.FgYellow, color.Bold)
	fileStyle    = color.New(color.FgCyan, color.Bold)
	lineStyle    = color.New(color.FgHiBlue, color.Bold)
	removedStyle = color.New(color.FgRed)
	summaryStyle = color.New(color.FgGreen, color.Bold)
	noStyle      = color.New(color.FgWhite)
)

const reportTemplate = `{{header .Filename}}
{{- range .Funcs}}
{{funcHeader .Func .Before .After .Passes}}
{{- range .Removed}}
{{removed .Pass .ID .Instr}}
{{- end}}
{{- end}}
{{summary .}}
`

var reportTmpl = template.Must(template.New("report").Funcs(template.FuncMap{
	"header":     header,
	"funcHeader": funcHeader,
	"removed":    removed,
	"summary":    summary,
}).Parse(reportTemplate))

// FormatReport renders a human readable report of one file.
func FormatReport(report tt.FileReport) string {
	var buf bytes.Buffer
	if err := reportTmpl.Execute(&buf, report); err != nil {
		return fmt.Sprintf("Error formatting report: %v", err)
	}
	return buf.String()
}

// FormatReports renders every report, one after the other.
func FormatReports(reports []tt.FileReport) string {
	var builder strings.Builder
	for _, r := range reports {
		builder.WriteString(FormatReport(r))
	}
	return builder.String()
}

// FormatJSON encodes reports keyed by file name.
func FormatJSON(reports []tt.FileReport) ([]byte, error) {
	byFile := make(map[string]tt.FileReport, len(reports))
	for _, r := range reports {
		byFile[r.Filename] = r
	}
	return json.Marshal(byFile)
}

func header(filename string) string {
	return lineStyle.Sprint("--> ") + fileStyle.Sprint(filename)
}

func funcHeader(name string, before, after, passes int) string {
	return headerStyle.Sprintf("func %s", name) +
		noStyle.Sprintf(": %d -> %d instructions in %d %s", before, after, passes, plural(passes, "pass", "passes"))
}

func removed(pass, id int, instr string) string {
	return lineStyle.Sprintf("  %4d | ", id) + removedStyle.Sprintf("- %s", instr) + noStyle.Sprintf("  (pass %d)", pass)
}

func summary(report tt.FileReport) string {
	n := report.RemovedCount()
	return summaryStyle.Sprintf("removed %d %s", n, plural(n, "instruction", "instructions"))
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}
