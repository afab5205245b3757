package report

import (
	"bytes"
	"fmt"
	"html/template"
	"strings"

	"github.com/JohannesKaufmann/html-to-markdown/v2/converter"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/base"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/commonmark"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/table"

	"github.com/richard-senior/goalclock/pkg/goals"
)

// Output formats understood by Render
const (
	FormatText     = "text"
	FormatJSON     = "json"
	FormatMarkdown = "markdown"
	FormatHTML     = "html"
)

var resultTemplate = template.Must(template.New("result").Funcs(template.FuncMap{
	"pct":  Percent,
	"fix2": func(v float64) string { return fmt.Sprintf("%.2f", v) },
	"line": func(v float64) string { return fmt.Sprintf("%g", v) },
}).Parse(`<section class="results">
<h2>Results</h2>
<p><strong>Over {{line .Request.Line}} probability (adjusted):</strong> {{pct .POver}}</p>
<p><strong>Bookmaker margin:</strong> {{pct .Overround}}</p>
<p><strong>Expected goals (λ):</strong> {{fix2 .Lambda}}</p>
<table>
<thead><tr><th>Goal</th><th>Mean (min)</th><th>Median (min)</th></tr></thead>
<tbody>
{{- range .Times}}
<tr><td>{{.Goal}}</td><td>{{fix2 .MeanMinute}}</td><td>{{fix2 .MedianMinute}}</td></tr>
{{- end}}
</tbody>
</table>
</section>`))

// Percent formats a probability the way the results panel shows it, eg 45.45%
func Percent(p float64) string {
	return fmt.Sprintf("%.2f%%", p*100)
}

// HTML renders the results panel as an HTML fragment
func HTML(res *goals.Result) (template.HTML, error) {
	var buf bytes.Buffer
	if err := resultTemplate.Execute(&buf, res); err != nil {
		return "", fmt.Errorf("render results: %w", err)
	}
	return template.HTML(buf.String()), nil
}

// Markdown renders the results panel as markdown, converted from the HTML fragment
func Markdown(res *goals.Result) (string, error) {
	fragment, err := HTML(res)
	if err != nil {
		return "", err
	}
	conv := converter.NewConverter(
		converter.WithPlugins(
			base.NewBasePlugin(),
			commonmark.NewCommonmarkPlugin(),
			table.NewTablePlugin(),
		),
	)
	md, err := conv.ConvertString(string(fragment))
	if err != nil {
		return "", fmt.Errorf("convert results to markdown: %w", err)
	}
	return strings.TrimSpace(md), nil
}

// Text renders the results panel as an aligned plain text table
func Text(res *goals.Result) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Over %g probability (adjusted): %s\n", res.Request.Line, Percent(res.POver))
	fmt.Fprintf(&sb, "Bookmaker margin:               %s\n", Percent(res.Overround))
	fmt.Fprintf(&sb, "Expected goals (λ):             %.2f\n\n", res.Lambda)
	fmt.Fprintf(&sb, "%-6s %12s %14s\n", "Goal", "Mean (min)", "Median (min)")
	for _, gt := range res.Times {
		fmt.Fprintf(&sb, "%-6d %12.2f %14.2f\n", gt.Goal, gt.MeanMinute, gt.MedianMinute)
	}
	return sb.String()
}
