package service

import (
	"html/template"
	"io"

	"github.com/ludo-technologies/a11yscan/domain"
)

// HTMLData represents the data for HTML template
type HTMLData struct {
	Result      *domain.CheckResult
	ShowDetails bool
	Impacts     []domain.Impact
}

var htmlFuncs = template.FuncMap{
	"impactClass": func(impact domain.Impact) string {
		return "impact-" + string(impact.Key())
	},
	"label": func(impact domain.Impact) string {
		return impact.Label()
	},
	"status": func(t domain.TargetResult) string {
		return statusString(&t)
	},
	"selector": selectorString,
	"countOf": func(counts map[domain.Impact]int, impact domain.Impact) int {
		return counts[impact]
	},
}

var reportTemplate = template.Must(template.New("report").Funcs(htmlFuncs).Parse(htmlTemplate))

// WriteHTML writes the check result as a standalone HTML page
func (f *OutputFormatterImpl) WriteHTML(result *domain.CheckResult, writer io.Writer) error {
	data := HTMLData{
		Result:      result,
		ShowDetails: f.ShowDetails,
		Impacts:     domain.KnownImpacts,
	}
	return reportTemplate.Execute(writer, data)
}

const htmlTemplate = `<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="UTF-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    <title>a11yscan Accessibility Report</title>
    <style>
        * { margin: 0; padding: 0; box-sizing: border-box; }
        body {
            font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, 'Helvetica Neue', Arial, sans-serif;
            line-height: 1.6;
            color: #333;
            background: linear-gradient(135deg, #667eea 0%, #764ba2 100%);
            min-height: 100vh;
        }
        main {
            max-width: 1200px;
            margin: 0 auto;
            padding: 20px;
        }
        .card {
            background: white;
            border-radius: 10px;
            padding: 30px;
            margin-bottom: 20px;
            box-shadow: 0 10px 30px rgba(0,0,0,0.1);
        }
        h1 { color: #4a4fb8; margin-bottom: 10px; }
        h2 { margin-bottom: 12px; word-break: break-all; }
        .subtitle { color: #555; font-size: 14px; }
        .badge {
            display: inline-block;
            padding: 6px 14px;
            border-radius: 16px;
            font-size: 13px;
            font-weight: 700;
            color: white;
        }
        .status-PASS { background: #2e7d32; }
        .status-FAIL { background: #c62828; }
        .status-ERROR { background: #6d4c41; }

        .metric-grid {
            display: grid;
            grid-template-columns: repeat(auto-fit, minmax(160px, 1fr));
            gap: 20px;
            margin: 20px 0;
        }
        .metric-card {
            background: #f8f9fa;
            padding: 20px;
            border-radius: 8px;
            text-align: center;
        }
        .metric-value { font-size: 32px; font-weight: bold; color: #4a4fb8; }
        .metric-label { color: #555; margin-top: 5px; }

        table { width: 100%; border-collapse: collapse; margin: 20px 0; }
        th, td { padding: 12px; text-align: left; border-bottom: 1px solid #ddd; vertical-align: top; }
        th { background: #f8f9fa; font-weight: 600; }
        code { font-size: 12px; word-break: break-all; }

        .impact-critical { color: #b71c1c; font-weight: 700; }
        .impact-serious { color: #d84315; font-weight: 700; }
        .impact-moderate { color: #8d6e00; }
        .impact-minor { color: #1565c0; }
        .impact-unknown { color: #555; }
    </style>
</head>
<body>
<main>
    <div class="card">
        <h1>a11yscan Accessibility Report</h1>
        <p class="subtitle">Generated: {{.Result.GeneratedAt}} | Duration: {{.Result.Duration}}ms | Version: {{.Result.Version}} | Run: {{.Result.RunID}}</p>
        <div class="metric-grid">
            <div class="metric-card">
                <div class="metric-value">{{.Result.Summary.TargetsAudited}}</div>
                <div class="metric-label">Targets</div>
            </div>
            <div class="metric-card">
                <div class="metric-value">{{.Result.Summary.TargetsPassed}}</div>
                <div class="metric-label">Passed</div>
            </div>
            <div class="metric-card">
                <div class="metric-value">{{.Result.Summary.TotalViolations}}</div>
                <div class="metric-label">Violations</div>
            </div>
            <div class="metric-card">
                <div class="metric-value">{{.Result.Summary.TotalScore}}</div>
                <div class="metric-label">Severity score</div>
            </div>
            {{range .Impacts}}
            <div class="metric-card">
                <div class="metric-value {{impactClass .}}">{{countOf $.Result.Summary.ViolationsByImpact .}}</div>
                <div class="metric-label">{{label .}}</div>
            </div>
            {{end}}
        </div>
    </div>

    {{range .Result.Targets}}
    {{$status := status .}}
    <section class="card">
        <h2>{{.Target}} <span class="badge status-{{$status}}">{{$status}}</span></h2>
        {{if and .Error (not .PolicyFailure)}}
        <p>{{.Error}}</p>
        {{else if .Report}}
        <p class="subtitle">Score: {{.Report.SeverityScore}} | Passes: {{.Report.PassCount}} | Incomplete: {{.Report.IncompleteCount}} | Engine: {{.Report.TestEngine.Name}} {{.Report.TestEngine.Version}}</p>
        {{if .Report.Findings}}
        <table>
            <thead>
                <tr><th>Impact</th><th>Rule</th><th>Description</th><th>Nodes</th></tr>
            </thead>
            <tbody>
            {{range .Report.Findings}}
                <tr>
                    <td class="{{impactClass .Impact}}">{{label .Impact}}</td>
                    <td><a href="{{.HelpURL}}">{{.ID}}</a></td>
                    <td>{{.Description}}</td>
                    <td>
                    {{if $.ShowDetails}}
                        {{range .Nodes}}<div><code>{{selector .Target}}</code><br><code>{{.HTML}}</code></div>{{end}}
                    {{else}}
                        {{len .Nodes}}
                    {{end}}
                    </td>
                </tr>
            {{end}}
            </tbody>
        </table>
        {{end}}
        {{end}}
    </section>
    {{end}}
</main>
</body>
</html>
`
