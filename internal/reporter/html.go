package reporter

import (
	"fmt"
	"html/template"
	"os"

	"github.com/vnykmshr/apiprobe/internal/domain"
)

// GenerateHTML writes an HTML rendering of the report for results and returns the written path.
func (r *Reporter) GenerateHTML(results []domain.Result, filename string) (string, error) {
	report := BuildReport(results, r.now())

	t, err := template.New("report").Funcs(template.FuncMap{
		"deref":       derefOr,
		"statusClass": statusClass,
		"passRate":    passRateClass,
	}).Parse(htmlTemplate)
	if err != nil {
		return "", fmt.Errorf("parsing template: %w", err)
	}

	outputPath, err := r.prepare(filename)
	if err != nil {
		return "", err
	}

	file, err := os.OpenFile(outputPath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o600) //nolint:gosec // G304: path is built from the configured reports dir
	if err != nil {
		return "", fmt.Errorf("creating output file: %w", err)
	}
	defer func() {
		_ = file.Close()
	}()

	if err := t.Execute(file, report); err != nil {
		return "", fmt.Errorf("executing template: %w", err)
	}

	r.logger.Info("HTML report generated", "path", outputPath)
	return outputPath, nil
}

// derefOr renders an optional report field, "-" when null.
func derefOr(v any) string {
	switch val := v.(type) {
	case *string:
		if val != nil {
			return *val
		}
	case *int:
		if val != nil {
			return fmt.Sprint(*val)
		}
	case *int64:
		if val != nil {
			return fmt.Sprint(*val)
		}
	}
	return "-"
}

func statusClass(s domain.Status) string {
	if s == domain.StatusPass {
		return "pass"
	}
	return "fail"
}

func passRateClass(rate int) string {
	switch {
	case rate >= 90:
		return "success-high"
	case rate >= 70:
		return "success-medium"
	default:
		return "success-low"
	}
}

const htmlTemplate = `<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="UTF-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    <title>API Test Report</title>
    <style>
        * { margin: 0; padding: 0; box-sizing: border-box; }
        body { font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, sans-serif; line-height: 1.6; color: #333; background: #f5f7fa; }
        .container { max-width: 1200px; margin: 0 auto; padding: 20px; }
        .header { background: linear-gradient(135deg, #667eea 0%, #764ba2 100%); color: white; padding: 30px; border-radius: 12px; margin-bottom: 30px; }
        .header h1 { font-size: 2.2em; margin-bottom: 10px; }
        .stats-grid { display: grid; grid-template-columns: repeat(auto-fit, minmax(200px, 1fr)); gap: 20px; margin-bottom: 30px; }
        .stat-card { background: white; padding: 25px; border-radius: 12px; box-shadow: 0 5px 15px rgba(0,0,0,0.08); border-left: 4px solid #667eea; }
        .stat-card h3 { color: #667eea; font-size: 0.9em; text-transform: uppercase; letter-spacing: 1px; margin-bottom: 10px; }
        .stat-card .value { font-size: 2em; font-weight: bold; color: #2d3748; }
        .section { background: white; margin-bottom: 30px; border-radius: 12px; overflow: hidden; box-shadow: 0 5px 15px rgba(0,0,0,0.08); }
        .section-header { background: #f8f9fa; padding: 20px; border-bottom: 1px solid #e2e8f0; }
        .section-content { padding: 20px; }
        .table { width: 100%; border-collapse: collapse; }
        .table th, .table td { padding: 12px; text-align: left; border-bottom: 1px solid #e2e8f0; vertical-align: top; }
        .table th { background: #f8f9fa; font-weight: 600; color: #4a5568; }
        .pass { color: #48bb78; font-weight: bold; }
        .fail { color: #f56565; font-weight: bold; }
        .assertions { list-style: none; font-size: 0.85em; }
        .success-high { color: #48bb78; }
        .success-medium { color: #ed8936; }
        .success-low { color: #f56565; }
    </style>
</head>
<body>
    <div class="container">
        <div class="header">
            <h1>API Test Report</h1>
            <p>Generated on {{.Summary.GeneratedAt.Format "2006-01-02 15:04:05 MST"}}</p>
        </div>

        <div class="stats-grid">
            <div class="stat-card"><h3>Total Tests</h3><div class="value">{{.Summary.TotalTests}}</div></div>
            <div class="stat-card"><h3>Passed</h3><div class="value pass">{{.Summary.PassedTests}}</div></div>
            <div class="stat-card"><h3>Failed</h3><div class="value fail">{{.Summary.FailedTests}}</div></div>
            <div class="stat-card"><h3>Pass Rate</h3><div class="value {{passRate .Summary.PassRate}}">{{.Summary.PassRate}}%</div></div>
            <div class="stat-card"><h3>Avg Response Time</h3><div class="value">{{.Summary.AverageResponseTime}} ms</div></div>
        </div>

        <div class="section">
            <div class="section-header"><h2>Tests</h2></div>
            <div class="section-content">
                <table class="table">
                    <thead>
                        <tr><th>Name</th><th>Status</th><th>Method</th><th>Code</th><th>Time (ms)</th><th>Details</th></tr>
                    </thead>
                    <tbody>
                        {{range .Tests}}
                        <tr>
                            <td>{{.Name}}<br><small>{{.URL}}</small></td>
                            <td class="{{statusClass .Status}}">{{.Status}}</td>
                            <td>{{deref .Method}}</td>
                            <td>{{deref .StatusCode}}</td>
                            <td>{{if .Performance}}avg {{.Performance.AverageTime}} (min {{.Performance.MinTime}}, max {{.Performance.MaxTime}}){{else}}{{deref .ResponseTime}}{{end}}</td>
                            <td>
                                {{if .Error}}<div class="fail">{{deref .Error}}</div>{{end}}
                                {{if .Performance}}<div>{{.Performance.SuccessCount}}/{{.Performance.Iterations}} attempts succeeded{{if .Performance.Interrupted}}, interrupted{{end}}</div>{{end}}
                                <ul class="assertions">
                                    {{range .Assertions}}<li class="{{if .Passed}}pass{{else}}fail{{end}}">{{.Name}}{{if .Error}}: {{.Error}}{{end}}</li>{{end}}
                                </ul>
                            </td>
                        </tr>
                        {{end}}
                    </tbody>
                </table>
            </div>
        </div>
    </div>
</body>
</html>`
