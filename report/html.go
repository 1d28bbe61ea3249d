package report

import (
	"html/template"
	"io"
)

// RenderHTML writes the report payload as a standalone HTML page.
func RenderHTML(w io.Writer, data *Data) error {
	return htmlReportTemplate.Execute(w, data)
}

// rateClass maps a pass rate to the card accent used in the report.
func rateClass(rate float64) string {
	switch {
	case rate > 90:
		return "success"
	case rate > 70:
		return "warning"
	default:
		return "danger"
	}
}

// similarityClass maps a similarity score to the fill colour of its bar.
func similarityClass(similarity float64) string {
	switch {
	case similarity < 90:
		return "danger"
	case similarity < 95:
		return "warning"
	default:
		return ""
	}
}

var htmlReportTemplate = template.Must(template.New("report").Funcs(template.FuncMap{
	"rateClass":       rateClass,
	"similarityClass": similarityClass,
}).Parse(`<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="UTF-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    <title>Visual Test Report - {{.Metadata.SessionID}}</title>
    <style>
        body {
            font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, sans-serif;
            margin: 0;
            padding: 20px;
            background-color: #f5f5f5;
        }
        .container {
            max-width: 1200px;
            margin: 0 auto;
            background: white;
            border-radius: 8px;
            box-shadow: 0 2px 10px rgba(0,0,0,0.1);
            overflow: hidden;
        }
        .header {
            background: linear-gradient(135deg, #667eea 0%, #764ba2 100%);
            color: white;
            padding: 30px;
            text-align: center;
        }
        .header h1 { margin: 0; font-size: 2.5em; font-weight: 300; }
        .header p { margin: 10px 0 0; opacity: 0.9; }
        .content { padding: 30px; }
        .metrics-grid {
            display: grid;
            grid-template-columns: repeat(auto-fit, minmax(250px, 1fr));
            gap: 20px;
            margin-bottom: 30px;
        }
        .metric-card {
            background: #f8f9fa;
            padding: 20px;
            border-radius: 6px;
            border-left: 4px solid #007bff;
        }
        .metric-card.success { border-left-color: #28a745; }
        .metric-card.warning { border-left-color: #ffc107; }
        .metric-card.danger { border-left-color: #dc3545; }
        .metric-value { font-size: 2em; font-weight: bold; color: #333; }
        .metric-label { color: #666; font-size: 0.9em; margin-top: 5px; }
        .section { margin-bottom: 40px; }
        .section h2 {
            color: #333;
            border-bottom: 2px solid #eee;
            padding-bottom: 10px;
            margin-bottom: 20px;
        }
        .test-results { overflow-x: auto; }
        .test-table { width: 100%; border-collapse: collapse; margin-top: 20px; }
        .test-table th, .test-table td {
            padding: 12px;
            text-align: left;
            border-bottom: 1px solid #ddd;
        }
        .test-table th { background-color: #f8f9fa; font-weight: 600; }
        .status-badge {
            padding: 4px 8px;
            border-radius: 4px;
            font-size: 0.8em;
            font-weight: bold;
            text-transform: uppercase;
        }
        .status-passed { background-color: #d4edda; color: #155724; }
        .status-failed { background-color: #f8d7da; color: #721c24; }
        .status-error { background-color: #fff3cd; color: #856404; }
        .similarity-bar {
            width: 100px;
            height: 20px;
            background-color: #e9ecef;
            border-radius: 10px;
            overflow: hidden;
            position: relative;
        }
        .similarity-fill { height: 100%; background-color: #28a745; }
        .similarity-fill.warning { background-color: #ffc107; }
        .similarity-fill.danger { background-color: #dc3545; }
        .similarity-text {
            position: absolute;
            top: 0;
            left: 0;
            width: 100%;
            height: 100%;
            display: flex;
            align-items: center;
            justify-content: center;
            font-size: 0.7em;
            font-weight: bold;
            color: white;
            text-shadow: 1px 1px 1px rgba(0,0,0,0.5);
        }
        .detail-row td {
            background-color: #f8f9fa;
            font-size: 0.9em;
        }
        .footer {
            background-color: #f8f9fa;
            padding: 20px;
            text-align: center;
            color: #666;
            font-size: 0.9em;
        }
        @media (max-width: 768px) {
            .metrics-grid { grid-template-columns: 1fr; }
        }
    </style>
</head>
<body>
    <div class="container">
        <div class="header">
            <h1>Visual Test Report</h1>
            <p>Generated on {{.Metadata.GeneratedAt.Format "2006-01-02 15:04:05"}}</p>
            <p>Session ID: {{.Metadata.SessionID}}</p>
        </div>

        <div class="content">
            <div class="section">
                <h2>Performance Overview</h2>
                <div class="metrics-grid">
                    <div class="metric-card success">
                        <div class="metric-value">{{.Summary.TotalTests}}</div>
                        <div class="metric-label">Total Tests</div>
                    </div>
                    <div class="metric-card {{rateClass .Summary.PassRate}}">
                        <div class="metric-value">{{printf "%.1f" .Summary.PassRate}}%</div>
                        <div class="metric-label">Pass Rate</div>
                    </div>
                    <div class="metric-card">
                        <div class="metric-value">{{printf "%.1f" .Summary.AvgSimilarity}}%</div>
                        <div class="metric-label">Avg Similarity</div>
                    </div>
                    <div class="metric-card">
                        <div class="metric-value">{{printf "%.1f" .Summary.AvgDuration}}s</div>
                        <div class="metric-label">Avg Duration</div>
                    </div>
                </div>
            </div>

            <div class="section">
                <h2>Test Results</h2>
                <div class="test-results">
                    <table class="test-table">
                        <thead>
                            <tr>
                                <th>Test Name</th>
                                <th>Page</th>
                                <th>Device</th>
                                <th>Status</th>
                                <th>Similarity</th>
                                <th>Duration</th>
                                <th>Timestamp</th>
                            </tr>
                        </thead>
                        <tbody>
                            {{range .Results}}
                            <tr>
                                <td>{{.TestName}}</td>
                                <td>{{.PageName}}</td>
                                <td>{{.Device}}</td>
                                <td><span class="status-badge status-{{.Status}}">{{.Status}}</span></td>
                                <td>
                                    <div class="similarity-bar">
                                        <div class="similarity-fill {{similarityClass .Similarity}}" style="width: {{printf "%.0f" .Similarity}}%"></div>
                                        <div class="similarity-text">{{printf "%.1f" .Similarity}}%</div>
                                    </div>
                                </td>
                                <td>{{printf "%.2f" .Duration}}s</td>
                                <td>{{.Timestamp.Format "2006-01-02 15:04:05"}}</td>
                            </tr>
                            {{if or .ErrorMessage .DiffPath}}
                            <tr class="detail-row">
                                <td colspan="7">
                                    {{if .ErrorMessage}}<div><strong>Error:</strong> {{.ErrorMessage}}</div>{{end}}
                                    {{if .DiffPath}}<div><strong>Diff Image:</strong> {{.DiffPath}}</div>{{end}}
                                </td>
                            </tr>
                            {{end}}
                            {{end}}
                        </tbody>
                    </table>
                </div>
            </div>

            <div class="section">
                <h2>Device Statistics</h2>
                <div class="metrics-grid">
                    {{range $device, $stats := .DeviceStats}}
                    <div class="metric-card">
                        <div class="metric-value">{{$device}}</div>
                        <div class="metric-label">{{$stats.Total}} tests, {{printf "%.1f" $stats.PassRate}}% pass rate</div>
                    </div>
                    {{end}}
                </div>
            </div>

            {{if gt .Failures.TotalFailures 0}}
            <div class="section">
                <h2>Failure Analysis</h2>
                <div class="metric-card danger">
                    <div class="metric-value">{{.Failures.TotalFailures}}</div>
                    <div class="metric-label">Total Failures</div>
                </div>
                {{if .Failures.Patterns}}
                <h3>Failure Patterns</h3>
                <ul>
                    {{range .Failures.Patterns}}
                    <li>{{.Description}} ({{.Count}} occurrences)</li>
                    {{end}}
                </ul>
                {{end}}
            </div>
            {{end}}
        </div>

        <div class="footer">
            <p>Session: {{.Metadata.SessionID}} | Environment: {{.Metadata.Environment}}</p>
        </div>
    </div>
</body>
</html>
`))
