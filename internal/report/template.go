package report

// DashboardTemplate is the HTML template for the company dashboard.
const DashboardTemplate = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="UTF-8">
<meta name="viewport" content="width=device-width, initial-scale=1.0">
<title>{{.Title}}</title>
<style>
  :root {
    --bg: #ffffff;
    --text: #1a1a2e;
    --muted: #6b7280;
    --border: #e5e7eb;
    --accent: #2563eb;
    --orange: #ea580c;
    --section-bg: #f8fafc;
  }
  * { margin: 0; padding: 0; box-sizing: border-box; }
  body {
    font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, sans-serif;
    color: var(--text);
    background: var(--bg);
    line-height: 1.6;
    max-width: 1100px;
    margin: 0 auto;
    padding: 20px;
  }
  h1, h2, h3 { font-weight: 600; }
  h1 { font-size: 1.5rem; margin-bottom: 4px; }
  h2 { font-size: 1.2rem; margin: 24px 0 12px; padding-bottom: 6px; border-bottom: 2px solid var(--accent); }
  .muted { color: var(--muted); font-size: 0.85rem; }

  .header {
    display: flex;
    justify-content: space-between;
    align-items: flex-start;
    border-bottom: 3px solid var(--accent);
    padding-bottom: 12px;
    margin-bottom: 16px;
  }
  .header-right { text-align: right; }
  .ticker-badge {
    display: inline-block;
    background: var(--accent);
    color: white;
    padding: 2px 12px;
    border-radius: 4px;
    font-weight: 700;
    font-size: 1.1rem;
    margin-right: 8px;
  }
  .warning {
    background: #fff7ed;
    border-left: 5px solid var(--orange);
    padding: 10px 14px;
    border-radius: 6px;
    margin: 12px 0;
  }

  .metric-bar {
    display: grid;
    grid-template-columns: repeat(4, 1fr);
    gap: 10px;
    margin: 12px 0;
  }
  .metric {
    background: var(--section-bg);
    padding: 10px;
    border-radius: 6px;
    text-align: center;
  }
  .metric .label { font-size: 0.75rem; color: var(--muted); text-transform: uppercase; }
  .metric .value { font-size: 1.1rem; font-weight: 600; }

  table { width: 100%; border-collapse: collapse; margin: 8px 0 16px; font-size: 0.85rem; }
  th { background: var(--section-bg); text-align: right; padding: 6px 8px; font-weight: 600; }
  td { padding: 6px 8px; border-bottom: 1px solid var(--border); text-align: right; font-variant-numeric: tabular-nums; }
  th:first-child, td:first-child { text-align: left; }

  .chart-container { margin: 12px 0; overflow-x: auto; }
  .chart-container svg { max-width: 100%; height: auto; }

  .section { margin: 20px 0; overflow-x: auto; }

  .footer {
    margin-top: 30px;
    padding-top: 12px;
    border-top: 2px solid var(--border);
    font-size: 0.8rem;
    color: var(--muted);
    text-align: center;
  }

  @media print {
    body { max-width: 100%; padding: 10px; }
    .section { page-break-inside: avoid; }
  }
</style>
</head>
<body>

<div class="header">
  <div class="header-left">
    <h1><span class="ticker-badge">{{.Ticker}}</span> {{.CompanyName}}</h1>
    <p class="muted">All amounts in {{.Currency}} millions except per-share values</p>
  </div>
  <div class="header-right">
    <p class="muted">Updated {{.UpdatedAt}}</p>
    {{if .LastFullYear}}<p class="muted">Last full fiscal year {{.LastFullYear}}</p>{{end}}
  </div>
</div>

{{if .Partial}}
<div class="warning">Partial data: {{if not .HasTTM}}no TTM period could be derived{{else}}no annual periods were loaded{{end}}.</div>
{{end}}

{{if .Metrics}}
<div class="section">
  <h2>TTM Summary (Trailing Twelve Months)</h2>
  <div class="metric-bar">
    {{range .Metrics}}
    <div class="metric"><div class="label">{{.Label}}</div><div class="value">{{.Value}}</div></div>
    {{end}}
  </div>
</div>
{{end}}

{{if .TrendChart}}
<div class="section">
  <div class="chart-container">{{.TrendChart}}</div>
</div>
{{end}}

{{range .Tables}}
<div class="section">
  <h2>{{.Title}}</h2>
  <table>
    <thead><tr><th></th>{{range .Columns}}<th>{{.}}</th>{{end}}</tr></thead>
    <tbody>
    {{range .Rows}}
    <tr><td>{{.Label}}</td>{{range .Cells}}<td>{{.}}</td>{{end}}</tr>
    {{end}}
    </tbody>
  </table>
</div>
{{end}}

<div class="footer">
  <p>Data: {{.Source}} · Generated on {{.GeneratedAt}}</p>
</div>

</body>
</html>`
