package export

import (
	"bytes"
	"fmt"
	"html/template"
	"strings"
	"time"

	"github.com/chisports/gmengine/go/internal/models"
)

var pageTemplate = template.Must(template.New("trades").Funcs(template.FuncMap{
	"upper":  strings.ToUpper,
	"join":   strings.Join,
	"grade":  func(g float64) string { return fmt.Sprintf("%.1f", g) },
	"pct":    func(v float64) string { return fmt.Sprintf("%.0f%%", 100*v) },
	"letter": models.LetterGrade,
	"date":   func(t time.Time) string { return t.UTC().Format("Jan 2, 2006") },
}).Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>GM Trade Report</title>
<style>
  body { font-family: Georgia, serif; margin: 2rem; color: #0b162a; }
  h1 { border-bottom: 3px solid #c83803; padding-bottom: .25rem; }
  .trade { page-break-inside: avoid; border: 1px solid #ccc; padding: 1rem; margin-bottom: 1rem; }
  .grade { font-size: 2rem; font-weight: bold; float: right; }
  .danger { color: #b00020; font-weight: bold; }
  table { border-collapse: collapse; }
  td, th { padding: .2rem .6rem; text-align: left; }
  @media print { body { margin: 0; } }
</style>
</head>
<body>
<h1>GM Trade Report</h1>
<p>Generated {{date .GeneratedAt}} &middot; {{len .Trades}} trade(s)</p>
{{range .Trades}}
<div class="trade">
  <div class="grade">{{letter .Trade.Grade}} <small>{{grade .Trade.Grade}}</small></div>
  <h2>{{upper .Trade.ProposingTeam}} with {{upper (join .Partners " & ")}}</h2>
  <p>{{upper (printf "%s" .Trade.Sport)}} &middot; {{.Trade.Status}} &middot; {{date .Trade.CreatedAt}}</p>
  {{if .Trade.IsDangerous}}<p class="danger">Dangerous trade</p>{{end}}
  <table>
    <tr><th>Sends</th><td>{{join .Flow.Out ", "}}</td></tr>
    <tr><th>Receives</th><td>{{join .Flow.In ", "}}</td></tr>
    <tr><th>Salary</th><td>out ${{.Flow.SalaryOut.StringFixed 1}}M / in ${{.Flow.SalaryIn.StringFixed 1}}M</td></tr>
    <tr><th>Talent</th><td>{{pct .Trade.Subscores.TalentBalance}}</td></tr>
    <tr><th>Contract</th><td>{{pct .Trade.Subscores.ContractValue}}</td></tr>
    <tr><th>Fit</th><td>{{pct .Trade.Subscores.TeamFit}}</td></tr>
    <tr><th>Future</th><td>{{pct .Trade.Subscores.FutureAssets}}</td></tr>
    {{with .Trade.TradeImpact}}<tr><th>Projected wins</th><td>{{printf "%+.1f" .WinsDelta}}</td></tr>{{end}}
  </table>
  <p>{{.Trade.Rationale}}</p>
  {{range .Trade.Warnings}}<p class="danger">{{.}}</p>{{end}}
</div>
{{end}}
</body>
</html>
`))

type htmlTrade struct {
	Trade    models.Trade
	Partners []string
	Flow     flow
}

func renderHTML(trades []models.Trade, now time.Time) ([]byte, error) {
	data := struct {
		GeneratedAt time.Time
		Trades      []htmlTrade
	}{GeneratedAt: now}
	for _, t := range trades {
		data.Trades = append(data.Trades, htmlTrade{Trade: t, Partners: t.Partners(), Flow: proposerFlow(t)})
	}

	var buf bytes.Buffer
	if err := pageTemplate.Execute(&buf, data); err != nil {
		return nil, fmt.Errorf("render html export: %w", err)
	}
	return buf.Bytes(), nil
}
