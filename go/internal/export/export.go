// Package export renders a user's trades as downloadable documents.
package export

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"github.com/chisports/gmengine/go/internal/apperr"
	"github.com/chisports/gmengine/go/internal/models"
	"github.com/chisports/gmengine/go/internal/ratelimit"
)

type Format string

const (
	FormatJSON Format = "json"
	FormatCSV  Format = "csv"
	FormatHTML Format = "html"
)

func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatJSON, FormatCSV, FormatHTML:
		return f, nil
	case "":
		return FormatJSON, nil
	default:
		return "", apperr.Validation(apperr.CodeUnknownFormat, "unknown export format %q", s)
	}
}

// Document is a rendered export.
type Document struct {
	Format      Format
	ContentType string
	Filename    string
	Body        []byte
}

// TradeSource resolves trade ids owned by a user. Ids the user does not own
// must produce a not-found error.
type TradeSource interface {
	TradesByIDs(ctx context.Context, userID string, ids []uuid.UUID) ([]models.Trade, error)
}

// Exporter throttles and renders trade exports.
type Exporter struct {
	trades TradeSource
	guard  *ratelimit.Guard
	clock  clockwork.Clock
}

func NewExporter(trades TradeSource, guard *ratelimit.Guard, clock clockwork.Clock) *Exporter {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Exporter{trades: trades, guard: guard, clock: clock}
}

// ExportTrades renders the user's trades in the requested format.
func (e *Exporter) ExportTrades(ctx context.Context, userID string, ids []uuid.UUID, format string) (*Document, error) {
	f, err := ParseFormat(format)
	if err != nil {
		return nil, err
	}
	if err := e.guard.Check(ctx, userID); err != nil {
		return nil, err
	}
	trades, err := e.trades.TradesByIDs(ctx, userID, ids)
	if err != nil {
		return nil, err
	}

	doc, err := Render(f, trades, e.clock.Now())
	if err != nil {
		return nil, apperr.Internal("failed to render export", err)
	}
	log.Info().
		Str("user_id", userID).
		Str("format", string(f)).
		Int("trades", len(trades)).
		Msg("trades exported")
	return doc, nil
}

// Render produces a document for trades generated at now.
func Render(f Format, trades []models.Trade, now time.Time) (*Document, error) {
	stamp := now.UTC().Format("20060102-150405")
	doc := &Document{Format: f, Filename: fmt.Sprintf("gm-trades-%s.%s", stamp, f)}

	var (
		body []byte
		err  error
	)
	switch f {
	case FormatJSON:
		doc.ContentType = "application/json"
		body, err = json.MarshalIndent(map[string]any{
			"generated_at": now.UTC(),
			"trades":       trades,
		}, "", "  ")
	case FormatCSV:
		doc.ContentType = "text/csv"
		body, err = renderCSV(trades)
	case FormatHTML:
		doc.ContentType = "text/html; charset=utf-8"
		body, err = renderHTML(trades, now)
	default:
		return nil, fmt.Errorf("unsupported format %q", f)
	}
	if err != nil {
		return nil, err
	}
	doc.Body = body
	return doc, nil
}

var csvHeader = []string{
	"trade_id", "created_at", "sport", "proposing_team", "partners", "status", "grade",
	"talent_balance", "contract_value", "team_fit", "future_assets", "is_dangerous",
	"assets_out", "assets_in", "salary_out", "salary_in", "wins_delta", "rationale",
}

func renderCSV(trades []models.Trade) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(csvHeader); err != nil {
		return nil, err
	}
	for _, t := range trades {
		flow := proposerFlow(t)
		wins := ""
		if t.TradeImpact != nil {
			wins = strconv.FormatFloat(t.TradeImpact.WinsDelta, 'f', 1, 64)
		}
		record := []string{
			t.ID.String(),
			t.CreatedAt.UTC().Format(time.RFC3339),
			string(t.Sport),
			csvSafe(t.ProposingTeam),
			csvSafe(strings.Join(t.Partners(), "|")),
			string(t.Status),
			strconv.FormatFloat(t.Grade, 'f', 1, 64),
			strconv.FormatFloat(t.Subscores.TalentBalance, 'f', 3, 64),
			strconv.FormatFloat(t.Subscores.ContractValue, 'f', 3, 64),
			strconv.FormatFloat(t.Subscores.TeamFit, 'f', 3, 64),
			strconv.FormatFloat(t.Subscores.FutureAssets, 'f', 3, 64),
			strconv.FormatBool(t.IsDangerous),
			csvSafe(strings.Join(flow.Out, "; ")),
			csvSafe(strings.Join(flow.In, "; ")),
			flow.SalaryOut.StringFixed(2),
			flow.SalaryIn.StringFixed(2),
			wins,
			csvSafe(t.Rationale),
		}
		if err := w.Write(record); err != nil {
			return nil, err
		}
	}
	w.Flush()
	return buf.Bytes(), w.Error()
}

// csvSafe quotes text cells that a spreadsheet would evaluate as a formula.
func csvSafe(s string) string {
	if s != "" && strings.ContainsRune("=+-@", rune(s[0])) {
		return "'" + s
	}
	return s
}

// flow is the proposing team's view of what moves.
type flow struct {
	Out       []string
	In        []string
	SalaryOut decimal.Decimal
	SalaryIn  decimal.Decimal
}

func proposerFlow(t models.Trade) flow {
	var f flow
	for _, side := range t.Sides {
		for _, ta := range side.Outgoing {
			var aav decimal.Decimal
			if ta.Asset.Kind == models.AssetKindPlayer && ta.Asset.Player != nil {
				aav = ta.Asset.Player.ContractAAV
			}
			switch {
			case side.TeamKey == t.ProposingTeam:
				f.Out = append(f.Out, ta.Asset.Label())
				f.SalaryOut = f.SalaryOut.Add(aav)
			case ta.ToTeam == t.ProposingTeam:
				f.In = append(f.In, ta.Asset.Label())
				f.SalaryIn = f.SalaryIn.Add(aav)
			}
		}
	}
	return f
}
