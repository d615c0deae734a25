package export

import (
	"context"
	"encoding/csv"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/shopspring/decimal"

	"github.com/chisports/gmengine/go/internal/apperr"
	"github.com/chisports/gmengine/go/internal/models"
	"github.com/chisports/gmengine/go/internal/ratelimit"
)

func sampleTrade() models.Trade {
	age := 27
	return models.Trade{
		ID:            uuid.MustParse("11111111-2222-3333-4444-555555555555"),
		UserID:        "user-1",
		Sport:         models.SportNFL,
		ProposingTeam: "chi",
		PartnerTeam:   "gb",
		Status:        models.TradeStatusAccepted,
		Grade:         72.4,
		Subscores:     models.Subscores{TalentBalance: 0.55, ContractValue: 0.6, TeamFit: 0.5, FutureAssets: 0.2},
		Rationale:     `CHI sends out 80.0 in value, "fair" deal`,
		Sides: []models.TradeSide{
			{TeamKey: "chi", Outgoing: []models.TradeAsset{{
				Asset:  models.NewPlayerAsset(models.Player{ID: "p1", Name: "Sam Runner", Position: "RB", Age: &age, ContractAAV: decimal.RequireFromString("12.5")}),
				ToTeam: "gb",
			}}},
			{TeamKey: "gb", Outgoing: []models.TradeAsset{{
				Asset:  models.NewPickAsset(models.DraftPick{Year: 2027, Round: 2, OriginTeam: "gb"}),
				ToTeam: "chi",
			}}},
		},
		TradeImpact: &models.TradeImpact{WinsDelta: 0.8, TradePartnerDeltas: map[string]models.TeamDelta{"gb": {}}},
		CreatedAt:   time.Date(2026, 4, 1, 15, 0, 0, 0, time.UTC),
	}
}

func TestParseFormat(t *testing.T) {
	for in, want := range map[string]Format{"": FormatJSON, "CSV": FormatCSV, " html ": FormatHTML} {
		got, err := ParseFormat(in)
		if err != nil || got != want {
			t.Fatalf("ParseFormat(%q) = %q, %v; expected %q", in, got, err, want)
		}
	}
	if _, err := ParseFormat("pdf"); apperr.CodeOf(err) != apperr.CodeUnknownFormat {
		t.Fatalf("expected unknown_format, got %v", err)
	}
}

func TestRenderCSV(t *testing.T) {
	doc, err := Render(FormatCSV, []models.Trade{sampleTrade()}, time.Date(2026, 4, 2, 0, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if doc.Filename != "gm-trades-20260402-000000.csv" {
		t.Fatalf("unexpected filename %q", doc.Filename)
	}

	records, err := csv.NewReader(strings.NewReader(string(doc.Body))).ReadAll()
	if err != nil {
		t.Fatalf("expected valid csv, got %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("expected header plus 1 row, got %d", len(records))
	}
	row := make(map[string]string)
	for i, h := range records[0] {
		row[h] = records[1][i]
	}

	want := map[string]string{
		"grade":      "72.4",
		"partners":   "gb",
		"assets_out": "Sam Runner (RB)",
		"assets_in":  "2027 round 2 (GB)",
		"salary_out": "12.50",
		"salary_in":  "0.00",
		"wins_delta": "0.8",
		"rationale":  `CHI sends out 80.0 in value, "fair" deal`,
	}
	for k, v := range want {
		if row[k] != v {
			t.Errorf("%s: expected %q, got %q", k, v, row[k])
		}
	}
}

func TestRenderHTMLEscapes(t *testing.T) {
	trade := sampleTrade()
	trade.Rationale = "<script>alert(1)</script>"
	doc, err := Render(FormatHTML, []models.Trade{trade}, time.Now())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	body := string(doc.Body)
	if strings.Contains(body, "<script>") {
		t.Fatal("expected rationale to be escaped")
	}
	for _, want := range []string{"CHI with GB", "Sam Runner (RB)", "out $12.5M", "+0.8"} {
		if !strings.Contains(body, want) {
			t.Errorf("expected html to contain %q", want)
		}
	}
}

type fakeSource struct {
	trades map[uuid.UUID]models.Trade
}

func (f fakeSource) TradesByIDs(_ context.Context, userID string, ids []uuid.UUID) ([]models.Trade, error) {
	var out []models.Trade
	for _, id := range ids {
		t, ok := f.trades[id]
		if !ok || t.UserID != userID {
			return nil, apperr.NotFound()
		}
		out = append(out, t)
	}
	return out, nil
}

func TestExporter(t *testing.T) {
	trade := sampleTrade()
	src := fakeSource{trades: map[uuid.UUID]models.Trade{trade.ID: trade}}
	clock := clockwork.NewFakeClockAt(time.Date(2026, 4, 2, 0, 0, 0, 0, time.UTC))
	guard := ratelimit.NewGuard(ratelimit.NewMemoryLimiter(clock), nil, "export", ratelimit.Rule{Window: time.Minute, Limit: 1})
	exp := NewExporter(src, guard, clock)
	ctx := context.Background()

	doc, err := exp.ExportTrades(ctx, "user-1", []uuid.UUID{trade.ID}, "json")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if diff := cmp.Diff("application/json", doc.ContentType); diff != "" {
		t.Fatalf("content type mismatch (-want +got):\n%s", diff)
	}

	if _, err := exp.ExportTrades(ctx, "someone-else", []uuid.UUID{trade.ID}, "json"); !apperr.IsNotFound(err) {
		t.Fatalf("expected not found for another user's trade, got %v", err)
	}

	if _, err := exp.ExportTrades(ctx, "user-1", []uuid.UUID{trade.ID}, "csv"); apperr.KindOf(err) != apperr.KindRateLimited {
		t.Fatalf("expected rate limit on second export, got %v", err)
	}
}

func TestRenderCSVQuotesFormulaCells(t *testing.T) {
	trade := sampleTrade()
	trade.Rationale = "=HYPERLINK(\"http://evil\",\"x\")"
	trade.Sides[0].Outgoing[0].Asset = models.NewPlayerAsset(models.Player{ID: "p1", Name: "@Runner", Position: "RB"})

	doc, err := Render(FormatCSV, []models.Trade{trade}, time.Date(2026, 4, 2, 0, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	records, err := csv.NewReader(strings.NewReader(string(doc.Body))).ReadAll()
	if err != nil {
		t.Fatalf("expected valid csv, got %v", err)
	}
	row := make(map[string]string)
	for i, h := range records[0] {
		row[h] = records[1][i]
	}

	want := map[string]string{
		"rationale":  "'=HYPERLINK(\"http://evil\",\"x\")",
		"assets_out": "'@Runner (RB)",
		"wins_delta": "0.8",
	}
	if diff := cmp.Diff(want, map[string]string{
		"rationale":  row["rationale"],
		"assets_out": row["assets_out"],
		"wins_delta": row["wins_delta"],
	}); diff != "" {
		t.Fatalf("unexpected cells (-want +got):\n%s", diff)
	}
}
