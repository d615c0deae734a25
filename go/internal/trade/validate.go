package trade

import (
	"slices"
	"strings"

	"github.com/chisports/gmengine/go/internal/apperr"
	"github.com/chisports/gmengine/go/internal/models"
	"github.com/chisports/gmengine/go/internal/sports/base"
)

// normalizeTrade validates a request against the sport profile and returns a
// trade with canonical team keys and every ToTeam filled in.
func normalizeTrade(profile *base.Profile, req SubmitTradeRequest) (*models.Trade, error) {
	resolve := func(field, name string) (string, error) {
		key, ok := profile.ResolveTeam(name)
		if !ok {
			return "", apperr.Validation(apperr.CodeUnknownTeam, "%s: unknown %s team %q", field, profile.Sport, name)
		}
		return key, nil
	}

	proposer, err := resolve("proposing_team", req.ProposingTeam)
	if err != nil {
		return nil, err
	}
	partner, err := resolve("partner_team_key", req.PartnerTeam)
	if err != nil {
		return nil, err
	}
	var partner2 string
	if strings.TrimSpace(req.Partner2Team) != "" {
		if partner2, err = resolve("partner_2", req.Partner2Team); err != nil {
			return nil, err
		}
	}

	t := &models.Trade{
		Sport:         profile.Sport,
		ProposingTeam: proposer,
		PartnerTeam:   partner,
		Partner2Team:  partner2,
	}
	teams := t.Teams()
	for i := range teams {
		for j := i + 1; j < len(teams); j++ {
			if teams[i] == teams[j] {
				return nil, apperr.Validation(apperr.CodeInvalidTrade, "team %s appears more than once", teams[i])
			}
		}
	}

	if len(req.Sides) == 0 {
		return nil, apperr.Validation(apperr.CodeInvalidTrade, "trade has no sides")
	}

	seenSides := make(map[string]bool, len(req.Sides))
	seenAssets := make(map[string]string)
	involved := make(map[string]bool, len(teams))
	assetCount := 0

	for _, side := range req.Sides {
		sender, err := resolve("sides.team_key", side.TeamKey)
		if err != nil {
			return nil, err
		}
		if !slices.Contains(teams, sender) {
			return nil, apperr.Validation(apperr.CodeInvalidTrade, "side team %s is not part of this trade", sender)
		}
		if seenSides[sender] {
			return nil, apperr.Validation(apperr.CodeInvalidTrade, "team %s has more than one side", sender)
		}
		seenSides[sender] = true

		normalized := models.TradeSide{TeamKey: sender}
		for _, ta := range side.Outgoing {
			if err := ta.Asset.Validate(); err != nil {
				return nil, apperr.Validation(apperr.CodeInvalidAsset, "%s outgoing asset: %v", sender, err)
			}
			// picks are keyed by origin, so resolve it before the duplicate check
			asset := ta.Asset
			if asset.Kind == models.AssetKindPick {
				pick := *asset.Pick
				if origin, ok := profile.ResolveTeam(pick.OriginTeam); ok {
					pick.OriginTeam = origin
				} else if pick.OriginTeam == "" {
					pick.OriginTeam = sender
				}
				asset = models.NewPickAsset(pick)
			}

			key := asset.Key()
			if prev, dup := seenAssets[key]; dup {
				return nil, apperr.Validation(apperr.CodeDuplicateAsset, "asset %s is sent by %s and %s", asset.Label(), prev, sender)
			}
			seenAssets[key] = sender

			receiver, err := resolveReceiver(profile, t, sender, ta.ToTeam)
			if err != nil {
				return nil, err
			}

			normalized.Outgoing = append(normalized.Outgoing, models.TradeAsset{Asset: asset, ToTeam: receiver})
			involved[sender] = true
			involved[receiver] = true
			assetCount++
		}
		t.Sides = append(t.Sides, normalized)
	}

	if assetCount == 0 {
		return nil, apperr.Validation(apperr.CodeInvalidTrade, "trade moves no assets")
	}
	for _, team := range teams {
		if !involved[team] {
			return nil, apperr.Validation(apperr.CodeInvalidTrade, "team %s neither sends nor receives an asset", team)
		}
	}

	if len(req.TeamNeeds) > 0 {
		t.TeamNeeds = make(map[string][]string, len(req.TeamNeeds))
		for name, positions := range req.TeamNeeds {
			key, err := resolve("team_needs", name)
			if err != nil {
				return nil, err
			}
			for _, pos := range positions {
				if pos = strings.ToUpper(strings.TrimSpace(pos)); pos != "" {
					t.TeamNeeds[key] = append(t.TeamNeeds[key], pos)
				}
			}
		}
	}

	return t, nil
}

func resolveReceiver(profile *base.Profile, t *models.Trade, sender, toTeam string) (string, error) {
	if strings.TrimSpace(toTeam) == "" {
		if t.IsThreeTeam() {
			return "", apperr.Validation(apperr.CodeInvalidTrade, "to_team is required for every asset in a three-team trade")
		}
		if sender == t.ProposingTeam {
			return t.PartnerTeam, nil
		}
		return t.ProposingTeam, nil
	}

	receiver, ok := profile.ResolveTeam(toTeam)
	if !ok {
		return "", apperr.Validation(apperr.CodeUnknownTeam, "to_team: unknown %s team %q", profile.Sport, toTeam)
	}
	if receiver == sender {
		return "", apperr.Validation(apperr.CodeInvalidTrade, "%s cannot send an asset to itself", sender)
	}
	if !slices.Contains(t.Teams(), receiver) {
		return "", apperr.Validation(apperr.CodeInvalidTrade, "to_team %s is not part of this trade", receiver)
	}
	return receiver, nil
}
