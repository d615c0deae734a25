package models

import "testing"

func TestLetterGrade(t *testing.T) {
	cases := map[float64]string{100: "A", 85: "A", 84.9: "B", 70: "B", 55: "C", 40: "D", 39.9: "F", 0: "F"}
	for score, want := range cases {
		if got := LetterGrade(score); got != want {
			t.Errorf("LetterGrade(%v) = %s, expected %s", score, got, want)
		}
	}
}

func TestMockDraftAvailableAndCurrentSlot(t *testing.T) {
	a := Prospect{ID: "a", ConsensusRank: 1}
	b := Prospect{ID: "b", ConsensusRank: 2}
	d := &MockDraft{
		Board: []Prospect{a, b},
		Slots: []DraftPickSlot{
			{PickNumber: 1, Selected: &a},
			{PickNumber: 2, IsCurrent: true},
		},
		CurrentPickIndex: 1,
	}

	avail := d.Available()
	if len(avail) != 1 || avail[0].ID != "b" {
		t.Fatalf("expected only b available, got %+v", avail)
	}
	if slot := d.CurrentSlot(); slot == nil || slot.PickNumber != 2 {
		t.Fatalf("expected pick 2 on the clock, got %+v", slot)
	}

	d.CurrentPickIndex = 2
	if slot := d.CurrentSlot(); slot != nil {
		t.Fatalf("expected no current slot once complete, got %+v", slot)
	}
}
