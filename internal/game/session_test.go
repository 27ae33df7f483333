package game

import (
	"encoding/json"
	"testing"
)

func TestAddPlayer(t *testing.T) {
	s := NewSession("ABCD", LuckyRules(), 500)
	for i := int64(1); i <= 4; i++ {
		if _, err := s.AddPlayer(i, "player"); err != nil {
			t.Fatalf("AddPlayer(%d): %v", i, err)
		}
	}
	_, err := s.AddPlayer(5, "late")
	wantErr(t, err, ErrRoomFull)
	_, err = s.AddPlayer(2, "again")
	wantErr(t, err, ErrInvalidAction)

	if s.HostID != 1 || s.Players[3].Color != PlayerColors[3] {
		t.Fatalf("host=%d color=%s", s.HostID, s.Players[3].Color)
	}
	if _, err := s.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	_, err = s.AddPlayer(6, "after")
	wantErr(t, err, ErrAlreadyStarted)
	if s.Pot != 2000 || s.Bank != 0 {
		t.Fatalf("pot=%d bank=%d", s.Pot, s.Bank)
	}
	mustInvariants(t, s)
}

func TestStartNeedsTwoPlayers(t *testing.T) {
	s := NewSession("ABCD", LuckyRules(), 500)
	s.AddPlayer(1, "solo")
	_, err := s.Start()
	wantErr(t, err, ErrInvalidAction)
	if s.Phase != PhaseLobby {
		t.Fatalf("phase = %s", s.Phase)
	}
}

func TestAnonymousSeats(t *testing.T) {
	s := NewSession("ANON", LuckyRules(), 500, Anonymous())
	s.AddPlayer(10, "alice")
	s.AddPlayer(20, "bob")
	s.AddPlayer(30, "carol")
	if s.Players[0].Name != "Lucky" || s.Players[1].Name != "Star" {
		t.Fatalf("names %s %s", s.Players[0].Name, s.Players[1].Name)
	}

	if _, err := s.RemovePlayer(10); err != nil {
		t.Fatalf("RemovePlayer: %v", err)
	}
	if len(s.Players) != 2 || s.HostID != 20 {
		t.Fatalf("players=%d host=%d", len(s.Players), s.HostID)
	}
	if s.Players[0].Name != "Lucky" || s.Players[0].Color != PlayerColors[0] {
		t.Fatalf("seat 0 = %+v", s.Players[0])
	}
}

func TestSetConnected(t *testing.T) {
	s, _ := startedSession(t, LuckyRules(), 1000, 2)
	events, err := s.SetConnected(2, false)
	if err != nil || len(events) != 1 {
		t.Fatalf("SetConnected: %v %v", events, err)
	}
	events, _ = s.SetConnected(2, false)
	if len(events) != 0 {
		t.Fatalf("repeated disconnect emitted %v", events)
	}
	if s.Player(2).Connected || s.Player(2).Bankrupt {
		t.Fatalf("player = %+v", s.Player(2))
	}
}

func TestSnapshotIsDetached(t *testing.T) {
	s, rnd := startedSession(t, classicNoDraft(), 1500, 2)
	give(s, s.Player(1), 1)
	rnd.roll(1, 2)
	s.RollDice(1)
	s.AuctionProperty(1, 3)

	snap := s.Snapshot()
	snap.Players[0].Properties[0] = 39
	snap.Board[1].Owner = 2
	snap.Auction.Passed = append(snap.Auction.Passed, 1)
	if s.Player(1).Properties[0] != 1 || s.Board[1].Owner != 1 || len(s.Auction.Passed) != 0 {
		t.Fatalf("snapshot shares memory with the session")
	}
	if snap.Players[0].NetWorth != 1560 {
		t.Fatalf("net worth = %d", snap.Players[0].NetWorth)
	}

	raw, err := json.Marshal(snap)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var decoded map[string]any
	if err := json.Unmarshal(raw, &decoded); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if decoded["turn_state"] != string(TurnAuction) {
		t.Fatalf("turn_state = %v", decoded["turn_state"])
	}
}
