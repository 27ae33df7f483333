package game

import (
	"math"
	"testing"
)

func TestLuckyWheelDistribution(t *testing.T) {
	table := LuckyWheel()
	if table.Total() != 1000 {
		t.Fatalf("wheel weights sum to %d; want 1000", table.Total())
	}

	const draws = 100000
	r := NewSeeded(42)
	counts := make(map[string]int)
	for i := 0; i < draws; i++ {
		counts[table.Draw(r).ID]++
	}
	for _, o := range table.Outcomes() {
		got := float64(counts[o.ID]) / draws
		want := table.Share(o.ID)
		if math.Abs(got-want) > 0.005 {
			t.Fatalf("%s drawn %.4f of the time; want %.4f", o.ID, got, want)
		}
	}
}

func TestDrawWalksWeightsInOrder(t *testing.T) {
	table := mustTable([]Outcome{
		{ID: "A", Weight: 1},
		{ID: "B", Weight: 3},
		{ID: "C", Weight: 6},
	})
	cases := []struct {
		v    int
		want string
	}{
		{0, "A"},
		{1, "B"},
		{3, "B"},
		{4, "C"},
		{9, "C"},
	}
	for _, tc := range cases {
		if got := table.Draw(&scripted{vals: []int{tc.v}}).ID; got != tc.want {
			t.Fatalf("Draw(%d) = %s; want %s", tc.v, got, tc.want)
		}
	}
}

func TestNewOutcomeTableRejectsBadWeights(t *testing.T) {
	if _, err := NewOutcomeTable(nil); err == nil {
		t.Fatalf("empty table accepted")
	}
	if _, err := NewOutcomeTable([]Outcome{{ID: "X", Weight: 0}}); err == nil {
		t.Fatalf("zero weight accepted")
	}
}

// pendingOutcome applies a wheel outcome to the current player as if spun.
func pendingOutcome(t *testing.T, s *Session, id string) *Player {
	t.Helper()
	p := s.current()
	s.Turn = TurnResolvingLanding
	s.begin()
	s.applyOutcome(p, outcomeByID(t, s.rules.Wheel, id), s.rules.Wheel)
	s.settleTurnState()
	s.commit()
	return p
}

func TestSkillChoice(t *testing.T) {
	cases := []struct {
		name     string
		outcome  string
		choice   int
		rolls    []int
		wantCash int64
	}{
		{"gamble won", "GAMBLE", ChoiceRisky, []int{0}, 1050},
		{"gamble lost", "GAMBLE", ChoiceRisky, []int{1}, 950},
		{"safe", "GAMBLE", ChoiceSafe, nil, 1000},
		{"all in won", "ALLIN", ChoiceRisky, []int{0}, 1000 + 200},
		{"all in lost", "ALLIN", ChoiceRisky, []int{2}, 500},
		{"steal won", "STEAL", ChoiceRisky, []int{0}, 1050},
		{"steal lost", "STEAL", ChoiceRisky, []int{1}, 950},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			s, rnd := startedSession(t, LuckyRules(), 1000, 2)
			// seed the bank with 200 taken from the opponent
			setCash(t, s, s.Player(2), 800)

			p := pendingOutcome(t, s, tc.outcome)
			if s.Turn != TurnAwaitingChoice || s.Choice == nil || s.Choice.Kind != ChoiceSkill {
				t.Fatalf("turn=%s choice=%+v", s.Turn, s.Choice)
			}
			rnd.push(tc.rolls...)
			if _, err := s.ResolveWheelChoice(p.ID, tc.choice); err != nil {
				t.Fatalf("ResolveWheelChoice: %v", err)
			}
			if p.Cash != tc.wantCash {
				t.Fatalf("cash = %d; want %d", p.Cash, tc.wantCash)
			}
			if s.Turn != TurnAwaitingEnd || s.Choice != nil {
				t.Fatalf("turn=%s choice=%+v", s.Turn, s.Choice)
			}
			mustInvariants(t, s)
		})
	}
}

func TestResolveWheelChoiceValidation(t *testing.T) {
	s, _ := startedSession(t, LuckyRules(), 1000, 2)
	_, err := s.ResolveWheelChoice(1, ChoiceSafe)
	wantErr(t, err, ErrStaleState)

	pendingOutcome(t, s, "DUEL")
	_, err = s.ResolveWheelChoice(2, ChoiceSafe)
	wantErr(t, err, ErrNotYourTurn)
	_, err = s.ResolveWheelChoice(1, 7)
	wantErr(t, err, ErrInvalidAction)
	_, err = s.ChooseTeleportTarget(1, 1)
	wantErr(t, err, ErrInvalidAction)
}

func TestSabotageBlocksOpponentRent(t *testing.T) {
	s, _ := startedSession(t, LuckyRules(), 1000, 2)
	give(s, s.Player(2), 1)
	give(s, s.Player(2), 28)

	pendingOutcome(t, s, "SABOTAGE")
	if _, err := s.ResolveWheelChoice(1, ChoiceRisky); err != nil {
		t.Fatalf("ResolveWheelChoice: %v", err)
	}
	sp := s.Board[28]
	if sp.BlockedUntilTurn != s.TurnNumber+3*2 {
		t.Fatalf("blocked until %d; want %d", sp.BlockedUntilTurn, s.TurnNumber+6)
	}
	if s.Player(1).Cash != 980 || s.Bank != 20 {
		t.Fatalf("fee not charged: cash=%d bank=%d", s.Player(1).Cash, s.Bank)
	}
	mustInvariants(t, s)
}

func TestMiniGame(t *testing.T) {
	s, _ := startedSession(t, LuckyRules(), 1000, 2)
	p := pendingOutcome(t, s, "PONG")
	if s.Choice == nil || s.Choice.Wager != 50 || p.Cash != 950 || s.Bank != 50 {
		t.Fatalf("wager not staked: choice=%+v cash=%d bank=%d", s.Choice, p.Cash, s.Bank)
	}
	_, err := s.ReportMiniGameResult(2, true)
	wantErr(t, err, ErrNotYourTurn)

	setCash(t, s, s.Player(2), 900)
	if _, err := s.ReportMiniGameResult(1, true); err != nil {
		t.Fatalf("ReportMiniGameResult: %v", err)
	}
	if p.Cash != 1050 || s.Turn != TurnAwaitingEnd {
		t.Fatalf("cash=%d turn=%s", p.Cash, s.Turn)
	}
	mustInvariants(t, s)
}

func TestMiniGameTimeoutIsALoss(t *testing.T) {
	s, _ := startedSession(t, LuckyRules(), 1000, 2)
	p := pendingOutcome(t, s, "SNAKE")
	key, _, _ := s.TimerKey()
	if key.State != TurnAwaitingChoice {
		t.Fatalf("timer state = %s", key.State)
	}
	events, err := s.Expire(key)
	if err != nil {
		t.Fatalf("Expire: %v", err)
	}
	if !hasEvent(events, EventMiniGameResult) || p.Cash != 950 || s.CurrentPlayerID() != 2 {
		t.Fatalf("cash=%d current=%d", p.Cash, s.CurrentPlayerID())
	}
	_, err = s.ReportMiniGameResult(1, true)
	wantErr(t, err, ErrNotYourTurn)
	mustInvariants(t, s)
}

func TestTeleport(t *testing.T) {
	s, _ := startedSession(t, LuckyRules(), 1000, 2)
	p := pendingOutcome(t, s, "TELEPORT")

	_, err := s.ChooseTeleportTarget(1, 2)
	wantErr(t, err, ErrInvalidAction)
	_, err = s.ChooseTeleportTarget(1, 99)
	wantErr(t, err, ErrInvalidAction)

	if _, err := s.ChooseTeleportTarget(1, 1); err != nil {
		t.Fatalf("ChooseTeleportTarget: %v", err)
	}
	if p.Position != 1 || s.Turn != TurnAwaitingPurchase || s.PendingSpace != 1 {
		t.Fatalf("pos=%d turn=%s pending=%d", p.Position, s.Turn, s.PendingSpace)
	}
}

func TestFreeze(t *testing.T) {
	s, _ := startedSession(t, LuckyRules(), 1000, 3)
	pendingOutcome(t, s, "FREEZE")

	_, err := s.ChooseFreezeTarget(1, 1)
	wantErr(t, err, ErrInvalidAction)
	if _, err := s.ChooseFreezeTarget(1, 2); err != nil {
		t.Fatalf("ChooseFreezeTarget: %v", err)
	}
	if _, err := s.EndTurn(1); err != nil {
		t.Fatalf("EndTurn: %v", err)
	}
	if s.CurrentPlayerID() != 3 {
		t.Fatalf("frozen player was not skipped, current=%d", s.CurrentPlayerID())
	}
}

func TestInstantOutcomes(t *testing.T) {
	cases := []struct {
		id    string
		check func(t *testing.T, s *Session)
	}{
		{"PAYDAY", func(t *testing.T, s *Session) {
			if s.Player(1).Cash != 1050 {
				t.Fatalf("cash = %d", s.Player(1).Cash)
			}
		}},
		{"BROKE", func(t *testing.T, s *Session) {
			if s.Player(1).Cash != 500 {
				t.Fatalf("cash = %d", s.Player(1).Cash)
			}
		}},
		{"OOPS", func(t *testing.T, s *Session) {
			if s.Player(1).Cash != 990 || s.Player(2).Cash != 810 {
				t.Fatalf("cash = %d / %d", s.Player(1).Cash, s.Player(2).Cash)
			}
		}},
		{"DOUBLE", func(t *testing.T, s *Session) {
			if s.Player(1).RentPercent != 200 {
				t.Fatalf("rent percent = %d", s.Player(1).RentPercent)
			}
		}},
		{"REVERSE", func(t *testing.T, s *Session) {
			if s.Direction != -1 {
				t.Fatalf("direction = %d", s.Direction)
			}
		}},
		{"RAIN", func(t *testing.T, s *Session) {
			if s.Player(1).Cash != 1020 || s.Player(2).Cash != 820 {
				t.Fatalf("cash = %d / %d", s.Player(1).Cash, s.Player(2).Cash)
			}
		}},
		{"HOME", func(t *testing.T, s *Session) {
			if s.Player(1).Position != 0 || s.Player(1).Cash != 1050 {
				t.Fatalf("pos=%d cash=%d", s.Player(1).Position, s.Player(1).Cash)
			}
		}},
		{"SWITCH", func(t *testing.T, s *Session) {
			if s.Player(1).Position != 0 || s.Player(2).Position != 5 {
				t.Fatalf("positions %d / %d", s.Player(1).Position, s.Player(2).Position)
			}
		}},
	}
	for _, tc := range cases {
		t.Run(tc.id, func(t *testing.T) {
			s, _ := startedSession(t, LuckyRules(), 1000, 2)
			setCash(t, s, s.Player(2), 800)
			s.Player(1).Position = 5
			pendingOutcome(t, s, tc.id)
			tc.check(t, s)
			if s.Turn != TurnAwaitingEnd {
				t.Fatalf("turn = %s", s.Turn)
			}
			mustInvariants(t, s)
		})
	}
}

func TestStreakRewards(t *testing.T) {
	s, _ := startedSession(t, LuckyRules(), 1000, 2)
	p := s.Player(1)
	setCash(t, s, s.Player(2), 500)
	give(s, p, 1)
	sp := s.Board[1]
	sp.Houses = 1

	s.trackStreak(p, sp)
	if p.Streak != 1 {
		t.Fatalf("streak = %d", p.Streak)
	}
	s.trackStreak(p, sp)
	if p.RentPercent != 200 {
		t.Fatalf("second landing should double the next rent")
	}
	s.trackStreak(p, sp)
	if p.FreeHouses != 1 {
		t.Fatalf("third landing should grant a free improvement")
	}
	s.trackStreak(p, sp)
	if p.Streak != 0 || p.Cash != 1100 || s.Bank != 400 {
		t.Fatalf("jackpot: streak=%d cash=%d bank=%d", p.Streak, p.Cash, s.Bank)
	}

	p.Streak = 2
	s.trackStreak(p, s.Board[0])
	if p.Streak != 0 {
		t.Fatalf("landing elsewhere should reset the streak")
	}
	mustInvariants(t, s)
}
