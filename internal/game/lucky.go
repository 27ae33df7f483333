package game

type ChoiceKind string

const (
	ChoiceSkill    ChoiceKind = "skill"
	ChoiceTeleport ChoiceKind = "teleport"
	ChoiceFreeze   ChoiceKind = "freeze"
	ChoiceMiniGame ChoiceKind = "mini-game"
)

// Choice indexes for skill outcomes.
const (
	ChoiceRisky = 0
	ChoiceSafe  = 1
)

// WheelChoice is an outcome waiting for input from the player who spun it.
type WheelChoice struct {
	Kind     ChoiceKind `json:"kind"`
	Outcome  Outcome    `json:"outcome"`
	Choices  []string   `json:"choices,omitempty"`
	PlayerID int64      `json:"player_id"`
	Wager    int64      `json:"wager,omitempty"`
}

func (s *Session) spin(p *Player, table *OutcomeTable) {
	if table == nil {
		return
	}
	o := table.Draw(s.rng)
	s.emit(EventWheelSpun, p.ID, map[string]any{
		"outcome":  o.ID,
		"label":    o.Label,
		"category": o.Category,
	})
	s.applyOutcome(p, o, table)
}

func (s *Session) drawCard(p *Player, table *OutcomeTable) {
	if table == nil {
		return
	}
	o := table.Draw(s.rng)
	s.emit(EventCardDrawn, p.ID, map[string]any{"card": o.ID, "label": o.Label})
	s.applyOutcome(p, o, table)
}

// applyOutcome runs the effect of one drawn outcome. Payouts come out of the
// bank and are capped by it; losses are capped at the player's cash.
func (s *Session) applyOutcome(p *Player, o Outcome, table *OutcomeTable) {
	data := map[string]any{"outcome": o.ID, "effect": o.Effect}
	switch o.Effect {
	case EffectCredit:
		amount := s.scale(o.Amount)
		if o.Percent > 0 {
			amount = s.Bank * o.Percent / 100
		}
		data["amount"] = s.payFromBank(p, amount)
	case EffectDebit:
		amount := s.scale(o.Amount)
		if o.Percent > 0 {
			amount = p.Cash * o.Percent / 100
		}
		data["amount"] = s.chargeCapped(p, amount)
	case EffectPayEach:
		var total int64
		for _, other := range s.opponents(p) {
			amount := min(s.scale(o.Amount), p.Cash)
			if amount <= 0 {
				break
			}
			p.Cash -= amount
			other.Cash += amount
			total += amount
		}
		data["amount"] = total
	case EffectCashback:
		data["amount"] = s.payFromBank(p, p.lastRentPaid)
		p.lastRentPaid = 0
	case EffectRentMultiplier:
		p.RentPercent = o.Percent
		data["percent"] = o.Percent
	case EffectShield:
		p.Shield = true
	case EffectFreeHouse:
		p.FreeHouses++
	case EffectSteal:
		if victim := s.richestOpponent(p); victim != nil {
			amount := min(s.scale(o.Amount), victim.Cash)
			victim.Cash -= amount
			p.Cash += amount
			data["victim"] = victim.ID
			data["amount"] = amount
		}
	case EffectTeleport:
		s.suspend(p, ChoiceTeleport, o, 0)
		return
	case EffectFreeze:
		if len(s.opponents(p)) == 0 {
			break
		}
		s.suspend(p, ChoiceFreeze, o, 0)
		return
	case EffectChoice:
		s.suspend(p, ChoiceSkill, o, 0)
		return
	case EffectMiniGame:
		wager := s.chargeCapped(p, s.scale(o.Amount))
		s.suspend(p, ChoiceMiniGame, o, wager)
		return
	case EffectSwitch:
		opps := s.opponents(p)
		if len(opps) == 0 {
			break
		}
		other := opps[s.rng.IntN(len(opps))]
		p.Position, other.Position = other.Position, p.Position
		data["with"] = other.ID
	case EffectShuffle:
		active := s.activePlayers()
		positions := make([]int, len(active))
		for i, a := range active {
			positions[i] = a.Position
		}
		for i := len(positions) - 1; i > 0; i-- {
			j := s.rng.IntN(i + 1)
			positions[i], positions[j] = positions[j], positions[i]
		}
		for i, a := range active {
			a.Position = positions[i]
		}
	case EffectReverse:
		s.Direction = -s.Direction
		data["direction"] = s.Direction
	case EffectShare:
		var total int64
		for _, a := range s.activePlayers() {
			total += s.payFromBank(a, s.scale(o.Amount))
		}
		data["amount"] = total
	case EffectLottery:
		active := s.activePlayers()
		winner := active[s.rng.IntN(len(active))]
		data["winner"] = winner.ID
		data["amount"] = s.payFromBank(winner, s.scale(o.Amount))
	case EffectGoToJail:
		s.sendToJail(p)
	case EffectMoveTo:
		s.emit(EventOutcomeApplied, p.ID, data)
		if p.Position != o.Target {
			s.moveTo(p, o.Target, true)
			s.land(p)
		}
		return
	case EffectMystery:
		s.emit(EventOutcomeApplied, p.ID, data)
		s.spin(p, table.without(EffectMystery))
		return
	}
	s.emit(EventOutcomeApplied, p.ID, data)
}

func (s *Session) suspend(p *Player, kind ChoiceKind, o Outcome, wager int64) {
	s.Choice = &WheelChoice{
		Kind:     kind,
		Outcome:  o,
		Choices:  o.Choices,
		PlayerID: p.ID,
		Wager:    wager,
	}
	s.Turn = TurnAwaitingChoice
	s.emit(EventChoicePending, p.ID, map[string]any{
		"kind":    kind,
		"outcome": o.ID,
		"wager":   wager,
	})
}

func (s *Session) richestOpponent(p *Player) *Player {
	var best *Player
	for _, o := range s.opponents(p) {
		if best == nil || o.Cash > best.Cash {
			best = o
		}
	}
	return best
}

func (s *Session) choicePlayer(id int64, kind ChoiceKind) (*Player, *WheelChoice, error) {
	p, err := s.turnPlayer(id)
	if err != nil {
		return nil, nil, err
	}
	if s.Turn != TurnAwaitingChoice || s.Choice == nil {
		return nil, nil, stale("no choice pending")
	}
	if s.Choice.Kind != kind {
		return nil, nil, invalid("pending choice is %s", s.Choice.Kind)
	}
	return p, s.Choice, nil
}

// finishChoice clears the pending choice and lets the turn settle.
func (s *Session) finishChoice() {
	s.Choice = nil
	s.Turn = TurnResolvingLanding
}

// ResolveWheelChoice answers a skill outcome: ChoiceRisky or ChoiceSafe.
func (s *Session) ResolveWheelChoice(id int64, index int) ([]Event, error) {
	p, c, err := s.choicePlayer(id, ChoiceSkill)
	if err != nil {
		return nil, err
	}
	if index != ChoiceRisky && index != ChoiceSafe {
		return nil, invalid("choice %d out of range", index)
	}
	s.begin()
	s.finishChoice()
	if index == ChoiceSafe {
		s.emit(EventChoiceResolved, p.ID, map[string]any{"outcome": c.Outcome.ID, "choice": "safe"})
	} else {
		s.resolveRisk(p, c.Outcome)
	}
	s.settleTurnState()
	return s.commit(), nil
}

func (s *Session) resolveRisk(p *Player, o Outcome) {
	data := map[string]any{"outcome": o.ID, "choice": "risky"}
	amount := s.scale(o.Amount)
	switch o.ID {
	case "GAMBLE":
		if chance(s.rng, 1, 2) {
			data["won"] = true
			data["amount"] = s.payFromBank(p, amount)
		} else {
			data["won"] = false
			data["amount"] = s.chargeCapped(p, amount)
		}
	case "STEAL":
		victim := s.richestOpponent(p)
		if victim != nil && chance(s.rng, 1, 2) {
			taken := min(amount, victim.Cash)
			victim.Cash -= taken
			p.Cash += taken
			data["won"] = true
			data["victim"] = victim.ID
			data["amount"] = taken
		} else {
			data["won"] = false
			data["amount"] = s.chargeCapped(p, amount)
		}
	case "ALLIN":
		if chance(s.rng, 1, 3) {
			data["won"] = true
			data["amount"] = s.payFromBank(p, 2*p.Cash)
		} else {
			data["won"] = false
			data["amount"] = s.chargeCapped(p, p.Cash/2)
		}
	case "SABOTAGE":
		data["amount"] = s.chargeCapped(p, amount)
		if target := s.sabotageTarget(p); target != nil {
			target.BlockedUntilTurn = s.TurnNumber + s.rules.SabotageRounds*len(s.activePlayers())
			data["space"] = target.Index
			data["until_turn"] = target.BlockedUntilTurn
		}
	case "DUEL":
		opps := s.opponents(p)
		if len(opps) == 0 {
			break
		}
		rival := opps[s.rng.IntN(len(opps))]
		mine, theirs := s.rng.IntN(DiceSides)+1, s.rng.IntN(DiceSides)+1
		data["rival"] = rival.ID
		data["rolls"] = []int{mine, theirs}
		switch {
		case mine > theirs:
			taken := min(amount, rival.Cash)
			rival.Cash -= taken
			p.Cash += taken
			data["won"] = true
			data["amount"] = taken
		case mine < theirs:
			paid := min(amount, p.Cash)
			p.Cash -= paid
			rival.Cash += paid
			data["won"] = false
			data["amount"] = paid
		}
	}
	s.emit(EventChoiceResolved, p.ID, data)
}

// sabotageTarget picks the opponent space that currently charges the most rent.
func (s *Session) sabotageTarget(p *Player) *Space {
	var best *Space
	var bestRent int64
	for _, sp := range s.Board {
		if sp.Owner == 0 || sp.Owner == p.ID || !sp.Ownable() {
			continue
		}
		owner := s.Player(sp.Owner)
		rent := s.rentFor(sp, owner)
		if best == nil || rent > bestRent {
			best, bestRent = sp, rent
		}
	}
	return best
}

func teleportable(sp *Space) bool {
	switch sp.Type {
	case SpaceWheel, SpaceChaos, SpaceLuck, SpaceJackpot:
		return false
	}
	return true
}

// ChooseTeleportTarget moves the player to the chosen space and resolves it.
func (s *Session) ChooseTeleportTarget(id int64, space int) ([]Event, error) {
	p, _, err := s.choicePlayer(id, ChoiceTeleport)
	if err != nil {
		return nil, err
	}
	if space < 0 || space >= len(s.Board) {
		return nil, invalid("space %d is off the board", space)
	}
	if !teleportable(s.Board[space]) {
		return nil, invalid("cannot teleport onto %s", s.Board[space].Name)
	}
	s.begin()
	s.finishChoice()
	s.emit(EventChoiceResolved, p.ID, map[string]any{"outcome": "TELEPORT", "space": space})
	s.moveTo(p, space, false)
	s.resolveLanding(p)
	return s.commit(), nil
}

// ChooseFreezeTarget makes an opponent skip their next turn.
func (s *Session) ChooseFreezeTarget(id, target int64) ([]Event, error) {
	p, _, err := s.choicePlayer(id, ChoiceFreeze)
	if err != nil {
		return nil, err
	}
	t := s.Player(target)
	if t == nil || t.ID == p.ID || t.Bankrupt {
		return nil, invalid("cannot freeze player %d", target)
	}
	s.begin()
	s.finishChoice()
	t.Frozen = true
	s.emit(EventChoiceResolved, p.ID, map[string]any{"outcome": "FREEZE", "target": target})
	s.settleTurnState()
	return s.commit(), nil
}

// ReportMiniGameResult settles a mini-game. The wager was staked into the
// bank when the outcome was drawn; a win pays back twice the wager.
func (s *Session) ReportMiniGameResult(id int64, won bool) ([]Event, error) {
	p, c, err := s.choicePlayer(id, ChoiceMiniGame)
	if err != nil {
		return nil, err
	}
	s.begin()
	s.finishChoice()
	var paid int64
	if won {
		paid = s.payFromBank(p, 2*c.Wager)
	}
	s.emit(EventMiniGameResult, p.ID, map[string]any{
		"game":   c.Outcome.ID,
		"won":    won,
		"wager":  c.Wager,
		"payout": paid,
	})
	s.settleTurnState()
	return s.commit(), nil
}

// expireChoice resolves an abandoned choice with its conservative branch.
func (s *Session) expireChoice() {
	c := s.Choice
	if c == nil {
		return
	}
	s.Choice = nil
	data := map[string]any{"outcome": c.Outcome.ID, "timeout": true}
	if c.Kind == ChoiceMiniGame {
		s.emit(EventMiniGameResult, c.PlayerID, map[string]any{
			"game":   c.Outcome.ID,
			"won":    false,
			"wager":  c.Wager,
			"payout": int64(0),
		})
		return
	}
	if c.Kind == ChoiceSkill {
		data["choice"] = "safe"
	}
	s.emit(EventChoiceResolved, c.PlayerID, data)
}

// trackStreak counts consecutive landings on the player's own improved
// property and pays the streak rewards.
func (s *Session) trackStreak(p *Player, sp *Space) {
	if s.rules.StreakJackpotAt == 0 {
		return
	}
	if sp.Owner != p.ID || sp.Houses == 0 {
		p.Streak = 0
		return
	}
	p.Streak++
	s.emit(EventStreak, p.ID, map[string]any{"streak": p.Streak})
	switch {
	case p.Streak >= s.rules.StreakJackpotAt:
		p.Streak = 0
		s.jackpot(p, s.rules.StreakJackpotPercent, "streak")
	case p.Streak == s.rules.StreakHouseAt:
		p.FreeHouses++
	case p.Streak == s.rules.StreakRentAt:
		p.RentPercent = 200
	}
}

func (s *Session) jackpot(p *Player, percent int64, reason string) {
	paid := s.payFromBank(p, s.Bank*percent/100)
	s.emit(EventOutcomeApplied, p.ID, map[string]any{
		"outcome": "JACKPOT",
		"reason":  reason,
		"amount":  paid,
	})
}
