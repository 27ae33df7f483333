package game

import (
	"fmt"
	"sort"
)

// transfer moves cash between two players. Callers decide what happens on
// shortfall; transfer itself never lets a balance go negative.
func (s *Session) transfer(from, to *Player, amount int64) error {
	if amount < 0 {
		return invalid("negative transfer %d", amount)
	}
	if from.Cash < amount {
		return ErrInsufficientFunds
	}
	from.Cash -= amount
	to.Cash += amount
	return nil
}

func (s *Session) payBank(p *Player, amount int64) error {
	if amount < 0 {
		return invalid("negative payment %d", amount)
	}
	if p.Cash < amount {
		return ErrInsufficientFunds
	}
	p.Cash -= amount
	s.Bank += amount
	return nil
}

// chargeCapped takes up to amount from p into the bank and returns what was taken.
func (s *Session) chargeCapped(p *Player, amount int64) int64 {
	if amount > p.Cash {
		amount = p.Cash
	}
	if amount <= 0 {
		return 0
	}
	p.Cash -= amount
	s.Bank += amount
	return amount
}

// payFromBank credits p out of the bank reserve, capped at its balance.
func (s *Session) payFromBank(p *Player, amount int64) int64 {
	if amount > s.Bank {
		amount = s.Bank
	}
	if amount <= 0 {
		return 0
	}
	s.Bank -= amount
	p.Cash += amount
	return amount
}

// settleDebt pays amount from debtor to creditor (nil means the bank). When the
// debtor cannot cover it they go bankrupt and everything they hold moves to
// the creditor. It returns false on bankruptcy.
func (s *Session) settleDebt(debtor, creditor *Player, amount int64, reason string) bool {
	if debtor.Cash >= amount {
		debtor.Cash -= amount
		if creditor != nil {
			creditor.Cash += amount
		} else {
			s.Bank += amount
		}
		return true
	}
	s.eliminate(debtor, creditor, reason)
	return false
}

// eliminate flags p bankrupt and hands their cash and properties to the
// creditor, or to the bank when creditor is nil.
func (s *Session) eliminate(p, creditor *Player, reason string) {
	cash := p.Cash
	props := append([]int(nil), p.Properties...)
	if creditor != nil {
		creditor.Cash += cash
		for _, idx := range props {
			s.assign(idx, creditor)
		}
	} else {
		s.Bank += cash
		for _, idx := range props {
			s.release(idx)
		}
	}
	p.Cash = 0
	p.Properties = nil
	p.Bankrupt = true
	p.InJail = false
	p.JailTurns = 0
	p.Shield = false
	p.Frozen = false
	p.RentPercent = 0
	p.Streak = 0
	p.FreeHouses = 0
	s.dropTrades(p.ID)

	var creditorID int64
	if creditor != nil {
		creditorID = creditor.ID
	}
	s.emit(EventPlayerBankrupt, p.ID, map[string]any{
		"reason":     reason,
		"creditor":   creditorID,
		"cash":       cash,
		"properties": props,
	})
}

// assign gives a space to p, removing it from any previous owner.
func (s *Session) assign(idx int, p *Player) {
	sp := s.Board[idx]
	if sp.Owner != 0 {
		if prev := s.Player(sp.Owner); prev != nil {
			prev.Properties = removeIndex(prev.Properties, idx)
		}
	}
	sp.Owner = p.ID
	p.Properties = insertIndex(p.Properties, idx)
}

// release returns a space to the bank with its improvements cleared.
func (s *Session) release(idx int) {
	sp := s.Board[idx]
	if sp.Owner != 0 {
		if prev := s.Player(sp.Owner); prev != nil {
			prev.Properties = removeIndex(prev.Properties, idx)
		}
	}
	sp.Owner = 0
	sp.Houses = 0
	sp.BlockedUntilTurn = 0
}

func insertIndex(list []int, idx int) []int {
	i := sort.SearchInts(list, idx)
	if i < len(list) && list[i] == idx {
		return list
	}
	list = append(list, 0)
	copy(list[i+1:], list[i:])
	list[i] = idx
	return list
}

func removeIndex(list []int, idx int) []int {
	for i, v := range list {
		if v == idx {
			return append(list[:i], list[i+1:]...)
		}
	}
	return list
}

func (s *Session) owns(p *Player, idx int) bool {
	return idx >= 0 && idx < len(s.Board) && s.Board[idx].Owner == p.ID
}

// hasMonopoly reports whether owner holds every space of the group.
func (s *Session) hasMonopoly(owner int64, group string) bool {
	if group == "" {
		return false
	}
	members := groupMembers(s.Board, group)
	if len(members) == 0 {
		return false
	}
	for _, idx := range members {
		if s.Board[idx].Owner != owner {
			return false
		}
	}
	return true
}

// CheckInvariants verifies that money is conserved and ownership is consistent.
func (s *Session) CheckInvariants() error {
	if s.Phase == PhaseLobby {
		return nil
	}
	if s.Bank < 0 {
		return fmt.Errorf("bank is negative: %d", s.Bank)
	}
	sum := s.Bank
	owned := make(map[int]int64)
	for _, p := range s.Players {
		if p.Cash < 0 {
			return fmt.Errorf("player %d has negative cash %d", p.ID, p.Cash)
		}
		if p.Bankrupt && (p.Cash != 0 || len(p.Properties) != 0) {
			return fmt.Errorf("bankrupt player %d still holds assets", p.ID)
		}
		sum += p.Cash
		for _, idx := range p.Properties {
			if prev, dup := owned[idx]; dup {
				return fmt.Errorf("space %d listed by %d and %d", idx, prev, p.ID)
			}
			owned[idx] = p.ID
		}
	}
	if sum != s.Pot {
		return fmt.Errorf("money not conserved: cash+bank=%d pot=%d", sum, s.Pot)
	}
	for _, sp := range s.Board {
		if sp.Owner == 0 {
			if sp.Houses != 0 {
				return fmt.Errorf("unowned space %d has %d houses", sp.Index, sp.Houses)
			}
			continue
		}
		if owned[sp.Index] != sp.Owner {
			return fmt.Errorf("space %d owner %d not listed by owner", sp.Index, sp.Owner)
		}
	}
	for idx := range owned {
		if s.Board[idx].Owner == 0 {
			return fmt.Errorf("space %d listed but unowned", idx)
		}
	}
	return nil
}
