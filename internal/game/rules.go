package game

import (
	"fmt"
	"time"
)

type VariantKind string

const (
	VariantClassic VariantKind = "classic"
	VariantLucky   VariantKind = "lucky"
)

// LandingResolver decides what happens when a player stops on a space.
// It runs inside a session operation, so it may emit events and mutate state
// through the session helpers.
type LandingResolver interface {
	Resolve(s *Session, p *Player)
}

// Rules parameterize the shared turn engine for one game variant.
type Rules struct {
	Variant      VariantKind
	Board        []SpaceDef
	BaseBankroll int64
	MaxPlayers   int
	MinPlayers   int

	GoIncome     int64
	JailIndex    int
	JailBail     int64
	MaxJailTurns int

	MaxHouses           int
	BuildNeedsMonopoly  bool
	MonopolyDoublesRent bool
	AuctionStartPercent int64

	TurnTimeout     time.Duration
	DecisionTimeout time.Duration
	TimeoutPenalty  int64
	SessionLength   time.Duration
	MaxRounds       int

	Draft         bool
	DraftPoolSize int
	DraftPicks    int

	Wheel  *OutcomeTable
	Chaos  *OutcomeTable
	Luck   *OutcomeTable
	Chance *OutcomeTable
	Chest  *OutcomeTable

	StreakRentAt         int
	StreakHouseAt        int
	StreakJackpotAt      int
	StreakJackpotPercent int64
	JackpotSpacePercent  int64
	SabotageRounds       int

	Resolver LandingResolver
}

// Overrides replaces rule constants from configuration. Zero values keep the default.
type Overrides struct {
	TurnTimeout     time.Duration
	DecisionTimeout time.Duration
	TimeoutPenalty  int64
	SessionLength   time.Duration
	MaxRounds       int
}

func (o Overrides) Apply(r *Rules) {
	if o.TurnTimeout > 0 {
		r.TurnTimeout = o.TurnTimeout
	}
	if o.DecisionTimeout > 0 {
		r.DecisionTimeout = o.DecisionTimeout
	}
	if o.TimeoutPenalty > 0 {
		r.TimeoutPenalty = o.TimeoutPenalty
	}
	if o.SessionLength > 0 {
		r.SessionLength = o.SessionLength
	}
	if o.MaxRounds > 0 {
		r.MaxRounds = o.MaxRounds
	}
}

// RulesFor returns a fresh copy of the default rules of a variant.
func RulesFor(kind VariantKind) (*Rules, error) {
	switch kind {
	case VariantClassic:
		return ClassicRules(), nil
	case VariantLucky:
		return LuckyRules(), nil
	default:
		return nil, fmt.Errorf("unknown variant: %s", kind)
	}
}

// ClassicRules is the 40-space board with a pre-game draft and a soft turn timer.
func ClassicRules() *Rules {
	return &Rules{
		Variant:             VariantClassic,
		Board:               classicBoard(),
		BaseBankroll:        1500,
		MaxPlayers:          4,
		MinPlayers:          2,
		GoIncome:            200,
		JailIndex:           10,
		JailBail:            50,
		MaxJailTurns:        3,
		MaxHouses:           5,
		BuildNeedsMonopoly:  true,
		MonopolyDoublesRent: true,
		AuctionStartPercent: 50,
		TurnTimeout:         90 * time.Second,
		DecisionTimeout:     45 * time.Second,
		TimeoutPenalty:      0,
		SessionLength:       60 * time.Minute,
		MaxRounds:           100,
		Draft:               true,
		DraftPoolSize:       6,
		DraftPicks:          2,
		Chance:              ChanceCards(),
		Chest:               ChestCards(),
		Resolver:            classicResolver{},
	}
}

// LuckyRules is the fast 30-space wheel variant.
func LuckyRules() *Rules {
	return &Rules{
		Variant:              VariantLucky,
		Board:                luckyBoard(),
		BaseBankroll:         1000,
		MaxPlayers:           4,
		MinPlayers:           2,
		GoIncome:             50,
		JailIndex:            -1,
		MaxHouses:            4,
		AuctionStartPercent:  50,
		TurnTimeout:          10 * time.Second,
		DecisionTimeout:      15 * time.Second,
		TimeoutPenalty:       10,
		SessionLength:        5 * time.Minute,
		MaxRounds:            30,
		Wheel:                LuckyWheel(),
		Chaos:                ChaosTable(),
		Luck:                 LuckDrops(),
		StreakRentAt:         2,
		StreakHouseAt:        3,
		StreakJackpotAt:      4,
		StreakJackpotPercent: 20,
		JackpotSpacePercent:  10,
		SabotageRounds:       3,
		Resolver:             luckyResolver{},
	}
}

type classicResolver struct{}

func (classicResolver) Resolve(s *Session, p *Player) {
	sp := s.Board[p.Position]
	switch sp.Type {
	case SpaceProperty, SpaceRailroad, SpaceUtility:
		s.landOnOwnable(p, sp)
	case SpaceTax:
		s.chargeTax(p, sp)
	case SpaceChance:
		s.drawCard(p, s.rules.Chance)
	case SpaceChest:
		s.drawCard(p, s.rules.Chest)
	case SpaceGotoJail:
		s.sendToJail(p)
	}
}

type luckyResolver struct{}

func (luckyResolver) Resolve(s *Session, p *Player) {
	sp := s.Board[p.Position]
	s.trackStreak(p, sp)
	switch sp.Type {
	case SpaceProperty, SpaceRailroad, SpaceUtility:
		s.landOnOwnable(p, sp)
	case SpaceTax:
		s.chargeTax(p, sp)
	case SpaceWheel:
		s.spin(p, s.rules.Wheel)
	case SpaceChaos:
		s.spin(p, s.rules.Chaos)
	case SpaceLuck:
		s.spin(p, s.rules.Luck)
	case SpaceJackpot:
		s.jackpot(p, s.rules.JackpotSpacePercent, "jackpot-space")
	}
}
