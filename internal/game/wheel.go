package game

import "fmt"

type Category string

const (
	CategoryPayout     Category = "payout"
	CategoryLoss       Category = "loss"
	CategoryRent       Category = "rent-modifier"
	CategoryRelocation Category = "relocation"
	CategoryChaos      Category = "chaos"
	CategoryLottery    Category = "lottery"
	CategoryFreeze     Category = "freeze"
	CategoryChoice     Category = "skill-choice"
	CategoryMiniGame   Category = "mini-game"
	CategoryMystery    Category = "mystery"
	CategoryCard       Category = "card"
)

type Effect string

const (
	EffectCredit         Effect = "credit"
	EffectDebit          Effect = "debit"
	EffectPayEach        Effect = "pay-each"
	EffectCashback       Effect = "cashback"
	EffectRentMultiplier Effect = "rent-multiplier"
	EffectShield         Effect = "shield"
	EffectFreeHouse      Effect = "free-house"
	EffectSteal          Effect = "steal"
	EffectTeleport       Effect = "teleport"
	EffectSwitch         Effect = "switch"
	EffectMoveTo         Effect = "move-to"
	EffectGoToJail       Effect = "go-to-jail"
	EffectShuffle        Effect = "shuffle"
	EffectReverse        Effect = "reverse"
	EffectShare          Effect = "share"
	EffectLottery        Effect = "lottery"
	EffectFreeze         Effect = "freeze"
	EffectChoice         Effect = "choice"
	EffectMiniGame       Effect = "mini-game"
	EffectMystery        Effect = "mystery"
)

// Outcome is one weighted entry of an outcome table. Amount is in base
// bankroll units and is scaled to the session buy-in when applied.
type Outcome struct {
	ID       string   `json:"id"`
	Label    string   `json:"label"`
	Category Category `json:"category"`
	Effect   Effect   `json:"effect"`
	Weight   int      `json:"weight"`
	Amount   int64    `json:"amount,omitempty"`
	Percent  int64    `json:"percent,omitempty"`
	Target   int      `json:"target,omitempty"`
	Choices  []string `json:"choices,omitempty"`
}

// OutcomeTable draws outcomes proportionally to their weights.
type OutcomeTable struct {
	outcomes []Outcome
	total    int
}

func NewOutcomeTable(outcomes []Outcome) (*OutcomeTable, error) {
	if len(outcomes) == 0 {
		return nil, fmt.Errorf("outcome table is empty")
	}
	t := &OutcomeTable{outcomes: make([]Outcome, len(outcomes))}
	copy(t.outcomes, outcomes)
	for _, o := range outcomes {
		if o.Weight <= 0 {
			return nil, fmt.Errorf("outcome %s has non-positive weight %d", o.ID, o.Weight)
		}
		t.total += o.Weight
	}
	return t, nil
}

func mustTable(outcomes []Outcome) *OutcomeTable {
	t, err := NewOutcomeTable(outcomes)
	if err != nil {
		panic(err)
	}
	return t
}

// Draw picks a value in [1, total] and subtracts weights in table order
// until the remainder is non-positive.
func (t *OutcomeTable) Draw(r Random) Outcome {
	v := r.IntN(t.total) + 1
	for _, o := range t.outcomes {
		v -= o.Weight
		if v <= 0 {
			return o
		}
	}
	return t.outcomes[len(t.outcomes)-1]
}

func (t *OutcomeTable) Total() int {
	return t.total
}

func (t *OutcomeTable) Outcomes() []Outcome {
	out := make([]Outcome, len(t.outcomes))
	copy(out, t.outcomes)
	return out
}

// Share returns the configured probability of an outcome id.
func (t *OutcomeTable) Share(id string) float64 {
	w := 0
	for _, o := range t.outcomes {
		if o.ID == id {
			w += o.Weight
		}
	}
	return float64(w) / float64(t.total)
}

func (t *OutcomeTable) without(effect Effect) *OutcomeTable {
	var kept []Outcome
	for _, o := range t.outcomes {
		if o.Effect != effect {
			kept = append(kept, o)
		}
	}
	return mustTable(kept)
}

var safeChoice = []string{"risk it", "play safe"}

func miniGame(id, label string, stake int64) Outcome {
	return Outcome{ID: id, Label: label, Category: CategoryMiniGame, Effect: EffectMiniGame, Weight: 15, Amount: stake}
}

// LuckyWheel is the Lucky Streets spin table. Weights sum to 1000.
func LuckyWheel() *OutcomeTable {
	return mustTable([]Outcome{
		{ID: "JACKPOT", Label: "Jackpot", Category: CategoryPayout, Effect: EffectCredit, Weight: 10, Percent: 50},
		{ID: "PAYDAY", Label: "Payday", Category: CategoryPayout, Effect: EffectCredit, Weight: 55, Amount: 50},
		{ID: "BONUS", Label: "Bonus", Category: CategoryPayout, Effect: EffectCredit, Weight: 70, Amount: 30},
		{ID: "CASHBACK", Label: "Cashback", Category: CategoryPayout, Effect: EffectCashback, Weight: 30},
		{ID: "TAX", Label: "Tax", Category: CategoryLoss, Effect: EffectDebit, Weight: 60, Amount: 30},
		{ID: "BROKE", Label: "Broke", Category: CategoryLoss, Effect: EffectDebit, Weight: 15, Percent: 50},
		{ID: "FINE", Label: "Fine", Category: CategoryLoss, Effect: EffectDebit, Weight: 60, Amount: 20},
		{ID: "ROBBED", Label: "Robbed", Category: CategoryLoss, Effect: EffectDebit, Weight: 40, Amount: 40},
		{ID: "OOPS", Label: "Oops", Category: CategoryLoss, Effect: EffectPayEach, Weight: 40, Amount: 10},
		{ID: "DOUBLE", Label: "Double rent", Category: CategoryRent, Effect: EffectRentMultiplier, Weight: 50, Percent: 200},
		{ID: "TRIPLE", Label: "Triple rent", Category: CategoryRent, Effect: EffectRentMultiplier, Weight: 25, Percent: 300},
		{ID: "CRASH", Label: "Market crash", Category: CategoryRent, Effect: EffectRentMultiplier, Weight: 30, Percent: 50},
		{ID: "INSURANCE", Label: "Insurance", Category: CategoryRent, Effect: EffectShield, Weight: 40},
		{ID: "TELEPORT", Label: "Teleport", Category: CategoryRelocation, Effect: EffectTeleport, Weight: 30},
		{ID: "SWITCH", Label: "Switch", Category: CategoryRelocation, Effect: EffectSwitch, Weight: 30},
		{ID: "HOME", Label: "Go home", Category: CategoryRelocation, Effect: EffectMoveTo, Weight: 20, Target: 0},
		{ID: "SHUFFLE", Label: "Shuffle", Category: CategoryChaos, Effect: EffectShuffle, Weight: 20},
		{ID: "REVERSE", Label: "Reverse", Category: CategoryChaos, Effect: EffectReverse, Weight: 25},
		{ID: "RAIN", Label: "Money rain", Category: CategoryChaos, Effect: EffectShare, Weight: 25, Amount: 20},
		{ID: "LOTTERY", Label: "Lottery", Category: CategoryLottery, Effect: EffectLottery, Weight: 30, Amount: 100},
		{ID: "FREEZE", Label: "Freeze", Category: CategoryFreeze, Effect: EffectFreeze, Weight: 30},
		{ID: "GAMBLE", Label: "Double or nothing", Category: CategoryChoice, Effect: EffectChoice, Weight: 40, Amount: 50, Choices: safeChoice},
		{ID: "STEAL", Label: "Steal", Category: CategoryChoice, Effect: EffectChoice, Weight: 35, Amount: 50, Choices: safeChoice},
		{ID: "ALLIN", Label: "All in", Category: CategoryChoice, Effect: EffectChoice, Weight: 15, Choices: safeChoice},
		{ID: "SABOTAGE", Label: "Sabotage", Category: CategoryChoice, Effect: EffectChoice, Weight: 20, Amount: 20, Choices: safeChoice},
		{ID: "DUEL", Label: "Dice duel", Category: CategoryChoice, Effect: EffectChoice, Weight: 30, Amount: 50, Choices: safeChoice},
		miniGame("PONG", "Pong", 50),
		miniGame("DODGE", "Dodge", 50),
		miniGame("REACTION", "Reaction", 40),
		miniGame("MEMORY", "Memory", 40),
		miniGame("CLICKER", "Clicker", 30),
		miniGame("SNAKE", "Snake", 50),
		miniGame("HIGHLOW", "High or low", 40),
		{ID: "MYSTERY", Label: "Mystery", Category: CategoryMystery, Effect: EffectMystery, Weight: 20},
	})
}

// ChaosTable is drawn on chaos spaces.
func ChaosTable() *OutcomeTable {
	return mustTable([]Outcome{
		{ID: "SHUFFLE", Label: "Shuffle", Category: CategoryChaos, Effect: EffectShuffle, Weight: 25},
		{ID: "REVERSE", Label: "Reverse", Category: CategoryChaos, Effect: EffectReverse, Weight: 25},
		{ID: "RAIN", Label: "Money rain", Category: CategoryChaos, Effect: EffectShare, Weight: 20, Amount: 20},
		{ID: "SWITCH", Label: "Switch", Category: CategoryRelocation, Effect: EffectSwitch, Weight: 15},
		{ID: "OOPS", Label: "Oops", Category: CategoryLoss, Effect: EffectPayEach, Weight: 15, Amount: 10},
	})
}

// LuckDrops is drawn on luck spaces.
func LuckDrops() *OutcomeTable {
	return mustTable([]Outcome{
		{ID: "CASH", Label: "Cash drop", Category: CategoryPayout, Effect: EffectCredit, Weight: 40, Amount: 40},
		{ID: "SHIELD", Label: "Shield", Category: CategoryRent, Effect: EffectShield, Weight: 25},
		{ID: "HOUSE", Label: "Free house", Category: CategoryPayout, Effect: EffectFreeHouse, Weight: 20},
		{ID: "SNIPER", Label: "Sniper", Category: CategoryPayout, Effect: EffectSteal, Weight: 15, Amount: 30},
	})
}

func card(id, label string, effect Effect, amount int64, target int) Outcome {
	return Outcome{ID: id, Label: label, Category: CategoryCard, Effect: effect, Weight: 1, Amount: amount, Target: target}
}

// ChanceCards is the classic chance deck.
func ChanceCards() *OutcomeTable {
	return mustTable([]Outcome{
		card("ADVANCE_GO", "Advance to GO", EffectMoveTo, 0, 0),
		card("DIVIDEND", "Bank pays you dividend", EffectCredit, 50, 0),
		card("GO_TO_JAIL", "Go to jail", EffectGoToJail, 0, 0),
		card("SPEEDING", "Speeding fine", EffectDebit, 15, 0),
		card("LOAN", "Building loan matures", EffectCredit, 150, 0),
		card("CHAIRMAN", "Elected chairman of the board", EffectDebit, 50, 0),
		card("ILLINOIS", "Advance to Illinois Avenue", EffectMoveTo, 0, 24),
		card("CROSSWORD", "Crossword competition prize", EffectCredit, 100, 0),
	})
}

// ChestCards is the classic community chest deck.
func ChestCards() *OutcomeTable {
	return mustTable([]Outcome{
		card("BANK_ERROR", "Bank error in your favour", EffectCredit, 200, 0),
		card("DOCTOR", "Doctor's fee", EffectDebit, 50, 0),
		card("STOCK", "Sale of stock", EffectCredit, 50, 0),
		card("GO_TO_JAIL", "Go to jail", EffectGoToJail, 0, 0),
		card("ADVANCE_GO", "Advance to GO", EffectMoveTo, 0, 0),
		card("HOLIDAY", "Holiday fund matures", EffectCredit, 100, 0),
		card("HOSPITAL", "Hospital fees", EffectDebit, 100, 0),
		card("REFUND", "Income tax refund", EffectCredit, 20, 0),
	})
}
