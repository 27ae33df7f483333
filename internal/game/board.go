package game

import "math"

type SpaceType string

const (
	SpaceGo       SpaceType = "go"
	SpaceProperty SpaceType = "property"
	SpaceRailroad SpaceType = "railroad"
	SpaceUtility  SpaceType = "utility"
	SpaceTax      SpaceType = "tax"
	SpaceChance   SpaceType = "chance"
	SpaceChest    SpaceType = "chest"
	SpaceJail     SpaceType = "jail"
	SpaceGotoJail SpaceType = "goto-jail"
	SpaceFree     SpaceType = "free"
	SpaceWheel    SpaceType = "wheel"
	SpaceLuck     SpaceType = "luck"
	SpaceChaos    SpaceType = "chaos"
	SpaceJackpot  SpaceType = "jackpot"
)

// SpaceDef is the static description of one board space.
type SpaceDef struct {
	Name       string
	Type       SpaceType
	Group      string
	Price      int64
	Rent       []int64
	HousePrice int64
	Amount     int64
}

// Space is the per-session copy of a SpaceDef, scaled to the buy-in.
type Space struct {
	Index            int       `json:"index"`
	Name             string    `json:"name"`
	Type             SpaceType `json:"type"`
	Group            string    `json:"group,omitempty"`
	Price            int64     `json:"price,omitempty"`
	Rent             []int64   `json:"rent,omitempty"`
	HousePrice       int64     `json:"house_price,omitempty"`
	Amount           int64     `json:"amount,omitempty"`
	Owner            int64     `json:"owner,omitempty"`
	Houses           int       `json:"houses,omitempty"`
	BlockedUntilTurn int       `json:"blocked_until_turn,omitempty"`
}

// Ownable reports whether the space can be bought.
func (s *Space) Ownable() bool {
	return s.Type == SpaceProperty || s.Type == SpaceRailroad || s.Type == SpaceUtility
}

func (s *Space) blocked(turn int) bool {
	return s.BlockedUntilTurn > turn
}

func scaleAmount(v, buyIn, base int64) int64 {
	if v == 0 {
		return 0
	}
	scaled := int64(math.Round(float64(v) * float64(buyIn) / float64(base)))
	if scaled < 1 {
		return 1
	}
	return scaled
}

func newBoard(defs []SpaceDef, buyIn, base int64) []*Space {
	board := make([]*Space, len(defs))
	for i, d := range defs {
		sp := &Space{
			Index:      i,
			Name:       d.Name,
			Type:       d.Type,
			Group:      d.Group,
			Price:      scaleAmount(d.Price, buyIn, base),
			HousePrice: scaleAmount(d.HousePrice, buyIn, base),
			Amount:     scaleAmount(d.Amount, buyIn, base),
		}
		if len(d.Rent) > 0 {
			sp.Rent = make([]int64, len(d.Rent))
			for j, r := range d.Rent {
				sp.Rent[j] = scaleAmount(r, buyIn, base)
			}
		}
		board[i] = sp
	}
	return board
}

func groupMembers(board []*Space, group string) []int {
	var out []int
	for _, sp := range board {
		if sp.Group == group && sp.Ownable() {
			out = append(out, sp.Index)
		}
	}
	return out
}

func prop(name, group string, price, house int64, rent ...int64) SpaceDef {
	return SpaceDef{Name: name, Type: SpaceProperty, Group: group, Price: price, HousePrice: house, Rent: rent}
}

func railroad(name string) SpaceDef {
	return SpaceDef{Name: name, Type: SpaceRailroad, Group: "railroad", Price: 200, Rent: []int64{25, 50, 100, 200}}
}

func utility(name string) SpaceDef {
	return SpaceDef{Name: name, Type: SpaceUtility, Group: "utility", Price: 150}
}

func classicBoard() []SpaceDef {
	return []SpaceDef{
		{Name: "GO", Type: SpaceGo},
		prop("Mediterranean Avenue", "brown", 60, 50, 2, 10, 30, 90, 160, 250),
		{Name: "Community Chest", Type: SpaceChest},
		prop("Baltic Avenue", "brown", 60, 50, 4, 20, 60, 180, 320, 450),
		{Name: "Income Tax", Type: SpaceTax, Amount: 200},
		railroad("Reading Railroad"),
		prop("Oriental Avenue", "lightblue", 100, 50, 6, 30, 90, 270, 400, 550),
		{Name: "Chance", Type: SpaceChance},
		prop("Vermont Avenue", "lightblue", 100, 50, 6, 30, 90, 270, 400, 550),
		prop("Connecticut Avenue", "lightblue", 120, 50, 8, 40, 100, 300, 450, 600),
		{Name: "Jail", Type: SpaceJail},
		prop("St. Charles Place", "pink", 140, 100, 10, 50, 150, 450, 625, 750),
		utility("Electric Company"),
		prop("States Avenue", "pink", 140, 100, 10, 50, 150, 450, 625, 750),
		prop("Virginia Avenue", "pink", 160, 100, 12, 60, 180, 500, 700, 900),
		railroad("Pennsylvania Railroad"),
		prop("St. James Place", "orange", 180, 100, 14, 70, 200, 550, 750, 950),
		{Name: "Community Chest", Type: SpaceChest},
		prop("Tennessee Avenue", "orange", 180, 100, 14, 70, 200, 550, 750, 950),
		prop("New York Avenue", "orange", 200, 100, 16, 80, 220, 600, 800, 1000),
		{Name: "Free Parking", Type: SpaceFree},
		prop("Kentucky Avenue", "red", 220, 150, 18, 90, 250, 700, 875, 1050),
		{Name: "Chance", Type: SpaceChance},
		prop("Indiana Avenue", "red", 220, 150, 18, 90, 250, 700, 875, 1050),
		prop("Illinois Avenue", "red", 240, 150, 20, 100, 300, 750, 925, 1100),
		railroad("B&O Railroad"),
		prop("Atlantic Avenue", "yellow", 260, 150, 22, 110, 330, 800, 975, 1150),
		prop("Ventnor Avenue", "yellow", 260, 150, 22, 110, 330, 800, 975, 1150),
		utility("Water Works"),
		prop("Marvin Gardens", "yellow", 280, 150, 24, 120, 360, 850, 1025, 1200),
		{Name: "Go To Jail", Type: SpaceGotoJail},
		prop("Pacific Avenue", "green", 300, 200, 26, 130, 390, 900, 1100, 1275),
		prop("North Carolina Avenue", "green", 300, 200, 26, 130, 390, 900, 1100, 1275),
		{Name: "Community Chest", Type: SpaceChest},
		prop("Pennsylvania Avenue", "green", 320, 200, 28, 150, 450, 1000, 1200, 1400),
		railroad("Short Line"),
		{Name: "Chance", Type: SpaceChance},
		prop("Park Place", "darkblue", 350, 200, 35, 175, 500, 1100, 1300, 1500),
		{Name: "Luxury Tax", Type: SpaceTax, Amount: 100},
		prop("Boardwalk", "darkblue", 400, 200, 50, 200, 600, 1400, 1700, 2000),
	}
}

// luckyBoard amounts are expressed against a bankroll of 1000.
func luckyBoard() []SpaceDef {
	return []SpaceDef{
		{Name: "GO", Type: SpaceGo},
		prop("Penny Lane", "brown", 60, 50, 15, 25, 35, 45, 60),
		{Name: "Spin", Type: SpaceWheel},
		prop("Copper Court", "brown", 70, 50, 18, 28, 38, 50, 65),
		{Name: "Lucky", Type: SpaceLuck},
		prop("Sky Street", "lightblue", 90, 60, 22, 34, 46, 60, 78),
		prop("Cloud Row", "lightblue", 100, 60, 25, 38, 50, 65, 85),
		{Name: "Spin", Type: SpaceWheel},
		prop("Rose Avenue", "pink", 110, 70, 28, 42, 56, 72, 92),
		prop("Tulip Terrace", "pink", 120, 70, 30, 45, 60, 78, 100),
		{Name: "Chaos", Type: SpaceChaos},
		prop("Sunset Strip", "orange", 130, 80, 32, 48, 64, 84, 108),
		prop("Amber Alley", "orange", 140, 80, 35, 52, 70, 90, 115),
		{Name: "Spin", Type: SpaceWheel},
		prop("Ruby Road", "red", 150, 90, 38, 56, 75, 96, 122),
		{Name: "Jackpot", Type: SpaceJackpot},
		prop("Crimson Way", "red", 160, 90, 40, 60, 80, 102, 130),
		{Name: "Free Parking", Type: SpaceFree},
		prop("Gold Boulevard", "yellow", 170, 100, 42, 64, 85, 108, 138),
		{Name: "Spin", Type: SpaceWheel},
		prop("Sunshine Square", "yellow", 180, 100, 45, 68, 90, 115, 145),
		{Name: "Tax", Type: SpaceTax, Amount: 30},
		prop("Emerald Park", "green", 200, 110, 50, 75, 100, 128, 160),
		prop("Jade Gardens", "green", 210, 110, 52, 78, 104, 132, 166),
		{Name: "Lucky", Type: SpaceLuck},
		{Name: "Spin", Type: SpaceWheel},
		prop("Sapphire Heights", "darkblue", 240, 120, 60, 90, 120, 152, 190),
		{Name: "Chaos", Type: SpaceChaos},
		prop("Diamond Drive", "darkblue", 260, 120, 65, 98, 130, 165, 205),
		{Name: "Spin", Type: SpaceWheel},
	}
}
