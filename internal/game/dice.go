package game

const DiceSides = 6

// Dice is one roll of two independent six-sided dice.
type Dice [2]int

func rollDice(r Random) Dice {
	return Dice{r.IntN(DiceSides) + 1, r.IntN(DiceSides) + 1}
}

func (d Dice) Total() int {
	return d[0] + d[1]
}

func (d Dice) IsDouble() bool {
	return d[0] != 0 && d[0] == d[1]
}
