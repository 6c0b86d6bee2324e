package card

import "strconv"

// Card identifies one of the 52 cards by deck index: 0-12 hearts, 13-25
// spades, 26-38 clubs, 39-51 diamonds, each running 2..10, J, Q, K, A.
// Suit is cosmetic; only the rank value matters for scoring.
type Card int

// Hidden is the sentinel for the dealer's concealed second card. It is what
// goes over the wire in place of the real card and scores as zero.
const Hidden Card = 99

// DeckSize is the number of cards in a full shoe.
const DeckSize = 52

const ranksPerSuit = 13

// rankValues maps rank index (0 = deuce) to its blackjack value. Aces are
// always 11 in this ruleset; there is no soft-hand re-valuation.
var rankValues = [ranksPerSuit]int{2, 3, 4, 5, 6, 7, 8, 9, 10, 10, 10, 10, 11}

var rankNames = [ranksPerSuit]string{"2", "3", "4", "5", "6", "7", "8", "9", "10", "J", "Q", "K", "A"}

var suitSymbols = [4]string{"♥", "♠", "♣", "♦"}

// Value returns the card's scoring value, or 0 for the hidden sentinel.
func (c Card) Value() int {
	if c == Hidden {
		return 0
	}
	return rankValues[int(c)%ranksPerSuit]
}

func (c Card) String() string {
	if c == Hidden {
		return "??"
	}
	if c < 0 || int(c) >= DeckSize {
		return strconv.Itoa(int(c))
	}
	return rankNames[int(c)%ranksPerSuit] + suitSymbols[int(c)/ranksPerSuit]
}

// Score sums the values of a hand. Pure; order of the hand is irrelevant.
func Score(hand []Card) int {
	total := 0
	for _, c := range hand {
		total += c.Value()
	}
	return total
}
