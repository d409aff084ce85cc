// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package models

import "strconv"

// Card is one estimate symbol from the fixed deck.
type Card string

const (
	CardZero     Card = "0"
	CardOne      Card = "1"
	CardTwo      Card = "2"
	CardThree    Card = "3"
	CardFive     Card = "5"
	CardEight    Card = "8"
	CardThirteen Card = "13"
	CardTwenty1  Card = "21"
	CardUnsure   Card = "?"
	CardCoffee   Card = "☕"
)

// CoffeeAlias is the textual spelling of CardCoffee accepted on input.
// It is one-way: stored and returned votes always carry CardCoffee.
const CoffeeAlias = "coffee-cup"

// Deck lists every valid card in display order.
var Deck = []Card{
	CardZero, CardOne, CardTwo, CardThree, CardFive,
	CardEight, CardThirteen, CardTwenty1, CardUnsure, CardCoffee,
}

// ParseCard validates s against the deck.
func ParseCard(s string) (Card, bool) {
	if s == CoffeeAlias {
		return CardCoffee, true
	}
	for _, c := range Deck {
		if string(c) == s {
			return c, true
		}
	}
	return "", false
}

// Numeric reports the card's value when it is a number card.
func (c Card) Numeric() (float64, bool) {
	v, err := strconv.ParseFloat(string(c), 64)
	if err != nil {
		return 0, false
	}
	return v, true
}
