// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package poker

import (
	"math"

	"github.com/danielhkuo/quickly-estimate/models"
)

// Aggregate summarizes the numeric cards in votes. Symbolic cards (? and ☕)
// are skipped. Returns nil when no numeric vote remains.
func Aggregate(votes []models.Card) *models.VoteStats {
	var values []float64
	for _, v := range votes {
		if n, ok := v.Numeric(); ok {
			values = append(values, n)
		}
	}
	if len(values) == 0 {
		return nil
	}

	lo, hi := values[0], values[0]
	for _, v := range values[1:] {
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}

	return &models.VoteStats{
		Count: len(values),
		Mean:  roundTenth(mean(values)),
		Min:   lo,
		Max:   hi,
	}
}

// RoundStats aggregates an archived round.
func RoundStats(round models.RoundHistory) *models.VoteStats {
	cards := make([]models.Card, len(round.Votes))
	for i, v := range round.Votes {
		cards[i] = v.Vote
	}
	return Aggregate(cards)
}

// mean calculates the arithmetic mean
func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0.0
	}

	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

func roundTenth(v float64) float64 {
	return math.Round(v*10) / 10
}
