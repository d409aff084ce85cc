// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package main

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/dustin/go-humanize/english"

	"github.com/danielhkuo/quickly-estimate/models"
)

// render prints a session as plain text. mine is the card to show for the viewer.
func render(w io.Writer, v models.SessionView, viewerID string, mine *models.Card) {
	state := "votes hidden"
	if v.Revealed {
		state = "votes revealed"
	}
	fmt.Fprintf(w, "Session %s, created %s, %s\n", v.ID, humanize.Time(time.UnixMilli(v.CreatedAt)), state)

	for _, p := range v.Participants {
		var tags []string
		if p.ID == v.CreatorID {
			tags = append(tags, "creator")
		}
		if p.ID == viewerID {
			tags = append(tags, "you")
		}
		if p.Online {
			tags = append(tags, "online")
		}

		vote := "-"
		switch {
		case p.ID == viewerID && mine != nil:
			vote = string(*mine)
		case p.Vote != nil:
			vote = string(*p.Vote)
		case p.HasVoted:
			vote = "✓"
		}

		line := fmt.Sprintf("  %-4s %s", vote, p.Nickname)
		if len(tags) > 0 {
			line += " (" + strings.Join(tags, ", ") + ")"
		}
		fmt.Fprintln(w, line)
	}

	if v.Stats != nil {
		fmt.Fprintf(w, "  %s\n", formatStats(v.Stats))
	}

	if len(v.History) > 0 {
		fmt.Fprintln(w, "History:")
	}
	for i := len(v.History) - 1; i >= 0; i-- {
		round := v.History[i]
		cards := make([]string, 0, len(round.Votes))
		for _, vote := range round.Votes {
			cards = append(cards, vote.Nickname+"="+string(vote.Vote))
		}
		fmt.Fprintf(w, "  #%d %s: %s", round.RoundNumber, humanize.Time(time.UnixMilli(round.RevealedAt)), strings.Join(cards, " "))
		if round.Stats != nil {
			fmt.Fprintf(w, " | %s", formatStats(round.Stats))
		}
		fmt.Fprintln(w)
	}
}

func formatStats(s *models.VoteStats) string {
	return fmt.Sprintf("mean %s, min %s, max %s (%s)",
		humanize.Ftoa(s.Mean), humanize.Ftoa(s.Min), humanize.Ftoa(s.Max),
		english.Plural(s.Count, "vote", "votes"))
}
