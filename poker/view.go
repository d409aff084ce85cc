// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package poker

import (
	"sort"

	"github.com/danielhkuo/quickly-estimate/models"
)

// OrderedParticipants returns participants in join order, ties broken by id.
func OrderedParticipants(s *models.Session) []*models.Participant {
	out := make([]*models.Participant, 0, len(s.Participants))
	for _, p := range s.Participants {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].JoinedAt != out[j].JoinedAt {
			return out[i].JoinedAt < out[j].JoinedAt
		}
		return out[i].ID < out[j].ID
	})
	return out
}

// Project builds what viewerID is allowed to see. Before reveal, other
// participants' votes are replaced by HasVoted; the viewer still sees their
// own vote as CurrentVote. online may be nil when presence is not tracked.
func Project(s *models.Session, viewerID string, online map[string]bool) models.SessionView {
	view := models.SessionView{
		ID:           s.ID,
		CreatedAt:    s.CreatedAt,
		CreatorID:    s.CreatorID,
		Revealed:     s.Revealed,
		Participants: []models.ParticipantView{},
		History:      []models.RoundView{},
		Version:      s.Version,
	}

	var revealedVotes []models.Card
	for _, p := range OrderedParticipants(s) {
		pv := models.ParticipantView{
			ID:       p.ID,
			Nickname: p.Nickname,
			HasVoted: p.Vote != nil,
			JoinedAt: p.JoinedAt,
			Online:   online[p.ID],
		}
		if p.Vote != nil {
			card := *p.Vote
			if s.Revealed || p.ID == viewerID {
				pv.Vote = &card
			}
			if p.ID == viewerID {
				view.CurrentVote = &card
			}
			revealedVotes = append(revealedVotes, card)
		}
		view.Participants = append(view.Participants, pv)
	}

	if s.Revealed {
		view.Stats = Aggregate(revealedVotes)
	}

	for _, round := range s.VoteHistory {
		view.History = append(view.History, models.RoundView{
			RoundHistory: round,
			Stats:        RoundStats(round),
		})
	}

	return view
}
