package game

import (
	"sort"

	"github.com/sirupsen/logrus"

	"github.com/Fizzyy89/nerdquiz-next-sub000/internal/model"
)

// beginRound advances the round counter and decides what the round is made
// of: a category fixed by the custom sequence, an injected bonus round, or a
// category-selection mini-game.
func (s *Service) beginRound(room *model.Room, ev *events) {
	g := room.Game
	g.Round++
	g.Selection = nil
	g.Bonus = nil
	g.Questions = nil
	g.QuestionIdx = 0

	if idx := g.Round - 1; idx < len(room.Settings.CustomRounds) && room.Settings.CustomRounds[idx] != "" {
		s.loadCategory(room, ev, room.Settings.CustomRounds[idx], "")
		return
	}

	finalRound := g.Round >= room.Settings.Rounds
	wantBonus := (finalRound && g.BonusForcedFinal) ||
		(!finalRound && g.Round > 1 && s.roller.Float64() < room.Settings.BonusProbability)
	if wantBonus && s.startBonus(room, ev) {
		return
	}

	s.startCategorySelection(room, ev)
}

// showScoreboard presents the standings between rounds.
func (s *Service) showScoreboard(room *model.Room, ev *events) {
	s.setPhase(room, ev, model.PhaseScoreboard)
	ev.add(EvtScoreboard, s.standings(room))
	s.scheduleAfter(room, s.cfg.ScoreboardPause, s.afterScoreboard)
}

// afterScoreboard either starts the next round or ends the match.
func (s *Service) afterScoreboard(room *model.Room, ev *events) {
	if room.Game.Phase != model.PhaseScoreboard {
		return
	}
	if room.Game.Round >= room.Settings.Rounds {
		s.finishMatch(room, ev)
		return
	}
	s.beginRound(room, ev)
}

// standings returns all players sorted strictly descending by score.
func (s *Service) standings(room *model.Room) []StandingsEntry {
	players := make([]*model.Player, 0, len(room.Players))
	for _, p := range room.Players {
		players = append(players, p)
	}
	sort.Slice(players, func(i, j int) bool {
		if players[i].Score != players[j].Score {
			return players[i].Score > players[j].Score
		}
		return players[i].JoinedAt.Before(players[j].JoinedAt)
	})

	out := make([]StandingsEntry, len(players))
	for i, p := range players {
		out[i] = StandingsEntry{PlayerID: p.ID, Name: p.Name, Score: p.Score, Rank: i + 1}
	}
	return out
}

// finishMatch aggregates the final report and opens the rematch vote.
func (s *Service) finishMatch(room *model.Room, ev *events) {
	s.setPhase(room, ev, model.PhaseFinal)
	room.Game.RematchVotes = make(map[string]bool)

	summary := MatchSummaryPayload{Rankings: s.standings(room)}

	stats := room.Game.Stats
	bestDev, bestLat := -1.0, int64(-1)
	for id, ps := range stats.Players {
		if ps.Estimations > 0 {
			avg := ps.DeviationSum / float64(ps.Estimations)
			if bestDev < 0 || avg < bestDev {
				bestDev = avg
				summary.BestEstimator = id
			}
		}
		if ps.Answered > 0 {
			avg := ps.TotalLatencyMS / int64(ps.Answered)
			if bestLat < 0 || avg < bestLat {
				bestLat = avg
				summary.FastestResponder = id
			}
		}
	}

	bestAcc, worstAcc := -1.0, 2.0
	for id, cs := range stats.Categories {
		if cs.Total == 0 {
			continue
		}
		acc := float64(cs.Correct) / float64(cs.Total)
		name := id
		if meta, ok := s.provider.CategoryMeta(id); ok {
			name = meta.Name
		}
		if acc > bestAcc {
			bestAcc = acc
			summary.BestCategory = name
		}
		if acc < worstAcc {
			worstAcc = acc
			summary.WorstCategory = name
		}
	}

	ev.add(EvtMatchSummary, summary)
	s.scheduleAfter(room, s.cfg.RematchWindow, s.finalizeRematch)
	s.log.WithFields(logrus.Fields{"room": room.Code, "rounds": room.Game.Round}).Info("match finished")
}

// VoteRematch records a rematch vote. A "no" removes the player immediately;
// non-voters are defaulted to "no" when the window closes.
func (s *Service) VoteRematch(code, playerID string, again bool) error {
	return s.mutate(code, func(room *model.Room, ev *events) error {
		if room.Game.Phase != model.PhaseFinal {
			return errIgnored
		}
		if _, ok := room.Players[playerID]; !ok {
			return ErrPlayerNotFound
		}

		if !again {
			delete(room.Players, playerID)
			delete(room.Game.RematchVotes, playerID)
			ev.add(EvtPlayerLeft, map[string]string{"playerId": playerID})
			if len(room.Players) == 0 {
				s.teardown(room, ev)
				return nil
			}
		} else {
			room.Game.RematchVotes[playerID] = true
		}

		ev.add(EvtRematchUpdate, RematchUpdatePayload{Votes: room.Game.RematchVotes})

		if len(room.Game.RematchVotes) >= len(room.Players) {
			s.finalizeRematch(room, ev)
		}
		return nil
	})
}

// finalizeRematch prunes non-voters, then either tears the room down or
// resets it to the lobby with a freshly elected host.
func (s *Service) finalizeRematch(room *model.Room, ev *events) {
	if room.Game.Phase != model.PhaseFinal {
		return
	}

	for id := range room.Players {
		if !room.Game.RematchVotes[id] {
			delete(room.Players, id)
			ev.add(EvtPlayerLeft, map[string]string{"playerId": id})
		}
	}

	if len(room.Players) == 0 {
		s.teardown(room, ev)
		return
	}

	s.timers.Cancel(room.Code)
	gen := room.Game.TimerGen
	room.Game = model.NewGameState()
	room.Game.TimerGen = gen + 1

	if _, ok := room.Players[room.HostID]; !ok {
		room.HostID = s.electHost(room)
	}
	for id, p := range room.Players {
		p.Score = 0
		p.Streak = 0
		p.ClearAnswer()
		p.IsHost = id == room.HostID
	}

	ev.add(EvtPhaseChanged, PhaseChangedPayload{Phase: model.PhaseLobby})
	s.log.WithFields(logrus.Fields{"room": room.Code, "players": len(room.Players)}).Info("rematch accepted")
}

// electHost picks the longest-standing connected player, falling back to the
// longest-standing player of any connectivity.
func (s *Service) electHost(room *model.Room) string {
	var best *model.Player
	for _, p := range room.Players {
		if best == nil {
			best = p
			continue
		}
		if p.Connected != best.Connected {
			if p.Connected {
				best = p
			}
			continue
		}
		if p.JoinedAt.Before(best.JoinedAt) {
			best = p
		}
	}
	if best == nil {
		return ""
	}
	return best.ID
}
