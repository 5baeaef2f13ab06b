package game

import (
	"sort"
	"time"

	"github.com/Fizzyy89/nerdquiz-next-sub000/internal/model"
	"github.com/Fizzyy89/nerdquiz-next-sub000/internal/scoring"
)

// startQuestion enters the next question of the round: answer slots are
// cleared and a fresh deadline governs the phase.
func (s *Service) startQuestion(room *model.Room, ev *events) {
	g := room.Game
	q := &g.Questions[g.QuestionIdx]

	for _, p := range room.Players {
		p.ClearAnswer()
	}

	phase := model.PhaseQuestion
	if q.Kind == model.QuestionEstimation {
		phase = model.PhaseEstimation
	}
	s.setPhase(room, ev, phase)
	g.QuestionStart = s.clock.Now()
	s.scheduleAfter(room, s.questionWindow(room), s.finalizeReveal)
}

func (s *Service) questionWindow(room *model.Room) time.Duration {
	return time.Duration(room.Settings.SecondsPerQuestion) * time.Second
}

// SubmitChoice records a choice answer for the live question.
func (s *Service) SubmitChoice(code, playerID string, choiceIdx int) error {
	return s.mutate(code, func(room *model.Room, ev *events) error {
		g := room.Game
		if g.Phase != model.PhaseQuestion {
			return errIgnored
		}
		q := &g.Questions[g.QuestionIdx]
		p, ok := room.Players[playerID]
		if !ok {
			return ErrPlayerNotFound
		}
		if p.HasAnswered() {
			return errIgnored
		}
		if choiceIdx < 0 || choiceIdx >= len(q.Options) {
			return ErrInvalidAnswer
		}

		idx := choiceIdx
		latency := s.clock.Now().Sub(g.QuestionStart).Milliseconds()
		p.ChoiceIdx = &idx
		p.LatencyMS = &latency

		if s.allConnectedAnswered(room) {
			s.timers.Cancel(room.Code)
			s.finalizeReveal(room, ev)
		}
		return nil
	})
}

// SubmitEstimate records an estimation answer for the live question.
func (s *Service) SubmitEstimate(code, playerID string, value float64) error {
	return s.mutate(code, func(room *model.Room, ev *events) error {
		g := room.Game
		if g.Phase != model.PhaseEstimation {
			return errIgnored
		}
		p, ok := room.Players[playerID]
		if !ok {
			return ErrPlayerNotFound
		}
		if p.HasAnswered() {
			return errIgnored
		}

		v := value
		latency := s.clock.Now().Sub(g.QuestionStart).Milliseconds()
		p.Estimate = &v
		p.LatencyMS = &latency

		if s.allConnectedAnswered(room) {
			s.timers.Cancel(room.Code)
			s.finalizeReveal(room, ev)
		}
		return nil
	})
}

func (s *Service) allConnectedAnswered(room *model.Room) bool {
	connected := room.ConnectedPlayers()
	if len(connected) == 0 {
		return false
	}
	for _, p := range connected {
		if !p.HasAnswered() {
			return false
		}
	}
	return true
}

// finalizeReveal resolves the live question exactly once. It flips the phase
// before computing anything, so a timeout racing a manual completion becomes
// a no-op on whichever side loses.
func (s *Service) finalizeReveal(room *model.Room, ev *events) {
	g := room.Game

	var next model.Phase
	switch g.Phase {
	case model.PhaseQuestion:
		next = model.PhaseRevealing
	case model.PhaseEstimation:
		next = model.PhaseEstimationReveal
	default:
		return
	}

	q := g.Questions[g.QuestionIdx]
	window := s.questionWindow(room)
	s.setPhase(room, ev, next)

	var results []PlayerResult
	if q.Kind == model.QuestionChoice {
		results = s.revealChoice(room, &q, window)
	} else {
		results = s.revealEstimation(room, &q)
	}
	attachAnswerOrder(room, results)

	ev.add(EvtReveal, RevealPayload{Question: q, Results: results})
	s.scheduleAfter(room, s.cfg.RevealDuration, s.afterReveal)
}

func (s *Service) revealChoice(room *model.Room, q *model.Question, window time.Duration) []PlayerResult {
	stats := room.Game.Stats
	results := make([]PlayerResult, 0, len(room.Players))

	for _, p := range room.Players {
		res := PlayerResult{PlayerID: p.ID, Answered: p.ChoiceIdx != nil, ChoiceIdx: p.ChoiceIdx}

		if p.ChoiceIdx == nil {
			p.Streak = 0
			res.Streak = 0
			results = append(results, res)
			continue
		}

		ps := stats.PlayerFor(p.ID)
		cs := stats.CategoryFor(q.CategoryID)
		ps.Answered++
		ps.TotalLatencyMS += *p.LatencyMS
		cs.Total++

		if *p.ChoiceIdx == q.CorrectIdx {
			p.Streak++
			remaining := 1 - float64(*p.LatencyMS)/float64(window.Milliseconds())
			points := scoring.ChoiceScore(remaining, p.Streak)
			p.Score += points
			res.Correct = true
			res.Points = points
			ps.Correct++
			cs.Correct++
		} else {
			p.Streak = 0
		}
		res.Streak = p.Streak
		results = append(results, res)
	}
	return results
}

func (s *Service) revealEstimation(room *model.Room, q *model.Question) []PlayerResult {
	stats := room.Game.Stats
	results := make([]PlayerResult, 0, len(room.Players))

	var entries []scoring.EstimationEntry
	for _, p := range room.Players {
		if p.Estimate == nil {
			results = append(results, PlayerResult{PlayerID: p.ID, Streak: p.Streak})
			continue
		}
		entries = append(entries, scoring.EstimationEntry{
			PlayerID:  p.ID,
			Guess:     *p.Estimate,
			LatencyMS: *p.LatencyMS,
		})
	}
	// Stable input order so latency tie-breaks are reproducible.
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].LatencyMS != entries[j].LatencyMS {
			return entries[i].LatencyMS < entries[j].LatencyMS
		}
		return entries[i].PlayerID < entries[j].PlayerID
	})

	for _, r := range scoring.RankEstimations(entries, q.Target) {
		p := room.Players[r.PlayerID]
		p.Score += r.Total

		ps := stats.PlayerFor(p.ID)
		ps.Answered++
		ps.TotalLatencyMS += *p.LatencyMS
		ps.Estimations++
		ps.DeviationSum += r.Deviation

		cs := stats.CategoryFor(q.CategoryID)
		cs.Total++
		if r.Accuracy >= scoring.EstimationMax/2 {
			cs.Correct++
			ps.Correct++
		}

		guess := r.Guess
		results = append(results, PlayerResult{
			PlayerID: p.ID,
			Answered: true,
			Estimate: &guess,
			Points:   r.Total,
			Rank:     r.Rank,
			Streak:   p.Streak,
		})
	}
	return results
}

// attachAnswerOrder ranks players by recorded answer latency; non-answerers
// share the last position.
func attachAnswerOrder(room *model.Room, results []PlayerResult) {
	type timed struct {
		idx     int
		latency int64
	}
	var answered []timed
	for i, r := range results {
		if p, ok := room.Players[r.PlayerID]; ok && p.LatencyMS != nil {
			answered = append(answered, timed{idx: i, latency: *p.LatencyMS})
		}
	}
	sort.Slice(answered, func(i, j int) bool { return answered[i].latency < answered[j].latency })

	for pos, t := range answered {
		results[t.idx].AnswerOrder = pos + 1
	}
	last := len(answered) + 1
	for i := range results {
		if results[i].AnswerOrder == 0 {
			results[i].AnswerOrder = last
		}
	}
}

// afterReveal moves to the next question or to the scoreboard.
func (s *Service) afterReveal(room *model.Room, ev *events) {
	g := room.Game
	if g.Phase != model.PhaseRevealing && g.Phase != model.PhaseEstimationReveal {
		return
	}

	g.QuestionIdx++
	if g.QuestionIdx < len(g.Questions) {
		s.startQuestion(room, ev)
		return
	}
	s.showScoreboard(room, ev)
}
