package game

import (
	"sort"
	"strings"

	"github.com/agnivade/levenshtein"

	"github.com/Fizzyy89/nerdquiz-next-sub000/internal/model"
	"github.com/Fizzyy89/nerdquiz-next-sub000/internal/scoring"
)

// fuzzyThreshold is the minimum normalized similarity for accepting a
// free-text guess.
const fuzzyThreshold = 0.85

const buzzerQuestionCount = 3

// startBonus tries to set up a bonus round, preferring types not yet played
// this match and resetting the pool once every type has run. Returns false
// when no bonus content is available at all, in which case the caller falls
// back to a normal category-selection round.
func (s *Service) startBonus(room *model.Room, ev *events) bool {
	g := room.Game

	used := make(map[model.BonusKind]bool)
	for _, k := range g.UsedBonusKinds {
		used[k] = true
	}
	order := []model.BonusKind{model.BonusCollective, model.BonusBuzzer}
	if s.roller.Intn(2) == 1 {
		order[0], order[1] = order[1], order[0]
	}
	sort.SliceStable(order, func(i, j int) bool {
		return !used[order[i]] && used[order[j]]
	})

	for _, kind := range order {
		switch kind {
		case model.BonusCollective:
			topic := s.provider.DrawCollectiveTopic(g.UsedTopicIDs)
			if topic == nil {
				continue
			}
			g.UsedTopicIDs = append(g.UsedTopicIDs, topic.ID)
			g.Bonus = &model.BonusState{
				Kind: model.BonusCollective,
				Collective: &model.CollectiveState{
					Topic:      topic,
					Found:      make(map[string]string),
					Eliminated: make(map[string]*model.Elimination),
				},
			}
		case model.BonusBuzzer:
			questions := s.provider.DrawBuzzerQuestions(g.UsedBuzzerIDs, buzzerQuestionCount)
			if len(questions) == 0 {
				continue
			}
			for _, q := range questions {
				g.UsedBuzzerIDs = append(g.UsedBuzzerIDs, q.ID)
			}
			g.Bonus = &model.BonusState{
				Kind: model.BonusBuzzer,
				Buzzer: &model.BuzzerState{
					Questions: questions,
					Attempted: make(map[string]bool),
					Solved:    make(map[string]string),
				},
			}
		}

		if len(used) == len(order) {
			g.UsedBonusKinds = nil
		}
		g.UsedBonusKinds = append(g.UsedBonusKinds, kind)

		s.setPhase(room, ev, model.PhaseBonusAnnounce)
		ev.add(EvtBonusAnnounce, map[string]interface{}{"kind": kind})
		s.scheduleAfter(room, s.cfg.RevealDuration, s.beginBonusPlay)
		return true
	}

	return false
}

// beginBonusPlay starts the announced bonus variant.
func (s *Service) beginBonusPlay(room *model.Room, ev *events) {
	g := room.Game
	if g.Phase != model.PhaseBonusAnnounce || g.Bonus == nil {
		return
	}
	switch g.Bonus.Kind {
	case model.BonusCollective:
		s.beginCollective(room, ev)
	case model.BonusBuzzer:
		s.beginBuzzer(room, ev)
	}
}

// --- Collective elimination ---

func (s *Service) beginCollective(room *model.Room, ev *events) {
	c := room.Game.Bonus.Collective

	players := room.ConnectedPlayers()
	sort.Slice(players, func(i, j int) bool {
		if players[i].Score != players[j].Score {
			return players[i].Score < players[j].Score
		}
		return players[i].JoinedAt.Before(players[j].JoinedAt)
	})
	c.TurnOrder = make([]string, len(players))
	for i, p := range players {
		c.TurnOrder[i] = p.ID
	}
	c.TurnIdx = 0

	s.setPhase(room, ev, model.PhaseBonusCollective)
	if len(c.TurnOrder) > 0 {
		ev.addTo(c.TurnOrder[0], EvtBonusTurn, map[string]string{"playerId": c.TurnOrder[0]})
	}
	s.scheduleAfter(room, s.cfg.BonusTurnWindow, s.collectiveTimeout)
}

// SubmitBonusGuess is the current player naming an item in the collective
// round. A new correct item scores and passes the turn; anything else
// eliminates the guesser.
func (s *Service) SubmitBonusGuess(code, playerID, guess string) error {
	return s.mutate(code, func(room *model.Room, ev *events) error {
		c, err := s.collectiveTurn(room, playerID)
		if err != nil {
			return err
		}

		item := matchTopicItem(c.Topic, guess)
		if item == nil {
			s.eliminateCollective(room, ev, playerID, model.EliminatedWrongGuess)
			return nil
		}
		if _, already := c.Found[item.Name]; already {
			s.eliminateCollective(room, ev, playerID, model.EliminatedRepeat)
			return nil
		}

		c.Found[item.Name] = playerID
		room.Players[playerID].Score += scoring.CollectiveItemPoints
		ev.add(EvtBonusGuess, BonusGuessPayload{
			PlayerID: playerID,
			Item:     item.Name,
			Points:   scoring.CollectiveItemPoints,
		})

		if len(c.Found) == len(c.Topic.Items) {
			s.endCollective(room, ev)
			return nil
		}

		s.advanceCollectiveTurn(room, ev)
		return nil
	})
}

// SkipBonus is an explicit pass; it eliminates the current player.
func (s *Service) SkipBonus(code, playerID string) error {
	return s.mutate(code, func(room *model.Room, ev *events) error {
		if _, err := s.collectiveTurn(room, playerID); err != nil {
			return err
		}
		s.eliminateCollective(room, ev, playerID, model.EliminatedPass)
		return nil
	})
}

// collectiveTurn validates that the collective round is live and it is this
// player's turn.
func (s *Service) collectiveTurn(room *model.Room, playerID string) (*model.CollectiveState, error) {
	g := room.Game
	if g.Phase != model.PhaseBonusCollective || g.Bonus == nil || g.Bonus.Collective == nil {
		return nil, errIgnored
	}
	c := g.Bonus.Collective
	if len(c.TurnOrder) == 0 || c.TurnOrder[c.TurnIdx] != playerID {
		return nil, errIgnored
	}
	if _, out := c.Eliminated[playerID]; out {
		return nil, errIgnored
	}
	return c, nil
}

func (s *Service) collectiveTimeout(room *model.Room, ev *events) {
	g := room.Game
	if g.Phase != model.PhaseBonusCollective || g.Bonus == nil || g.Bonus.Collective == nil {
		return
	}
	c := g.Bonus.Collective
	s.eliminateCollective(room, ev, c.TurnOrder[c.TurnIdx], model.EliminatedTimeout)
}

// eliminateCollective knocks the player out with a descending rank: the
// earlier you fall, the worse your rank.
func (s *Service) eliminateCollective(room *model.Room, ev *events, playerID string, reason model.EliminationReason) {
	c := room.Game.Bonus.Collective

	rank := c.ActiveCount()
	c.Eliminated[playerID] = &model.Elimination{Reason: reason, Rank: rank}
	ev.add(EvtBonusKnockout, KnockoutPayload{PlayerID: playerID, Reason: reason, Rank: rank})

	if c.ActiveCount() <= 1 {
		s.endCollective(room, ev)
		return
	}
	s.advanceCollectiveTurn(room, ev)
}

// advanceCollectiveTurn passes the turn to the next surviving player and
// restarts the turn clock.
func (s *Service) advanceCollectiveTurn(room *model.Room, ev *events) {
	c := room.Game.Bonus.Collective
	n := len(c.TurnOrder)
	for i := 1; i <= n; i++ {
		idx := (c.TurnIdx + i) % n
		id := c.TurnOrder[idx]
		if _, out := c.Eliminated[id]; out {
			continue
		}
		if _, in := room.Players[id]; !in {
			continue
		}
		c.TurnIdx = idx
		break
	}
	next := c.TurnOrder[c.TurnIdx]
	ev.addTo(next, EvtBonusTurn, map[string]string{"playerId": next})

	room.Game.BumpTimer()
	s.scheduleAfter(room, s.cfg.BonusTurnWindow, s.collectiveTimeout)
}

// endCollective pays the survivor bonus and closes the round.
func (s *Service) endCollective(room *model.Room, ev *events) {
	c := room.Game.Bonus.Collective

	var survivors []string
	for _, id := range c.TurnOrder {
		if _, out := c.Eliminated[id]; !out {
			survivors = append(survivors, id)
		}
	}

	bonus := 0
	if len(survivors) > 0 {
		bonus = scoring.CollectiveWinnerBonus(len(survivors))
		for _, id := range survivors {
			if p, ok := room.Players[id]; ok {
				p.Score += bonus
			}
		}
	}

	s.setPhase(room, ev, model.PhaseBonusResult)
	ev.add(EvtBonusResult, BonusResultPayload{
		Kind:      model.BonusCollective,
		Winners:   survivors,
		Bonus:     bonus,
		Standings: s.standings(room),
	})
	s.scheduleAfter(room, s.cfg.ScoreboardPause, s.afterBonus)
}

// --- Buzzer ---

func (s *Service) beginBuzzer(room *model.Room, ev *events) {
	s.setPhase(room, ev, model.PhaseBonusBuzzer)
	s.scheduleBuzzerTick(room)
}

func (s *Service) scheduleBuzzerTick(room *model.Room) {
	room.Game.BumpTimer()
	s.scheduleAfter(room, s.cfg.BuzzerTickEvery, s.buzzerTick)
}

// buzzerTick reveals one more character. Once the full text is out with
// nobody buzzing, one answer window is granted before the question is given
// up.
func (s *Service) buzzerTick(room *model.Room, ev *events) {
	g := room.Game
	if g.Phase != model.PhaseBonusBuzzer || g.Bonus == nil || g.Bonus.Buzzer == nil {
		return
	}
	b := g.Bonus.Buzzer
	if b.BuzzedBy != "" {
		return
	}
	q := b.Current()
	if q == nil {
		return
	}

	if b.Revealed < len([]rune(q.Text)) {
		b.Revealed++
		ev.add(EvtBuzzerTick, BuzzerTickPayload{QIdx: b.QIdx, Revealed: b.Revealed})
		s.scheduleBuzzerTick(room)
		return
	}

	g.BumpTimer()
	s.scheduleAfter(room, s.cfg.BuzzerAnswerWindow, s.buzzerGiveUp)
}

// Buzz pauses the reveal and grants exclusive answer rights.
func (s *Service) Buzz(code, playerID string) error {
	return s.mutate(code, func(room *model.Room, ev *events) error {
		g := room.Game
		if g.Phase != model.PhaseBonusBuzzer || g.Bonus == nil || g.Bonus.Buzzer == nil {
			return errIgnored
		}
		b := g.Bonus.Buzzer
		if b.Current() == nil || b.BuzzedBy != "" || b.Attempted[playerID] {
			return errIgnored
		}
		p, ok := room.Players[playerID]
		if !ok {
			return ErrPlayerNotFound
		}

		b.BuzzedBy = p.ID
		ev.add(EvtBuzz, map[string]string{"playerId": p.ID})

		s.timers.Cancel(room.Code)
		g.BumpTimer()
		s.scheduleAfter(room, s.cfg.BuzzerAnswerWindow, s.buzzAnswerTimeout)
		return nil
	})
}

// SubmitBuzzerAnswer resolves the buzzing player's exclusive attempt.
func (s *Service) SubmitBuzzerAnswer(code, playerID, answer string) error {
	return s.mutate(code, func(room *model.Room, ev *events) error {
		g := room.Game
		if g.Phase != model.PhaseBonusBuzzer || g.Bonus == nil || g.Bonus.Buzzer == nil {
			return errIgnored
		}
		b := g.Bonus.Buzzer
		q := b.Current()
		if q == nil || b.BuzzedBy != playerID {
			return errIgnored
		}

		candidates := append([]string{q.Answer}, q.Aliases...)
		if !matchesAny(answer, candidates) {
			s.buzzerMiss(room, ev, playerID)
			return nil
		}

		frac := float64(b.Revealed) / float64(len([]rune(q.Text)))
		points := scoring.BuzzerScore(frac)
		room.Players[playerID].Score += points
		b.Solved[q.ID] = playerID

		ev.add(EvtBuzzerResult, BuzzerResultPayload{
			QuestionID: q.ID,
			Answer:     q.Answer,
			WinnerID:   playerID,
			Points:     points,
		})
		s.nextBuzzerQuestion(room, ev)
		return nil
	})
}

func (s *Service) buzzAnswerTimeout(room *model.Room, ev *events) {
	g := room.Game
	if g.Phase != model.PhaseBonusBuzzer || g.Bonus == nil || g.Bonus.Buzzer == nil {
		return
	}
	b := g.Bonus.Buzzer
	if b.BuzzedBy == "" {
		return
	}
	s.buzzerMiss(room, ev, b.BuzzedBy)
}

// buzzerMiss locks the player out of this question and resumes the reveal,
// or gives the question up when everyone has burned their attempt.
func (s *Service) buzzerMiss(room *model.Room, ev *events, playerID string) {
	b := room.Game.Bonus.Buzzer
	b.Attempted[playerID] = true
	b.BuzzedBy = ""

	allLocked := true
	for _, p := range room.ConnectedPlayers() {
		if !b.Attempted[p.ID] {
			allLocked = false
			break
		}
	}
	if allLocked {
		s.buzzerGiveUp(room, ev)
		return
	}

	s.scheduleBuzzerTick(room)
}

// buzzerGiveUp reveals the answer with no winner and moves on.
func (s *Service) buzzerGiveUp(room *model.Room, ev *events) {
	g := room.Game
	if g.Phase != model.PhaseBonusBuzzer || g.Bonus == nil || g.Bonus.Buzzer == nil {
		return
	}
	b := g.Bonus.Buzzer
	q := b.Current()
	if q == nil {
		return
	}
	ev.add(EvtBuzzerResult, BuzzerResultPayload{QuestionID: q.ID, Answer: q.Answer})
	s.nextBuzzerQuestion(room, ev)
}

func (s *Service) nextBuzzerQuestion(room *model.Room, ev *events) {
	b := room.Game.Bonus.Buzzer
	b.QIdx++
	b.Revealed = 0
	b.BuzzedBy = ""
	b.Attempted = make(map[string]bool)

	if b.Current() == nil {
		s.endBuzzer(room, ev)
		return
	}
	s.scheduleBuzzerTick(room)
}

func (s *Service) endBuzzer(room *model.Room, ev *events) {
	b := room.Game.Bonus.Buzzer

	wins := make(map[string]int)
	best := 0
	for _, winner := range b.Solved {
		wins[winner]++
		if wins[winner] > best {
			best = wins[winner]
		}
	}
	var winners []string
	for id, n := range wins {
		if n == best {
			winners = append(winners, id)
		}
	}
	sort.Strings(winners)

	s.setPhase(room, ev, model.PhaseBonusResult)
	ev.add(EvtBonusResult, BonusResultPayload{
		Kind:      model.BonusBuzzer,
		Winners:   winners,
		Standings: s.standings(room),
	})
	s.scheduleAfter(room, s.cfg.ScoreboardPause, s.afterBonus)
}

// afterBonus continues the match like a completed round.
func (s *Service) afterBonus(room *model.Room, ev *events) {
	g := room.Game
	if g.Phase != model.PhaseBonusResult {
		return
	}
	g.Bonus = nil
	if g.Round >= room.Settings.Rounds {
		s.finishMatch(room, ev)
		return
	}
	s.beginRound(room, ev)
}

// --- Fuzzy matching ---

// matchTopicItem finds the topic item a guess refers to, comparing against
// the canonical name and every alias.
func matchTopicItem(topic *model.Topic, guess string) *model.TopicItem {
	for i := range topic.Items {
		item := &topic.Items[i]
		candidates := append([]string{item.Name}, item.Aliases...)
		if matchesAny(guess, candidates) {
			return item
		}
	}
	return nil
}

func matchesAny(guess string, candidates []string) bool {
	for _, c := range candidates {
		if similarity(guess, c) >= fuzzyThreshold {
			return true
		}
	}
	return false
}

// similarity is 1 - normalized Levenshtein distance over case-folded,
// whitespace-collapsed strings.
func similarity(a, b string) float64 {
	a = normalize(a)
	b = normalize(b)
	if a == b {
		return 1
	}
	longest := len([]rune(a))
	if n := len([]rune(b)); n > longest {
		longest = n
	}
	if longest == 0 {
		return 0
	}
	dist := levenshtein.ComputeDistance(a, b)
	return 1 - float64(dist)/float64(longest)
}

func normalize(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}
