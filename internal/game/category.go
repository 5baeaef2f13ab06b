package game

import (
	"sort"

	"github.com/Fizzyy89/nerdquiz-next-sub000/internal/model"
)

const wheelSegments = 12

// startCategorySelection draws the mini-game deciding the next category.
// Weighted random over the five modes, subject to: loser's-pick cooldown of
// two rounds, duel modes needing at least two connected players, and the
// one-shot forced-mode override.
func (s *Service) startCategorySelection(room *model.Room, ev *events) {
	mode := s.chooseSelectionMode(room)
	switch mode {
	case model.ModeWheel:
		s.startWheel(room, ev)
	case model.ModeLoserPick:
		s.startLoserPick(room, ev)
	case model.ModeDice:
		s.startDice(room, ev)
	case model.ModeRPS:
		s.startRPS(room, ev)
	default:
		s.startVote(room, ev)
	}
}

func (s *Service) chooseSelectionMode(room *model.Room) model.SelectionMode {
	g := room.Game

	if g.ForcedMode != "" {
		mode := g.ForcedMode
		g.ForcedMode = ""
		return mode
	}

	type candidate struct {
		mode   model.SelectionMode
		weight int
	}
	candidates := []candidate{
		{model.ModeVote, 35},
		{model.ModeWheel, 25},
	}
	if g.LastLoserPickRound == 0 || g.Round-g.LastLoserPickRound > 2 {
		candidates = append(candidates, candidate{model.ModeLoserPick, 15})
	}
	if len(room.ConnectedPlayers()) >= 2 {
		candidates = append(candidates,
			candidate{model.ModeDice, 15},
			candidate{model.ModeRPS, 10})
	}

	total := 0
	for _, c := range candidates {
		total += c.weight
	}
	pick := s.roller.Intn(total)
	for _, c := range candidates {
		if pick < c.weight {
			return c.mode
		}
		pick -= c.weight
	}
	return model.ModeVote
}

// sampleCategories returns up to n distinct categories in random order.
func (s *Service) sampleCategories(n int) []model.Category {
	cats := s.provider.ListCategories()
	shuffled := append([]model.Category(nil), cats...)
	for i := len(shuffled) - 1; i > 0; i-- {
		j := s.roller.Intn(i + 1)
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	}
	if n > len(shuffled) {
		n = len(shuffled)
	}
	return shuffled[:n]
}

// --- Voting ---

func (s *Service) startVote(room *model.Room, ev *events) {
	room.Game.Selection = &model.CategorySelection{
		Mode:    model.ModeVote,
		Options: s.sampleCategories(6),
		Votes:   make(map[string]string),
	}
	s.setPhase(room, ev, model.PhaseCategoryVote)
	s.scheduleAfter(room, s.cfg.VoteWindow, s.finalizeVote)
}

// CastVote records one player's category vote. The window closes early once
// every connected player has voted.
func (s *Service) CastVote(code, playerID, categoryID string) error {
	return s.mutate(code, func(room *model.Room, ev *events) error {
		g := room.Game
		if g.Phase != model.PhaseCategoryVote || g.Selection == nil {
			return errIgnored
		}
		p, ok := room.Players[playerID]
		if !ok {
			return ErrPlayerNotFound
		}
		if !validOption(g.Selection.Options, categoryID) {
			return ErrInvalidCategory
		}

		g.Selection.Votes[p.ID] = categoryID
		ev.add(EvtVoteCast, VoteCastPayload{PlayerID: p.ID, Tally: voteTally(g.Selection.Votes)})

		if len(g.Selection.Votes) >= len(room.ConnectedPlayers()) {
			s.finalizeVote(room, ev)
		}
		return nil
	})
}

// finalizeVote resolves the plurality winner, breaking ties with an explicit
// tiebreaker event before the pick is announced.
func (s *Service) finalizeVote(room *model.Room, ev *events) {
	g := room.Game
	if g.Phase != model.PhaseCategoryVote || g.Selection == nil {
		return
	}

	tally := voteTally(g.Selection.Votes)
	best := 0
	for _, n := range tally {
		if n > best {
			best = n
		}
	}

	var tied []string
	if best == 0 {
		for _, c := range g.Selection.Options {
			tied = append(tied, c.ID)
		}
	} else {
		for id, n := range tally {
			if n == best {
				tied = append(tied, id)
			}
		}
		sort.Strings(tied)
	}

	winner := tied[0]
	if len(tied) > 1 {
		winner = tied[s.roller.Intn(len(tied))]
		ev.add(EvtVoteTiebreak, TiebreakPayload{Tied: tied, Winner: winner})
	}

	s.loadCategory(room, ev, winner, model.ModeVote)
}

func voteTally(votes map[string]string) map[string]int {
	tally := make(map[string]int)
	for _, cat := range votes {
		tally[cat]++
	}
	return tally
}

// --- Wheel ---

// startWheel pre-commits the landing index at spin start so the animation a
// client renders is already determined.
func (s *Service) startWheel(room *model.Room, ev *events) {
	cats := s.provider.ListCategories()
	segments := make([]model.Category, wheelSegments)
	for i := range segments {
		segments[i] = cats[s.roller.Intn(len(cats))]
	}
	index := s.roller.Intn(wheelSegments)

	room.Game.Selection = &model.CategorySelection{
		Mode:       model.ModeWheel,
		Segments:   segments,
		WheelIndex: index,
	}
	s.setPhase(room, ev, model.PhaseWheel)
	ev.add(EvtWheelSpun, WheelSpunPayload{Segments: segments, Index: index})
	s.scheduleAfter(room, s.cfg.WheelSpinDuration, s.finalizeWheel)
}

func (s *Service) finalizeWheel(room *model.Room, ev *events) {
	g := room.Game
	if g.Phase != model.PhaseWheel || g.Selection == nil {
		return
	}
	winner := g.Selection.Segments[g.Selection.WheelIndex]
	s.loadCategory(room, ev, winner.ID, model.ModeWheel)
}

// --- Pick rights (loser's-pick, dice winner, duel winner) ---

// startLoserPick grants pick rights to the lowest-scoring connected player.
func (s *Service) startLoserPick(room *model.Room, ev *events) {
	var loser *model.Player
	for _, p := range room.ConnectedPlayers() {
		if loser == nil || p.Score < loser.Score ||
			(p.Score == loser.Score && p.JoinedAt.Before(loser.JoinedAt)) {
			loser = p
		}
	}
	if loser == nil {
		s.startVote(room, ev)
		return
	}
	room.Game.LastLoserPickRound = room.Game.Round
	s.startPick(room, ev, loser.ID, model.ModeLoserPick)
}

// startPick opens a bounded pick window; on timeout a random category is
// substituted so a silent picker never blocks the match.
func (s *Service) startPick(room *model.Room, ev *events, pickerID string, mode model.SelectionMode) {
	options := s.provider.ListCategories()
	room.Game.Selection = &model.CategorySelection{
		Mode:     mode,
		PickerID: pickerID,
		Options:  options,
	}
	s.setPhase(room, ev, model.PhaseCategoryPick)
	ev.add(EvtPickerChosen, PickerChosenPayload{PlayerID: pickerID, Reason: mode, Options: options})
	s.scheduleAfter(room, s.cfg.LoserPickWindow, s.pickTimeout)
}

// PickCategory is the picker exercising their pick rights.
func (s *Service) PickCategory(code, playerID, categoryID string) error {
	return s.mutate(code, func(room *model.Room, ev *events) error {
		g := room.Game
		if g.Phase != model.PhaseCategoryPick || g.Selection == nil {
			return errIgnored
		}
		if playerID != g.Selection.PickerID {
			return errIgnored
		}
		if _, ok := s.provider.CategoryMeta(categoryID); !ok {
			return ErrInvalidCategory
		}
		s.loadCategory(room, ev, categoryID, g.Selection.Mode)
		return nil
	})
}

func (s *Service) pickTimeout(room *model.Room, ev *events) {
	g := room.Game
	if g.Phase != model.PhaseCategoryPick || g.Selection == nil {
		return
	}
	options := g.Selection.Options
	winner := options[s.roller.Intn(len(options))]
	s.loadCategory(room, ev, winner.ID, g.Selection.Mode)
}

// --- Dice tournament ---

func (s *Service) startDice(room *model.Room, ev *events) {
	eligible := make(map[string]bool)
	for _, p := range room.ConnectedPlayers() {
		eligible[p.ID] = true
	}
	room.Game.Selection = &model.CategorySelection{
		Mode: model.ModeDice,
		Dice: &model.DiceTournament{
			Eligible: eligible,
			Rolls:    make(map[string][2]int),
		},
	}
	s.setPhase(room, ev, model.PhaseDice)
	s.scheduleAfter(room, s.cfg.DiceRollWindow, s.diceTimeout)
}

// RollDice rolls two dice for an eligible player who has not rolled yet.
func (s *Service) RollDice(code, playerID string) error {
	return s.mutate(code, func(room *model.Room, ev *events) error {
		g := room.Game
		if g.Phase != model.PhaseDice || g.Selection == nil || g.Selection.Dice == nil {
			return errIgnored
		}
		d := g.Selection.Dice
		if !d.Eligible[playerID] {
			return errIgnored
		}
		if _, rolled := d.Rolls[playerID]; rolled {
			return errIgnored
		}

		s.rollFor(d, playerID, ev)

		if len(d.Rolls) >= len(d.Eligible) {
			s.resolveDice(room, ev)
		}
		return nil
	})
}

func (s *Service) rollFor(d *model.DiceTournament, playerID string, ev *events) {
	roll := [2]int{s.roller.Roll(6), s.roller.Roll(6)}
	d.Rolls[playerID] = roll
	ev.add(EvtDiceRolled, DiceRolledPayload{PlayerID: playerID, Dice: roll, Sum: roll[0] + roll[1]})
}

// diceTimeout auto-rolls for everyone still missing, then resolves.
func (s *Service) diceTimeout(room *model.Room, ev *events) {
	g := room.Game
	if g.Phase != model.PhaseDice || g.Selection == nil || g.Selection.Dice == nil {
		return
	}
	d := g.Selection.Dice
	for id := range d.Eligible {
		if _, rolled := d.Rolls[id]; !rolled {
			s.rollFor(d, id, ev)
		}
	}
	s.resolveDice(room, ev)
}

// resolveDice finds the highest sum. An exact tie among the leaders triggers
// a reroll restricted to the tied players, repeated until one winner remains.
func (s *Service) resolveDice(room *model.Room, ev *events) {
	d := room.Game.Selection.Dice

	best := -1
	for _, roll := range d.Rolls {
		if sum := roll[0] + roll[1]; sum > best {
			best = sum
		}
	}
	var leaders []string
	for id, roll := range d.Rolls {
		if roll[0]+roll[1] == best {
			leaders = append(leaders, id)
		}
	}
	sort.Strings(leaders)

	if len(leaders) == 1 {
		s.startPick(room, ev, leaders[0], model.ModeDice)
		return
	}

	d.Eligible = make(map[string]bool, len(leaders))
	for _, id := range leaders {
		d.Eligible[id] = true
	}
	d.Rolls = make(map[string][2]int)
	d.Reroll++
	ev.add(EvtDiceReroll, DiceRerollPayload{Tied: leaders, Reroll: d.Reroll})

	room.Game.BumpTimer()
	s.scheduleAfter(room, s.cfg.DiceRollWindow, s.diceTimeout)
}

// --- Rock-paper-scissors duel ---

func (s *Service) startRPS(room *model.Room, ev *events) {
	connected := room.ConnectedPlayers()
	if len(connected) < 2 {
		s.startVote(room, ev)
		return
	}
	sort.Slice(connected, func(i, j int) bool { return connected[i].ID < connected[j].ID })

	i := s.roller.Intn(len(connected))
	j := s.roller.Intn(len(connected) - 1)
	if j >= i {
		j++
	}

	duel := &model.RPSDuel{
		PlayerA: connected[i].ID,
		PlayerB: connected[j].ID,
		Round:   1,
		Throws:  make(map[string]model.RPSThrow),
	}
	room.Game.Selection = &model.CategorySelection{Mode: model.ModeRPS, Duel: duel}
	s.setPhase(room, ev, model.PhaseRPS)
	ev.add(EvtDuelStarted, DuelStartedPayload{PlayerA: duel.PlayerA, PlayerB: duel.PlayerB})
	s.scheduleAfter(room, s.cfg.RPSRoundWindow, s.rpsTimeout)
}

// ChooseRPS records a duelist's throw for the current round.
func (s *Service) ChooseRPS(code, playerID string, throw model.RPSThrow) error {
	return s.mutate(code, func(room *model.Room, ev *events) error {
		g := room.Game
		if g.Phase != model.PhaseRPS || g.Selection == nil || g.Selection.Duel == nil {
			return errIgnored
		}
		duel := g.Selection.Duel
		if playerID != duel.PlayerA && playerID != duel.PlayerB {
			return errIgnored
		}
		switch throw {
		case model.ThrowRock, model.ThrowPaper, model.ThrowScissors:
		default:
			return ErrInvalidAnswer
		}
		if _, thrown := duel.Throws[playerID]; thrown {
			return errIgnored
		}

		duel.Throws[playerID] = throw
		if len(duel.Throws) == 2 {
			s.resolveRPSRound(room, ev)
		}
		return nil
	})
}

// rpsTimeout assigns a uniformly random throw to anyone who has not thrown.
func (s *Service) rpsTimeout(room *model.Room, ev *events) {
	g := room.Game
	if g.Phase != model.PhaseRPS || g.Selection == nil || g.Selection.Duel == nil {
		return
	}
	duel := g.Selection.Duel
	throws := []model.RPSThrow{model.ThrowRock, model.ThrowPaper, model.ThrowScissors}
	for _, id := range []string{duel.PlayerA, duel.PlayerB} {
		if _, thrown := duel.Throws[id]; !thrown {
			duel.Throws[id] = throws[s.roller.Intn(len(throws))]
		}
	}
	s.resolveRPSRound(room, ev)
}

// resolveRPSRound scores one duel round. First to two wins takes the duel, or
// whoever leads after three rounds; a tie after three forces extra rounds.
func (s *Service) resolveRPSRound(room *model.Room, ev *events) {
	duel := room.Game.Selection.Duel
	ta, tb := duel.Throws[duel.PlayerA], duel.Throws[duel.PlayerB]

	var roundWinner string
	if ta.Beats(tb) {
		duel.WinsA++
		roundWinner = duel.PlayerA
	} else if tb.Beats(ta) {
		duel.WinsB++
		roundWinner = duel.PlayerB
	}

	final := duel.WinsA == 2 || duel.WinsB == 2 ||
		(duel.Round >= 3 && duel.WinsA != duel.WinsB)

	ev.add(EvtDuelRoundResult, DuelRoundResultPayload{
		Round:    duel.Round,
		Throws:   map[string]model.RPSThrow{duel.PlayerA: ta, duel.PlayerB: tb},
		WinnerID: roundWinner,
		WinsA:    duel.WinsA,
		WinsB:    duel.WinsB,
		Final:    final,
	})

	if final {
		winner := duel.PlayerA
		if duel.WinsB > duel.WinsA {
			winner = duel.PlayerB
		}
		s.startPick(room, ev, winner, model.ModeRPS)
		return
	}

	duel.Round++
	duel.Throws = make(map[string]model.RPSThrow)
	room.Game.BumpTimer()
	s.scheduleAfter(room, s.cfg.RPSRoundWindow, s.rpsTimeout)
}

// --- Completion funnel ---

// loadCategory is the single completion every selection mode funnels into: it
// draws the round's questions and hands over to the round engine. A draw
// failure degrades to the scoreboard with a visible notice, never a crash.
func (s *Service) loadCategory(room *model.Room, ev *events, categoryID string, mode model.SelectionMode) {
	g := room.Game

	meta, ok := s.provider.CategoryMeta(categoryID)
	if !ok {
		cats := s.provider.ListCategories()
		meta = cats[s.roller.Intn(len(cats))]
		categoryID = meta.ID
	}

	questions, err := s.provider.DrawQuestions(categoryID, room.Settings.QuestionsPerRound, g.UsedQuestionIDs)
	if err != nil {
		s.log.WithField("room", room.Code).WithError(err).Warn("question draw failed")
		ev.add(EvtCategoryFallback, map[string]string{"categoryId": categoryID, "reason": "no questions available"})
		s.showScoreboard(room, ev)
		return
	}

	g.CategoryID = categoryID
	g.Questions = questions
	g.QuestionIdx = 0
	for _, q := range questions {
		g.UsedQuestionIDs = append(g.UsedQuestionIDs, q.ID)
	}
	g.Selection = nil

	ev.add(EvtCategorySelected, CategorySelectedPayload{Category: meta, Mode: mode})
	s.startQuestion(room, ev)
}

func validOption(options []model.Category, categoryID string) bool {
	for _, c := range options {
		if c.ID == categoryID {
			return true
		}
	}
	return false
}
