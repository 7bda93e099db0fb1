/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package main

// The session is the single source of truth for the current game: which
// song is up, which lyric line is under challenge, how strictly answers
// are judged, and where in the challenge lifecycle we are. It is owned by
// the hub's run() goroutine and only ever mutated from there, so none of
// its methods take a lock.

type challengePhase int

const (
	phaseIdle challengePhase = iota
	phaseAwaitingChallenge
	phaseInChallenge
	phaseResolved
)

func (p challengePhase) String() string {
	switch p {
	case phaseAwaitingChallenge:
		return "awaiting_challenge"
	case phaseInChallenge:
		return "in_challenge"
	case phaseResolved:
		return "resolved"
	default:
		return "idle"
	}
}

// unsetLine marks "no challenge line configured".
const unsetLine = -1

type session struct {
	currentSong   string
	challengeLine int
	policy        matchPolicy
	originalText  string
	phase         challengePhase
}

func newSession(policy matchPolicy) *session {
	return &session{
		challengeLine: unsetLine,
		policy:        policy,
		phase:         phaseIdle,
	}
}

// setChallengeLine configures which lyric line is under challenge.
// Passing unsetLine clears the flag and drops back to idle. Values below
// unsetLine are rejected and leave the session untouched.
func (s *session) setChallengeLine(line int) bool {
	if line < unsetLine {
		return false
	}

	s.challengeLine = line
	if line == unsetLine {
		s.phase = phaseIdle
	} else {
		s.phase = phaseAwaitingChallenge
	}

	return true
}

// setMatchMode updates the match policy. An unknown mode name leaves the
// mode unchanged; a threshold outside [minFuzzyThreshold, maxFuzzyThreshold]
// leaves the threshold unchanged. Either rejection is reported through the
// return value, but the caller-facing protocol stays silent about it.
func (s *session) setMatchMode(name string, threshold *int) bool {
	applied := true

	if mode, ok := parseMatchMode(name); ok {
		s.policy.mode = mode
	} else {
		applied = false
	}

	if threshold != nil {
		if *threshold >= minFuzzyThreshold && *threshold <= maxFuzzyThreshold {
			s.policy.threshold = *threshold
		} else {
			applied = false
		}
	}

	return applied
}

// setCurrentSong records the host's song selection. Starting over on a new
// song invalidates any resolved challenge.
func (s *session) setCurrentSong(songID string) {
	s.currentSong = songID
	s.originalText = ""
	if s.challengeLine != unsetLine {
		s.phase = phaseAwaitingChallenge
	} else {
		s.phase = phaseIdle
	}
}

// startSong reports whether playback may begin. The server holds no
// playback clock; it only refuses to announce a song that was never set.
func (s *session) startSong() (string, bool) {
	if s.currentSong == "" {
		return "", false
	}

	if s.challengeLine != unsetLine {
		s.phase = phaseAwaitingChallenge
	} else {
		s.phase = phaseIdle
	}

	return s.currentSong, true
}

// enterChallenge freezes the original lyric text for judging. Idempotent:
// re-entering simply overwrites the pair and stays in the challenge phase.
// Line and text always update together.
func (s *session) enterChallenge(line int, originalText string) {
	s.challengeLine = line
	s.originalText = originalText
	s.phase = phaseInChallenge
}

// evaluate judges the contestant's text against the frozen original under
// the current policy and resolves the challenge. The reference behavior is
// deliberately loose here: evaluation outside a challenge judges whatever
// original text is currently held (usually empty).
func (s *session) evaluate(contestant string) (ok bool, original string) {
	original = s.originalText
	ok = judgeText(original, contestant, s.policy)
	s.phase = phaseResolved

	return ok, original
}
