/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package main

import (
	"testing"
)

func defaultTestPolicy() matchPolicy {
	return matchPolicy{mode: modeLoose, threshold: 2}
}

func TestNewSessionDefaults(t *testing.T) {
	t.Parallel()

	s := newSession(defaultTestPolicy())

	if s.challengeLine != unsetLine {
		t.Errorf("challengeLine = %d, want %d", s.challengeLine, unsetLine)
	}
	if s.policy.mode != modeLoose {
		t.Errorf("mode = %v, want %v", s.policy.mode, modeLoose)
	}
	if s.policy.threshold != 2 {
		t.Errorf("threshold = %d, want 2", s.policy.threshold)
	}
	if s.originalText != "" {
		t.Errorf("originalText = %q, want empty", s.originalText)
	}
	if s.phase != phaseIdle {
		t.Errorf("phase = %v, want %v", s.phase, phaseIdle)
	}
}

func TestSetChallengeLine(t *testing.T) {
	t.Parallel()

	s := newSession(defaultTestPolicy())

	if s.setChallengeLine(-2) {
		t.Error("setChallengeLine(-2) accepted, want rejection")
	}
	if s.challengeLine != unsetLine {
		t.Errorf("challengeLine = %d after rejected update, want %d", s.challengeLine, unsetLine)
	}

	if !s.setChallengeLine(3) {
		t.Error("setChallengeLine(3) rejected, want acceptance")
	}
	if s.challengeLine != 3 {
		t.Errorf("challengeLine = %d, want 3", s.challengeLine)
	}
	if s.phase != phaseAwaitingChallenge {
		t.Errorf("phase = %v, want %v", s.phase, phaseAwaitingChallenge)
	}

	if !s.setChallengeLine(unsetLine) {
		t.Error("setChallengeLine(-1) rejected, want acceptance")
	}
	if s.phase != phaseIdle {
		t.Errorf("phase = %v after clearing line, want %v", s.phase, phaseIdle)
	}
}

func TestSetMatchMode(t *testing.T) {
	t.Parallel()

	intPtr := func(n int) *int { return &n }

	tests := []struct {
		name          string
		mode          string
		threshold     *int
		wantApplied   bool
		wantMode      matchMode
		wantThreshold int
	}{
		{
			name:          "valid mode no threshold",
			mode:          "strict",
			wantApplied:   true,
			wantMode:      modeStrict,
			wantThreshold: 2,
		},
		{
			name:          "valid mode and threshold",
			mode:          "fuzzy",
			threshold:     intPtr(5),
			wantApplied:   true,
			wantMode:      modeFuzzy,
			wantThreshold: 5,
		},
		{
			name:          "threshold at upper bound",
			mode:          "fuzzy",
			threshold:     intPtr(10),
			wantApplied:   true,
			wantMode:      modeFuzzy,
			wantThreshold: 10,
		},
		{
			name:          "out of range threshold left unchanged",
			mode:          "fuzzy",
			threshold:     intPtr(15),
			wantApplied:   false,
			wantMode:      modeFuzzy,
			wantThreshold: 2,
		},
		{
			name:          "negative threshold left unchanged",
			mode:          "loose",
			threshold:     intPtr(-1),
			wantApplied:   false,
			wantMode:      modeLoose,
			wantThreshold: 2,
		},
		{
			name:          "unknown mode left unchanged",
			mode:          "exact",
			wantApplied:   false,
			wantMode:      modeLoose,
			wantThreshold: 2,
		},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			s := newSession(defaultTestPolicy())

			applied := s.setMatchMode(tc.mode, tc.threshold)
			if applied != tc.wantApplied {
				t.Errorf("setMatchMode(%q, %v) = %t, want %t", tc.mode, tc.threshold, applied, tc.wantApplied)
			}
			if s.policy.mode != tc.wantMode {
				t.Errorf("mode = %v, want %v", s.policy.mode, tc.wantMode)
			}
			if s.policy.threshold != tc.wantThreshold {
				t.Errorf("threshold = %d, want %d", s.policy.threshold, tc.wantThreshold)
			}
		})
	}
}

func TestChallengeLifecycle(t *testing.T) {
	t.Parallel()

	s := newSession(defaultTestPolicy())

	s.setCurrentSong("Classics/Queen_Bohemian Rhapsody")
	if s.phase != phaseIdle {
		t.Fatalf("phase = %v after song selection without line, want %v", s.phase, phaseIdle)
	}

	if !s.setChallengeLine(3) {
		t.Fatal("setChallengeLine(3) rejected")
	}
	if s.phase != phaseAwaitingChallenge {
		t.Fatalf("phase = %v, want %v", s.phase, phaseAwaitingChallenge)
	}

	s.enterChallenge(3, "some lyric")
	if s.phase != phaseInChallenge {
		t.Fatalf("phase = %v, want %v", s.phase, phaseInChallenge)
	}
	if s.originalText != "some lyric" {
		t.Fatalf("originalText = %q, want %q", s.originalText, "some lyric")
	}

	// Re-entering is idempotent: the pair just updates.
	s.enterChallenge(5, "another lyric")
	if s.challengeLine != 5 || s.originalText != "another lyric" {
		t.Fatalf("after re-entry: line=%d text=%q, want 5/%q", s.challengeLine, s.originalText, "another lyric")
	}
	if s.phase != phaseInChallenge {
		t.Fatalf("phase = %v after re-entry, want %v", s.phase, phaseInChallenge)
	}

	ok, original := s.evaluate("another lyric")
	if !ok {
		t.Error("evaluate of exact reproduction failed, want pass")
	}
	if original != "another lyric" {
		t.Errorf("evaluate returned original %q, want %q", original, "another lyric")
	}
	if s.phase != phaseResolved {
		t.Errorf("phase = %v after evaluate, want %v", s.phase, phaseResolved)
	}

	// Re-arming the line moves from resolved back to awaiting.
	s.setChallengeLine(7)
	if s.phase != phaseAwaitingChallenge {
		t.Errorf("phase = %v after re-arming, want %v", s.phase, phaseAwaitingChallenge)
	}
}

func TestStartSong(t *testing.T) {
	t.Parallel()

	s := newSession(defaultTestPolicy())

	if _, ok := s.startSong(); ok {
		t.Error("startSong succeeded with no song selected, want refusal")
	}

	s.setCurrentSong("Pop/ABBA_Dancing Queen")

	songID, ok := s.startSong()
	if !ok {
		t.Fatal("startSong refused after song selection")
	}
	if songID != "Pop/ABBA_Dancing Queen" {
		t.Errorf("startSong returned %q, want %q", songID, "Pop/ABBA_Dancing Queen")
	}
}

func TestSetCurrentSongClearsStaleOriginal(t *testing.T) {
	t.Parallel()

	s := newSession(defaultTestPolicy())

	s.enterChallenge(2, "old lyric")
	s.setCurrentSong("Pop/NewSong")

	if s.originalText != "" {
		t.Errorf("originalText = %q after song change, want empty", s.originalText)
	}
}

func TestEvaluateOutsideChallenge(t *testing.T) {
	t.Parallel()

	// The reference behavior does not reject evaluation outside a
	// challenge; it judges whatever original text is currently held.
	s := newSession(defaultTestPolicy())

	ok, original := s.evaluate("anything")
	if ok {
		t.Error("evaluate against empty original passed, want failure")
	}
	if original != "" {
		t.Errorf("original = %q, want empty", original)
	}
	if s.phase != phaseResolved {
		t.Errorf("phase = %v, want %v", s.phase, phaseResolved)
	}
}
