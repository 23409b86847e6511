package model

import "fmt"

// BotState is the conversation state of one user. The set is closed: only the
// constants below are valid, anything else read from storage is treated as "no state".
type BotState string

const (
	// StateNone means no known state (missing or unrecognized stored value).
	StateNone BotState = ""

	StateMainMenu         BotState = "MAIN_MENU"
	StateSearching        BotState = "SEARCHING"
	StateViewingCandidate BotState = "VIEWING_CANDIDATE"
	StateFavorites        BotState = "FAVORITES"
	StateSearchSettings   BotState = "SEARCH_SETTINGS"
	StatePrioritySettings BotState = "PRIORITY_SETTINGS"
	StateAuthInProgress   BotState = "AUTH_IN_PROGRESS"
	StateAwaitingMinAge   BotState = "AWAITING_MIN_AGE"
	StateAwaitingMaxAge   BotState = "AWAITING_MAX_AGE"
	StateAwaitingCity     BotState = "AWAITING_CITY"
)

// AllStates lists every valid state.
var AllStates = []BotState{
	StateMainMenu,
	StateSearching,
	StateViewingCandidate,
	StateFavorites,
	StateSearchSettings,
	StatePrioritySettings,
	StateAuthInProgress,
	StateAwaitingMinAge,
	StateAwaitingMaxAge,
	StateAwaitingCity,
}

// Valid reports whether s is one of the ten named states.
func (s BotState) Valid() bool {
	for _, known := range AllStates {
		if s == known {
			return true
		}
	}
	return false
}

// String implements fmt.Stringer.
func (s BotState) String() string {
	if s == StateNone {
		return "NONE"
	}
	return string(s)
}

// ParseBotState converts the persisted text form. Unknown values are rejected, never defaulted.
func ParseBotState(raw string) (BotState, error) {
	s := BotState(raw)
	if !s.Valid() {
		return StateNone, fmt.Errorf("unknown bot state %q", raw)
	}
	return s, nil
}
