package quiz

import "fmt"

type CommandKind string

const (
	CommandOpenLobby       CommandKind = "open_lobby"
	CommandStart           CommandKind = "start"
	CommandRevealResults   CommandKind = "reveal_results"
	CommandShowLeaderboard CommandKind = "show_leaderboard"
	CommandAdvance         CommandKind = "advance"
	CommandEnd             CommandKind = "end"
	CommandRestart         CommandKind = "restart"
)

// Command is a host-issued transition request.
//
// Index, when set, pins the question index the command must land on. A pinned
// command that already landed is a no-op, which gives advance a retry identity
// and lets stale timers be rejected.
type Command struct {
	Kind  CommandKind
	Index *int
	Force bool
}

func ParseCommand(raw string) (CommandKind, error) {
	kind := CommandKind(raw)
	if _, ok := transitions[kind]; !ok {
		return "", fmt.Errorf("unknown command %q", raw)
	}
	return kind, nil
}

func (k CommandKind) String() string {
	return string(k)
}

// ClearsPlayers reports whether applying the command deletes participants and answers.
func (k CommandKind) ClearsPlayers() bool {
	return k == CommandRestart
}

type transition struct {
	// settled reports whether from is already the command's target state.
	settled func(from State, cmd Command) bool
	// next returns the target state, or a non-empty reason when illegal.
	next func(from State, questionCount int, cmd Command) (State, string)
}

var transitions = map[CommandKind]transition{
	CommandOpenLobby: {
		settled: func(from State, cmd Command) bool {
			return from.Status == StatusLobby
		},
		next: func(from State, questionCount int, cmd Command) (State, string) {
			if from.Status != StatusDraft {
				return from, "quiz is not a draft"
			}
			return State{Status: StatusLobby, Index: 0}, ""
		},
	},
	CommandStart: {
		settled: func(from State, cmd Command) bool {
			return from.Status == StatusQuestion && from.Index == 0
		},
		next: func(from State, questionCount int, cmd Command) (State, string) {
			if from.Status != StatusLobby {
				return from, "lobby is not open"
			}
			if questionCount == 0 {
				return from, "quiz has no questions"
			}
			return State{Status: StatusQuestion, Index: 0}, ""
		},
	},
	CommandRevealResults: {
		settled: func(from State, cmd Command) bool {
			return from.Status == StatusResults
		},
		next: func(from State, questionCount int, cmd Command) (State, string) {
			if from.Status != StatusQuestion {
				return from, "no question is live"
			}
			return State{Status: StatusResults, Index: from.Index}, ""
		},
	},
	CommandShowLeaderboard: {
		settled: func(from State, cmd Command) bool {
			return from.Status == StatusLeaderboard
		},
		next: func(from State, questionCount int, cmd Command) (State, string) {
			if from.Status != StatusResults {
				return from, "results are not shown"
			}
			return State{Status: StatusLeaderboard, Index: from.Index}, ""
		},
	},
	CommandAdvance: {
		settled: func(from State, cmd Command) bool {
			// Without a pinned index a retried advance cannot be told apart from
			// an out-of-order one.
			return cmd.Index != nil && from.Status == StatusQuestion
		},
		next: func(from State, questionCount int, cmd Command) (State, string) {
			if from.Status != StatusLeaderboard {
				return from, "leaderboard is not shown"
			}
			if from.Index+1 >= questionCount {
				return from, "no questions left"
			}
			return State{Status: StatusQuestion, Index: from.Index + 1}, ""
		},
	},
	CommandEnd: {
		settled: func(from State, cmd Command) bool {
			return from.Status == StatusFinished
		},
		next: func(from State, questionCount int, cmd Command) (State, string) {
			if cmd.Force {
				return State{Status: StatusFinished, Index: from.Index}, ""
			}
			if from.Status != StatusLeaderboard {
				return from, "leaderboard is not shown"
			}
			if from.Index+1 < questionCount {
				return from, "questions remain"
			}
			return State{Status: StatusFinished, Index: from.Index}, ""
		},
	},
	CommandRestart: {
		settled: func(from State, cmd Command) bool {
			return from.Status == StatusDraft && from.Index == 0
		},
		next: func(from State, questionCount int, cmd Command) (State, string) {
			if from.Status != StatusFinished {
				return from, "quiz is not finished"
			}
			return State{Status: StatusDraft, Index: 0}, ""
		},
	},
}

// Apply validates cmd against from. It returns the resulting state and whether
// it differs from from. Illegal commands return a *TransitionError and from.
func Apply(from State, cmd Command, questionCount int) (State, bool, error) {
	t, ok := transitions[cmd.Kind]
	if !ok {
		return from, false, &TransitionError{Command: cmd.Kind, From: from, Reason: "unknown command"}
	}
	if t.settled(from, cmd) && pinned(cmd, from.Index) {
		return from, false, nil
	}
	next, reason := t.next(from, questionCount, cmd)
	if reason != "" {
		return from, false, &TransitionError{Command: cmd.Kind, From: from, Reason: reason}
	}
	if !pinned(cmd, next.Index) {
		return from, false, &TransitionError{
			Command: cmd.Kind,
			From:    from,
			Reason:  fmt.Sprintf("expected question index %d", *cmd.Index),
		}
	}
	return next, true, nil
}

func pinned(cmd Command, index int) bool {
	return cmd.Index == nil || *cmd.Index == index
}

// NextCommand returns the single forward command the host UI should offer.
func NextCommand(from State, questionCount int) CommandKind {
	switch from.Status {
	case StatusDraft:
		return CommandOpenLobby
	case StatusLobby:
		return CommandStart
	case StatusQuestion:
		return CommandRevealResults
	case StatusResults:
		return CommandShowLeaderboard
	case StatusLeaderboard:
		if from.Index+1 < questionCount {
			return CommandAdvance
		}
		return CommandEnd
	default:
		return CommandRestart
	}
}
