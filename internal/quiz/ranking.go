package quiz

import "sort"

const (
	LeaderboardSize = 5
	PodiumSize      = 3
)

type Ranked struct {
	Participant Participant
	Rank        int
}

// Rank orders participants by score and assigns standard competition ranks:
// equal scores share a rank and the next distinct score takes its 1-based
// position (1, 1, 3). Ties are ordered by join time, then id, so the output is
// stable for unchanged input regardless of the order participants arrive in.
func Rank(participants []Participant) []Ranked {
	sorted := make([]Participant, len(participants))
	copy(sorted, participants)
	sort.SliceStable(sorted, func(i, j int) bool {
		a, b := sorted[i], sorted[j]
		if a.Score != b.Score {
			return a.Score > b.Score
		}
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.Before(b.CreatedAt)
		}
		return a.ID < b.ID
	})

	ranked := make([]Ranked, len(sorted))
	for i, participant := range sorted {
		rank := i + 1
		if i > 0 && participant.Score == sorted[i-1].Score {
			rank = ranked[i-1].Rank
		}
		ranked[i] = Ranked{Participant: participant, Rank: rank}
	}
	return ranked
}

// Top returns the first n entries of ranked.
func Top(ranked []Ranked, n int) []Ranked {
	if n < 0 || n >= len(ranked) {
		return ranked
	}
	return ranked[:n]
}

// Podium returns the entries ranked within the top places, so ties for third
// place are all included.
func Podium(ranked []Ranked) []Ranked {
	out := make([]Ranked, 0, PodiumSize)
	for _, entry := range ranked {
		if entry.Rank > PodiumSize {
			break
		}
		out = append(out, entry)
	}
	return out
}

// Find returns the ranked entry for participantID.
func Find(ranked []Ranked, participantID string) (Ranked, bool) {
	for _, entry := range ranked {
		if entry.Participant.ID == participantID {
			return entry, true
		}
	}
	return Ranked{}, false
}
