package web

type QuizSummary struct {
	ID            string `json:"id"`
	Title         string `json:"title"`
	JoinCode      string `json:"join_code"`
	Status        string `json:"status"`
	QuestionCount int    `json:"question_count"`
	Participants  int    `json:"participants"`
	CreatedAt     string `json:"created_at"`
}

type PaginationData struct {
	Page       int  `json:"page"`
	PerPage    int  `json:"per_page"`
	Total      int  `json:"total"`
	TotalPages int  `json:"total_pages"`
	HasPrev    bool `json:"has_prev"`
	HasNext    bool `json:"has_next"`
	PrevPage   int  `json:"prev_page,omitempty"`
	NextPage   int  `json:"next_page,omitempty"`
}

type OptionTally struct {
	Label   string
	Count   int
	Correct bool
}

type LeaderRow struct {
	Rank     int
	Nickname string
	Score    int
}

// DriverStatus is everything the shared screen shows for one state.
type DriverStatus struct {
	Title          string
	JoinCode       string
	Status         string
	QuestionNumber int
	QuestionCount  int
	QuestionText   string
	EndsAt         string
	Options        []OptionTally
	ShowCounts     bool
	Participants   int
	Answered       int
	Leaders        []LeaderRow
	Podium         []LeaderRow
}
