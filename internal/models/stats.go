package models

// Stats are the lifetime results recorded for the local player. BestTime is
// in milliseconds and only meaningful when HasBestTime is set.
type Stats struct {
	Wins        int64 `json:"wins" redis:"wins"`
	Losses      int64 `json:"losses" redis:"losses"`
	BestTime    int64 `json:"best_time" redis:"best_time"`
	HasBestTime bool  `json:"has_best_time"`
}

func (s Stats) Played() int64 {
	return s.Wins + s.Losses
}

// WinRate is the share of played games that were won, 0 when nothing was played.
func (s Stats) WinRate() float64 {
	if s.Played() == 0 {
		return 0
	}
	return float64(s.Wins) / float64(s.Played())
}

type StatsResponse struct {
	Stats
	Played  int64   `json:"played"`
	WinRate float64 `json:"win_rate"`
}

func NewStatsResponse(s Stats) StatsResponse {
	return StatsResponse{Stats: s, Played: s.Played(), WinRate: s.WinRate()}
}
