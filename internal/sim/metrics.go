package sim

import (
	"encoding/json"
	"os"
)

// EpisodeMetrics aggregates delivery outcomes for one episode.
type EpisodeMetrics struct {
	Ticks           int     `json:"ticks"`
	TotalReward     float64 `json:"total_reward"`
	Packages        int     `json:"packages"`
	Delivered       int     `json:"delivered"`
	DeliveredOnTime int     `json:"delivered_on_time"`
	DeliveredLate   int     `json:"delivered_late"`
}

// Metrics summarizes the episode so far.
func (e *Environment) Metrics() EpisodeMetrics {
	return EpisodeMetrics{
		Ticks:           e.tick,
		TotalReward:     e.totalReward,
		Packages:        len(e.packages),
		Delivered:       e.deliveredOnTime + e.deliveredLate,
		DeliveredOnTime: e.deliveredOnTime,
		DeliveredLate:   e.deliveredLate,
	}
}

// Export writes the metrics to a JSON file.
func (m EpisodeMetrics) Export(path string) error {
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
