package sim

import "fmt"

// Config holds the environment parameters for one episode.
type Config struct {
	// Episode horizon in ticks
	MaxTimeSteps int `json:"max_time_steps"`

	// Fleet and workload sizes
	NumRobots   int `json:"num_robots"`
	NumPackages int `json:"num_packages"`

	// Reward shaping. MoveCost is negative and added whenever a robot
	// issues a directional move and actually leaves its cell.
	MoveCost       float64 `json:"move_cost"`
	DeliveryReward float64 `json:"delivery_reward"` // Delivered by the deadline
	DelayReward    float64 `json:"delay_reward"`    // Delivered after the deadline

	// Seed for scenario generation
	Seed int64 `json:"seed"`
}

// DefaultConfig returns the standard benchmark parameters.
func DefaultConfig() Config {
	return Config{
		MaxTimeSteps:   100,
		NumRobots:      5,
		NumPackages:    20,
		MoveCost:       -0.01,
		DeliveryReward: 10.0,
		DelayReward:    1.0,
		Seed:           2025,
	}
}

// Validate checks for parameter combinations the scenario generator
// cannot honor.
func (c Config) Validate() error {
	if c.MaxTimeSteps < 1 {
		return fmt.Errorf("max time steps = %d, want >= 1", c.MaxTimeSteps)
	}
	if c.NumRobots < 1 {
		return fmt.Errorf("robot count = %d, want >= 1", c.NumRobots)
	}
	if c.NumPackages < 0 {
		return fmt.Errorf("package count = %d, want >= 0", c.NumPackages)
	}
	// Packages beyond the zero-spawn quota draw a spawn tick from [1, horizon).
	if c.NumPackages > zeroSpawnQuota(c.NumRobots) && c.MaxTimeSteps < 2 {
		return fmt.Errorf("max time steps = %d leaves no room for spawn times >= 1", c.MaxTimeSteps)
	}
	return nil
}

// zeroSpawnQuota is how many packages are available from tick 0.
func zeroSpawnQuota(numRobots int) int {
	return min(numRobots, 20)
}
