package resilience

import "time"

// BuildSettings produces Settings from the integer knobs found in config.
// Non-positive values fall back to defaults.
func BuildSettings(name string, intervalSeconds, timeoutSeconds, failureThreshold, successThreshold int) Settings {
	return Settings{
		Name:             name,
		Interval:         secondsOr(intervalSeconds, time.Minute),
		Timeout:          secondsOr(timeoutSeconds, 30*time.Second),
		FailureThreshold: countOr(failureThreshold, 5),
		SuccessThreshold: countOr(successThreshold, 1),
	}
}

func secondsOr(seconds int, fallback time.Duration) time.Duration {
	if seconds <= 0 {
		return fallback
	}
	return time.Duration(seconds) * time.Second
}

func countOr(n int, fallback uint32) uint32 {
	if n <= 0 {
		return fallback
	}
	return uint32(n)
}
