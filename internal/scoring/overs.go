// internal/scoring/overs.go
package scoring

import "math"

// Overs are recorded as a decimal "overs.balls" value, e.g. 12.3 means
// 12 overs and 3 balls. The balls digit must stay in 0..5; 12.6 is not a
// legal value (that is 13.0).

// ValidOvers reports whether v is a legal overs value.
func ValidOvers(v float64) bool {
	if v < 0 {
		return false
	}
	return ballsDigit(v) <= 5
}

// TotalBalls converts an overs value to a count of balls bowled.
func TotalBalls(v float64) int {
	whole := int(math.Floor(v))
	return whole*6 + ballsDigit(v)
}

// OversFromBalls is the inverse of TotalBalls.
func OversFromBalls(balls int) float64 {
	if balls < 0 {
		balls = 0
	}
	return float64(balls/6) + float64(balls%6)/10
}

func ballsDigit(v float64) int {
	frac := v - math.Floor(v)
	return int(math.Round(frac * 10))
}
