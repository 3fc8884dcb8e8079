// Package similarity scores how alike two property records are.
package similarity

import (
	"math"

	"oselia/server/internal/models"
)

// Score returns the weighted similarity between two property records in
// [0,1]. Six attribute comparisons contribute full, partial or zero credit:
//
//	rooms        0.25 (0.15 when off by one)
//	area         0.20 (<10% relative diff; 0.15 <20%, 0.10 <30%)
//	buildingType 0.15
//	condition    0.15
//	floor        0.10 (0.05 within 2)
//	totalFloors  0.10 (0.05 within 3)
//	hasBalcony   0.05
//
// The weights sum to 1.0, so a record compared with itself scores exactly 1.
// The function is symmetric and has no side effects.
func Score(a, b *models.Property) float64 {
	var score float64

	switch delta := absInt(a.Rooms - b.Rooms); {
	case delta == 0:
		score += 0.25
	case delta == 1:
		score += 0.15
	}

	// Relative difference against the larger area keeps the comparison
	// symmetric and scale invariant. Non-positive areas earn no credit.
	if larger := math.Max(a.Area, b.Area); larger > 0 {
		switch diff := math.Abs(a.Area-b.Area) / larger; {
		case diff < 0.1:
			score += 0.20
		case diff < 0.2:
			score += 0.15
		case diff < 0.3:
			score += 0.10
		}
	}

	if a.BuildingType == b.BuildingType {
		score += 0.15
	}

	if a.Condition == b.Condition {
		score += 0.15
	}

	switch delta := absInt(a.Floor - b.Floor); {
	case delta == 0:
		score += 0.10
	case delta <= 2:
		score += 0.05
	}

	switch delta := absInt(a.TotalFloors - b.TotalFloors); {
	case delta == 0:
		score += 0.10
	case delta <= 3:
		score += 0.05
	}

	if a.HasBalcony == b.HasBalcony {
		score += 0.05
	}

	return score
}

func absInt(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
