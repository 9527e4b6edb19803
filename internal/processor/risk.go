package processor

import "github.com/sells-group/home-capacity-viewer/internal/model"

// Band edges for the risk scale. Each band's lower edge is exclusive and its
// upper edge inclusive, so 0 is a deficit and 1 is low capacity.
const (
	highCapacityFloor = 1.0
	lowCapacityFloor  = 0.0
	lowDeficitFloor   = -1.0
)

// ClassifyRisk maps a water value (a reading or a statistic of readings) to
// its risk level. It is total: NaN falls through to RiskHighDeficit.
func ClassifyRisk(v float64) model.RiskLevel {
	switch {
	case v > highCapacityFloor:
		return model.RiskHighCapacity
	case v > lowCapacityFloor:
		return model.RiskLowCapacity
	case v > lowDeficitFloor:
		return model.RiskLowDeficit
	default:
		return model.RiskHighDeficit
	}
}
