package services

const (
	StatusPending    = "pending"
	StatusProcessing = "processing"
	StatusShipped    = "shipped"
	StatusDelivered  = "delivered"
	StatusCancelled  = "cancelled"
)

// 发货(shipped)之后不可取消，delivered和cancelled为终态
var validNext = map[string]map[string]bool{
	StatusPending:    {StatusProcessing: true, StatusCancelled: true},
	StatusProcessing: {StatusShipped: true, StatusCancelled: true},
	StatusShipped:    {StatusDelivered: true, StatusCancelled: true},
	StatusDelivered:  {},
	StatusCancelled:  {},
}

func IsValidStatus(s string) bool {
	_, ok := validNext[s]
	return ok
}

// CanTransition 同状态视为合法（幂等空操作）
func CanTransition(from, to string) bool {
	if from == to {
		return true
	}
	return validNext[from][to]
}
