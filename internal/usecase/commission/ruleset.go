package commission

import (
	"github.com/google/uuid"
	"github.com/mkarelin/sales-commission-service/internal/config"
	"github.com/mkarelin/sales-commission-service/internal/domain"
	"github.com/shopspring/decimal"
)

// ExpandRules turns the configured default rule set into draft
// allocations for an order. Unknown roles are skipped. Payees stay
// unassigned; assignment happens during the allocation stage.
func ExpandRules(orderID string, rules []config.RuleConfig) []*domain.CommissionAllocation {
	allocs := make([]*domain.CommissionAllocation, 0, len(rules))
	for _, rule := range rules {
		role := domain.CommissionRole(rule.Role)
		if !role.Valid() {
			continue
		}
		allocs = append(allocs, &domain.CommissionAllocation{
			ID:      uuid.New().String(),
			OrderID: orderID,
			Role:    role,
			Rate:    decimal.NewFromFloat(rule.Rate),
		})
	}
	return allocs
}
