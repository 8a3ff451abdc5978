package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type CommissionRole string

const (
	RoleBroker        CommissionRole = "BROKER"
	RoleReferrer      CommissionRole = "REFERRER"
	RoleCashback      CommissionRole = "CASHBACK"
	RoleOtherExternal CommissionRole = "OTHER_EXTERNAL"
	RoleAgent1        CommissionRole = "AGENT1"
	RoleAgent2        CommissionRole = "AGENT2"
	RoleManager       CommissionRole = "MANAGER"
	RoleDirector      CommissionRole = "DIRECTOR"
)

// External reports whether the role is paid to an outside party rather
// than an internal employee.
func (r CommissionRole) External() bool {
	switch r {
	case RoleBroker, RoleReferrer, RoleCashback, RoleOtherExternal:
		return true
	}
	return false
}

func (r CommissionRole) Valid() bool {
	switch r {
	case RoleBroker, RoleReferrer, RoleCashback, RoleOtherExternal,
		RoleAgent1, RoleAgent2, RoleManager, RoleDirector:
		return true
	}
	return false
}

// CommissionAllocation is a single commission entitlement of one role on
// one order. Exactly one of Rate and FixedAmount is authoritative.
type CommissionAllocation struct {
	ID          string
	OrderID     string
	Role        CommissionRole
	Rate        decimal.Decimal
	FixedAmount decimal.Decimal
	Amount      decimal.Decimal

	PayeeID         string
	NoPayeeRequired bool

	CreatedAt time.Time
	UpdatedAt time.Time
}

// HasBasis reports whether the allocation defines a non-zero rate or
// fixed amount.
func (a *CommissionAllocation) HasBasis() bool {
	return !a.Rate.IsZero() || !a.FixedAmount.IsZero()
}

// Payable reports whether the allocation should produce a settlement
// document once the order is posted.
func (a *CommissionAllocation) Payable() bool {
	return a.PayeeID != "" && a.Amount.IsPositive()
}
