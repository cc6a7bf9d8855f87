package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// RegularPlan is an equal-installment schedule covering the remaining
// balance over the month-start boundaries left before the deadline.
// PerPayment uses ceiling division so the plan never under-collects.
type RegularPlan struct {
	Remaining    decimal.Decimal `json:"remaining"`
	PaymentCount int             `json:"payment_count"`
	PerPayment   decimal.Decimal `json:"per_payment"`
	Deadline     time.Time       `json:"deadline"`
}
