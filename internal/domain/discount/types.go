package discount

import "github.com/Thegreatsura/merchant/internal/pkg/errs"

type Type string

const (
	TypePercentage  Type = "percentage"
	TypeFixedAmount Type = "fixed_amount"
)

func ParseType(s string) (Type, error) {
	switch Type(s) {
	case TypePercentage, TypeFixedAmount:
		return Type(s), nil
	default:
		return "", errs.InvalidRequest("unknown discount type " + s)
	}
}

type Status string

const (
	StatusActive   Status = "active"
	StatusInactive Status = "inactive"
	StatusArchived Status = "archived"
)

func ParseStatus(s string) (Status, error) {
	switch Status(s) {
	case StatusActive, StatusInactive, StatusArchived:
		return Status(s), nil
	default:
		return "", errs.InvalidRequest("unknown discount status " + s)
	}
}
