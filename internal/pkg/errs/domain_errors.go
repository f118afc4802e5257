package errs

import (
	"errors"
	"fmt"
)

// Error taxonomy shared by use cases and handlers. Callers classify with errs.Is.
var (
	ErrInvalidRequest        = errors.New("invalid request")
	ErrNotFound              = errors.New("not found")
	ErrConflict              = errors.New("conflict")
	ErrInsufficientInventory = errors.New("insufficient inventory")
	ErrIneligible            = errors.New("discount not eligible")
	ErrSignatureInvalid      = errors.New("signature invalid")
	ErrProcessor             = errors.New("payment processor error")

	ErrDatabaseOperationFailed = errors.New("database operation failed")
)

type InsufficientInventoryError struct {
	SKU string
}

func (e *InsufficientInventoryError) Error() string {
	return fmt.Sprintf("insufficient inventory for sku %q", e.SKU)
}

func (e *InsufficientInventoryError) Is(target error) bool {
	return target == ErrInsufficientInventory
}

func InsufficientInventory(sku string) error {
	return &InsufficientInventoryError{SKU: sku}
}

type IneligibleReason string

const (
	ReasonInactive          IneligibleReason = "inactive"
	ReasonNotStarted        IneligibleReason = "not_started"
	ReasonExpired           IneligibleReason = "expired"
	ReasonMinimumNotMet     IneligibleReason = "minimum_not_met"
	ReasonUsageLimitReached IneligibleReason = "usage_limit_reached"
	ReasonCustomerLimit     IneligibleReason = "customer_limit_reached"
)

type IneligibleError struct {
	Reason  IneligibleReason
	Message string
}

func (e *IneligibleError) Error() string {
	return "discount not eligible: " + e.Message
}

func (e *IneligibleError) Is(target error) bool {
	return target == ErrIneligible
}

func Ineligible(reason IneligibleReason, format string, args ...any) error {
	return &IneligibleError{Reason: reason, Message: fmt.Sprintf(format, args...)}
}

// Constructors wrap the sentinel so both errors.Is and errs.Is classify the result.
func InvalidRequest(msg string) error {
	return Wrap(ErrInvalidRequest, msg)
}

func NotFound(what string) error {
	return Wrap(ErrNotFound, what)
}

func Conflict(msg string) error {
	return Wrap(ErrConflict, msg)
}

func SignatureInvalid(err error) error {
	if err == nil {
		return ErrSignatureInvalid
	}
	return Wrap(ErrSignatureInvalid, err.Error())
}

// Processor keeps the processor's message and classifies the error as ErrProcessor.
func Processor(err error, op string) error {
	if err == nil {
		return Wrap(ErrProcessor, op)
	}
	return Wrapf(ErrProcessor, "%s: %s", op, err.Error())
}
