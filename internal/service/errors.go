package service

import (
	"errors"
	"fmt"
	"unicode/utf8"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ValidationError 描述某个字段未通过校验，handler 将其映射为 422。
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

func invalid(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}

// IsValidationError 判断错误链中是否包含 ValidationError。
func IsValidationError(err error) bool {
	var target *ValidationError
	return errors.As(err, &target)
}

func isDuplicateKey(err error) bool {
	return errors.Is(err, gorm.ErrDuplicatedKey)
}

func requireText(field, value string, maxRunes int) error {
	if value == "" {
		return invalid(field, "is required")
	}
	if maxRunes > 0 && utf8.RuneCountInString(value) > maxRunes {
		return invalid(field, fmt.Sprintf("must be at most %d characters", maxRunes))
	}
	return nil
}

// requireScale 校验十进制数的小数位数与整数位数，对应 numeric(precision, scale) 列。
func requireScale(field string, value decimal.Decimal, precision, scale int32) error {
	if !value.Equal(value.Round(scale)) {
		return invalid(field, fmt.Sprintf("must have at most %d decimal places", scale))
	}
	limit := decimal.New(1, precision-scale)
	if value.Abs().GreaterThanOrEqual(limit) {
		return invalid(field, fmt.Sprintf("must be less than %s in magnitude", limit.String()))
	}
	return nil
}
