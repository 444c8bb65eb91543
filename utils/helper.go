package utils

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/bsm/redislock"
	"github.com/freshtrace/freshtrace_backend/config"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

// ParseDecimal converts a string to a decimal.Decimal value.
func ParseDecimal(value string) (decimal.Decimal, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return decimal.Zero, errors.New("empty decimal string")
	}

	dec, err := decimal.NewFromString(value)
	if err != nil {
		return decimal.Zero, err
	}

	return dec, nil
}

// ParseDateOnly parses a YYYY-MM-DD form value into a date-only time.
func ParseDateOnly(value string) (time.Time, error) {
	return time.Parse("2006-01-02", strings.TrimSpace(value))
}

func ProcessValidationErrors(err error) map[string]string {

	validationErrors := err.(validator.ValidationErrors)

	errorResponse := make(map[string]string)

	for _, ve := range validationErrors {
		errorResponse[ve.Field()] = ve.Tag()
	}

	return errorResponse
}

func NewTrue() *bool {
	b := true
	return &b
}

func NewFalse() *bool {
	b := false
	return &b
}

// StockLock serializes batch quantity fan-outs for a scope (shipment, recall, session).
// Redis lock is a best-effort optimization.
// Correctness must not depend on Redis: rows are also locked FOR UPDATE inside the
// enclosing MySQL transaction, which remains the authoritative guard.
func StockLock(ctx context.Context, scope string, moduleName string, functionName string) (func(), error) {
	logger := config.GetLogger()
	locker := config.GetRedisLock()
	if locker == nil {
		// Redis not connected (e.g. unit tests); row locks still protect the operation.
		return func() {}, nil
	}
	lockKey := fmt.Sprintf("stockLock:%s", scope)
	lock, err := locker.Obtain(ctx, lockKey, 30*time.Second, nil)
	if err == redislock.ErrNotObtained {
		config.LogError(logger, moduleName, functionName, "Could not obtain stock lock", scope, err)
		return nil, errors.New("could not obtain stock lock for " + scope)
	} else if err != nil {
		config.LogError(logger, moduleName, functionName, "Error obtaining stock lock", scope, err)
		return nil, err
	}
	return func() { _ = lock.Release(ctx) }, nil
}
