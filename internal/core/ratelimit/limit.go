// Package ratelimit provides composable sliding-window rate limiters with
// optional concurrency caps
package ratelimit

import (
	"time"

	perr "starwatch/internal/platform/errors"

	"github.com/go-playground/validator/v10"
)

// Limit describes one rate limiting rule
// MaxConcurrent nil means no concurrency cap; zero means no permits at all
type Limit struct {
	MaxConcurrent *int          `validate:"omitempty,gte=0"`
	MaxRequests   int           `validate:"required,gt=0"`
	Window        time.Duration `validate:"required,gt=0"`
}

var validate = validator.New()

// Validate checks the rule for internal consistency
func (l Limit) Validate() error {
	if err := validate.Struct(l); err != nil {
		return perr.Wrapf(err, perr.ErrorCodeValidation, "invalid rate limit rule")
	}
	return nil
}

// Concurrency returns a Limit value with a concurrency cap attached
func Concurrency(maxConcurrent, maxRequests int, window time.Duration) Limit {
	return Limit{MaxConcurrent: &maxConcurrent, MaxRequests: maxRequests, Window: window}
}

// PerWindow returns a Limit value without a concurrency cap
func PerWindow(maxRequests int, window time.Duration) Limit {
	return Limit{MaxRequests: maxRequests, Window: window}
}
