package utils

import (
	"testing"

	"github.com/pkg/errors"
	"go.viam.com/test"
)

func TestConfigValidationErrors(t *testing.T) {
	err := NewConfigValidationFieldRequiredError("planner", "dt")
	test.That(t, err, test.ShouldBeError, `error validating "planner": "dt" is required`)

	err = NewOutOfRangeError("planner", "max_omega", -1.0, "> 0")
	test.That(t, err, test.ShouldBeError, `error validating "planner": "max_omega" must be > 0, got -1`)

	cause := errors.New("boom")
	test.That(t, errors.Cause(NewConfigValidationError("scenario", cause)), test.ShouldEqual, cause)
}
