// Package validation checks backing services at startup.
package validation

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/afivan20/yatube/internal/logger"
	"go.uber.org/zap"
)

// CheckTimeout bounds each service check.
const CheckTimeout = 10 * time.Second

// Check reports whether a service is reachable.
type Check func(ctx context.Context) error

// ServiceValidator runs the checks of every configured service. Failures of
// required services abort startup; other failures are only logged.
type ServiceValidator struct {
	required map[string]bool
	checks   map[string]Check
}

func NewServiceValidator(required []string) *ServiceValidator {
	sv := &ServiceValidator{
		required: make(map[string]bool, len(required)),
		checks:   make(map[string]Check),
	}
	for _, name := range required {
		sv.required[name] = true
	}
	return sv
}

// Register adds the check for a configured service.
func (sv *ServiceValidator) Register(name string, check Check) {
	sv.checks[name] = check
}

// ValidateServices runs every registered check. A required service with no
// registered check counts as a failure, since it is not configured.
func (sv *ServiceValidator) ValidateServices(ctx context.Context) error {
	for _, name := range sv.sortedRequired() {
		if _, ok := sv.checks[name]; !ok {
			return fmt.Errorf("required service %q is not configured", name)
		}
	}

	names := make([]string, 0, len(sv.checks))
	for name := range sv.checks {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		timeoutCtx, cancel := context.WithTimeout(ctx, CheckTimeout)
		err := sv.checks[name](timeoutCtx)
		cancel()

		switch {
		case err == nil:
			logger.Log.Info("Service validated", zap.String("service", name))
		case sv.required[name]:
			logger.Log.Error("Required service validation failed", zap.String("service", name), zap.Error(err))
			return fmt.Errorf("required service %q validation failed: %w", name, err)
		default:
			logger.Log.Warn("Service validation failed", zap.String("service", name), zap.Error(err))
		}
	}
	return nil
}

func (sv *ServiceValidator) sortedRequired() []string {
	names := make([]string, 0, len(sv.required))
	for name := range sv.required {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
