package health

import (
	"context"
	"fmt"
	"time"
)

const checkTimeout = time.Second

// Checker represents a dependency health check.
type Checker interface {
	Name() string
	Check(ctx context.Context) error
}

// Service aggregates dependency checkers for the readiness probe.
type Service struct {
	checkers []Checker
}

func NewService(checkers ...Checker) *Service {
	return &Service{checkers: checkers}
}

// Ready runs every checker and returns the first failure.
func (s *Service) Ready(ctx context.Context) error {
	for _, ch := range s.checkers {
		if err := check(ctx, ch); err != nil {
			return fmt.Errorf("%s: %w", ch.Name(), err)
		}
	}
	return nil
}

func check(ctx context.Context, ch Checker) error {
	ctx, cancel := context.WithTimeout(ctx, checkTimeout)
	defer cancel()
	return ch.Check(ctx)
}
