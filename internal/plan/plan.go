// Package plan keeps the per-user list of catalog actions a household has
// chosen to carry out.
package plan

import (
	"context"
	"errors"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/solarsense-cli/internal/advice"
	"github.com/sells-group/solarsense-cli/internal/model"
	"github.com/sells-group/solarsense-cli/internal/store"
)

var (
	// ErrUserRequired is returned when no user id is given.
	ErrUserRequired = eris.New("plan: user id is required")
	// ErrUnknownAction is returned for a code missing from the catalog.
	ErrUnknownAction = eris.New("plan: unknown action")
)

// IsInvalid reports whether err came from bad caller input.
func IsInvalid(err error) bool {
	return errors.Is(err, ErrUserRequired) || errors.Is(err, ErrUnknownAction)
}

// Item is a plan entry joined with its catalog action.
type Item struct {
	model.PlanEntry
	Action model.CatalogAction `json:"action"`
}

// Service adds, removes and lists plan entries.
type Service struct {
	store   store.Store
	catalog *advice.Catalog
}

// NewService creates a Service.
func NewService(st store.Store, catalog *advice.Catalog) *Service {
	return &Service{store: st, catalog: catalog}
}

// Add puts an action on the user's plan. Adding an action twice keeps the
// first entry.
func (s *Service) Add(ctx context.Context, userID, code string) (*Item, error) {
	userID, code, err := s.normalize(userID, code)
	if err != nil {
		return nil, err
	}
	action, ok := s.catalog.Get(code)
	if !ok {
		return nil, eris.Wrapf(ErrUnknownAction, "code %s", code)
	}

	e, err := s.store.AddToPlan(ctx, userID, code)
	if err != nil {
		return nil, eris.Wrap(err, "plan: add")
	}
	zap.L().Info("plan: action added",
		zap.String("user_id", userID),
		zap.String("action_code", code),
	)
	return &Item{PlanEntry: *e, Action: action}, nil
}

// Remove takes an action off the user's plan.
func (s *Service) Remove(ctx context.Context, userID, code string) error {
	userID, code, err := s.normalize(userID, code)
	if err != nil {
		return err
	}
	if err := s.store.RemoveFromPlan(ctx, userID, code); err != nil {
		return eris.Wrap(err, "plan: remove")
	}
	return nil
}

// List returns the user's plan, oldest first. Entries whose code left the
// catalog are skipped.
func (s *Service) List(ctx context.Context, userID string) ([]Item, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, ErrUserRequired
	}

	entries, err := s.store.ListPlan(ctx, userID)
	if err != nil {
		return nil, eris.Wrap(err, "plan: list")
	}

	items := make([]Item, 0, len(entries))
	for _, e := range entries {
		action, ok := s.catalog.Get(e.ActionCode)
		if !ok {
			zap.L().Warn("plan: entry for unknown action",
				zap.String("user_id", userID),
				zap.String("action_code", e.ActionCode),
			)
			continue
		}
		items = append(items, Item{PlanEntry: e, Action: action})
	}
	return items, nil
}

func (s *Service) normalize(userID, code string) (string, string, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return "", "", ErrUserRequired
	}
	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" {
		return "", "", eris.Wrap(ErrUnknownAction, "empty code")
	}
	return userID, code, nil
}
