package service

import (
	"context"

	"github.com/shopspring/decimal"
	"github.com/uptrace/bun"

	"github.com/ZeMendes2393/sailscore/apperr"
	"github.com/ZeMendes2393/sailscore/models"
	"github.com/ZeMendes2393/sailscore/scoring"
)

// CodeInput is one configured scoring code.
type CodeInput struct {
	Code    string           `json:"code" validate:"required"`
	Points  *decimal.Decimal `json:"points"`
	Average bool             `json:"average"`
}

// CodeTable is a level's configured codes together with the table they
// resolve to.
type CodeTable struct {
	RegattaID  int64                        `json:"regatta_id"`
	ClassID    *int64                       `json:"class_id,omitempty"`
	Configured []models.ScoringCodeOverride `json:"configured"`
	Resolved   []ResolvedCode               `json:"resolved"`
}

// ResolvedCode is one entry of the effective table.
type ResolvedCode struct {
	Code        string           `json:"code"`
	Kind        string           `json:"kind"`
	Points      *decimal.Decimal `json:"points,omitempty"`
	Average     bool             `json:"average,omitempty"`
	Source      string           `json:"source"`
	Discardable bool             `json:"discardable"`
}

func (s *Service) codeTable(ctx context.Context, db bun.IDB, class *models.RegattaClass) (scoring.Table, error) {
	classRows, err := s.repo.ListOverrides(ctx, db, class.RegattaID, &class.ID)
	if err != nil {
		return scoring.Table{}, err
	}
	regattaRows, err := s.repo.ListOverrides(ctx, db, class.RegattaID, nil)
	if err != nil {
		return scoring.Table{}, err
	}
	return scoring.ResolveTable(models.Overrides(classRows), models.Overrides(regattaRows)), nil
}

// DiscardRule returns the discard settings of a class.
func (s *Service) DiscardRule(ctx context.Context, classID int64) (scoring.DiscardRule, error) {
	class, err := s.repo.GetClass(ctx, nil, classID)
	if err != nil {
		return scoring.DiscardRule{}, missing(err, "class", classID)
	}
	return class.DiscardRule(), nil
}

// SetDiscardRule validates and stores the discard settings of a class.
func (s *Service) SetDiscardRule(ctx context.Context, classID int64, rule scoring.DiscardRule) (scoring.DiscardRule, error) {
	if err := rule.Validate(); err != nil {
		return scoring.DiscardRule{}, err
	}
	var out scoring.DiscardRule
	err := s.runInTx(ctx, nil, func(ctx context.Context, db bun.IDB) error {
		class, err := s.repo.GetClass(ctx, db, classID)
		if err != nil {
			return missing(err, "class", classID)
		}
		class.SetDiscardRule(rule)
		if err := s.repo.UpdateClass(ctx, db, class,
			"discard_schedule", "discard_schedule_active", "discard_count", "discard_threshold"); err != nil {
			return err
		}
		out = class.DiscardRule()
		return nil
	})
	if err != nil {
		return scoring.DiscardRule{}, err
	}
	s.invalidate(classID)
	return out, nil
}

// RegattaCodes returns the regatta-level code table.
func (s *Service) RegattaCodes(ctx context.Context, regattaID int64) (*CodeTable, error) {
	ok, err := s.repo.RegattaExists(ctx, nil, regattaID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, apperr.NotFound("regatta", regattaID)
	}
	rows, err := s.repo.ListOverrides(ctx, nil, regattaID, nil)
	if err != nil {
		return nil, err
	}
	return &CodeTable{
		RegattaID:  regattaID,
		Configured: rows,
		Resolved:   resolved(scoring.ResolveTable(nil, models.Overrides(rows))),
	}, nil
}

// ClassCodes returns the class-level code table and the table the class
// resolves to.
func (s *Service) ClassCodes(ctx context.Context, classID int64) (*CodeTable, error) {
	class, err := s.repo.GetClass(ctx, nil, classID)
	if err != nil {
		return nil, missing(err, "class", classID)
	}
	rows, err := s.repo.ListOverrides(ctx, nil, class.RegattaID, &class.ID)
	if err != nil {
		return nil, err
	}
	table, err := s.codeTable(ctx, nil, class)
	if err != nil {
		return nil, err
	}
	return &CodeTable{
		RegattaID:  class.RegattaID,
		ClassID:    &class.ID,
		Configured: rows,
		Resolved:   resolved(table),
	}, nil
}

// SetRegattaCodes replaces the regatta-level code table.
func (s *Service) SetRegattaCodes(ctx context.Context, regattaID int64, codes []CodeInput) (*CodeTable, error) {
	rows, err := overrideRows(codes)
	if err != nil {
		return nil, err
	}
	err = s.runInTx(ctx, nil, func(ctx context.Context, db bun.IDB) error {
		ok, err := s.repo.RegattaExists(ctx, db, regattaID)
		if err != nil {
			return err
		}
		if !ok {
			return apperr.NotFound("regatta", regattaID)
		}
		return s.repo.ReplaceOverrides(ctx, db, regattaID, nil, rows)
	})
	if err != nil {
		return nil, err
	}
	return s.RegattaCodes(ctx, regattaID)
}

// SetClassCodes replaces the class-level code table.
func (s *Service) SetClassCodes(ctx context.Context, classID int64, codes []CodeInput) (*CodeTable, error) {
	rows, err := overrideRows(codes)
	if err != nil {
		return nil, err
	}
	err = s.runInTx(ctx, nil, func(ctx context.Context, db bun.IDB) error {
		class, err := s.repo.GetClass(ctx, db, classID)
		if err != nil {
			return missing(err, "class", classID)
		}
		return s.repo.ReplaceOverrides(ctx, db, class.RegattaID, &class.ID, rows)
	})
	if err != nil {
		return nil, err
	}
	return s.ClassCodes(ctx, classID)
}

// overrideRows validates a submitted code table. Custom codes need a fixed
// value; only adjustable codes may ask for the series average.
func overrideRows(codes []CodeInput) ([]models.ScoringCodeOverride, error) {
	seen := make(map[scoring.Code]struct{}, len(codes))
	rows := make([]models.ScoringCodeOverride, 0, len(codes))
	for _, in := range codes {
		code := scoring.ParseCode(in.Code)
		if code == "" {
			return nil, apperr.Validation(apperr.CodeInvalidRequest, "code must not be empty")
		}
		if _, dup := seen[code]; dup {
			return nil, apperr.Validation(apperr.CodeInvalidRequest, "code %s is configured twice", code).
				With("code", string(code))
		}
		seen[code] = struct{}{}

		if in.Points != nil && in.Points.IsNegative() {
			return nil, apperr.Validation(apperr.CodeInvalidRequest, "points for %s must not be negative", code).
				With("code", string(code))
		}
		if !code.IsBuiltin() && in.Points == nil {
			return nil, apperr.Validation(apperr.CodeInvalidRequest, "custom code %s needs a fixed value", code).
				With("code", string(code))
		}
		if in.Average && code.Kind() != scoring.KindAdjustable {
			return nil, apperr.Validation(apperr.CodeInvalidRequest, "only adjustable codes can use the series average, not %s", code).
				With("code", string(code))
		}
		rows = append(rows, models.ScoringCodeOverride{Code: string(code), Points: in.Points, Average: in.Average})
	}
	return rows, nil
}

func resolved(t scoring.Table) []ResolvedCode {
	entries := t.Entries()
	out := make([]ResolvedCode, len(entries))
	for i, e := range entries {
		out[i] = ResolvedCode{
			Code:        string(e.Code),
			Kind:        e.Kind.String(),
			Points:      e.Points,
			Average:     e.Average,
			Source:      e.Source.String(),
			Discardable: e.Code.Discardable(),
		}
	}
	return out
}
