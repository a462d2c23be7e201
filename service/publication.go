package service

import (
	"context"

	"github.com/uptrace/bun"
	"go.uber.org/zap"

	"github.com/ZeMendes2393/sailscore/apperr"
)

// Publication is the public-results gate of a class: how many races, in
// order, the public standings include.
type Publication struct {
	ClassID        int64 `json:"class_id"`
	PublishedRaces int   `json:"published_races"`
	TotalRaces     int   `json:"total_races"`
}

// Publication returns the published race count of a class.
func (s *Service) Publication(ctx context.Context, classID int64) (*Publication, error) {
	class, err := s.repo.GetClass(ctx, nil, classID)
	if err != nil {
		return nil, missing(err, "class", classID)
	}
	n, err := s.repo.CountRaces(ctx, nil, classID)
	if err != nil {
		return nil, err
	}
	return &Publication{ClassID: classID, PublishedRaces: class.PublishedRaces, TotalRaces: n}, nil
}

// SetPublication sets the published race count of a class; k must lie
// between 0 and the number of races of the class.
func (s *Service) SetPublication(ctx context.Context, classID int64, k int) (*Publication, error) {
	out := &Publication{ClassID: classID, PublishedRaces: k}
	err := s.runInTx(ctx, nil, func(ctx context.Context, db bun.IDB) error {
		class, err := s.repo.GetClass(ctx, db, classID)
		if err != nil {
			return missing(err, "class", classID)
		}
		n, err := s.repo.CountRaces(ctx, db, classID)
		if err != nil {
			return err
		}
		out.TotalRaces = n
		if k < 0 || k > n {
			return apperr.Validation(apperr.CodeInvalidPublicationCount, "published races must be between 0 and %d, got %d", n, k).
				With("requested", k).
				With("races", n)
		}
		class.PublishedRaces = k
		return s.repo.UpdateClass(ctx, db, class, "published_races")
	})
	if err != nil {
		return nil, err
	}
	s.invalidate(classID)
	s.logger.Info("publication updated", zap.Int64("class_id", classID), zap.Int("published_races", k))
	return out, nil
}
