package service

import (
	"context"
	"errors"
	"strings"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/driver/pgdriver"
	"go.uber.org/zap"

	"github.com/ZeMendes2393/sailscore/apperr"
	"github.com/ZeMendes2393/sailscore/events"
	"github.com/ZeMendes2393/sailscore/metrics"
	"github.com/ZeMendes2393/sailscore/models"
)

const (
	protestCounter  = "protest"
	counterAttempts = 3
)

// ProtestInput is a lodged protest.
type ProtestInput struct {
	ClassID     *int64   `json:"class_id"`
	RaceID      *int64   `json:"race_id"`
	Initiator   string   `json:"initiator" validate:"required,max=20"`
	Respondents []string `json:"respondents" validate:"max=20,dive,required,max=20"`
	Description string   `json:"description" validate:"max=4000"`
}

// SubmitProtest stores a protest under the next protest number of the
// regatta. Serialization failures on the counter are retried.
func (s *Service) SubmitProtest(ctx context.Context, regattaID int64, in ProtestInput) (*models.Protest, error) {
	ok, err := s.repo.RegattaExists(ctx, nil, regattaID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, apperr.NotFound("regatta", regattaID)
	}

	respondents := make([]string, 0, len(in.Respondents))
	for _, r := range in.Respondents {
		if r = strings.ToUpper(strings.TrimSpace(r)); r != "" {
			respondents = append(respondents, r)
		}
	}

	var p *models.Protest
	for attempt := 1; ; attempt++ {
		p = &models.Protest{
			RegattaID:   regattaID,
			ClassID:     in.ClassID,
			RaceID:      in.RaceID,
			Initiator:   strings.ToUpper(strings.TrimSpace(in.Initiator)),
			Respondents: respondents,
			Description: strings.TrimSpace(in.Description),
			Status:      models.ProtestSubmitted,
			CreatedAt:   s.now(),
		}
		err = s.runInTx(ctx, nil, func(ctx context.Context, db bun.IDB) error {
			n, err := s.repo.NextSequence(ctx, db, regattaID, protestCounter)
			if err != nil {
				return err
			}
			p.Number = n
			return s.repo.InsertProtest(ctx, db, p)
		})
		if err == nil {
			break
		}
		if attempt >= counterAttempts || !retryable(err) {
			return nil, err
		}
		metrics.RecordCounterRetry()
		s.logger.Warn("retrying protest numbering", zap.Int("attempt", attempt), zap.Error(err))
	}

	s.publish(events.TopicProtestSubmitted, events.ProtestSubmitted{
		RegattaID: regattaID,
		ProtestID: p.ID,
		Number:    p.Number,
		At:        s.now(),
	})
	return p, nil
}

// sqlStateError is implemented by pgdriver.Error.
type sqlStateError interface {
	error
	Field(k byte) string
}

var _ sqlStateError = pgdriver.Error{}

// retryable reports serialization failures and deadlocks.
func retryable(err error) bool {
	var pgErr sqlStateError
	if !errors.As(err, &pgErr) {
		return false
	}
	switch pgErr.Field('C') {
	case "40001", "40P01":
		return true
	}
	return false
}
