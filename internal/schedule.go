package internal

import (
	"context"
	"fmt"
	"time"
)

// Schedule owns the training and competition lifecycle: recurring series
// expansion, explicit cascade deletes and the month window used by the
// calendar navigation.
type Schedule struct {
	trainings    TrainingStore
	competitions CompetitionStore
	now          func() time.Time
}

func NewSchedule(trainings TrainingStore, competitions CompetitionStore) *Schedule {
	return &Schedule{trainings: trainings, competitions: competitions, now: time.Now}
}

// TrainingInput is a training template plus its recurrence settings.
type TrainingInput struct {
	Title             string
	Description       string
	Place             string
	StartTime         time.Time
	EndTime           time.Time
	MaxAttendance     *int
	MinTechnicalGrade *int

	Repeating         bool
	RepeatingInterval int // days
	RepeatingEnd      time.Time
}

// CreateTraining inserts one training, or a whole series when the input
// repeats: instances share a fresh series id and advance by the interval
// until start_time is no longer strictly before RepeatingEnd. A repeating
// end at or before the first start yields zero instances, which is valid.
// Inserts are independent; a store failure mid-series leaves the already
// created instances in place.
func (s *Schedule) CreateTraining(ctx context.Context, in TrainingInput) ([]Training, error) {
	t := Training{
		Title:             in.Title,
		Description:       in.Description,
		Place:             in.Place,
		StartTime:         in.StartTime,
		EndTime:           in.EndTime,
		MaxAttendance:     in.MaxAttendance,
		MinTechnicalGrade: in.MinTechnicalGrade,
	}

	if !in.Repeating {
		id, err := s.trainings.InsertTraining(ctx, t)
		if err != nil {
			return nil, err
		}
		t.ID = id
		return []Training{t}, nil
	}

	if in.RepeatingInterval < 1 {
		return nil, fmt.Errorf("%w: repeating interval must be at least one day", ErrInvalidSchedule)
	}
	if in.RepeatingEnd.IsZero() {
		return nil, fmt.Errorf("%w: repeating end is required", ErrInvalidSchedule)
	}

	maxID, err := s.trainings.MaxSeriesID(ctx)
	if err != nil {
		return nil, err
	}
	seriesID := 0
	if maxID != nil {
		seriesID = *maxID + 1
	}
	t.SeriesID = &seriesID

	var created []Training
	start, end := in.StartTime, in.EndTime
	for start.Before(in.RepeatingEnd) {
		inst := t
		inst.StartTime, inst.EndTime = start, end
		id, err := s.trainings.InsertTraining(ctx, inst)
		if err != nil {
			return created, err
		}
		inst.ID = id
		created = append(created, inst)
		start = start.AddDate(0, 0, in.RepeatingInterval)
		end = end.AddDate(0, 0, in.RepeatingInterval)
	}
	return created, nil
}

// DeleteTraining removes one training, or every instance of the series when
// seriesID is given. Each delete cascades through the attendance rows first.
func (s *Schedule) DeleteTraining(ctx context.Context, id int, seriesID *int) error {
	if seriesID == nil {
		if _, err := s.trainings.Training(ctx, id); err != nil {
			return err
		}
		if err := s.trainings.PurgeTrainingAttendance(ctx, id); err != nil {
			return err
		}
		return s.trainings.DeleteTrainingRow(ctx, id)
	}

	trainings, err := s.trainings.SeriesTrainings(ctx, *seriesID)
	if err != nil {
		return err
	}
	for _, t := range trainings {
		if err := s.DeleteTraining(ctx, t.ID, nil); err != nil {
			return err
		}
	}
	return nil
}

func (s *Schedule) Training(ctx context.Context, id int) (Training, error) {
	return s.trainings.Training(ctx, id)
}

func (s *Schedule) AttendantCount(ctx context.Context, trainingID int) (int, error) {
	return s.trainings.CountAttendants(ctx, trainingID)
}

/* ===================== COMPETITIONS ===================== */

type CompetitionInput struct {
	Title             string
	Description       string
	Place             string
	StartTime         time.Time
	EndTime           time.Time
	MinTechnicalGrade *int
}

func (s *Schedule) CreateCompetition(ctx context.Context, in CompetitionInput) (Competition, error) {
	c := Competition{
		Title:             in.Title,
		Description:       in.Description,
		Place:             in.Place,
		StartTime:         in.StartTime,
		EndTime:           in.EndTime,
		MinTechnicalGrade: in.MinTechnicalGrade,
	}
	id, err := s.competitions.InsertCompetition(ctx, c)
	if err != nil {
		return Competition{}, err
	}
	c.ID = id
	return c, nil
}

func (s *Schedule) UpdateCompetition(ctx context.Context, c Competition) error {
	return s.competitions.UpdateCompetition(ctx, c)
}

// DeleteCompetition cascades through the participation rows, then removes
// the competition itself.
func (s *Schedule) DeleteCompetition(ctx context.Context, id int) error {
	if _, err := s.competitions.Competition(ctx, id); err != nil {
		return err
	}
	if err := s.competitions.PurgeParticipation(ctx, id); err != nil {
		return err
	}
	return s.competitions.DeleteCompetitionRow(ctx, id)
}

func (s *Schedule) Competition(ctx context.Context, id int) (Competition, error) {
	return s.competitions.Competition(ctx, id)
}

/* ===================== MONTH CALENDAR ===================== */

// monthWindow returns the inclusive calendar window [first day 00:00,
// last day 23:59] of the given month. The upper bound deliberately stops at
// 23:59 of the last day rather than midnight of the next month's first day.
func monthWindow(year int, month time.Month) (time.Time, time.Time) {
	from := time.Date(year, month, 1, 0, 0, 0, 0, time.Local)
	to := from.AddDate(0, 1, 0).Add(-time.Minute)
	return from, to
}

func (s *Schedule) resolveMonth(year, month *int) (int, time.Month) {
	if year != nil && month != nil {
		return *year, time.Month(*month)
	}
	now := s.now()
	return now.Year(), now.Month()
}

// MonthTrainings lists trainings starting in the given month, ascending by
// start time. Nil year/month default to the current month.
func (s *Schedule) MonthTrainings(ctx context.Context, year, month *int) ([]Training, error) {
	from, to := monthWindow(s.resolveMonth(year, month))
	return s.trainings.TrainingsBetween(ctx, from, to)
}

// MemberMonthTrainings restricts the month view to trainings the member is
// signed up for.
func (s *Schedule) MemberMonthTrainings(ctx context.Context, memberID int, year, month *int) ([]Training, error) {
	from, to := monthWindow(s.resolveMonth(year, month))
	return s.trainings.MemberTrainingsBetween(ctx, memberID, from, to)
}

func (s *Schedule) MonthCompetitions(ctx context.Context, year, month *int) ([]Competition, error) {
	from, to := monthWindow(s.resolveMonth(year, month))
	return s.competitions.CompetitionsBetween(ctx, from, to)
}

// CompetitorMonthCompetitions restricts the month view to competitions the
// competitor participates in.
func (s *Schedule) CompetitorMonthCompetitions(ctx context.Context, competitorID int, year, month *int) ([]Competition, error) {
	from, to := monthWindow(s.resolveMonth(year, month))
	return s.competitions.CompetitorCompetitionsBetween(ctx, competitorID, from, to)
}
