package internal

import (
	"context"
	"fmt"
)

// Attendance coordinates the many-to-many sign-up relation between people
// and scheduled events. The same coordinator serves training attendance
// (person = member) and competition participation (person = competitor);
// only the underlying relation differs. Series fan-out is available only
// when a resolver is provided, so the competition coordinator is built
// without one and rejects series calls.
type Attendance struct {
	relation SignupRelation
	series   SeriesResolver
}

func NewAttendance(relation SignupRelation, series SeriesResolver) *Attendance {
	return &Attendance{relation: relation, series: series}
}

// SignUp records the person for the event, or for every instance of the
// event's series when seriesID is given. Signing up twice is a no-op.
func (a *Attendance) SignUp(ctx context.Context, personID, eventID int, seriesID *int) error {
	if seriesID == nil {
		return a.relation.Add(ctx, personID, eventID)
	}
	return a.forSeries(ctx, *seriesID, func(id int) error {
		return a.relation.Add(ctx, personID, id)
	})
}

// UnSign removes the person from the event, or from every instance of the
// series when seriesID is given. Removing an absent sign-up is a no-op.
func (a *Attendance) UnSign(ctx context.Context, personID, eventID int, seriesID *int) error {
	if seriesID == nil {
		return a.relation.Remove(ctx, personID, eventID)
	}
	return a.forSeries(ctx, *seriesID, func(id int) error {
		return a.relation.Remove(ctx, personID, id)
	})
}

func (a *Attendance) IsAttending(ctx context.Context, personID, eventID int) (bool, error) {
	return a.relation.Exists(ctx, personID, eventID)
}

func (a *Attendance) forSeries(ctx context.Context, seriesID int, apply func(eventID int) error) error {
	if a.series == nil {
		return fmt.Errorf("%w: events of this kind do not form series", ErrInvalidSchedule)
	}
	trainings, err := a.series.SeriesTrainings(ctx, seriesID)
	if err != nil {
		return err
	}
	for _, t := range trainings {
		if err := apply(t.ID); err != nil {
			return err
		}
	}
	return nil
}
