package internal

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestSignUpIdempotent(t *testing.T) {
	s := newMemStore()
	att := NewAttendance(s.TrainingAttendance(), s)
	ctx := context.Background()

	m := seedMember(s, "Novak")
	tr := seedTraining(s, at(2024, time.March, 1, 18, 0))

	if err := att.SignUp(ctx, m.ID, tr.ID, nil); err != nil {
		t.Fatal(err)
	}
	if err := att.SignUp(ctx, m.ID, tr.ID, nil); err != nil {
		t.Fatalf("second sign-up must be a no-op, got %v", err)
	}
	n, _ := s.CountAttendants(ctx, tr.ID)
	if n != 1 {
		t.Fatalf("got %d attendance rows, want 1", n)
	}

	ok, err := att.IsAttending(ctx, m.ID, tr.ID)
	if err != nil || !ok {
		t.Fatalf("IsAttending = %v, %v; want true", ok, err)
	}
}

func TestUnSignAbsentIsNoop(t *testing.T) {
	s := newMemStore()
	att := NewAttendance(s.TrainingAttendance(), s)
	ctx := context.Background()

	m := seedMember(s, "Novak")
	tr := seedTraining(s, at(2024, time.March, 1, 18, 0))

	if err := att.UnSign(ctx, m.ID, tr.ID, nil); err != nil {
		t.Fatalf("unsign without a sign-up must be a no-op, got %v", err)
	}

	_ = att.SignUp(ctx, m.ID, tr.ID, nil)
	if err := att.UnSign(ctx, m.ID, tr.ID, nil); err != nil {
		t.Fatal(err)
	}
	ok, _ := att.IsAttending(ctx, m.ID, tr.ID)
	if ok {
		t.Fatal("still attending after unsign")
	}
}

func TestSignUpSeriesFanOut(t *testing.T) {
	s := newMemStore()
	sched := NewSchedule(s, s)
	att := NewAttendance(s.TrainingAttendance(), s)
	ctx := context.Background()

	m := seedMember(s, "Novak")
	series, err := sched.CreateTraining(ctx, TrainingInput{
		Title:             "keiko",
		StartTime:         at(2024, time.March, 4, 18, 0),
		EndTime:           at(2024, time.March, 4, 19, 0),
		Repeating:         true,
		RepeatingInterval: 7,
		RepeatingEnd:      date(2024, time.March, 25),
	})
	if err != nil {
		t.Fatal(err)
	}
	other := seedTraining(s, at(2024, time.March, 5, 18, 0))

	if err := att.SignUp(ctx, m.ID, series[0].ID, series[0].SeriesID); err != nil {
		t.Fatal(err)
	}
	for _, tr := range series {
		if ok, _ := att.IsAttending(ctx, m.ID, tr.ID); !ok {
			t.Errorf("not signed up for instance %d", tr.ID)
		}
	}
	if ok, _ := att.IsAttending(ctx, m.ID, other.ID); ok {
		t.Fatal("fan-out leaked outside the series")
	}

	if err := att.UnSign(ctx, m.ID, series[0].ID, series[0].SeriesID); err != nil {
		t.Fatal(err)
	}
	if len(s.attendance) != 0 {
		t.Fatalf("got %d attendance rows after series unsign, want 0", len(s.attendance))
	}
}

func TestSeriesCallsWithoutResolver(t *testing.T) {
	s := newMemStore()
	att := NewAttendance(s.CompetitionParticipation(), nil)
	ctx := context.Background()

	series := 0
	err := att.SignUp(ctx, 1, 1, &series)
	if !errors.Is(err, ErrInvalidSchedule) {
		t.Fatalf("got %v, want ErrInvalidSchedule", err)
	}
	if err := att.UnSign(ctx, 1, 1, &series); !errors.Is(err, ErrInvalidSchedule) {
		t.Fatalf("got %v, want ErrInvalidSchedule", err)
	}

	// plain sign-up still works
	if err := att.SignUp(ctx, 1, 1, nil); err != nil {
		t.Fatal(err)
	}
}
