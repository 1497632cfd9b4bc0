package internal

import (
	"context"
	"errors"
	"testing"
	"time"
)

func trainingGroupRegistry(s *memStore) *GroupRegistry[Member] {
	att := NewAttendance(s.TrainingAttendance(), s)
	return NewGroupRegistry(s.trainingGroups, att)
}

func TestGroupMembership(t *testing.T) {
	s := newMemStore()
	reg := trainingGroupRegistry(s)
	ctx := context.Background()

	a := seedMember(s, "Adamec")
	b := seedMember(s, "Benes")

	g, err := reg.Create(ctx, "youth", "")
	if err != nil {
		t.Fatal(err)
	}

	if err := reg.AddMember(ctx, g.ID, a.ID); err != nil {
		t.Fatal(err)
	}
	if err := reg.AddMember(ctx, g.ID, a.ID); !errors.Is(err, ErrDuplicate) {
		t.Fatalf("repeated add: got %v, want ErrDuplicate", err)
	}

	members, err := reg.Members(ctx, g.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(members) != 1 || members[0].ID != a.ID {
		t.Fatalf("got %d members, want just Adamec", len(members))
	}

	rest, err := reg.NonMembers(ctx, g.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(rest) != 1 || rest[0].ID != b.ID {
		t.Fatalf("got %d non-members, want just Benes", len(rest))
	}

	if err := reg.RemoveMember(ctx, g.ID, a.ID); err != nil {
		t.Fatal(err)
	}
	members, _ = reg.Members(ctx, g.ID)
	if len(members) != 0 {
		t.Fatal("group should be empty after removal")
	}
}

func TestGroupBulkSignUp(t *testing.T) {
	s := newMemStore()
	reg := trainingGroupRegistry(s)
	att := NewAttendance(s.TrainingAttendance(), s)
	ctx := context.Background()

	a := seedMember(s, "Adamec")
	b := seedMember(s, "Benes")
	c := seedMember(s, "Cerny")
	tr := seedTraining(s, at(2024, time.March, 1, 18, 0))

	g, _ := reg.Create(ctx, "youth", "")
	_ = reg.AddMember(ctx, g.ID, a.ID)
	_ = reg.AddMember(ctx, g.ID, b.ID)

	// one of them is already signed up individually
	_ = att.SignUp(ctx, a.ID, tr.ID, nil)

	if err := reg.SignUpForEvent(ctx, g.ID, tr.ID, nil); err != nil {
		t.Fatal(err)
	}
	n, _ := s.CountAttendants(ctx, tr.ID)
	if n != 2 {
		t.Fatalf("got %d attendants, want 2", n)
	}
	if ok, _ := att.IsAttending(ctx, c.ID, tr.ID); ok {
		t.Fatal("non-member must not be signed up")
	}

	if err := reg.UnsignFromEvent(ctx, g.ID, tr.ID, nil); err != nil {
		t.Fatal(err)
	}
	n, _ = s.CountAttendants(ctx, tr.ID)
	if n != 0 {
		t.Fatalf("got %d attendants after bulk unsign, want 0", n)
	}
}

func TestGroupBulkSignUpSeries(t *testing.T) {
	s := newMemStore()
	reg := trainingGroupRegistry(s)
	att := NewAttendance(s.TrainingAttendance(), s)
	sched := NewSchedule(s, s)
	ctx := context.Background()

	a := seedMember(s, "Adamec")
	b := seedMember(s, "Benes")
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

	g, _ := reg.Create(ctx, "youth", "")
	_ = reg.AddMember(ctx, g.ID, a.ID)
	_ = reg.AddMember(ctx, g.ID, b.ID)

	if err := reg.SignUpForEvent(ctx, g.ID, series[0].ID, series[0].SeriesID); err != nil {
		t.Fatal(err)
	}
	for _, tr := range series {
		for _, m := range []Member{a, b} {
			if ok, _ := att.IsAttending(ctx, m.ID, tr.ID); !ok {
				t.Errorf("member %d not signed up for instance %d", m.ID, tr.ID)
			}
		}
	}
	if len(s.attendance) != 2*len(series) {
		t.Fatalf("got %d attendance rows, want %d", len(s.attendance), 2*len(series))
	}

	if err := reg.UnsignFromEvent(ctx, g.ID, series[0].ID, series[0].SeriesID); err != nil {
		t.Fatal(err)
	}
	if len(s.attendance) != 0 {
		t.Fatalf("got %d attendance rows after series unsign, want 0", len(s.attendance))
	}
}

func TestGroupBulkSignUpUnknownGroup(t *testing.T) {
	s := newMemStore()
	reg := trainingGroupRegistry(s)

	err := reg.SignUpForEvent(context.Background(), 99, 1, nil)
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("got %v, want ErrNotFound", err)
	}
}

func TestGroupDeleteCascades(t *testing.T) {
	s := newMemStore()
	reg := trainingGroupRegistry(s)
	ctx := context.Background()

	a := seedMember(s, "Adamec")
	g, _ := reg.Create(ctx, "youth", "")
	_ = reg.AddMember(ctx, g.ID, a.ID)

	if err := reg.Delete(ctx, g.ID); err != nil {
		t.Fatal(err)
	}
	if len(s.trainingGroups.pairs) != 0 {
		t.Fatal("membership rows should be purged")
	}
	if _, err := reg.Get(ctx, g.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("got %v, want ErrNotFound", err)
	}
	if err := reg.Delete(ctx, g.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("second delete: got %v, want ErrNotFound", err)
	}
}

func TestCompetitionGroupProfiles(t *testing.T) {
	s := newMemStore()
	att := NewAttendance(s.CompetitionParticipation(), nil)
	reg := NewGroupRegistry(s.competitionGroups, att)
	ctx := context.Background()

	m := seedMember(s, "Adamec", RoleMember, RoleCompetitor)
	_ = s.InsertCompetitor(ctx, m.ID)
	comp, _ := s.CompetitorByMember(ctx, m.ID)

	g, _ := reg.Create(ctx, "nationals", "")
	_ = reg.AddMember(ctx, g.ID, comp.ID)

	members, err := reg.Members(ctx, g.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(members) != 1 || members[0].Surname != "Adamec" {
		t.Fatalf("competition group should list competitor profiles, got %v", members)
	}

	event := seedCompetition(s, at(2024, time.June, 8, 9, 0))
	if err := reg.SignUpForEvent(ctx, g.ID, event.ID, nil); err != nil {
		t.Fatal(err)
	}
	if ok, _ := att.IsAttending(ctx, comp.ID, event.ID); !ok {
		t.Fatal("competitor should participate after bulk sign-up")
	}
}
