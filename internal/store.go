package internal

import (
	"context"
	"time"
)

// SignupRelation is one of the two person<->event join relations
// (trainings_attendance, competitions_participation). Add is idempotent,
// Remove on an absent pair is a no-op.
type SignupRelation interface {
	Add(ctx context.Context, personID, eventID int) error
	Remove(ctx context.Context, personID, eventID int) error
	Exists(ctx context.Context, personID, eventID int) (bool, error)
}

// SeriesResolver expands a training series id into its instances.
type SeriesResolver interface {
	SeriesTrainings(ctx context.Context, seriesID int) ([]Training, error)
}

type TrainingStore interface {
	InsertTraining(ctx context.Context, t Training) (int, error)
	Training(ctx context.Context, id int) (Training, error)
	Trainings(ctx context.Context) ([]Training, error)
	DeleteTrainingRow(ctx context.Context, id int) error
	// MaxSeriesID returns nil when no series exists yet.
	MaxSeriesID(ctx context.Context) (*int, error)
	SeriesTrainings(ctx context.Context, seriesID int) ([]Training, error)
	TrainingsBetween(ctx context.Context, from, to time.Time) ([]Training, error)
	MemberTrainingsBetween(ctx context.Context, memberID int, from, to time.Time) ([]Training, error)
	CountAttendants(ctx context.Context, trainingID int) (int, error)
	PurgeTrainingAttendance(ctx context.Context, trainingID int) error
}

type CompetitionStore interface {
	InsertCompetition(ctx context.Context, c Competition) (int, error)
	Competition(ctx context.Context, id int) (Competition, error)
	UpdateCompetition(ctx context.Context, c Competition) error
	DeleteCompetitionRow(ctx context.Context, id int) error
	CompetitionsBetween(ctx context.Context, from, to time.Time) ([]Competition, error)
	CompetitorCompetitionsBetween(ctx context.Context, competitorID int, from, to time.Time) ([]Competition, error)
	PurgeParticipation(ctx context.Context, competitionID int) error
}

// GroupStore persists one kind of group and its membership relation.
// P is the population row type: Member for training groups,
// CompetitorProfile for competition groups. AddGroupMember is a plain
// insert; a duplicate pair surfaces as ErrDuplicate.
type GroupStore[P any] interface {
	CreateGroup(ctx context.Context, g Group) (int, error)
	Group(ctx context.Context, id int) (Group, error)
	Groups(ctx context.Context) ([]Group, error)
	UpdateGroup(ctx context.Context, g Group) error
	DeleteGroupRow(ctx context.Context, id int) error
	AddGroupMember(ctx context.Context, personID, groupID int) error
	RemoveGroupMember(ctx context.Context, personID, groupID int) error
	GroupMemberIDs(ctx context.Context, groupID int) ([]int, error)
	GroupMembers(ctx context.Context, groupID int) ([]P, error)
	GroupNonMembers(ctx context.Context, groupID int) ([]P, error)
	PurgeGroupMembers(ctx context.Context, groupID int) error
}

type MemberStore interface {
	CreateAccount(ctx context.Context, username, passHash string) (int, error)
	DeleteAccount(ctx context.Context, id int) error

	InsertMember(ctx context.Context, m Member) (int, error)
	Member(ctx context.Context, id int) (Member, error)
	Members(ctx context.Context) ([]Member, error)
	// UpdateMember leaves the stored member_since untouched when the
	// incoming value is zero.
	UpdateMember(ctx context.Context, m Member) error
	DeleteMemberRow(ctx context.Context, id int) error

	InsertCompetitor(ctx context.Context, memberID int) error
	CompetitorByMember(ctx context.Context, memberID int) (Competitor, error)
	DeleteCompetitorRow(ctx context.Context, id int) error
	InsertTrainer(ctx context.Context, memberID int) error
	DeleteTrainerByMember(ctx context.Context, memberID int) error
	InsertCoach(ctx context.Context, memberID int) error
	DeleteCoachByMember(ctx context.Context, memberID int) error

	PurgeMemberGroupMemberships(ctx context.Context, memberID int) error
	PurgeMemberAttendance(ctx context.Context, memberID int) error
	PurgeCompetitorGroupMemberships(ctx context.Context, competitorID int) error
	PurgeCompetitorParticipation(ctx context.Context, competitorID int) error
}
