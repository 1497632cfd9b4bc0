package internal

import (
	"context"
	"sort"
	"time"
)

// memStore backs the service tests with maps instead of postgres. It
// implements the same store interfaces PGStore does, with matching
// semantics: sentinel errors, idempotent sign-up, ErrDuplicate on a
// repeated group add.
type memStore struct {
	seq int

	accounts     map[int]Account
	members      map[int]Member
	competitors  map[int]Competitor
	trainers     map[int]Trainer
	coaches      map[int]Coach
	trainings    map[int]Training
	competitions map[int]Competition

	attendance    map[[2]int]bool // {member, training}
	participation map[[2]int]bool // {competitor, competition}

	trainingGroups    *memGroups[Member]
	competitionGroups *memGroups[CompetitorProfile]
}

func newMemStore() *memStore {
	s := &memStore{
		accounts:      map[int]Account{},
		members:       map[int]Member{},
		competitors:   map[int]Competitor{},
		trainers:      map[int]Trainer{},
		coaches:       map[int]Coach{},
		trainings:     map[int]Training{},
		competitions:  map[int]Competition{},
		attendance:    map[[2]int]bool{},
		participation: map[[2]int]bool{},
	}
	s.trainingGroups = &memGroups[Member]{
		store:  s,
		groups: map[int]Group{},
		pairs:  map[[2]int]bool{},
		people: func() map[int]Member { return s.members },
	}
	s.competitionGroups = &memGroups[CompetitorProfile]{
		store:  s,
		groups: map[int]Group{},
		pairs:  map[[2]int]bool{},
		people: s.competitorProfiles,
	}
	return s
}

func (s *memStore) id() int {
	s.seq++
	return s.seq
}

func (s *memStore) competitorProfiles() map[int]CompetitorProfile {
	out := map[int]CompetitorProfile{}
	for _, comp := range s.competitors {
		m := s.members[comp.MemberID]
		out[comp.ID] = CompetitorProfile{
			ID:               comp.ID,
			Firstname:        m.Firstname,
			Surname:          m.Surname,
			Gender:           m.Gender,
			Birthdate:        m.Birthdate,
			TechnicalGrade:   m.TechnicalGrade,
			PerformanceGrade: comp.PerformanceGrade,
			Weight:           comp.Weight,
		}
	}
	return out
}

/* ---------- MemberStore ---------- */

func (s *memStore) CreateAccount(ctx context.Context, username, passHash string) (int, error) {
	for _, a := range s.accounts {
		if a.Username == username {
			return 0, ErrDuplicateAccount
		}
	}
	id := s.id()
	s.accounts[id] = Account{ID: id, Username: username, PassHash: passHash}
	return id, nil
}

func (s *memStore) DeleteAccount(ctx context.Context, id int) error {
	delete(s.accounts, id)
	return nil
}

func (s *memStore) InsertMember(ctx context.Context, m Member) (int, error) {
	m.ID = s.id()
	m.Roles = append([]string(nil), m.Roles...)
	s.members[m.ID] = m
	return m.ID, nil
}

func (s *memStore) Member(ctx context.Context, id int) (Member, error) {
	m, ok := s.members[id]
	if !ok {
		return Member{}, ErrNotFound
	}
	return m, nil
}

func (s *memStore) Members(ctx context.Context) ([]Member, error) {
	var out []Member
	for _, m := range s.members {
		out = append(out, m)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].TechnicalGrade != out[j].TechnicalGrade {
			return out[i].TechnicalGrade < out[j].TechnicalGrade
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (s *memStore) UpdateMember(ctx context.Context, m Member) error {
	old, ok := s.members[m.ID]
	if !ok {
		return ErrNotFound
	}
	m.AccountID = old.AccountID
	if m.MemberSince.IsZero() {
		m.MemberSince = old.MemberSince
	}
	m.Roles = append([]string(nil), m.Roles...)
	s.members[m.ID] = m
	return nil
}

func (s *memStore) DeleteMemberRow(ctx context.Context, id int) error {
	if _, ok := s.members[id]; !ok {
		return ErrNotFound
	}
	delete(s.members, id)
	return nil
}

func (s *memStore) InsertCompetitor(ctx context.Context, memberID int) error {
	id := s.id()
	s.competitors[id] = Competitor{ID: id, MemberID: memberID}
	return nil
}

func (s *memStore) CompetitorByMember(ctx context.Context, memberID int) (Competitor, error) {
	for _, c := range s.competitors {
		if c.MemberID == memberID {
			return c, nil
		}
	}
	return Competitor{}, ErrNotFound
}

func (s *memStore) DeleteCompetitorRow(ctx context.Context, id int) error {
	delete(s.competitors, id)
	return nil
}

func (s *memStore) InsertTrainer(ctx context.Context, memberID int) error {
	id := s.id()
	s.trainers[id] = Trainer{ID: id, MemberID: memberID}
	return nil
}

func (s *memStore) DeleteTrainerByMember(ctx context.Context, memberID int) error {
	for id, t := range s.trainers {
		if t.MemberID == memberID {
			delete(s.trainers, id)
		}
	}
	return nil
}

func (s *memStore) InsertCoach(ctx context.Context, memberID int) error {
	id := s.id()
	s.coaches[id] = Coach{ID: id, MemberID: memberID}
	return nil
}

func (s *memStore) DeleteCoachByMember(ctx context.Context, memberID int) error {
	for id, co := range s.coaches {
		if co.MemberID == memberID {
			delete(s.coaches, id)
		}
	}
	return nil
}

func (s *memStore) PurgeMemberGroupMemberships(ctx context.Context, memberID int) error {
	for k := range s.trainingGroups.pairs {
		if k[0] == memberID {
			delete(s.trainingGroups.pairs, k)
		}
	}
	return nil
}

func (s *memStore) PurgeMemberAttendance(ctx context.Context, memberID int) error {
	for k := range s.attendance {
		if k[0] == memberID {
			delete(s.attendance, k)
		}
	}
	return nil
}

func (s *memStore) PurgeCompetitorGroupMemberships(ctx context.Context, competitorID int) error {
	for k := range s.competitionGroups.pairs {
		if k[0] == competitorID {
			delete(s.competitionGroups.pairs, k)
		}
	}
	return nil
}

func (s *memStore) PurgeCompetitorParticipation(ctx context.Context, competitorID int) error {
	for k := range s.participation {
		if k[0] == competitorID {
			delete(s.participation, k)
		}
	}
	return nil
}

/* ---------- TrainingStore ---------- */

func (s *memStore) InsertTraining(ctx context.Context, t Training) (int, error) {
	t.ID = s.id()
	s.trainings[t.ID] = t
	return t.ID, nil
}

func (s *memStore) Training(ctx context.Context, id int) (Training, error) {
	t, ok := s.trainings[id]
	if !ok {
		return Training{}, ErrNotFound
	}
	return t, nil
}

func (s *memStore) Trainings(ctx context.Context) ([]Training, error) {
	return s.trainingList(func(Training) bool { return true }), nil
}

func (s *memStore) DeleteTrainingRow(ctx context.Context, id int) error {
	if _, ok := s.trainings[id]; !ok {
		return ErrNotFound
	}
	delete(s.trainings, id)
	return nil
}

func (s *memStore) MaxSeriesID(ctx context.Context) (*int, error) {
	var max *int
	for _, t := range s.trainings {
		if t.SeriesID == nil {
			continue
		}
		if max == nil || *t.SeriesID > *max {
			v := *t.SeriesID
			max = &v
		}
	}
	return max, nil
}

func (s *memStore) SeriesTrainings(ctx context.Context, seriesID int) ([]Training, error) {
	return s.trainingList(func(t Training) bool {
		return t.SeriesID != nil && *t.SeriesID == seriesID
	}), nil
}

func (s *memStore) TrainingsBetween(ctx context.Context, from, to time.Time) ([]Training, error) {
	return s.trainingList(func(t Training) bool {
		return !t.StartTime.Before(from) && !t.StartTime.After(to)
	}), nil
}

func (s *memStore) MemberTrainingsBetween(ctx context.Context, memberID int, from, to time.Time) ([]Training, error) {
	return s.trainingList(func(t Training) bool {
		return s.attendance[[2]int{memberID, t.ID}] &&
			!t.StartTime.Before(from) && !t.StartTime.After(to)
	}), nil
}

func (s *memStore) trainingList(keep func(Training) bool) []Training {
	var out []Training
	for _, t := range s.trainings {
		if keep(t) {
			out = append(out, t)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].StartTime.Equal(out[j].StartTime) {
			return out[i].StartTime.Before(out[j].StartTime)
		}
		return out[i].ID < out[j].ID
	})
	return out
}

func (s *memStore) CountAttendants(ctx context.Context, trainingID int) (int, error) {
	n := 0
	for k := range s.attendance {
		if k[1] == trainingID {
			n++
		}
	}
	return n, nil
}

func (s *memStore) PurgeTrainingAttendance(ctx context.Context, trainingID int) error {
	for k := range s.attendance {
		if k[1] == trainingID {
			delete(s.attendance, k)
		}
	}
	return nil
}

/* ---------- CompetitionStore ---------- */

func (s *memStore) InsertCompetition(ctx context.Context, c Competition) (int, error) {
	c.ID = s.id()
	s.competitions[c.ID] = c
	return c.ID, nil
}

func (s *memStore) Competition(ctx context.Context, id int) (Competition, error) {
	c, ok := s.competitions[id]
	if !ok {
		return Competition{}, ErrNotFound
	}
	return c, nil
}

func (s *memStore) UpdateCompetition(ctx context.Context, c Competition) error {
	if _, ok := s.competitions[c.ID]; !ok {
		return ErrNotFound
	}
	s.competitions[c.ID] = c
	return nil
}

func (s *memStore) DeleteCompetitionRow(ctx context.Context, id int) error {
	if _, ok := s.competitions[id]; !ok {
		return ErrNotFound
	}
	delete(s.competitions, id)
	return nil
}

func (s *memStore) CompetitionsBetween(ctx context.Context, from, to time.Time) ([]Competition, error) {
	return s.competitionList(func(c Competition) bool {
		return !c.StartTime.Before(from) && !c.StartTime.After(to)
	}), nil
}

func (s *memStore) CompetitorCompetitionsBetween(ctx context.Context, competitorID int, from, to time.Time) ([]Competition, error) {
	return s.competitionList(func(c Competition) bool {
		return s.participation[[2]int{competitorID, c.ID}] &&
			!c.StartTime.Before(from) && !c.StartTime.After(to)
	}), nil
}

func (s *memStore) competitionList(keep func(Competition) bool) []Competition {
	var out []Competition
	for _, c := range s.competitions {
		if keep(c) {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].StartTime.Equal(out[j].StartTime) {
			return out[i].StartTime.Before(out[j].StartTime)
		}
		return out[i].ID < out[j].ID
	})
	return out
}

func (s *memStore) PurgeParticipation(ctx context.Context, competitionID int) error {
	for k := range s.participation {
		if k[1] == competitionID {
			delete(s.participation, k)
		}
	}
	return nil
}

/* ---------- SignupRelation ---------- */

type memRelation struct {
	pairs map[[2]int]bool
}

func (s *memStore) TrainingAttendance() SignupRelation {
	return memRelation{s.attendance}
}

func (s *memStore) CompetitionParticipation() SignupRelation {
	return memRelation{s.participation}
}

func (r memRelation) Add(ctx context.Context, personID, eventID int) error {
	r.pairs[[2]int{personID, eventID}] = true
	return nil
}

func (r memRelation) Remove(ctx context.Context, personID, eventID int) error {
	delete(r.pairs, [2]int{personID, eventID})
	return nil
}

func (r memRelation) Exists(ctx context.Context, personID, eventID int) (bool, error) {
	return r.pairs[[2]int{personID, eventID}], nil
}

/* ---------- GroupStore ---------- */

type memGroups[P any] struct {
	store  *memStore
	groups map[int]Group
	pairs  map[[2]int]bool // {person, group}
	people func() map[int]P
}

func (g *memGroups[P]) CreateGroup(ctx context.Context, grp Group) (int, error) {
	grp.ID = g.store.id()
	g.groups[grp.ID] = grp
	return grp.ID, nil
}

func (g *memGroups[P]) Group(ctx context.Context, id int) (Group, error) {
	grp, ok := g.groups[id]
	if !ok {
		return Group{}, ErrNotFound
	}
	return grp, nil
}

func (g *memGroups[P]) Groups(ctx context.Context) ([]Group, error) {
	var out []Group
	for _, grp := range g.groups {
		out = append(out, grp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (g *memGroups[P]) UpdateGroup(ctx context.Context, grp Group) error {
	if _, ok := g.groups[grp.ID]; !ok {
		return ErrNotFound
	}
	g.groups[grp.ID] = grp
	return nil
}

func (g *memGroups[P]) DeleteGroupRow(ctx context.Context, id int) error {
	if _, ok := g.groups[id]; !ok {
		return ErrNotFound
	}
	delete(g.groups, id)
	return nil
}

func (g *memGroups[P]) AddGroupMember(ctx context.Context, personID, groupID int) error {
	k := [2]int{personID, groupID}
	if g.pairs[k] {
		return ErrDuplicate
	}
	g.pairs[k] = true
	return nil
}

func (g *memGroups[P]) RemoveGroupMember(ctx context.Context, personID, groupID int) error {
	delete(g.pairs, [2]int{personID, groupID})
	return nil
}

func (g *memGroups[P]) GroupMemberIDs(ctx context.Context, groupID int) ([]int, error) {
	var out []int
	for k := range g.pairs {
		if k[1] == groupID {
			out = append(out, k[0])
		}
	}
	sort.Ints(out)
	return out, nil
}

func (g *memGroups[P]) GroupMembers(ctx context.Context, groupID int) ([]P, error) {
	ids, _ := g.GroupMemberIDs(ctx, groupID)
	people := g.people()
	var out []P
	for _, id := range ids {
		if p, ok := people[id]; ok {
			out = append(out, p)
		}
	}
	return out, nil
}

func (g *memGroups[P]) GroupNonMembers(ctx context.Context, groupID int) ([]P, error) {
	people := g.people()
	var ids []int
	for id := range people {
		if !g.pairs[[2]int{id, groupID}] {
			ids = append(ids, id)
		}
	}
	sort.Ints(ids)
	var out []P
	for _, id := range ids {
		out = append(out, people[id])
	}
	return out, nil
}

func (g *memGroups[P]) PurgeGroupMembers(ctx context.Context, groupID int) error {
	for k := range g.pairs {
		if k[1] == groupID {
			delete(g.pairs, k)
		}
	}
	return nil
}

/* ---------- test fixtures ---------- */

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.Local)
}

func at(y int, m time.Month, d, hh, mm int) time.Time {
	return time.Date(y, m, d, hh, mm, 0, 0, time.Local)
}

func seedMember(s *memStore, surname string, roles ...string) Member {
	m := Member{
		Firstname:      "Test",
		Surname:        surname,
		Gender:         "M",
		Birthdate:      date(2000, time.January, 1),
		MemberSince:    date(2020, time.January, 1),
		TechnicalGrade: 3,
		Roles:          roles,
	}
	if len(roles) == 0 {
		m.Roles = []string{RoleMember}
	}
	id, _ := s.InsertMember(context.Background(), m)
	m.ID = id
	return m
}

func seedTraining(s *memStore, start time.Time) Training {
	t := Training{
		Title:     "keiko",
		StartTime: start,
		EndTime:   start.Add(90 * time.Minute),
	}
	id, _ := s.InsertTraining(context.Background(), t)
	t.ID = id
	return t
}

func seedCompetition(s *memStore, start time.Time) Competition {
	c := Competition{
		Title:     "cup",
		StartTime: start,
		EndTime:   start.Add(8 * time.Hour),
	}
	id, _ := s.InsertCompetition(context.Background(), c)
	c.ID = id
	return c
}
