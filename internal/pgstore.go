package internal

import (
	"context"
	"errors"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PGStore is the Postgres persistence layer. Cascades are NOT delegated to
// foreign keys; the services drive them explicitly, row by row.
type PGStore struct {
	db *pgxpool.Pool
}

func NewPGStore(db *pgxpool.Pool) *PGStore {
	return &PGStore{db: db}
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

func notFoundOr(err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	return err
}

/* ===================== ACCOUNTS ===================== */

func (s *PGStore) CreateAccount(ctx context.Context, username, passHash string) (int, error) {
	var id int
	err := qRow(ctx, s.db, psql.Insert("users").
		Columns("username", "password").
		Values(username, passHash).
		Suffix("RETURNING id")).Scan(&id)
	if isUniqueViolation(err) {
		return 0, ErrDuplicateAccount
	}
	return id, err
}

func (s *PGStore) AccountByUsername(ctx context.Context, username string) (Account, error) {
	var a Account
	err := qRow(ctx, s.db, psql.Select("id", "username", "password").
		From("users").Where(sq.Eq{"username": username})).
		Scan(&a.ID, &a.Username, &a.PassHash)
	return a, notFoundOr(err)
}

func (s *PGStore) Account(ctx context.Context, id int) (Account, error) {
	var a Account
	err := qRow(ctx, s.db, psql.Select("id", "username", "password").
		From("users").Where(sq.Eq{"id": id})).
		Scan(&a.ID, &a.Username, &a.PassHash)
	return a, notFoundOr(err)
}

func (s *PGStore) SetPassword(ctx context.Context, id int, passHash string) error {
	_, err := qExec(ctx, s.db, psql.Update("users").
		Set("password", passHash).Where(sq.Eq{"id": id}))
	return err
}

func (s *PGStore) DeleteAccount(ctx context.Context, id int) error {
	_, err := qExec(ctx, s.db, psql.Delete("users").Where(sq.Eq{"id": id}))
	return err
}

/* ===================== MEMBERS ===================== */

var memberCols = []string{
	"id", "firstname", "midname", "surname", "gender", "birthdate", "nid",
	"mail", "phone", "city", "address", "zipcode", "technical_grade",
	"member_since", "users_id",
}

func scanMember(row pgx.Row) (Member, error) {
	var m Member
	err := row.Scan(&m.ID, &m.Firstname, &m.Midname, &m.Surname, &m.Gender,
		&m.Birthdate, &m.NID, &m.Mail, &m.Phone, &m.City, &m.Address,
		&m.Zipcode, &m.TechnicalGrade, &m.MemberSince, &m.AccountID)
	return m, err
}

func (s *PGStore) memberRoles(ctx context.Context, memberIDs []int) (map[int][]string, error) {
	roles := map[int][]string{}
	if len(memberIDs) == 0 {
		return roles, nil
	}
	rows, err := qQuery(ctx, s.db, psql.Select("members_id", "role").
		From("member_roles").Where(sq.Eq{"members_id": memberIDs}))
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var id int
		var role string
		if err := rows.Scan(&id, &role); err != nil {
			return nil, err
		}
		roles[id] = append(roles[id], role)
	}
	return roles, rows.Err()
}

func (s *PGStore) queryMembers(ctx context.Context, q sq.SelectBuilder) ([]Member, error) {
	rows, err := qQuery(ctx, s.db, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Member
	var ids []int
	for rows.Next() {
		m, err := scanMember(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
		ids = append(ids, m.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	roles, err := s.memberRoles(ctx, ids)
	if err != nil {
		return nil, err
	}
	for i := range out {
		out[i].Roles = roles[out[i].ID]
	}
	return out, nil
}

func (s *PGStore) InsertMember(ctx context.Context, m Member) (int, error) {
	var id int
	err := qRow(ctx, s.db, psql.Insert("members").
		Columns("firstname", "midname", "surname", "gender", "birthdate",
			"nid", "mail", "phone", "city", "address", "zipcode",
			"technical_grade", "member_since", "users_id").
		Values(m.Firstname, m.Midname, m.Surname, m.Gender, m.Birthdate,
			m.NID, m.Mail, m.Phone, m.City, m.Address, m.Zipcode,
			m.TechnicalGrade, m.MemberSince, m.AccountID).
		Suffix("RETURNING id")).Scan(&id)
	if err != nil {
		return 0, err
	}
	return id, s.setRoles(ctx, id, m.Roles)
}

func (s *PGStore) Member(ctx context.Context, id int) (Member, error) {
	m, err := scanMember(qRow(ctx, s.db, psql.Select(memberCols...).
		From("members").Where(sq.Eq{"id": id})))
	if err != nil {
		return Member{}, notFoundOr(err)
	}
	roles, err := s.memberRoles(ctx, []int{id})
	if err != nil {
		return Member{}, err
	}
	m.Roles = roles[id]
	return m, nil
}

func (s *PGStore) MemberByAccount(ctx context.Context, accountID int) (Member, error) {
	m, err := scanMember(qRow(ctx, s.db, psql.Select(memberCols...).
		From("members").Where(sq.Eq{"users_id": accountID})))
	if err != nil {
		return Member{}, notFoundOr(err)
	}
	roles, err := s.memberRoles(ctx, []int{m.ID})
	if err != nil {
		return Member{}, err
	}
	m.Roles = roles[m.ID]
	return m, nil
}

func (s *PGStore) Members(ctx context.Context) ([]Member, error) {
	return s.queryMembers(ctx, psql.Select(memberCols...).
		From("members").OrderBy("technical_grade ASC"))
}

func (s *PGStore) setRoles(ctx context.Context, memberID int, roles []string) error {
	if _, err := qExec(ctx, s.db, psql.Delete("member_roles").
		Where(sq.Eq{"members_id": memberID})); err != nil {
		return err
	}
	for _, role := range roles {
		if _, err := qExec(ctx, s.db, psql.Insert("member_roles").
			Columns("members_id", "role").Values(memberID, role).
			Suffix("ON CONFLICT DO NOTHING")); err != nil {
			return err
		}
	}
	return nil
}

func (s *PGStore) UpdateMember(ctx context.Context, m Member) error {
	q := psql.Update("members").
		Set("firstname", m.Firstname).
		Set("midname", m.Midname).
		Set("surname", m.Surname).
		Set("gender", m.Gender).
		Set("birthdate", m.Birthdate).
		Set("nid", m.NID).
		Set("mail", m.Mail).
		Set("phone", m.Phone).
		Set("city", m.City).
		Set("address", m.Address).
		Set("zipcode", m.Zipcode).
		Set("technical_grade", m.TechnicalGrade)
	if !m.MemberSince.IsZero() {
		q = q.Set("member_since", m.MemberSince)
	}
	tag, err := qExec(ctx, s.db, q.Where(sq.Eq{"id": m.ID}))
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return s.setRoles(ctx, m.ID, m.Roles)
}

func (s *PGStore) DeleteMemberRow(ctx context.Context, id int) error {
	if _, err := qExec(ctx, s.db, psql.Delete("member_roles").
		Where(sq.Eq{"members_id": id})); err != nil {
		return err
	}
	_, err := qExec(ctx, s.db, psql.Delete("members").Where(sq.Eq{"id": id}))
	return err
}

/* ===================== ROLE EXTENSIONS ===================== */

func (s *PGStore) InsertCompetitor(ctx context.Context, memberID int) error {
	_, err := qExec(ctx, s.db, psql.Insert("competitors").
		Columns("members_id").Values(memberID))
	return err
}

func (s *PGStore) CompetitorByMember(ctx context.Context, memberID int) (Competitor, error) {
	var c Competitor
	err := qRow(ctx, s.db, psql.Select("id", "members_id", "weight", "height",
		"performance_grade", "specialization", "cuma_stamp", "cka_stamp").
		From("competitors").Where(sq.Eq{"members_id": memberID})).
		Scan(&c.ID, &c.MemberID, &c.Weight, &c.Height, &c.PerformanceGrade,
			&c.Specialization, &c.CumaStamp, &c.CkaStamp)
	return c, notFoundOr(err)
}

func (s *PGStore) UpdateCompetitor(ctx context.Context, c Competitor) error {
	_, err := qExec(ctx, s.db, psql.Update("competitors").
		Set("weight", c.Weight).
		Set("height", c.Height).
		Set("performance_grade", c.PerformanceGrade).
		Set("specialization", c.Specialization).
		Set("cuma_stamp", c.CumaStamp).
		Set("cka_stamp", c.CkaStamp).
		Where(sq.Eq{"members_id": c.MemberID}))
	return err
}

func (s *PGStore) DeleteCompetitorRow(ctx context.Context, id int) error {
	_, err := qExec(ctx, s.db, psql.Delete("competitors").Where(sq.Eq{"id": id}))
	return err
}

func (s *PGStore) InsertTrainer(ctx context.Context, memberID int) error {
	_, err := qExec(ctx, s.db, psql.Insert("trainers").
		Columns("members_id").Values(memberID))
	return err
}

func (s *PGStore) TrainerByMember(ctx context.Context, memberID int) (Trainer, error) {
	var t Trainer
	err := qRow(ctx, s.db, psql.Select("id", "members_id", "trainer_grade",
		"licence_start", "licence_end").
		From("trainers").Where(sq.Eq{"members_id": memberID})).
		Scan(&t.ID, &t.MemberID, &t.TrainerGrade, &t.LicenceStart, &t.LicenceEnd)
	return t, notFoundOr(err)
}

func (s *PGStore) UpdateTrainer(ctx context.Context, t Trainer) error {
	_, err := qExec(ctx, s.db, psql.Update("trainers").
		Set("trainer_grade", t.TrainerGrade).
		Set("licence_start", t.LicenceStart).
		Set("licence_end", t.LicenceEnd).
		Where(sq.Eq{"members_id": t.MemberID}))
	return err
}

func (s *PGStore) DeleteTrainerByMember(ctx context.Context, memberID int) error {
	_, err := qExec(ctx, s.db, psql.Delete("trainers").
		Where(sq.Eq{"members_id": memberID}))
	return err
}

func (s *PGStore) InsertCoach(ctx context.Context, memberID int) error {
	_, err := qExec(ctx, s.db, psql.Insert("coaches").
		Columns("members_id").Values(memberID))
	return err
}

func (s *PGStore) CoachByMember(ctx context.Context, memberID int) (Coach, error) {
	var c Coach
	err := qRow(ctx, s.db, psql.Select("id", "members_id", "coach_grade",
		"specialization").
		From("coaches").Where(sq.Eq{"members_id": memberID})).
		Scan(&c.ID, &c.MemberID, &c.CoachGrade, &c.Specialization)
	return c, notFoundOr(err)
}

func (s *PGStore) UpdateCoach(ctx context.Context, c Coach) error {
	_, err := qExec(ctx, s.db, psql.Update("coaches").
		Set("coach_grade", c.CoachGrade).
		Set("specialization", c.Specialization).
		Where(sq.Eq{"members_id": c.MemberID}))
	return err
}

func (s *PGStore) DeleteCoachByMember(ctx context.Context, memberID int) error {
	_, err := qExec(ctx, s.db, psql.Delete("coaches").
		Where(sq.Eq{"members_id": memberID}))
	return err
}

/* ===================== MEMBER CASCADE HELPERS ===================== */

func (s *PGStore) PurgeMemberGroupMemberships(ctx context.Context, memberID int) error {
	_, err := qExec(ctx, s.db, psql.Delete("training_group_members").
		Where(sq.Eq{"members_id": memberID}))
	return err
}

func (s *PGStore) PurgeMemberAttendance(ctx context.Context, memberID int) error {
	_, err := qExec(ctx, s.db, psql.Delete("trainings_attendance").
		Where(sq.Eq{"members_id": memberID}))
	return err
}

func (s *PGStore) PurgeCompetitorGroupMemberships(ctx context.Context, competitorID int) error {
	_, err := qExec(ctx, s.db, psql.Delete("competition_group_members").
		Where(sq.Eq{"competitors_id": competitorID}))
	return err
}

func (s *PGStore) PurgeCompetitorParticipation(ctx context.Context, competitorID int) error {
	_, err := qExec(ctx, s.db, psql.Delete("competitions_participation").
		Where(sq.Eq{"competitors_id": competitorID}))
	return err
}

/* ===================== TRAININGS ===================== */

var trainingCols = []string{
	"id", "title", "description", "place", "start_time", "end_time",
	"max_attendance", "min_technical_grade", "series_id",
}

func scanTraining(row pgx.Row) (Training, error) {
	var t Training
	err := row.Scan(&t.ID, &t.Title, &t.Description, &t.Place, &t.StartTime,
		&t.EndTime, &t.MaxAttendance, &t.MinTechnicalGrade, &t.SeriesID)
	return t, err
}

func (s *PGStore) queryTrainings(ctx context.Context, q sq.SelectBuilder) ([]Training, error) {
	rows, err := qQuery(ctx, s.db, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Training
	for rows.Next() {
		t, err := scanTraining(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func (s *PGStore) InsertTraining(ctx context.Context, t Training) (int, error) {
	var id int
	err := qRow(ctx, s.db, psql.Insert("trainings").
		Columns("title", "description", "place", "start_time", "end_time",
			"max_attendance", "min_technical_grade", "series_id").
		Values(t.Title, t.Description, t.Place, t.StartTime, t.EndTime,
			t.MaxAttendance, t.MinTechnicalGrade, t.SeriesID).
		Suffix("RETURNING id")).Scan(&id)
	return id, err
}

func (s *PGStore) Training(ctx context.Context, id int) (Training, error) {
	t, err := scanTraining(qRow(ctx, s.db, psql.Select(trainingCols...).
		From("trainings").Where(sq.Eq{"id": id})))
	return t, notFoundOr(err)
}

func (s *PGStore) Trainings(ctx context.Context) ([]Training, error) {
	return s.queryTrainings(ctx, psql.Select(trainingCols...).
		From("trainings").OrderBy("start_time ASC"))
}

func (s *PGStore) DeleteTrainingRow(ctx context.Context, id int) error {
	_, err := qExec(ctx, s.db, psql.Delete("trainings").Where(sq.Eq{"id": id}))
	return err
}

func (s *PGStore) MaxSeriesID(ctx context.Context) (*int, error) {
	var max *int
	err := qRow(ctx, s.db, psql.Select("MAX(series_id)").From("trainings")).Scan(&max)
	return max, err
}

func (s *PGStore) SeriesTrainings(ctx context.Context, seriesID int) ([]Training, error) {
	return s.queryTrainings(ctx, psql.Select(trainingCols...).
		From("trainings").Where(sq.Eq{"series_id": seriesID}).
		OrderBy("start_time ASC"))
}

func (s *PGStore) TrainingsBetween(ctx context.Context, from, to time.Time) ([]Training, error) {
	return s.queryTrainings(ctx, psql.Select(trainingCols...).
		From("trainings").
		Where(sq.GtOrEq{"start_time": from}).
		Where(sq.LtOrEq{"start_time": to}).
		OrderBy("start_time ASC"))
}

func (s *PGStore) MemberTrainingsBetween(ctx context.Context, memberID int, from, to time.Time) ([]Training, error) {
	return s.queryTrainings(ctx, psql.Select(trainingCols...).
		From("trainings").
		Where(sq.GtOrEq{"start_time": from}).
		Where(sq.LtOrEq{"start_time": to}).
		Where(sq.Expr("id IN (SELECT trainings_id FROM trainings_attendance WHERE members_id = ?)", memberID)).
		OrderBy("start_time ASC"))
}

func (s *PGStore) CountAttendants(ctx context.Context, trainingID int) (int, error) {
	var n int
	err := qRow(ctx, s.db, psql.Select("COUNT(*)").
		From("trainings_attendance").Where(sq.Eq{"trainings_id": trainingID})).Scan(&n)
	return n, err
}

func (s *PGStore) PurgeTrainingAttendance(ctx context.Context, trainingID int) error {
	_, err := qExec(ctx, s.db, psql.Delete("trainings_attendance").
		Where(sq.Eq{"trainings_id": trainingID}))
	return err
}

func (s *PGStore) TrainingAttendants(ctx context.Context, trainingID int) ([]Member, error) {
	return s.queryMembers(ctx, psql.Select(memberCols...).From("members").
		Where(sq.Expr("id IN (SELECT members_id FROM trainings_attendance WHERE trainings_id = ?)", trainingID)))
}

func (s *PGStore) TrainingNonAttendants(ctx context.Context, trainingID int) ([]Member, error) {
	return s.queryMembers(ctx, psql.Select(memberCols...).From("members").
		Where(sq.Expr("id NOT IN (SELECT members_id FROM trainings_attendance WHERE trainings_id = ?)", trainingID)))
}

func (s *PGStore) GroupTrainingAttendants(ctx context.Context, groupID, trainingID int) ([]Member, error) {
	return s.queryMembers(ctx, psql.Select(memberCols...).From("members").
		Where(sq.Expr("id IN (SELECT members_id FROM training_group_members WHERE training_groups_id = ?)", groupID)).
		Where(sq.Expr("id IN (SELECT members_id FROM trainings_attendance WHERE trainings_id = ?)", trainingID)))
}

func (s *PGStore) GroupTrainingNonAttendants(ctx context.Context, groupID, trainingID int) ([]Member, error) {
	return s.queryMembers(ctx, psql.Select(memberCols...).From("members").
		Where(sq.Expr("id IN (SELECT members_id FROM training_group_members WHERE training_groups_id = ?)", groupID)).
		Where(sq.Expr("id NOT IN (SELECT members_id FROM trainings_attendance WHERE trainings_id = ?)", trainingID)))
}

/* ===================== COMPETITIONS ===================== */

var competitionCols = []string{
	"id", "title", "description", "place", "start_time", "end_time",
	"min_technical_grade",
}

func scanCompetition(row pgx.Row) (Competition, error) {
	var c Competition
	err := row.Scan(&c.ID, &c.Title, &c.Description, &c.Place, &c.StartTime,
		&c.EndTime, &c.MinTechnicalGrade)
	return c, err
}

func (s *PGStore) queryCompetitions(ctx context.Context, q sq.SelectBuilder) ([]Competition, error) {
	rows, err := qQuery(ctx, s.db, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Competition
	for rows.Next() {
		c, err := scanCompetition(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (s *PGStore) InsertCompetition(ctx context.Context, c Competition) (int, error) {
	var id int
	err := qRow(ctx, s.db, psql.Insert("competitions").
		Columns("title", "description", "place", "start_time", "end_time",
			"min_technical_grade").
		Values(c.Title, c.Description, c.Place, c.StartTime, c.EndTime,
			c.MinTechnicalGrade).
		Suffix("RETURNING id")).Scan(&id)
	return id, err
}

func (s *PGStore) Competition(ctx context.Context, id int) (Competition, error) {
	c, err := scanCompetition(qRow(ctx, s.db, psql.Select(competitionCols...).
		From("competitions").Where(sq.Eq{"id": id})))
	return c, notFoundOr(err)
}

func (s *PGStore) UpdateCompetition(ctx context.Context, c Competition) error {
	tag, err := qExec(ctx, s.db, psql.Update("competitions").
		Set("title", c.Title).
		Set("description", c.Description).
		Set("place", c.Place).
		Set("start_time", c.StartTime).
		Set("end_time", c.EndTime).
		Set("min_technical_grade", c.MinTechnicalGrade).
		Where(sq.Eq{"id": c.ID}))
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *PGStore) DeleteCompetitionRow(ctx context.Context, id int) error {
	_, err := qExec(ctx, s.db, psql.Delete("competitions").Where(sq.Eq{"id": id}))
	return err
}

func (s *PGStore) CompetitionsBetween(ctx context.Context, from, to time.Time) ([]Competition, error) {
	return s.queryCompetitions(ctx, psql.Select(competitionCols...).
		From("competitions").
		Where(sq.GtOrEq{"start_time": from}).
		Where(sq.LtOrEq{"start_time": to}).
		OrderBy("start_time ASC"))
}

func (s *PGStore) CompetitorCompetitionsBetween(ctx context.Context, competitorID int, from, to time.Time) ([]Competition, error) {
	return s.queryCompetitions(ctx, psql.Select(competitionCols...).
		From("competitions").
		Where(sq.GtOrEq{"start_time": from}).
		Where(sq.LtOrEq{"start_time": to}).
		Where(sq.Expr("id IN (SELECT competitions_id FROM competitions_participation WHERE competitors_id = ?)", competitorID)).
		OrderBy("start_time ASC"))
}

func (s *PGStore) PurgeParticipation(ctx context.Context, competitionID int) error {
	_, err := qExec(ctx, s.db, psql.Delete("competitions_participation").
		Where(sq.Eq{"competitions_id": competitionID}))
	return err
}

/* ===================== COMPETITOR PROFILES ===================== */

const competitorProfileCols = "competitors.id, firstname, surname, gender, birthdate, technical_grade, performance_grade, weight"

func (s *PGStore) queryCompetitorProfiles(ctx context.Context, q sq.SelectBuilder) ([]CompetitorProfile, error) {
	rows, err := qQuery(ctx, s.db, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []CompetitorProfile
	for rows.Next() {
		var p CompetitorProfile
		if err := rows.Scan(&p.ID, &p.Firstname, &p.Surname, &p.Gender,
			&p.Birthdate, &p.TechnicalGrade, &p.PerformanceGrade, &p.Weight); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func competitorProfileQuery() sq.SelectBuilder {
	return psql.Select(competitorProfileCols).
		From("competitors").
		Join("members ON competitors.members_id = members.id")
}

func (s *PGStore) CompetitorProfiles(ctx context.Context) ([]CompetitorProfile, error) {
	return s.queryCompetitorProfiles(ctx, competitorProfileQuery())
}

func (s *PGStore) Participants(ctx context.Context, competitionID int) ([]CompetitorProfile, error) {
	return s.queryCompetitorProfiles(ctx, competitorProfileQuery().
		Where(sq.Expr("competitors.id IN (SELECT competitors_id FROM competitions_participation WHERE competitions_id = ?)", competitionID)))
}

func (s *PGStore) NonParticipants(ctx context.Context, competitionID int) ([]CompetitorProfile, error) {
	return s.queryCompetitorProfiles(ctx, competitorProfileQuery().
		Where(sq.Expr("competitors.id NOT IN (SELECT competitors_id FROM competitions_participation WHERE competitions_id = ?)", competitionID)))
}

func (s *PGStore) GroupParticipants(ctx context.Context, groupID, competitionID int) ([]CompetitorProfile, error) {
	return s.queryCompetitorProfiles(ctx, competitorProfileQuery().
		Where(sq.Expr("competitors.id IN (SELECT competitors_id FROM competition_group_members WHERE competition_groups_id = ?)", groupID)).
		Where(sq.Expr("competitors.id IN (SELECT competitors_id FROM competitions_participation WHERE competitions_id = ?)", competitionID)))
}

func (s *PGStore) GroupNonParticipants(ctx context.Context, groupID, competitionID int) ([]CompetitorProfile, error) {
	return s.queryCompetitorProfiles(ctx, competitorProfileQuery().
		Where(sq.Expr("competitors.id IN (SELECT competitors_id FROM competition_group_members WHERE competition_groups_id = ?)", groupID)).
		Where(sq.Expr("competitors.id NOT IN (SELECT competitors_id FROM competitions_participation WHERE competitions_id = ?)", competitionID)))
}

/* ===================== SIGN-UP RELATIONS ===================== */

// pgSignup is a person<->event join table. Both relations share the shape,
// only the table and column names differ.
type pgSignup struct {
	db        *pgxpool.Pool
	table     string
	personCol string
	eventCol  string
}

func (s *PGStore) TrainingAttendance() SignupRelation {
	return pgSignup{s.db, "trainings_attendance", "members_id", "trainings_id"}
}

func (s *PGStore) CompetitionParticipation() SignupRelation {
	return pgSignup{s.db, "competitions_participation", "competitors_id", "competitions_id"}
}

func (r pgSignup) Add(ctx context.Context, personID, eventID int) error {
	_, err := qExec(ctx, r.db, psql.Insert(r.table).
		Columns(r.personCol, r.eventCol).
		Values(personID, eventID).
		Suffix("ON CONFLICT DO NOTHING"))
	return err
}

func (r pgSignup) Remove(ctx context.Context, personID, eventID int) error {
	_, err := qExec(ctx, r.db, psql.Delete(r.table).
		Where(sq.Eq{r.personCol: personID, r.eventCol: eventID}))
	return err
}

func (r pgSignup) Exists(ctx context.Context, personID, eventID int) (bool, error) {
	var ok bool
	err := r.db.QueryRow(ctx,
		"SELECT EXISTS(SELECT 1 FROM "+r.table+" WHERE "+r.personCol+"=$1 AND "+r.eventCol+"=$2)",
		personID, eventID).Scan(&ok)
	return ok, err
}

/* ===================== GROUPS ===================== */

type pgGroupTables struct {
	groups    string
	members   string
	groupCol  string
	personCol string
}

var trainingGroupTables = pgGroupTables{
	groups:    "training_groups",
	members:   "training_group_members",
	groupCol:  "training_groups_id",
	personCol: "members_id",
}

var competitionGroupTables = pgGroupTables{
	groups:    "competition_groups",
	members:   "competition_group_members",
	groupCol:  "competition_groups_id",
	personCol: "competitors_id",
}

// pgGroups carries the group CRUD and membership rows shared by both kinds.
type pgGroups struct {
	db *pgxpool.Pool
	t  pgGroupTables
}

func (g pgGroups) CreateGroup(ctx context.Context, grp Group) (int, error) {
	var id int
	err := qRow(ctx, g.db, psql.Insert(g.t.groups).
		Columns("name", "description").
		Values(grp.Name, grp.Description).
		Suffix("RETURNING id")).Scan(&id)
	return id, err
}

func (g pgGroups) Group(ctx context.Context, id int) (Group, error) {
	var grp Group
	err := qRow(ctx, g.db, psql.Select("id", "name", "description").
		From(g.t.groups).Where(sq.Eq{"id": id})).
		Scan(&grp.ID, &grp.Name, &grp.Description)
	return grp, notFoundOr(err)
}

func (g pgGroups) Groups(ctx context.Context) ([]Group, error) {
	rows, err := qQuery(ctx, g.db, psql.Select("id", "name", "description").
		From(g.t.groups).OrderBy("name ASC"))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Group
	for rows.Next() {
		var grp Group
		if err := rows.Scan(&grp.ID, &grp.Name, &grp.Description); err != nil {
			return nil, err
		}
		out = append(out, grp)
	}
	return out, rows.Err()
}

func (g pgGroups) UpdateGroup(ctx context.Context, grp Group) error {
	tag, err := qExec(ctx, g.db, psql.Update(g.t.groups).
		Set("name", grp.Name).
		Set("description", grp.Description).
		Where(sq.Eq{"id": grp.ID}))
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (g pgGroups) DeleteGroupRow(ctx context.Context, id int) error {
	_, err := qExec(ctx, g.db, psql.Delete(g.t.groups).Where(sq.Eq{"id": id}))
	return err
}

func (g pgGroups) AddGroupMember(ctx context.Context, personID, groupID int) error {
	_, err := qExec(ctx, g.db, psql.Insert(g.t.members).
		Columns(g.t.groupCol, g.t.personCol).
		Values(groupID, personID))
	if isUniqueViolation(err) {
		return ErrDuplicate
	}
	return err
}

func (g pgGroups) RemoveGroupMember(ctx context.Context, personID, groupID int) error {
	_, err := qExec(ctx, g.db, psql.Delete(g.t.members).
		Where(sq.Eq{g.t.groupCol: groupID, g.t.personCol: personID}))
	return err
}

func (g pgGroups) GroupMemberIDs(ctx context.Context, groupID int) ([]int, error) {
	rows, err := qQuery(ctx, g.db, psql.Select(g.t.personCol).
		From(g.t.members).Where(sq.Eq{g.t.groupCol: groupID}))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []int
	for rows.Next() {
		var id int
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (g pgGroups) PurgeGroupMembers(ctx context.Context, groupID int) error {
	_, err := qExec(ctx, g.db, psql.Delete(g.t.members).
		Where(sq.Eq{g.t.groupCol: groupID}))
	return err
}

// pgTrainingGroups implements GroupStore[Member].
type pgTrainingGroups struct {
	pgGroups
	store *PGStore
}

func (s *PGStore) TrainingGroups() GroupStore[Member] {
	return pgTrainingGroups{pgGroups{s.db, trainingGroupTables}, s}
}

func (g pgTrainingGroups) GroupMembers(ctx context.Context, groupID int) ([]Member, error) {
	return g.store.queryMembers(ctx, psql.Select(memberCols...).From("members").
		Where(sq.Expr("id IN (SELECT members_id FROM training_group_members WHERE training_groups_id = ?)", groupID)))
}

func (g pgTrainingGroups) GroupNonMembers(ctx context.Context, groupID int) ([]Member, error) {
	return g.store.queryMembers(ctx, psql.Select(memberCols...).From("members").
		Where(sq.Expr("id NOT IN (SELECT members_id FROM training_group_members WHERE training_groups_id = ?)", groupID)))
}

// pgCompetitionGroups implements GroupStore[CompetitorProfile].
type pgCompetitionGroups struct {
	pgGroups
	store *PGStore
}

func (s *PGStore) CompetitionGroups() GroupStore[CompetitorProfile] {
	return pgCompetitionGroups{pgGroups{s.db, competitionGroupTables}, s}
}

func (g pgCompetitionGroups) GroupMembers(ctx context.Context, groupID int) ([]CompetitorProfile, error) {
	return g.store.queryCompetitorProfiles(ctx, competitorProfileQuery().
		Where(sq.Expr("competitors.id IN (SELECT competitors_id FROM competition_group_members WHERE competition_groups_id = ?)", groupID)))
}

func (g pgCompetitionGroups) GroupNonMembers(ctx context.Context, groupID int) ([]CompetitorProfile, error) {
	return g.store.queryCompetitorProfiles(ctx, competitorProfileQuery().
		Where(sq.Expr("competitors.id NOT IN (SELECT competitors_id FROM competition_group_members WHERE competition_groups_id = ?)", groupID)))
}

/* ===================== AUDIT LOG ===================== */

func (s *PGStore) LogAction(ctx context.Context, actorID *int, action, details string) {
	_, _ = qExec(ctx, s.db, psql.Insert("logs").
		Columns("actor_id", "action", "details").
		Values(actorID, action, details))
}

type LogEntry struct {
	ID        int64  `json:"id"`
	CreatedAt string `json:"created_at"`
	Actor     string `json:"actor"`
	Action    string `json:"action"`
	Details   string `json:"details"`
}

func (s *PGStore) Logs(ctx context.Context) ([]LogEntry, error) {
	rows, err := s.db.Query(ctx,
		`SELECT l.id,
		        to_char(l.created_at, 'YYYY-MM-DD HH24:MI:SS') AS created_at,
		        COALESCE(u.username,'(deleted)') AS actor,
		        l.action,
		        l.details
		 FROM logs l
		 LEFT JOIN users u ON u.id=l.actor_id
		 ORDER BY l.id DESC LIMIT 200`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []LogEntry{}
	for rows.Next() {
		var e LogEntry
		if err := rows.Scan(&e.ID, &e.CreatedAt, &e.Actor, &e.Action, &e.Details); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}
