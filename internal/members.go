package internal

import (
	"context"
	"time"

	"golang.org/x/crypto/bcrypt"
)

// Members owns the member lifecycle: account creation, the role extension
// records (competitor, trainer, coach) kept in sync with the role set, and
// the explicit cascade on delete.
type Members struct {
	store MemberStore
	now   func() time.Time
}

func NewMembers(store MemberStore) *Members {
	return &Members{store: store, now: time.Now}
}

type MemberInput struct {
	Username string
	Password string
	Member
}

// Create registers the account, the member row and an extension record for
// each role that carries one. MemberSince defaults to today.
func (s *Members) Create(ctx context.Context, in MemberInput) (Member, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return Member{}, err
	}
	accountID, err := s.store.CreateAccount(ctx, in.Username, string(hash))
	if err != nil {
		return Member{}, err
	}

	m := in.Member
	m.AccountID = accountID
	if m.MemberSince.IsZero() {
		m.MemberSince = s.now()
	}
	id, err := s.store.InsertMember(ctx, m)
	if err != nil {
		return Member{}, err
	}
	m.ID = id

	if err := s.createRoleRecords(ctx, id, m.Roles); err != nil {
		return Member{}, err
	}
	return m, nil
}

func (s *Members) Get(ctx context.Context, id int) (Member, error) {
	return s.store.Member(ctx, id)
}

func (s *Members) All(ctx context.Context) ([]Member, error) {
	return s.store.Members(ctx)
}

// ByRole groups the members under each role they hold; a member with
// several roles appears in every matching bucket. Ordering within a bucket
// follows the store's grade ordering.
func (s *Members) ByRole(ctx context.Context) (map[string][]Member, error) {
	all, err := s.store.Members(ctx)
	if err != nil {
		return nil, err
	}
	out := map[string][]Member{}
	for _, m := range all {
		for _, role := range m.Roles {
			out[role] = append(out[role], m)
		}
	}
	return out, nil
}

// Update writes the member columns and reconciles the extension records
// with the new role set: a gained role creates its record, a dropped role
// deletes it (competitor deletion cascades through participation and
// competition group membership first).
func (s *Members) Update(ctx context.Context, m Member) error {
	old, err := s.store.Member(ctx, m.ID)
	if err != nil {
		return err
	}
	gained, dropped := diffRoles(old.Roles, m.Roles)
	for _, role := range dropped {
		if err := s.removeRoleRecord(ctx, m.ID, role); err != nil {
			return err
		}
	}
	if err := s.createRoleRecords(ctx, m.ID, gained); err != nil {
		return err
	}
	return s.store.UpdateMember(ctx, m)
}

// Delete removes the member and everything hanging off it, child rows
// first: the extension records with their own cascades, group memberships,
// attendance, the member row, finally the account.
func (s *Members) Delete(ctx context.Context, id int) error {
	m, err := s.store.Member(ctx, id)
	if err != nil {
		return err
	}
	for _, role := range []string{RoleCompetitor, RoleTrainer, RoleCoach} {
		if hasRole(m.Roles, role) {
			if err := s.removeRoleRecord(ctx, id, role); err != nil {
				return err
			}
		}
	}
	if err := s.store.PurgeMemberGroupMemberships(ctx, id); err != nil {
		return err
	}
	if err := s.store.PurgeMemberAttendance(ctx, id); err != nil {
		return err
	}
	if err := s.store.DeleteMemberRow(ctx, id); err != nil {
		return err
	}
	return s.store.DeleteAccount(ctx, m.AccountID)
}

func (s *Members) createRoleRecords(ctx context.Context, memberID int, roles []string) error {
	for _, role := range roles {
		var err error
		switch role {
		case RoleCompetitor:
			err = s.store.InsertCompetitor(ctx, memberID)
		case RoleTrainer:
			err = s.store.InsertTrainer(ctx, memberID)
		case RoleCoach:
			err = s.store.InsertCoach(ctx, memberID)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

func (s *Members) removeRoleRecord(ctx context.Context, memberID int, role string) error {
	switch role {
	case RoleCompetitor:
		c, err := s.store.CompetitorByMember(ctx, memberID)
		if err != nil {
			return err
		}
		if err := s.store.PurgeCompetitorGroupMemberships(ctx, c.ID); err != nil {
			return err
		}
		if err := s.store.PurgeCompetitorParticipation(ctx, c.ID); err != nil {
			return err
		}
		return s.store.DeleteCompetitorRow(ctx, c.ID)
	case RoleTrainer:
		return s.store.DeleteTrainerByMember(ctx, memberID)
	case RoleCoach:
		return s.store.DeleteCoachByMember(ctx, memberID)
	}
	return nil
}

// diffRoles returns the roles present only in next (gained) and only in
// prev (dropped). Only roles with extension records matter to callers, but
// the diff is computed over the full sets.
func diffRoles(prev, next []string) (gained, dropped []string) {
	for _, r := range next {
		if !hasRole(prev, r) {
			gained = append(gained, r)
		}
	}
	for _, r := range prev {
		if !hasRole(next, r) {
			dropped = append(dropped, r)
		}
	}
	return gained, dropped
}

// ClassifyProfiles fills in the derived competition category of each
// profile from gender, age and weight as of now.
func ClassifyProfiles(profiles []CompetitorProfile, now time.Time) []CompetitorProfile {
	for i := range profiles {
		p := &profiles[i]
		var age *int
		if !p.Birthdate.IsZero() {
			a := ageAt(p.Birthdate, now)
			age = &a
		}
		p.Category = Category(p.Gender, age, p.Weight)
	}
	return profiles
}
