package internal

import "context"

// GroupRegistry manages named groups of people and the bulk sign-up flows
// built on top of them. The population type P is Member for training groups
// and CompetitorProfile for competition groups; the two registries are
// otherwise identical.
type GroupRegistry[P any] struct {
	store      GroupStore[P]
	attendance *Attendance
}

func NewGroupRegistry[P any](store GroupStore[P], attendance *Attendance) *GroupRegistry[P] {
	return &GroupRegistry[P]{store: store, attendance: attendance}
}

func (r *GroupRegistry[P]) Create(ctx context.Context, name, description string) (Group, error) {
	g := Group{Name: name, Description: description}
	id, err := r.store.CreateGroup(ctx, g)
	if err != nil {
		return Group{}, err
	}
	g.ID = id
	return g, nil
}

func (r *GroupRegistry[P]) Get(ctx context.Context, id int) (Group, error) {
	return r.store.Group(ctx, id)
}

func (r *GroupRegistry[P]) All(ctx context.Context) ([]Group, error) {
	return r.store.Groups(ctx)
}

func (r *GroupRegistry[P]) Update(ctx context.Context, g Group) error {
	return r.store.UpdateGroup(ctx, g)
}

// Delete removes the group's membership rows, then the group itself.
func (r *GroupRegistry[P]) Delete(ctx context.Context, id int) error {
	if _, err := r.store.Group(ctx, id); err != nil {
		return err
	}
	if err := r.store.PurgeGroupMembers(ctx, id); err != nil {
		return err
	}
	return r.store.DeleteGroupRow(ctx, id)
}

// AddMember adds the person to the group. Unlike event sign-up, adding an
// existing member is an error (ErrDuplicate).
func (r *GroupRegistry[P]) AddMember(ctx context.Context, groupID, personID int) error {
	return r.store.AddGroupMember(ctx, personID, groupID)
}

func (r *GroupRegistry[P]) RemoveMember(ctx context.Context, groupID, personID int) error {
	return r.store.RemoveGroupMember(ctx, personID, groupID)
}

func (r *GroupRegistry[P]) Members(ctx context.Context, groupID int) ([]P, error) {
	return r.store.GroupMembers(ctx, groupID)
}

// NonMembers lists the people not in the group, the complement shown by the
// membership picker.
func (r *GroupRegistry[P]) NonMembers(ctx context.Context, groupID int) ([]P, error) {
	return r.store.GroupNonMembers(ctx, groupID)
}

// SignUpForEvent signs every current group member up for the event, or for
// the whole series when seriesID is given. Members already signed up stay
// signed up; members added to the group later are not affected. Sign-ups
// are independent, so a failure mid-loop leaves the earlier ones in place.
func (r *GroupRegistry[P]) SignUpForEvent(ctx context.Context, groupID, eventID int, seriesID *int) error {
	return r.forMembers(ctx, groupID, func(personID int) error {
		return r.attendance.SignUp(ctx, personID, eventID, seriesID)
	})
}

// UnsignFromEvent removes every current group member from the event (or the
// whole series), including members signed up individually.
func (r *GroupRegistry[P]) UnsignFromEvent(ctx context.Context, groupID, eventID int, seriesID *int) error {
	return r.forMembers(ctx, groupID, func(personID int) error {
		return r.attendance.UnSign(ctx, personID, eventID, seriesID)
	})
}

func (r *GroupRegistry[P]) forMembers(ctx context.Context, groupID int, apply func(personID int) error) error {
	if _, err := r.store.Group(ctx, groupID); err != nil {
		return err
	}
	ids, err := r.store.GroupMemberIDs(ctx, groupID)
	if err != nil {
		return err
	}
	for _, id := range ids {
		if err := apply(id); err != nil {
			return err
		}
	}
	return nil
}
