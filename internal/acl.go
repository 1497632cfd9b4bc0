package internal

// Application resources guarded by the Authorizer.
const (
	ResHomepage       = "Homepage"
	ResCompetition    = "Competition"
	ResTraining       = "Training"
	ResProfile        = "Profile"
	ResSettings       = "Settings"
	ResUserManagement = "UserManagement"
)

const (
	PrivView   = "view"
	PrivManage = "manage"
)

type grant struct {
	resource  string
	privilege string // "" grants every privilege on the resource
}

// Authorizer is the club's access policy: a fixed role hierarchy with
// per-resource grants. Built once in main and handed to the middleware.
type Authorizer struct {
	parent map[string]string
	grants map[string][]grant
}

func NewAuthorizer() *Authorizer {
	a := &Authorizer{
		parent: map[string]string{
			RoleCompetitor: RoleMember,
			RoleTrainer:    RoleMember,
			RoleCoach:      RoleTrainer,
			RoleAdmin:      RoleCoach,
		},
		grants: map[string][]grant{},
	}

	a.allow(RoleGuest, ResHomepage)
	a.allow(RoleMember, ResHomepage)
	a.allow(RoleMember, ResProfile, PrivView, PrivManage)
	a.allow(RoleMember, ResSettings, PrivView, PrivManage)
	a.allow(RoleMember, ResTraining, PrivView)
	a.allow(RoleCompetitor, ResCompetition, PrivView)
	a.allow(RoleTrainer, ResTraining, PrivManage)
	a.allow(RoleCoach, ResCompetition, PrivView, PrivManage)
	a.allow(RoleAdmin, ResUserManagement, PrivView, PrivManage)

	return a
}

func (a *Authorizer) allow(role, resource string, privileges ...string) {
	if len(privileges) == 0 {
		a.grants[role] = append(a.grants[role], grant{resource, ""})
		return
	}
	for _, p := range privileges {
		a.grants[role] = append(a.grants[role], grant{resource, p})
	}
}

func (a *Authorizer) roleAllowed(role, resource, privilege string) bool {
	for _, g := range a.grants[role] {
		if g.resource == resource && (g.privilege == "" || g.privilege == privilege) {
			return true
		}
	}
	if parent, ok := a.parent[role]; ok {
		return a.roleAllowed(parent, resource, privilege)
	}
	return false
}

// Allowed reports whether any of the held roles, directly or through
// inheritance, grants the privilege on the resource.
func (a *Authorizer) Allowed(roles []string, resource, privilege string) bool {
	for _, r := range roles {
		if a.roleAllowed(r, resource, privilege) {
			return true
		}
	}
	return false
}
