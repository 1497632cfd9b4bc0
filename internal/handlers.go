package internal

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
)

const (
	dateLayout     = "2006-01-02"
	dateTimeLayout = "2006-01-02 15:04"
)

func pathID(c *gin.Context) int {
	id, _ := strconv.Atoi(c.Param("id"))
	return id
}

// queryInt reads an optional integer query parameter. A present but
// unparseable value answers the request with 400 and reports !ok.
func queryInt(c *gin.Context, name string) (v *int, ok bool) {
	s := c.Query(name)
	if s == "" {
		return nil, true
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		c.JSON(400, gin.H{"error": "bad " + name})
		return nil, false
	}
	return &n, true
}

func monthParams(c *gin.Context) (year, month *int, ok bool) {
	if year, ok = queryInt(c, "year"); !ok {
		return nil, nil, false
	}
	if month, ok = queryInt(c, "month"); !ok {
		return nil, nil, false
	}
	return year, month, true
}

func Me(store *PGStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		mid := memberID(c)
		if mid == 0 {
			c.JSON(200, gin.H{"roles": rolesOf(c)})
			return
		}
		m, err := store.Member(c.Request.Context(), mid)
		if err != nil {
			fail(c, err)
			return
		}
		c.JSON(200, gin.H{
			"member":               m,
			"technical_grade_text": TechnicalGradeText(m.TechnicalGrade),
		})
	}
}

// ------------------- Trainings -------------------

// GET /api/trainings?year=&month=
func ListTrainings(sched *Schedule) gin.HandlerFunc {
	return func(c *gin.Context) {
		year, month, ok := monthParams(c)
		if !ok {
			return
		}
		out, err := sched.MonthTrainings(c.Request.Context(), year, month)
		if err != nil {
			fail(c, err)
			return
		}
		c.JSON(200, out)
	}
}

// GET /api/my/trainings?year=&month=
func MyTrainings(sched *Schedule) gin.HandlerFunc {
	return func(c *gin.Context) {
		year, month, ok := monthParams(c)
		if !ok {
			return
		}
		out, err := sched.MemberMonthTrainings(c.Request.Context(), memberID(c), year, month)
		if err != nil {
			fail(c, err)
			return
		}
		c.JSON(200, out)
	}
}

// GET /api/trainings/:id
func GetTraining(sched *Schedule) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := pathID(c)
		t, err := sched.Training(c.Request.Context(), id)
		if err != nil {
			fail(c, err)
			return
		}
		count, err := sched.AttendantCount(c.Request.Context(), id)
		if err != nil {
			fail(c, err)
			return
		}
		c.JSON(200, gin.H{"training": t, "attendants": count})
	}
}

type eventRequest struct {
	Title             string `json:"title"`
	Description       string `json:"description"`
	Place             string `json:"place"`
	StartTime         string `json:"start_time"` // "2006-01-02 15:04"
	EndTime           string `json:"end_time"`
	MaxAttendance     *int   `json:"max_attendance"`
	MinTechnicalGrade *int   `json:"min_technical_grade"`

	Repeating         bool   `json:"repeating"`
	RepeatingInterval int    `json:"repeating_interval"`
	RepeatingEnd      string `json:"repeating_end"` // "2006-01-02"
}

func (r eventRequest) window() (start, end time.Time, err error) {
	start, err = time.ParseInLocation(dateTimeLayout, r.StartTime, time.Local)
	if err != nil {
		return start, end, invalid("bad start_time")
	}
	end, err = time.ParseInLocation(dateTimeLayout, r.EndTime, time.Local)
	if err != nil {
		return start, end, invalid("bad end_time")
	}
	if r.Title == "" {
		return start, end, invalid("title is required")
	}
	if !end.After(start) {
		return start, end, invalid("end_time must be after start_time")
	}
	return start, end, nil
}

// POST /api/trainings
func CreateTraining(sched *Schedule, store *PGStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req eventRequest
		if err := c.BindJSON(&req); err != nil {
			c.JSON(400, gin.H{"error": "bad json"})
			return
		}
		start, end, err := req.window()
		if err != nil {
			fail(c, err)
			return
		}

		in := TrainingInput{
			Title:             req.Title,
			Description:       req.Description,
			Place:             req.Place,
			StartTime:         start,
			EndTime:           end,
			MaxAttendance:     req.MaxAttendance,
			MinTechnicalGrade: req.MinTechnicalGrade,
			Repeating:         req.Repeating,
			RepeatingInterval: req.RepeatingInterval,
		}
		if req.Repeating {
			repEnd, err := time.ParseInLocation(dateLayout, req.RepeatingEnd, time.Local)
			if err != nil {
				c.JSON(400, gin.H{"error": "bad repeating_end"})
				return
			}
			in.RepeatingEnd = repEnd
		}

		created, err := sched.CreateTraining(c.Request.Context(), in)
		if err != nil {
			fail(c, err)
			return
		}
		actor := accountID(c)
		store.LogAction(c.Request.Context(), &actor, "create_training", req.Title)
		c.JSON(200, created)
	}
}

// DELETE /api/trainings/:id?series_id=
func DeleteTraining(sched *Schedule, store *PGStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := pathID(c)
		sid, ok := queryInt(c, "series_id")
		if !ok {
			return
		}
		if err := sched.DeleteTraining(c.Request.Context(), id, sid); err != nil {
			fail(c, err)
			return
		}
		actor := accountID(c)
		store.LogAction(c.Request.Context(), &actor, "delete_training", strconv.Itoa(id))
		c.JSON(200, gin.H{"ok": true})
	}
}

// ------------------- Training attendance -------------------

// POST /api/trainings/:id/sign?series_id=
func SignSelfTraining(att *Attendance) gin.HandlerFunc {
	return func(c *gin.Context) {
		sid, ok := queryInt(c, "series_id")
		if !ok {
			return
		}
		err := att.SignUp(c.Request.Context(), memberID(c), pathID(c), sid)
		if err != nil {
			fail(c, err)
			return
		}
		c.JSON(200, gin.H{"ok": true})
	}
}

// POST /api/trainings/:id/unsign?series_id=
func UnsignSelfTraining(att *Attendance) gin.HandlerFunc {
	return func(c *gin.Context) {
		sid, ok := queryInt(c, "series_id")
		if !ok {
			return
		}
		err := att.UnSign(c.Request.Context(), memberID(c), pathID(c), sid)
		if err != nil {
			fail(c, err)
			return
		}
		c.JSON(200, gin.H{"ok": true})
	}
}

// POST /api/trainings/:id/attendants  body: {"member_id": N}
func SignMemberTraining(att *Attendance) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req struct {
			MemberID int `json:"member_id"`
		}
		if err := c.BindJSON(&req); err != nil {
			c.JSON(400, gin.H{"error": "bad json"})
			return
		}
		sid, ok := queryInt(c, "series_id")
		if !ok {
			return
		}
		err := att.SignUp(c.Request.Context(), req.MemberID, pathID(c), sid)
		if err != nil {
			fail(c, err)
			return
		}
		c.JSON(200, gin.H{"ok": true})
	}
}

// DELETE /api/trainings/:id/attendants/:member_id
func UnsignMemberTraining(att *Attendance) gin.HandlerFunc {
	return func(c *gin.Context) {
		mid, _ := strconv.Atoi(c.Param("member_id"))
		sid, ok := queryInt(c, "series_id")
		if !ok {
			return
		}
		err := att.UnSign(c.Request.Context(), mid, pathID(c), sid)
		if err != nil {
			fail(c, err)
			return
		}
		c.JSON(200, gin.H{"ok": true})
	}
}

// GET /api/trainings/:id/attendants?group_id=
func TrainingAttendants(store *PGStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		id := pathID(c)
		var (
			out []Member
			err error
		)
		gid, ok := queryInt(c, "group_id")
		if !ok {
			return
		}
		if gid != nil {
			out, err = store.GroupTrainingAttendants(ctx, *gid, id)
		} else {
			out, err = store.TrainingAttendants(ctx, id)
		}
		if err != nil {
			fail(c, err)
			return
		}
		c.JSON(200, out)
	}
}

// GET /api/trainings/:id/non-attendants?group_id=
func TrainingNonAttendants(store *PGStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		id := pathID(c)
		var (
			out []Member
			err error
		)
		gid, ok := queryInt(c, "group_id")
		if !ok {
			return
		}
		if gid != nil {
			out, err = store.GroupTrainingNonAttendants(ctx, *gid, id)
		} else {
			out, err = store.TrainingNonAttendants(ctx, id)
		}
		if err != nil {
			fail(c, err)
			return
		}
		c.JSON(200, out)
	}
}

// ------------------- Groups (both kinds) -------------------

func ListGroups[P any](reg *GroupRegistry[P]) gin.HandlerFunc {
	return func(c *gin.Context) {
		out, err := reg.All(c.Request.Context())
		if err != nil {
			fail(c, err)
			return
		}
		c.JSON(200, out)
	}
}

// GET /groups/:id — the group with its current members.
func GetGroup[P any](reg *GroupRegistry[P]) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		g, err := reg.Get(ctx, pathID(c))
		if err != nil {
			fail(c, err)
			return
		}
		members, err := reg.Members(ctx, g.ID)
		if err != nil {
			fail(c, err)
			return
		}
		c.JSON(200, gin.H{"group": g, "members": members})
	}
}

func CreateGroup[P any](reg *GroupRegistry[P], store *PGStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req struct {
			Name        string `json:"name"`
			Description string `json:"description"`
		}
		if err := c.BindJSON(&req); err != nil {
			c.JSON(400, gin.H{"error": "bad json"})
			return
		}
		if req.Name == "" {
			c.JSON(400, gin.H{"error": "name is required"})
			return
		}
		g, err := reg.Create(c.Request.Context(), req.Name, req.Description)
		if err != nil {
			fail(c, err)
			return
		}
		actor := accountID(c)
		store.LogAction(c.Request.Context(), &actor, "create_group", req.Name)
		c.JSON(200, g)
	}
}

func UpdateGroup[P any](reg *GroupRegistry[P]) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req struct {
			Name        string `json:"name"`
			Description string `json:"description"`
		}
		if err := c.BindJSON(&req); err != nil {
			c.JSON(400, gin.H{"error": "bad json"})
			return
		}
		g := Group{ID: pathID(c), Name: req.Name, Description: req.Description}
		if err := reg.Update(c.Request.Context(), g); err != nil {
			fail(c, err)
			return
		}
		c.JSON(200, g)
	}
}

func DeleteGroup[P any](reg *GroupRegistry[P], store *PGStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := pathID(c)
		if err := reg.Delete(c.Request.Context(), id); err != nil {
			fail(c, err)
			return
		}
		actor := accountID(c)
		store.LogAction(c.Request.Context(), &actor, "delete_group", strconv.Itoa(id))
		c.JSON(200, gin.H{"ok": true})
	}
}

// POST /groups/:id/members  body: {"person_id": N}
func AddGroupMember[P any](reg *GroupRegistry[P]) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req struct {
			PersonID int `json:"person_id"`
		}
		if err := c.BindJSON(&req); err != nil {
			c.JSON(400, gin.H{"error": "bad json"})
			return
		}
		if err := reg.AddMember(c.Request.Context(), pathID(c), req.PersonID); err != nil {
			fail(c, err)
			return
		}
		c.JSON(200, gin.H{"ok": true})
	}
}

// DELETE /groups/:id/members/:person_id
func RemoveGroupMember[P any](reg *GroupRegistry[P]) gin.HandlerFunc {
	return func(c *gin.Context) {
		pid, _ := strconv.Atoi(c.Param("person_id"))
		if err := reg.RemoveMember(c.Request.Context(), pathID(c), pid); err != nil {
			fail(c, err)
			return
		}
		c.JSON(200, gin.H{"ok": true})
	}
}

// GET /groups/:id/non-members — the membership picker complement.
func GroupNonMembers[P any](reg *GroupRegistry[P]) gin.HandlerFunc {
	return func(c *gin.Context) {
		out, err := reg.NonMembers(c.Request.Context(), pathID(c))
		if err != nil {
			fail(c, err)
			return
		}
		c.JSON(200, out)
	}
}

// POST /groups/:id/sign  body: {"event_id": N, "series_id": S?}
func GroupSignEvent[P any](reg *GroupRegistry[P]) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req struct {
			EventID  int  `json:"event_id"`
			SeriesID *int `json:"series_id"`
		}
		if err := c.BindJSON(&req); err != nil {
			c.JSON(400, gin.H{"error": "bad json"})
			return
		}
		if err := reg.SignUpForEvent(c.Request.Context(), pathID(c), req.EventID, req.SeriesID); err != nil {
			fail(c, err)
			return
		}
		c.JSON(200, gin.H{"ok": true})
	}
}

// POST /groups/:id/unsign  body: {"event_id": N, "series_id": S?}
func GroupUnsignEvent[P any](reg *GroupRegistry[P]) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req struct {
			EventID  int  `json:"event_id"`
			SeriesID *int `json:"series_id"`
		}
		if err := c.BindJSON(&req); err != nil {
			c.JSON(400, gin.H{"error": "bad json"})
			return
		}
		if err := reg.UnsignFromEvent(c.Request.Context(), pathID(c), req.EventID, req.SeriesID); err != nil {
			fail(c, err)
			return
		}
		c.JSON(200, gin.H{"ok": true})
	}
}

// ------------------- Competitions -------------------

// GET /api/competitions?year=&month=
func ListCompetitions(sched *Schedule) gin.HandlerFunc {
	return func(c *gin.Context) {
		year, month, ok := monthParams(c)
		if !ok {
			return
		}
		out, err := sched.MonthCompetitions(c.Request.Context(), year, month)
		if err != nil {
			fail(c, err)
			return
		}
		c.JSON(200, out)
	}
}

// GET /api/my/competitions?year=&month= — for the competitor role.
func MyCompetitions(sched *Schedule, store *PGStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		comp, err := store.CompetitorByMember(ctx, memberID(c))
		if err != nil {
			fail(c, err)
			return
		}
		year, month, ok := monthParams(c)
		if !ok {
			return
		}
		out, err := sched.CompetitorMonthCompetitions(ctx, comp.ID, year, month)
		if err != nil {
			fail(c, err)
			return
		}
		c.JSON(200, out)
	}
}

// GET /api/competitions/:id
func GetCompetition(sched *Schedule) gin.HandlerFunc {
	return func(c *gin.Context) {
		comp, err := sched.Competition(c.Request.Context(), pathID(c))
		if err != nil {
			fail(c, err)
			return
		}
		c.JSON(200, comp)
	}
}

// POST /api/competitions
func CreateCompetition(sched *Schedule, store *PGStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req eventRequest
		if err := c.BindJSON(&req); err != nil {
			c.JSON(400, gin.H{"error": "bad json"})
			return
		}
		start, end, err := req.window()
		if err != nil {
			fail(c, err)
			return
		}
		comp, err := sched.CreateCompetition(c.Request.Context(), CompetitionInput{
			Title:             req.Title,
			Description:       req.Description,
			Place:             req.Place,
			StartTime:         start,
			EndTime:           end,
			MinTechnicalGrade: req.MinTechnicalGrade,
		})
		if err != nil {
			fail(c, err)
			return
		}
		actor := accountID(c)
		store.LogAction(c.Request.Context(), &actor, "create_competition", req.Title)
		c.JSON(200, comp)
	}
}

// PUT /api/competitions/:id
func UpdateCompetition(sched *Schedule) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req eventRequest
		if err := c.BindJSON(&req); err != nil {
			c.JSON(400, gin.H{"error": "bad json"})
			return
		}
		start, end, err := req.window()
		if err != nil {
			fail(c, err)
			return
		}
		comp := Competition{
			ID:                pathID(c),
			Title:             req.Title,
			Description:       req.Description,
			Place:             req.Place,
			StartTime:         start,
			EndTime:           end,
			MinTechnicalGrade: req.MinTechnicalGrade,
		}
		if err := sched.UpdateCompetition(c.Request.Context(), comp); err != nil {
			fail(c, err)
			return
		}
		c.JSON(200, comp)
	}
}

// DELETE /api/competitions/:id
func DeleteCompetition(sched *Schedule, store *PGStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := pathID(c)
		if err := sched.DeleteCompetition(c.Request.Context(), id); err != nil {
			fail(c, err)
			return
		}
		actor := accountID(c)
		store.LogAction(c.Request.Context(), &actor, "delete_competition", strconv.Itoa(id))
		c.JSON(200, gin.H{"ok": true})
	}
}

// ------------------- Competition participation -------------------

// POST /api/competitions/:id/sign — competitor signs up themselves.
func SignSelfCompetition(att *Attendance, store *PGStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		comp, err := store.CompetitorByMember(ctx, memberID(c))
		if err != nil {
			fail(c, err)
			return
		}
		if err := att.SignUp(ctx, comp.ID, pathID(c), nil); err != nil {
			fail(c, err)
			return
		}
		c.JSON(200, gin.H{"ok": true})
	}
}

// POST /api/competitions/:id/unsign
func UnsignSelfCompetition(att *Attendance, store *PGStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		comp, err := store.CompetitorByMember(ctx, memberID(c))
		if err != nil {
			fail(c, err)
			return
		}
		if err := att.UnSign(ctx, comp.ID, pathID(c), nil); err != nil {
			fail(c, err)
			return
		}
		c.JSON(200, gin.H{"ok": true})
	}
}

// POST /api/competitions/:id/participants  body: {"competitor_id": N}
func SignCompetitorCompetition(att *Attendance) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req struct {
			CompetitorID int `json:"competitor_id"`
		}
		if err := c.BindJSON(&req); err != nil {
			c.JSON(400, gin.H{"error": "bad json"})
			return
		}
		if err := att.SignUp(c.Request.Context(), req.CompetitorID, pathID(c), nil); err != nil {
			fail(c, err)
			return
		}
		c.JSON(200, gin.H{"ok": true})
	}
}

// DELETE /api/competitions/:id/participants/:competitor_id
func UnsignCompetitorCompetition(att *Attendance) gin.HandlerFunc {
	return func(c *gin.Context) {
		cid, _ := strconv.Atoi(c.Param("competitor_id"))
		if err := att.UnSign(c.Request.Context(), cid, pathID(c), nil); err != nil {
			fail(c, err)
			return
		}
		c.JSON(200, gin.H{"ok": true})
	}
}

// GET /api/competitions/:id/participants?group_id= — with derived categories.
func CompetitionParticipants(store *PGStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		id := pathID(c)
		var (
			out []CompetitorProfile
			err error
		)
		gid, ok := queryInt(c, "group_id")
		if !ok {
			return
		}
		if gid != nil {
			out, err = store.GroupParticipants(ctx, *gid, id)
		} else {
			out, err = store.Participants(ctx, id)
		}
		if err != nil {
			fail(c, err)
			return
		}
		c.JSON(200, ClassifyProfiles(out, time.Now()))
	}
}

// GET /api/competitions/:id/non-participants?group_id=
func CompetitionNonParticipants(store *PGStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		id := pathID(c)
		var (
			out []CompetitorProfile
			err error
		)
		gid, ok := queryInt(c, "group_id")
		if !ok {
			return
		}
		if gid != nil {
			out, err = store.GroupNonParticipants(ctx, *gid, id)
		} else {
			out, err = store.NonParticipants(ctx, id)
		}
		if err != nil {
			fail(c, err)
			return
		}
		c.JSON(200, ClassifyProfiles(out, time.Now()))
	}
}

// ------------------- Members -------------------

// GET /api/members — ordered by technical grade.
func ListMembers(svc *Members) gin.HandlerFunc {
	return func(c *gin.Context) {
		out, err := svc.All(c.Request.Context())
		if err != nil {
			fail(c, err)
			return
		}
		c.JSON(200, out)
	}
}

// GET /api/members/by-role — the user-management overview, one bucket per role.
func ListMembersByRole(svc *Members) gin.HandlerFunc {
	return func(c *gin.Context) {
		out, err := svc.ByRole(c.Request.Context())
		if err != nil {
			fail(c, err)
			return
		}
		c.JSON(200, out)
	}
}

// GET /api/competitors — competitor profiles with derived categories.
func ListCompetitors(store *PGStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		out, err := store.CompetitorProfiles(c.Request.Context())
		if err != nil {
			fail(c, err)
			return
		}
		c.JSON(200, ClassifyProfiles(out, time.Now()))
	}
}

type memberRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`

	Firstname      string   `json:"firstname"`
	Midname        string   `json:"midname"`
	Surname        string   `json:"surname"`
	Gender         string   `json:"gender"`
	Birthdate      string   `json:"birthdate"` // "2006-01-02"
	NID            string   `json:"nid"`
	Mail           string   `json:"mail"`
	Phone          string   `json:"phone"`
	City           string   `json:"city"`
	Address        string   `json:"address"`
	Zipcode        string   `json:"zipcode"`
	TechnicalGrade int      `json:"technical_grade"`
	Roles          []string `json:"roles"`
	MemberSince    string   `json:"member_since"` // optional, "2006-01-02"
}

func (r memberRequest) member() (Member, error) {
	if r.Firstname == "" || r.Surname == "" {
		return Member{}, invalid("firstname and surname are required")
	}
	if r.Gender != "M" && r.Gender != "F" {
		return Member{}, invalid("gender must be M or F")
	}
	birth, err := time.ParseInLocation(dateLayout, r.Birthdate, time.Local)
	if err != nil {
		return Member{}, invalid("bad birthdate")
	}
	m := Member{
		Firstname:      r.Firstname,
		Midname:        r.Midname,
		Surname:        r.Surname,
		Gender:         r.Gender,
		Birthdate:      birth,
		NID:            r.NID,
		Mail:           r.Mail,
		Phone:          r.Phone,
		City:           r.City,
		Address:        r.Address,
		Zipcode:        r.Zipcode,
		TechnicalGrade: r.TechnicalGrade,
		Roles:          r.Roles,
	}
	if len(m.Roles) == 0 {
		m.Roles = []string{RoleMember}
	}
	if r.MemberSince != "" {
		since, err := time.ParseInLocation(dateLayout, r.MemberSince, time.Local)
		if err != nil {
			return Member{}, invalid("bad member_since")
		}
		m.MemberSince = since
	}
	return m, nil
}

// POST /api/members
func CreateMember(svc *Members, store *PGStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req memberRequest
		if err := c.BindJSON(&req); err != nil {
			c.JSON(400, gin.H{"error": "bad json"})
			return
		}
		if req.Username == "" || len(req.Password) < 6 {
			c.JSON(400, gin.H{"error": "username and a password of at least 6 characters are required"})
			return
		}
		m, err := req.member()
		if err != nil {
			fail(c, err)
			return
		}
		created, err := svc.Create(c.Request.Context(), MemberInput{
			Username: req.Username,
			Password: req.Password,
			Member:   m,
		})
		if err != nil {
			fail(c, err)
			return
		}
		actor := accountID(c)
		store.LogAction(c.Request.Context(), &actor, "create_member", created.Surname)
		c.JSON(200, created)
	}
}

// GET /api/members/:id — the member with its extension records.
func GetMember(svc *Members, store *PGStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		m, err := svc.Get(ctx, pathID(c))
		if err != nil {
			fail(c, err)
			return
		}
		out := gin.H{
			"member":               m,
			"technical_grade_text": TechnicalGradeText(m.TechnicalGrade),
		}
		if hasRole(m.Roles, RoleCompetitor) {
			if comp, err := store.CompetitorByMember(ctx, m.ID); err == nil {
				out["competitor"] = comp
			}
		}
		if hasRole(m.Roles, RoleTrainer) {
			if tr, err := store.TrainerByMember(ctx, m.ID); err == nil {
				out["trainer"] = tr
			}
		}
		if hasRole(m.Roles, RoleCoach) {
			if co, err := store.CoachByMember(ctx, m.ID); err == nil {
				out["coach"] = co
			}
		}
		c.JSON(200, out)
	}
}

// PUT /api/members/:id
func UpdateMember(svc *Members, store *PGStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req memberRequest
		if err := c.BindJSON(&req); err != nil {
			c.JSON(400, gin.H{"error": "bad json"})
			return
		}
		m, err := req.member()
		if err != nil {
			fail(c, err)
			return
		}
		m.ID = pathID(c)
		if err := svc.Update(c.Request.Context(), m); err != nil {
			fail(c, err)
			return
		}
		actor := accountID(c)
		store.LogAction(c.Request.Context(), &actor, "update_member", strconv.Itoa(m.ID))
		c.JSON(200, m)
	}
}

// DELETE /api/members/:id
func DeleteMember(svc *Members, store *PGStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := pathID(c)
		if err := svc.Delete(c.Request.Context(), id); err != nil {
			fail(c, err)
			return
		}
		actor := accountID(c)
		store.LogAction(c.Request.Context(), &actor, "delete_member", strconv.Itoa(id))
		c.JSON(200, gin.H{"ok": true})
	}
}

// ------------------- Role extension records -------------------

// PUT /api/members/:id/competitor
func UpdateCompetitorRecord(store *PGStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		comp, err := store.CompetitorByMember(ctx, pathID(c))
		if err != nil {
			fail(c, err)
			return
		}
		var req struct {
			Weight           *float64 `json:"weight"`
			Height           *float64 `json:"height"`
			PerformanceGrade *string  `json:"performance_grade"`
			Specialization   *string  `json:"specialization"`
			CumaStamp        *string  `json:"cuma_stamp"`
			CkaStamp         *string  `json:"cka_stamp"`
		}
		if err := c.BindJSON(&req); err != nil {
			c.JSON(400, gin.H{"error": "bad json"})
			return
		}
		comp.Weight = req.Weight
		comp.Height = req.Height
		comp.PerformanceGrade = req.PerformanceGrade
		comp.Specialization = req.Specialization
		comp.CumaStamp = req.CumaStamp
		comp.CkaStamp = req.CkaStamp
		if err := store.UpdateCompetitor(ctx, comp); err != nil {
			fail(c, err)
			return
		}
		c.JSON(200, comp)
	}
}

// PUT /api/members/:id/trainer
func UpdateTrainerRecord(store *PGStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		tr, err := store.TrainerByMember(ctx, pathID(c))
		if err != nil {
			fail(c, err)
			return
		}
		var req struct {
			TrainerGrade *string `json:"trainer_grade"`
			LicenceStart *string `json:"licence_start"` // "2006-01-02"
			LicenceEnd   *string `json:"licence_end"`
		}
		if err := c.BindJSON(&req); err != nil {
			c.JSON(400, gin.H{"error": "bad json"})
			return
		}
		tr.TrainerGrade = req.TrainerGrade
		tr.LicenceStart, tr.LicenceEnd = nil, nil
		if req.LicenceStart != nil {
			d, err := time.ParseInLocation(dateLayout, *req.LicenceStart, time.Local)
			if err != nil {
				c.JSON(400, gin.H{"error": "bad licence_start"})
				return
			}
			tr.LicenceStart = &d
		}
		if req.LicenceEnd != nil {
			d, err := time.ParseInLocation(dateLayout, *req.LicenceEnd, time.Local)
			if err != nil {
				c.JSON(400, gin.H{"error": "bad licence_end"})
				return
			}
			tr.LicenceEnd = &d
		}
		if err := store.UpdateTrainer(ctx, tr); err != nil {
			fail(c, err)
			return
		}
		c.JSON(200, tr)
	}
}

// PUT /api/members/:id/coach
func UpdateCoachRecord(store *PGStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		co, err := store.CoachByMember(ctx, pathID(c))
		if err != nil {
			fail(c, err)
			return
		}
		var req struct {
			CoachGrade     *string `json:"coach_grade"`
			Specialization *string `json:"specialization"`
		}
		if err := c.BindJSON(&req); err != nil {
			c.JSON(400, gin.H{"error": "bad json"})
			return
		}
		co.CoachGrade = req.CoachGrade
		co.Specialization = req.Specialization
		if err := store.UpdateCoach(ctx, co); err != nil {
			fail(c, err)
			return
		}
		c.JSON(200, co)
	}
}

// ------------------- Admin -------------------

// GET /api/admin/logs
func AdminLogs(store *PGStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		out, err := store.Logs(c.Request.Context())
		if err != nil {
			fail(c, err)
			return
		}
		c.JSON(200, out)
	}
}
