package internal

import (
	"fmt"
	"time"
)

// Member roles. A member can hold several at once; competitor, trainer and
// coach each come with a satellite record in their own table.
const (
	RoleGuest      = "guest"
	RoleMember     = "member"
	RoleCompetitor = "competitor"
	RoleTrainer    = "trainer"
	RoleCoach      = "coach"
	RoleAdmin      = "admin"
)

type Account struct {
	ID       int    `json:"id"`
	Username string `json:"username"`
	PassHash string `json:"-"`
}

type Member struct {
	ID             int       `json:"id"`
	Firstname      string    `json:"firstname"`
	Midname        string    `json:"midname,omitempty"`
	Surname        string    `json:"surname"`
	Gender         string    `json:"gender"` // M|F
	Birthdate      time.Time `json:"birthdate"`
	NID            string    `json:"nid,omitempty"`
	Mail           string    `json:"mail,omitempty"`
	Phone          string    `json:"phone,omitempty"`
	City           string    `json:"city,omitempty"`
	Address        string    `json:"address,omitempty"`
	Zipcode        string    `json:"zipcode,omitempty"`
	TechnicalGrade int       `json:"technical_grade"`
	Roles          []string  `json:"roles"`
	MemberSince    time.Time `json:"member_since"`
	AccountID      int       `json:"-"`
}

// Competitor extends a Member holding the competitor role.
type Competitor struct {
	ID               int      `json:"id"`
	MemberID         int      `json:"member_id"`
	Weight           *float64 `json:"weight,omitempty"`
	Height           *float64 `json:"height,omitempty"`
	PerformanceGrade *string  `json:"performance_grade,omitempty"`
	Specialization   *string  `json:"specialization,omitempty"`
	CumaStamp        *string  `json:"cuma_stamp,omitempty"`
	CkaStamp         *string  `json:"cka_stamp,omitempty"`
}

// Trainer extends a Member holding the trainer role.
type Trainer struct {
	ID           int        `json:"id"`
	MemberID     int        `json:"member_id"`
	TrainerGrade *string    `json:"trainer_grade,omitempty"`
	LicenceStart *time.Time `json:"licence_start,omitempty"`
	LicenceEnd   *time.Time `json:"licence_end,omitempty"`
}

// Coach extends a Member holding the coach role.
type Coach struct {
	ID             int     `json:"id"`
	MemberID       int     `json:"member_id"`
	CoachGrade     *string `json:"coach_grade,omitempty"`
	Specialization *string `json:"specialization,omitempty"`
}

// CompetitorProfile is a competitor joined with the member columns the
// competition views need.
type CompetitorProfile struct {
	ID               int       `json:"id"` // competitor id
	Firstname        string    `json:"firstname"`
	Surname          string    `json:"surname"`
	Gender           string    `json:"gender"`
	Birthdate        time.Time `json:"birthdate"`
	TechnicalGrade   int       `json:"technical_grade"`
	PerformanceGrade *string   `json:"performance_grade,omitempty"`
	Weight           *float64  `json:"weight,omitempty"`
	Category         string    `json:"category,omitempty"` // derived, not stored
}

type Training struct {
	ID                int       `json:"id"`
	Title             string    `json:"title"`
	Description       string    `json:"description,omitempty"`
	Place             string    `json:"place,omitempty"`
	StartTime         time.Time `json:"start_time"`
	EndTime           time.Time `json:"end_time"`
	MaxAttendance     *int      `json:"max_attendance,omitempty"`
	MinTechnicalGrade *int      `json:"min_technical_grade,omitempty"`
	SeriesID          *int      `json:"series_id,omitempty"`
}

type Competition struct {
	ID                int       `json:"id"`
	Title             string    `json:"title"`
	Description       string    `json:"description,omitempty"`
	Place             string    `json:"place,omitempty"`
	StartTime         time.Time `json:"start_time"`
	EndTime           time.Time `json:"end_time"`
	MinTechnicalGrade *int      `json:"min_technical_grade,omitempty"`
}

// Group is a named collection of people: members for training groups,
// competitors for competition groups. Membership lives in a join relation.
type Group struct {
	ID          int    `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

func hasRole(roles []string, role string) bool {
	for _, r := range roles {
		if r == role {
			return true
		}
	}
	return false
}

// TechnicalGradeText renders the ordered grade integer as kyu/dan text:
// 0..7 map to 8.kyu..1.kyu, 8 and above to 1.dan upward.
func TechnicalGradeText(grade int) string {
	if grade < 8 {
		return fmt.Sprintf("%d. kyu", 8-grade)
	}
	return fmt.Sprintf("%d. dan", grade-7)
}

// ageAt returns completed years between birthdate and now.
func ageAt(birthdate, now time.Time) int {
	years := now.Year() - birthdate.Year()
	if birthdate.AddDate(years, 0, 0).After(now) {
		years--
	}
	return years
}
