package golf

import "time"

const HoleCount = 18

type ParticipantType string

const (
	Registered ParticipantType = "registered"
	Guest      ParticipantType = "guest"
)

type User struct {
	ID          string      `json:"uid"`
	Email       string      `json:"email"`
	Name        string      `json:"name"`
	Handicap    float64     `json:"handicap"`
	Preferences Preferences `json:"preferences"`
	CreatedAt   time.Time   `json:"createdAt"`
	UpdatedAt   time.Time   `json:"updatedAt"`
}

type Preferences struct {
	DefaultTee       string        `json:"defaultTee" validate:"required"`
	ScoreDisplayMode string        `json:"scoreDisplayMode" validate:"oneof=stroke net"`
	Notifications    Notifications `json:"notifications"`
}

type Notifications struct {
	Email bool `json:"email"`
	Push  bool `json:"push"`
}

// DefaultPreferences is what a freshly registered user starts with.
func DefaultPreferences() Preferences {
	return Preferences{
		DefaultTee:       "Regular",
		ScoreDisplayMode: "stroke",
		Notifications:    Notifications{Email: true},
	}
}

type Tee struct {
	Name   string `json:"name"`
	Color  string `json:"color"`
	Gender string `json:"gender"` // men|women|unisex
}

type TeeRating struct {
	CourseRating float64 `json:"courseRating"`
	SlopeRating  int     `json:"slopeRating"`
}

type Course struct {
	ID           string               `json:"id"`
	Name         string               `json:"name"`
	NameKana     string               `json:"nameKana"`
	Address      string               `json:"address"`
	Prefecture   string               `json:"prefecture"`
	City         string               `json:"city"`
	PostalCode   string               `json:"postalCode"`
	Phone        string               `json:"phone"`
	Website      string               `json:"website,omitempty"`
	HolesCount   int                  `json:"holesCount"`
	ParTotal     int                  `json:"parTotal"`
	YardageTotal int                  `json:"yardageTotal"`
	Tees         []Tee                `json:"tees"`
	Rating       map[string]TeeRating `json:"rating,omitempty"`
	Facilities   []string             `json:"facilities"`
	IsActive     bool                 `json:"isActive"`
	Holes        []CourseHole         `json:"holes,omitempty"`
	CreatedAt    time.Time            `json:"createdAt"`
	UpdatedAt    time.Time            `json:"updatedAt"`
}

type CourseHole struct {
	CourseID    string         `json:"courseId"`
	HoleNumber  int            `json:"holeNumber"`
	Par         int            `json:"par"`
	Handicap    int            `json:"handicap"`
	Yardage     map[string]int `json:"yardage"`
	Description string         `json:"description,omitempty"`
	Hazards     []string       `json:"hazards,omitempty"`
}

// Par returns the par of the given hole, or 0 if the course has no data for it.
func (c Course) Par(hole int) int {
	for _, h := range c.Holes {
		if h.HoleNumber == hole {
			return h.Par
		}
	}
	return 0
}

type HoleScore struct {
	HoleNumber        int   `json:"holeNumber" validate:"min=1,max=18"`
	Par               int   `json:"par" validate:"oneof=3 4 5"`
	Strokes           int   `json:"strokes" validate:"required,min=1,max=20"`
	Putts             *int  `json:"putts,omitempty" validate:"omitempty,min=0,max=10"`
	FairwayHit        *bool `json:"fairwayHit,omitempty"`
	GreenInRegulation *bool `json:"greenInRegulation,omitempty"`
	Penalties         *int  `json:"penalties,omitempty" validate:"omitempty,min=0,max=10"`
}

type Participant struct {
	UserID     string          `json:"userId,omitempty"`
	Name       string          `json:"name" validate:"required,max=50"`
	Type       ParticipantType `json:"type" validate:"oneof=registered guest"`
	Handicap   *float64        `json:"handicap,omitempty" validate:"omitempty,min=-10,max=54"`
	TotalScore *int            `json:"totalScore,omitempty"`
}

type Round struct {
	ID           string        `json:"id"`
	UserID       string        `json:"userId"`
	CourseID     string        `json:"courseId"`
	CourseName   string        `json:"courseName"`
	PlayDate     string        `json:"playDate"`
	StartTime    string        `json:"startTime"`
	Weather      string        `json:"weather,omitempty"`
	Temperature  *float64      `json:"temperature,omitempty"`
	WindSpeed    *float64      `json:"windSpeed,omitempty"`
	TeeName      string        `json:"teeName"`
	TotalScore   int           `json:"totalScore"`
	TotalPar     int           `json:"totalPar"`
	Scores       []HoleScore   `json:"scores"`
	Participants []Participant `json:"participants"`
	Memo         string        `json:"memo,omitempty"`
	IsCompleted  bool          `json:"isCompleted"`
	CreatedAt    time.Time     `json:"createdAt"`
	UpdatedAt    time.Time     `json:"updatedAt"`
}

const DateLayout = "2006-01-02"

// ParsePlayDate reads a play date as a local calendar date.
func ParsePlayDate(s string) (time.Time, error) {
	return time.ParseInLocation(DateLayout, s, time.Local)
}
