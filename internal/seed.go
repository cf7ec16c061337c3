package internal

import (
	"fmt"
	"time"

	"golf-tracker/internal/golf"
)

var teeYardage = map[string][3]int{ // par 3, 4, 5
	"Ladies":   {145, 300, 400},
	"Regular":  {175, 370, 500},
	"Back":     {195, 430, 570},
	"Champion": {215, 470, 630},
}

// SampleCourses returns the reference courses loaded by cmd/seed.
func SampleCourses(now time.Time) []golf.Course {
	courses := []golf.Course{
		{
			ID:           "dummy-course-1",
			Name:         "Test Golf Club",
			NameKana:     "てすとごるふくらぶ",
			Address:      "1-1-1 Test, Shibuya",
			Prefecture:   "Tokyo",
			City:         "Shibuya",
			PostalCode:   "150-0000",
			Phone:        "03-0000-0000",
			Website:      "https://example.com",
			HolesCount:   golf.HoleCount,
			ParTotal:     72,
			YardageTotal: 6500,
			Tees: []golf.Tee{
				{Name: "Ladies", Color: "red", Gender: "women"},
				{Name: "Regular", Color: "white", Gender: "unisex"},
				{Name: "Back", Color: "blue", Gender: "men"},
				{Name: "Champion", Color: "black", Gender: "men"},
			},
			Rating: map[string]golf.TeeRating{
				"Regular":  {CourseRating: 70.5, SlopeRating: 125},
				"Back":     {CourseRating: 72.0, SlopeRating: 130},
				"Champion": {CourseRating: 74.5, SlopeRating: 135},
			},
			Facilities: []string{"restaurant", "pro shop", "driving range", "locker room"},
			IsActive:   true,
		},
		{
			ID:           "dummy-course-2",
			Name:         "Sample Country Club",
			NameKana:     "さんぷるかんとりーくらぶ",
			Address:      "2-2-2 Sample, Yokohama",
			Prefecture:   "Kanagawa",
			City:         "Yokohama",
			PostalCode:   "220-0000",
			Phone:        "045-0000-0000",
			Website:      "https://sample-cc.example.com",
			HolesCount:   golf.HoleCount,
			ParTotal:     71,
			YardageTotal: 6200,
			Tees: []golf.Tee{
				{Name: "Ladies", Color: "red", Gender: "women"},
				{Name: "Regular", Color: "white", Gender: "unisex"},
				{Name: "Back", Color: "blue", Gender: "men"},
			},
			Rating: map[string]golf.TeeRating{
				"Regular": {CourseRating: 69.8, SlopeRating: 120},
				"Back":    {CourseRating: 71.2, SlopeRating: 125},
			},
			Facilities: []string{"restaurant", "pro shop", "driving range"},
			IsActive:   true,
		},
	}
	for i := range courses {
		c := &courses[i]
		c.CreatedAt, c.UpdatedAt = now, now
		c.Holes = sampleHoles(c.ID, c.ParTotal, c.Tees)
	}
	return courses
}

// sampleHoles lays out 18 holes around par 4 and lets the last hole absorb
// the difference to parTotal.
func sampleHoles(courseID string, parTotal int, tees []golf.Tee) []golf.CourseHole {
	holes := make([]golf.CourseHole, 0, golf.HoleCount)
	sum := 0
	for i := 1; i <= golf.HoleCount; i++ {
		par := 4
		switch {
		case i <= 6:
			par = [...]int{5, 4, 3}[i%3]
		case i > 12:
			par = [...]int{4, 5, 3}[i%3]
		}
		sum += par
		if i == golf.HoleCount {
			par = min(5, max(3, par+parTotal-sum))
		}

		yardage := make(map[string]int, len(tees))
		for _, t := range tees {
			yardage[t.Name] = teeYardage[t.Name][par-3]
		}
		holes = append(holes, golf.CourseHole{
			CourseID:    courseID,
			HoleNumber:  i,
			Par:         par,
			Handicap:    (i*7)%golf.HoleCount + 1,
			Yardage:     yardage,
			Description: fmt.Sprintf("Hole %d", i),
			Hazards:     []string{},
		})
	}
	return holes
}
