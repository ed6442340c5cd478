package domain

type ActivityCategory string

const (
	CategoryAcademic  ActivityCategory = "academic"
	CategoryVolunteer ActivityCategory = "volunteer"
	CategorySports    ActivityCategory = "sports"
	CategoryArts      ActivityCategory = "arts"
	CategoryOther     ActivityCategory = "other"
)

// Bounds for an organizer-chosen point override on an approved complaint.
const (
	MinTrainingPoint = 0
	MaxTrainingPoint = 100
)

// DefaultTrainingPoint is awarded for categories without a table entry.
const DefaultTrainingPoint = 3

var categoryPoints = map[ActivityCategory]int{
	CategoryAcademic:  5,
	CategoryVolunteer: 7,
	CategorySports:    5,
	CategoryArts:      4,
	CategoryOther:     DefaultTrainingPoint,
}

// TrainingPointFor returns the default point value awarded when attendance
// at an activity of the given category is confirmed.
func TrainingPointFor(category ActivityCategory) int {
	if points, ok := categoryPoints[category]; ok {
		return points
	}

	return DefaultTrainingPoint
}

func ValidCategory(category ActivityCategory) bool {
	_, ok := categoryPoints[category]

	return ok
}
