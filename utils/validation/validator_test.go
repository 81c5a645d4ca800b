package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type feedbackInput struct {
	CourseID   uint   `json:"course_id" validate:"required"`
	Rating     int    `json:"rating" validate:"required,gte=1,lte=5"`
	Difficulty string `json:"difficulty" validate:"required,oneof=easy just-right challenging difficult"`
}

func TestValidateStructReportsJSONNames(t *testing.T) {
	v := NewValidator()

	fields := v.ValidateStruct(feedbackInput{Rating: 9, Difficulty: "hard"})
	assert.Equal(t, "course_id is required", fields["course_id"])
	assert.Equal(t, "rating must be less than or equal to 5", fields["rating"])
	assert.Contains(t, fields["difficulty"], "must be one of")

	assert.Nil(t, v.ValidateStruct(feedbackInput{CourseID: 1, Rating: 5, Difficulty: "easy"}))
}

func TestSanitizeString(t *testing.T) {
	assert.Equal(t, "Intro", SanitizeString("  In\x00tro \n"))
}
