package reviews

import (
	"fmt"

	pkgerrors "github.com/Kai120789/marketplace/pkg/errors"
)

// Rating is a review score. Only values built by NewRating are valid.
type Rating int16

const (
	MinRating Rating = 1
	MaxRating Rating = 5
)

// NewRating accepts whole scores from 1 to 5.
func NewRating(value int) (Rating, error) {
	if value < int(MinRating) || value > int(MaxRating) {
		return 0, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("rating must be between %d and %d", MinRating, MaxRating)).
			WithDetails(map[string]string{"rating": "out of range"})
	}
	return Rating(value), nil
}

func (r Rating) Int() int {
	return int(r)
}
