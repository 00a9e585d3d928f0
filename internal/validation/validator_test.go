package validation_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vitpintodas/comem-travel-log-api/internal/domain"
	"github.com/vitpintodas/comem-travel-log-api/internal/validation"
)

func check(t *testing.T, entity string, s any) *domain.ValidationError {
	t.Helper()
	verr := domain.NewValidationError(entity)
	require.NoError(t, validation.Check(verr, s))
	return verr
}

func TestCheck_ValidUser(t *testing.T) {
	verr := check(t, "User", &domain.User{Name: "jdoe-42"})

	assert.Empty(t, verr.Errors)
}

func TestCheck_UserName(t *testing.T) {
	tests := []struct {
		name string
		kind string
	}{
		{"", "required"},
		{"ab", "minlength"},
		{strings.Repeat("a", 26), "maxlength"},
		{"john doe", "regexp"},
		{"-john", "regexp"},
		{"john--doe", "regexp"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			verr := check(t, "User", &domain.User{Name: tc.name})

			require.Contains(t, verr.Errors, "name")
			assert.Equal(t, tc.kind, verr.Errors["name"].Kind)
			assert.Equal(t, "name", verr.Errors["name"].Path)
		})
	}
}

func TestCheck_UserNameIgnoresCase(t *testing.T) {
	verr := check(t, "User", &domain.User{Name: "John-Doe"})

	assert.Empty(t, verr.Errors)
}

func TestCheck_TripMessages(t *testing.T) {
	verr := check(t, "Trip", &domain.Trip{Title: "ab"})

	assert.Equal(t, "Path `title` (`ab`) is shorter than the minimum allowed length (3).", verr.Errors["title"].Message)
	assert.Equal(t, "Path `description` is required.", verr.Errors["description"].Message)
}

func TestCheck_PlaceNestedLocation(t *testing.T) {
	verr := check(t, "Place", &domain.Place{
		Name:        "Lausanne",
		Description: "Lakeside city",
		Location:    domain.Point{Longitude: 200, Latitude: -91},
		PictureURL:  "short",
	})

	require.Contains(t, verr.Errors, "location.longitude")
	assert.Equal(t, "max", verr.Errors["location.longitude"].Kind)
	require.Contains(t, verr.Errors, "location.latitude")
	assert.Equal(t, "min", verr.Errors["location.latitude"].Kind)
	assert.Equal(t, "minlength", verr.Errors["pictureUrl"].Kind)
}

func TestCheck_EmptyPictureURLIsAllowed(t *testing.T) {
	verr := check(t, "Place", &domain.Place{Name: "Lausanne", Description: "Lakeside city"})

	assert.Empty(t, verr.Errors)
}

func TestCheck_NotAStruct(t *testing.T) {
	err := validation.Check(domain.NewValidationError("X"), 42)

	assert.Error(t, err)
}
