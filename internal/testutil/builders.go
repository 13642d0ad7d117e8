// Package testutil provides testing utilities and helpers for the academy web app.
package testutil

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/brightpath/academy-ui-api/internal/domain/model"
)

// ProfileRequestBuilder provides a fluent interface for building CreateProfileRequest objects for testing.
type ProfileRequestBuilder struct {
	req *model.CreateProfileRequest
}

// NewProfileRequest creates a new ProfileRequestBuilder with sensible defaults.
func NewProfileRequest() *ProfileRequestBuilder {
	suffix := time.Now().UnixNano()
	return &ProfileRequestBuilder{
		req: &model.CreateProfileRequest{
			UserID:    fmt.Sprintf("user-%d", suffix),
			FirstName: "Test",
			LastName:  "User",
			Email:     fmt.Sprintf("user-%d@example.com", suffix),
		},
	}
}

// WithUserID sets the IdP subject identifier.
func (b *ProfileRequestBuilder) WithUserID(userID string) *ProfileRequestBuilder {
	b.req.UserID = userID
	return b
}

// WithEmail sets the email address.
func (b *ProfileRequestBuilder) WithEmail(email string) *ProfileRequestBuilder {
	b.req.Email = email
	return b
}

// WithRole sets the role column value.
func (b *ProfileRequestBuilder) WithRole(role string) *ProfileRequestBuilder {
	b.req.Role = &role
	return b
}

// WithNoRole clears the role column value.
func (b *ProfileRequestBuilder) WithNoRole() *ProfileRequestBuilder {
	b.req.Role = nil
	return b
}

// WithAttributes sets the attributes JSON.
func (b *ProfileRequestBuilder) WithAttributes(raw string) *ProfileRequestBuilder {
	b.req.Attributes = json.RawMessage(raw)
	return b
}

// Build returns the constructed request.
func (b *ProfileRequestBuilder) Build() model.CreateProfileRequest {
	return *b.req
}

// CourseRequestBuilder provides a fluent interface for building CreateCourseRequest objects for testing.
type CourseRequestBuilder struct {
	req *model.CreateCourseRequest
}

// NewCourseRequest creates a new CourseRequestBuilder with sensible defaults.
func NewCourseRequest(instructorID string) *CourseRequestBuilder {
	return &CourseRequestBuilder{
		req: &model.CreateCourseRequest{
			Title:        fmt.Sprintf("course-%d", time.Now().UnixNano()),
			InstructorID: instructorID,
		},
	}
}

// WithTitle sets the course title.
func (b *CourseRequestBuilder) WithTitle(title string) *CourseRequestBuilder {
	b.req.Title = title
	return b
}

// WithCategory sets the category ID.
func (b *CourseRequestBuilder) WithCategory(categoryID string) *CourseRequestBuilder {
	b.req.CategoryID = &categoryID
	return b
}

// WithPublished sets the published flag.
func (b *CourseRequestBuilder) WithPublished(published bool) *CourseRequestBuilder {
	b.req.Published = &published
	return b
}

// Build returns the constructed request.
func (b *CourseRequestBuilder) Build() model.CreateCourseRequest {
	return *b.req
}
