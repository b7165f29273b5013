package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type lecturePayload struct {
	Title    string `json:"lectureTitle" validate:"required"`
	Duration int    `json:"lectureDuration" validate:"gte=0"`
}

type coursePayload struct {
	Title    string           `json:"courseTitle" validate:"required,max=200"`
	Discount float64          `json:"discount" validate:"gte=0,lte=100"`
	Lectures []lecturePayload `json:"lectures" validate:"dive"`
}

func TestValidateStructReportsJSONNames(t *testing.T) {
	v := NewValidator()

	err := v.ValidateStruct(coursePayload{Discount: 120, Lectures: []lecturePayload{{Duration: -1}}})
	require.Error(t, err)

	fields := FormatValidationErrors(err)
	assert.Equal(t, "courseTitle is required", fields["courseTitle"])
	assert.Equal(t, "discount must be less than or equal to 100", fields["discount"])
	assert.Contains(t, fields, "lectures[0].lectureTitle")
	assert.Contains(t, fields, "lectures[0].lectureDuration")
}

func TestSummaryIsSorted(t *testing.T) {
	v := NewValidator()
	err := v.ValidateStruct(coursePayload{Discount: -1})

	assert.Equal(t, "courseTitle is required; discount must be greater than or equal to 0", Summary(err))
}

func TestSanitizeString(t *testing.T) {
	assert.Equal(t, "hello", SanitizeString("  hel\x00lo \n"))
}

func TestSanitizeRichText(t *testing.T) {
	cases := map[string]string{
		`<p>Learn <strong>Go</strong></p>`:                         `<p>Learn <strong>Go</strong></p>`,
		`<p onclick="x()">Hi<script>alert(1)</script></p>`:         `<p>Hi</p>`,
		`<a href="javascript:alert(1)">x</a>`:                      `<a>x</a>`,
		`<a href="https://go.dev" target="_blank">go</a>`:          `<a href="https://go.dev" rel="noopener noreferrer">go</a>`,
		`<div><img src=x onerror=alert(1)>text &amp; more</div>`:  `text &amp; more`,
		`line<br>break`:                                           `line<br />break`,
		`<style>p{}</style><iframe src="https://evil"></iframe>ok`: `ok`,
	}
	for in, want := range cases {
		assert.Equal(t, want, SanitizeRichText(in), in)
	}
}
