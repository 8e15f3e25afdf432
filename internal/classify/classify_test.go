package classify

import (
	"errors"
	"testing"

	"github.com/jonathan/resume-editor/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		request string
		want    types.EditType
	}{
		{"Add AWS to skills", types.EditSkills},
		{"Make my summary shorter", types.EditSummary},
		{"remove pipe characters before the summary", types.EditHeader},
		{"put my phone number at the top of the page", types.EditHeader},
		{"Clean up the title line", types.EditHeader},
		{"Rewrite the cover letter to sound warmer", types.EditCoverLetter},
		{"mention my summary in the cover letter", types.EditCoverLetter},
		{"Add my GPA", types.EditEducation},
		{"remove the additional info section", types.EditProjects},
		{"Make my experience bullets more technical", types.EditExperiences},
		{"swap the first and second jobs", types.EditExperiences},
		{"SKILLS: add Rust", types.EditSkills},
		{"Add email marketing to my skills", types.EditSkills},
		{"Add LinkedIn Ads to skills", types.EditSkills},
		{"add phone support experience to my work history", types.EditExperiences},
		{"Add Kafka to my tech stack", types.EditSkills},
		{"add my LinkedIn to the header", types.EditHeader},
		{"move my email above the summary", types.EditHeader},
		{"improve the data pipeline wording", types.EditUnknown},
		{"make it better", types.EditUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.request, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.request))
		})
	}
}

func TestSectionFor(t *testing.T) {
	section, ok := SectionFor(types.EditCoverLetter)
	assert.True(t, ok)
	assert.Equal(t, "cover_letter", section)

	_, ok = SectionFor(types.EditUnknown)
	assert.False(t, ok)
}

func TestCheckScope(t *testing.T) {
	tests := []struct {
		request string
		want    Scope
	}{
		{"change the template to two columns", ScopeStructural},
		{"use a smaller font", ScopeStructural},
		{"reduce the margins", ScopeStructural},
		{"fix the LaTeX in my header", ScopeMarkup},
		{`replace \textbf with italics`, ScopeMarkup},
		{"add a macro for my name", ScopeMarkup},
		{"wrap the title in <b> tags", ScopeMarkup},
		{"Change the font to Helvetica", ScopeStructural},
		{"switch to a two-column layout", ScopeStructural},
		{"make the margins narrower", ScopeStructural},
		{"Add AWS to skills", ""},
		{"I know context managers", ""},
		{"Add Go templates to my skills", ""},
		{"Add Figma layouts and font pairing to my projects", ""},
	}

	for _, tt := range tests {
		t.Run(tt.request, func(t *testing.T) {
			err := CheckScope(tt.request)
			if tt.want == "" {
				assert.NoError(t, err)
				return
			}
			var scopeErr *ScopeError
			require.True(t, errors.As(err, &scopeErr))
			assert.Equal(t, tt.want, scopeErr.Scope)
			assert.Contains(t, err.Error(), "not supported through this path")
		})
	}
}

func TestSplitCompound(t *testing.T) {
	tests := []struct {
		request string
		want    []string
	}{
		{"Add AWS to skills", []string{"Add AWS to skills"}},
		{"add Go and SQL to skills", []string{"add Go and SQL to skills"}},
		{"Add AWS to skills. Make my summary shorter.", []string{"Add AWS to skills", "Make my summary shorter"}},
		{"add Go to skills; shorten the summary", []string{"add Go to skills", "shorten the summary"}},
		{"add Go to skills also remove pipes from the header", []string{"add Go to skills", "remove pipes from the header"}},
		{"add Go to skills and shorten my summary", []string{"add Go to skills", "shorten my summary"}},
		{"  ", nil},
	}
	for _, tt := range tests {
		t.Run(tt.request, func(t *testing.T) {
			assert.Equal(t, tt.want, SplitCompound(tt.request))
		})
	}
}
