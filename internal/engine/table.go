package engine

import (
	"github.com/jonathan/resume-editor/internal/editing"
	"github.com/jonathan/resume-editor/internal/types"
)

// route is the dispatch entry for one EditType
type route struct {
	section string
	editors []editing.Named
}

// routes maps each editable EditType to its section and deterministic editors.
// Adding a section means adding an entry here.
var routes = map[types.EditType]route{
	types.EditSummary:     {section: types.SectionSummary, editors: editing.For(types.SectionSummary)},
	types.EditExperiences: {section: types.SectionExperiences, editors: editing.For(types.SectionExperiences)},
	types.EditSkills:      {section: types.SectionSkills, editors: editing.For(types.SectionSkills)},
	types.EditProjects:    {section: types.SectionProjects, editors: editing.For(types.SectionProjects)},
	types.EditEducation:   {section: types.SectionEducation, editors: editing.For(types.SectionEducation)},
	types.EditHeader:      {section: types.SectionHeader, editors: editing.For(types.SectionHeader)},
	types.EditCoverLetter: {section: types.SectionCoverLetter, editors: editing.For(types.SectionCoverLetter)},
}

func routeFor(t types.EditType) (route, bool) {
	r, ok := routes[t]
	return r, ok
}
