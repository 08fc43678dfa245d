package project

import "strings"

// Placeholders replaced in templated files. Replacement is literal; there is
// no escaping and no expression syntax.
const (
	PlaceholderProjectName  = "{{PROJECT_NAME}}"
	PlaceholderCppStandard  = "{{CPP_STANDARD}}"
	PlaceholderCMakeVersion = "{{CMAKE_VERSION}}"
)

// Vars are the placeholder values for one materialization.
type Vars struct {
	ProjectName  string
	CppStandard  string
	CMakeVersion string
}

func (v Vars) replacer() *strings.Replacer {
	return strings.NewReplacer(
		PlaceholderProjectName, v.ProjectName,
		PlaceholderCppStandard, v.CppStandard,
		PlaceholderCMakeVersion, v.CMakeVersion,
	)
}

// Substitute replaces every placeholder in content. All other bytes are
// left unchanged.
func (v Vars) Substitute(content []byte) []byte {
	return []byte(v.replacer().Replace(string(content)))
}
