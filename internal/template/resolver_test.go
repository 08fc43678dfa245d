package template

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	perrors "github.com/procon-dev/procon/internal/errors"
	"github.com/procon-dev/procon/templates"
)

// writeTemplate creates a user template directory with the given files.
func writeTemplate(t *testing.T, dir string, files map[string]string) {
	t.Helper()
	for rel, content := range files {
		p := filepath.Join(dir, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
		require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
	}
}

func minimalBundled() fstest.MapFS {
	return fstest.MapFS{
		"default/main.cpp":       {Data: []byte("// bundled {{PROJECT_NAME}}\n")},
		"default/CMakeLists.txt": {Data: []byte("project({{PROJECT_NAME}})\n")},
	}
}

func TestResolve_BundledDefault(t *testing.T) {
	// Given: only the real bundled templates
	r := NewResolver(filepath.Join(t.TempDir(), "none"), templates.FS())

	// When: resolving the default template
	tmpl, err := r.Resolve("default")

	// Then: both required files are present and templated
	require.NoError(t, err)
	assert.Equal(t, OriginBundled, tmpl.Origin)
	assert.Equal(t, "bundled:default", tmpl.Location)
	assert.Equal(t, []string{"CMakeLists.txt", "main.cpp"}, tmpl.DestPaths())
	for _, f := range tmpl.Files {
		assert.True(t, f.Templated, f.Path)
	}
	main, ok := tmpl.File(MainSource)
	require.True(t, ok)
	assert.Contains(t, string(main.Content), "{{PROJECT_NAME}}")
}

func TestResolve_BundledAdvanced(t *testing.T) {
	r := NewResolver("", templates.FS())

	tmpl, err := r.Resolve("advanced")

	require.NoError(t, err)
	readme, ok := tmpl.File("README.md")
	require.True(t, ok, "README.md.tmpl should be renamed")
	assert.Equal(t, "README.md.tmpl", readme.Path)
	assert.True(t, readme.Templated)

	header, ok := tmpl.File("lib/template.hpp")
	require.True(t, ok)
	assert.False(t, header.Templated)

	_, ok = tmpl.File("input.txt")
	assert.True(t, ok)
}

func TestResolve_UserShadowsBundled(t *testing.T) {
	// Given: a user template sharing the bundled name
	userDir := t.TempDir()
	writeTemplate(t, filepath.Join(userDir, "default"), map[string]string{
		"main.cpp":       "// user {{PROJECT_NAME}}\n",
		"CMakeLists.txt": "project(user)\n",
		"notes.txt":      "extra\n",
	})
	r := NewResolver(userDir, minimalBundled())

	// When: resolving that name
	tmpl, err := r.Resolve("default")

	// Then: the user's files win
	require.NoError(t, err)
	assert.Equal(t, OriginUser, tmpl.Origin)
	assert.Equal(t, filepath.Join(userDir, "default"), tmpl.Location)
	main, _ := tmpl.File(MainSource)
	assert.Equal(t, "// user {{PROJECT_NAME}}\n", string(main.Content))
	assert.Equal(t, []string{"CMakeLists.txt", "main.cpp", "notes.txt"}, tmpl.DestPaths())
}

func TestResolve_NotFoundListsBothLocations(t *testing.T) {
	userDir := t.TempDir()
	r := NewResolver(userDir, minimalBundled())

	_, err := r.Resolve("fast")

	require.Error(t, err)
	assert.Equal(t, perrors.ErrCodeTemplateNotFound, perrors.GetCode(err))
	assert.Contains(t, err.Error(), filepath.Join(userDir, "fast"))
	assert.Contains(t, err.Error(), "bundled:fast")
	assert.Equal(t, perrors.ExitTemplateNotFound, perrors.ExitCode(err))
}

func TestResolve_MissingRequiredFile(t *testing.T) {
	userDir := t.TempDir()
	writeTemplate(t, filepath.Join(userDir, "broken"), map[string]string{
		"main.cpp": "int main() {}\n",
	})
	r := NewResolver(userDir, nil)

	_, err := r.Resolve("broken")

	require.Error(t, err)
	assert.Equal(t, perrors.ErrCodeMissingRequiredFile, perrors.GetCode(err))
	assert.Contains(t, err.Error(), BuildConfig)
}

func TestResolve_RequiredFileMustBeAtRoot(t *testing.T) {
	userDir := t.TempDir()
	writeTemplate(t, filepath.Join(userDir, "nested"), map[string]string{
		"main.cpp":           "int main() {}\n",
		"sub/CMakeLists.txt": "project(x)\n",
	})
	r := NewResolver(userDir, nil)

	_, err := r.Resolve("nested")

	assert.Equal(t, perrors.ErrCodeMissingRequiredFile, perrors.GetCode(err))
}

func TestResolve_Exclusions(t *testing.T) {
	// Given: a template with VCS metadata, dotfiles, editor leftovers and an ignore file
	userDir := t.TempDir()
	writeTemplate(t, filepath.Join(userDir, "t"), map[string]string{
		"main.cpp":         "m\n",
		"CMakeLists.txt":   "c\n",
		".git/HEAD":        "ref\n",
		".hidden":          "h\n",
		"CVS/Entries":      "e\n",
		"_darcs/format":    "d\n",
		"main.cpp~":        "backup\n",
		".main.cpp.swp":    "swap\n",
		"notes.swp":        "swap\n",
		"build/out.o":      "obj\n",
		"src/util.o":       "obj\n",
		"docs/a.md":        "a\n",
		"docs/keep.txt":    "k\n",
		"src/util.hpp":     "u\n",
		IgnoreFileName:     "# local excludes\n\nbuild/\n*.o\ndocs/*.md\n",
		"sub/.gitignore":   "x\n",
		"sub/data/in1.txt": "1\n",
	})
	r := NewResolver(userDir, nil)

	// When: resolving
	tmpl, err := r.Resolve("t")

	// Then: only the real content is enumerated, in path order
	require.NoError(t, err)
	assert.Equal(t, []string{
		"CMakeLists.txt",
		"docs/keep.txt",
		"main.cpp",
		"src/util.hpp",
		"sub/data/in1.txt",
	}, tmpl.DestPaths())
}

func TestResolve_Idempotent(t *testing.T) {
	userDir := t.TempDir()
	writeTemplate(t, filepath.Join(userDir, "t"), map[string]string{
		"main.cpp":       "m\n",
		"CMakeLists.txt": "c\n",
		"a/b/c.txt":      "abc\n",
	})
	r := NewResolver(userDir, nil)

	first, err := r.Resolve("t")
	require.NoError(t, err)
	second, err := r.Resolve("t")
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestResolve_DuplicateDestination(t *testing.T) {
	userDir := t.TempDir()
	writeTemplate(t, filepath.Join(userDir, "t"), map[string]string{
		"main.cpp":       "m\n",
		"CMakeLists.txt": "c\n",
		"README.md":      "plain\n",
		"README.md.tmpl": "templated\n",
	})
	r := NewResolver(userDir, nil)

	_, err := r.Resolve("t")

	assert.Equal(t, perrors.ErrCodeInvalidInput, perrors.GetCode(err))
}

func TestResolve_TemplatedMainSource(t *testing.T) {
	userDir := t.TempDir()
	writeTemplate(t, filepath.Join(userDir, "t"), map[string]string{
		"main.cpp.tmpl":  "m\n",
		"CMakeLists.txt": "c\n",
	})
	r := NewResolver(userDir, nil)

	tmpl, err := r.Resolve("t")

	require.NoError(t, err)
	f, ok := tmpl.File(MainSource)
	require.True(t, ok)
	assert.True(t, f.Templated)
}

func TestResolve_SymlinkEscape(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("symlinks need privileges on windows")
	}

	// Given: a template linking to a file outside its root
	base := t.TempDir()
	outside := filepath.Join(base, "secret.txt")
	require.NoError(t, os.WriteFile(outside, []byte("secret"), 0o600))
	userDir := filepath.Join(base, "templates")
	dir := filepath.Join(userDir, "evil")
	writeTemplate(t, dir, map[string]string{"main.cpp": "m\n", "CMakeLists.txt": "c\n"})
	require.NoError(t, os.Symlink(outside, filepath.Join(dir, "leak.txt")))

	// When: resolving
	_, err := NewResolver(userDir, nil).Resolve("evil")

	// Then: the link is refused
	require.Error(t, err)
	assert.Equal(t, perrors.ErrCodeSymlinkEscape, perrors.GetCode(err))
	assert.Equal(t, perrors.ExitSymlinkEscape, perrors.ExitCode(err))
}

func TestResolve_SymlinkInsideRootIsFollowed(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("symlinks need privileges on windows")
	}

	userDir := t.TempDir()
	dir := filepath.Join(userDir, "linked")
	writeTemplate(t, dir, map[string]string{
		"main.cpp":          "m\n",
		"CMakeLists.txt":    "c\n",
		"shared/common.hpp": "common\n",
	})
	require.NoError(t, os.Symlink(filepath.Join("shared", "common.hpp"), filepath.Join(dir, "common.hpp")))

	tmpl, err := NewResolver(userDir, nil).Resolve("linked")

	require.NoError(t, err)
	f, ok := tmpl.File("common.hpp")
	require.True(t, ok)
	assert.Equal(t, "common\n", string(f.Content))
}

func TestValidateName(t *testing.T) {
	tests := []struct {
		name  string
		input string
		valid bool
	}{
		{"plain", "default", true},
		{"with dash", "fast-io", true},
		{"empty", "", false},
		{"dot", ".", false},
		{"dotdot", "..", false},
		{"hidden", ".git", false},
		{"slash", "a/b", false},
		{"backslash", `a\b`, false},
		{"traversal", "../x", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateName(tt.input)
			if tt.valid {
				assert.NoError(t, err)
			} else {
				assert.Equal(t, perrors.ErrCodeInvalidInput, perrors.GetCode(err))
			}
		})
	}
}

func TestList(t *testing.T) {
	// Given: bundled default and advanced, user default and mine
	userDir := t.TempDir()
	writeTemplate(t, filepath.Join(userDir, "default"), map[string]string{"main.cpp": "m"})
	writeTemplate(t, filepath.Join(userDir, "mine"), map[string]string{"main.cpp": "m"})
	writeTemplate(t, filepath.Join(userDir, ".cache"), map[string]string{"x": "x"})
	require.NoError(t, os.WriteFile(filepath.Join(userDir, "stray.txt"), []byte("x"), 0o644))
	bundled := minimalBundled()
	bundled["advanced/main.cpp"] = &fstest.MapFile{Data: []byte("m")}

	// When: listing
	entries, err := NewResolver(userDir, bundled).List()

	// Then: names are merged and shadowing is reported
	require.NoError(t, err)
	require.Len(t, entries, 3)
	assert.Equal(t, Entry{Name: "advanced", Origin: OriginBundled, Location: "bundled:advanced"}, entries[0])
	assert.Equal(t, "default", entries[1].Name)
	assert.Equal(t, OriginUser, entries[1].Origin)
	assert.True(t, entries[1].Shadows)
	assert.Equal(t, "mine", entries[2].Name)
	assert.False(t, entries[2].Shadows)
}

func TestList_MissingUserDir(t *testing.T) {
	entries, err := NewResolver(filepath.Join(t.TempDir(), "missing"), minimalBundled()).List()

	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "default", entries[0].Name)
}
