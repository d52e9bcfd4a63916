package pathresolver

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buildProjectSnapshot() *Snapshot {
	snap := Empty().WithRoots([]string{"/project"})
	snap = snap.AddModule("myapp", "/project/myapp/__init__.py", KindSource, "/project")
	snap = snap.AddModule("myapp.views", "/project/myapp/views.py", KindSource, "/project")
	snap = snap.AddModule("myapp.utils", "/project/myapp/utils/__init__.py", KindSource, "/project")
	snap = snap.AddModule("myapp.utils.helpers", "/project/myapp/utils/helpers.py", KindSource, "/project")
	snap = snap.AddModule("myapp.submodule.helper", "/project/myapp/submodule/helper.py", KindSource, "/project")
	snap = snap.AddModule("myapp.submodule.utils", "/project/myapp/submodule/utils.py", KindSource, "/project")
	snap = snap.AddModule("myapp.config.settings", "/project/myapp/config/settings.py", KindSource, "/project")
	snap = snap.AddModule("myapp.db.query", "/project/myapp/db/query.py", KindSource, "/project")
	return snap
}

func TestResolveRelativeImport_SingleDot(t *testing.T) {
	snap := buildProjectSnapshot()
	entry, err := GetImportsFromRelativePath(snap, "/project/myapp/submodule/helper.py", 1, "utils")
	require.NoError(t, err)
	assert.Equal(t, "myapp.submodule.utils", entry.DottedName)
}

func TestResolveRelativeImport_SingleDotNoSuffix(t *testing.T) {
	snap := buildProjectSnapshot()
	entry, err := GetImportsFromRelativePath(snap, "/project/myapp/submodule/helper.py", 1, "")
	require.NoError(t, err)
	assert.Equal(t, "myapp.submodule", entry.DottedName)
}

func TestResolveRelativeImport_TwoDots(t *testing.T) {
	snap := buildProjectSnapshot()
	entry, err := GetImportsFromRelativePath(snap, "/project/myapp/submodule/helper.py", 2, "config.settings")
	require.NoError(t, err)
	assert.Equal(t, "myapp.config.settings", entry.DottedName)
}

func TestResolveRelativeImport_TwoDotsNoSuffix(t *testing.T) {
	snap := buildProjectSnapshot()
	entry, err := GetImportsFromRelativePath(snap, "/project/myapp/submodule/helper.py", 2, "")
	require.NoError(t, err)
	assert.Equal(t, "myapp", entry.DottedName)
}

func TestResolveRelativeImport_TooManyDots(t *testing.T) {
	snap := buildProjectSnapshot()
	_, err := GetImportsFromRelativePath(snap, "/project/myapp/submodule/helper.py", 5, "db")
	require.Error(t, err)
	var outOfPackage *RelativeOutOfPackageError
	assert.ErrorAs(t, err, &outOfPackage)
}

func TestResolveRelativeImport_NotInRegistry(t *testing.T) {
	snap := buildProjectSnapshot()
	_, err := GetImportsFromRelativePath(snap, "/project/other/unregistered.py", 1, "thing")
	require.Error(t, err)
	var outOfPackage *RelativeOutOfPackageError
	assert.ErrorAs(t, err, &outOfPackage)
}

func TestGetImportsFromAbsoluteName_DirectHit(t *testing.T) {
	snap := buildProjectSnapshot()
	entry, err := GetImportsFromAbsoluteName(snap, "myapp.db.query", "/project/myapp/views.py")
	require.NoError(t, err)
	assert.Equal(t, "/project/myapp/db/query.py", entry.FilePath)
}

func TestGetImportsFromAbsoluteName_ProjectRootNormalization(t *testing.T) {
	snap := buildProjectSnapshot()
	entry, err := GetImportsFromAbsoluteName(snap, "db.query", "/project/myapp/views.py")
	require.NoError(t, err)
	assert.Equal(t, "myapp.db.query", entry.DottedName)
}

func TestGetImportsFromAbsoluteName_ThirdPartyNotFound(t *testing.T) {
	snap := buildProjectSnapshot()
	_, err := GetImportsFromAbsoluteName(snap, "django.db.models", "/project/myapp/views.py")
	require.Error(t, err)
	var notFound *NotFoundError
	assert.ErrorAs(t, err, &notFound)
}

func TestSnapshot_ImmutableAcrossMutation(t *testing.T) {
	base := Empty().WithRoots([]string{"/project"})
	before := base.AddModule("myapp", "/project/myapp/__init__.py", KindSource, "/project")

	_, ok := before.Lookup("myapp")
	require.True(t, ok)

	after := before.RemoveModule("/project/myapp/__init__.py")
	_, stillThere := before.Lookup("myapp")
	assert.True(t, stillThere, "removing from `after` must not affect `before`")

	_, goneFromAfter := after.Lookup("myapp")
	assert.False(t, goneFromAfter)
}

func TestSnapshot_StubLosesToSource(t *testing.T) {
	snap := Empty().WithRoots([]string{"/project"})
	snap = snap.AddModule("myapp.models", "/project/myapp/models.pyi", KindStub, "/project")
	snap = snap.AddModule("myapp.models", "/project/myapp/models.py", KindSource, "/project")

	entry, ok := snap.Lookup("myapp.models")
	require.True(t, ok)
	assert.Equal(t, KindSource, entry.Kind)
	assert.Equal(t, "/project/myapp/models.py", entry.FilePath)
}

func TestSnapshot_StubOrderDoesNotMatter(t *testing.T) {
	snap := Empty().WithRoots([]string{"/project"})
	snap = snap.AddModule("myapp.models", "/project/myapp/models.py", KindSource, "/project")
	snap = snap.AddModule("myapp.models", "/project/myapp/models.pyi", KindStub, "/project")

	entry, ok := snap.Lookup("myapp.models")
	require.True(t, ok)
	assert.Equal(t, KindSource, entry.Kind)
}

func TestSnapshot_EarliestRootWins(t *testing.T) {
	snap := Empty().WithRoots([]string{"/project/src", "/project/vendor"})
	snap = snap.AddModule("widgets", "/project/vendor/widgets.py", KindSource, "/project/vendor")
	snap = snap.AddModule("widgets", "/project/src/widgets.py", KindSource, "/project/src")

	entry, ok := snap.Lookup("widgets")
	require.True(t, ok)
	assert.Equal(t, "/project/src/widgets.py", entry.FilePath)
}

func TestGetImportsFromAbsoluteName_Ambiguous(t *testing.T) {
	snap := Empty().WithRoots([]string{"/project/a", "/project/b"})
	snap = snap.AddModule("shared", "/project/a/shared.py", KindSource, "/project/a")
	snap = snap.AddModule("shared", "/project/b/shared.py", KindSource, "/project/b")

	_, err := GetImportsFromAbsoluteName(snap, "shared", "/project/a/caller.py")
	require.Error(t, err)
	var ambiguous *AmbiguousPackageError
	assert.ErrorAs(t, err, &ambiguous)
}

func TestImportCache_MemoizesAcrossCalls(t *testing.T) {
	snap := buildProjectSnapshot()
	cache, err := NewImportCache(64)
	require.NoError(t, err)

	first, err := cache.ResolveAbsolute(snap, "myapp.db.query", "/project/myapp/views.py")
	require.NoError(t, err)
	second, err := cache.ResolveAbsolute(snap, "myapp.db.query", "/project/myapp/views.py")
	require.NoError(t, err)
	assert.Equal(t, first, second)

	newer := snap.RemoveModule("/project/myapp/db/query.py")
	_, err = cache.ResolveAbsolute(newer, "myapp.db.query", "/project/myapp/views.py")
	assert.Error(t, err, "a newer snapshot must not reuse the older snapshot's cache entry")
}
