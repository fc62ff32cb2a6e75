package export

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"xsection-editor/internal/bank"
	"xsection-editor/internal/series"
)

func writeSurvey(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestOutPath(t *testing.T) {
	opts := Options{Policy: IncrementVersion, VersionToken: "v02"}
	assert.Equal(t, filepath.FromSlash("/data/reach_v02.csv"),
		OutPath(filepath.FromSlash("/data/reach.csv"), opts))
	assert.Equal(t, filepath.FromSlash("/data/reach_v02.csv"),
		OutPath(filepath.FromSlash("/data/reach_v01.csv"), opts),
		"an existing version token is replaced, not stacked")

	opts.Policy = InPlace
	assert.Equal(t, "/data/reach_v01.csv", OutPath("/data/reach_v01.csv", opts))
}

func TestExportFlagsOutsideRows(t *testing.T) {
	path := writeSurvey(t, "reach.csv", "x,y\n0,5\n1,4\n2,1\n3,4\n4,5\n")
	s, _, err := series.Load(path, true, series.DefaultComment)
	require.NoError(t, err)

	banks := bank.New()
	banks.Set(bank.Left, 1, 1)
	banks.Set(bank.Right, 3, 3)

	out, err := Export(s, banks, 0, Options{Policy: IncrementVersion, VersionToken: "v02"})
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(filepath.Dir(path), "reach_v02.csv"), out)

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 6)

	assert.True(t, strings.HasPrefix(lines[0], TrimColumn+","), "header leads with the flag column")
	assert.True(t, strings.HasPrefix(lines[1], FlagToken), "row before left bank is flagged")
	assert.False(t, strings.HasPrefix(lines[2], FlagToken), "on-bank row is active")
	assert.False(t, strings.HasPrefix(lines[3], FlagToken))
	assert.True(t, strings.HasPrefix(lines[5], FlagToken), "row past right bank is flagged")
}

func TestExportRoundTrip(t *testing.T) {
	path := writeSurvey(t, "reach.csv", "x,y\n0,5\n1,4\n2,1\n3,4\n4,5\n")
	s, _, err := series.Load(path, true, series.DefaultComment)
	require.NoError(t, err)

	banks := bank.New()
	banks.Set(bank.Left, 1, 1)
	banks.Set(bank.Right, 3, 3)

	out, err := Export(s, banks, 0, Options{Policy: IncrementVersion, VersionToken: "v02"})
	require.NoError(t, err)

	// Reloading the exported file restores the same points and banks.
	s2, info, err := series.Load(out, true, series.DefaultComment)
	require.NoError(t, err)
	require.Equal(t, s.NumRows(), s2.NumRows())
	assert.Equal(t, []int{0, 4}, info.FlaggedRows)

	xcol := 1 // after the prepended Trim column
	left, right, warn := s2.InferBanks(info.FlaggedRows, xcol)
	require.Empty(t, warn)
	require.NotNil(t, left)
	require.NotNil(t, right)
	assert.Equal(t, 1.0, left.X)
	assert.Equal(t, 3.0, right.X)
}

func TestExportReusesTrimColumn(t *testing.T) {
	path := writeSurvey(t, "reach_v02.csv", "x,y\n0,5\n1,4\n2,1\n")
	s, _, err := series.Load(path, true, series.DefaultComment)
	require.NoError(t, err)

	banks := bank.New()
	out1, err := Export(s, banks, 0, Options{Policy: InPlace})
	require.NoError(t, err)

	s2, _, err := series.Load(out1, true, series.DefaultComment)
	require.NoError(t, err)
	require.Equal(t, []string{TrimColumn, "x", "y"}, s2.ColumnNames())

	out2, err := Export(s2, banks, 1, Options{Policy: InPlace})
	require.NoError(t, err)

	s3, _, err := series.Load(out2, true, series.DefaultComment)
	require.NoError(t, err)
	assert.Equal(t, []string{TrimColumn, "x", "y"}, s3.ColumnNames(),
		"re-exporting does not stack a second Trim column")
}

func TestExportLeftmostZero(t *testing.T) {
	path := writeSurvey(t, "reach.csv", "x,y\n-3,5\n0,4\n5,1\n")
	s, _, err := series.Load(path, true, series.DefaultComment)
	require.NoError(t, err)

	out, err := Export(s, bank.New(), 0, Options{Policy: InPlace, LeftmostZero: true})
	require.NoError(t, err)

	s2, _, err := series.Load(out, true, series.DefaultComment)
	require.NoError(t, err)
	x0, _ := s2.Float(0, 1)
	x2, _ := s2.Float(2, 1)
	assert.Equal(t, 0.0, x0)
	assert.Equal(t, 8.0, x2)

	// The in-memory series is untouched.
	orig, _ := s.Float(0, 0)
	assert.Equal(t, -3.0, orig)
}

func TestStripFlag(t *testing.T) {
	assert.Equal(t, "0.5", StripFlag("!# 0.5"))
	assert.Equal(t, "0.5", StripFlag("# 0.5"))
	assert.Equal(t, "0.5", StripFlag("  ! 0.5"))
	assert.Equal(t, "0.5", StripFlag("0.5"))
}
