package cmd

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kingrea/pathway/internal/pathway"
)

var projectFiles = map[string]string{
	"data/deanza/catalog.yaml": `
courses:
  MATH 1A:
    units: 5
  MATH 1B:
    units: 5
    prerequisites: MATH 1A
  ENGL 1A:
    units: 5
    tags: [GE_1A]
`,
	"data/articulation.yaml": `
sources:
  DEANZA:
    term_system: Quarter
    targets:
      UCSD:
        - code: MATH 20A
          blocks: [[MATH 1A]]
        - code: MATH 20B
          blocks: [[MATH 1B]]
`,
	"data/requirements.yaml": `
targets:
  UCSD:
    groups:
      - id: calculus
        number_required: 2
        codes: [MATH 20A, MATH 20B]
`,
	"data/ge_patterns.yaml": `
patterns:
  - id: IGETC
    requirements:
      - id: GE_1A
        min_courses: 1
        min_units: 3
`,
	".pathway/config.yaml": `
version: 1
run:
  source: DEANZA
  targets: [UCSD]
  ge_pattern: IGETC
  term_system: semester
  min_total_units: 13
sweep:
  target_sets:
    - [UCSD]
    - [UCLA]
`,
}

func writeProject(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	for name, content := range projectFiles {
		path := filepath.Join(dir, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(strings.TrimSpace(content)+"\n"), 0o644))
	}
	return dir
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := NewRootCommand()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestValidateReportsDataset(t *testing.T) {
	dir := writeProject(t)
	out, err := execute(t, "-C", dir, "validate")
	require.NoError(t, err)
	assert.Contains(t, out, "3 courses")
	assert.Contains(t, out, "1 articulated targets")
	assert.Contains(t, out, "1 GE patterns")
}

func TestValidateMissingCatalogFails(t *testing.T) {
	dir := writeProject(t)
	_, err := execute(t, "-C", dir, "validate", "--sources", "FOOTHILL")
	require.Error(t, err)
	assert.ErrorIs(t, err, pathway.ErrMissingData)
}

func TestPlanPrintsJSON(t *testing.T) {
	dir := writeProject(t)
	out, err := execute(t, "-C", dir, "plan", "--json", "--no-save")
	require.NoError(t, err)

	var plan pathway.Plan
	require.NoError(t, json.Unmarshal([]byte(out), &plan))
	assert.Equal(t, "complete", plan.Status)
	assert.Len(t, plan.Terms, 2)
	assert.Equal(t, 13.0, plan.TotalUnits)
	assert.True(t, plan.MeetsUnitFloor)
	assert.Equal(t, []string{"MATH 1B"}, plan.Terms[1].CourseIDs())

	_, err = os.Stat(filepath.Join(dir, ".pathway", "plans"))
	assert.True(t, os.IsNotExist(err), "no-save must not create the plans directory")
}

func TestPlanSavesAndJournals(t *testing.T) {
	dir := writeProject(t)
	out, err := execute(t, "-C", dir, "plan")
	require.NoError(t, err)
	assert.Contains(t, out, "saved:")

	saved := filepath.Join(dir, ".pathway", "plans", "deanza_ucsd_igetc.json")
	_, err = os.Stat(saved)
	require.NoError(t, err)

	journal, err := os.ReadFile(filepath.Join(dir, ".pathway", "logs", "journal.log"))
	require.NoError(t, err)
	assert.Contains(t, string(journal), "complete after 2 terms")
}

func TestPlanStrictFailsWhenIncomplete(t *testing.T) {
	dir := writeProject(t)
	_, err := execute(t, "-C", dir, "plan", "--no-save", "--strict", "--min-units", "40")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "stalled")
}

func TestPlanRequiresTargets(t *testing.T) {
	dir := writeProject(t)
	_, err := execute(t, "-C", dir, "plan", "--no-save", "-s", "DEANZA", "--config", filepath.Join(dir, "missing.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "at least one target")
}

func TestSweepSummarizes(t *testing.T) {
	dir := writeProject(t)
	out, err := execute(t, "-C", dir, "sweep", "--no-save", "--parallelism", "2")
	require.NoError(t, err)
	assert.Contains(t, out, "2 planned: 1 complete, 0 stalled, 0 aborted, 1 failed")
}

func TestInitCreatesConfig(t *testing.T) {
	dir := t.TempDir()
	out, err := execute(t, "-C", dir, "init")
	require.NoError(t, err)
	assert.Contains(t, out, filepath.Join(dir, ".pathway", "config.yaml"))
	for _, sub := range []string{"logs", "plans"} {
		info, err := os.Stat(filepath.Join(dir, ".pathway", sub))
		require.NoError(t, err)
		assert.True(t, info.IsDir())
	}
}
