package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFeatureFlags_Defaults(t *testing.T) {
	ff := LoadFeatureFlags()

	assert.True(t, ff.IsEnabled(FeatureTutorSummarization, nil))
	assert.True(t, ff.IsEnabled(FeatureTutorSyllabusCache, nil))
	assert.True(t, ff.IsEnabled(FeatureCatalogListing, nil))
	assert.False(t, ff.IsEnabled(FeatureExperimentalStreaming, nil))
	assert.False(t, ff.IsEnabled("does.not.exist", nil))
}

func TestFeatureFlags_EnvironmentOverride(t *testing.T) {
	t.Setenv("FEATURE_TUTOR_SUMMARIZATION", "false")
	t.Setenv("FEATURE_EXPERIMENTAL_STREAMING", "true")

	ff := LoadFeatureFlags()

	assert.False(t, ff.IsEnabled(FeatureTutorSummarization, nil))
	assert.True(t, ff.IsEnabled(FeatureExperimentalStreaming, nil))
}

func TestFeatureFlags_EnvironmentPercentRollout(t *testing.T) {
	t.Setenv("FEATURE_EXPERIMENTAL_ANALYTICS", "50")

	ff := LoadFeatureFlags()
	features := ff.GetAllFeatures()

	require.Contains(t, features, FeatureExperimentalAnalytics)
	assert.True(t, features[FeatureExperimentalAnalytics].Enabled)
	assert.Equal(t, 50, features[FeatureExperimentalAnalytics].RolloutPercent)
}

func TestFeatureFlags_RolloutBucketsAreConsistent(t *testing.T) {
	ff := LoadFeatureFlags()
	require.NoError(t, ff.SetRolloutPercent(FeatureExperimentalStreaming, 50))

	ctx := &FeatureContext{StudentID: "student-1"}
	first := ff.IsEnabled(FeatureExperimentalStreaming, ctx)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, ff.IsEnabled(FeatureExperimentalStreaming, ctx))
	}
}

func TestFeatureFlags_StudentOverrideWins(t *testing.T) {
	ff := LoadFeatureFlags()
	ctx := &FeatureContext{StudentID: "student-1"}

	ff.SetStudentOverride("student-1", FeatureTutorSummarization, false)
	assert.False(t, ff.IsEnabled(FeatureTutorSummarization, ctx))
	assert.True(t, ff.IsEnabled(FeatureTutorSummarization, &FeatureContext{StudentID: "student-2"}))

	ff.ClearStudentOverrides("student-1")
	assert.True(t, ff.IsEnabled(FeatureTutorSummarization, ctx))
}

func TestFeatureFlags_AdminSeesEverything(t *testing.T) {
	ff := LoadFeatureFlags()

	assert.True(t, ff.IsEnabled(FeatureExperimentalStreaming, &FeatureContext{IsAdmin: true}))
}

func TestFeatureFlags_SetRolloutPercent(t *testing.T) {
	ff := LoadFeatureFlags()

	assert.ErrorIs(t, ff.SetRolloutPercent("does.not.exist", 50), ErrFeatureNotFound)
	assert.ErrorIs(t, ff.SetRolloutPercent(FeatureCatalogListing, 150), ErrInvalidRolloutPercent)

	require.NoError(t, ff.DisableFeature(FeatureCatalogListing))
	assert.False(t, ff.IsEnabled(FeatureCatalogListing, nil))

	require.NoError(t, ff.EnableFeature(FeatureCatalogListing))
	assert.True(t, ff.IsEnabled(FeatureCatalogListing, nil))
}

func TestFeatureFlags_CourseTargeting(t *testing.T) {
	ff := LoadFeatureFlags()

	ff.mu.Lock()
	ff.features[FeatureTutorSummarization].TargetCourses = []string{"course-1"}
	ff.mu.Unlock()

	assert.True(t, ff.IsEnabled(FeatureTutorSummarization, &FeatureContext{CourseID: "course-1"}))
	assert.False(t, ff.IsEnabled(FeatureTutorSummarization, &FeatureContext{CourseID: "course-2"}))
}
