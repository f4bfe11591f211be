package config

import (
	"hash/fnv"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"
)

// FeatureFlags manages feature toggles and gradual rollouts.
// Supports per-user targeting, subscription tier targeting, and
// percentage-based experiments.
type FeatureFlags struct {
	mu sync.RWMutex

	// Core features
	features map[string]*Feature

	// Override rules (for testing/debugging)
	userOverrides map[string]map[string]bool // userID -> feature -> enabled
}

// Feature represents a single feature flag.
type Feature struct {
	Name        string
	Description string
	Enabled     bool

	// Rollout percentage (0-100)
	// Users are assigned based on hash of their ID
	RolloutPercent int

	// Tier targeting (e.g., "premium")
	// Empty means all tiers
	TargetTiers []string

	// Time-based activation
	EnabledFrom  *time.Time
	EnabledUntil *time.Time
}

// FeatureContext provides context for feature flag evaluation.
type FeatureContext struct {
	UserID string

	// Tier is the user's subscription tier ("free", "premium").
	Tier string
}

// Predefined feature flag names.
const (
	// === Recommendation strategies ===
	FeatureRecommendAlmostComplete    = "recommend.almost_complete"    // Close-to-finish achievements
	FeatureRecommendNextTier          = "recommend.next_tier"          // Next rarity tier targets
	FeatureRecommendCategoryDiversity = "recommend.category_diversity" // Underused exercise categories
	FeatureRecommendSeasonalTimely    = "recommend.seasonal_timely"    // Seasonal windows open now

	// === Progress pipeline ===
	FeatureProgressCache  = "progress.cache"  // Cache computed progress in Redis
	FeatureProgressEvents = "progress.events" // Publish completion events

	// === Background jobs ===
	FeatureSchedulerRefresh = "scheduler.refresh" // Periodic batch recomputation

	// === Experimental features ===
	FeatureExperimentalInsights = "experimental.workout_insights" // Workout trend insights
)

// LoadFeatureFlags loads feature flags from environment variables.
func LoadFeatureFlags() *FeatureFlags {
	ff := &FeatureFlags{
		features:      make(map[string]*Feature),
		userOverrides: make(map[string]map[string]bool),
	}

	ff.initializeDefaults()
	ff.loadFromEnvironment()

	return ff
}

// initializeDefaults sets up all features with default values.
func (ff *FeatureFlags) initializeDefaults() {
	// Recommendation strategies - all enabled, each with its own
	// kill-switch so a misbehaving strategy can be turned off live.
	ff.features[FeatureRecommendAlmostComplete] = &Feature{
		Name:           FeatureRecommendAlmostComplete,
		Description:    "Recommend achievements close to completion",
		Enabled:        true,
		RolloutPercent: 100,
	}

	ff.features[FeatureRecommendNextTier] = &Feature{
		Name:           FeatureRecommendNextTier,
		Description:    "Recommend achievements from the next rarity tier",
		Enabled:        true,
		RolloutPercent: 100,
	}

	ff.features[FeatureRecommendCategoryDiversity] = &Feature{
		Name:           FeatureRecommendCategoryDiversity,
		Description:    "Recommend achievements in underused categories",
		Enabled:        true,
		RolloutPercent: 100,
	}

	ff.features[FeatureRecommendSeasonalTimely] = &Feature{
		Name:           FeatureRecommendSeasonalTimely,
		Description:    "Recommend seasonal achievements whose window is open",
		Enabled:        true,
		RolloutPercent: 100,
	}

	// Progress pipeline
	ff.features[FeatureProgressCache] = &Feature{
		Name:           FeatureProgressCache,
		Description:    "Cache computed progress in Redis",
		Enabled:        true,
		RolloutPercent: 100,
	}

	ff.features[FeatureProgressEvents] = &Feature{
		Name:           FeatureProgressEvents,
		Description:    "Publish achievement completion events",
		Enabled:        true,
		RolloutPercent: 100,
	}

	// Background jobs
	ff.features[FeatureSchedulerRefresh] = &Feature{
		Name:           FeatureSchedulerRefresh,
		Description:    "Periodically recompute progress for active users",
		Enabled:        true,
		RolloutPercent: 100,
	}

	// Experimental features - disabled by default
	ff.features[FeatureExperimentalInsights] = &Feature{
		Name:           FeatureExperimentalInsights,
		Description:    "Workout trend insights",
		Enabled:        false,
		RolloutPercent: 0,
	}
}

// loadFromEnvironment loads feature flag overrides from env vars.
// Format: FEATURE_<NAME>=true|false|<percent>
// Example: FEATURE_RECOMMEND_SEASONAL_TIMELY=false
// Example: FEATURE_RECOMMEND_CATEGORY_DIVERSITY=50 (50% rollout)
func (ff *FeatureFlags) loadFromEnvironment() {
	for name, feature := range ff.features {
		envKey := featureNameToEnvKey(name)
		if val := os.Getenv(envKey); val != "" {
			// Try parsing as boolean
			if b, err := strconv.ParseBool(val); err == nil {
				feature.Enabled = b
				if b {
					feature.RolloutPercent = 100
				} else {
					feature.RolloutPercent = 0
				}
				continue
			}

			// Try parsing as percentage
			if p, err := strconv.Atoi(val); err == nil && p >= 0 && p <= 100 {
				feature.Enabled = p > 0
				feature.RolloutPercent = p
			}
		}
	}
}

// featureNameToEnvKey converts feature name to environment variable key.
// "recommend.next_tier" -> "FEATURE_RECOMMEND_NEXT_TIER"
func featureNameToEnvKey(name string) string {
	key := strings.ToUpper(name)
	key = strings.ReplaceAll(key, ".", "_")
	return "FEATURE_" + key
}

// IsEnabled checks if a feature is enabled for the given context.
func (ff *FeatureFlags) IsEnabled(featureName string, ctx *FeatureContext) bool {
	ff.mu.RLock()
	defer ff.mu.RUnlock()

	// Check user overrides first
	if ctx != nil && ctx.UserID != "" {
		if userOverrides, ok := ff.userOverrides[ctx.UserID]; ok {
			if enabled, ok := userOverrides[featureName]; ok {
				return enabled
			}
		}
	}

	feature, ok := ff.features[featureName]
	if !ok {
		return false
	}

	if !feature.Enabled {
		return false
	}

	// Check time-based activation
	now := time.Now()
	if feature.EnabledFrom != nil && now.Before(*feature.EnabledFrom) {
		return false
	}
	if feature.EnabledUntil != nil && now.After(*feature.EnabledUntil) {
		return false
	}

	// Check tier targeting
	if len(feature.TargetTiers) > 0 && ctx != nil && ctx.Tier != "" {
		tierMatch := false
		for _, tier := range feature.TargetTiers {
			if tier == ctx.Tier {
				tierMatch = true
				break
			}
		}
		if !tierMatch {
			return false
		}
	}

	// Check rollout percentage
	if feature.RolloutPercent < 100 && ctx != nil && ctx.UserID != "" {
		return ff.isInRollout(ctx.UserID, featureName, feature.RolloutPercent)
	}

	return feature.RolloutPercent > 0
}

// isInRollout determines if a user is in the rollout percentage.
// Uses consistent hashing so users stay in their bucket.
func (ff *FeatureFlags) isInRollout(userID, featureName string, percent int) bool {
	h := fnv.New32a()
	h.Write([]byte(featureName))
	h.Write([]byte(userID))
	hash := h.Sum32()

	// Map to 0-99 range
	bucket := int(hash % 100)

	return bucket < percent
}

// SetUserOverride sets a feature override for a specific user.
// Useful for testing and debugging.
func (ff *FeatureFlags) SetUserOverride(userID, featureName string, enabled bool) {
	ff.mu.Lock()
	defer ff.mu.Unlock()

	if _, ok := ff.userOverrides[userID]; !ok {
		ff.userOverrides[userID] = make(map[string]bool)
	}
	ff.userOverrides[userID][featureName] = enabled
}

// ClearUserOverrides removes all overrides for a user.
func (ff *FeatureFlags) ClearUserOverrides(userID string) {
	ff.mu.Lock()
	defer ff.mu.Unlock()
	delete(ff.userOverrides, userID)
}

// SetRolloutPercent updates the rollout percentage for a feature.
// Thread-safe for live updates.
func (ff *FeatureFlags) SetRolloutPercent(featureName string, percent int) error {
	ff.mu.Lock()
	defer ff.mu.Unlock()

	feature, ok := ff.features[featureName]
	if !ok {
		return ErrFeatureNotFound
	}

	if percent < 0 || percent > 100 {
		return ErrInvalidRolloutPercent
	}

	feature.RolloutPercent = percent
	feature.Enabled = percent > 0

	return nil
}

// EnableFeature enables a feature at 100% rollout.
func (ff *FeatureFlags) EnableFeature(featureName string) error {
	return ff.SetRolloutPercent(featureName, 100)
}

// DisableFeature disables a feature completely.
func (ff *FeatureFlags) DisableFeature(featureName string) error {
	return ff.SetRolloutPercent(featureName, 0)
}

// GetAllFeatures returns a copy of all feature configurations.
func (ff *FeatureFlags) GetAllFeatures() map[string]*Feature {
	ff.mu.RLock()
	defer ff.mu.RUnlock()

	result := make(map[string]*Feature, len(ff.features))
	for k, v := range ff.features {
		featureCopy := *v
		result[k] = &featureCopy
	}
	return result
}

// --- Errors ---

var (
	ErrFeatureNotFound       = &FeatureFlagError{Message: "feature not found"}
	ErrInvalidRolloutPercent = &FeatureFlagError{Message: "rollout percent must be 0-100"}
)

// FeatureFlagError represents a feature flag error.
type FeatureFlagError struct {
	Message string
}

func (e *FeatureFlagError) Error() string {
	return e.Message
}
