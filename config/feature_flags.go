package config

import (
	"hash/fnv"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"
)

// FeatureFlags manages feature toggles for the monitoring surface.
// Supports gradual per-class rollout and time-based activation, so a
// new capability can be tried on a few rosters before the whole school.
type FeatureFlags struct {
	mu sync.RWMutex

	// Core features
	features map[string]*Feature

	// Override rules (for testing/debugging)
	classOverrides map[string]map[string]bool // class name -> feature -> enabled
}

// Feature represents a single feature flag.
type Feature struct {
	Name        string
	Description string
	Enabled     bool

	// Rollout percentage (0-100)
	// Classes are assigned based on hash of their name
	RolloutPercent int

	// Time-based activation
	EnabledFrom  *time.Time
	EnabledUntil *time.Time
}

// FeatureContext provides context for feature flag evaluation.
type FeatureContext struct {
	ClassName string // class the request concerns, if any
	IsAdmin   bool   // admin requests bypass rollout gating
}

// Predefined feature flag names.
const (
	// === Record Features ===
	FeatureRecordNarrative = "record.narrative" // attach generated narrative after save
	FeatureRecordExport    = "record.export"    // document export endpoint

	// === Synthesis Features ===
	FeatureSynthesisBulk = "synthesis.bulk" // admin bulk generation

	// === Roster Features ===
	FeatureRosterCustomClasses = "roster.custom_classes" // teacher-registered classes

	// === Cache Features ===
	FeatureCacheLists = "cache.lists" // Redis-backed record list cache
)

// LoadFeatureFlags loads feature flags from environment variables.
func LoadFeatureFlags() *FeatureFlags {
	ff := &FeatureFlags{
		features:       make(map[string]*Feature),
		classOverrides: make(map[string]map[string]bool),
	}

	ff.initializeDefaults()
	ff.loadFromEnvironment()

	return ff
}

// initializeDefaults sets up all features with default values.
func (ff *FeatureFlags) initializeDefaults() {
	ff.features[FeatureRecordNarrative] = &Feature{
		Name:           FeatureRecordNarrative,
		Description:    "Attach a generated narrative to saved records",
		Enabled:        true,
		RolloutPercent: 100,
	}

	ff.features[FeatureRecordExport] = &Feature{
		Name:           FeatureRecordExport,
		Description:    "Word-compatible document export",
		Enabled:        true,
		RolloutPercent: 100,
	}

	ff.features[FeatureSynthesisBulk] = &Feature{
		Name:           FeatureSynthesisBulk,
		Description:    "Administrative bulk record generation",
		Enabled:        true,
		RolloutPercent: 100,
	}

	ff.features[FeatureRosterCustomClasses] = &Feature{
		Name:           FeatureRosterCustomClasses,
		Description:    "Teacher-registered custom classes",
		Enabled:        true,
		RolloutPercent: 100,
	}

	ff.features[FeatureCacheLists] = &Feature{
		Name:           FeatureCacheLists,
		Description:    "Redis-backed record list cache",
		Enabled:        true,
		RolloutPercent: 100,
	}
}

// loadFromEnvironment loads feature flag overrides from env vars.
// Format: FEATURE_<NAME>=true|false|<percent>
// Example: FEATURE_RECORD_NARRATIVE=false
// Example: FEATURE_SYNTHESIS_BULK=50 (50% rollout)
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
// "record.narrative" -> "FEATURE_RECORD_NARRATIVE"
func featureNameToEnvKey(name string) string {
	key := strings.ToUpper(name)
	key = strings.ReplaceAll(key, ".", "_")
	return "FEATURE_" + key
}

// IsEnabled checks if a feature is enabled for the given context.
func (ff *FeatureFlags) IsEnabled(featureName string, ctx *FeatureContext) bool {
	ff.mu.RLock()
	defer ff.mu.RUnlock()

	// Check class overrides first
	if ctx != nil && ctx.ClassName != "" {
		if overrides, ok := ff.classOverrides[ctx.ClassName]; ok {
			if enabled, ok := overrides[featureName]; ok {
				return enabled
			}
		}
	}

	feature, ok := ff.features[featureName]
	if !ok {
		return false
	}

	// Admins get all enabled features regardless of rollout
	if ctx != nil && ctx.IsAdmin {
		return feature.Enabled
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

	// Check rollout percentage
	if feature.RolloutPercent < 100 && ctx != nil && ctx.ClassName != "" {
		return ff.isInRollout(ctx.ClassName, featureName, feature.RolloutPercent)
	}

	return feature.RolloutPercent > 0
}

// isInRollout determines if a class is in the rollout percentage.
// Uses consistent hashing so classes stay in their bucket.
func (ff *FeatureFlags) isInRollout(className, featureName string, percent int) bool {
	h := fnv.New32a()
	h.Write([]byte(featureName))
	h.Write([]byte(className))
	hash := h.Sum32()

	bucket := int(hash % 100)
	return bucket < percent
}

// SetClassOverride sets a feature override for a specific class.
// Useful for testing and debugging.
func (ff *FeatureFlags) SetClassOverride(className, featureName string, enabled bool) {
	ff.mu.Lock()
	defer ff.mu.Unlock()

	if _, ok := ff.classOverrides[className]; !ok {
		ff.classOverrides[className] = make(map[string]bool)
	}
	ff.classOverrides[className][featureName] = enabled
}

// ClearClassOverrides removes all overrides for a class.
func (ff *FeatureFlags) ClearClassOverrides(className string) {
	ff.mu.Lock()
	defer ff.mu.Unlock()
	delete(ff.classOverrides, className)
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
