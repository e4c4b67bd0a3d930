package thaw

import (
	"fmt"
	"slices"
	"strings"

	"github.com/input-output-hk/catalyst-forge-libs/aws/s3copy/errors"
	"github.com/input-output-hk/catalyst-forge-libs/aws/s3copy/s3types"
)

// Rule is the restore request sent for one archive tier.
type Rule struct {
	Days  int
	Speed s3types.RestoreSpeed
}

var defaultRules = map[s3types.ArchiveTier]Rule{
	s3types.TierGlacierFlexibleRetrieval:      {Days: 1, Speed: s3types.RestoreSpeedBulk},
	s3types.TierGlacierDeepArchive:            {Days: 1, Speed: s3types.RestoreSpeedStandard},
	s3types.TierIntelligentTieringArchive:     {Days: 1, Speed: s3types.RestoreSpeedBulk},
	s3types.TierIntelligentTieringDeepArchive: {Days: 1, Speed: s3types.RestoreSpeedStandard},
}

// Deep archive tiers have no expedited retrieval.
var allowedSpeeds = map[s3types.ArchiveTier][]s3types.RestoreSpeed{
	s3types.TierGlacierFlexibleRetrieval: {
		s3types.RestoreSpeedBulk, s3types.RestoreSpeedStandard, s3types.RestoreSpeedExpedited,
	},
	s3types.TierGlacierDeepArchive: {
		s3types.RestoreSpeedBulk, s3types.RestoreSpeedStandard,
	},
	s3types.TierIntelligentTieringArchive: {
		s3types.RestoreSpeedBulk, s3types.RestoreSpeedStandard, s3types.RestoreSpeedExpedited,
	},
	s3types.TierIntelligentTieringDeepArchive: {
		s3types.RestoreSpeedBulk, s3types.RestoreSpeedStandard,
	},
}

// Tiers lists the archive tiers in policy order.
var Tiers = []s3types.ArchiveTier{
	s3types.TierGlacierFlexibleRetrieval,
	s3types.TierGlacierDeepArchive,
	s3types.TierIntelligentTieringArchive,
	s3types.TierIntelligentTieringDeepArchive,
}

// DefaultRule returns the rule used for tier when the caller overrides nothing.
func DefaultRule(tier s3types.ArchiveTier) Rule {
	return defaultRules[tier]
}

// AllowedSpeeds returns the restore speeds tier accepts.
func AllowedSpeeds(tier s3types.ArchiveTier) []s3types.RestoreSpeed {
	return slices.Clone(allowedSpeeds[tier])
}

// overrides returns the caller's days and speed for tier.
func overrides(policy s3types.ThawPolicy, tier s3types.ArchiveTier) (*int, *s3types.RestoreSpeed) {
	switch tier {
	case s3types.TierGlacierFlexibleRetrieval:
		return policy.GlacierFlexibleRetrievalThawDays, policy.GlacierFlexibleRetrievalThawSpeed
	case s3types.TierGlacierDeepArchive:
		return policy.GlacierDeepArchiveThawDays, policy.GlacierDeepArchiveThawSpeed
	case s3types.TierIntelligentTieringArchive:
		return policy.IntelligentTieringArchiveThawDays, policy.IntelligentTieringArchiveThawSpeed
	case s3types.TierIntelligentTieringDeepArchive:
		return policy.IntelligentTieringDeepArchiveThawDays, policy.IntelligentTieringDeepArchiveThawSpeed
	default:
		return nil, nil
	}
}

// RuleFor applies the caller's overrides for tier on top of its defaults,
// field by field.
func RuleFor(policy s3types.ThawPolicy, tier s3types.ArchiveTier) Rule {
	rule := DefaultRule(tier)
	days, speed := overrides(policy, tier)
	if days != nil {
		rule.Days = *days
	}
	if speed != nil {
		rule.Speed = *speed
	}
	return rule
}

// ValidatePolicy rejects day counts below one and speeds a tier does not offer.
func ValidatePolicy(policy s3types.ThawPolicy) error {
	for _, tier := range Tiers {
		days, speed := overrides(policy, tier)

		if days != nil && *days <= 0 {
			return errors.NewError("validateThawPolicy", errors.ErrInvalidThawPolicy).
				WithMessage(fmt.Sprintf("%sThawDays must be a positive number of days, got %d", tier, *days))
		}

		if speed != nil && !slices.Contains(allowedSpeeds[tier], *speed) {
			return errors.NewError("validateThawPolicy", errors.ErrInvalidThawPolicy).
				WithMessage(fmt.Sprintf("%sThawSpeed must be one of %s, got %q",
					tier, joinSpeeds(allowedSpeeds[tier]), *speed))
		}
	}
	return nil
}

func joinSpeeds(speeds []s3types.RestoreSpeed) string {
	names := make([]string, len(speeds))
	for i, s := range speeds {
		names[i] = string(s)
	}
	return strings.Join(names, ", ")
}

// TierOf returns the archive tier of an object, or TierNone if it is
// readable without a restore.
func TierOf(meta *s3types.ObjectMetadata) s3types.ArchiveTier {
	switch meta.StorageClass {
	case s3types.StorageClassGlacier:
		return s3types.TierGlacierFlexibleRetrieval
	case s3types.StorageClassDeepArchive:
		return s3types.TierGlacierDeepArchive
	case s3types.StorageClassIntelligentTiering:
		switch meta.ArchiveStatus {
		case s3types.ArchiveStatusArchiveAccess:
			return s3types.TierIntelligentTieringArchive
		case s3types.ArchiveStatusDeepArchiveAccess:
			return s3types.TierIntelligentTieringDeepArchive
		}
	}
	return s3types.TierNone
}

// Classify derives the thaw state of an object from its HEAD metadata.
// A restore marker wins over the storage class: archived objects keep
// their class after a restore completes.
func Classify(meta *s3types.ObjectMetadata) s3types.ThawState {
	switch {
	case strings.Contains(meta.Restore, `ongoing-request="true"`):
		return s3types.ThawStateArchivedRestoring
	case meta.Restore != "":
		return s3types.ThawStateArchivedRestored
	case TierOf(meta) != s3types.TierNone:
		return s3types.ThawStateArchivedIdle
	default:
		return s3types.ThawStateActive
	}
}
