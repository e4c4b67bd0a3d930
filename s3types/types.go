// Package s3types provides shared type definitions for the s3copy module.
package s3types

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/input-output-hk/catalyst-forge-libs/aws/s3copy/errors"
)

// StorageClass represents the S3 storage class for objects.
type StorageClass string

// Predefined S3 storage classes
const (
	// StorageClassStandard is the default S3 storage class and the value
	// reported when the store omits one
	StorageClassStandard StorageClass = "STANDARD"

	// StorageClassStandardIA provides infrequent access storage
	StorageClassStandardIA StorageClass = "STANDARD_IA"

	// StorageClassIntelligentTiering provides intelligent tiering storage
	StorageClassIntelligentTiering StorageClass = "INTELLIGENT_TIERING"

	// StorageClassGlacier is Glacier Flexible Retrieval (the API keeps the original name)
	StorageClassGlacier StorageClass = "GLACIER"

	// StorageClassDeepArchive provides Deep Archive storage
	StorageClassDeepArchive StorageClass = "DEEP_ARCHIVE"

	// StorageClassGlacierIR provides Glacier Instant Retrieval storage (readable without restore)
	StorageClassGlacierIR StorageClass = "GLACIER_IR"
)

// ArchiveStatus is the Intelligent-Tiering archive access tier of an object.
type ArchiveStatus string

const (
	// ArchiveStatusArchiveAccess is the Intelligent-Tiering Archive Access tier
	ArchiveStatusArchiveAccess ArchiveStatus = "ARCHIVE_ACCESS"

	// ArchiveStatusDeepArchiveAccess is the Intelligent-Tiering Deep Archive Access tier
	ArchiveStatusDeepArchiveAccess ArchiveStatus = "DEEP_ARCHIVE_ACCESS"
)

// RestoreSpeed is the retrieval tier of a restore request.
type RestoreSpeed string

const (
	// RestoreSpeedBulk is the slowest and cheapest retrieval tier
	RestoreSpeedBulk RestoreSpeed = "Bulk"

	// RestoreSpeedStandard is the default retrieval tier of the store
	RestoreSpeedStandard RestoreSpeed = "Standard"

	// RestoreSpeedExpedited is the fastest retrieval tier; not offered for deep archive tiers
	RestoreSpeedExpedited RestoreSpeed = "Expedited"
)

// ArchiveTier is an archival tier needing a restore before reads.
type ArchiveTier string

const (
	// TierNone marks an object readable without a restore
	TierNone ArchiveTier = ""

	// TierGlacierFlexibleRetrieval is the GLACIER storage class
	TierGlacierFlexibleRetrieval ArchiveTier = "glacierFlexibleRetrieval"

	// TierGlacierDeepArchive is the DEEP_ARCHIVE storage class
	TierGlacierDeepArchive ArchiveTier = "glacierDeepArchive"

	// TierIntelligentTieringArchive is INTELLIGENT_TIERING in ARCHIVE_ACCESS
	TierIntelligentTieringArchive ArchiveTier = "intelligentTieringArchive"

	// TierIntelligentTieringDeepArchive is INTELLIGENT_TIERING in DEEP_ARCHIVE_ACCESS
	TierIntelligentTieringDeepArchive ArchiveTier = "intelligentTieringDeepArchive"
)

// Object represents an S3 object with its basic metadata, as returned by a listing.
type Object struct {
	// Key is the S3 object key (path)
	Key string

	// Size is the object size in bytes
	Size int64

	// LastModified is when the object was last modified
	LastModified time.Time

	// ETag is the S3 entity tag for the object
	ETag string

	// StorageClass is the S3 storage class, empty if the store omitted it
	StorageClass string
}

// ObjectMetadata contains the HEAD details of a single S3 object.
type ObjectMetadata struct {
	// ContentLength is the size of the object in bytes
	ContentLength int64

	// LastModified is when the object was last modified
	LastModified time.Time

	// ETag is the S3 entity tag for the object
	ETag string

	// StorageClass is the S3 storage class, defaulted to STANDARD
	StorageClass StorageClass

	// ArchiveStatus is set for Intelligent-Tiering objects in an archive tier
	ArchiveStatus ArchiveStatus

	// Restore is the raw x-amz-restore marker, empty if no restore was ever requested
	Restore string
}

// BatchInput holds the batch-wide settings of a resolution call.
type BatchInput struct {
	// DestinationFolderKey is "" (bucket root) or a slash terminated folder
	DestinationFolderKey string `json:"destinationFolderKey"`

	// MaximumExpansion is the most objects a single wildcard may expand to
	MaximumExpansion int `json:"maximumExpansion"`
}

// SourceItem is one copy instruction. Optional fields are pointers because
// their presence, not their value, is what the validation rules test.
type SourceItem struct {
	// SourceBucket is the bucket holding the object
	SourceBucket string `json:"sourceBucket"`

	// SourceKey is an object key, or a folder followed by "/*"
	SourceKey string `json:"sourceKey"`

	// SourceRootFolderKey mirrors the directory structure below this root
	SourceRootFolderKey *string `json:"sourceRootFolderKey,omitempty"`

	// DestinationRelativeFolderKey is spliced between the destination folder and the name
	DestinationRelativeFolderKey *string `json:"destinationRelativeFolderKey,omitempty"`

	// Sums is an opaque checksum assertion carried through unchanged
	Sums *string `json:"sums,omitempty"`
}

// ResolveRequest is the input document of a resolution call.
type ResolveRequest struct {
	BatchInput BatchInput   `json:"BatchInput"`
	Items      []SourceItem `json:"Items"`
}

// ResolvedObject is one concrete object ready for copying.
type ResolvedObject struct {
	SourceBucket          string  `json:"sourceBucket"`
	SourceKey             string  `json:"sourceKey"`
	DestinationKey        string  `json:"destinationKey"`
	StorageClass          string  `json:"storageClass"`
	Size                  int64   `json:"size"`
	ETag                  string  `json:"etag"`
	LastModifiedISOString string  `json:"lastModifiedISOString"`
	Sums                  *string `json:"sums,omitempty"`
}

// ThawItem names one object to be gated.
type ThawItem struct {
	Bucket string `json:"bucket"`
	Key    string `json:"key"`
}

// ThawPolicy holds caller overrides of restore days and speed per archival
// tier. Nil fields fall back to the defaults of the tier.
type ThawPolicy struct {
	GlacierFlexibleRetrievalThawDays  *int          `json:"glacierFlexibleRetrievalThawDays,omitempty" yaml:"glacierFlexibleRetrievalThawDays,omitempty"`
	GlacierFlexibleRetrievalThawSpeed *RestoreSpeed `json:"glacierFlexibleRetrievalThawSpeed,omitempty" yaml:"glacierFlexibleRetrievalThawSpeed,omitempty"`

	GlacierDeepArchiveThawDays  *int          `json:"glacierDeepArchiveThawDays,omitempty" yaml:"glacierDeepArchiveThawDays,omitempty"`
	GlacierDeepArchiveThawSpeed *RestoreSpeed `json:"glacierDeepArchiveThawSpeed,omitempty" yaml:"glacierDeepArchiveThawSpeed,omitempty"`

	IntelligentTieringArchiveThawDays  *int          `json:"intelligentTieringArchiveThawDays,omitempty" yaml:"intelligentTieringArchiveThawDays,omitempty"`
	IntelligentTieringArchiveThawSpeed *RestoreSpeed `json:"intelligentTieringArchiveThawSpeed,omitempty" yaml:"intelligentTieringArchiveThawSpeed,omitempty"`

	IntelligentTieringDeepArchiveThawDays  *int          `json:"intelligentTieringDeepArchiveThawDays,omitempty" yaml:"intelligentTieringDeepArchiveThawDays,omitempty"`
	IntelligentTieringDeepArchiveThawSpeed *RestoreSpeed `json:"intelligentTieringDeepArchiveThawSpeed,omitempty" yaml:"intelligentTieringDeepArchiveThawSpeed,omitempty"`
}

// ThawRequest is the input document of a thaw-gate call.
type ThawRequest struct {
	Items      []ThawItem `json:"Items"`
	BatchInput ThawPolicy `json:"BatchInput"`
}

// ThawState classifies an object's readability.
type ThawState string

const (
	// ThawStateActive means the object is readable
	ThawStateActive ThawState = "active"

	// ThawStateArchivedIdle means the object is archived and no restore is running
	ThawStateArchivedIdle ThawState = "archived-idle"

	// ThawStateArchivedRestoring means a restore is in progress
	ThawStateArchivedRestoring ThawState = "archived-restoring"

	// ThawStateArchivedRestored means a restore finished; treated as active
	ThawStateArchivedRestored ThawState = "archived-restored"
)

// ThawDecision records what the gate concluded and did for one object.
type ThawDecision struct {
	Bucket string
	Key    string
	State  ThawState
	Tier   ArchiveTier

	// Days and Speed are set when a restore was issued
	Days  int
	Speed RestoreSpeed

	// Issued is true when this call sent a restore request
	Issued bool

	// Skipped is true when the probe failed and the object was left to the copy stage
	Skipped bool
}

// ThawStatus is the outcome of a thaw-gate call.
type ThawStatus string

const (
	// ThawStatusReady means every object is readable
	ThawStatusReady ThawStatus = "ready"

	// ThawStatusStillThawing means at least one object is being restored
	ThawStatusStillThawing ThawStatus = "still-thawing"
)

// ThawResult is the tagged outcome of a thaw-gate call.
type ThawResult struct {
	Status ThawStatus

	// Thawing is the number of objects being restored
	Thawing int

	// Total is the number of objects gated
	Total int

	// Items is the unchanged input, for pass-through to the copy stage
	Items []ThawItem

	// Decisions holds one entry per gated object, in input order
	Decisions []ThawDecision
}

// Ready reports whether all objects are readable.
func (r *ThawResult) Ready() bool {
	return r.Status == ThawStatusReady
}

// Err returns a *errors.StillThawingError when objects are still thawing,
// for callers that prefer an error to branching on Status.
func (r *ThawResult) Err() error {
	if r.Status != ThawStatusStillThawing {
		return nil
	}
	return &errors.StillThawingError{Thawing: r.Thawing, Total: r.Total}
}

// CanWriteRequest describes a destination write probe.
type CanWriteRequest struct {
	// DestinationBucket is the bucket to probe
	DestinationBucket string `json:"destinationBucket"`

	// DestinationFolderKey is "" or a slash terminated folder
	DestinationFolderKey string `json:"destinationFolderKey"`

	// MarkerRelativeKey is the marker object name below the folder
	MarkerRelativeKey string `json:"destinationStartCopyRelativeKey"`

	// RequiredRegion, when set, pins the probe to a region so a bucket
	// elsewhere answers with a redirect instead of being followed
	RequiredRegion string `json:"requiredRegion,omitempty"`
}

// Configuration types for functional options

// ClientConfig holds configuration for the s3copy client.
type ClientConfig struct {
	Region           string
	Endpoint         string
	MaxRetries       int
	Timeout          time.Duration
	ForcePathStyle   bool
	CustomAWSConfig  *aws.Config
	CustomHTTPClient *http.Client
	Logger           *slog.Logger
	Registerer       prometheus.Registerer
}

// Option is a functional option for configuring the s3copy client.
type Option func(*ClientConfig)
