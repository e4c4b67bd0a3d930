package validation

import (
	"strings"

	"github.com/input-output-hk/catalyst-forge-libs/aws/s3copy/errors"
	"github.com/input-output-hk/catalyst-forge-libs/aws/s3copy/s3types"
)

// WildcardSuffix marks a source key as "every object below this folder".
const WildcardSuffix = "/*"

// batchIndex is the ValidationError index of batch-level fields.
const batchIndex = -1

// ValidateRequest checks the batch settings and then every item in order,
// returning the first rule broken as a *errors.ValidationError.
func ValidateRequest(batch s3types.BatchInput, items []s3types.SourceItem) error {
	if err := ValidateDestinationFolderKey(batch.DestinationFolderKey); err != nil {
		return err
	}

	if batch.MaximumExpansion <= 0 {
		return &errors.ValidationError{
			Kind:    errors.KindMaximumExpansionInvalid,
			Index:   batchIndex,
			Message: "maximumExpansion must be a positive integer",
		}
	}

	for i, item := range items {
		if err := ValidateItem(i, item); err != nil {
			return err
		}
	}

	return nil
}

// ValidateDestinationFolderKey checks a destination folder: empty (bucket
// root) or slash terminated, and never traversing upwards.
func ValidateDestinationFolderKey(key string) error {
	if key != "" && !strings.HasSuffix(key, "/") {
		return &errors.ValidationError{
			Kind:    errors.KindDestinationFolderKeyInvalid,
			Index:   batchIndex,
			Key:     key,
			Message: "destinationFolderKey must be a slash terminated string or the empty string",
		}
	}

	if hasPathTraversal(key) {
		return &errors.ValidationError{
			Kind:    errors.KindDestinationFolderKeyInvalid,
			Index:   batchIndex,
			Key:     key,
			Message: "destinationFolderKey cannot contain '..'",
		}
	}

	return nil
}

// ValidateItem checks a single source item at position index.
func ValidateItem(index int, item s3types.SourceItem) error {
	fail := func(kind errors.ValidationKind, message string) error {
		return &errors.ValidationError{
			Kind:    kind,
			Index:   index,
			Bucket:  item.SourceBucket,
			Key:     item.SourceKey,
			Message: message,
		}
	}

	if item.SourceBucket == "" {
		return fail(errors.KindSourceBucketInvalid, "sourceBucket must be specified as a string")
	}

	if item.SourceKey == "" {
		return fail(errors.KindSourceKeyInvalid, "sourceKey must be specified as a string")
	}

	if hasPathTraversal(item.SourceKey) {
		return fail(errors.KindSourceKeyInvalid, "sourceKey cannot contain '..'")
	}

	if item.SourceRootFolderKey != nil && item.DestinationRelativeFolderKey != nil {
		return fail(errors.KindMutuallyExclusiveFolders,
			"sourceRootFolderKey and destinationRelativeFolderKey cannot both be specified for a single source item")
	}

	if rel := item.DestinationRelativeFolderKey; rel != nil {
		switch {
		case !strings.HasSuffix(*rel, "/"):
			return fail(errors.KindDestinationRelativeFolderKeyInvalid,
				"if present, destinationRelativeFolderKey must have a trailing slash")
		case strings.HasPrefix(*rel, "/"):
			return fail(errors.KindDestinationRelativeFolderKeyInvalid,
				"destinationRelativeFolderKey cannot be an absolute path that starts with a slash")
		case hasPathTraversal(*rel):
			return fail(errors.KindDestinationRelativeFolderKeyInvalid,
				"destinationRelativeFolderKey cannot contain '..'")
		}
	}

	if root := item.SourceRootFolderKey; root != nil {
		switch {
		case !strings.HasSuffix(*root, "/"):
			return fail(errors.KindSourceRootFolderKeyInvalid,
				"if present, sourceRootFolderKey must have a trailing slash")
		case !strings.HasPrefix(item.SourceKey, *root):
			return fail(errors.KindSourceRootFolderKeyInvalid,
				"if present, sourceRootFolderKey must be a leading portion of the sourceKey")
		}
	}

	return nil
}

// IsWildcard reports whether a source key names a folder wildcard.
func IsWildcard(sourceKey string) bool {
	return strings.HasSuffix(sourceKey, WildcardSuffix)
}

// ValidateWildcardItem checks the rules that only apply to wildcard items:
// checksums and a source root cannot describe a whole expanded folder.
func ValidateWildcardItem(index int, item s3types.SourceItem) error {
	if item.SourceRootFolderKey != nil {
		return &errors.ValidationError{
			Kind:    errors.KindWildcardConflict,
			Index:   index,
			Bucket:  item.SourceBucket,
			Key:     item.SourceKey,
			Message: "cannot specify both a wildcard folder for a source and a sourceRootFolderKey",
		}
	}

	if item.Sums != nil {
		return &errors.ValidationError{
			Kind:    errors.KindWildcardConflict,
			Index:   index,
			Bucket:  item.SourceBucket,
			Key:     item.SourceKey,
			Message: "cannot specify both a wildcard folder and a sums field",
		}
	}

	return nil
}

// hasPathTraversal checks for parent directory segments in a key.
// Any ".." is rejected, matching how permissive downstream tools treat it.
func hasPathTraversal(key string) bool {
	return strings.Contains(key, "..")
}
