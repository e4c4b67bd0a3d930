// Package destination computes where a source object lands in the destination bucket.
package destination

import (
	"path"
	"strings"

	"github.com/input-output-hk/catalyst-forge-libs/aws/s3copy/errors"
)

// Resolve computes the destination key of sourceKey.
//
// With a nil root the object keeps only its base name (flat copy). With a
// root the path below the root is preserved (root-mirrored copy). The
// relative folder, when not empty, is inserted between the destination
// folder and the name (relative-placed copy). The result never starts with
// a slash and has redundant slashes collapsed.
func Resolve(sourceKey string, root *string, destinationFolderKey, destinationRelativeFolderKey string) (string, error) {
	if sourceKey == "" || strings.HasSuffix(sourceKey, "/") {
		return "", errors.NewError("resolveDestination", errors.ErrInvalidObjectKey).
			WithKey(sourceKey).
			WithMessage("source key must name an object, not a folder")
	}

	name := path.Base(sourceKey)
	if root != nil {
		if !strings.HasPrefix(sourceKey, *root) {
			return "", errors.NewError("resolveDestination", errors.ErrInvalidObjectKey).
				WithKey(sourceKey).
				WithMessage("source key is not below root " + *root)
		}
		name = strings.TrimPrefix(sourceKey, *root)
	}

	joined := path.Join(destinationFolderKey, destinationRelativeFolderKey, name)
	return strings.TrimLeft(joined, "/"), nil
}
