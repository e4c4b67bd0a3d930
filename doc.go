// Package s3copy plans bulk copies between S3 buckets.
// It does not move any bytes: it turns a list of copy instructions into a
// fully resolved, destination-annotated object list, and gates the copy
// behind restores of archived objects.
//
// Key features:
//   - Input validation of every instruction before any request is sent
//   - Folder wildcards ("folder/*") expanded with a safety ceiling
//   - Three destination addressing modes: flat, root-mirrored, relative-placed
//   - Deterministic output order, sorted by destination key
//   - Restore issuance per archive tier with caller-overridable days and speed
//   - A tagged thaw result; StillThawing is the only retryable outcome
//
// Example usage:
//
//	client, err := s3copy.New(s3copy.WithRegion("ap-southeast-2"))
//	if err != nil {
//	    return err
//	}
//
//	objects, err := client.Resolve(ctx, s3types.ResolveRequest{
//	    BatchInput: s3types.BatchInput{DestinationFolderKey: "out/", MaximumExpansion: 1000},
//	    Items:      []s3types.SourceItem{{SourceBucket: "src", SourceKey: "run-1/*"}},
//	})
//	if err != nil {
//	    return err
//	}
//
//	result, err := client.Thaw(ctx, s3types.ThawRequest{Items: thawItems(objects)})
//	if err != nil {
//	    return err
//	}
//	if !result.Ready() {
//	    // call Thaw again later
//	}
package s3copy
