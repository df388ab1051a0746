// Package access decides who may do what with a file record. The functions
// have no side effects; callers turn a false result into file.ErrUnauthorized.
package access

import "file-share-api/internal/domain/file"

// CanMutate reports whether callerID owns f. Anonymous callers never do.
func CanMutate(callerID string, f *file.File) bool {
	if f == nil || callerID == "" {
		return false
	}
	return callerID == f.OwnerID
}

// CanReadPublic holds for any record that was resolved by its share token:
// the token is the capability.
func CanReadPublic(f *file.File) bool {
	return f != nil
}

// CanListOwned guards owner-scoped reads, including lookups by id.
func CanListOwned(callerID string, f *file.File) bool {
	return CanMutate(callerID, f)
}
