// Package dedup decides which concurrent writer may claim an email.
//
// Both indexes follow the same protocol: claim the email in the index first,
// then consult the store. A claimed email is only released after the write
// that used it has settled, so a second claimant always observes either the
// claim or the committed row.
package dedup

import "context"

// EmailChecker is the slice of the user store an index needs.
type EmailChecker interface {
	ExistsByEmail(ctx context.Context, email string) (bool, error)
}
