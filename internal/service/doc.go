// Package service implements the business operations of the social feed
// service on top of the repository layer.
//
// Mutating operations that span more than one row take an explicit
// tx pgx.Tx parameter. The transaction boundary itself lives in
// database.DB.WithTransaction and is owned by the caller, typically an
// HTTP handler:
//
//	var post *domain.Post
//	err := db.WithTransaction(ctx, func(tx pgx.Tx) error {
//	    var txErr error
//	    post, txErr = postService.Create(ctx, tx, input)
//	    return txErr
//	})
//	if err == nil {
//	    postService.NotifyCreated(ctx, post)
//	}
//
// Calling a tx-requiring operation with a nil tx returns a
// domain.TxMisuseError rather than silently writing outside the
// transaction.
//
// NotifyCreated-style methods publish domain events and record metrics.
// They run after commit, so a failed publish never rolls back state.
package service
