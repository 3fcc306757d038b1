package dbctx

import (
	"context"

	"gorm.io/gorm"
)

// Context bundles a request context with an optional GORM transaction.
type Context struct {
	Ctx context.Context
	Tx  *gorm.DB

	// callbacks of the outermost transaction opened through Transaction
	afterCommit *[]func()
}

// New returns a Context bound to ctx without a transaction.
func New(ctx context.Context) Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return Context{Ctx: ctx}
}

// WithTx returns a copy of c that runs its statements on tx.
func (c Context) WithTx(tx *gorm.DB) Context {
	return Context{Ctx: c.Context(), Tx: tx, afterCommit: c.afterCommit}
}

func (c Context) Context() context.Context {
	if c.Ctx == nil {
		return context.Background()
	}
	return c.Ctx
}

// Conn returns the transaction if one is open, otherwise db, bound to the context.
func (c Context) Conn(db *gorm.DB) *gorm.DB {
	t := c.Tx
	if t == nil {
		t = db
	}
	return t.WithContext(c.Context())
}

// OnCommit runs fn once the outermost transaction commits. Without a
// transaction fn runs right away. Inside a transaction that was not opened
// through Transaction nobody can report the commit, so fn is dropped.
func (c Context) OnCommit(fn func()) {
	switch {
	case c.Tx == nil:
		fn()
	case c.afterCommit != nil:
		*c.afterCommit = append(*c.afterCommit, fn)
	}
}

// Transaction runs fn in a transaction on db. When c already holds one, fn
// runs in a savepoint and its OnCommit callbacks move to the outer
// transaction once the savepoint is released; a rolled back savepoint
// discards them. Otherwise the callbacks run after the commit, in
// registration order.
func Transaction(db *gorm.DB, c Context, fn func(Context) error) error {
	if c.Tx != nil {
		var pending []func()
		err := c.Tx.WithContext(c.Context()).Transaction(func(tx *gorm.DB) error {
			return fn(Context{Ctx: c.Context(), Tx: tx, afterCommit: &pending})
		})
		if err != nil {
			return err
		}
		// savepoint dirilis, serahkan ke pemilik transaksi luar
		for _, cb := range pending {
			c.OnCommit(cb)
		}
		return nil
	}

	var callbacks []func()
	err := db.WithContext(c.Context()).Transaction(func(tx *gorm.DB) error {
		return fn(Context{Ctx: c.Context(), Tx: tx, afterCommit: &callbacks})
	})
	if err != nil {
		return err
	}
	for _, cb := range callbacks {
		cb()
	}
	return nil
}
