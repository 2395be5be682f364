package drivestore

import (
	"context"
	"errors"
)

// ErrStoreUnavailable wraps transport or backend failures that survived
// the retry budget.
var ErrStoreUnavailable = errors.New("folder store unavailable")

// Hierarchy is the folder/document surface case provisioning needs.
//
// CopyAndRenameDocument leaves the copy in the template's original
// location; MoveDocument relocates it afterwards. The two are separate so
// template selection stays independent of final placement. MoveDocument
// must read the document's current parent set and replace all of it: the
// backing store may model membership as a multi-parent association, and
// assuming a single known prior parent leaves stale links behind.
type Hierarchy interface {
	CreateSubfolder(ctx context.Context, parentID, name string) (string, error)
	CopyAndRenameDocument(ctx context.Context, templateID, newName string) (string, error)
	MoveDocument(ctx context.Context, documentID, toFolderID string) error
}
