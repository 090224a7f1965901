package vfs

import (
	"context"
	"fmt"

	"github.com/Clay-Ferguson/quanta-sub001/pkg/store/node"
)

// VerifyFolder checks the ordinal invariant for one folder: no two children
// share an ordinal. Returns nil when the folder is consistent.
func (e *Engine) VerifyFolder(ctx context.Context, folder string) error {
	children, err := e.nodes.ReadChildren(ctx, folder)
	if err != nil {
		return err
	}

	seen := make(map[int64]string, len(children))
	for _, child := range children {
		if other, dup := seen[child.Ordinal]; dup {
			return fmt.Errorf("duplicate ordinal %d in %s: %q and %q",
				child.Ordinal, folder, other, child.Name)
		}
		seen[child.Ordinal] = child.Name
	}
	return nil
}

// VerifyTree checks the ordinal invariant for every folder in the subtree
// rooted at folder.
func (e *Engine) VerifyTree(ctx context.Context, folder string) error {
	if err := e.VerifyFolder(ctx, folder); err != nil {
		return err
	}

	children, err := e.nodes.ReadChildren(ctx, folder)
	if err != nil {
		return err
	}
	for _, child := range children {
		if child.IsFolder() {
			if err := e.VerifyTree(ctx, node.JoinPath(folder, child.Name)); err != nil {
				return err
			}
		}
	}
	return nil
}
