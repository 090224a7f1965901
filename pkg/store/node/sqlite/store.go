// Package sqlite implements NodeStore on a single SQLite database file.
//
// This backend suits deployments that want the workspace in one inspectable
// file: the child index, ordinals and name uniqueness live in the relational
// schema, so external tooling can query or repair a workspace with plain SQL.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/Clay-Ferguson/quanta-sub001/pkg/store/node"
)

// schema is applied on every open; CREATE IF NOT EXISTS keeps it idempotent.
//
// The folder column stores the full containing-folder path, so a folder move
// is a single substr-rewrite UPDATE over the subtree (see rekeySubtree) and
// sibling listings are one indexed query. UNIQUE(folder, name) enforces name
// collisions at the storage layer.
const schema = `
CREATE TABLE IF NOT EXISTS nodes (
	id         TEXT PRIMARY KEY,
	folder     TEXT NOT NULL,
	name       TEXT NOT NULL,
	ordinal    INTEGER NOT NULL,
	kind       INTEGER NOT NULL,
	owner_id   INTEGER NOT NULL DEFAULT 0,
	content_id TEXT NOT NULL DEFAULT '',
	created    INTEGER NOT NULL,
	modified   INTEGER NOT NULL,
	UNIQUE(folder, name)
);
CREATE INDEX IF NOT EXISTS idx_nodes_folder ON nodes(folder);
`

// SQLiteNodeStore implements node.NodeStore on a SQLite database via the
// pure-Go modernc.org/sqlite driver.
//
// Thread Safety:
// The connection pool is limited to a single connection, which serializes
// writers and sidesteps SQLITE_BUSY under concurrent mutation. WAL mode
// keeps the file readable by outside tools while the store is open.
type SQLiteNodeStore struct {
	db *sql.DB
}

// Config contains configuration for creating a SQLite node store.
type Config struct {
	// Path is the database file path. ":memory:" creates a transient store.
	Path string `mapstructure:"path"`
}

// NewSQLiteNodeStore opens (or creates) the database and applies the schema.
func NewSQLiteNodeStore(ctx context.Context, config Config) (*SQLiteNodeStore, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", config.Path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("setting WAL mode: %w", err)
	}
	if _, err := db.ExecContext(ctx, "PRAGMA busy_timeout=5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("setting busy timeout: %w", err)
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("applying schema: %w", err)
	}

	return &SQLiteNodeStore{db: db}, nil
}

// row is the scan target for node queries.
type row struct {
	id        string
	folder    string
	name      string
	ordinal   int64
	kind      int
	ownerID   uint32
	contentID string
	created   int64
	modified  int64
}

const nodeColumns = "id, folder, name, ordinal, kind, owner_id, content_id, created, modified"

func scanRow(s interface{ Scan(...any) error }) (*row, error) {
	var r row
	err := s.Scan(&r.id, &r.folder, &r.name, &r.ordinal, &r.kind, &r.ownerID, &r.contentID, &r.created, &r.modified)
	if err != nil {
		return nil, err
	}
	return &r, nil
}

func (r *row) toNode() (*node.TreeNode, error) {
	id, err := uuid.Parse(r.id)
	if err != nil {
		return nil, fmt.Errorf("corrupt node id %q: %w", r.id, err)
	}
	return &node.TreeNode{
		ID:        id,
		Name:      r.name,
		Ordinal:   r.ordinal,
		Kind:      node.NodeKind(r.kind),
		OwnerID:   r.ownerID,
		ContentID: node.ContentID(r.contentID),
		Created:   time.Unix(0, r.created),
		Modified:  time.Unix(0, r.modified),
	}, nil
}

// querier abstracts *sql.DB and *sql.Tx for the read helpers.
type querier interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// getRow loads a node row by UUID.
func getRow(ctx context.Context, q querier, id uuid.UUID) (*row, error) {
	r, err := scanRow(q.QueryRowContext(ctx,
		"SELECT "+nodeColumns+" FROM nodes WHERE id = ?", id.String()))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, &node.StoreError{Code: node.ErrNotFound, Message: "node not found", Path: id.String()}
	}
	if err != nil {
		return nil, fmt.Errorf("reading node %s: %w", id, err)
	}
	return r, nil
}

// requireFolder verifies that path names an existing folder.
func requireFolder(ctx context.Context, q querier, path string) error {
	if path == "/" {
		return nil
	}
	parent, name := node.SplitPath(path)
	var kind int
	err := q.QueryRowContext(ctx,
		"SELECT kind FROM nodes WHERE folder = ? AND name = ?", parent, name).Scan(&kind)
	if errors.Is(err, sql.ErrNoRows) {
		return &node.StoreError{Code: node.ErrNotFound, Message: "folder not found", Path: path}
	}
	if err != nil {
		return fmt.Errorf("reading folder %s: %w", path, err)
	}
	if node.NodeKind(kind) != node.KindFolder {
		return &node.StoreError{Code: node.ErrNotFolder, Message: "not a folder", Path: path}
	}
	return nil
}

func validName(name string) error {
	if name == "" {
		return &node.StoreError{Code: node.ErrInvalidArgument, Message: "empty node name"}
	}
	if strings.Contains(name, "/") {
		return &node.StoreError{Code: node.ErrInvalidArgument, Message: "node name contains '/'", Path: name}
	}
	return nil
}

// withTx runs fn inside a transaction, committing on nil and rolling back on
// error.
func (s *SQLiteNodeStore) withTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

// CreateNode inserts n as a child of folder with its caller-supplied ordinal.
func (s *SQLiteNodeStore) CreateNode(ctx context.Context, folder string, n *node.TreeNode) error {
	if err := validName(n.Name); err != nil {
		return err
	}

	return s.withTx(ctx, func(tx *sql.Tx) error {
		if err := requireFolder(ctx, tx, folder); err != nil {
			return err
		}

		var exists int
		err := tx.QueryRowContext(ctx,
			"SELECT 1 FROM nodes WHERE folder = ? AND name = ?", folder, n.Name).Scan(&exists)
		if err == nil {
			return &node.StoreError{
				Code:    node.ErrAlreadyExists,
				Message: "name already exists",
				Path:    node.JoinPath(folder, n.Name),
			}
		}
		if !errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("checking name collision: %w", err)
		}

		now := time.Now()
		created := n.Created
		if created.IsZero() {
			created = now
		}

		_, err = tx.ExecContext(ctx,
			"INSERT INTO nodes ("+nodeColumns+") VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)",
			n.ID.String(), folder, n.Name, n.Ordinal, int(n.Kind), n.OwnerID,
			string(n.ContentID), created.UnixNano(), now.UnixNano())
		if err != nil {
			return fmt.Errorf("inserting node: %w", err)
		}

		n.Created = created
		n.Modified = now
		return nil
	})
}

// GetNode retrieves a node by UUID.
func (s *SQLiteNodeStore) GetNode(ctx context.Context, id uuid.UUID) (*node.TreeNode, error) {
	r, err := getRow(ctx, s.db, id)
	if err != nil {
		return nil, err
	}
	return r.toNode()
}

// Lookup resolves a name within a folder.
func (s *SQLiteNodeStore) Lookup(ctx context.Context, folder, name string) (*node.TreeNode, error) {
	if err := requireFolder(ctx, s.db, folder); err != nil {
		return nil, err
	}

	r, err := scanRow(s.db.QueryRowContext(ctx,
		"SELECT "+nodeColumns+" FROM nodes WHERE folder = ? AND name = ?", folder, name))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, &node.StoreError{
			Code:    node.ErrNotFound,
			Message: "node not found",
			Path:    node.JoinPath(folder, name),
		}
	}
	if err != nil {
		return nil, fmt.Errorf("looking up %s: %w", node.JoinPath(folder, name), err)
	}
	return r.toNode()
}

// ReadChildren returns the direct children of folder sorted by ordinal.
func (s *SQLiteNodeStore) ReadChildren(ctx context.Context, folder string) ([]*node.TreeNode, error) {
	if err := requireFolder(ctx, s.db, folder); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx,
		"SELECT "+nodeColumns+" FROM nodes WHERE folder = ? ORDER BY ordinal", folder)
	if err != nil {
		return nil, fmt.Errorf("listing children of %s: %w", folder, err)
	}
	defer rows.Close()

	children := []*node.TreeNode{}
	for rows.Next() {
		r, err := scanRow(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning child row: %w", err)
		}
		n, err := r.toNode()
		if err != nil {
			return nil, err
		}
		children = append(children, n)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating children of %s: %w", folder, err)
	}
	return children, nil
}

// SetOrdinal updates a single node's ordinal.
func (s *SQLiteNodeStore) SetOrdinal(ctx context.Context, id uuid.UUID, ordinal int64) error {
	result, err := s.db.ExecContext(ctx,
		"UPDATE nodes SET ordinal = ?, modified = ? WHERE id = ?",
		ordinal, time.Now().UnixNano(), id.String())
	if err != nil {
		return fmt.Errorf("updating ordinal: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("updating ordinal: %w", err)
	}
	if affected == 0 {
		return &node.StoreError{Code: node.ErrNotFound, Message: "node not found", Path: id.String()}
	}
	return nil
}

// SetContentID updates a single node's content reference.
func (s *SQLiteNodeStore) SetContentID(ctx context.Context, id uuid.UUID, contentID node.ContentID) error {
	result, err := s.db.ExecContext(ctx,
		"UPDATE nodes SET content_id = ?, modified = ? WHERE id = ?",
		string(contentID), time.Now().UnixNano(), id.String())
	if err != nil {
		return fmt.Errorf("updating content id: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("updating content id: %w", err)
	}
	if affected == 0 {
		return &node.StoreError{Code: node.ErrNotFound, Message: "node not found", Path: id.String()}
	}
	return nil
}

// RenameNode changes a node's display name, keeping its folder and ordinal.
func (s *SQLiteNodeStore) RenameNode(ctx context.Context, id uuid.UUID, newName string) error {
	if err := validName(newName); err != nil {
		return err
	}

	return s.withTx(ctx, func(tx *sql.Tx) error {
		r, err := getRow(ctx, tx, id)
		if err != nil {
			return err
		}
		if r.name == newName {
			return nil
		}

		var exists int
		err = tx.QueryRowContext(ctx,
			"SELECT 1 FROM nodes WHERE folder = ? AND name = ?", r.folder, newName).Scan(&exists)
		if err == nil {
			return &node.StoreError{
				Code:    node.ErrAlreadyExists,
				Message: "name already exists",
				Path:    node.JoinPath(r.folder, newName),
			}
		}
		if !errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("checking name collision: %w", err)
		}

		_, err = tx.ExecContext(ctx,
			"UPDATE nodes SET name = ?, modified = ? WHERE id = ?",
			newName, time.Now().UnixNano(), id.String())
		if err != nil {
			return fmt.Errorf("renaming node: %w", err)
		}

		if node.NodeKind(r.kind) == node.KindFolder {
			oldPath := node.JoinPath(r.folder, r.name)
			newPath := node.JoinPath(r.folder, newName)
			return rekeySubtree(ctx, tx, oldPath, newPath)
		}
		return nil
	})
}

// MoveNode relocates a node (and its subtree, for folders) into targetFolder.
func (s *SQLiteNodeStore) MoveNode(ctx context.Context, id uuid.UUID, targetFolder string) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		r, err := getRow(ctx, tx, id)
		if err != nil {
			return err
		}
		if err := requireFolder(ctx, tx, targetFolder); err != nil {
			return err
		}
		if r.folder == targetFolder {
			return nil
		}

		var exists int
		err = tx.QueryRowContext(ctx,
			"SELECT 1 FROM nodes WHERE folder = ? AND name = ?", targetFolder, r.name).Scan(&exists)
		if err == nil {
			return &node.StoreError{
				Code:    node.ErrAlreadyExists,
				Message: "name already exists in target folder",
				Path:    node.JoinPath(targetFolder, r.name),
			}
		}
		if !errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("checking name collision: %w", err)
		}

		oldPath := node.JoinPath(r.folder, r.name)
		isFolder := node.NodeKind(r.kind) == node.KindFolder
		if isFolder && node.IsPathUnder(targetFolder, oldPath) {
			return &node.StoreError{
				Code:    node.ErrInvalidArgument,
				Message: "cannot move a folder into its own subtree",
				Path:    oldPath,
			}
		}

		_, err = tx.ExecContext(ctx,
			"UPDATE nodes SET folder = ?, modified = ? WHERE id = ?",
			targetFolder, time.Now().UnixNano(), id.String())
		if err != nil {
			return fmt.Errorf("moving node: %w", err)
		}

		if isFolder {
			return rekeySubtree(ctx, tx, oldPath, node.JoinPath(targetFolder, r.name))
		}
		return nil
	})
}

// rekeySubtree rewrites descendant folder paths after a folder at oldPath was
// renamed or moved to newPath. One UPDATE handles the whole subtree; the
// substr comparison avoids LIKE so path characters never need escaping.
// Descendant ordinals and content references are untouched.
func rekeySubtree(ctx context.Context, tx *sql.Tx, oldPath, newPath string) error {
	_, err := tx.ExecContext(ctx, `
		UPDATE nodes
		SET folder = ?2 || substr(folder, length(?1) + 1)
		WHERE folder = ?1
		   OR substr(folder, 1, length(?1) + 1) = ?1 || '/'`,
		oldPath, newPath)
	if err != nil {
		return fmt.Errorf("rewriting subtree paths: %w", err)
	}
	return nil
}

// DeleteNode removes a node; folders are removed with their whole subtree.
func (s *SQLiteNodeStore) DeleteNode(ctx context.Context, id uuid.UUID) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		r, err := getRow(ctx, tx, id)
		if err != nil {
			return err
		}

		if _, err := tx.ExecContext(ctx, "DELETE FROM nodes WHERE id = ?", id.String()); err != nil {
			return fmt.Errorf("deleting node: %w", err)
		}

		if node.NodeKind(r.kind) == node.KindFolder {
			root := node.JoinPath(r.folder, r.name)
			_, err := tx.ExecContext(ctx, `
				DELETE FROM nodes
				WHERE folder = ?1
				   OR substr(folder, 1, length(?1) + 1) = ?1 || '/'`,
				root)
			if err != nil {
				return fmt.Errorf("deleting subtree: %w", err)
			}
		}
		return nil
	})
}

// FolderOf returns the path of the folder containing the node.
func (s *SQLiteNodeStore) FolderOf(ctx context.Context, id uuid.UUID) (string, error) {
	r, err := getRow(ctx, s.db, id)
	if err != nil {
		return "", err
	}
	return r.folder, nil
}

// PathOf returns the node's full workspace path.
func (s *SQLiteNodeStore) PathOf(ctx context.Context, id uuid.UUID) (string, error) {
	r, err := getRow(ctx, s.db, id)
	if err != nil {
		return "", err
	}
	return node.JoinPath(r.folder, r.name), nil
}

// Healthcheck verifies the database is reachable.
func (s *SQLiteNodeStore) Healthcheck(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close closes the database connection.
func (s *SQLiteNodeStore) Close() error {
	return s.db.Close()
}
