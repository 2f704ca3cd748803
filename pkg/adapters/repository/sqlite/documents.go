package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/wadjakorntonsri/go-devlinks/pkg/ports"
)

// splitPath returns the collection and document id of a document path.
func splitPath(path string) (string, string, error) {
	path = strings.Trim(path, "/")
	i := strings.LastIndex(path, "/")
	if i <= 0 || i == len(path)-1 {
		return "", "", fmt.Errorf("invalid document path %q", path)
	}
	return path[:i], path[i+1:], nil
}

func (r *SQLiteRepository) Get(ctx context.Context, path string) (*ports.Document, error) {
	var doc ports.Document
	var data string
	err := r.db.QueryRowContext(ctx, `SELECT path, doc_id, data FROM documents WHERE path = ?`, strings.Trim(path, "/")).
		Scan(&doc.Path, &doc.ID, &data)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	doc.Data = []byte(data)
	return &doc, nil
}

func (r *SQLiteRepository) Set(ctx context.Context, path string, data []byte) error {
	b := r.Batch()
	b.Set(path, data)
	return b.Commit(ctx)
}

func (r *SQLiteRepository) Delete(ctx context.Context, path string) error {
	b := r.Batch()
	b.Delete(path)
	return b.Commit(ctx)
}

func (r *SQLiteRepository) List(ctx context.Context, collection string) ([]ports.Document, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT path, doc_id, data FROM documents WHERE collection = ? ORDER BY path`, strings.Trim(collection, "/"))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	docs := []ports.Document{}
	for rows.Next() {
		var doc ports.Document
		var data string
		if err := rows.Scan(&doc.Path, &doc.ID, &data); err != nil {
			return nil, err
		}
		doc.Data = []byte(data)
		docs = append(docs, doc)
	}
	return docs, rows.Err()
}

func (r *SQLiteRepository) Subscribe(ctx context.Context, collection string, fn ports.SnapshotFunc) (func(), error) {
	collection = strings.Trim(collection, "/")

	mu := r.watchers.lock(collection)
	mu.Lock()
	defer mu.Unlock()

	id, w := r.watchers.add(collection, fn)
	unsubscribe := func() { r.watchers.remove(collection, id) }

	version, docs, err := r.snapshot(ctx, collection)
	if err != nil {
		unsubscribe()
		return nil, err
	}
	w.version = version
	fn(docs)
	return unsubscribe, nil
}

// Refresh delivers the current snapshot of collection to watchers that have
// not seen its latest version. It picks up commits made through other
// connections to the same database.
func (r *SQLiteRepository) Refresh(ctx context.Context, collection string) error {
	return r.deliver(ctx, strings.Trim(collection, "/"))
}

// Poll refreshes every watched collection.
func (r *SQLiteRepository) Poll(ctx context.Context) error {
	for _, collection := range r.watchers.collections() {
		if err := r.deliver(ctx, collection); err != nil {
			return fmt.Errorf("%s: %w", collection, err)
		}
	}
	return nil
}

// deliver hands the current snapshot to watchers behind its version.
// Deliveries for one collection are serialized, so watchers see versions
// in commit order.
func (r *SQLiteRepository) deliver(ctx context.Context, collection string) error {
	mu := r.watchers.lock(collection)
	mu.Lock()
	defer mu.Unlock()

	ws := r.watchers.get(collection)
	if len(ws) == 0 {
		return nil
	}
	version, err := r.version(ctx, collection)
	if err != nil {
		return err
	}

	var behind []*watcher
	for _, w := range ws {
		if w.version < version {
			behind = append(behind, w)
		}
	}
	if len(behind) == 0 {
		return nil
	}

	// A commit may land between the two reads; the newer documents are then
	// delivered again under their own version.
	docs, err := r.List(ctx, collection)
	if err != nil {
		return err
	}
	for _, w := range behind {
		w.version = version
		w.fn(docs)
	}
	return nil
}

func (r *SQLiteRepository) snapshot(ctx context.Context, collection string) (int64, []ports.Document, error) {
	version, err := r.version(ctx, collection)
	if err != nil {
		return 0, nil, err
	}
	docs, err := r.List(ctx, collection)
	if err != nil {
		return 0, nil, err
	}
	return version, docs, nil
}

// version returns the commit counter of collection, 0 before its first commit.
func (r *SQLiteRepository) version(ctx context.Context, collection string) (int64, error) {
	var v int64
	err := r.db.QueryRowContext(ctx, `SELECT version FROM collection_versions WHERE collection = ?`, collection).Scan(&v)
	if err == sql.ErrNoRows {
		return 0, nil
	}
	return v, err
}

func (r *SQLiteRepository) Batch() ports.Batch {
	return &batch{repo: r}
}

type batchOp struct {
	path       string
	collection string
	id         string
	data       []byte
	delete     bool
}

// batch applies its operations in order inside one transaction.
type batch struct {
	repo *SQLiteRepository
	ops  []batchOp
	err  error
}

func (b *batch) Delete(path string) {
	b.add(path, nil, true)
}

func (b *batch) Set(path string, data []byte) {
	b.add(path, data, false)
}

func (b *batch) add(path string, data []byte, del bool) {
	collection, id, err := splitPath(path)
	if err != nil {
		if b.err == nil {
			b.err = err
		}
		return
	}
	b.ops = append(b.ops, batchOp{
		path:       collection + "/" + id,
		collection: collection,
		id:         id,
		data:       data,
		delete:     del,
	})
}

func (b *batch) Commit(ctx context.Context) error {
	if b.err != nil {
		return b.err
	}
	if len(b.ops) == 0 {
		return nil
	}

	tx, err := b.repo.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	touched := map[string]struct{}{}
	ts := now()
	for _, op := range b.ops {
		if op.delete {
			_, err = tx.ExecContext(ctx, `DELETE FROM documents WHERE path = ?`, op.path)
		} else {
			_, err = tx.ExecContext(ctx, `INSERT INTO documents (path, collection, doc_id, data, updated_at)
				VALUES (?, ?, ?, ?, ?)
				ON CONFLICT(path) DO UPDATE SET data = excluded.data, updated_at = excluded.updated_at`,
				op.path, op.collection, op.id, string(op.data), ts)
		}
		if err != nil {
			return fmt.Errorf("%s: %w", op.path, err)
		}
		touched[op.collection] = struct{}{}
	}

	for collection := range touched {
		if _, err := tx.ExecContext(ctx, `INSERT INTO collection_versions (collection, version) VALUES (?, 1)
			ON CONFLICT(collection) DO UPDATE SET version = version + 1`, collection); err != nil {
			return fmt.Errorf("bump %s: %w", collection, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return err
	}

	for collection := range touched {
		b.repo.notify(ctx, collection)
	}
	return nil
}

// notify delivers a fresh snapshot to every watcher of collection. It runs
// after the transaction has committed and with no database lock held.
func (r *SQLiteRepository) notify(ctx context.Context, collection string) {
	_ = r.deliver(context.WithoutCancel(ctx), collection)
}
