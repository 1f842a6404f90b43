package library

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
)

type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// ops holds the queries shared by Store (auto-commit) and Tx.
type ops struct {
	q         querier
	libraryID int64
}

const itemColumns = "id, item_key, library_id, item_type, parent_id, content_type, path, created_at, updated_at"

func (o ops) get(ctx context.Context, id int64) (*Item, error) {
	row := o.q.QueryRowContext(ctx, "SELECT "+itemColumns+" FROM items WHERE id = ?", id)
	item, err := scanItem(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get item %d: %w", id, err)
	}
	if err := o.loadDetails(ctx, item); err != nil {
		return nil, err
	}
	return item, nil
}

func (o ops) list(ctx context.Context, where string) ([]*Item, error) {
	rows, err := o.q.QueryContext(ctx, "SELECT "+itemColumns+" FROM items "+where+" ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("list items: %w", err)
	}
	items, err := scanItems(rows)
	if err != nil {
		return nil, err
	}
	for _, item := range items {
		if err := o.loadDetails(ctx, item); err != nil {
			return nil, err
		}
	}
	return items, nil
}

func (o ops) children(ctx context.Context, parentID int64) ([]*Item, error) {
	rows, err := o.q.QueryContext(ctx, "SELECT "+itemColumns+" FROM items WHERE parent_id = ? ORDER BY id", parentID)
	if err != nil {
		return nil, fmt.Errorf("list children of %d: %w", parentID, err)
	}
	items, err := scanItems(rows)
	if err != nil {
		return nil, err
	}
	for _, item := range items {
		if err := o.loadDetails(ctx, item); err != nil {
			return nil, err
		}
	}
	return items, nil
}

func scanItems(rows *sql.Rows) ([]*Item, error) {
	defer rows.Close()
	var items []*Item
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("scan item: %w", err)
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

func (o ops) loadDetails(ctx context.Context, item *Item) error {
	rows, err := o.q.QueryContext(ctx, "SELECT field, value FROM item_fields WHERE item_id = ?", item.ID)
	if err != nil {
		return fmt.Errorf("load fields for %d: %w", item.ID, err)
	}
	item.Fields = map[string]string{}
	for rows.Next() {
		var field, value string
		if err := rows.Scan(&field, &value); err != nil {
			rows.Close()
			return fmt.Errorf("scan field: %w", err)
		}
		item.Fields[field] = value
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return err
	}
	rows.Close()

	rows, err = o.q.QueryContext(ctx,
		"SELECT first_name, last_name, creator_type FROM creators WHERE item_id = ? ORDER BY position", item.ID)
	if err != nil {
		return fmt.Errorf("load creators for %d: %w", item.ID, err)
	}
	defer rows.Close()
	item.Creators = nil
	for rows.Next() {
		var first, last sql.NullString
		var creatorType string
		if err := rows.Scan(&first, &last, &creatorType); err != nil {
			return fmt.Errorf("scan creator: %w", err)
		}
		item.Creators = append(item.Creators, Creator{FirstName: first.String, LastName: last.String, CreatorType: creatorType})
	}
	return rows.Err()
}

func (o ops) insert(ctx context.Context, item *Item) error {
	if item == nil {
		return errors.New("insert item: nil item")
	}
	if item.IsSaved() {
		return fmt.Errorf("insert item: item %d already saved", item.ID)
	}
	if strings.TrimSpace(item.ItemType) == "" {
		return errors.New("insert item: item type is required")
	}
	if item.LibraryID == 0 {
		item.LibraryID = o.libraryID
	}
	if item.Key == "" {
		item.Key = uuid.NewString()
	}
	now := time.Now().UTC()

	var parent any
	if item.ParentID != 0 {
		parent = item.ParentID
	}
	res, err := o.q.ExecContext(ctx,
		`INSERT INTO items (item_key, library_id, item_type, parent_id, content_type, path, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		item.Key, item.LibraryID, item.ItemType, parent,
		nullableString(item.ContentType), nullableString(item.Path),
		now.Format(time.RFC3339Nano), now.Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("insert item: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("insert item id: %w", err)
	}

	names := make([]string, 0, len(item.Fields))
	for name := range item.Fields {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if err := o.setField(ctx, id, name, item.Fields[name]); err != nil {
			return err
		}
	}
	for pos, creator := range item.Creators {
		creatorType := creator.CreatorType
		if creatorType == "" {
			creatorType = CreatorAuthor
		}
		if _, err := o.q.ExecContext(ctx,
			"INSERT INTO creators (item_id, position, first_name, last_name, creator_type) VALUES (?, ?, ?, ?, ?)",
			id, pos, nullableString(creator.FirstName), nullableString(creator.LastName), creatorType,
		); err != nil {
			return fmt.Errorf("insert creator: %w", err)
		}
	}

	item.ID = id
	item.CreatedAt = now
	item.UpdatedAt = now
	return nil
}

func (o ops) setField(ctx context.Context, id int64, field, value string) error {
	value = strings.TrimSpace(value)
	var err error
	if value == "" {
		_, err = o.q.ExecContext(ctx, "DELETE FROM item_fields WHERE item_id = ? AND field = ?", id, field)
	} else {
		_, err = o.q.ExecContext(ctx,
			`INSERT INTO item_fields (item_id, field, value) VALUES (?, ?, ?)
			 ON CONFLICT(item_id, field) DO UPDATE SET value = excluded.value`,
			id, field, value)
	}
	if err != nil {
		return fmt.Errorf("set field %s on %d: %w", field, id, err)
	}
	return o.touch(ctx, id)
}

func (o ops) setParent(ctx context.Context, id, parentID int64) error {
	if id == parentID {
		return fmt.Errorf("set parent: item %d cannot be its own parent", id)
	}
	var parent any
	if parentID != 0 {
		parent = parentID
	}
	res, err := o.q.ExecContext(ctx,
		"UPDATE items SET parent_id = ?, updated_at = ? WHERE id = ?",
		parent, time.Now().UTC().Format(time.RFC3339Nano), id)
	if err != nil {
		return fmt.Errorf("set parent of %d: %w", id, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("set parent: item %d not found", id)
	}
	return nil
}

func (o ops) touch(ctx context.Context, id int64) error {
	_, err := o.q.ExecContext(ctx, "UPDATE items SET updated_at = ? WHERE id = ?",
		time.Now().UTC().Format(time.RFC3339Nano), id)
	if err != nil {
		return fmt.Errorf("touch item %d: %w", id, err)
	}
	return nil
}

func (o ops) collectionsOf(ctx context.Context, id int64) ([]int64, error) {
	rows, err := o.q.QueryContext(ctx,
		"SELECT collection_id FROM collection_items WHERE item_id = ? ORDER BY collection_id", id)
	if err != nil {
		return nil, fmt.Errorf("collections of %d: %w", id, err)
	}
	defer rows.Close()
	var ids []int64
	for rows.Next() {
		var cid int64
		if err := rows.Scan(&cid); err != nil {
			return nil, err
		}
		ids = append(ids, cid)
	}
	return ids, rows.Err()
}

func (o ops) addToCollection(ctx context.Context, collectionID, itemID int64) error {
	_, err := o.q.ExecContext(ctx,
		"INSERT INTO collection_items (collection_id, item_id) VALUES (?, ?) ON CONFLICT DO NOTHING",
		collectionID, itemID)
	if err != nil {
		return fmt.Errorf("add item %d to collection %d: %w", itemID, collectionID, err)
	}
	return nil
}

func (o ops) ensureCollection(ctx context.Context, name string) (*Collection, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, errors.New("collection name is required")
	}
	coll := &Collection{LibraryID: o.libraryID, Name: name}
	err := o.q.QueryRowContext(ctx,
		"SELECT id, collection_key FROM collections WHERE library_id = ? AND name = ?",
		o.libraryID, name).Scan(&coll.ID, &coll.Key)
	if err == nil {
		return coll, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("find collection %q: %w", name, err)
	}
	coll.Key = uuid.NewString()
	res, err := o.q.ExecContext(ctx,
		"INSERT INTO collections (collection_key, library_id, name) VALUES (?, ?, ?)",
		coll.Key, o.libraryID, name)
	if err != nil {
		return nil, fmt.Errorf("create collection %q: %w", name, err)
	}
	if coll.ID, err = res.LastInsertId(); err != nil {
		return nil, err
	}
	return coll, nil
}

func (o ops) listCollections(ctx context.Context) ([]Collection, error) {
	rows, err := o.q.QueryContext(ctx,
		"SELECT id, collection_key, library_id, name FROM collections ORDER BY name")
	if err != nil {
		return nil, fmt.Errorf("list collections: %w", err)
	}
	defer rows.Close()
	var out []Collection
	for rows.Next() {
		var c Collection
		if err := rows.Scan(&c.ID, &c.Key, &c.LibraryID, &c.Name); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}
