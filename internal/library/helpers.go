package library

import (
	"database/sql"
	"errors"
	"time"
)

func scanItem(scanner interface{ Scan(dest ...any) error }) (*Item, error) {
	var (
		item        Item
		parentID    sql.NullInt64
		contentType sql.NullString
		path        sql.NullString
		createdRaw  sql.NullString
		updatedRaw  sql.NullString
	)
	if err := scanner.Scan(
		&item.ID,
		&item.Key,
		&item.LibraryID,
		&item.ItemType,
		&parentID,
		&contentType,
		&path,
		&createdRaw,
		&updatedRaw,
	); err != nil {
		return nil, err
	}
	item.ParentID = parentID.Int64
	item.ContentType = contentType.String
	item.Path = path.String
	if created, err := parseTimeString(createdRaw.String); err == nil {
		item.CreatedAt = created
	}
	if updated, err := parseTimeString(updatedRaw.String); err == nil {
		item.UpdatedAt = updated
	}
	return &item, nil
}

func nullableString(value string) any {
	if value == "" {
		return nil
	}
	return value
}

func parseTimeString(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, errors.New("empty")
	}
	if t, err := time.Parse(time.RFC3339Nano, value); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02 15:04:05", value)
}
