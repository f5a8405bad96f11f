package grafx2

import (
	"crypto/sha1"
	"database/sql"
	"fmt"

	"github.com/Abhisheknishant/grafx2/picture"
	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
)

// Catalog is a sqlite database of the pictures found by Scan. Palettes are
// stored once and shared between the pictures using them.
type Catalog struct {
	db *sql.DB
}

// Entry describes one cataloged file.
type Entry struct {
	ID      uuid.UUID
	Path    string
	SHA1    string
	Format  Format
	Width   int
	Height  int
	Layers  int
	Frames  int
	Comment string
	// Palette holds 256 R, G, B triples.
	Palette []byte
}

// NewEntry describes p, loaded from path as format f.
func NewEntry(path, sha string, f Format, p *picture.Picture) *Entry {
	return &Entry{
		Path:    path,
		SHA1:    sha,
		Format:  f,
		Width:   p.Width,
		Height:  p.Height,
		Layers:  len(p.Layers),
		Frames:  len(p.Frames),
		Comment: p.Comment,
		Palette: p.Palette.Bytes(),
	}
}

// NewCatalog opens or creates the catalog stored in file.
func NewCatalog(file string) (*Catalog, error) {
	db, err := sql.Open("sqlite3", fmt.Sprintf("%s?_foreign_keys=on&_busy_timeout=5000", file))
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(10)

	if _, err = db.Exec("CREATE TABLE IF NOT EXISTS palette (id INTEGER PRIMARY KEY NOT NULL, sha1 TEXT NOT NULL UNIQUE, colors BLOB NOT NULL)"); err != nil {
		db.Close()
		return nil, err
	}

	if _, err = db.Exec("CREATE TABLE IF NOT EXISTS picture (id TEXT PRIMARY KEY NOT NULL, path TEXT NOT NULL UNIQUE, sha1 TEXT NOT NULL, format TEXT NOT NULL, width INTEGER NOT NULL, height INTEGER NOT NULL, layers INTEGER NOT NULL, frames INTEGER NOT NULL, comment TEXT, palette_id INTEGER, FOREIGN KEY(palette_id) REFERENCES palette(id))"); err != nil {
		db.Close()
		return nil, err
	}

	return &Catalog{
		db: db,
	}, nil
}

// Close closes the database.
func (c *Catalog) Close() error {
	return c.db.Close()
}

func (c *Catalog) addPalette(colors []byte) (sql.NullInt64, error) {
	var id sql.NullInt64
	if len(colors) == 0 {
		return id, nil
	}
	sha := fmt.Sprintf("%X", sha1.Sum(colors))

	switch err := c.db.QueryRow("SELECT id FROM palette WHERE sha1 = ?", sha).Scan(&id); err {
	case sql.ErrNoRows:
		result, err := c.db.Exec("INSERT OR IGNORE INTO palette (sha1, colors) VALUES (?, ?)", sha, colors)
		if err != nil {
			return id, err
		}
		if n, _ := result.RowsAffected(); n == 0 {
			// Inserted concurrently
			err = c.db.QueryRow("SELECT id FROM palette WHERE sha1 = ?", sha).Scan(&id)
			return id, err
		}
		id.Int64, err = result.LastInsertId()
		id.Valid = err == nil
		return id, err
	case nil:
		return id, nil
	default:
		return id, err
	}
}

// Add stores e, replacing any entry with the same path. The ID of e is set
// to the one stored.
func (c *Catalog) Add(e *Entry) error {
	paletteID, err := c.addPalette(e.Palette)
	if err != nil {
		return err
	}

	var id string
	switch err := c.db.QueryRow("SELECT id FROM picture WHERE path = ?", e.Path).Scan(&id); err {
	case sql.ErrNoRows:
		e.ID = uuid.New()
		_, err = c.db.Exec("INSERT INTO picture (id, path, sha1, format, width, height, layers, frames, comment, palette_id) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)",
			e.ID.String(), e.Path, e.SHA1, e.Format.String(), e.Width, e.Height, e.Layers, e.Frames, e.Comment, paletteID)
		return err
	case nil:
		if e.ID, err = uuid.Parse(id); err != nil {
			return err
		}
		_, err = c.db.Exec("UPDATE picture SET sha1 = ?, format = ?, width = ?, height = ?, layers = ?, frames = ?, comment = ?, palette_id = ? WHERE id = ?",
			e.SHA1, e.Format.String(), e.Width, e.Height, e.Layers, e.Frames, e.Comment, paletteID, id)
		return err
	default:
		return err
	}
}

const selectEntry = "SELECT p.id, p.path, p.sha1, p.format, p.width, p.height, p.layers, p.frames, p.comment, c.colors FROM picture AS p LEFT JOIN palette AS c ON p.palette_id = c.id"

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanEntry(s scanner) (*Entry, error) {
	var (
		e       Entry
		id      string
		format  string
		comment sql.NullString
	)
	if err := s.Scan(&id, &e.Path, &e.SHA1, &format, &e.Width, &e.Height, &e.Layers, &e.Frames, &comment, &e.Palette); err != nil {
		return nil, err
	}
	var err error
	if e.ID, err = uuid.Parse(id); err != nil {
		return nil, err
	}
	if e.Format, err = ParseFormat(format); err != nil {
		return nil, err
	}
	e.Comment = comment.String
	return &e, nil
}

// Find returns the entry stored for path, or nil if there is none.
func (c *Catalog) Find(path string) (*Entry, error) {
	e, err := scanEntry(c.db.QueryRow(selectEntry+" WHERE p.path = ?", path))
	switch err {
	case sql.ErrNoRows:
		return nil, nil
	case nil:
		return e, nil
	default:
		return nil, err
	}
}

// FindBySHA1 returns every entry whose file content has the given SHA-1.
func (c *Catalog) FindBySHA1(sha string) ([]*Entry, error) {
	return c.query(selectEntry+" WHERE p.sha1 = ? ORDER BY p.path", sha)
}

// List returns every entry, sorted by path.
func (c *Catalog) List() ([]*Entry, error) {
	return c.query(selectEntry + " ORDER BY p.path")
}

func (c *Catalog) query(query string, args ...interface{}) ([]*Entry, error) {
	rows, err := c.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []*Entry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// Remove deletes the entry stored for path.
func (c *Catalog) Remove(path string) error {
	_, err := c.db.Exec("DELETE FROM picture WHERE path = ?", path)
	return err
}
