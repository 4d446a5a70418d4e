package mandelbrot

import (
	"bytes"
	"crypto/sha1"
	"database/sql"
	"errors"
	"fmt"
	"image"
	"image/color"

	"github.com/bodgit/mandelbrot/tile"
	_ "github.com/mattn/go-sqlite3"
)

// FrameDB archives rendered frames in a SQLite database, keyed by the
// configuration that produced them. Identical frames are stored once.
type FrameDB struct {
	db *sql.DB
}

// NewFrameDB opens or creates the database in file.
func NewFrameDB(file string) (*FrameDB, error) {
	db, err := sql.Open("sqlite3", fmt.Sprintf("%s?_foreign_keys=on", file))
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(10)

	if _, err = db.Exec("CREATE TABLE IF NOT EXISTS frame (id INTEGER PRIMARY KEY NOT NULL, sha1 TEXT NOT NULL UNIQUE, tile BLOB NOT NULL)"); err != nil {
		db.Close()
		return nil, err
	}

	if _, err = db.Exec("CREATE TABLE IF NOT EXISTS render (id INTEGER PRIMARY KEY NOT NULL, key TEXT NOT NULL UNIQUE, frame_id INTEGER NOT NULL, FOREIGN KEY(frame_id) REFERENCES frame(id))"); err != nil {
		db.Close()
		return nil, err
	}

	return &FrameDB{
		db: db,
	}, nil
}

// Close closes the database.
func (db *FrameDB) Close() error {
	return db.db.Close()
}

func paletteKey(p color.Palette) string {
	h := sha1.New()
	for _, c := range p {
		r, g, b, a := c.RGBA()
		fmt.Fprintf(h, "%04x%04x%04x%04x", r, g, b, a)
	}
	return fmt.Sprintf("%X", h.Sum(nil))
}

func renderKey(cfg Config, p color.Palette) string {
	return cfg.Key() + "/" + paletteKey(p)
}

func (db *FrameDB) addFrame(m image.Image) (int64, error) {
	b := new(bytes.Buffer)
	if err := tile.Encode(b, m); err != nil {
		return 0, err
	}
	h := sha1.Sum(b.Bytes())
	sha := fmt.Sprintf("%X", h[:])

	var id int64
	switch err := db.db.QueryRow("SELECT id FROM frame WHERE sha1 = ?", sha).Scan(&id); err {
	case sql.ErrNoRows:
		result, err := db.db.Exec("INSERT INTO frame (sha1, tile) VALUES (?, ?)", sha, b.Bytes())
		if err != nil {
			return 0, err
		}
		return result.LastInsertId()
	case nil:
		return id, nil
	default:
		return 0, err
	}
}

// AddFrame stores m as the output of cfg drawn with the palette of m,
// replacing any frame previously stored for the same pair, and returns the id
// of the frame. Palettes larger than tile.MaxColors are rejected as they
// cannot be stored without altering the frame.
func (db *FrameDB) AddFrame(cfg Config, m *image.Paletted) (int64, error) {
	if err := cfg.Validate(); err != nil {
		return 0, err
	}
	if cfg.PaletteSize > tile.MaxColors || len(m.Palette) > tile.MaxColors {
		return 0, &ConfigError{"palette size", fmt.Sprintf("frames with more than %d colors cannot be stored", tile.MaxColors)}
	}

	id, err := db.addFrame(m)
	if err != nil {
		return 0, err
	}

	if _, err := db.db.Exec("INSERT OR REPLACE INTO render (key, frame_id) VALUES (?, ?)", renderKey(cfg, m.Palette), id); err != nil {
		return 0, err
	}

	return id, nil
}

// FindFrame returns the frame stored for cfg drawn with palette p, or nil if
// there isn't one.
func (db *FrameDB) FindFrame(cfg Config, p color.Palette) (*image.Paletted, error) {
	var b []byte
	switch err := db.db.QueryRow("SELECT f.tile FROM render AS r JOIN frame AS f ON r.frame_id = f.id WHERE r.key = ?", renderKey(cfg, p)).Scan(&b); err {
	case sql.ErrNoRows:
		return nil, nil
	case nil:
		m, err := tile.Decode(bytes.NewReader(b))
		if err != nil {
			return nil, err
		}
		pm, ok := m.(*image.Paletted)
		if !ok {
			return nil, errors.New("stored frame is not paletted")
		}
		return pm, nil
	default:
		return nil, err
	}
}
