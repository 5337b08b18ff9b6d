package kev

import (
	"context"
	"database/sql"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"
)

const (
	dbName = "kev.db"

	versionKey = "catalogVersion"
)

// Init opens the catalog cache in the store, creating it when needed.
func (c *Client) Init() error {
	if err := mkFolder(c.Store); err != nil {
		return err
	}

	db, err := sql.Open("sqlite3", filepath.Join(c.Store, dbName))
	if err != nil {
		return err
	}

	kevTable := `CREATE TABLE IF NOT EXISTS kev (
			"CVEID" TEXT NOT NULL PRIMARY KEY,
			"VendorProject" TEXT,
			"Product" TEXT,
			"VulnerabilityName" TEXT,
			"DateAdded" TEXT,
			"ShortDescription" TEXT,
			"RequiredAction" TEXT,
			"DueDate" TEXT,
			"Ransomware" TEXT,
			"Notes" TEXT);`
	metaTable := `CREATE TABLE IF NOT EXISTS meta (
			"Key" TEXT NOT NULL PRIMARY KEY,
			"Value" TEXT);`

	for _, stmt := range []string{kevTable, metaTable} {
		if _, err := db.Exec(stmt); err != nil {
			db.Close()
			return err
		}
	}

	c.DB = db
	return nil
}

func (c *Client) Close() error {
	if c.DB == nil {
		return nil
	}
	return c.DB.Close()
}

func (c *Client) store(ctx context.Context, catalog *Catalog) error {
	tx, err := c.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	// Entries withdrawn from the catalog must not survive a refresh.
	if _, err := tx.ExecContext(ctx, `DELETE FROM kev`); err != nil {
		return err
	}

	sqlRow := `INSERT OR REPLACE INTO kev
				  ("CVEID", "VendorProject", "Product", "VulnerabilityName", "DateAdded",
				   "ShortDescription", "RequiredAction", "DueDate", "Ransomware", "Notes")
				   VALUES
				  (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	stmt, err := tx.PrepareContext(ctx, sqlRow)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, e := range catalog.Entries {
		_, err = stmt.ExecContext(ctx, e.CVEID, e.VendorProject, e.Product,
			e.VulnerabilityName, e.DateAdded, e.ShortDescription,
			e.RequiredAction, e.DueDate, e.KnownRansomwareCampaignUse, e.Notes)
		if err != nil {
			return err
		}
	}

	_, err = tx.ExecContext(ctx, `INSERT OR REPLACE INTO meta ("Key", "Value") VALUES (?, ?)`,
		versionKey, catalog.Version)
	if err != nil {
		return err
	}

	return tx.Commit()
}

// CachedVersion returns the catalog version of the cache, empty if unknown.
func (c *Client) CachedVersion() (string, error) {
	var value string

	err := c.DB.QueryRow(`SELECT "Value" FROM meta WHERE "Key" = ?`, versionKey).Scan(&value)
	if err == sql.ErrNoRows {
		return "", nil
	}
	return value, err
}

// Count returns the number of cached entries.
func (c *Client) Count() (int, error) {
	var n int
	err := c.DB.QueryRow(`SELECT COUNT(*) FROM kev`).Scan(&n)
	return n, err
}

// Lookup finds a CVE in the cache.
func (c *Client) Lookup(cve string) (*Entry, bool, error) {
	e := &Entry{}

	sqlRow := `SELECT * FROM kev WHERE cveid = ?`
	err := c.DB.QueryRow(sqlRow, Normalize(cve)).Scan(&e.CVEID, &e.VendorProject,
		&e.Product, &e.VulnerabilityName, &e.DateAdded,
		&e.ShortDescription, &e.RequiredAction, &e.DueDate,
		&e.KnownRansomwareCampaignUse, &e.Notes)

	if err == sql.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}

	return e, true, nil
}

// LookupAll returns the entries found, keyed by normalized CVE.
func (c *Client) LookupAll(cves []string) (map[string]*Entry, error) {
	found := map[string]*Entry{}

	for _, cve := range cves {
		key := Normalize(cve)
		if key == "" || found[key] != nil {
			continue
		}

		e, ok, err := c.Lookup(key)
		if err != nil {
			return found, err
		}
		if ok {
			found[key] = e
		}
	}

	return found, nil
}
