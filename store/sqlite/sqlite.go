/*
Package sqlite provides the SQLite-backed implementation of the persisted
store contract.

PURPOSE:
  Implements compliance.Store over SQLite. The engine treats AppData as an
  opaque bag; this package flattens it into relational tables and rebuilds it
  on load. Save is last-write-wins: the whole state is replaced inside one
  database transaction, mirroring the single-user, fire-and-forget write
  model.

KEY TABLES:
  sites:        customer records, recurrence sets, technicians, appointment
  assets:       individual protection units
  out_entries:  manually-maintained out-for-service lines per discipline
  completions:  the append-only service ledger, snapshots stored as JSON

SNAPSHOTS AS JSON:
  Completion snapshots are frozen history - written once, read back whole -
  so they are stored as JSON blobs rather than rows.

WAL MODE:
  SQLite is opened with WAL for better crash recovery; readers don't block
  the single writer.

USAGE:
  store, err := sqlite.New("./data/firesafety.db")
  if err != nil {
      log.Fatal(err)
  }
  defer store.Close()

SEE ALSO:
  - compliance/store.go: the contract
  - compliance/store/memory.go: in-memory implementation for testing
*/
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/adeelfeb/dmfiresafety-sub000/compliance"
)

// Store implements compliance.Store using SQLite.
type Store struct {
	db *sql.DB
	mu sync.Mutex
}

// New creates a SQLite store at the given path. Use ":memory:" for an
// in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS sites (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		address TEXT,
		notes TEXT,
		archived INTEGER NOT NULL DEFAULT 0,
		service_months TEXT NOT NULL DEFAULT '[]',
		system_months TEXT NOT NULL DEFAULT '[]',
		service_tech TEXT,
		system_tech TEXT,
		appt_month INTEGER NOT NULL DEFAULT 0,
		appt_day INTEGER NOT NULL DEFAULT 0,
		appt_time TEXT
	);

	CREATE TABLE IF NOT EXISTS assets (
		id TEXT PRIMARY KEY,
		site_id TEXT NOT NULL REFERENCES sites(id) ON DELETE CASCADE,
		kind TEXT NOT NULL,
		category TEXT NOT NULL,
		brand TEXT,
		size TEXT,
		last_service_year TEXT,
		battery_due INTEGER NOT NULL DEFAULT 0
	);

	CREATE INDEX IF NOT EXISTS idx_assets_site ON assets(site_id);

	CREATE TABLE IF NOT EXISTS out_entries (
		id TEXT PRIMARY KEY,
		site_id TEXT NOT NULL REFERENCES sites(id) ON DELETE CASCADE,
		discipline TEXT NOT NULL,
		position INTEGER NOT NULL,
		quantity INTEGER NOT NULL,
		brand TEXT,
		size TEXT,
		type TEXT,
		year TEXT,
		superseded_key TEXT
	);

	CREATE INDEX IF NOT EXISTS idx_out_entries_site ON out_entries(site_id, discipline, position);

	-- The completion ledger. The unique index backs the one-entry-per-tuple
	-- invariant at the persistence layer too.
	CREATE TABLE IF NOT EXISTS completions (
		id TEXT PRIMARY KEY,
		site_id TEXT NOT NULL REFERENCES sites(id) ON DELETE CASCADE,
		service_type TEXT NOT NULL,
		year INTEGER NOT NULL,
		month INTEGER NOT NULL,
		completed_date TEXT NOT NULL,
		completed_by TEXT,
		notes_snapshot TEXT,
		extinguishers_out_json TEXT,
		system_tanks_json TEXT
	);

	CREATE UNIQUE INDEX IF NOT EXISTS idx_completions_tuple
		ON completions(site_id, service_type, year, month);
	`
	_, err := s.db.Exec(schema)
	return err
}

// =============================================================================
// SAVE - Replace the whole state in one transaction
// =============================================================================

func (s *Store) Save(ctx context.Context, data *compliance.AppData) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, table := range []string{"completions", "out_entries", "assets", "sites"} {
		if _, err := tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return err
		}
	}

	for _, site := range data.Sites {
		if err := insertSite(ctx, tx, site); err != nil {
			return err
		}
	}
	for _, asset := range data.Assets {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO assets (id, site_id, kind, category, brand, size, last_service_year, battery_due)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			asset.ID, asset.SiteID, string(asset.Kind), string(asset.Category),
			asset.Brand, asset.Size, asset.LastServiceYear, boolInt(asset.BatteryDue),
		); err != nil {
			return err
		}
	}

	return tx.Commit()
}

func insertSite(ctx context.Context, tx *sql.Tx, site *compliance.Site) error {
	serviceMonths, err := json.Marshal(monthsOrEmpty(site.ServiceMonths))
	if err != nil {
		return err
	}
	systemMonths, err := json.Marshal(monthsOrEmpty(site.SystemMonths))
	if err != nil {
		return err
	}

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO sites (id, name, address, notes, archived, service_months, system_months,
			service_tech, system_tech, appt_month, appt_day, appt_time)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		site.ID, site.Name, site.Address, site.Notes, boolInt(site.Archived),
		string(serviceMonths), string(systemMonths),
		site.ServiceTech, site.SystemTech,
		site.Appointment.Month, site.Appointment.Day, site.Appointment.Time,
	); err != nil {
		return err
	}

	for _, list := range []struct {
		discipline compliance.ServiceType
		entries    []compliance.OutEntry
	}{
		{compliance.ServiceExtinguisher, site.ExtinguishersOut},
		{compliance.ServiceSystem, site.SystemTanks},
	} {
		for i, e := range list.entries {
			if _, err := tx.ExecContext(ctx, `
				INSERT INTO out_entries (id, site_id, discipline, position, quantity, brand, size, type, year, superseded_key)
				VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
				e.ID, site.ID, string(list.discipline), i, e.Quantity,
				e.Brand, e.Size, string(e.Type), e.Year, e.SupersededKey,
			); err != nil {
				return err
			}
		}
	}

	for _, c := range site.CompletedServices {
		extOut, err := json.Marshal(c.ExtinguishersOutSnapshot)
		if err != nil {
			return err
		}
		tanks, err := json.Marshal(c.SystemTanksSnapshot)
		if err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO completions (id, site_id, service_type, year, month, completed_date,
				completed_by, notes_snapshot, extinguishers_out_json, system_tanks_json)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			c.ID, site.ID, string(c.Type), c.Year, c.Month,
			c.CompletedDate.UTC().Format(time.RFC3339),
			c.CompletedBy, c.NotesSnapshot, string(extOut), string(tanks),
		); err != nil {
			return err
		}
	}
	return nil
}

// =============================================================================
// LOAD - Rebuild AppData from the tables
// =============================================================================

func (s *Store) Load(ctx context.Context) (*compliance.AppData, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var count int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM sites").Scan(&count); err != nil {
		return nil, err
	}
	var assetCount int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM assets").Scan(&assetCount); err != nil {
		return nil, err
	}
	if count == 0 && assetCount == 0 {
		// Nothing saved yet.
		return nil, nil
	}

	sites, err := s.loadSites(ctx)
	if err != nil {
		return nil, err
	}
	byID := make(map[string]*compliance.Site, len(sites))
	for _, site := range sites {
		byID[site.ID] = site
	}
	if err := s.loadOutEntries(ctx, byID); err != nil {
		return nil, err
	}
	if err := s.loadCompletions(ctx, byID); err != nil {
		return nil, err
	}
	assets, err := s.loadAssets(ctx)
	if err != nil {
		return nil, err
	}

	return &compliance.AppData{Sites: sites, Assets: assets}, nil
}

func (s *Store) loadSites(ctx context.Context) ([]*compliance.Site, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, address, notes, archived, service_months, system_months,
			service_tech, system_tech, appt_month, appt_day, appt_time
		FROM sites ORDER BY name, id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var sites []*compliance.Site
	for rows.Next() {
		var (
			site                         compliance.Site
			archived                     int
			serviceMonthsJS, sysMonthsJS string
			address, notes               sql.NullString
			serviceTech, systemTech      sql.NullString
			apptTime                     sql.NullString
		)
		if err := rows.Scan(&site.ID, &site.Name, &address, &notes, &archived,
			&serviceMonthsJS, &sysMonthsJS, &serviceTech, &systemTech,
			&site.Appointment.Month, &site.Appointment.Day, &apptTime); err != nil {
			return nil, err
		}
		site.Address = address.String
		site.Notes = notes.String
		site.Archived = archived != 0
		site.ServiceTech = serviceTech.String
		site.SystemTech = systemTech.String
		site.Appointment.Time = apptTime.String
		if err := json.Unmarshal([]byte(serviceMonthsJS), &site.ServiceMonths); err != nil {
			return nil, fmt.Errorf("site %s service months: %w", site.ID, err)
		}
		if err := json.Unmarshal([]byte(sysMonthsJS), &site.SystemMonths); err != nil {
			return nil, fmt.Errorf("site %s system months: %w", site.ID, err)
		}
		sites = append(sites, &site)
	}
	return sites, rows.Err()
}

func (s *Store) loadOutEntries(ctx context.Context, sites map[string]*compliance.Site) error {
	rows, err := s.db.QueryContext(ctx, `
		SELECT site_id, discipline, id, quantity, brand, size, type, year, superseded_key
		FROM out_entries ORDER BY site_id, discipline, position`)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var (
			siteID, discipline          string
			entry                       compliance.OutEntry
			brand, size, typ, year, key sql.NullString
		)
		if err := rows.Scan(&siteID, &discipline, &entry.ID, &entry.Quantity,
			&brand, &size, &typ, &year, &key); err != nil {
			return err
		}
		entry.Brand = brand.String
		entry.Size = size.String
		entry.Type = compliance.Category(typ.String)
		entry.Year = year.String
		entry.SupersededKey = key.String

		site, ok := sites[siteID]
		if !ok {
			continue
		}
		if compliance.ServiceType(discipline) == compliance.ServiceSystem {
			site.SystemTanks = append(site.SystemTanks, entry)
		} else {
			site.ExtinguishersOut = append(site.ExtinguishersOut, entry)
		}
	}
	return rows.Err()
}

func (s *Store) loadCompletions(ctx context.Context, sites map[string]*compliance.Site) error {
	rows, err := s.db.QueryContext(ctx, `
		SELECT site_id, id, service_type, year, month, completed_date,
			completed_by, notes_snapshot, extinguishers_out_json, system_tanks_json
		FROM completions ORDER BY site_id, year, month`)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var (
			siteID, completedDate string
			c                     compliance.ServiceCompletion
			serviceType           string
			completedBy, notes    sql.NullString
			extOutJS, tanksJS     sql.NullString
		)
		if err := rows.Scan(&siteID, &c.ID, &serviceType, &c.Year, &c.Month,
			&completedDate, &completedBy, &notes, &extOutJS, &tanksJS); err != nil {
			return err
		}
		c.Type = compliance.ServiceType(serviceType)
		c.CompletedBy = completedBy.String
		c.NotesSnapshot = notes.String
		if t, err := time.Parse(time.RFC3339, completedDate); err == nil {
			c.CompletedDate = t
		}
		if extOutJS.String != "" {
			if err := json.Unmarshal([]byte(extOutJS.String), &c.ExtinguishersOutSnapshot); err != nil {
				return fmt.Errorf("completion %s snapshot: %w", c.ID, err)
			}
		}
		if tanksJS.String != "" {
			if err := json.Unmarshal([]byte(tanksJS.String), &c.SystemTanksSnapshot); err != nil {
				return fmt.Errorf("completion %s snapshot: %w", c.ID, err)
			}
		}

		if site, ok := sites[siteID]; ok {
			site.CompletedServices = append(site.CompletedServices, c)
		}
	}
	return rows.Err()
}

func (s *Store) loadAssets(ctx context.Context) ([]*compliance.Asset, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, site_id, kind, category, brand, size, last_service_year, battery_due
		FROM assets ORDER BY site_id, id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var assets []*compliance.Asset
	for rows.Next() {
		var (
			a                     compliance.Asset
			kind, category        string
			brand, size, lastYear sql.NullString
			batteryDue            int
		)
		if err := rows.Scan(&a.ID, &a.SiteID, &kind, &category, &brand, &size, &lastYear, &batteryDue); err != nil {
			return nil, err
		}
		a.Kind = compliance.AssetKind(kind)
		a.Category = compliance.Category(category)
		a.Brand = brand.String
		a.Size = size.String
		a.LastServiceYear = lastYear.String
		a.BatteryDue = batteryDue != 0
		assets = append(assets, &a)
	}
	return assets, rows.Err()
}

// =============================================================================
// HELPERS
// =============================================================================

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func monthsOrEmpty(m []int) []int {
	if m == nil {
		return []int{}
	}
	return m
}
