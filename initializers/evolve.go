package initializers

import (
	"encoding/json"
	"fmt"

	"github.com/doug-martin/goqu/v9"
	"github.com/rs/zerolog/log"
)

// Column is one expected column and the DDL used to add it.
// Definitions always carry a default so existing rows stay valid.
type Column struct {
	Name       string
	Definition string
}

type TableColumns struct {
	Table   string
	Columns []Column
}

const (
	legacySqftColumn = "sqft"
	squareFeetColumn = "square_feet"
)

// ExpectedColumns is the superset of columns every evolved table must carry,
// whichever release originally created it.
var ExpectedColumns = []TableColumns{
	{Table: "listings", Columns: []Column{
		{"square_feet", "INTEGER NOT NULL DEFAULT 0"},
		{"property_type", "TEXT NOT NULL DEFAULT 'Apartment'"},
		{"images_json", "TEXT NOT NULL DEFAULT '[]'"},
		{"amenities_json", "TEXT NOT NULL DEFAULT '[]'"},
		{"utilities_included", "INTEGER NOT NULL DEFAULT 0"},
		{"pets_allowed", "INTEGER NOT NULL DEFAULT 0"},
		{"parking_available", "INTEGER NOT NULL DEFAULT 0"},
		{"furnished", "INTEGER NOT NULL DEFAULT 0"},
		{"available_until", "TEXT"},
		{"owner_name", "TEXT NOT NULL DEFAULT ''"},
		{"owner_email", "TEXT NOT NULL DEFAULT ''"},
		{"owner_phone", "TEXT NOT NULL DEFAULT ''"},
		{"owner_user_id", "INTEGER"},
		{"status", "TEXT NOT NULL DEFAULT 'available'"},
		{"lat", "REAL NOT NULL DEFAULT 0"},
		{"lng", "REAL NOT NULL DEFAULT 0"},
	}},
	{Table: "applications", Columns: []Column{{"applicant_user_id", "INTEGER"}}},
	{Table: "threads", Columns: []Column{{"owner_user_id", "INTEGER"}}},
	{Table: "messages", Columns: []Column{{"sender_user_id", "INTEGER"}}},
	{Table: "login_events", Columns: []Column{{"user_id", "INTEGER"}}},
}

// HasLegacySqft is true while the listings table still carries the pre-rename
// sqft column; listing writes keep it in sync with square_feet.
var HasLegacySqft bool

type EvolutionReport struct {
	Added         map[string][]string
	HasLegacySqft bool
	Backfilled    int64
	Seeded        int
}

func (r EvolutionReport) ColumnsAdded() int {
	total := 0
	for _, cols := range r.Added {
		total += len(cols)
	}
	return total
}

// EvolveSchema adds every missing expected column, backfills square_feet from
// the legacy sqft column once, and seeds example listings into an empty table.
// It runs before the router starts and is safe to repeat on every boot.
func EvolveSchema(db *goqu.Database) (EvolutionReport, error) {
	report := EvolutionReport{Added: map[string][]string{}}

	var listingColumns map[string]bool
	for _, tc := range ExpectedColumns {
		live, err := liveColumns(db, tc.Table)
		if err != nil {
			return report, err
		}
		if tc.Table == "listings" {
			listingColumns = live
		}

		for _, col := range tc.Columns {
			if live[col.Name] {
				continue
			}
			stmt := fmt.Sprintf("ALTER TABLE %s ADD COLUMN %s %s", tc.Table, col.Name, col.Definition)
			if _, err := db.Exec(stmt); err != nil {
				return report, fmt.Errorf("adding %s.%s: %w", tc.Table, col.Name, err)
			}
			report.Added[tc.Table] = append(report.Added[tc.Table], col.Name)
			log.Info().Str("table", tc.Table).Str("column", col.Name).Msg("schema column added")
		}
	}

	report.HasLegacySqft = listingColumns[legacySqftColumn]
	HasLegacySqft = report.HasLegacySqft

	if report.HasLegacySqft {
		copied, err := backfillSquareFeet(db)
		if err != nil {
			return report, err
		}
		report.Backfilled = copied
	}

	seeded, err := seedListings(db, report.HasLegacySqft)
	if err != nil {
		return report, err
	}
	report.Seeded = seeded

	return report, nil
}

func liveColumns(db *goqu.Database, table string) (map[string]bool, error) {
	columns := map[string]bool{}

	if Dialect == DialectPostgres {
		var names []string
		err := db.From(goqu.S("information_schema").Table("columns")).
			Select("column_name").
			Where(
				goqu.C("table_name").Eq(table),
				goqu.C("table_schema").Eq(goqu.L("current_schema()")),
			).
			ScanVals(&names)
		if err != nil {
			return nil, fmt.Errorf("listing columns of %s: %w", table, err)
		}
		for _, name := range names {
			columns[name] = true
		}
		return columns, nil
	}

	rows, err := db.Query(fmt.Sprintf("PRAGMA table_info(%s)", table))
	if err != nil {
		return nil, fmt.Errorf("PRAGMA table_info(%s): %w", table, err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			cid, notNull, pk int
			name, colType    string
			defaultValue     interface{}
		)
		if err := rows.Scan(&cid, &name, &colType, &notNull, &defaultValue, &pk); err != nil {
			return nil, fmt.Errorf("reading columns of %s: %w", table, err)
		}
		columns[name] = true
	}
	return columns, rows.Err()
}

// backfillSquareFeet copies sqft into square_feet while square_feet has never
// been populated. A listing legitimately saved with 0 square feet looks the same
// as an unmigrated one; there is no migration-version table to tell them apart.
func backfillSquareFeet(db *goqu.Database) (int64, error) {
	populated, err := db.From("listings").Where(goqu.C(squareFeetColumn).Neq(0)).Count()
	if err != nil {
		return 0, fmt.Errorf("checking square_feet: %w", err)
	}
	if populated > 0 {
		return 0, nil
	}

	result, err := db.Update("listings").
		Set(goqu.Record{squareFeetColumn: goqu.I(legacySqftColumn)}).
		Where(goqu.C(squareFeetColumn).Eq(0)).
		Executor().Exec()
	if err != nil {
		return 0, fmt.Errorf("copying sqft into square_feet: %w", err)
	}

	copied, _ := result.RowsAffected()
	if copied > 0 {
		log.Info().Int64("rows", copied).Msg("backfilled square_feet from legacy sqft")
	}
	return copied, nil
}

type seedListing struct {
	title, address, propertyType, amenities, available, description string
	price, bedrooms, squareFeet                                     int
	bathrooms, lat, lng                                             float64
	utilities, pets, parking, furnished                             int
}

const seedImage = "https://images.unsplash.com/photo-1505691938895-1758d7feb511?q=80&w=1200&auto=format&fit=crop"

var exampleListings = []seedListing{
	{
		title: "Sunny Studio Near Campus", address: "114 Pine St", propertyType: "Studio",
		amenities: `["Laundry","Furnished"]`, available: "2026-01-10",
		description: "Walkable to campus, includes utilities, and has in-unit laundry.",
		price:       1450, bedrooms: 0, squareFeet: 520, bathrooms: 1, lat: 47.615, lng: -122.335,
		utilities: 1, furnished: 1,
	},
	{
		title: "Two Bedroom with Parking", address: "820 8th Ave", propertyType: "Apartment",
		amenities: `["Parking","Gym"]`, available: "2026-02-01",
		description: "Reserved parking, updated kitchen, and a quiet courtyard view.",
		price:       2450, bedrooms: 2, squareFeet: 980, bathrooms: 1.5, lat: 47.61, lng: -122.333,
		pets: 1, parking: 1,
	},
	{
		title: "Room in Shared Townhome", address: "67 Cedar Way", propertyType: "Townhome",
		amenities: `["Study Lounge","Backyard"]`, available: "2026-01-05",
		description: "Furnished room with shared kitchen, close to transit lines.",
		price:       1100, bedrooms: 1, squareFeet: 640, bathrooms: 1, lat: 47.608, lng: -122.337,
		utilities: 1, parking: 1, furnished: 1,
	},
}

// seedListings inserts the example listings in one transaction, only into an empty table.
func seedListings(db *goqu.Database, withLegacySqft bool) (int, error) {
	count, err := db.From("listings").Count()
	if err != nil {
		return 0, fmt.Errorf("counting listings: %w", err)
	}
	if count > 0 {
		return 0, nil
	}

	images, _ := json.Marshal([]string{seedImage})
	now := NowTimestamp()

	err = db.WithTx(func(tx *goqu.TxDatabase) error {
		for _, s := range exampleListings {
			record := goqu.Record{
				"title":              s.title,
				"address":            s.address,
				"city":               "Seattle",
				"price":              s.price,
				"bedrooms":           s.bedrooms,
				"bathrooms":          s.bathrooms,
				"square_feet":        s.squareFeet,
				"property_type":      s.propertyType,
				"images_json":        string(images),
				"amenities_json":     s.amenities,
				"utilities_included": s.utilities,
				"pets_allowed":       s.pets,
				"parking_available":  s.parking,
				"furnished":          s.furnished,
				"available_from":     s.available,
				"available_until":    nil,
				"owner_name":         "Campus Lease Team",
				"owner_email":        "hello@campuslease.com",
				"owner_phone":        "555-010-1000",
				"status":             "available",
				"lat":                s.lat,
				"lng":                s.lng,
				"description":        s.description,
				"created_at":         now,
				"updated_at":         now,
			}
			if withLegacySqft {
				record[legacySqftColumn] = s.squareFeet
			}
			if _, err := tx.Insert("listings").Rows(record).Executor().Exec(); err != nil {
				return fmt.Errorf("seeding %q: %w", s.title, err)
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	log.Info().Int("rows", len(exampleListings)).Msg("seeded example listings")
	return len(exampleListings), nil
}
