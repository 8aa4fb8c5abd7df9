package services

import (
	"errors"
	"fmt"

	"github.com/CampusLease/initializers"
	"github.com/CampusLease/models"
	"github.com/doug-martin/goqu/v9"
)

var ErrListingNotFound = errors.New("listing not found")

// GetListingRow returns nil without an error when no listing has the id.
func GetListingRow(listingID int) (*models.ListingRow, error) {
	var row models.ListingRow
	found, err := initializers.DB.From("listings").
		Where(goqu.C("id").Eq(listingID)).
		ScanStruct(&row)
	if err != nil {
		return nil, fmt.Errorf("loading listing %d: %w", listingID, err)
	}
	if !found {
		return nil, nil
	}
	return &row, nil
}

// ListingFilter narrows ListListings. Nil fields are not applied.
type ListingFilter struct {
	City        string
	MinPrice    *float64
	MaxPrice    *float64
	Bedrooms    *float64
	OwnerUserID *int
}

// ListListings returns matching listings newest first.
func ListListings(filter ListingFilter) ([]models.ListingRow, error) {
	query := initializers.DB.From("listings").Order(goqu.C("created_at").Desc(), goqu.C("id").Desc())
	if filter.City != "" {
		query = query.Where(goqu.C("city").Eq(filter.City))
	}
	if filter.MinPrice != nil {
		query = query.Where(goqu.C("price").Gte(*filter.MinPrice))
	}
	if filter.MaxPrice != nil {
		query = query.Where(goqu.C("price").Lte(*filter.MaxPrice))
	}
	if filter.Bedrooms != nil {
		query = query.Where(goqu.C("bedrooms").Eq(*filter.Bedrooms))
	}
	if filter.OwnerUserID != nil {
		query = query.Where(goqu.C("owner_user_id").Eq(*filter.OwnerUserID))
	}

	rows := []models.ListingRow{}
	if err := query.ScanStructs(&rows); err != nil {
		return nil, fmt.Errorf("listing listings: %w", err)
	}
	return rows, nil
}

// CreateListing inserts a listing record stamped with the current time and returns the stored row.
func CreateListing(record goqu.Record) (*models.ListingRow, error) {
	now := initializers.NowTimestamp()
	record["created_at"] = now
	record["updated_at"] = now

	id, err := initializers.InsertReturningID(initializers.DB.Insert("listings").Rows(record))
	if err != nil {
		return nil, fmt.Errorf("inserting listing: %w", err)
	}
	row, err := GetListingRow(int(id))
	if err != nil {
		return nil, err
	}
	if row == nil {
		return nil, ErrListingNotFound
	}
	return row, nil
}

// UpdateListing overwrites a listing with record and returns the stored row.
func UpdateListing(listingID int, record goqu.Record) (*models.ListingRow, error) {
	record["updated_at"] = initializers.NowTimestamp()

	result, err := initializers.DB.Update("listings").
		Set(record).
		Where(goqu.C("id").Eq(listingID)).
		Executor().Exec()
	if err != nil {
		return nil, fmt.Errorf("updating listing %d: %w", listingID, err)
	}
	if updated, _ := result.RowsAffected(); updated == 0 {
		return nil, ErrListingNotFound
	}

	row, err := GetListingRow(listingID)
	if err != nil {
		return nil, err
	}
	if row == nil {
		return nil, ErrListingNotFound
	}
	return row, nil
}

// DeleteListingCascade removes a listing together with its applications, the
// messages of its threads and the threads themselves. Either everything goes
// or nothing does.
func DeleteListingCascade(listingID int) error {
	return initializers.DB.WithTx(func(tx *goqu.TxDatabase) error {
		if _, err := tx.Delete("applications").
			Where(goqu.C("listing_id").Eq(listingID)).
			Executor().Exec(); err != nil {
			return fmt.Errorf("deleting applications: %w", err)
		}

		var threadIDs []string
		if err := tx.From("threads").
			Select("id").
			Where(goqu.C("property_id").Eq(listingID)).
			ScanVals(&threadIDs); err != nil {
			return fmt.Errorf("listing threads: %w", err)
		}

		if len(threadIDs) > 0 {
			if _, err := tx.Delete("messages").
				Where(goqu.C("thread_id").In(threadIDs)).
				Executor().Exec(); err != nil {
				return fmt.Errorf("deleting messages: %w", err)
			}
		}

		if _, err := tx.Delete("threads").
			Where(goqu.C("property_id").Eq(listingID)).
			Executor().Exec(); err != nil {
			return fmt.Errorf("deleting threads: %w", err)
		}

		result, err := tx.Delete("listings").
			Where(goqu.C("id").Eq(listingID)).
			Executor().Exec()
		if err != nil {
			return fmt.Errorf("deleting listing: %w", err)
		}
		if deleted, _ := result.RowsAffected(); deleted == 0 {
			return ErrListingNotFound
		}
		return nil
	})
}
