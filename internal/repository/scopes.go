package repository

import (
	"time"

	"gorm.io/gorm"
)

// scope is a GORM scope built from a listing filter.
type scope = func(db *gorm.DB) *gorm.DB

func (f FeedbackFilter) scope() scope {
	return func(db *gorm.DB) *gorm.DB {
		if f.ListingID != nil {
			db = db.Where("listing_id = ?", *f.ListingID)
		}
		if f.SellerUserID != nil {
			db = db.Where("seller_user_id = ?", *f.SellerUserID)
		}
		if f.ReviewedByStaffID != nil {
			db = db.Where("reviewed_by_staff_id = ?", *f.ReviewedByStaffID)
		}
		if f.PreviousFeedbackID != nil {
			db = db.Where("previous_feedback_id = ?", *f.PreviousFeedbackID)
		}
		if f.Status != nil {
			db = db.Where("status = ?", *f.Status)
		}
		if f.Unreviewed {
			db = db.Where("reviewed_by_staff_id IS NULL")
		}
		return createdBetween(db, f.CreatedFrom, f.CreatedTo, nil).Order(newestFirst(f.OldestFirst))
	}
}

func (f ReportFilter) scope() scope {
	return func(db *gorm.DB) *gorm.DB {
		if f.ReporterUserID != nil {
			db = db.Where("reporter_user_id = ?", *f.ReporterUserID)
		}
		if f.ReportedUserID != nil {
			db = db.Where("reported_user_id = ?", *f.ReportedUserID)
		}
		if f.AssignedAdminID != nil {
			db = db.Where("assigned_admin_id = ?", *f.AssignedAdminID)
		}
		if f.Entity != nil {
			db = db.Where("reported_entity_type = ? AND reported_entity_id = ?", f.Entity.Type, f.Entity.ID)
		}
		if f.Status != nil {
			db = db.Where("status = ?", *f.Status)
		}
		if len(f.Priorities) > 0 {
			db = db.Where("priority_level IN ?", f.Priorities)
		}
		if f.Unassigned {
			db = db.Where("assigned_admin_id IS NULL")
		}
		return createdBetween(db, f.CreatedFrom, f.CreatedTo, f.CreatedBefore).Order(newestFirst(f.OldestFirst))
	}
}

func createdBetween(db *gorm.DB, from, to, before *time.Time) *gorm.DB {
	if from != nil {
		db = db.Where("created_at >= ?", *from)
	}
	if to != nil {
		db = db.Where("created_at <= ?", *to)
	}
	if before != nil {
		db = db.Where("created_at < ?", *before)
	}
	return db
}

func newestFirst(oldestFirst bool) string {
	if oldestFirst {
		return "created_at ASC, id ASC"
	}
	return "created_at DESC, id DESC"
}

func byPosition(db *gorm.DB) *gorm.DB { return db.Order("position ASC") }

func bySequence(db *gorm.DB) *gorm.DB { return db.Order("sequence ASC") }
