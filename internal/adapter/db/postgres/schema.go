package postgres

import (
	"strings"
	"time"

	"gorm.io/gorm"
)

// BookSchema represents the database schema for the books table.
type BookSchema struct {
	ID     string `gorm:"primaryKey;type:varchar(36)"`
	Name   string `gorm:"not null;index"`
	Author string
	Code   string `gorm:"not null;index"`
	Copies int    `gorm:"not null;default:0;check:chk_books_copies_non_negative,copies >= 0"`
	// NameKey and CodeKey hold Unicode-lowered copies of Name and Code for
	// search. SQLite's LOWER only folds ASCII.
	NameKey   string `gorm:"column:name_key;not null;default:'';index"`
	CodeKey   string `gorm:"column:code_key;not null;default:'';index"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

// TableName specifies the table name for the BookSchema model.
func (BookSchema) TableName() string {
	return "books"
}

// UserSchema represents the database schema for the users table.
type UserSchema struct {
	ID        string `gorm:"primaryKey;type:varchar(36)"`
	Roll      string `gorm:"not null;uniqueIndex"`
	Email     string `gorm:"not null;uniqueIndex"`
	Name      string
	Profile   map[string]string `gorm:"serializer:json;type:text"`
	CreatedAt time.Time
}

// TableName specifies the table name for the UserSchema model.
func (UserSchema) TableName() string {
	return "users"
}

// LoanSchema represents the database schema for the loans table.
type LoanSchema struct {
	ID         string `gorm:"primaryKey;type:varchar(36)"`
	UserID     string `gorm:"not null;index"`
	Roll       string `gorm:"not null"`
	Email      string `gorm:"not null"`
	BookID     string `gorm:"not null;index"`
	BookName   string
	BookCode   string
	Author     string
	BorrowDate time.Time `gorm:"not null"`
	Returned   bool      `gorm:"not null;default:false"`
	ReturnDate *time.Time
}

// TableName specifies the table name for the LoanSchema model.
func (LoanSchema) TableName() string {
	return "loans"
}

// AutoMigrate creates or updates the library tables and fills search keys
// for rows written before they existed.
func AutoMigrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&BookSchema{}, &UserSchema{}, &LoanSchema{}); err != nil {
		return err
	}

	var stale []BookSchema
	if err := db.Select("id", "name", "code").Where("name_key = '' AND name <> ''").Find(&stale).Error; err != nil {
		return err
	}
	for _, b := range stale {
		err := db.Model(&BookSchema{}).Where("id = ?", b.ID).
			Updates(map[string]any{"name_key": searchKey(b.Name), "code_key": searchKey(b.Code)}).Error
		if err != nil {
			return err
		}
	}
	return nil
}

func searchKey(s string) string {
	return strings.ToLower(s)
}
