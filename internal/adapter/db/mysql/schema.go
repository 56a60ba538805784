// Package mysql implements the repositories on top of GORM. Production runs
// against MySQL; tests run the same code on an in-memory SQLite database.
package mysql

import (
	"time"

	"gorm.io/gorm"
)

// UserSchema represents the database schema for the user table.
type UserSchema struct {
	ID        string  `gorm:"primaryKey;size:36"`
	Email     string  `gorm:"size:191;not null;uniqueIndex"`
	Name      *string `gorm:"size:191"`
	Gender    *string `gorm:"size:32"`
	Birthday  *time.Time
	CreatedAt time.Time
	UpdatedAt time.Time
}

// TableName specifies the table name for the UserSchema model.
func (UserSchema) TableName() string {
	return "user"
}

// PatientSchema represents the database schema for the patients table.
type PatientSchema struct {
	ID           string    `gorm:"primaryKey;size:36"`
	SubjectLabel string    `gorm:"size:100;not null"`
	ProtocolID   string    `gorm:"size:100;not null"`
	CreatedAt    time.Time `gorm:"autoCreateTime;index"`
}

// TableName specifies the table name for the PatientSchema model.
func (PatientSchema) TableName() string {
	return "patients"
}

// MetaStudyStructureSchema is one event or CRF of the study design.
type MetaStudyStructureSchema struct {
	ID         uint    `gorm:"primaryKey;autoIncrement"`
	Code       string  `gorm:"size:64;not null"`
	Name       string  `gorm:"size:191;not null"`
	Type       string  `gorm:"size:16;not null;index"` // EVENT or CRF
	ParentCode *string `gorm:"size:64"`
	Ordinal    int     `gorm:"not null;default:0"`
}

// TableName specifies the table name for the MetaStudyStructureSchema model.
func (MetaStudyStructureSchema) TableName() string {
	return "meta_study_structure"
}

// DataDictionarySchema labels one column of a CRF data table.
type DataDictionarySchema struct {
	ID           uint   `gorm:"primaryKey;autoIncrement"`
	TargetTable  string `gorm:"column:table_name;size:128;not null;index"`
	ColumnName   string `gorm:"size:128;not null"`
	DisplayLabel string `gorm:"size:191;not null"`
	Ordinal      int    `gorm:"not null;default:0"`
}

// TableName specifies the table name for the DataDictionarySchema model.
func (DataDictionarySchema) TableName() string {
	return "system_data_dictionary"
}

// Tables lists the fixed tables the repositories read and write.
func Tables() []string {
	return []string{
		UserSchema{}.TableName(),
		PatientSchema{}.TableName(),
		MetaStudyStructureSchema{}.TableName(),
		DataDictionarySchema{}.TableName(),
	}
}

// Migrate creates or updates the fixed tables. CRF data tables are managed
// outside the service and are never migrated here.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&UserSchema{},
		&PatientSchema{},
		&MetaStudyStructureSchema{},
		&DataDictionarySchema{},
	)
}
