package models

import (
	"database/sql/driver"
	"encoding/json"
	"errors"

	"gorm.io/gorm"
)

// SportNames holds the multilingual display names of a sport.
type SportNames struct {
	En string `json:"en"`
	Fr string `json:"fr"`
	Ar string `json:"ar"`
}

// Value implements the driver.Valuer interface for database storage
func (sn SportNames) Value() (driver.Value, error) {
	return json.Marshal(sn)
}

// Scan implements the sql.Scanner interface for database retrieval
func (sn *SportNames) Scan(value interface{}) error {
	if value == nil {
		return nil
	}
	switch v := value.(type) {
	case []byte:
		return json.Unmarshal(v, sn)
	case string:
		return json.Unmarshal([]byte(v), sn)
	default:
		return errors.New("unsupported type for SportNames")
	}
}

// Sport is the reference data events point at; events never own sports.
type Sport struct {
	gorm.Model
	Name        SportNames `json:"name" gorm:"type:text"`
	Icon        string     `json:"icon"`
	Description SportNames `json:"description" gorm:"type:text"`
	IsActive    bool       `json:"isActive" gorm:"default:true"`
	SortOrder   int        `json:"sortOrder"`
}
