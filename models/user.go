package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"gorm.io/gorm"
)

// User is a local mirror of the identity service's user record, populated
// by the profile sync worker. The challenge engine reads usernames from it
// and writes badge counters to it; everything else is owned remotely.
type User struct {
	ID       uint     `json:"id" gorm:"primaryKey;autoIncrement"`
	Email    string   `json:"email" gorm:"uniqueIndex;not null"`
	Username string   `json:"username" gorm:"index"`
	Badges   BadgeMap `json:"badges" gorm:"type:text"`

	Timestamps
}

// BadgeMap stores per-badge award counters as a JSON column. Awards are
// increments, never set-to-1: winning the same title twice shows count 2.
type BadgeMap map[string]int

func (m BadgeMap) Value() (driver.Value, error) {
	if m == nil {
		m = BadgeMap{}
	}
	return json.Marshal(m)
}

func (m *BadgeMap) Scan(value interface{}) error {
	if value == nil {
		*m = BadgeMap{}
		return nil
	}
	var data []byte
	switch v := value.(type) {
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return fmt.Errorf("unsupported badge map column type %T", value)
	}
	if len(data) == 0 {
		*m = BadgeMap{}
		return nil
	}
	return json.Unmarshal(data, m)
}

// Timestamps adds GORM auto-times
type Timestamps struct {
	CreatedAt time.Time      `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time      `json:"updated_at" gorm:"autoUpdateTime"`
	DeletedAt gorm.DeletedAt `json:"deleted_at,omitempty" gorm:"index"`
}
