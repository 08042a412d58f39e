package model

import (
	"time"

	"gorm.io/datatypes"
)

// StoredObject is one JSON document of the blob store when backed by Postgres.
type StoredObject struct {
	Key       string         `gorm:"type:text;primaryKey"`
	Content   datatypes.JSON `gorm:"type:jsonb;not null"`
	CreatedAt time.Time      `gorm:"autoCreateTime"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime"`
}

func (StoredObject) TableName() string {
	return "stored_objects"
}
