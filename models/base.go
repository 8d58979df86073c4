package models

import "time"

// Base carries the identifier and timestamps shared by every record.
type Base struct {
	ID        string    `json:"id" bson:"_id" gorm:"type:varchar(36);primaryKey"`
	CreatedAt time.Time `json:"createdAt" bson:"createdAt" gorm:"not null;index"`
	UpdatedAt time.Time `json:"updatedAt" bson:"updatedAt" gorm:"not null"`
}

func (b *Base) GetID() string {
	return b.ID
}

func (b *Base) SetID(id string) {
	b.ID = id
}

// Touch stamps the record; CreatedAt is only set once.
func (b *Base) Touch(now time.Time) {
	if b.CreatedAt.IsZero() {
		b.CreatedAt = now
	}
	b.UpdatedAt = now
}
