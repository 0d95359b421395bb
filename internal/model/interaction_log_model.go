package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type InteractionLog struct {
	Id          uuid.UUID      `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	SessionId   string         `gorm:"type:varchar(64);not null;index"`
	Kind        string         `gorm:"type:varchar(16);not null;index"` // search | keyword | chat
	Lat         *float64       `gorm:"type:double precision"`
	Lng         *float64       `gorm:"type:double precision"`
	Keyword     string         `gorm:"type:varchar(64)"`
	Message     string         `gorm:"type:text"`
	Reply       string         `gorm:"type:text"`
	Action      string         `gorm:"type:varchar(16)"`
	StoreIds    datatypes.JSON `gorm:"type:jsonb"`
	SuggestedId string         `gorm:"type:varchar(64)"`
	Mock        bool           `gorm:"not null;default:false"`
	OccurredAt  time.Time      `gorm:"not null;index"`
	CreatedAt   time.Time      `gorm:"autoCreateTime"`
}

func (InteractionLog) TableName() string {
	return "interaction_logs"
}
