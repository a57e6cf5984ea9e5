package user

import (
	"time"

	domuser "github.com/kailas-cloud/usersearch/internal/domain/user"
)

// Model is the gorm row of the users table.
type Model struct {
	ID         int64     `gorm:"primaryKey;autoIncrement"`
	FullName   string    `gorm:"type:varchar(255);not null"`
	Username   string    `gorm:"type:varchar(50);uniqueIndex;not null"`
	Gender     string    `gorm:"type:varchar(16);index;not null"`
	ProfilePic *string   `gorm:"type:varchar(512)"`
	CreatedAt  time.Time `gorm:"autoCreateTime;index"`
	UpdatedAt  time.Time `gorm:"autoUpdateTime"`
}

// TableName specifies the table name for Model.
func (Model) TableName() string {
	return "users"
}

// ToDomain converts the row to a search record.
func (m *Model) ToDomain() domuser.Record {
	return domuser.Record{
		ID:         m.ID,
		FullName:   m.FullName,
		Username:   m.Username,
		Gender:     m.Gender,
		ProfilePic: m.ProfilePic,
		CreatedAt:  m.CreatedAt,
	}
}

func fromDomain(r domuser.Record) Model {
	return Model{
		ID:         r.ID,
		FullName:   r.FullName,
		Username:   r.Username,
		Gender:     r.Gender,
		ProfilePic: r.ProfilePic,
		CreatedAt:  r.CreatedAt,
	}
}
