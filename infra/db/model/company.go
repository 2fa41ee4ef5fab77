package model

type Company struct {
	GUID         string `gorm:"primary_key;size:40" json:"guid"`
	Name         string `gorm:"size:100;not null" json:"name"`
	ProcessorKey string `gorm:"size:100;not null" json:"-"`
	CallbackKey  string `gorm:"size:100;not null;unique_index" json:"-"`
	CreateTime   int64  `gorm:"not null" json:"create_time"`
	UpdateTime   int64  `gorm:"not null" json:"update_time"`
}
