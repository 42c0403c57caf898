package entity

type Studio struct {
	ID             int64  `gorm:"primaryKey"`
	Name           string `gorm:"type:varchar(256);not null"`
	Country        string `gorm:"type:varchar(128);not null"`
	FoundationYear int    `gorm:"not null"`

	Movies []Movie
}
