package entity

type Category struct {
	ID   int64  `gorm:"primaryKey"`
	Name string `gorm:"type:varchar(128);uniqueIndex;not null"`

	Movies []Movie `gorm:"many2many:movie_categories"`
}
