package entity

type Movie struct {
	ID          int64  `gorm:"primaryKey"`
	Name        string `gorm:"type:varchar(256);not null;index"`
	ReleaseYear int    `gorm:"not null"`
	BoxOffice   int64  `gorm:"not null"`

	// Public ID of the poster in object storage, if one was uploaded.
	ImageID *string `gorm:"type:varchar(256)"`

	StudioID *int64
	Studio   *Studio `gorm:"constraint:OnDelete:SET NULL"`

	Categories []Category `gorm:"many2many:movie_categories"`
}

func (m *Movie) CategoryIDs() []int64 {
	ids := make([]int64, 0, len(m.Categories))
	for _, category := range m.Categories {
		ids = append(ids, category.ID)
	}
	return ids
}
