package database

import (
	"errors"
	"fmt"

	"cineteca/internal/entity"
	"cineteca/internal/utils"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// Seed makes sure the role catalog, the admin account and a small sample
// catalog exist. It is idempotent and safe to run at every startup.
func Seed(db *gorm.DB, adminEmail, adminPassword string) error {
	if err := seedRoles(db); err != nil {
		return err
	}
	if err := seedAdmin(db, adminEmail, adminPassword); err != nil {
		return err
	}
	if err := seedCatalog(db); err != nil {
		return err
	}
	return nil
}

func seedRoles(db *gorm.DB) error {
	for _, name := range []string{entity.RoleAdmin, entity.RoleManager, entity.RoleUser} {
		role := entity.Role{Name: name}
		if err := db.Where("name = ?", name).FirstOrCreate(&role).Error; err != nil {
			return fmt.Errorf("seed role %s: %w", name, err)
		}
	}
	return nil
}

// seedAdmin creates the admin account confirmed and enabled. An empty
// password is an error on a fresh database; on an existing one the account
// is simply left alone.
func seedAdmin(db *gorm.DB, email, password string) error {
	var existing entity.User
	err := db.Where("username = ?", entity.AdminUsername).First(&existing).Error
	if err == nil {
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	if password == "" {
		return errors.New("admin password is required to seed a fresh database")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	var role entity.Role
	if err := db.Where("name = ?", entity.RoleAdmin).First(&role).Error; err != nil {
		return err
	}

	admin := entity.User{
		Username:       entity.AdminUsername,
		Email:          utils.Normalize(email),
		PasswordHash:   string(hash),
		FirstName:      "ADMIN",
		LastName:       "ADMIN",
		Enabled:        true,
		EmailConfirmed: true,
		Roles:          []entity.Role{role},
	}
	return db.Create(&admin).Error
}

func seedCatalog(db *gorm.DB) error {
	studios := []entity.Studio{
		{Name: "Warner Bros. Pictures", Country: "United States", FoundationYear: 1923},
		{Name: "Studio Ghibli", Country: "Japan", FoundationYear: 1985},
		{Name: "Pixar Animation Studios", Country: "United States", FoundationYear: 1986},
	}
	for i := range studios {
		if err := db.Where("name = ?", studios[i].Name).FirstOrCreate(&studios[i]).Error; err != nil {
			return fmt.Errorf("seed studio %s: %w", studios[i].Name, err)
		}
	}

	categories := []entity.Category{
		{Name: "Action"}, {Name: "Drama"}, {Name: "Animation"},
		{Name: "Science Fiction"}, {Name: "Comedy"},
	}
	for i := range categories {
		if err := db.Where("name = ?", categories[i].Name).FirstOrCreate(&categories[i]).Error; err != nil {
			return fmt.Errorf("seed category %s: %w", categories[i].Name, err)
		}
	}
	byName := make(map[string]entity.Category, len(categories))
	for _, category := range categories {
		byName[category.Name] = category
	}

	movies := []struct {
		movie      entity.Movie
		studio     *entity.Studio
		categories []string
	}{
		{
			movie:      entity.Movie{Name: "Spirited Away", ReleaseYear: 2001, BoxOffice: 395_000_000},
			studio:     &studios[1],
			categories: []string{"Animation", "Drama"},
		},
		{
			movie:      entity.Movie{Name: "Inception", ReleaseYear: 2010, BoxOffice: 839_000_000},
			studio:     &studios[0],
			categories: []string{"Action", "Science Fiction"},
		},
		{
			movie:      entity.Movie{Name: "Toy Story", ReleaseYear: 1995, BoxOffice: 394_000_000},
			studio:     &studios[2],
			categories: []string{"Animation", "Comedy"},
		},
	}
	for _, seed := range movies {
		var count int64
		if err := db.Model(&entity.Movie{}).Where("name = ?", seed.movie.Name).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			continue
		}
		movie := seed.movie
		movie.StudioID = &seed.studio.ID
		for _, name := range seed.categories {
			movie.Categories = append(movie.Categories, entity.Category{ID: byName[name].ID})
		}
		if err := db.Omit("Categories.*", "Studio").Create(&movie).Error; err != nil {
			return fmt.Errorf("seed movie %s: %w", seed.movie.Name, err)
		}
	}
	return nil
}
