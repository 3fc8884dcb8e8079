package database

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"oselia/server/internal/models"
)

// ErrNotFound is returned when a property id has no stored record.
var ErrNotFound = errors.New("property not found")

type Database struct {
	db     *gorm.DB
	logger *logrus.Logger
}

func NewDatabase(dbPath string, logger *logrus.Logger) (*Database, error) {
	if logger == nil {
		logger = logrus.New()
		logger.SetFormatter(&logrus.JSONFormatter{})
		logger.SetOutput(os.Stdout)
	}

	if dir := filepath.Dir(dbPath); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	db, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	return &Database{db: db, logger: logger}, nil
}

func (d *Database) RunMigrations() error {
	if err := d.db.AutoMigrate(&models.Property{}); err != nil {
		return fmt.Errorf("failed to migrate properties: %w", err)
	}

	// Spatial index speeds up the coordinate-bearing listing used by
	// comparable search and map queries.
	return d.db.Exec(`
		CREATE INDEX IF NOT EXISTS idx_properties_coordinates
		ON properties(latitude, longitude);
	`).Error
}

// SaveProperty persists a record, replacing any existing record with the same
// id in a single atomic write. Edits are full replacements, never in-place
// mutations.
func (d *Database) SaveProperty(p *models.Property) error {
	if p.ID == "" {
		return errors.New("property id must be set before saving")
	}
	return d.db.Save(p).Error
}

func (d *Database) GetPropertyByID(id string) (*models.Property, error) {
	var p models.Property
	err := d.db.First(&p, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (d *Database) GetAllProperties() ([]models.Property, error) {
	var properties []models.Property
	if err := d.db.Order("created_at").Find(&properties).Error; err != nil {
		return nil, err
	}
	return properties, nil
}

// GetPropertiesWithCoordinates returns all records eligible for
// distance-based search.
func (d *Database) GetPropertiesWithCoordinates() ([]models.Property, error) {
	var properties []models.Property
	err := d.db.
		Where("latitude IS NOT NULL AND longitude IS NOT NULL").
		Order("created_at").
		Find(&properties).Error
	if err != nil {
		return nil, err
	}
	return properties, nil
}

// GetPropertiesMissingCoordinates returns up to limit records that have never
// been through a geocoding attempt.
func (d *Database) GetPropertiesMissingCoordinates(limit int) ([]models.Property, error) {
	var properties []models.Property
	q := d.db.
		Where("(latitude IS NULL OR longitude IS NULL) AND geocoding_attempted = ?", false).
		Where("address <> ''").
		Order("created_at")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&properties).Error; err != nil {
		return nil, err
	}
	return properties, nil
}

// UpdateCoordinates stores a geocoding result for a record and marks the
// attempt as done.
func (d *Database) UpdateCoordinates(id string, lat, lon float64, geohash string) error {
	result := d.db.Model(&models.Property{}).Where("id = ?", id).Updates(map[string]interface{}{
		"latitude":            lat,
		"longitude":           lon,
		"geohash":             geohash,
		"geocoding_attempted": true,
	})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// MarkGeocodingAttempted records a failed geocoding attempt so the backfill
// does not retry the same unresolvable address every sweep.
func (d *Database) MarkGeocodingAttempted(id string) error {
	return d.db.Model(&models.Property{}).
		Where("id = ?", id).
		Update("geocoding_attempted", true).Error
}

func (d *Database) DeleteProperty(id string) error {
	result := d.db.Delete(&models.Property{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (d *Database) Close() error {
	sqlDB, err := d.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
