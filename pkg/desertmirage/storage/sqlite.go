package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"
)

const errDBClientNil = "db client is nil"

// ErrRunNotFound is returned when a run ID is not in the store.
var ErrRunNotFound = errors.New("run not found")

type DBClient struct {
	DB *gorm.DB
	db *sql.DB
}

type Run struct {
	ID         string `gorm:"primaryKey;type:varchar(36)"`
	TestID     string `gorm:"index:idx_run_test"`
	SurveyType string
	Channel    string
	Files      int
	Units      int
	Records    int
	Inserted   int
	CreatedAt  time.Time `gorm:"index:idx_run_created"`
}

// DailyResult is one accepted dynamic response. The same pass of the same line
// is stored once no matter how many runs process it.
type DailyResult struct {
	ID         uint   `gorm:"primaryKey;autoIncrement"`
	RunID      string `gorm:"type:varchar(36);index:idx_daily_run"`
	Filename   string `gorm:"uniqueIndex:idx_daily_unique,priority:1"`
	Date       string `gorm:"uniqueIndex:idx_daily_unique,priority:2"`
	AMPM       string `gorm:"column:am_pm;uniqueIndex:idx_daily_unique,priority:3"`
	TestItemID string `gorm:"uniqueIndex:idx_daily_unique,priority:4"`
	SensorID   string `gorm:"uniqueIndex:idx_daily_unique,priority:5"`
	Pass       string
	TestID     string
	Response   float64
	X          float64
	Y          float64
	Offset     float64
	Channel    string
}

type SeedTestItem struct {
	ID          uint   `gorm:"primaryKey;autoIncrement"`
	RunID       string `gorm:"type:varchar(36);index:idx_seed_run"`
	TestItemID  string
	SensorID    string
	Date        string
	Offset      float64
	TrueX       float64
	TrueY       float64
	Placement   string
	Orientation float64
	Inclination float64
}

type StandardValue struct {
	ID           uint   `gorm:"primaryKey;autoIncrement"`
	RunID        string `gorm:"type:varchar(36);uniqueIndex:idx_std_unique,priority:1"`
	SensorID     string `gorm:"uniqueIndex:idx_std_unique,priority:2"`
	TestItemID   string `gorm:"uniqueIndex:idx_std_unique,priority:3"`
	MeanResponse float64
	MeanOffset   float64
	Count        int
}

func NewDBClientWithPath(dbPath string) (*DBClient, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil && !os.IsExist(err) {
		if filepath.Dir(dbPath) != "." {
			return nil, fmt.Errorf("creating db dir: %w", err)
		}
	}

	gormConfig := &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	}

	db, err := gorm.Open(sqlite.Open(dbPath+"?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"), gormConfig)
	if err != nil {
		return nil, fmt.Errorf("opening sqlite db: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("getting sql.DB from gorm: %w", err)
	}

	// SQLite allows a single writer.
	sqlDB.SetMaxOpenConns(1)
	sqlDB.SetConnMaxLifetime(time.Hour)

	if err := db.AutoMigrate(&Run{}, &DailyResult{}, &SeedTestItem{}, &StandardValue{}); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("auto migrate: %w", err)
	}

	return &DBClient{DB: db, db: sqlDB}, nil
}

func (c *DBClient) Close() error {
	if c == nil || c.db == nil {
		return nil
	}
	return c.db.Close()
}

// SaveRun stores a run and its tables in one transaction. Daily results that
// are already present are skipped; the number of new rows is returned and
// recorded on the run.
func (c *DBClient) SaveRun(run *Run, daily []DailyResult, seedItems []SeedTestItem, standard []StandardValue) (int, error) {
	if c == nil || c.DB == nil {
		return 0, errors.New(errDBClientNil)
	}

	var inserted int64
	err := c.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(run).Error; err != nil {
			return fmt.Errorf("creating run: %w", err)
		}

		for i := range daily {
			daily[i].RunID = run.ID
		}
		for i := range seedItems {
			seedItems[i].RunID = run.ID
		}
		for i := range standard {
			standard[i].RunID = run.ID
		}

		if len(daily) > 0 {
			res := tx.Clauses(clause.OnConflict{DoNothing: true}).CreateInBatches(daily, 500)
			if res.Error != nil {
				return fmt.Errorf("batch insert daily results: %w", res.Error)
			}
			inserted = res.RowsAffected
		}
		if len(seedItems) > 0 {
			if err := tx.CreateInBatches(seedItems, 500).Error; err != nil {
				return fmt.Errorf("batch insert seed test items: %w", err)
			}
		}
		if len(standard) > 0 {
			if err := tx.CreateInBatches(standard, 500).Error; err != nil {
				return fmt.Errorf("batch insert standard values: %w", err)
			}
		}

		run.Inserted = int(inserted)
		return tx.Model(run).Update("inserted", run.Inserted).Error
	})
	if err != nil {
		return 0, err
	}
	return int(inserted), nil
}

// ListRuns returns all runs, newest first.
func (c *DBClient) ListRuns() ([]Run, error) {
	if c == nil || c.DB == nil {
		return nil, errors.New(errDBClientNil)
	}
	var runs []Run
	if err := c.DB.Order("created_at DESC").Find(&runs).Error; err != nil {
		return nil, fmt.Errorf("listing runs: %w", err)
	}
	return runs, nil
}

func (c *DBClient) GetRun(runID string) (*Run, error) {
	if c == nil || c.DB == nil {
		return nil, errors.New(errDBClientNil)
	}
	var run Run
	err := c.DB.Where("id = ?", runID).First(&run).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: %s", ErrRunNotFound, runID)
	}
	if err != nil {
		return nil, fmt.Errorf("querying run: %w", err)
	}
	return &run, nil
}

// DailyResults returns the rows first stored by runID, in insertion order.
func (c *DBClient) DailyResults(runID string) ([]DailyResult, error) {
	var rows []DailyResult
	if err := c.findByRun(runID, &rows); err != nil {
		return nil, fmt.Errorf("querying daily results: %w", err)
	}
	return rows, nil
}

func (c *DBClient) SeedTestItems(runID string) ([]SeedTestItem, error) {
	var rows []SeedTestItem
	if err := c.findByRun(runID, &rows); err != nil {
		return nil, fmt.Errorf("querying seed test items: %w", err)
	}
	return rows, nil
}

func (c *DBClient) StandardValues(runID string) ([]StandardValue, error) {
	var rows []StandardValue
	if err := c.findByRun(runID, &rows); err != nil {
		return nil, fmt.Errorf("querying standard values: %w", err)
	}
	return rows, nil
}

func (c *DBClient) findByRun(runID string, dest any) error {
	if c == nil || c.DB == nil {
		return errors.New(errDBClientNil)
	}
	if _, err := c.GetRun(runID); err != nil {
		return err
	}
	return c.DB.Where("run_id = ?", runID).Order("id").Find(dest).Error
}
