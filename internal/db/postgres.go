package db

import (
	"fmt"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/campushub/campushub-backend/internal/logger"
	"github.com/campushub/campushub-backend/internal/types"
	"github.com/campushub/campushub-backend/internal/utils"
)

type PostgresService struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewPostgresService(log *logger.Logger) (*PostgresService, error) {
	serviceLog := log.With("service", "PostgresService")

	log.Info("Loading environment variables...")
	postgresHost := utils.GetEnv("POSTGRES_HOST", "localhost", log)
	postgresPort := utils.GetEnv("POSTGRES_PORT", "5432", log)
	postgresUser := utils.GetEnv("POSTGRES_USER", "postgres", log)
	postgresPassword := utils.GetEnv("POSTGRES_PASSWORD", "", log)
	postgresName := utils.GetEnv("POSTGRES_NAME", "campushub", log)

	dsn := fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable", postgresUser, postgresPassword, postgresHost, postgresPort, postgresName)

	log.Info("Connecting to Postgres...")
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		DisableForeignKeyConstraintWhenMigrating: true,
	})
	if err != nil {
		log.Error("Failed to connect to Postgres", "error", err)
		return nil, fmt.Errorf("Failed to connect to Postgres: %w", err)
	}

	if err := db.Exec(`CREATE EXTENSION IF NOT EXISTS "uuid-ossp";`).Error; err != nil {
		log.Error("Failed to enable uuid-ossp extension", "error", err)
		return nil, fmt.Errorf("Failed to enable uuid-ossp extension: %w", err)
	}

	return &PostgresService{db: db, log: serviceLog}, nil
}

func (s *PostgresService) AutoMigrateAll() error {
	s.log.Info("Auto migrating postgres tables...")
	err := s.db.AutoMigrate(
		&types.User{},
		&types.Course{},
		&types.Section{},
		&types.Enrollment{},
		&types.Material{},
		&types.Assignment{},
		&types.Submission{},
		&types.DiscussionRoom{},
	)
	if err != nil {
		s.log.Error("Auto migration failed for postgres tables", "error", err)
		return err
	}

	s.log.Info("Configuring constraints for postgres tables...")

	// Exactly one of section_id/course_id per enrollment. NOT VALID keeps historical
	// rows readable; new writes are checked. Malformed legacy rows surface as
	// invariant violations at resolution time, they are never auto-repaired here.
	if err := s.db.Exec(`
    ALTER TABLE "enrollments"
    DROP CONSTRAINT IF EXISTS "chk_enrollments_single_target"
  `).Error; err != nil {
		return fmt.Errorf("Failed to drop chk_enrollments_single_target: %w", err)
	}
	if err := s.db.Exec(`
    ALTER TABLE "enrollments"
    ADD CONSTRAINT "chk_enrollments_single_target"
    CHECK (num_nonnulls(section_id, course_id) = 1)
    NOT VALID
  `).Error; err != nil {
		return fmt.Errorf("Failed to add chk_enrollments_single_target: %w", err)
	}

	// One enrollment per (student, target); partial so NULL targets do not collide.
	if err := s.db.Exec(`
    CREATE UNIQUE INDEX IF NOT EXISTS "idx_enrollments_student_section"
    ON "enrollments" ("student_id", "section_id")
    WHERE "section_id" IS NOT NULL
  `).Error; err != nil {
		return fmt.Errorf("Failed to create idx_enrollments_student_section: %w", err)
	}
	if err := s.db.Exec(`
    CREATE UNIQUE INDEX IF NOT EXISTS "idx_enrollments_student_course"
    ON "enrollments" ("student_id", "course_id")
    WHERE "course_id" IS NOT NULL
  `).Error; err != nil {
		return fmt.Errorf("Failed to create idx_enrollments_student_course: %w", err)
	}

	return nil
}

func (s *PostgresService) DB() *gorm.DB {
	return s.db
}
