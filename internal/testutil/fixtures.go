package testutil

import (
	"database/sql"
	"testing"
	"time"

	"medidocs/internal/models"
)

// Fixtures holds a small hospital directory
type Fixtures struct {
	Staff        models.DirectoryUser
	DentalStaff  models.DirectoryUser
	HOD          models.DirectoryUser
	CMD          models.DirectoryUser
	Director     models.DirectoryUser
	UnitHead     models.DirectoryUser
	Admin        models.DirectoryUser
	Records      models.DirectoryUser
	Inactive     models.DirectoryUser
	HeadedUnit   string
	HeadlessUnit string
}

// NewFixtures returns the directory used across tests
func NewFixtures() *Fixtures {
	created := time.Date(2026, 1, 5, 8, 0, 0, 0, time.UTC)
	user := func(id, name, email string, role models.Role, dept, unit string) models.DirectoryUser {
		return models.DirectoryUser{
			ID:          id,
			DisplayName: name,
			Email:       email,
			Role:        role,
			Department:  dept,
			Unit:        unit,
			IsActive:    true,
			CreatedAt:   created,
		}
	}

	f := &Fixtures{
		Staff:        user("u-staff", "Ngozi Eze", "ngozi.eze@hospital.test", models.RoleStaff, "Radiology", "Imaging"),
		DentalStaff:  user("u-dental", "Tunde Bello", "tunde.bello@hospital.test", models.RoleStaff, "Dental", "Oral Surgery"),
		HOD:          user("u-hod", "Dr. Adaeze Okafor", "adaeze.okafor@hospital.test", models.RoleHOD, "Radiology", "Imaging"),
		CMD:          user("u-cmd", "Prof. Emeka Obi", "emeka.obi@hospital.test", models.RoleCMD, "Management", ""),
		Director:     user("u-dir", "Halima Sani", "halima.sani@hospital.test", models.RoleDirectorAdmin, "Administration", ""),
		UnitHead:     user("u-unithead", "Chidi Nwosu", "chidi.nwosu@hospital.test", models.RoleUnitHead, "Radiology", "Imaging"),
		Admin:        user("u-admin", "System Admin", "admin@hospital.test", models.RoleAdmin, "IT", ""),
		Records:      user("u-records", "Bola Ade", "bola.ade@hospital.test", models.RoleRecordsOfficer, "Records", ""),
		Inactive:     user("u-gone", "Former Staff", "former@hospital.test", models.RoleHOD, "Radiology", ""),
		HeadedUnit:   "Imaging",
		HeadlessUnit: "Physiotherapy",
	}
	f.Inactive.IsActive = false
	return f
}

// Users lists every fixture user
func (f *Fixtures) Users() []models.DirectoryUser {
	return []models.DirectoryUser{
		f.Staff, f.DentalStaff, f.HOD, f.CMD, f.Director, f.UnitHead, f.Admin, f.Records, f.Inactive,
	}
}

// Insert writes the fixture directory into a migrated database
func (f *Fixtures) Insert(t *testing.T, db *sql.DB) {
	t.Helper()

	for _, u := range f.Users() {
		_, err := db.Exec(
			`INSERT INTO directory_users (id, display_name, email, role, department, unit, is_active, created_at)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
			u.ID, u.DisplayName, u.Email, u.Role, u.Department, u.Unit, u.IsActive, u.CreatedAt,
		)
		if err != nil {
			t.Fatalf("Failed to create user %s: %v", u.ID, err)
		}
	}

	if _, err := db.Exec(`INSERT INTO units (name, head_user_id) VALUES ($1, $2), ($3, NULL)`,
		f.HeadedUnit, f.UnitHead.ID, f.HeadlessUnit); err != nil {
		t.Fatalf("Failed to create units: %v", err)
	}
}
