package cmd

import (
	"fmt"
	"log"

	"github.com/spf13/cobra"
	"golang.org/x/crypto/bcrypt"
	gormPostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Seed the database with sample data",
	Long:  `Seed the database with sample data for development and testing purposes.`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := loadConfig(".")
		if err != nil {
			log.Fatalf("failed to load config: %v", err)
		}

		db, err := gorm.Open(gormPostgres.Open(cfg.Database.Source), &gorm.Config{
			Logger: gormLogger.Default.LogMode(gormLogger.Silent),
		})
		if err != nil {
			log.Fatalf("failed to init db: %v", err)
		}

		if clearData {
			for _, table := range []string{"checkout_requests", "qr_code_logs", "attendance_logs", "leave_applications", "users", "branches"} {
				if err := db.Exec("DELETE FROM " + table).Error; err != nil {
					log.Fatalf("failed to clear table %s: %v", table, err)
				}
			}
			fmt.Println("Cleared existing data")
		}

		branches := []struct {
			Name    string
			Address string
			Phone   string
		}{
			{"Kemang", "Jl. Kemang Raya No. 12, Jakarta Selatan", "021-7191234"},
			{"Bintaro", "Jl. Bintaro Utama Sektor 3, Tangerang Selatan", "021-7355678"},
			{"Depok", "Jl. Margonda Raya No. 88, Depok", "021-7781122"},
		}

		for _, b := range branches {
			var exists int
			row := db.Raw("SELECT 1 FROM branches WHERE name = ?", b.Name).Row()
			if err := row.Scan(&exists); err == nil {
				continue
			}
			if err := db.Exec(
				"INSERT INTO branches (name, address, contact_phone, created_at, updated_at) VALUES (?, ?, ?, now(), now())",
				b.Name, b.Address, b.Phone,
			).Error; err != nil {
				log.Fatalf("failed to insert branch %s: %v", b.Name, err)
			}
			fmt.Printf("Seeded branch: %s\n", b.Name)
		}

		var kemangID int64
		if err := db.Raw("SELECT id FROM branches WHERE name = ?", "Kemang").Row().Scan(&kemangID); err != nil {
			log.Fatalf("failed to lookup branch id: %v", err)
		}

		password := "password"
		hash, _ := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)

		users := []struct {
			EmployeeID string
			Email      string
			Name       string
			Role       string
		}{
			{"SUPER001", "super@jeycentre.id", "Super Admin", "superadmin"},
			{"HR001", "hr@jeycentre.id", "HR Staff", "hr"},
			{"SPV001", "supervisor.kemang@jeycentre.id", "Kemang Supervisor", "supervisor"},
			{"EMP001", "therapist.kemang@jeycentre.id", "Kemang Therapist", "therapist"},
		}

		for _, u := range users {
			var exists int
			row := db.Raw("SELECT 1 FROM users WHERE employee_id = ?", u.EmployeeID).Row()
			if err := row.Scan(&exists); err == nil {
				fmt.Printf("user %s already exists, skipping\n", u.EmployeeID)
				continue
			}
			if err := db.Exec(
				`INSERT INTO users (employee_id, email, name, password_hash, role, branch_id, login_time, grace_minutes, is_active, created_at, updated_at)
				 VALUES (?, ?, ?, ?, ?, ?, ?, ?, true, now(), now())`,
				u.EmployeeID, u.Email, u.Name, string(hash), u.Role, kemangID,
				cfg.Attendance.DefaultLogin, cfg.Attendance.DefaultGraceMin,
			).Error; err != nil {
				log.Fatalf("failed to insert user %s: %v", u.EmployeeID, err)
			}
			fmt.Printf("Seeded user: %s (%s)\n", u.EmployeeID, u.Role)
		}

		fmt.Println("Seeding complete; default password is", password)
	},
}
