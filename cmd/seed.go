package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"night-attendance-backend/internal/geofence"
	"night-attendance-backend/internal/platform/auth"
	"night-attendance-backend/internal/platform/db"
	"night-attendance-backend/internal/students"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Load boundary, roster or warden data into the database",
}

var seedGeofenceCmd = &cobra.Command{
	Use:   "geofence",
	Short: "Replace the campus boundary from a Latitude/Longitude CSV",
	RunE:  runSeedGeofence,
}

var seedStudentsCmd = &cobra.Command{
	Use:   "students",
	Short: "Import or update students from a hostel roster CSV",
	RunE:  runSeedStudents,
}

var seedWardenCmd = &cobra.Command{
	Use:   "warden",
	Short: "Create or update a warden account",
	RunE:  runSeedWarden,
}

func init() {
	rootCmd.AddCommand(seedCmd)
	seedCmd.AddCommand(seedGeofenceCmd, seedStudentsCmd, seedWardenCmd)

	seedGeofenceCmd.Flags().String("file", "", "Boundary CSV with Latitude and Longitude columns")
	_ = seedGeofenceCmd.MarkFlagRequired("file")

	seedStudentsCmd.Flags().String("file", "", "Roster CSV exported from the hostel sheet")
	seedStudentsCmd.Flags().String("email-domain", "jklu.edu.in", "Domain for generated student emails")
	seedStudentsCmd.Flags().String("default-password", "", "Initial password for newly created students")
	_ = seedStudentsCmd.MarkFlagRequired("file")
	_ = seedStudentsCmd.MarkFlagRequired("default-password")

	seedWardenCmd.Flags().String("email", "", "Warden email")
	seedWardenCmd.Flags().String("name", "Warden", "Display name")
	seedWardenCmd.Flags().String("password", "", "Warden password")
	seedWardenCmd.Flags().String("hostel", "", "Hostel the warden looks after")
	_ = seedWardenCmd.MarkFlagRequired("email")
	_ = seedWardenCmd.MarkFlagRequired("password")
}

func runSeedGeofence(cmd *cobra.Command, _ []string) error {
	path, _ := cmd.Flags().GetString("file")
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	points, err := geofence.ParseBoundaryCSV(f)
	if err != nil {
		return err
	}
	if len(points) < geofence.MinPoints {
		return fmt.Errorf("%s: %w (got %d)", path, geofence.ErrInvalidBoundary, len(points))
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	conn, err := db.Connect(cfg.DB)
	if err != nil {
		return err
	}
	defer conn.Close()

	if err := geofence.NewStore(conn).ReplaceBoundary(cmd.Context(), points); err != nil {
		return err
	}
	fmt.Printf("Seeded %d geofence points.\n", len(points))
	return nil
}

func runSeedStudents(cmd *cobra.Command, _ []string) error {
	path, _ := cmd.Flags().GetString("file")
	domain, _ := cmd.Flags().GetString("email-domain")
	password, _ := cmd.Flags().GetString("default-password")

	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	roster, err := students.ParseRoster(f, domain)
	if err != nil {
		return err
	}
	if len(roster) == 0 {
		return errors.New("roster has no student rows")
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	conn, err := db.Connect(cfg.DB)
	if err != nil {
		return err
	}
	defer conn.Close()

	// bcrypt は1回だけ計算し、新規作成時のみ使われる
	hash, err := auth.HashPassword(password)
	if err != nil {
		return err
	}

	store := students.NewStore(conn)
	bar := progressbar.NewOptions(len(roster),
		progressbar.OptionSetDescription("Importing students"),
		progressbar.OptionShowCount(),
		progressbar.OptionShowElapsedTimeOnFinish(),
		progressbar.OptionFullWidth(),
	)

	var created, updated int
	for _, e := range roster {
		isNew, err := store.Upsert(cmd.Context(), e, hash)
		if err != nil {
			_ = bar.Finish()
			return fmt.Errorf("student %s: %w", e.RegNo, err)
		}
		if isNew {
			created++
		} else {
			updated++
		}
		_ = bar.Add(1)
	}
	fmt.Printf("\nImported %d students (%d created, %d updated).\n", len(roster), created, updated)
	return nil
}

func runSeedWarden(cmd *cobra.Command, _ []string) error {
	email, _ := cmd.Flags().GetString("email")
	name, _ := cmd.Flags().GetString("name")
	password, _ := cmd.Flags().GetString("password")
	hostel, _ := cmd.Flags().GetString("hostel")

	hash, err := auth.HashPassword(password)
	if err != nil {
		return err
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	conn, err := db.Connect(cfg.DB)
	if err != nil {
		return err
	}
	defer conn.Close()

	normalized := auth.NormalizeEmail(email)
	if err := auth.NewStore(conn).UpsertWarden(cmd.Context(), name, normalized, hash, hostel); err != nil {
		return err
	}
	fmt.Printf("Warden %s ready.\n", normalized)
	return nil
}
