package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"learnhub/backend/internal/auth"
	"learnhub/backend/internal/config"
	"learnhub/backend/internal/models"
	"learnhub/backend/internal/storage"
)

const usage = `Usage: admin <command> [args]

Commands:
  create-user <username> <email> <password> <student|instructor|admin>
  approve-instructor <username>
  create-course <title> <price_minor_units> <duration_months>
  assign-instructor <course_id> <username>
  add-lesson <course_id> <module_title> <lesson_title>
  enroll <username> <course_id>`

func main() {
	if len(os.Args) < 2 {
		fmt.Println(usage)
		os.Exit(1)
	}

	cfg, err := config.Load(".env")
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}
	db, err := storage.Open(cfg.DatabaseDSN)
	if err != nil {
		log.Fatalf("failed to connect database: %v", err)
	}
	if err := storage.Migrate(db); err != nil {
		log.Fatalf("failed to migrate database: %v", err)
	}
	s := storage.NewStorageService(db)
	ctx := context.Background()

	command, args := os.Args[1], os.Args[2:]
	switch command {
	case "create-user":
		need(args, 4, "create-user <username> <email> <password> <role>")
		u, err := createUser(ctx, s, args[0], args[1], args[2], models.Role(args[3]))
		if err != nil {
			log.Fatalf("Error creating user: %v", err)
		}
		fmt.Printf("User %s created with id %d.\n", u.Username, u.ID)
	case "approve-instructor":
		need(args, 1, "approve-instructor <username>")
		if err := approveInstructor(ctx, s, args[0]); err != nil {
			log.Fatalf("Error approving instructor: %v", err)
		}
		fmt.Printf("Instructor %s approved.\n", args[0])
	case "create-course":
		need(args, 3, "create-course <title> <price_minor_units> <duration_months>")
		price, err := strconv.ParseInt(args[1], 10, 64)
		if err != nil || price <= 0 {
			fmt.Println("Invalid price. Please provide a positive integer in minor units.")
			os.Exit(1)
		}
		months, err := strconv.Atoi(args[2])
		if err != nil || months <= 0 {
			fmt.Println("Invalid duration. Please provide a positive number of months.")
			os.Exit(1)
		}
		c := &models.Course{Title: args[0], PriceCents: price, DurationMonths: months}
		if err := s.CreateCourse(ctx, c); err != nil {
			log.Fatalf("Error creating course: %v", err)
		}
		fmt.Printf("Course %q created with id %d.\n", c.Title, c.ID)
	case "assign-instructor":
		need(args, 2, "assign-instructor <course_id> <username>")
		if err := assignInstructor(ctx, s, parseID(args[0]), args[1]); err != nil {
			log.Fatalf("Error assigning instructor: %v", err)
		}
		fmt.Printf("%s now teaches course %s.\n", args[1], args[0])
	case "add-lesson":
		need(args, 3, "add-lesson <course_id> <module_title> <lesson_title>")
		lesson, err := addLesson(ctx, s, parseID(args[0]), args[1], args[2])
		if err != nil {
			log.Fatalf("Error adding lesson: %v", err)
		}
		fmt.Printf("Lesson %q created with id %d.\n", lesson.Title, lesson.ID)
	case "enroll":
		need(args, 2, "enroll <username> <course_id>")
		e, err := enroll(ctx, s, args[0], parseID(args[1]))
		if err != nil {
			log.Fatalf("Error enrolling: %v", err)
		}
		fmt.Printf("%s enrolled in course %d until %s.\n", args[0], e.CourseID, e.ExpiresOn.Format(time.DateOnly))
	default:
		fmt.Println("Unknown command")
		fmt.Println(usage)
		os.Exit(1)
	}
}

func need(args []string, n int, form string) {
	if len(args) != n {
		fmt.Println("Usage: admin " + form)
		os.Exit(1)
	}
}

func parseID(raw string) uint {
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		fmt.Println("Invalid ID. Please provide a positive integer.")
		os.Exit(1)
	}
	return uint(id)
}

func createUser(ctx context.Context, s storage.Storage, username, email, password string, role models.Role) (*models.User, error) {
	if !role.Valid() {
		return nil, fmt.Errorf("unknown role %q", role)
	}
	hash, err := auth.HashPassword(password)
	if err != nil {
		return nil, err
	}
	u := &models.User{
		Username:     username,
		Email:        email,
		PasswordHash: hash,
		Role:         role,
		IsActive:     true,
		// instructors wait for approve-instructor
		IsApproved: role != models.RoleInstructor,
	}
	if err := s.CreateUser(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

func approveInstructor(ctx context.Context, s storage.Storage, username string) error {
	u, err := s.GetUserByUsername(ctx, username)
	if err != nil {
		return err
	}
	if u.Role != models.RoleInstructor {
		return fmt.Errorf("%s is not an instructor", username)
	}
	return s.SetUserApproved(ctx, u.ID, true)
}

func assignInstructor(ctx context.Context, s storage.Storage, courseID uint, username string) error {
	u, err := s.GetUserByUsername(ctx, username)
	if err != nil {
		return err
	}
	if u.Role != models.RoleInstructor {
		return fmt.Errorf("%s is not an instructor", username)
	}
	return s.AssignInstructor(ctx, courseID, u.ID)
}

func addLesson(ctx context.Context, s storage.Storage, courseID uint, moduleTitle, lessonTitle string) (*models.Lesson, error) {
	if _, err := s.GetCourse(ctx, courseID); err != nil {
		return nil, err
	}
	var lesson *models.Lesson
	err := s.WithTx(ctx, func(tx *storage.Service) error {
		m := &models.Module{CourseID: courseID, Title: moduleTitle}
		if err := tx.CreateModule(ctx, m); err != nil {
			return err
		}
		lesson = &models.Lesson{ModuleID: m.ID, Title: lessonTitle}
		return tx.CreateLesson(ctx, lesson)
	})
	return lesson, err
}

// enroll grants access the way a settled payment does.
func enroll(ctx context.Context, s storage.Storage, username string, courseID uint) (*models.Enrollment, error) {
	u, err := s.GetUserByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if u.Role != models.RoleStudent {
		return nil, fmt.Errorf("%s is not a student", username)
	}
	c, err := s.GetCourse(ctx, courseID)
	if err != nil {
		return nil, err
	}
	expires := time.Now().UTC().AddDate(0, 0, c.DurationMonths*config.EnrollmentMonthDays)
	e, _, err := s.Enroll(ctx, u.ID, c.ID, expires)
	return e, err
}
