package main

import (
	"fmt"
	"log"
	"math/rand"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"

	"github.com/constructhq/defect-tracker/internal/database"
	"github.com/constructhq/defect-tracker/internal/models"
	"github.com/constructhq/defect-tracker/internal/workflow"
	"github.com/constructhq/defect-tracker/pkg/auth"
	"github.com/constructhq/defect-tracker/pkg/config"
)

type seedUser struct {
	email string
	name  string
	role  models.UserRole
}

var userRoster = []seedUser{
	{"admin@constructhq.dev", "Site Admin", models.UserRoleAdmin},
	{"m.okafor@constructhq.dev", "Maria Okafor", models.UserRoleManager},
	{"p.lindqvist@constructhq.dev", "Per Lindqvist", models.UserRoleManager},
	{"j.carver@constructhq.dev", "Jess Carver", models.UserRoleEngineer},
	{"a.tanaka@constructhq.dev", "Aiko Tanaka", models.UserRoleEngineer},
	{"r.mbeki@constructhq.dev", "Ruth Mbeki", models.UserRoleEngineer},
	{"intake@constructhq.dev", "Intake Desk", models.UserRoleUser},
	{"auditor@constructhq.dev", "External Auditor", models.UserRoleObserver},
}

var projectSeeds = []models.Project{
	{Name: "Riverside Tower", Code: "RST", Location: "Portland, OR", Stages: []models.Stage{
		{Name: "Foundation"}, {Name: "Structure"}, {Name: "Envelope"}, {Name: "Fit-out"},
	}},
	{Name: "Harbor Bridge Retrofit", Code: "HBR", Location: "Baltimore, MD", Stages: []models.Stage{
		{Name: "Inspection"}, {Name: "Deck Replacement"}, {Name: "Cable Work"},
	}},
	{Name: "Northgate Mall Renovation", Code: "NGM", Location: "Seattle, WA", Stages: []models.Stage{
		{Name: "Demolition"}, {Name: "MEP Rough-in"}, {Name: "Finishes"},
	}},
	{Name: "Cedar Valley Hospital Wing", Code: "CVH", Location: "Boise, ID", Stages: []models.Stage{
		{Name: "Sitework"}, {Name: "Shell"}, {Name: "Clean Rooms"},
	}},
	{Name: "Lakeshore Residences", Code: "LSR", Location: "Chicago, IL", Stages: []models.Stage{
		{Name: "Excavation"}, {Name: "Towers A-B"}, {Name: "Landscaping"},
	}},
	{Name: "Transit Depot Expansion", Code: "TDX", Location: "Denver, CO", Stages: []models.Stage{
		{Name: "Utilities"}, {Name: "Platforms"}, {Name: "Signaling"},
	}},
}

var defectTitles = []string{
	"Hairline crack in slab near column grid C4",
	"Water ingress at curtain wall joint",
	"Rebar spacing out of tolerance on level 3",
	"HVAC duct clashes with sprinkler main",
	"Fireproofing missing on beam flange",
	"Concrete honeycombing at pour joint",
	"Anchor bolts misaligned at base plate",
	"Waterproofing membrane punctured during backfill",
	"Door frame out of plumb in stairwell B",
	"Expansion joint sealant failure",
	"Drywall screw pops along corridor ceiling",
	"Undersized conduit in electrical riser",
	"Paint blistering on exterior soffit",
	"Grout voids under precast panel",
	"Handrail height below code minimum",
	"Roof drain slopes away from outlet",
	"Spalled edge on loading dock curb",
	"Insulation gap at parapet detail",
	"Tile lippage exceeds spec in lobby",
	"Weld undercut on truss connection",
}

var priorityWeights = []struct {
	priority models.DefectPriority
	weight   int
}{
	{models.DefectPriorityLow, 2},
	{models.DefectPriorityMedium, 4},
	{models.DefectPriorityHigh, 3},
	{models.DefectPriorityCritical, 1},
}

func pickPriority(r *rand.Rand) models.DefectPriority {
	total := 0
	for _, pw := range priorityWeights {
		total += pw.weight
	}
	n := r.Intn(total)
	for _, pw := range priorityWeights {
		if n < pw.weight {
			return pw.priority
		}
		n -= pw.weight
	}
	return models.DefectPriorityMedium
}

func main() {
	_ = godotenv.Load()

	cfg, err := config.LoadConfig("")
	if err != nil {
		log.Fatal("Failed to load config:", err)
	}

	db, err := database.NewDatabase(cfg.Database.DataDir)
	if err != nil {
		log.Fatal("Failed to connect to database:", err)
	}

	r := rand.New(rand.NewSource(42))

	users := seedUsers(db)
	projects := seedProjects(db)
	seedDefects(db, r, users, projects)

	log.Println("Sample data added successfully!")
}

func seedUsers(db *database.Database) []models.User {
	users := make([]models.User, 0, len(userRoster))
	for _, su := range userRoster {
		hashed, err := auth.HashPassword("password123")
		if err != nil {
			log.Fatal("Failed to hash password:", err)
		}
		user := models.User{Email: su.email, Name: su.name, Password: hashed, Role: su.role}
		if err := db.CreateUser(&user); err != nil {
			// Re-running the seeder against an existing database is allowed.
			existing, lookupErr := db.GetUserByEmail(su.email)
			if lookupErr != nil {
				log.Fatal("Failed to create user:", err)
			}
			user = *existing
		}
		users = append(users, user)
	}
	return users
}

func seedProjects(db *database.Database) []models.Project {
	existing, err := db.ListProjects()
	if err != nil {
		log.Fatal("Failed to list projects:", err)
	}
	if len(existing) > 0 {
		return existing
	}

	now := time.Now().UTC()
	projects := make([]models.Project, 0, len(projectSeeds))
	for i, seed := range projectSeeds {
		project := seed
		for j := range project.Stages {
			start := now.AddDate(0, -(len(project.Stages)-j)*2, -i*7)
			project.Stages[j].StartDate = start
			if j < len(project.Stages)-1 {
				end := start.AddDate(0, 2, 0)
				project.Stages[j].EndDate = &end
			}
		}
		if err := db.CreateProject(&project); err != nil {
			log.Fatal("Failed to create project:", err)
		}
		projects = append(projects, project)
	}
	return projects
}

func seedDefects(db *database.Database, r *rand.Rand, users []models.User, projects []models.Project) {
	var count int64
	db.Model(&models.Defect{}).Count(&count)
	if count > 0 {
		log.Println("Defects already present, skipping defect seed")
		return
	}

	var engineers, managers []models.User
	for _, u := range users {
		switch u.Role {
		case models.UserRoleEngineer:
			engineers = append(engineers, u)
		case models.UserRoleManager:
			managers = append(managers, u)
		}
	}

	now := time.Now().UTC()
	for i := 0; i < 50; i++ {
		project := projects[r.Intn(len(projects))]
		reporter := users[r.Intn(len(users))]
		created := now.AddDate(0, 0, -r.Intn(180)).Add(-time.Duration(r.Intn(8)) * time.Hour)

		defect := models.Defect{
			ID:          uuid.New().String(),
			ProjectID:   project.ID,
			Title:       defectTitles[i%len(defectTitles)],
			Description: fmt.Sprintf("Observed during walkthrough of %s. Logged for follow-up by site team.", project.Name),
			Priority:    pickPriority(r),
			Status:      models.DefectStatusNew,
			ReporterID:  reporter.ID,
			CreatedAt:   created,
			UpdatedAt:   created,
			History:     []models.HistoryEntry{},
			Comments:    []models.Comment{},
			Attachments: []models.Attachment{},
		}

		if r.Intn(10) < 7 && len(engineers) > 0 {
			assignee := engineers[r.Intn(len(engineers))]
			defect.AssigneeID = &assignee.ID
		}
		if r.Intn(10) < 4 {
			due := created.AddDate(0, 0, 14+r.Intn(30))
			defect.DueDate = &due
		}

		advanceDefect(r, &defect, engineers, managers)

		if err := db.Create(&defect).Error; err != nil {
			log.Fatal("Failed to create defect:", err)
		}
	}
	log.Println("Seeded 50 defects")
}

// advanceDefect walks a defect forward through a random prefix of its
// lifecycle, recording a history entry per hop the way the API does.
func advanceDefect(r *rand.Rand, defect *models.Defect, engineers, managers []models.User) {
	type hop struct {
		target models.DefectStatus
		actors []models.User
	}
	path := []hop{
		{models.DefectStatusInProgress, engineers},
		{models.DefectStatusInReview, engineers},
		{models.DefectStatusClosed, managers},
	}

	// Roughly: 30% stay new, then thinning odds of each further hop.
	hops := 0
	for hops < len(path) && r.Intn(10) < 7-hops {
		hops++
	}
	// A small slice of defects get cancelled out of new instead.
	if hops == 0 && r.Intn(10) < 2 && len(managers) > 0 {
		recordHop(r, defect, models.DefectStatusCancelled, managers, "duplicate of an existing report")
		return
	}

	for i := 0; i < hops; i++ {
		actors := path[i].actors
		if len(actors) == 0 {
			return
		}
		reason := ""
		if path[i].target == models.DefectStatusClosed {
			reason = "verified on site"
		}
		recordHop(r, defect, path[i].target, actors, reason)
	}
}

func recordHop(r *rand.Rand, defect *models.Defect, target models.DefectStatus, actors []models.User, reason string) {
	actor := actors[r.Intn(len(actors))]
	at := defect.UpdatedAt.AddDate(0, 0, 1+r.Intn(10))
	defect.History = append(defect.History, models.HistoryEntry{
		ID:        uuid.New().String(),
		Action:    workflow.ActionLabel(target),
		Timestamp: at,
		Changes:   models.StatusChange{Status: target},
		Reason:    reason,
		ChangedBy: actor.Email,
	})
	defect.Status = target
	defect.UpdatedAt = at
}
