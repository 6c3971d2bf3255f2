package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/YossiCharash/project-menagment-sub004/internal/backend"
	"github.com/YossiCharash/project-menagment-sub004/internal/dashboard"
	"github.com/YossiCharash/project-menagment-sub004/internal/session"
)

func main() {
	base := os.Getenv("BACKEND_BASE_URL")
	if base == "" {
		base = "http://localhost:8000"
	}
	email := os.Getenv("SMOKE_EMAIL")
	password := os.Getenv("SMOKE_PASSWORD")
	if email == "" || password == "" {
		log.Fatal("SMOKE_EMAIL and SMOKE_PASSWORD are required")
	}

	client, err := backend.New(base, backend.WithTokenSource(backend.TokenSourceFunc(session.TokenFromContext)))
	if err != nil {
		log.Fatalf("backend client: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	login, err := client.Login(ctx, email, password)
	if err != nil {
		log.Fatalf("login against %s: %v", base, err)
	}
	if login.RequiresPasswordChange {
		log.Fatal("smoke account must not require a password change")
	}
	ctx = session.ContextWithToken(ctx, login.Token)

	profile, err := client.Profile(ctx)
	if err != nil {
		log.Fatalf("profile: %v", err)
	}

	svc := dashboard.NewService(client)
	loaded, err := svc.LoadProjects(ctx, true)
	if err != nil {
		log.Fatalf("load projects: %v", err)
	}
	projects := dashboard.Filter{Archive: dashboard.ArchiveAll}.Apply(loaded)
	for _, p := range projects {
		if p.Subproject() {
			log.Fatalf("subproject %s leaked into the top-level list", p.ID)
		}
		if p.Archived() && (p.Income != 0 || p.Expense != 0) {
			log.Fatalf("archived project %s carries live finance", p.ID)
		}
	}

	charts := svc.LoadCharts(ctx, projects)

	fmt.Printf("✅ backend smoke test passed: user=%s projects=%d charts=%d\n",
		profile.Email, len(projects), len(charts))
}
