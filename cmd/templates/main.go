package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"monitor/config"
	"monitor/internal/database"
	"monitor/internal/logger"
	. "monitor/internal/models"
	"monitor/internal/repositories"
)

// templateFile is the on-disk form of an email template, one file per slug.
type templateFile struct {
	Slug     string `json:"slug"`
	Name     string `json:"name"`
	Subject  string `json:"subject"`
	Template string `json:"template"`
}

func main() {
	log := logger.New("templates")

	dir := flag.String("dir", "templates/email", "directory of template files")
	backup := flag.Bool("backup", false, "write database templates to disk")
	restore := flag.Bool("restore", false, "load disk templates into the database")
	flag.Parse()

	if *backup == *restore {
		fmt.Fprintln(os.Stderr, "exactly one of -backup or -restore is required")
		os.Exit(1)
	}

	config, err := config.InitConfig()
	if err != nil {
		log.Er("failed to initialize config", err)
		os.Exit(1)
	}

	db, err := database.New(config)
	if err != nil {
		log.Er("failed to open database", err)
		os.Exit(1)
	}
	defer db.Close()

	platformRepo := repositories.NewPlatform(db)
	ctx := context.Background()

	if *backup {
		err = backupTemplates(ctx, platformRepo, *dir, log)
	} else {
		err = restoreTemplates(ctx, platformRepo, *dir, log)
	}
	if err != nil {
		os.Exit(1)
	}
}

func backupTemplates(ctx context.Context, repo repositories.PlatformRepository, dir string, log logger.Logger) error {
	log = log.Function("backupTemplates")

	templates, err := repo.GetEmailTemplates(ctx)
	if err != nil {
		return log.Err("failed to load templates", err)
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return log.Err("failed to create directory", err, "dir", dir)
	}

	for _, template := range templates {
		file := templateFile{
			Slug:     template.Slug,
			Name:     template.Name,
			Subject:  template.Subject,
			Template: template.Template,
		}
		data, err := json.MarshalIndent(file, "", "  ")
		if err != nil {
			return log.Err("failed to marshal template", err, "slug", template.Slug)
		}
		path := filepath.Join(dir, template.Slug+".json")
		if err := os.WriteFile(path, data, 0o644); err != nil {
			return log.Err("failed to write template file", err, "path", path)
		}
		log.Info("Backed up template", "slug", template.Slug)
	}
	return nil
}

func restoreTemplates(ctx context.Context, repo repositories.PlatformRepository, dir string, log logger.Logger) error {
	log = log.Function("restoreTemplates")

	entries, err := os.ReadDir(dir)
	if err != nil {
		return log.Err("failed to read directory", err, "dir", dir)
	}

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}

		data, err := os.ReadFile(filepath.Join(dir, entry.Name()))
		if err != nil {
			return log.Err("failed to read template file", err, "file", entry.Name())
		}

		var file templateFile
		if err := json.Unmarshal(data, &file); err != nil {
			return log.Err("failed to parse template file", err, "file", entry.Name())
		}

		template, err := repo.GetEmailTemplate(ctx, file.Slug)
		if err != nil {
			template = &EmailTemplate{Slug: file.Slug}
		}
		template.Name = file.Name
		template.Subject = file.Subject
		template.Template = file.Template

		if err := repo.SaveEmailTemplate(ctx, template); err != nil {
			return log.Err("failed to save template", err, "slug", file.Slug)
		}
		log.Info("Restored template", "slug", file.Slug)
	}
	return nil
}
