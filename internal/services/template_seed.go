package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"

	"gopkg.in/yaml.v3"

	"alfredoptarigan/tender-evaluator/internal/models"
	"alfredoptarigan/tender-evaluator/internal/repositories"
)

// TemplateSeedFile is the YAML layout accepted by SeedTemplates:
//
//	templates:
//	  - name: Consulting services (QCBS)
//	    methodology: QCBS
//	    criteria:
//	      - {id: approach, name: Technical approach, kind: technical, max_score: 60}
//	      - {id: price, name: Financial proposal, kind: financial, max_score: 40}
type TemplateSeedFile struct {
	Templates []models.CreateTemplateRequest `yaml:"templates"`
}

// ParseTemplateSeed decodes a seed file, rejecting unknown keys.
func ParseTemplateSeed(r io.Reader) (*TemplateSeedFile, error) {
	decoder := yaml.NewDecoder(r)
	decoder.KnownFields(true)

	var seed TemplateSeedFile
	if err := decoder.Decode(&seed); err != nil {
		if errors.Is(err, io.EOF) {
			return &seed, nil
		}
		return nil, fmt.Errorf("failed to parse template seed: %w", err)
	}
	return &seed, nil
}

// SeedTemplatesFromFile loads path and registers every template whose name is
// not already known. It returns how many templates were created.
func SeedTemplatesFromFile(ctx context.Context, path string, registry TemplateRegistry, templateRepo repositories.TemplateRepository) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, fmt.Errorf("failed to open template seed: %w", err)
	}
	defer f.Close()

	seed, err := ParseTemplateSeed(f)
	if err != nil {
		return 0, err
	}
	return SeedTemplates(ctx, seed, registry, templateRepo)
}

func SeedTemplates(ctx context.Context, seed *TemplateSeedFile, registry TemplateRegistry, templateRepo repositories.TemplateRepository) (int, error) {
	created := 0
	for _, req := range seed.Templates {
		_, err := templateRepo.FindByName(ctx, req.Name)
		if err == nil {
			log.Printf("⏭️  Template %q already registered\n", req.Name)
			continue
		}
		if !errors.Is(err, models.ErrRecordNotFound) {
			return created, fmt.Errorf("failed to look up template %q: %w", req.Name, err)
		}

		template, err := registry.CreateTemplate(ctx, req)
		if err != nil {
			return created, fmt.Errorf("failed to seed template %q: %w", req.Name, err)
		}
		log.Printf("✅ Template %q registered as %s\n", template.Name, template.ID)
		created++
	}
	return created, nil
}
