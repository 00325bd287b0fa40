package common

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"finance-sync-go/internal/models"

	"gopkg.in/yaml.v2"
)

type CategoryConfig struct {
	Id    string `yaml:"id"`
	Name  string `yaml:"name"`
	Type  string `yaml:"type"`
	Color string `yaml:"color"`
}

type CategoriesConfig struct {
	Categories []CategoryConfig `yaml:"categories"`
}

// LoadCategories reads the seed categories from a YAML file. An empty
// name returns the built-in defaults. Every loaded category is a protected
// default; missing ids are derived from the name.
func LoadCategories(categoriesFile string) ([]models.Category, error) {
	if categoriesFile == "" {
		return models.DefaultCategories(), nil
	}

	var categoriesPath string
	if filepath.IsAbs(categoriesFile) {
		categoriesPath = categoriesFile
	} else {
		wd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get working directory: %w", err)
		}
		categoriesPath = filepath.Join(wd, categoriesFile)
	}

	data, err := os.ReadFile(categoriesPath)
	if err != nil {
		return nil, fmt.Errorf("unable to read %s: %w", categoriesFile, err)
	}

	var config CategoriesConfig
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("unable to parse %s: %w", categoriesFile, err)
	}
	if len(config.Categories) == 0 {
		return nil, fmt.Errorf("%s lists no categories", categoriesFile)
	}

	seen := make(map[string]bool)
	categories := make([]models.Category, 0, len(config.Categories))
	for i, c := range config.Categories {
		name := strings.TrimSpace(c.Name)
		if name == "" {
			return nil, fmt.Errorf("category at index %d missing name", i)
		}
		t := models.TransactionType(c.Type)
		if !t.Valid() {
			return nil, fmt.Errorf("category %q has invalid type %q", name, c.Type)
		}
		id := c.Id
		if id == "" {
			id = "default-" + slug(name)
		}
		if seen[id] {
			return nil, fmt.Errorf("duplicate category id %q", id)
		}
		seen[id] = true

		categories = append(categories, models.Category{
			Id:        id,
			Name:      name,
			Type:      t,
			Color:     c.Color,
			IsDefault: true,
		})
	}

	return categories, nil
}

func slug(name string) string {
	return strings.Join(strings.Fields(strings.ToLower(name)), "-")
}
