package service

import (
	"fmt"
	"regexp"
	"strings"

	"watercare/internal/models"
)

// DefaultAdminTemplate is the WhatsApp message sent to the admin for each new water test
const DefaultAdminTemplate = `New water test recorded
Customer: {customer_name}
Mobile: {mobile}
Place: {place}
Source: {water_source}
TDS: {tds} ppm
Iron: {iron_ppm} ppm
Pipeline: {pipeline_type}`

var placeholderPattern = regexp.MustCompile(`\{[a-zA-Z_]+\}`)

// TemplateService renders notification templates
type TemplateService struct {
	template string
}

// NewTemplateService creates a template service. An empty template selects DefaultAdminTemplate.
func NewTemplateService(template string) (*TemplateService, error) {
	if template == "" {
		template = DefaultAdminTemplate
	}
	s := &TemplateService{template: template}
	if err := s.ValidateTemplate(template); err != nil {
		return nil, err
	}
	return s, nil
}

// Render replaces {field} placeholders with the notification values
func (s *TemplateService) Render(n *models.Notification) (string, error) {
	if n == nil {
		return "", fmt.Errorf("notification cannot be nil")
	}

	replacer := strings.NewReplacer(
		"{customer_name}", n.CustomerName,
		"{mobile}", n.Mobile,
		"{place}", n.Place,
		"{water_source}", string(n.WaterSource),
		"{tds}", n.TDS,
		"{iron_ppm}", n.IronPPM,
		"{pipeline_type}", string(n.PipelineType),
	)
	return replacer.Replace(s.template), nil
}

// ValidateTemplate checks that template is non-empty with balanced braces and known placeholders
func (s *TemplateService) ValidateTemplate(template string) error {
	if template == "" {
		return fmt.Errorf("template cannot be empty")
	}

	openCount := strings.Count(template, "{")
	closeCount := strings.Count(template, "}")
	if openCount != closeCount {
		return fmt.Errorf("template has unbalanced braces: %d open, %d close", openCount, closeCount)
	}

	var unknown []string
	for _, placeholder := range s.GetPlaceholders(template) {
		if !validPlaceholders[placeholder] {
			unknown = append(unknown, placeholder)
		}
	}
	if len(unknown) > 0 {
		return fmt.Errorf("template has unknown placeholders: %s", strings.Join(unknown, ", "))
	}

	return nil
}

// GetPlaceholders extracts all placeholders from a template
func (s *TemplateService) GetPlaceholders(template string) []string {
	return placeholderPattern.FindAllString(template, -1)
}

var validPlaceholders = map[string]bool{
	"{customer_name}": true,
	"{mobile}":        true,
	"{place}":         true,
	"{water_source}":  true,
	"{tds}":           true,
	"{iron_ppm}":      true,
	"{pipeline_type}": true,
}
