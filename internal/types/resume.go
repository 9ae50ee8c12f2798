// Package types provides type definitions for structured data used throughout the resume builder.
//
//nolint:revive // types is a standard Go package name pattern
package types

import (
	"fmt"
	"sort"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// Resume is the candidate record every section prompt draws from
type Resume struct {
	PersonalInformation PersonalInformation `yaml:"personal_information" json:"personal_information"`
	EducationDetails    []Education         `yaml:"education_details,omitempty" json:"education_details,omitempty" validate:"dive"`
	ExperienceDetails   []Experience        `yaml:"experience_details,omitempty" json:"experience_details,omitempty" validate:"dive"`
	Projects            []Project           `yaml:"projects,omitempty" json:"projects,omitempty" validate:"dive"`
	Achievements        []Achievement       `yaml:"achievements,omitempty" json:"achievements,omitempty" validate:"dive"`
	Certifications      []Certification     `yaml:"certifications,omitempty" json:"certifications,omitempty" validate:"dive"`
	Languages           []Language          `yaml:"languages,omitempty" json:"languages,omitempty" validate:"dive"`
	Interests           []string            `yaml:"interests,omitempty" json:"interests,omitempty"`
}

// PersonalInformation holds the header fields of a resume
type PersonalInformation struct {
	Name        string `yaml:"name" json:"name" validate:"required"`
	Surname     string `yaml:"surname" json:"surname" validate:"required"`
	DateOfBirth string `yaml:"date_of_birth,omitempty" json:"date_of_birth,omitempty"`
	Country     string `yaml:"country,omitempty" json:"country,omitempty"`
	City        string `yaml:"city,omitempty" json:"city,omitempty"`
	Address     string `yaml:"address,omitempty" json:"address,omitempty"`
	PhonePrefix string `yaml:"phone_prefix,omitempty" json:"phone_prefix,omitempty"`
	Phone       string `yaml:"phone,omitempty" json:"phone,omitempty"`
	Email       string `yaml:"email,omitempty" json:"email,omitempty" validate:"omitempty,email"`
	GitHub      string `yaml:"github,omitempty" json:"github,omitempty" validate:"omitempty,url"`
	LinkedIn    string `yaml:"linkedin,omitempty" json:"linkedin,omitempty" validate:"omitempty,url"`
}

// Education is one degree with its exams
type Education struct {
	Degree         string `yaml:"degree,omitempty" json:"degree,omitempty"`
	University     string `yaml:"university" json:"university" validate:"required"`
	GPA            string `yaml:"gpa,omitempty" json:"gpa,omitempty"`
	GraduationYear string `yaml:"graduation_year,omitempty" json:"graduation_year,omitempty"`
	FieldOfStudy   string `yaml:"field_of_study,omitempty" json:"field_of_study,omitempty"`
	Exam           Exams  `yaml:"exam,omitempty" json:"exam,omitempty"`
}

// Exam is a course name and the grade obtained
type Exam struct {
	Name  string `json:"name"`
	Grade string `json:"grade"`
}

// Exams keeps exams in file order. In YAML it accepts either a mapping
// (course: grade) or a sequence of single-entry mappings.
type Exams []Exam

// UnmarshalYAML implements yaml.Unmarshaler.
func (e *Exams) UnmarshalYAML(node *yaml.Node) error {
	var out Exams
	switch node.Kind {
	case yaml.MappingNode:
		pairs, err := examPairs(node)
		if err != nil {
			return err
		}
		out = append(out, pairs...)
	case yaml.SequenceNode:
		for _, item := range node.Content {
			if item.Kind != yaml.MappingNode {
				return fmt.Errorf("line %d: exam entries must be mappings", item.Line)
			}
			pairs, err := examPairs(item)
			if err != nil {
				return err
			}
			out = append(out, pairs...)
		}
	case yaml.ScalarNode:
		if node.Tag != "!!null" {
			return fmt.Errorf("line %d: exam must be a mapping or a list", node.Line)
		}
	default:
		return fmt.Errorf("line %d: exam must be a mapping or a list", node.Line)
	}
	*e = out
	return nil
}

func examPairs(node *yaml.Node) ([]Exam, error) {
	pairs := make([]Exam, 0, len(node.Content)/2)
	for i := 0; i+1 < len(node.Content); i += 2 {
		var name, grade string
		if err := node.Content[i].Decode(&name); err != nil {
			return nil, err
		}
		if err := node.Content[i+1].Decode(&grade); err != nil {
			return nil, err
		}
		pairs = append(pairs, Exam{Name: name, Grade: grade})
	}
	return pairs, nil
}

// MarshalYAML writes exams as a sequence of single-entry mappings.
func (e Exams) MarshalYAML() (interface{}, error) {
	out := make([]map[string]string, len(e))
	for i, exam := range e {
		out[i] = map[string]string{exam.Name: exam.Grade}
	}
	return out, nil
}

// Experience is one position held
type Experience struct {
	Position            string              `yaml:"position" json:"position" validate:"required"`
	Company             string              `yaml:"company" json:"company" validate:"required"`
	EmploymentPeriod    string              `yaml:"employment_period,omitempty" json:"employment_period,omitempty"`
	Location            string              `yaml:"location,omitempty" json:"location,omitempty"`
	Industry            string              `yaml:"industry,omitempty" json:"industry,omitempty"`
	KeyResponsibilities []map[string]string `yaml:"key_responsibilities,omitempty" json:"key_responsibilities,omitempty"`
	SkillsAcquired      []string            `yaml:"skills_acquired,omitempty" json:"skills_acquired,omitempty"`
}

// Project is a side project
type Project struct {
	Name        string `yaml:"name" json:"name" validate:"required"`
	Description string `yaml:"description,omitempty" json:"description,omitempty"`
	Link        string `yaml:"link,omitempty" json:"link,omitempty"`
}

// Achievement is a named accomplishment
type Achievement struct {
	Name        string `yaml:"name" json:"name" validate:"required"`
	Description string `yaml:"description,omitempty" json:"description,omitempty"`
}

// Certification is a named certificate
type Certification struct {
	Name        string `yaml:"name" json:"name" validate:"required"`
	Description string `yaml:"description,omitempty" json:"description,omitempty"`
}

// Language is a spoken language and its level
type Language struct {
	Language    string `yaml:"language" json:"language" validate:"required"`
	Proficiency string `yaml:"proficiency,omitempty" json:"proficiency,omitempty"`
}

// Validate validates the Resume using the validator.
func (r *Resume) Validate() error {
	validate := validator.New()
	return validate.Struct(r)
}

// FullName joins name and surname.
func (p PersonalInformation) FullName() string {
	if p.Surname == "" {
		return p.Name
	}
	return p.Name + " " + p.Surname
}

// CollectSkills returns the sorted, de-duplicated union of the skills
// acquired in every position and the exam names of every degree. Names are
// normalized first, so "golang" and "Go" count once.
func (r *Resume) CollectSkills() []string {
	set := make(map[string]struct{})
	add := func(name string) {
		if skill := NormalizeSkillName(name); skill != "" {
			set[skill] = struct{}{}
		}
	}
	for _, exp := range r.ExperienceDetails {
		for _, skill := range exp.SkillsAcquired {
			add(skill)
		}
	}
	for _, edu := range r.EducationDetails {
		for _, exam := range edu.Exam {
			add(exam.Name)
		}
	}

	skills := make([]string, 0, len(set))
	for skill := range set {
		skills = append(skills, skill)
	}
	sort.Strings(skills)
	return skills
}
