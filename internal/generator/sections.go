// Package generator drafts the HTML resume body, one concurrent completion per section.
package generator

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/jonathan/resume-builder/internal/types"
)

// Section names one generated part of the resume
type Section string

// Sections of the resume body
const (
	SectionHeader           Section = "header"
	SectionEducation        Section = "education"
	SectionWorkExperience   Section = "work_experience"
	SectionSideProjects     Section = "side_projects"
	SectionAchievements     Section = "achievements"
	SectionCertifications   Section = "certifications"
	SectionAdditionalSkills Section = "additional_skills"
)

// Order is the fixed assembly order of the sections.
var Order = []Section{
	SectionHeader,
	SectionEducation,
	SectionWorkExperience,
	SectionSideProjects,
	SectionAchievements,
	SectionCertifications,
	SectionAdditionalSkills,
}

// Assemble places section contents into the document skeleton. Missing
// sections leave an empty placeholder line.
func Assemble(content map[Section]string) string {
	var sb strings.Builder
	sb.WriteString("<body>\n")
	sb.WriteString("  " + content[SectionHeader] + "\n")
	sb.WriteString("  <main>\n")
	for _, section := range Order[1:] {
		sb.WriteString("    " + content[section] + "\n")
	}
	sb.WriteString("  </main>\n")
	sb.WriteString("</body>")
	return sb.String()
}

// promptData returns the placeholder values of a section's prompt.
func promptData(section Section, resume *types.Resume, jobDescription string) (map[string]string, error) {
	data := make(map[string]string)
	var err error
	set := func(key string, v interface{}) {
		if err != nil {
			return
		}
		data[key], err = toYAML(v)
	}

	switch section {
	case SectionHeader:
		set("PersonalInformation", resume.PersonalInformation)
	case SectionEducation:
		set("EducationDetails", resume.EducationDetails)
	case SectionWorkExperience:
		set("ExperienceDetails", resume.ExperienceDetails)
	case SectionSideProjects:
		set("Projects", resume.Projects)
	case SectionAchievements:
		set("Achievements", resume.Achievements)
		set("Certifications", resume.Certifications)
		data["JobDescription"] = jobDescription
	case SectionCertifications:
		set("Certifications", resume.Certifications)
		data["JobDescription"] = jobDescription
	case SectionAdditionalSkills:
		set("Languages", resume.Languages)
		set("Interests", resume.Interests)
		data["Skills"] = strings.Join(resume.CollectSkills(), ", ")
	default:
		return nil, fmt.Errorf("unknown section %q", section)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to encode %s data: %w", section, err)
	}
	return data, nil
}

func toYAML(v interface{}) (string, error) {
	out, err := yaml.Marshal(v)
	if err != nil {
		return "", err
	}
	text := strings.TrimRight(string(out), "\n")
	if text == "[]" || text == "{}" || text == "null" {
		return "(none)", nil
	}
	return text, nil
}
