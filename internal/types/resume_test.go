package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

const sampleResumeYAML = `
personal_information:
  name: Jane
  surname: Doe
  email: jane@example.com
  github: https://github.com/janedoe
education_details:
  - degree: BSc
    university: Example University
    field_of_study: Computer Science
    exam:
      - Algorithms: A
      - Databases: B+
experience_details:
  - position: Backend Engineer
    company: Acme
    employment_period: 2020 - Present
    key_responsibilities:
      - responsibility_1: Built billing services
    skills_acquired:
      - Go
      - PostgreSQL
  - position: Intern
    company: Initech
    skills_acquired:
      - Go
      - Docker
projects:
  - name: resume-builder
    link: https://github.com/janedoe/resume-builder
achievements:
  - name: Hackathon winner
certifications:
  - name: CKA
languages:
  - language: English
    proficiency: Native
interests:
  - Climbing
`

func TestResume_UnmarshalYAML(t *testing.T) {
	var r Resume
	require.NoError(t, yaml.Unmarshal([]byte(sampleResumeYAML), &r))

	assert.Equal(t, "Jane Doe", r.PersonalInformation.FullName())
	require.Len(t, r.EducationDetails, 1)
	assert.Equal(t, Exams{{Name: "Algorithms", Grade: "A"}, {Name: "Databases", Grade: "B+"}}, r.EducationDetails[0].Exam)
	require.Len(t, r.ExperienceDetails, 2)
	assert.Equal(t, "Built billing services", r.ExperienceDetails[0].KeyResponsibilities[0]["responsibility_1"])
	assert.Equal(t, []string{"Climbing"}, r.Interests)
	assert.NoError(t, r.Validate())
}

func TestExams_MappingForm(t *testing.T) {
	var e Education
	require.NoError(t, yaml.Unmarshal([]byte("university: U\nexam:\n  Calculus: 30\n  Physics: 28\n"), &e))
	assert.Equal(t, Exams{{Name: "Calculus", Grade: "30"}, {Name: "Physics", Grade: "28"}}, e.Exam)
}

func TestExams_InvalidForm(t *testing.T) {
	var e Education
	assert.Error(t, yaml.Unmarshal([]byte("university: U\nexam: nope\n"), &e))
}

func TestExams_MarshalRoundTrip(t *testing.T) {
	in := Education{University: "U", Exam: Exams{{Name: "Algorithms", Grade: "A"}}}
	data, err := yaml.Marshal(in)
	require.NoError(t, err)
	assert.Contains(t, string(data), "- Algorithms: A")
}

func TestResume_CollectSkills(t *testing.T) {
	var r Resume
	require.NoError(t, yaml.Unmarshal([]byte(sampleResumeYAML), &r))

	assert.Equal(t, []string{"Algorithms", "Databases", "Docker", "Go", "PostgreSQL"}, r.CollectSkills())
}

func TestResume_CollectSkillsEmpty(t *testing.T) {
	r := Resume{}
	assert.Empty(t, r.CollectSkills())
}

func TestResume_Validate(t *testing.T) {
	tests := []struct {
		name    string
		resume  Resume
		wantErr bool
	}{
		{
			name:   "minimal",
			resume: Resume{PersonalInformation: PersonalInformation{Name: "Jane", Surname: "Doe"}},
		},
		{
			name:    "missing surname",
			resume:  Resume{PersonalInformation: PersonalInformation{Name: "Jane"}},
			wantErr: true,
		},
		{
			name:    "bad email",
			resume:  Resume{PersonalInformation: PersonalInformation{Name: "Jane", Surname: "Doe", Email: "not-an-email"}},
			wantErr: true,
		},
		{
			name: "experience without company",
			resume: Resume{
				PersonalInformation: PersonalInformation{Name: "Jane", Surname: "Doe"},
				ExperienceDetails:   []Experience{{Position: "Engineer"}},
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.resume.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
