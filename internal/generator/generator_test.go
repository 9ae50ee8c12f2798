package generator

import (
	"context"
	"errors"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/resume-builder/internal/llm"
	"github.com/jonathan/resume-builder/internal/types"
)

// sectionMarkers identifies the section a prompt was built for.
var sectionMarkers = map[Section]string{
	SectionHeader:           "Write the header",
	SectionEducation:        "Write the education section",
	SectionWorkExperience:   "Write the work experience section",
	SectionSideProjects:     "Write the side projects section",
	SectionAchievements:     "Write the achievements section",
	SectionCertifications:   "Write the certifications section",
	SectionAdditionalSkills: "Write the additional skills section",
}

func sectionOf(prompt string) Section {
	for section, marker := range sectionMarkers {
		if strings.Contains(prompt, marker) {
			return section
		}
	}
	return ""
}

type fakeClient struct {
	mu      sync.Mutex
	fail    map[Section]error
	replies map[Section]string
	prompts map[Section]string
	delay   time.Duration

	inFlight    int32
	maxInFlight int32
}

func (c *fakeClient) Complete(ctx context.Context, messages []llm.Message) (*llm.Response, error) {
	cur := atomic.AddInt32(&c.inFlight, 1)
	defer atomic.AddInt32(&c.inFlight, -1)
	for {
		prev := atomic.LoadInt32(&c.maxInFlight)
		if cur <= prev || atomic.CompareAndSwapInt32(&c.maxInFlight, prev, cur) {
			break
		}
	}
	if c.delay > 0 {
		time.Sleep(c.delay)
	}

	prompt := messages[len(messages)-1].Content
	section := sectionOf(prompt)

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.prompts == nil {
		c.prompts = make(map[Section]string)
	}
	c.prompts[section] = prompt

	if err, ok := c.fail[section]; ok {
		return nil, err
	}
	if reply, ok := c.replies[section]; ok {
		return &llm.Response{Content: reply}, nil
	}
	return &llm.Response{Content: "```html\n<section id=\"" + string(section) + "\"></section>\n```"}, nil
}

func (c *fakeClient) Model() string { return "fake" }
func (c *fakeClient) Close() error  { return nil }

func testResume() *types.Resume {
	return &types.Resume{
		PersonalInformation: types.PersonalInformation{Name: "Jane", Surname: "Doe", Email: "jane@example.com"},
		EducationDetails: []types.Education{{
			University: "Example University",
			Exam:       types.Exams{{Name: "Algorithms", Grade: "A"}},
		}},
		ExperienceDetails: []types.Experience{{
			Position:       "Engineer",
			Company:        "Acme",
			SkillsAcquired: []string{"Go", "SQL"},
		}},
		Projects:       []types.Project{{Name: "cli"}},
		Achievements:   []types.Achievement{{Name: "Hackathon winner"}},
		Certifications: []types.Certification{{Name: "CKA"}},
		Languages:      []types.Language{{Language: "English", Proficiency: "Native"}},
		Interests:      []string{"chess"},
	}
}

func expectedBody(content map[Section]string) string {
	return "<body>\n" +
		"  " + content[SectionHeader] + "\n" +
		"  <main>\n" +
		"    " + content[SectionEducation] + "\n" +
		"    " + content[SectionWorkExperience] + "\n" +
		"    " + content[SectionSideProjects] + "\n" +
		"    " + content[SectionAchievements] + "\n" +
		"    " + content[SectionCertifications] + "\n" +
		"    " + content[SectionAdditionalSkills] + "\n" +
		"  </main>\n" +
		"</body>"
}

func sectionHTML(section Section) string {
	return `<section id="` + string(section) + `"></section>`
}

func TestGenerate_AllSections(t *testing.T) {
	client := &fakeClient{}
	gen := New(client)

	body, results, err := gen.Generate(context.Background(), testResume(), "")
	require.NoError(t, err)

	want := make(map[Section]string)
	for _, section := range Order {
		want[section] = sectionHTML(section)
	}
	assert.Equal(t, expectedBody(want), body)
	assert.Empty(t, results.Failed())
	assert.Len(t, results.Ordered(), len(Order))
}

func TestGenerate_OneSectionFails(t *testing.T) {
	client := &fakeClient{fail: map[Section]error{
		SectionSideProjects: llm.ErrRetriesExhausted,
	}}
	gen := New(client)

	body, results, err := gen.Generate(context.Background(), testResume(), "")
	require.NoError(t, err)

	want := make(map[Section]string)
	for _, section := range Order {
		if section != SectionSideProjects {
			want[section] = sectionHTML(section)
		}
	}
	assert.Equal(t, expectedBody(want), body)
	assert.Contains(t, body, "    \n", "failed section leaves an empty placeholder")
	assert.Equal(t, []Section{SectionSideProjects}, results.Failed())

	res, ok := results.Get(SectionSideProjects)
	require.True(t, ok)
	assert.ErrorIs(t, res.Err, llm.ErrRetriesExhausted)
	assert.Empty(t, res.Content)
}

func TestGenerate_EmptyReplyIsMissing(t *testing.T) {
	client := &fakeClient{replies: map[Section]string{SectionHeader: "   "}}
	gen := New(client)

	body, results, err := gen.Generate(context.Background(), testResume(), "")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(body, "<body>\n  \n  <main>"))

	res, _ := results.Get(SectionHeader)
	assert.ErrorIs(t, res.Err, ErrEmptySection)
}

func TestGenerate_StrictReportsFailures(t *testing.T) {
	client := &fakeClient{fail: map[Section]error{
		SectionEducation:      errors.New("boom"),
		SectionCertifications: errors.New("bang"),
	}}
	gen := New(client, WithStrict(true))

	body, _, err := gen.Generate(context.Background(), testResume(), "")
	require.Error(t, err)

	var sectionErr *SectionError
	require.True(t, errors.As(err, &sectionErr))
	assert.Len(t, sectionErr.Failed, 2)
	assert.Contains(t, err.Error(), "education: boom")
	assert.Contains(t, err.Error(), "certifications: bang")
	assert.Contains(t, body, sectionHTML(SectionHeader))
}

func TestGenerate_RespectsWorkerLimit(t *testing.T) {
	client := &fakeClient{delay: 20 * time.Millisecond}
	gen := New(client, WithWorkers(2))

	_, results, err := gen.Generate(context.Background(), testResume(), "")
	require.NoError(t, err)
	assert.Empty(t, results.Failed())
	assert.LessOrEqual(t, atomic.LoadInt32(&client.maxInFlight), int32(2))
}

func TestGenerate_JobDescriptionTailorsPrompts(t *testing.T) {
	client := &fakeClient{}
	gen := New(client)

	_, _, err := gen.Generate(context.Background(), testResume(), "Senior Go engineer, payments team")
	require.NoError(t, err)

	assert.Contains(t, client.prompts[SectionAchievements], "Senior Go engineer, payments team")
	assert.Contains(t, client.prompts[SectionCertifications], "Senior Go engineer, payments team")
	assert.NotContains(t, client.prompts[SectionEducation], "Senior Go engineer")
}

func TestGenerate_PromptsCarryResumeData(t *testing.T) {
	client := &fakeClient{}
	gen := New(client)

	_, _, err := gen.Generate(context.Background(), testResume(), "")
	require.NoError(t, err)

	assert.Contains(t, client.prompts[SectionHeader], "surname: Doe")
	assert.Contains(t, client.prompts[SectionEducation], "Algorithms: A")
	assert.Contains(t, client.prompts[SectionWorkExperience], "company: Acme")
	assert.Contains(t, client.prompts[SectionAdditionalSkills], "Algorithms, Go, SQL")
	assert.NotContains(t, client.prompts[SectionAchievements], "{{.")
}

func TestGenerate_NilResume(t *testing.T) {
	_, _, err := New(&fakeClient{}).Generate(context.Background(), nil, "")
	assert.Error(t, err)
}

func TestAssemble_OrderIndependentOfInput(t *testing.T) {
	content := map[Section]string{
		SectionAdditionalSkills: "S",
		SectionHeader:           "H",
		SectionEducation:        "E",
	}
	assert.Equal(t, "<body>\n  H\n  <main>\n    E\n    \n    \n    \n    \n    S\n  </main>\n</body>", Assemble(content))
}
