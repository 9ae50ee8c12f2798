package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeSkillName(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"golang", "Go"},
		{"  Golang ", "Go"},
		{"K8S", "Kubernetes"},
		{"postgres", "PostgreSQL"},
		{"docker", "Docker"},
		{"gRPC", "gRPC"},
		{"machine   learning", "machine learning"},
		{"", ""},
		{"   ", ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, NormalizeSkillName(tt.input))
		})
	}
}

func TestResume_CollectSkillsMergesAliases(t *testing.T) {
	r := Resume{
		ExperienceDetails: []Experience{
			{SkillsAcquired: []string{"golang", "k8s"}},
			{SkillsAcquired: []string{"Go", "Kubernetes", ""}},
		},
	}
	assert.Equal(t, []string{"Go", "Kubernetes"}, r.CollectSkills())
}
