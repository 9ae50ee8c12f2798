package schemas

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResumeSchema_ValidJSON(t *testing.T) {
	require.NotEmpty(t, Resume)

	var v map[string]interface{}
	require.NoError(t, json.Unmarshal(Resume, &v), "resume schema should be valid JSON")
	assert.Equal(t, "object", v["type"])
	assert.Contains(t, v["required"], "personal_information")
}
