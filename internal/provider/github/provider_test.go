package github

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplitProjectID(t *testing.T) {
	owner, repo, err := splitProjectID("octocat/hello-world")
	require.NoError(t, err)
	assert.Equal(t, "octocat", owner)
	assert.Equal(t, "hello-world", repo)
}

func TestSplitProjectIDInvalid(t *testing.T) {
	for _, projectID := range []string{"", "justname", "a/b/c", "/repo", "owner/"} {
		_, _, err := splitProjectID(projectID)
		assert.Error(t, err, projectID)
	}
}
