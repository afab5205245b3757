package resources

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadResource(t *testing.T) {
	list := GetResources()
	require.Len(t, list, 1)
	assert.Equal(t, "goal_model", list[0].Name)

	content, err := ReadResource(list[0].URI)
	require.NoError(t, err)
	assert.Contains(t, content.Text, "[0.1, 6]")
	assert.Contains(t, content.Text, "90 minute match")

	_, err = ReadResource("goalclock://nothing")
	assert.Error(t, err)
}
