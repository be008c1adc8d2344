package gitrepo_test

import (
	"os"
	"testing"

	shellquote "github.com/kballard/go-shellquote"
	"github.com/stretchr/testify/require"

	"github.com/autoland/autoland/internal/gitrepo"
)

func TestExecutableFilterCommandBuilder(testInstance *testing.T) {
	executablePath, executableError := os.Executable()
	require.NoError(testInstance, executableError)

	builder := gitrepo.ExecutableFilterCommandBuilder{}
	filterCommand, buildError := builder.Build("Reviewed-by", []string{"Alice <alice@example.com>", "Bob"})
	require.NoError(testInstance, buildError)

	commandWords, splitError := shellquote.Split(filterCommand)
	require.NoError(testInstance, splitError)
	require.Equal(testInstance, []string{
		executablePath,
		"trailer-filter",
		"--token", "Reviewed-by",
		"--value", "Alice <alice@example.com>",
		"--value", "Bob",
	}, commandWords)
}

func TestExecutableFilterCommandBuilderWithoutValues(testInstance *testing.T) {
	builder := gitrepo.ExecutableFilterCommandBuilder{}
	filterCommand, buildError := builder.Build("Reviewed-by", nil)
	require.NoError(testInstance, buildError)

	commandWords, splitError := shellquote.Split(filterCommand)
	require.NoError(testInstance, splitError)
	require.Len(testInstance, commandWords, 4)
	require.Equal(testInstance, "--token", commandWords[2])
	require.Equal(testInstance, "Reviewed-by", commandWords[3])
}
