package execshell_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/autoland/autoland/internal/execshell"
)

func gitCommand(workingDirectory string, arguments ...string) execshell.ShellCommand {
	return execshell.ShellCommand{
		Name: execshell.CommandGit,
		Details: execshell.CommandDetails{
			Arguments:        arguments,
			WorkingDirectory: workingDirectory,
		},
	}
}

func TestBuildStartedMessage(testInstance *testing.T) {
	testCases := []struct {
		name            string
		command         execshell.ShellCommand
		expectedMessage string
	}{
		{
			name:            "clone",
			command:         gitCommand("", "clone", "--origin=origin", "git@example.com:owner/project.git", "/tmp/clone"),
			expectedMessage: "Running clone into /tmp/clone",
		},
		{
			name:            "fetch",
			command:         gitCommand("/tmp/clone", "fetch", "origin"),
			expectedMessage: "Running fetch from origin (in /tmp/clone)",
		},
		{
			name:            "checkout",
			command:         gitCommand("", "checkout", "-B", "feature", "origin/feature", "--"),
			expectedMessage: "Running checkout of feature",
		},
		{
			name:            "rebase",
			command:         gitCommand("", "rebase", "origin/master"),
			expectedMessage: "Running rebase onto origin/master",
		},
		{
			name:            "config",
			command:         gitCommand("", "config", "user.email", "landbot@example.com"),
			expectedMessage: "Running configuration update for user.email",
		},
		{
			name:            "filter_branch",
			command:         gitCommand("", "filter-branch", "--force", "--msg-filter", "cmd", "origin/master..feature"),
			expectedMessage: "Running history rewrite of origin/master..feature",
		},
		{
			name:            "diff_index",
			command:         gitCommand("", "diff-index", "--quiet", "HEAD"),
			expectedMessage: "Running working tree cleanliness check",
		},
		{
			name:            "ls_files",
			command:         gitCommand("", "ls-files", "--others"),
			expectedMessage: "Running untracked file listing",
		},
		{
			name:            "push",
			command:         gitCommand("", "push", "--force", "origin", "feature"),
			expectedMessage: "Running push of feature",
		},
		{
			name:            "generic_fallback",
			command:         gitCommand("", "stash", "list"),
			expectedMessage: "Running git stash list",
		},
	}

	formatter := execshell.CommandMessageFormatter{}
	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(subTest *testing.T) {
			require.Equal(subTest, testCase.expectedMessage, formatter.BuildStartedMessage(testCase.command))
		})
	}
}

func TestBuildFailureMessageIncludesExitCodeAndStandardError(testInstance *testing.T) {
	formatter := execshell.CommandMessageFormatter{}
	message := formatter.BuildFailureMessage(
		gitCommand("/tmp/clone", "push", "--force", "origin", "feature"),
		execshell.ExecutionResult{ExitCode: 1, StandardError: "rejected\n"},
	)
	require.Equal(testInstance, "push of feature (in /tmp/clone) failed with exit code 1: rejected", message)
}

func TestBuildExecutionFailureMessage(testInstance *testing.T) {
	formatter := execshell.CommandMessageFormatter{}
	message := formatter.BuildExecutionFailureMessage(
		gitCommand("", "fetch", "origin"),
		errors.New("executable not found"),
	)
	require.Equal(testInstance, "fetch from origin failed: executable not found", message)
}

func TestBuildSuccessMessage(testInstance *testing.T) {
	formatter := execshell.CommandMessageFormatter{}
	message := formatter.BuildSuccessMessage(gitCommand("", "rev-parse", "HEAD"))
	require.Equal(testInstance, "Completed revision lookup for HEAD", message)
}
