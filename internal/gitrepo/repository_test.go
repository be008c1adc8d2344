package gitrepo_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/autoland/autoland/internal/execshell"
	"github.com/autoland/autoland/internal/gitrepo"
)

const (
	testRemoteURLConstant    = "git@example.com:owner/project.git"
	testLocalPathConstant    = "/tmp/project-clone"
	testSourceBranchConstant = "feature"
	testTargetBranchConstant = "master"
	testCommitHashConstant   = "0123456789abcdef0123456789abcdef01234567"
	testFilterCommandConstant = "/usr/local/bin/autoland trailer-filter --token Reviewed-by --value Alice"
)

type scriptedResponse struct {
	result       execshell.ExecutionResult
	failure      error
}

type scriptedGitExecutor struct {
	invocations []execshell.CommandDetails
	responses   []scriptedResponse
}

func (executor *scriptedGitExecutor) ExecuteGit(executionContext context.Context, details execshell.CommandDetails) (execshell.ExecutionResult, error) {
	executor.invocations = append(executor.invocations, details)
	if len(executor.responses) == 0 {
		return execshell.ExecutionResult{}, nil
	}
	nextResponse := executor.responses[0]
	executor.responses = executor.responses[1:]
	return nextResponse.result, nextResponse.failure
}

type fixedFilterCommandBuilder struct {
	command string
}

func (builder fixedFilterCommandBuilder) Build(trailerToken string, trailerValues []string) (string, error) {
	return builder.command, nil
}

func newTestRepository(testInstance *testing.T, executor *scriptedGitExecutor) *gitrepo.Repository {
	testInstance.Helper()

	repository, constructionError := gitrepo.NewRepository(
		gitrepo.Dependencies{
			GitExecutor:   executor,
			FilterCommand: fixedFilterCommandBuilder{command: testFilterCommandConstant},
		},
		gitrepo.Options{RemoteURL: testRemoteURLConstant, LocalPath: testLocalPathConstant},
	)
	require.NoError(testInstance, constructionError)
	return repository
}

func recordedArguments(invocations []execshell.CommandDetails) [][]string {
	argumentLists := make([][]string, 0, len(invocations))
	for _, invocation := range invocations {
		argumentLists = append(argumentLists, invocation.Arguments)
	}
	return argumentLists
}

func TestNewRepositoryValidation(testInstance *testing.T) {
	testCases := []struct {
		name          string
		dependencies  gitrepo.Dependencies
		options       gitrepo.Options
		expectedError error
	}{
		{
			name:          "missing_executor",
			dependencies:  gitrepo.Dependencies{},
			options:       gitrepo.Options{RemoteURL: testRemoteURLConstant, LocalPath: testLocalPathConstant},
			expectedError: gitrepo.ErrGitExecutorNotConfigured,
		},
		{
			name:          "missing_local_path",
			dependencies:  gitrepo.Dependencies{GitExecutor: &scriptedGitExecutor{}},
			options:       gitrepo.Options{RemoteURL: testRemoteURLConstant, LocalPath: "   "},
			expectedError: gitrepo.ErrLocalPathRequired,
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(subTest *testing.T) {
			_, constructionError := gitrepo.NewRepository(testCase.dependencies, testCase.options)
			require.ErrorIs(subTest, constructionError, testCase.expectedError)
		})
	}
}

func TestNewRepositoryRejectsUnparsableRemote(testInstance *testing.T) {
	_, constructionError := gitrepo.NewRepository(
		gitrepo.Dependencies{GitExecutor: &scriptedGitExecutor{}},
		gitrepo.Options{RemoteURL: "ftp://example.com/owner/project", LocalPath: testLocalPathConstant},
	)

	var parseError gitrepo.RemoteURLParseError
	require.ErrorAs(testInstance, constructionError, &parseError)
}

func TestCloneIssuesExpectedInvocation(testInstance *testing.T) {
	executor := &scriptedGitExecutor{}
	repository := newTestRepository(testInstance, executor)

	require.NoError(testInstance, repository.Clone(context.Background()))
	require.Equal(testInstance, [][]string{
		{"clone", "--origin=origin", testRemoteURLConstant, testLocalPathConstant},
	}, recordedArguments(executor.invocations))
	require.Empty(testInstance, executor.invocations[0].WorkingDirectory)
}

func TestCloneUsesSSHKeyEnvironment(testInstance *testing.T) {
	executor := &scriptedGitExecutor{}
	repository := newTestRepository(testInstance, executor).WithSSHKeyFile("/keys/deploy")

	require.NoError(testInstance, repository.Clone(context.Background()))
	require.Equal(testInstance, map[string]string{
		"GIT_SSH_COMMAND": "ssh -i /keys/deploy",
	}, executor.invocations[0].EnvironmentVariables)
}

func TestConfigureIdentityOrdersEmailBeforeName(testInstance *testing.T) {
	executor := &scriptedGitExecutor{}
	repository := newTestRepository(testInstance, executor)

	require.NoError(testInstance, repository.ConfigureIdentity(context.Background(), "Land Bot", "landbot@example.com"))
	require.Equal(testInstance, [][]string{
		{"config", "user.email", "landbot@example.com"},
		{"config", "user.name", "Land Bot"},
	}, recordedArguments(executor.invocations))
	for _, invocation := range executor.invocations {
		require.Equal(testInstance, testLocalPathConstant, invocation.WorkingDirectory)
	}
}

func TestRebaseIssuesExpectedSequence(testInstance *testing.T) {
	executor := &scriptedGitExecutor{
		responses: []scriptedResponse{
			{},
			{},
			{},
			{result: execshell.ExecutionResult{StandardOutput: testCommitHashConstant + "\n"}},
		},
	}
	repository := newTestRepository(testInstance, executor)

	commitHash, rebaseError := repository.Rebase(context.Background(), testSourceBranchConstant, testTargetBranchConstant)
	require.NoError(testInstance, rebaseError)
	require.Equal(testInstance, testCommitHashConstant, commitHash)
	require.Equal(testInstance, [][]string{
		{"fetch", "origin"},
		{"checkout", "-B", testSourceBranchConstant, "origin/" + testSourceBranchConstant, "--"},
		{"rebase", "origin/" + testTargetBranchConstant},
		{"rev-parse", "HEAD"},
	}, recordedArguments(executor.invocations))
}

func TestRebaseOntoSelfIsContractViolation(testInstance *testing.T) {
	executor := &scriptedGitExecutor{}
	repository := newTestRepository(testInstance, executor)

	_, rebaseError := repository.Rebase(context.Background(), testSourceBranchConstant, testSourceBranchConstant)

	var contractViolation gitrepo.ContractViolationError
	require.ErrorAs(testInstance, rebaseError, &contractViolation)
	require.Empty(testInstance, executor.invocations)
}

func TestRebaseSurfacesRebaseFailure(testInstance *testing.T) {
	rebaseFailure := errors.New("rebase conflict")
	executor := &scriptedGitExecutor{
		responses: []scriptedResponse{
			{},
			{},
			{failure: rebaseFailure},
		},
	}
	repository := newTestRepository(testInstance, executor)

	_, rebaseError := repository.Rebase(context.Background(), testSourceBranchConstant, testTargetBranchConstant)
	require.ErrorIs(testInstance, rebaseError, rebaseFailure)
	require.Len(testInstance, executor.invocations, 3)
}

func TestTagWithTrailerRewritesRangeAndResolvesTip(testInstance *testing.T) {
	executor := &scriptedGitExecutor{
		responses: []scriptedResponse{
			{},
			{result: execshell.ExecutionResult{StandardOutput: testCommitHashConstant + "\n"}},
		},
	}
	repository := newTestRepository(testInstance, executor)

	commitHash, rewriteError := repository.TagWithTrailer(context.Background(), "Reviewed-by", []string{"Alice"}, testSourceBranchConstant, "origin/"+testTargetBranchConstant)
	require.NoError(testInstance, rewriteError)
	require.Equal(testInstance, testCommitHashConstant, commitHash)
	require.Equal(testInstance, [][]string{
		{"filter-branch", "--force", "--msg-filter", testFilterCommandConstant, "origin/" + testTargetBranchConstant + ".." + testSourceBranchConstant},
		{"rev-parse", "HEAD"},
	}, recordedArguments(executor.invocations))
}

func TestTagWithTrailerRollsBackOnRewriteFailure(testInstance *testing.T) {
	rewriteFailure := errors.New("filter-branch failed")
	executor := &scriptedGitExecutor{
		responses: []scriptedResponse{
			{failure: rewriteFailure},
			{},
		},
	}
	repository := newTestRepository(testInstance, executor)

	_, trailerError := repository.TagWithTrailer(context.Background(), "Reviewed-by", []string{"Alice"}, testSourceBranchConstant, "origin/"+testTargetBranchConstant)
	require.ErrorIs(testInstance, trailerError, rewriteFailure)
	require.Equal(testInstance, [][]string{
		{"filter-branch", "--force", "--msg-filter", testFilterCommandConstant, "origin/" + testTargetBranchConstant + ".." + testSourceBranchConstant},
		{"reset", "--hard", "refs/original/refs/heads/" + testSourceBranchConstant},
	}, recordedArguments(executor.invocations))
}

func TestTagWithTrailerReportsRollbackFailure(testInstance *testing.T) {
	rewriteFailure := errors.New("filter-branch failed")
	rollbackFailure := errors.New("reset failed")
	executor := &scriptedGitExecutor{
		responses: []scriptedResponse{
			{failure: rewriteFailure},
			{failure: rollbackFailure},
		},
	}
	repository := newTestRepository(testInstance, executor)

	_, trailerError := repository.TagWithTrailer(context.Background(), "Reviewed-by", []string{"Alice"}, testSourceBranchConstant, "origin/"+testTargetBranchConstant)
	require.Error(testInstance, trailerError)
	require.Contains(testInstance, trailerError.Error(), rewriteFailure.Error())
	require.Contains(testInstance, trailerError.Error(), rollbackFailure.Error())
}

func TestRemoveBranchSwitchesAwayBeforeDeleting(testInstance *testing.T) {
	executor := &scriptedGitExecutor{}
	repository := newTestRepository(testInstance, executor)

	require.NoError(testInstance, repository.RemoveBranch(context.Background(), testSourceBranchConstant))
	require.Equal(testInstance, [][]string{
		{"checkout", "master", "--"},
		{"branch", "-D", testSourceBranchConstant},
	}, recordedArguments(executor.invocations))
}

func TestRemoveBranchRefusesProtectedBranch(testInstance *testing.T) {
	executor := &scriptedGitExecutor{}
	repository := newTestRepository(testInstance, executor)

	removeError := repository.RemoveBranch(context.Background(), "master")

	var contractViolation gitrepo.ContractViolationError
	require.ErrorAs(testInstance, removeError, &contractViolation)
	require.Empty(testInstance, executor.invocations)
}

func TestPushForceIssuesGuardsBeforePush(testInstance *testing.T) {
	executor := &scriptedGitExecutor{}
	repository := newTestRepository(testInstance, executor)

	require.NoError(testInstance, repository.PushForce(context.Background(), testSourceBranchConstant))
	require.Equal(testInstance, [][]string{
		{"checkout", testSourceBranchConstant, "--"},
		{"diff-index", "--quiet", "HEAD"},
		{"ls-files", "--others"},
		{"push", "--force", "origin", testSourceBranchConstant},
	}, recordedArguments(executor.invocations))
}

func TestPushForceStopsOnDirtyWorktree(testInstance *testing.T) {
	executor := &scriptedGitExecutor{
		responses: []scriptedResponse{
			{},
			{failure: errors.New("exit status 1")},
		},
	}
	repository := newTestRepository(testInstance, executor)

	pushError := repository.PushForce(context.Background(), testSourceBranchConstant)
	require.ErrorIs(testInstance, pushError, gitrepo.ErrWorktreeNotClean)
	require.Len(testInstance, executor.invocations, 2)
}

func TestPushForceStopsOnUntrackedFiles(testInstance *testing.T) {
	executor := &scriptedGitExecutor{
		responses: []scriptedResponse{
			{},
			{},
			{result: execshell.ExecutionResult{StandardOutput: "stray-file\n"}},
		},
	}
	repository := newTestRepository(testInstance, executor)

	pushError := repository.PushForce(context.Background(), testSourceBranchConstant)
	require.ErrorIs(testInstance, pushError, gitrepo.ErrUntrackedFiles)
	require.Len(testInstance, executor.invocations, 3)
}

func TestCommitHashDefaultsToHeadAndTrims(testInstance *testing.T) {
	executor := &scriptedGitExecutor{
		responses: []scriptedResponse{
			{result: execshell.ExecutionResult{StandardOutput: "  " + testCommitHashConstant + "\n"}},
		},
	}
	repository := newTestRepository(testInstance, executor)

	commitHash, hashError := repository.CommitHash(context.Background(), "")
	require.NoError(testInstance, hashError)
	require.Equal(testInstance, testCommitHashConstant, commitHash)
	require.Equal(testInstance, [][]string{{"rev-parse", "HEAD"}}, recordedArguments(executor.invocations))
}

func TestWithSSHKeyFileLeavesReceiverUnmodified(testInstance *testing.T) {
	executor := &scriptedGitExecutor{}
	repository := newTestRepository(testInstance, executor)

	_ = repository.WithSSHKeyFile("/keys/deploy")

	require.NoError(testInstance, repository.Clone(context.Background()))
	require.Empty(testInstance, executor.invocations[0].EnvironmentVariables)
}
