package gitrepo

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/autoland/autoland/internal/execshell"
)

const (
	gitExecutorMissingMessageConstant  = "git executor not configured"
	localPathRequiredMessageConstant   = "local path must be provided"
	worktreeNotCleanMessageConstant    = "working tree contains uncommitted changes"
	untrackedFilesMessageConstant      = "working tree contains untracked files"
	contractViolationTemplateConstant  = "%s: %s"
	rebaseOntoSelfReasonConstant       = "branch and target are the same branch"
	protectedBranchReasonConstant      = "refusing to delete the protected branch"
	rebaseOperationNameConstant        = "rebase"
	removeBranchOperationNameConstant  = "remove branch"

	cloneFailureTemplateConstant            = "failed to clone %s: %w"
	configureEmailFailureTemplateConstant   = "failed to configure user.email: %w"
	configureNameFailureTemplateConstant    = "failed to configure user.name: %w"
	fetchFailureTemplateConstant            = "failed to fetch origin: %w"
	checkoutFailureTemplateConstant         = "failed to checkout %s: %w"
	rebaseFailureTemplateConstant           = "failed to rebase onto %s: %w"
	rewriteFailureTemplateConstant          = "failed to rewrite history of %s: %w"
	rewriteRollbackFailureTemplateConstant  = "failed to rewrite history of %s: %v (rollback to %s also failed: %v)"
	branchDeleteFailureTemplateConstant     = "failed to delete branch %s: %w"
	pushFailureTemplateConstant             = "failed to push %s to origin: %w"
	revisionResolveFailureTemplateConstant  = "failed to resolve revision %s: %w"
	dirtyWorktreeDetailTemplateConstant     = "%w: %s"
	untrackedFilesDetailTemplateConstant    = "%w: %s"
	filterCommandFailureTemplateConstant    = "failed to build trailer filter command: %w"

	gitCloneSubcommandConstant        = "clone"
	gitCloneOriginFlagConstant        = "--origin=origin"
	gitConfigSubcommandConstant       = "config"
	gitUserEmailConfigKeyConstant     = "user.email"
	gitUserNameConfigKeyConstant      = "user.name"
	gitFetchSubcommandConstant        = "fetch"
	gitCheckoutSubcommandConstant     = "checkout"
	gitCheckoutResetBranchFlagConstant = "-B"
	gitArgumentTerminatorConstant     = "--"
	gitRebaseSubcommandConstant       = "rebase"
	gitFilterBranchSubcommandConstant = "filter-branch"
	gitForceFlagConstant              = "--force"
	gitMessageFilterFlagConstant      = "--msg-filter"
	gitResetSubcommandConstant        = "reset"
	gitHardResetFlagConstant          = "--hard"
	gitBranchSubcommandConstant       = "branch"
	gitBranchForceDeleteFlagConstant  = "-D"
	gitPushSubcommandConstant         = "push"
	gitDiffIndexSubcommandConstant    = "diff-index"
	gitQuietFlagConstant              = "--quiet"
	gitLSFilesSubcommandConstant      = "ls-files"
	gitOthersFlagConstant             = "--others"
	gitRevParseSubcommandConstant     = "rev-parse"

	originRemoteNameConstant          = "origin"
	protectedBranchNameConstant       = "master"
	headRevisionConstant              = "HEAD"
	remoteBranchTemplateConstant      = "%s/%s"
	revisionRangeTemplateConstant     = "%s..%s"
	backupReferencePrefixConstant     = "refs/original/refs/heads/"
	sshCommandEnvironmentNameConstant = "GIT_SSH_COMMAND"
	sshCommandTemplateConstant        = "ssh -i %s"
)

// ErrGitExecutorNotConfigured indicates the git executor dependency was missing.
var ErrGitExecutorNotConfigured = errors.New(gitExecutorMissingMessageConstant)

// ErrLocalPathRequired indicates the local working directory option was empty.
var ErrLocalPathRequired = errors.New(localPathRequiredMessageConstant)

// ErrWorktreeNotClean indicates the working tree held uncommitted changes when
// a force push was requested.
var ErrWorktreeNotClean = errors.New(worktreeNotCleanMessageConstant)

// ErrUntrackedFiles indicates the working tree held untracked files when a
// force push was requested.
var ErrUntrackedFiles = errors.New(untrackedFilesMessageConstant)

// ContractViolationError reports caller misuse detected before any git command
// is issued. It is deliberately distinct from operational git failures.
type ContractViolationError struct {
	Operation string
	Reason    string
}

// Error describes the violated contract.
func (violation ContractViolationError) Error() string {
	return fmt.Sprintf(contractViolationTemplateConstant, violation.Operation, violation.Reason)
}

// GitExecutor exposes the subset of shell execution used by repository operations.
type GitExecutor interface {
	ExecuteGit(executionContext context.Context, details execshell.CommandDetails) (execshell.ExecutionResult, error)
}

// Dependencies enumerates collaborators required to operate a repository clone.
type Dependencies struct {
	GitExecutor   GitExecutor
	FilterCommand TrailerFilterCommandBuilder
}

// Options describe the clone a Repository operates on.
type Options struct {
	RemoteURL  string
	LocalPath  string
	SSHKeyFile string
}

// Repository is an immutable handle to one clone of a remote repository.
//
// Operations against a single local path must be serialized by the caller:
// checkout, rebase, and push mutate shared on-disk state with no internal
// locking. Handles for distinct local paths may be driven in parallel.
type Repository struct {
	remoteURL     string
	parsedRemote  RemoteURL
	localPath     string
	sshKeyFile    string
	executor      GitExecutor
	filterCommand TrailerFilterCommandBuilder
}

// NewRepository validates the supplied dependencies and options and constructs
// a Repository handle.
func NewRepository(dependencies Dependencies, options Options) (*Repository, error) {
	if dependencies.GitExecutor == nil {
		return nil, ErrGitExecutorNotConfigured
	}

	filterCommand := dependencies.FilterCommand
	if filterCommand == nil {
		filterCommand = ExecutableFilterCommandBuilder{}
	}

	parsedRemote, parseError := ParseRemoteURL(options.RemoteURL)
	if parseError != nil {
		return nil, parseError
	}

	trimmedLocalPath := strings.TrimSpace(options.LocalPath)
	if len(trimmedLocalPath) == 0 {
		return nil, ErrLocalPathRequired
	}

	return &Repository{
		remoteURL:     strings.TrimSpace(options.RemoteURL),
		parsedRemote:  parsedRemote,
		localPath:     trimmedLocalPath,
		sshKeyFile:    strings.TrimSpace(options.SSHKeyFile),
		executor:      dependencies.GitExecutor,
		filterCommand: filterCommand,
	}, nil
}

// WithSSHKeyFile returns a copy of the handle using the supplied private key
// file for transport authentication. The receiver is left unmodified.
func (repository *Repository) WithSSHKeyFile(sshKeyFile string) *Repository {
	modified := *repository
	modified.sshKeyFile = strings.TrimSpace(sshKeyFile)
	return &modified
}

// RemoteURL reports the remote the handle was constructed for.
func (repository *Repository) RemoteURL() string {
	return repository.remoteURL
}

// Remote reports the parsed remote URL.
func (repository *Repository) Remote() RemoteURL {
	return repository.parsedRemote
}

// LocalPath reports the clone's working directory.
func (repository *Repository) LocalPath() string {
	return repository.localPath
}

// Clone materializes the remote repository at the local path with the remote
// named origin. The local path must not already contain a clone.
func (repository *Repository) Clone(executionContext context.Context) error {
	_, cloneError := repository.executor.ExecuteGit(executionContext, execshell.CommandDetails{
		Arguments:            []string{gitCloneSubcommandConstant, gitCloneOriginFlagConstant, repository.remoteURL, repository.localPath},
		EnvironmentVariables: repository.authEnvironment(),
	})
	if cloneError != nil {
		return fmt.Errorf(cloneFailureTemplateConstant, repository.remoteURL, cloneError)
	}
	return nil
}

// ConfigureIdentity records the committer identity in the clone's local
// configuration.
func (repository *Repository) ConfigureIdentity(executionContext context.Context, userName string, userEmail string) error {
	if _, emailError := repository.executeGit(executionContext, gitConfigSubcommandConstant, gitUserEmailConfigKeyConstant, userEmail); emailError != nil {
		return fmt.Errorf(configureEmailFailureTemplateConstant, emailError)
	}
	if _, nameError := repository.executeGit(executionContext, gitConfigSubcommandConstant, gitUserNameConfigKeyConstant, userName); nameError != nil {
		return fmt.Errorf(configureNameFailureTemplateConstant, nameError)
	}
	return nil
}

// Rebase fetches origin, force-resets the local branch to its remote tracking
// branch, and replays it onto origin/<targetBranch>. It returns the new tip
// commit hash. A conflict leaves the repository mid-rebase for the caller to
// resolve or abort.
func (repository *Repository) Rebase(executionContext context.Context, branch string, targetBranch string) (string, error) {
	if branch == targetBranch {
		return "", ContractViolationError{Operation: rebaseOperationNameConstant, Reason: rebaseOntoSelfReasonConstant}
	}

	if _, fetchError := repository.executeGit(executionContext, gitFetchSubcommandConstant, originRemoteNameConstant); fetchError != nil {
		return "", fmt.Errorf(fetchFailureTemplateConstant, fetchError)
	}

	remoteBranch := fmt.Sprintf(remoteBranchTemplateConstant, originRemoteNameConstant, branch)
	if _, checkoutError := repository.executeGit(executionContext, gitCheckoutSubcommandConstant, gitCheckoutResetBranchFlagConstant, branch, remoteBranch, gitArgumentTerminatorConstant); checkoutError != nil {
		return "", fmt.Errorf(checkoutFailureTemplateConstant, branch, checkoutError)
	}

	remoteTarget := fmt.Sprintf(remoteBranchTemplateConstant, originRemoteNameConstant, targetBranch)
	if _, rebaseError := repository.executeGit(executionContext, gitRebaseSubcommandConstant, remoteTarget); rebaseError != nil {
		return "", fmt.Errorf(rebaseFailureTemplateConstant, remoteTarget, rebaseError)
	}

	return repository.CommitHash(executionContext, headRevisionConstant)
}

// TagWithTrailer rewrites the messages of every commit in
// (startCommit, branch] through the trailer filter, replacing the token's
// trailer lines with the supplied values. On rewrite failure the branch is
// hard-reset to the backup reference left by the rewrite facility, restoring
// the pre-call state, and the original failure is surfaced. On success the new
// tip commit hash is returned.
func (repository *Repository) TagWithTrailer(executionContext context.Context, trailerToken string, trailerValues []string, branch string, startCommit string) (string, error) {
	filterCommand, buildError := repository.filterCommand.Build(trailerToken, trailerValues)
	if buildError != nil {
		return "", fmt.Errorf(filterCommandFailureTemplateConstant, buildError)
	}

	revisionRange := fmt.Sprintf(revisionRangeTemplateConstant, startCommit, branch)
	_, rewriteError := repository.executeGit(executionContext, gitFilterBranchSubcommandConstant, gitForceFlagConstant, gitMessageFilterFlagConstant, filterCommand, revisionRange)
	if rewriteError != nil {
		backupReference := backupReferencePrefixConstant + branch
		if _, resetError := repository.executeGit(executionContext, gitResetSubcommandConstant, gitHardResetFlagConstant, backupReference); resetError != nil {
			return "", fmt.Errorf(rewriteRollbackFailureTemplateConstant, branch, rewriteError, backupReference, resetError)
		}
		return "", fmt.Errorf(rewriteFailureTemplateConstant, branch, rewriteError)
	}

	return repository.CommitHash(executionContext, headRevisionConstant)
}

// RemoveBranch force-deletes a local branch after switching to the protected
// branch. Deleting the protected branch itself is a contract violation.
func (repository *Repository) RemoveBranch(executionContext context.Context, branch string) error {
	if branch == protectedBranchNameConstant {
		return ContractViolationError{Operation: removeBranchOperationNameConstant, Reason: protectedBranchReasonConstant}
	}

	if _, checkoutError := repository.executeGit(executionContext, gitCheckoutSubcommandConstant, protectedBranchNameConstant, gitArgumentTerminatorConstant); checkoutError != nil {
		return fmt.Errorf(checkoutFailureTemplateConstant, protectedBranchNameConstant, checkoutError)
	}
	if _, deleteError := repository.executeGit(executionContext, gitBranchSubcommandConstant, gitBranchForceDeleteFlagConstant, branch); deleteError != nil {
		return fmt.Errorf(branchDeleteFailureTemplateConstant, branch, deleteError)
	}
	return nil
}

// PushForce force-pushes the branch to origin after verifying the working tree
// carries neither uncommitted changes nor untracked files. Both guard checks
// run before the push; a failing guard prevents the push entirely.
func (repository *Repository) PushForce(executionContext context.Context, branch string) error {
	if _, checkoutError := repository.executeGit(executionContext, gitCheckoutSubcommandConstant, branch, gitArgumentTerminatorConstant); checkoutError != nil {
		return fmt.Errorf(checkoutFailureTemplateConstant, branch, checkoutError)
	}

	if _, dirtyError := repository.executeGit(executionContext, gitDiffIndexSubcommandConstant, gitQuietFlagConstant, headRevisionConstant); dirtyError != nil {
		return fmt.Errorf(dirtyWorktreeDetailTemplateConstant, ErrWorktreeNotClean, dirtyError)
	}

	untrackedResult, untrackedError := repository.executeGit(executionContext, gitLSFilesSubcommandConstant, gitOthersFlagConstant)
	if untrackedError != nil {
		return fmt.Errorf(pushFailureTemplateConstant, branch, untrackedError)
	}
	if untrackedFiles := strings.TrimSpace(untrackedResult.StandardOutput); len(untrackedFiles) > 0 {
		return fmt.Errorf(untrackedFilesDetailTemplateConstant, ErrUntrackedFiles, untrackedFiles)
	}

	if _, pushError := repository.executeGit(executionContext, gitPushSubcommandConstant, gitForceFlagConstant, originRemoteNameConstant, branch); pushError != nil {
		return fmt.Errorf(pushFailureTemplateConstant, branch, pushError)
	}
	return nil
}

// CommitHash resolves a revision to its full commit hash. An empty revision
// resolves HEAD.
func (repository *Repository) CommitHash(executionContext context.Context, revision string) (string, error) {
	resolvedRevision := strings.TrimSpace(revision)
	if len(resolvedRevision) == 0 {
		resolvedRevision = headRevisionConstant
	}

	revisionResult, revisionError := repository.executeGit(executionContext, gitRevParseSubcommandConstant, resolvedRevision)
	if revisionError != nil {
		return "", fmt.Errorf(revisionResolveFailureTemplateConstant, resolvedRevision, revisionError)
	}
	return strings.TrimSpace(revisionResult.StandardOutput), nil
}

func (repository *Repository) executeGit(executionContext context.Context, arguments ...string) (execshell.ExecutionResult, error) {
	return repository.executor.ExecuteGit(executionContext, execshell.CommandDetails{
		Arguments:            arguments,
		WorkingDirectory:     repository.localPath,
		EnvironmentVariables: repository.authEnvironment(),
	})
}

// authEnvironment builds the per-invocation transport override. The variable
// is scoped to a single command; no agent or session state persists.
func (repository *Repository) authEnvironment() map[string]string {
	if len(repository.sshKeyFile) == 0 {
		return nil
	}
	return map[string]string{
		sshCommandEnvironmentNameConstant: fmt.Sprintf(sshCommandTemplateConstant, repository.sshKeyFile),
	}
}
