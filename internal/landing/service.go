package landing

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"
)

const (
	repositoryMissingMessageConstant     = "repository not configured"
	sourceBranchRequiredMessageConstant  = "source branch must be provided"
	targetBranchRequiredMessageConstant  = "target branch must be provided"
	cloneStepFailureTemplateConstant     = "clone step failed: %w"
	identityStepFailureTemplateConstant  = "identity step failed: %w"
	rebaseStepFailureTemplateConstant    = "rebase step failed: %w"
	trailerStepFailureTemplateConstant   = "trailer step failed: %w"
	pushStepFailureTemplateConstant      = "push step failed: %w"
	remoteStartCommitTemplateConstant    = "origin/%s"
	landedMessageConstant                = "landed branch"
	logFieldSourceBranchConstant         = "source_branch"
	logFieldTargetBranchConstant         = "target_branch"
	logFieldCommitHashConstant           = "commit_hash"
)

// ErrRepositoryNotConfigured indicates the repository dependency was missing.
var ErrRepositoryNotConfigured = errors.New(repositoryMissingMessageConstant)

// ErrSourceBranchRequired indicates the source branch option was empty.
var ErrSourceBranchRequired = errors.New(sourceBranchRequiredMessageConstant)

// ErrTargetBranchRequired indicates the target branch option was empty.
var ErrTargetBranchRequired = errors.New(targetBranchRequiredMessageConstant)

// RepositoryOperations enumerates the git operations the landing sequence drives.
type RepositoryOperations interface {
	Clone(executionContext context.Context) error
	ConfigureIdentity(executionContext context.Context, userName string, userEmail string) error
	Rebase(executionContext context.Context, branch string, targetBranch string) (string, error)
	TagWithTrailer(executionContext context.Context, trailerToken string, trailerValues []string, branch string, startCommit string) (string, error)
	PushForce(executionContext context.Context, branch string) error
}

// TrailerSpecification names one trailer token and its replacement values.
type TrailerSpecification struct {
	Token  string   `yaml:"token"`
	Values []string `yaml:"values"`
}

// Dependencies enumerates collaborators required for landing operations.
type Dependencies struct {
	Repository RepositoryOperations
	Logger     *zap.Logger
}

// Options configure one landing run.
type Options struct {
	SourceBranch   string
	TargetBranch   string
	CommitterName  string
	CommitterEmail string
	Trailers       []TrailerSpecification
	SkipClone      bool
}

// Result captures the observable outcome of a landing run.
type Result struct {
	SourceBranch string
	TargetBranch string
	CommitHash   string
}

// Service coordinates the landing sequence against a repository handle.
type Service struct {
	repository RepositoryOperations
	logger     *zap.Logger
}

// NewService constructs a Service from the provided dependencies.
func NewService(dependencies Dependencies) (*Service, error) {
	if dependencies.Repository == nil {
		return nil, ErrRepositoryNotConfigured
	}

	logger := dependencies.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Service{repository: dependencies.Repository, logger: logger}, nil
}

// Land executes the landing sequence and returns the final tip commit hash.
// The sequence stops at the first failing step; no step is retried.
func (service *Service) Land(executionContext context.Context, options Options) (Result, error) {
	sourceBranch := strings.TrimSpace(options.SourceBranch)
	if len(sourceBranch) == 0 {
		return Result{}, ErrSourceBranchRequired
	}
	targetBranch := strings.TrimSpace(options.TargetBranch)
	if len(targetBranch) == 0 {
		return Result{}, ErrTargetBranchRequired
	}

	if !options.SkipClone {
		if cloneError := service.repository.Clone(executionContext); cloneError != nil {
			return Result{}, fmt.Errorf(cloneStepFailureTemplateConstant, cloneError)
		}
	}

	if len(options.CommitterName) > 0 || len(options.CommitterEmail) > 0 {
		if identityError := service.repository.ConfigureIdentity(executionContext, options.CommitterName, options.CommitterEmail); identityError != nil {
			return Result{}, fmt.Errorf(identityStepFailureTemplateConstant, identityError)
		}
	}

	commitHash, rebaseError := service.repository.Rebase(executionContext, sourceBranch, targetBranch)
	if rebaseError != nil {
		return Result{}, fmt.Errorf(rebaseStepFailureTemplateConstant, rebaseError)
	}

	startCommit := fmt.Sprintf(remoteStartCommitTemplateConstant, targetBranch)
	for _, trailerSpecification := range options.Trailers {
		taggedHash, trailerError := service.repository.TagWithTrailer(executionContext, trailerSpecification.Token, trailerSpecification.Values, sourceBranch, startCommit)
		if trailerError != nil {
			return Result{}, fmt.Errorf(trailerStepFailureTemplateConstant, trailerError)
		}
		commitHash = taggedHash
	}

	if pushError := service.repository.PushForce(executionContext, sourceBranch); pushError != nil {
		return Result{}, fmt.Errorf(pushStepFailureTemplateConstant, pushError)
	}

	service.logger.Info(
		landedMessageConstant,
		zap.String(logFieldSourceBranchConstant, sourceBranch),
		zap.String(logFieldTargetBranchConstant, targetBranch),
		zap.String(logFieldCommitHashConstant, commitHash),
	)

	return Result{SourceBranch: sourceBranch, TargetBranch: targetBranch, CommitHash: commitHash}, nil
}
