package landing_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/autoland/autoland/internal/landing"
)

type recordedTrailerCall struct {
	token       string
	values      []string
	branch      string
	startCommit string
}

type fakeRepositoryOperations struct {
	callOrder       []string
	trailerCalls    []recordedTrailerCall
	identityName    string
	identityEmail   string
	pushedBranch    string
	rebaseHash      string
	trailerHash     string
	cloneFailure    error
	identityFailure error
	rebaseFailure   error
	trailerFailure  error
	pushFailure     error
}

func (fake *fakeRepositoryOperations) Clone(executionContext context.Context) error {
	fake.callOrder = append(fake.callOrder, "clone")
	return fake.cloneFailure
}

func (fake *fakeRepositoryOperations) ConfigureIdentity(executionContext context.Context, userName string, userEmail string) error {
	fake.callOrder = append(fake.callOrder, "identity")
	fake.identityName = userName
	fake.identityEmail = userEmail
	return fake.identityFailure
}

func (fake *fakeRepositoryOperations) Rebase(executionContext context.Context, branch string, targetBranch string) (string, error) {
	fake.callOrder = append(fake.callOrder, "rebase")
	return fake.rebaseHash, fake.rebaseFailure
}

func (fake *fakeRepositoryOperations) TagWithTrailer(executionContext context.Context, trailerToken string, trailerValues []string, branch string, startCommit string) (string, error) {
	fake.callOrder = append(fake.callOrder, "trailer")
	fake.trailerCalls = append(fake.trailerCalls, recordedTrailerCall{
		token:       trailerToken,
		values:      trailerValues,
		branch:      branch,
		startCommit: startCommit,
	})
	return fake.trailerHash, fake.trailerFailure
}

func (fake *fakeRepositoryOperations) PushForce(executionContext context.Context, branch string) error {
	fake.callOrder = append(fake.callOrder, "push")
	fake.pushedBranch = branch
	return fake.pushFailure
}

func newLandingService(testInstance *testing.T, repository landing.RepositoryOperations) *landing.Service {
	testInstance.Helper()

	service, creationError := landing.NewService(landing.Dependencies{Repository: repository})
	require.NoError(testInstance, creationError)
	return service
}

func TestNewServiceRequiresRepository(testInstance *testing.T) {
	_, creationError := landing.NewService(landing.Dependencies{})
	require.ErrorIs(testInstance, creationError, landing.ErrRepositoryNotConfigured)
}

func TestLandRunsFullSequence(testInstance *testing.T) {
	repository := &fakeRepositoryOperations{rebaseHash: "rebased", trailerHash: "tagged"}
	service := newLandingService(testInstance, repository)

	landingResult, landingError := service.Land(context.Background(), landing.Options{
		SourceBranch:   "feature",
		TargetBranch:   "master",
		CommitterName:  "Land Bot",
		CommitterEmail: "landbot@example.com",
		Trailers: []landing.TrailerSpecification{
			{Token: "Reviewed-by", Values: []string{"Alice"}},
			{Token: "Tested-by", Values: []string{"CI"}},
		},
	})
	require.NoError(testInstance, landingError)
	require.Equal(testInstance, []string{"clone", "identity", "rebase", "trailer", "trailer", "push"}, repository.callOrder)
	require.Equal(testInstance, "Land Bot", repository.identityName)
	require.Equal(testInstance, "landbot@example.com", repository.identityEmail)
	require.Equal(testInstance, "feature", repository.pushedBranch)
	require.Equal(testInstance, landing.Result{SourceBranch: "feature", TargetBranch: "master", CommitHash: "tagged"}, landingResult)

	require.Len(testInstance, repository.trailerCalls, 2)
	require.Equal(testInstance, recordedTrailerCall{token: "Reviewed-by", values: []string{"Alice"}, branch: "feature", startCommit: "origin/master"}, repository.trailerCalls[0])
	require.Equal(testInstance, recordedTrailerCall{token: "Tested-by", values: []string{"CI"}, branch: "feature", startCommit: "origin/master"}, repository.trailerCalls[1])
}

func TestLandWithoutTrailersReportsRebaseHash(testInstance *testing.T) {
	repository := &fakeRepositoryOperations{rebaseHash: "rebased"}
	service := newLandingService(testInstance, repository)

	landingResult, landingError := service.Land(context.Background(), landing.Options{
		SourceBranch: "feature",
		TargetBranch: "master",
		SkipClone:    true,
	})
	require.NoError(testInstance, landingError)
	require.Equal(testInstance, []string{"rebase", "push"}, repository.callOrder)
	require.Equal(testInstance, "rebased", landingResult.CommitHash)
}

func TestLandSkipsIdentityWhenUnset(testInstance *testing.T) {
	repository := &fakeRepositoryOperations{}
	service := newLandingService(testInstance, repository)

	_, landingError := service.Land(context.Background(), landing.Options{SourceBranch: "feature", TargetBranch: "master"})
	require.NoError(testInstance, landingError)
	require.NotContains(testInstance, repository.callOrder, "identity")
}

func TestLandValidatesBranches(testInstance *testing.T) {
	testCases := []struct {
		name          string
		options       landing.Options
		expectedError error
	}{
		{
			name:          "missing_source_branch",
			options:       landing.Options{TargetBranch: "master"},
			expectedError: landing.ErrSourceBranchRequired,
		},
		{
			name:          "missing_target_branch",
			options:       landing.Options{SourceBranch: "feature"},
			expectedError: landing.ErrTargetBranchRequired,
		},
		{
			name:          "blank_source_branch",
			options:       landing.Options{SourceBranch: "   ", TargetBranch: "master"},
			expectedError: landing.ErrSourceBranchRequired,
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(subTest *testing.T) {
			repository := &fakeRepositoryOperations{}
			service := newLandingService(subTest, repository)

			_, landingError := service.Land(context.Background(), testCase.options)
			require.ErrorIs(subTest, landingError, testCase.expectedError)
			require.Empty(subTest, repository.callOrder)
		})
	}
}

func TestLandStopsAtFirstFailingStep(testInstance *testing.T) {
	stepFailure := errors.New("step failed")
	testCases := []struct {
		name          string
		repository    *fakeRepositoryOperations
		expectedOrder []string
	}{
		{
			name:          "clone_failure",
			repository:    &fakeRepositoryOperations{cloneFailure: stepFailure},
			expectedOrder: []string{"clone"},
		},
		{
			name:          "rebase_failure",
			repository:    &fakeRepositoryOperations{rebaseFailure: stepFailure},
			expectedOrder: []string{"clone", "rebase"},
		},
		{
			name:          "trailer_failure",
			repository:    &fakeRepositoryOperations{trailerFailure: stepFailure},
			expectedOrder: []string{"clone", "rebase", "trailer"},
		},
		{
			name:          "push_failure",
			repository:    &fakeRepositoryOperations{pushFailure: stepFailure},
			expectedOrder: []string{"clone", "rebase", "trailer", "push"},
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(subTest *testing.T) {
			service := newLandingService(subTest, testCase.repository)

			_, landingError := service.Land(context.Background(), landing.Options{
				SourceBranch: "feature",
				TargetBranch: "master",
				Trailers:     []landing.TrailerSpecification{{Token: "Reviewed-by", Values: []string{"Alice"}}},
			})
			require.ErrorIs(subTest, landingError, stepFailure)
			require.Equal(subTest, testCase.expectedOrder, testCase.repository.callOrder)
		})
	}
}
