package landing

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	yaml "gopkg.in/yaml.v3"

	"github.com/autoland/autoland/internal/execshell"
	"github.com/autoland/autoland/internal/gitrepo"
	"github.com/autoland/autoland/internal/ui"
)

const (
	commandUseConstant              = "land"
	commandShortDescriptionConstant = "Rebase a reviewed branch, install trailers, and force-push it"
	commandLongDescriptionConstant  = "land clones the configured remote when needed, records the committer identity, rebases the source branch onto the latest target, rewrites the rebased commits with the configured trailers, and force-pushes the result to origin."

	remoteURLFlagNameConstant       = "remote-url"
	remoteURLFlagUsageConstant      = "Remote repository URL (ssh or https)"
	localPathFlagNameConstant       = "local-path"
	localPathFlagUsageConstant      = "Local working directory holding the clone"
	sshKeyFlagNameConstant          = "ssh-key-file"
	sshKeyFlagUsageConstant         = "Private key file used for SSH transport authentication"
	sourceBranchFlagNameConstant    = "branch"
	sourceBranchFlagUsageConstant   = "Branch to land"
	targetBranchFlagNameConstant    = "onto"
	targetBranchFlagUsageConstant   = "Target branch the source branch is rebased onto"
	committerNameFlagNameConstant   = "committer-name"
	committerNameFlagUsageConstant  = "Committer name recorded in the clone's configuration"
	committerEmailFlagNameConstant  = "committer-email"
	committerEmailFlagUsageConstant = "Committer email recorded in the clone's configuration"
	trailerTokenFlagNameConstant    = "trailer-token"
	trailerTokenFlagUsageConstant   = "Trailer token to install on the rebased commits"
	trailerValueFlagNameConstant    = "trailer-value"
	trailerValueFlagUsageConstant   = "Trailer value for the token; repeat the flag for several values"
	trailersFileFlagNameConstant    = "trailers-file"
	trailersFileFlagUsageConstant   = "YAML file listing trailer tokens and values to install"
	skipCloneFlagNameConstant       = "skip-clone"
	skipCloneFlagUsageConstant      = "Skip cloning; the local path already holds a clone"

	missingRemoteURLMessageConstant    = "remote url is required; supply --remote-url"
	missingLocalPathMessageConstant    = "local path is required; supply --local-path"
	missingSourceBranchMessageConstant = "branch is required; supply --branch"
	missingTargetBranchMessageConstant = "target branch is required; supply --onto"

	trailersFileReadErrorTemplateConstant  = "unable to read trailers file %s: %w"
	trailersFileParseErrorTemplateConstant = "unable to parse trailers file %s: %w"
	executorCreationErrorTemplateConstant  = "unable to create git executor: %w"

	landedOutputTemplateConstant = "LANDED: %s onto %s (%s)\n"

	logFieldRemoteConstant = "remote"
)

const (
	targetBranchConfigurationKeySuffixConstant = ".target_branch"
	defaultTargetBranchConstant                = "master"
)

// DefaultConfigurationValues returns the configuration defaults for the land
// command keyed under the provided configuration prefix.
func DefaultConfigurationValues(configurationPrefix string) map[string]any {
	return map[string]any{
		configurationPrefix + targetBranchConfigurationKeySuffixConstant: defaultTargetBranchConstant,
	}
}

// CommandConfiguration captures the land command's configurable defaults.
type CommandConfiguration struct {
	RemoteURL      string   `mapstructure:"remote_url"`
	LocalPath      string   `mapstructure:"local_path"`
	SSHKeyFile     string   `mapstructure:"ssh_key_file"`
	SourceBranch   string   `mapstructure:"source_branch"`
	TargetBranch   string   `mapstructure:"target_branch"`
	CommitterName  string   `mapstructure:"committer_name"`
	CommitterEmail string   `mapstructure:"committer_email"`
	TrailerToken   string   `mapstructure:"trailer_token"`
	TrailerValues  []string `mapstructure:"trailer_values"`
	TrailersFile   string   `mapstructure:"trailers_file"`
	SkipClone      bool     `mapstructure:"skip_clone"`
}

// LoggerProvider yields a zap logger for command execution.
type LoggerProvider func() *zap.Logger

// CommandBuilder assembles the land command.
type CommandBuilder struct {
	LoggerProvider               LoggerProvider
	GitExecutor                  gitrepo.GitExecutor
	FilterCommand                gitrepo.TrailerFilterCommandBuilder
	HumanReadableLoggingProvider func() bool
	ConfigurationProvider        func() CommandConfiguration
}

// Build constructs the land command.
func (builder *CommandBuilder) Build() (*cobra.Command, error) {
	command := &cobra.Command{
		Use:   commandUseConstant,
		Short: commandShortDescriptionConstant,
		Long:  commandLongDescriptionConstant,
		Args:  cobra.NoArgs,
		RunE:  builder.run,
	}

	flagSet := command.Flags()
	flagSet.String(remoteURLFlagNameConstant, "", remoteURLFlagUsageConstant)
	flagSet.String(localPathFlagNameConstant, "", localPathFlagUsageConstant)
	flagSet.String(sshKeyFlagNameConstant, "", sshKeyFlagUsageConstant)
	flagSet.String(sourceBranchFlagNameConstant, "", sourceBranchFlagUsageConstant)
	flagSet.String(targetBranchFlagNameConstant, "", targetBranchFlagUsageConstant)
	flagSet.String(committerNameFlagNameConstant, "", committerNameFlagUsageConstant)
	flagSet.String(committerEmailFlagNameConstant, "", committerEmailFlagUsageConstant)
	flagSet.String(trailerTokenFlagNameConstant, "", trailerTokenFlagUsageConstant)
	flagSet.StringArray(trailerValueFlagNameConstant, nil, trailerValueFlagUsageConstant)
	flagSet.String(trailersFileFlagNameConstant, "", trailersFileFlagUsageConstant)
	flagSet.Bool(skipCloneFlagNameConstant, false, skipCloneFlagUsageConstant)

	return command, nil
}

func (builder *CommandBuilder) run(command *cobra.Command, arguments []string) error {
	configuration := builder.resolveConfiguration()
	applyStringFlag(command, remoteURLFlagNameConstant, &configuration.RemoteURL)
	applyStringFlag(command, localPathFlagNameConstant, &configuration.LocalPath)
	applyStringFlag(command, sshKeyFlagNameConstant, &configuration.SSHKeyFile)
	applyStringFlag(command, sourceBranchFlagNameConstant, &configuration.SourceBranch)
	applyStringFlag(command, targetBranchFlagNameConstant, &configuration.TargetBranch)
	applyStringFlag(command, committerNameFlagNameConstant, &configuration.CommitterName)
	applyStringFlag(command, committerEmailFlagNameConstant, &configuration.CommitterEmail)
	applyStringFlag(command, trailerTokenFlagNameConstant, &configuration.TrailerToken)
	applyStringFlag(command, trailersFileFlagNameConstant, &configuration.TrailersFile)
	applyStringArrayFlag(command, trailerValueFlagNameConstant, &configuration.TrailerValues)
	applyBoolFlag(command, skipCloneFlagNameConstant, &configuration.SkipClone)

	if validationError := validateConfiguration(configuration); validationError != nil {
		return validationError
	}

	trailerSpecifications, trailerLoadError := builder.collectTrailerSpecifications(configuration)
	if trailerLoadError != nil {
		return trailerLoadError
	}

	logger := builder.resolveLogger()

	gitExecutor, executorError := builder.resolveGitExecutor(logger)
	if executorError != nil {
		return executorError
	}

	repository, repositoryError := gitrepo.NewRepository(
		gitrepo.Dependencies{GitExecutor: gitExecutor, FilterCommand: builder.FilterCommand},
		gitrepo.Options{RemoteURL: configuration.RemoteURL, LocalPath: configuration.LocalPath, SSHKeyFile: configuration.SSHKeyFile},
	)
	if repositoryError != nil {
		return repositoryError
	}

	service, serviceError := NewService(Dependencies{
		Repository: repository,
		Logger:     logger.With(zap.String(logFieldRemoteConstant, repository.Remote().OwnerRepository())),
	})
	if serviceError != nil {
		return serviceError
	}

	landingResult, landingError := service.Land(command.Context(), Options{
		SourceBranch:   configuration.SourceBranch,
		TargetBranch:   configuration.TargetBranch,
		CommitterName:  configuration.CommitterName,
		CommitterEmail: configuration.CommitterEmail,
		Trailers:       trailerSpecifications,
		SkipClone:      configuration.SkipClone,
	})
	if landingError != nil {
		return landingError
	}

	fmt.Fprintf(command.OutOrStdout(), landedOutputTemplateConstant, landingResult.SourceBranch, landingResult.TargetBranch, landingResult.CommitHash)
	return nil
}

func (builder *CommandBuilder) resolveConfiguration() CommandConfiguration {
	if builder.ConfigurationProvider == nil {
		return CommandConfiguration{}
	}
	return builder.ConfigurationProvider()
}

func (builder *CommandBuilder) resolveLogger() *zap.Logger {
	if builder.LoggerProvider == nil {
		return zap.NewNop()
	}
	logger := builder.LoggerProvider()
	if logger == nil {
		return zap.NewNop()
	}
	return logger
}

func (builder *CommandBuilder) resolveGitExecutor(logger *zap.Logger) (gitrepo.GitExecutor, error) {
	if builder.GitExecutor != nil {
		return builder.GitExecutor, nil
	}

	shellExecutor, executorError := execshell.NewShellExecutor(logger, execshell.NewOSCommandRunner())
	if executorError != nil {
		return nil, fmt.Errorf(executorCreationErrorTemplateConstant, executorError)
	}
	if builder.HumanReadableLoggingProvider != nil && builder.HumanReadableLoggingProvider() {
		shellExecutor.SetCommandEventObserver(ui.NewConsoleCommandEventLogger(logger))
	}
	return shellExecutor, nil
}

func (builder *CommandBuilder) collectTrailerSpecifications(configuration CommandConfiguration) ([]TrailerSpecification, error) {
	specifications := []TrailerSpecification{}
	if len(strings.TrimSpace(configuration.TrailerToken)) > 0 {
		specifications = append(specifications, TrailerSpecification{
			Token:  strings.TrimSpace(configuration.TrailerToken),
			Values: configuration.TrailerValues,
		})
	}

	if len(strings.TrimSpace(configuration.TrailersFile)) > 0 {
		fileSpecifications, loadError := loadTrailerSpecifications(strings.TrimSpace(configuration.TrailersFile))
		if loadError != nil {
			return nil, loadError
		}
		specifications = append(specifications, fileSpecifications...)
	}

	return specifications, nil
}

// trailersFileDocument models the YAML trailers file: an ordered list of
// token/values entries, applied in file order.
type trailersFileDocument struct {
	Trailers []TrailerSpecification `yaml:"trailers"`
}

func loadTrailerSpecifications(filePath string) ([]TrailerSpecification, error) {
	fileContents, readError := os.ReadFile(filePath)
	if readError != nil {
		return nil, fmt.Errorf(trailersFileReadErrorTemplateConstant, filePath, readError)
	}

	var document trailersFileDocument
	if parseError := yaml.Unmarshal(fileContents, &document); parseError != nil {
		return nil, fmt.Errorf(trailersFileParseErrorTemplateConstant, filePath, parseError)
	}

	return document.Trailers, nil
}

func validateConfiguration(configuration CommandConfiguration) error {
	if len(strings.TrimSpace(configuration.RemoteURL)) == 0 {
		return errors.New(missingRemoteURLMessageConstant)
	}
	if len(strings.TrimSpace(configuration.LocalPath)) == 0 {
		return errors.New(missingLocalPathMessageConstant)
	}
	if len(strings.TrimSpace(configuration.SourceBranch)) == 0 {
		return errors.New(missingSourceBranchMessageConstant)
	}
	if len(strings.TrimSpace(configuration.TargetBranch)) == 0 {
		return errors.New(missingTargetBranchMessageConstant)
	}
	return nil
}

func applyStringFlag(command *cobra.Command, flagName string, target *string) {
	if !command.Flags().Changed(flagName) {
		return
	}
	if flagValue, flagError := command.Flags().GetString(flagName); flagError == nil {
		*target = flagValue
	}
}

func applyStringArrayFlag(command *cobra.Command, flagName string, target *[]string) {
	if !command.Flags().Changed(flagName) {
		return
	}
	if flagValues, flagError := command.Flags().GetStringArray(flagName); flagError == nil {
		*target = flagValues
	}
}

func applyBoolFlag(command *cobra.Command, flagName string, target *bool) {
	if !command.Flags().Changed(flagName) {
		return
	}
	if flagValue, flagError := command.Flags().GetBool(flagName); flagError == nil {
		*target = flagValue
	}
}
