package execshell

import (
	"fmt"
	"strings"
)

type messageStage int

const (
	messageStageStart messageStage = iota
	messageStageSuccess
	messageStageFailure
	messageStageExecutionFailure
)

const (
	genericStartTemplateConstant            = "Running %s"
	genericSuccessTemplateConstant          = "Completed %s"
	genericFailureTemplateConstant          = "%s failed with exit code %d%s"
	genericExecutionFailureTemplateConstant = "%s failed: %s"
	workingDirectorySuffixTemplateConstant  = " (in %s)"
	standardErrorSuffixTemplateConstant     = ": %s"
	commandArgumentsJoinSeparatorConstant   = " "
	unknownFailureMessageConstant           = "unknown error"
	emptyStringConstant                     = ""
)

const (
	gitCloneSubcommandConstant        = "clone"
	gitFetchSubcommandConstant        = "fetch"
	gitCheckoutSubcommandConstant     = "checkout"
	gitRebaseSubcommandConstant       = "rebase"
	gitConfigSubcommandConstant       = "config"
	gitFilterBranchSubcommandConstant = "filter-branch"
	gitResetSubcommandConstant        = "reset"
	gitBranchSubcommandConstant       = "branch"
	gitPushSubcommandConstant         = "push"
	gitRevParseSubcommandConstant     = "rev-parse"
	gitDiffIndexSubcommandConstant    = "diff-index"
	gitLSFilesSubcommandConstant      = "ls-files"
)

const (
	cloneDescriptionTemplateConstant         = "clone into %s"
	fetchDescriptionTemplateConstant         = "fetch from %s"
	checkoutDescriptionTemplateConstant      = "checkout of %s"
	rebaseDescriptionTemplateConstant        = "rebase onto %s"
	configDescriptionTemplateConstant        = "configuration update for %s"
	filterBranchDescriptionTemplateConstant  = "history rewrite of %s"
	resetDescriptionTemplateConstant         = "hard reset to %s"
	branchDeleteDescriptionTemplateConstant  = "branch deletion of %s"
	pushDescriptionTemplateConstant          = "push of %s"
	revParseDescriptionTemplateConstant      = "revision lookup for %s"
	diffIndexDescriptionConstant             = "working tree cleanliness check"
	lsFilesDescriptionConstant               = "untracked file listing"
	genericCommandDescriptionTemplateConstant = "%s %s"
)

// CommandMessageFormatter builds human-readable messages for command lifecycle events.
type CommandMessageFormatter struct{}

// BuildStartedMessage formats the message describing a command about to run.
func (formatter CommandMessageFormatter) BuildStartedMessage(command ShellCommand) string {
	return formatter.buildMessage(command, ExecutionResult{}, nil, messageStageStart)
}

// BuildSuccessMessage formats the message describing a completed command with a zero exit code.
func (formatter CommandMessageFormatter) BuildSuccessMessage(command ShellCommand) string {
	return formatter.buildMessage(command, ExecutionResult{}, nil, messageStageSuccess)
}

// BuildFailureMessage formats the message describing a command that returned a non-zero exit code.
func (formatter CommandMessageFormatter) BuildFailureMessage(command ShellCommand, result ExecutionResult) string {
	return formatter.buildMessage(command, result, nil, messageStageFailure)
}

// BuildExecutionFailureMessage formats the message describing an unexpected execution failure.
func (formatter CommandMessageFormatter) BuildExecutionFailureMessage(command ShellCommand, failure error) string {
	return formatter.buildMessage(command, ExecutionResult{}, failure, messageStageExecutionFailure)
}

func (formatter CommandMessageFormatter) buildMessage(command ShellCommand, result ExecutionResult, failure error, stage messageStage) string {
	commandDescription := formatter.describeCommand(command) + formatter.formatWorkingDirectorySuffix(command)

	switch stage {
	case messageStageStart:
		return fmt.Sprintf(genericStartTemplateConstant, commandDescription)
	case messageStageSuccess:
		return fmt.Sprintf(genericSuccessTemplateConstant, commandDescription)
	case messageStageFailure:
		return fmt.Sprintf(genericFailureTemplateConstant, commandDescription, result.ExitCode, formatter.formatStandardErrorSuffix(result.StandardError))
	case messageStageExecutionFailure:
		failureMessage := unknownFailureMessageConstant
		if failure != nil {
			failureMessage = failure.Error()
		}
		return fmt.Sprintf(genericExecutionFailureTemplateConstant, commandDescription, failureMessage)
	default:
		return commandDescription
	}
}

func (formatter CommandMessageFormatter) describeCommand(command ShellCommand) string {
	arguments := command.Details.Arguments
	if len(arguments) == 0 {
		return string(command.Name)
	}

	switch arguments[0] {
	case gitCloneSubcommandConstant:
		return fmt.Sprintf(cloneDescriptionTemplateConstant, lastArgument(arguments))
	case gitFetchSubcommandConstant:
		return fmt.Sprintf(fetchDescriptionTemplateConstant, lastArgument(arguments))
	case gitCheckoutSubcommandConstant:
		return fmt.Sprintf(checkoutDescriptionTemplateConstant, firstPositionalArgument(arguments[1:]))
	case gitRebaseSubcommandConstant:
		return fmt.Sprintf(rebaseDescriptionTemplateConstant, lastArgument(arguments))
	case gitConfigSubcommandConstant:
		return fmt.Sprintf(configDescriptionTemplateConstant, firstPositionalArgument(arguments[1:]))
	case gitFilterBranchSubcommandConstant:
		return fmt.Sprintf(filterBranchDescriptionTemplateConstant, lastArgument(arguments))
	case gitResetSubcommandConstant:
		return fmt.Sprintf(resetDescriptionTemplateConstant, lastArgument(arguments))
	case gitBranchSubcommandConstant:
		return fmt.Sprintf(branchDeleteDescriptionTemplateConstant, lastArgument(arguments))
	case gitPushSubcommandConstant:
		return fmt.Sprintf(pushDescriptionTemplateConstant, lastArgument(arguments))
	case gitRevParseSubcommandConstant:
		return fmt.Sprintf(revParseDescriptionTemplateConstant, lastArgument(arguments))
	case gitDiffIndexSubcommandConstant:
		return diffIndexDescriptionConstant
	case gitLSFilesSubcommandConstant:
		return lsFilesDescriptionConstant
	default:
		return fmt.Sprintf(genericCommandDescriptionTemplateConstant, string(command.Name), strings.Join(arguments, commandArgumentsJoinSeparatorConstant))
	}
}

func (formatter CommandMessageFormatter) formatWorkingDirectorySuffix(command ShellCommand) string {
	trimmedWorkingDirectory := strings.TrimSpace(command.Details.WorkingDirectory)
	if len(trimmedWorkingDirectory) == 0 {
		return emptyStringConstant
	}
	return fmt.Sprintf(workingDirectorySuffixTemplateConstant, trimmedWorkingDirectory)
}

func (formatter CommandMessageFormatter) formatStandardErrorSuffix(standardError string) string {
	trimmedStandardError := strings.TrimSpace(standardError)
	if len(trimmedStandardError) == 0 {
		return emptyStringConstant
	}
	return fmt.Sprintf(standardErrorSuffixTemplateConstant, trimmedStandardError)
}

func lastArgument(arguments []string) string {
	if len(arguments) == 0 {
		return emptyStringConstant
	}
	return arguments[len(arguments)-1]
}

func firstPositionalArgument(arguments []string) string {
	for _, argument := range arguments {
		if !strings.HasPrefix(argument, "-") {
			return argument
		}
	}
	return emptyStringConstant
}
