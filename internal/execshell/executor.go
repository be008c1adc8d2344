package execshell

import (
	"context"
	"errors"

	"go.uber.org/zap"
)

const (
	loggerNotConfiguredMessageConstant        = "logger not configured"
	commandRunnerNotConfiguredMessageConstant = "command runner not configured"
	logFieldCommandNameConstant               = "command_name"
	logFieldArgumentsConstant                 = "arguments"
	logFieldWorkingDirectoryConstant          = "working_directory"
	logFieldExitCodeConstant                  = "exit_code"
	logFieldStandardErrorConstant             = "standard_error"
)

// ErrLoggerNotConfigured indicates the executor was created without a logger.
var ErrLoggerNotConfigured = errors.New(loggerNotConfiguredMessageConstant)

// ErrCommandRunnerNotConfigured indicates the executor was created without a runner.
var ErrCommandRunnerNotConfigured = errors.New(commandRunnerNotConfiguredMessageConstant)

// CommandFailedError reports an external command that exited with a non-zero status.
// It carries the full invocation and its captured output so failures can be
// diagnosed without re-running the command.
type CommandFailedError struct {
	Command ShellCommand
	Result  ExecutionResult
}

// Error describes the failed command together with its captured standard error.
func (failure CommandFailedError) Error() string {
	formatter := CommandMessageFormatter{}
	return formatter.BuildFailureMessage(failure.Command, failure.Result)
}

// CommandExecutionError reports a command that could not be spawned or awaited.
type CommandExecutionError struct {
	Command ShellCommand
	Cause   error
}

// Error describes the execution failure.
func (failure CommandExecutionError) Error() string {
	formatter := CommandMessageFormatter{}
	return formatter.BuildExecutionFailureMessage(failure.Command, failure.Cause)
}

// Unwrap exposes the underlying cause.
func (failure CommandExecutionError) Unwrap() error {
	return failure.Cause
}

// ShellExecutor coordinates external command execution with structured logging
// and typed failures.
type ShellExecutor struct {
	logger        *zap.Logger
	commandRunner CommandRunner
	eventObserver CommandEventObserver
	formatter     CommandMessageFormatter
}

// NewShellExecutor validates dependencies and constructs a ShellExecutor.
func NewShellExecutor(logger *zap.Logger, commandRunner CommandRunner) (*ShellExecutor, error) {
	if logger == nil {
		return nil, ErrLoggerNotConfigured
	}
	if commandRunner == nil {
		return nil, ErrCommandRunnerNotConfigured
	}

	return &ShellExecutor{
		logger:        logger,
		commandRunner: commandRunner,
		eventObserver: noopCommandEventObserver{},
		formatter:     CommandMessageFormatter{},
	}, nil
}

// SetCommandEventObserver installs an observer notified of command lifecycle events.
func (executor *ShellExecutor) SetCommandEventObserver(observer CommandEventObserver) {
	if observer == nil {
		executor.eventObserver = noopCommandEventObserver{}
		return
	}
	executor.eventObserver = observer
}

// ExecuteGit runs git with the provided invocation details.
func (executor *ShellExecutor) ExecuteGit(executionContext context.Context, details CommandDetails) (ExecutionResult, error) {
	return executor.Execute(executionContext, ShellCommand{Name: CommandGit, Details: details})
}

// Execute runs the supplied command, logging its lifecycle and converting
// non-zero exits into CommandFailedError.
func (executor *ShellExecutor) Execute(executionContext context.Context, command ShellCommand) (ExecutionResult, error) {
	executor.eventObserver.CommandStarted(command)
	executor.logger.Debug(
		executor.formatter.BuildStartedMessage(command),
		zap.String(logFieldCommandNameConstant, string(command.Name)),
		zap.Strings(logFieldArgumentsConstant, command.Details.Arguments),
		zap.String(logFieldWorkingDirectoryConstant, command.Details.WorkingDirectory),
	)

	executionResult, runError := executor.commandRunner.Run(executionContext, command)
	if runError != nil {
		executionFailure := CommandExecutionError{Command: command, Cause: runError}
		executor.eventObserver.CommandExecutionFailed(command, runError)
		executor.logger.Error(
			executor.formatter.BuildExecutionFailureMessage(command, runError),
			zap.String(logFieldCommandNameConstant, string(command.Name)),
			zap.Strings(logFieldArgumentsConstant, command.Details.Arguments),
		)
		return ExecutionResult{}, executionFailure
	}

	executor.eventObserver.CommandCompleted(command, executionResult)

	if executionResult.ExitCode != 0 {
		commandFailure := CommandFailedError{Command: command, Result: executionResult}
		executor.logger.Warn(
			executor.formatter.BuildFailureMessage(command, executionResult),
			zap.String(logFieldCommandNameConstant, string(command.Name)),
			zap.Strings(logFieldArgumentsConstant, command.Details.Arguments),
			zap.Int(logFieldExitCodeConstant, executionResult.ExitCode),
			zap.String(logFieldStandardErrorConstant, executionResult.StandardError),
		)
		return ExecutionResult{}, commandFailure
	}

	executor.logger.Debug(
		executor.formatter.BuildSuccessMessage(command),
		zap.String(logFieldCommandNameConstant, string(command.Name)),
		zap.Strings(logFieldArgumentsConstant, command.Details.Arguments),
	)
	return executionResult, nil
}
